package favorite

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"gorm.io/gorm"

	"agromarket/internal/dbmysql"
)

type MockFavoriteRepository struct {
	mock.Mock
}

func (m *MockFavoriteRepository) Toggle(ctx context.Context, userID, productID string) (bool, error) {
	args := m.Called(ctx, userID, productID)
	return args.Bool(0), args.Error(1)
}

func (m *MockFavoriteRepository) IsFavorite(ctx context.Context, userID, productID string) (bool, error) {
	args := m.Called(ctx, userID, productID)
	return args.Bool(0), args.Error(1)
}

func (m *MockFavoriteRepository) ListByUser(ctx context.Context, userID string) ([]*dbmysql.Favorite, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*dbmysql.Favorite), args.Error(1)
}

func (m *MockFavoriteRepository) DeleteByUser(ctx context.Context, userID string) error {
	args := m.Called(ctx, userID)
	return args.Error(0)
}

type MockProductReader struct {
	mock.Mock
}

func (m *MockProductReader) ByID(ctx context.Context, id string) (*dbmysql.Product, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dbmysql.Product), args.Error(1)
}

type recordingDispatcher struct {
	calls []string
}

func (d *recordingDispatcher) FavoriteAdded(productID, productTitle, authorID, actorID string) {
	d.calls = append(d.calls, productID+"|"+productTitle+"|"+authorID+"|"+actorID)
}

func testProduct() *dbmysql.Product {
	return &dbmysql.Product{ID: "prod-1", AuthorID: "seller-1", Title: "Organic Tomatoes"}
}

func TestToggleCreatesAndNotifies(t *testing.T) {
	repo := new(MockFavoriteRepository)
	products := new(MockProductReader)
	dispatcher := &recordingDispatcher{}
	svc := NewFavoriteService(repo, products, dispatcher)

	products.On("ByID", mock.Anything, "prod-1").Return(testProduct(), nil)
	repo.On("Toggle", mock.Anything, "buyer-1", "prod-1").Return(true, nil)

	favorited, err := svc.Toggle(context.Background(), "buyer-1", "prod-1")

	assert.NoError(t, err)
	assert.True(t, favorited)
	assert.Equal(t, []string{"prod-1|Organic Tomatoes|seller-1|buyer-1"}, dispatcher.calls)
	repo.AssertExpectations(t)
}

func TestToggleRemovalDoesNotNotify(t *testing.T) {
	repo := new(MockFavoriteRepository)
	products := new(MockProductReader)
	dispatcher := &recordingDispatcher{}
	svc := NewFavoriteService(repo, products, dispatcher)

	products.On("ByID", mock.Anything, "prod-1").Return(testProduct(), nil)
	repo.On("Toggle", mock.Anything, "buyer-1", "prod-1").Return(false, nil)

	favorited, err := svc.Toggle(context.Background(), "buyer-1", "prod-1")

	assert.NoError(t, err)
	assert.False(t, favorited)
	assert.Empty(t, dispatcher.calls)
}

func TestToggleOwnProductSkipsNotification(t *testing.T) {
	repo := new(MockFavoriteRepository)
	products := new(MockProductReader)
	dispatcher := &recordingDispatcher{}
	svc := NewFavoriteService(repo, products, dispatcher)

	products.On("ByID", mock.Anything, "prod-1").Return(testProduct(), nil)
	repo.On("Toggle", mock.Anything, "seller-1", "prod-1").Return(true, nil)

	favorited, err := svc.Toggle(context.Background(), "seller-1", "prod-1")

	assert.NoError(t, err)
	assert.True(t, favorited)
	assert.Empty(t, dispatcher.calls)
}

func TestToggleUnknownProduct(t *testing.T) {
	repo := new(MockFavoriteRepository)
	products := new(MockProductReader)
	svc := NewFavoriteService(repo, products, nil)

	products.On("ByID", mock.Anything, "nope").Return(nil, gorm.ErrRecordNotFound)

	_, err := svc.Toggle(context.Background(), "buyer-1", "nope")

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "product not found")
	repo.AssertNotCalled(t, "Toggle", mock.Anything, mock.Anything, mock.Anything)
}

func TestListFavoritesEmptyForAnonymous(t *testing.T) {
	repo := new(MockFavoriteRepository)
	svc := NewFavoriteService(repo, new(MockProductReader), nil)

	favorites, err := svc.ListFavorites(context.Background(), "")

	assert.NoError(t, err)
	assert.Empty(t, favorites)
	repo.AssertNotCalled(t, "ListByUser", mock.Anything, mock.Anything)
}

func TestListFavorites(t *testing.T) {
	repo := new(MockFavoriteRepository)
	svc := NewFavoriteService(repo, new(MockProductReader), nil)

	repo.On("ListByUser", mock.Anything, "buyer-1").Return([]*dbmysql.Favorite{
		{ID: "fav-1", UserID: "buyer-1", ProductID: "prod-1"},
		{ID: "fav-2", UserID: "buyer-1", ProductID: "prod-2"},
	}, nil)

	favorites, err := svc.ListFavorites(context.Background(), "buyer-1")

	assert.NoError(t, err)
	assert.Len(t, favorites, 2)
}

func TestRemoveAllForUser(t *testing.T) {
	repo := new(MockFavoriteRepository)
	svc := NewFavoriteService(repo, new(MockProductReader), nil)

	repo.On("DeleteByUser", mock.Anything, "buyer-1").Return(nil)

	assert.NoError(t, svc.RemoveAllForUser(context.Background(), "buyer-1"))
	repo.AssertExpectations(t)
}
