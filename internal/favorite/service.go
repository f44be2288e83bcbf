package favorite

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"agromarket/internal/common"
	"agromarket/internal/dbmysql"
)

// ProductReader is the slice of the catalog the favorite flow needs.
type ProductReader interface {
	ByID(ctx context.Context, id string) (*dbmysql.Product, error)
}

// NotificationDispatcher is the fire-and-forget seam into the fan-out
// pipeline. Called only when a favorite is created, never on removal.
type NotificationDispatcher interface {
	FavoriteAdded(productID, productTitle, authorID, actorID string)
}

type FavoriteService interface {
	// Toggle is a true toggle, not a set-operation: every call flips state and
	// returns the new one.
	Toggle(ctx context.Context, userID, productID string) (bool, error)
	IsFavorite(ctx context.Context, userID, productID string) (bool, error)
	ListFavorites(ctx context.Context, userID string) ([]*dbmysql.Favorite, error)
	RemoveAllForUser(ctx context.Context, userID string) error
}

type favoriteService struct {
	repo       FavoriteRepository
	products   ProductReader
	dispatcher NotificationDispatcher
}

func NewFavoriteService(repo FavoriteRepository, products ProductReader, dispatcher NotificationDispatcher) FavoriteService {
	return &favoriteService{repo: repo, products: products, dispatcher: dispatcher}
}

func (s *favoriteService) Toggle(ctx context.Context, userID, productID string) (bool, error) {
	product, err := s.products.ByID(ctx, productID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return false, common.NotFound("product not found")
		}
		return false, common.Internal("product lookup failed", err)
	}

	created, err := s.repo.Toggle(ctx, userID, productID)
	if err != nil {
		return false, common.Internal("favorite toggle failed", err)
	}

	if created && s.dispatcher != nil && product.AuthorID != userID {
		s.dispatcher.FavoriteAdded(product.ID, product.Title, product.AuthorID, userID)
	}

	return created, nil
}

func (s *favoriteService) IsFavorite(ctx context.Context, userID, productID string) (bool, error) {
	if userID == "" {
		return false, nil
	}

	favorited, err := s.repo.IsFavorite(ctx, userID, productID)
	if err != nil {
		return false, common.Internal("favorite lookup failed", err)
	}

	return favorited, nil
}

func (s *favoriteService) ListFavorites(ctx context.Context, userID string) ([]*dbmysql.Favorite, error) {
	if userID == "" {
		return []*dbmysql.Favorite{}, nil
	}

	favorites, err := s.repo.ListByUser(ctx, userID)
	if err != nil {
		return nil, common.Internal("favorite list failed", err)
	}

	return favorites, nil
}

// RemoveAllForUser is the account-deletion cascade entry point.
func (s *favoriteService) RemoveAllForUser(ctx context.Context, userID string) error {
	if err := s.repo.DeleteByUser(ctx, userID); err != nil {
		return common.Internal("favorite cleanup failed", err)
	}
	return nil
}
