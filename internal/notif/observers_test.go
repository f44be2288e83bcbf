package notif

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"agromarket/internal/common"
	"agromarket/internal/dbmysql"
)

type MockPushSender struct {
	mock.Mock
}

func (m *MockPushSender) Send(ctx context.Context, tokens []string, title, body string, data map[string]string) error {
	args := m.Called(ctx, tokens, title, body, data)
	return args.Error(0)
}

type recordingEventPublisher struct {
	mu      sync.Mutex
	created []*dbmysql.Notification
}

func (p *recordingEventPublisher) NotificationCreated(notification *dbmysql.Notification) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.created = append(p.created, notification)
}

func TestDatabaseObserver_CreatesRecordAndPublishes(t *testing.T) {
	repo := &MockNotificationRepository{}
	events := &recordingEventPublisher{}

	var created *dbmysql.Notification
	repo.On("Create", mock.Anything, mock.AnythingOfType("*dbmysql.Notification")).
		Run(func(args mock.Arguments) {
			created = args.Get(1).(*dbmysql.Notification)
		}).
		Return(nil).
		Once()

	observer := NewDatabaseNotificationObserver(repo, events)

	conversationID := "conv-1"
	err := observer.Update(common.NotificationEvent{
		Type:      common.MessageNotification,
		UserID:    "user-b",
		ActorID:   "user-a",
		Title:     "New message",
		Body:      "hello",
		RelatedID: &conversationID,
	})
	require.NoError(t, err)

	repo.AssertExpectations(t)
	require.NotNil(t, created)
	assert.NotEmpty(t, created.ID)
	assert.Equal(t, "user-b", created.UserID)
	assert.False(t, created.Read)

	require.Len(t, events.created, 1)
	assert.Equal(t, created.ID, events.created[0].ID)
}

func TestDatabaseObserver_RepositoryFailure(t *testing.T) {
	repo := &MockNotificationRepository{}
	repo.On("Create", mock.Anything, mock.Anything).
		Return(errors.New("database connection failed")).
		Once()

	observer := NewDatabaseNotificationObserver(repo, nil)

	err := observer.Update(common.NotificationEvent{
		Type: common.MessageNotification, UserID: "user-b", ActorID: "user-a",
		Title: "t", Body: "b",
	})
	assert.Error(t, err)
}

func TestPushObserver_NoDevicesIsNoop(t *testing.T) {
	devices := &MockDeviceRepository{}
	sender := &MockPushSender{}

	devices.On("ActiveByUserID", mock.Anything, "user-b").
		Return([]*dbmysql.Device{}, nil).
		Once()

	observer := NewPushNotificationObserver(devices, sender)

	err := observer.Update(common.NotificationEvent{
		Type: common.MessageNotification, UserID: "user-b", ActorID: "user-a",
		Title: "t", Body: "b",
	})
	require.NoError(t, err)

	sender.AssertNotCalled(t, "Send", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestPushObserver_SendsToAllActiveDevices(t *testing.T) {
	devices := &MockDeviceRepository{}
	sender := &MockPushSender{}

	devices.On("ActiveByUserID", mock.Anything, "user-b").
		Return([]*dbmysql.Device{
			{DeviceToken: "token-1", UserID: "user-b", Platform: "ios"},
			{DeviceToken: "token-2", UserID: "user-b", Platform: "android"},
		}, nil).
		Once()

	productID := "prod-1"
	sender.On("Send", mock.Anything, []string{"token-1", "token-2"}, "New favorite", "someone saved your listing",
		map[string]string{"type": "favorite", "related_id": "prod-1"}).
		Return(nil).
		Once()

	observer := NewPushNotificationObserver(devices, sender)

	err := observer.Update(common.NotificationEvent{
		Type:      common.FavoriteNotification,
		UserID:    "user-b",
		ActorID:   "user-a",
		Title:     "New favorite",
		Body:      "someone saved your listing",
		RelatedID: &productID,
	})
	require.NoError(t, err)

	devices.AssertExpectations(t)
	sender.AssertExpectations(t)
}
