package notif

import (
	"context"
	"fmt"
	"log"
	"sync"

	"agromarket/internal/common"
	"agromarket/internal/config"
	"agromarket/internal/dbmysql"
)

// NotificationManager fans events out to subscribed observers through a
// buffered channel and a fixed worker pool. Dispatch is fire-and-forget: a
// full channel drops the event rather than blocking the caller.
type NotificationManager struct {
	observers    map[string]common.Observer
	eventChannel chan common.NotificationEvent
	workerPool   int
	mu           sync.RWMutex
	wg           sync.WaitGroup
	closed       bool
}

func NewNotificationManager(workerPoolSize, bufferSize int) *NotificationManager {
	if workerPoolSize <= 0 {
		workerPoolSize = 1
	}
	if bufferSize <= 0 {
		bufferSize = 1000
	}

	nm := &NotificationManager{
		observers:    make(map[string]common.Observer),
		eventChannel: make(chan common.NotificationEvent, bufferSize),
		workerPool:   workerPoolSize,
	}

	for i := 0; i < workerPoolSize; i++ {
		nm.wg.Add(1)
		go nm.processEvents()
	}

	return nm
}

func (nm *NotificationManager) Subscribe(observer common.Observer) {
	nm.mu.Lock()
	defer nm.mu.Unlock()
	nm.observers[observer.Name()] = observer
	log.Printf("observer %s subscribed", observer.Name())
}

func (nm *NotificationManager) Unsubscribe(observer common.Observer) {
	nm.mu.Lock()
	defer nm.mu.Unlock()
	delete(nm.observers, observer.Name())
	log.Printf("observer %s unsubscribed", observer.Name())
}

// Notify delivers the event to every observer synchronously. Observer
// failures are logged and never propagate to the triggering mutation.
func (nm *NotificationManager) Notify(event common.NotificationEvent) {
	nm.mu.RLock()
	observers := make([]common.Observer, 0, len(nm.observers))
	for _, obs := range nm.observers {
		observers = append(observers, obs)
	}
	nm.mu.RUnlock()

	for _, observer := range observers {
		if err := observer.Update(event); err != nil {
			log.Printf("observer %s update failed: %v", observer.Name(), err)
		}
	}
}

func (nm *NotificationManager) NotifyAsync(event common.NotificationEvent) {
	nm.mu.RLock()
	defer nm.mu.RUnlock()

	if nm.closed {
		return
	}

	select {
	case nm.eventChannel <- event:
	default:
		log.Printf("notification channel full, dropping event: %s", event.Type)
	}
}

func (nm *NotificationManager) processEvents() {
	defer nm.wg.Done()

	for event := range nm.eventChannel {
		nm.Notify(event)
	}
}

// Shutdown drains queued events before returning.
func (nm *NotificationManager) Shutdown() {
	nm.mu.Lock()
	if !nm.closed {
		nm.closed = true
		close(nm.eventChannel)
	}
	nm.mu.Unlock()

	nm.wg.Wait()
	log.Println("NotificationManager shutdown complete")
}

// DeviceRepository is the slice of the device store the fan-out pipeline
// needs for push delivery.
type DeviceRepository interface {
	CreateOrUpdate(ctx context.Context, userID, deviceToken, platform string) error
	ActiveByUserID(ctx context.Context, userID string) ([]*dbmysql.Device, error)
	DeleteToken(ctx context.Context, deviceToken string) error
}

type NotificationService struct {
	manager    *NotificationManager
	repo       dbmysql.NotificationRepository
	deviceRepo DeviceRepository
}

func NewNotificationService(
	cfg *config.Config,
	repo dbmysql.NotificationRepository,
	deviceRepo DeviceRepository,
	pushSender common.PushSender,
	events EventPublisher,
) *NotificationService {
	manager := NewNotificationManager(cfg.Notification.Workers, cfg.Notification.ChannelBufferSize)

	dbObserver := NewDatabaseNotificationObserver(repo, events)
	manager.Subscribe(dbObserver)

	if pushSender != nil {
		pushObserver := NewPushNotificationObserver(deviceRepo, pushSender)
		manager.Subscribe(pushObserver)
	}

	return &NotificationService{
		manager:    manager,
		repo:       repo,
		deviceRepo: deviceRepo,
	}
}

// MessageReceived schedules a message notification for one recipient.
// Implements the chat service's dispatcher seam; called once per other
// member of the conversation, never for the sender.
func (s *NotificationService) MessageReceived(conversationID, recipientID, senderID, preview string) {
	event := common.NotificationEvent{
		Type:      common.MessageNotification,
		UserID:    recipientID,
		ActorID:   senderID,
		Title:     "New message",
		Body:      preview,
		RelatedID: &conversationID,
	}

	s.dispatch(event)
}

// FavoriteAdded schedules a favorite notification for the product's author.
// Favoriting your own listing notifies nobody.
func (s *NotificationService) FavoriteAdded(productID, productTitle, authorID, actorID string) {
	if authorID == actorID {
		return
	}

	event := common.NotificationEvent{
		Type:      common.FavoriteNotification,
		UserID:    authorID,
		ActorID:   actorID,
		Title:     "New favorite",
		Body:      fmt.Sprintf("Someone added %s to their favorites", productTitle),
		RelatedID: &productID,
	}

	s.dispatch(event)
}

func (s *NotificationService) dispatch(event common.NotificationEvent) {
	if err := validateEvent(event); err != nil {
		log.Printf("dropping invalid notification event: %v", err)
		return
	}

	s.manager.NotifyAsync(event)
}

func validateEvent(event common.NotificationEvent) error {
	if event.UserID == "" {
		return fmt.Errorf("user_id is required")
	}

	if event.UserID == event.ActorID {
		return fmt.Errorf("recipient and actor must differ")
	}

	if event.Title == "" {
		return fmt.Errorf("title is required")
	}

	if event.Body == "" {
		return fmt.Errorf("body is required")
	}

	return nil
}

func (s *NotificationService) GetUserNotifications(
	ctx context.Context,
	userID string,
	limit, offset int,
) ([]*common.NotificationResponse, error) {
	notifications, err := s.repo.ByUserID(ctx, userID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to get notifications: %w", err)
	}

	responses := make([]*common.NotificationResponse, len(notifications))
	for i, notif := range notifications {
		responses[i] = &common.NotificationResponse{
			ID:        notif.ID,
			Type:      string(notif.Type),
			Title:     notif.Title,
			Body:      notif.Body,
			RelatedID: notif.RelatedID,
			Read:      notif.Read,
			CreatedAt: notif.CreatedAt,
			ReadAt:    notif.ReadAt,
		}
	}

	return responses, nil
}

func (s *NotificationService) MarkAsRead(ctx context.Context, notificationID, userID string) error {
	return s.repo.MarkAsRead(ctx, notificationID, userID)
}

func (s *NotificationService) MarkAllAsRead(ctx context.Context, userID string) error {
	return s.repo.MarkAllAsRead(ctx, userID)
}

func (s *NotificationService) UnreadCount(ctx context.Context, userID string) (int64, error) {
	return s.repo.UnreadCount(ctx, userID)
}

func (s *NotificationService) RegisterDeviceToken(
	ctx context.Context,
	userID, deviceToken, platform string,
) error {
	return s.deviceRepo.CreateOrUpdate(ctx, userID, deviceToken, platform)
}

func (s *NotificationService) UnregisterDeviceToken(ctx context.Context, deviceToken string) error {
	return s.deviceRepo.DeleteToken(ctx, deviceToken)
}

// RemoveAllForUser is part of the account-deletion cascade.
func (s *NotificationService) RemoveAllForUser(ctx context.Context, userID string) error {
	return s.repo.DeleteByUser(ctx, userID)
}

func (s *NotificationService) Shutdown() {
	s.manager.Shutdown()
	log.Println("NotificationService shutdown complete")
}
