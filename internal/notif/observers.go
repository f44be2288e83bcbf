package notif

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"

	"agromarket/internal/common"
	"agromarket/internal/dbmysql"
)

// EventPublisher pushes freshly created notification records to realtime
// subscribers. May be nil when no realtime layer is wired.
type EventPublisher interface {
	NotificationCreated(notification *dbmysql.Notification)
}

type DatabaseNotificationObserver struct {
	repo   dbmysql.NotificationRepository
	events EventPublisher
}

func NewDatabaseNotificationObserver(repo dbmysql.NotificationRepository, events EventPublisher) *DatabaseNotificationObserver {
	return &DatabaseNotificationObserver{
		repo:   repo,
		events: events,
	}
}

func (d *DatabaseNotificationObserver) Name() string {
	return "database_observer"
}

func (d *DatabaseNotificationObserver) Update(event common.NotificationEvent) error {
	actorID := event.ActorID

	notification := &dbmysql.Notification{
		ID:        uuid.NewString(),
		UserID:    event.UserID,
		Type:      event.Type,
		Title:     event.Title,
		Body:      event.Body,
		RelatedID: event.RelatedID,
		ActorID:   &actorID,
		Read:      false,
		CreatedAt: time.Now().UTC(),
	}

	if err := d.repo.Create(context.Background(), notification); err != nil {
		return fmt.Errorf("failed to store notification: %w", err)
	}

	if d.events != nil {
		d.events.NotificationCreated(notification)
	}

	return nil
}

type PushNotificationObserver struct {
	deviceRepo DeviceRepository
	sender     common.PushSender
}

func NewPushNotificationObserver(deviceRepo DeviceRepository, sender common.PushSender) *PushNotificationObserver {
	return &PushNotificationObserver{
		deviceRepo: deviceRepo,
		sender:     sender,
	}
}

func (p *PushNotificationObserver) Name() string {
	return "push_observer"
}

func (p *PushNotificationObserver) Update(event common.NotificationEvent) error {
	devices, err := p.deviceRepo.ActiveByUserID(context.Background(), event.UserID)
	if err != nil {
		return fmt.Errorf("failed to get devices: %w", err)
	}

	if len(devices) == 0 {
		return nil
	}

	tokens := make([]string, len(devices))
	for i, device := range devices {
		tokens[i] = device.DeviceToken
	}

	data := map[string]string{
		"type": string(event.Type),
	}
	if event.RelatedID != nil {
		data["related_id"] = *event.RelatedID
	}

	if err := p.sender.Send(context.Background(), tokens, event.Title, event.Body, data); err != nil {
		return fmt.Errorf("failed to send push: %w", err)
	}

	return nil
}

// LogPushSender stands in for a real push provider. Delivery mechanics live
// outside this service; production wires a provider-backed PushSender here.
type LogPushSender struct{}

func (LogPushSender) Send(ctx context.Context, tokens []string, title, body string, data map[string]string) error {
	log.Printf("push (%d devices): %s: %s", len(tokens), title, body)
	return nil
}
