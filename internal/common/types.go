package common

import (
	"time"
)

type NotificationType string

const (
	MessageNotification  NotificationType = "message"
	FavoriteNotification NotificationType = "favorite"
	CommentNotification  NotificationType = "comment"
	LikeNotification     NotificationType = "like"
)

// NotificationEvent is what flows through the fan-out pipeline. UserID is the
// recipient; ActorID is the identity whose action triggered the event. The two
// are never equal, callers filter self-notification before dispatching.
type NotificationEvent struct {
	Type      NotificationType
	UserID    string
	ActorID   string
	Title     string
	Body      string
	RelatedID *string
	CreatedAt time.Time
}

type NotificationResponse struct {
	ID        string     `json:"id"`
	Type      string     `json:"type"`
	Title     string     `json:"title"`
	Body      string     `json:"body"`
	RelatedID *string    `json:"related_id,omitempty"`
	Read      bool       `json:"read"`
	CreatedAt time.Time  `json:"created_at"`
	ReadAt    *time.Time `json:"read_at,omitempty"`
}
