package dbmysql

import (
	"time"

	"agromarket/internal/common"
)

type Notification struct {
	ID        string                  `gorm:"primaryKey;size:36"`
	UserID    string                  `gorm:"not null;index;size:36"`
	Type      common.NotificationType `gorm:"not null;size:20"`
	Title     string                  `gorm:"not null;size:255"`
	Body      string                  `gorm:"not null;type:text"`
	RelatedID *string                 `gorm:"size:36"`
	ActorID   *string                 `gorm:"size:36"`
	Read      bool                    `gorm:"default:false"`
	ReadAt    *time.Time
	CreatedAt time.Time `gorm:"index"`
}

type Device struct {
	DeviceToken  string    `gorm:"primaryKey;size:255"`
	UserID       string    `gorm:"not null;index;size:36"`
	Platform     string    `gorm:"not null;size:10"`
	RegisteredAt time.Time `gorm:"autoCreateTime"`
	LastActive   time.Time `gorm:"autoCreateTime"`
}
