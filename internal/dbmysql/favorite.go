package dbmysql

import (
	"time"
)

// Favorite marks a product saved by a user. The composite unique index keeps
// at most one row per (user, product) pair under concurrent toggles.
type Favorite struct {
	ID        string `gorm:"primaryKey;size:36"`
	UserID    string `gorm:"uniqueIndex:idx_fav_user_product,priority:1;size:36;not null"`
	ProductID string `gorm:"uniqueIndex:idx_fav_user_product,priority:2;index;size:36;not null"`
	CreatedAt time.Time
}
