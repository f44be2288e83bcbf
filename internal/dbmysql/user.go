package dbmysql

import (
	"time"
)

type User struct {
	ID           string `gorm:"primaryKey;size:36"`
	Email        string `gorm:"uniqueIndex;size:255;not null"`
	PasswordHash string `gorm:"size:255;not null"`
	Name         string `gorm:"size:100;not null"`
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Product is owned by the catalog collaborator; the messaging core only needs
// its identity and author for favorite toggling and cascade cleanup.
type Product struct {
	ID          string `gorm:"primaryKey;size:36"`
	AuthorID    string `gorm:"index;size:36;not null"`
	Title       string `gorm:"size:255;not null"`
	Description string `gorm:"type:text"`
	Price       float64
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
