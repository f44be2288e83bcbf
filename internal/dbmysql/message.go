package dbmysql

import (
	"time"
)

// Message is immutable after creation except for its read state, which lives
// in MessageRead rows.
type Message struct {
	ID             string  `gorm:"primaryKey;size:36"`
	ConversationID string  `gorm:"index:idx_messages_conv_created,priority:1;size:36;not null"`
	SenderID       string  `gorm:"index;size:36;not null"`
	Text           string  `gorm:"type:text;not null"`
	AttachmentID   *string `gorm:"size:64"`
	CreatedAt      time.Time `gorm:"index:idx_messages_conv_created,priority:2"`
}

// MessageRead records that a user has read a message. A row for the sender is
// created together with the message itself. ConversationID is denormalized so
// member removal can purge a user's read rows for one conversation in a
// single statement.
type MessageRead struct {
	MessageID      string `gorm:"primaryKey;size:36"`
	UserID         string `gorm:"primaryKey;size:36"`
	ConversationID string `gorm:"index;size:36;not null"`
	ReadAt         time.Time
}
