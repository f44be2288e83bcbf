package repository

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"

	"agromarket/internal/dbmysql"
)

// ChatRepository owns all conversation, message and read-state persistence.
// Every mutation that touches more than one table runs inside a single
// transaction so a failed step leaves no partial state.
type ChatRepository interface {
	CreateConversation(ctx context.Context, conv *dbmysql.Conversation) error
	ConversationByID(ctx context.Context, id string) (*dbmysql.Conversation, error)
	ConversationByMemberKey(ctx context.Context, key string) (*dbmysql.Conversation, error)
	ConversationsForUser(ctx context.Context, userID string) ([]*dbmysql.Conversation, error)
	ConversationIDsForUser(ctx context.Context, userID string) ([]string, error)
	IsMember(ctx context.Context, conversationID, userID string) (bool, error)

	SaveMessage(ctx context.Context, msg *dbmysql.Message) error
	MessagesByConversation(ctx context.Context, conversationID string, limit int) ([]*dbmysql.Message, error)
	ReadBy(ctx context.Context, conversationID, messageID string) ([]string, error)

	MarkConversationRead(ctx context.Context, conversationID, readerID string) error
	UnreadCount(ctx context.Context, conversationID, userID string) (int64, error)

	RemoveMember(ctx context.Context, conversationID, userID string) error
}

type chatRepo struct {
	db *gorm.DB
}

func NewChatRepository(db *gorm.DB) ChatRepository {
	return &chatRepo{db: db}
}

func (r *chatRepo) CreateConversation(ctx context.Context, conv *dbmysql.Conversation) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(conv).Error; err != nil {
			return err
		}

		for _, memberID := range conv.MemberIDs() {
			member := &dbmysql.ConversationMember{
				ConversationID: conv.ID,
				UserID:         memberID,
				JoinedAt:       conv.CreatedAt,
			}
			if err := tx.Create(member).Error; err != nil {
				return err
			}
		}

		return nil
	})
}

func (r *chatRepo) ConversationByID(ctx context.Context, id string) (*dbmysql.Conversation, error) {
	var conv dbmysql.Conversation
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&conv).Error
	if err != nil {
		return nil, err
	}
	return &conv, nil
}

func (r *chatRepo) ConversationByMemberKey(ctx context.Context, key string) (*dbmysql.Conversation, error) {
	var conv dbmysql.Conversation
	err := r.db.WithContext(ctx).Where("member_key = ?", key).First(&conv).Error
	if err != nil {
		return nil, err
	}
	return &conv, nil
}

// ConversationsForUser lists the user's conversations newest-activity first,
// falling back to creation time for conversations with no message yet.
func (r *chatRepo) ConversationsForUser(ctx context.Context, userID string) ([]*dbmysql.Conversation, error) {
	var convs []*dbmysql.Conversation

	err := r.db.WithContext(ctx).
		Joins("JOIN conversation_members cm ON cm.conversation_id = conversations.id").
		Where("cm.user_id = ?", userID).
		Order("COALESCE(conversations.last_message_at, conversations.created_at) DESC").
		Find(&convs).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list conversations: %w", err)
	}

	return convs, nil
}

func (r *chatRepo) ConversationIDsForUser(ctx context.Context, userID string) ([]string, error) {
	var ids []string

	err := r.db.WithContext(ctx).
		Model(&dbmysql.ConversationMember{}).
		Where("user_id = ?", userID).
		Pluck("conversation_id", &ids).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list conversation ids: %w", err)
	}

	return ids, nil
}

func (r *chatRepo) IsMember(ctx context.Context, conversationID, userID string) (bool, error) {
	var count int64

	err := r.db.WithContext(ctx).
		Model(&dbmysql.ConversationMember{}).
		Where("conversation_id = ? AND user_id = ?", conversationID, userID).
		Count(&count).Error
	if err != nil {
		return false, err
	}

	return count > 0, nil
}

// SaveMessage inserts the message, records the sender as having read it and
// patches the conversation's denormalized preview, all in one transaction.
func (r *chatRepo) SaveMessage(ctx context.Context, msg *dbmysql.Message) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(msg).Error; err != nil {
			return err
		}

		read := &dbmysql.MessageRead{
			MessageID:      msg.ID,
			UserID:         msg.SenderID,
			ConversationID: msg.ConversationID,
			ReadAt:         msg.CreatedAt,
		}
		if err := tx.Create(read).Error; err != nil {
			return err
		}

		return tx.Model(&dbmysql.Conversation{}).
			Where("id = ?", msg.ConversationID).
			Updates(map[string]interface{}{
				"last_message_at":        msg.CreatedAt,
				"last_message_text":      msg.Text,
				"last_message_sender_id": msg.SenderID,
			}).Error
	})
}

func (r *chatRepo) MessagesByConversation(ctx context.Context, conversationID string, limit int) ([]*dbmysql.Message, error) {
	var messages []*dbmysql.Message

	query := r.db.WithContext(ctx).
		Where("conversation_id = ?", conversationID).
		Order("created_at ASC, id ASC")

	if limit > 0 {
		query = query.Limit(limit)
	}

	if err := query.Find(&messages).Error; err != nil {
		return nil, fmt.Errorf("failed to fetch messages: %w", err)
	}

	return messages, nil
}

// ReadBy lists who has read the message. Scoped to the conversation so a
// message id from another conversation resolves to nothing.
func (r *chatRepo) ReadBy(ctx context.Context, conversationID, messageID string) ([]string, error) {
	var userIDs []string

	err := r.db.WithContext(ctx).
		Model(&dbmysql.MessageRead{}).
		Where("conversation_id = ? AND message_id = ?", conversationID, messageID).
		Order("user_id ASC").
		Pluck("user_id", &userIDs).Error
	if err != nil {
		return nil, err
	}

	return userIDs, nil
}

const markReadSQL = `INSERT INTO message_reads (message_id, user_id, conversation_id, read_at)
SELECT m.id, ?, m.conversation_id, ?
FROM messages m
WHERE m.conversation_id = ?
  AND NOT EXISTS (
    SELECT 1 FROM message_reads r WHERE r.message_id = m.id AND r.user_id = ?
  )`

// MarkConversationRead adds the reader to every message they have not read
// yet. One INSERT..SELECT, naturally idempotent: a second call finds nothing
// left to insert.
func (r *chatRepo) MarkConversationRead(ctx context.Context, conversationID, readerID string) error {
	err := r.db.WithContext(ctx).
		Exec(markReadSQL, readerID, time.Now().UTC(), conversationID, readerID).Error
	if err != nil {
		return fmt.Errorf("failed to mark conversation read: %w", err)
	}
	return nil
}

// UnreadCount counts messages the user has not read, never counting the
// user's own messages.
func (r *chatRepo) UnreadCount(ctx context.Context, conversationID, userID string) (int64, error) {
	var count int64

	err := r.db.WithContext(ctx).
		Model(&dbmysql.Message{}).
		Where("conversation_id = ? AND sender_id <> ?", conversationID, userID).
		Where("NOT EXISTS (SELECT 1 FROM message_reads r WHERE r.message_id = messages.id AND r.user_id = ?)", userID).
		Count(&count).Error
	if err != nil {
		return 0, fmt.Errorf("failed to count unread messages: %w", err)
	}

	return count, nil
}

// RemoveMember drops a user from a conversation: their membership row and
// read entries go away, the canonical member key shrinks, and a conversation
// left with no members is deleted together with all its messages. Messages
// the removed user sent to a surviving conversation remain (historical
// member).
func (r *chatRepo) RemoveMember(ctx context.Context, conversationID, userID string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		err := tx.Delete(&dbmysql.ConversationMember{},
			"conversation_id = ? AND user_id = ?", conversationID, userID).Error
		if err != nil {
			return err
		}

		err = tx.Delete(&dbmysql.MessageRead{},
			"conversation_id = ? AND user_id = ?", conversationID, userID).Error
		if err != nil {
			return err
		}

		var remaining []string
		err = tx.Model(&dbmysql.ConversationMember{}).
			Where("conversation_id = ?", conversationID).
			Order("user_id ASC").
			Pluck("user_id", &remaining).Error
		if err != nil {
			return err
		}

		if len(remaining) == 0 {
			if err := tx.Delete(&dbmysql.MessageRead{}, "conversation_id = ?", conversationID).Error; err != nil {
				return err
			}
			if err := tx.Delete(&dbmysql.Message{}, "conversation_id = ?", conversationID).Error; err != nil {
				return err
			}
			return tx.Delete(&dbmysql.Conversation{}, "id = ?", conversationID).Error
		}

		return tx.Model(&dbmysql.Conversation{}).
			Where("id = ?", conversationID).
			Update("member_key", dbmysql.MemberKey(remaining)).Error
	})
}
