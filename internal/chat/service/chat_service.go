package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"agromarket/internal/chat/repository"
	"agromarket/internal/common"
	"agromarket/internal/dbmysql"
)

// previewLimit bounds the message preview used in notification bodies. The
// full text always stays on the message record.
const previewLimit = 50

// defaultMessageLimit caps listMessages when the caller does not ask for one.
const defaultMessageLimit = 50

// NotificationDispatcher is the fire-and-forget seam into the fan-out
// pipeline. Implementations must never block or fail the calling mutation.
type NotificationDispatcher interface {
	MessageReceived(conversationID, recipientID, senderID, preview string)
}

// EventPublisher pushes committed changes to realtime subscribers.
type EventPublisher interface {
	MessageSent(memberIDs []string, msg *dbmysql.Message)
	ConversationUpdated(memberIDs []string, conversationID string)
}

// ChatService defines the interface exposed to the handler layer
type ChatService interface {
	EnsureConversation(ctx context.Context, actorID string, memberIDs []string) (string, error)
	SendMessage(ctx context.Context, conversationID, senderID, text string, attachmentID *string) (*dbmysql.Message, error)
	ListMessages(ctx context.Context, conversationID, requesterID string, limit int) ([]*dbmysql.Message, error)
	ListConversations(ctx context.Context, userID string) ([]*dbmysql.Conversation, error)
	MessageReadBy(ctx context.Context, conversationID, messageID, requesterID string) ([]string, error)
	MarkMessagesAsRead(ctx context.Context, conversationID, readerID string) error
	GetUnreadCount(ctx context.Context, conversationID, userID string) (int64, error)
	RemoveUserFromAllConversations(ctx context.Context, userID string) error
}

type chatService struct {
	repo       repository.ChatRepository
	dispatcher NotificationDispatcher
	events     EventPublisher
}

// Constructor used in DI/wire. Dispatcher and publisher may be nil; the
// service then skips fan-out and realtime push.
func NewChatService(r repository.ChatRepository, dispatcher NotificationDispatcher, events EventPublisher) ChatService {
	return &chatService{repo: r, dispatcher: dispatcher, events: events}
}

// EnsureConversation resolves a participant set to exactly one conversation,
// creating it on first contact. Idempotent: the same set, in any order, maps
// to the same conversation.
func (s *chatService) EnsureConversation(ctx context.Context, actorID string, memberIDs []string) (string, error) {
	members := dbmysql.CanonicalMembers(memberIDs)
	if len(members) < 2 {
		return "", common.InvalidArg("a conversation needs at least 2 members")
	}

	actorIncluded := false
	for _, id := range members {
		if id == actorID {
			actorIncluded = true
			break
		}
	}
	if !actorIncluded {
		return "", common.Unauthorized("caller must be a conversation member")
	}

	key := dbmysql.MemberKey(members)

	conv, err := s.repo.ConversationByMemberKey(ctx, key)
	if err == nil {
		return conv.ID, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return "", common.Internal("conversation lookup failed", err)
	}

	conv = &dbmysql.Conversation{
		ID:        uuid.NewString(),
		MemberKey: key,
		CreatedAt: time.Now().UTC(),
	}
	if err := s.repo.CreateConversation(ctx, conv); err != nil {
		// A concurrent request may have created the same member set first;
		// the unique index on member_key rejects the second insert.
		if existing, lookupErr := s.repo.ConversationByMemberKey(ctx, key); lookupErr == nil {
			return existing.ID, nil
		}
		return "", common.Internal("conversation create failed", err)
	}

	if s.events != nil {
		s.events.ConversationUpdated(members, conv.ID)
	}

	return conv.ID, nil
}

// SendMessage appends a message and patches the conversation preview in one
// transaction, then fans out notifications to the other members. A fan-out
// failure never rolls back a delivered message.
func (s *chatService) SendMessage(ctx context.Context, conversationID, senderID, text string, attachmentID *string) (*dbmysql.Message, error) {
	conv, err := s.repo.ConversationByID(ctx, conversationID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, common.NotFound("conversation not found")
		}
		return nil, common.Internal("conversation lookup failed", err)
	}

	if !conv.HasMember(senderID) {
		return nil, common.Unauthorized("sender is not a conversation member")
	}

	text = trimText(text)
	if text == "" {
		return nil, common.InvalidArg("message text cannot be empty")
	}

	msg := &dbmysql.Message{
		ID:             uuid.NewString(),
		ConversationID: conversationID,
		SenderID:       senderID,
		Text:           text,
		AttachmentID:   attachmentID,
		CreatedAt:      time.Now().UTC(),
	}

	if err := s.repo.SaveMessage(ctx, msg); err != nil {
		return nil, common.Internal("message save failed", err)
	}

	members := conv.MemberIDs()
	if s.dispatcher != nil {
		preview := truncatePreview(text, previewLimit)
		for _, memberID := range members {
			if memberID == senderID {
				continue
			}
			s.dispatcher.MessageReceived(conversationID, memberID, senderID, preview)
		}
	}
	if s.events != nil {
		s.events.MessageSent(members, msg)
	}

	return msg, nil
}

// ListMessages returns the conversation's messages oldest first. Callers who
// are not members get an empty result, not an error, so membership cannot be
// probed through error signals.
func (s *chatService) ListMessages(ctx context.Context, conversationID, requesterID string, limit int) ([]*dbmysql.Message, error) {
	if requesterID == "" {
		return []*dbmysql.Message{}, nil
	}

	member, err := s.repo.IsMember(ctx, conversationID, requesterID)
	if err != nil {
		return nil, common.Internal("membership check failed", err)
	}
	if !member {
		return []*dbmysql.Message{}, nil
	}

	if limit <= 0 {
		limit = defaultMessageLimit
	}

	messages, err := s.repo.MessagesByConversation(ctx, conversationID, limit)
	if err != nil {
		return nil, common.Internal("message fetch failed", err)
	}

	return messages, nil
}

func (s *chatService) ListConversations(ctx context.Context, userID string) ([]*dbmysql.Conversation, error) {
	if userID == "" {
		return []*dbmysql.Conversation{}, nil
	}

	convs, err := s.repo.ConversationsForUser(ctx, userID)
	if err != nil {
		return nil, common.Internal("conversation list failed", err)
	}

	return convs, nil
}

// MessageReadBy lists who has read a message. Non-members get an empty
// slice, matching the other read queries.
func (s *chatService) MessageReadBy(ctx context.Context, conversationID, messageID, requesterID string) ([]string, error) {
	if requesterID == "" {
		return []string{}, nil
	}

	member, err := s.repo.IsMember(ctx, conversationID, requesterID)
	if err != nil {
		return nil, common.Internal("membership check failed", err)
	}
	if !member {
		return []string{}, nil
	}

	readers, err := s.repo.ReadBy(ctx, conversationID, messageID)
	if err != nil {
		return nil, common.Internal("read state fetch failed", err)
	}

	return readers, nil
}

func (s *chatService) MarkMessagesAsRead(ctx context.Context, conversationID, readerID string) error {
	member, err := s.repo.IsMember(ctx, conversationID, readerID)
	if err != nil {
		return common.Internal("membership check failed", err)
	}
	if !member {
		return common.Unauthorized("reader is not a conversation member")
	}

	if err := s.repo.MarkConversationRead(ctx, conversationID, readerID); err != nil {
		return common.Internal("mark read failed", err)
	}

	return nil
}

// GetUnreadCount returns how many messages in the conversation the user has
// not read, excluding the user's own messages. Non-members get 0.
func (s *chatService) GetUnreadCount(ctx context.Context, conversationID, userID string) (int64, error) {
	if userID == "" {
		return 0, nil
	}

	member, err := s.repo.IsMember(ctx, conversationID, userID)
	if err != nil {
		return 0, common.Internal("membership check failed", err)
	}
	if !member {
		return 0, nil
	}

	count, err := s.repo.UnreadCount(ctx, conversationID, userID)
	if err != nil {
		return 0, common.Internal("unread count failed", err)
	}

	return count, nil
}

// RemoveUserFromAllConversations is the account-deletion cascade entry point.
func (s *chatService) RemoveUserFromAllConversations(ctx context.Context, userID string) error {
	ids, err := s.repo.ConversationIDsForUser(ctx, userID)
	if err != nil {
		return common.Internal("conversation id list failed", err)
	}

	for _, conversationID := range ids {
		if err := s.repo.RemoveMember(ctx, conversationID, userID); err != nil {
			return common.Internal("member removal failed", err)
		}
	}

	return nil
}
