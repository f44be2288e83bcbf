package service

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
	"gorm.io/gorm"

	"agromarket/internal/chat/service/mocks"
	"agromarket/internal/common"
	"agromarket/internal/dbmysql"
)

type dispatchCall struct {
	conversationID string
	recipientID    string
	senderID       string
	preview        string
}

type recordingDispatcher struct {
	mu    sync.Mutex
	calls []dispatchCall
}

func (d *recordingDispatcher) MessageReceived(conversationID, recipientID, senderID, preview string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.calls = append(d.calls, dispatchCall{conversationID, recipientID, senderID, preview})
}

type recordingPublisher struct {
	mu       sync.Mutex
	messages []*dbmysql.Message
}

func (p *recordingPublisher) MessageSent(memberIDs []string, msg *dbmysql.Message) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.messages = append(p.messages, msg)
}

func (p *recordingPublisher) ConversationUpdated(memberIDs []string, conversationID string) {}

func TestChatService_EnsureConversation_Canonical(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockRepo := mocks.NewMockChatRepository(ctrl)
	svc := NewChatService(mockRepo, nil, nil)

	existing := &dbmysql.Conversation{ID: "conv-1", MemberKey: "user-a,user-b"}

	// Both permutations of the same member set resolve through the same
	// canonical key, and no second conversation is created.
	mockRepo.EXPECT().
		ConversationByMemberKey(gomock.Any(), "user-a,user-b").
		Return(existing, nil).
		Times(2)

	id1, err := svc.EnsureConversation(context.Background(), "user-a", []string{"user-b", "user-a"})
	require.NoError(t, err)

	id2, err := svc.EnsureConversation(context.Background(), "user-a", []string{"user-a", "user-b", "user-b"})
	require.NoError(t, err)

	assert.Equal(t, "conv-1", id1)
	assert.Equal(t, id1, id2)
}

func TestChatService_EnsureConversation_CreatesWhenAbsent(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockRepo := mocks.NewMockChatRepository(ctrl)
	svc := NewChatService(mockRepo, nil, nil)

	mockRepo.EXPECT().
		ConversationByMemberKey(gomock.Any(), "user-a,user-b").
		Return(nil, gorm.ErrRecordNotFound)

	mockRepo.EXPECT().
		CreateConversation(gomock.Any(), gomock.Any()).
		DoAndReturn(func(ctx context.Context, conv *dbmysql.Conversation) error {
			assert.NotEmpty(t, conv.ID)
			assert.Equal(t, "user-a,user-b", conv.MemberKey)
			assert.Equal(t, []string{"user-a", "user-b"}, conv.MemberIDs())
			assert.WithinDuration(t, time.Now(), conv.CreatedAt, time.Second)
			return nil
		})

	id, err := svc.EnsureConversation(context.Background(), "user-b", []string{"user-b", "user-a"})
	require.NoError(t, err)
	assert.NotEmpty(t, id)
}

func TestChatService_EnsureConversation_ActorMustBeMember(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockRepo := mocks.NewMockChatRepository(ctrl)
	svc := NewChatService(mockRepo, nil, nil)

	_, err := svc.EnsureConversation(context.Background(), "user-c", []string{"user-a", "user-b"})
	require.Error(t, err)
	assert.Equal(t, common.CodePermissionDenied, common.CodeOf(err))
}

func TestChatService_EnsureConversation_RejectsDegenerateSet(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockRepo := mocks.NewMockChatRepository(ctrl)
	svc := NewChatService(mockRepo, nil, nil)

	_, err := svc.EnsureConversation(context.Background(), "user-a", []string{"user-a"})
	require.Error(t, err)
	assert.Equal(t, common.CodeInvalidArgument, common.CodeOf(err))

	_, err = svc.EnsureConversation(context.Background(), "user-a", []string{"user-a", "user-a", " "})
	require.Error(t, err)
	assert.Equal(t, common.CodeInvalidArgument, common.CodeOf(err))
}

func TestChatService_EnsureConversation_LostCreateRace(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockRepo := mocks.NewMockChatRepository(ctrl)
	svc := NewChatService(mockRepo, nil, nil)

	winner := &dbmysql.Conversation{ID: "conv-winner", MemberKey: "user-a,user-b"}

	gomock.InOrder(
		mockRepo.EXPECT().
			ConversationByMemberKey(gomock.Any(), "user-a,user-b").
			Return(nil, gorm.ErrRecordNotFound),
		mockRepo.EXPECT().
			CreateConversation(gomock.Any(), gomock.Any()).
			Return(errors.New("Error 1062: Duplicate entry")),
		mockRepo.EXPECT().
			ConversationByMemberKey(gomock.Any(), "user-a,user-b").
			Return(winner, nil),
	)

	id, err := svc.EnsureConversation(context.Background(), "user-a", []string{"user-a", "user-b"})
	require.NoError(t, err)
	assert.Equal(t, "conv-winner", id)
}

func TestChatService_SendMessage_FanOutExcludesSender(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockRepo := mocks.NewMockChatRepository(ctrl)
	dispatcher := &recordingDispatcher{}
	publisher := &recordingPublisher{}
	svc := NewChatService(mockRepo, dispatcher, publisher)

	conv := &dbmysql.Conversation{ID: "conv-1", MemberKey: "user-a,user-b,user-c"}

	mockRepo.EXPECT().
		ConversationByID(gomock.Any(), "conv-1").
		Return(conv, nil)

	mockRepo.EXPECT().
		SaveMessage(gomock.Any(), gomock.Any()).
		DoAndReturn(func(ctx context.Context, msg *dbmysql.Message) error {
			assert.NotEmpty(t, msg.ID)
			assert.Equal(t, "conv-1", msg.ConversationID)
			assert.Equal(t, "user-a", msg.SenderID)
			assert.Equal(t, "hello", msg.Text)
			assert.WithinDuration(t, time.Now(), msg.CreatedAt, time.Second)
			return nil
		})

	msg, err := svc.SendMessage(context.Background(), "conv-1", "user-a", "  hello  ", nil)
	require.NoError(t, err)
	require.NotNil(t, msg)

	// Exactly one notification per other member, none for the sender.
	require.Len(t, dispatcher.calls, 2)
	recipients := []string{dispatcher.calls[0].recipientID, dispatcher.calls[1].recipientID}
	assert.ElementsMatch(t, []string{"user-b", "user-c"}, recipients)
	for _, call := range dispatcher.calls {
		assert.Equal(t, "conv-1", call.conversationID)
		assert.Equal(t, "user-a", call.senderID)
		assert.Equal(t, "hello", call.preview)
	}

	require.Len(t, publisher.messages, 1)
	assert.Equal(t, msg.ID, publisher.messages[0].ID)
}

func TestChatService_SendMessage_TruncatesNotificationPreview(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockRepo := mocks.NewMockChatRepository(ctrl)
	dispatcher := &recordingDispatcher{}
	svc := NewChatService(mockRepo, dispatcher, nil)

	conv := &dbmysql.Conversation{ID: "conv-1", MemberKey: "user-a,user-b"}
	longText := strings.Repeat("x", 80)

	mockRepo.EXPECT().ConversationByID(gomock.Any(), "conv-1").Return(conv, nil)
	mockRepo.EXPECT().
		SaveMessage(gomock.Any(), gomock.Any()).
		DoAndReturn(func(ctx context.Context, msg *dbmysql.Message) error {
			// The full text is preserved on the message itself.
			assert.Equal(t, longText, msg.Text)
			return nil
		})

	_, err := svc.SendMessage(context.Background(), "conv-1", "user-a", longText, nil)
	require.NoError(t, err)

	require.Len(t, dispatcher.calls, 1)
	assert.Equal(t, strings.Repeat("x", 50)+"…", dispatcher.calls[0].preview)
}

func TestChatService_SendMessage_Validation(t *testing.T) {
	conv := &dbmysql.Conversation{ID: "conv-1", MemberKey: "user-a,user-b"}

	tests := []struct {
		name           string
		conversationID string
		senderID       string
		text           string
		mockSetup      func(m *mocks.MockChatRepository)
		wantCode       common.ErrorCode
	}{
		{
			name:           "conversation not found",
			conversationID: "missing",
			senderID:       "user-a",
			text:           "hi",
			mockSetup: func(m *mocks.MockChatRepository) {
				m.EXPECT().ConversationByID(gomock.Any(), "missing").
					Return(nil, gorm.ErrRecordNotFound)
			},
			wantCode: common.CodeNotFound,
		},
		{
			name:           "sender not a member",
			conversationID: "conv-1",
			senderID:       "user-z",
			text:           "hi",
			mockSetup: func(m *mocks.MockChatRepository) {
				m.EXPECT().ConversationByID(gomock.Any(), "conv-1").Return(conv, nil)
			},
			wantCode: common.CodePermissionDenied,
		},
		{
			name:           "blank text rejected before any write",
			conversationID: "conv-1",
			senderID:       "user-a",
			text:           "   \n\t ",
			mockSetup: func(m *mocks.MockChatRepository) {
				m.EXPECT().ConversationByID(gomock.Any(), "conv-1").Return(conv, nil)
			},
			wantCode: common.CodeInvalidArgument,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			mockRepo := mocks.NewMockChatRepository(ctrl)
			tt.mockSetup(mockRepo)

			dispatcher := &recordingDispatcher{}
			svc := NewChatService(mockRepo, dispatcher, nil)

			msg, err := svc.SendMessage(context.Background(), tt.conversationID, tt.senderID, tt.text, nil)
			require.Error(t, err)
			assert.Nil(t, msg)
			assert.Equal(t, tt.wantCode, common.CodeOf(err))
			assert.Empty(t, dispatcher.calls)
		})
	}
}

func TestChatService_ListMessages_NonMemberGetsEmptyResult(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockRepo := mocks.NewMockChatRepository(ctrl)
	svc := NewChatService(mockRepo, nil, nil)

	mockRepo.EXPECT().
		IsMember(gomock.Any(), "conv-1", "user-z").
		Return(false, nil)

	messages, err := svc.ListMessages(context.Background(), "conv-1", "user-z", 0)
	require.NoError(t, err)
	assert.Empty(t, messages)

	// Unauthenticated callers never reach the repository at all.
	messages, err = svc.ListMessages(context.Background(), "conv-1", "", 0)
	require.NoError(t, err)
	assert.Empty(t, messages)
}

func TestChatService_ListMessages_DefaultLimit(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockRepo := mocks.NewMockChatRepository(ctrl)
	svc := NewChatService(mockRepo, nil, nil)

	stored := []*dbmysql.Message{
		{ID: "m1", ConversationID: "conv-1", SenderID: "user-a", Text: "first"},
		{ID: "m2", ConversationID: "conv-1", SenderID: "user-b", Text: "second"},
	}

	mockRepo.EXPECT().IsMember(gomock.Any(), "conv-1", "user-a").Return(true, nil)
	mockRepo.EXPECT().
		MessagesByConversation(gomock.Any(), "conv-1", 50).
		Return(stored, nil)

	messages, err := svc.ListMessages(context.Background(), "conv-1", "user-a", 0)
	require.NoError(t, err)
	require.Len(t, messages, 2)
	assert.Equal(t, "m1", messages[0].ID)
	assert.Equal(t, "m2", messages[1].ID)
}

func TestChatService_MarkMessagesAsRead(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockRepo := mocks.NewMockChatRepository(ctrl)
	svc := NewChatService(mockRepo, nil, nil)

	mockRepo.EXPECT().IsMember(gomock.Any(), "conv-1", "user-b").Return(true, nil).Times(2)
	mockRepo.EXPECT().MarkConversationRead(gomock.Any(), "conv-1", "user-b").Return(nil).Times(2)

	// Idempotent: a second call is a no-op at the storage layer and must not
	// surface an error.
	require.NoError(t, svc.MarkMessagesAsRead(context.Background(), "conv-1", "user-b"))
	require.NoError(t, svc.MarkMessagesAsRead(context.Background(), "conv-1", "user-b"))
}

func TestChatService_MarkMessagesAsRead_NonMember(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockRepo := mocks.NewMockChatRepository(ctrl)
	svc := NewChatService(mockRepo, nil, nil)

	mockRepo.EXPECT().IsMember(gomock.Any(), "conv-1", "user-z").Return(false, nil)

	err := svc.MarkMessagesAsRead(context.Background(), "conv-1", "user-z")
	require.Error(t, err)
	assert.Equal(t, common.CodePermissionDenied, common.CodeOf(err))
}

func TestChatService_GetUnreadCount(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockRepo := mocks.NewMockChatRepository(ctrl)
	svc := NewChatService(mockRepo, nil, nil)

	mockRepo.EXPECT().IsMember(gomock.Any(), "conv-1", "user-b").Return(true, nil)
	mockRepo.EXPECT().UnreadCount(gomock.Any(), "conv-1", "user-b").Return(int64(3), nil)

	count, err := svc.GetUnreadCount(context.Background(), "conv-1", "user-b")
	require.NoError(t, err)
	assert.Equal(t, int64(3), count)
}

func TestChatService_GetUnreadCount_NonMemberIsZero(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockRepo := mocks.NewMockChatRepository(ctrl)
	svc := NewChatService(mockRepo, nil, nil)

	mockRepo.EXPECT().IsMember(gomock.Any(), "conv-1", "user-z").Return(false, nil)

	count, err := svc.GetUnreadCount(context.Background(), "conv-1", "user-z")
	require.NoError(t, err)
	assert.Zero(t, count)
}

func TestChatService_RemoveUserFromAllConversations(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockRepo := mocks.NewMockChatRepository(ctrl)
	svc := NewChatService(mockRepo, nil, nil)

	mockRepo.EXPECT().
		ConversationIDsForUser(gomock.Any(), "user-a").
		Return([]string{"conv-1", "conv-2"}, nil)
	mockRepo.EXPECT().RemoveMember(gomock.Any(), "conv-1", "user-a").Return(nil)
	mockRepo.EXPECT().RemoveMember(gomock.Any(), "conv-2", "user-a").Return(nil)

	require.NoError(t, svc.RemoveUserFromAllConversations(context.Background(), "user-a"))
}

func TestTruncatePreview(t *testing.T) {
	assert.Equal(t, "short", truncatePreview("short", 50))
	assert.Equal(t, strings.Repeat("a", 50), truncatePreview(strings.Repeat("a", 50), 50))
	assert.Equal(t, strings.Repeat("a", 50)+"…", truncatePreview(strings.Repeat("a", 51), 50))
	// Rune-safe on multi-byte text.
	assert.Equal(t, "ää…", truncatePreview("ääää", 2))
}

func TestChatService_MessageReadBy(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockRepo := mocks.NewMockChatRepository(ctrl)
	svc := NewChatService(mockRepo, nil, nil)

	mockRepo.EXPECT().
		IsMember(gomock.Any(), "conv-1", "user-a").
		Return(true, nil)
	mockRepo.EXPECT().
		ReadBy(gomock.Any(), "conv-1", "msg-1").
		Return([]string{"user-a", "user-b"}, nil)

	readers, err := svc.MessageReadBy(context.Background(), "conv-1", "msg-1", "user-a")
	require.NoError(t, err)
	assert.Equal(t, []string{"user-a", "user-b"}, readers)
}

func TestChatService_MessageReadBy_NonMemberGetsEmptyResult(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockRepo := mocks.NewMockChatRepository(ctrl)
	svc := NewChatService(mockRepo, nil, nil)

	mockRepo.EXPECT().
		IsMember(gomock.Any(), "conv-1", "user-z").
		Return(false, nil)

	readers, err := svc.MessageReadBy(context.Background(), "conv-1", "msg-1", "user-z")
	require.NoError(t, err)
	assert.Empty(t, readers)
}
