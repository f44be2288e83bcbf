package handler

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"

	"agromarket/internal/chat/service"
	"agromarket/internal/common"
	"agromarket/internal/dbmysql"
)

type ChatHandler struct {
	service service.ChatService
}

func NewChatHandler(s service.ChatService) *ChatHandler {
	return &ChatHandler{service: s}
}

// RegisterRoutes mounts the conversation API on an authenticated subrouter.
func (h *ChatHandler) RegisterRoutes(r *mux.Router) {
	r.HandleFunc("/conversations", h.EnsureConversation).Methods(http.MethodPost)
	r.HandleFunc("/conversations", h.ListConversations).Methods(http.MethodGet)
	r.HandleFunc("/conversations/{id}/messages", h.SendMessage).Methods(http.MethodPost)
	r.HandleFunc("/conversations/{id}/messages", h.ListMessages).Methods(http.MethodGet)
	r.HandleFunc("/conversations/{id}/messages/{messageID}/reads", h.MessageReads).Methods(http.MethodGet)
	r.HandleFunc("/conversations/{id}/read", h.MarkRead).Methods(http.MethodPost)
	r.HandleFunc("/conversations/{id}/unread-count", h.UnreadCount).Methods(http.MethodGet)
}

type ensureConversationRequest struct {
	MemberIDs []string `json:"member_ids"`
}

type sendMessageRequest struct {
	Text         string  `json:"text"`
	AttachmentID *string `json:"attachment_id,omitempty"`
}

type messageResponse struct {
	ID             string    `json:"id"`
	ConversationID string    `json:"conversation_id"`
	SenderID       string    `json:"sender_id"`
	Text           string    `json:"text"`
	AttachmentID   *string   `json:"attachment_id,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
}

type conversationResponse struct {
	ID                  string     `json:"id"`
	MemberIDs           []string   `json:"member_ids"`
	CreatedAt           time.Time  `json:"created_at"`
	LastMessageAt       *time.Time `json:"last_message_at,omitempty"`
	LastMessageText     *string    `json:"last_message_text,omitempty"`
	LastMessageSenderID *string    `json:"last_message_sender_id,omitempty"`
}

func (h *ChatHandler) EnsureConversation(w http.ResponseWriter, r *http.Request) {
	actorID, ok := common.UserIDFromContext(r.Context())
	if !ok {
		common.WriteError(w, common.Unauthenticated("authentication required"))
		return
	}

	var req ensureConversationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		common.WriteError(w, common.InvalidArg("invalid request body"))
		return
	}

	id, err := h.service.EnsureConversation(r.Context(), actorID, req.MemberIDs)
	if err != nil {
		common.WriteError(w, err)
		return
	}

	common.WriteJSON(w, http.StatusOK, map[string]string{"conversation_id": id})
}

func (h *ChatHandler) ListConversations(w http.ResponseWriter, r *http.Request) {
	userID, ok := common.UserIDFromContext(r.Context())
	if !ok {
		common.WriteError(w, common.Unauthenticated("authentication required"))
		return
	}

	convs, err := h.service.ListConversations(r.Context(), userID)
	if err != nil {
		common.WriteError(w, err)
		return
	}

	out := make([]conversationResponse, len(convs))
	for i, conv := range convs {
		out[i] = toConversationResponse(conv)
	}

	common.WriteJSON(w, http.StatusOK, out)
}

func (h *ChatHandler) SendMessage(w http.ResponseWriter, r *http.Request) {
	senderID, ok := common.UserIDFromContext(r.Context())
	if !ok {
		common.WriteError(w, common.Unauthenticated("authentication required"))
		return
	}

	conversationID := mux.Vars(r)["id"]

	var req sendMessageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		common.WriteError(w, common.InvalidArg("invalid request body"))
		return
	}

	msg, err := h.service.SendMessage(r.Context(), conversationID, senderID, req.Text, req.AttachmentID)
	if err != nil {
		common.WriteError(w, err)
		return
	}

	common.WriteJSON(w, http.StatusCreated, toMessageResponse(msg))
}

func (h *ChatHandler) ListMessages(w http.ResponseWriter, r *http.Request) {
	requesterID, _ := common.UserIDFromContext(r.Context())
	conversationID := mux.Vars(r)["id"]

	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil {
			limit = n
		}
	}

	messages, err := h.service.ListMessages(r.Context(), conversationID, requesterID, limit)
	if err != nil {
		common.WriteError(w, err)
		return
	}

	out := make([]messageResponse, len(messages))
	for i, msg := range messages {
		out[i] = toMessageResponse(msg)
	}

	common.WriteJSON(w, http.StatusOK, out)
}

func (h *ChatHandler) MessageReads(w http.ResponseWriter, r *http.Request) {
	requesterID, ok := common.UserIDFromContext(r.Context())
	if !ok {
		common.WriteError(w, common.Unauthenticated("authentication required"))
		return
	}

	vars := mux.Vars(r)
	readers, err := h.service.MessageReadBy(r.Context(), vars["id"], vars["messageID"], requesterID)
	if err != nil {
		common.WriteError(w, err)
		return
	}

	common.WriteJSON(w, http.StatusOK, map[string][]string{"read_by": readers})
}

func (h *ChatHandler) MarkRead(w http.ResponseWriter, r *http.Request) {
	readerID, ok := common.UserIDFromContext(r.Context())
	if !ok {
		common.WriteError(w, common.Unauthenticated("authentication required"))
		return
	}

	conversationID := mux.Vars(r)["id"]

	if err := h.service.MarkMessagesAsRead(r.Context(), conversationID, readerID); err != nil {
		common.WriteError(w, err)
		return
	}

	common.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *ChatHandler) UnreadCount(w http.ResponseWriter, r *http.Request) {
	userID, _ := common.UserIDFromContext(r.Context())
	conversationID := mux.Vars(r)["id"]

	count, err := h.service.GetUnreadCount(r.Context(), conversationID, userID)
	if err != nil {
		common.WriteError(w, err)
		return
	}

	common.WriteJSON(w, http.StatusOK, map[string]int64{"unread_count": count})
}

func toMessageResponse(msg *dbmysql.Message) messageResponse {
	return messageResponse{
		ID:             msg.ID,
		ConversationID: msg.ConversationID,
		SenderID:       msg.SenderID,
		Text:           msg.Text,
		AttachmentID:   msg.AttachmentID,
		CreatedAt:      msg.CreatedAt,
	}
}

func toConversationResponse(conv *dbmysql.Conversation) conversationResponse {
	return conversationResponse{
		ID:                  conv.ID,
		MemberIDs:           conv.MemberIDs(),
		CreatedAt:           conv.CreatedAt,
		LastMessageAt:       conv.LastMessageAt,
		LastMessageText:     conv.LastMessageText,
		LastMessageSenderID: conv.LastMessageSenderID,
	}
}
