package notif

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"agromarket/internal/common"
)

type NotificationHandler struct {
	service *NotificationService
}

func NewNotificationHandler(service *NotificationService) *NotificationHandler {
	return &NotificationHandler{service: service}
}

func (h *NotificationHandler) RegisterRoutes(r *mux.Router) {
	r.HandleFunc("/notifications", h.List).Methods(http.MethodGet)
	r.HandleFunc("/notifications/unread-count", h.UnreadCount).Methods(http.MethodGet)
	r.HandleFunc("/notifications/read-all", h.MarkAllRead).Methods(http.MethodPost)
	r.HandleFunc("/notifications/{id}/read", h.MarkRead).Methods(http.MethodPost)
	r.HandleFunc("/devices", h.RegisterDevice).Methods(http.MethodPost)
	r.HandleFunc("/devices/{token}", h.UnregisterDevice).Methods(http.MethodDelete)
}

func (h *NotificationHandler) List(w http.ResponseWriter, r *http.Request) {
	userID, ok := common.UserIDFromContext(r.Context())
	if !ok {
		common.WriteError(w, common.Unauthenticated("authentication required"))
		return
	}

	limit := queryInt(r, "limit", 50)
	offset := queryInt(r, "offset", 0)

	notifications, err := h.service.GetUserNotifications(r.Context(), userID, limit, offset)
	if err != nil {
		common.WriteError(w, common.Internal("failed to list notifications", err))
		return
	}

	common.WriteJSON(w, http.StatusOK, notifications)
}

func (h *NotificationHandler) UnreadCount(w http.ResponseWriter, r *http.Request) {
	userID, ok := common.UserIDFromContext(r.Context())
	if !ok {
		common.WriteError(w, common.Unauthenticated("authentication required"))
		return
	}

	count, err := h.service.UnreadCount(r.Context(), userID)
	if err != nil {
		common.WriteError(w, common.Internal("failed to count notifications", err))
		return
	}

	common.WriteJSON(w, http.StatusOK, map[string]int64{"unread_count": count})
}

func (h *NotificationHandler) MarkRead(w http.ResponseWriter, r *http.Request) {
	userID, ok := common.UserIDFromContext(r.Context())
	if !ok {
		common.WriteError(w, common.Unauthenticated("authentication required"))
		return
	}

	notificationID := mux.Vars(r)["id"]

	if err := h.service.MarkAsRead(r.Context(), notificationID, userID); err != nil {
		common.WriteError(w, common.NotFound("notification not found"))
		return
	}

	common.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *NotificationHandler) MarkAllRead(w http.ResponseWriter, r *http.Request) {
	userID, ok := common.UserIDFromContext(r.Context())
	if !ok {
		common.WriteError(w, common.Unauthenticated("authentication required"))
		return
	}

	if err := h.service.MarkAllAsRead(r.Context(), userID); err != nil {
		common.WriteError(w, common.Internal("failed to mark notifications read", err))
		return
	}

	common.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

type registerDeviceRequest struct {
	DeviceToken string `json:"device_token"`
	Platform    string `json:"platform"`
}

func (h *NotificationHandler) RegisterDevice(w http.ResponseWriter, r *http.Request) {
	userID, ok := common.UserIDFromContext(r.Context())
	if !ok {
		common.WriteError(w, common.Unauthenticated("authentication required"))
		return
	}

	var req registerDeviceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		common.WriteError(w, common.InvalidArg("invalid request body"))
		return
	}

	if req.DeviceToken == "" || req.Platform == "" {
		common.WriteError(w, common.InvalidArg("device_token and platform are required"))
		return
	}

	if err := h.service.RegisterDeviceToken(r.Context(), userID, req.DeviceToken, req.Platform); err != nil {
		common.WriteError(w, common.Internal("failed to register device", err))
		return
	}

	common.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// UnregisterDevice is called on logout so push stops targeting the device.
func (h *NotificationHandler) UnregisterDevice(w http.ResponseWriter, r *http.Request) {
	if _, ok := common.UserIDFromContext(r.Context()); !ok {
		common.WriteError(w, common.Unauthenticated("authentication required"))
		return
	}

	token := mux.Vars(r)["token"]
	if err := h.service.UnregisterDeviceToken(r.Context(), token); err != nil {
		common.WriteError(w, common.Internal("failed to unregister device", err))
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func queryInt(r *http.Request, key string, fallback int) int {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return fallback
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return n
}
