package handler

import (
	"fmt"
	"io"
	"log"
	"net/http"

	"github.com/gorilla/mux"

	"agromarket/internal/common"
	"agromarket/internal/dbmongo"
)

// AttachmentHandler uploads and serves message attachments stored in GridFS.
type AttachmentHandler struct {
	storage *dbmongo.AttachmentStorage
}

func NewAttachmentHandler(storage *dbmongo.AttachmentStorage) *AttachmentHandler {
	return &AttachmentHandler{storage: storage}
}

func (h *AttachmentHandler) RegisterRoutes(r *mux.Router) {
	r.HandleFunc("/attachments", h.Upload).Methods(http.MethodPost)
	r.HandleFunc("/attachments/{id}", h.Download).Methods(http.MethodGet)
}

func (h *AttachmentHandler) Upload(w http.ResponseWriter, r *http.Request) {
	userID, ok := common.UserIDFromContext(r.Context())
	if !ok {
		common.WriteError(w, common.Unauthenticated("missing user identity"))
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		common.WriteError(w, common.InvalidArg("missing file field"))
		return
	}
	defer file.Close()

	mimeType := header.Header.Get("Content-Type")
	attachment, err := h.storage.Upload(r.Context(), header.Filename, mimeType, userID, file)
	if err != nil {
		common.WriteError(w, err)
		return
	}

	common.WriteJSON(w, http.StatusCreated, attachment)
}

func (h *AttachmentHandler) Download(w http.ResponseWriter, r *http.Request) {
	stream, attachment, err := h.storage.Download(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		common.WriteError(w, err)
		return
	}
	defer stream.Close()

	contentType := attachment.MimeType
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Length", fmt.Sprintf("%d", attachment.Size))

	if _, err := io.Copy(w, stream); err != nil {
		log.Printf("attachment stream interrupted: %v", err)
	}
}
