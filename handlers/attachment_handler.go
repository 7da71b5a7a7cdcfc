package handlers

import (
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/fedsports/registration-system/repositories"
	"github.com/fedsports/registration-system/services"
)

type AttachmentHandler struct {
	attachmentService *services.AttachmentService
	userRepo          repositories.UserRepository
	logger            *slog.Logger
}

func NewAttachmentHandler(attachmentService *services.AttachmentService, userRepo repositories.UserRepository, logger *slog.Logger) *AttachmentHandler {
	return &AttachmentHandler{attachmentService: attachmentService, userRepo: userRepo, logger: logger}
}

// DownloadHandler handles GET /attachments/{attachmentID}/download. The file
// streams through the API so the permission check always runs, whatever the
// storage backend.
func (h *AttachmentHandler) DownloadHandler(w http.ResponseWriter, r *http.Request) {
	user, _, err := sessionUser(r.Context(), h.userRepo)
	if err != nil {
		unauthorizedResponse(w, r, "authentication required")
		return
	}
	attachmentID, err := urlParamInt(r, "attachmentID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	attachment, stream, err := h.attachmentService.Download(r.Context(), attachmentID, user)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	defer stream.Close()

	contentType := attachment.Mime
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", attachment.OriginalName))
	if attachment.SizeBytes > 0 {
		w.Header().Set("Content-Length", fmt.Sprintf("%d", attachment.SizeBytes))
	}

	if _, err := io.Copy(w, stream); err != nil {
		h.logger.Error("failed to stream attachment",
			slog.Int("attachment_id", attachmentID), slog.Any("error", err))
	}
}
