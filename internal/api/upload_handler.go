package api

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/google/uuid"
	"github.com/phrazzld/receipt-api/internal/api/shared"
	"github.com/phrazzld/receipt-api/internal/media"
	"github.com/phrazzld/receipt-api/internal/platform/logger"
	"github.com/phrazzld/receipt-api/internal/redact"
	"github.com/phrazzld/receipt-api/internal/service"
)

// multipartOverhead is allowed on top of the file limit for form framing.
const multipartOverhead = 1 << 20

// LogoUploader processes and stores a logo image.
type LogoUploader interface {
	UploadLogo(ctx context.Context, userID uuid.UUID, filename string, data []byte) (*media.Upload, error)
}

// UploadHandler accepts logo uploads.
type UploadHandler struct {
	uploader   LogoUploader
	businesses service.BusinessService
	maxBytes   int64
	logger     *slog.Logger
}

// NewUploadHandler creates a new UploadHandler. maxBytes bounds the size of
// the uploaded file.
func NewUploadHandler(
	uploader LogoUploader,
	businesses service.BusinessService,
	maxBytes int64,
	logger *slog.Logger,
) *UploadHandler {
	if logger == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("logger cannot be nil for UploadHandler")
	}
	if maxBytes <= 0 {
		maxBytes = media.DefaultMaxBytes
	}
	return &UploadHandler{
		uploader:   uploader,
		businesses: businesses,
		maxBytes:   maxBytes,
		logger:     logger.With(slog.String("component", "upload_handler")),
	}
}

// UploadLogo handles POST /upload/logo with the image in the multipart
// field "file". When the caller already has a business its logo_url is
// updated as well.
func (h *UploadHandler) UploadLogo(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	userID, ok := requireUserID(w, r, log)
	if !ok {
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, h.maxBytes+multipartOverhead)
	file, header, err := r.FormFile("file")
	if err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			HandleAPIError(w, r, media.ErrTooLarge, "")
			return
		}
		log.Debug("missing upload file", slog.String("error", redact.Error(err)))
		shared.RespondWithError(w, r, http.StatusBadRequest, "A file is required in the \"file\" field")
		return
	}
	defer func() { _ = file.Close() }()

	if err := media.CheckExtension(header.Filename); err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	data, err := io.ReadAll(io.LimitReader(file, h.maxBytes+1))
	if err != nil {
		HandleAPIError(w, r, fmt.Errorf("failed to read upload: %w", err), "Error uploading file")
		return
	}
	if int64(len(data)) > h.maxBytes {
		HandleAPIError(w, r, media.ErrTooLarge, "")
		return
	}

	upload, err := h.uploader.UploadLogo(r.Context(), userID, header.Filename, data)
	if err != nil {
		HandleAPIError(w, r, err, "Error uploading file")
		return
	}

	if _, err := h.businesses.SetLogo(r.Context(), userID, upload.LogoURL); err != nil &&
		!errors.Is(err, service.ErrBusinessNotFound) {
		log.Warn("failed to record logo on business profile", slog.String("error", redact.Error(err)))
	}

	shared.RespondWithJSON(w, r, http.StatusOK, upload)
}
