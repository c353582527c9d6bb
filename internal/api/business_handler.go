package api

import (
	"log/slog"
	"net/http"

	"github.com/phrazzld/receipt-api/internal/api/shared"
	"github.com/phrazzld/receipt-api/internal/platform/logger"
	"github.com/phrazzld/receipt-api/internal/service"
)

// BusinessHandler serves the caller's business profile.
type BusinessHandler struct {
	businesses service.BusinessService
	logger     *slog.Logger
}

// NewBusinessHandler creates a new BusinessHandler.
func NewBusinessHandler(businesses service.BusinessService, logger *slog.Logger) *BusinessHandler {
	if logger == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("logger cannot be nil for BusinessHandler")
	}
	return &BusinessHandler{
		businesses: businesses,
		logger:     logger.With(slog.String("component", "business_handler")),
	}
}

// CreateOrUpdate handles POST /business/. It answers 201 when the profile
// was created and 200 when an existing one was updated.
func (h *BusinessHandler) CreateOrUpdate(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	userID, ok := requireUserID(w, r, log)
	if !ok {
		return
	}

	var req BusinessRequest
	if !decodeAndValidate(w, r, &req, log) {
		return
	}

	business, created, err := h.businesses.CreateOrUpdate(r.Context(), userID, req.toPatch())
	if err != nil {
		HandleAPIError(w, r, err, "Failed to save business profile")
		return
	}

	status := http.StatusOK
	if created {
		status = http.StatusCreated
	}
	shared.RespondWithJSON(w, r, status, business)
}

// Get handles GET /business/.
func (h *BusinessHandler) Get(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	userID, ok := requireUserID(w, r, log)
	if !ok {
		return
	}

	business, err := h.businesses.Get(r.Context(), userID)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to load business profile")
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, business)
}

// Update handles PATCH /business/.
func (h *BusinessHandler) Update(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	userID, ok := requireUserID(w, r, log)
	if !ok {
		return
	}

	var req BusinessRequest
	if !decodeAndValidate(w, r, &req, log) {
		return
	}

	business, err := h.businesses.Update(r.Context(), userID, req.toPatch())
	if err != nil {
		HandleAPIError(w, r, err, "Failed to update business profile")
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, business)
}
