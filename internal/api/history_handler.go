package api

import (
	"log/slog"
	"net/http"

	"github.com/phrazzld/receipt-api/internal/api/shared"
	"github.com/phrazzld/receipt-api/internal/domain"
	"github.com/phrazzld/receipt-api/internal/platform/logger"
	"github.com/phrazzld/receipt-api/internal/service"
)

// HistoryHandler serves the combined document history and the challenge
// workflow.
type HistoryHandler struct {
	documents service.DocumentService
	disputes  service.DisputeService
	logger    *slog.Logger
}

// NewHistoryHandler creates a new HistoryHandler.
func NewHistoryHandler(
	documents service.DocumentService,
	disputes service.DisputeService,
	logger *slog.Logger,
) *HistoryHandler {
	if logger == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("logger cannot be nil for HistoryHandler")
	}
	return &HistoryHandler{
		documents: documents,
		disputes:  disputes,
		logger:    logger.With(slog.String("component", "history_handler")),
	}
}

// List handles GET /history/.
func (h *HistoryHandler) List(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	userID, ok := requireUserID(w, r, log)
	if !ok {
		return
	}

	history, err := h.documents.History(r.Context(), userID)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to load history")
		return
	}
	if history.Receipts == nil {
		history.Receipts = []*domain.Receipt{}
	}
	if history.Invoices == nil {
		history.Invoices = []*domain.Invoice{}
	}
	shared.RespondWithJSON(w, r, http.StatusOK, history)
}

// CreateChallenge handles POST /history/challenge. It is public: anyone
// holding a document id may dispute it.
func (h *HistoryHandler) CreateChallenge(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	var req ChallengeRequest
	if !decodeAndValidate(w, r, &req, log) {
		return
	}

	ref, err := domain.NewDocumentRef(req.ReceiptID, req.InvoiceID)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	challenge, err := h.disputes.CreateChallenge(r.Context(), domain.ChallengeInput{
		Document:        ref,
		ChallengerName:  req.ChallengerName,
		ChallengerEmail: req.ChallengerEmail,
		ChallengerPhone: req.ChallengerPhone,
		Reason:          req.Reason,
	})
	if err != nil {
		HandleAPIError(w, r, err, "Failed to create challenge")
		return
	}
	shared.RespondWithJSON(w, r, http.StatusCreated, challengeToResponse(challenge))
}

// ListChallenges handles GET /history/challenges.
func (h *HistoryHandler) ListChallenges(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	userID, ok := requireUserID(w, r, log)
	if !ok {
		return
	}

	challenges, err := h.disputes.ListChallengesForOwner(r.Context(), userID)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to list challenges")
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, challengesToResponse(challenges))
}

// ResolveChallenge handles PATCH /history/challenges/{id}. The outcome is
// read from the status and resolution_notes query parameters when status is
// present there, and from the JSON body otherwise.
func (h *HistoryHandler) ResolveChallenge(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	userID, challengeID, ok := handleUserIDAndPathUUID(w, r, "id", log)
	if !ok {
		return
	}

	var req ChallengeResolveRequest
	query := r.URL.Query()
	if query.Has("status") {
		req.Status = query.Get("status")
		if query.Has("resolution_notes") {
			notes := query.Get("resolution_notes")
			req.ResolutionNotes = &notes
		}
		if err := shared.ValidateRequest(&req); err != nil {
			shared.RespondWithErrorAndLog(w, r, http.StatusBadRequest, SanitizeValidationError(err), err)
			return
		}
	} else if !decodeAndValidate(w, r, &req, log) {
		return
	}

	challenge, err := h.disputes.ResolveChallenge(r.Context(), userID, challengeID, req.Status, req.ResolutionNotes)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to resolve challenge")
		return
	}

	log.Info("challenge resolved",
		slog.String("challenge_id", challengeID.String()),
		slog.String("status", string(challenge.Status)))
	shared.RespondWithJSON(w, r, http.StatusOK, challengeToResponse(challenge))
}
