package api

import (
	"log/slog"
	"net/http"

	"github.com/phrazzld/receipt-api/internal/api/shared"
	"github.com/phrazzld/receipt-api/internal/domain"
	"github.com/phrazzld/receipt-api/internal/platform/logger"
	"github.com/phrazzld/receipt-api/internal/service"
)

// ReceiptHandler serves the caller's receipts.
type ReceiptHandler struct {
	documents service.DocumentService
	logger    *slog.Logger
}

// NewReceiptHandler creates a new ReceiptHandler.
func NewReceiptHandler(documents service.DocumentService, logger *slog.Logger) *ReceiptHandler {
	if logger == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("logger cannot be nil for ReceiptHandler")
	}
	return &ReceiptHandler{
		documents: documents,
		logger:    logger.With(slog.String("component", "receipt_handler")),
	}
}

// Create handles POST /receipts/.
func (h *ReceiptHandler) Create(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	userID, ok := requireUserID(w, r, log)
	if !ok {
		return
	}

	var req ReceiptRequest
	if !decodeAndValidate(w, r, &req, log) {
		return
	}

	receipt, err := h.documents.CreateReceipt(r.Context(), userID, req.toInput())
	if err != nil {
		HandleAPIError(w, r, err, "Failed to create receipt")
		return
	}
	shared.RespondWithJSON(w, r, http.StatusCreated, receipt)
}

// List handles GET /receipts/.
func (h *ReceiptHandler) List(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	userID, ok := requireUserID(w, r, log)
	if !ok {
		return
	}

	receipts, err := h.documents.ListReceipts(r.Context(), userID)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to list receipts")
		return
	}
	if receipts == nil {
		receipts = []*domain.Receipt{}
	}
	shared.RespondWithJSON(w, r, http.StatusOK, receipts)
}

// Get handles GET /receipts/{id}.
func (h *ReceiptHandler) Get(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	userID, receiptID, ok := handleUserIDAndPathUUID(w, r, "id", log)
	if !ok {
		return
	}

	receipt, err := h.documents.GetReceipt(r.Context(), userID, receiptID)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to load receipt")
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, receipt)
}

// InvoiceHandler serves the caller's invoices.
type InvoiceHandler struct {
	documents service.DocumentService
	logger    *slog.Logger
}

// NewInvoiceHandler creates a new InvoiceHandler.
func NewInvoiceHandler(documents service.DocumentService, logger *slog.Logger) *InvoiceHandler {
	if logger == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("logger cannot be nil for InvoiceHandler")
	}
	return &InvoiceHandler{
		documents: documents,
		logger:    logger.With(slog.String("component", "invoice_handler")),
	}
}

// Create handles POST /invoices/.
func (h *InvoiceHandler) Create(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	userID, ok := requireUserID(w, r, log)
	if !ok {
		return
	}

	var req InvoiceRequest
	if !decodeAndValidate(w, r, &req, log) {
		return
	}

	invoice, err := h.documents.CreateInvoice(r.Context(), userID, req.toInput())
	if err != nil {
		HandleAPIError(w, r, err, "Failed to create invoice")
		return
	}
	shared.RespondWithJSON(w, r, http.StatusCreated, invoice)
}

// List handles GET /invoices/.
func (h *InvoiceHandler) List(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	userID, ok := requireUserID(w, r, log)
	if !ok {
		return
	}

	invoices, err := h.documents.ListInvoices(r.Context(), userID)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to list invoices")
		return
	}
	if invoices == nil {
		invoices = []*domain.Invoice{}
	}
	shared.RespondWithJSON(w, r, http.StatusOK, invoices)
}

// Get handles GET /invoices/{id}.
func (h *InvoiceHandler) Get(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	userID, invoiceID, ok := handleUserIDAndPathUUID(w, r, "id", log)
	if !ok {
		return
	}

	invoice, err := h.documents.GetInvoice(r.Context(), userID, invoiceID)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to load invoice")
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, invoice)
}

// Update handles PATCH /invoices/{id}. Only status and notes may change.
func (h *InvoiceHandler) Update(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	userID, invoiceID, ok := handleUserIDAndPathUUID(w, r, "id", log)
	if !ok {
		return
	}

	var req InvoiceUpdateRequest
	if !decodeAndValidate(w, r, &req, log) {
		return
	}

	invoice, err := h.documents.UpdateInvoice(r.Context(), userID, invoiceID, domain.InvoiceUpdate{
		Status: req.Status,
		Notes:  req.Notes,
	})
	if err != nil {
		HandleAPIError(w, r, err, "Failed to update invoice")
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, invoice)
}
