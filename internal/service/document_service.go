package service

import (
	"context"
	"errors"
	"log/slog"

	"github.com/google/uuid"
	"github.com/phrazzld/receipt-api/internal/domain"
	"github.com/phrazzld/receipt-api/internal/platform/logger"
	"github.com/phrazzld/receipt-api/internal/store"
)

// MaxNumberAttempts bounds how many document numbers are tried before
// giving up with ErrNumberConflict.
const MaxNumberAttempts = 3

// History is the combined document list of a user.
type History struct {
	Receipts []*domain.Receipt `json:"receipts"`
	Invoices []*domain.Invoice `json:"invoices"`
}

// DocumentService issues and reads receipts and invoices. Documents owned by
// another user are reported as not found.
type DocumentService interface {
	CreateReceipt(ctx context.Context, userID uuid.UUID, in domain.ReceiptInput) (*domain.Receipt, error)
	GetReceipt(ctx context.Context, userID, receiptID uuid.UUID) (*domain.Receipt, error)
	ListReceipts(ctx context.Context, userID uuid.UUID) ([]*domain.Receipt, error)

	CreateInvoice(ctx context.Context, userID uuid.UUID, in domain.InvoiceInput) (*domain.Invoice, error)
	GetInvoice(ctx context.Context, userID, invoiceID uuid.UUID) (*domain.Invoice, error)
	ListInvoices(ctx context.Context, userID uuid.UUID) ([]*domain.Invoice, error)
	UpdateInvoice(ctx context.Context, userID, invoiceID uuid.UUID, u domain.InvoiceUpdate) (*domain.Invoice, error)

	History(ctx context.Context, userID uuid.UUID) (*History, error)
}

type documentServiceImpl struct {
	businesses store.BusinessStore
	receipts   store.ReceiptStore
	invoices   store.InvoiceStore
	recorder   Recorder
	logger     *slog.Logger
}

// NewDocumentService creates a new DocumentService. recorder may be nil.
func NewDocumentService(
	businesses store.BusinessStore,
	receipts store.ReceiptStore,
	invoices store.InvoiceStore,
	recorder Recorder,
	logger *slog.Logger,
) DocumentService {
	if logger == nil {
		logger = slog.Default()
	}
	return &documentServiceImpl{
		businesses: businesses,
		receipts:   receipts,
		invoices:   invoices,
		recorder:   recorderOrNop(recorder),
		logger:     logger.With(slog.String("component", "document_service")),
	}
}

// CreateReceipt implements DocumentService.CreateReceipt
func (s *documentServiceImpl) CreateReceipt(
	ctx context.Context,
	userID uuid.UUID,
	in domain.ReceiptInput,
) (*domain.Receipt, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	business, err := s.businesses.GetByUserID(ctx, userID)
	if err != nil {
		return nil, NewServiceError("document", "create_receipt", err)
	}

	receipt, err := domain.NewReceipt(userID, business.ID, in)
	if err != nil {
		return nil, err
	}
	s.checkAmounts(log, domain.DocumentKindReceipt, receipt.Amounts, receipt.Items)

	err = withFreshNumber(func(attempt int) error {
		if attempt > 0 {
			receipt.ReceiptNumber = domain.GenerateNumber(domain.DocumentKindReceipt)
		}
		return s.receipts.Create(ctx, receipt)
	})
	if err != nil {
		if !errors.Is(err, ErrNumberConflict) {
			log.Error("failed to create receipt",
				slog.String("error", err.Error()),
				slog.String("user_id", userID.String()))
		}
		return nil, NewServiceError("document", "create_receipt", err)
	}

	s.recorder.DocumentCreated(domain.DocumentKindReceipt)
	return receipt, nil
}

// GetReceipt implements DocumentService.GetReceipt
func (s *documentServiceImpl) GetReceipt(ctx context.Context, userID, receiptID uuid.UUID) (*domain.Receipt, error) {
	receipt, err := s.receipts.GetByID(ctx, receiptID)
	if err != nil {
		return nil, NewServiceError("document", "get_receipt", err)
	}
	if receipt.UserID != userID {
		return nil, ErrReceiptNotFound
	}
	return receipt, nil
}

// ListReceipts implements DocumentService.ListReceipts
func (s *documentServiceImpl) ListReceipts(ctx context.Context, userID uuid.UUID) ([]*domain.Receipt, error) {
	receipts, err := s.receipts.ListByUser(ctx, userID)
	if err != nil {
		return nil, NewServiceError("document", "list_receipts", err)
	}
	return receipts, nil
}

// CreateInvoice implements DocumentService.CreateInvoice
func (s *documentServiceImpl) CreateInvoice(
	ctx context.Context,
	userID uuid.UUID,
	in domain.InvoiceInput,
) (*domain.Invoice, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	business, err := s.businesses.GetByUserID(ctx, userID)
	if err != nil {
		return nil, NewServiceError("document", "create_invoice", err)
	}

	invoice, err := domain.NewInvoice(userID, business.ID, in)
	if err != nil {
		return nil, err
	}
	s.checkAmounts(log, domain.DocumentKindInvoice, invoice.Amounts, invoice.Items)

	err = withFreshNumber(func(attempt int) error {
		if attempt > 0 {
			invoice.InvoiceNumber = domain.GenerateNumber(domain.DocumentKindInvoice)
		}
		return s.invoices.Create(ctx, invoice)
	})
	if err != nil {
		if !errors.Is(err, ErrNumberConflict) {
			log.Error("failed to create invoice",
				slog.String("error", err.Error()),
				slog.String("user_id", userID.String()))
		}
		return nil, NewServiceError("document", "create_invoice", err)
	}

	s.recorder.DocumentCreated(domain.DocumentKindInvoice)
	return invoice, nil
}

// GetInvoice implements DocumentService.GetInvoice
func (s *documentServiceImpl) GetInvoice(ctx context.Context, userID, invoiceID uuid.UUID) (*domain.Invoice, error) {
	invoice, err := s.invoices.GetByID(ctx, invoiceID)
	if err != nil {
		return nil, NewServiceError("document", "get_invoice", err)
	}
	if invoice.UserID != userID {
		return nil, ErrInvoiceNotFound
	}
	return invoice, nil
}

// ListInvoices implements DocumentService.ListInvoices
func (s *documentServiceImpl) ListInvoices(ctx context.Context, userID uuid.UUID) ([]*domain.Invoice, error) {
	invoices, err := s.invoices.ListByUser(ctx, userID)
	if err != nil {
		return nil, NewServiceError("document", "list_invoices", err)
	}
	return invoices, nil
}

// UpdateInvoice implements DocumentService.UpdateInvoice
func (s *documentServiceImpl) UpdateInvoice(
	ctx context.Context,
	userID, invoiceID uuid.UUID,
	u domain.InvoiceUpdate,
) (*domain.Invoice, error) {
	invoice, err := s.GetInvoice(ctx, userID, invoiceID)
	if err != nil {
		return nil, err
	}

	if err := invoice.Apply(u); err != nil {
		return nil, err
	}
	if err := s.invoices.Update(ctx, invoice); err != nil {
		logger.FromContextOrDefault(ctx, s.logger).Error("failed to update invoice",
			slog.String("error", err.Error()),
			slog.String("invoice_id", invoiceID.String()))
		return nil, NewServiceError("document", "update_invoice", err)
	}
	return invoice, nil
}

// History implements DocumentService.History
func (s *documentServiceImpl) History(ctx context.Context, userID uuid.UUID) (*History, error) {
	receipts, err := s.ListReceipts(ctx, userID)
	if err != nil {
		return nil, err
	}
	invoices, err := s.ListInvoices(ctx, userID)
	if err != nil {
		return nil, err
	}
	return &History{Receipts: receipts, Invoices: invoices}, nil
}

// checkAmounts logs when the subtotal disagrees with the item totals.
// Amounts are stored as supplied either way.
func (s *documentServiceImpl) checkAmounts(
	log *slog.Logger,
	kind domain.DocumentKind,
	amounts domain.Amounts,
	items domain.Items,
) {
	if amounts.MatchesItems(items) {
		return
	}
	log.Warn("subtotal does not match item totals",
		slog.String("document_kind", string(kind)),
		slog.Float64("subtotal", amounts.Subtotal),
		slog.String("items_sum", items.Sum().StringFixed(2)))
}

// withFreshNumber calls create until it succeeds, fails with something other
// than a number collision, or MaxNumberAttempts is reached.
func withFreshNumber(create func(attempt int) error) error {
	for attempt := 0; attempt < MaxNumberAttempts; attempt++ {
		err := create(attempt)
		if err == nil {
			return nil
		}
		if !errors.Is(err, store.ErrDuplicateNumber) {
			return err
		}
	}
	return ErrNumberConflict
}
