package store

import (
	"context"
	"database/sql"

	"github.com/google/uuid"
	"github.com/phrazzld/receipt-api/internal/domain"
)

// InvoiceStore persists invoices.
type InvoiceStore interface {
	// Create inserts an invoice.
	// Returns ErrDuplicateNumber if the invoice number is taken.
	Create(ctx context.Context, invoice *domain.Invoice) error

	// GetByID returns ErrInvoiceNotFound if the invoice does not exist.
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Invoice, error)

	// GetForBusiness returns the invoice only if it belongs to businessID,
	// ErrInvoiceNotFound otherwise.
	GetForBusiness(ctx context.Context, id, businessID uuid.UUID) (*domain.Invoice, error)

	// ListByUser returns the user's invoices, newest first.
	ListByUser(ctx context.Context, userID uuid.UUID) ([]*domain.Invoice, error)

	// ListIDsByBusiness returns the ids of every invoice under businessID.
	ListIDsByBusiness(ctx context.Context, businessID uuid.UUID) ([]uuid.UUID, error)

	// Update writes the invoice's status and notes.
	// Returns ErrInvoiceNotFound if the row does not exist.
	Update(ctx context.Context, invoice *domain.Invoice) error

	// WithTx returns an InvoiceStore that runs its queries in tx.
	WithTx(tx *sql.Tx) InvoiceStore
}
