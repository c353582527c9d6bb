package store

import (
	"context"
	"database/sql"

	"github.com/google/uuid"
	"github.com/phrazzld/receipt-api/internal/domain"
)

// ReceiptStore persists receipts.
type ReceiptStore interface {
	// Create inserts a receipt.
	// Returns ErrDuplicateNumber if the receipt number is taken.
	Create(ctx context.Context, receipt *domain.Receipt) error

	// GetByID returns ErrReceiptNotFound if the receipt does not exist.
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Receipt, error)

	// GetForBusiness returns the receipt only if it belongs to businessID,
	// ErrReceiptNotFound otherwise.
	GetForBusiness(ctx context.Context, id, businessID uuid.UUID) (*domain.Receipt, error)

	// ListByUser returns the user's receipts, newest first.
	ListByUser(ctx context.Context, userID uuid.UUID) ([]*domain.Receipt, error)

	// ListIDsByBusiness returns the ids of every receipt under businessID.
	ListIDsByBusiness(ctx context.Context, businessID uuid.UUID) ([]uuid.UUID, error)

	// WithTx returns a ReceiptStore that runs its queries in tx.
	WithTx(tx *sql.Tx) ReceiptStore
}
