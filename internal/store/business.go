package store

import (
	"context"
	"database/sql"

	"github.com/google/uuid"
	"github.com/phrazzld/receipt-api/internal/domain"
)

// BusinessStore persists business profiles. A user owns at most one.
type BusinessStore interface {
	// Create inserts a new business.
	// Returns ErrBusinessExists if the user already owns one.
	Create(ctx context.Context, business *domain.Business) error

	// GetByUserID returns ErrBusinessNotFound if the user has no business.
	GetByUserID(ctx context.Context, userID uuid.UUID) (*domain.Business, error)

	// Update writes every mutable profile column of business.
	// Returns ErrBusinessNotFound if the row does not exist.
	Update(ctx context.Context, business *domain.Business) error

	// WithTx returns a BusinessStore that runs its queries in tx.
	WithTx(tx *sql.Tx) BusinessStore
}
