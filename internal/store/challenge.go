package store

import (
	"context"
	"database/sql"

	"github.com/google/uuid"
	"github.com/phrazzld/receipt-api/internal/domain"
)

// ChallengeStore persists challenges.
type ChallengeStore interface {
	// Create inserts a challenge.
	// Returns ErrInvalidEntity if the referenced document does not exist.
	Create(ctx context.Context, challenge *domain.Challenge) error

	// GetByID returns ErrChallengeNotFound if the challenge does not exist.
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Challenge, error)

	// GetByIDForUpdate is GetByID with a row lock; use it inside a transaction.
	GetByIDForUpdate(ctx context.Context, id uuid.UUID) (*domain.Challenge, error)

	// ListByDocuments returns every challenge whose receipt is in receiptIDs
	// or whose invoice is in invoiceIDs, newest first.
	ListByDocuments(ctx context.Context, receiptIDs, invoiceIDs []uuid.UUID) ([]*domain.Challenge, error)

	// UpdateResolution writes status, resolution_notes and resolved_at.
	// Returns ErrChallengeNotFound if the row does not exist.
	UpdateResolution(ctx context.Context, challenge *domain.Challenge) error

	// WithTx returns a ChallengeStore that runs its queries in tx.
	WithTx(tx *sql.Tx) ChallengeStore
}
