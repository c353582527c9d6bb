package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/phrazzld/receipt-api/internal/domain"
	"github.com/phrazzld/receipt-api/internal/platform/logger"
	"github.com/phrazzld/receipt-api/internal/store"
)

// PostgresChallengeStore implements store.ChallengeStore. A challenge's
// DocumentRef is stored as two nullable columns, receipt_id and invoice_id.
type PostgresChallengeStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresChallengeStore creates a new PostgresChallengeStore.
func NewPostgresChallengeStore(db store.DBTX, logger *slog.Logger) *PostgresChallengeStore {
	if db == nil {
		panic("db cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &PostgresChallengeStore{
		db:     db,
		logger: logger.With(slog.String("component", "challenge_store")),
	}
}

var _ store.ChallengeStore = (*PostgresChallengeStore)(nil)

const challengeColumns = `
	id, receipt_id, invoice_id, challenger_name, challenger_email, challenger_phone,
	reason, status, resolution_notes, created_at, resolved_at`

func scanChallenge(row rowScanner) (*domain.Challenge, error) {
	var (
		c         domain.Challenge
		receiptID uuid.NullUUID
		invoiceID uuid.NullUUID
		status    string
	)
	err := row.Scan(
		&c.ID, &receiptID, &invoiceID, &c.ChallengerName, &c.ChallengerEmail, &c.ChallengerPhone,
		&c.Reason, &status, &c.ResolutionNotes, &c.CreatedAt, &c.ResolvedAt,
	)
	if err != nil {
		return nil, err
	}

	switch {
	case receiptID.Valid && !invoiceID.Valid:
		c.Document = domain.ReceiptRef(receiptID.UUID)
	case invoiceID.Valid && !receiptID.Valid:
		c.Document = domain.InvoiceRef(invoiceID.UUID)
	default:
		return nil, fmt.Errorf("%w: challenge %s does not reference exactly one document",
			store.ErrInvalidEntity, c.ID)
	}
	c.Status = domain.ChallengeStatus(status)

	return &c, nil
}

// WithTx implements store.ChallengeStore.WithTx
func (s *PostgresChallengeStore) WithTx(tx *sql.Tx) store.ChallengeStore {
	return &PostgresChallengeStore{db: tx, logger: s.logger}
}

// Create implements store.ChallengeStore.Create
func (s *PostgresChallengeStore) Create(ctx context.Context, c *domain.Challenge) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := c.Validate(); err != nil {
		return err
	}

	query := `INSERT INTO challenges (` + challengeColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`
	_, err := s.db.ExecContext(ctx, query,
		c.ID, c.Document.ReceiptID(), c.Document.InvoiceID(),
		c.ChallengerName, c.ChallengerEmail, c.ChallengerPhone,
		c.Reason, string(c.Status), c.ResolutionNotes, c.CreatedAt, c.ResolvedAt,
	)
	if err != nil {
		if IsForeignKeyViolation(err) {
			log.Warn("challenge references a missing document",
				slog.String("document_kind", string(c.Document.Kind)),
				slog.String("document_id", c.Document.ID.String()))
		} else {
			log.Error("failed to create challenge",
				slog.String("error", err.Error()),
				slog.String("challenge_id", c.ID.String()))
		}
		return MapError(err)
	}

	log.Info("challenge created",
		slog.String("challenge_id", c.ID.String()),
		slog.String("document_kind", string(c.Document.Kind)),
		slog.String("document_id", c.Document.ID.String()))
	return nil
}

// GetByID implements store.ChallengeStore.GetByID
func (s *PostgresChallengeStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.Challenge, error) {
	query := `SELECT ` + challengeColumns + ` FROM challenges WHERE id = $1`
	return s.getOne(ctx, query, id)
}

// GetByIDForUpdate implements store.ChallengeStore.GetByIDForUpdate
func (s *PostgresChallengeStore) GetByIDForUpdate(ctx context.Context, id uuid.UUID) (*domain.Challenge, error) {
	query := `SELECT ` + challengeColumns + ` FROM challenges WHERE id = $1 FOR UPDATE`
	return s.getOne(ctx, query, id)
}

func (s *PostgresChallengeStore) getOne(ctx context.Context, query string, id uuid.UUID) (*domain.Challenge, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	c, err := scanChallenge(s.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrChallengeNotFound
		}
		log.Error("failed to get challenge",
			slog.String("error", err.Error()),
			slog.String("challenge_id", id.String()))
		return nil, MapError(err)
	}
	return c, nil
}

// ListByDocuments implements store.ChallengeStore.ListByDocuments
func (s *PostgresChallengeStore) ListByDocuments(
	ctx context.Context,
	receiptIDs, invoiceIDs []uuid.UUID,
) ([]*domain.Challenge, error) {
	challenges := make([]*domain.Challenge, 0)
	if len(receiptIDs) == 0 && len(invoiceIDs) == 0 {
		return challenges, nil
	}

	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `SELECT ` + challengeColumns + `
		FROM challenges
		WHERE receipt_id = ANY($1::uuid[]) OR invoice_id = ANY($2::uuid[])
		ORDER BY created_at DESC`
	rows, err := s.db.QueryContext(ctx, query, uuidArray(receiptIDs), uuidArray(invoiceIDs))
	if err != nil {
		log.Error("failed to list challenges", slog.String("error", err.Error()))
		return nil, MapError(err)
	}
	defer func() { _ = rows.Close() }()

	for rows.Next() {
		c, err := scanChallenge(rows)
		if err != nil {
			log.Error("failed to scan challenge", slog.String("error", err.Error()))
			return nil, err
		}
		challenges = append(challenges, c)
	}
	if err := rows.Err(); err != nil {
		return nil, MapError(err)
	}

	return challenges, nil
}

// UpdateResolution implements store.ChallengeStore.UpdateResolution
func (s *PostgresChallengeStore) UpdateResolution(ctx context.Context, c *domain.Challenge) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `UPDATE challenges SET status = $1, resolution_notes = $2, resolved_at = $3 WHERE id = $4`
	result, err := s.db.ExecContext(ctx, query, string(c.Status), c.ResolutionNotes, c.ResolvedAt, c.ID)
	if err != nil {
		log.Error("failed to update challenge",
			slog.String("error", err.Error()),
			slog.String("challenge_id", c.ID.String()))
		return MapError(err)
	}
	if err := CheckRowsAffected(result, store.ErrChallengeNotFound); err != nil {
		return err
	}

	log.Info("challenge resolution updated",
		slog.String("challenge_id", c.ID.String()),
		slog.String("status", string(c.Status)))
	return nil
}
