package postgres

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"

	"github.com/google/uuid"
	"github.com/phrazzld/receipt-api/internal/domain"
	"github.com/phrazzld/receipt-api/internal/platform/logger"
	"github.com/phrazzld/receipt-api/internal/store"
)

// PostgresReceiptStore implements store.ReceiptStore.
type PostgresReceiptStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresReceiptStore creates a new PostgresReceiptStore.
func NewPostgresReceiptStore(db store.DBTX, logger *slog.Logger) *PostgresReceiptStore {
	if db == nil {
		panic("db cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &PostgresReceiptStore{
		db:     db,
		logger: logger.With(slog.String("component", "receipt_store")),
	}
}

var _ store.ReceiptStore = (*PostgresReceiptStore)(nil)

const receiptColumns = `
	id, receipt_number, user_id, business_id,
	customer_name, customer_email, customer_phone, customer_address,
	date, subtotal, tax_rate, tax_amount, discount, total,
	payment_method, notes, items, created_at`

func scanReceipt(row rowScanner) (*domain.Receipt, error) {
	var r domain.Receipt
	err := row.Scan(
		&r.ID, &r.ReceiptNumber, &r.UserID, &r.BusinessID,
		&r.Customer.Name, &r.Customer.Email, &r.Customer.Phone, &r.Customer.Address,
		&r.Date, &r.Subtotal, &r.TaxRate, &r.TaxAmount, &r.Discount, &r.Total,
		&r.PaymentMethod, &r.Notes, &r.Items, &r.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &r, nil
}

// WithTx implements store.ReceiptStore.WithTx
func (s *PostgresReceiptStore) WithTx(tx *sql.Tx) store.ReceiptStore {
	return &PostgresReceiptStore{db: tx, logger: s.logger}
}

// Create implements store.ReceiptStore.Create
func (s *PostgresReceiptStore) Create(ctx context.Context, r *domain.Receipt) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := r.Validate(); err != nil {
		return err
	}

	query := `INSERT INTO receipts (` + receiptColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18)`
	_, err := s.db.ExecContext(ctx, query,
		r.ID, r.ReceiptNumber, r.UserID, r.BusinessID,
		r.Customer.Name, r.Customer.Email, r.Customer.Phone, r.Customer.Address,
		r.Date, r.Subtotal, r.TaxRate, r.TaxAmount, r.Discount, r.Total,
		r.PaymentMethod, r.Notes, r.Items, r.CreatedAt,
	)
	if err != nil {
		mapped := MapError(err)
		if errors.Is(mapped, store.ErrDuplicateNumber) {
			log.Warn("receipt number collision",
				slog.String("receipt_number", r.ReceiptNumber))
			return mapped
		}
		log.Error("failed to create receipt",
			slog.String("error", err.Error()),
			slog.String("receipt_id", r.ID.String()))
		return mapped
	}

	log.Info("receipt created",
		slog.String("receipt_id", r.ID.String()),
		slog.String("receipt_number", r.ReceiptNumber),
		slog.String("business_id", r.BusinessID.String()))
	return nil
}

// GetByID implements store.ReceiptStore.GetByID
func (s *PostgresReceiptStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.Receipt, error) {
	query := `SELECT ` + receiptColumns + ` FROM receipts WHERE id = $1`
	return s.getOne(ctx, query, id)
}

// GetForBusiness implements store.ReceiptStore.GetForBusiness
func (s *PostgresReceiptStore) GetForBusiness(
	ctx context.Context,
	id, businessID uuid.UUID,
) (*domain.Receipt, error) {
	query := `SELECT ` + receiptColumns + ` FROM receipts WHERE id = $1 AND business_id = $2`
	return s.getOne(ctx, query, id, businessID)
}

func (s *PostgresReceiptStore) getOne(ctx context.Context, query string, args ...any) (*domain.Receipt, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	r, err := scanReceipt(s.db.QueryRowContext(ctx, query, args...))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrReceiptNotFound
		}
		log.Error("failed to get receipt", slog.String("error", err.Error()))
		return nil, MapError(err)
	}
	return r, nil
}

// ListByUser implements store.ReceiptStore.ListByUser
func (s *PostgresReceiptStore) ListByUser(ctx context.Context, userID uuid.UUID) ([]*domain.Receipt, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `SELECT ` + receiptColumns + ` FROM receipts WHERE user_id = $1 ORDER BY created_at DESC`
	rows, err := s.db.QueryContext(ctx, query, userID)
	if err != nil {
		log.Error("failed to list receipts",
			slog.String("error", err.Error()),
			slog.String("user_id", userID.String()))
		return nil, MapError(err)
	}
	defer func() { _ = rows.Close() }()

	receipts := make([]*domain.Receipt, 0)
	for rows.Next() {
		r, err := scanReceipt(rows)
		if err != nil {
			log.Error("failed to scan receipt", slog.String("error", err.Error()))
			return nil, err
		}
		receipts = append(receipts, r)
	}
	if err := rows.Err(); err != nil {
		return nil, MapError(err)
	}

	return receipts, nil
}

// ListIDsByBusiness implements store.ReceiptStore.ListIDsByBusiness
func (s *PostgresReceiptStore) ListIDsByBusiness(ctx context.Context, businessID uuid.UUID) ([]uuid.UUID, error) {
	return listIDs(ctx, s.db, `SELECT id FROM receipts WHERE business_id = $1`, businessID)
}

func listIDs(ctx context.Context, db store.DBTX, query string, args ...any) ([]uuid.UUID, error) {
	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, MapError(err)
	}
	defer func() { _ = rows.Close() }()

	ids := make([]uuid.UUID, 0)
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, MapError(err)
	}
	return ids, nil
}
