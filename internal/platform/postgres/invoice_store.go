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

// PostgresInvoiceStore implements store.InvoiceStore.
type PostgresInvoiceStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresInvoiceStore creates a new PostgresInvoiceStore.
func NewPostgresInvoiceStore(db store.DBTX, logger *slog.Logger) *PostgresInvoiceStore {
	if db == nil {
		panic("db cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &PostgresInvoiceStore{
		db:     db,
		logger: logger.With(slog.String("component", "invoice_store")),
	}
}

var _ store.InvoiceStore = (*PostgresInvoiceStore)(nil)

const invoiceColumns = `
	id, invoice_number, user_id, business_id,
	customer_name, customer_email, customer_phone, customer_address, customer_tax_id,
	issue_date, due_date, subtotal, tax_rate, tax_amount, discount, total,
	status, payment_terms, notes, items, created_at`

func scanInvoice(row rowScanner) (*domain.Invoice, error) {
	var inv domain.Invoice
	err := row.Scan(
		&inv.ID, &inv.InvoiceNumber, &inv.UserID, &inv.BusinessID,
		&inv.Customer.Name, &inv.Customer.Email, &inv.Customer.Phone, &inv.Customer.Address,
		&inv.CustomerTaxID,
		&inv.IssueDate, &inv.DueDate, &inv.Subtotal, &inv.TaxRate, &inv.TaxAmount, &inv.Discount, &inv.Total,
		&inv.Status, &inv.PaymentTerms, &inv.Notes, &inv.Items, &inv.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &inv, nil
}

// WithTx implements store.InvoiceStore.WithTx
func (s *PostgresInvoiceStore) WithTx(tx *sql.Tx) store.InvoiceStore {
	return &PostgresInvoiceStore{db: tx, logger: s.logger}
}

// Create implements store.InvoiceStore.Create
func (s *PostgresInvoiceStore) Create(ctx context.Context, inv *domain.Invoice) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := inv.Validate(); err != nil {
		return err
	}

	query := `INSERT INTO invoices (` + invoiceColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20, $21)`
	_, err := s.db.ExecContext(ctx, query,
		inv.ID, inv.InvoiceNumber, inv.UserID, inv.BusinessID,
		inv.Customer.Name, inv.Customer.Email, inv.Customer.Phone, inv.Customer.Address,
		inv.CustomerTaxID,
		inv.IssueDate, inv.DueDate, inv.Subtotal, inv.TaxRate, inv.TaxAmount, inv.Discount, inv.Total,
		inv.Status, inv.PaymentTerms, inv.Notes, inv.Items, inv.CreatedAt,
	)
	if err != nil {
		mapped := MapError(err)
		if errors.Is(mapped, store.ErrDuplicateNumber) {
			log.Warn("invoice number collision",
				slog.String("invoice_number", inv.InvoiceNumber))
			return mapped
		}
		log.Error("failed to create invoice",
			slog.String("error", err.Error()),
			slog.String("invoice_id", inv.ID.String()))
		return mapped
	}

	log.Info("invoice created",
		slog.String("invoice_id", inv.ID.String()),
		slog.String("invoice_number", inv.InvoiceNumber),
		slog.String("business_id", inv.BusinessID.String()))
	return nil
}

// GetByID implements store.InvoiceStore.GetByID
func (s *PostgresInvoiceStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.Invoice, error) {
	query := `SELECT ` + invoiceColumns + ` FROM invoices WHERE id = $1`
	return s.getOne(ctx, query, id)
}

// GetForBusiness implements store.InvoiceStore.GetForBusiness
func (s *PostgresInvoiceStore) GetForBusiness(
	ctx context.Context,
	id, businessID uuid.UUID,
) (*domain.Invoice, error) {
	query := `SELECT ` + invoiceColumns + ` FROM invoices WHERE id = $1 AND business_id = $2`
	return s.getOne(ctx, query, id, businessID)
}

func (s *PostgresInvoiceStore) getOne(ctx context.Context, query string, args ...any) (*domain.Invoice, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	inv, err := scanInvoice(s.db.QueryRowContext(ctx, query, args...))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrInvoiceNotFound
		}
		log.Error("failed to get invoice", slog.String("error", err.Error()))
		return nil, MapError(err)
	}
	return inv, nil
}

// ListByUser implements store.InvoiceStore.ListByUser
func (s *PostgresInvoiceStore) ListByUser(ctx context.Context, userID uuid.UUID) ([]*domain.Invoice, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `SELECT ` + invoiceColumns + ` FROM invoices WHERE user_id = $1 ORDER BY created_at DESC`
	rows, err := s.db.QueryContext(ctx, query, userID)
	if err != nil {
		log.Error("failed to list invoices",
			slog.String("error", err.Error()),
			slog.String("user_id", userID.String()))
		return nil, MapError(err)
	}
	defer func() { _ = rows.Close() }()

	invoices := make([]*domain.Invoice, 0)
	for rows.Next() {
		inv, err := scanInvoice(rows)
		if err != nil {
			log.Error("failed to scan invoice", slog.String("error", err.Error()))
			return nil, err
		}
		invoices = append(invoices, inv)
	}
	if err := rows.Err(); err != nil {
		return nil, MapError(err)
	}

	return invoices, nil
}

// ListIDsByBusiness implements store.InvoiceStore.ListIDsByBusiness
func (s *PostgresInvoiceStore) ListIDsByBusiness(ctx context.Context, businessID uuid.UUID) ([]uuid.UUID, error) {
	return listIDs(ctx, s.db, `SELECT id FROM invoices WHERE business_id = $1`, businessID)
}

// Update implements store.InvoiceStore.Update. Only status and notes are written.
func (s *PostgresInvoiceStore) Update(ctx context.Context, inv *domain.Invoice) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `UPDATE invoices SET status = $1, notes = $2 WHERE id = $3`
	result, err := s.db.ExecContext(ctx, query, inv.Status, inv.Notes, inv.ID)
	if err != nil {
		log.Error("failed to update invoice",
			slog.String("error", err.Error()),
			slog.String("invoice_id", inv.ID.String()))
		return MapError(err)
	}
	if err := CheckRowsAffected(result, store.ErrInvoiceNotFound); err != nil {
		return err
	}

	log.Debug("invoice updated",
		slog.String("invoice_id", inv.ID.String()),
		slog.String("status", inv.Status))
	return nil
}
