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

// PostgresBusinessStore implements store.BusinessStore.
type PostgresBusinessStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresBusinessStore creates a new PostgresBusinessStore.
func NewPostgresBusinessStore(db store.DBTX, logger *slog.Logger) *PostgresBusinessStore {
	if db == nil {
		panic("db cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &PostgresBusinessStore{
		db:     db,
		logger: logger.With(slog.String("component", "business_store")),
	}
}

var _ store.BusinessStore = (*PostgresBusinessStore)(nil)

// WithTx implements store.BusinessStore.WithTx
func (s *PostgresBusinessStore) WithTx(tx *sql.Tx) store.BusinessStore {
	return &PostgresBusinessStore{db: tx, logger: s.logger}
}

// Create implements store.BusinessStore.Create
func (s *PostgresBusinessStore) Create(ctx context.Context, b *domain.Business) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := b.Validate(); err != nil {
		return err
	}

	query := `
		INSERT INTO businesses (
			id, user_id, name, address, city, state, zip_code, country,
			phone, email, website, tax_id, logo_url, created_at, updated_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
	`
	_, err := s.db.ExecContext(ctx, query,
		b.ID, b.UserID, b.Name, b.Address, b.City, b.State, b.ZipCode, b.Country,
		b.Phone, b.Email, b.Website, b.TaxID, b.LogoURL, b.CreatedAt, b.UpdatedAt,
	)
	if err != nil {
		mapped := MapError(err)
		if errors.Is(mapped, store.ErrBusinessExists) {
			log.Debug("user already owns a business", slog.String("user_id", b.UserID.String()))
			return mapped
		}
		log.Error("failed to create business",
			slog.String("error", err.Error()),
			slog.String("user_id", b.UserID.String()))
		return mapped
	}

	log.Info("business created",
		slog.String("business_id", b.ID.String()),
		slog.String("user_id", b.UserID.String()))
	return nil
}

// GetByUserID implements store.BusinessStore.GetByUserID
func (s *PostgresBusinessStore) GetByUserID(ctx context.Context, userID uuid.UUID) (*domain.Business, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `
		SELECT id, user_id, name, address, city, state, zip_code, country,
		       phone, email, website, tax_id, logo_url, created_at, updated_at
		FROM businesses
		WHERE user_id = $1
	`

	var b domain.Business
	err := s.db.QueryRowContext(ctx, query, userID).Scan(
		&b.ID, &b.UserID, &b.Name, &b.Address, &b.City, &b.State, &b.ZipCode, &b.Country,
		&b.Phone, &b.Email, &b.Website, &b.TaxID, &b.LogoURL, &b.CreatedAt, &b.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrBusinessNotFound
		}
		log.Error("failed to get business",
			slog.String("error", err.Error()),
			slog.String("user_id", userID.String()))
		return nil, MapError(err)
	}
	return &b, nil
}

// Update implements store.BusinessStore.Update
func (s *PostgresBusinessStore) Update(ctx context.Context, b *domain.Business) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := b.Validate(); err != nil {
		return err
	}

	query := `
		UPDATE businesses
		SET name = $1, address = $2, city = $3, state = $4, zip_code = $5, country = $6,
		    phone = $7, email = $8, website = $9, tax_id = $10, logo_url = $11, updated_at = $12
		WHERE id = $13 AND user_id = $14
	`
	result, err := s.db.ExecContext(ctx, query,
		b.Name, b.Address, b.City, b.State, b.ZipCode, b.Country,
		b.Phone, b.Email, b.Website, b.TaxID, b.LogoURL, b.UpdatedAt,
		b.ID, b.UserID,
	)
	if err != nil {
		log.Error("failed to update business",
			slog.String("error", err.Error()),
			slog.String("business_id", b.ID.String()))
		return MapError(err)
	}
	if err := CheckRowsAffected(result, store.ErrBusinessNotFound); err != nil {
		return err
	}

	log.Debug("business updated", slog.String("business_id", b.ID.String()))
	return nil
}
