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

// BusinessService manages the single business profile of each user.
type BusinessService interface {
	// CreateOrUpdate creates the caller's business, or applies patch to it
	// if one exists. created reports which happened.
	CreateOrUpdate(ctx context.Context, userID uuid.UUID, patch domain.BusinessPatch) (*domain.Business, bool, error)

	// Get returns ErrBusinessNotFound if the caller has no business.
	Get(ctx context.Context, userID uuid.UUID) (*domain.Business, error)

	// Update applies patch to an existing business.
	Update(ctx context.Context, userID uuid.UUID, patch domain.BusinessPatch) (*domain.Business, error)

	// SetLogo records a new logo URL. It is a no-op returning
	// ErrBusinessNotFound when the caller has no business yet.
	SetLogo(ctx context.Context, userID uuid.UUID, logoURL string) (*domain.Business, error)
}

type businessServiceImpl struct {
	businesses store.BusinessStore
	logger     *slog.Logger
}

// NewBusinessService creates a new BusinessService.
func NewBusinessService(businesses store.BusinessStore, logger *slog.Logger) BusinessService {
	if logger == nil {
		logger = slog.Default()
	}
	return &businessServiceImpl{
		businesses: businesses,
		logger:     logger.With(slog.String("component", "business_service")),
	}
}

// CreateOrUpdate implements BusinessService.CreateOrUpdate
func (s *businessServiceImpl) CreateOrUpdate(
	ctx context.Context,
	userID uuid.UUID,
	patch domain.BusinessPatch,
) (*domain.Business, bool, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	existing, err := s.businesses.GetByUserID(ctx, userID)
	switch {
	case err == nil:
		b, err := s.apply(ctx, existing, patch)
		return b, false, err
	case !errors.Is(err, store.ErrBusinessNotFound):
		log.Error("failed to look up business",
			slog.String("error", err.Error()),
			slog.String("user_id", userID.String()))
		return nil, false, NewServiceError("business", "create_or_update", err)
	}

	b, err := domain.NewBusiness(userID, patch)
	if err != nil {
		return nil, false, err
	}

	if err := s.businesses.Create(ctx, b); err != nil {
		if !errors.Is(err, store.ErrBusinessExists) {
			log.Error("failed to create business",
				slog.String("error", err.Error()),
				slog.String("user_id", userID.String()))
			return nil, false, NewServiceError("business", "create_or_update", err)
		}

		// Lost a race with a concurrent create; fall back to an update.
		log.Debug("business created concurrently, updating instead",
			slog.String("user_id", userID.String()))
		existing, err := s.businesses.GetByUserID(ctx, userID)
		if err != nil {
			return nil, false, NewServiceError("business", "create_or_update", err)
		}
		updated, err := s.apply(ctx, existing, patch)
		return updated, false, err
	}

	return b, true, nil
}

// Get implements BusinessService.Get
func (s *businessServiceImpl) Get(ctx context.Context, userID uuid.UUID) (*domain.Business, error) {
	b, err := s.businesses.GetByUserID(ctx, userID)
	if err != nil {
		return nil, NewServiceError("business", "get", err)
	}
	return b, nil
}

// Update implements BusinessService.Update
func (s *businessServiceImpl) Update(
	ctx context.Context,
	userID uuid.UUID,
	patch domain.BusinessPatch,
) (*domain.Business, error) {
	b, err := s.businesses.GetByUserID(ctx, userID)
	if err != nil {
		return nil, NewServiceError("business", "update", err)
	}
	return s.apply(ctx, b, patch)
}

// SetLogo implements BusinessService.SetLogo
func (s *businessServiceImpl) SetLogo(ctx context.Context, userID uuid.UUID, logoURL string) (*domain.Business, error) {
	return s.Update(ctx, userID, domain.BusinessPatch{LogoURL: &logoURL})
}

func (s *businessServiceImpl) apply(
	ctx context.Context,
	b *domain.Business,
	patch domain.BusinessPatch,
) (*domain.Business, error) {
	if err := b.Apply(patch); err != nil {
		return nil, err
	}
	if err := s.businesses.Update(ctx, b); err != nil {
		logger.FromContextOrDefault(ctx, s.logger).Error("failed to update business",
			slog.String("error", err.Error()),
			slog.String("business_id", b.ID.String()))
		return nil, NewServiceError("business", "update", err)
	}
	return b, nil
}
