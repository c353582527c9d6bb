package service

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/receipt-api/internal/domain"
	"github.com/phrazzld/receipt-api/internal/platform/logger"
	"github.com/phrazzld/receipt-api/internal/store"
)

// DisputeService handles challenges raised by customers against documents.
type DisputeService interface {
	// CreateChallenge records a pending challenge. It does not require an
	// authenticated caller. The referenced document must exist.
	CreateChallenge(ctx context.Context, in domain.ChallengeInput) (*domain.Challenge, error)

	// ListChallengesForOwner returns every challenge against the caller's
	// documents, newest first. A caller without a business gets an empty list.
	ListChallengesForOwner(ctx context.Context, userID uuid.UUID) ([]*domain.Challenge, error)

	// ResolveChallenge overwrites the status and notes of a challenge against
	// one of the caller's documents.
	ResolveChallenge(
		ctx context.Context,
		userID, challengeID uuid.UUID,
		status string,
		notes *string,
	) (*domain.Challenge, error)
}

type disputeServiceImpl struct {
	tx         store.Transactor
	businesses store.BusinessStore
	receipts   store.ReceiptStore
	invoices   store.InvoiceStore
	challenges store.ChallengeStore
	recorder   Recorder
	now        func() time.Time
	logger     *slog.Logger
}

// NewDisputeService creates a new DisputeService. recorder may be nil.
func NewDisputeService(
	tx store.Transactor,
	businesses store.BusinessStore,
	receipts store.ReceiptStore,
	invoices store.InvoiceStore,
	challenges store.ChallengeStore,
	recorder Recorder,
	logger *slog.Logger,
) DisputeService {
	if logger == nil {
		logger = slog.Default()
	}
	return &disputeServiceImpl{
		tx:         tx,
		businesses: businesses,
		receipts:   receipts,
		invoices:   invoices,
		challenges: challenges,
		recorder:   recorderOrNop(recorder),
		now:        time.Now,
		logger:     logger.With(slog.String("component", "dispute_service")),
	}
}

// CreateChallenge implements DisputeService.CreateChallenge
func (s *disputeServiceImpl) CreateChallenge(ctx context.Context, in domain.ChallengeInput) (*domain.Challenge, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	challenge, err := domain.NewChallenge(in)
	if err != nil {
		return nil, err
	}

	switch challenge.Document.Kind {
	case domain.DocumentKindReceipt:
		_, err = s.receipts.GetByID(ctx, challenge.Document.ID)
	case domain.DocumentKindInvoice:
		_, err = s.invoices.GetByID(ctx, challenge.Document.ID)
	}
	if err != nil {
		return nil, NewServiceError("dispute", "create_challenge", err)
	}

	if err := s.challenges.Create(ctx, challenge); err != nil {
		log.Error("failed to create challenge",
			slog.String("error", err.Error()),
			slog.String("document_id", challenge.Document.ID.String()))
		return nil, NewServiceError("dispute", "create_challenge", err)
	}

	s.recorder.ChallengeCreated(challenge.Document.Kind)
	return challenge, nil
}

// ListChallengesForOwner implements DisputeService.ListChallengesForOwner
func (s *disputeServiceImpl) ListChallengesForOwner(
	ctx context.Context,
	userID uuid.UUID,
) ([]*domain.Challenge, error) {
	business, err := s.businesses.GetByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, store.ErrBusinessNotFound) {
			return []*domain.Challenge{}, nil
		}
		return nil, NewServiceError("dispute", "list_challenges", err)
	}

	receiptIDs, err := s.receipts.ListIDsByBusiness(ctx, business.ID)
	if err != nil {
		return nil, NewServiceError("dispute", "list_challenges", err)
	}
	invoiceIDs, err := s.invoices.ListIDsByBusiness(ctx, business.ID)
	if err != nil {
		return nil, NewServiceError("dispute", "list_challenges", err)
	}

	challenges, err := s.challenges.ListByDocuments(ctx, receiptIDs, invoiceIDs)
	if err != nil {
		return nil, NewServiceError("dispute", "list_challenges", err)
	}
	return challenges, nil
}

// ResolveChallenge implements DisputeService.ResolveChallenge
func (s *disputeServiceImpl) ResolveChallenge(
	ctx context.Context,
	userID, challengeID uuid.UUID,
	status string,
	notes *string,
) (*domain.Challenge, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	newStatus, err := domain.ParseChallengeStatus(status)
	if err != nil {
		return nil, err
	}

	var resolved *domain.Challenge
	err = s.tx.RunInTx(ctx, func(ctx context.Context, tx *sql.Tx) error {
		challenges := s.challenges.WithTx(tx)

		challenge, err := challenges.GetByIDForUpdate(ctx, challengeID)
		if err != nil {
			return err
		}

		business, err := s.businesses.WithTx(tx).GetByUserID(ctx, userID)
		if err != nil {
			if errors.Is(err, store.ErrBusinessNotFound) {
				return ErrNotOwned
			}
			return err
		}

		if err := s.ownsDocument(ctx, tx, challenge.Document, business.ID); err != nil {
			return err
		}

		if err := challenge.Resolve(newStatus, notes, s.now()); err != nil {
			return err
		}
		if err := challenges.UpdateResolution(ctx, challenge); err != nil {
			return err
		}

		resolved = challenge
		return nil
	})
	if err != nil {
		if errors.Is(err, ErrNotOwned) {
			log.Warn("challenge resolution by non-owner",
				slog.String("challenge_id", challengeID.String()),
				slog.String("user_id", userID.String()))
		} else if !store.IsNotFoundError(err) && !errors.Is(err, domain.ErrValidation) {
			log.Error("failed to resolve challenge",
				slog.String("error", err.Error()),
				slog.String("challenge_id", challengeID.String()))
		}
		return nil, NewServiceError("dispute", "resolve_challenge", err)
	}

	log.Info("challenge resolved",
		slog.String("challenge_id", challengeID.String()),
		slog.String("status", string(newStatus)))
	s.recorder.ChallengeResolved(newStatus)
	return resolved, nil
}

// ownsDocument re-reads the challenged document scoped to businessID and
// returns ErrNotOwned when it is not there.
func (s *disputeServiceImpl) ownsDocument(
	ctx context.Context,
	tx *sql.Tx,
	ref domain.DocumentRef,
	businessID uuid.UUID,
) error {
	var err error
	switch ref.Kind {
	case domain.DocumentKindReceipt:
		_, err = s.receipts.WithTx(tx).GetForBusiness(ctx, ref.ID, businessID)
	case domain.DocumentKindInvoice:
		_, err = s.invoices.WithTx(tx).GetForBusiness(ctx, ref.ID, businessID)
	default:
		return domain.ErrInvalidDocumentRef
	}
	if store.IsNotFoundError(err) {
		return ErrNotOwned
	}
	return err
}
