package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/receipt-api/internal/domain"
	"github.com/phrazzld/receipt-api/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type disputeFixture struct {
	tx         *fakeTransactor
	businesses *MockBusinessStore
	receipts   *MockReceiptStore
	invoices   *MockInvoiceStore
	challenges *MockChallengeStore
	recorder   *countingRecorder
	svc        *disputeServiceImpl
	now        time.Time
}

func newDisputeFixture() *disputeFixture {
	f := &disputeFixture{
		tx:         &fakeTransactor{},
		businesses: new(MockBusinessStore),
		receipts:   new(MockReceiptStore),
		invoices:   new(MockInvoiceStore),
		challenges: new(MockChallengeStore),
		recorder:   newCountingRecorder(),
		now:        time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC),
	}
	f.svc = NewDisputeService(
		f.tx, f.businesses, f.receipts, f.invoices, f.challenges, f.recorder, discardLogger(),
	).(*disputeServiceImpl)
	f.svc.now = func() time.Time { return f.now }
	return f
}

func challengeInput(ref domain.DocumentRef) domain.ChallengeInput {
	return domain.ChallengeInput{
		Document:        ref,
		ChallengerName:  "Bob",
		ChallengerEmail: "bob@example.com",
		Reason:          "charged twice",
	}
}

func TestDisputeService_CreateChallenge(t *testing.T) {
	ctx := context.Background()

	t.Run("against receipt", func(t *testing.T) {
		f := newDisputeFixture()
		receiptID := uuid.New()
		f.receipts.On("GetByID", ctx, receiptID).Return(&domain.Receipt{ID: receiptID}, nil)
		f.challenges.On("Create", ctx, mock.AnythingOfType("*domain.Challenge")).Return(nil)

		c, err := f.svc.CreateChallenge(ctx, challengeInput(domain.ReceiptRef(receiptID)))

		require.NoError(t, err)
		assert.Equal(t, domain.ChallengeStatusPending, c.Status)
		assert.Nil(t, c.ResolvedAt)
		assert.Equal(t, domain.ReceiptRef(receiptID), c.Document)
		assert.Equal(t, 1, f.recorder.created)
	})

	t.Run("missing invoice", func(t *testing.T) {
		f := newDisputeFixture()
		invoiceID := uuid.New()
		f.invoices.On("GetByID", ctx, invoiceID).Return(nil, store.ErrInvoiceNotFound)

		_, err := f.svc.CreateChallenge(ctx, challengeInput(domain.InvoiceRef(invoiceID)))
		assert.ErrorIs(t, err, ErrInvoiceNotFound)
		f.challenges.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})

	t.Run("no document reference", func(t *testing.T) {
		f := newDisputeFixture()
		_, err := f.svc.CreateChallenge(ctx, challengeInput(domain.DocumentRef{}))
		assert.ErrorIs(t, err, domain.ErrValidation)
		assert.ErrorIs(t, err, domain.ErrInvalidDocumentRef)
	})
}

func TestDisputeService_ListChallengesForOwner(t *testing.T) {
	ctx := context.Background()
	userID := uuid.New()

	t.Run("no business yields empty list", func(t *testing.T) {
		f := newDisputeFixture()
		f.businesses.On("GetByUserID", ctx, userID).Return(nil, store.ErrBusinessNotFound)

		challenges, err := f.svc.ListChallengesForOwner(ctx, userID)
		require.NoError(t, err)
		assert.NotNil(t, challenges)
		assert.Empty(t, challenges)
	})

	t.Run("collects both document kinds", func(t *testing.T) {
		f := newDisputeFixture()
		business := &domain.Business{ID: uuid.New(), UserID: userID}
		receiptIDs := []uuid.UUID{uuid.New()}
		invoiceIDs := []uuid.UUID{uuid.New(), uuid.New()}
		want := []*domain.Challenge{{ID: uuid.New()}}

		f.businesses.On("GetByUserID", ctx, userID).Return(business, nil)
		f.receipts.On("ListIDsByBusiness", ctx, business.ID).Return(receiptIDs, nil)
		f.invoices.On("ListIDsByBusiness", ctx, business.ID).Return(invoiceIDs, nil)
		f.challenges.On("ListByDocuments", ctx, receiptIDs, invoiceIDs).Return(want, nil)

		got, err := f.svc.ListChallengesForOwner(ctx, userID)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	})
}

func TestDisputeService_ResolveChallenge(t *testing.T) {
	ctx := context.Background()
	ownerID := uuid.New()
	business := &domain.Business{ID: uuid.New(), UserID: ownerID}

	pendingOn := func(ref domain.DocumentRef) *domain.Challenge {
		return &domain.Challenge{ID: uuid.New(), Document: ref, Status: domain.ChallengeStatusPending}
	}

	t.Run("owner resolves receipt challenge", func(t *testing.T) {
		f := newDisputeFixture()
		receiptID := uuid.New()
		c := pendingOn(domain.ReceiptRef(receiptID))

		f.challenges.On("GetByIDForUpdate", ctx, c.ID).Return(c, nil)
		f.businesses.On("GetByUserID", ctx, ownerID).Return(business, nil)
		f.receipts.On("GetForBusiness", ctx, receiptID, business.ID).Return(&domain.Receipt{ID: receiptID}, nil)
		f.challenges.On("UpdateResolution", ctx, c).Return(nil)

		got, err := f.svc.ResolveChallenge(ctx, ownerID, c.ID, "Resolved", strPtr("refunded"))

		require.NoError(t, err)
		assert.Equal(t, domain.ChallengeStatusResolved, got.Status)
		assert.Equal(t, "refunded", *got.ResolutionNotes)
		require.NotNil(t, got.ResolvedAt)
		assert.Equal(t, f.now, *got.ResolvedAt)
		assert.Equal(t, 1, f.tx.calls)
		assert.Equal(t, 1, f.recorder.resolved[domain.ChallengeStatusResolved])
	})

	t.Run("back to pending keeps resolved_at unset", func(t *testing.T) {
		f := newDisputeFixture()
		invoiceID := uuid.New()
		c := pendingOn(domain.InvoiceRef(invoiceID))

		f.challenges.On("GetByIDForUpdate", ctx, c.ID).Return(c, nil)
		f.businesses.On("GetByUserID", ctx, ownerID).Return(business, nil)
		f.invoices.On("GetForBusiness", ctx, invoiceID, business.ID).Return(&domain.Invoice{ID: invoiceID}, nil)
		f.challenges.On("UpdateResolution", ctx, c).Return(nil)

		got, err := f.svc.ResolveChallenge(ctx, ownerID, c.ID, "pending", nil)

		require.NoError(t, err)
		assert.Nil(t, got.ResolvedAt)
		assert.Nil(t, got.ResolutionNotes)
	})

	t.Run("document of another business is forbidden", func(t *testing.T) {
		f := newDisputeFixture()
		receiptID := uuid.New()
		c := pendingOn(domain.ReceiptRef(receiptID))

		f.challenges.On("GetByIDForUpdate", ctx, c.ID).Return(c, nil)
		f.businesses.On("GetByUserID", ctx, ownerID).Return(business, nil)
		f.receipts.On("GetForBusiness", ctx, receiptID, business.ID).Return(nil, store.ErrReceiptNotFound)

		_, err := f.svc.ResolveChallenge(ctx, ownerID, c.ID, "rejected", nil)

		assert.ErrorIs(t, err, ErrNotOwned)
		f.challenges.AssertNotCalled(t, "UpdateResolution", mock.Anything, mock.Anything)
		assert.Equal(t, domain.ChallengeStatusPending, c.Status)
	})

	t.Run("caller without business is forbidden", func(t *testing.T) {
		f := newDisputeFixture()
		c := pendingOn(domain.ReceiptRef(uuid.New()))

		f.challenges.On("GetByIDForUpdate", ctx, c.ID).Return(c, nil)
		f.businesses.On("GetByUserID", ctx, ownerID).Return(nil, store.ErrBusinessNotFound)

		_, err := f.svc.ResolveChallenge(ctx, ownerID, c.ID, "resolved", nil)
		assert.ErrorIs(t, err, ErrNotOwned)
	})

	t.Run("missing challenge", func(t *testing.T) {
		f := newDisputeFixture()
		id := uuid.New()
		f.challenges.On("GetByIDForUpdate", ctx, id).Return(nil, store.ErrChallengeNotFound)

		_, err := f.svc.ResolveChallenge(ctx, ownerID, id, "resolved", nil)
		assert.ErrorIs(t, err, ErrChallengeNotFound)
	})

	t.Run("unknown status rejected before any query", func(t *testing.T) {
		f := newDisputeFixture()

		_, err := f.svc.ResolveChallenge(ctx, ownerID, uuid.New(), "approved", nil)
		assert.ErrorIs(t, err, domain.ErrValidation)
		assert.Zero(t, f.tx.calls)
	})

	t.Run("store failure surfaces as service error", func(t *testing.T) {
		f := newDisputeFixture()
		receiptID := uuid.New()
		c := pendingOn(domain.ReceiptRef(receiptID))
		dbErr := errors.New("deadlock detected")

		f.challenges.On("GetByIDForUpdate", ctx, c.ID).Return(c, nil)
		f.businesses.On("GetByUserID", ctx, ownerID).Return(business, nil)
		f.receipts.On("GetForBusiness", ctx, receiptID, business.ID).Return(&domain.Receipt{ID: receiptID}, nil)
		f.challenges.On("UpdateResolution", ctx, c).Return(dbErr)

		_, err := f.svc.ResolveChallenge(ctx, ownerID, c.ID, "resolved", nil)

		assert.ErrorIs(t, err, dbErr)
		var serviceErr *ServiceError
		assert.True(t, errors.As(err, &serviceErr))
	})
}
