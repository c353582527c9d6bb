package service

import (
	"context"
	"database/sql"
	"io"
	"log/slog"
	"sync"

	"github.com/google/uuid"
	"github.com/phrazzld/receipt-api/internal/domain"
	"github.com/phrazzld/receipt-api/internal/store"
	"github.com/stretchr/testify/mock"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func strPtr(s string) *string { return &s }

// MockUserStore mocks store.UserStore
type MockUserStore struct {
	mock.Mock
}

func (m *MockUserStore) Create(ctx context.Context, user *domain.User) error {
	return m.Called(ctx, user).Error(0)
}

func (m *MockUserStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *MockUserStore) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *MockUserStore) WithTx(*sql.Tx) store.UserStore { return m }

// MockBusinessStore mocks store.BusinessStore
type MockBusinessStore struct {
	mock.Mock
}

func (m *MockBusinessStore) Create(ctx context.Context, b *domain.Business) error {
	return m.Called(ctx, b).Error(0)
}

func (m *MockBusinessStore) GetByUserID(ctx context.Context, userID uuid.UUID) (*domain.Business, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Business), args.Error(1)
}

func (m *MockBusinessStore) Update(ctx context.Context, b *domain.Business) error {
	return m.Called(ctx, b).Error(0)
}

func (m *MockBusinessStore) WithTx(*sql.Tx) store.BusinessStore { return m }

// MockReceiptStore mocks store.ReceiptStore
type MockReceiptStore struct {
	mock.Mock
}

func (m *MockReceiptStore) Create(ctx context.Context, r *domain.Receipt) error {
	return m.Called(ctx, r).Error(0)
}

func (m *MockReceiptStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.Receipt, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Receipt), args.Error(1)
}

func (m *MockReceiptStore) GetForBusiness(ctx context.Context, id, businessID uuid.UUID) (*domain.Receipt, error) {
	args := m.Called(ctx, id, businessID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Receipt), args.Error(1)
}

func (m *MockReceiptStore) ListByUser(ctx context.Context, userID uuid.UUID) ([]*domain.Receipt, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Receipt), args.Error(1)
}

func (m *MockReceiptStore) ListIDsByBusiness(ctx context.Context, businessID uuid.UUID) ([]uuid.UUID, error) {
	args := m.Called(ctx, businessID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]uuid.UUID), args.Error(1)
}

func (m *MockReceiptStore) WithTx(*sql.Tx) store.ReceiptStore { return m }

// MockInvoiceStore mocks store.InvoiceStore
type MockInvoiceStore struct {
	mock.Mock
}

func (m *MockInvoiceStore) Create(ctx context.Context, inv *domain.Invoice) error {
	return m.Called(ctx, inv).Error(0)
}

func (m *MockInvoiceStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.Invoice, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Invoice), args.Error(1)
}

func (m *MockInvoiceStore) GetForBusiness(ctx context.Context, id, businessID uuid.UUID) (*domain.Invoice, error) {
	args := m.Called(ctx, id, businessID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Invoice), args.Error(1)
}

func (m *MockInvoiceStore) ListByUser(ctx context.Context, userID uuid.UUID) ([]*domain.Invoice, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Invoice), args.Error(1)
}

func (m *MockInvoiceStore) ListIDsByBusiness(ctx context.Context, businessID uuid.UUID) ([]uuid.UUID, error) {
	args := m.Called(ctx, businessID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]uuid.UUID), args.Error(1)
}

func (m *MockInvoiceStore) Update(ctx context.Context, inv *domain.Invoice) error {
	return m.Called(ctx, inv).Error(0)
}

func (m *MockInvoiceStore) WithTx(*sql.Tx) store.InvoiceStore { return m }

// MockChallengeStore mocks store.ChallengeStore
type MockChallengeStore struct {
	mock.Mock
}

func (m *MockChallengeStore) Create(ctx context.Context, c *domain.Challenge) error {
	return m.Called(ctx, c).Error(0)
}

func (m *MockChallengeStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.Challenge, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Challenge), args.Error(1)
}

func (m *MockChallengeStore) GetByIDForUpdate(ctx context.Context, id uuid.UUID) (*domain.Challenge, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Challenge), args.Error(1)
}

func (m *MockChallengeStore) ListByDocuments(
	ctx context.Context,
	receiptIDs, invoiceIDs []uuid.UUID,
) ([]*domain.Challenge, error) {
	args := m.Called(ctx, receiptIDs, invoiceIDs)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Challenge), args.Error(1)
}

func (m *MockChallengeStore) UpdateResolution(ctx context.Context, c *domain.Challenge) error {
	return m.Called(ctx, c).Error(0)
}

func (m *MockChallengeStore) WithTx(*sql.Tx) store.ChallengeStore { return m }

// fakeTransactor runs fn without a real transaction and counts calls.
type fakeTransactor struct {
	calls int
}

func (f *fakeTransactor) RunInTx(ctx context.Context, fn store.TxFn) error {
	f.calls++
	return fn(ctx, nil)
}

// MockPasswordVerifier mocks PasswordVerifier
type MockPasswordVerifier struct {
	mock.Mock
}

func (m *MockPasswordVerifier) Compare(hashedPassword, password string) error {
	return m.Called(hashedPassword, password).Error(0)
}

// countingRecorder records the events it receives.
type countingRecorder struct {
	mu        sync.Mutex
	documents map[domain.DocumentKind]int
	created   int
	resolved  map[domain.ChallengeStatus]int
}

func newCountingRecorder() *countingRecorder {
	return &countingRecorder{
		documents: make(map[domain.DocumentKind]int),
		resolved:  make(map[domain.ChallengeStatus]int),
	}
}

func (r *countingRecorder) DocumentCreated(kind domain.DocumentKind) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.documents[kind]++
}

func (r *countingRecorder) ChallengeCreated(domain.DocumentKind) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.created++
}

func (r *countingRecorder) ChallengeResolved(status domain.ChallengeStatus) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.resolved[status]++
}
