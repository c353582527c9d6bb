package api

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/phrazzld/receipt-api/internal/api/shared"
	"github.com/phrazzld/receipt-api/internal/domain"
	"github.com/phrazzld/receipt-api/internal/media"
	"github.com/phrazzld/receipt-api/internal/service"
	"github.com/phrazzld/receipt-api/internal/service/auth"
)

// MockUserService is a mock implementation of service.UserService for testing
type MockUserService struct {
	RegisterFn     func(ctx context.Context, email, password string) (*domain.User, error)
	AuthenticateFn func(ctx context.Context, email, password string) (*domain.User, error)
	GetUserFn      func(ctx context.Context, userID uuid.UUID) (*domain.User, error)
}

func (m *MockUserService) Register(ctx context.Context, email, password string) (*domain.User, error) {
	return m.RegisterFn(ctx, email, password)
}

func (m *MockUserService) Authenticate(ctx context.Context, email, password string) (*domain.User, error) {
	return m.AuthenticateFn(ctx, email, password)
}

func (m *MockUserService) GetUser(ctx context.Context, userID uuid.UUID) (*domain.User, error) {
	return m.GetUserFn(ctx, userID)
}

// MockBusinessService is a mock implementation of service.BusinessService for testing
type MockBusinessService struct {
	CreateOrUpdateFn func(ctx context.Context, userID uuid.UUID, patch domain.BusinessPatch) (*domain.Business, bool, error)
	GetFn            func(ctx context.Context, userID uuid.UUID) (*domain.Business, error)
	UpdateFn         func(ctx context.Context, userID uuid.UUID, patch domain.BusinessPatch) (*domain.Business, error)
	SetLogoFn        func(ctx context.Context, userID uuid.UUID, logoURL string) (*domain.Business, error)
}

func (m *MockBusinessService) CreateOrUpdate(
	ctx context.Context,
	userID uuid.UUID,
	patch domain.BusinessPatch,
) (*domain.Business, bool, error) {
	return m.CreateOrUpdateFn(ctx, userID, patch)
}

func (m *MockBusinessService) Get(ctx context.Context, userID uuid.UUID) (*domain.Business, error) {
	return m.GetFn(ctx, userID)
}

func (m *MockBusinessService) Update(
	ctx context.Context,
	userID uuid.UUID,
	patch domain.BusinessPatch,
) (*domain.Business, error) {
	return m.UpdateFn(ctx, userID, patch)
}

func (m *MockBusinessService) SetLogo(ctx context.Context, userID uuid.UUID, logoURL string) (*domain.Business, error) {
	if m.SetLogoFn == nil {
		return nil, service.ErrBusinessNotFound
	}
	return m.SetLogoFn(ctx, userID, logoURL)
}

// MockDocumentService is a mock implementation of service.DocumentService for testing
type MockDocumentService struct {
	CreateReceiptFn func(ctx context.Context, userID uuid.UUID, in domain.ReceiptInput) (*domain.Receipt, error)
	GetReceiptFn    func(ctx context.Context, userID, receiptID uuid.UUID) (*domain.Receipt, error)
	ListReceiptsFn  func(ctx context.Context, userID uuid.UUID) ([]*domain.Receipt, error)
	CreateInvoiceFn func(ctx context.Context, userID uuid.UUID, in domain.InvoiceInput) (*domain.Invoice, error)
	GetInvoiceFn    func(ctx context.Context, userID, invoiceID uuid.UUID) (*domain.Invoice, error)
	ListInvoicesFn  func(ctx context.Context, userID uuid.UUID) ([]*domain.Invoice, error)
	UpdateInvoiceFn func(ctx context.Context, userID, invoiceID uuid.UUID, u domain.InvoiceUpdate) (*domain.Invoice, error)
	HistoryFn       func(ctx context.Context, userID uuid.UUID) (*service.History, error)
}

func (m *MockDocumentService) CreateReceipt(
	ctx context.Context,
	userID uuid.UUID,
	in domain.ReceiptInput,
) (*domain.Receipt, error) {
	return m.CreateReceiptFn(ctx, userID, in)
}

func (m *MockDocumentService) GetReceipt(ctx context.Context, userID, receiptID uuid.UUID) (*domain.Receipt, error) {
	return m.GetReceiptFn(ctx, userID, receiptID)
}

func (m *MockDocumentService) ListReceipts(ctx context.Context, userID uuid.UUID) ([]*domain.Receipt, error) {
	return m.ListReceiptsFn(ctx, userID)
}

func (m *MockDocumentService) CreateInvoice(
	ctx context.Context,
	userID uuid.UUID,
	in domain.InvoiceInput,
) (*domain.Invoice, error) {
	return m.CreateInvoiceFn(ctx, userID, in)
}

func (m *MockDocumentService) GetInvoice(ctx context.Context, userID, invoiceID uuid.UUID) (*domain.Invoice, error) {
	return m.GetInvoiceFn(ctx, userID, invoiceID)
}

func (m *MockDocumentService) ListInvoices(ctx context.Context, userID uuid.UUID) ([]*domain.Invoice, error) {
	return m.ListInvoicesFn(ctx, userID)
}

func (m *MockDocumentService) UpdateInvoice(
	ctx context.Context,
	userID, invoiceID uuid.UUID,
	u domain.InvoiceUpdate,
) (*domain.Invoice, error) {
	return m.UpdateInvoiceFn(ctx, userID, invoiceID, u)
}

func (m *MockDocumentService) History(ctx context.Context, userID uuid.UUID) (*service.History, error) {
	return m.HistoryFn(ctx, userID)
}

// MockDisputeService is a mock implementation of service.DisputeService for testing
type MockDisputeService struct {
	CreateChallengeFn        func(ctx context.Context, in domain.ChallengeInput) (*domain.Challenge, error)
	ListChallengesForOwnerFn func(ctx context.Context, userID uuid.UUID) ([]*domain.Challenge, error)
	ResolveChallengeFn       func(
		ctx context.Context,
		userID, challengeID uuid.UUID,
		status string,
		notes *string,
	) (*domain.Challenge, error)
}

func (m *MockDisputeService) CreateChallenge(ctx context.Context, in domain.ChallengeInput) (*domain.Challenge, error) {
	return m.CreateChallengeFn(ctx, in)
}

func (m *MockDisputeService) ListChallengesForOwner(ctx context.Context, userID uuid.UUID) ([]*domain.Challenge, error) {
	return m.ListChallengesForOwnerFn(ctx, userID)
}

func (m *MockDisputeService) ResolveChallenge(
	ctx context.Context,
	userID, challengeID uuid.UUID,
	status string,
	notes *string,
) (*domain.Challenge, error) {
	return m.ResolveChallengeFn(ctx, userID, challengeID, status, notes)
}

// MockLogoUploader is a mock implementation of LogoUploader for testing
type MockLogoUploader struct {
	UploadLogoFn func(ctx context.Context, userID uuid.UUID, filename string, data []byte) (*media.Upload, error)
}

func (m *MockLogoUploader) UploadLogo(
	ctx context.Context,
	userID uuid.UUID,
	filename string,
	data []byte,
) (*media.Upload, error) {
	return m.UploadLogoFn(ctx, userID, filename, data)
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// newRequest builds a JSON request. A non-nil userID marks the request as
// authenticated; params become chi URL parameters.
func newRequest(method, target, body string, userID *uuid.UUID, params map[string]string) *http.Request {
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}

	ctx := req.Context()
	if userID != nil {
		ctx = shared.WithAuth(ctx, &auth.Claims{UserID: *userID, TokenType: auth.TokenTypeAccess})
	}
	if len(params) > 0 {
		rctx := chi.NewRouteContext()
		for k, v := range params {
			rctx.URLParams.Add(k, v)
		}
		ctx = context.WithValue(ctx, chi.RouteCtxKey, rctx)
	}
	return req.WithContext(ctx)
}
