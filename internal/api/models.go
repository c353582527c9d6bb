package api

import (
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/receipt-api/internal/domain"
	"github.com/phrazzld/receipt-api/internal/service/auth"
)

// RegisterRequest defines the payload for the user registration endpoint.
type RegisterRequest struct {
	Email    string `json:"email"    validate:"required,email"`
	Password string `json:"password" validate:"required,min=8,max=72"`
}

// LoginRequest defines the payload for the login endpoint. Form-encoded
// logins send the email in a "username" field.
type LoginRequest struct {
	Email    string `json:"email"    validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// RefreshTokenRequest defines the payload for the token refresh endpoint.
type RefreshTokenRequest struct {
	RefreshToken string `json:"refresh_token" validate:"required"`
}

// TokenResponse is returned by login, registration and refresh.
type TokenResponse struct {
	AccessToken  string `json:"access_token"`
	TokenType    string `json:"token_type"`
	RefreshToken string `json:"refresh_token"`
	// ExpiresAt is the RFC 3339 expiry of the access token.
	ExpiresAt string `json:"expires_at"`
}

func tokenResponse(pair *auth.TokenPair) TokenResponse {
	return TokenResponse{
		AccessToken:  pair.AccessToken,
		TokenType:    "bearer",
		RefreshToken: pair.RefreshToken,
		ExpiresAt:    pair.ExpiresAt.UTC().Format(time.RFC3339),
	}
}

// UserResponse describes the authenticated user.
type UserResponse struct {
	ID        uuid.UUID `json:"id"`
	Email     string    `json:"email"`
	IsActive  bool      `json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
}

func userToResponse(u *domain.User) UserResponse {
	return UserResponse{ID: u.ID, Email: u.Email, IsActive: u.IsActive, CreatedAt: u.CreatedAt}
}

// BusinessRequest is used for create and partial update. Omitted fields are
// left unchanged.
type BusinessRequest struct {
	Name    *string `json:"name"     validate:"omitempty,max=255"`
	Address *string `json:"address"  validate:"omitempty,max=500"`
	City    *string `json:"city"     validate:"omitempty,max=100"`
	State   *string `json:"state"    validate:"omitempty,max=100"`
	ZipCode *string `json:"zip_code" validate:"omitempty,max=20"`
	Country *string `json:"country"  validate:"omitempty,max=100"`
	Phone   *string `json:"phone"    validate:"omitempty,max=50"`
	Email   *string `json:"email"    validate:"omitempty,max=255"`
	Website *string `json:"website"  validate:"omitempty,max=255"`
	TaxID   *string `json:"tax_id"   validate:"omitempty,max=100"`
	LogoURL *string `json:"logo_url" validate:"omitempty,max=500"`
}

func (req BusinessRequest) toPatch() domain.BusinessPatch {
	return domain.BusinessPatch{
		Name:    req.Name,
		Address: req.Address,
		City:    req.City,
		State:   req.State,
		ZipCode: req.ZipCode,
		Country: req.Country,
		Phone:   req.Phone,
		Email:   req.Email,
		Website: req.Website,
		TaxID:   req.TaxID,
		LogoURL: req.LogoURL,
	}
}

// ItemRequest is one line item. Quantity defaults to 1.
type ItemRequest struct {
	Name        string   `json:"name"        validate:"required"`
	Description *string  `json:"description"`
	Quantity    *float64 `json:"quantity"`
	UnitPrice   *float64 `json:"unit_price"  validate:"required"`
	Total       *float64 `json:"total"       validate:"required"`
}

func itemsFromRequest(reqs []ItemRequest) domain.Items {
	items := make(domain.Items, 0, len(reqs))
	for _, req := range reqs {
		quantity := 1.0
		if req.Quantity != nil {
			quantity = *req.Quantity
		}
		items = append(items, domain.Item{
			Name:        req.Name,
			Description: req.Description,
			Quantity:    quantity,
			UnitPrice:   *req.UnitPrice,
			Total:       *req.Total,
		})
	}
	return items
}

// AmountsRequest holds the monetary fields shared by receipts and invoices.
// They are stored exactly as sent.
type AmountsRequest struct {
	Subtotal  *float64 `json:"subtotal" validate:"required"`
	TaxRate   float64  `json:"tax_rate"`
	TaxAmount float64  `json:"tax_amount"`
	Discount  float64  `json:"discount"`
	Total     *float64 `json:"total"    validate:"required"`
}

func (req AmountsRequest) toAmounts() domain.Amounts {
	return domain.Amounts{
		Subtotal:  *req.Subtotal,
		TaxRate:   req.TaxRate,
		TaxAmount: req.TaxAmount,
		Discount:  req.Discount,
		Total:     *req.Total,
	}
}

// ReceiptRequest is the payload for issuing a receipt.
type ReceiptRequest struct {
	CustomerName    *string    `json:"customer_name"`
	CustomerEmail   *string    `json:"customer_email"`
	CustomerPhone   *string    `json:"customer_phone"`
	CustomerAddress *string    `json:"customer_address"`
	Date            *time.Time `json:"date"`
	AmountsRequest
	PaymentMethod *string       `json:"payment_method"`
	Notes         *string       `json:"notes"`
	Items         []ItemRequest `json:"items" validate:"required,dive"`
}

func (req ReceiptRequest) toInput() domain.ReceiptInput {
	return domain.ReceiptInput{
		Customer: domain.Customer{
			Name:    req.CustomerName,
			Email:   req.CustomerEmail,
			Phone:   req.CustomerPhone,
			Address: req.CustomerAddress,
		},
		Date:          req.Date,
		Amounts:       req.toAmounts(),
		PaymentMethod: req.PaymentMethod,
		Notes:         req.Notes,
		Items:         itemsFromRequest(req.Items),
	}
}

// InvoiceRequest is the payload for issuing an invoice.
type InvoiceRequest struct {
	CustomerName    string     `json:"customer_name"    validate:"required"`
	CustomerEmail   *string    `json:"customer_email"`
	CustomerPhone   *string    `json:"customer_phone"`
	CustomerAddress *string    `json:"customer_address"`
	CustomerTaxID   *string    `json:"customer_tax_id"`
	IssueDate       *time.Time `json:"issue_date"`
	DueDate         *time.Time `json:"due_date"`
	AmountsRequest
	Status       *string       `json:"status"`
	PaymentTerms *string       `json:"payment_terms"`
	Notes        *string       `json:"notes"`
	Items        []ItemRequest `json:"items" validate:"required,dive"`
}

func (req InvoiceRequest) toInput() domain.InvoiceInput {
	name := req.CustomerName
	return domain.InvoiceInput{
		Customer: domain.Customer{
			Name:    &name,
			Email:   req.CustomerEmail,
			Phone:   req.CustomerPhone,
			Address: req.CustomerAddress,
		},
		CustomerTaxID: req.CustomerTaxID,
		IssueDate:     req.IssueDate,
		DueDate:       req.DueDate,
		Amounts:       req.toAmounts(),
		Status:        req.Status,
		PaymentTerms:  req.PaymentTerms,
		Notes:         req.Notes,
		Items:         itemsFromRequest(req.Items),
	}
}

// InvoiceUpdateRequest carries the only fields of an issued invoice that
// may change.
type InvoiceUpdateRequest struct {
	Status *string `json:"status"`
	Notes  *string `json:"notes"`
}

// ChallengeRequest is the public payload for disputing a document.
// Exactly one of ReceiptID and InvoiceID must be set.
type ChallengeRequest struct {
	ReceiptID       *uuid.UUID `json:"receipt_id"`
	InvoiceID       *uuid.UUID `json:"invoice_id"`
	ChallengerName  string     `json:"challenger_name"  validate:"required,max=255"`
	ChallengerEmail string     `json:"challenger_email" validate:"required,email"`
	ChallengerPhone *string    `json:"challenger_phone"`
	Reason          string     `json:"reason"           validate:"required"`
}

// ChallengeResolveRequest sets the outcome of a challenge.
type ChallengeResolveRequest struct {
	Status          string  `json:"status"           validate:"required,oneof=pending resolved rejected"`
	ResolutionNotes *string `json:"resolution_notes"`
}

// ChallengeResponse is a challenge with the id of the disputed document.
type ChallengeResponse struct {
	ID              uuid.UUID              `json:"id"`
	ReceiptID       *uuid.UUID             `json:"receipt_id"`
	InvoiceID       *uuid.UUID             `json:"invoice_id"`
	ChallengerName  string                 `json:"challenger_name"`
	ChallengerEmail string                 `json:"challenger_email"`
	ChallengerPhone *string                `json:"challenger_phone"`
	Reason          string                 `json:"reason"`
	Status          domain.ChallengeStatus `json:"status"`
	ResolutionNotes *string                `json:"resolution_notes"`
	CreatedAt       time.Time              `json:"created_at"`
	ResolvedAt      *time.Time             `json:"resolved_at"`
}

func challengeToResponse(c *domain.Challenge) ChallengeResponse {
	return ChallengeResponse{
		ID:              c.ID,
		ReceiptID:       c.Document.ReceiptID(),
		InvoiceID:       c.Document.InvoiceID(),
		ChallengerName:  c.ChallengerName,
		ChallengerEmail: c.ChallengerEmail,
		ChallengerPhone: c.ChallengerPhone,
		Reason:          c.Reason,
		Status:          c.Status,
		ResolutionNotes: c.ResolutionNotes,
		CreatedAt:       c.CreatedAt,
		ResolvedAt:      c.ResolvedAt,
	}
}

func challengesToResponse(cs []*domain.Challenge) []ChallengeResponse {
	out := make([]ChallengeResponse, 0, len(cs))
	for _, c := range cs {
		out = append(out, challengeToResponse(c))
	}
	return out
}

// HealthResponse is returned by the health check.
type HealthResponse struct {
	Status string `json:"status"`
}
