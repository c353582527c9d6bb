package domain

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// DocumentKind distinguishes the two document variants.
type DocumentKind string

const (
	DocumentKindReceipt DocumentKind = "receipt"
	DocumentKindInvoice DocumentKind = "invoice"
)

// DefaultInvoiceStatus is assigned to new invoices without a status.
const DefaultInvoiceStatus = "pending"

// DefaultPaymentWindow is added to the issue date when no due date is given.
const DefaultPaymentWindow = 30 * 24 * time.Hour

var documentNumberPattern = regexp.MustCompile(`^(RCP|INV)-[0-9A-F]{8}$`)

// NumberPrefix returns the prefix used in document numbers of this kind.
func (k DocumentKind) NumberPrefix() string {
	if k == DocumentKindInvoice {
		return "INV"
	}
	return "RCP"
}

// IsValid reports whether k is a known kind.
func (k DocumentKind) IsValid() bool {
	return k == DocumentKindReceipt || k == DocumentKindInvoice
}

// GenerateNumber returns a new document number, e.g. RCP-1A2B3C4D.
func GenerateNumber(kind DocumentKind) string {
	return kind.NumberPrefix() + "-" + strings.ToUpper(uuid.NewString()[:8])
}

// IsValidNumber reports whether number is well formed for kind.
func IsValidNumber(kind DocumentKind, number string) bool {
	return documentNumberPattern.MatchString(number) &&
		strings.HasPrefix(number, kind.NumberPrefix()+"-")
}

// Item is one line of a receipt or invoice.
type Item struct {
	Name        string  `json:"name"`
	Description *string `json:"description"`
	Quantity    float64 `json:"quantity"`
	UnitPrice   float64 `json:"unit_price"`
	Total       float64 `json:"total"`
}

// Items is an ordered item list, persisted as a JSON array.
type Items []Item

// Value implements driver.Valuer.
func (items Items) Value() (driver.Value, error) {
	if items == nil {
		return []byte("[]"), nil
	}
	b, err := json.Marshal([]Item(items))
	if err != nil {
		return nil, fmt.Errorf("failed to encode items: %w", err)
	}
	return b, nil
}

// Scan implements sql.Scanner.
func (items *Items) Scan(src interface{}) error {
	var raw []byte
	switch v := src.(type) {
	case nil:
		*items = Items{}
		return nil
	case []byte:
		raw = v
	case string:
		raw = []byte(v)
	default:
		return fmt.Errorf("%w: cannot scan %T into items", ErrInvalidFormat, src)
	}

	var decoded []Item
	if err := json.Unmarshal(raw, &decoded); err != nil {
		return fmt.Errorf("%w: items: %v", ErrInvalidFormat, err)
	}
	if decoded == nil {
		decoded = []Item{}
	}
	*items = decoded
	return nil
}

// Validate checks every item has a name.
func (items Items) Validate() error {
	for i, item := range items {
		if isBlank(item.Name) {
			return NewValidationError(fmt.Sprintf("items[%d].name", i), "is required", nil)
		}
	}
	return nil
}

// Sum adds up the item totals.
func (items Items) Sum() decimal.Decimal {
	sum := decimal.Zero
	for _, item := range items {
		sum = sum.Add(decimal.NewFromFloat(item.Total))
	}
	return sum
}

// Customer holds the contact details printed on a document.
type Customer struct {
	Name    *string `json:"customer_name"`
	Email   *string `json:"customer_email"`
	Phone   *string `json:"customer_phone"`
	Address *string `json:"customer_address"`
}

// Amounts are the caller-supplied monetary fields of a document. They are
// stored as given and never recomputed.
type Amounts struct {
	Subtotal  float64 `json:"subtotal"`
	TaxRate   float64 `json:"tax_rate"`
	TaxAmount float64 `json:"tax_amount"`
	Discount  float64 `json:"discount"`
	Total     float64 `json:"total"`
}

// MatchesItems reports whether the subtotal equals the sum of item totals,
// compared to the cent. An empty item list always matches.
func (a Amounts) MatchesItems(items Items) bool {
	if len(items) == 0 {
		return true
	}
	return decimal.NewFromFloat(a.Subtotal).Round(2).Equal(items.Sum().Round(2))
}

// Receipt is a proof of payment issued by a business.
type Receipt struct {
	ID            uuid.UUID `json:"id"`
	ReceiptNumber string    `json:"receipt_number"`
	UserID        uuid.UUID `json:"user_id"`
	BusinessID    uuid.UUID `json:"business_id"`
	Customer
	Date time.Time `json:"date"`
	Amounts
	PaymentMethod *string   `json:"payment_method"`
	Notes         *string   `json:"notes"`
	Items         Items     `json:"items"`
	CreatedAt     time.Time `json:"created_at"`
}

// ReceiptInput carries the client-supplied fields of a new receipt.
type ReceiptInput struct {
	Customer
	Date *time.Time
	Amounts
	PaymentMethod *string
	Notes         *string
	Items         Items
}

// NewReceipt builds a receipt owned by userID under businessID. The number
// is assigned separately with GenerateNumber.
func NewReceipt(userID, businessID uuid.UUID, in ReceiptInput) (*Receipt, error) {
	now := time.Now().UTC()
	r := &Receipt{
		ID:            uuid.New(),
		ReceiptNumber: GenerateNumber(DocumentKindReceipt),
		UserID:        userID,
		BusinessID:    businessID,
		Customer:      in.Customer,
		Date:          now,
		Amounts:       in.Amounts,
		PaymentMethod: in.PaymentMethod,
		Notes:         in.Notes,
		Items:         in.Items,
		CreatedAt:     now,
	}
	if in.Date != nil {
		r.Date = in.Date.UTC()
	}
	if r.Items == nil {
		r.Items = Items{}
	}

	if err := r.Validate(); err != nil {
		return nil, err
	}
	return r, nil
}

// Validate checks ownership references, the number format, and the items.
func (r *Receipt) Validate() error {
	if r.UserID == uuid.Nil {
		return NewValidationError("user_id", "is required", ErrEmptyUserID)
	}
	if r.BusinessID == uuid.Nil {
		return NewValidationError("business_id", "is required", ErrInvalidID)
	}
	if !IsValidNumber(DocumentKindReceipt, r.ReceiptNumber) {
		return NewValidationError("receipt_number", "has invalid format", ErrInvalidFormat)
	}
	return r.Items.Validate()
}

// Invoice is a request for payment issued by a business.
type Invoice struct {
	ID            uuid.UUID `json:"id"`
	InvoiceNumber string    `json:"invoice_number"`
	UserID        uuid.UUID `json:"user_id"`
	BusinessID    uuid.UUID `json:"business_id"`
	Customer
	CustomerTaxID *string   `json:"customer_tax_id"`
	IssueDate     time.Time `json:"issue_date"`
	DueDate       time.Time `json:"due_date"`
	Amounts
	Status       string    `json:"status"`
	PaymentTerms *string   `json:"payment_terms"`
	Notes        *string   `json:"notes"`
	Items        Items     `json:"items"`
	CreatedAt    time.Time `json:"created_at"`
}

// InvoiceInput carries the client-supplied fields of a new invoice.
type InvoiceInput struct {
	Customer
	CustomerTaxID *string
	IssueDate     *time.Time
	DueDate       *time.Time
	Amounts
	Status       *string
	PaymentTerms *string
	Notes        *string
	Items        Items
}

// InvoiceUpdate lists the only invoice fields that may change after issue.
type InvoiceUpdate struct {
	Status *string
	Notes  *string
}

// NewInvoice builds an invoice owned by userID under businessID, applying
// the default issue date, due date and status.
func NewInvoice(userID, businessID uuid.UUID, in InvoiceInput) (*Invoice, error) {
	now := time.Now().UTC()
	inv := &Invoice{
		ID:            uuid.New(),
		InvoiceNumber: GenerateNumber(DocumentKindInvoice),
		UserID:        userID,
		BusinessID:    businessID,
		Customer:      in.Customer,
		CustomerTaxID: in.CustomerTaxID,
		IssueDate:     now,
		Amounts:       in.Amounts,
		Status:        DefaultInvoiceStatus,
		PaymentTerms:  in.PaymentTerms,
		Notes:         in.Notes,
		Items:         in.Items,
		CreatedAt:     now,
	}
	if in.IssueDate != nil {
		inv.IssueDate = in.IssueDate.UTC()
	}
	if in.DueDate != nil {
		inv.DueDate = in.DueDate.UTC()
	} else {
		inv.DueDate = inv.IssueDate.Add(DefaultPaymentWindow)
	}
	if in.Status != nil && !isBlank(*in.Status) {
		inv.Status = strings.TrimSpace(*in.Status)
	}
	if inv.Items == nil {
		inv.Items = Items{}
	}

	if err := inv.Validate(); err != nil {
		return nil, err
	}
	return inv, nil
}

// Validate checks ownership references, the number format, the customer
// name and the items.
func (inv *Invoice) Validate() error {
	if inv.UserID == uuid.Nil {
		return NewValidationError("user_id", "is required", ErrEmptyUserID)
	}
	if inv.BusinessID == uuid.Nil {
		return NewValidationError("business_id", "is required", ErrInvalidID)
	}
	if !IsValidNumber(DocumentKindInvoice, inv.InvoiceNumber) {
		return NewValidationError("invoice_number", "has invalid format", ErrInvalidFormat)
	}
	if inv.Name == nil || isBlank(*inv.Name) {
		return NewValidationError("customer_name", "is required", nil)
	}
	if err := requireNonEmpty("status", inv.Status); err != nil {
		return err
	}
	return inv.Items.Validate()
}

// Apply copies the non-nil fields of u onto the invoice.
func (inv *Invoice) Apply(u InvoiceUpdate) error {
	if u.Status != nil {
		if err := requireNonEmpty("status", *u.Status); err != nil {
			return err
		}
		inv.Status = strings.TrimSpace(*u.Status)
	}
	if u.Notes != nil {
		notes := *u.Notes
		inv.Notes = &notes
	}
	return nil
}
