package domain

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// ChallengeStatus is the lifecycle state of a challenge.
type ChallengeStatus string

const (
	ChallengeStatusPending  ChallengeStatus = "pending"
	ChallengeStatusResolved ChallengeStatus = "resolved"
	ChallengeStatusRejected ChallengeStatus = "rejected"
)

// IsValid reports whether s is one of the known statuses.
func (s ChallengeStatus) IsValid() bool {
	switch s {
	case ChallengeStatusPending, ChallengeStatusResolved, ChallengeStatusRejected:
		return true
	}
	return false
}

// ParseChallengeStatus converts s into a ChallengeStatus.
func ParseChallengeStatus(s string) (ChallengeStatus, error) {
	status := ChallengeStatus(strings.ToLower(strings.TrimSpace(s)))
	if !status.IsValid() {
		return "", NewValidationError("status", "must be one of pending, resolved, rejected",
			ErrInvalidChallengeStatus)
	}
	return status, nil
}

// DocumentRef points at exactly one receipt or invoice.
type DocumentRef struct {
	Kind DocumentKind
	ID   uuid.UUID
}

// ReceiptRef references a receipt.
func ReceiptRef(id uuid.UUID) DocumentRef {
	return DocumentRef{Kind: DocumentKindReceipt, ID: id}
}

// InvoiceRef references an invoice.
func InvoiceRef(id uuid.UUID) DocumentRef {
	return DocumentRef{Kind: DocumentKindInvoice, ID: id}
}

// NewDocumentRef builds a reference from the two optional ids a client
// sends. Exactly one must be set.
func NewDocumentRef(receiptID, invoiceID *uuid.UUID) (DocumentRef, error) {
	hasReceipt := receiptID != nil && *receiptID != uuid.Nil
	hasInvoice := invoiceID != nil && *invoiceID != uuid.Nil

	switch {
	case hasReceipt && !hasInvoice:
		return ReceiptRef(*receiptID), nil
	case hasInvoice && !hasReceipt:
		return InvoiceRef(*invoiceID), nil
	default:
		return DocumentRef{}, NewValidationError("", ErrInvalidDocumentRef.Error(), ErrInvalidDocumentRef)
	}
}

// Validate checks the reference is well formed.
func (r DocumentRef) Validate() error {
	if !r.Kind.IsValid() || r.ID == uuid.Nil {
		return NewValidationError("", ErrInvalidDocumentRef.Error(), ErrInvalidDocumentRef)
	}
	return nil
}

// ReceiptID returns the receipt id, or nil for an invoice reference.
func (r DocumentRef) ReceiptID() *uuid.UUID {
	if r.Kind != DocumentKindReceipt {
		return nil
	}
	id := r.ID
	return &id
}

// InvoiceID returns the invoice id, or nil for a receipt reference.
func (r DocumentRef) InvoiceID() *uuid.UUID {
	if r.Kind != DocumentKindInvoice {
		return nil
	}
	id := r.ID
	return &id
}

// Challenge is a dispute a customer raises against a receipt or invoice.
type Challenge struct {
	ID              uuid.UUID       `json:"id"`
	Document        DocumentRef     `json:"-"`
	ChallengerName  string          `json:"challenger_name"`
	ChallengerEmail string          `json:"challenger_email"`
	ChallengerPhone *string         `json:"challenger_phone"`
	Reason          string          `json:"reason"`
	Status          ChallengeStatus `json:"status"`
	ResolutionNotes *string         `json:"resolution_notes"`
	CreatedAt       time.Time       `json:"created_at"`
	ResolvedAt      *time.Time      `json:"resolved_at"`
}

// ChallengeInput carries the fields of a new challenge.
type ChallengeInput struct {
	Document        DocumentRef
	ChallengerName  string
	ChallengerEmail string
	ChallengerPhone *string
	Reason          string
}

// NewChallenge creates a pending challenge.
func NewChallenge(in ChallengeInput) (*Challenge, error) {
	c := &Challenge{
		ID:              uuid.New(),
		Document:        in.Document,
		ChallengerName:  strings.TrimSpace(in.ChallengerName),
		ChallengerEmail: NormalizeEmail(in.ChallengerEmail),
		ChallengerPhone: in.ChallengerPhone,
		Reason:          strings.TrimSpace(in.Reason),
		Status:          ChallengeStatusPending,
		CreatedAt:       time.Now().UTC(),
	}

	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

// Validate checks the challenge fields.
func (c *Challenge) Validate() error {
	if err := c.Document.Validate(); err != nil {
		return err
	}
	if err := requireNonEmpty("challenger_name", c.ChallengerName); err != nil {
		return err
	}
	if err := requireNonEmpty("challenger_email", c.ChallengerEmail); err != nil {
		return err
	}
	if !validateEmailFormat(c.ChallengerEmail) {
		return NewValidationError("challenger_email", "has invalid format", ErrInvalidEmail)
	}
	if err := requireNonEmpty("reason", c.Reason); err != nil {
		return err
	}
	if !c.Status.IsValid() {
		return NewValidationError("status", "must be one of pending, resolved, rejected",
			ErrInvalidChallengeStatus)
	}
	return nil
}

// Resolve overwrites the status and resolution notes. resolved_at is only
// stamped when the new status is not pending; moving back to pending keeps
// the previous timestamp.
func (c *Challenge) Resolve(status ChallengeStatus, notes *string, now time.Time) error {
	if !status.IsValid() {
		return NewValidationError("status", "must be one of pending, resolved, rejected",
			ErrInvalidChallengeStatus)
	}
	c.Status = status
	c.ResolutionNotes = notes
	if status != ChallengeStatusPending {
		t := now.UTC()
		c.ResolvedAt = &t
	}
	return nil
}
