package service

import (
	"errors"
	"fmt"

	"github.com/phrazzld/receipt-api/internal/store"
)

// Common service errors - sentinel errors used across service implementations.
// Callers check them with errors.Is; the API layer maps them to HTTP status codes.
var (
	// ErrNotOwned indicates a resource belongs to a different business than the caller's.
	// API layer should map this to HTTP 403 Forbidden.
	ErrNotOwned = errors.New("resource is owned by another business")

	// ErrBusinessNotFound indicates the caller has no business profile.
	ErrBusinessNotFound = errors.New("business not found")

	// ErrReceiptNotFound is returned for receipts that do not exist or are not the caller's.
	ErrReceiptNotFound = errors.New("receipt not found")

	// ErrInvoiceNotFound is returned for invoices that do not exist or are not the caller's.
	ErrInvoiceNotFound = errors.New("invoice not found")

	// ErrChallengeNotFound indicates the challenge does not exist.
	ErrChallengeNotFound = errors.New("challenge not found")

	// ErrUserNotFound indicates the user does not exist.
	ErrUserNotFound = errors.New("user not found")

	// ErrNumberConflict is returned when no unique document number could be
	// generated within the retry budget.
	// API layer should map this to HTTP 409 Conflict.
	ErrNumberConflict = errors.New("could not allocate a unique document number")

	// ErrInvalidCredentials is returned for an unknown email, a wrong password,
	// or an inactive account. The three cases are indistinguishable to callers.
	ErrInvalidCredentials = errors.New("invalid email or password")
)

// storeSentinels maps store not-found errors onto their service counterparts.
var storeSentinels = []struct {
	storeErr   error
	serviceErr error
}{
	{store.ErrBusinessNotFound, ErrBusinessNotFound},
	{store.ErrReceiptNotFound, ErrReceiptNotFound},
	{store.ErrInvoiceNotFound, ErrInvoiceNotFound},
	{store.ErrChallengeNotFound, ErrChallengeNotFound},
	{store.ErrUserNotFound, ErrUserNotFound},
}

// ServiceError wraps an unexpected failure with the operation that produced it.
type ServiceError struct {
	// Service is the owning service, e.g. "document" or "dispute".
	Service string
	// Op is the operation that failed, e.g. "create_receipt".
	Op string
	// Err is the underlying error.
	Err error
}

// Error implements the error interface for ServiceError.
func (e *ServiceError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s service %s operation failed", e.Service, e.Op)
	}
	return fmt.Sprintf("%s service %s operation failed: %v", e.Service, e.Op, e.Err)
}

// Unwrap returns the wrapped error to support errors.Is/errors.As.
func (e *ServiceError) Unwrap() error {
	return e.Err
}

// NewServiceError wraps err with operation context. Service sentinels,
// validation errors and known store errors are returned as their service
// sentinel without wrapping, so the API layer sees a stable value.
func NewServiceError(service, op string, err error) error {
	if err == nil {
		return nil
	}

	for _, sentinel := range []error{
		ErrNotOwned, ErrBusinessNotFound, ErrReceiptNotFound, ErrInvoiceNotFound,
		ErrChallengeNotFound, ErrUserNotFound, ErrNumberConflict, ErrInvalidCredentials,
	} {
		if errors.Is(err, sentinel) {
			return sentinel
		}
	}
	for _, m := range storeSentinels {
		if errors.Is(err, m.storeErr) {
			return m.serviceErr
		}
	}

	var ve interface{ SafeMessage() string }
	if errors.As(err, &ve) || errors.Is(err, store.ErrEmailExists) {
		return err
	}

	return &ServiceError{Service: service, Op: op, Err: err}
}
