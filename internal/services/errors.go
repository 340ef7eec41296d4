// internal/services/errors.go
package services

import (
	"errors"
	"fmt"
)

// File validation errors. Reported to the caller with a specific code and no
// state mutated.
var (
	ErrFileTooLarge     = errors.New("file is too large")
	ErrDeleteNotAllowed = errors.New("file deletion is not allowed")
	ErrEmptyFileName    = errors.New("file name is empty")
)

// InvalidFileTypeError carries the rejected extension so the boundary can
// render it.
type InvalidFileTypeError struct {
	Extension string
}

func (e *InvalidFileTypeError) Error() string {
	return fmt.Sprintf("invalid file type %q", e.Extension)
}

// Purchase eligibility errors. Each maps to a distinct machine-readable code;
// none leaves partial state behind.
var (
	ErrNoFile              = errors.New("product has no file attached")
	ErrBuyingBySeller      = errors.New("a seller cannot buy their own product")
	ErrAlreadyBought       = errors.New("product has already been bought")
	ErrInsufficientBalance = errors.New("insufficient balance")
)

// ErrTransactionConflict is returned when the database aborts a serializable
// transaction because of a concurrent conflicting one. The operation is
// retryable; it must never be reported as AlreadyBought.
var ErrTransactionConflict = errors.New("transaction aborted by a concurrent conflicting one, retry")

// Integrity errors.
var (
	ErrMalformedStorageName = errors.New("malformed storage name")
	ErrProductNotFound      = errors.New("product not found")
	ErrUserNotFound         = errors.New("user not found")
)

// Top-up errors.
var (
	ErrInvalidAmount             = errors.New("top-up amount is below the minimum")
	ErrInvalidOrderID            = errors.New("unknown top-up order id")
	ErrPaymentServiceInteraction = errors.New("payment service interaction failed")
)
