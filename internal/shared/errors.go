package shared

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound indicates a missing product, sale, order, user or discount.
	ErrNotFound = errors.New("not found")
	// ErrConflict indicates a duplicate barcode or name.
	ErrConflict = errors.New("already exists")
	// ErrValidation indicates malformed input.
	ErrValidation = errors.New("validation failed")
	// ErrInvalidState occurs when an action violates a status workflow,
	// e.g. deleting a non-pending purchase order.
	ErrInvalidState = errors.New("invalid state")
	// ErrHasDependents blocks deletion while other records reference the entity.
	ErrHasDependents = errors.New("record has dependents")
	// ErrDiscountUnavailable indicates an inactive, expired or not-yet-started discount.
	ErrDiscountUnavailable = errors.New("discount not available")
	// ErrInvalidCredentials indicates login failure.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrUnauthorized indicates a missing or invalid bearer token.
	ErrUnauthorized = errors.New("unauthorized")
	// ErrForbidden indicates the actor's role lacks the required capability.
	ErrForbidden = errors.New("forbidden")
)

// InsufficientStockError reports a stock-sufficiency violation, naming the
// product and the quantity actually available.
type InsufficientStockError struct {
	ProductID   int64
	ProductName string
	Available   int
	Requested   int
}

func (e *InsufficientStockError) Error() string {
	name := e.ProductName
	if name == "" {
		name = fmt.Sprintf("product %d", e.ProductID)
	}
	return fmt.Sprintf("not enough stock for %s: available %d, requested %d", name, e.Available, e.Requested)
}

// IsInsufficientStock reports whether err wraps an InsufficientStockError.
func IsInsufficientStock(err error) bool {
	var target *InsufficientStockError
	return errors.As(err, &target)
}
