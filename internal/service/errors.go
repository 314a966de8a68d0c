package service

import (
	"errors"
	"fmt"
)

// Error taxonomy surfaced to handlers. Everything here maps to a 4xx;
// anything else coming out of a service is infrastructure (5xx).
var (
	ErrInvalidQuantity = errors.New("quantity must be a positive integer")
	ErrInvalidPrice    = errors.New("unit price cannot be negative")
	ErrProductNotFound = errors.New("product not found")
	ErrSaleNotFound    = errors.New("sale not found")
	ErrEmptyCart       = errors.New("cart is empty")
	ErrFolioCollision  = errors.New("folio collision, retry the sale")
	ErrSKUExists       = errors.New("SKU already exists")
	ErrCategoryExists  = errors.New("category name already exists")
)

// InsufficientStockError carries the available quantity so the caller
// can tell the cashier how much is actually left.
type InsufficientStockError struct {
	SKU       string
	Available int
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("insufficient stock for %s: %d available", e.SKU, e.Available)
}

// ValidationError wraps a struct-validation failure so handlers can tell
// malformed input apart from infrastructure failures.
type ValidationError struct {
	Field string
	Tag   string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed: field '%s' failed on tag '%s'", e.Field, e.Tag)
}
