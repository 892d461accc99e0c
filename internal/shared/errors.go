package shared

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound indicates a referenced entity is absent.
	ErrNotFound = errors.New("not found")
	// ErrInvalidState occurs when an operation is illegal for the current order status.
	ErrInvalidState = errors.New("invalid state")
	// ErrInsufficientStock occurs when an adjustment would drive a quantity negative.
	ErrInsufficientStock = errors.New("insufficient stock")
	// ErrCapacityExceeded occurs when a mutation would exceed warehouse capacity.
	ErrCapacityExceeded = errors.New("capacity exceeded")
	// ErrDuplicate indicates a unique constraint violation.
	ErrDuplicate = errors.New("duplicate entry")
	// ErrReferenced indicates a delete blocked by existing references.
	ErrReferenced = errors.New("entity still referenced")
	// ErrValidation indicates invalid input.
	ErrValidation = errors.New("validation failed")
)

// InsufficientStockError carries the amounts needed for a user-facing message.
type InsufficientStockError struct {
	Available int64
	Requested int64
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("insufficient stock: available %d, requested %d", e.Available, e.Requested)
}

func (e *InsufficientStockError) Unwrap() error { return ErrInsufficientStock }

// CapacityExceededError carries remaining space versus the requested amount.
type CapacityExceededError struct {
	Available int64
	Requested int64
}

func (e *CapacityExceededError) Error() string {
	return fmt.Sprintf("warehouse capacity exceeded: available space %d, requested %d", e.Available, e.Requested)
}

func (e *CapacityExceededError) Unwrap() error { return ErrCapacityExceeded }
