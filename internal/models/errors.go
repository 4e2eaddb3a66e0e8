package models

import "fmt"

// ValidationError reports malformed or missing input on create or update.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return "invalid input: " + e.Reason
	}
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// NewValidationError builds a ValidationError for field.
func NewValidationError(field, reason string) *ValidationError {
	return &ValidationError{Field: field, Reason: reason}
}

// NotFoundError reports an operation against a nonexistent entity.
type NotFoundError struct {
	Kind string // "product", "patient" or "session"
	ID   string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s not found: %s", e.Kind, e.ID)
}

// InsufficientStockError reports a requested or implied deduction larger than stock on hand.
type InsufficientStockError struct {
	ProductID string
	Name      string
	Requested int
	Available int
}

func (e *InsufficientStockError) Error() string {
	name := e.Name
	if name == "" {
		name = e.ProductID
	}
	return fmt.Sprintf("insufficient stock for %s: requested %d, available %d", name, e.Requested, e.Available)
}

// IncompleteBillError reports a commit attempted without a patient or without lines.
type IncompleteBillError struct {
	Reason string
}

func (e *IncompleteBillError) Error() string {
	return "bill is incomplete: " + e.Reason
}
