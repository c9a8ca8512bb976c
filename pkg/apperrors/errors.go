// Package apperrors defines the typed error taxonomy shared by the finance
// services. Handlers map these onto HTTP statuses through pkg/response.
package apperrors

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// ValidationError signals a missing or malformed required field.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

func NewValidation(format string, args ...interface{}) *ValidationError {
	return &ValidationError{Message: fmt.Sprintf(format, args...)}
}

// NotFoundError signals an absent record (transaction, student, product...).
type NotFoundError struct {
	Resource string
}

func (e *NotFoundError) Error() string {
	return e.Resource + " not found"
}

func NewNotFound(resource string) *NotFoundError {
	return &NotFoundError{Resource: resource}
}

// ConflictError signals a duplicate: an existing subscription for the same
// student, or an order number collision that survived the retry budget.
type ConflictError struct {
	Message string
}

func (e *ConflictError) Error() string {
	return e.Message
}

func NewConflict(format string, args ...interface{}) *ConflictError {
	return &ConflictError{Message: fmt.Sprintf(format, args...)}
}

// InsufficientFundsError carries both sides of the failed balance check so
// clients can display them.
type InsufficientFundsError struct {
	Current  decimal.Decimal
	Required decimal.Decimal
}

func (e *InsufficientFundsError) Error() string {
	return fmt.Sprintf("Insufficient balance. Current: %s, Required: %s", e.Current, e.Required)
}

// StateError signals a forbidden status transition, such as deleting a
// Completed transaction or cancelling a non-pending recharge.
type StateError struct {
	Message string
}

func (e *StateError) Error() string {
	return e.Message
}

func NewState(format string, args ...interface{}) *StateError {
	return &StateError{Message: fmt.Sprintf(format, args...)}
}

// InternalError wraps store or transaction-commit failures. The wrapped cause
// is kept for logs; response rendering decides how much of it to expose.
type InternalError struct {
	Cause error
}

func (e *InternalError) Error() string {
	if e.Cause == nil {
		return "internal error"
	}
	return e.Cause.Error()
}

func (e *InternalError) Unwrap() error {
	return e.Cause
}

func NewInternal(cause error) *InternalError {
	return &InternalError{Cause: cause}
}
