// Package service provides business logic for gallery management:
// categories, photos, users, and audit event logging.
package service

import (
	"errors"
	"fmt"
)

// ValidationError reports invalid input on a create or update request.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// NewValidationError creates a ValidationError for a field.
func NewValidationError(field, message string) error {
	return &ValidationError{Field: field, Message: message}
}

// ConflictError reports an operation that conflicts with existing state,
// such as a duplicate name or deleting a category that still holds photos.
type ConflictError struct {
	Message    string
	PhotoCount int64 // set when a category delete is rejected
}

func (e *ConflictError) Error() string {
	return e.Message
}

// LimitExceededError reports a domain limit being hit, such as the
// per-category photo cap.
type LimitExceededError struct {
	Message string
	Limit   int
}

func (e *LimitExceededError) Error() string {
	return e.Message
}

// NotFoundError reports a missing entity.
type NotFoundError struct {
	Entity string
	ID     int64
}

func (e *NotFoundError) Error() string {
	if e.ID != 0 {
		return fmt.Sprintf("%s %d not found", e.Entity, e.ID)
	}
	return fmt.Sprintf("%s not found", e.Entity)
}

// IsValidation reports whether err is a ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// IsConflict reports whether err is a ConflictError.
func IsConflict(err error) bool {
	var ce *ConflictError
	return errors.As(err, &ce)
}

// IsLimitExceeded reports whether err is a LimitExceededError.
func IsLimitExceeded(err error) bool {
	var le *LimitExceededError
	return errors.As(err, &le)
}

// IsNotFound reports whether err is a NotFoundError.
func IsNotFound(err error) bool {
	var ne *NotFoundError
	return errors.As(err, &ne)
}
