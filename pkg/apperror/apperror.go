// Package apperror holds the error taxonomy shared by every use case. Handlers
// translate these into HTTP status codes with HTTPStatus.
package apperror

import (
	"errors"
	"fmt"
	"net/http"
)

// Validation kinds.
const (
	KindMissingReference    = "missing reference"
	KindIdentifierMismatch  = "identifier mismatch"
	KindItemNotFound        = "referenced item not found"
	KindInvalidItemType     = "invalid item type"
	KindInvalidInput        = "invalid input"
	KindInvalidStatus       = "invalid status"
	KindConflictingDiscount = "conflicting discount"
	KindInvalidDateRange    = "invalid date range"
	KindDuplicate           = "duplicate"
)

var (
	ErrValidation           = errors.New("validation failed")
	ErrNotFound             = errors.New("not found")
	ErrConcurrencyConflict  = errors.New("concurrency conflict")
	ErrReferentialIntegrity = errors.New("referential integrity violation")
)

// ValidationError reports bad or missing input. Kind is a short machine readable reason.
type ValidationError struct {
	Kind    string
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("%s: %s: %s", e.Kind, e.Field, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *ValidationError) Is(target error) bool { return target == ErrValidation }

func NewValidation(kind, field, message string) *ValidationError {
	return &ValidationError{Kind: kind, Field: field, Message: message}
}

type NotFoundError struct {
	Resource string
	ID       any
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %v not found", e.Resource, e.ID)
}

func (e *NotFoundError) Is(target error) bool { return target == ErrNotFound }

func NewNotFound(resource string, id any) *NotFoundError {
	return &NotFoundError{Resource: resource, ID: id}
}

// ConcurrencyConflictError is returned when a row changed between read and write.
type ConcurrencyConflictError struct {
	Resource string
	ID       any
}

func (e *ConcurrencyConflictError) Error() string {
	return fmt.Sprintf("%s %v was modified concurrently", e.Resource, e.ID)
}

func (e *ConcurrencyConflictError) Is(target error) bool { return target == ErrConcurrencyConflict }

func NewConcurrencyConflict(resource string, id any) *ConcurrencyConflictError {
	return &ConcurrencyConflictError{Resource: resource, ID: id}
}

// ReferentialIntegrityError is returned when a delete is blocked by a dependent row.
type ReferentialIntegrityError struct {
	Resource  string
	ID        any
	Dependent string
}

func (e *ReferentialIntegrityError) Error() string {
	return fmt.Sprintf("%s %v is still referenced by %s", e.Resource, e.ID, e.Dependent)
}

func (e *ReferentialIntegrityError) Is(target error) bool { return target == ErrReferentialIntegrity }

func NewReferentialIntegrity(resource string, id any, dependent string) *ReferentialIntegrityError {
	return &ReferentialIntegrityError{Resource: resource, ID: id, Dependent: dependent}
}

// HTTPStatus maps an error to the status code the API answers with.
func HTTPStatus(err error) int {
	switch {
	case err == nil:
		return http.StatusOK
	case errors.Is(err, ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrConcurrencyConflict), errors.Is(err, ErrReferentialIntegrity):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// ValidationKind returns the kind of a wrapped ValidationError, or "".
func ValidationKind(err error) string {
	var ve *ValidationError
	if errors.As(err, &ve) {
		return ve.Kind
	}
	return ""
}
