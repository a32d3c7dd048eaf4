package apperrors

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrNotFound indicates that a requested resource could not be found.
var ErrNotFound = errors.New("resource not found")

// ErrValidation indicates that input data failed validation checks.
var ErrValidation = errors.New("validation error")

// ErrDuplicate indicates that an attempt was made to create a resource that already exists.
var ErrDuplicate = errors.New("resource already exists")

// ErrForbidden indicates that the acting user lacks permission for the operation.
var ErrForbidden = errors.New("forbidden")

// Approval engine errors.
var (
	// ErrEmptyRoster indicates that an approver selector which must resolve to at
	// least one approver resolved to none. This is a workflow configuration error,
	// surfaced to the workflow author rather than the submitting employee.
	ErrEmptyRoster = errors.New("approver selector resolved to an empty roster")

	// ErrAmbiguousApprover indicates that a specific-approver selector resolved to
	// more than one identity. Also a workflow configuration error.
	ErrAmbiguousApprover = errors.New("specific approver selector resolved to multiple identities")

	// ErrNotEligibleApprover indicates that the acting user is not part of the
	// frozen approver roster for the expense.
	ErrNotEligibleApprover = errors.New("user is not an eligible approver for this expense")

	// ErrAlreadyResolved indicates that the approval record already carries a
	// terminal verdict. The decision is a no-op; callers should refresh state.
	ErrAlreadyResolved = errors.New("expense approval is already resolved")

	// ErrVersionConflict indicates that an optimistic-concurrency write lost the
	// race. The whole load-evaluate-persist cycle should be retried.
	ErrVersionConflict = errors.New("record was modified concurrently")
)

// AppError wraps an error with a status code and a message suitable for surfacing
// to callers.
type AppError struct {
	Code    int
	Message string
	Err     error
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// NewAppError creates a new AppError wrapping the given cause.
func NewAppError(code int, message string, err error) *AppError {
	return &AppError{Code: code, Message: message, Err: err}
}

// NewNotFoundError creates an AppError for a missing resource, wrapping ErrNotFound
// so callers can check with errors.Is.
func NewNotFoundError(message string) *AppError {
	return &AppError{Code: http.StatusNotFound, Message: message, Err: ErrNotFound}
}

// NewConflictError creates an AppError for duplicate resources, wrapping ErrDuplicate.
func NewConflictError(message string) *AppError {
	return &AppError{Code: http.StatusConflict, Message: message, Err: ErrDuplicate}
}

// NewValidationError creates an AppError for invalid input, wrapping ErrValidation.
func NewValidationError(message string) *AppError {
	return &AppError{Code: http.StatusBadRequest, Message: message, Err: ErrValidation}
}
