package shared

import "errors"

// DomainError represents a domain-level error
type DomainError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Error implements the error interface
func (e *DomainError) Error() string {
	return e.Message
}

// Is reports whether target is a DomainError carrying the same code, so that
// errors.Is(err, shared.ErrLocked) matches any locked error regardless of message.
func (e *DomainError) Is(target error) bool {
	var t *DomainError
	if !errors.As(target, &t) {
		return false
	}
	return e.Code == t.Code
}

// NewDomainError creates a new domain error
func NewDomainError(code, message string) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
	}
}

// Error codes
const (
	CodeValidation        = "VALIDATION_ERROR"
	CodeNotFound          = "NOT_FOUND"
	CodeLocked            = "LOCKED"
	CodeInvalidTransition = "INVALID_TRANSITION"
	CodePlanConflict      = "PLAN_CONFLICT"
	CodeStaleData         = "STALE_DATA"
)

// Common domain errors
var (
	ErrValidation        = NewDomainError(CodeValidation, "Invalid input provided")
	ErrNotFound          = NewDomainError(CodeNotFound, "Resource not found")
	ErrLocked            = NewDomainError(CodeLocked, "Resource is locked in a terminal state")
	ErrInvalidTransition = NewDomainError(CodeInvalidTransition, "Status transition is not allowed")
	ErrPlanConflict      = NewDomainError(CodePlanConflict, "Plan references orders already consumed by another shipment")
	ErrStaleData         = NewDomainError(CodeStaleData, "Resource was modified by another process")
)

// CodeOf returns the domain error code carried by err, or "" if err is not a DomainError.
func CodeOf(err error) string {
	var de *DomainError
	if errors.As(err, &de) {
		return de.Code
	}
	return ""
}
