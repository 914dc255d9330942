package model

import "fmt"

// DomainError represents a domain-level failure with a stable code.
// Codes, not messages, are the contract callers match on.
type DomainError struct {
	Code    string
	Message string
}

// Error implements the error interface
func (e DomainError) Error() string {
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Is matches errors by code so wrapped copies still satisfy errors.Is.
func (e DomainError) Is(target error) bool {
	t, ok := target.(DomainError)
	return ok && t.Code == e.Code
}

// WithMessage returns a copy carrying extra detail under the same code.
func (e DomainError) WithMessage(format string, args ...interface{}) DomainError {
	return DomainError{Code: e.Code, Message: e.Message + ": " + fmt.Sprintf(format, args...)}
}

// Error taxonomy for the post lifecycle
var (
	// ErrNotFound indicates an unknown post id
	ErrNotFound = DomainError{
		Code:    "POST_NOT_FOUND",
		Message: "Post not found",
	}

	// ErrInvalidTransition indicates an attempted illegal state change
	ErrInvalidTransition = DomainError{
		Code:    "POST_INVALID_TRANSITION",
		Message: "Invalid lifecycle transition",
	}

	// ErrValidationFailed indicates the post violates one or more content rules
	ErrValidationFailed = DomainError{
		Code:    "POST_VALIDATION_FAILED",
		Message: "Post failed validation",
	}

	// ErrGenerationUnavailable indicates the content generator could not produce a draft
	ErrGenerationUnavailable = DomainError{
		Code:    "GENERATION_UNAVAILABLE",
		Message: "Content generation is unavailable",
	}

	// ErrExecutionConflict indicates an execution is already in flight for the post
	ErrExecutionConflict = DomainError{
		Code:    "EXEC_CONFLICT",
		Message: "An execution is already in flight for this post",
	}

	// ErrExecutionAlreadyClosed indicates a second close of the same execution
	ErrExecutionAlreadyClosed = DomainError{
		Code:    "EXEC_ALREADY_CLOSED",
		Message: "Execution is already closed",
	}

	// ErrExecutionTimeout indicates the external save exceeded its deadline
	ErrExecutionTimeout = DomainError{
		Code:    "EXEC_TIMEOUT",
		Message: "Execution timed out",
	}

	// ErrExecutionFailed indicates the external save could not be confirmed
	ErrExecutionFailed = DomainError{
		Code:    "EXEC_FAILED",
		Message: "Execution failed",
	}
)
