package errors

import (
	"errors"
	"fmt"
)

// ErrorCategory classifies engine failures.
type ErrorCategory string

const (
	// Fatal errors should stop the calling command.
	ErrorCategoryFatal         ErrorCategory = "FATAL"
	ErrorCategoryConfiguration ErrorCategory = "CONFIG"

	// Recoverable errors are local to a single run or candidate.
	ErrorCategoryValidation ErrorCategory = "VALIDATION"
	ErrorCategoryData       ErrorCategory = "DATA"
	ErrorCategoryStrategy   ErrorCategory = "STRATEGY"
)

// EngineError is a categorized error with component context.
type EngineError struct {
	Category   ErrorCategory
	Component  string
	Operation  string
	Message    string
	Underlying error
}

func (e *EngineError) Error() string {
	if e.Underlying != nil {
		return fmt.Sprintf("[%s:%s] %s: %s: %v", e.Category, e.Component, e.Operation, e.Message, e.Underlying)
	}
	return fmt.Sprintf("[%s:%s] %s: %s", e.Category, e.Component, e.Operation, e.Message)
}

func (e *EngineError) Unwrap() error {
	return e.Underlying
}

// IsFatal reports whether this error should abort the whole invocation
// rather than the current run or candidate.
func (e *EngineError) IsFatal() bool {
	return e.Category == ErrorCategoryFatal || e.Category == ErrorCategoryConfiguration
}

// NewEngineError creates a categorized error.
func NewEngineError(category ErrorCategory, component, operation, message string) *EngineError {
	return &EngineError{
		Category:  category,
		Component: component,
		Operation: operation,
		Message:   message,
	}
}

// WrapError attaches category and component context to an existing error.
func WrapError(err error, category ErrorCategory, component, operation string) *EngineError {
	if err == nil {
		return nil
	}
	return &EngineError{
		Category:   category,
		Component:  component,
		Operation:  operation,
		Message:    "operation failed",
		Underlying: err,
	}
}

// NewValidationError builds the typed failure used for precondition
// violations, e.g. an empty trade ledger handed to the Monte Carlo engine.
func NewValidationError(component, operation, message string) *EngineError {
	return NewEngineError(ErrorCategoryValidation, component, operation, message)
}

// NewDataError builds a data-quality failure.
func NewDataError(component, operation string, err error) *EngineError {
	return WrapError(err, ErrorCategoryData, component, operation)
}

// NewConfigurationError builds a configuration failure.
func NewConfigurationError(component, operation, message string) *EngineError {
	return NewEngineError(ErrorCategoryConfiguration, component, operation, message)
}

// NewStrategyError wraps a failure raised by strategy code during a run.
func NewStrategyError(component, operation string, err error) *EngineError {
	return WrapError(err, ErrorCategoryStrategy, component, operation)
}

// IsValidation reports whether err (or anything it wraps) is a validation
// failure.
func IsValidation(err error) bool {
	var ee *EngineError
	if errors.As(err, &ee) {
		return ee.Category == ErrorCategoryValidation
	}
	return false
}
