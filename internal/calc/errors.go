/**
 * @description
 * Validation errors raised by the calculation engine. The engine never
 * catches these itself; callers decide whether to abort or skip.
 */
package calc

import "fmt"

// ValidationError reports a malformed input to a calculation, naming the
// offending field.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed on %s: %s", e.Field, e.Message)
}

func newValidationError(field, message string) *ValidationError {
	return &ValidationError{Field: field, Message: message}
}
