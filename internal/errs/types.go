package errs

import "strings"

// Reasons reported on a FieldError. They are stable, machine-readable values
// that clients can switch on.
const (
	ReasonRequired      = "required"
	ReasonInvalidType   = "invalid_type"
	ReasonInvalidEnum   = "invalid_enum"
	ReasonMalformedJSON = "malformed_json"
)

// FieldError represents a field-level validation error.
// Example:
//
//	{ "field": "operation", "reason": "invalid_enum", "expected": "add | subtract", "received": "modulo" }
type FieldError struct {
	// Channel is the input channel ("query" or "json") the field was read from.
	Channel string `json:"channel,omitempty"`

	// Field is the field name the error relates to (e.g. "name").
	// It is empty when the error concerns the whole channel value.
	Field string `json:"field"`

	// Reason is one of the Reason* constants.
	Reason string `json:"reason"`

	// Expected describes what the schema wanted (a kind or the enum options).
	Expected string `json:"expected,omitempty"`

	// Received describes what was actually supplied.
	Received string `json:"received,omitempty"`

	// Message is the human-readable error message.
	Message string `json:"message"`
}

// HTTPError is the main custom error type for API responses.
//
// It implements the `error` interface via Error().
// It is designed to be serialized directly to JSON.
// Fields:
//   - Code: machine-friendly error code (e.g. "VALIDATION_FAILED").
//   - Message: human-friendly message.
//   - Status: HTTP status code.
//   - Override: flag to let middleware decide whether to override the message.
//   - Errors: list of per-field errors (validation).
type HTTPError struct {
	Code     string `json:"code"`
	Message  string `json:"message"`
	Status   int    `json:"status"`
	Override bool   `json:"override"`

	// Errors holds field-level validation errors.
	Errors []FieldError `json:"errors"`
}

// Error makes *HTTPError satisfy the built-in `error` interface.
func (e *HTTPError) Error() string {
	return e.Message
}

// Is reports whether target is also an *HTTPError.
//
// It does NOT compare Code/Status; use errors.As and inspect the fields
// when the class of error matters.
func (e *HTTPError) Is(target error) bool {
	_, ok := target.(*HTTPError)

	return ok
}

// WithMessage returns a *copy* of this HTTPError with Message replaced.
func (e *HTTPError) WithMessage(message string) *HTTPError {
	return &HTTPError{
		Code:     e.Code,
		Message:  message,
		Status:   e.Status,
		Override: e.Override,
		Errors:   e.Errors,
	}
}

// FieldNames returns the field of every field error, in order.
func (e *HTTPError) FieldNames() []string {
	names := make([]string, 0, len(e.Errors))
	for _, fe := range e.Errors {
		names = append(names, fe.Field)
	}

	return names
}

// MakeUpperCaseWithUnderscores converts a string into an UPPER_CASE_WITH_UNDERSCORES format.
//
// Example:
//
//	"Bad Request" -> "BAD_REQUEST"
//
// Used to create stable machine-readable error codes from HTTP status text.
func MakeUpperCaseWithUnderscores(str string) string {
	return strings.ToUpper(strings.ReplaceAll(str, " ", "_"))
}
