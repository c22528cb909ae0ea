package errs

import (
	"errors"
	"net/http"
)

// Codes that are not derived from HTTP status text.
const (
	CodeValidationFailed = "VALIDATION_FAILED"
	CodeMalformedJSON    = "MALFORMED_JSON"
)

// NewBadRequestError creates a 400 Bad Request HTTPError.
//
// This supports extra payload:
//   - code: optional custom code string (if nil, defaults to "BAD_REQUEST")
//   - errors: optional slice of field errors (validation errors)
func NewBadRequestError(message string, override bool, code *string, errors []FieldError) *HTTPError {
	// Default code comes from HTTP status text:
	// http.StatusText(400) => "Bad Request" => "BAD_REQUEST"
	formattedCode := MakeUpperCaseWithUnderscores(http.StatusText(http.StatusBadRequest))

	// If caller supplies custom code pointer, use it as is.
	if code != nil {
		formattedCode = *code
	}

	return &HTTPError{
		Code:     formattedCode,
		Message:  message,
		Status:   http.StatusBadRequest,
		Override: override,
		Errors:   errors,
	}
}

// NewValidationError creates the 400 returned when one or more schema checks
// failed. fieldErrors must hold every accumulated failure, across channels.
func NewValidationError(fieldErrors []FieldError) *HTTPError {
	code := CodeValidationFailed

	return NewBadRequestError("Validation failed", true, &code, fieldErrors)
}

// NewMalformedJSONError creates the 400 returned when a JSON body cannot be
// parsed at all. It is kept apart from NewValidationError so clients can tell
// "not JSON" from "JSON of the wrong shape".
func NewMalformedJSONError(detail string) *HTTPError {
	code := CodeMalformedJSON

	return NewBadRequestError("Malformed JSON in request body", true, &code, []FieldError{{
		Reason:  ReasonMalformedJSON,
		Message: detail,
	}})
}

// NewNotFoundError creates a 404 Not Found HTTPError.
//
// Supports optional custom code override similar to NewBadRequestError.
func NewNotFoundError(message string, override bool, code *string) *HTTPError {
	// Default code: "NOT_FOUND"
	formattedCode := MakeUpperCaseWithUnderscores(http.StatusText(http.StatusNotFound))

	if code != nil {
		formattedCode = *code
	}

	return &HTTPError{
		Code:     formattedCode,
		Message:  message,
		Status:   http.StatusNotFound,
		Override: override,
	}
}

// NewRouteNotFoundError is the 404 for an unknown (method, path) pair.
func NewRouteNotFoundError() *HTTPError {
	return NewNotFoundError("Route not found", false, nil)
}

// NewInternalServerError creates a 500 Internal Server Error HTTPError.
//
// Note:
//   - message is the generic status text, not the real internal error message.
//   - clients never see the underlying error; it only goes to the logs.
func NewInternalServerError() *HTTPError {
	return &HTTPError{
		Code:     MakeUpperCaseWithUnderscores(http.StatusText(http.StatusInternalServerError)),
		Message:  http.StatusText(http.StatusInternalServerError),
		Status:   http.StatusInternalServerError,
		Override: false,
	}
}

// Resolve maps any error onto the HTTPError that should be sent to the client.
//
// An *HTTPError anywhere in the chain is returned unchanged. Everything else
// becomes a generic 500 so internal details never leak.
func Resolve(err error) *HTTPError {
	var httpErr *HTTPError
	if errors.As(err, &httpErr) {
		return httpErr
	}

	return NewInternalServerError()
}
