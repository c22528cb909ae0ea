// Package errs define custom error types and utilities.
//
// Its purpose is to create specific error structures
// (e.g. FieldError for request input or HTTPError for API responses)
// so the client always receives meaningful and consistent
// error bodies, whichever layer produced the failure.
package errs
