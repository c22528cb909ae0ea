// Package handler is the first layer. The first entry point
// for business logic after the router.
//
// It decodes the input the dispatcher already validated into typed
// request structs and runs the procedure. Handlers never see raw,
// unvalidated input and never touch HTTP types.
package handler
