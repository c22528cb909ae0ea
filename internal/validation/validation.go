// Package validation contains the logic for validating
// request data.
//
// Schemas are declared as a list of fields, each with a kind
// (string, number or an enumerated set of literals) and a
// required flag, and are compiled into goskema object schemas.
// Validate runs the compiled schema over a channel value,
// translates every goskema issue into an errs.FieldError the
// client can understand, and on success returns a value whose
// fields are coerced to their declared kinds.
package validation
