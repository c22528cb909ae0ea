// Package utils contains small helper functions used across the project.
//
// These are usually generic helpers that don't belong to a specific domain.
package utils

import (
	"fmt"
	"io"

	"github.com/goccy/go-json"
)

// WriteJSON pretty-prints any Go value as indented JSON to w, followed by
// a newline.
//
// Values implementing json.Marshaler (like api.Number) go through their
// own encoding, so NaN results print as null.
func WriteJSON(w io.Writer, v interface{}) error {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}

	_, err = fmt.Fprintln(w, string(out))
	return err
}
