package validation

import (
	"fmt"

	"github.com/go-viper/mapstructure/v2"
)

// Decode maps a validated value onto T using the `json` struct tags of T.
//
// It is meant to be called with Result.Value of a successful Validate, so
// the kinds already match and no weak conversion is enabled.
func Decode[T any](value map[string]any) (T, error) {
	var out T

	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		TagName: "json",
		Result:  &out,
	})
	if err != nil {
		return out, fmt.Errorf("failed to build decoder for %T: %w", out, err)
	}

	if err := dec.Decode(value); err != nil {
		return out, fmt.Errorf("failed to decode validated input into %T: %w", out, err)
	}

	return out, nil
}
