package validation

import (
	"context"
	"math"

	"github.com/goccy/go-json"
	goskema "github.com/reoring/goskema"
	"github.com/reoring/goskema/dsl"
	js "github.com/reoring/goskema/jsonschema"
)

// finiteNumber accepts a JSON number (or a float64 coerced from the query
// string) and yields it as a float64. Literals that overflow float64, like
// 1e400, are rejected as the wrong type instead of becoming infinity.
type finiteNumber struct {
	inner goskema.Schema[json.Number]
}

func newFiniteNumber() finiteNumber {
	return finiteNumber{inner: dsl.NumberJSON()}
}

func (n finiteNumber) Parse(ctx context.Context, v any) (float64, error) {
	num, err := n.inner.Parse(ctx, v)
	if err != nil {
		return 0, err
	}

	f, err := num.Float64()
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, goskema.Issues{{Path: "/", Code: goskema.CodeInvalidType, Message: "number out of range", Hint: "expected finite number", Cause: err}}
	}
	return f, nil
}

func (n finiteNumber) ParseWithMeta(ctx context.Context, v any) (goskema.Decoded[float64], error) {
	f, err := n.Parse(ctx, v)
	return goskema.Decoded[float64]{Value: f, Presence: goskema.PresenceMap{"/": goskema.PresenceSeen}}, err
}

func (n finiteNumber) TypeCheck(ctx context.Context, v any) error { return n.inner.TypeCheck(ctx, v) }
func (n finiteNumber) RuleCheck(ctx context.Context, v any) error { return nil }

func (n finiteNumber) Validate(ctx context.Context, v any) error {
	_, err := n.Parse(ctx, v)
	return err
}

func (n finiteNumber) ValidateValue(ctx context.Context, v float64) error {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return goskema.Issues{{Path: "/", Code: goskema.CodeInvalidType, Message: "number out of range"}}
	}
	return nil
}

func (n finiteNumber) JSONSchema() (*js.Schema, error) { return n.inner.JSONSchema() }

// stringEnum accepts a string equal to one of values.
type stringEnum struct {
	inner  goskema.Schema[string]
	values []string
}

func newStringEnum(values []string) stringEnum {
	return stringEnum{inner: dsl.String(), values: values}
}

func (e stringEnum) Parse(ctx context.Context, v any) (string, error) {
	s, err := e.inner.Parse(ctx, v)
	if err != nil {
		return "", err
	}
	if err := e.ValidateValue(ctx, s); err != nil {
		return "", err
	}
	return s, nil
}

func (e stringEnum) ParseWithMeta(ctx context.Context, v any) (goskema.Decoded[string], error) {
	s, err := e.Parse(ctx, v)
	return goskema.Decoded[string]{Value: s, Presence: goskema.PresenceMap{"/": goskema.PresenceSeen}}, err
}

func (e stringEnum) TypeCheck(ctx context.Context, v any) error { return e.inner.TypeCheck(ctx, v) }

func (e stringEnum) RuleCheck(ctx context.Context, v any) error {
	s, ok := v.(string)
	if !ok {
		return nil
	}
	return e.ValidateValue(ctx, s)
}

func (e stringEnum) Validate(ctx context.Context, v any) error {
	_, err := e.Parse(ctx, v)
	return err
}

func (e stringEnum) ValidateValue(_ context.Context, s string) error {
	for _, allowed := range e.values {
		if s == allowed {
			return nil
		}
	}
	return goskema.Issues{{
		Path:    "/",
		Code:    goskema.CodeInvalidEnum,
		Message: "value is not one of the allowed literals",
		Params:  map[string]any{"values": e.values},
	}}
}

func (e stringEnum) JSONSchema() (*js.Schema, error) { return &js.Schema{Type: "string"}, nil }
