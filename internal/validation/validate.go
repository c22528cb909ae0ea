package validation

import (
	"context"
	"fmt"
	"math"
	"net/url"
	"sort"
	"strconv"
	"strings"

	"github.com/deppfellow/go-rpc-demo/internal/errs"
	"github.com/goccy/go-json"
	goskema "github.com/reoring/goskema"
)

// Result is the outcome of Validate: either Valid with a coerced Value or
// Invalid with one entry per failed check.
type Result struct {
	// Value holds the declared fields that were present, coerced to their
	// kinds: float64 for numbers, string for strings and enums.
	Value map[string]any

	// Errors is empty when the value conforms to the schema.
	Errors []errs.FieldError
}

// Valid reports whether the value passed every check.
func (r Result) Valid() bool {
	return len(r.Errors) == 0
}

// Validate checks raw against schema for the given channel.
//
// For ChannelQuery raw must be a map[string]string (or url.Values, reduced
// to the first value of each key). For ChannelJSON raw is an already parsed
// JSON value, see ParseJSON. Every field is checked; failures accumulate in
// field declaration order instead of stopping at the first one.
func Validate(ctx context.Context, channel Channel, schema *Schema, raw any) Result {
	input := raw
	if channel == ChannelQuery {
		object, ok := queryObject(schema, raw)
		if !ok {
			return Result{Errors: []errs.FieldError{notAnObject(channel, raw)}}
		}
		input = object
	}

	value, err := schema.compiled.Parse(ctx, input)
	if err == nil {
		return Result{Value: value}
	}

	issues, ok := goskema.AsIssues(err)
	if !ok {
		issues = goskema.Issues{{Path: "/", Code: goskema.CodeParseError, Message: err.Error()}}
	}

	return Result{Errors: schema.fieldErrors(channel, input, issues)}
}

// QueryValues reduces url.Values to the first value of every key.
func QueryValues(values url.Values) map[string]string {
	out := make(map[string]string, len(values))
	for key, vs := range values {
		if len(vs) > 0 {
			out[key] = vs[0]
		}
	}
	return out
}

// queryObject turns query parameters into the generic object the compiled
// schema checks. Query parameters are always strings, so number fields are
// parsed here; a value that is not a finite number stays a string and is
// then reported as the wrong type.
func queryObject(schema *Schema, raw any) (map[string]any, bool) {
	var query map[string]string
	switch q := raw.(type) {
	case map[string]string:
		query = q
	case url.Values:
		query = QueryValues(q)
	case nil:
		query = map[string]string{}
	default:
		return nil, false
	}

	object := make(map[string]any, len(query))
	for k, v := range query {
		object[k] = v

		i, declared := schema.index[k]
		if !declared || schema.fields[i].Kind != KindNumber {
			continue
		}
		n, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		if err == nil && !math.IsNaN(n) && !math.IsInf(n, 0) {
			object[k] = n
		}
	}
	return object, true
}

// fieldErrors translates goskema issues into client facing field errors,
// ordered by field declaration.
func (s *Schema) fieldErrors(channel Channel, input any, issues goskema.Issues) []errs.FieldError {
	object, _ := input.(map[string]any)

	out := make([]errs.FieldError, 0, len(issues))
	order := make([]int, 0, len(issues))

	for _, issue := range issues {
		name := strings.TrimPrefix(issue.Path, "/")
		i, declared := s.index[name]
		if !declared {
			if name == "" && issue.Code == goskema.CodeInvalidType {
				out = append(out, notAnObject(channel, input))
			} else {
				out = append(out, errs.FieldError{Channel: string(channel), Field: name, Reason: issue.Code, Message: issue.Message})
			}
			order = append(order, -1)
			continue
		}

		field := s.fields[i]
		fieldErr := errs.FieldError{
			Channel:  string(channel),
			Field:    field.Name,
			Reason:   issue.Code,
			Expected: field.Expected(),
		}

		switch issue.Code {
		case goskema.CodeRequired:
			fieldErr.Reason = errs.ReasonRequired
			fieldErr.Message = "is required"

		case goskema.CodeInvalidEnum:
			fieldErr.Reason = errs.ReasonInvalidEnum
			fieldErr.Received, _ = object[field.Name].(string)
			fieldErr.Message = "must be one of: " + strings.Join(field.Values, ", ")

		default:
			fieldErr.Reason = errs.ReasonInvalidType
			fieldErr.Received = describe(object[field.Name])
			fieldErr.Message = "must be a " + field.Kind.String()
			if field.Kind == KindEnum {
				fieldErr.Message = "must be one of: " + strings.Join(field.Values, ", ")
			}
		}

		out = append(out, fieldErr)
		order = append(order, i)
	}

	sort.Stable(byDeclaration{errors: out, order: order})
	return out
}

type byDeclaration struct {
	errors []errs.FieldError
	order  []int
}

func (b byDeclaration) Len() int           { return len(b.errors) }
func (b byDeclaration) Less(i, j int) bool { return b.order[i] < b.order[j] }
func (b byDeclaration) Swap(i, j int) {
	b.errors[i], b.errors[j] = b.errors[j], b.errors[i]
	b.order[i], b.order[j] = b.order[j], b.order[i]
}

func notAnObject(channel Channel, raw any) errs.FieldError {
	return errs.FieldError{
		Channel:  string(channel),
		Reason:   errs.ReasonInvalidType,
		Expected: "object",
		Received: describe(raw),
		Message:  fmt.Sprintf("%s input must be an object", channel),
	}
}

// describe names the JSON kind of v for error reports.
func describe(v any) string {
	switch v.(type) {
	case nil:
		return "null"
	case string:
		return "string"
	case bool:
		return "boolean"
	case map[string]any, map[string]string, url.Values:
		return "object"
	case []any:
		return "array"
	case json.Number, float64, float32, int, int64:
		return "number"
	}
	return fmt.Sprintf("%T", v)
}
