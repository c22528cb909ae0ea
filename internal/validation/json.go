package validation

import (
	"bytes"
	"context"
	"errors"
	"io"
	"unicode/utf16"
	"unicode/utf8"

	goskema "github.com/reoring/goskema"
	js "github.com/reoring/goskema/jsonschema"
)

// ErrMalformedJSON is returned by ParseJSON when the body is not a single
// well-formed JSON value. It is a different failure from a schema mismatch.
var ErrMalformedJSON = errors.New("malformed JSON")

// MalformedError describes why a body was rejected by ParseJSON.
//
// Detail is safe to send to the client. Cause holds the decoder error, if
// any, and is meant for logs only.
type MalformedError struct {
	Detail string
	Cause  error
}

func (e *MalformedError) Error() string {
	if e.Cause != nil {
		return ErrMalformedJSON.Error() + ": " + e.Detail + ": " + e.Cause.Error()
	}
	return ErrMalformedJSON.Error() + ": " + e.Detail
}

func (e *MalformedError) Is(target error) bool { return target == ErrMalformedJSON }

func (e *MalformedError) Unwrap() error { return e.Cause }

func malformed(detail string, cause error) error {
	return &MalformedError{Detail: detail, Cause: cause}
}

// ParseJSON decodes body into a generic JSON value. Numbers are kept as
// json.Number holding the literal the client sent, without checking their
// range, so an overflowing number is a schema mismatch rather than a
// malformed body.
//
// Strings must survive a round trip unchanged, so a body that is not valid
// UTF-8 or escapes half of a surrogate pair is rejected.
func ParseJSON(ctx context.Context, body []byte) (any, error) {
	if len(bytes.TrimSpace(body)) == 0 {
		return nil, malformed("request body is empty", nil)
	}
	if !utf8.Valid(body) {
		return nil, malformed("request body is not valid UTF-8", nil)
	}
	if hasUnpairedSurrogate(body) {
		return nil, malformed("request body contains an unpaired UTF-16 surrogate escape", nil)
	}

	src := goskema.JSONBytes(body)

	value, err := goskema.ParseFrom[any](ctx, document{}, src)
	if err != nil {
		return nil, malformed("request body is not valid JSON", err)
	}

	// Exactly one value is allowed; `{"a":1} {"a":2}` is not a body.
	if _, err := src.NextToken(); !errors.Is(err, io.EOF) {
		return nil, malformed("unexpected data after JSON value", err)
	}

	return value, nil
}

// hasUnpairedSurrogate reports whether a \u escape in body encodes a high
// surrogate not followed by a low one, or a low surrogate on its own.
// Backslashes only occur inside JSON strings, so no string tracking is needed.
func hasUnpairedSurrogate(body []byte) bool {
	for i := 0; i < len(body); i++ {
		if body[i] != '\\' {
			continue
		}
		if i+1 >= len(body) {
			return false
		}
		if body[i+1] != 'u' {
			i++ // skip the escaped byte, which may itself be a backslash
			continue
		}

		r, ok := hexRune(body, i+2)
		if !ok {
			return false // left for the decoder to reject
		}
		i += 5

		if !utf16.IsSurrogate(r) {
			continue
		}
		if r >= 0xDC00 {
			return true
		}
		if i+2 >= len(body) || body[i+1] != '\\' || body[i+2] != 'u' {
			return true
		}
		low, ok := hexRune(body, i+3)
		if !ok || low < 0xDC00 || low > 0xDFFF {
			return true
		}
		i += 6
	}
	return false
}

func hexRune(b []byte, at int) (rune, bool) {
	if at+4 > len(b) {
		return 0, false
	}
	var r rune
	for _, c := range b[at : at+4] {
		r <<= 4
		switch {
		case '0' <= c && c <= '9':
			r |= rune(c - '0')
		case 'a' <= c && c <= 'f':
			r |= rune(c - 'a' + 10)
		case 'A' <= c && c <= 'F':
			r |= rune(c - 'A' + 10)
		default:
			return 0, false
		}
	}
	return r, true
}

// document accepts any decoded JSON value as is. It lets ParseFrom build
// the generic value tree; the route schema checks it afterwards.
type document struct{}

func (document) Parse(_ context.Context, v any) (any, error) { return v, nil }

func (d document) ParseWithMeta(ctx context.Context, v any) (goskema.Decoded[any], error) {
	return goskema.Decoded[any]{Value: v, Presence: goskema.PresenceMap{"/": goskema.PresenceSeen}}, nil
}

func (document) TypeCheck(context.Context, any) error     { return nil }
func (document) RuleCheck(context.Context, any) error     { return nil }
func (document) Validate(context.Context, any) error      { return nil }
func (document) ValidateValue(context.Context, any) error { return nil }
func (document) JSONSchema() (*js.Schema, error)          { return &js.Schema{}, nil }
