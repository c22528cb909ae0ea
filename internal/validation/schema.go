package validation

import (
	"fmt"
	"strings"

	goskema "github.com/reoring/goskema"
	"github.com/reoring/goskema/dsl"
)

// Channel names a source of request input.
type Channel string

const (
	// ChannelQuery is the URL query string. Every value arrives as a string.
	ChannelQuery Channel = "query"

	// ChannelJSON is the request body, parsed as JSON.
	ChannelJSON Channel = "json"
)

// Channels lists the known channels in the order they are validated.
var Channels = []Channel{ChannelQuery, ChannelJSON}

// Known reports whether c is one of Channels.
func (c Channel) Known() bool {
	for _, known := range Channels {
		if c == known {
			return true
		}
	}
	return false
}

// Kind is the primitive kind a field must hold.
type Kind int

const (
	KindString Kind = iota + 1
	KindNumber
	KindEnum
)

func (k Kind) String() string {
	switch k {
	case KindString:
		return "string"
	case KindNumber:
		return "number"
	case KindEnum:
		return "enum"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// Field describes one expected field of a channel value.
type Field struct {
	Name     string
	Kind     Kind
	Values   []string // allowed literals, KindEnum only
	Required bool
}

// String declares a required string field.
func String(name string) Field {
	return Field{Name: name, Kind: KindString, Required: true}
}

// Number declares a required number field.
func Number(name string) Field {
	return Field{Name: name, Kind: KindNumber, Required: true}
}

// Enum declares a required field restricted to the given literals.
func Enum(name string, values ...string) Field {
	return Field{Name: name, Kind: KindEnum, Values: append([]string(nil), values...), Required: true}
}

// Optional returns a copy of f that may be omitted.
func (f Field) Optional() Field {
	f.Required = false
	return f
}

// Expected is the human readable description of what f accepts.
func (f Field) Expected() string {
	if f.Kind == KindEnum {
		return strings.Join(f.Values, " | ")
	}
	return f.Kind.String()
}

// adapter is the goskema field schema enforcing f's kind.
func (f Field) adapter() dsl.AnyAdapter {
	switch f.Kind {
	case KindNumber:
		return dsl.SchemaOf[float64](newFiniteNumber())
	case KindEnum:
		return dsl.SchemaOf[string](newStringEnum(f.Values))
	default:
		return dsl.SchemaOf[string](dsl.String())
	}
}

// Schema is an immutable, ordered set of fields.
type Schema struct {
	fields   []Field
	index    map[string]int
	compiled goskema.Schema[map[string]any]
}

// Object builds a Schema from fields. It panics on an empty or duplicate
// field name or an enum without values, since schemas are defined at startup.
func Object(fields ...Field) *Schema {
	seen := make(map[string]int, len(fields))
	for i, f := range fields {
		if f.Name == "" {
			panic("validation: schema field without a name")
		}
		if _, dup := seen[f.Name]; dup {
			panic(fmt.Sprintf("validation: duplicate schema field %q", f.Name))
		}
		if f.Kind == KindEnum && len(f.Values) == 0 {
			panic(fmt.Sprintf("validation: enum field %q has no values", f.Name))
		}
		seen[f.Name] = i
	}

	// Unknown keys are ignored: extra body fields are not an error.
	builder := dsl.Object()
	for _, f := range fields {
		step := builder.Field(f.Name, f.adapter())
		if f.Required {
			builder = step.Required()
		} else {
			builder = step.Optional()
		}
	}

	compiled, err := builder.UnknownStrip().Build()
	if err != nil {
		panic(fmt.Sprintf("validation: build schema: %v", err))
	}

	return &Schema{
		fields:   append([]Field(nil), fields...),
		index:    seen,
		compiled: compiled,
	}
}

// Fields returns a copy of the declared fields in declaration order.
func (s *Schema) Fields() []Field {
	return append([]Field(nil), s.fields...)
}
