// Package schema builds the JSON Schemas describing tool parameters and validates the
// arguments of parsed tool calls against them.
//
//	search := reloop.NewToolFunc(
//	    "search_wikipedia",
//	    "Search for information on Wikipedia.",
//	    schema.Object(map[string]*schema.Property{
//	        "query": schema.String("The search query for Wikipedia"),
//	    }, "query"), // "query" is required
//	    searchFunc,
//	)
//
// toolset.Registry compiles each tool's schema on registration and validates arguments before
// the tool runs.
package schema

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/rickchristie/reloop"
	"github.com/santhosh-tekuri/jsonschema/v6"
)

// Schema is a JSON Schema with both its raw map form (rendered into prompts) and its compiled
// validator.
type Schema struct {
	raw      map[string]any
	compiled *jsonschema.Schema
}

// Raw returns the underlying map[string]any representation.
func (s *Schema) Raw() map[string]any {
	if s == nil {
		return nil
	}
	return s.raw
}

// Validate validates tool arguments against the schema.
// A nil Schema accepts everything.
func (s *Schema) Validate(args map[string]any) error {
	if s == nil || s.compiled == nil {
		return nil
	}
	if args == nil {
		args = map[string]any{}
	}
	if err := s.compiled.Validate(args); err != nil {
		return &ValidationError{Err: err}
	}
	return nil
}

// ValidationError reports arguments that do not match a tool's schema.
// It matches [reloop.ErrInvalidToolArgs] via errors.Is.
type ValidationError struct {
	Err error
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %v", reloop.ErrInvalidToolArgs, e.Err)
}

func (e *ValidationError) Unwrap() []error {
	return []error{reloop.ErrInvalidToolArgs, e.Err}
}

// Compile compiles a raw schema map. A nil map compiles to a nil Schema.
func Compile(raw map[string]any) (*Schema, error) {
	if raw == nil {
		return nil, nil
	}

	schemaJSON, err := json.Marshal(raw)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal schema: %w", err)
	}

	schemaData, err := jsonschema.UnmarshalJSON(strings.NewReader(string(schemaJSON)))
	if err != nil {
		return nil, fmt.Errorf("failed to parse schema: %w", err)
	}

	c := jsonschema.NewCompiler()
	if err := c.AddResource("schema.json", schemaData); err != nil {
		return nil, fmt.Errorf("failed to add schema resource: %w", err)
	}

	compiled, err := c.Compile("schema.json")
	if err != nil {
		return nil, fmt.Errorf("failed to compile schema: %w", err)
	}

	return &Schema{
		raw:      raw,
		compiled: compiled,
	}, nil
}

// MustCompile is like Compile but panics on error.
func MustCompile(raw map[string]any) *Schema {
	s, err := Compile(raw)
	if err != nil {
		panic(err)
	}
	return s
}

// -----------------------------------------------------------------------------
// Schema Builders
// -----------------------------------------------------------------------------

// Object creates an object schema with the given properties.
// Pass property names as variadic arguments to mark them as required.
func Object(properties map[string]*Property, required ...string) map[string]any {
	props := make(map[string]any, len(properties))
	for name, prop := range properties {
		props[name] = prop.build()
	}

	schema := map[string]any{
		"type":       "object",
		"properties": props,
	}

	if len(required) > 0 {
		schema["required"] = required
	}

	return schema
}

// NoArguments creates the schema of a tool that takes no arguments.
func NoArguments() map[string]any {
	return Object(nil)
}

// Property represents a property in an object schema.
type Property struct {
	typ         string
	description string
	enum        []any
	minimum     *float64
	maximum     *float64
	minLength   *int
	def         any
}

func (p *Property) build() map[string]any {
	m := map[string]any{}

	if p.typ != "" {
		m["type"] = p.typ
	}
	if p.description != "" {
		m["description"] = p.description
	}
	if len(p.enum) > 0 {
		m["enum"] = p.enum
	}
	if p.minimum != nil {
		m["minimum"] = *p.minimum
	}
	if p.maximum != nil {
		m["maximum"] = *p.maximum
	}
	if p.minLength != nil {
		m["minLength"] = *p.minLength
	}
	if p.def != nil {
		m["default"] = p.def
	}

	return m
}

// String creates a string property.
//
//	schema.String("The search query for Wikipedia").MinLength(1)
func String(description string) *Property {
	return &Property{typ: "string", description: description}
}

// Integer creates an integer property.
//
//	schema.Integer("Number of results").Min(1).Max(10).Default(1)
func Integer(description string) *Property {
	return &Property{typ: "integer", description: description}
}

// Boolean creates a boolean property.
func Boolean(description string) *Property {
	return &Property{typ: "boolean", description: description}
}

// Enum sets allowed values for the property.
func (p *Property) Enum(values ...any) *Property {
	p.enum = values
	return p
}

// Min sets the minimum value for integer properties.
func (p *Property) Min(min float64) *Property {
	p.minimum = &min
	return p
}

// Max sets the maximum value for integer properties.
func (p *Property) Max(max float64) *Property {
	p.maximum = &max
	return p
}

// MinLength sets the minimum length for string properties.
func (p *Property) MinLength(min int) *Property {
	p.minLength = &min
	return p
}

// Default sets the default value for the property.
func (p *Property) Default(value any) *Property {
	p.def = value
	return p
}
