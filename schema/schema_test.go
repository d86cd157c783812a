package schema

import (
	"errors"
	"testing"

	"github.com/rickchristie/reloop"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCompile(t *testing.T) {
	type expected struct {
		isNil  bool
		hasErr bool
	}

	tests := []struct {
		name     string
		input    map[string]any
		expected expected
	}{
		{
			name:     "nil schema returns nil",
			input:    nil,
			expected: expected{isNil: true},
		},
		{
			name:     "no arguments",
			input:    NoArguments(),
			expected: expected{},
		},
		{
			name: "invalid schema fails",
			input: map[string]any{
				"type": "object",
				"properties": map[string]any{
					"query": map[string]any{"type": 42},
				},
			},
			expected: expected{isNil: true, hasErr: true},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			s, err := Compile(tc.input)

			if tc.expected.hasErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
			if tc.expected.isNil {
				assert.Nil(t, s)
			} else {
				require.NotNil(t, s)
				assert.Equal(t, tc.input, s.Raw())
			}
		})
	}
}

func TestSchema_Validate(t *testing.T) {
	searchSchema := MustCompile(Object(map[string]*Property{
		"query": String("The search query for Wikipedia").MinLength(1),
		"limit": Integer("Number of results").Min(1).Max(10),
	}, "query"))

	tests := []struct {
		name     string
		input    map[string]any
		expected bool // valid
	}{
		{name: "valid", input: map[string]any{"query": "Go"}, expected: true},
		{name: "valid with decoded JSON number", input: map[string]any{"query": "Go", "limit": float64(3)}, expected: true},
		{name: "missing required", input: map[string]any{}, expected: false},
		{name: "nil args treated as empty object", input: nil, expected: false},
		{name: "wrong type", input: map[string]any{"query": 12}, expected: false},
		{name: "empty string", input: map[string]any{"query": ""}, expected: false},
		{name: "out of range", input: map[string]any{"query": "Go", "limit": float64(50)}, expected: false},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			err := searchSchema.Validate(tc.input)
			if tc.expected {
				assert.NoError(t, err)
				return
			}

			var validationErr *ValidationError
			assert.True(t, errors.As(err, &validationErr), "expected *ValidationError, got %T", err)
			assert.ErrorIs(t, err, reloop.ErrInvalidToolArgs)
		})
	}
}

func TestSchema_Validate_NilSchema(t *testing.T) {
	var s *Schema
	assert.NoError(t, s.Validate(map[string]any{"foo": "bar"}))
}

func TestMustCompile_Panics(t *testing.T) {
	assert.Panics(t, func() {
		MustCompile(map[string]any{"type": 42})
	})
}

func TestObject(t *testing.T) {
	raw := Object(map[string]*Property{
		"task":    String("The task you want performed."),
		"verbose": Boolean("Verbose output").Default(false),
		"mode":    String("Mode").Enum("fast", "slow"),
	}, "task")

	assert.Equal(t, map[string]any{
		"type": "object",
		"properties": map[string]any{
			"task":    map[string]any{"type": "string", "description": "The task you want performed."},
			"verbose": map[string]any{"type": "boolean", "description": "Verbose output", "default": false},
			"mode":    map[string]any{"type": "string", "description": "Mode", "enum": []any{"fast", "slow"}},
		},
		"required": []string{"task"},
	}, raw)
}

func TestNoArguments(t *testing.T) {
	assert.Equal(t, map[string]any{
		"type":       "object",
		"properties": map[string]any{},
	}, NoArguments())
}
