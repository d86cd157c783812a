package reloop

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type searchInput struct {
	Query string `json:"query"`
	Limit int    `json:"limit"`
}

func TestToolFunc_Call(t *testing.T) {
	tool := NewToolFunc(
		"search",
		"Search for information",
		map[string]any{"type": "object"},
		func(ctx context.Context, in searchInput) (string, error) {
			return in.Query, nil
		},
	)

	assert.Equal(t, "search", tool.Name())
	assert.Equal(t, "Search for information", tool.Description())
	assert.Equal(t, map[string]any{"type": "object"}, tool.ParameterSchema())

	result, err := tool.Call(context.Background(), map[string]any{"query": "golang"})
	require.NoError(t, err)
	assert.Equal(t, "golang", result)
}

func TestDecodeArgs(t *testing.T) {
	type expected struct {
		input searchInput
		err   error
	}

	tests := []struct {
		name     string
		input    map[string]any
		expected expected
	}{
		{
			name:     "exact types",
			input:    map[string]any{"query": "go", "limit": 3},
			expected: expected{input: searchInput{Query: "go", Limit: 3}},
		},
		{
			name:     "weakly typed number from JSON",
			input:    map[string]any{"query": "go", "limit": "3"},
			expected: expected{input: searchInput{Query: "go", Limit: 3}},
		},
		{
			name:     "float64 from encoding/json",
			input:    map[string]any{"limit": float64(2)},
			expected: expected{input: searchInput{Limit: 2}},
		},
		{
			name:     "nil args",
			input:    nil,
			expected: expected{input: searchInput{}},
		},
		{
			name:     "mistyped field",
			input:    map[string]any{"query": map[string]any{"nested": true}},
			expected: expected{err: ErrInvalidToolArgs},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, err := DecodeArgs[searchInput](tc.input)
			if tc.expected.err != nil {
				assert.ErrorIs(t, err, tc.expected.err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.expected.input, got)
		})
	}
}

func TestDescriptorOf(t *testing.T) {
	tool := NewToolFunc("get_current_time", "Get the current time", nil,
		func(ctx context.Context, in struct{}) (string, error) { return "", nil })

	assert.Equal(t, ToolDescriptor{
		Name:        "get_current_time",
		Description: "Get the current time",
	}, DescriptorOf(tool))
}
