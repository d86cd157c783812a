package toolset

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/rickchristie/reloop"
	"github.com/rickchristie/reloop/internal/tt"
	"github.com/rickchristie/reloop/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type echoInput struct {
	Text  string `json:"text"`
	Times int    `json:"times"`
}

func newEchoTool() reloop.Tool {
	return reloop.NewToolFunc(
		"echo",
		"Repeat text",
		schema.Object(map[string]*schema.Property{
			"text":  schema.String("Text to repeat"),
			"times": schema.Integer("Repetitions").Min(1),
		}, "text"),
		func(ctx context.Context, in echoInput) (string, error) {
			if in.Times == 0 {
				in.Times = 1
			}
			return strings.Repeat(in.Text, in.Times), nil
		},
	)
}

func TestRegistry_Invoke(t *testing.T) {
	type expected struct {
		result    reloop.ToolResult
		resultHas string
		err       error
	}

	failing := tt.NewMockTool("flaky", nil).WithFunc(
		func(context.Context, map[string]any) (reloop.ToolResult, error) {
			return nil, errors.New("upstream returned garbage")
		},
	)
	panicking := tt.NewMockTool("panics", nil).WithFunc(
		func(context.Context, map[string]any) (reloop.ToolResult, error) {
			panic("nil map")
		},
	)

	registry := New().
		Register(newEchoTool()).
		Register(failing).
		Register(panicking)

	tests := []struct {
		name     string
		input    *reloop.ToolCall
		expected expected
	}{
		{
			name:     "success",
			input:    &reloop.ToolCall{Name: "echo", Arguments: map[string]any{"text": "ab", "times": float64(2)}},
			expected: expected{result: "abab"},
		},
		{
			name:     "unknown tool is an error",
			input:    &reloop.ToolCall{Name: "lookup_weather", Arguments: map[string]any{}},
			expected: expected{err: reloop.ErrUnknownTool},
		},
		{
			name:     "near miss name is unknown",
			input:    &reloop.ToolCall{Name: "Echo", Arguments: map[string]any{"text": "x"}},
			expected: expected{err: reloop.ErrUnknownTool},
		},
		{
			name:     "schema violation becomes text",
			input:    &reloop.ToolCall{Name: "echo", Arguments: map[string]any{}},
			expected: expected{resultHas: "Error: invalid tool arguments"},
		},
		{
			name:     "decode failure becomes text",
			input:    &reloop.ToolCall{Name: "echo", Arguments: map[string]any{"text": "x", "times": float64(0.5)}},
			expected: expected{resultHas: "Error: "},
		},
		{
			name:     "tool failure becomes text",
			input:    &reloop.ToolCall{Name: "flaky", Arguments: map[string]any{}},
			expected: expected{result: "Error: upstream returned garbage"},
		},
		{
			name:     "tool panic becomes text",
			input:    &reloop.ToolCall{Name: "panics"},
			expected: expected{resultHas: `tool "panics" panicked: nil map`},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			result, err := registry.Invoke(context.Background(), tc.input)

			if tc.expected.err != nil {
				assert.ErrorIs(t, err, tc.expected.err)
				var unknown *UnknownToolError
				require.True(t, errors.As(err, &unknown))
				assert.Equal(t, tc.input.Name, unknown.Name)
				assert.Nil(t, result)
				return
			}

			require.NoError(t, err)
			if tc.expected.resultHas != "" {
				text, ok := result.(string)
				require.True(t, ok, "expected string result, got %T", result)
				assert.Contains(t, text, tc.expected.resultHas)
				return
			}
			assert.Equal(t, tc.expected.result, result)
		})
	}
}

func TestRegistry_Invoke_ContextCanceled(t *testing.T) {
	blocking := tt.NewMockTool("wait", nil).WithFunc(
		func(ctx context.Context, _ map[string]any) (reloop.ToolResult, error) {
			<-ctx.Done()
			return nil, ctx.Err()
		},
	)
	registry := New().Register(blocking)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := registry.Invoke(ctx, &reloop.ToolCall{Name: "wait"})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestRegistry_Descriptors(t *testing.T) {
	registry := New().
		Register(tt.NewMockTool("b", nil).WithDescription("second")).
		Register(tt.NewMockTool("a", nil).WithDescription("first"))

	assert.Equal(t, 2, registry.Len())
	assert.Equal(t, []reloop.ToolDescriptor{
		{Name: "b", Description: "second"},
		{Name: "a", Description: "first"},
	}, registry.Descriptors())

	tool, ok := registry.Get("a")
	require.True(t, ok)
	assert.Equal(t, "a", tool.Name())
}

func TestRegistry_Register_Panics(t *testing.T) {
	tests := []struct {
		name  string
		input func(r *Registry)
	}{
		{name: "nil tool", input: func(r *Registry) { r.Register(nil) }},
		{name: "empty name", input: func(r *Registry) { r.Register(tt.NewMockTool("", nil)) }},
		{name: "duplicate", input: func(r *Registry) {
			r.Register(tt.NewMockTool("x", nil)).Register(tt.NewMockTool("x", nil))
		}},
		{name: "invalid schema", input: func(r *Registry) {
			r.Register(tt.NewMockTool("x", nil).WithSchema(map[string]any{"type": 1}))
		}},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Panics(t, func() { tc.input(New()) })
		})
	}
}

func TestRegistry_Invoke_BackendErrorPropagates(t *testing.T) {
	delegating := tt.NewMockTool("delegate_task", nil).WithFunc(
		func(context.Context, map[string]any) (reloop.ToolResult, error) {
			return nil, &reloop.BackendError{StatusCode: 500, Body: "model crashed"}
		},
	)

	_, err := New().Register(delegating).Invoke(context.Background(), &reloop.ToolCall{Name: "delegate_task"})
	assert.ErrorIs(t, err, reloop.ErrBackend)
	assert.EqualError(t, err, "model crashed")
}
