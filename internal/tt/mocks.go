package tt

import (
	"context"
	"sync"

	"github.com/rickchristie/reloop"
)

// -----------------------------------------------------------------------------
// MockCompleter - implements reloop.Completer with scripted responses
// -----------------------------------------------------------------------------

// MockCompleter is a configurable mock that implements reloop.Completer.
// Responses are returned in the order they were queued.
type MockCompleter struct {
	mu        sync.Mutex
	responses []*reloop.Completion
	errors    []error
	callCount int

	// CapturedPrompts stores the prompt passed to each Complete call.
	CapturedPrompts []string
}

// NewMockCompleter creates a new MockCompleter.
func NewMockCompleter() *MockCompleter {
	return &MockCompleter{}
}

// AddResponse queues a response with the specified text.
func (m *MockCompleter) AddResponse(text string) *MockCompleter {
	return m.AddCompletion(&reloop.Completion{
		Text: text,
		Info: &reloop.GenerationInfo{InputTokens: 10, OutputTokens: 5},
	})
}

// AddCompletion queues a raw Completion.
func (m *MockCompleter) AddCompletion(c *reloop.Completion) *MockCompleter {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.responses = append(m.responses, c)
	m.errors = append(m.errors, nil)
	return m
}

// AddError queues an error for the next call.
func (m *MockCompleter) AddError(err error) *MockCompleter {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.responses = append(m.responses, nil)
	m.errors = append(m.errors, err)
	return m
}

// CallCount returns the number of times Complete has been called.
func (m *MockCompleter) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.callCount
}

// Complete implements reloop.Completer. Once the script is exhausted it keeps answering
// "done" with no tool call.
func (m *MockCompleter) Complete(ctx context.Context, prompt string) (*reloop.Completion, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	idx := m.callCount
	m.callCount++
	m.CapturedPrompts = append(m.CapturedPrompts, prompt)

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if idx < len(m.errors) && m.errors[idx] != nil {
		return nil, m.errors[idx]
	}
	if idx < len(m.responses) && m.responses[idx] != nil {
		return m.responses[idx], nil
	}
	return &reloop.Completion{Text: "done"}, nil
}

var _ reloop.Completer = (*MockCompleter)(nil)

// -----------------------------------------------------------------------------
// MockTool - implements reloop.Tool
// -----------------------------------------------------------------------------

// MockToolFunc is the function a MockTool runs.
type MockToolFunc func(ctx context.Context, args map[string]any) (reloop.ToolResult, error)

// MockTool is a configurable tool that records the arguments of every call.
type MockTool struct {
	name        string
	description string
	schema      map[string]any
	fn          MockToolFunc

	mu    sync.Mutex
	Calls []map[string]any
}

// NewMockTool creates a MockTool returning result for every call.
func NewMockTool(name string, result reloop.ToolResult) *MockTool {
	return &MockTool{
		name:        name,
		description: "Mock tool " + name,
		fn: func(context.Context, map[string]any) (reloop.ToolResult, error) {
			return result, nil
		},
	}
}

// WithFunc replaces the function run on every call.
func (t *MockTool) WithFunc(fn MockToolFunc) *MockTool {
	t.fn = fn
	return t
}

// WithSchema sets the parameter schema.
func (t *MockTool) WithSchema(schema map[string]any) *MockTool {
	t.schema = schema
	return t
}

// WithDescription sets the description.
func (t *MockTool) WithDescription(description string) *MockTool {
	t.description = description
	return t
}

func (t *MockTool) Name() string                    { return t.name }
func (t *MockTool) Description() string             { return t.description }
func (t *MockTool) ParameterSchema() map[string]any { return t.schema }

// Call records args and runs the configured function.
func (t *MockTool) Call(ctx context.Context, args map[string]any) (reloop.ToolResult, error) {
	t.mu.Lock()
	t.Calls = append(t.Calls, args)
	t.mu.Unlock()
	return t.fn(ctx, args)
}

// CallCount returns the number of calls.
func (t *MockTool) CallCount() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.Calls)
}

var _ reloop.Tool = (*MockTool)(nil)
