// Package toolset provides the tool registry: an injectable, construction-time table mapping
// tool names to tools.
package toolset

import (
	"context"
	"errors"
	"fmt"

	"github.com/rickchristie/reloop"
	"github.com/rickchristie/reloop/schema"
)

// UnknownToolError is returned by [Registry.Invoke] when no tool has the requested name.
// It matches [reloop.ErrUnknownTool] via errors.Is.
type UnknownToolError struct {
	Name string
}

func (e *UnknownToolError) Error() string {
	return fmt.Sprintf("%s: %s", reloop.ErrUnknownTool, e.Name)
}

func (e *UnknownToolError) Unwrap() error {
	return reloop.ErrUnknownTool
}

// Registry is the standard [reloop.ToolSet].
//
// Tools are looked up by exact name. Arguments are validated against the tool's parameter
// schema before the tool runs, and every failure after lookup (schema validation, argument
// decoding, the tool's own error, a panic) is converted into a textual result starting with
// "Error: ". An unknown name is reported as an error, so the agent loop can answer it with a
// corrective message. Cancellation and completion backend failures (which only a delegated
// loop can produce) are returned as errors too and end the invocation.
//
//	tools := toolset.New().
//	    Register(tools.NewClock(reloop.NewDefaultTimeProvider())).
//	    Register(tools.NewWikipedia())
//
// # Thread Safety
//
// Register all tools before use. After that the Registry is read-only and safe for
// concurrent use, including by delegated loops.
type Registry struct {
	tools   []reloop.Tool
	toolMap map[string]reloop.Tool
	schemas map[string]*schema.Schema
}

// New creates an empty Registry.
func New() *Registry {
	return &Registry{
		tools:   make([]reloop.Tool, 0),
		toolMap: make(map[string]reloop.Tool),
		schemas: make(map[string]*schema.Schema),
	}
}

// Register adds a tool and compiles its parameter schema.
//
// Register panics if the tool is nil, its name is empty or already registered, or its schema
// does not compile: all of these are programming errors caught at startup.
func (r *Registry) Register(tool reloop.Tool) *Registry {
	if tool == nil {
		panic("toolset: Register called with nil tool")
	}
	name := tool.Name()
	if name == "" {
		panic("toolset: tool has an empty name")
	}
	if _, exists := r.toolMap[name]; exists {
		panic(fmt.Sprintf("toolset: tool %q registered twice", name))
	}

	compiled, err := schema.Compile(tool.ParameterSchema())
	if err != nil {
		panic(fmt.Sprintf("toolset: tool %q: %v", name, err))
	}

	r.tools = append(r.tools, tool)
	r.toolMap[name] = tool
	if compiled != nil {
		r.schemas[name] = compiled
	}
	return r
}

// Get returns the tool registered under name.
func (r *Registry) Get(name string) (reloop.Tool, bool) {
	tool, ok := r.toolMap[name]
	return tool, ok
}

// Len returns the number of registered tools.
func (r *Registry) Len() int {
	return len(r.tools)
}

// Descriptors returns the registered tools in registration order.
func (r *Registry) Descriptors() []reloop.ToolDescriptor {
	out := make([]reloop.ToolDescriptor, 0, len(r.tools))
	for _, tool := range r.tools {
		out = append(out, reloop.DescriptorOf(tool))
	}
	return out
}

// Invoke executes the named tool. See [Registry] for the error contract.
func (r *Registry) Invoke(ctx context.Context, call *reloop.ToolCall) (result reloop.ToolResult, err error) {
	tool, ok := r.toolMap[call.Name]
	if !ok {
		return nil, &UnknownToolError{Name: call.Name}
	}

	if s, hasSchema := r.schemas[call.Name]; hasSchema {
		if validationErr := s.Validate(call.Arguments); validationErr != nil {
			return ErrorResult(validationErr), nil
		}
	}

	defer func() {
		if p := recover(); p != nil {
			result, err = ErrorResult(fmt.Errorf("tool %q panicked: %v", call.Name, p)), nil
		}
	}()

	output, callErr := tool.Call(ctx, call.Arguments)
	if callErr != nil {
		if ctx.Err() != nil || errors.Is(callErr, reloop.ErrBackend) {
			return nil, callErr
		}
		return ErrorResult(callErr), nil
	}
	return output, nil
}

// ErrorResult converts an error into the textual result shown to the model.
func ErrorResult(err error) string {
	return "Error: " + err.Error()
}

// Compile-time check that Registry implements reloop.ToolSet.
var _ reloop.ToolSet = (*Registry)(nil)
