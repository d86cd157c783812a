package reloop

import (
	"context"
	"fmt"

	"github.com/mitchellh/mapstructure"
)

// Tool represents a single capability the model can invoke by name.
//
// Responsibility design:
//   - Tool: validate and coerce its own arguments, execute, return a JSON-serialisable result
//   - ToolSet: look tools up by name, validate against the schema, convert failures to text
//   - AgentLoop: wrap the result into a tool message and append it to the conversation
//
// Arguments arrive as an untyped JSON object. Missing or mistyped fields should be reported as
// an error wrapping [ErrInvalidToolArgs]; the ToolSet turns it into a textual result the model
// can recover from.
type Tool interface {
	// Name returns the tool's identifier used in tool calls.
	Name() string

	// Description returns a human-readable description for the model.
	Description() string

	// ParameterSchema returns the JSON Schema for the tool's arguments.
	// Returns nil if the tool takes no arguments.
	ParameterSchema() map[string]any

	// Call executes the tool with the raw arguments parsed from the tool call.
	Call(ctx context.Context, args map[string]any) (ToolResult, error)
}

// ToolResult is the opaque, JSON-serialisable value produced by a tool.
type ToolResult = any

// ToolCall is a tool invocation parsed from generated text. It only lives for one turn.
type ToolCall struct {
	Name      string         `json:"name" yaml:"name"`
	Arguments map[string]any `json:"arguments" yaml:"arguments"`
}

// ToolDescriptor is the static description of a tool shown to the model in the system prompt.
type ToolDescriptor struct {
	Name        string
	Description string
	Parameters  map[string]any
}

// DescriptorOf returns the descriptor of a tool.
func DescriptorOf(tool Tool) ToolDescriptor {
	return ToolDescriptor{
		Name:        tool.Name(),
		Description: tool.Description(),
		Parameters:  tool.ParameterSchema(),
	}
}

// ToolFunc is a convenience type for creating tools from functions with typed input.
//
// The raw argument map is decoded into I using the `json` struct tags. Decoding is weakly
// typed, so a model that sends "3" for an integer field still works.
type ToolFunc[I, O any] struct {
	name        string
	description string
	schema      map[string]any
	fn          func(ctx context.Context, input I) (O, error)
}

// NewToolFunc creates a new ToolFunc with typed input and output.
func NewToolFunc[I, O any](
	name, description string,
	schema map[string]any,
	fn func(ctx context.Context, input I) (O, error),
) *ToolFunc[I, O] {
	return &ToolFunc[I, O]{
		name:        name,
		description: description,
		schema:      schema,
		fn:          fn,
	}
}

// Name returns the tool's identifier.
func (t *ToolFunc[I, O]) Name() string {
	return t.name
}

// Description returns a human-readable description for the model.
func (t *ToolFunc[I, O]) Description() string {
	return t.description
}

// ParameterSchema returns the JSON Schema for the tool's parameters.
func (t *ToolFunc[I, O]) ParameterSchema() map[string]any {
	return t.schema
}

// Call decodes args into the typed input and executes the tool function.
func (t *ToolFunc[I, O]) Call(ctx context.Context, args map[string]any) (ToolResult, error) {
	input, err := DecodeArgs[I](args)
	if err != nil {
		return nil, err
	}
	return t.fn(ctx, input)
}

// DecodeArgs decodes a raw argument map into I using `json` struct tags.
// Errors wrap [ErrInvalidToolArgs].
func DecodeArgs[I any](args map[string]any) (I, error) {
	var input I
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		TagName:          "json",
		WeaklyTypedInput: true,
		Result:           &input,
	})
	if err != nil {
		return input, fmt.Errorf("%w: %v", ErrInvalidToolArgs, err)
	}
	if args == nil {
		return input, nil
	}
	if err := decoder.Decode(args); err != nil {
		return input, fmt.Errorf("%w: %v", ErrInvalidToolArgs, err)
	}
	return input, nil
}

// Compile-time check that ToolFunc implements Tool.
var _ Tool = (*ToolFunc[struct{}, string])(nil)
