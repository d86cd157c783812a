package reloop

import "context"

// ToolSet is the capability set available to an agent loop: a read-only catalog of tools and a
// way to invoke one by name.
//
// # Responsibilities
//
//   - Descriptors: the tool catalog rendered into the system prompt
//   - Invoke: exact-name lookup, argument validation, execution
//
// # Error Contract
//
// Invoke returns an error wrapping [ErrUnknownTool] when no tool has the requested name; the
// agent loop converts it into a corrective tool message and continues. Every other failure
// (schema validation, argument decoding, the tool's own runtime error) MUST be converted into
// a textual [ToolResult]: tools are total and the loop never sees their errors. The
// exceptions are cancellation of ctx and [BackendError]s raised by a delegated loop, which are
// returned as is and end the invocation.
//
// A ToolSet is built once at startup and shared read-only, including by delegated loops.
type ToolSet interface {
	// Descriptors returns the registered tools in registration order.
	Descriptors() []ToolDescriptor

	// Invoke executes the named tool with the call's arguments.
	Invoke(ctx context.Context, call *ToolCall) (ToolResult, error)
}
