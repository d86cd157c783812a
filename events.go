package reloop

import "time"

// -----------------------------------------------------------------------------
// Hook Event Interface
// -----------------------------------------------------------------------------

// HookEvent is a marker interface for all hook events.
type HookEvent interface {
	hookEvent()
}

// -----------------------------------------------------------------------------
// Executor Events
// -----------------------------------------------------------------------------

// BeforeExecutionEvent is emitted once before the first turn begins.
type BeforeExecutionEvent struct {
	// Task is the user prompt that started the invocation.
	Task string
}

func (BeforeExecutionEvent) hookEvent() {}

// AfterExecutionEvent is emitted once after execution terminates.
type AfterExecutionEvent struct {
	// TerminationReason indicates why execution ended.
	TerminationReason TerminationReason

	// Result is the final answer (empty unless TerminationReason is TerminationSuccess).
	Result string

	// Error is the error if execution did not succeed.
	Error error
}

func (AfterExecutionEvent) hookEvent() {}

// BeforeIterationEvent is emitted before each AgentLoop.Next call.
type BeforeIterationEvent struct {
	// Iteration is the current turn number (1-indexed).
	Iteration int
}

func (BeforeIterationEvent) hookEvent() {}

// AfterIterationEvent is emitted after each successful AgentLoop.Next call.
type AfterIterationEvent struct {
	// Iteration is the current turn number (1-indexed).
	Iteration int

	// Result is the AgentLoopResult from this turn.
	Result *AgentLoopResult

	// Duration is how long this turn took.
	Duration time.Duration
}

func (AfterIterationEvent) hookEvent() {}

// ErrorEvent is emitted when an error terminates execution.
type ErrorEvent struct {
	// Iteration is the turn where the error occurred (0 if before the first turn).
	Iteration int

	// Err is the error that occurred.
	Err error
}

func (ErrorEvent) hookEvent() {}

// -----------------------------------------------------------------------------
// Generation Events
// -----------------------------------------------------------------------------

// BeforeGenerationEvent is emitted before each completion request.
type BeforeGenerationEvent struct {
	// Prompt is the rendered transcript sent to the backend.
	Prompt string
}

func (BeforeGenerationEvent) hookEvent() {}

// AfterGenerationEvent is emitted after each completion request, successful or not.
type AfterGenerationEvent struct {
	Prompt     string
	Completion *Completion
	Duration   time.Duration
	Error      error
}

func (AfterGenerationEvent) hookEvent() {}

// -----------------------------------------------------------------------------
// Tool Call Events
// -----------------------------------------------------------------------------

// BeforeToolCallEvent is emitted before a parsed tool call is dispatched.
type BeforeToolCallEvent struct {
	Call *ToolCall
}

func (BeforeToolCallEvent) hookEvent() {}

// AfterToolCallEvent is emitted after a tool call was dispatched.
type AfterToolCallEvent struct {
	Call *ToolCall

	// Result is the tool's result. Nil when Error is set.
	Result ToolResult

	Duration time.Duration

	// Error is set when the call could not be dispatched (unknown tool).
	// Tool failures are reported through Result, not here.
	Error error
}

func (AfterToolCallEvent) hookEvent() {}

// MalformedToolCallEvent is emitted when generated text contains a tool-call marker whose
// payload cannot be parsed.
type MalformedToolCallEvent struct {
	// Content is the full generated text.
	Content string

	Error error
}

func (MalformedToolCallEvent) hookEvent() {}
