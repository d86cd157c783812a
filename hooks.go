package reloop

import (
	"context"
)

// -----------------------------------------------------------------------------
// Executor Hook Interfaces
// -----------------------------------------------------------------------------
//
// Hooks allow observing execution at various points. To use hooks:
//
//  1. Implement the desired hook interface(s)
//  2. Register with hooks.Registry
//  3. Pass the registry to the executor
//
// Example:
//
//	type TurnLogger struct{}
//
//	func (h *TurnLogger) OnBeforeIteration(
//	    ctx context.Context, execCtx *ExecutionContext, e BeforeIterationEvent,
//	) {
//	    log.Printf("[%s depth=%d] turn %d", execCtx.Name(), execCtx.Depth(), e.Iteration)
//	}
//
//	registry := hooks.NewRegistry().Register(&TurnLogger{})
//	exec := executor.New(agent).WithHooks(registry)
//
// # Hook Execution Order
//
// Hooks are called in registration order. For paired hooks (Before/After), the After hook is
// always called if the Before hook was called, even on error.
//
// # Delegation
//
// Delegated loops inherit the hook firer of the loop that spawned them, so a single registry
// observes the whole delegation tree. Use execCtx.Depth() and execCtx.Parent() to tell them
// apart.
// -----------------------------------------------------------------------------

// BeforeExecutionHook is implemented by hooks that want to be notified before execution starts.
type BeforeExecutionHook interface {
	// OnBeforeExecution is called once before the first turn.
	OnBeforeExecution(ctx context.Context, execCtx *ExecutionContext, event BeforeExecutionEvent)
}

// AfterExecutionHook is implemented by hooks that want to be notified after execution ends.
type AfterExecutionHook interface {
	// OnAfterExecution is called once after the last turn, whatever the outcome.
	OnAfterExecution(ctx context.Context, execCtx *ExecutionContext, event AfterExecutionEvent)
}

// BeforeIterationHook is implemented by hooks that want to be notified before each turn.
type BeforeIterationHook interface {
	OnBeforeIteration(ctx context.Context, execCtx *ExecutionContext, event BeforeIterationEvent)
}

// AfterIterationHook is implemented by hooks that want to be notified after each turn.
type AfterIterationHook interface {
	OnAfterIteration(ctx context.Context, execCtx *ExecutionContext, event AfterIterationEvent)
}

// ErrorHook is implemented by hooks that want to be notified of errors.
type ErrorHook interface {
	// OnError is called when an error terminates execution.
	// The error will still be returned from Execute.
	OnError(ctx context.Context, execCtx *ExecutionContext, event ErrorEvent)
}

// -----------------------------------------------------------------------------
// Generation Hook Interfaces
// -----------------------------------------------------------------------------

// BeforeGenerationHook is implemented by hooks that want to be notified before completion
// requests.
type BeforeGenerationHook interface {
	OnBeforeGeneration(ctx context.Context, execCtx *ExecutionContext, event BeforeGenerationEvent)
}

// AfterGenerationHook is implemented by hooks that want to be notified after completion
// requests.
type AfterGenerationHook interface {
	OnAfterGeneration(ctx context.Context, execCtx *ExecutionContext, event AfterGenerationEvent)
}

// -----------------------------------------------------------------------------
// Tool Call Hook Interfaces
// -----------------------------------------------------------------------------

// BeforeToolCallHook is implemented by hooks that want to be notified before tool calls.
type BeforeToolCallHook interface {
	OnBeforeToolCall(ctx context.Context, execCtx *ExecutionContext, event BeforeToolCallEvent)
}

// AfterToolCallHook is implemented by hooks that want to be notified after tool calls.
type AfterToolCallHook interface {
	OnAfterToolCall(ctx context.Context, execCtx *ExecutionContext, event AfterToolCallEvent)
}

// MalformedToolCallHook is implemented by hooks that want to be notified of unparseable tool
// calls.
type MalformedToolCallHook interface {
	OnMalformedToolCall(
		ctx context.Context,
		execCtx *ExecutionContext,
		event MalformedToolCallEvent,
	)
}

// HookFirer dispatches events to registered hooks. hooks.Registry is the standard
// implementation.
type HookFirer interface {
	FireBeforeExecution(ctx context.Context, execCtx *ExecutionContext, event BeforeExecutionEvent)
	FireAfterExecution(ctx context.Context, execCtx *ExecutionContext, event AfterExecutionEvent)
	FireBeforeIteration(ctx context.Context, execCtx *ExecutionContext, event BeforeIterationEvent)
	FireAfterIteration(ctx context.Context, execCtx *ExecutionContext, event AfterIterationEvent)
	FireError(ctx context.Context, execCtx *ExecutionContext, event ErrorEvent)
	FireBeforeGeneration(
		ctx context.Context,
		execCtx *ExecutionContext,
		event BeforeGenerationEvent,
	)
	FireAfterGeneration(ctx context.Context, execCtx *ExecutionContext, event AfterGenerationEvent)
	FireBeforeToolCall(ctx context.Context, execCtx *ExecutionContext, event BeforeToolCallEvent)
	FireAfterToolCall(ctx context.Context, execCtx *ExecutionContext, event AfterToolCallEvent)
	FireMalformedToolCall(
		ctx context.Context,
		execCtx *ExecutionContext,
		event MalformedToolCallEvent,
	)
}
