package hooks

import (
	"context"

	"github.com/rickchristie/reloop"
)

// Registry manages a collection of hooks and dispatches events to them.
//
// Hooks can implement any combination of hook interfaces; they only receive events for the
// interfaces they implement, in registration order.
//
//	registry := hooks.NewRegistry().
//	    Register(loggers.NewZapHook(log.Default)).
//	    Register(metrics.NewHook(prometheus.DefaultRegisterer))
//
//	exec := executor.New(agent).WithHooks(registry)
//
// Delegated loops inherit their parent's hook firer, so one Registry observes the whole
// delegation tree.
//
// # Thread Safety
//
// Registry is NOT thread-safe. Register all hooks before starting execution.
// Fire methods should only be called through the ExecutionContext.
type Registry struct {
	hooks []any
}

// NewRegistry creates a new empty Registry.
func NewRegistry() *Registry {
	return &Registry{
		hooks: make([]any, 0),
	}
}

// Register adds a hook to the registry. Hooks are called in the order they are registered.
func (r *Registry) Register(hook any) *Registry {
	r.hooks = append(r.hooks, hook)
	return r
}

// FireBeforeExecution dispatches a BeforeExecutionEvent to all registered
// BeforeExecutionHook implementations.
func (r *Registry) FireBeforeExecution(
	ctx context.Context,
	execCtx *reloop.ExecutionContext,
	event reloop.BeforeExecutionEvent,
) {
	for _, h := range r.hooks {
		if hook, ok := h.(reloop.BeforeExecutionHook); ok {
			hook.OnBeforeExecution(ctx, execCtx, event)
		}
	}
}

// FireAfterExecution dispatches an AfterExecutionEvent to all registered
// AfterExecutionHook implementations.
func (r *Registry) FireAfterExecution(
	ctx context.Context,
	execCtx *reloop.ExecutionContext,
	event reloop.AfterExecutionEvent,
) {
	for _, h := range r.hooks {
		if hook, ok := h.(reloop.AfterExecutionHook); ok {
			hook.OnAfterExecution(ctx, execCtx, event)
		}
	}
}

// FireBeforeIteration dispatches a BeforeIterationEvent to all registered
// BeforeIterationHook implementations.
func (r *Registry) FireBeforeIteration(
	ctx context.Context,
	execCtx *reloop.ExecutionContext,
	event reloop.BeforeIterationEvent,
) {
	for _, h := range r.hooks {
		if hook, ok := h.(reloop.BeforeIterationHook); ok {
			hook.OnBeforeIteration(ctx, execCtx, event)
		}
	}
}

// FireAfterIteration dispatches an AfterIterationEvent to all registered
// AfterIterationHook implementations.
func (r *Registry) FireAfterIteration(
	ctx context.Context,
	execCtx *reloop.ExecutionContext,
	event reloop.AfterIterationEvent,
) {
	for _, h := range r.hooks {
		if hook, ok := h.(reloop.AfterIterationHook); ok {
			hook.OnAfterIteration(ctx, execCtx, event)
		}
	}
}

// FireError dispatches an ErrorEvent to all registered ErrorHook implementations.
func (r *Registry) FireError(
	ctx context.Context,
	execCtx *reloop.ExecutionContext,
	event reloop.ErrorEvent,
) {
	for _, h := range r.hooks {
		if hook, ok := h.(reloop.ErrorHook); ok {
			hook.OnError(ctx, execCtx, event)
		}
	}
}

// FireBeforeGeneration dispatches a BeforeGenerationEvent to all registered
// BeforeGenerationHook implementations.
func (r *Registry) FireBeforeGeneration(
	ctx context.Context,
	execCtx *reloop.ExecutionContext,
	event reloop.BeforeGenerationEvent,
) {
	for _, h := range r.hooks {
		if hook, ok := h.(reloop.BeforeGenerationHook); ok {
			hook.OnBeforeGeneration(ctx, execCtx, event)
		}
	}
}

// FireAfterGeneration dispatches an AfterGenerationEvent to all registered
// AfterGenerationHook implementations.
func (r *Registry) FireAfterGeneration(
	ctx context.Context,
	execCtx *reloop.ExecutionContext,
	event reloop.AfterGenerationEvent,
) {
	for _, h := range r.hooks {
		if hook, ok := h.(reloop.AfterGenerationHook); ok {
			hook.OnAfterGeneration(ctx, execCtx, event)
		}
	}
}

// FireBeforeToolCall dispatches a BeforeToolCallEvent to all registered
// BeforeToolCallHook implementations.
func (r *Registry) FireBeforeToolCall(
	ctx context.Context,
	execCtx *reloop.ExecutionContext,
	event reloop.BeforeToolCallEvent,
) {
	for _, h := range r.hooks {
		if hook, ok := h.(reloop.BeforeToolCallHook); ok {
			hook.OnBeforeToolCall(ctx, execCtx, event)
		}
	}
}

// FireAfterToolCall dispatches an AfterToolCallEvent to all registered
// AfterToolCallHook implementations.
func (r *Registry) FireAfterToolCall(
	ctx context.Context,
	execCtx *reloop.ExecutionContext,
	event reloop.AfterToolCallEvent,
) {
	for _, h := range r.hooks {
		if hook, ok := h.(reloop.AfterToolCallHook); ok {
			hook.OnAfterToolCall(ctx, execCtx, event)
		}
	}
}

// FireMalformedToolCall dispatches a MalformedToolCallEvent to all registered
// MalformedToolCallHook implementations.
func (r *Registry) FireMalformedToolCall(
	ctx context.Context,
	execCtx *reloop.ExecutionContext,
	event reloop.MalformedToolCallEvent,
) {
	for _, h := range r.hooks {
		if hook, ok := h.(reloop.MalformedToolCallHook); ok {
			hook.OnMalformedToolCall(ctx, execCtx, event)
		}
	}
}

// Len returns the number of registered hooks.
func (r *Registry) Len() int {
	return len(r.hooks)
}

// Clear removes all registered hooks.
func (r *Registry) Clear() {
	r.hooks = make([]any, 0)
}

// Compile-time check that Registry implements HookFirer.
var _ reloop.HookFirer = (*Registry)(nil)
