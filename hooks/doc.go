// Package hooks provides a registry for managing execution lifecycle hooks.
//
// Hooks allow you to observe agent execution. Each hook interface corresponds to a specific
// event type; implement only the interfaces you need.
//
// # Hook Interfaces
//
// Executor lifecycle hooks:
//   - [reloop.BeforeExecutionHook] - Called once before the first turn
//   - [reloop.AfterExecutionHook] - Called once after execution ends
//   - [reloop.BeforeIterationHook] - Called before each turn
//   - [reloop.AfterIterationHook] - Called after each turn
//   - [reloop.ErrorHook] - Called when an error terminates execution
//
// Generation hooks:
//   - [reloop.BeforeGenerationHook] - Called before each completion request
//   - [reloop.AfterGenerationHook] - Called after each completion request
//
// Tool call hooks:
//   - [reloop.BeforeToolCallHook] - Called before each dispatched tool call
//   - [reloop.AfterToolCallHook] - Called after each dispatched tool call
//   - [reloop.MalformedToolCallHook] - Called when a tool call cannot be parsed
//
// # Creating a Hook
//
//	type CallCounter struct{ calls int }
//
//	func (h *CallCounter) OnAfterToolCall(
//	    ctx context.Context,
//	    execCtx *reloop.ExecutionContext,
//	    event reloop.AfterToolCallEvent,
//	) {
//	    h.calls++
//	}
//
//	// Compile-time check
//	var _ reloop.AfterToolCallHook = (*CallCounter)(nil)
//
// # Registering Hooks
//
//	exec := executor.New(agent).
//	    RegisterHook(&CallCounter{}).
//	    RegisterHook(loggers.NewZapHook(log.Default))
//
// or share one registry between executors with WithHooks.
//
// See the loggers and metrics packages for hooks implementing every interface.
package hooks
