// Package tt provides test helpers for the reloop module.
package tt

import (
	"context"
	"fmt"
	"sync"

	"github.com/rickchristie/reloop"
)

// EventRecorder is a hook implementing every hook interface. It records a short description
// of each event, prefixed with the depth of the ExecutionContext that fired it.
type EventRecorder struct {
	mu     sync.Mutex
	events []string
}

// NewEventRecorder creates an empty EventRecorder.
func NewEventRecorder() *EventRecorder {
	return &EventRecorder{}
}

// Events returns the recorded descriptions in order.
func (r *EventRecorder) Events() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, len(r.events))
	copy(out, r.events)
	return out
}

func (r *EventRecorder) record(execCtx *reloop.ExecutionContext, format string, args ...any) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, fmt.Sprintf("[%d] ", execCtx.Depth())+fmt.Sprintf(format, args...))
}

func (r *EventRecorder) OnBeforeExecution(
	_ context.Context, execCtx *reloop.ExecutionContext, _ reloop.BeforeExecutionEvent,
) {
	r.record(execCtx, "BeforeExecution")
}

func (r *EventRecorder) OnAfterExecution(
	_ context.Context, execCtx *reloop.ExecutionContext, e reloop.AfterExecutionEvent,
) {
	r.record(execCtx, "AfterExecution(%s)", e.TerminationReason)
}

func (r *EventRecorder) OnBeforeIteration(
	_ context.Context, execCtx *reloop.ExecutionContext, e reloop.BeforeIterationEvent,
) {
	r.record(execCtx, "BeforeIteration(%d)", e.Iteration)
}

func (r *EventRecorder) OnAfterIteration(
	_ context.Context, execCtx *reloop.ExecutionContext, e reloop.AfterIterationEvent,
) {
	r.record(execCtx, "AfterIteration(%d)", e.Iteration)
}

func (r *EventRecorder) OnError(
	_ context.Context, execCtx *reloop.ExecutionContext, e reloop.ErrorEvent,
) {
	r.record(execCtx, "Error(%d)", e.Iteration)
}

func (r *EventRecorder) OnBeforeGeneration(
	_ context.Context, execCtx *reloop.ExecutionContext, _ reloop.BeforeGenerationEvent,
) {
	r.record(execCtx, "BeforeGeneration")
}

func (r *EventRecorder) OnAfterGeneration(
	_ context.Context, execCtx *reloop.ExecutionContext, _ reloop.AfterGenerationEvent,
) {
	r.record(execCtx, "AfterGeneration")
}

func (r *EventRecorder) OnBeforeToolCall(
	_ context.Context, execCtx *reloop.ExecutionContext, e reloop.BeforeToolCallEvent,
) {
	r.record(execCtx, "BeforeToolCall(%s)", e.Call.Name)
}

func (r *EventRecorder) OnAfterToolCall(
	_ context.Context, execCtx *reloop.ExecutionContext, e reloop.AfterToolCallEvent,
) {
	r.record(execCtx, "AfterToolCall(%s)", e.Call.Name)
}

func (r *EventRecorder) OnMalformedToolCall(
	_ context.Context, execCtx *reloop.ExecutionContext, _ reloop.MalformedToolCallEvent,
) {
	r.record(execCtx, "MalformedToolCall")
}

var (
	_ reloop.BeforeExecutionHook   = (*EventRecorder)(nil)
	_ reloop.AfterExecutionHook    = (*EventRecorder)(nil)
	_ reloop.BeforeIterationHook   = (*EventRecorder)(nil)
	_ reloop.AfterIterationHook    = (*EventRecorder)(nil)
	_ reloop.ErrorHook             = (*EventRecorder)(nil)
	_ reloop.BeforeGenerationHook  = (*EventRecorder)(nil)
	_ reloop.AfterGenerationHook   = (*EventRecorder)(nil)
	_ reloop.BeforeToolCallHook    = (*EventRecorder)(nil)
	_ reloop.AfterToolCallHook     = (*EventRecorder)(nil)
	_ reloop.MalformedToolCallHook = (*EventRecorder)(nil)
)
