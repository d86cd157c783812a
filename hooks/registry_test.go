package hooks

import (
	"context"
	"errors"
	"testing"

	"github.com/rickchristie/reloop"
	"github.com/stretchr/testify/assert"
)

type recordingHook struct {
	name string
	log  *[]string
}

func (h *recordingHook) OnBeforeExecution(
	_ context.Context, _ *reloop.ExecutionContext, _ reloop.BeforeExecutionEvent,
) {
	*h.log = append(*h.log, h.name+":before_execution")
}

func (h *recordingHook) OnAfterToolCall(
	_ context.Context, _ *reloop.ExecutionContext, e reloop.AfterToolCallEvent,
) {
	*h.log = append(*h.log, h.name+":after_tool_call:"+e.Call.Name)
}

// onlyErrors implements a single interface.
type onlyErrors struct {
	errs []error
}

func (h *onlyErrors) OnError(_ context.Context, _ *reloop.ExecutionContext, e reloop.ErrorEvent) {
	h.errs = append(h.errs, e.Err)
}

func TestRegistry_Dispatch(t *testing.T) {
	var log []string
	errHook := &onlyErrors{}

	registry := NewRegistry().
		Register(&recordingHook{name: "first", log: &log}).
		Register(errHook).
		Register(&recordingHook{name: "second", log: &log})

	assert.Equal(t, 3, registry.Len())

	execCtx := reloop.NewExecutionContext(context.Background(), "test", nil, 0)
	ctx := execCtx.Context()

	registry.FireBeforeExecution(ctx, execCtx, reloop.BeforeExecutionEvent{Task: "t"})
	registry.FireAfterToolCall(ctx, execCtx, reloop.AfterToolCallEvent{
		Call: &reloop.ToolCall{Name: "get_current_time"},
	})
	registry.FireError(ctx, execCtx, reloop.ErrorEvent{Err: errors.New("boom")})

	// Events without implementers are ignored.
	registry.FireBeforeGeneration(ctx, execCtx, reloop.BeforeGenerationEvent{Prompt: "p"})
	registry.FireMalformedToolCall(ctx, execCtx, reloop.MalformedToolCallEvent{})

	assert.Equal(t, []string{
		"first:before_execution",
		"second:before_execution",
		"first:after_tool_call:get_current_time",
		"second:after_tool_call:get_current_time",
	}, log)
	assert.Len(t, errHook.errs, 1)
	assert.EqualError(t, errHook.errs[0], "boom")
}

func TestRegistry_Clear(t *testing.T) {
	registry := NewRegistry().Register(&onlyErrors{})
	registry.Clear()
	assert.Equal(t, 0, registry.Len())
}

func TestRegistry_FiredThroughExecutionContext(t *testing.T) {
	var log []string
	registry := NewRegistry().Register(&recordingHook{name: "h", log: &log})

	parent := reloop.NewExecutionContext(context.Background(), "parent", nil, 0)
	parent.SetHookFirer(registry)

	// A child created under the parent inherits the firer.
	child := reloop.NewExecutionContext(parent.Context(), "child", nil, 1)
	child.FireBeforeExecution(reloop.BeforeExecutionEvent{Task: "sub"})

	assert.Equal(t, []string{"h:before_execution"}, log)
}
