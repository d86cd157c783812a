package metrics

import (
	"context"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/rickchristie/reloop"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHook(t *testing.T) {
	reg := prometheus.NewRegistry()
	hook, err := NewHook(reg)
	require.NoError(t, err)

	ctx := context.Background()
	root := reloop.NewExecutionContext(ctx, "main", nil, 0)
	child := reloop.NewExecutionContext(root.Context(), "main/delegate-1", nil, 1)

	hook.OnBeforeIteration(ctx, root, reloop.BeforeIterationEvent{Iteration: 1})
	hook.OnBeforeIteration(ctx, root, reloop.BeforeIterationEvent{Iteration: 2})
	hook.OnBeforeIteration(ctx, child, reloop.BeforeIterationEvent{Iteration: 1})

	clock := &reloop.ToolCall{Name: "get_current_time"}
	hook.OnAfterToolCall(ctx, root, reloop.AfterToolCallEvent{Call: clock, Result: "now"})
	hook.OnAfterToolCall(ctx, root, reloop.AfterToolCallEvent{Call: clock, Result: "later"})
	hook.OnAfterToolCall(ctx, root, reloop.AfterToolCallEvent{
		Call:  &reloop.ToolCall{Name: "lookup_weather"},
		Error: reloop.ErrUnknownTool,
	})
	hook.OnAfterToolCall(ctx, root, reloop.AfterToolCallEvent{
		Call:  &reloop.ToolCall{Name: "delegate_task"},
		Error: reloop.ErrBackend,
	})

	hook.OnMalformedToolCall(ctx, root, reloop.MalformedToolCallEvent{})
	hook.OnAfterGeneration(ctx, root, reloop.AfterGenerationEvent{Duration: 300 * time.Millisecond})
	hook.OnAfterExecution(ctx, child, reloop.AfterExecutionEvent{TerminationReason: reloop.TerminationSuccess})
	hook.OnAfterExecution(ctx, root, reloop.AfterExecutionEvent{TerminationReason: reloop.TerminationTurnLimit})

	tests := []struct {
		name     string
		input    prometheus.Collector
		expected float64
	}{
		{name: "root turns", input: hook.turns.WithLabelValues("0"), expected: 2},
		{name: "child turns", input: hook.turns.WithLabelValues("1"), expected: 1},
		{name: "ok tool calls", input: hook.toolCalls.WithLabelValues("get_current_time", OutcomeOK), expected: 2},
		{name: "unknown tool", input: hook.toolCalls.WithLabelValues("lookup_weather", OutcomeUnknownTool), expected: 1},
		{name: "failed tool", input: hook.toolCalls.WithLabelValues("delegate_task", OutcomeError), expected: 1},
		{name: "malformed", input: hook.malformedToolCalls, expected: 1},
		{name: "successful executions", input: hook.executions.WithLabelValues("success"), expected: 1},
		{name: "turn limit executions", input: hook.executions.WithLabelValues("turn_limit"), expected: 1},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, testutil.ToFloat64(tc.input))
		})
	}

	assert.Equal(t, 1, testutil.CollectAndCount(hook.generationDuration))
}

func TestNewHook_DuplicateRegistration(t *testing.T) {
	reg := prometheus.NewRegistry()
	_, err := NewHook(reg)
	require.NoError(t, err)

	_, err = NewHook(reg)
	assert.Error(t, err)
}
