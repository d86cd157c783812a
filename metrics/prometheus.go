// Package metrics exports execution metrics to Prometheus.
package metrics

import (
	"context"
	"errors"
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rickchristie/reloop"
)

// Tool call outcomes used as the "outcome" label.
const (
	OutcomeOK          = "ok"
	OutcomeUnknownTool = "unknown_tool"
	OutcomeError       = "error"
)

// Hook counts turns, tool calls, executions and generation latency.
type Hook struct {
	turns              *prometheus.CounterVec
	toolCalls          *prometheus.CounterVec
	executions         *prometheus.CounterVec
	malformedToolCalls prometheus.Counter
	generationDuration prometheus.Histogram
}

// NewHook creates the collectors and registers them on reg.
func NewHook(reg prometheus.Registerer) (*Hook, error) {
	h := &Hook{
		turns: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "reloop_turns_total",
				Help: "Total number of agent loop turns, by delegation depth",
			},
			[]string{"depth"},
		),
		toolCalls: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "reloop_tool_calls_total",
				Help: "Total number of dispatched tool calls",
			},
			[]string{"tool", "outcome"},
		),
		executions: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "reloop_executions_total",
				Help: "Total number of finished executions, by termination reason",
			},
			[]string{"reason"},
		),
		malformedToolCalls: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "reloop_malformed_tool_calls_total",
				Help: "Total number of tool calls that could not be parsed",
			},
		),
		generationDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "reloop_generation_duration_seconds",
				Help:    "Duration of completion requests",
				Buckets: prometheus.ExponentialBuckets(0.1, 2, 10),
			},
		),
	}

	for _, c := range []prometheus.Collector{
		h.turns, h.toolCalls, h.executions, h.malformedToolCalls, h.generationDuration,
	} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return h, nil
}

func (h *Hook) OnBeforeIteration(
	_ context.Context,
	execCtx *reloop.ExecutionContext,
	_ reloop.BeforeIterationEvent,
) {
	h.turns.WithLabelValues(strconv.Itoa(execCtx.Depth())).Inc()
}

func (h *Hook) OnAfterGeneration(
	_ context.Context,
	_ *reloop.ExecutionContext,
	event reloop.AfterGenerationEvent,
) {
	h.generationDuration.Observe(event.Duration.Seconds())
}

func (h *Hook) OnAfterToolCall(
	_ context.Context,
	_ *reloop.ExecutionContext,
	event reloop.AfterToolCallEvent,
) {
	outcome := OutcomeOK
	switch {
	case errors.Is(event.Error, reloop.ErrUnknownTool):
		outcome = OutcomeUnknownTool
	case event.Error != nil:
		outcome = OutcomeError
	}
	h.toolCalls.WithLabelValues(event.Call.Name, outcome).Inc()
}

func (h *Hook) OnMalformedToolCall(
	_ context.Context,
	_ *reloop.ExecutionContext,
	_ reloop.MalformedToolCallEvent,
) {
	h.malformedToolCalls.Inc()
}

func (h *Hook) OnAfterExecution(
	_ context.Context,
	_ *reloop.ExecutionContext,
	event reloop.AfterExecutionEvent,
) {
	h.executions.WithLabelValues(string(event.TerminationReason)).Inc()
}

var (
	_ reloop.BeforeIterationHook   = (*Hook)(nil)
	_ reloop.AfterGenerationHook   = (*Hook)(nil)
	_ reloop.AfterToolCallHook     = (*Hook)(nil)
	_ reloop.MalformedToolCallHook = (*Hook)(nil)
	_ reloop.AfterExecutionHook    = (*Hook)(nil)
)
