// Package loggers provides logging hooks.
package loggers

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/rickchristie/reloop"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

// ZapHook implements all hook interfaces and logs what happens during execution.
//
// Execution boundaries and tool calls are logged at info level, everything else at debug.
// At debug level the whole conversation is dumped as YAML after every turn, so multi-line
// messages stay readable. Every entry carries the execution ID and delegation depth.
type ZapHook struct {
	logger *zap.Logger
}

// NewZapHook creates a ZapHook writing to logger.
func NewZapHook(logger *zap.Logger) *ZapHook {
	return &ZapHook{logger: logger}
}

func (h *ZapHook) with(execCtx *reloop.ExecutionContext) *zap.Logger {
	return h.logger.With(
		zap.String("execution", execCtx.ID()),
		zap.String("name", execCtx.Name()),
		zap.Int("depth", execCtx.Depth()),
	)
}

func (h *ZapHook) OnBeforeExecution(
	_ context.Context,
	execCtx *reloop.ExecutionContext,
	event reloop.BeforeExecutionEvent,
) {
	fields := []zap.Field{zap.String("task", event.Task)}
	if parent := execCtx.Parent(); parent != nil {
		fields = append(fields, zap.String("parent", parent.ID()))
	}
	h.with(execCtx).Info("execution started", fields...)
}

func (h *ZapHook) OnAfterExecution(
	_ context.Context,
	execCtx *reloop.ExecutionContext,
	event reloop.AfterExecutionEvent,
) {
	stats := execCtx.Stats()
	fields := []zap.Field{
		zap.String("reason", string(event.TerminationReason)),
		zap.Duration("duration", execCtx.Duration()),
		zap.Int("turns", execCtx.Iteration()),
		zap.Int("generations", stats.Generations),
		zap.Int("input_tokens", stats.InputTokens),
		zap.Int("output_tokens", stats.OutputTokens),
		zap.Int("tool_calls", stats.ToolCalls),
	}
	if event.Error != nil {
		h.with(execCtx).Warn("execution finished", append(fields, zap.Error(event.Error))...)
		return
	}
	h.with(execCtx).Info("execution finished", fields...)
}

func (h *ZapHook) OnBeforeIteration(
	_ context.Context,
	execCtx *reloop.ExecutionContext,
	event reloop.BeforeIterationEvent,
) {
	h.with(execCtx).Debug("turn started", zap.Int("turn", event.Iteration))
}

func (h *ZapHook) OnAfterIteration(
	_ context.Context,
	execCtx *reloop.ExecutionContext,
	event reloop.AfterIterationEvent,
) {
	logger := h.with(execCtx)
	logger.Debug("turn finished",
		zap.Int("turn", event.Iteration),
		zap.String("action", actionName(event.Result)),
		zap.Duration("duration", event.Duration),
	)

	if !logger.Core().Enabled(zap.DebugLevel) {
		return
	}
	data := execCtx.Data()
	if data == nil || data.GetConversation() == nil {
		return
	}
	var dump strings.Builder
	enc := yaml.NewEncoder(&dump)
	enc.SetIndent(2)
	if err := enc.Encode(data.GetConversation().Messages()); err != nil {
		logger.Debug("conversation", zap.Error(err))
		return
	}
	_ = enc.Close()
	logger.Debug("conversation\n" + dump.String())
}

func (h *ZapHook) OnError(
	_ context.Context,
	execCtx *reloop.ExecutionContext,
	event reloop.ErrorEvent,
) {
	h.with(execCtx).Error("execution failed",
		zap.Int("turn", event.Iteration),
		zap.Error(event.Err),
	)
}

func (h *ZapHook) OnBeforeGeneration(
	_ context.Context,
	execCtx *reloop.ExecutionContext,
	event reloop.BeforeGenerationEvent,
) {
	h.with(execCtx).Debug("generating", zap.Int("prompt_chars", len(event.Prompt)))
}

func (h *ZapHook) OnAfterGeneration(
	_ context.Context,
	execCtx *reloop.ExecutionContext,
	event reloop.AfterGenerationEvent,
) {
	logger := h.with(execCtx)
	if event.Error != nil {
		logger.Warn("generation failed", zap.Duration("duration", event.Duration), zap.Error(event.Error))
		return
	}

	fields := []zap.Field{zap.Duration("duration", event.Duration)}
	if c := event.Completion; c != nil {
		fields = append(fields,
			zap.String("stop_reason", c.StopReason),
			zap.Int("generated_chars", len(c.Text)),
		)
		if c.Info != nil {
			fields = append(fields,
				zap.Int("input_tokens", c.Info.InputTokens),
				zap.Int("output_tokens", c.Info.OutputTokens),
			)
		}
	}
	logger.Debug("generated", fields...)
}

// OnBeforeToolCall logs "calling name{args}" with the arguments as compact JSON.
func (h *ZapHook) OnBeforeToolCall(
	_ context.Context,
	execCtx *reloop.ExecutionContext,
	event reloop.BeforeToolCallEvent,
) {
	args, err := json.Marshal(event.Call.Arguments)
	if err != nil {
		args = []byte("{?}")
	}
	h.with(execCtx).Info("calling " + event.Call.Name + string(args))
}

func (h *ZapHook) OnAfterToolCall(
	_ context.Context,
	execCtx *reloop.ExecutionContext,
	event reloop.AfterToolCallEvent,
) {
	logger := h.with(execCtx)
	if event.Error != nil {
		logger.Warn("tool call failed",
			zap.String("tool", event.Call.Name),
			zap.Duration("duration", event.Duration),
			zap.Error(event.Error),
		)
		return
	}
	logger.Debug("tool returned",
		zap.String("tool", event.Call.Name),
		zap.Duration("duration", event.Duration),
		zap.Any("result", event.Result),
	)
}

func (h *ZapHook) OnMalformedToolCall(
	_ context.Context,
	execCtx *reloop.ExecutionContext,
	event reloop.MalformedToolCallEvent,
) {
	h.with(execCtx).Warn("malformed tool call",
		zap.String("content", event.Content),
		zap.Error(event.Error),
	)
}

func actionName(result *reloop.AgentLoopResult) string {
	if result == nil {
		return ""
	}
	switch result.Action {
	case reloop.LAContinue:
		return "continue"
	case reloop.LATerminate:
		return "terminate"
	default:
		return string(result.Action)
	}
}

var (
	_ reloop.BeforeExecutionHook   = (*ZapHook)(nil)
	_ reloop.AfterExecutionHook    = (*ZapHook)(nil)
	_ reloop.BeforeIterationHook   = (*ZapHook)(nil)
	_ reloop.AfterIterationHook    = (*ZapHook)(nil)
	_ reloop.ErrorHook             = (*ZapHook)(nil)
	_ reloop.BeforeGenerationHook  = (*ZapHook)(nil)
	_ reloop.AfterGenerationHook   = (*ZapHook)(nil)
	_ reloop.BeforeToolCallHook    = (*ZapHook)(nil)
	_ reloop.AfterToolCallHook     = (*ZapHook)(nil)
	_ reloop.MalformedToolCallHook = (*ZapHook)(nil)
)
