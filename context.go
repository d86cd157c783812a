package reloop

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
)

// TerminationReason describes why an execution ended.
type TerminationReason string

const (
	// TerminationSuccess means the model produced a final answer.
	TerminationSuccess TerminationReason = "success"

	// TerminationError means a fatal error (e.g. a [BackendError]) aborted the invocation.
	TerminationError TerminationReason = "error"

	// TerminationTurnLimit means [Limits.MaxTurns] was reached. See [ErrTurnLimitExceeded].
	TerminationTurnLimit TerminationReason = "turn_limit"

	// TerminationDepthLimit means the loop would have started deeper than
	// [Limits.MaxDelegationDepth]. See [ErrMaxDelegationDepthExceeded].
	TerminationDepthLimit TerminationReason = "depth_limit"

	// TerminationContextCanceled means the context.Context was canceled.
	TerminationContextCanceled TerminationReason = "context_canceled"
)

type executionContextKey struct{}

// ExecutionContext is the ambient state of one agent invocation. It carries the LoopData, the
// position in the loop (turn and delegation depth), limits, hooks, aggregated stats and the
// final outcome.
//
// A delegated task runs in its own ExecutionContext. When the context.Context passed to
// [NewExecutionContext] already carries an ExecutionContext (which is the case for anything
// running inside a tool call), the new one is linked as its child and inherits its limits
// and hook firer. The two never share LoopData.
type ExecutionContext struct {
	mu sync.RWMutex

	ctx  context.Context
	id   string
	name string
	data LoopData

	// Current position
	iteration int
	depth     int // nesting level (0 for root)

	// Nesting support
	parent   *ExecutionContext
	children []*ExecutionContext

	limits    Limits
	hookFirer HookFirer
	stats     ExecutionStats

	// Timing
	startTime time.Time
	endTime   time.Time

	// Termination
	terminationReason TerminationReason
	result            string
	err               error
}

// ExecutionStats contains counters aggregated over one ExecutionContext (children excluded).
type ExecutionStats struct {
	Generations        int
	InputTokens        int
	OutputTokens       int
	ToolCalls          int
	ToolCallsByName    map[string]int
	UnknownToolCalls   int
	MalformedToolCalls int
}

// NewExecutionContext creates an ExecutionContext for an invocation running at the given
// delegation depth (0 for a loop started by the user).
func NewExecutionContext(
	ctx context.Context,
	name string,
	data LoopData,
	depth int,
) *ExecutionContext {
	execCtx := &ExecutionContext{
		id:        uuid.NewString(),
		name:      name,
		data:      data,
		depth:     depth,
		limits:    DefaultLimits(),
		startTime: time.Now(),
		stats: ExecutionStats{
			ToolCallsByName: make(map[string]int),
		},
	}

	if parent := ExecutionContextFromContext(ctx); parent != nil {
		parent.mu.Lock()
		execCtx.parent = parent
		execCtx.limits = parent.limits
		execCtx.hookFirer = parent.hookFirer
		parent.children = append(parent.children, execCtx)
		parent.mu.Unlock()
	}

	execCtx.ctx = context.WithValue(ctx, executionContextKey{}, execCtx)
	return execCtx
}

// ExecutionContextFromContext returns the ExecutionContext carried by ctx, or nil.
func ExecutionContextFromContext(ctx context.Context) *ExecutionContext {
	if ctx == nil {
		return nil
	}
	execCtx, _ := ctx.Value(executionContextKey{}).(*ExecutionContext)
	return execCtx
}

// DepthFromContext returns the delegation depth of the ExecutionContext carried by ctx, or 0.
func DepthFromContext(ctx context.Context) int {
	if execCtx := ExecutionContextFromContext(ctx); execCtx != nil {
		return execCtx.Depth()
	}
	return 0
}

// -----------------------------------------------------------------------------
// Accessors
// -----------------------------------------------------------------------------

// Context returns the context.Context for blocking calls made on behalf of this execution.
// It carries the ExecutionContext itself, see [ExecutionContextFromContext].
func (e *ExecutionContext) Context() context.Context {
	return e.ctx
}

// ID returns the unique identifier of this execution.
func (e *ExecutionContext) ID() string {
	return e.id
}

// Name returns the name of this execution context.
func (e *ExecutionContext) Name() string {
	return e.name
}

// Data returns the LoopData.
func (e *ExecutionContext) Data() LoopData {
	return e.data
}

// Depth returns the delegation depth (0 for root).
func (e *ExecutionContext) Depth() int {
	return e.depth
}

// Parent returns the ExecutionContext that spawned this one, or nil for a root.
func (e *ExecutionContext) Parent() *ExecutionContext {
	return e.parent
}

// Children returns the ExecutionContexts of tasks delegated from this one.
func (e *ExecutionContext) Children() []*ExecutionContext {
	e.mu.RLock()
	defer e.mu.RUnlock()
	out := make([]*ExecutionContext, len(e.children))
	copy(out, e.children)
	return out
}

// Limits returns the limits applied to this execution.
func (e *ExecutionContext) Limits() Limits {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.limits
}

// SetLimits replaces the limits. Call before execution starts.
func (e *ExecutionContext) SetLimits(limits Limits) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.limits = limits
}

// SetHookFirer sets the hook dispatcher. Called by the executor.
func (e *ExecutionContext) SetHookFirer(firer HookFirer) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.hookFirer = firer
}

// -----------------------------------------------------------------------------
// Iteration Management
// -----------------------------------------------------------------------------

// Iteration returns the current turn number (1-indexed). Returns 0 before the first turn.
func (e *ExecutionContext) Iteration() int {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.iteration
}

// StartIteration begins a new turn and returns its number.
func (e *ExecutionContext) StartIteration() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.iteration++
	return e.iteration
}

// -----------------------------------------------------------------------------
// Stats
// -----------------------------------------------------------------------------

// RecordGeneration counts one completion request.
func (e *ExecutionContext) RecordGeneration(info *GenerationInfo) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.stats.Generations++
	if info != nil {
		e.stats.InputTokens += info.InputTokens
		e.stats.OutputTokens += info.OutputTokens
	}
}

// RecordToolCall counts one dispatched tool call. unknown is true when no tool had the name.
func (e *ExecutionContext) RecordToolCall(name string, unknown bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.stats.ToolCalls++
	if unknown {
		e.stats.UnknownToolCalls++
		return
	}
	e.stats.ToolCallsByName[name]++
}

// RecordMalformedToolCall counts one unparseable tool call.
func (e *ExecutionContext) RecordMalformedToolCall() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.stats.MalformedToolCalls++
}

// Stats returns a copy of the current stats.
func (e *ExecutionContext) Stats() ExecutionStats {
	e.mu.RLock()
	defer e.mu.RUnlock()
	stats := e.stats
	stats.ToolCallsByName = make(map[string]int, len(e.stats.ToolCallsByName))
	for k, v := range e.stats.ToolCallsByName {
		stats.ToolCallsByName[k] = v
	}
	return stats
}

// -----------------------------------------------------------------------------
// Termination
// -----------------------------------------------------------------------------

// SetTermination records the outcome of the execution. Called by the executor.
func (e *ExecutionContext) SetTermination(reason TerminationReason, result string, err error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.terminationReason = reason
	e.result = result
	e.err = err
	e.endTime = time.Now()
}

// TerminationReason returns why execution ended, or "" while it is running.
func (e *ExecutionContext) TerminationReason() TerminationReason {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.terminationReason
}

// Result returns the final answer.
func (e *ExecutionContext) Result() string {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.result
}

// Error returns the error that ended execution, if any.
func (e *ExecutionContext) Error() error {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.err
}

// Duration returns how long the execution took, or has taken so far.
func (e *ExecutionContext) Duration() time.Duration {
	e.mu.RLock()
	defer e.mu.RUnlock()
	if e.endTime.IsZero() {
		return time.Since(e.startTime)
	}
	return e.endTime.Sub(e.startTime)
}

// -----------------------------------------------------------------------------
// Hook Dispatch
// -----------------------------------------------------------------------------

func (e *ExecutionContext) firer() HookFirer {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.hookFirer
}

// FireBeforeExecution dispatches a BeforeExecutionEvent.
func (e *ExecutionContext) FireBeforeExecution(event BeforeExecutionEvent) {
	if f := e.firer(); f != nil {
		f.FireBeforeExecution(e.ctx, e, event)
	}
}

// FireAfterExecution dispatches an AfterExecutionEvent.
func (e *ExecutionContext) FireAfterExecution(event AfterExecutionEvent) {
	if f := e.firer(); f != nil {
		f.FireAfterExecution(e.ctx, e, event)
	}
}

// FireBeforeIteration dispatches a BeforeIterationEvent.
func (e *ExecutionContext) FireBeforeIteration(event BeforeIterationEvent) {
	if f := e.firer(); f != nil {
		f.FireBeforeIteration(e.ctx, e, event)
	}
}

// FireAfterIteration dispatches an AfterIterationEvent.
func (e *ExecutionContext) FireAfterIteration(event AfterIterationEvent) {
	if f := e.firer(); f != nil {
		f.FireAfterIteration(e.ctx, e, event)
	}
}

// FireError dispatches an ErrorEvent.
func (e *ExecutionContext) FireError(event ErrorEvent) {
	if f := e.firer(); f != nil {
		f.FireError(e.ctx, e, event)
	}
}

// FireBeforeGeneration dispatches a BeforeGenerationEvent.
func (e *ExecutionContext) FireBeforeGeneration(event BeforeGenerationEvent) {
	if f := e.firer(); f != nil {
		f.FireBeforeGeneration(e.ctx, e, event)
	}
}

// FireAfterGeneration records the generation in stats and dispatches an AfterGenerationEvent.
func (e *ExecutionContext) FireAfterGeneration(event AfterGenerationEvent) {
	var info *GenerationInfo
	if event.Completion != nil {
		info = event.Completion.Info
	}
	e.RecordGeneration(info)
	if f := e.firer(); f != nil {
		f.FireAfterGeneration(e.ctx, e, event)
	}
}

// FireBeforeToolCall dispatches a BeforeToolCallEvent.
func (e *ExecutionContext) FireBeforeToolCall(event BeforeToolCallEvent) {
	if f := e.firer(); f != nil {
		f.FireBeforeToolCall(e.ctx, e, event)
	}
}

// FireAfterToolCall records the call in stats and dispatches an AfterToolCallEvent.
func (e *ExecutionContext) FireAfterToolCall(event AfterToolCallEvent) {
	name := ""
	if event.Call != nil {
		name = event.Call.Name
	}
	e.RecordToolCall(name, errors.Is(event.Error, ErrUnknownTool))
	if f := e.firer(); f != nil {
		f.FireAfterToolCall(e.ctx, e, event)
	}
}

// FireMalformedToolCall records the failure in stats and dispatches a MalformedToolCallEvent.
func (e *ExecutionContext) FireMalformedToolCall(event MalformedToolCallEvent) {
	e.RecordMalformedToolCall()
	if f := e.firer(); f != nil {
		f.FireMalformedToolCall(e.ctx, e, event)
	}
}
