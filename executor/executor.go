package executor

import (
	"errors"
	"fmt"
	"time"

	"github.com/rickchristie/reloop"
	"github.com/rickchristie/reloop/hooks"
)

// Executor drives an AgentLoop, managing the lifecycle, the hooks and the limits of one
// invocation via its ExecutionContext.
//
// The Executor is responsible for:
//   - Running the AgentLoop repeatedly until it returns [reloop.LATerminate]
//   - Invoking lifecycle hooks at appropriate points
//   - Enforcing [reloop.Limits] and context cancellation
//
// Limits are configured on the ExecutionContext, not the Executor. Delegated loops inherit
// their parent's limits, so one Executor can serve the whole delegation tree.
type Executor struct {
	loop  reloop.AgentLoop
	hooks *hooks.Registry
}

// New creates a new Executor for the given AgentLoop.
func New(loop reloop.AgentLoop) *Executor {
	return &Executor{
		loop:  loop,
		hooks: hooks.NewRegistry(),
	}
}

// WithHooks replaces the executor's hook registry with the provided one.
// Use this when you need to share a registry across multiple executors.
//
// Example:
//
//	shared := hooks.NewRegistry().Register(loggers.NewZapHook(log.Default))
//	exec1 := executor.New(loop1).WithHooks(shared)
//	exec2 := executor.New(loop2).WithHooks(shared)
func (e *Executor) WithHooks(h *hooks.Registry) *Executor {
	e.hooks = h
	return e
}

// RegisterHook adds a hook to the executor's hook registry. The hook can implement any
// combination of hook interfaces (BeforeExecutionHook, AfterToolCallHook, etc.).
func (e *Executor) RegisterHook(hook any) *Executor {
	e.hooks.Register(hook)
	return e
}

// Hooks returns the executor's hook registry.
func (e *Executor) Hooks() *hooks.Registry {
	return e.hooks
}

// Execute runs the AgentLoop until termination.
//
// The execution flow:
//  1. Fire BeforeExecution
//  2. Fail fast if the context's depth exceeds MaxDelegationDepth
//  3. Repeatedly call AgentLoop.Next until:
//     - It returns LATerminate
//     - The next turn would exceed MaxTurns
//     - The context is canceled
//     - An error occurs
//  4. Fire AfterExecution
//
// The outcome is stored on execCtx: see TerminationReason(), Result() and Error().
//
// Example:
//
//	execCtx := reloop.NewExecutionContext(ctx, "main", data, 0)
//	execCtx.SetLimits(reloop.Limits{MaxTurns: 10, MaxDelegationDepth: 2}) // optional
//	executor.New(agent).Execute(execCtx)
//	if err := execCtx.Error(); err != nil {
//	    // handle error
//	}
func (e *Executor) Execute(execCtx *reloop.ExecutionContext) {
	if e.hooks != nil {
		execCtx.SetHookFirer(e.hooks)
	}

	task := ""
	if data := execCtx.Data(); data != nil {
		task = data.GetTask()
	}
	execCtx.FireBeforeExecution(reloop.BeforeExecutionEvent{Task: task})
	defer func() {
		execCtx.FireAfterExecution(reloop.AfterExecutionEvent{
			TerminationReason: execCtx.TerminationReason(),
			Result:            execCtx.Result(),
			Error:             execCtx.Error(),
		})
	}()

	limits := execCtx.Limits()
	if limits.DepthExceeded(execCtx.Depth()) {
		err := fmt.Errorf("%w: depth %d > %d",
			reloop.ErrMaxDelegationDepthExceeded, execCtx.Depth(), limits.MaxDelegationDepth)
		e.terminate(execCtx, reloop.TerminationDepthLimit, err)
		return
	}

	for {
		goCtx := execCtx.Context()
		if goCtx.Err() != nil {
			e.terminate(execCtx, reloop.TerminationContextCanceled, goCtx.Err())
			return
		}

		if limits.TurnsExceeded(execCtx.Iteration() + 1) {
			err := fmt.Errorf("%w: %d turns", reloop.ErrTurnLimitExceeded, limits.MaxTurns)
			e.terminate(execCtx, reloop.TerminationTurnLimit, err)
			return
		}

		iteration := execCtx.StartIteration()
		iterStart := time.Now()
		execCtx.FireBeforeIteration(reloop.BeforeIterationEvent{Iteration: iteration})

		loopResult, loopErr := e.loop.Next(execCtx)
		iterDuration := time.Since(iterStart)

		if loopErr != nil {
			if goCtx.Err() != nil && errors.Is(loopErr, goCtx.Err()) {
				e.terminate(execCtx, reloop.TerminationContextCanceled, loopErr)
				return
			}
			execErr := fmt.Errorf("AgentLoop.Next (iteration %d): %w", iteration, loopErr)
			e.terminate(execCtx, reloop.TerminationError, execErr)
			return
		}

		execCtx.FireAfterIteration(reloop.AfterIterationEvent{
			Iteration: iteration,
			Result:    loopResult,
			Duration:  iterDuration,
		})

		if loopResult.Action == reloop.LATerminate {
			execCtx.SetTermination(reloop.TerminationSuccess, loopResult.Result, nil)
			return
		}
	}
}

func (e *Executor) terminate(
	execCtx *reloop.ExecutionContext,
	reason reloop.TerminationReason,
	err error,
) {
	execCtx.FireError(reloop.ErrorEvent{Iteration: execCtx.Iteration(), Err: err})
	execCtx.SetTermination(reason, "", err)
}
