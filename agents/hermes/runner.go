package hermes

import (
	"context"
	"fmt"

	"github.com/rickchristie/reloop"
	"github.com/rickchristie/reloop/executor"
)

// Runner couples an Agent with an Executor and starts invocations from a plain prompt.
//
// Every call gets a fresh LoopData, so concurrent or nested invocations never share a
// conversation. A Runner is what the delegate_task tool calls back into:
//
//	agent := hermes.NewAgent(completer)
//	runner := hermes.NewRunner(agent, executor.New(agent))
//	registry := toolset.New().
//		Register(tools.NewClock()).
//		Register(tools.NewDelegate(runner))
//	agent.WithToolSet(registry)
type Runner struct {
	agent    *Agent
	executor *executor.Executor
	limits   reloop.Limits
	name     string
}

// NewRunner creates a Runner with [reloop.DefaultLimits].
func NewRunner(agent *Agent, exec *executor.Executor) *Runner {
	return &Runner{
		agent:    agent,
		executor: exec,
		limits:   reloop.DefaultLimits(),
		name:     "main",
	}
}

// WithLimits sets the limits applied to root invocations. Delegated invocations inherit the
// limits of the invocation that delegated them.
func (r *Runner) WithLimits(limits reloop.Limits) *Runner {
	r.limits = limits
	return r
}

// WithName sets the name given to root ExecutionContexts.
func (r *Runner) WithName(name string) *Runner {
	r.name = name
	return r
}

// Limits returns the limits applied to root invocations.
func (r *Runner) Limits() reloop.Limits {
	return r.limits
}

// Execute runs prompt to completion at the given delegation depth and returns the finished
// ExecutionContext. The outcome is read from its TerminationReason(), Result() and Error().
//
// An ExecutionContext carried by ctx becomes the parent of the new one. The only error
// returned directly is a failure to render the system prompt.
func (r *Runner) Execute(ctx context.Context, prompt string, depth int) (*reloop.ExecutionContext, error) {
	systemPrompt, err := r.agent.SystemPrompt()
	if err != nil {
		return nil, err
	}

	name := r.name
	if depth > 0 {
		name = fmt.Sprintf("%s/delegate-%d", r.name, depth)
	}

	execCtx := reloop.NewExecutionContext(ctx, name, NewLoopData(systemPrompt, prompt), depth)
	if execCtx.Parent() == nil {
		execCtx.SetLimits(r.limits)
	}
	r.executor.Execute(execCtx)
	return execCtx, nil
}

// Run runs prompt as a root invocation and returns the final answer.
func (r *Runner) Run(ctx context.Context, prompt string) (string, error) {
	return r.RunAt(ctx, prompt, 0)
}

// RunAt runs prompt at an explicit delegation depth and returns the final answer.
//
// The error wraps [reloop.ErrTurnLimitExceeded] or [reloop.ErrMaxDelegationDepthExceeded]
// when a limit ended the invocation, and [reloop.ErrBackend] when generation failed.
func (r *Runner) RunAt(ctx context.Context, prompt string, depth int) (string, error) {
	execCtx, err := r.Execute(ctx, prompt, depth)
	if err != nil {
		return "", err
	}
	return execCtx.Result(), execCtx.Error()
}
