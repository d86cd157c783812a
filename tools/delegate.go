package tools

import (
	"context"
	"fmt"

	"github.com/rickchristie/reloop"
	"github.com/rickchristie/reloop/schema"
)

// TaskRunner runs a prompt through a full agent loop at the given delegation depth.
// hermes.Runner implements it.
type TaskRunner interface {
	RunAt(ctx context.Context, prompt string, depth int) (string, error)
}

// DelegationPrompt wraps a delegated task into the user message of the sub-task's
// conversation.
func DelegationPrompt(task string) string {
	return "Greetings!\n" +
		"You have been delegated the following task from another AI assistant.\n" +
		task + "\n" +
		"You are allowed to make a guess to accomplish this task if you don't have " +
		"appropriate functions to call.\n" +
		"Don't delegate this task any further unless you have a specific sub-task to delegate.\n"
}

// Delegate is the delegate_task tool. It hands a task to a fresh conversation one level
// deeper than the calling loop and returns the sub-task's final answer.
//
// The calling loop waits while the sub-task runs. Limit errors of the sub-task (turn limit,
// delegation depth) are returned as errors and become text in the parent conversation.
type Delegate struct {
	runner TaskRunner
}

type delegateInput struct {
	Task string `json:"task"`
}

// NewDelegate creates a delegate_task tool running sub-tasks through runner.
func NewDelegate(runner TaskRunner) *Delegate {
	return &Delegate{runner: runner}
}

func (d *Delegate) Name() string {
	return "delegate_task"
}

func (d *Delegate) Description() string {
	return "Ask a more focused assistant to think about something and respond to you. " +
		"Use this when breaking tasks down to stay focused."
}

func (d *Delegate) ParameterSchema() map[string]any {
	return schema.Object(map[string]*schema.Property{
		"task": schema.String("The task you want performed. Be as verbose as you can and " +
			"include all relevant information.").MinLength(1),
	}, "task")
}

// Call runs the task at the depth of the calling loop plus one.
func (d *Delegate) Call(ctx context.Context, args map[string]any) (reloop.ToolResult, error) {
	input, err := reloop.DecodeArgs[delegateInput](args)
	if err != nil {
		return nil, err
	}

	depth := reloop.DepthFromContext(ctx) + 1
	answer, err := d.runner.RunAt(ctx, DelegationPrompt(input.Task), depth)
	if err != nil {
		return nil, fmt.Errorf("delegated task at depth %d: %w", depth, err)
	}
	return answer, nil
}

var _ reloop.Tool = (*Delegate)(nil)
