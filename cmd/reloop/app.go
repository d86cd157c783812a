package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/chzyer/readline"
	"github.com/rickchristie/reloop"
	"github.com/rickchristie/reloop/agents/hermes"
	"github.com/rickchristie/reloop/config"
	"github.com/rickchristie/reloop/executor"
	"github.com/rickchristie/reloop/hooks"
	"github.com/rickchristie/reloop/models"
	"github.com/rickchristie/reloop/tools"
	"github.com/rickchristie/reloop/toolset"
	"github.com/tmc/langchaingo/llms/openai"
)

// buildCompleter creates the completion backend selected by cfg.Backend.
func buildCompleter(cfg *config.Config) (reloop.Completer, error) {
	backend := cfg.Backend
	client := &http.Client{Timeout: backend.Timeout}

	switch backend.Kind {
	case config.BackendLlamaCpp:
		llm := models.NewLlamaCpp(backend.URL).WithHTTPClient(client)
		return models.NewLCGCompleter(llm).
			WithModelName(backend.Model).
			WithGenerationOptions(cfg.Generation), nil
	case config.BackendOpenAI:
		completer, err := models.NewOpenAICompatible(
			backend.URL, backend.APIKey, backend.Model, openai.WithHTTPClient(client))
		if err != nil {
			return nil, err
		}
		return completer.WithGenerationOptions(cfg.Generation), nil
	case config.BackendGitHub:
		completer, err := models.NewGitHubModels(backend.Model, backend.APIKey)
		if err != nil {
			return nil, err
		}
		return completer.WithGenerationOptions(cfg.Generation), nil
	default:
		return nil, fmt.Errorf("%w: unknown backend %q", config.ErrInvalidConfig, backend.Kind)
	}
}

// buildRunner wires the agent, its tools and the executor. The delegate_task tool calls back
// into the returned Runner.
func buildRunner(
	cfg *config.Config,
	completer reloop.Completer,
	registry *hooks.Registry,
) (*hermes.Runner, error) {
	policy, err := hermes.ParseMalformedCallPolicy(cfg.Agent.MalformedCallPolicy)
	if err != nil {
		return nil, err
	}

	agent := hermes.NewAgent(completer).
		WithLeadIn(cfg.Agent.LeadIn).
		WithMalformedCallPolicy(policy).
		WithBehaviorAndContext(cfg.Agent.Behavior)

	exec := executor.New(agent).WithHooks(registry)
	runner := hermes.NewRunner(agent, exec).WithLimits(cfg.Limits)

	agent.WithToolSet(toolset.New().
		Register(tools.NewWikipedia().WithEndpoint(cfg.Tools.WikipediaEndpoint)).
		Register(tools.NewClock().WithTimeProvider(agent.TimeProvider())).
		Register(tools.NewDelegate(runner)))

	return runner, nil
}

// answerer answers one prompt. *hermes.Runner implements it.
type answerer interface {
	Run(ctx context.Context, prompt string) (string, error)
}

type lineReader interface {
	Readline() (string, error)
}

// shell answers prompts one line at a time. Failures are printed and never end the session.
type shell struct {
	runner answerer
	out    io.Writer
	errOut io.Writer
}

// loop reads lines until EOF or an interrupt at the prompt. Each non-blank line is answered
// with a fresh conversation. SIGINT while an answer is being generated cancels that answer
// only.
func (s *shell) loop(ctx context.Context, rl lineReader) error {
	for {
		line, err := rl.Readline()
		if err != nil {
			if errors.Is(err, io.EOF) || errors.Is(err, readline.ErrInterrupt) {
				return nil
			}
			return fmt.Errorf("failed to read input: %w", err)
		}

		prompt := strings.TrimSpace(line)
		if prompt == "" {
			continue
		}

		turnCtx, cancel := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
		_ = s.answer(turnCtx, prompt)
		cancel()

		if ctx.Err() != nil {
			return nil
		}
	}
}

// answer prints the final answer to out, or the error to errOut.
func (s *shell) answer(ctx context.Context, prompt string) error {
	result, err := s.runner.Run(ctx, prompt)
	switch {
	case err == nil:
		fmt.Fprintln(s.out, result)
	case errors.Is(err, context.Canceled):
		fmt.Fprintln(s.errOut, "canceled")
	case errors.Is(err, reloop.ErrTurnLimitExceeded):
		fmt.Fprintf(s.errOut, "gave up: %v\n", err)
	default:
		fmt.Fprintf(s.errOut, "error: %v\n", err)
	}
	return err
}

var _ answerer = (*hermes.Runner)(nil)
