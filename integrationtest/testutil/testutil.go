// Package testutil provides shared infrastructure for the integration scenarios. They run
// against a live llama.cpp server and are skipped unless RELOOP_TEST_BACKEND_URL is set.
package testutil

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/rickchristie/reloop"
	"github.com/rickchristie/reloop/agents/hermes"
	"github.com/rickchristie/reloop/executor"
	"github.com/rickchristie/reloop/loggers"
	"github.com/rickchristie/reloop/models"
	"github.com/rickchristie/reloop/tools"
	"github.com/rickchristie/reloop/toolset"
	"go.uber.org/zap/zaptest"
)

// EnvBackendURL names the llama.cpp server the scenarios talk to.
const EnvBackendURL = "RELOOP_TEST_BACKEND_URL"

// RequireBackend returns the configured server URL, or skips the test.
func RequireBackend(t *testing.T) string {
	t.Helper()
	url := os.Getenv(EnvBackendURL)
	if url == "" {
		t.Skip(EnvBackendURL + " not set, skipping integration test")
	}
	return url
}

// ToolCallLog records every tool call of an invocation tree, prefixed with its depth.
type ToolCallLog struct {
	mu    sync.Mutex
	calls []string
}

func (l *ToolCallLog) OnBeforeToolCall(
	_ context.Context,
	execCtx *reloop.ExecutionContext,
	event reloop.BeforeToolCallEvent,
) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.calls = append(l.calls, fmt.Sprintf("[%d] %s", execCtx.Depth(), event.Call.Name))
}

// Calls returns the recorded calls, e.g. "[1] get_current_time".
func (l *ToolCallLog) Calls() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]string(nil), l.calls...)
}

// Fixture is a fully wired agent with every built-in tool.
type Fixture struct {
	Runner *hermes.Runner
	Tools  *ToolCallLog
}

// NewFixture wires an agent against the server at baseURL. Diagnostic logs go to t.Log at
// debug level, conversation dumps included.
func NewFixture(t *testing.T, baseURL string) *Fixture {
	t.Helper()

	llm := models.NewLlamaCpp(baseURL).WithHTTPClient(&http.Client{Timeout: 5 * time.Minute})
	agent := hermes.NewAgent(models.NewLCGCompleter(llm))

	calls := &ToolCallLog{}
	exec := executor.New(agent).
		RegisterHook(loggers.NewZapHook(zaptest.NewLogger(t))).
		RegisterHook(calls)
	runner := hermes.NewRunner(agent, exec).
		WithLimits(reloop.Limits{MaxTurns: 10, MaxDelegationDepth: 1})

	agent.WithToolSet(toolset.New().
		Register(tools.NewWikipedia()).
		Register(tools.NewClock()).
		Register(tools.NewDelegate(runner)))

	return &Fixture{Runner: runner, Tools: calls}
}

var _ reloop.BeforeToolCallHook = (*ToolCallLog)(nil)
