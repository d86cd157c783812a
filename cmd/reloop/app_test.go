package main

import (
	"bytes"
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/chzyer/readline"
	"github.com/rickchristie/reloop"
	"github.com/rickchristie/reloop/config"
	"github.com/rickchristie/reloop/hooks"
	"github.com/rickchristie/reloop/internal/tt"
	"github.com/rickchristie/reloop/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildCompleter(t *testing.T) {
	type expected struct {
		model string
		err   error
	}

	tests := []struct {
		name     string
		input    config.BackendConfig
		expected expected
	}{
		{
			name:     "llamacpp",
			input:    config.BackendConfig{Kind: config.BackendLlamaCpp, URL: "http://127.0.0.1:8080"},
			expected: expected{},
		},
		{
			name: "openai compatible",
			input: config.BackendConfig{
				Kind:  config.BackendOpenAI,
				URL:   "http://localhost:11434/v1",
				Model: "hermes-2-pro",
			},
			expected: expected{model: "hermes-2-pro"},
		},
		{
			name: "github models",
			input: config.BackendConfig{
				Kind:   config.BackendGitHub,
				Model:  "openai/gpt-4.1",
				APIKey: "ghp_test",
			},
			expected: expected{model: "openai/gpt-4.1"},
		},
		{
			name:     "github models without token",
			input:    config.BackendConfig{Kind: config.BackendGitHub, Model: "openai/gpt-4.1"},
			expected: expected{err: models.ErrMissingToken},
		},
		{
			name:     "unknown kind",
			input:    config.BackendConfig{Kind: "ollama"},
			expected: expected{err: config.ErrInvalidConfig},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			cfg := config.Default()
			cfg.Backend = tc.input
			cfg.Generation.MaxTokens = 64

			completer, err := buildCompleter(cfg)
			if tc.expected.err != nil {
				assert.ErrorIs(t, err, tc.expected.err)
				return
			}
			require.NoError(t, err)

			lcg, ok := completer.(*models.LCGCompleter)
			require.True(t, ok)
			assert.Equal(t, tc.expected.model, lcg.ModelName())
			assert.Equal(t, 64, lcg.GenerationOptions().MaxTokens)
		})
	}
}

func TestBuildRunner(t *testing.T) {
	completer := tt.NewMockCompleter().
		AddResponse("<tool_call>\n{\"arguments\": {}, \"name\": \"get_current_time\"}\n</tool_call>").
		AddResponse("It is late.")
	recorder := tt.NewEventRecorder()

	cfg := config.Default()
	cfg.Limits = reloop.Limits{MaxTurns: 4, MaxDelegationDepth: 1}

	runner, err := buildRunner(cfg, completer, hooks.NewRegistry().Register(recorder))
	require.NoError(t, err)
	assert.Equal(t, cfg.Limits, runner.Limits())

	answer, err := runner.Run(context.Background(), "What time is it?")
	require.NoError(t, err)
	assert.Equal(t, "It is late.", answer)
	assert.Equal(t, 2, completer.CallCount())

	first := completer.CapturedPrompts[0]
	assert.Contains(t, first, `"name":"search_wikipedia"`)
	assert.Contains(t, first, `"name":"get_current_time"`)
	assert.Contains(t, first, `"name":"delegate_task"`)
	assert.Contains(t, first, "<|im_start|>assistant\nOkay, ")
	assert.Contains(t, recorder.Events(), "[0] AfterToolCall(get_current_time)")
}

func TestBuildRunner_InvalidPolicy(t *testing.T) {
	cfg := config.Default()
	cfg.Agent.MalformedCallPolicy = "retry"

	_, err := buildRunner(cfg, tt.NewMockCompleter(), hooks.NewRegistry())
	assert.Error(t, err)
}

type scriptedLines struct {
	lines []string
	err   error
}

func (s *scriptedLines) Readline() (string, error) {
	if len(s.lines) == 0 {
		return "", s.err
	}
	line := s.lines[0]
	s.lines = s.lines[1:]
	return line, nil
}

type fakeAnswerer struct {
	answers map[string]string
	errs    map[string]error
	prompts []string
}

func (f *fakeAnswerer) Run(_ context.Context, prompt string) (string, error) {
	f.prompts = append(f.prompts, prompt)
	if err, ok := f.errs[prompt]; ok {
		return "", err
	}
	return f.answers[prompt], nil
}

func TestShell_Loop(t *testing.T) {
	type expected struct {
		prompts []string
		out     string
		errOut  string
		err     error
	}

	answerer := func() *fakeAnswerer {
		return &fakeAnswerer{
			answers: map[string]string{
				"hello":           "Hi there!",
				"what time is it": "Half past four.",
			},
			errs: map[string]error{
				"loop forever": reloop.ErrTurnLimitExceeded,
				"crash":        &reloop.BackendError{StatusCode: 500, Body: "model crashed"},
				"stop":         context.Canceled,
			},
		}
	}

	tests := []struct {
		name     string
		input    *scriptedLines
		expected expected
	}{
		{
			name:  "answers each line until EOF",
			input: &scriptedLines{lines: []string{"hello", "  ", "what time is it  "}, err: io.EOF},
			expected: expected{
				prompts: []string{"hello", "what time is it"},
				out:     "Hi there!\nHalf past four.\n",
			},
		},
		{
			name:  "failures are printed and the session continues",
			input: &scriptedLines{lines: []string{"loop forever", "crash", "stop", "hello"}, err: io.EOF},
			expected: expected{
				prompts: []string{"loop forever", "crash", "stop", "hello"},
				out:     "Hi there!\n",
				errOut:  "gave up: turn limit exceeded\nerror: model crashed\ncanceled\n",
			},
		},
		{
			name:     "interrupt at the prompt ends the session",
			input:    &scriptedLines{err: readline.ErrInterrupt},
			expected: expected{},
		},
		{
			name:     "read failure",
			input:    &scriptedLines{err: errors.New("tty gone")},
			expected: expected{err: errors.New("failed to read input: tty gone")},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			var out, errOut bytes.Buffer
			runner := answerer()
			sh := &shell{runner: runner, out: &out, errOut: &errOut}

			err := sh.loop(context.Background(), tc.input)
			if tc.expected.err != nil {
				assert.EqualError(t, err, tc.expected.err.Error())
			} else {
				assert.NoError(t, err)
			}
			assert.Equal(t, tc.expected.prompts, runner.prompts)
			assert.Equal(t, tc.expected.out, out.String())
			assert.Equal(t, tc.expected.errOut, errOut.String())
		})
	}
}

func TestShell_LoopStopsWhenContextDone(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	runner := &fakeAnswerer{answers: map[string]string{"first": "one"}}
	lines := &scriptedLines{lines: []string{"first", "second"}, err: io.EOF}

	var out bytes.Buffer
	sh := &shell{runner: runner, out: &out, errOut: io.Discard}
	cancel()

	require.NoError(t, sh.loop(ctx, lines))
	assert.Equal(t, []string{"first"}, runner.prompts)
}
