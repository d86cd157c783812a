package models

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/rickchristie/reloop"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tmc/langchaingo/llms"
)

func TestLlamaCpp_GenerateContent(t *testing.T) {
	var captured map[string]any

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/completion", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		body, err := io.ReadAll(r.Body)
		require.NoError(t, err)
		require.NoError(t, json.Unmarshal(body, &captured))

		_, _ = w.Write([]byte(`{
			"content": " Paris.",
			"stop": true,
			"stopped_word": true,
			"stopping_word": "<|im_end|>",
			"tokens_predicted": 3,
			"tokens_evaluated": 42
		}`))
	}))
	defer server.Close()

	llm := NewLlamaCpp(server.URL + "/")
	resp, err := llm.GenerateContent(
		context.Background(),
		[]llms.MessageContent{llms.TextParts(llms.ChatMessageTypeHuman, "<|im_start|>user\nQ<|im_end|>")},
		llms.WithStopWords([]string{"<|im_end|>"}),
		llms.WithMaxTokens(1024),
		llms.WithTemperature(0.8),
		llms.WithTopP(0.9),
	)
	require.NoError(t, err)

	assert.Equal(t, map[string]any{
		"prompt":      "<|im_start|>user\nQ<|im_end|>",
		"stop":        []any{"<|im_end|>"},
		"n_predict":   float64(1024),
		"temperature": 0.8,
		"top_p":       0.9,
	}, captured)

	require.Len(t, resp.Choices, 1)
	assert.Equal(t, " Paris.", resp.Choices[0].Content)
	assert.Equal(t, "stop_word", resp.Choices[0].StopReason)
	assert.Equal(t, 42, resp.Choices[0].GenerationInfo["PromptTokens"])
	assert.Equal(t, 3, resp.Choices[0].GenerationInfo["CompletionTokens"])
}

func TestLlamaCpp_Errors(t *testing.T) {
	type input struct {
		status int
		body   string
	}

	type expected struct {
		message string
		status  int
	}

	tests := []struct {
		name     string
		input    input
		expected expected
	}{
		{
			name:     "non-success status surfaces body verbatim",
			input:    input{status: http.StatusServiceUnavailable, body: `{"error":{"code":503,"message":"Loading model"}}`},
			expected: expected{message: `{"error":{"code":503,"message":"Loading model"}}`, status: 503},
		},
		{
			name:     "plain text body",
			input:    input{status: http.StatusBadRequest, body: "prompt too long"},
			expected: expected{message: "prompt too long", status: 400},
		},
		{
			name:     "invalid JSON on success",
			input:    input{status: http.StatusOK, body: "not json"},
			expected: expected{message: "decode completion response: invalid character 'o' in literal null (expecting 'u')", status: 200},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tc.input.status)
				_, _ = w.Write([]byte(tc.input.body))
			}))
			defer server.Close()

			_, err := NewLlamaCpp(server.URL).Call(context.Background(), "prompt")
			require.Error(t, err)
			assert.ErrorIs(t, err, reloop.ErrBackend)

			var backendErr *reloop.BackendError
			require.True(t, errors.As(err, &backendErr))
			assert.Equal(t, tc.expected.status, backendErr.StatusCode)
			assert.EqualError(t, err, tc.expected.message)
		})
	}
}

func TestLlamaCpp_Unreachable(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	url := server.URL
	server.Close()

	_, err := NewLlamaCpp(url).Call(context.Background(), "prompt")
	assert.ErrorIs(t, err, reloop.ErrBackend)
}

func TestLlamaCpp_StreamingFunc(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"content":"hello"}`))
	}))
	defer server.Close()

	var streamed []string
	out, err := NewLlamaCpp(server.URL).Call(context.Background(), "p",
		llms.WithStreamingFunc(func(_ context.Context, chunk []byte) error {
			streamed = append(streamed, string(chunk))
			return nil
		}),
	)
	require.NoError(t, err)
	assert.Equal(t, "hello", out)
	assert.Equal(t, []string{"hello"}, streamed)
}
