package models

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/rickchristie/reloop"
	"github.com/tmc/langchaingo/llms"
)

const (
	// DefaultLlamaCppURL is where a local llama.cpp server listens by default.
	DefaultLlamaCppURL = "http://127.0.0.1:8080"

	completionPath = "/completion"
)

// LlamaCpp is an llms.Model backed by the raw /completion endpoint of a llama.cpp server.
//
// Unlike chat endpoints, /completion continues the prompt verbatim, which is what a
// ChatML-rendered transcript needs. The text parts of all messages are concatenated into the
// prompt, so LlamaCpp is normally given a single human message holding the whole transcript:
//
//	llm := models.NewLlamaCpp(models.DefaultLlamaCppURL)
//	completer := models.NewLCGCompleter(llm)
//
// Failures are reported as *reloop.BackendError. A non-success status carries the response
// body verbatim as the error message.
type LlamaCpp struct {
	baseURL string
	client  *http.Client
}

// NewLlamaCpp creates a LlamaCpp model talking to the server at baseURL.
func NewLlamaCpp(baseURL string) *LlamaCpp {
	if baseURL == "" {
		baseURL = DefaultLlamaCppURL
	}
	return &LlamaCpp{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  http.DefaultClient,
	}
}

// WithHTTPClient sets the HTTP client used for requests.
func (m *LlamaCpp) WithHTTPClient(client *http.Client) *LlamaCpp {
	m.client = client
	return m
}

// BaseURL returns the server URL.
func (m *LlamaCpp) BaseURL() string {
	return m.baseURL
}

type completionRequest struct {
	Prompt      string   `json:"prompt"`
	Stop        []string `json:"stop,omitempty"`
	NPredict    int      `json:"n_predict,omitempty"`
	Temperature float64  `json:"temperature"`
	TopP        float64  `json:"top_p,omitempty"`
	TopK        int      `json:"top_k,omitempty"`
	Seed        int      `json:"seed,omitempty"`
}

type completionResponse struct {
	Content         string `json:"content"`
	StoppedEOS      bool   `json:"stopped_eos"`
	StoppedLimit    bool   `json:"stopped_limit"`
	StoppedWord     bool   `json:"stopped_word"`
	StoppingWord    string `json:"stopping_word"`
	TokensPredicted int    `json:"tokens_predicted"`
	TokensEvaluated int    `json:"tokens_evaluated"`
}

// Call implements llms.Model.
func (m *LlamaCpp) Call(ctx context.Context, prompt string, options ...llms.CallOption) (string, error) {
	return llms.GenerateFromSinglePrompt(ctx, m, prompt, options...)
}

// GenerateContent implements llms.Model. Supported options: stop words, max tokens,
// temperature, top_p, top_k, seed and a streaming func (called once with the full content).
func (m *LlamaCpp) GenerateContent(
	ctx context.Context,
	messages []llms.MessageContent,
	options ...llms.CallOption,
) (*llms.ContentResponse, error) {
	opts := llms.CallOptions{}
	for _, opt := range options {
		opt(&opts)
	}

	body, err := json.Marshal(completionRequest{
		Prompt:      flattenMessages(messages),
		Stop:        opts.StopWords,
		NPredict:    opts.MaxTokens,
		Temperature: opts.Temperature,
		TopP:        opts.TopP,
		TopK:        opts.TopK,
		Seed:        opts.Seed,
	})
	if err != nil {
		return nil, fmt.Errorf("marshal completion request: %w", err)
	}

	req, err := http.NewRequestWithContext(
		ctx, http.MethodPost, m.baseURL+completionPath, bytes.NewReader(body),
	)
	if err != nil {
		return nil, &reloop.BackendError{Err: err}
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := m.client.Do(req)
	if err != nil {
		return nil, &reloop.BackendError{Err: err}
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &reloop.BackendError{StatusCode: resp.StatusCode, Err: err}
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &reloop.BackendError{StatusCode: resp.StatusCode, Body: string(respBody)}
	}

	var completion completionResponse
	if err := json.Unmarshal(respBody, &completion); err != nil {
		return nil, &reloop.BackendError{
			StatusCode: resp.StatusCode,
			Err:        fmt.Errorf("decode completion response: %w", err),
		}
	}

	if opts.StreamingFunc != nil && completion.Content != "" {
		if err := opts.StreamingFunc(ctx, []byte(completion.Content)); err != nil {
			return nil, err
		}
	}

	return &llms.ContentResponse{
		Choices: []*llms.ContentChoice{{
			Content:    completion.Content,
			StopReason: completion.stopReason(),
			GenerationInfo: map[string]any{
				"PromptTokens":     completion.TokensEvaluated,
				"CompletionTokens": completion.TokensPredicted,
				"TotalTokens":      completion.TokensEvaluated + completion.TokensPredicted,
				"StoppingWord":     completion.StoppingWord,
			},
		}},
	}, nil
}

func (r completionResponse) stopReason() string {
	switch {
	case r.StoppedWord:
		return "stop_word"
	case r.StoppedLimit:
		return "length"
	case r.StoppedEOS:
		return "eos"
	default:
		return ""
	}
}

// flattenMessages concatenates the text parts of all messages.
func flattenMessages(messages []llms.MessageContent) string {
	var sb strings.Builder
	for i, msg := range messages {
		if i > 0 {
			sb.WriteString("\n")
		}
		for _, part := range msg.Parts {
			if text, ok := part.(llms.TextContent); ok {
				sb.WriteString(text.Text)
			}
		}
	}
	return sb.String()
}

// Compile-time check that LlamaCpp implements llms.Model.
var _ llms.Model = (*LlamaCpp)(nil)
