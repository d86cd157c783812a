package models

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/tmc/langchaingo/llms/openai"
)

const (
	// GitHubModelsBaseURL is the base URL for the GitHub Models API.
	// The OpenAI-compatible chat completions endpoint is at
	// {baseURL}/chat/completions.
	GitHubModelsBaseURL = "https://models.github.ai/inference"
)

// ErrMissingToken is returned when a hosted backend is configured without an API token.
var ErrMissingToken = errors.New("api token is required")

// githubHeaderTransport wraps an http.RoundTripper and injects
// GitHub-specific headers into every request.
type githubHeaderTransport struct {
	base http.RoundTripper
}

func (t *githubHeaderTransport) Do(
	req *http.Request,
) (*http.Response, error) {
	req.Header.Set("X-GitHub-Api-Version", "2022-11-28")
	return t.base.RoundTrip(req)
}

// NewOpenAICompatible creates a completer backed by any OpenAI-compatible chat completions
// server (OpenAI, vLLM, Ollama, llama.cpp's /v1 endpoint...).
//
// The transcript is sent as one user message, so servers that apply their own chat template
// wrap it once more. Prefer [NewLlamaCpp] when talking to llama.cpp directly.
func NewOpenAICompatible(
	baseURL string,
	token string,
	model string,
	opts ...openai.Option,
) (*LCGCompleter, error) {
	baseOpts := []openai.Option{
		openai.WithModel(model),
	}
	if baseURL != "" {
		baseOpts = append(baseOpts, openai.WithBaseURL(baseURL))
	}
	if token != "" {
		baseOpts = append(baseOpts, openai.WithToken(token))
	} else {
		// langchaingo refuses to build a client without a token; local servers ignore it.
		baseOpts = append(baseOpts, openai.WithToken("unused"))
	}

	llm, err := openai.New(append(baseOpts, opts...)...)
	if err != nil {
		return nil, fmt.Errorf("failed to create OpenAI-compatible client: %w", err)
	}

	return NewLCGCompleter(llm).WithModelName(model), nil
}

// NewGitHubModels creates a completer backed by the GitHub Models API.
//
// The token must be a GitHub Personal Access Token (fine-grained) with the models:read
// permission. Model names use the publisher/model format, for example "openai/gpt-4.1".
func NewGitHubModels(
	model string,
	token string,
	opts ...openai.Option,
) (*LCGCompleter, error) {
	if token == "" {
		return nil, fmt.Errorf(
			"%w: create a fine-grained PAT with models:read "+
				"at https://github.com/settings/personal-access-tokens/new",
			ErrMissingToken,
		)
	}

	baseOpts := []openai.Option{
		openai.WithBaseURL(GitHubModelsBaseURL),
		openai.WithToken(token),
		openai.WithModel(model),
		openai.WithHTTPClient(&githubHeaderTransport{
			base: http.DefaultTransport,
		}),
	}

	// Caller options come after so they can override defaults.
	llm, err := openai.New(append(baseOpts, opts...)...)
	if err != nil {
		return nil, fmt.Errorf("failed to create GitHub Models client: %w", err)
	}

	return NewLCGCompleter(llm).WithModelName(model), nil
}
