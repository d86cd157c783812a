package models

import (
	"context"
	"errors"
	"time"

	"github.com/rickchristie/reloop"
	"github.com/tmc/langchaingo/llms"
)

// LCGCompleter adapts any langchaingo llms.Model to reloop.Completer.
//
// The rendered transcript is sent as a single human message, with the fixed generation
// parameters passed as call options. Token usage is normalized across providers.
//
//	llm, _ := openai.New(openai.WithToken(apiKey))
//	completer := models.NewLCGCompleter(llm).WithModelName("gpt-4o-mini")
//
// Errors from the model are returned as *reloop.BackendError.
type LCGCompleter struct {
	model     llms.Model
	modelName string
	opts      reloop.GenerationOptions
}

// NewLCGCompleter creates an LCGCompleter using [reloop.DefaultGenerationOptions].
func NewLCGCompleter(model llms.Model) *LCGCompleter {
	return &LCGCompleter{
		model: model,
		opts:  reloop.DefaultGenerationOptions(),
	}
}

// WithModelName sets the model name reported by ModelName.
func (c *LCGCompleter) WithModelName(name string) *LCGCompleter {
	c.modelName = name
	return c
}

// WithGenerationOptions replaces the generation parameters.
func (c *LCGCompleter) WithGenerationOptions(opts reloop.GenerationOptions) *LCGCompleter {
	c.opts = opts
	return c
}

// ModelName returns the configured model name.
func (c *LCGCompleter) ModelName() string {
	return c.modelName
}

// GenerationOptions returns the generation parameters sent with every request.
func (c *LCGCompleter) GenerationOptions() reloop.GenerationOptions {
	return c.opts
}

// Unwrap returns the underlying llms.Model.
func (c *LCGCompleter) Unwrap() llms.Model {
	return c.model
}

func (c *LCGCompleter) callOptions() []llms.CallOption {
	opts := []llms.CallOption{
		llms.WithTemperature(c.opts.Temperature),
	}
	if len(c.opts.StopWords) > 0 {
		opts = append(opts, llms.WithStopWords(c.opts.StopWords))
	}
	if c.opts.MaxTokens > 0 {
		opts = append(opts, llms.WithMaxTokens(c.opts.MaxTokens))
	}
	if c.opts.TopP > 0 {
		opts = append(opts, llms.WithTopP(c.opts.TopP))
	}
	return opts
}

// Complete implements reloop.Completer.
func (c *LCGCompleter) Complete(ctx context.Context, prompt string) (*reloop.Completion, error) {
	messages := []llms.MessageContent{
		llms.TextParts(llms.ChatMessageTypeHuman, prompt),
	}

	startTime := time.Now()
	resp, err := c.model.GenerateContent(ctx, messages, c.callOptions()...)
	duration := time.Since(startTime)

	if err != nil {
		if errors.Is(err, reloop.ErrBackend) {
			return nil, err
		}
		return nil, &reloop.BackendError{Err: err}
	}
	if resp == nil || len(resp.Choices) == 0 {
		return nil, &reloop.BackendError{Err: errors.New("completion backend returned no choices")}
	}

	choice := resp.Choices[0]
	info := &reloop.GenerationInfo{Duration: duration}
	if choice.GenerationInfo != nil {
		info.InputTokens = extractInputTokens(choice.GenerationInfo)
		info.OutputTokens = extractOutputTokens(choice.GenerationInfo)
	}

	return &reloop.Completion{
		Text:       choice.Content,
		StopReason: choice.StopReason,
		Info:       info,
	}, nil
}

// extractInputTokens extracts input/prompt token count from GenerationInfo.
// Handles different key names used by different providers.
func extractInputTokens(info map[string]any) int {
	// OpenAI / Ollama / llama.cpp
	if v := getIntFromMap(info, "PromptTokens"); v > 0 {
		return v
	}
	// Anthropic
	if v := getIntFromMap(info, "InputTokens"); v > 0 {
		return v
	}
	// Google / Bedrock
	if v := getIntFromMap(info, "input_tokens"); v > 0 {
		return v
	}
	return 0
}

// extractOutputTokens extracts output/completion token count from GenerationInfo.
func extractOutputTokens(info map[string]any) int {
	// OpenAI / Ollama / llama.cpp
	if v := getIntFromMap(info, "CompletionTokens"); v > 0 {
		return v
	}
	// Anthropic
	if v := getIntFromMap(info, "OutputTokens"); v > 0 {
		return v
	}
	// Google / Bedrock
	if v := getIntFromMap(info, "output_tokens"); v > 0 {
		return v
	}
	return 0
}

// getIntFromMap extracts an int value from a map, handling various numeric types.
func getIntFromMap(m map[string]any, key string) int {
	v, ok := m[key]
	if !ok {
		return 0
	}
	switch n := v.(type) {
	case int:
		return n
	case int32:
		return int(n)
	case int64:
		return int(n)
	case float64:
		return int(n)
	case float32:
		return int(n)
	default:
		return 0
	}
}

// Compile-time check that LCGCompleter implements reloop.Completer.
var _ reloop.Completer = (*LCGCompleter)(nil)
