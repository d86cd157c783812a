package reloop

import (
	"context"
	"time"
)

// Completer is the completion backend seen by the agent loop: it continues a flat prompt and
// returns the generated text.
//
// Generation parameters (stop sequences, token budget, sampling) are fixed by the
// implementation, see [GenerationOptions]. Implementations must return a [BackendError] when
// the service is unreachable or answers with a non-success status.
//
// Generated text is sampled with a non-zero temperature, so callers must treat it as
// untrusted and variable.
type Completer interface {
	Complete(ctx context.Context, prompt string) (*Completion, error)
}

// Completion is the result of a [Completer.Complete] call.
type Completion struct {
	// Text is the raw generated continuation.
	Text string

	// StopReason is the reason the backend stopped, when reported.
	StopReason string

	// Info contains generation metadata. May be nil.
	Info *GenerationInfo
}

// GenerationInfo contains metadata about a generation.
type GenerationInfo struct {
	// InputTokens is the number of prompt tokens evaluated.
	InputTokens int

	// OutputTokens is the number of tokens generated.
	OutputTokens int

	// Duration is how long the generation took.
	Duration time.Duration
}

// GenerationOptions are the fixed parameters sent with every completion request.
type GenerationOptions struct {
	// StopWords halt generation at a turn boundary so the backend does not keep
	// role-playing the next speaker.
	StopWords []string `yaml:"stop"`

	// MaxTokens bounds the number of generated tokens.
	MaxTokens int `yaml:"max_tokens"`

	Temperature float64 `yaml:"temperature"`
	TopP        float64 `yaml:"top_p"`
}

// DefaultStopWords are the stop sequences for ChatML-tuned models.
var DefaultStopWords = []string{"<|im_end|>", "Reference(s)", "<|im_end>", "<|im_continuation|>"}

// DefaultGenerationOptions returns the generation parameters used when none are configured.
func DefaultGenerationOptions() GenerationOptions {
	stop := make([]string, len(DefaultStopWords))
	copy(stop, DefaultStopWords)
	return GenerationOptions{
		StopWords:   stop,
		MaxTokens:   1024,
		Temperature: 0.8,
		TopP:        0.9,
	}
}
