// Package config loads the reloop configuration from a YAML file and the environment.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/rickchristie/reloop"
	"github.com/rickchristie/reloop/agents/hermes"
	"github.com/rickchristie/reloop/log"
	"github.com/rickchristie/reloop/models"
	"github.com/rickchristie/reloop/tools"
	"github.com/rickchristie/reloop/transcript"
	"gopkg.in/yaml.v3"
)

// Backend kinds.
const (
	BackendLlamaCpp = "llamacpp"
	BackendOpenAI   = "openai"
	BackendGitHub   = "github"
)

// Environment variables that override the file.
const (
	EnvBackendURL = "RELOOP_BACKEND_URL"
	EnvBackend    = "RELOOP_BACKEND"
	EnvAPIKey     = "RELOOP_API_KEY"
	EnvModel      = "RELOOP_MODEL"
	EnvLogLevel   = "RELOOP_LOG_LEVEL"
)

// ErrInvalidConfig is wrapped by every error returned from [Config.Validate].
var ErrInvalidConfig = errors.New("invalid config")

// Config is the complete configuration of the reloop CLI.
//
// Example file:
//
//	backend:
//	  kind: llamacpp
//	  url: http://127.0.0.1:8080
//	generation:
//	  max_tokens: 512
//	limits:
//	  max_turns: 10
//	  max_delegation_depth: 2
//	log_level: debug
type Config struct {
	Backend    BackendConfig            `yaml:"backend"`
	Generation reloop.GenerationOptions `yaml:"generation"`
	Limits     reloop.Limits            `yaml:"limits"`
	Agent      AgentConfig              `yaml:"agent"`
	Tools      ToolsConfig              `yaml:"tools"`

	LogLevel string `yaml:"log_level"`

	// MetricsAddr is the listen address of the Prometheus /metrics endpoint.
	// Empty disables it.
	MetricsAddr string `yaml:"metrics_addr"`
}

// BackendConfig selects the completion backend.
type BackendConfig struct {
	// Kind is one of llamacpp, openai or github.
	Kind   string `yaml:"kind"`
	URL    string `yaml:"url"`
	APIKey string `yaml:"api_key"`
	Model  string `yaml:"model"`

	// Timeout bounds each completion request. Zero means no timeout.
	Timeout time.Duration `yaml:"timeout"`
}

type AgentConfig struct {
	// LeadIn primes every assistant turn.
	LeadIn string `yaml:"lead_in"`

	// MalformedCallPolicy is "feedback" or "fatal".
	MalformedCallPolicy string `yaml:"malformed_call_policy"`

	// Behavior is added to the system prompt.
	Behavior string `yaml:"behavior"`
}

type ToolsConfig struct {
	WikipediaEndpoint string `yaml:"wikipedia_endpoint"`
}

// Default returns the configuration used when nothing is configured: a local llama.cpp
// server with the generation parameters ChatML models are tuned for.
func Default() *Config {
	return &Config{
		Backend: BackendConfig{
			Kind: BackendLlamaCpp,
			URL:  models.DefaultLlamaCppURL,
		},
		Generation: reloop.DefaultGenerationOptions(),
		Limits:     reloop.DefaultLimits(),
		Agent: AgentConfig{
			LeadIn:              transcript.DefaultLeadIn,
			MalformedCallPolicy: string(hermes.MalformedCallFeedback),
		},
		Tools: ToolsConfig{
			WikipediaEndpoint: tools.DefaultWikipediaEndpoint,
		},
		LogLevel: log.LevelInfo,
	}
}

// Load reads the configuration: defaults, then the YAML file at path (skipped when path is
// empty), then environment overrides. The result is validated.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config: %w", err)
		}
		if err := cfg.decode(data); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", path, err)
		}
	}

	cfg.ApplyEnv(os.LookupEnv)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// decode overlays the YAML document onto c. Unknown keys are rejected.
func (c *Config) decode(data []byte) error {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(c); err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	return nil
}

// ApplyEnv applies the RELOOP_* environment overrides using lookup (usually os.LookupEnv).
func (c *Config) ApplyEnv(lookup func(string) (string, bool)) {
	if v, ok := lookup(EnvBackend); ok && v != "" {
		c.Backend.Kind = v
	}
	if v, ok := lookup(EnvBackendURL); ok && v != "" {
		c.Backend.URL = v
	}
	if v, ok := lookup(EnvAPIKey); ok && v != "" {
		c.Backend.APIKey = v
	}
	if v, ok := lookup(EnvModel); ok && v != "" {
		c.Backend.Model = v
	}
	if v, ok := lookup(EnvLogLevel); ok && v != "" {
		c.LogLevel = v
	}
}

// Validate checks the configuration. All problems are reported at once.
func (c *Config) Validate() error {
	var errs []error
	invalid := func(format string, args ...any) {
		errs = append(errs, fmt.Errorf("%w: "+format, append([]any{ErrInvalidConfig}, args...)...))
	}

	switch c.Backend.Kind {
	case BackendLlamaCpp:
		if c.Backend.URL == "" {
			invalid("backend.url is required for %s", c.Backend.Kind)
		}
	case BackendOpenAI:
		if c.Backend.Model == "" {
			invalid("backend.model is required for %s", c.Backend.Kind)
		}
	case BackendGitHub:
		if c.Backend.Model == "" {
			invalid("backend.model is required for %s", c.Backend.Kind)
		}
		if c.Backend.APIKey == "" {
			invalid("backend.api_key (or %s) is required for %s", EnvAPIKey, c.Backend.Kind)
		}
	default:
		invalid("backend.kind %q is not one of %s, %s, %s",
			c.Backend.Kind, BackendLlamaCpp, BackendOpenAI, BackendGitHub)
	}
	if c.Backend.Timeout < 0 {
		invalid("backend.timeout must not be negative")
	}

	if c.Generation.MaxTokens <= 0 {
		invalid("generation.max_tokens must be positive")
	}
	if c.Generation.Temperature < 0 {
		invalid("generation.temperature must not be negative")
	}
	if c.Generation.TopP <= 0 || c.Generation.TopP > 1 {
		invalid("generation.top_p must be in (0, 1]")
	}

	if _, err := hermes.ParseMalformedCallPolicy(c.Agent.MalformedCallPolicy); err != nil {
		invalid("agent.malformed_call_policy: %v", err)
	}
	if !log.ValidLevel(c.LogLevel) {
		invalid("log_level %q is not one of debug, info, warn, error", c.LogLevel)
	}

	return errors.Join(errs...)
}
