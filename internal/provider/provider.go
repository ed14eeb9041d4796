package provider

import (
	"context"
	"fmt"
	"time"
)

// Adapter is the core abstraction over one text-generation backend.
// Adapters are stateless beyond their static configuration.
type Adapter interface {
	// Generate sends a prompt to the backend and returns a normalized result.
	// Prompt validity is checked before any network call.
	Generate(ctx context.Context, prompt string, opts GenerationOptions) (*Result, error)

	// HealthCheck reports whether the backend is reachable.
	HealthCheck(ctx context.Context) Health

	// ID returns the adapter's stable identifier (e.g. "openai", "stub").
	ID() string
}

// GenerationOptions configures a single generation call.
// Construct through NewGenerationOptions so field ranges are validated once.
type GenerationOptions struct {
	Temperature   float64
	TopP          float64
	MaxTokens     int
	StopSequences []string
}

// NewGenerationOptions validates and builds GenerationOptions.
func NewGenerationOptions(temperature, topP float64, maxTokens int, stop []string) (GenerationOptions, error) {
	if temperature < 0 || temperature > 1 {
		return GenerationOptions{}, &ErrInvalidInput{Reason: fmt.Sprintf("temperature %v out of range [0,1]", temperature)}
	}
	if topP < 0 || topP > 1 {
		return GenerationOptions{}, &ErrInvalidInput{Reason: fmt.Sprintf("topP %v out of range [0,1]", topP)}
	}
	if maxTokens < 0 {
		return GenerationOptions{}, &ErrInvalidInput{Reason: "maxTokens must be non-negative"}
	}
	if maxTokens == 0 {
		maxTokens = 1024
	}
	return GenerationOptions{
		Temperature:   temperature,
		TopP:          topP,
		MaxTokens:     maxTokens,
		StopSequences: stop,
	}, nil
}

// DefaultOptions returns the options used when the caller has no preference.
func DefaultOptions() GenerationOptions {
	return GenerationOptions{Temperature: 0.7, TopP: 1.0, MaxTokens: 1024}
}

// Usage tracks token consumption for a single request.
type Usage struct {
	InputTokens  int `json:"inputTokens"`
	OutputTokens int `json:"outputTokens"`
	TotalTokens  int `json:"totalTokens"`
}

// Result is the normalized outcome of one generation call.
type Result struct {
	// Text is the sanitized generation output: control characters stripped,
	// truncated to the configured maximum response length.
	Text string `json:"text"`

	// Provider identifies the adapter that served the request.
	Provider string `json:"provider"`

	Usage Usage `json:"usage"`

	// FinishReason is normalized to: "end", "max_tokens", "filtered".
	FinishReason string `json:"finishReason"`

	// LatencyMs is the elapsed time of the call, including the one-shot
	// fallback when the orchestrator had to use it.
	LatencyMs int64 `json:"latencyMs"`

	// UsedFallback is set by the orchestrator when the fallback adapter
	// served the request.
	UsedFallback bool `json:"usedFallback"`
}

// Health is one adapter's health probe result.
type Health struct {
	Provider  string        `json:"provider"`
	Healthy   bool          `json:"healthy"`
	Latency   time.Duration `json:"-"`
	LatencyMs int64         `json:"latencyMs"`
	Detail    string        `json:"detail,omitempty"`
}

// Limits bounds prompt and response sizes for every adapter.
type Limits struct {
	MaxPromptLength   int
	MaxResponseLength int
}

// checkPrompt enforces the input constraint shared by all adapters.
func checkPrompt(prompt string, limits Limits) error {
	if prompt == "" {
		return &ErrInvalidInput{Reason: "prompt is empty"}
	}
	if limits.MaxPromptLength > 0 && len(prompt) > limits.MaxPromptLength {
		return &ErrInvalidInput{Reason: fmt.Sprintf("prompt length %d exceeds maximum %d", len(prompt), limits.MaxPromptLength)}
	}
	return nil
}
