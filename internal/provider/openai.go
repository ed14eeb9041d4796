package provider

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	openai "github.com/sashabaranov/go-openai"
)

// OpenAIAdapter implements Adapter against any OpenAI-compatible chat
// completions API. It backs both the hosted "openai" provider kind and the
// "local" kind (self-hosted model endpoint reached through BaseURL).
type OpenAIAdapter struct {
	id      string
	client  *openai.Client
	model   string
	timeout time.Duration
	limits  Limits
}

// NewOpenAIAdapter creates an adapter for a hosted OpenAI-compatible API.
func NewOpenAIAdapter(id, apiKey, baseURL, model string, timeout time.Duration, limits Limits) (*OpenAIAdapter, error) {
	if apiKey == "" && baseURL == "" {
		return nil, fmt.Errorf("openai adapter: API key is required")
	}

	config := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		config.BaseURL = baseURL
	}

	return &OpenAIAdapter{
		id:      id,
		client:  openai.NewClientWithConfig(config),
		model:   model,
		timeout: timeout,
		limits:  limits,
	}, nil
}

func (a *OpenAIAdapter) ID() string { return a.id }

func (a *OpenAIAdapter) Generate(ctx context.Context, prompt string, opts GenerationOptions) (*Result, error) {
	if err := checkPrompt(prompt, a.limits); err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, a.timeout)
	defer cancel()

	start := time.Now()
	resp, err := a.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: a.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
		MaxTokens:   opts.MaxTokens,
		Temperature: float32(opts.Temperature),
		TopP:        float32(opts.TopP),
		Stop:        opts.StopSequences,
	})
	if err != nil {
		return nil, mapOpenAIError(err)
	}

	if len(resp.Choices) == 0 {
		return nil, &ErrMalformed{Err: fmt.Errorf("no choices in response")}
	}

	choice := resp.Choices[0]
	if choice.FinishReason == openai.FinishReasonContentFilter {
		return nil, &ErrContentFiltered{Reason: "backend flagged the completion"}
	}

	return &Result{
		Text:     sanitizeText(choice.Message.Content, a.limits.MaxResponseLength),
		Provider: a.id,
		Usage: Usage{
			InputTokens:  resp.Usage.PromptTokens,
			OutputTokens: resp.Usage.CompletionTokens,
			TotalTokens:  resp.Usage.TotalTokens,
		},
		FinishReason: mapOpenAIFinishReason(choice.FinishReason),
		LatencyMs:    time.Since(start).Milliseconds(),
	}, nil
}

func (a *OpenAIAdapter) HealthCheck(ctx context.Context) Health {
	ctx, cancel := context.WithTimeout(ctx, a.timeout)
	defer cancel()

	start := time.Now()
	_, err := a.client.ListModels(ctx)
	h := Health{
		Provider: a.id,
		Healthy:  err == nil,
		Latency:  time.Since(start),
	}
	h.LatencyMs = h.Latency.Milliseconds()
	if err != nil {
		h.Detail = err.Error()
	}
	return h
}

func mapOpenAIFinishReason(reason openai.FinishReason) string {
	switch reason {
	case openai.FinishReasonLength:
		return "max_tokens"
	case openai.FinishReasonContentFilter:
		return "filtered"
	default:
		return "end"
	}
}

func mapOpenAIError(err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return &ErrUnavailable{Err: err}
	}

	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		switch {
		case apiErr.HTTPStatusCode == http.StatusTooManyRequests:
			return &ErrRateLimited{Err: err}
		case apiErr.HTTPStatusCode >= 500:
			return &ErrUnavailable{Err: err}
		case apiErr.HTTPStatusCode == http.StatusBadRequest:
			return &ErrMalformed{Err: err}
		}
	}
	return &ErrUnavailable{Err: err}
}
