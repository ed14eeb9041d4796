package provider

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
)

// AnthropicAdapter implements Adapter using the Anthropic SDK.
type AnthropicAdapter struct {
	id      string
	client  *anthropic.Client
	model   string
	timeout time.Duration
	limits  Limits
}

// NewAnthropicAdapter creates an Anthropic-backed adapter.
func NewAnthropicAdapter(id, apiKey, model string, timeout time.Duration, limits Limits) (*AnthropicAdapter, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("anthropic adapter: API key is required")
	}

	client := anthropic.NewClient(option.WithAPIKey(apiKey))

	return &AnthropicAdapter{
		id:      id,
		client:  &client,
		model:   model,
		timeout: timeout,
		limits:  limits,
	}, nil
}

func (a *AnthropicAdapter) ID() string { return a.id }

func (a *AnthropicAdapter) Generate(ctx context.Context, prompt string, opts GenerationOptions) (*Result, error) {
	if err := checkPrompt(prompt, a.limits); err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, a.timeout)
	defer cancel()

	params := anthropic.MessageNewParams{
		Model:     anthropic.Model(a.model),
		MaxTokens: int64(opts.MaxTokens),
		Messages: []anthropic.MessageParam{
			{
				Role: anthropic.MessageParamRoleUser,
				Content: []anthropic.ContentBlockParamUnion{
					anthropic.NewTextBlock(prompt),
				},
			},
		},
	}
	if opts.Temperature > 0 {
		params.Temperature = anthropic.Float(opts.Temperature)
	}
	if opts.TopP > 0 && opts.TopP < 1 {
		params.TopP = anthropic.Float(opts.TopP)
	}
	if len(opts.StopSequences) > 0 {
		params.StopSequences = opts.StopSequences
	}

	start := time.Now()
	msg, err := a.client.Messages.New(ctx, params)
	if err != nil {
		return nil, mapAnthropicError(err)
	}

	return anthropicResult(msg, a.id, a.limits.MaxResponseLength, time.Since(start).Milliseconds())
}

// anthropicResult 解读一条回复。拒答常常不带任何文本块，
// 所以拒答判定必须先于空文本判定，否则会被当作畸形响应送进降级链路
func anthropicResult(msg *anthropic.Message, id string, maxResponseLength int, latencyMs int64) (*Result, error) {
	if msg.StopReason == "refusal" {
		return nil, &ErrContentFiltered{Reason: "backend refused the request"}
	}

	text := ""
	for _, block := range msg.Content {
		if block.Type == "text" {
			text = block.Text
			break
		}
	}
	if text == "" {
		return nil, &ErrMalformed{Err: fmt.Errorf("no text content in response")}
	}

	return &Result{
		Text:     sanitizeText(text, maxResponseLength),
		Provider: id,
		Usage: Usage{
			InputTokens:  int(msg.Usage.InputTokens),
			OutputTokens: int(msg.Usage.OutputTokens),
			TotalTokens:  int(msg.Usage.InputTokens + msg.Usage.OutputTokens),
		},
		FinishReason: mapAnthropicStopReason(msg.StopReason),
		LatencyMs:    latencyMs,
	}, nil
}

func (a *AnthropicAdapter) HealthCheck(ctx context.Context) Health {
	ctx, cancel := context.WithTimeout(ctx, a.timeout)
	defer cancel()

	// 最小成本探活请求
	start := time.Now()
	_, err := a.client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:     anthropic.Model(a.model),
		MaxTokens: 1,
		Messages: []anthropic.MessageParam{
			{
				Role: anthropic.MessageParamRoleUser,
				Content: []anthropic.ContentBlockParamUnion{
					anthropic.NewTextBlock("ping"),
				},
			},
		},
	})
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

func mapAnthropicStopReason(reason anthropic.StopReason) string {
	switch reason {
	case "max_tokens":
		return "max_tokens"
	case "refusal":
		return "filtered"
	default:
		return "end"
	}
}

func mapAnthropicError(err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return &ErrUnavailable{Err: err}
	}

	var apiErr *anthropic.Error
	if errors.As(err, &apiErr) {
		switch {
		case apiErr.StatusCode == http.StatusTooManyRequests:
			return &ErrRateLimited{Err: err}
		case apiErr.StatusCode >= 500:
			return &ErrUnavailable{Err: err}
		case apiErr.StatusCode == http.StatusBadRequest:
			return &ErrMalformed{Err: err}
		}
	}
	return &ErrUnavailable{Err: err}
}
