package provider

import (
	"fmt"

	"edu_tutor_backend/internal/config"
	"edu_tutor_backend/pkg/logger"

	"go.uber.org/zap"
)

// NewFromConfig builds the orchestrator from the ranked provider list in
// configuration. Adapters that fail to construct (e.g. missing API key) are
// skipped with a warning; a deterministic stub is always registered last so
// the engine keeps answering when every remote backend is down.
func NewFromConfig(cfg config.AIConfig) (*Orchestrator, error) {
	limits := Limits{
		MaxPromptLength:   cfg.MaxPromptLength,
		MaxResponseLength: cfg.MaxResponseLength,
	}

	var adapters []Adapter
	for i, pc := range cfg.Providers {
		a, err := buildAdapter(i, pc, limits)
		if err != nil {
			logger.Log.Warn("skipping unconstructible provider",
				zap.String("kind", pc.Kind),
				zap.Error(err))
			continue
		}
		adapters = append(adapters, a)
	}

	stubID := "stub"
	if _, taken := findID(adapters, stubID); !taken {
		adapters = append(adapters, NewStubAdapter(stubID))
	}

	return NewOrchestrator(adapters, stubID)
}

func buildAdapter(index int, pc config.ProviderConfig, limits Limits) (Adapter, error) {
	id := pc.Kind
	switch pc.Kind {
	case "openai":
		return NewOpenAIAdapter(id, pc.APIKey, pc.BaseURL, pc.Model, pc.TimeoutSeconds, limits)
	case "local":
		if pc.BaseURL == "" {
			return nil, fmt.Errorf("local provider requires base_url")
		}
		return NewOpenAIAdapter(id, pc.APIKey, pc.BaseURL, pc.Model, pc.TimeoutSeconds, limits)
	case "anthropic":
		return NewAnthropicAdapter(id, pc.APIKey, pc.Model, pc.TimeoutSeconds, limits)
	case "stub":
		return NewStubAdapter(id), nil
	default:
		return nil, fmt.Errorf("unknown provider kind %q (index %d)", pc.Kind, index)
	}
}

func findID(adapters []Adapter, id string) (Adapter, bool) {
	for _, a := range adapters {
		if a.ID() == id {
			return a, true
		}
	}
	return nil, false
}
