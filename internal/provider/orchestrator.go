package provider

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"edu_tutor_backend/pkg/logger"
	"edu_tutor_backend/pkg/monitoring"

	"go.uber.org/zap"
)

// Orchestrator hides provider heterogeneity and transient failure from
// callers. It holds a ranked adapter registry, a single active adapter and a
// designated low-risk fallback. The registry is read-mostly after
// construction; SwitchProvider is the only mutation.
type Orchestrator struct {
	mu       sync.RWMutex
	adapters []Adapter
	byID     map[string]Adapter
	active   Adapter
	fallback Adapter
}

// NewOrchestrator builds an orchestrator over a ranked adapter list.
// The first adapter becomes active; fallbackID designates the fallback
// (defaults to the last adapter when empty).
func NewOrchestrator(adapters []Adapter, fallbackID string) (*Orchestrator, error) {
	if len(adapters) == 0 {
		return nil, fmt.Errorf("orchestrator requires at least one adapter")
	}

	o := &Orchestrator{
		adapters: adapters,
		byID:     make(map[string]Adapter, len(adapters)),
	}
	for _, a := range adapters {
		if _, dup := o.byID[a.ID()]; dup {
			return nil, fmt.Errorf("duplicate adapter id %q", a.ID())
		}
		o.byID[a.ID()] = a
	}

	o.active = adapters[0]
	o.fallback = adapters[len(adapters)-1]
	if fallbackID != "" {
		fb, ok := o.byID[fallbackID]
		if !ok {
			return nil, fmt.Errorf("fallback adapter %q not registered", fallbackID)
		}
		o.fallback = fb
	}

	return o, nil
}

// GenerateResponse calls the active adapter; on any failure except content
// filtering it retries exactly once against the fallback. The two calls are
// sequential, each under its own timeout. When both fail, the primary
// adapter's error is returned since it is the diagnostically useful one.
func (o *Orchestrator) GenerateResponse(ctx context.Context, prompt string, opts GenerationOptions) (*Result, error) {
	o.mu.RLock()
	active, fallback := o.active, o.fallback
	o.mu.RUnlock()

	start := time.Now()

	result, primaryErr := active.Generate(ctx, prompt, opts)
	if primaryErr == nil {
		result.LatencyMs = time.Since(start).Milliseconds()
		monitoring.ProviderLatency.WithLabelValues(result.Provider).Observe(time.Since(start).Seconds())
		return result, nil
	}

	// 内容策略失败直接上抛：换一个后端既没用，也可能绕过策略
	var filtered *ErrContentFiltered
	if errors.As(primaryErr, &filtered) {
		return nil, primaryErr
	}

	// 输入不合法与后端无关，回退也不会有结果
	var invalid *ErrInvalidInput
	if errors.As(primaryErr, &invalid) {
		return nil, primaryErr
	}

	if fallback.ID() == active.ID() {
		return nil, primaryErr
	}

	logger.Log.Warn("active provider failed, trying fallback",
		zap.String("active", active.ID()),
		zap.String("fallback", fallback.ID()),
		zap.Error(primaryErr))

	result, fallbackErr := fallback.Generate(ctx, prompt, opts)
	if fallbackErr != nil {
		// 保留主后端错误，根因对排障更有价值
		return nil, primaryErr
	}

	monitoring.ProviderFallbacks.Inc()
	result.UsedFallback = true
	result.LatencyMs = time.Since(start).Milliseconds()
	monitoring.ProviderLatency.WithLabelValues(result.Provider).Observe(time.Since(start).Seconds())
	return result, nil
}

// SwitchProvider sets the active adapter by id. Administrative operation,
// not part of the request hot path.
func (o *Orchestrator) SwitchProvider(id string) error {
	o.mu.Lock()
	defer o.mu.Unlock()

	a, ok := o.byID[id]
	if !ok {
		return fmt.Errorf("unknown provider %q", id)
	}
	o.active = a
	logger.Log.Info("active provider switched", zap.String("provider", id))
	return nil
}

// ActiveID returns the current active adapter's id.
func (o *Orchestrator) ActiveID() string {
	o.mu.RLock()
	defer o.mu.RUnlock()
	return o.active.ID()
}

// FallbackID returns the fallback adapter's id.
func (o *Orchestrator) FallbackID() string {
	o.mu.RLock()
	defer o.mu.RUnlock()
	return o.fallback.ID()
}

// OverallHealth aggregates adapter health; true when at least one adapter
// responds healthy.
type OverallHealth struct {
	Healthy   bool     `json:"healthy"`
	Active    string   `json:"active"`
	Providers []Health `json:"providers"`
}

func (o *Orchestrator) HealthCheck(ctx context.Context) OverallHealth {
	o.mu.RLock()
	adapters := o.adapters
	active := o.active.ID()
	o.mu.RUnlock()

	overall := OverallHealth{Active: active}
	for _, a := range adapters {
		h := a.HealthCheck(ctx)
		overall.Providers = append(overall.Providers, h)
		if h.Healthy {
			overall.Healthy = true
		}
	}
	return overall
}
