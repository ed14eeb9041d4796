package provider

import (
	"context"
	"errors"
	"testing"

	"edu_tutor_backend/pkg/logger"

	"go.uber.org/zap"
)

func TestMain(m *testing.M) {
	logger.Log = zap.NewNop()
	m.Run()
}

func newTestOrchestrator(t *testing.T) (*Orchestrator, *StubAdapter, *StubAdapter) {
	t.Helper()
	primary := NewStubAdapter("primary")
	fallback := NewStubAdapter("fallback")
	o, err := NewOrchestrator([]Adapter{primary, fallback}, "fallback")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	return o, primary, fallback
}

func TestGenerateResponse_ActiveSucceeds(t *testing.T) {
	o, primary, fallback := newTestOrchestrator(t)
	primary.QueueText("guidance from primary")

	res, err := o.GenerateResponse(context.Background(), "help me", DefaultOptions())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Text != "guidance from primary" {
		t.Fatalf("unexpected text: %q", res.Text)
	}
	if res.UsedFallback {
		t.Fatal("fallback flag set on primary success")
	}
	if res.Provider != "primary" {
		t.Fatalf("expected provider primary, got %q", res.Provider)
	}
	if fallback.CallCount() != 0 {
		t.Fatalf("fallback called %d times", fallback.CallCount())
	}
}

func TestGenerateResponse_UnavailableFallsBack(t *testing.T) {
	o, primary, fallback := newTestOrchestrator(t)
	primary.QueueError(&ErrUnavailable{Err: errors.New("connection refused")})
	fallback.QueueText("guidance from fallback")

	res, err := o.GenerateResponse(context.Background(), "help me", DefaultOptions())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !res.UsedFallback {
		t.Fatal("expected UsedFallback to be true")
	}
	if res.Provider != "fallback" {
		t.Fatalf("expected provider fallback, got %q", res.Provider)
	}
}

func TestGenerateResponse_RateLimitedFallsBack(t *testing.T) {
	o, primary, fallback := newTestOrchestrator(t)
	primary.QueueError(&ErrRateLimited{Err: errors.New("429")})
	fallback.QueueText("ok")

	res, err := o.GenerateResponse(context.Background(), "help", DefaultOptions())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !res.UsedFallback {
		t.Fatal("expected fallback to serve rate-limited request")
	}
}

func TestGenerateResponse_ContentFilteredNeverFallsBack(t *testing.T) {
	o, primary, fallback := newTestOrchestrator(t)
	primary.QueueError(&ErrContentFiltered{Reason: "policy"})

	_, err := o.GenerateResponse(context.Background(), "something disallowed", DefaultOptions())
	if err == nil {
		t.Fatal("expected error")
	}
	var filtered *ErrContentFiltered
	if !errors.As(err, &filtered) {
		t.Fatalf("expected ErrContentFiltered, got %T", err)
	}
	if fallback.CallCount() != 0 {
		t.Fatalf("fallback must not be invoked on content filtering, got %d calls", fallback.CallCount())
	}
}

func TestGenerateResponse_BothFail_PrimaryErrorPropagates(t *testing.T) {
	o, primary, fallback := newTestOrchestrator(t)
	primaryErr := &ErrUnavailable{Err: errors.New("primary down")}
	primary.QueueError(primaryErr)
	fallback.QueueError(&ErrUnavailable{Err: errors.New("fallback down")})

	_, err := o.GenerateResponse(context.Background(), "help", DefaultOptions())
	if err == nil {
		t.Fatal("expected error")
	}
	var unavail *ErrUnavailable
	if !errors.As(err, &unavail) {
		t.Fatalf("expected ErrUnavailable, got %T", err)
	}
	if unavail.Err == nil || unavail.Err.Error() != "primary down" {
		t.Fatalf("expected primary error to propagate, got %v", err)
	}
}

func TestGenerateResponse_EmptyPromptRejectedBeforeNetwork(t *testing.T) {
	o, primary, fallback := newTestOrchestrator(t)

	_, err := o.GenerateResponse(context.Background(), "", DefaultOptions())
	if err == nil {
		t.Fatal("expected error for empty prompt")
	}
	var invalid *ErrInvalidInput
	if !errors.As(err, &invalid) {
		t.Fatalf("expected ErrInvalidInput, got %T", err)
	}
	// 输入错误不应触发回退
	if fallback.CallCount() != 0 {
		t.Fatalf("fallback called %d times for invalid input", fallback.CallCount())
	}
	_ = primary
}

func TestSwitchProvider(t *testing.T) {
	o, _, fallback := newTestOrchestrator(t)

	if err := o.SwitchProvider("fallback"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if o.ActiveID() != "fallback" {
		t.Fatalf("expected active fallback, got %q", o.ActiveID())
	}

	fallback.QueueText("served by new active")
	res, err := o.GenerateResponse(context.Background(), "x", DefaultOptions())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Provider != "fallback" || res.UsedFallback {
		t.Fatalf("expected direct serve by switched adapter, got %+v", res)
	}

	if err := o.SwitchProvider("nope"); err == nil {
		t.Fatal("expected error for unknown provider id")
	}
}

func TestHealthCheck_AggregatesOverAdapters(t *testing.T) {
	o, primary, _ := newTestOrchestrator(t)
	primary.SetDown(true)

	h := o.HealthCheck(context.Background())
	if !h.Healthy {
		t.Fatal("expected overall healthy while fallback is up")
	}
	if len(h.Providers) != 2 {
		t.Fatalf("expected 2 provider reports, got %d", len(h.Providers))
	}
}
