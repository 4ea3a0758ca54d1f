package resilience

import (
	"errors"
	"testing"
	"time"
)

func newTestBreaker(threshold, halfOpenMax int, openTimeout time.Duration) (*CircuitBreaker, *time.Time) {
	b := NewCircuitBreaker(CircuitBreakerConfig{
		Enabled:          true,
		FailureThreshold: threshold,
		OpenTimeout:      openTimeout,
		HalfOpenMaxReq:   halfOpenMax,
	})
	clock := time.Date(2026, 6, 11, 19, 0, 0, 0, time.UTC)
	b.now = func() time.Time { return clock }
	return b, &clock
}

func TestCircuitBreaker_TripsAtThreshold(t *testing.T) {
	b, _ := newTestBreaker(3, 1, 10*time.Second)

	b.RecordFailure()
	b.RecordFailure()
	if got := b.State(); got != CircuitStateClosed {
		t.Fatalf("state below threshold = %s, want closed", got)
	}
	if err := b.Allow(); err != nil {
		t.Fatalf("closed breaker rejected a request: %v", err)
	}

	b.RecordFailure()
	if got := b.State(); got != CircuitStateOpen {
		t.Fatalf("state at threshold = %s, want open", got)
	}
	if err := b.Allow(); !errors.Is(err, ErrCircuitOpen) {
		t.Fatalf("open breaker allowed a request: %v", err)
	}
}

func TestCircuitBreaker_SuccessResetsFailureStreak(t *testing.T) {
	b, _ := newTestBreaker(2, 1, 10*time.Second)

	b.RecordFailure()
	b.RecordSuccess()
	b.RecordFailure()
	if got := b.State(); got != CircuitStateClosed {
		t.Fatalf("non-consecutive failures tripped the breaker: %s", got)
	}
}

func TestCircuitBreaker_ProbeQuotaAndRecovery(t *testing.T) {
	b, clock := newTestBreaker(1, 2, 10*time.Second)

	b.RecordFailure()
	if err := b.Allow(); !errors.Is(err, ErrCircuitOpen) {
		t.Fatalf("expected rejection while open, got %v", err)
	}

	*clock = clock.Add(11 * time.Second)
	if got := b.State(); got != CircuitStateHalfOpen {
		t.Fatalf("state after open timeout = %s, want half_open", got)
	}

	// Two probe slots, then the quota is exhausted.
	if err := b.Allow(); err != nil {
		t.Fatalf("first probe rejected: %v", err)
	}
	if err := b.Allow(); err != nil {
		t.Fatalf("second probe rejected: %v", err)
	}
	if err := b.Allow(); !errors.Is(err, ErrCircuitOpen) {
		t.Fatalf("expected probe quota rejection, got %v", err)
	}

	b.RecordSuccess()
	b.RecordSuccess()
	if got := b.State(); got != CircuitStateClosed {
		t.Fatalf("state after successful probes = %s, want closed", got)
	}
	if err := b.Allow(); err != nil {
		t.Fatalf("recovered breaker rejected a request: %v", err)
	}
}

func TestCircuitBreaker_FailedProbeReopens(t *testing.T) {
	b, clock := newTestBreaker(1, 1, 10*time.Second)

	b.RecordFailure()
	*clock = clock.Add(11 * time.Second)
	if err := b.Allow(); err != nil {
		t.Fatalf("probe rejected: %v", err)
	}

	b.RecordFailure()
	if got := b.State(); got != CircuitStateOpen {
		t.Fatalf("state after failed probe = %s, want open", got)
	}
	if err := b.Allow(); !errors.Is(err, ErrCircuitOpen) {
		t.Fatalf("expected rejection after re-trip, got %v", err)
	}
}

func TestCircuitBreaker_ZeroConfigGetsDefaults(t *testing.T) {
	b := NewCircuitBreaker(CircuitBreakerConfig{})
	if b.cfg.FailureThreshold != 5 || b.cfg.OpenTimeout != 15*time.Second || b.cfg.HalfOpenMaxReq != 2 {
		t.Fatalf("unexpected defaults: %+v", b.cfg)
	}
}
