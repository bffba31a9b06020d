package ai

import (
	"fmt"
	"testing"
	"time"

	"cvdigest/internal/config"
	"cvdigest/internal/errors"
)

func testBreakerConfig(enabled bool) config.CircuitBreakerConfig {
	return config.CircuitBreakerConfig{
		Enabled:          enabled,
		MaxRequests:      3,
		Interval:         time.Minute,
		Timeout:          time.Minute,
		MinRequests:      3,
		FailureThreshold: 0.6,
	}
}

func testLogger(t *testing.T) *errors.Logger {
	t.Helper()
	logger, err := errors.New("error")
	if err != nil {
		t.Fatalf("failed to create logger: %v", err)
	}
	return logger
}

func TestCircuitBreakerDisabled(t *testing.T) {
	cb := NewAICircuitBreaker[string]("test", testBreakerConfig(false), testLogger(t))

	if cb != nil {
		t.Fatal("expected nil breaker when disabled")
	}

	// A nil breaker still executes the function directly
	result, err := cb.Execute(func() (string, error) {
		return "ok", nil
	})
	if err != nil {
		t.Fatalf("Execute() unexpected error: %v", err)
	}
	if result != "ok" {
		t.Errorf("Execute() = %q, want %q", result, "ok")
	}

	if !cb.IsHealthy() {
		t.Error("nil breaker should report healthy")
	}
	stats := cb.GetStats()
	if enabled, ok := stats["enabled"].(bool); !ok || enabled {
		t.Errorf("stats enabled = %v, want false", stats["enabled"])
	}
}

func TestCircuitBreakerPassesThroughSuccess(t *testing.T) {
	cb := NewAICircuitBreaker[int]("test", testBreakerConfig(true), testLogger(t))
	if cb == nil {
		t.Fatal("expected breaker when enabled")
	}

	result, err := cb.Execute(func() (int, error) {
		return 42, nil
	})
	if err != nil {
		t.Fatalf("Execute() unexpected error: %v", err)
	}
	if result != 42 {
		t.Errorf("Execute() = %d, want 42", result)
	}
	if !cb.IsHealthy() {
		t.Error("breaker should be healthy after success")
	}
}

func TestCircuitBreakerOpensAfterFailures(t *testing.T) {
	cb := NewAICircuitBreaker[int]("test", testBreakerConfig(true), testLogger(t))

	failing := func() (int, error) {
		return 0, fmt.Errorf("provider unavailable")
	}

	// Enough consecutive failures to cross MinRequests and FailureThreshold
	for i := 0; i < 5; i++ {
		_, _ = cb.Execute(failing)
	}

	if cb.IsHealthy() {
		t.Error("breaker should be open after repeated failures")
	}

	stats := cb.GetStats()
	if enabled, ok := stats["enabled"].(bool); !ok || !enabled {
		t.Errorf("stats enabled = %v, want true", stats["enabled"])
	}
	if stats["state"] == "closed" {
		t.Errorf("stats state = %v, want open", stats["state"])
	}
}

func TestCircuitBreakerStatsShape(t *testing.T) {
	cb := NewAICircuitBreaker[string]("stats-test", testBreakerConfig(true), testLogger(t))

	stats := cb.GetStats()
	for _, key := range []string{"name", "state", "counts", "enabled"} {
		if _, ok := stats[key]; !ok {
			t.Errorf("stats missing key %q", key)
		}
	}
	if stats["name"] != "stats-test" {
		t.Errorf("stats name = %v, want stats-test", stats["name"])
	}
}
