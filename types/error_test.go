package types

import (
	"errors"
	"fmt"
	"testing"
)

func TestErrorFormatting(t *testing.T) {
	e := NewError(ErrAgentNotFound, "agent not connected").WithAgentID("weather")
	if got := e.Error(); got != "[AGENT_NOT_FOUND] agent not connected" {
		t.Errorf("unexpected error string: %q", got)
	}

	cause := errors.New("dial tcp: connection refused")
	e = NewError(ErrHealthCheckFailed, "health check failed").WithCause(cause)
	if got := e.Error(); got != fmt.Sprintf("[HEALTH_CHECK_FAILED] health check failed: %v", cause) {
		t.Errorf("unexpected error string: %q", got)
	}
	if !errors.Is(e, cause) {
		t.Error("expected errors.Is to find the cause")
	}
}

func TestIsRetryable(t *testing.T) {
	if IsRetryable(errors.New("plain")) {
		t.Error("plain errors are not retryable")
	}
	e := NewError(ErrUpstreamError, "upstream 503").WithRetryable(true)
	if !IsRetryable(e) {
		t.Error("expected retryable")
	}
	wrapped := fmt.Errorf("invoke: %w", e)
	if !IsRetryable(wrapped) {
		t.Error("expected retryable through wrapping")
	}
}

func TestCodeOf(t *testing.T) {
	if CodeOf(errors.New("plain")) != ErrInternalError {
		t.Error("plain errors map to INTERNAL_ERROR")
	}
	if CodeOf(NewError(ErrNoSuitableAgent, "none")) != ErrNoSuitableAgent {
		t.Error("expected NO_SUITABLE_AGENT")
	}
}

func TestConnectionKindValid(t *testing.T) {
	for _, k := range []ConnectionKind{KindHTTPAPI, KindModule, KindFunction, KindInstance, KindWebSocket, KindGRPC} {
		if !k.Valid() {
			t.Errorf("%s should be valid", k)
		}
	}
	if ConnectionKind("carrier_pigeon").Valid() {
		t.Error("unknown kind should be invalid")
	}
}

func TestAgentConfigClone(t *testing.T) {
	cfg := AgentConfig{
		ID:       "a1",
		Keywords: []string{"weather"},
		Headers:  map[string]string{"X-Token": "abc"},
	}
	clone := cfg.Clone()
	clone.Keywords[0] = "mutated"
	clone.Headers["X-Token"] = "mutated"

	if cfg.Keywords[0] != "weather" || cfg.Headers["X-Token"] != "abc" {
		t.Error("clone must not share backing storage with the original")
	}
}
