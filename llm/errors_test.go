package llm

import (
	"errors"
	"testing"
)

func TestErrorFromStatusCode(t *testing.T) {
	tests := []struct {
		status    int
		retryable bool
	}{
		{400, false},
		{401, false},
		{403, false},
		{404, false},
		{413, false},
		{422, false},
		{429, true},
		{500, true},
		{502, true},
		{503, true},
		{504, true},
	}

	for _, tt := range tests {
		err := ErrorFromStatusCode(tt.status, "test error", "openai", nil)
		if IsRetryable(err) != tt.retryable {
			t.Errorf("status %d: expected retryable=%v", tt.status, tt.retryable)
		}
	}
}

func TestErrorFromStatusCodeRateLimit(t *testing.T) {
	after := 2.5
	err := ErrorFromStatusCode(429, "slow down", "anthropic", &after)
	rl, ok := err.(*RateLimitError)
	if !ok {
		t.Fatalf("expected RateLimitError, got %T", err)
	}
	if rl.RetryAfter == nil || *rl.RetryAfter != 2.5 {
		t.Errorf("expected retry-after 2.5, got %v", rl.RetryAfter)
	}
}

func TestIsRetryable(t *testing.T) {
	tests := []struct {
		name      string
		err       error
		retryable bool
	}{
		{"nil", nil, false},
		{"invalid request", &InvalidRequestError{}, false},
		{"abort", &AbortError{}, false},
		{"config error", &ConfigurationError{}, false},
		{"rate limit", &RateLimitError{TransportError: TransportError{Retryable: true}}, true},
		{"transport retryable", &TransportError{Retryable: true}, true},
		{"transport non-retryable", &TransportError{Retryable: false}, false},
		{"empty response", &EmptyResponseError{}, true},
		{"unknown error", errors.New("unknown"), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsRetryable(tt.err); got != tt.retryable {
				t.Errorf("expected %v, got %v", tt.retryable, got)
			}
		})
	}
}

func TestClientErrorUnwrap(t *testing.T) {
	cause := errors.New("root cause")
	err := &TransportError{ClientError: ClientError{Message: "call failed", Cause: cause}}
	if !errors.Is(err, cause) {
		t.Error("expected errors.Is to find the cause")
	}
}
