package llm

import "fmt"

// ClientError is the base error type for all model client errors.
type ClientError struct {
	Message string
	Cause   error
}

func (e *ClientError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e *ClientError) Unwrap() error {
	return e.Cause
}

// TransportError represents a failed provider call: network failure, server
// error, or any condition where the request may not have been processed.
type TransportError struct {
	ClientError
	Provider   string
	StatusCode int
	Retryable  bool
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("[%s] %s (status=%d, retryable=%v)", e.Provider, e.Message, e.StatusCode, e.Retryable)
}

// RateLimitError indicates the provider rejected the call for quota reasons.
// RetryAfter, when set, is the provider-suggested delay in seconds.
type RateLimitError struct {
	TransportError
	RetryAfter *float64
}

// EmptyResponseError indicates the provider returned a malformed or empty
// completion. Retried up to the configured bound, then escalated.
type EmptyResponseError struct{ ClientError }

// InvalidRequestError indicates the request itself was rejected (bad model,
// oversized context). Never retried.
type InvalidRequestError struct {
	ClientError
	Provider   string
	StatusCode int
}

// AbortError indicates the caller cancelled the request.
type AbortError struct{ ClientError }

// ConfigurationError indicates the client was miswired (unknown provider,
// missing credentials). Never retried.
type ConfigurationError struct{ ClientError }

// ErrorFromStatusCode maps an HTTP status code to the appropriate error type.
func ErrorFromStatusCode(statusCode int, message, provider string, retryAfter *float64) error {
	switch statusCode {
	case 400, 401, 403, 404, 413, 422:
		return &InvalidRequestError{
			ClientError: ClientError{Message: message},
			Provider:    provider,
			StatusCode:  statusCode,
		}
	case 429:
		return &RateLimitError{
			TransportError: TransportError{
				ClientError: ClientError{Message: message},
				Provider:    provider,
				StatusCode:  statusCode,
				Retryable:   true,
			},
			RetryAfter: retryAfter,
		}
	default:
		// Timeouts, 5xx, and anything unclassified count as transport
		// failures and default to retryable.
		return &TransportError{
			ClientError: ClientError{Message: message},
			Provider:    provider,
			StatusCode:  statusCode,
			Retryable:   true,
		}
	}
}

// IsRetryable reports whether the error is safe to retry.
func IsRetryable(err error) bool {
	if err == nil {
		return false
	}
	switch e := err.(type) {
	case *RateLimitError:
		return true
	case *TransportError:
		return e.Retryable
	case *EmptyResponseError:
		return true
	case *InvalidRequestError:
		return false
	case *AbortError:
		return false
	case *ConfigurationError:
		return false
	default:
		// Unknown errors default to retryable.
		return true
	}
}
