package llm

import "context"

// ProviderAdapter is the interface every provider backend must implement.
// Adapters perform I/O and error classification only; they must be safe for
// concurrent use across independent runs.
type ProviderAdapter interface {
	// Name returns the provider identifier (e.g. "openai", "anthropic").
	Name() string

	// Complete sends a blocking request and returns the full response.
	Complete(ctx context.Context, req Request) (*Response, error)

	// Stream sends a request and returns a channel of stream events. The
	// channel is closed when the stream ends; cancelling ctx abandons the
	// call without further side effects.
	Stream(ctx context.Context, req Request) (<-chan StreamEvent, error)
}

// Closer is implemented by adapters that hold resources.
type Closer interface {
	Close() error
}
