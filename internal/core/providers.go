package core

import (
	"context"
	"io"
)

// CompletionClient talks to the language-model gateway.
// Implementations never retry.
type CompletionClient interface {
	Complete(ctx context.Context, messages []Message) (string, error)
	// Stream returns the raw server-sent-events body. The caller must close it.
	Stream(ctx context.Context, messages []Message) (io.ReadCloser, error)
	// Configured reports missing settings without contacting the gateway.
	Configured() error
}

type TokenCounter interface {
	Count(text string) int
}
