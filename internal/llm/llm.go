package llm

import (
	"context"
	"errors"
)

// Client abstracts LLM providers behind a single completion call.
type Client interface {
	Complete(ctx context.Context, req Request) (string, error)
}

// Request is one system + user prompt exchange.
type Request struct {
	System      string
	Prompt      string
	Temperature float64
	MaxTokens   int
	// JSON asks the provider for a JSON object response when it supports one.
	JSON bool
}

// ErrNotConfigured is returned by the placeholder client.
var ErrNotConfigured = errors.New("LLM provider not configured")

// PlaceholderClient is used when no provider key is configured.
type PlaceholderClient struct{}

// Complete returns ErrNotConfigured.
func (PlaceholderClient) Complete(ctx context.Context, req Request) (string, error) {
	return "", ErrNotConfigured
}
