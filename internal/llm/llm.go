// Package llm defines the generation-provider capability consumed by the
// orchestrator. Concrete providers live under internal/integrations.
package llm

import (
	"context"

	"answer-gateway/internal/domain"
)

// Request is a free-text generation request.
type Request struct {
	System      string
	Messages    []domain.ChatMessage
	MaxTokens   int
	Temperature float64
}

// ObjectRequest asks for a single JSON object matching Schema.
type ObjectRequest struct {
	System      string
	Prompt      string
	SchemaName  string
	Schema      any
	Temperature float64
}

// TokenStream yields provider deltas in order. Recv returns io.EOF once the
// provider output is complete.
type TokenStream interface {
	Recv() (string, error)
	Close() error
}

// Generator is a configured generation backend.
type Generator interface {
	StreamText(ctx context.Context, req Request) (TokenStream, error)
	GenerateObject(ctx context.Context, req ObjectRequest) (string, error)
	Name() string
}
