// Package extract calls the remote language model that mines vocabulary
// from subtitle text, and tolerantly parses what comes back.
package extract

import (
	"context"
	"fmt"

	"github.com/araroot/kotomine/internal/model"
)

// Provider defines the interface for LLM completion backends.
type Provider interface {
	// Name returns the provider name.
	Name() string

	// Complete sends the prompt and returns the raw model output.
	Complete(ctx context.Context, prompt string) (string, error)

	// IsAvailable checks if the provider is configured and reachable.
	IsAvailable(ctx context.Context) bool
}

// NewProvider builds a Provider from configuration.
func NewProvider(cfg model.ExtractionConfig) (Provider, error) {
	switch cfg.Provider {
	case "openai", "":
		return NewOpenAIProvider(cfg)
	default:
		return nil, fmt.Errorf("unknown extraction provider: %q", cfg.Provider)
	}
}
