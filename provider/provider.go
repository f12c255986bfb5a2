package provider

import (
	"context"
	"errors"

	"github.com/workforce-tools/tasq/config"
	ollama_provider "github.com/workforce-tools/tasq/provider/ollama"
)

// Client represents the supported resolver backends
type Client string

const (
	Ollama Client = "ollama"
)

// Resolver is the optional freeform query generator consulted when no
// registry phrase matches. Implementations return a candidate SQL string;
// callers validate it before use.
type Resolver interface {
	Resolve(ctx context.Context, utterance string, contextText string) (string, error)
}

// NewResolver creates a resolver client from configuration. A disabled config
// yields (nil, nil): the interpreter treats a nil resolver as a valid state.
func NewResolver(client Client, cfg config.ResolverConfig) (Resolver, error) {
	if !cfg.Enabled {
		return nil, nil
	}
	switch client {
	case Ollama:
		return ollama_provider.NewClient(cfg.BaseURL, cfg.Model, cfg.Temperature, cfg.Timeout), nil
	default:
		return nil, errors.New("unsupported resolver backend")
	}
}
