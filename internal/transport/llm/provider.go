// Package llm hosts the language model providers behind one completion
// contract, plus the keyword extraction and answer synthesis prompts built
// on top of it.
package llm

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/canopus-dev/gitsleuth/internal/config"
)

// CompletionRequest is one prompt → text call.
type CompletionRequest struct {
	// System is the system prompt, empty for none.
	System string

	// Prompt is the user turn.
	Prompt string

	// APIKey is the caller-supplied credential. The anthropic provider
	// requires it on every call; the openai provider ignores it in favor
	// of its configured key.
	APIKey string

	// Purpose labels the call in logs and metrics ("keywords", "synthesis").
	Purpose string
}

// Provider is a completion-capable language model.
type Provider interface {
	Complete(ctx context.Context, req CompletionRequest) (string, error)
}

// NewProvider selects a provider implementation by configured name.
func NewProvider(cfg config.LLMConfig, logger *zap.Logger) (Provider, error) {
	switch strings.ToLower(cfg.Provider) {
	case "anthropic":
		return newAnthropicProvider(cfg, logger), nil
	case "openai":
		return newOpenAIProvider(cfg, logger), nil
	default:
		return nil, fmt.Errorf("unsupported llm provider: %s", cfg.Provider)
	}
}
