package llm

import (
	"context"

	"github.com/canopus-dev/gitsleuth/internal/domain"
)

// Collaborator binds a Provider to the extraction and synthesis calls the
// chat usecase needs.
type Collaborator struct {
	provider Provider
}

// NewCollaborator wraps a provider.
func NewCollaborator(p Provider) *Collaborator {
	return &Collaborator{provider: p}
}

// ExtractKeywords implements the chat usecase's KeywordExtractor.
func (c *Collaborator) ExtractKeywords(ctx context.Context, question, apiKey string) ([]string, error) {
	return ExtractKeywords(ctx, c.provider, question, apiKey)
}

// Synthesize implements the chat usecase's Synthesizer.
func (c *Collaborator) Synthesize(
	ctx context.Context, question string, bundle domain.Bundle, systemPrompt, apiKey string,
) (string, error) {
	return Synthesize(ctx, c.provider, question, bundle, systemPrompt, apiKey)
}
