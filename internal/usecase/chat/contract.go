package chat

import (
	"context"

	"github.com/canopus-dev/gitsleuth/internal/domain"
)

// KeywordExtractor turns a question into search keywords.
type KeywordExtractor interface {
	ExtractKeywords(ctx context.Context, question, apiKey string) ([]string, error)
}

// Synthesizer turns a question plus search results into a final answer.
type Synthesizer interface {
	Synthesize(ctx context.Context, question string, bundle domain.Bundle, systemPrompt, apiKey string) (string, error)
}

// Orchestrator runs the multi-keyword search pass.
type Orchestrator interface {
	Orchestrate(ctx context.Context, keywords []string) domain.Bundle
}
