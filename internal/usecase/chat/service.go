// Package chat composes the question → keywords → search → answer flow.
package chat

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/canopus-dev/gitsleuth/internal/domain"
)

// AskRequest is one chat question.
type AskRequest struct {
	Question     string
	APIKey       string
	SystemPrompt string // empty means the default synthesis prompt
}

// AskResult is the synthesized answer plus what produced it.
type AskResult struct {
	Answer   string
	Keywords []string
	Bundle   domain.Bundle
}

// Service answers questions grounded in org-scoped GitHub search results.
type Service struct {
	extractor KeywordExtractor
	search    Orchestrator
	synth     Synthesizer
	logger    *zap.Logger
}

// New creates a chat service.
func New(extractor KeywordExtractor, search Orchestrator, synth Synthesizer, logger *zap.Logger) *Service {
	return &Service{extractor: extractor, search: search, synth: synth, logger: logger}
}

// Ask validates the request, extracts keywords, runs the search pass, and
// synthesizes the answer. Extraction and synthesis failures propagate;
// search failures were already degraded to empty categories below.
func (s *Service) Ask(ctx context.Context, req AskRequest) (AskResult, error) {
	if strings.TrimSpace(req.Question) == "" {
		return AskResult{}, domain.ErrMissingMessage
	}
	if req.APIKey == "" {
		return AskResult{}, domain.ErrMissingAPIKey
	}

	keywords, err := s.extractor.ExtractKeywords(ctx, req.Question, req.APIKey)
	if err != nil {
		return AskResult{}, fmt.Errorf("keyword extraction: %w", err)
	}
	s.logger.Info("extracted keywords", zap.Strings("keywords", keywords))

	var bundle domain.Bundle
	if len(keywords) > 0 {
		bundle = s.search.Orchestrate(ctx, keywords)
		s.logger.Info("search pass complete",
			zap.Int("issues", len(bundle.Issues)),
			zap.Int("pull_requests", len(bundle.PullRequests)),
			zap.Int("code_files", len(bundle.Code)),
			zap.Int("commits", len(bundle.Commits)),
		)
	}

	answer, err := s.synth.Synthesize(ctx, req.Question, bundle, req.SystemPrompt, req.APIKey)
	if err != nil {
		return AskResult{}, fmt.Errorf("answer synthesis: %w", err)
	}

	return AskResult{Answer: answer, Keywords: keywords, Bundle: bundle}, nil
}
