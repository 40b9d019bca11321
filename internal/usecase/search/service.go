// Package search aggregates org-scoped GitHub search results across the
// four categories and across multiple keywords.
package search

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/canopus-dev/gitsleuth/internal/domain"
)

// Service fans queries out to the category searches and merges the results.
type Service struct {
	searcher Searcher
	limits   Limits
	timeout  time.Duration
	logger   *zap.Logger
}

// New creates a search service with default limits and no fan-out deadline.
func New(searcher Searcher, logger *zap.Logger) *Service {
	return &Service{
		searcher: searcher,
		limits:   DefaultLimits(),
		logger:   logger,
	}
}

// WithLimits overrides the per-category result caps.
func (s *Service) WithLimits(l Limits) *Service {
	if l.Issues > 0 {
		s.limits.Issues = l.Issues
	}
	if l.PullRequests > 0 {
		s.limits.PullRequests = l.PullRequests
	}
	if l.Code > 0 {
		s.limits.Code = l.Code
	}
	if l.Commits > 0 {
		s.limits.Commits = l.Commits
	}
	return s
}

// WithTimeout bounds one Aggregate fan-out. Zero means no deadline.
func (s *Service) WithTimeout(d time.Duration) *Service {
	s.timeout = d
	return s
}

// Aggregate runs all four category searches for one query concurrently and
// returns the combined bundle. A failed category degrades to an empty list
// after a warning log; one category's outage must not abort the others.
func (s *Service) Aggregate(ctx context.Context, query string) domain.Bundle {
	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	var (
		bundle domain.Bundle
		wg     sync.WaitGroup
	)

	// Each goroutine writes to its own bundle slot, so no locking is needed.
	wg.Add(4)
	go func() {
		defer wg.Done()
		bundle.Issues = failSoft(s.logger, "issues", query, func() ([]domain.Issue, error) {
			return s.searcher.SearchIssues(ctx, query, s.limits.Issues)
		})
	}()
	go func() {
		defer wg.Done()
		bundle.PullRequests = failSoft(s.logger, "pull_requests", query, func() ([]domain.Issue, error) {
			return s.searcher.SearchPullRequests(ctx, query, s.limits.PullRequests)
		})
	}()
	go func() {
		defer wg.Done()
		bundle.Code = failSoft(s.logger, "code", query, func() ([]domain.CodeFile, error) {
			return s.searcher.SearchCode(ctx, query, s.limits.Code)
		})
	}()
	go func() {
		defer wg.Done()
		bundle.Commits = failSoft(s.logger, "commits", query, func() ([]domain.Commit, error) {
			return s.searcher.SearchCommits(ctx, query, s.limits.Commits)
		})
	}()
	wg.Wait()

	return bundle
}

// failSoft applies the fail-soft policy to one category search.
func failSoft[T any](logger *zap.Logger, name, query string, call func() ([]T, error)) []T {
	results, err := call()
	if err != nil {
		logger.Warn("category search failed, degrading to empty",
			zap.String("category", name),
			zap.String("query", query),
			zap.Error(err),
		)
		return nil
	}
	return results
}

// Orchestrate aggregates each keyword in turn, concatenates the category
// lists, and deduplicates each category by record link. Keywords run
// sequentially: they are few, and sequential accumulation keeps the
// first-seen dedupe order deterministic.
func (s *Service) Orchestrate(ctx context.Context, keywords []string) domain.Bundle {
	var merged domain.Bundle
	if len(keywords) == 0 {
		return merged
	}

	for _, kw := range keywords {
		b := s.Aggregate(ctx, kw)
		merged.Issues = append(merged.Issues, b.Issues...)
		merged.PullRequests = append(merged.PullRequests, b.PullRequests...)
		merged.Code = append(merged.Code, b.Code...)
		merged.Commits = append(merged.Commits, b.Commits...)
	}

	merged.Issues = Dedupe(merged.Issues)
	merged.PullRequests = Dedupe(merged.PullRequests)
	merged.Code = Dedupe(merged.Code)
	merged.Commits = Dedupe(merged.Commits)

	return merged
}
