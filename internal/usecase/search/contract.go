package search

import (
	"context"

	"github.com/canopus-dev/gitsleuth/internal/domain"
)

// Searcher defines the category search contract. Implementations return an
// explicit error; mapping a failed category to an empty list is this
// package's job, not the client's.
type Searcher interface {
	SearchIssues(ctx context.Context, query string, limit int) ([]domain.Issue, error)
	SearchPullRequests(ctx context.Context, query string, limit int) ([]domain.Issue, error)
	SearchCode(ctx context.Context, query string, limit int) ([]domain.CodeFile, error)
	SearchCommits(ctx context.Context, query string, limit int) ([]domain.Commit, error)
}

// Limits caps results per category for one aggregate pass.
type Limits struct {
	Issues       int
	PullRequests int
	Code         int
	Commits      int
}

// DefaultLimits returns the per-category caps used when none are configured.
func DefaultLimits() Limits {
	return Limits{Issues: 20, PullRequests: 20, Code: 15, Commits: 10}
}
