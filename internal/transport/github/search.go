package github

import (
	"context"
	"strings"
	"time"

	gh "github.com/google/go-github/v80/github"
	"go.uber.org/zap"

	"github.com/canopus-dev/gitsleuth/internal/domain"
	"github.com/canopus-dev/gitsleuth/internal/metrics"
)

// SearchIssues finds issues matching the query within the org scope.
func (c *Client) SearchIssues(ctx context.Context, query string, limit int) ([]domain.Issue, error) {
	return c.searchIssueLike(ctx, "issues", c.scoped(query+" is:issue"), limit)
}

// SearchPullRequests finds pull requests matching the query within the org
// scope. GitHub serves PRs through the issue search surface via is:pr.
func (c *Client) SearchPullRequests(ctx context.Context, query string, limit int) ([]domain.Issue, error) {
	return c.searchIssueLike(ctx, "pull_requests", c.scoped(query+" is:pr"), limit)
}

func (c *Client) searchIssueLike(
	ctx context.Context, category, query string, limit int,
) ([]domain.Issue, error) {
	opts := &gh.SearchOptions{ListOptions: gh.ListOptions{PerPage: limit}}

	result, err := throttled(ctx, c, category, func(ctx context.Context) (*gh.IssuesSearchResult, *gh.Response, error) {
		return c.gh.Search.Issues(ctx, query, opts)
	})
	if err != nil {
		return nil, c.wrapError(err, "search "+category)
	}

	items := result.Issues
	if len(items) > limit {
		items = items[:limit]
	}

	out := make([]domain.Issue, 0, len(items))
	for _, is := range items {
		out = append(out, domain.Issue{
			Number:     is.GetNumber(),
			Title:      is.GetTitle(),
			Body:       is.GetBody(),
			State:      is.GetState(),
			Author:     is.GetUser().GetLogin(),
			Repository: repoFromAPIURL(is.GetRepositoryURL()),
			CreatedAt:  is.GetCreatedAt().Time,
			URL:        is.GetHTMLURL(),
		})
	}
	metrics.SearchResultsTotal.WithLabelValues(category).Add(float64(len(out)))
	return out, nil
}

// SearchCode finds source files matching the query within the org scope.
func (c *Client) SearchCode(ctx context.Context, query string, limit int) ([]domain.CodeFile, error) {
	opts := &gh.SearchOptions{ListOptions: gh.ListOptions{PerPage: limit}}

	result, err := throttled(ctx, c, "code", func(ctx context.Context) (*gh.CodeSearchResult, *gh.Response, error) {
		return c.gh.Search.Code(ctx, c.scoped(query), opts)
	})
	if err != nil {
		return nil, c.wrapError(err, "search code")
	}

	items := result.CodeResults
	if len(items) > limit {
		items = items[:limit]
	}

	out := make([]domain.CodeFile, 0, len(items))
	for _, cr := range items {
		out = append(out, domain.CodeFile{
			Path:       cr.GetPath(),
			Repository: cr.GetRepository().GetFullName(),
			URL:        cr.GetHTMLURL(),
		})
	}
	metrics.SearchResultsTotal.WithLabelValues("code").Add(float64(len(out)))
	return out, nil
}

// SearchCommits finds commits matching the query within the org scope.
func (c *Client) SearchCommits(ctx context.Context, query string, limit int) ([]domain.Commit, error) {
	opts := &gh.SearchOptions{ListOptions: gh.ListOptions{PerPage: limit}}

	result, err := throttled(ctx, c, "commits", func(ctx context.Context) (*gh.CommitsSearchResult, *gh.Response, error) {
		return c.gh.Search.Commits(ctx, c.scoped(query), opts)
	})
	if err != nil {
		return nil, c.wrapError(err, "search commits")
	}

	items := result.Commits
	if len(items) > limit {
		items = items[:limit]
	}

	out := make([]domain.Commit, 0, len(items))
	for _, cr := range items {
		out = append(out, domain.Commit{
			SHA:        cr.GetSHA(),
			Message:    cr.GetCommit().GetMessage(),
			Author:     cr.GetCommit().GetAuthor().GetName(),
			Repository: cr.GetRepository().GetFullName(),
			AuthoredAt: cr.GetCommit().GetAuthor().GetDate().Time,
			URL:        cr.GetHTMLURL(),
		})
	}
	metrics.SearchResultsTotal.WithLabelValues("commits").Add(float64(len(out)))
	return out, nil
}

// throttled runs one search call behind the rate limiter, feeds the
// limiter from the response headers, and records request metrics.
func throttled[T any](
	ctx context.Context, c *Client, category string,
	call func(ctx context.Context) (T, *gh.Response, error),
) (T, error) {
	var zero T
	if remaining := c.rateLimiter.Remaining(); remaining <= MinBuffer {
		c.logger.Debug("search quota low, throttling",
			zap.String("category", category),
			zap.Int("remaining", remaining))
	}
	if err := c.rateLimiter.Wait(ctx); err != nil {
		metrics.SearchRequestsTotal.WithLabelValues(category, "error").Inc()
		return zero, err
	}

	start := time.Now()
	result, resp, err := call(ctx)
	if resp != nil {
		c.rateLimiter.UpdateFromResponse(resp.Response)
	}

	if err != nil {
		metrics.SearchRequestsTotal.WithLabelValues(category, "error").Inc()
		return zero, err
	}

	metrics.SearchRequestsTotal.WithLabelValues(category, "success").Inc()
	metrics.SearchRequestDuration.WithLabelValues(category).Observe(time.Since(start).Seconds())
	return result, nil
}

// repoFromAPIURL extracts "owner/name" from an API repository URL such as
// https://api.github.com/repos/owner/name.
func repoFromAPIURL(apiURL string) string {
	const marker = "/repos/"
	if i := strings.Index(apiURL, marker); i >= 0 {
		return apiURL[i+len(marker):]
	}
	return apiURL
}
