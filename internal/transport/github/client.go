// Package github is the search client for the GitHub REST API. Every query
// it dispatches is scoped to one organization.
package github

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	gh "github.com/google/go-github/v80/github"
	"go.uber.org/zap"
	"golang.org/x/oauth2"

	"github.com/canopus-dev/gitsleuth/internal/domain"
)

// DefaultTimeout is the HTTP request timeout for one API call.
const DefaultTimeout = 30 * time.Second

// Config holds GitHub client settings.
type Config struct {
	// Org is the organization scope. It is appended to every search query
	// as an org: qualifier and used for repository listing.
	Org string

	// Token is a personal access token or installation token. Empty means
	// unauthenticated access (60 req/hour, search 10 req/min).
	Token string

	Logger *zap.Logger
}

// Client wraps the go-github client with org scoping and search rate limiting.
type Client struct {
	gh          *gh.Client
	org         string
	rateLimiter *RateLimiter
	logger      *zap.Logger
}

// NewClient creates an org-scoped GitHub API client.
func NewClient(cfg Config) *Client {
	httpClient := &http.Client{Timeout: DefaultTimeout}
	if cfg.Token != "" {
		ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: cfg.Token})
		httpClient = oauth2.NewClient(context.Background(), ts)
		httpClient.Timeout = DefaultTimeout
	}

	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Client{
		gh:          gh.NewClient(httpClient),
		org:         cfg.Org,
		rateLimiter: NewRateLimiter(),
		logger:      logger,
	}
}

// Org returns the configured organization scope.
func (c *Client) Org() string { return c.org }

// scoped appends the org qualifier to a raw search query.
func (c *Client) scoped(query string) string {
	return fmt.Sprintf("%s org:%s", query, c.org)
}

// wrapError classifies a go-github error under domain.ErrSearchFailed so
// callers can degrade uniformly.
func (c *Client) wrapError(err error, operation string) error {
	if err == nil {
		return nil
	}

	var rateErr *gh.RateLimitError
	if errors.As(err, &rateErr) {
		return fmt.Errorf("%s: rate limited until %s: %w",
			operation, rateErr.Rate.Reset.Time.Format(time.RFC3339), domain.ErrSearchFailed)
	}

	var ghErr *gh.ErrorResponse
	if errors.As(err, &ghErr) && ghErr.Response != nil {
		return fmt.Errorf("%s: API error %d: %s: %w",
			operation, ghErr.Response.StatusCode, ghErr.Message, domain.ErrSearchFailed)
	}

	return fmt.Errorf("%s: %w: %w", operation, err, domain.ErrSearchFailed)
}
