package gitsleuth

import (
	"time"

	"go.uber.org/zap"

	"github.com/canopus-dev/gitsleuth/internal/config"
	searchuc "github.com/canopus-dev/gitsleuth/internal/usecase/search"
)

type clientConfig struct {
	org           string
	githubToken   string
	apiKey        string
	llm           config.LLMConfig
	limits        searchuc.Limits
	searchTimeout time.Duration
	logger        *zap.Logger
}

// Option configures the Client.
type Option func(*clientConfig)

// WithOrg sets the organization scope for every search.
func WithOrg(org string) Option {
	return func(c *clientConfig) { c.org = org }
}

// WithGitHubToken sets the GitHub access token.
func WithGitHubToken(token string) Option {
	return func(c *clientConfig) { c.githubToken = token }
}

// WithAnthropicKey sets the Anthropic API key used by Ask.
func WithAnthropicKey(key string) Option {
	return func(c *clientConfig) { c.apiKey = key }
}

// WithOpenAI switches to an OpenAI-compatible provider. baseURL may be
// empty for api.openai.com.
func WithOpenAI(apiKey, baseURL string) Option {
	return func(c *clientConfig) {
		c.llm.Provider = "openai"
		c.llm.APIKey = apiKey
		c.llm.BaseURL = baseURL
	}
}

// WithModel overrides the provider's default model.
func WithModel(model string) Option {
	return func(c *clientConfig) { c.llm.Model = model }
}

// WithLimits overrides the per-category result caps.
func WithLimits(issues, pullRequests, code, commits int) Option {
	return func(c *clientConfig) {
		c.limits = searchuc.Limits{
			Issues:       issues,
			PullRequests: pullRequests,
			Code:         code,
			Commits:      commits,
		}
	}
}

// WithSearchTimeout bounds one aggregate search fan-out. Zero disables.
func WithSearchTimeout(d time.Duration) Option {
	return func(c *clientConfig) { c.searchTimeout = d }
}

// WithLogger sets the logger; the default is a no-op logger.
func WithLogger(l *zap.Logger) Option {
	return func(c *clientConfig) { c.logger = l }
}
