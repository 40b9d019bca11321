// Package gitsleuth is the embedded SDK: it wires the GitHub search client,
// the LLM provider, and the usecase services in-process, without the HTTP
// surface.
package gitsleuth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/canopus-dev/gitsleuth/internal/config"
	"github.com/canopus-dev/gitsleuth/internal/domain"
	ghTransport "github.com/canopus-dev/gitsleuth/internal/transport/github"
	"github.com/canopus-dev/gitsleuth/internal/transport/llm"
	chatuc "github.com/canopus-dev/gitsleuth/internal/usecase/chat"
	searchuc "github.com/canopus-dev/gitsleuth/internal/usecase/search"
)

// Answer is the result of one Ask call.
type Answer struct {
	Text     string
	Keywords []string
	Results  domain.Bundle
	Summary  domain.Summary
}

// Client is the gitsleuth SDK entry point.
type Client struct {
	gh       *ghTransport.Client
	searcher *searchuc.Service
	chat     *chatuc.Service
	apiKey   string
}

// New creates a Client scoped to one GitHub organization.
func New(opts ...Option) (*Client, error) {
	cfg := &clientConfig{
		org:    config.DefaultOrg,
		limits: searchuc.DefaultLimits(),
		llm: config.LLMConfig{
			Provider: "anthropic",
		},
		searchTimeout: 30 * time.Second,
		logger:        zap.NewNop(),
	}
	for _, o := range opts {
		o(cfg)
	}

	if cfg.llm.Provider == "anthropic" && cfg.apiKey == "" {
		return nil, errors.New("gitsleuth: anthropic api key required (use WithAnthropicKey)")
	}

	llmCfg := cfg.llm
	llmCfg.ApplyDefaults()
	provider, err := llm.NewProvider(llmCfg, cfg.logger)
	if err != nil {
		return nil, fmt.Errorf("gitsleuth: create llm provider: %w", err)
	}
	collaborator := llm.NewCollaborator(provider)

	gh := ghTransport.NewClient(ghTransport.Config{
		Org:    cfg.org,
		Token:  cfg.githubToken,
		Logger: cfg.logger,
	})

	searcher := searchuc.New(gh, cfg.logger).
		WithLimits(cfg.limits).
		WithTimeout(cfg.searchTimeout)

	return &Client{
		gh:       gh,
		searcher: searcher,
		chat:     chatuc.New(collaborator, searcher, collaborator, cfg.logger),
		apiKey:   cfg.apiKey,
	}, nil
}

// Ask answers a natural-language question grounded in the organization's
// GitHub activity.
func (c *Client) Ask(ctx context.Context, question string) (Answer, error) {
	res, err := c.chat.Ask(ctx, chatuc.AskRequest{
		Question: question,
		APIKey:   c.apiKey,
	})
	if err != nil {
		return Answer{}, fmt.Errorf("gitsleuth: %w", err)
	}
	return Answer{
		Text:     res.Answer,
		Keywords: res.Keywords,
		Results:  res.Bundle,
		Summary:  res.Bundle.Summary(),
	}, nil
}

// Search runs the aggregate search pass for one query, bypassing keyword
// extraction and synthesis.
func (c *Client) Search(ctx context.Context, query string) domain.Bundle {
	return c.searcher.Orchestrate(ctx, []string{query})
}

// Repos lists the organization's repositories.
func (c *Client) Repos(ctx context.Context) ([]domain.Repo, error) {
	repos, err := c.gh.ListRepos(ctx)
	if err != nil {
		return nil, fmt.Errorf("gitsleuth: %w", err)
	}
	return repos, nil
}

// Org returns the configured organization scope.
func (c *Client) Org() string {
	return c.gh.Org()
}
