package llm

import (
	"context"
	"errors"
	"fmt"
	"time"

	openai "github.com/sashabaranov/go-openai"
	"go.uber.org/zap"

	"github.com/canopus-dev/gitsleuth/internal/config"
	"github.com/canopus-dev/gitsleuth/internal/domain"
	"github.com/canopus-dev/gitsleuth/internal/metrics"
)

// openaiProvider completes prompts via any OpenAI-compatible endpoint
// (OpenAI itself, or a local server such as Ollama behind base_url). It
// uses the configured key, not the per-request one: local endpoints have
// no per-user credential to forward.
type openaiProvider struct {
	client    *openai.Client
	model     string
	maxTokens int
	timeout   time.Duration
	logger    *zap.Logger
}

func newOpenAIProvider(cfg config.LLMConfig, logger *zap.Logger) *openaiProvider {
	clientCfg := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientCfg.BaseURL = cfg.BaseURL
	}

	return &openaiProvider{
		client:    openai.NewClientWithConfig(clientCfg),
		model:     cfg.Model,
		maxTokens: cfg.MaxTokens,
		timeout:   time.Duration(cfg.Timeout()) * time.Second,
		logger:    logger,
	}
}

func (p *openaiProvider) Complete(ctx context.Context, req CompletionRequest) (string, error) {
	if p.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.timeout)
		defer cancel()
	}

	messages := make([]openai.ChatCompletionMessage, 0, 2)
	if req.System != "" {
		messages = append(messages, openai.ChatCompletionMessage{
			Role:    openai.ChatMessageRoleSystem,
			Content: req.System,
		})
	}
	messages = append(messages, openai.ChatCompletionMessage{
		Role:    openai.ChatMessageRoleUser,
		Content: req.Prompt,
	})

	start := time.Now()
	resp, err := p.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:     p.model,
		MaxTokens: p.maxTokens,
		Messages:  messages,
	})
	duration := time.Since(start)

	if err != nil {
		metrics.LLMRequestsTotal.WithLabelValues("openai", p.model, req.Purpose, "error").Inc()
		return "", classifyOpenAI(err)
	}

	metrics.LLMRequestsTotal.WithLabelValues("openai", p.model, req.Purpose, "success").Inc()
	metrics.LLMRequestDuration.WithLabelValues("openai", p.model, req.Purpose).Observe(duration.Seconds())

	if len(resp.Choices) == 0 || resp.Choices[0].Message.Content == "" {
		return "", fmt.Errorf("openai: %w", domain.ErrEmptyCompletion)
	}

	p.logger.Debug("openai completion",
		zap.String("purpose", req.Purpose),
		zap.Duration("duration", duration),
		zap.Int("total_tokens", resp.Usage.TotalTokens),
	)
	return resp.Choices[0].Message.Content, nil
}

func classifyOpenAI(err error) error {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		if apiErr.HTTPStatusCode == 401 || apiErr.HTTPStatusCode == 403 {
			return fmt.Errorf("openai: status %d: %w", apiErr.HTTPStatusCode, domain.ErrInvalidAPIKey)
		}
		return fmt.Errorf("openai: status %d: %w", apiErr.HTTPStatusCode, domain.ErrLLMUnavailable)
	}

	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		if reqErr.HTTPStatusCode == 401 || reqErr.HTTPStatusCode == 403 {
			return fmt.Errorf("openai: status %d: %w", reqErr.HTTPStatusCode, domain.ErrInvalidAPIKey)
		}
		return fmt.Errorf("openai: status %d: %w", reqErr.HTTPStatusCode, domain.ErrLLMUnavailable)
	}

	return fmt.Errorf("openai: %w: %w", err, domain.ErrLLMUnavailable)
}
