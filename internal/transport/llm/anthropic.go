package llm

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/liushuangls/go-anthropic/v2"
	"go.uber.org/zap"

	"github.com/canopus-dev/gitsleuth/internal/config"
	"github.com/canopus-dev/gitsleuth/internal/domain"
	"github.com/canopus-dev/gitsleuth/internal/metrics"
)

// anthropicProvider completes prompts via the Anthropic Messages API. The
// credential arrives per request, so a fresh SDK client is built per call;
// the SDK client is a thin wrapper and carries no connection state worth
// pooling.
type anthropicProvider struct {
	model     string
	maxTokens int
	timeout   time.Duration
	baseURL   string
	logger    *zap.Logger
}

func newAnthropicProvider(cfg config.LLMConfig, logger *zap.Logger) *anthropicProvider {
	return &anthropicProvider{
		model:     cfg.Model,
		maxTokens: cfg.MaxTokens,
		timeout:   time.Duration(cfg.Timeout()) * time.Second,
		baseURL:   cfg.BaseURL,
		logger:    logger,
	}
}

func (p *anthropicProvider) Complete(ctx context.Context, req CompletionRequest) (string, error) {
	if req.APIKey == "" {
		return "", domain.ErrMissingAPIKey
	}

	if p.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.timeout)
		defer cancel()
	}

	var opts []anthropic.ClientOption
	if p.baseURL != "" {
		opts = append(opts, anthropic.WithBaseURL(p.baseURL))
	}
	client := anthropic.NewClient(req.APIKey, opts...)

	msgReq := anthropic.MessagesRequest{
		Model:     anthropic.Model(p.model),
		System:    req.System,
		MaxTokens: p.maxTokens,
		Messages: []anthropic.Message{
			anthropic.NewUserTextMessage(req.Prompt),
		},
	}

	start := time.Now()
	resp, err := client.CreateMessages(ctx, msgReq)
	duration := time.Since(start)

	if err != nil {
		metrics.LLMRequestsTotal.WithLabelValues("anthropic", p.model, req.Purpose, "error").Inc()
		return "", p.classify(err)
	}

	metrics.LLMRequestsTotal.WithLabelValues("anthropic", p.model, req.Purpose, "success").Inc()
	metrics.LLMRequestDuration.WithLabelValues("anthropic", p.model, req.Purpose).Observe(duration.Seconds())

	text := resp.GetFirstContentText()
	if text == "" {
		return "", fmt.Errorf("anthropic: %w", domain.ErrEmptyCompletion)
	}

	p.logger.Debug("anthropic completion",
		zap.String("purpose", req.Purpose),
		zap.Duration("duration", duration),
		zap.Int("input_tokens", resp.Usage.InputTokens),
		zap.Int("output_tokens", resp.Usage.OutputTokens),
	)
	return text, nil
}

// classify maps API failures onto the domain error taxonomy. Credential
// rejections become ErrInvalidAPIKey so the HTTP layer can answer 401;
// everything else wraps ErrLLMUnavailable.
func (p *anthropicProvider) classify(err error) error {
	var apiErr *anthropic.APIError
	if errors.As(err, &apiErr) {
		if apiErr.IsAuthenticationErr() || apiErr.IsPermissionErr() {
			return fmt.Errorf("anthropic: %s: %w", apiErr.Message, domain.ErrInvalidAPIKey)
		}
		return fmt.Errorf("anthropic: %s error: %s: %w", apiErr.Type, apiErr.Message, domain.ErrLLMUnavailable)
	}

	var reqErr *anthropic.RequestError
	if errors.As(err, &reqErr) {
		if reqErr.StatusCode == 401 || reqErr.StatusCode == 403 {
			return fmt.Errorf("anthropic: status %d: %w", reqErr.StatusCode, domain.ErrInvalidAPIKey)
		}
		return fmt.Errorf("anthropic: status %d: %w", reqErr.StatusCode, domain.ErrLLMUnavailable)
	}

	return fmt.Errorf("anthropic: %w: %w", err, domain.ErrLLMUnavailable)
}
