package llm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"go.uber.org/zap"

	"github.com/canopus-dev/gitsleuth/internal/config"
)

func TestOpenAIProvider_SendsConfiguredMaxTokens(t *testing.T) {
	var got struct {
		Model     string `json:"model"`
		MaxTokens int    `json:"max_tokens"`
	}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Errorf("decode request: %v", err)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"choices":[{"message":{"role":"assistant","content":"ok"}}]}`))
	}))
	defer srv.Close()

	p := newOpenAIProvider(config.LLMConfig{
		Provider:  "openai",
		Model:     "gpt-4o-mini",
		MaxTokens: 512,
		APIKey:    "test-key",
		BaseURL:   srv.URL,
	}, zap.NewNop())

	reply, err := p.Complete(context.Background(), CompletionRequest{
		System:  "system",
		Prompt:  "prompt",
		Purpose: "synthesis",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if reply != "ok" {
		t.Errorf("unexpected reply: %q", reply)
	}
	if got.MaxTokens != 512 {
		t.Errorf("expected max_tokens 512, got %d", got.MaxTokens)
	}
	if got.Model != "gpt-4o-mini" {
		t.Errorf("unexpected model: %q", got.Model)
	}
}
