package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"reflect"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/canopus-dev/gitsleuth/internal/domain"
	chatuc "github.com/canopus-dev/gitsleuth/internal/usecase/chat"
)

// --- Mocks ---

type mockAsker struct {
	result chatuc.AskResult
	err    error
	called bool
}

func (m *mockAsker) Ask(_ context.Context, req chatuc.AskRequest) (chatuc.AskResult, error) {
	m.called = true
	if strings.TrimSpace(req.Question) == "" {
		return chatuc.AskResult{}, domain.ErrMissingMessage
	}
	if req.APIKey == "" {
		return chatuc.AskResult{}, domain.ErrMissingAPIKey
	}
	return m.result, m.err
}

type mockSearcher struct {
	bundle domain.Bundle
	called bool
}

func (m *mockSearcher) Orchestrate(_ context.Context, _ []string) domain.Bundle {
	m.called = true
	return m.bundle
}

type mockRepoLister struct {
	repos []domain.Repo
	err   error
}

func (m *mockRepoLister) ListRepos(_ context.Context) ([]domain.Repo, error) {
	return m.repos, m.err
}

func newTestRouter(a *mockAsker, s *mockSearcher, rl *mockRepoLister) chi.Router {
	srv := NewServer(a, s, rl, "acme", "default prompt", zap.NewNop())
	r := chi.NewRouter()
	srv.Register(r)
	return r
}

func doJSON(t *testing.T, r chi.Router, method, path, body string) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()

	var reader *strings.Reader
	if body == "" {
		reader = strings.NewReader("")
	} else {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, req)

	var decoded map[string]any
	if rr.Body.Len() > 0 {
		if err := json.Unmarshal(rr.Body.Bytes(), &decoded); err != nil {
			t.Fatalf("response is not JSON: %v\n%s", err, rr.Body.String())
		}
	}
	return rr, decoded
}

// --- Tests ---

func TestChat_HappyPath(t *testing.T) {
	a := &mockAsker{result: chatuc.AskResult{
		Answer:   "the session store leaked",
		Keywords: []string{"session", "leak"},
		Bundle: domain.Bundle{
			Issues: []domain.Issue{{URL: "i1"}},
			Code:   []domain.CodeFile{{URL: "c1"}},
		},
	}}
	r := newTestRouter(a, &mockSearcher{}, &mockRepoLister{})

	rr, body := doJSON(t, r, "POST", "/api/chat",
		`{"message": "why does login fail?", "apiKey": "sk-ant"}`)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rr.Code, rr.Body.String())
	}
	if body["response"] != "the session store leaked" {
		t.Errorf("unexpected response field: %v", body["response"])
	}
	summary, ok := body["searchSummary"].(map[string]any)
	if !ok {
		t.Fatalf("missing searchSummary: %v", body)
	}
	if summary["issuesFound"] != float64(1) || summary["codeFilesFound"] != float64(1) {
		t.Errorf("unexpected summary: %v", summary)
	}
	if kw, _ := body["keywords"].([]any); len(kw) != 2 {
		t.Errorf("unexpected keywords: %v", body["keywords"])
	}
}

func TestChat_MissingMessage(t *testing.T) {
	r := newTestRouter(&mockAsker{}, &mockSearcher{}, &mockRepoLister{})

	rr, body := doJSON(t, r, "POST", "/api/chat", `{"apiKey": "sk-ant"}`)

	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rr.Code)
	}
	if body["error"] != msgMessageRequired {
		t.Errorf("unexpected error message: %v", body["error"])
	}
}

func TestChat_MissingAPIKey(t *testing.T) {
	s := &mockSearcher{}
	r := newTestRouter(&mockAsker{}, s, &mockRepoLister{})

	rr, body := doJSON(t, r, "POST", "/api/chat", `{"message": "hello"}`)

	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rr.Code)
	}
	want := "API key is required. Please enter your Anthropic API key in settings."
	if body["error"] != want {
		t.Errorf("unexpected error message:\ngot:  %v\nwant: %s", body["error"], want)
	}
	if s.called {
		t.Error("search must not run on validation failure")
	}
}

func TestChat_InvalidAPIKey(t *testing.T) {
	a := &mockAsker{err: domain.ErrInvalidAPIKey}
	r := newTestRouter(a, &mockSearcher{}, &mockRepoLister{})

	rr, body := doJSON(t, r, "POST", "/api/chat", `{"message": "q", "apiKey": "bad"}`)

	if rr.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rr.Code)
	}
	if body["error"] != msgInvalidAPIKey {
		t.Errorf("unexpected error message: %v", body["error"])
	}
}

func TestChat_UnexpectedErrorIsGeneric500(t *testing.T) {
	a := &mockAsker{err: errors.New("connection reset by peer to internal host 10.0.0.7")}
	r := newTestRouter(a, &mockSearcher{}, &mockRepoLister{})

	rr, body := doJSON(t, r, "POST", "/api/chat", `{"message": "q", "apiKey": "sk-ant"}`)

	if rr.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", rr.Code)
	}
	if body["error"] != msgInternalError {
		t.Errorf("unexpected error message: %v", body["error"])
	}
	if strings.Contains(rr.Body.String(), "10.0.0.7") {
		t.Error("internal detail leaked to the client")
	}
}

func TestChat_MalformedBody(t *testing.T) {
	r := newTestRouter(&mockAsker{}, &mockSearcher{}, &mockRepoLister{})

	rr, _ := doJSON(t, r, "POST", "/api/chat", `{not json`)

	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rr.Code)
	}
}

func TestSystemPrompt(t *testing.T) {
	r := newTestRouter(&mockAsker{}, &mockSearcher{}, &mockRepoLister{})

	rr, body := doJSON(t, r, "GET", "/api/system-prompt", "")

	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
	if body["systemPrompt"] != "default prompt" {
		t.Errorf("unexpected prompt: %v", body["systemPrompt"])
	}
}

func TestRepos_HappyPath(t *testing.T) {
	rl := &mockRepoLister{repos: []domain.Repo{
		{Name: "api", URL: "https://github.com/acme/api"},
		{Name: "web", URL: "https://github.com/acme/web"},
	}}
	r := newTestRouter(&mockAsker{}, &mockSearcher{}, rl)

	rr, body := doJSON(t, r, "GET", "/api/repos", "")

	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
	if body["org"] != "acme" {
		t.Errorf("unexpected org: %v", body["org"])
	}
	if repos, _ := body["repos"].([]any); len(repos) != 2 {
		t.Errorf("unexpected repos: %v", body["repos"])
	}
}

func TestRepos_Failure(t *testing.T) {
	rl := &mockRepoLister{err: errors.New("boom")}
	r := newTestRouter(&mockAsker{}, &mockSearcher{}, rl)

	rr, body := doJSON(t, r, "GET", "/api/repos", "")

	if rr.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", rr.Code)
	}
	if body["error"] != msgRepoListFailed {
		t.Errorf("unexpected error message: %v", body["error"])
	}
}

func TestSearch_HappyPath(t *testing.T) {
	fixtures := domain.Bundle{
		Issues:  []domain.Issue{{Title: "leak", URL: "i1"}},
		Code:    []domain.CodeFile{{Path: "p.go", URL: "c1"}},
		Commits: []domain.Commit{{SHA: "abc", URL: "m1"}},
	}
	s := &mockSearcher{bundle: fixtures}
	r := newTestRouter(&mockAsker{}, s, &mockRepoLister{})

	rr, body := doJSON(t, r, "POST", "/api/search", `{"query": "memory leak"}`)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
	if !s.called {
		t.Fatal("search service not invoked")
	}

	results, ok := body["results"].(map[string]any)
	if !ok {
		t.Fatalf("missing results: %v", body)
	}
	issues, _ := results["issues"].([]any)
	if len(issues) != 1 {
		t.Errorf("unexpected issues: %v", results["issues"])
	}

	// Empty categories must serialize as [] rather than null.
	prs, ok := results["pullRequests"].([]any)
	if !ok || len(prs) != 0 {
		t.Errorf("expected empty pullRequests array, got %v", results["pullRequests"])
	}

	summary, _ := body["summary"].(map[string]any)
	want := map[string]float64{
		"issuesFound": 1, "prsFound": 0, "codeFilesFound": 1, "commitsFound": 1,
	}
	got := map[string]float64{}
	for k := range want {
		if v, ok := summary[k].(float64); ok {
			got[k] = v
		}
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("unexpected summary:\ngot:  %v\nwant: %v", got, want)
	}
}

func TestSearch_NoResults(t *testing.T) {
	s := &mockSearcher{}
	r := newTestRouter(&mockAsker{}, s, &mockRepoLister{})

	rr, body := doJSON(t, r, "POST", "/api/search", `{"query": "nothing matches"}`)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
	results, ok := body["results"].(map[string]any)
	if !ok {
		t.Fatalf("missing results: %v", body)
	}
	for _, category := range []string{"issues", "pullRequests", "code", "commits"} {
		if _, ok := results[category].([]any); !ok {
			t.Errorf("category %s is not an array: %v", category, results[category])
		}
	}
}

func TestSearch_MissingQuery(t *testing.T) {
	s := &mockSearcher{}
	r := newTestRouter(&mockAsker{}, s, &mockRepoLister{})

	rr, body := doJSON(t, r, "POST", "/api/search", `{}`)

	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rr.Code)
	}
	if body["error"] != msgQueryRequired {
		t.Errorf("unexpected error message: %v", body["error"])
	}
	if s.called {
		t.Error("search must not run without a query")
	}
}

func TestHealth(t *testing.T) {
	r := newTestRouter(&mockAsker{}, &mockSearcher{}, &mockRepoLister{})

	rr, body := doJSON(t, r, "GET", "/api/health", "")

	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
	if body["status"] != "ok" {
		t.Errorf("unexpected health body: %v", body)
	}
}
