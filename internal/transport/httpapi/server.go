// Package httpapi exposes the chat and search services over JSON HTTP.
package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/canopus-dev/gitsleuth/internal/domain"
	chatuc "github.com/canopus-dev/gitsleuth/internal/usecase/chat"
)

// Client-facing error messages. The detail stays in server logs.
const (
	msgMessageRequired = "Message is required"
	msgAPIKeyRequired  = "API key is required. Please enter your Anthropic API key in settings."
	msgInvalidAPIKey   = "Invalid API key. Please check your Anthropic API key in settings."
	msgQueryRequired   = "Query is required"
	msgInternalError   = "An error occurred while processing your request"
	msgRepoListFailed  = "Failed to list repositories"
)

// Asker answers chat questions.
type Asker interface {
	Ask(ctx context.Context, req chatuc.AskRequest) (chatuc.AskResult, error)
}

// Searcher runs the aggregate search pass for a raw query.
type Searcher interface {
	Orchestrate(ctx context.Context, keywords []string) domain.Bundle
}

// RepoLister lists the organization's repositories.
type RepoLister interface {
	ListRepos(ctx context.Context) ([]domain.Repo, error)
}

// errorMapping binds a domain sentinel to a response.
type errorMapping struct {
	sentinel error
	status   int
	message  string
}

// Server is the HTTP API handler set.
type Server struct {
	chat         Asker
	search       Searcher
	repos        RepoLister
	org          string
	systemPrompt string
	logger       *zap.Logger
	mappings     []errorMapping
}

// NewServer creates the HTTP API server. systemPrompt is the default
// synthesis prompt served by GET /api/system-prompt.
func NewServer(chat Asker, search Searcher, repos RepoLister, org, systemPrompt string, log *zap.Logger) *Server {
	return &Server{
		chat:         chat,
		search:       search,
		repos:        repos,
		org:          org,
		systemPrompt: systemPrompt,
		logger:       log,
		mappings: []errorMapping{
			{domain.ErrMissingMessage, http.StatusBadRequest, msgMessageRequired},
			{domain.ErrMissingAPIKey, http.StatusBadRequest, msgAPIKeyRequired},
			{domain.ErrMissingQuery, http.StatusBadRequest, msgQueryRequired},
			{domain.ErrInvalidAPIKey, http.StatusUnauthorized, msgInvalidAPIKey},
		},
	}
}

// Register mounts all API routes on the router.
func (s *Server) Register(r chi.Router) {
	r.Post("/api/chat", s.handleChat)
	r.Get("/api/system-prompt", s.handleSystemPrompt)
	r.Get("/api/repos", s.handleRepos)
	r.Post("/api/search", s.handleSearch)
	r.Get("/api/health", s.handleHealth)
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())
}

type chatRequest struct {
	Message      string `json:"message"`
	APIKey       string `json:"apiKey"`
	SystemPrompt string `json:"systemPrompt,omitempty"`
}

type chatResponse struct {
	Response      string         `json:"response"`
	SearchSummary domain.Summary `json:"searchSummary"`
	Keywords      []string       `json:"keywords"`
}

func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	var req chatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, msgMessageRequired)
		return
	}

	res, err := s.chat.Ask(r.Context(), chatuc.AskRequest{
		Question:     req.Message,
		APIKey:       req.APIKey,
		SystemPrompt: req.SystemPrompt,
	})
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	keywords := res.Keywords
	if keywords == nil {
		keywords = []string{}
	}
	writeJSON(w, http.StatusOK, chatResponse{
		Response:      res.Answer,
		SearchSummary: res.Bundle.Summary(),
		Keywords:      keywords,
	})
}

func (s *Server) handleSystemPrompt(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"systemPrompt": s.systemPrompt})
}

type reposResponse struct {
	Repos []domain.Repo `json:"repos"`
	Org   string        `json:"org"`
}

func (s *Server) handleRepos(w http.ResponseWriter, r *http.Request) {
	repos, err := s.repos.ListRepos(r.Context())
	if err != nil {
		s.logger.Error("repo listing failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, msgRepoListFailed)
		return
	}
	if repos == nil {
		repos = []domain.Repo{}
	}
	writeJSON(w, http.StatusOK, reposResponse{Repos: repos, Org: s.org})
}

type searchRequest struct {
	Query string `json:"query"`
}

type searchResponse struct {
	Query   string         `json:"query"`
	Results domain.Bundle  `json:"results"`
	Summary domain.Summary `json:"summary"`
}

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	var req searchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, msgQueryRequired)
		return
	}
	if req.Query == "" {
		writeError(w, http.StatusBadRequest, msgQueryRequired)
		return
	}

	bundle := s.search.Orchestrate(r.Context(), []string{req.Query}).Normalized()
	writeJSON(w, http.StatusOK, searchResponse{
		Query:   req.Query,
		Results: bundle,
		Summary: bundle.Summary(),
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// respondError maps a usecase error onto a response: known sentinels get
// their user-facing message and status, everything else is a logged 500
// with a generic body.
func (s *Server) respondError(w http.ResponseWriter, r *http.Request, err error) {
	for _, m := range s.mappings {
		if errors.Is(err, m.sentinel) {
			writeError(w, m.status, m.message)
			return
		}
	}

	s.logger.Error("request failed", zap.String("path", r.URL.Path), zap.Error(err))
	writeError(w, http.StatusInternalServerError, msgInternalError)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
