package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/canopus-dev/gitsleuth/internal/config"
	logpkg "github.com/canopus-dev/gitsleuth/internal/logger"
	"github.com/canopus-dev/gitsleuth/internal/metrics"
	ghTransport "github.com/canopus-dev/gitsleuth/internal/transport/github"
	"github.com/canopus-dev/gitsleuth/internal/transport/httpapi"
	"github.com/canopus-dev/gitsleuth/internal/transport/llm"
	chatuc "github.com/canopus-dev/gitsleuth/internal/usecase/chat"
	searchuc "github.com/canopus-dev/gitsleuth/internal/usecase/search"
	"github.com/canopus-dev/gitsleuth/internal/version"
)

func main() {
	// Load configuration based on ENV
	env := config.GetEnv()

	cfg, err := config.Load(env)
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	logger, err := logpkg.NewLogger(env, cfg.Logging.Level)
	if err != nil {
		panic("failed to create logger: " + err.Error())
	}
	defer func() { _ = logger.Sync() }()

	logger.Info("Starting gitsleuth API server",
		zap.String("version", version.Version),
		zap.String("commit", version.Commit),
		zap.String("env", env),
		zap.Int("http_port", cfg.HTTP.Port),
		zap.String("org", cfg.GitHub.Org),
		zap.String("llm_provider", cfg.LLM.Provider),
		zap.String("llm_model", cfg.LLM.Model),
	)

	// Register domain metrics explicitly (no init())
	metrics.RegisterDomainMetrics()

	// GitHub search client — org scope threaded in at startup, never mutated.
	ghClient := ghTransport.NewClient(ghTransport.Config{
		Org:    cfg.GitHub.Org,
		Token:  cfg.GitHub.Token,
		Logger: logger,
	})
	if cfg.GitHub.Token == "" {
		logger.Warn("no GitHub token configured, search quota will be tight")
	}

	// LLM provider
	provider, err := llm.NewProvider(cfg.LLM, logger)
	if err != nil {
		logger.Fatal("Failed to create LLM provider", zap.Error(err))
	}
	collaborator := llm.NewCollaborator(provider)

	// Use case services
	searchSvc := searchuc.New(ghClient, logger).
		WithLimits(searchuc.Limits{
			Issues:       cfg.GitHub.Limits.Issues,
			PullRequests: cfg.GitHub.Limits.PullRequests,
			Code:         cfg.GitHub.Limits.Code,
			Commits:      cfg.GitHub.Limits.Commits,
		}).
		WithTimeout(time.Duration(cfg.GitHub.SearchTimeout()) * time.Second)
	chatSvc := chatuc.New(collaborator, searchSvc, collaborator, logger)

	// HTTP server
	server := httpapi.NewServer(chatSvc, searchSvc, ghClient, cfg.GitHub.Org, llm.DefaultSystemPrompt, logger)

	r := chi.NewRouter()
	r.Use(jsonRecoverer(logger))
	r.Use(chiMiddleware.RequestID)
	r.Use(wideEventMiddleware(logger))
	r.Use(metrics.Middleware())
	server.Register(r)

	addr := fmt.Sprintf(":%d", cfg.HTTP.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  time.Duration(cfg.HTTP.ReadTimeoutSec) * time.Second,
		WriteTimeout: time.Duration(cfg.HTTP.WriteTimeoutSec) * time.Second,
	}

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)

	go func() {
		logger.Info("Starting HTTP server", zap.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("HTTP server error", zap.Error(err))
		}
	}()

	<-quit
	logger.Info("Received shutdown signal")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.HTTP.ShutdownSec)*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Error during shutdown", zap.Error(err))
	}

	logger.Info("Server stopped gracefully")
}

// jsonRecoverer is a recovery middleware that returns JSON instead of a plain text stacktrace.
func jsonRecoverer(logger *zap.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if rvr := recover(); rvr != nil {
					logger.Error("panic recovered",
						zap.Any("panic", rvr),
						zap.Stack("stacktrace"),
					)
					w.Header().Set("Content-Type", "application/json")
					w.WriteHeader(http.StatusInternalServerError)
					_ = json.NewEncoder(w).Encode(map[string]string{
						"error": "An error occurred while processing your request",
					})
				}
			}()
			next.ServeHTTP(w, r)
		})
	}
}

// wideEventMiddleware emits a canonical log line per request and propagates X-Request-ID.
func wideEventMiddleware(logger *zap.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			// chi.middleware.RequestID already placed request_id in context
			requestID := chiMiddleware.GetReqID(r.Context())
			if requestID != "" {
				w.Header().Set("X-Request-ID", requestID)
			}

			reqLogger := logger.With(zap.String("request_id", requestID))
			ctx := logpkg.ContextWithLogger(r.Context(), reqLogger)

			ww := chiMiddleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r.WithContext(ctx))

			reqLogger.Info("http_request",
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Int("status", ww.Status()),
				zap.Int("bytes", ww.BytesWritten()),
				zap.Duration("duration", time.Since(start)),
				zap.String("remote_addr", r.RemoteAddr),
			)
		})
	}
}
