package main

import (
	"context"
	"errors"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/pscheid92/sentiscope/internal/adapter/httpserver"
	"github.com/pscheid92/sentiscope/internal/adapter/metrics"
	"github.com/pscheid92/sentiscope/internal/adapter/redis"
	"github.com/pscheid92/sentiscope/internal/app"
	"github.com/pscheid92/sentiscope/internal/domain"
	"github.com/pscheid92/sentiscope/internal/platform/config"
	"github.com/pscheid92/sentiscope/internal/platform/logging"
	"github.com/pscheid92/sentiscope/internal/platform/version"
	"github.com/pscheid92/sentiscope/internal/sentiment"
	"github.com/pscheid92/sentiscope/internal/session"
)

const evictionInterval = time.Minute

func runGracefulShutdown(srv *httpserver.Server, cleanup func()) <-chan struct{} {
	done := make(chan struct{})
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	go func() {
		<-sigChan
		slog.Info("Shutdown signal received, cleaning up...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			slog.Error("Server shutdown error", "error", err)
		}

		cleanup()
		close(done)
	}()

	return done
}

func setupConfig() *config.Config {
	cfg, err := config.Load()
	if err != nil {
		// Use log before slog is initialized
		log.Fatalf("Failed to load config: %v", err)
	}
	return cfg
}

func setupAnalyzer(cfg *config.Config, clock clockwork.Clock) domain.Analyzer {
	lex, err := sentiment.LoadLexicon(cfg.LexiconPath)
	if err != nil {
		slog.Error("Failed to load lexicon", "path", cfg.LexiconPath, "error", err)
		os.Exit(1)
	}

	analyzer, err := sentiment.NewAnalyzer(cfg.Scorer, lex, clock)
	if err != nil {
		slog.Error("Failed to create analyzer", "scorer", cfg.Scorer, "error", err)
		os.Exit(1)
	}
	return analyzer
}

type sessionBackend struct {
	store   domain.SessionRepository
	cleanup func()
}

// setupSessionStore uses Redis when REDIS_URL is set and an in-process map otherwise.
func setupSessionStore(ctx context.Context, cfg *config.Config, reg prometheus.Registerer, clock clockwork.Clock) sessionBackend {
	if cfg.RedisURL == "" {
		memory := session.NewMemoryStore(cfg.SessionMaxAge, clock, metrics.NewSessionMetrics(reg))
		stopEviction := memory.StartEvictionTimer(evictionInterval)
		slog.Info("Using in-memory session store", "ttl", cfg.SessionMaxAge)
		return sessionBackend{store: memory, cleanup: stopEviction}
	}

	client, err := redis.NewClient(ctx, cfg.RedisURL, redis.ClientOptions{Metrics: metrics.NewRedisMetrics(reg)})
	if err != nil {
		slog.Error("Failed to connect to Redis", "error", err)
		os.Exit(1)
	}
	slog.Info("Using Redis session store", "ttl", cfg.SessionMaxAge)

	return sessionBackend{
		store:   redis.NewSessionStore(client, cfg.SessionMaxAge),
		cleanup: func() { _ = client.Close() },
	}
}

func main() {
	clock := clockwork.NewRealClock()

	cfg := setupConfig()

	logging.InitLogger(cfg.LogLevel, cfg.LogFormat)
	slog.Info("Application starting", "env", cfg.AppEnv, "port", cfg.Port, "version", version.Get().Version)

	reg := metrics.NewRegistry()

	analyzer := setupAnalyzer(cfg, clock)
	backend := setupSessionStore(context.Background(), cfg, reg, clock)

	appSvc := app.NewService(backend.store, analyzer, clock, metrics.NewAnalysisMetrics(reg), app.Options{
		AnalysisDelay:  cfg.AnalysisDelay,
		MaxUploadBytes: cfg.MaxUploadBytes,
		MaxTextBytes:   cfg.MaxTextBytes,
	})

	healthChecks := []httpserver.HealthCheck{httpserver.SessionStoreCheck(backend.store)}
	srv, err := httpserver.NewServer(cfg, appSvc, healthChecks, metrics.NewHTTPMetrics(reg), metrics.Handler(reg), clock)
	if err != nil {
		slog.Error("Failed to create server", "error", err)
		os.Exit(1)
	}

	done := runGracefulShutdown(srv, backend.cleanup)

	if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		slog.Error("Server error", "error", err)
		os.Exit(1)
	}

	<-done
}
