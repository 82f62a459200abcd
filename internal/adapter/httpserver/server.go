package httpserver

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/sessions"
	"github.com/jonboulle/clockwork"
	"github.com/labstack/echo/v4"
	"github.com/pscheid92/sentiscope/internal/adapter/metrics"
	"github.com/pscheid92/sentiscope/internal/domain"
	"github.com/pscheid92/sentiscope/internal/export"
	"github.com/pscheid92/sentiscope/internal/platform/config"
	"github.com/pscheid92/sentiscope/web"
)

type appService interface {
	Analyze(ctx context.Context, sessionID uuid.UUID, text string) (domain.AnalysisResult, error)
	Upload(ctx context.Context, filename, contentType string, r io.Reader) (string, error)
	Session(ctx context.Context, sessionID uuid.UUID) (domain.SessionState, error)
	Reset(ctx context.Context, sessionID uuid.UUID) error
	Export(ctx context.Context, sessionID uuid.UUID, format string) (*export.Artifact, error)
	ScorerName() string
}

type Server struct {
	echo   *echo.Echo
	config *config.Config
	app    appService

	templates      *template.Template
	sessionStore   *sessions.CookieStore
	healthChecks   []HealthCheck
	httpMetrics    *metrics.HTTPMetrics
	metricsHandler http.Handler

	clock     clockwork.Clock
	startTime time.Time
}

// NewServer wires the echo instance. httpMetrics and metricsHandler may be nil.
func NewServer(cfg *config.Config, app appService, healthChecks []HealthCheck, httpMetrics *metrics.HTTPMetrics, metricsHandler http.Handler, clock clockwork.Clock) (*Server, error) {
	templates, err := parseTemplates()
	if err != nil {
		return nil, err
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	srv := &Server{
		echo:           e,
		config:         cfg,
		app:            app,
		templates:      templates,
		sessionStore:   setupSessionStore(cfg),
		healthChecks:   healthChecks,
		httpMetrics:    httpMetrics,
		metricsHandler: metricsHandler,
		clock:          clock,
		startTime:      clock.Now(),
	}

	srv.registerRoutes()

	return srv, nil
}

func (s *Server) Start() error {
	slog.Info("Starting server", "port", s.config.Port, "scorer", s.app.ScorerName())
	if err := s.echo.Start(":" + s.config.Port); err != nil {
		return fmt.Errorf("failed to start server: %w", err)
	}
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	if err := s.echo.Shutdown(ctx); err != nil {
		return fmt.Errorf("failed to shutdown server: %w", err)
	}
	return nil
}

var templateFuncs = template.FuncMap{
	"percent": func(score float64) string {
		return fmt.Sprintf("%.1f", score*100)
	},
	"truncate": func(s string, n int) string {
		r := []rune(s)
		if len(r) <= n {
			return s
		}
		return string(r[:n]) + "..."
	},
}

func parseTemplates() (*template.Template, error) {
	templates, err := template.New("").Funcs(templateFuncs).ParseFS(web.TemplateFiles, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("failed to parse templates: %w", err)
	}
	return templates, nil
}

func (s *Server) renderTemplate(c echo.Context, name string, data any) error {
	var buf bytes.Buffer
	if err := s.templates.ExecuteTemplate(&buf, name, data); err != nil {
		slog.ErrorContext(c.Request().Context(), "Template execution failed", "path", c.Request().URL.Path, "error", err)
		if err := c.String(http.StatusInternalServerError, "Failed to render page"); err != nil {
			return fmt.Errorf("failed to send error response: %w", err)
		}
		return nil
	}
	if err := c.HTMLBlob(http.StatusOK, buf.Bytes()); err != nil {
		return fmt.Errorf("failed to send HTML response: %w", err)
	}
	return nil
}

func setupSessionStore(cfg *config.Config) *sessions.CookieStore {
	sessionStore := sessions.NewCookieStore([]byte(cfg.SessionSecret))
	sessionStore.Options = &sessions.Options{
		Path:     "/",
		MaxAge:   int(cfg.SessionMaxAge.Seconds()),
		HttpOnly: true,
		Secure:   cfg.IsProduction(),
		SameSite: http.SameSiteLaxMode,
	}
	return sessionStore
}
