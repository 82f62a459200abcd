package httpserver

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/pscheid92/sentiscope/internal/domain"
	"github.com/pscheid92/sentiscope/internal/platform/version"
)

const (
	startupProbeTimeout   = 2 * time.Second
	readinessProbeTimeout = 5 * time.Second
)

// HealthCheck is a named dependency probe run by the startup and readiness endpoints.
type HealthCheck struct {
	Name  string
	Check func(ctx context.Context) error
}

// SessionStoreCheck reads the reserved nil session from store. Unknown sessions
// yield the zero state, so only backend failures make the check fail.
func SessionStoreCheck(store domain.SessionRepository) HealthCheck {
	return HealthCheck{
		Name: "session_store",
		Check: func(ctx context.Context) error {
			_, err := store.Get(ctx, uuid.Nil)
			return err
		},
	}
}

type readinessResponse struct {
	Status string            `json:"status"`
	Scorer string            `json:"scorer"`
	Checks map[string]string `json:"checks"`
}

func (s *Server) registerHealthRoutes() {
	s.echo.GET("/health/startup", s.probeHandler(startupProbeTimeout))
	s.echo.GET("/health/live", s.handleLiveness)
	s.echo.GET("/health/ready", s.probeHandler(readinessProbeTimeout))
	s.echo.GET("/version", s.handleVersion)
}

func (s *Server) handleLiveness(c echo.Context) error {
	response := map[string]any{
		"status": "ok",
		"uptime": s.clock.Since(s.startTime).Seconds(),
	}
	if err := c.JSON(http.StatusOK, response); err != nil {
		return fmt.Errorf("failed to write liveness response: %w", err)
	}
	return nil
}

// probeHandler runs every check, even after a failure, so the response names all broken dependencies.
func (s *Server) probeHandler(timeout time.Duration) echo.HandlerFunc {
	return func(c echo.Context) error {
		ctx, cancel := context.WithTimeout(c.Request().Context(), timeout)
		defer cancel()

		resp := readinessResponse{
			Status: "ready",
			Scorer: s.app.ScorerName(),
			Checks: make(map[string]string, len(s.healthChecks)),
		}
		status := http.StatusOK
		for _, hc := range s.healthChecks {
			if err := hc.Check(ctx); err != nil {
				resp.Checks[hc.Name] = err.Error()
				resp.Status = "unhealthy"
				status = http.StatusServiceUnavailable
				continue
			}
			resp.Checks[hc.Name] = "ok"
		}

		if err := c.JSON(status, resp); err != nil {
			return fmt.Errorf("failed to send JSON response: %w", err)
		}
		return nil
	}
}

func (s *Server) handleVersion(c echo.Context) error {
	if err := c.JSON(http.StatusOK, version.Get()); err != nil {
		return fmt.Errorf("failed to write version response: %w", err)
	}
	return nil
}
