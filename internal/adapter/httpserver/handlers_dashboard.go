package httpserver

import (
	"github.com/labstack/echo/v4"
	"github.com/pscheid92/sentiscope/internal/domain"
)

type dashboardData struct {
	Scorer string
	State  domain.SessionState
}

func (s *Server) registerDashboardRoutes() {
	s.echo.GET("/", s.handleDashboard, s.requireSession)
}

func (s *Server) handleDashboard(c echo.Context) error {
	id, err := sessionID(c)
	if err != nil {
		return err
	}

	state, err := s.app.Session(c.Request().Context(), id)
	if err != nil {
		return err
	}

	return s.renderTemplate(c, "dashboard.html", dashboardData{
		Scorer: s.app.ScorerName(),
		State:  state,
	})
}
