package httpserver

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/pscheid92/sentiscope/internal/domain"
	apperrors "github.com/pscheid92/sentiscope/internal/platform/errors"
)

const (
	// Worst case for a JSON \uXXXX escape; form encoding needs at most 3 bytes per byte.
	textEscapeFactor  = 6
	envelopeOverhead  = 1 << 10
	multipartOverhead = 64 << 10
)

// bodyLimit caps the request body at n bytes. Larger bodies fail with 413
// before the handler reads them into memory.
func bodyLimit(n int64) echo.MiddlewareFunc {
	return middleware.BodyLimit(strconv.FormatInt(n, 10) + "B")
}

func isBodyTooLarge(err error) bool {
	return errors.Is(err, echo.ErrStatusRequestEntityTooLarge)
}

func (s *Server) registerAPIRoutes(rateLimiter echo.MiddlewareFunc) {
	api := s.echo.Group("/api", rateLimiter, s.requireSession)
	api.POST("/analyze", s.handleAnalyze, bodyLimit(s.config.MaxTextBytes*textEscapeFactor+envelopeOverhead))
	api.POST("/upload", s.handleUpload, bodyLimit(s.config.MaxUploadBytes+multipartOverhead))
	api.GET("/session", s.handleSession)
	api.POST("/reset", s.handleReset)
	api.GET("/export/:format", s.handleExport)
}

type analyzeRequest struct {
	Text string `json:"text" form:"text"`
}

func (s *Server) handleAnalyze(c echo.Context) error {
	id, err := sessionID(c)
	if err != nil {
		return err
	}

	var req analyzeRequest
	if err := c.Bind(&req); err != nil {
		if isBodyTooLarge(err) {
			return err
		}
		return apperrors.ValidationError("invalid request body")
	}

	result, err := s.app.Analyze(c.Request().Context(), id, req.Text)
	if err != nil {
		return err
	}

	if err := c.JSON(http.StatusOK, result); err != nil {
		return fmt.Errorf("failed to send JSON response: %w", err)
	}
	return nil
}

type uploadResponse struct {
	Filename string `json:"filename"`
	Text     string `json:"text"`
}

func (s *Server) handleUpload(c echo.Context) error {
	fh, err := c.FormFile("file")
	if err != nil {
		if isBodyTooLarge(err) {
			return err
		}
		return apperrors.ValidationError("multipart field \"file\" is required")
	}

	f, err := fh.Open()
	if err != nil {
		return apperrors.InternalError("failed to open uploaded file", err)
	}
	defer f.Close()

	text, err := s.app.Upload(c.Request().Context(), fh.Filename, fh.Header.Get(echo.HeaderContentType), f)
	if err != nil {
		return err
	}

	if err := c.JSON(http.StatusOK, uploadResponse{Filename: fh.Filename, Text: text}); err != nil {
		return fmt.Errorf("failed to send JSON response: %w", err)
	}
	return nil
}

type sessionResponse struct {
	Current *domain.AnalysisResult  `json:"current"`
	Recent  []domain.AnalysisResult `json:"recent"`
	Pending bool                    `json:"pending"`
}

func (s *Server) handleSession(c echo.Context) error {
	id, err := sessionID(c)
	if err != nil {
		return err
	}

	state, err := s.app.Session(c.Request().Context(), id)
	if err != nil {
		return err
	}

	resp := sessionResponse{Current: state.Current, Recent: state.Recent, Pending: state.Pending}
	if resp.Recent == nil {
		resp.Recent = []domain.AnalysisResult{}
	}
	if err := c.JSON(http.StatusOK, resp); err != nil {
		return fmt.Errorf("failed to send JSON response: %w", err)
	}
	return nil
}

func (s *Server) handleReset(c echo.Context) error {
	id, err := sessionID(c)
	if err != nil {
		return err
	}

	if err := s.app.Reset(c.Request().Context(), id); err != nil {
		return err
	}

	if err := c.JSON(http.StatusOK, map[string]string{"status": "ok"}); err != nil {
		return fmt.Errorf("failed to send JSON response: %w", err)
	}
	return nil
}

func (s *Server) handleExport(c echo.Context) error {
	id, err := sessionID(c)
	if err != nil {
		return err
	}

	artifact, err := s.app.Export(c.Request().Context(), id, c.Param("format"))
	if err != nil {
		return err
	}

	c.Response().Header().Set(echo.HeaderContentDisposition, fmt.Sprintf("attachment; filename=%q", artifact.Filename))
	if err := c.Blob(http.StatusOK, artifact.ContentType, artifact.Data); err != nil {
		return fmt.Errorf("failed to send export: %w", err)
	}
	return nil
}
