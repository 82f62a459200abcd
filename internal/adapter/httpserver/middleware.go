package httpserver

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/pscheid92/sentiscope/internal/adapter/metrics"
	"github.com/pscheid92/sentiscope/internal/domain"
	"github.com/pscheid92/sentiscope/internal/platform/correlation"
	apperrors "github.com/pscheid92/sentiscope/internal/platform/errors"
)

const (
	sessionName   = "sentiscope-session"
	sessionKeyID  = "sid"
	contextKeySID = "sessionID"
)

func correlationMiddleware(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		id := correlation.FromHeader(c.Request().Header.Get(correlation.Header))
		ctx := correlation.WithID(c.Request().Context(), id)
		c.SetRequest(c.Request().WithContext(ctx))
		c.Response().Header().Set(correlation.Header, id)
		return next(c)
	}
}

// requireSession resolves the dashboard session from the cookie, issuing a
// fresh ID when the cookie is missing, tampered with or unparsable.
func (s *Server) requireSession(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		// Get returns a usable new session alongside a decode error.
		session, err := s.sessionStore.Get(c.Request(), sessionName)
		if err != nil {
			slog.DebugContext(c.Request().Context(), "Discarding invalid session cookie", "error", err)
		}

		raw, _ := session.Values[sessionKeyID].(string)
		id, parseErr := uuid.Parse(raw)
		if parseErr != nil {
			id = uuid.New()
			session.Values[sessionKeyID] = id.String()
			if err := session.Save(c.Request(), c.Response()); err != nil {
				return apperrors.InternalError("failed to save session", err)
			}
		}

		c.Set(contextKeySID, id)
		return next(c)
	}
}

func sessionID(c echo.Context) (uuid.UUID, error) {
	id, ok := c.Get(contextKeySID).(uuid.UUID)
	if !ok {
		return uuid.Nil, apperrors.InternalError("missing session ID in context", nil)
	}
	return id, nil
}

// ErrorHandlingMiddleware turns handler errors into structured JSON responses.
// Echo HTTP errors pass through to echo's own handler, except 413 from the body
// limit, which is reported like any other too_large error. m may be nil.
func ErrorHandlingMiddleware(m *metrics.HTTPMetrics) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			err := next(c)
			if err == nil {
				return nil
			}

			var httpErr *echo.HTTPError
			if errors.As(err, &httpErr) && httpErr.Code != http.StatusRequestEntityTooLarge {
				if m != nil {
					m.RecordError(string(apperrors.FromHTTPError(httpErr).Type))
				}
				return err
			}

			structuredErr := classify(err)
			if m != nil {
				m.RecordError(string(structuredErr.Type))
			}
			logError(c, structuredErr)

			if err := c.JSON(structuredErr.HTTPStatus(), structuredErr.ToResponse()); err != nil {
				return fmt.Errorf("failed to write error response: %w", err)
			}
			return nil
		}
	}
}

// classify maps domain sentinel errors onto structured errors.
func classify(err error) *apperrors.Error {
	var structuredErr *apperrors.Error
	if errors.As(err, &structuredErr) {
		return structuredErr
	}

	switch {
	case errors.Is(err, domain.ErrEmptyText):
		return apperrors.ValidationError("text is required")
	case errors.Is(err, domain.ErrAnalysisInProgress):
		return apperrors.ConflictError("an analysis is already running for this session")
	case errors.Is(err, domain.ErrInvalidFileType):
		return apperrors.UnsupportedMediaError(domain.ErrInvalidFileType.Error())
	case errors.Is(err, domain.ErrFileTooLarge), errors.Is(err, domain.ErrTextTooLarge):
		return apperrors.TooLargeError(err.Error())
	case isBodyTooLarge(err):
		return apperrors.TooLargeError("request body too large")
	case errors.Is(err, domain.ErrNoResults):
		return apperrors.NotFoundError("no analysis results to export")
	case errors.Is(err, domain.ErrUnsupportedFormat):
		return apperrors.ValidationError("unsupported export format").WithField("supported", []string{"csv", "json", "pdf"})
	case errors.Is(err, domain.ErrStoreUnavailable):
		return apperrors.ExternalError("session store unavailable", err)
	default:
		return apperrors.AsStructuredError(err)
	}
}

func logError(c echo.Context, err *apperrors.Error) {
	ctx := c.Request().Context()
	attrs := []any{
		"error_type", err.Type,
		"message", err.Message,
		"path", c.Request().URL.Path,
		"method", c.Request().Method,
		"status", err.HTTPStatus(),
	}

	for k, v := range err.Context {
		attrs = append(attrs, k, v)
	}

	if sid := c.Get(contextKeySID); sid != nil {
		attrs = append(attrs, "session_id", sid)
	}

	switch err.Type {
	case apperrors.TypeValidation, apperrors.TypeNotFound, apperrors.TypeTooLarge, apperrors.TypeUnsupportedMedia:
		slog.InfoContext(ctx, "Request rejected", attrs...)
	case apperrors.TypeConflict, apperrors.TypeRateLimited:
		slog.WarnContext(ctx, "Conflict", attrs...)
	case apperrors.TypeExternal:
		if err.Cause != nil {
			attrs = append(attrs, "cause", err.Cause)
		}
		slog.ErrorContext(ctx, "External service error", attrs...)
	default:
		if err.Cause != nil {
			attrs = append(attrs, "cause", err.Cause)
		}
		slog.ErrorContext(ctx, "Internal error", attrs...)
	}
}
