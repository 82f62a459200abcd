package httpserver

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/sessions"
	"github.com/jonboulle/clockwork"
	"github.com/labstack/echo/v4"
	"github.com/pscheid92/sentiscope/internal/domain"
	"github.com/pscheid92/sentiscope/internal/export"
	"github.com/pscheid92/sentiscope/internal/platform/config"
	"github.com/stretchr/testify/require"
)

// --- Mock implementations ---

type mockAppService struct {
	mu         sync.Mutex
	sessionIDs []uuid.UUID

	analyzeFn func(ctx context.Context, sessionID uuid.UUID, text string) (domain.AnalysisResult, error)
	uploadFn  func(ctx context.Context, filename, contentType string, r io.Reader) (string, error)
	sessionFn func(ctx context.Context, sessionID uuid.UUID) (domain.SessionState, error)
	resetFn   func(ctx context.Context, sessionID uuid.UUID) error
	exportFn  func(ctx context.Context, sessionID uuid.UUID, format string) (*export.Artifact, error)
}

func (m *mockAppService) seen(id uuid.UUID) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessionIDs = append(m.sessionIDs, id)
}

func (m *mockAppService) seenIDs() []uuid.UUID {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]uuid.UUID(nil), m.sessionIDs...)
}

func (m *mockAppService) Analyze(ctx context.Context, sessionID uuid.UUID, text string) (domain.AnalysisResult, error) {
	m.seen(sessionID)
	if m.analyzeFn != nil {
		return m.analyzeFn(ctx, sessionID, text)
	}
	return testResult(text), nil
}

func (m *mockAppService) Upload(ctx context.Context, filename, contentType string, r io.Reader) (string, error) {
	if m.uploadFn != nil {
		return m.uploadFn(ctx, filename, contentType, r)
	}
	data, err := io.ReadAll(r)
	return string(data), err
}

func (m *mockAppService) Session(ctx context.Context, sessionID uuid.UUID) (domain.SessionState, error) {
	m.seen(sessionID)
	if m.sessionFn != nil {
		return m.sessionFn(ctx, sessionID)
	}
	return domain.SessionState{}, nil
}

func (m *mockAppService) Reset(ctx context.Context, sessionID uuid.UUID) error {
	m.seen(sessionID)
	if m.resetFn != nil {
		return m.resetFn(ctx, sessionID)
	}
	return nil
}

func (m *mockAppService) Export(ctx context.Context, sessionID uuid.UUID, format string) (*export.Artifact, error) {
	m.seen(sessionID)
	if m.exportFn != nil {
		return m.exportFn(ctx, sessionID, format)
	}
	return nil, domain.ErrNoResults
}

func (m *mockAppService) ScorerName() string { return "lexicon" }

// --- Test helpers ---

var testNow = time.Date(2026, 5, 4, 10, 0, 0, 0, time.UTC)

func testResult(text string) domain.AnalysisResult {
	return domain.AnalysisResult{
		Sentiment: []domain.SentimentResult{
			{Label: domain.LabelPositive, Score: 0.75},
			{Label: domain.LabelNeutral, Score: 0.15},
			{Label: domain.LabelNegative, Score: 0.10},
		},
		Confidence: 0.75,
		Keywords:   []string{"amazing"},
		Text:       text,
		Timestamp:  testNow,
	}
}

func withHealthChecks(checks ...HealthCheck) func(*Server) {
	return func(s *Server) {
		s.healthChecks = checks
	}
}

func withRateLimit(rps float64, burst int) func(*Server) {
	return func(s *Server) {
		s.config.RateLimitRPS = rps
		s.config.RateLimitBurst = burst
	}
}

func withBodyLimits(maxText, maxUpload int64) func(*Server) {
	return func(s *Server) {
		s.config.MaxTextBytes = maxText
		s.config.MaxUploadBytes = maxUpload
	}
}

func newTestServer(t *testing.T, app appService, opts ...func(*Server)) *Server {
	t.Helper()

	templates, err := parseTemplates()
	require.NoError(t, err)

	store := sessions.NewCookieStore([]byte("test-secret-key-32-bytes-long!!!"))
	store.Options = &sessions.Options{
		Path:   "/",
		MaxAge: 3600,
	}

	clock := clockwork.NewFakeClockAt(testNow)
	srv := &Server{
		echo:         echo.New(),
		config: &config.Config{
			Port:           "0",
			RateLimitRPS:   1000,
			RateLimitBurst: 1000,
			MaxUploadBytes: 1 << 20,
			MaxTextBytes:   100 << 10,
		},
		app:          app,
		sessionStore: store,
		templates:    templates,
		clock:        clock,
		startTime:    clock.Now(),
	}

	for _, opt := range opts {
		opt(srv)
	}

	srv.registerRoutes()

	return srv
}

// testClient replays the session cookie like a browser would.
type testClient struct {
	srv     *Server
	cookies []*http.Cookie
}

func newTestClient(srv *Server) *testClient {
	return &testClient{srv: srv}
}

func (tc *testClient) do(req *http.Request) *httptest.ResponseRecorder {
	for _, c := range tc.cookies {
		req.AddCookie(c)
	}
	rec := httptest.NewRecorder()
	tc.srv.echo.ServeHTTP(rec, req)
	if cookies := rec.Result().Cookies(); len(cookies) > 0 {
		tc.cookies = cookies
	}
	return rec
}
