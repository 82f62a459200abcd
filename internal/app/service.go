package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"github.com/pscheid92/sentiscope/internal/adapter/metrics"
	"github.com/pscheid92/sentiscope/internal/domain"
	"github.com/pscheid92/sentiscope/internal/export"
	"github.com/pscheid92/sentiscope/internal/session"
	"github.com/pscheid92/sentiscope/internal/upload"
)

// DefaultMaxTextBytes caps analysis input when Options leaves it unset.
const DefaultMaxTextBytes int64 = 100 << 10

// pendingGrace is how long past AnalysisDelay a pending flag is honoured. A flag
// older than that belongs to a pass whose instance died before clearing it.
const pendingGrace = 30 * time.Second

// Options tune the service. Zero values are valid.
type Options struct {
	// AnalysisDelay simulates scoring latency; the session stays pending meanwhile.
	AnalysisDelay  time.Duration
	MaxUploadBytes int64
	MaxTextBytes   int64
}

// Service is the application layer. It is the only component that knows both
// the analyzer and the session repository.
type Service struct {
	store    domain.SessionRepository
	analyzer domain.Analyzer
	clock    clockwork.Clock
	metrics  *metrics.AnalysisMetrics
	opts     Options
}

func NewService(store domain.SessionRepository, analyzer domain.Analyzer, clock clockwork.Clock, m *metrics.AnalysisMetrics, opts Options) *Service {
	if opts.MaxUploadBytes <= 0 {
		opts.MaxUploadBytes = upload.DefaultMaxBytes
	}
	if opts.MaxTextBytes <= 0 {
		opts.MaxTextBytes = DefaultMaxTextBytes
	}
	return &Service{
		store:    store,
		analyzer: analyzer,
		clock:    clock,
		metrics:  m,
		opts:     opts,
	}
}

// ScorerName reports which analyzer backs the service.
func (s *Service) ScorerName() string {
	return s.analyzer.Name()
}

// Analyze runs one scoring pass for the session. Blank text is rejected with
// ErrEmptyText, oversized text with ErrTextTooLarge, and a second call while one
// is pending gets ErrAnalysisInProgress. None of them touch the stored state.
func (s *Service) Analyze(ctx context.Context, sessionID uuid.UUID, text string) (domain.AnalysisResult, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		s.reject(metrics.ReasonEmptyText)
		return domain.AnalysisResult{}, domain.ErrEmptyText
	}
	if int64(len(text)) > s.opts.MaxTextBytes {
		s.reject(metrics.ReasonTooLarge)
		return domain.AnalysisResult{}, fmt.Errorf("%w: %d bytes exceeds %d", domain.ErrTextTooLarge, len(text), s.opts.MaxTextBytes)
	}

	start := s.clock.Now()
	_, err := s.store.Update(ctx, sessionID, func(state domain.SessionState) (domain.SessionState, error) {
		if state.Pending {
			if !s.stalePending(state, start) {
				return state, domain.ErrAnalysisInProgress
			}
			slog.WarnContext(ctx, "Discarding stale pending analysis", "session_id", sessionID, "pending_since", state.PendingSince)
		}
		return session.Reduce(state, session.AnalysisStarted{At: start}), nil
	})
	if err != nil {
		if errors.Is(err, domain.ErrAnalysisInProgress) {
			s.reject(metrics.ReasonInProgress)
		} else {
			s.reject(metrics.ReasonStore)
		}
		return domain.AnalysisResult{}, err
	}

	if s.opts.AnalysisDelay > 0 {
		select {
		case <-s.clock.After(s.opts.AnalysisDelay):
		case <-ctx.Done():
			s.abandon(ctx, sessionID)
			s.reject(metrics.ReasonCancelled)
			return domain.AnalysisResult{}, fmt.Errorf("analysis cancelled: %w", ctx.Err())
		}
	}

	result := s.analyzer.Analyze(text)

	_, err = s.store.Update(ctx, sessionID, func(state domain.SessionState) (domain.SessionState, error) {
		return session.Reduce(state, session.AnalysisCompleted{Result: result}), nil
	})
	if err != nil {
		s.abandon(ctx, sessionID)
		s.reject(metrics.ReasonStore)
		return domain.AnalysisResult{}, err
	}

	primary := result.Primary()
	if s.metrics != nil {
		s.metrics.Completed(string(primary.Label), s.analyzer.Name(), s.clock.Since(start))
	}
	slog.DebugContext(ctx, "Analysis completed",
		"session_id", sessionID,
		"label", primary.Label,
		"confidence", result.Confidence,
		"scorer", s.analyzer.Name(),
	)
	return result, nil
}

// stalePending reports whether a pending flag has outlived any pass that could
// still be running. Flags without a start time are always stale.
func (s *Service) stalePending(state domain.SessionState, now time.Time) bool {
	if state.PendingSince.IsZero() {
		return true
	}
	return now.Sub(state.PendingSince) > s.opts.AnalysisDelay+pendingGrace
}

// abandon clears the pending flag after a failed pass. It runs detached from
// ctx so a cancelled request still releases the session.
func (s *Service) abandon(ctx context.Context, sessionID uuid.UUID) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
	defer cancel()

	_, err := s.store.Update(ctx, sessionID, func(state domain.SessionState) (domain.SessionState, error) {
		return session.Reduce(state, session.AnalysisFailed{}), nil
	})
	if err != nil {
		slog.ErrorContext(ctx, "Failed to clear pending analysis", "session_id", sessionID, "error", err)
	}
}

func (s *Service) reject(reason string) {
	if s.metrics != nil {
		s.metrics.Rejected(reason)
	}
}

// Upload validates an uploaded file and returns its text for the input area.
// It never changes session state.
func (s *Service) Upload(ctx context.Context, filename, contentType string, r io.Reader) (string, error) {
	text, err := upload.Read(filename, contentType, r, s.opts.MaxUploadBytes)
	if err != nil {
		slog.InfoContext(ctx, "Upload rejected", "filename", filename, "content_type", contentType, "error", err)
		return "", err
	}
	return text, nil
}

func (s *Service) Session(ctx context.Context, sessionID uuid.UUID) (domain.SessionState, error) {
	return s.store.Get(ctx, sessionID)
}

// Reset discards the session's results.
func (s *Service) Reset(ctx context.Context, sessionID uuid.UUID) error {
	if err := s.store.Delete(ctx, sessionID); err != nil {
		return err
	}
	slog.DebugContext(ctx, "Session reset", "session_id", sessionID)
	return nil
}

// Export renders the session's recent results, newest first.
func (s *Service) Export(ctx context.Context, sessionID uuid.UUID, format string) (*export.Artifact, error) {
	f, err := domain.ParseExportFormat(format)
	if err != nil {
		return nil, err
	}

	state, err := s.store.Get(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	artifact, err := export.Render(f, state.Recent, s.clock.Now())
	if err != nil {
		return nil, err
	}

	if s.metrics != nil {
		s.metrics.Exported(string(f))
	}
	slog.InfoContext(ctx, "Export rendered", "session_id", sessionID, "format", f, "results", len(state.Recent), "bytes", len(artifact.Data))
	return artifact, nil
}
