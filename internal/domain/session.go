package domain

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// SessionState is the per-browser dashboard state. Recent is newest first.
type SessionState struct {
	Current *AnalysisResult  `json:"current"`
	Recent  []AnalysisResult `json:"recent"`
	Pending bool             `json:"pending"`
	// PendingSince is when the in-flight pass started; zero when not pending.
	PendingSince time.Time `json:"pendingSince,omitempty"`
}

// UpdateFunc computes the next state from the current one. Returning an error
// aborts the update and leaves the stored state untouched.
type UpdateFunc func(SessionState) (SessionState, error)

type SessionRepository interface {
	// Get returns the zero state for unknown or expired sessions.
	Get(ctx context.Context, sessionID uuid.UUID) (SessionState, error)
	// Update applies fn atomically with respect to other updates of the same session.
	Update(ctx context.Context, sessionID uuid.UUID, fn UpdateFunc) (SessionState, error)
	Delete(ctx context.Context, sessionID uuid.UUID) error
}
