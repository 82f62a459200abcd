package session

import (
	"time"

	"github.com/pscheid92/sentiscope/internal/domain"
)

// MaxRecent bounds the recent-results list.
const MaxRecent = 10

// Action is a state transition understood by Reduce.
type Action interface{ sessionAction() }

// AnalysisStarted marks a scoring pass as in flight from At.
type AnalysisStarted struct {
	At time.Time
}

func (AnalysisStarted) sessionAction() {}

// AnalysisCompleted stores a finished result as current and prepends it to the recent list.
type AnalysisCompleted struct {
	Result domain.AnalysisResult
}

func (AnalysisCompleted) sessionAction() {}

// AnalysisFailed clears the pending flag without recording anything.
type AnalysisFailed struct{}

func (AnalysisFailed) sessionAction() {}

// Reset discards all session state.
type Reset struct{}

func (Reset) sessionAction() {}

// Reduce returns the state after applying action. The input state is never modified.
func Reduce(state domain.SessionState, action Action) domain.SessionState {
	switch a := action.(type) {
	case AnalysisStarted:
		next := Clone(state)
		next.Pending = true
		next.PendingSince = a.At
		return next

	case AnalysisCompleted:
		result := a.Result.Clone()
		recent := make([]domain.AnalysisResult, 0, min(len(state.Recent)+1, MaxRecent))
		recent = append(recent, result)
		for _, r := range state.Recent {
			if len(recent) == MaxRecent {
				break
			}
			recent = append(recent, r.Clone())
		}
		current := result.Clone()
		return domain.SessionState{Current: &current, Recent: recent, Pending: false}

	case AnalysisFailed:
		next := Clone(state)
		next.Pending = false
		next.PendingSince = time.Time{}
		return next

	case Reset:
		return domain.SessionState{}

	default:
		return Clone(state)
	}
}

// Clone deep-copies a session state.
func Clone(state domain.SessionState) domain.SessionState {
	out := domain.SessionState{Pending: state.Pending, PendingSince: state.PendingSince}
	if state.Current != nil {
		current := state.Current.Clone()
		out.Current = &current
	}
	if state.Recent != nil {
		out.Recent = make([]domain.AnalysisResult, len(state.Recent))
		for i, r := range state.Recent {
			out.Recent[i] = r.Clone()
		}
	}
	return out
}
