package sentiment

import (
	"fmt"

	"github.com/jonboulle/clockwork"
	"github.com/pscheid92/sentiscope/internal/domain"
)

const (
	ScorerLexicon = "lexicon"
	ScorerVader   = "vader"
)

// NewAnalyzer builds the analyzer named by scorer over lex.
func NewAnalyzer(scorer string, lex Lexicon, clock clockwork.Clock) (domain.Analyzer, error) {
	switch scorer {
	case "", ScorerLexicon:
		return NewScorer(lex, clock)
	case ScorerVader:
		return NewVaderScorer(lex, clock), nil
	default:
		return nil, fmt.Errorf("unknown scorer %q (want %q or %q)", scorer, ScorerLexicon, ScorerVader)
	}
}
