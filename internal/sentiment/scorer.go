package sentiment

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/jonboulle/clockwork"
	"github.com/pscheid92/sentiscope/internal/domain"
)

const (
	strongPhraseWeight = 3.0
	exclamationWeight  = 0.5
)

// Scorer is the lexicon-based heuristic analyzer.
type Scorer struct {
	clock         clockwork.Clock
	positive      []*regexp.Regexp
	negative      []*regexp.Regexp
	neutral       []*regexp.Regexp
	strongPhrases []string
	stopWords     map[string]struct{}
}

var _ domain.Analyzer = (*Scorer)(nil)

func NewScorer(lex Lexicon, clock clockwork.Clock) (*Scorer, error) {
	lex = lex.normalized()
	if err := lex.Validate(); err != nil {
		return nil, fmt.Errorf("invalid lexicon: %w", err)
	}

	stop := make(map[string]struct{}, len(lex.StopWords))
	for _, w := range lex.StopWords {
		stop[w] = struct{}{}
	}

	return &Scorer{
		clock:         clock,
		positive:      compileWords(lex.Positive),
		negative:      compileWords(lex.Negative),
		neutral:       compileWords(lex.Neutral),
		strongPhrases: lex.StrongPhrases,
		stopWords:     stop,
	}, nil
}

func (s *Scorer) Name() string { return "lexicon" }

// Analyze scores text. The result is a pure function of text except for its timestamp.
func (s *Scorer) Analyze(text string) domain.AnalysisResult {
	positive, negative, neutral := s.rawScores(text)
	dist := Distribution(positive, negative, neutral)

	return domain.AnalysisResult{
		Sentiment:  dist,
		Confidence: dist[0].Score,
		Keywords:   extractKeywords(text, s.stopWords),
		Text:       text,
		Timestamp:  s.clock.Now(),
	}
}

func (s *Scorer) rawScores(text string) (positive, negative, neutral float64) {
	lower := strings.ToLower(text)

	positive = float64(countMatches(lower, s.positive))
	negative = float64(countMatches(lower, s.negative))
	neutral = float64(countMatches(lower, s.neutral))

	for _, phrase := range s.strongPhrases {
		if strings.Contains(lower, phrase) {
			negative += strongPhraseWeight
		}
	}

	if n := strings.Count(text, "!"); n > 0 {
		boost := float64(n) * exclamationWeight
		switch {
		case positive > negative:
			positive += boost
		case negative > positive:
			negative += boost
		}
	}

	return positive, negative, neutral
}

func compileWords(words []string) []*regexp.Regexp {
	patterns := make([]*regexp.Regexp, 0, len(words))
	for _, w := range words {
		patterns = append(patterns, regexp.MustCompile(`\b`+regexp.QuoteMeta(w)+`\b`))
	}
	return patterns
}

func countMatches(text string, patterns []*regexp.Regexp) int {
	count := 0
	for _, p := range patterns {
		count += len(p.FindAllStringIndex(text, -1))
	}
	return count
}
