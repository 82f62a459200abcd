package sentiment

import (
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/pscheid92/sentiscope/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestScorer(t *testing.T) (*Scorer, *clockwork.FakeClock) {
	t.Helper()
	clock := clockwork.NewFakeClockAt(time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC))
	scorer, err := NewScorer(DefaultLexicon(), clock)
	require.NoError(t, err)
	return scorer, clock
}

func labels(results []domain.SentimentResult) []domain.Label {
	out := make([]domain.Label, len(results))
	for i, r := range results {
		out[i] = r.Label
	}
	return out
}

func TestScorer_PositiveWithExclamation(t *testing.T) {
	scorer, _ := newTestScorer(t)

	result := scorer.Analyze("This is the best, most amazing experience!")

	// best + amazing = 2, one "!" adds 0.5, neutral floor 0.1
	assert.Equal(t, []domain.Label{domain.LabelPositive, domain.LabelNeutral, domain.LabelNegative}, labels(result.Sentiment))
	assert.InDelta(t, 2.5/2.6, result.Confidence, 1e-9)
	assert.InDelta(t, 0.1/2.6, result.Score(domain.LabelNeutral), 1e-9)
	assert.Equal(t, 0.0, result.Score(domain.LabelNegative))
}

func TestScorer_NegativeWithStrongPhrase(t *testing.T) {
	scorer, _ := newTestScorer(t)

	result := scorer.Analyze("This is the worst, most terrible waste of money")

	// worst + terrible + waste = 3, "waste of money" adds 3
	assert.Equal(t, domain.LabelNegative, result.Primary().Label)
	assert.InDelta(t, 6/6.1, result.Confidence, 1e-9)
}

func TestScorer_StrongPhraseBoostsNegative(t *testing.T) {
	lex := DefaultLexicon()
	lex.StrongPhrases = nil
	plain, err := NewScorer(lex, clockwork.NewFakeClock())
	require.NoError(t, err)
	boosted, _ := newTestScorer(t)

	text := "This is the worst, most terrible waste of money"
	assert.Greater(t, boosted.Analyze(text).Confidence, plain.Analyze(text).Confidence)
	assert.InDelta(t, 3/3.1, plain.Analyze(text).Confidence, 1e-9)
}

func TestScorer_ZeroSignalDefaultsToNeutral(t *testing.T) {
	scorer, _ := newTestScorer(t)

	result := scorer.Analyze("The quick brown fox jumps over the lazy dog")

	assert.Equal(t, []domain.Label{domain.LabelNeutral, domain.LabelPositive, domain.LabelNegative}, labels(result.Sentiment))
	assert.Equal(t, 1.0, result.Confidence)
}

func TestScorer_CountsOccurrencesNotPresence(t *testing.T) {
	scorer, _ := newTestScorer(t)

	result := scorer.Analyze("good good good")

	assert.InDelta(t, 3/3.1, result.Confidence, 1e-9)
}

func TestScorer_WholeWordsOnly(t *testing.T) {
	scorer, _ := newTestScorer(t)

	result := scorer.Analyze("goodness gracious")

	assert.Equal(t, domain.LabelNeutral, result.Primary().Label)
	assert.Equal(t, 1.0, result.Confidence)
}

func TestScorer_CaseInsensitive(t *testing.T) {
	scorer, _ := newTestScorer(t)

	result := scorer.Analyze("NEVER AGAIN")

	assert.Equal(t, domain.LabelNegative, result.Primary().Label)
	assert.InDelta(t, 3/3.1, result.Confidence, 1e-9)
}

func TestScorer_ExclamationBoostsNegative(t *testing.T) {
	scorer, _ := newTestScorer(t)

	result := scorer.Analyze("bad!!")

	assert.Equal(t, domain.LabelNegative, result.Primary().Label)
	assert.InDelta(t, 2/2.1, result.Confidence, 1e-9)
}

func TestScorer_ExclamationTieNoAdjustment(t *testing.T) {
	scorer, _ := newTestScorer(t)

	plain := scorer.Analyze("good bad")
	excited := scorer.Analyze("good bad!!!")

	assert.Equal(t, plain.Sentiment, excited.Sentiment)
	assert.Equal(t, []domain.Label{domain.LabelPositive, domain.LabelNegative, domain.LabelNeutral}, labels(plain.Sentiment))
	assert.InDelta(t, 1/2.1, plain.Confidence, 1e-9)
}

func TestScorer_ExclamationWithoutSignal(t *testing.T) {
	scorer, _ := newTestScorer(t)

	result := scorer.Analyze("wow!!!")

	assert.Equal(t, domain.LabelNeutral, result.Primary().Label)
	assert.Equal(t, 1.0, result.Confidence)
}

func TestScorer_NeutralWordsOnly(t *testing.T) {
	scorer, _ := newTestScorer(t)

	result := scorer.Analyze("It was okay, pretty average really")

	assert.Equal(t, domain.LabelNeutral, result.Primary().Label)
	assert.Equal(t, 1.0, result.Confidence)
}

func TestScorer_TieKeepsLabelOrder(t *testing.T) {
	scorer, _ := newTestScorer(t)

	result := scorer.Analyze("good but okay")

	assert.Equal(t, []domain.Label{domain.LabelPositive, domain.LabelNeutral, domain.LabelNegative}, labels(result.Sentiment))
	assert.InDelta(t, 0.5, result.Confidence, 1e-9)
}

func TestScorer_ScoresFormDistribution(t *testing.T) {
	scorer, _ := newTestScorer(t)

	inputs := []string{
		"This is the best, most amazing experience!",
		"This is the worst, most terrible waste of money",
		"The quick brown fox",
		"good bad okay!!!",
		"I love it but the ending was boring and the price a complete disaster",
		"fine.",
		"!!!!!!!!",
		"Ünïcödé tëxt with nothing to say",
	}

	for _, text := range inputs {
		t.Run(text, func(t *testing.T) {
			result := scorer.Analyze(text)
			require.Len(t, result.Sentiment, 3)

			sum := 0.0
			seen := map[domain.Label]bool{}
			for i, s := range result.Sentiment {
				assert.GreaterOrEqual(t, s.Score, 0.0)
				assert.LessOrEqual(t, s.Score, 1.0)
				if i > 0 {
					assert.GreaterOrEqual(t, result.Sentiment[i-1].Score, s.Score)
				}
				seen[s.Label] = true
				sum += s.Score
			}
			assert.InDelta(t, 1.0, sum, 1e-9)
			assert.Len(t, seen, 3)
			assert.Equal(t, result.Sentiment[0].Score, result.Confidence)
		})
	}
}

func TestScorer_Deterministic(t *testing.T) {
	scorer, clock := newTestScorer(t)
	text := "That wonderful movie was truly fantastic and memorable!"

	first := scorer.Analyze(text)
	clock.Advance(time.Hour)
	second := scorer.Analyze(text)

	assert.Equal(t, first.Sentiment, second.Sentiment)
	assert.Equal(t, first.Keywords, second.Keywords)
	assert.Equal(t, first.Confidence, second.Confidence)
	assert.Equal(t, time.Hour, second.Timestamp.Sub(first.Timestamp))
}

func TestScorer_ResultCarriesTextAndTimestamp(t *testing.T) {
	scorer, clock := newTestScorer(t)
	text := "  keep the original spacing  "

	result := scorer.Analyze(text)

	assert.Equal(t, text, result.Text)
	assert.Equal(t, clock.Now(), result.Timestamp)
}

func TestNewScorer_RejectsEmptyLexicon(t *testing.T) {
	_, err := NewScorer(Lexicon{}, clockwork.NewFakeClock())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid lexicon")
}
