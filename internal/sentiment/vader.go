package sentiment

import (
	"html"
	"regexp"
	"strings"

	"github.com/jonboulle/clockwork"
	"github.com/jonreiter/govader"
	"github.com/pscheid92/sentiscope/internal/domain"
	"github.com/russross/blackfriday/v2"
)

var (
	htmlTagRe = regexp.MustCompile(`<[^>]+>`)
	urlRe     = regexp.MustCompile(`https?://\S+|www\.\S+`)
)

// VaderScorer maps VADER polarity proportions onto the three-label distribution.
// Keywords come from the lexicon's stop-word list so both engines explain results alike.
type VaderScorer struct {
	analyzer  *govader.SentimentIntensityAnalyzer
	clock     clockwork.Clock
	stopWords map[string]struct{}
}

var _ domain.Analyzer = (*VaderScorer)(nil)

func NewVaderScorer(lex Lexicon, clock clockwork.Clock) *VaderScorer {
	stop := make(map[string]struct{}, len(lex.StopWords))
	for _, w := range normalizeEntries(lex.StopWords) {
		stop[w] = struct{}{}
	}
	return &VaderScorer{
		analyzer:  govader.NewSentimentIntensityAnalyzer(),
		clock:     clock,
		stopWords: stop,
	}
}

func (v *VaderScorer) Name() string { return "vader" }

func (v *VaderScorer) Analyze(text string) domain.AnalysisResult {
	scores := v.analyzer.PolarityScores(plainText(text))
	dist := Distribution(scores.Positive, scores.Negative, scores.Neutral)

	return domain.AnalysisResult{
		Sentiment:  dist,
		Confidence: dist[0].Score,
		Keywords:   extractKeywords(text, v.stopWords),
		Text:       text,
		Timestamp:  v.clock.Now(),
	}
}

// plainText renders markdown and drops markup and links so VADER sees prose only.
func plainText(input string) string {
	rendered := blackfriday.Run([]byte(input), blackfriday.WithNoExtensions())
	stripped := html.UnescapeString(htmlTagRe.ReplaceAllString(string(rendered), " "))
	stripped = urlRe.ReplaceAllString(stripped, "")
	return strings.Join(strings.Fields(stripped), " ")
}
