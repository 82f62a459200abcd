package domain

import "time"

// Label is one of the three sentiment classes.
type Label string

const (
	LabelPositive Label = "POSITIVE"
	LabelNegative Label = "NEGATIVE"
	LabelNeutral  Label = "NEUTRAL"
)

// Labels lists every label in tie-break order.
var Labels = []Label{LabelPositive, LabelNegative, LabelNeutral}

type SentimentResult struct {
	Label Label   `json:"label"`
	Score float64 `json:"score"`
}

// AnalysisResult is the outcome of one scoring pass. Sentiment always holds
// exactly one entry per label, sorted by descending score, summing to 1.
type AnalysisResult struct {
	Sentiment  []SentimentResult `json:"sentiment"`
	Confidence float64           `json:"confidence"`
	Keywords   []string          `json:"keywords"`
	Text       string            `json:"text"`
	Timestamp  time.Time         `json:"timestamp"`
}

// Primary returns the top-ranked sentiment.
func (r AnalysisResult) Primary() SentimentResult {
	if len(r.Sentiment) == 0 {
		return SentimentResult{Label: LabelNeutral}
	}
	return r.Sentiment[0]
}

// Score returns the normalized score for label, or 0 if absent.
func (r AnalysisResult) Score(label Label) float64 {
	for _, s := range r.Sentiment {
		if s.Label == label {
			return s.Score
		}
	}
	return 0
}

// Clone returns a deep copy so stored results never share slices with callers.
func (r AnalysisResult) Clone() AnalysisResult {
	out := r
	out.Sentiment = append([]SentimentResult(nil), r.Sentiment...)
	out.Keywords = append(make([]string, 0, len(r.Keywords)), r.Keywords...)
	return out
}

// Analyzer turns raw text into an AnalysisResult. Callers must reject empty text first.
type Analyzer interface {
	Analyze(text string) AnalysisResult
	Name() string
}
