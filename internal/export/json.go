package export

import (
	"encoding/json"
	"time"

	"github.com/pscheid92/sentiscope/internal/domain"
)

type jsonExport struct {
	ExportDate    string         `json:"exportDate"`
	TotalAnalyses int            `json:"totalAnalyses"`
	Analyses      []jsonAnalysis `json:"analyses"`
}

type jsonAnalysis struct {
	Timestamp        string         `json:"timestamp"`
	Text             string         `json:"text"`
	PrimarySentiment domain.Label   `json:"primarySentiment"`
	Confidence       int            `json:"confidence"`
	Sentiments       jsonSentiments `json:"sentiments"`
	Keywords         []string       `json:"keywords"`
}

type jsonSentiments struct {
	Positive int `json:"positive"`
	Negative int `json:"negative"`
	Neutral  int `json:"neutral"`
}

func renderJSON(results []domain.AnalysisResult, now time.Time) ([]byte, error) {
	doc := jsonExport{
		ExportDate:    isoTime(now),
		TotalAnalyses: len(results),
		Analyses:      make([]jsonAnalysis, 0, len(results)),
	}
	for _, r := range results {
		keywords := r.Keywords
		if keywords == nil {
			keywords = []string{}
		}
		doc.Analyses = append(doc.Analyses, jsonAnalysis{
			Timestamp:        isoTime(r.Timestamp),
			Text:             r.Text,
			PrimarySentiment: r.Primary().Label,
			Confidence:       roundedPercent(r.Confidence),
			Sentiments: jsonSentiments{
				Positive: roundedPercent(r.Score(domain.LabelPositive)),
				Negative: roundedPercent(r.Score(domain.LabelNegative)),
				Neutral:  roundedPercent(r.Score(domain.LabelNeutral)),
			},
			Keywords: keywords,
		})
	}
	return json.MarshalIndent(doc, "", "  ")
}
