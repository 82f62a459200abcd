package export

import (
	"strconv"
	"strings"

	"github.com/pscheid92/sentiscope/internal/domain"
)

var csvHeader = []string{
	"Timestamp",
	"Text",
	"Primary Sentiment",
	"Confidence (%)",
	"Positive (%)",
	"Negative (%)",
	"Neutral (%)",
	"Keywords",
}

// renderCSV always quotes the free-text columns, which encoding/csv cannot force.
func renderCSV(results []domain.AnalysisResult) []byte {
	var b strings.Builder
	b.WriteString(strings.Join(csvHeader, ","))
	b.WriteString("\n")

	for _, r := range results {
		fields := []string{
			isoTime(r.Timestamp),
			quoteField(r.Text),
			string(r.Primary().Label),
			formatPercent(r.Confidence),
			formatPercent(r.Score(domain.LabelPositive)),
			formatPercent(r.Score(domain.LabelNegative)),
			formatPercent(r.Score(domain.LabelNeutral)),
			quoteField(strings.Join(r.Keywords, ", ")),
		}
		b.WriteString(strings.Join(fields, ","))
		b.WriteString("\n")
	}
	return []byte(b.String())
}

func quoteField(s string) string {
	return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
}

func formatPercent(score float64) string {
	return strconv.FormatFloat(percent(score), 'f', 1, 64)
}
