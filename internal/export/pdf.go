package export

import (
	"bytes"
	"fmt"
	"strings"
	"time"

	"github.com/go-pdf/fpdf"
	"github.com/pscheid92/sentiscope/internal/domain"
)

const (
	pageMargin   = 20.0
	contentWidth = 170.0 // A4 width minus both margins
	pageBreakY   = 270.0
	maxTextLines = 3
	ellipsis     = "..."
	fontFamily   = "Helvetica"
)

// pdfReport tracks the vertical cursor and paginates once it passes pageBreakY.
type pdfReport struct {
	pdf       *fpdf.Fpdf
	translate func(string) string
	y         float64
}

func newPDFReport(now time.Time) *pdfReport {
	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetCreationDate(now)
	pdf.SetModificationDate(now)
	pdf.SetCatalogSort(true)
	pdf.SetTitle("Sentiment Analysis Report", true)
	pdf.SetAutoPageBreak(false, pageMargin)
	pdf.AddPage()

	return &pdfReport{
		pdf:       pdf,
		translate: pdf.UnicodeTranslatorFromDescriptor(""),
		y:         pageMargin,
	}
}

func (r *pdfReport) line(text, style string, size, advance float64) {
	if r.y > pageBreakY {
		r.pdf.AddPage()
		r.y = pageMargin
	}
	r.pdf.SetFont(fontFamily, style, size)
	r.pdf.Text(pageMargin, r.y, r.translate(text))
	r.y += advance
}

func (r *pdfReport) space(advance float64) {
	r.y += advance
}

// buildPDF lays out the report. Split from renderPDF so tests can inspect pagination.
func buildPDF(results []domain.AnalysisResult, now time.Time) *fpdf.Fpdf {
	r := newPDFReport(now)

	r.line("Sentiment Analysis Report", "B", 18, 10)
	r.line("Generated: "+now.UTC().Format(time.RFC1123), "", 11, 7)
	r.line(fmt.Sprintf("Total Analyses: %d", len(results)), "", 11, 7)
	r.space(8)

	for i, res := range results {
		r.line(fmt.Sprintf("Analysis #%d", i+1), "B", 14, 8)
		r.line("Timestamp: "+isoTime(res.Timestamp), "", 10, 6)

		r.pdf.SetFont(fontFamily, "", 10)
		for _, l := range wrapText(r.pdf, "Text: "+res.Text, contentWidth, maxTextLines) {
			r.line(l, "", 10, 5)
		}
		r.space(1)

		primary := res.Primary()
		r.line(fmt.Sprintf("Primary Sentiment: %s (%.1f%% confidence)", primary.Label, percent(res.Confidence)), "B", 10, 6)
		r.line(fmt.Sprintf("Positive: %d%% | Negative: %d%% | Neutral: %d%%",
			roundedPercent(res.Score(domain.LabelPositive)),
			roundedPercent(res.Score(domain.LabelNegative)),
			roundedPercent(res.Score(domain.LabelNeutral)),
		), "", 10, 6)

		keywords := "none"
		if len(res.Keywords) > 0 {
			keywords = strings.Join(res.Keywords, ", ")
		}
		r.line("Keywords: "+keywords, "", 10, 6)
		r.space(6)
	}

	return r.pdf
}

func renderPDF(results []domain.AnalysisResult, now time.Time) ([]byte, error) {
	pdf := buildPDF(results, now)

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("failed to write PDF: %w", err)
	}
	return buf.Bytes(), nil
}

// wrapText splits text to fit width using the current font, keeping at most
// maxLines and ending the last kept line with an ellipsis when text was cut.
func wrapText(pdf *fpdf.Fpdf, text string, width float64, maxLines int) []string {
	lines := pdf.SplitText(text, width)
	if len(lines) <= maxLines {
		return lines
	}

	lines = lines[:maxLines]
	last := []rune(strings.TrimRight(lines[maxLines-1], " "))
	for len(last) > 0 && pdf.GetStringWidth(string(last)+ellipsis) > width {
		last = last[:len(last)-1]
	}
	lines[maxLines-1] = string(last) + ellipsis
	return lines
}
