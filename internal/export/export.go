// Package export renders analysis results as downloadable CSV, JSON and PDF artifacts.
package export

import (
	"fmt"
	"math"
	"time"

	"github.com/pscheid92/sentiscope/internal/domain"
)

const (
	isoLayout  = "2006-01-02T15:04:05.000Z"
	dateLayout = "2006-01-02"
)

// Artifact is a rendered export ready to be served or written to disk.
type Artifact struct {
	Filename    string
	ContentType string
	Data        []byte
}

// Filename returns sentiment-analysis-<date>.<ext> for the UTC date of now.
func Filename(format domain.ExportFormat, now time.Time) string {
	return fmt.Sprintf("sentiment-analysis-%s.%s", now.UTC().Format(dateLayout), format)
}

// Render formats results (in the given order) as format.
func Render(format domain.ExportFormat, results []domain.AnalysisResult, now time.Time) (*Artifact, error) {
	if len(results) == 0 {
		return nil, domain.ErrNoResults
	}

	var (
		data        []byte
		contentType string
		err         error
	)
	switch format {
	case domain.FormatCSV:
		data, contentType = renderCSV(results), "text/csv; charset=utf-8"
	case domain.FormatJSON:
		data, err = renderJSON(results, now)
		contentType = "application/json"
	case domain.FormatPDF:
		data, err = renderPDF(results, now)
		contentType = "application/pdf"
	default:
		return nil, fmt.Errorf("%w: %q", domain.ErrUnsupportedFormat, format)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to render %s export: %w", format, err)
	}

	return &Artifact{
		Filename:    Filename(format, now),
		ContentType: contentType,
		Data:        data,
	}, nil
}

func isoTime(t time.Time) string {
	return t.UTC().Format(isoLayout)
}

func percent(score float64) float64 {
	return score * 100
}

func roundedPercent(score float64) int {
	return int(math.Round(score * 100))
}
