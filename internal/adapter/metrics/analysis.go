package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Rejection reasons for AnalysisMetrics.Rejected.
const (
	ReasonEmptyText  = "empty_text"
	ReasonTooLarge   = "too_large"
	ReasonInProgress = "in_progress"
	ReasonCancelled  = "cancelled"
	ReasonStore      = "store_error"
)

// AnalysisMetrics tracks scoring passes and exports.
type AnalysisMetrics struct {
	AnalysesTotal    *prometheus.CounterVec
	AnalysisDuration prometheus.Histogram
	RejectionsTotal  *prometheus.CounterVec
	ExportsTotal     *prometheus.CounterVec
}

func NewAnalysisMetrics(reg prometheus.Registerer) *AnalysisMetrics {
	m := &AnalysisMetrics{
		AnalysesTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "analyses_total",
			Help:      "Total number of completed analyses, by primary label and scorer.",
		}, []string{"label", "scorer"}),
		AnalysisDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "analysis_duration_seconds",
			Help:      "Duration of a scoring pass in seconds, including any configured delay.",
			Buckets:   []float64{0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 2, 5},
		}),
		RejectionsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "analysis_rejections_total",
			Help:      "Total number of analysis requests that did not produce a result, by reason.",
		}, []string{"reason"}),
		ExportsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "exports_total",
			Help:      "Total number of rendered exports, by format.",
		}, []string{"format"}),
	}

	reg.MustRegister(m.AnalysesTotal, m.AnalysisDuration, m.RejectionsTotal, m.ExportsTotal)
	return m
}

func (m *AnalysisMetrics) Completed(label, scorer string, d time.Duration) {
	m.AnalysesTotal.WithLabelValues(label, scorer).Inc()
	m.AnalysisDuration.Observe(d.Seconds())
}

func (m *AnalysisMetrics) Rejected(reason string) {
	m.RejectionsTotal.WithLabelValues(reason).Inc()
}

func (m *AnalysisMetrics) Exported(format string) {
	m.ExportsTotal.WithLabelValues(format).Inc()
}
