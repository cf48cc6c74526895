package monitoring

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the crawl counters. A nil *Metrics is valid and records nothing.
type Metrics struct {
	PagesTotal          *prometheus.CounterVec
	ErrorsTotal         *prometheus.CounterVec
	RecordsTotal        prometheus.Counter
	ActingFallbackTotal prometheus.Counter
	FetchDuration       *prometheus.HistogramVec
}

func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		PagesTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "crawler_pages_total",
			Help: "Pages handled, by stage and outcome.",
		}, []string{"stage", "outcome"}),
		ErrorsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "crawler_errors_total",
			Help: "The total number of errors encountered",
		}, []string{"type"}), // e.g. fetch_failed, structure_not_found, sink_failed
		RecordsTotal: factory.NewCounter(prometheus.CounterOpts{
			Name: "crawler_credit_records_total",
			Help: "Acting credit records extracted.",
		}),
		ActingFallbackTotal: factory.NewCounter(prometheus.CounterOpts{
			Name: "crawler_acting_table_fallback_total",
			Help: "Actor pages where no heading read Acting and the first table was used.",
		}),
		FetchDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "crawler_fetch_duration_seconds",
			Help:    "Duration of page fetches.",
			Buckets: []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		}, []string{"stage"}),
	}
}

func (m *Metrics) IncPages(stage, outcome string) {
	if m == nil {
		return
	}
	m.PagesTotal.WithLabelValues(stage, outcome).Inc()
}

func (m *Metrics) IncErrors(errorType string) {
	if m == nil {
		return
	}
	m.ErrorsTotal.WithLabelValues(errorType).Inc()
}

func (m *Metrics) AddRecords(n int) {
	if m == nil {
		return
	}
	m.RecordsTotal.Add(float64(n))
}

func (m *Metrics) IncActingFallback() {
	if m == nil {
		return
	}
	m.ActingFallbackTotal.Inc()
}

func (m *Metrics) ObserveFetch(stage string, d time.Duration) {
	if m == nil {
		return
	}
	m.FetchDuration.WithLabelValues(stage).Observe(d.Seconds())
}
