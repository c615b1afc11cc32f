package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the Prometheus counters, histograms, and gauges for the
// windrose pipeline.
type Metrics struct {
	FilesAccepted prometheus.Counter
	FilesSkipped  prometheus.Counter
	RowsParsed    prometheus.Counter
	RowsDropped   *prometheus.CounterVec // labels: reason={timestamp,numeric}

	Renders        *prometheus.CounterVec // labels: outcome={ok,no_data,malformed,render_error}
	RenderDuration prometheus.Histogram
	DatasetRows    prometheus.Histogram

	RequestsInFlight     prometheus.Gauge
	SummaryPublishErrors prometheus.Counter
}

// NewMetrics creates and registers all pipeline metrics with the default
// Prometheus registry.
func NewMetrics() *Metrics {
	m := &Metrics{
		FilesAccepted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "windrose",
			Name:      "files_accepted_total",
			Help:      "Total uploaded observation files accepted for processing.",
		}),
		FilesSkipped: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "windrose",
			Name:      "files_skipped_total",
			Help:      "Total files classified non-contributing (no usable wind data).",
		}),
		RowsParsed: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "windrose",
			Name:      "rows_parsed_total",
			Help:      "Total normalized observation rows across all requests.",
		}),
		RowsDropped: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "windrose",
			Name:      "rows_dropped_total",
			Help:      "Rows excluded during normalization, by reason.",
		}, []string{"reason"}),
		Renders: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "windrose",
			Name:      "renders_total",
			Help:      "Render requests by outcome.",
		}, []string{"outcome"}),
		RenderDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "windrose",
			Name:      "render_duration_seconds",
			Help:      "Duration of a complete parse-normalize-aggregate-render request.",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		}),
		DatasetRows: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "windrose",
			Name:      "dataset_rows",
			Help:      "Unified dataset size per request.",
			Buckets:   []float64{10, 100, 500, 1000, 5000, 10000, 50000, 100000},
		}),
		RequestsInFlight: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "windrose",
			Name:      "requests_in_flight",
			Help:      "Render requests currently being processed.",
		}),
		SummaryPublishErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "windrose",
			Name:      "summary_publish_errors_total",
			Help:      "Failed render-summary publishes (request still succeeds).",
		}),
	}

	prometheus.MustRegister(
		m.FilesAccepted,
		m.FilesSkipped,
		m.RowsParsed,
		m.RowsDropped,
		m.Renders,
		m.RenderDuration,
		m.DatasetRows,
		m.RequestsInFlight,
		m.SummaryPublishErrors,
	)

	return m
}

// NewMetricsForTesting creates Metrics with a fresh registry to avoid
// "already registered" panics when called from multiple tests.
func NewMetricsForTesting() *Metrics {
	return &Metrics{
		FilesAccepted:        prometheus.NewCounter(prometheus.CounterOpts{Namespace: "windrose", Name: "files_accepted_total"}),
		FilesSkipped:         prometheus.NewCounter(prometheus.CounterOpts{Namespace: "windrose", Name: "files_skipped_total"}),
		RowsParsed:           prometheus.NewCounter(prometheus.CounterOpts{Namespace: "windrose", Name: "rows_parsed_total"}),
		RowsDropped:          prometheus.NewCounterVec(prometheus.CounterOpts{Namespace: "windrose", Name: "rows_dropped_total"}, []string{"reason"}),
		Renders:              prometheus.NewCounterVec(prometheus.CounterOpts{Namespace: "windrose", Name: "renders_total"}, []string{"outcome"}),
		RenderDuration:       prometheus.NewHistogram(prometheus.HistogramOpts{Namespace: "windrose", Name: "render_duration_seconds"}),
		DatasetRows:          prometheus.NewHistogram(prometheus.HistogramOpts{Namespace: "windrose", Name: "dataset_rows"}),
		RequestsInFlight:     prometheus.NewGauge(prometheus.GaugeOpts{Namespace: "windrose", Name: "requests_in_flight"}),
		SummaryPublishErrors: prometheus.NewCounter(prometheus.CounterOpts{Namespace: "windrose", Name: "summary_publish_errors_total"}),
	}
}
