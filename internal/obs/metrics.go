package obs

import (
	"context"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"ifad/internal/core"
	"ifad/pkg/gaf"
	"ifad/pkg/runs"
)

var (
	queryTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "ifad_query_total",
		Help: "Total filter queries by mode and outcome",
	}, []string{"mode", "outcome"})

	queryDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "ifad_query_duration_seconds",
		Help:    "Filter query duration in seconds",
		Buckets: prometheus.ExponentialBuckets(0.0001, 2, 12), // 0.1ms to ~400ms
	}, []string{"mode"})

	operationTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "ifad_operation_total",
		Help: "Total archive operations by name and outcome",
	}, []string{"operation", "outcome"})

	operationDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "ifad_operation_duration_seconds",
		Help:    "Archive operation duration in seconds",
		Buckets: prometheus.ExponentialBuckets(0.0005, 2, 10), // 0.5ms to ~0.5s
	}, []string{"operation"})

	exportTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "ifad_export_total",
		Help: "Total async exports by format and outcome",
	}, []string{"format", "outcome"})
)

var _ core.MetricsRecorder = (*MetricsRecorder)(nil)

// MetricsRecorder implements core.MetricsRecorder on the Prometheus
// collectors above.
type MetricsRecorder struct{}

// NewMetricsRecorder returns a recorder feeding the process-wide registry.
func NewMetricsRecorder() *MetricsRecorder { return &MetricsRecorder{} }

// Observe records an archive operation outcome.
func (MetricsRecorder) Observe(_ context.Context, operation string, success bool, duration time.Duration) {
	operationTotal.WithLabelValues(operation, outcomeLabel(success)).Inc()
	operationDuration.WithLabelValues(operation).Observe(duration.Seconds())
}

// ObserveQuery records one filter query evaluation.
func ObserveQuery(mode gaf.Mode, err error, duration time.Duration) {
	queryTotal.WithLabelValues(string(mode), outcomeLabel(err == nil)).Inc()
	queryDuration.WithLabelValues(string(mode)).Observe(duration.Seconds())
}

// ObserveExport records one completed async export.
func ObserveExport(format runs.OutputFormat, err error) {
	exportTotal.WithLabelValues(string(format), outcomeLabel(err == nil)).Inc()
}

func outcomeLabel(success bool) string {
	if success {
		return "success"
	}
	return "error"
}

// MetricsHandler returns the Prometheus scrape handler for /metrics.
func MetricsHandler() http.Handler {
	return promhttp.Handler()
}
