package metrics

import (
	"net/http"
	"time"

	prom "github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// PrometheusRecorder implements Recorder using Prometheus metrics.
type PrometheusRecorder struct {
	runDuration   prom.Histogram
	stageDuration *prom.HistogramVec
	runOutcome    *prom.CounterVec
	issues        *prom.CounterVec
	docsProcessed prom.Gauge
}

// NewPrometheusRecorder constructs and registers Prometheus metrics on the
// given registry (a fresh one when nil).
func NewPrometheusRecorder(reg *prom.Registry) *PrometheusRecorder {
	if reg == nil {
		reg = prom.NewRegistry()
	}

	pr := &PrometheusRecorder{
		runDuration: prom.NewHistogram(prom.HistogramOpts{
			Namespace: "docexpand",
			Name:      "run_duration_seconds",
			Help:      "Total validation run duration",
			Buckets:   prom.DefBuckets,
		}),
		stageDuration: prom.NewHistogramVec(prom.HistogramOpts{
			Namespace: "docexpand",
			Name:      "stage_duration_seconds",
			Help:      "Duration of individual pipeline stages",
			Buckets:   prom.DefBuckets,
		}, []string{"stage"}),
		runOutcome: prom.NewCounterVec(prom.CounterOpts{
			Namespace: "docexpand",
			Name:      "run_outcomes_total",
			Help:      "Run outcomes by final status",
		}, []string{"outcome"}),
		issues: prom.NewCounterVec(prom.CounterOpts{
			Namespace: "docexpand",
			Name:      "issues_total",
			Help:      "Issues found, by kind",
		}, []string{"kind"}),
		docsProcessed: prom.NewGauge(prom.GaugeOpts{
			Namespace: "docexpand",
			Name:      "documents_processed",
			Help:      "Documents processed in the last run",
		}),
	}
	reg.MustRegister(pr.runDuration, pr.stageDuration, pr.runOutcome, pr.issues, pr.docsProcessed)
	return pr
}

func (pr *PrometheusRecorder) ObserveRunDuration(d time.Duration) {
	pr.runDuration.Observe(d.Seconds())
}

func (pr *PrometheusRecorder) ObserveStageDuration(stage string, d time.Duration) {
	pr.stageDuration.WithLabelValues(stage).Observe(d.Seconds())
}

func (pr *PrometheusRecorder) IncRunOutcome(outcome string) {
	pr.runOutcome.WithLabelValues(outcome).Inc()
}

func (pr *PrometheusRecorder) AddIssues(kind string, n int) {
	if n > 0 {
		pr.issues.WithLabelValues(kind).Add(float64(n))
	}
}

func (pr *PrometheusRecorder) SetDocsProcessed(n int) {
	pr.docsProcessed.Set(float64(n))
}

// HTTPHandler returns an http.Handler serving the registry in Prometheus
// exposition format. Watch mode mounts this on the configured metrics
// address.
func HTTPHandler(reg *prom.Registry) http.Handler {
	return promhttp.HandlerFor(reg, promhttp.HandlerOpts{EnableOpenMetrics: true})
}
