// Package metrics exports sync and token lifecycle metrics for Prometheus.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "recruitsync"

// Metrics is safe to use through a nil pointer; every recorder is then a no-op.
type Metrics struct {
	registry *prometheus.Registry

	SyncRuns           *prometheus.CounterVec
	CandidatesImported *prometheus.CounterVec
	CandidatesSkipped  *prometheus.CounterVec
	SyncDuration       *prometheus.HistogramVec
	TokenRefreshes     *prometheus.CounterVec
	Hires              prometheus.Counter
}

// New registers all collectors on a private registry, so several instances
// can coexist in tests.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	factory := promauto.With(reg)

	return &Metrics{
		registry: reg,
		SyncRuns: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "sync_runs_total",
			Help:      "Sync runs by platform and terminal status",
		}, []string{"platform", "status"}),
		CandidatesImported: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "candidates_imported_total",
			Help:      "Candidates created by sync",
		}, []string{"platform"}),
		CandidatesSkipped: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "candidates_skipped_total",
			Help:      "Fetched candidates skipped as duplicates",
		}, []string{"platform"}),
		SyncDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "sync_duration_seconds",
			Help:      "Wall time of one sync run",
			Buckets:   []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60},
		}, []string{"platform"}),
		TokenRefreshes: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "token_refresh_total",
			Help:      "OAuth token refresh attempts by result",
		}, []string{"result"}),
		Hires: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "hires_total",
			Help:      "Candidates converted into employees",
		}),
	}
}

func (m *Metrics) RecordSync(platform, status string, created, skipped int, duration time.Duration) {
	if m == nil {
		return
	}
	m.SyncRuns.WithLabelValues(platform, status).Inc()
	m.CandidatesImported.WithLabelValues(platform).Add(float64(created))
	m.CandidatesSkipped.WithLabelValues(platform).Add(float64(skipped))
	m.SyncDuration.WithLabelValues(platform).Observe(duration.Seconds())
}

// RecordTokenRefresh counts one refresh; result is "success" or "failure".
func (m *Metrics) RecordTokenRefresh(result string) {
	if m == nil {
		return
	}
	m.TokenRefreshes.WithLabelValues(result).Inc()
}

func (m *Metrics) RecordHire() {
	if m == nil {
		return
	}
	m.Hires.Inc()
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return promhttp.Handler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
