// Package metrics exposes Prometheus collectors for the audit pipeline.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Recorder owns a private registry and the pipeline collectors.
// A nil *Recorder is valid and records nothing.
type Recorder struct {
	registry        *prometheus.Registry
	audits          *prometheus.CounterVec
	providerLatency *prometheus.HistogramVec
	pruned          prometheus.Counter
	rateLimited     prometheus.Counter
	batchSites      *prometheus.CounterVec
}

// New creates a Recorder. Runtime collectors are optional.
func New(enableRuntimeMetrics bool) *Recorder {
	reg := prometheus.NewRegistry()
	if enableRuntimeMetrics {
		reg.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
		reg.MustRegister(collectors.NewGoCollector())
	}

	r := &Recorder{
		registry: reg,
		audits: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "pagepulse",
			Name:      "audits_total",
			Help:      "Audits by strategy and outcome kind.",
		}, []string{"strategy", "outcome"}),
		providerLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "pagepulse",
			Name:      "provider_request_seconds",
			Help:      "Latency of audit provider calls.",
			Buckets:   []float64{1, 2.5, 5, 10, 15, 20, 30},
		}, []string{"strategy"}),
		pruned: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "pagepulse",
			Name:      "runs_pruned_total",
			Help:      "Runs deleted by retention pruning.",
		}),
		rateLimited: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "pagepulse",
			Name:      "rate_limited_total",
			Help:      "Audit requests rejected by the per-user limit.",
		}),
		batchSites: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "pagepulse",
			Name:      "batch_sites_total",
			Help:      "Batch site outcomes by status.",
		}, []string{"status"}),
	}
	reg.MustRegister(r.audits, r.providerLatency, r.pruned, r.rateLimited, r.batchSites)
	return r
}

// ObserveAudit counts one audit with its outcome ("ok" or an error kind).
func (r *Recorder) ObserveAudit(strategy, outcome string) {
	if r == nil {
		return
	}
	r.audits.WithLabelValues(strategy, outcome).Inc()
}

// ObserveProvider records one provider call duration.
func (r *Recorder) ObserveProvider(strategy string, d time.Duration) {
	if r == nil {
		return
	}
	r.providerLatency.WithLabelValues(strategy).Observe(d.Seconds())
}

// AddPruned counts deleted runs.
func (r *Recorder) AddPruned(n int) {
	if r == nil || n <= 0 {
		return
	}
	r.pruned.Add(float64(n))
}

// IncRateLimited counts one rejected request.
func (r *Recorder) IncRateLimited() {
	if r == nil {
		return
	}
	r.rateLimited.Inc()
}

// ObserveBatchSite counts one batch site outcome.
func (r *Recorder) ObserveBatchSite(status string) {
	if r == nil {
		return
	}
	r.batchSites.WithLabelValues(status).Inc()
}

// Registry returns the underlying registry.
func (r *Recorder) Registry() *prometheus.Registry {
	return r.registry
}

// Handler serves the registry in the Prometheus text format.
func (r *Recorder) Handler() http.Handler {
	if r == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{})
}
