// Copyright (c) 2025 Archmagece
// SPDX-License-Identifier: MIT

// Package metrics exposes the optional Prometheus metrics surface
// specified as A7: resolver fan-out counts, engine outcome counts by
// action, provider request counts by status, and engine operation
// duration. Grounded on the teacher's cmd/monitoring/prometheus_exporter.go
// registry/CounterVec/HistogramVec shape, narrowed to this module's four
// named series and without the teacher's custom-metric registry or HTTP
// server lifecycle (the CLI owns --metrics-addr and http.ListenAndServe).
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Recorder records the run's metrics. A nil *Recorder is valid and every
// method becomes a no-op, so metrics can be wired in only when
// --metrics-addr is set.
type Recorder struct {
	registry           *prometheus.Registry
	resolverRepos      prometheus.Counter
	engineOutcomes     *prometheus.CounterVec
	providerRequests   *prometheus.CounterVec
	engineOperationDur *prometheus.HistogramVec
}

// New constructs a Recorder with its own registry.
func New() *Recorder {
	reg := prometheus.NewRegistry()

	r := &Recorder{
		registry: reg,
		resolverRepos: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "mgit_resolver_repositories_total",
			Help: "Total repositories returned by the resolver across all providers.",
		}),
		engineOutcomes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "mgit_engine_outcomes_total",
			Help: "Total bulk-engine outcomes by action.",
		}, []string{"action"}),
		providerRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "mgit_provider_requests_total",
			Help: "Total provider API requests by provider and status.",
		}, []string{"provider", "status"}),
		engineOperationDur: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "mgit_engine_operation_duration_seconds",
			Help:    "Duration of individual clone/pull operations.",
			Buckets: prometheus.DefBuckets,
		}, []string{"action"}),
	}

	reg.MustRegister(r.resolverRepos, r.engineOutcomes, r.providerRequests, r.engineOperationDur)
	return r
}

// Handler returns the HTTP handler to serve at --metrics-addr.
func (r *Recorder) Handler() http.Handler {
	if r == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{})
}

// ObserveResolvedRepositories increments the resolver's repository counter.
func (r *Recorder) ObserveResolvedRepositories(n int) {
	if r == nil {
		return
	}
	r.resolverRepos.Add(float64(n))
}

// ObserveEngineOutcome increments the per-action outcome counter.
func (r *Recorder) ObserveEngineOutcome(action string) {
	if r == nil {
		return
	}
	r.engineOutcomes.WithLabelValues(action).Inc()
}

// ObserveProviderRequest increments the per-provider, per-status request
// counter.
func (r *Recorder) ObserveProviderRequest(providerName, status string) {
	if r == nil {
		return
	}
	r.providerRequests.WithLabelValues(providerName, status).Inc()
}

// ObserveOperationDuration records how long one clone/pull operation took.
func (r *Recorder) ObserveOperationDuration(action string, seconds float64) {
	if r == nil {
		return
	}
	r.engineOperationDur.WithLabelValues(action).Observe(seconds)
}
