// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/danielhkuo/content-vote/models"
)

const namespace = "content_vote"

// Metrics holds the engine's collectors. A nil *Metrics is valid and records
// nothing, so tests and callers that do not care can pass nil.
type Metrics struct {
	casts       *prometheus.CounterVec
	castErrors  prometheus.Counter
	resultReads *prometheus.CounterVec
	gatherer    prometheus.Gatherer
}

// New registers the collectors on reg. A nil reg gets a fresh registry.
func New(reg *prometheus.Registry) *Metrics {
	if reg == nil {
		reg = prometheus.NewRegistry()
	}

	m := &Metrics{
		casts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "vote_casts_total",
			Help:      "Vote cast attempts by result and reason code.",
		}, []string{"result", "reason"}),
		castErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "vote_cast_errors_total",
			Help:      "Vote cast attempts that failed on the store.",
		}),
		resultReads: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "result_reads_total",
			Help:      "Results reads by outcome.",
		}, []string{"outcome"}),
		gatherer: reg,
	}
	reg.MustRegister(m.casts, m.castErrors, m.resultReads)
	return m
}

// ObserveCast counts a completed cast. result is one of accepted, changed or
// rejected.
func (m *Metrics) ObserveCast(accepted, changed bool, reason models.ReasonCode) {
	if m == nil {
		return
	}
	switch {
	case accepted && changed:
		m.casts.WithLabelValues("changed", "").Inc()
	case accepted:
		m.casts.WithLabelValues("accepted", "").Inc()
	default:
		m.casts.WithLabelValues("rejected", reason.String()).Inc()
	}
}

func (m *Metrics) ObserveCastError() {
	if m == nil {
		return
	}
	m.castErrors.Inc()
}

// ObserveResults counts a results read; err is the read's error, if any.
func (m *Metrics) ObserveResults(err error) {
	if m == nil {
		return
	}
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	m.resultReads.WithLabelValues(outcome).Inc()
}

// Handler serves the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.gatherer, promhttp.HandlerOpts{})
}
