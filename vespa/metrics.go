// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Xyne Contributors

package vespa

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics contains Prometheus metrics for the transport client. A nil
// *Metrics is valid and records nothing, so instrumentation stays
// optional for embedders.
type Metrics struct {
	RequestsTotal   *prometheus.CounterVec
	RequestDuration *prometheus.HistogramVec
}

// NewMetrics creates and registers transport metrics.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		RequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "vespa_client_requests_total",
				Help: "Total number of Vespa API requests by operation and status",
			},
			[]string{"operation", "status"},
		),
		RequestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "vespa_client_request_duration_seconds",
				Help:    "Vespa API request duration by operation",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"operation"},
		),
	}
	reg.MustRegister(m.RequestsTotal)
	reg.MustRegister(m.RequestDuration)
	return m
}

// observe records one request outcome.
func (m *Metrics) observe(operation string, status int, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.RequestsTotal.WithLabelValues(operation, strconv.Itoa(status)).Inc()
	m.RequestDuration.WithLabelValues(operation).Observe(elapsed.Seconds())
}
