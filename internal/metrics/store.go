// Package metrics provides Prometheus metrics for the licenses store.
package metrics

import (
	"errors"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "licenses"

// Status label values.
const (
	StatusSuccess = "success"
	StatusError   = "error"
)

// StoreMetrics records every call the directory access layer makes to the store.
type StoreMetrics struct {
	Requests *prometheus.CounterVec
	Duration *prometheus.HistogramVec
}

// NewStoreMetrics creates the store metrics and registers them with reg.
// Registering twice against the same registry reuses the existing collectors.
func NewStoreMetrics(reg prometheus.Registerer) (*StoreMetrics, error) {
	requests := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "store",
		Name:      "requests_total",
		Help:      "Store calls by operation and outcome.",
	}, []string{"operation", "status"})

	duration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Subsystem: "store",
		Name:      "request_duration_seconds",
		Help:      "Store call latency by operation.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"operation"})

	var err error
	if requests, err = register(reg, requests); err != nil {
		return nil, err
	}
	if duration, err = register(reg, duration); err != nil {
		return nil, err
	}

	return &StoreMetrics{
		Requests: requests,
		Duration: duration,
	}, nil
}

// Observe records the outcome of a single store call. A nil receiver is a no-op.
func (m *StoreMetrics) Observe(operation string, elapsed time.Duration, err error) {
	if m == nil {
		return
	}
	status := StatusSuccess
	if err != nil {
		status = StatusError
	}
	m.Requests.WithLabelValues(operation, status).Inc()
	m.Duration.WithLabelValues(operation).Observe(elapsed.Seconds())
}

func register[C prometheus.Collector](reg prometheus.Registerer, c C) (C, error) {
	if err := reg.Register(c); err != nil {
		var are prometheus.AlreadyRegisteredError
		if errors.As(err, &are) {
			if existing, ok := are.ExistingCollector.(C); ok {
				return existing, nil
			}
		}
		return c, err
	}
	return c, nil
}
