package metrics

import (
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
)

func TestStoreMetrics_Requests(t *testing.T) {
	reg := prometheus.NewRegistry()
	m, err := NewStoreMetrics(reg)
	if err != nil {
		t.Fatalf("failed to create metrics: %v", err)
	}

	t.Run("counts successes", func(t *testing.T) {
		m.Observe("PutItem", 10*time.Millisecond, nil)
		m.Observe("PutItem", 20*time.Millisecond, nil)

		val := getCounterValue(t, m.Requests, "PutItem", StatusSuccess)
		if val != 2 {
			t.Errorf("expected 2, got %f", val)
		}
	})

	t.Run("counts failures separately", func(t *testing.T) {
		m.Observe("PutItem", time.Millisecond, errors.New("boom"))

		val := getCounterValue(t, m.Requests, "PutItem", StatusError)
		if val != 1 {
			t.Errorf("expected 1, got %f", val)
		}
	})

	t.Run("observes duration", func(t *testing.T) {
		count, sum := getHistogramValues(t, m.Duration, "PutItem")
		if count != 3 {
			t.Errorf("expected count 3, got %d", count)
		}
		if sum <= 0 {
			t.Errorf("expected positive sum, got %f", sum)
		}
	})
}

func TestStoreMetrics_RegisterTwice(t *testing.T) {
	reg := prometheus.NewRegistry()
	first, err := NewStoreMetrics(reg)
	if err != nil {
		t.Fatalf("failed to create metrics: %v", err)
	}
	second, err := NewStoreMetrics(reg)
	if err != nil {
		t.Fatalf("expected second registration to succeed, got %v", err)
	}

	first.Observe("Query", time.Millisecond, nil)
	if val := getCounterValue(t, second.Requests, "Query", StatusSuccess); val != 1 {
		t.Errorf("expected collectors to be shared, got %f", val)
	}
}

func TestStoreMetrics_NilIsNoop(t *testing.T) {
	var m *StoreMetrics
	m.Observe("GetItem", time.Millisecond, nil)
}

func getCounterValue(t *testing.T, counter *prometheus.CounterVec, labels ...string) float64 {
	t.Helper()
	var m dto.Metric
	if err := counter.WithLabelValues(labels...).(prometheus.Metric).Write(&m); err != nil {
		t.Fatalf("failed to read counter: %v", err)
	}
	return m.GetCounter().GetValue()
}

func getHistogramValues(t *testing.T, histogram *prometheus.HistogramVec, labels ...string) (uint64, float64) {
	t.Helper()
	var m dto.Metric
	if err := histogram.WithLabelValues(labels...).(prometheus.Metric).Write(&m); err != nil {
		t.Fatalf("failed to read histogram: %v", err)
	}
	return m.GetHistogram().GetSampleCount(), m.GetHistogram().GetSampleSum()
}
