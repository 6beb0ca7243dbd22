package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestCheckoutMetricsCounts(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewCheckoutMetrics(reg)

	m.IncStep("Customer", "ok")
	m.IncStep("customer", "ok")
	m.IncStep("shipping", "rejected")
	m.IncSubmission("partial")
	m.ObserveStepDuration("payment", 120*time.Millisecond)

	if got := testutil.ToFloat64(m.steps.WithLabelValues("customer", "ok")); got != 2 {
		t.Fatalf("expected normalized customer/ok count 2, got %v", got)
	}
	if got := testutil.ToFloat64(m.steps.WithLabelValues("shipping", "rejected")); got != 1 {
		t.Fatalf("expected shipping/rejected count 1, got %v", got)
	}
	if got := testutil.ToFloat64(m.submissions.WithLabelValues("partial")); got != 1 {
		t.Fatalf("expected partial submission count 1, got %v", got)
	}
}

func TestCheckoutMetricsNilSafe(t *testing.T) {
	var m *CheckoutMetrics
	m.IncStep("customer", "ok")
	m.IncSubmission("ok")
	m.ObserveStepDuration("payment", time.Second)

	empty := NewCheckoutMetrics(nil)
	empty.IncStep("customer", "ok")
}
