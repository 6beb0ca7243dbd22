package metrics

import (
	"regexp"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

var labelSanitizeRe = regexp.MustCompile(`[^a-z0-9_]+`)

// CheckoutMetrics records checkout step transitions and order submission
// outcomes.
type CheckoutMetrics struct {
	steps       *prometheus.CounterVec
	submissions *prometheus.CounterVec
	duration    *prometheus.HistogramVec
}

// NewCheckoutMetrics registers the checkout metrics on the provided registerer.
func NewCheckoutMetrics(reg prometheus.Registerer) *CheckoutMetrics {
	if reg == nil {
		return &CheckoutMetrics{}
	}
	steps := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "checkout_step_transitions_total",
		Help: "Checkout step submissions by step and outcome.",
	}, []string{"step", "outcome"})
	submissions := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "order_submissions_total",
		Help: "Order submission attempts by outcome.",
	}, []string{"outcome"})
	duration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "checkout_step_duration_seconds",
		Help:    "Duration of checkout step handling in seconds.",
		Buckets: prometheus.DefBuckets,
	}, []string{"step"})
	reg.MustRegister(steps, submissions, duration)
	return &CheckoutMetrics{
		steps:       steps,
		submissions: submissions,
		duration:    duration,
	}
}

// IncStep counts one step submission with its outcome.
func (c *CheckoutMetrics) IncStep(step, outcome string) {
	if c == nil || c.steps == nil {
		return
	}
	c.steps.WithLabelValues(normalizeLabel(step), normalizeLabel(outcome)).Inc()
}

// IncSubmission counts one order submission outcome.
func (c *CheckoutMetrics) IncSubmission(outcome string) {
	if c == nil || c.submissions == nil {
		return
	}
	c.submissions.WithLabelValues(normalizeLabel(outcome)).Inc()
}

// ObserveStepDuration records how long a step submission took.
func (c *CheckoutMetrics) ObserveStepDuration(step string, duration time.Duration) {
	if c == nil || c.duration == nil {
		return
	}
	c.duration.WithLabelValues(normalizeLabel(step)).Observe(duration.Seconds())
}

func normalizeLabel(value string) string {
	lowered := strings.ToLower(strings.TrimSpace(value))
	if lowered == "" {
		return "unknown"
	}
	return labelSanitizeRe.ReplaceAllString(lowered, "_")
}
