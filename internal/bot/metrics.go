package bot

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics counts command invocations.
type Metrics struct {
	invocations *prometheus.CounterVec
	duration    *prometheus.HistogramVec
}

// MustNewMetrics registers the command collectors with reg. A nil reg produces
// unregistered collectors.
func MustNewMetrics(reg prometheus.Registerer) *Metrics {
	invocations := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "pastebot",
			Subsystem: "command",
			Name:      "invocations_total",
			Help:      "Command invocations, by command and outcome.",
		},
		[]string{"command", "outcome"},
	)
	duration := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "pastebot",
			Subsystem: "command",
			Name:      "duration_seconds",
			Help:      "Time from acknowledgement to final reply.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"command"},
	)
	if reg != nil {
		reg.MustRegister(invocations, duration)
	}
	return &Metrics{invocations: invocations, duration: duration}
}

func (metrics *Metrics) observeCommand(command string, started time.Time, err error) {
	if metrics == nil {
		return
	}
	outcome := "success"
	if err != nil {
		outcome = "failure"
	}
	metrics.invocations.WithLabelValues(command, outcome).Inc()
	metrics.duration.WithLabelValues(command).Observe(time.Since(started).Seconds())
}
