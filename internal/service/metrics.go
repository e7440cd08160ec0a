package service

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/tyemirov/pastebot/pkg/model"
)

const (
	outcomeSuccess = "success"
	outcomeFailure = "failure"
)

// Metrics exposes Prometheus collectors that report upload activity.
type Metrics struct {
	uploads         *prometheus.CounterVec
	uploadDuration  *prometheus.HistogramVec
	fetchedBytes    prometheus.Histogram
	skipped         prometheus.Counter
	orphanedUploads prometheus.Counter
}

// MustNewMetrics constructs a Metrics instance using the provided registerer.
// Registration errors panic so misconfigured registries surface at startup.
// A nil registerer produces unregistered collectors.
func MustNewMetrics(reg prometheus.Registerer) *Metrics {
	uploads := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "pastebot",
			Subsystem: "upload",
			Name:      "attachments_total",
			Help:      "Attachments processed, by content kind and outcome.",
		},
		[]string{"kind", "outcome"},
	)
	uploadDuration := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "pastebot",
			Subsystem: "upload",
			Name:      "duration_seconds",
			Help:      "Time spent fetching and uploading a single attachment.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"kind"},
	)
	fetchedBytes := prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "pastebot",
			Subsystem: "upload",
			Name:      "fetched_bytes",
			Help:      "Size of downloaded attachments.",
			Buckets:   prometheus.ExponentialBuckets(1024, 4, 10),
		},
	)
	skipped := prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "pastebot",
			Subsystem: "upload",
			Name:      "skipped_total",
			Help:      "Attachments skipped because their type is not supported.",
		},
	)
	orphanedUploads := prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "pastebot",
			Subsystem: "upload",
			Name:      "orphaned_total",
			Help:      "Pastes created whose links were discarded because a sibling upload failed.",
		},
	)

	if reg != nil {
		reg.MustRegister(uploads, uploadDuration, fetchedBytes, skipped, orphanedUploads)
	}
	return &Metrics{
		uploads:         uploads,
		uploadDuration:  uploadDuration,
		fetchedBytes:    fetchedBytes,
		skipped:         skipped,
		orphanedUploads: orphanedUploads,
	}
}

func (metrics *Metrics) observeAttachment(kind model.ContentKind, started time.Time, err error) {
	if metrics == nil {
		return
	}
	outcome := outcomeSuccess
	if err != nil {
		outcome = outcomeFailure
	}
	metrics.uploads.WithLabelValues(string(kind), outcome).Inc()
	metrics.uploadDuration.WithLabelValues(string(kind)).Observe(time.Since(started).Seconds())
}

func (metrics *Metrics) observeFetched(byteCount int) {
	if metrics == nil {
		return
	}
	metrics.fetchedBytes.Observe(float64(byteCount))
}

func (metrics *Metrics) observeSkipped(count int) {
	if metrics == nil || count == 0 {
		return
	}
	metrics.skipped.Add(float64(count))
}

func (metrics *Metrics) observeOrphaned(count int) {
	if metrics == nil || count == 0 {
		return
	}
	metrics.orphanedUploads.Add(float64(count))
}
