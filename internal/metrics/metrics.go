package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	ProcessedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "privacy_processed_total",
			Help: "Total messages processed by sensitivity level and strategy",
		},
		[]string{"level", "strategy"},
	)

	RejectedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "privacy_rejected_total",
			Help: "Total messages rejected by policy",
		},
	)

	AlertsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "privacy_alerts_total",
			Help: "Total alert records emitted",
		},
	)

	AuditWriteFailures = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "privacy_audit_write_failures_total",
			Help: "Total audit events that could not be recorded at all",
		},
	)

	ProcessDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "privacy_process_duration_seconds",
			Help:    "Time spent in the classify/anonymize/record pipeline",
			Buckets: prometheus.DefBuckets,
		},
	)
)

// ObserveProcess records one completed pipeline pass.
func ObserveProcess(level, strategy string, rejected bool, started time.Time) {
	ProcessedTotal.WithLabelValues(level, strategy).Inc()
	if rejected {
		RejectedTotal.Inc()
	}
	ProcessDuration.Observe(time.Since(started).Seconds())
}
