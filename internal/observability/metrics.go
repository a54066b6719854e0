// Package observability provides Prometheus metrics for monitoring.
package observability

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all Prometheus metrics for the application.
type Metrics struct {
	// Ingestion metrics
	LaunchEventsSeen   prometheus.Counter
	CandidatesIngested prometheus.Counter
	SnapshotErrors     prometheus.Counter

	// Decision metrics
	DecisionsTotal  *prometheus.CounterVec // by tier
	VetoesTotal     *prometheus.CounterVec // by reason
	CacheHits       prometheus.Counter
	RuleFaults      *prometheus.CounterVec // by rule
	DecisionLatency prometheus.Histogram

	// Execution metrics
	ExecutionsTotal   *prometheus.CounterVec // by outcome: won, exhausted, replayed
	BroadcastAttempts *prometheus.CounterVec // by endpoint, outcome
	BroadcastLatency  *prometheus.HistogramVec
	SigningFailures   *prometheus.CounterVec // by kind

	// Health metrics
	LastDecisionAt  prometheus.Gauge
	LastExecutionAt prometheus.Gauge
}

// NewMetrics creates a new Metrics instance with all metrics registered.
func NewMetrics(namespace string) *Metrics {
	if namespace == "" {
		namespace = "solana_sniper"
	}

	return &Metrics{
		LaunchEventsSeen: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "ingestion",
			Name:      "launch_events_seen_total",
			Help:      "Total number of launch-program notifications received",
		}),
		CandidatesIngested: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "ingestion",
			Name:      "candidates_ingested_total",
			Help:      "Total number of candidate observations handed to the pipeline",
		}),
		SnapshotErrors: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "ingestion",
			Name:      "snapshot_errors_total",
			Help:      "Total number of market snapshot fetch failures",
		}),

		DecisionsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "decision",
			Name:      "decisions_total",
			Help:      "Total decisions by tier",
		}, []string{"tier"}),
		VetoesTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "decision",
			Name:      "vetoes_total",
			Help:      "Total safety gate vetoes by reason",
		}, []string{"reason"}),
		CacheHits: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "decision",
			Name:      "cache_hits_total",
			Help:      "Total decisions served from the speed cache",
		}),
		RuleFaults: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "decision",
			Name:      "rule_faults_total",
			Help:      "Total rule evaluation faults by rule name",
		}, []string{"rule"}),
		DecisionLatency: promauto.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "decision",
			Name:      "latency_seconds",
			Help:      "Decision latency from observation to tier",
			Buckets:   prometheus.ExponentialBuckets(0.0001, 2, 14),
		}),

		ExecutionsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "execution",
			Name:      "executions_total",
			Help:      "Total broadcast executions by outcome",
		}, []string{"outcome"}),
		BroadcastAttempts: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "execution",
			Name:      "broadcast_attempts_total",
			Help:      "Total endpoint submission attempts by endpoint and outcome",
		}, []string{"endpoint", "outcome"}),
		BroadcastLatency: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "execution",
			Name:      "broadcast_latency_seconds",
			Help:      "Endpoint submission latency",
			Buckets:   prometheus.ExponentialBuckets(0.001, 2, 14),
		}, []string{"endpoint"}),
		SigningFailures: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "execution",
			Name:      "signing_failures_total",
			Help:      "Total wallet custody signing failures by kind",
		}, []string{"kind"}),

		LastDecisionAt: promauto.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "health",
			Name:      "last_decision_timestamp_seconds",
			Help:      "Unix timestamp of the last decision",
		}),
		LastExecutionAt: promauto.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "health",
			Name:      "last_execution_timestamp_seconds",
			Help:      "Unix timestamp of the last execution",
		}),
	}
}

// Handler returns the /metrics HTTP handler.
func Handler() http.Handler {
	return promhttp.Handler()
}
