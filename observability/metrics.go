package observability

import (
	"net/http"
	"time"

	dto "github.com/prometheus/client_model/go"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// SyncNodesTotal counts merge-join verdicts by provider and verdict
	SyncNodesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "projsys_sync_nodes_total",
			Help: "Total number of synchronized nodes by provider and verdict",
		},
		[]string{"provider", "verdict"}, // verdict: added, removed, updated, unchanged
	)

	// SnapshotApplyDuration tracks how long applying one snapshot takes
	SnapshotApplyDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "projsys_snapshot_apply_duration_seconds",
			Help:    "Time spent applying a snapshot in seconds",
			Buckets: prometheus.ExponentialBuckets(0.0001, 2, 15), // 100µs to 1.6s
		},
		[]string{"provider"},
	)

	// SnapshotFaultsTotal counts snapshots that failed to apply
	SnapshotFaultsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "projsys_snapshot_faults_total",
			Help: "Total number of snapshots that failed to apply",
		},
		[]string{"provider"},
	)

	// LogEventsTotal counts replayed build events by kind
	LogEventsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "projsys_log_events_total",
			Help: "Total number of replayed build events by kind",
		},
		[]string{"kind"},
	)

	// LiveBuilds tracks tracked builds by status
	LiveBuilds = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "projsys_live_builds",
			Help: "Number of tracked builds by status",
		},
		[]string{"status"}, // running, finished, failed
	)

	// TreeParseErrorsTotal counts tree text parse failures by kind
	TreeParseErrorsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "projsys_tree_parse_errors_total",
			Help: "Total number of project tree text parse failures by kind",
		},
		[]string{"kind"},
	)

	// ImportCacheLookupsTotal counts parsed-import cache lookups by result
	ImportCacheLookupsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "projsys_import_cache_lookups_total",
			Help: "Total number of parsed project file cache lookups",
		},
		[]string{"result"}, // hit, miss
	)
)

// RecordSync adds the verdict counts of one synchronization pass.
func RecordSync(provider string, added, removed, updated, unchanged int) {
	SyncNodesTotal.WithLabelValues(provider, "added").Add(float64(added))
	SyncNodesTotal.WithLabelValues(provider, "removed").Add(float64(removed))
	SyncNodesTotal.WithLabelValues(provider, "updated").Add(float64(updated))
	SyncNodesTotal.WithLabelValues(provider, "unchanged").Add(float64(unchanged))
}

// MetricsHandler returns an HTTP handler for Prometheus metrics
func MetricsHandler() http.Handler {
	return promhttp.Handler()
}

// NewMetricsServer returns an HTTP server exposing Prometheus metrics at
// /metrics and, when health is not nil, health checks at /health. The
// caller starts and shuts it down.
func NewMetricsServer(addr string, health *HealthChecker) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", MetricsHandler())
	if health != nil {
		mux.Handle("/health", health.Handler())
	}
	return &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}
}

// GetCounterValue retrieves the current value of a counter metric with the given labels
// This is primarily intended for testing
func GetCounterValue(counter *prometheus.CounterVec, labels ...string) (float64, error) {
	metric, err := counter.GetMetricWithLabelValues(labels...)
	if err != nil {
		return 0, err
	}

	var pb dto.Metric
	if err := metric.Write(&pb); err != nil {
		return 0, err
	}

	if pb.Counter != nil {
		return pb.Counter.GetValue(), nil
	}

	return 0, nil
}

// GetGaugeValue retrieves the current value of a gauge metric with the given labels
func GetGaugeValue(gauge *prometheus.GaugeVec, labels ...string) (float64, error) {
	metric, err := gauge.GetMetricWithLabelValues(labels...)
	if err != nil {
		return 0, err
	}

	var pb dto.Metric
	if err := metric.Write(&pb); err != nil {
		return 0, err
	}

	if pb.Gauge != nil {
		return pb.Gauge.GetValue(), nil
	}

	return 0, nil
}
