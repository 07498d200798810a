package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics for the keeper.
type Metrics struct {
	// --- Scan cycles ---
	ScanCycles       prometheus.Counter
	ScanAborted      prometheus.Counter // market state unavailable
	ScanDuration     prometheus.Histogram
	ScanCandidates   prometheus.Counter
	ScanSkipped      prometheus.Counter
	ScanFailed       prometheus.Counter
	LiquidatableLast prometheus.Gauge
	LiquidatableSeen prometheus.Counter

	// --- Market snapshot ---
	MarkPrice    prometheus.Gauge
	OpenInterest prometheus.Gauge

	// --- Sinks ---
	JournalWrites *prometheus.CounterVec
	AlertsSent    *prometheus.CounterVec
}

// NewMetrics registers all keeper metrics on the default registry.
func NewMetrics() *Metrics {
	return &Metrics{
		ScanCycles: promauto.NewCounter(prometheus.CounterOpts{
			Name: "perpscope_scan_cycles_total",
			Help: "Completed liquidation scan cycles.",
		}),
		ScanAborted: promauto.NewCounter(prometheus.CounterOpts{
			Name: "perpscope_scan_aborted_total",
			Help: "Cycles aborted because the market state was unavailable.",
		}),
		ScanDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "perpscope_scan_duration_seconds",
			Help:    "Wall-clock duration of one scan cycle.",
			Buckets: prometheus.DefBuckets,
		}),
		ScanCandidates: promauto.NewCounter(prometheus.CounterOpts{
			Name: "perpscope_scan_candidates_total",
			Help: "Candidates with a live position evaluated across all cycles.",
		}),
		ScanSkipped: promauto.NewCounter(prometheus.CounterOpts{
			Name: "perpscope_scan_skipped_total",
			Help: "Candidates skipped (no position or flat).",
		}),
		ScanFailed: promauto.NewCounter(prometheus.CounterOpts{
			Name: "perpscope_scan_failed_total",
			Help: "Candidates excluded from a cycle by fetch or decode failure.",
		}),
		LiquidatableLast: promauto.NewGauge(prometheus.GaugeOpts{
			Name: "perpscope_liquidatable_positions",
			Help: "Liquidatable positions found in the most recent cycle.",
		}),
		LiquidatableSeen: promauto.NewCounter(prometheus.CounterOpts{
			Name: "perpscope_liquidatable_found_total",
			Help: "Liquidation opportunities found across all cycles.",
		}),
		MarkPrice: promauto.NewGauge(prometheus.GaugeOpts{
			Name: "perpscope_mark_price",
			Help: "Mark price from the last market snapshot (fixed-point 1e9).",
		}),
		OpenInterest: promauto.NewGauge(prometheus.GaugeOpts{
			Name: "perpscope_open_interest",
			Help: "Open interest from the last market snapshot (fixed-point 1e9).",
		}),
		JournalWrites: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "perpscope_journal_writes_total",
			Help: "Journal rows written to Postgres.",
		}, []string{"status"}),
		AlertsSent: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "perpscope_alerts_total",
			Help: "Liquidation alerts published to NATS.",
		}, []string{"status"}),
	}
}
