package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	once sync.Once

	// CycleDuration observes one full analyze-and-maybe-trade cycle.
	CycleDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "trading",
			Subsystem: "engine",
			Name:      "cycle_seconds",
			Help:      "Duration of bot analysis cycles",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"bot_id"},
	)

	// SignalsTotal counts signals emitted per strategy and action.
	SignalsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "trading",
			Subsystem: "engine",
			Name:      "signals_total",
			Help:      "Signals generated by strategy and action",
		},
		[]string{"strategy", "action"},
	)

	// TradesTotal counts executed and skipped trades.
	TradesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "trading",
			Subsystem: "engine",
			Name:      "trades_total",
			Help:      "Trade attempts by result",
		},
		[]string{"result"}, // executed, skipped, failed
	)

	// CycleErrors counts failed cycles by reason.
	CycleErrors = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "trading",
			Subsystem: "engine",
			Name:      "cycle_errors_total",
			Help:      "Cycle failures by reason",
		},
		[]string{"reason"}, // market_data, execution, config
	)

	// LearningEntries gauges the learning store's aggregate bucket count.
	LearningEntries = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "trading",
			Subsystem: "learning",
			Name:      "store_entries",
			Help:      "Aggregate buckets currently held by the learning store",
		},
	)
)

// Register installs the engine collectors into the default registry.
// Safe to call more than once.
func Register() {
	once.Do(func() {
		prometheus.MustRegister(CycleDuration, SignalsTotal, TradesTotal, CycleErrors, LearningEntries)
	})
}
