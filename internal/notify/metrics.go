package notify

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	resultsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "bookmarkd",
			Subsystem: "notify",
			Name:      "results_total",
			Help:      "Per-recipient notification outcomes",
		},
		[]string{"client", "status", "err_kind"},
	)

	clientDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "bookmarkd",
			Subsystem: "notify",
			Name:      "client_duration_seconds",
			Help:      "Time spent in one client's send",
			Buckets:   []float64{.05, .1, .25, .5, 1, 2.5, 5, 10, 30},
		},
		[]string{"client"},
	)

	dispatchesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "bookmarkd",
			Subsystem: "notify",
			Name:      "dispatches_total",
			Help:      "Bookmark events handled by the dispatcher",
		},
		[]string{"outcome"},
	)

	inflightDispatches = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "bookmarkd",
			Subsystem: "notify",
			Name:      "inflight_dispatches",
			Help:      "Detached dispatches not yet completed",
		},
	)

	configSwapsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "bookmarkd",
			Subsystem: "notify",
			Name:      "config_swaps_total",
			Help:      "Routing snapshots installed after startup",
		},
	)
)

func init() {
	prometheus.MustRegister(resultsTotal, clientDuration, dispatchesTotal, inflightDispatches, configSwapsTotal)
}

func observeResults(rs []Result) {
	for _, r := range rs {
		resultsTotal.WithLabelValues(r.Client, string(r.Status), string(r.ErrKind)).Inc()
	}
}
