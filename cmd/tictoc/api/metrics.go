package api

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Prometheus counterparts of the stats served at /api/stats.
var (
	lapsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "tictoc_laps_total",
		Help: "Number of laps completed since the process started.",
	})

	lastLapSeconds = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "tictoc_last_lap_seconds",
		Help: "Duration of the most recent lap in seconds.",
	})

	elapsedSeconds = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "tictoc_elapsed_seconds",
		Help: "Accumulated elapsed time across all laps in seconds.",
	})

	wsClients = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "tictoc_websocket_clients",
		Help: "Number of connected WebSocket clients.",
	})
)
