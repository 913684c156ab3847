// Package metrics регистрирует счётчики Prometheus, отдаваемые на /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	OverlayTransitions = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "pickleball",
		Subsystem: "display",
		Name:      "overlay_transitions_total",
		Help:      "Number of scoreboard overlay mode transitions.",
	}, []string{"mode"})

	TimeoutClears = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "pickleball",
		Subsystem: "display",
		Name:      "timeout_clears_total",
		Help:      "Best-effort timeout clear writes issued after a countdown expires.",
	}, []string{"result"})

	BroadcastsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "pickleball",
		Subsystem: "display",
		Name:      "broadcasts_total",
		Help:      "Scoreboard state snapshots broadcast to websocket rooms.",
	})

	ConnectedDisplays = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "pickleball",
		Subsystem: "display",
		Name:      "connected_displays",
		Help:      "Currently connected scoreboard websocket clients.",
	})
)
