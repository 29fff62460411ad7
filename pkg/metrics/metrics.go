package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// Connections is the number of live websocket connections.
	Connections = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "signal_relay_connections",
		Help: "Currently registered connections.",
	})

	// Events counts handled inbound events by name. Unknown names are
	// folded into a single "unknown" label to keep cardinality bounded.
	Events = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "signal_relay_events_total",
		Help: "Inbound events handled, by event name.",
	}, []string{"event"})

	// SignalsRelayed counts point-to-point signal payloads forwarded to a
	// live target.
	SignalsRelayed = promauto.NewCounter(prometheus.CounterOpts{
		Name: "signal_relay_signals_relayed_total",
		Help: "Signal payloads forwarded between peers.",
	})

	// DroppedSends counts outbound frames dropped because a connection's
	// send buffer was full.
	DroppedSends = promauto.NewCounter(prometheus.CounterOpts{
		Name: "signal_relay_dropped_sends_total",
		Help: "Outbound frames dropped on slow consumers.",
	})
)

// Handler exposes Prometheus metrics at /metrics
func Handler() http.Handler {
	return promhttp.Handler()
}
