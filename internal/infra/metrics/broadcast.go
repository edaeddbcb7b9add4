package metrics

import "github.com/prometheus/client_golang/prometheus"

func init() {
	register(
		broadcastsTotal,
		broadcastDeliveriesTotal,
		sessionsSweptTotal,
	)
}

var (
	broadcastsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "relay_broadcasts_total",
			Help: "Broadcast dispatches by content kind.",
		},
		[]string{"kind"},
	)

	broadcastDeliveriesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "relay_broadcast_deliveries_total",
			Help: "Per-recipient broadcast deliveries by outcome.",
		},
		[]string{"outcome"},
	)

	sessionsSweptTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "relay_sessions_swept_total",
			Help: "Stale sessions removed by the janitor.",
		},
	)
)

func IncBroadcast(kind string) { broadcastsTotal.WithLabelValues(norm(kind)).Inc() }

func IncDelivery(ok bool) {
	outcome := "delivered"
	if !ok {
		outcome = "failed"
	}
	broadcastDeliveriesTotal.WithLabelValues(outcome).Inc()
}

func AddSessionsSwept(n int) { sessionsSweptTotal.Add(float64(n)) }
