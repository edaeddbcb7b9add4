package metrics

import "github.com/prometheus/client_golang/prometheus"

func init() {
	register(
		updatesReceivedTotal,
		joinPromptsTotal,
		rateLimitTriggeredTotal,
		staleCallbacksTotal,
	)
}

var (
	updatesReceivedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "relay_updates_received_total",
			Help: "Incoming Telegram updates by kind (message/callback).",
		},
		[]string{"kind"},
	)

	joinPromptsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "relay_join_prompts_total",
			Help: "Times a non-member was prompted to join the channel.",
		},
	)

	rateLimitTriggeredTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "relay_rate_limit_triggered_total",
			Help: "Times a chat was rate-limited.",
		},
	)

	staleCallbacksTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "relay_stale_callbacks_total",
			Help: "Callbacks ignored because they no longer match the session.",
		},
	)
)

func IncUpdateReceived(kind string) {
	updatesReceivedTotal.WithLabelValues(norm(kind)).Inc()
}

func IncJoinPrompt() { joinPromptsTotal.Inc() }

func IncRateLimitTriggered() { rateLimitTriggeredTotal.Inc() }

func IncStaleCallback() { staleCallbacksTotal.Inc() }
