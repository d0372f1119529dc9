package engine

import (
	"github.com/prometheus/client_golang/prometheus"
)

const metricsNamespace = "malicek"

var (
	pollsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: metricsNamespace,
		Subsystem: "poller",
		Name:      "polls_total",
		Help:      "Room polls by result: ok, transient, stale, session_invalid, access_denied.",
	}, []string{"result"})

	pollSeconds = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: metricsNamespace,
		Subsystem: "poller",
		Name:      "fetch_seconds",
		Help:      "Room poll round trip time.",
		Buckets:   []float64{.05, .1, .25, .5, 1, 2.5, 5},
	})

	messagesTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: metricsNamespace,
		Subsystem: "poller",
		Name:      "messages_total",
		Help:      "New messages delivered to sinks.",
	})

	transitionsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: metricsNamespace,
		Subsystem: "controller",
		Name:      "transitions_total",
		Help:      "Lifecycle state transitions by target state.",
	}, []string{"state"})

	forcedLogoutsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: metricsNamespace,
		Subsystem: "controller",
		Name:      "forced_logouts_total",
		Help:      "Logouts caused by authorization failures.",
	})

	keepAlivesTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: metricsNamespace,
		Subsystem: "controller",
		Name:      "keepalives_total",
		Help:      "Keep-alive posts by outcome.",
	}, []string{"result"})
)

func init() {
	prometheus.MustRegister(pollsTotal, pollSeconds, messagesTotal, transitionsTotal, forcedLogoutsTotal, keepAlivesTotal)
}
