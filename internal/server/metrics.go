package server

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const metricsNamespace = "chat"

// Metrics groups the relay counters. Each Hub owns its own registry so tests
// can run several hubs side by side.
type Metrics struct {
	registry *prometheus.Registry

	Connections     *prometheus.CounterVec
	Sessions        prometheus.Gauge
	Registrations   *prometheus.CounterVec
	Lines           *prometheus.CounterVec
	Messages        prometheus.Counter
	Reactions       prometheus.Counter
	FileTransfers   *prometheus.CounterVec
	SlowConsumers   prometheus.Counter
	RateLimited     prometheus.Counter
	RejectedLines   *prometheus.CounterVec
	PrunedReactions prometheus.Counter
}

func NewMetrics() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		Connections: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "connections_total",
			Help:      "Accepted connections by transport.",
		}, []string{"transport"}),
		Sessions: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: metricsNamespace,
			Name:      "sessions",
			Help:      "Currently registered sessions.",
		}),
		Registrations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "registrations_total",
			Help:      "Registration attempts by result.",
		}, []string{"result"}),
		Lines: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "lines_total",
			Help:      "Inbound lines routed, by command.",
		}, []string{"command"}),
		Messages: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "messages_total",
			Help:      "Chat messages stored in history.",
		}),
		Reactions: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "reactions_total",
			Help:      "Reactions newly added to the ledger.",
		}),
		FileTransfers: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "file_transfers_total",
			Help:      "Relayed file transfers by sniffed media type.",
		}, []string{"mime"}),
		SlowConsumers: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "slow_consumer_disconnects_total",
			Help:      "Sessions disconnected because their outbound queue was full.",
		}),
		RateLimited: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "rate_limited_lines_total",
			Help:      "Inbound lines discarded by the rate limiter.",
		}),
		RejectedLines: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "rejected_lines_total",
			Help:      "Inbound lines dropped by the router, by reason.",
		}, []string{"reason"}),
		PrunedReactions: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "pruned_reactions_total",
			Help:      "Messages whose reactions were dropped after history eviction.",
		}),
	}
	m.registry.MustRegister(
		collectors.NewGoCollector(),
		m.Connections, m.Sessions, m.Registrations, m.Lines, m.Messages, m.Reactions,
		m.FileTransfers, m.SlowConsumers, m.RateLimited, m.RejectedLines, m.PrunedReactions,
	)
	return m
}

// Handler serves the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
