// Package metrics provides Prometheus instrumentation for the messaging
// core: message throughput, notification dispatch outcomes and presence
// signaling.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// MessagesTotal counts messages appended to conversations.
	MessagesTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "messaging_messages_total",
		Help: "Total number of messages appended",
	})

	// NotificationsTotal counts notification dispatch outcomes, labeled
	// by result: "published" or "dropped".
	NotificationsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "messaging_notifications_total",
		Help: "Total number of notification dispatch attempts",
	}, []string{"result"})

	// TypingSignalsTotal counts typing signals processed.
	TypingSignalsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "messaging_typing_signals_total",
		Help: "Total number of typing signals processed",
	})

	// ChatPublishFailures counts chat event publishes that failed after
	// the message was already persisted.
	ChatPublishFailures = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "messaging_chat_publish_failures_total",
		Help: "Chat event publishes that failed post-persistence",
	})
)

// Register registers all collectors with the default registry.
func Register() {
	prometheus.MustRegister(
		MessagesTotal,
		NotificationsTotal,
		TypingSignalsTotal,
		ChatPublishFailures,
	)
}

// Handler returns the HTTP handler serving the metrics endpoint.
func Handler() http.Handler {
	return promhttp.Handler()
}
