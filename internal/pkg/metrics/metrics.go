// Package metrics defines and registers all custom Prometheus metrics for the
// storefront client. It is the single source of truth for metric names,
// labels, and help strings.
//
// Metrics are registered with the default Prometheus registry at package
// initialisation via promauto; the dashboard API exposes them on /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "storefront"

// ── Session metrics ───────────────────────────────────────────────────────────

// SessionResolutionsTotal counts credential resolutions.
// Label:
//   - outcome: resolved_admin, resolved_client, unauthenticated, resolution_failed
var SessionResolutionsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "session_resolutions_total",
		Help:      "Total number of credential resolutions, by outcome.",
	},
	[]string{"outcome"},
)

// SessionResolutionDuration measures the profile round trip of a resolution.
var SessionResolutionDuration = promauto.NewHistogramVec(
	prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "session_resolution_duration_seconds",
		Help:      "Duration of profile fetches performed while resolving a credential.",
		Buckets:   prometheus.DefBuckets,
	},
	[]string{"outcome"},
)

// CredentialOpsTotal counts credential store operations.
// Labels:
//   - op: save, load, clear
//   - result: ok, error
var CredentialOpsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "credential_ops_total",
		Help:      "Total number of credential store operations.",
	},
	[]string{"op", "result"},
)

// ── Push channel metrics ──────────────────────────────────────────────────────

// PushChannelsOpen is 1 while a notification channel is open, 0 otherwise.
var PushChannelsOpen = promauto.NewGauge(
	prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "push_channels_open",
		Help:      "Number of notification channels currently open.",
	},
)

// PushEventsTotal counts order-status events appended to the notification log.
// Label:
//   - status: pending, shipped, delivered, or "other"
var PushEventsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "push_events_total",
		Help:      "Total number of order-status events received on the push channel.",
	},
	[]string{"status"},
)

// PushMalformedTotal counts push payloads dropped because they could not be decoded.
var PushMalformedTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "push_malformed_total",
		Help:      "Total number of malformed push payloads dropped.",
	},
)

// PushReconnectsTotal counts reconnect attempts.
// Label:
//   - result: ok, error, abandoned
var PushReconnectsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "push_reconnects_total",
		Help:      "Total number of push channel reconnect attempts, by result.",
	},
	[]string{"result"},
)

// PushSubscriberDropsTotal counts events not delivered to a slow stream subscriber.
var PushSubscriberDropsTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "push_subscriber_drops_total",
		Help:      "Total number of events dropped for slow notification stream subscribers.",
	},
)

// ── Storefront API metrics ────────────────────────────────────────────────────

// APIRequestsTotal counts calls made to the storefront REST API.
// Labels:
//   - endpoint: login, register, profile, categories, products
//   - code: HTTP status code, or "error" when the request never got a response
var APIRequestsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "api_requests_total",
		Help:      "Total number of storefront API requests, by endpoint and status code.",
	},
	[]string{"endpoint", "code"},
)

// StatusLabel bounds the status label to the known order statuses.
func StatusLabel(status string) string {
	switch status {
	case "pending", "shipped", "delivered":
		return status
	default:
		return "other"
	}
}
