package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	OutcomeProcessed = "processed"
	OutcomeDuplicate = "duplicate"
	OutcomeIgnored   = "ignored"
	OutcomeFailed    = "failed"
	OutcomeRejected  = "rejected"
	OutcomeOK        = "ok"
	OutcomeError     = "error"
)

var (
	WebhookEventsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "billing_webhook_events_total",
			Help: "Webhook deliveries by event type and outcome",
		},
		[]string{"type", "outcome"},
	)

	WebhookDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "billing_webhook_duration_seconds",
			Help:    "Webhook handling latency",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"type"},
	)

	GatewayActionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "billing_gateway_actions_total",
			Help: "User-initiated billing actions by outcome",
		},
		[]string{"action", "outcome"},
	)
)
