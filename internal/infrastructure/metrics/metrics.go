package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// HTTPRequestsTotal counts API requests by route and status.
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "procurement_http_requests_total",
			Help: "Total number of API requests",
		},
		[]string{"method", "route", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "procurement_http_request_duration_seconds",
			Help:    "API request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)

	// WorkflowActionsTotal counts engine actions; outcome is "ok" or an error code.
	WorkflowActionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "procurement_workflow_actions_total",
			Help: "Total number of approve/reject/sendback actions",
		},
		[]string{"action", "outcome"},
	)

	RequestsSubmittedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "procurement_requests_submitted_total",
			Help: "Total number of requests that entered an approval workflow",
		},
	)

	EscalationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "procurement_escalations_total",
			Help: "Total number of escalated progress rows",
		},
		[]string{"notify_type"},
	)

	EscalationSweepDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "procurement_escalation_sweep_duration_seconds",
			Help:    "Duration of one escalation sweep",
			Buckets: []float64{0.01, 0.05, 0.1, 0.5, 1, 5, 10, 30},
		},
	)

	NotificationFailuresTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "procurement_notification_failures_total",
			Help: "Total number of events that could not be published",
		},
		[]string{"type"},
	)
)
