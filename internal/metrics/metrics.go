package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics
type Metrics struct {
	// Chat metrics
	ChatRequestsTotal   *prometheus.CounterVec
	ChatDurationSeconds *prometheus.HistogramVec

	// Intent metrics
	IntentMatchesTotal *prometheus.CounterVec

	// Mutation metrics
	MutationsTotal *prometheus.CounterVec

	// Pending-action metrics
	PendingActionsTotal       *prometheus.CounterVec
	PendingActionReplacements prometheus.Counter

	// Escalation metrics
	EscalationsTotal *prometheus.CounterVec

	// HTTP metrics
	HTTPErrorsTotal *prometheus.CounterVec
}

// New creates a new Metrics instance with all metrics registered
func New(registry *prometheus.Registry) *Metrics {
	m := &Metrics{
		ChatRequestsTotal: promauto.With(registry).NewCounterVec(
			prometheus.CounterOpts{
				Name: "hrbot_chat_requests_total",
				Help: "Total number of chat requests by resolved intent and status",
			},
			[]string{"intent", "status"}, // status: success, error
		),

		ChatDurationSeconds: promauto.With(registry).NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "hrbot_chat_duration_seconds",
				Help:    "Chat request duration in seconds by resolved intent",
				Buckets: []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 2},
			},
			[]string{"intent"},
		),

		IntentMatchesTotal: promauto.With(registry).NewCounterVec(
			prometheus.CounterOpts{
				Name: "hrbot_intent_matches_total",
				Help: "Total number of grammar matches by intent",
			},
			[]string{"intent"},
		),

		MutationsTotal: promauto.With(registry).NewCounterVec(
			prometheus.CounterOpts{
				Name: "hrbot_record_mutations_total",
				Help: "Total number of record mutations by field and status",
			},
			[]string{"field", "status"}, // status: applied, rejected, conflict
		),

		PendingActionsTotal: promauto.With(registry).NewCounterVec(
			prometheus.CounterOpts{
				Name: "hrbot_pending_actions_total",
				Help: "Total number of pending actions by kind and outcome",
			},
			[]string{"kind", "outcome"}, // kind: location_update, email_draft; outcome: created, resolved, canceled
		),

		PendingActionReplacements: promauto.With(registry).NewCounter(
			prometheus.CounterOpts{
				Name: "hrbot_pending_action_replacements_total",
				Help: "Total number of pending actions discarded by last-write-wins replacement",
			},
		),

		EscalationsTotal: promauto.With(registry).NewCounterVec(
			prometheus.CounterOpts{
				Name: "hrbot_escalations_total",
				Help: "Total number of HR escalations by trigger and outcome",
			},
			[]string{"trigger", "outcome"}, // trigger: policy, unknown, hybrid; outcome: drafted, sent, failed, canceled
		),

		HTTPErrorsTotal: promauto.With(registry).NewCounterVec(
			prometheus.CounterOpts{
				Name: "hrbot_http_errors_total",
				Help: "Total HTTP errors by type and route",
			},
			[]string{"error_type", "route"},
		),
	}

	return m
}

// RecordChat records a chat request with its resolved intent, status and duration.
func (m *Metrics) RecordChat(intent, status string, durationSeconds float64) {
	m.ChatRequestsTotal.WithLabelValues(intent, status).Inc()
	m.ChatDurationSeconds.WithLabelValues(intent).Observe(durationSeconds)
}

// RecordIntentMatch records a grammar match.
func (m *Metrics) RecordIntentMatch(intent string) {
	m.IntentMatchesTotal.WithLabelValues(intent).Inc()
}

// RecordMutation records a record mutation attempt.
func (m *Metrics) RecordMutation(field, status string) {
	m.MutationsTotal.WithLabelValues(field, status).Inc()
}

// RecordPendingAction records a pending-action lifecycle event.
func (m *Metrics) RecordPendingAction(kind, outcome string) {
	m.PendingActionsTotal.WithLabelValues(kind, outcome).Inc()
}

// RecordPendingReplacement records a last-write-wins replacement.
func (m *Metrics) RecordPendingReplacement() {
	m.PendingActionReplacements.Inc()
}

// RecordEscalation records an escalation lifecycle event.
func (m *Metrics) RecordEscalation(trigger, outcome string) {
	m.EscalationsTotal.WithLabelValues(trigger, outcome).Inc()
}

// RecordHTTPError records an HTTP-level error.
func (m *Metrics) RecordHTTPError(errorType, route string) {
	m.HTTPErrorsTotal.WithLabelValues(errorType, route).Inc()
}
