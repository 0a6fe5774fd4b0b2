package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestNew(t *testing.T) {
	registry := prometheus.NewRegistry()
	m := New(registry)

	if m == nil {
		t.Fatal("New() returned nil")
	}

	// Verify all metric fields are initialized
	if m.ChatRequestsTotal == nil {
		t.Error("ChatRequestsTotal is nil")
	}
	if m.ChatDurationSeconds == nil {
		t.Error("ChatDurationSeconds is nil")
	}
	if m.IntentMatchesTotal == nil {
		t.Error("IntentMatchesTotal is nil")
	}
	if m.MutationsTotal == nil {
		t.Error("MutationsTotal is nil")
	}
	if m.PendingActionsTotal == nil {
		t.Error("PendingActionsTotal is nil")
	}
	if m.PendingActionReplacements == nil {
		t.Error("PendingActionReplacements is nil")
	}
	if m.EscalationsTotal == nil {
		t.Error("EscalationsTotal is nil")
	}
	if m.HTTPErrorsTotal == nil {
		t.Error("HTTPErrorsTotal is nil")
	}
}

func TestRecordChat(t *testing.T) {
	registry := prometheus.NewRegistry()
	m := New(registry)

	m.RecordChat("salary", "success", 0.002)
	m.RecordChat("salary", "success", 0.004)
	m.RecordChat("unknown", "error", 0.001)

	got := testutil.ToFloat64(m.ChatRequestsTotal.WithLabelValues("salary", "success"))
	if got != 2 {
		t.Errorf("expected 2 salary/success requests, got %v", got)
	}
}

func TestRecordCounters(t *testing.T) {
	registry := prometheus.NewRegistry()
	m := New(registry)

	// Should not panic
	m.RecordIntentMatch("hybrid")
	m.RecordMutation("town", "applied")
	m.RecordMutation("salary", "rejected")
	m.RecordPendingAction("location_update", "created")
	m.RecordPendingAction("email_draft", "canceled")
	m.RecordPendingReplacement()
	m.RecordEscalation("policy", "drafted")
	m.RecordEscalation("unknown", "sent")
	m.RecordHTTPError("bad_request", "/api/ask")

	if got := testutil.ToFloat64(m.PendingActionReplacements); got != 1 {
		t.Errorf("expected 1 replacement, got %v", got)
	}
	if got := testutil.ToFloat64(m.MutationsTotal.WithLabelValues("town", "applied")); got != 1 {
		t.Errorf("expected 1 applied town mutation, got %v", got)
	}
}
