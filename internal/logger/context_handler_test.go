package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"

	"github.com/dempseyco/hr-assistant-go/internal/ctxutil"
)

func TestContextHandlerExtractsIDs(t *testing.T) {
	tests := []struct {
		name       string
		setupCtx   func(context.Context) context.Context
		wantFields map[string]string
		absent     []string
	}{
		{
			name: "all values",
			setupCtx: func(ctx context.Context) context.Context {
				ctx = ctxutil.WithSessionID(ctx, "sess-1")
				ctx = ctxutil.WithEmployeeID(ctx, "EID001")
				ctx = ctxutil.WithRequestID(ctx, "req-abc")
				return ctx
			},
			wantFields: map[string]string{
				"session_id":  "sess-1",
				"employee_id": "EID001",
				"request_id":  "req-abc",
			},
		},
		{
			name: "partial values",
			setupCtx: func(ctx context.Context) context.Context {
				return ctxutil.WithRequestID(ctx, "req-xyz")
			},
			wantFields: map[string]string{"request_id": "req-xyz"},
			absent:     []string{"session_id", "employee_id"},
		},
		{
			name:     "empty context",
			setupCtx: func(ctx context.Context) context.Context { return ctx },
			absent:   []string{"session_id", "employee_id", "request_id"},
		},
		{
			name: "empty strings skipped",
			setupCtx: func(ctx context.Context) context.Context {
				ctx = ctxutil.WithSessionID(ctx, "")
				ctx = ctxutil.WithEmployeeID(ctx, "EID002")
				return ctx
			},
			wantFields: map[string]string{"employee_id": "EID002"},
			absent:     []string{"session_id"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			log := NewWithWriter("info", &buf, Options{})
			ctx := tt.setupCtx(context.Background())

			log.InfoContext(ctx, "turn processed")

			var entry map[string]any
			if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
				t.Fatalf("output is not valid JSON: %v", err)
			}
			for key, want := range tt.wantFields {
				if entry[key] != want {
					t.Errorf("entry[%q] = %v, want %q", key, entry[key], want)
				}
			}
			for _, key := range tt.absent {
				if _, ok := entry[key]; ok {
					t.Errorf("entry[%q] present, want absent", key)
				}
			}
		})
	}
}

func TestContextHandlerPlainCallsUnaffected(t *testing.T) {
	var buf bytes.Buffer
	log := NewWithWriter("info", &buf, Options{})

	log.Info("no context")

	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("output is not valid JSON: %v", err)
	}
	if entry["message"] != "no context" {
		t.Errorf("expected message field, got %v", entry["message"])
	}
	if _, ok := entry["request_id"]; ok {
		t.Error("request_id present without a context value")
	}
}
