package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"testing"
	"time"
)

func TestJSONOutputFields(t *testing.T) {
	var buf bytes.Buffer
	log := NewWithWriter("info", &buf, Options{})

	log.WithModule("dialog").WithField("intent", "salary").Info("answered question")

	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("output is not valid JSON: %v", err)
	}

	if entry["message"] != "answered question" {
		t.Errorf("expected message field, got %v", entry["message"])
	}
	if entry["level"] != "info" {
		t.Errorf("expected lowercase level, got %v", entry["level"])
	}
	if entry["module"] != "dialog" {
		t.Errorf("expected module field, got %v", entry["module"])
	}
	if entry["intent"] != "salary" {
		t.Errorf("expected intent field, got %v", entry["intent"])
	}
	if _, ok := entry["timestamp"]; !ok {
		t.Error("expected timestamp field")
	}
}

func TestWarnLevelRename(t *testing.T) {
	var buf bytes.Buffer
	log := NewWithWriter("debug", &buf, Options{})

	log.Warnf("slow query took %dms", 250)

	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("output is not valid JSON: %v", err)
	}
	if entry["level"] != "warning" {
		t.Errorf("expected 'warning' level, got %v", entry["level"])
	}
}

func TestLevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	log := NewWithWriter("error", &buf, Options{})

	log.Info("should be suppressed")
	if buf.Len() != 0 {
		t.Errorf("info record should be filtered at error level, got %q", buf.String())
	}

	log.Error("should appear")
	if buf.Len() == 0 {
		t.Error("error record should be emitted")
	}
}

type countingHandler struct {
	count int
}

func (h *countingHandler) Enabled(context.Context, slog.Level) bool { return true }
func (h *countingHandler) Handle(context.Context, slog.Record) error {
	h.count++
	return nil
}
func (h *countingHandler) WithAttrs([]slog.Attr) slog.Handler { return h }
func (h *countingHandler) WithGroup(string) slog.Handler      { return h }

func TestMultiHandlerFanOut(t *testing.T) {
	a := &countingHandler{}
	b := &countingHandler{}
	multi := NewMultiHandler(a, nil, b)

	rec := slog.NewRecord(time.Now(), slog.LevelInfo, "hello", 0)
	if err := multi.Handle(context.Background(), rec); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if a.count != 1 || b.count != 1 {
		t.Errorf("expected both handlers to receive the record, got %d and %d", a.count, b.count)
	}
}

func TestAsyncHandlerFlushOnShutdown(t *testing.T) {
	inner := &countingHandler{}
	async := NewAsyncHandler(inner, AsyncOptions{BufferSize: 8})

	rec := slog.NewRecord(time.Now(), slog.LevelInfo, "queued", 0)
	for i := 0; i < 3; i++ {
		if err := async.Handle(context.Background(), rec); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}

	if err := async.Shutdown(context.Background()); err != nil {
		t.Fatalf("shutdown failed: %v", err)
	}
	if inner.count != 3 {
		t.Errorf("expected 3 records delivered after flush, got %d", inner.count)
	}

	// Records after shutdown are silently discarded.
	if err := async.Handle(context.Background(), rec); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if inner.count != 3 {
		t.Errorf("expected no delivery after shutdown, got %d", inner.count)
	}
}
