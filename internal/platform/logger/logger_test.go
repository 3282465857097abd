package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"strings"
	"tanker-dispatch-service/internal/platform/obs"
	"testing"
	"time"
)

func TestLoggerWritesOneJSONLine(t *testing.T) {
	var buf bytes.Buffer
	l := NewWithWriter("dispatch", &buf)

	ctx := obs.WithRequestID(context.Background(), "req-1")
	l.Info(ctx, "auto_assign_done", "  assigned  ", map[string]any{"created": 2})

	line := strings.TrimSpace(buf.String())
	if strings.Count(line, "\n") != 0 {
		t.Fatalf("expected a single line, got %q", line)
	}

	var e LogEntry
	if err := json.Unmarshal([]byte(line), &e); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if e.Level != "INFO" || e.Service != "dispatch" || e.Action != "auto_assign_done" {
		t.Fatalf("unexpected entry: %+v", e)
	}
	if e.Message != "assigned" {
		t.Fatalf("message = %q, want trimmed", e.Message)
	}
	if e.RequestID != "req-1" {
		t.Fatalf("request_id = %q, want req-1", e.RequestID)
	}
}

func TestLoggerErrorAndDebugToggle(t *testing.T) {
	var buf bytes.Buffer
	l := NewWithWriter("", &buf)
	l.SetDebug(false)

	l.Debug(context.Background(), "", "hidden", nil)
	if buf.Len() != 0 {
		t.Fatalf("debug line written while disabled: %q", buf.String())
	}

	l.Error(context.Background(), "", "boom", errors.New("db down"), nil)

	var e LogEntry
	if err := json.Unmarshal(buf.Bytes(), &e); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if e.Service != "unknown-service" || e.Action != "unspecified" {
		t.Fatalf("defaults not applied: %+v", e)
	}
	if e.Error == nil || e.Error.Msg != "db down" {
		t.Fatalf("error object missing: %+v", e.Error)
	}
}

func TestTimingLine(t *testing.T) {
	var buf bytes.Buffer
	l := NewWithWriter("dispatch", &buf)

	l.Timing(context.Background(), "trips.AssignTanker", 1500*time.Millisecond, errors.New("locked"))

	var e struct {
		Level   string         `json:"level"`
		Action  string         `json:"action"`
		Details map[string]any `json:"details"`
	}
	if err := json.Unmarshal(buf.Bytes(), &e); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if e.Level != "DEBUG" || e.Action != "timing" {
		t.Fatalf("unexpected entry: %+v", e)
	}
	if e.Details["op"] != "trips.AssignTanker" || e.Details["dur_ms"] != float64(1500) || e.Details["err"] != "locked" {
		t.Fatalf("unexpected details: %+v", e.Details)
	}
}
