package log

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"net/http/httptest"
	"strings"
	"testing"
)

func newBufferLogger(buf *bytes.Buffer, component string) *Logger {
	return New(Config{Level: slog.LevelDebug, Component: component, Output: buf})
}

func TestLoggerTagsComponent(t *testing.T) {
	var buf bytes.Buffer
	logger := newBufferLogger(&buf, ComponentLedger)

	logger.Info("entry saved", FieldEntryID, "e-1")

	out := buf.String()
	if !strings.Contains(out, "component=ledger") {
		t.Errorf("missing component in %q", out)
	}
	if !strings.Contains(out, "entry_id=e-1") {
		t.Errorf("missing entry id in %q", out)
	}
}

func TestWithComponentSwitchesTag(t *testing.T) {
	var buf bytes.Buffer
	logger := newBufferLogger(&buf, ComponentApp).WithComponent(ComponentWorker)

	logger.Warn("tick")

	if got := logger.Component(); got != ComponentWorker {
		t.Errorf("Component() = %q", got)
	}
	if strings.Count(buf.String(), "component=") != 1 {
		t.Errorf("component logged more than once: %q", buf.String())
	}
}

func TestFromContextFallsBack(t *testing.T) {
	logger := FromContext(context.Background())
	if logger.Component() != "unknown" {
		t.Errorf("fallback component = %q", logger.Component())
	}

	var buf bytes.Buffer
	own := newBufferLogger(&buf, ComponentHTTP)
	ctx := context.WithValue(context.Background(), LoggerContextKey, own)
	ctx = WithRequestID(ctx, "req_1")
	FromContext(ctx).InfoContext(ctx, "hello")
	if !strings.Contains(buf.String(), "request_id=req_1") {
		t.Errorf("request id not carried: %q", buf.String())
	}
}

func TestStructuredLoggerLevels(t *testing.T) {
	var buf bytes.Buffer
	sl := NewStructuredLogger(newBufferLogger(&buf, ComponentHTTP))
	req := httptest.NewRequest("GET", "/api/entries", nil)

	sl.LogHTTPEnd(context.Background(), req, 502, 12, "10.0.0.1")
	if !strings.Contains(buf.String(), "level=ERROR") {
		t.Errorf("5xx not logged at error: %q", buf.String())
	}

	buf.Reset()
	sl.LogHTTPEnd(context.Background(), req, 404, 1, "10.0.0.1")
	if !strings.Contains(buf.String(), "level=WARN") {
		t.Errorf("4xx not logged at warn: %q", buf.String())
	}

	buf.Reset()
	sl.LogError(context.Background(), "boom", errors.New("disk full"), ComponentStorage, OpArchive, nil)
	out := buf.String()
	if !strings.Contains(out, `error="disk full"`) || !strings.Contains(out, "operation=archive") {
		t.Errorf("unexpected error record: %q", out)
	}
}

func TestStructuredLoggerUsesRequestLogger(t *testing.T) {
	var base, scoped bytes.Buffer
	sl := NewStructuredLogger(newBufferLogger(&base, ComponentHTTP))
	ctx := context.WithValue(context.Background(), LoggerContextKey, newBufferLogger(&scoped, ComponentHTTP))
	ctx = WithRequestID(ctx, "req_42")

	sl.LogEntryChanged(ctx, OpCreate, "e-1", "CARD_CASH", "2025-03-24", "300")

	if base.Len() != 0 {
		t.Errorf("base logger used despite request logger: %q", base.String())
	}
	out := scoped.String()
	if !strings.Contains(out, "request_id=req_42") || !strings.Contains(out, "entry_id=e-1") {
		t.Errorf("unexpected entry record: %q", out)
	}
}
