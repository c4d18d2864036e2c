package observability

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"testing"
)

func TestLoggerWritesJSON(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(InfoLevel, &buf)

	logger.WithField("tenant_id", "t-1").Info("module list refreshed")

	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("log output is not JSON: %v", err)
	}
	if entry["msg"] != "module list refreshed" {
		t.Errorf("unexpected msg: %v", entry["msg"])
	}
	if entry["tenant_id"] != "t-1" {
		t.Errorf("unexpected tenant_id: %v", entry["tenant_id"])
	}
}

func TestLoggerLevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(WarnLevel, &buf)

	logger.Info("dropped")
	if buf.Len() != 0 {
		t.Errorf("info message should be filtered at warn level: %q", buf.String())
	}

	logger.Warnf("kept: %d", 1)
	if buf.Len() == 0 {
		t.Error("warn message should be emitted at warn level")
	}
}

func TestWithError(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(InfoLevel, &buf)

	logger.WithError(errors.New("boom")).Error("refresh failed")

	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("log output is not JSON: %v", err)
	}
	if entry["error"] != "boom" {
		t.Errorf("unexpected error field: %v", entry["error"])
	}

	if got := logger.WithError(nil); got != logger {
		t.Error("WithError(nil) should return the same logger")
	}
}

func TestFromContext(t *testing.T) {
	var buf bytes.Buffer
	base := NewLogger(InfoLevel, &buf)

	ctx := WithLogger(context.Background(), base)
	ctx = WithRequestID(ctx, "req-1")
	ctx = WithTenantID(ctx, "t-9")

	FromContext(ctx).Info("hello")

	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("log output is not JSON: %v", err)
	}
	if entry["request_id"] != "req-1" {
		t.Errorf("unexpected request_id: %v", entry["request_id"])
	}
	if entry["tenant_id"] != "t-9" {
		t.Errorf("unexpected tenant_id: %v", entry["tenant_id"])
	}
}
