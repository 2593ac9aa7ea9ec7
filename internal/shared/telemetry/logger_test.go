package telemetry

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
	"testing"
)

func TestInfoWritesJSONLineWithFields(t *testing.T) {
	var buf bytes.Buffer
	restore := SetOutput(&buf)
	defer restore()

	Info("extraction.complete", map[string]any{
		"user_id": "guest:abc",
		"kind":    "text",
	})

	line := strings.TrimSpace(buf.String())
	var payload map[string]any
	if err := json.Unmarshal([]byte(line), &payload); err != nil {
		t.Fatalf("decode log line %q: %v", line, err)
	}
	if payload["msg"] != "extraction.complete" {
		t.Fatalf("unexpected msg: %v", payload["msg"])
	}
	if payload["level"] != "INFO" {
		t.Fatalf("unexpected level: %v", payload["level"])
	}
	if payload["service"] != serviceName {
		t.Fatalf("unexpected service: %v", payload["service"])
	}
	if payload["user_id"] != "guest:abc" || payload["kind"] != "text" {
		t.Fatalf("missing fields: %v", payload)
	}
}

func TestErrorFieldsAreStringified(t *testing.T) {
	var buf bytes.Buffer
	restore := SetOutput(&buf)
	defer restore()

	Error("llm.call.failed", map[string]any{"error": errors.New("boom")})

	var payload map[string]any
	if err := json.Unmarshal(bytes.TrimSpace(buf.Bytes()), &payload); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if payload["error"] != "boom" {
		t.Fatalf("expected error string, got %v", payload["error"])
	}
}

func TestConfigureFiltersBelowLevel(t *testing.T) {
	var buf bytes.Buffer
	restore := SetOutput(&buf)
	defer restore()
	Configure("error")
	defer Configure("info")

	Info("ignored", nil)
	if buf.Len() != 0 {
		t.Fatalf("expected info to be filtered, got %q", buf.String())
	}
	Warn("also.ignored", nil)
	if buf.Len() != 0 {
		t.Fatalf("expected warn to be filtered, got %q", buf.String())
	}
	Error("kept", nil)
	if buf.Len() == 0 {
		t.Fatalf("expected error line")
	}
}
