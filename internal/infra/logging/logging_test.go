//go:build !integration

package logging

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"

	"telegram-nutrition-bot/internal/config"
)

func TestWith_AttachesContextFields(t *testing.T) {
	var buf bytes.Buffer
	base := NewWithWriter(&buf, config.LogConfig{Level: "info", Format: "json"}, false)

	ctx := WithTraceID(context.Background(), "tr-1")
	ctx = WithChatID(ctx, 42)
	ctx = WithUpdateID(ctx, 7)
	With(ctx, base).Info().Msg("hello")

	var line map[string]any
	if err := json.Unmarshal(buf.Bytes(), &line); err != nil {
		t.Fatalf("log line is not json: %v (%q)", err, buf.String())
	}
	if line["trace_id"] != "tr-1" {
		t.Errorf("trace_id = %v", line["trace_id"])
	}
	if line["chat_id"] != float64(42) {
		t.Errorf("chat_id = %v", line["chat_id"])
	}
	if line["update_id"] != float64(7) {
		t.Errorf("update_id = %v", line["update_id"])
	}
}

func TestNew_LevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	l := NewWithWriter(&buf, config.LogConfig{Level: "warn", Format: "json"}, false)
	l.Info().Msg("dropped")
	if buf.Len() != 0 {
		t.Fatalf("info should be filtered at warn level, got %q", buf.String())
	}
	l.Error().Msg("kept")
	if buf.Len() == 0 {
		t.Fatal("error should pass at warn level")
	}
}

func TestBotLogger(t *testing.T) {
	var buf bytes.Buffer
	l := NewWithWriter(&buf, config.LogConfig{Level: "info", Format: "json"}, false)
	NewBotLogger(l).Printf("Failed to get updates, retrying in %d seconds...", 3)

	var line map[string]any
	if err := json.Unmarshal(buf.Bytes(), &line); err != nil {
		t.Fatalf("not json: %v", err)
	}
	if line["message"] != "Failed to get updates, retrying in 3 seconds..." {
		t.Errorf("message = %v", line["message"])
	}
	if line["component"] != "tgbotapi" {
		t.Errorf("component = %v", line["component"])
	}
}

func TestRedact(t *testing.T) {
	if got := Redact("123456:ABCDEFGHIJ", false); got != "1234...IJ" {
		t.Errorf("Redact = %q", got)
	}
	if got := Redact("short", false); got != "***" {
		t.Errorf("Redact short = %q", got)
	}
	if got := Redact("visible", true); got != "visible" {
		t.Errorf("Redact dev = %q", got)
	}
}
