package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"testing"
)

type ctxKey struct{}

func traceID(ctx context.Context) string {
	id, _ := ctx.Value(ctxKey{}).(string)
	return id
}

func decodeLines(t *testing.T, buf *bytes.Buffer) []map[string]any {
	t.Helper()
	var out []map[string]any
	for _, line := range strings.Split(strings.TrimSpace(buf.String()), "\n") {
		if line == "" {
			continue
		}
		var m map[string]any
		if err := json.Unmarshal([]byte(line), &m); err != nil {
			t.Fatalf("decode %q: %v", line, err)
		}
		out = append(out, m)
	}
	return out
}

func TestLoggerFields(t *testing.T) {
	var buf bytes.Buffer
	log := New(&buf, LevelInfo, "courseflow", traceID)

	ctx := context.WithValue(context.Background(), ctxKey{}, "abc123")
	log.Info(ctx, "created", "id", "x1")
	log.Error(context.Background(), "failed", "error", "boom")

	lines := decodeLines(t, &buf)
	if len(lines) != 2 {
		t.Fatalf("expected 2 lines, got %d: %s", len(lines), buf.String())
	}
	if lines[0]["msg"] != "created" || lines[0]["service"] != "courseflow" || lines[0]["id"] != "x1" {
		t.Fatalf("unexpected entry: %v", lines[0])
	}
	if lines[0]["trace_id"] != "abc123" {
		t.Fatalf("expected trace id, got %v", lines[0]["trace_id"])
	}
	if _, ok := lines[1]["trace_id"]; ok {
		t.Fatalf("unexpected trace id on untraced entry: %v", lines[1])
	}
	if lines[1]["level"] != "error" {
		t.Fatalf("expected error level, got %v", lines[1]["level"])
	}
}

func TestLoggerLevelFilter(t *testing.T) {
	var buf bytes.Buffer
	log := New(&buf, LevelWarn, "courseflow", nil)
	log.Debug(context.Background(), "debug")
	log.Info(context.Background(), "info")
	log.Warn(context.Background(), "warn")

	lines := decodeLines(t, &buf)
	if len(lines) != 1 || lines[0]["msg"] != "warn" {
		t.Fatalf("expected only the warn entry, got %s", buf.String())
	}
}

func TestParseLevel(t *testing.T) {
	for in, want := range map[string]Level{"debug": LevelDebug, "": LevelInfo, "WARN": LevelWarn, "error": LevelError} {
		got, err := ParseLevel(in)
		if err != nil || got != want {
			t.Fatalf("ParseLevel(%q) = %v, %v; want %v", in, got, err, want)
		}
	}
	if _, err := ParseLevel("loud"); err == nil {
		t.Fatal("expected error for unknown level")
	}
}
