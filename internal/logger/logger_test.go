package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"testing"
)

func TestBackends_WriteStructuredFields(t *testing.T) {
	for _, backend := range []string{"slog", "zap"} {
		t.Run(backend, func(t *testing.T) {
			var buf bytes.Buffer
			l := New(Config{Level: LevelInfo, Format: "json", Backend: backend, Output: &buf})

			ctx := WithUserID(WithRequestID(context.Background(), "req-1"), "user-1")
			l.WithContext(ctx).Info("dashboard computed", Int("entries", 12), String("trend", "improving"))

			var line map[string]interface{}
			if err := json.Unmarshal(bytes.TrimSpace(buf.Bytes()), &line); err != nil {
				t.Fatalf("output is not JSON: %v (%q)", err, buf.String())
			}
			if line["request_id"] != "req-1" || line["user_id"] != "user-1" {
				t.Errorf("context fields missing: %v", line)
			}
			if line["entries"] != float64(12) || line["trend"] != "improving" {
				t.Errorf("fields missing: %v", line)
			}
		})
	}
}

func TestBackends_SetLevel(t *testing.T) {
	for _, backend := range []string{"slog", "zap"} {
		t.Run(backend, func(t *testing.T) {
			var buf bytes.Buffer
			l := New(Config{Level: LevelWarn, Format: "json", Backend: backend, Output: &buf})
			child := l.With(String("component", "test"))

			child.Info("hidden")
			if buf.Len() != 0 {
				t.Fatalf("info should be filtered at warn level, got %q", buf.String())
			}

			// Level changes reach loggers derived before the change
			l.SetLevel(LevelDebug)
			child.Debug("visible")
			if !strings.Contains(buf.String(), "visible") {
				t.Errorf("expected debug line after SetLevel, got %q", buf.String())
			}
			if l.Level() != LevelDebug {
				t.Errorf("Level() = %v, want debug", l.Level())
			}
		})
	}
}

func TestParseLevel(t *testing.T) {
	tests := map[string]Level{
		"debug":   LevelDebug,
		"WARN":    LevelWarn,
		"warning": LevelWarn,
		"error":   LevelError,
		"bogus":   LevelInfo,
	}
	for in, want := range tests {
		if got := ParseLevel(in); got != want {
			t.Errorf("ParseLevel(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestFromContext(t *testing.T) {
	var buf bytes.Buffer
	l := New(Config{Level: LevelInfo, Output: &buf})
	ctx := WithLogger(context.Background(), l)

	Ctx(ctx).Info("hello")
	if !strings.Contains(buf.String(), "hello") {
		t.Errorf("expected context logger to be used, got %q", buf.String())
	}
}
