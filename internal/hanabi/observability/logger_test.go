package observability

import (
	"log/slog"
	"strings"
	"testing"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"warn", slog.LevelWarn},
		{"warning", slog.LevelWarn},
		{"error", slog.LevelError},
		{"info", slog.LevelInfo},
		{"ERROR", slog.LevelError},
		{"", slog.LevelInfo},
		{"verbose", slog.LevelInfo},
	}
	for _, tt := range tests {
		if got := parseLevel(tt.in); got != tt.want {
			t.Errorf("parseLevel(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestRedactSecrets(t *testing.T) {
	msg := "llm=[api_key=sk-test-1234] matrix=[access_token=syt_abcdef rooms=1]"
	got := RedactSecrets(msg, "sk-test-1234", "syt_abcdef", "")

	if strings.Contains(got, "sk-test-1234") || strings.Contains(got, "syt_abcdef") {
		t.Errorf("secrets survived redaction: %q", got)
	}
	if !strings.Contains(got, "api_key=[REDACTED]") {
		t.Errorf("redacted output = %q", got)
	}
	if !strings.Contains(got, "rooms=1") {
		t.Errorf("non-secret text was altered: %q", got)
	}
}
