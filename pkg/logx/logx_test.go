package logx

import (
	"strings"
	"testing"

	"github.com/rs/zerolog"
)

func TestParseLevel(t *testing.T) {
	t.Parallel()
	tests := []struct {
		in   string
		want zerolog.Level
	}{
		{"debug", zerolog.DebugLevel},
		{" WARN ", zerolog.WarnLevel},
		{"warning", zerolog.WarnLevel},
		{"error", zerolog.ErrorLevel},
		{"", zerolog.InfoLevel},
		{"bogus", zerolog.InfoLevel},
	}
	for _, tt := range tests {
		if got := parseLevel(tt.in, zerolog.InfoLevel); got != tt.want {
			t.Errorf("parseLevel(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestFormatAdminLine(t *testing.T) {
	t.Parallel()
	line := `{"level":"warn","time":"2025-01-01T00:00:00Z","message":"send failed","item":"L1","caller":"cycle.go:42"}`
	got := formatAdminLine([]byte(line))
	if !strings.HasPrefix(got, "[WARN] send failed") {
		t.Fatalf("got %q", got)
	}
	if !strings.Contains(got, "item=L1") {
		t.Fatalf("missing field in %q", got)
	}
	if strings.Contains(got, "caller") || strings.Contains(got, "2025-01-01") {
		t.Fatalf("noise fields leaked into %q", got)
	}
}

func TestFormatAdminLineNonJSON(t *testing.T) {
	t.Parallel()
	if got := formatAdminLine([]byte("plain text\n")); got != "plain text" {
		t.Fatalf("got %q", got)
	}
}

func TestTruncate(t *testing.T) {
	t.Parallel()
	if got := truncate("short", 100); got != "short" {
		t.Fatalf("got %q", got)
	}
	long := strings.Repeat("a", 50)
	got := truncate(long, 20)
	if len(got) != 20 || !strings.HasSuffix(got, "...") {
		t.Fatalf("got %q (len %d)", got, len(got))
	}
}

func TestNopLoggerIsSafe(t *testing.T) {
	t.Parallel()
	l := Nop()
	l.Info("ignored", String("k", "v"))
	var zero Logger
	zero.Warn("also ignored") // zero value must not panic
	if !zero.IsZero() {
		t.Fatal("zero logger should report IsZero")
	}
}
