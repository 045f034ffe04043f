package adapter

import (
	"strings"
	"testing"

	logx "coursewatch/pkg/logx"
)

func testLogger() logx.Logger { return logx.Nop() }

func TestSplitTextShort(t *testing.T) {
	t.Parallel()
	got := splitText("hello", 100)
	if len(got) != 1 || got[0] != "hello" {
		t.Fatalf("got %v", got)
	}
}

func TestSplitTextPrefersNewlines(t *testing.T) {
	t.Parallel()
	text := strings.Repeat("line one\n", 30)
	chunks := splitText(text, 100)
	if len(chunks) < 2 {
		t.Fatalf("expected multiple chunks, got %d", len(chunks))
	}
	for i, c := range chunks[:len(chunks)-1] {
		if !strings.HasSuffix(c, "\n") {
			t.Fatalf("chunk %d does not end on a line boundary: %q", i, c)
		}
	}
	if strings.Join(chunks, "") != text {
		t.Fatal("chunks do not reassemble the original text")
	}
}

func TestSplitTextHardLimit(t *testing.T) {
	t.Parallel()
	text := strings.Repeat("x", 250) // no newlines to cut on
	chunks := splitText(text, 100)
	if len(chunks) != 3 {
		t.Fatalf("got %d chunks, want 3", len(chunks))
	}
	for _, c := range chunks {
		if len([]rune(c)) > 100 {
			t.Fatalf("chunk exceeds limit: %d runes", len([]rune(c)))
		}
	}
}

func TestNewRequiresToken(t *testing.T) {
	t.Parallel()
	if _, err := New(Config{Token: "  "}, testLogger()); err == nil {
		t.Fatal("expected error for empty token")
	}
}
