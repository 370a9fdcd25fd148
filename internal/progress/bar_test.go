package progress

import (
	"bytes"
	"strings"
	"testing"
	"time"
)

func TestBarRendersFinalState(t *testing.T) {
	var buf bytes.Buffer
	b := New(&buf, "scan", 4)

	b.Increment(true)
	b.Increment(false)
	b.Increment(true)
	b.Increment(true)
	b.Finish()
	b.Finish()

	out := buf.String()
	if !strings.Contains(out, "4/4 (100.0%) failed: 1") {
		t.Errorf("missing final counts in %q", out)
	}
	if !strings.HasSuffix(out, "\n") || strings.Count(out, "\n") != 1 {
		t.Errorf("Finish should end the line exactly once: %q", out)
	}
	if !strings.Contains(out, strings.Repeat("█", barWidth)) {
		t.Errorf("expected a full bar in %q", out)
	}
}

func TestBarZeroTotal(t *testing.T) {
	var buf bytes.Buffer
	New(&buf, "scan", 0).Finish()
	if !strings.Contains(buf.String(), "0/0 (100.0%)") {
		t.Errorf("unexpected output %q", buf.String())
	}
}

func TestFormatDuration(t *testing.T) {
	tests := []struct {
		d    time.Duration
		want string
	}{
		{42 * time.Second, "42s"},
		{3*time.Minute + 5*time.Second, "3m5s"},
		{2*time.Hour + 7*time.Minute, "2h7m"},
	}
	for _, tt := range tests {
		if got := formatDuration(tt.d); got != tt.want {
			t.Errorf("formatDuration(%v) = %q, want %q", tt.d, got, tt.want)
		}
	}
}
