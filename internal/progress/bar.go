package progress

import (
	"fmt"
	"io"
	"strings"
	"sync"
	"time"
)

const barWidth = 40

// Bar renders a single-line progress bar for a known number of steps.
type Bar struct {
	w         io.Writer
	label     string
	total     int
	current   int
	failed    int
	mu        sync.Mutex
	startTime time.Time
	lastPrint time.Time
	done      bool
}

// New creates a progress bar writing to w, usually stderr so stdout stays
// machine-readable.
func New(w io.Writer, label string, total int) *Bar {
	now := time.Now()
	return &Bar{
		w:         w,
		label:     label,
		total:     total,
		startTime: now,
		lastPrint: now,
	}
}

// Increment records one finished step. ok=false counts it as failed.
func (b *Bar) Increment(ok bool) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.current++
	if !ok {
		b.failed++
	}

	now := time.Now()
	if now.Sub(b.lastPrint) > 500*time.Millisecond || b.current >= b.total {
		b.render()
		b.lastPrint = now
	}
}

// Finish draws the final state and ends the line. Later calls do nothing.
func (b *Bar) Finish() {
	b.mu.Lock()
	defer b.mu.Unlock()

	if !b.done {
		b.render()
		fmt.Fprintln(b.w)
		b.done = true
	}
}

func (b *Bar) render() {
	if b.done {
		return
	}

	var percentage float64
	filled := barWidth
	if b.total > 0 {
		percentage = float64(b.current) / float64(b.total) * 100
		filled = min(barWidth, barWidth*b.current/b.total)
	} else {
		percentage = 100
	}

	elapsed := time.Since(b.startTime)
	var eta time.Duration
	if b.current > 0 && b.current < b.total {
		eta = elapsed / time.Duration(b.current) * time.Duration(b.total-b.current)
	}

	bar := strings.Repeat("█", filled) + strings.Repeat("░", barWidth-filled)

	fmt.Fprintf(b.w, "\r%s [%s] %d/%d (%.1f%%) failed: %d - Elapsed: %s - ETA: %s   ",
		b.label,
		bar,
		b.current,
		b.total,
		percentage,
		b.failed,
		formatDuration(elapsed),
		formatDuration(eta),
	)
}

func formatDuration(d time.Duration) string {
	if d < time.Minute {
		return fmt.Sprintf("%ds", int(d.Seconds()))
	}
	if d < time.Hour {
		return fmt.Sprintf("%dm%ds", int(d.Minutes()), int(d.Seconds())%60)
	}
	return fmt.Sprintf("%dh%dm", int(d.Hours()), int(d.Minutes())%60)
}
