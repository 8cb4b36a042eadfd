// Package progress tracks per-unit completion times so long runs can
// report a stable ETA.
package progress

import (
	"fmt"
	"time"
)

const defaultWindow = 10

// Timer estimates remaining time from a sliding window of recent
// completion timestamps, so the ETA reflects current throughput rather
// than the whole run's average.
type Timer struct {
	window int
	times  []time.Time
	now    func() time.Time
}

// NewTimer returns a timer averaging over the last 10 completions.
func NewTimer() *Timer {
	return &Timer{window: defaultWindow, now: time.Now}
}

// Record marks one unit as completed.
func (t *Timer) Record() {
	t.times = append(t.times, t.now())
	if len(t.times) > t.window {
		t.times = t.times[1:]
	}
}

// AverageLatency returns the average time per unit over the window.
// ok is false until at least two completions have been recorded.
func (t *Timer) AverageLatency() (time.Duration, bool) {
	if len(t.times) < 2 {
		return 0, false
	}
	span := t.times[len(t.times)-1].Sub(t.times[0])
	return span / time.Duration(len(t.times)-1), true
}

// EstimateRemaining returns the projected time for the given number of
// pending units.
func (t *Timer) EstimateRemaining(remaining int) (time.Duration, bool) {
	avg, ok := t.AverageLatency()
	if !ok || remaining < 0 {
		return 0, false
	}
	return avg * time.Duration(remaining), true
}

// FormatDuration renders a duration the way progress lines show it:
// "45s", "7m 53s", "2h 15m".
func FormatDuration(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	total := int(d.Round(time.Second).Seconds())
	switch {
	case total < 60:
		return fmt.Sprintf("%ds", total)
	case total < 3600:
		return fmt.Sprintf("%dm %ds", total/60, total%60)
	default:
		return fmt.Sprintf("%dh %dm", total/3600, (total%3600)/60)
	}
}
