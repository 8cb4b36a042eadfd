package progress

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestTimer(start time.Time, step time.Duration) (*Timer, func()) {
	t := NewTimer()
	current := start
	t.now = func() time.Time { return current }
	advance := func() { current = current.Add(step) }
	return t, advance
}

func TestAverageLatency(t *testing.T) {
	timer, advance := newTestTimer(time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC), time.Second)

	_, ok := timer.AverageLatency()
	assert.False(t, ok, "no data yet")

	timer.Record()
	_, ok = timer.AverageLatency()
	assert.False(t, ok, "one sample is not enough")

	for i := 0; i < 4; i++ {
		advance()
		timer.Record()
	}

	avg, ok := timer.AverageLatency()
	require.True(t, ok)
	assert.Equal(t, time.Second, avg)
}

func TestSlidingWindowTracksRecentRate(t *testing.T) {
	timer, _ := newTestTimer(time.Time{}, 0)
	current := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	timer.now = func() time.Time { return current }

	// Ten slow units at 10s each, then ten fast units at 1s each: the
	// window should only see the fast rate.
	for i := 0; i < 10; i++ {
		timer.Record()
		current = current.Add(10 * time.Second)
	}
	for i := 0; i < 10; i++ {
		timer.Record()
		current = current.Add(time.Second)
	}

	avg, ok := timer.AverageLatency()
	require.True(t, ok)
	assert.Equal(t, time.Second, avg)
}

func TestEstimateRemaining(t *testing.T) {
	timer, advance := newTestTimer(time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC), 2*time.Second)

	timer.Record()
	advance()
	timer.Record()

	eta, ok := timer.EstimateRemaining(30)
	require.True(t, ok)
	assert.Equal(t, time.Minute, eta)
}

func TestFormatDuration(t *testing.T) {
	tests := []struct {
		in   time.Duration
		want string
	}{
		{45 * time.Second, "45s"},
		{7*time.Minute + 53*time.Second, "7m 53s"},
		{2*time.Hour + 15*time.Minute, "2h 15m"},
		{0, "0s"},
		{-5 * time.Second, "0s"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, FormatDuration(tt.in))
	}
}
