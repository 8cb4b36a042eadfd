package ratelimit

import (
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestIsRetryableStatus(t *testing.T) {
	tests := []struct {
		status int
		want   bool
	}{
		{200, false},
		{201, false},
		{400, false},
		{404, false},
		{409, false},
		{429, true},
		{500, true},
		{503, true},
		{599, true},
	}

	for _, tt := range tests {
		t.Run(strconv.Itoa(tt.status), func(t *testing.T) {
			assert.Equal(t, tt.want, IsRetryableStatus(tt.status))
		})
	}
}

func TestCalculateBackoff(t *testing.T) {
	cfg := Config{InitialBackoffMs: 100, MaxBackoffMs: 1000}

	first := CalculateBackoff(0, cfg)
	assert.GreaterOrEqual(t, first, 100*time.Millisecond)
	assert.Less(t, first, 126*time.Millisecond)

	// Capped regardless of attempt count, jitter included.
	capped := CalculateBackoff(10, cfg)
	assert.GreaterOrEqual(t, capped, 1000*time.Millisecond)
	assert.LessOrEqual(t, capped, 1250*time.Millisecond)
}

func TestParseRetryAfter(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name   string
		header string
		want   time.Duration
		ok     bool
	}{
		{name: "empty", header: "", ok: false},
		{name: "not a number", header: "soon", ok: false},
		{name: "delay seconds", header: "5", want: 5 * time.Second, ok: true},
		{
			name:   "unix millisecond deadline",
			header: strconv.FormatInt(now.Add(10*time.Second).UnixMilli(), 10),
			want:   10 * time.Second,
			ok:     true,
		},
		{
			name:   "deadline capped at 60s",
			header: strconv.FormatInt(now.Add(10*time.Minute).UnixMilli(), 10),
			want:   60 * time.Second,
			ok:     true,
		},
		{name: "delay capped at 60s", header: "300", want: 60 * time.Second, ok: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ParseRetryAfter(tt.header, now)
			assert.Equal(t, tt.ok, ok)
			if tt.ok {
				assert.Equal(t, tt.want, got)
			}
		})
	}
}

func TestWithOverrides(t *testing.T) {
	rps := 10
	cfg := WithOverrides(PartialConfig{RequestsPerSecond: &rps})
	assert.Equal(t, 10, cfg.RequestsPerSecond)
	assert.Equal(t, DefaultConfig().MaxRetries, cfg.MaxRetries)
}
