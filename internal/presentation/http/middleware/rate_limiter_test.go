package middleware

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestBusinessRateLimiterCleanup(t *testing.T) {
	now := time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)
	rl := NewBusinessRateLimiter(RateLimiterConfig{
		RequestsPerSecond: 1,
		BurstSize:         2,
		CleanupInterval:   time.Minute,
		EntryTTL:          10 * time.Minute,
	})
	rl.now = func() time.Time { return now }

	a, b := uuid.New(), uuid.New()
	la := rl.getLimiter(a)
	assert.Same(t, la, rl.getLimiter(a))

	now = now.Add(8 * time.Minute)
	rl.getLimiter(b)
	assert.Equal(t, 2, rl.Len())

	now = now.Add(5 * time.Minute)
	rl.cleanup()
	assert.Equal(t, 1, rl.Len())
	assert.NotSame(t, la, rl.getLimiter(a))
}

func TestBusinessRateLimiterRunStops(t *testing.T) {
	rl := NewBusinessRateLimiter(DefaultRateLimiterConfig())
	done := make(chan struct{})
	finished := make(chan struct{})
	go func() {
		rl.Run(done)
		close(finished)
	}()
	close(done)

	select {
	case <-finished:
	case <-time.After(time.Second):
		t.Fatal("Run did not stop")
	}
}
