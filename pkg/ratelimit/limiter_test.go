package ratelimit

import (
	"testing"
	"time"

	"igapi/pkg/config"
	"igapi/pkg/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeClock advances only when something sleeps
type fakeClock struct {
	t     time.Time
	slept []time.Duration
}

func newFakeClock() *fakeClock {
	return &fakeClock{t: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}
}

func (f *fakeClock) clock() clock {
	return clock{
		now: func() time.Time { return f.t },
		sleep: func(d time.Duration) {
			f.slept = append(f.slept, d)
			f.t = f.t.Add(d)
		},
	}
}

func TestTokenBucket(t *testing.T) {
	fc := newFakeClock()
	tb := NewTokenBucket(5, time.Second)
	tb.clock = fc.clock()
	tb.lastRefill = fc.t

	for i := 0; i < 5; i++ {
		assert.True(t, tb.Allow(), "token %d", i+1)
	}
	assert.False(t, tb.Allow(), "bucket should be empty")

	fc.t = fc.t.Add(400 * time.Millisecond)
	tb.Wait()
	require.Len(t, fc.slept, 1)
	assert.Equal(t, 600*time.Millisecond, fc.slept[0])
	assert.Equal(t, 4, tb.tokens)

	tb.tokens = 0
	tb.Reset()
	assert.Equal(t, tb.capacity, tb.tokens)
}

func TestSlidingWindow(t *testing.T) {
	fc := newFakeClock()
	sw := NewSlidingWindow(3, time.Minute)
	sw.clock = fc.clock()

	for i := 0; i < 3; i++ {
		assert.True(t, sw.Allow(), "request %d", i+1)
		fc.t = fc.t.Add(10 * time.Second)
	}
	assert.False(t, sw.Allow(), "limit reached")

	// oldest request was 30s ago, so a slot frees in 30s
	sw.Wait()
	require.Len(t, fc.slept, 1)
	assert.Equal(t, 30*time.Second, fc.slept[0])
	assert.Len(t, sw.requests, 3)

	sw.Reset()
	assert.Empty(t, sw.requests)
	assert.True(t, sw.Allow())
}

type stubLimiter struct {
	allow  bool
	allows int
	waits  int
	resets int
}

func (s *stubLimiter) Allow() bool { s.allows++; return s.allow }
func (s *stubLimiter) Wait()       { s.waits++ }
func (s *stubLimiter) Reset()      { s.resets++ }

func TestChain(t *testing.T) {
	a, b := &stubLimiter{allow: true}, &stubLimiter{allow: false}
	c := Chain{a, b}

	assert.False(t, c.Allow())
	assert.Equal(t, 1, a.allows)
	assert.Equal(t, 1, b.allows)

	c.Wait()
	assert.Equal(t, 1, a.waits)
	assert.Equal(t, 1, b.waits)

	c.Reset()
	assert.Equal(t, 1, a.resets)
	assert.Equal(t, 1, b.resets)

	b.allow = true
	assert.True(t, c.Allow())
}

func TestLoggedLimiter(t *testing.T) {
	log := logger.NewTestLogger()
	stub := &stubLimiter{allow: true}
	l := &logged{Limiter: stub, log: log, clock: newFakeClock().clock()}

	l.Wait()
	assert.Zero(t, stub.waits, "free slot needs no wait")
	assert.False(t, log.HasMessage("Rate limit reached, backing off"))

	stub.allow = false
	l.Wait()
	assert.Equal(t, 1, stub.waits)
	assert.True(t, log.HasMessage("Rate limit reached, backing off"))
}

func TestFromConfig(t *testing.T) {
	t.Run("disabled", func(t *testing.T) {
		assert.Nil(t, FromConfig(config.RateLimitConfig{}, nil))
	})

	t.Run("window only", func(t *testing.T) {
		l := FromConfig(config.RateLimitConfig{RequestsPerMinute: 30}, nil)
		sw, ok := l.(*SlidingWindow)
		require.True(t, ok, "got %T", l)
		assert.Equal(t, 30, sw.maxRequests)
		assert.Equal(t, time.Minute, sw.windowSize)
	})

	t.Run("burst and window", func(t *testing.T) {
		l := FromConfig(config.RateLimitConfig{RequestsPerMinute: 30, BurstSize: 5}, nil)
		chain, ok := l.(Chain)
		require.True(t, ok, "got %T", l)
		require.Len(t, chain, 2)
		assert.Equal(t, 5, chain[0].(*TokenBucket).capacity)
	})

	t.Run("logged", func(t *testing.T) {
		l := FromConfig(config.DefaultConfig().RateLimit, logger.NewTestLogger())
		_, ok := l.(*logged)
		assert.True(t, ok, "got %T", l)
	})
}
