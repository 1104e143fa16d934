package ratelimit

import (
	"sync"
	"time"

	"igapi/pkg/config"
	"igapi/pkg/logger"
)

// Limiter paces outgoing API requests
type Limiter interface {
	// Allow takes a slot if one is free
	Allow() bool
	// Wait blocks until a slot is free and takes it
	Wait()
	// Reset forgets all past requests
	Reset()
}

// clock is swapped out in tests
type clock struct {
	now   func() time.Time
	sleep func(time.Duration)
}

var realClock = clock{now: time.Now, sleep: time.Sleep}

// TokenBucket allows bursts of capacity requests, refilled in full once per
// refillPeriod
type TokenBucket struct {
	capacity     int
	tokens       int
	refillPeriod time.Duration
	lastRefill   time.Time
	clock        clock
	mu           sync.Mutex
}

// NewTokenBucket creates a new token bucket rate limiter
func NewTokenBucket(capacity int, refillPeriod time.Duration) *TokenBucket {
	return &TokenBucket{
		capacity:     capacity,
		tokens:       capacity,
		refillPeriod: refillPeriod,
		lastRefill:   realClock.now(),
		clock:        realClock,
	}
}

// Allow checks if a request can proceed
func (tb *TokenBucket) Allow() bool {
	tb.mu.Lock()
	defer tb.mu.Unlock()

	tb.refill()
	if tb.tokens > 0 {
		tb.tokens--
		return true
	}
	return false
}

// Wait blocks until a token is available
func (tb *TokenBucket) Wait() {
	for !tb.Allow() {
		tb.clock.sleep(tb.untilNext())
	}
}

func (tb *TokenBucket) untilNext() time.Duration {
	tb.mu.Lock()
	defer tb.mu.Unlock()
	if d := tb.refillPeriod - tb.clock.now().Sub(tb.lastRefill); d > 0 {
		return d
	}
	return 100 * time.Millisecond
}

// Reset refills the bucket
func (tb *TokenBucket) Reset() {
	tb.mu.Lock()
	defer tb.mu.Unlock()

	tb.tokens = tb.capacity
	tb.lastRefill = tb.clock.now()
}

func (tb *TokenBucket) refill() {
	now := tb.clock.now()
	if now.Sub(tb.lastRefill) >= tb.refillPeriod {
		tb.tokens = tb.capacity
		tb.lastRefill = now
	}
}

// SlidingWindow allows at most maxRequests in any windowSize span
type SlidingWindow struct {
	windowSize  time.Duration
	maxRequests int
	requests    []time.Time
	clock       clock
	mu          sync.Mutex
}

// NewSlidingWindow creates a new sliding window rate limiter
func NewSlidingWindow(maxRequests int, windowSize time.Duration) *SlidingWindow {
	return &SlidingWindow{
		windowSize:  windowSize,
		maxRequests: maxRequests,
		requests:    make([]time.Time, 0, maxRequests),
		clock:       realClock,
	}
}

// Allow checks if a request can proceed
func (sw *SlidingWindow) Allow() bool {
	sw.mu.Lock()
	defer sw.mu.Unlock()

	now := sw.clock.now()
	sw.cleanOldRequests(now)

	if len(sw.requests) < sw.maxRequests {
		sw.requests = append(sw.requests, now)
		return true
	}
	return false
}

// Wait blocks until a request is allowed
func (sw *SlidingWindow) Wait() {
	for !sw.Allow() {
		sw.clock.sleep(sw.untilNext())
	}
}

func (sw *SlidingWindow) untilNext() time.Duration {
	sw.mu.Lock()
	defer sw.mu.Unlock()
	if len(sw.requests) > 0 {
		if d := sw.windowSize - sw.clock.now().Sub(sw.requests[0]); d > 0 {
			return d
		}
	}
	return 100 * time.Millisecond
}

// Reset clears all recorded requests
func (sw *SlidingWindow) Reset() {
	sw.mu.Lock()
	defer sw.mu.Unlock()

	sw.requests = sw.requests[:0]
}

// cleanOldRequests drops requests that left the window
func (sw *SlidingWindow) cleanOldRequests(now time.Time) {
	cutoff := now.Add(-sw.windowSize)

	i := 0
	for i < len(sw.requests) && !sw.requests[i].After(cutoff) {
		i++
	}
	if i > 0 {
		copy(sw.requests, sw.requests[i:])
		sw.requests = sw.requests[:len(sw.requests)-i]
	}
}

// Chain requires every limiter to agree. Wait takes a slot from each in turn,
// so a slow limiter late in the chain can leave earlier slots unused.
type Chain []Limiter

// Allow reports whether every limiter has a slot. Slots taken from limiters
// before the one that refused are not handed back.
func (c Chain) Allow() bool {
	for _, l := range c {
		if !l.Allow() {
			return false
		}
	}
	return true
}

// Wait blocks on each limiter in order
func (c Chain) Wait() {
	for _, l := range c {
		l.Wait()
	}
}

// Reset resets every limiter
func (c Chain) Reset() {
	for _, l := range c {
		l.Reset()
	}
}

// logged reports waits to a logger
type logged struct {
	Limiter
	log   logger.Logger
	clock clock
}

func (l *logged) Wait() {
	if l.Limiter.Allow() {
		return
	}
	start := l.clock.now()
	l.Limiter.Wait()
	logger.LogRateLimit(l.log, "", l.clock.now().Sub(start))
}

// FromConfig builds the pacing limiter for the client: at most
// RequestsPerMinute requests in any minute, in bursts of at most BurstSize per
// second. It returns nil when pacing is disabled.
func FromConfig(cfg config.RateLimitConfig, log logger.Logger) Limiter {
	if cfg.RequestsPerMinute <= 0 {
		return nil
	}

	var l Limiter = NewSlidingWindow(cfg.RequestsPerMinute, time.Minute)
	if cfg.BurstSize > 0 {
		l = Chain{NewTokenBucket(cfg.BurstSize, time.Second), l}
	}
	if log != nil {
		l = &logged{Limiter: l, log: log, clock: realClock}
	}
	return l
}
