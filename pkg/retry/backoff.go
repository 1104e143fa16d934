package retry

import (
	"context"
	"math"
	"math/rand"
	"net/http"
	"time"

	errs "igapi/pkg/errors"
)

// BackoffStrategy defines the interface for different backoff strategies
type BackoffStrategy interface {
	// NextDelay returns the delay before retry number attempt (1-based)
	NextDelay(attempt int) time.Duration
}

// ErrorAwareBackoff picks its delay from the error that caused the retry.
// Do prefers NextDelayFor over NextDelay when the strategy offers it.
type ErrorAwareBackoff interface {
	BackoffStrategy
	NextDelayFor(attempt int, err error) time.Duration
}

// ExponentialBackoff implements exponential backoff with jitter
type ExponentialBackoff struct {
	// BaseDelay is the initial delay duration
	BaseDelay time.Duration
	// MaxDelay is the maximum delay duration
	MaxDelay time.Duration
	// Multiplier is the factor by which delay increases
	Multiplier float64
	// JitterFactor spreads delays by up to this fraction either way (0.0 to 1.0)
	JitterFactor float64
}

// DefaultExponentialBackoff returns a backoff with sensible defaults
func DefaultExponentialBackoff() *ExponentialBackoff {
	return &ExponentialBackoff{
		BaseDelay:    1 * time.Second,
		MaxDelay:     60 * time.Second,
		Multiplier:   2.0,
		JitterFactor: 0.1,
	}
}

// NextDelay calculates the next delay with exponential backoff and jitter
func (eb *ExponentialBackoff) NextDelay(attempt int) time.Duration {
	if attempt <= 0 {
		return 0
	}
	delay := float64(eb.BaseDelay) * math.Pow(eb.Multiplier, float64(attempt-1))
	if delay > float64(eb.MaxDelay) {
		delay = float64(eb.MaxDelay)
	}
	return jitter(delay, eb.JitterFactor)
}

// LinearBackoff implements linear backoff strategy
type LinearBackoff struct {
	BaseDelay    time.Duration
	MaxDelay     time.Duration
	Increment    time.Duration
	JitterFactor float64
}

// NextDelay calculates the next delay with linear backoff
func (lb *LinearBackoff) NextDelay(attempt int) time.Duration {
	if attempt <= 0 {
		return 0
	}
	delay := float64(lb.BaseDelay + lb.Increment*time.Duration(attempt-1))
	if delay > float64(lb.MaxDelay) {
		delay = float64(lb.MaxDelay)
	}
	return jitter(delay, lb.JitterFactor)
}

// ConstantBackoff implements constant delay backoff
type ConstantBackoff struct {
	Delay time.Duration
}

// NextDelay returns a constant delay
func (cb *ConstantBackoff) NextDelay(attempt int) time.Duration {
	if attempt <= 0 {
		return 0
	}
	return cb.Delay
}

func jitter(delay, factor float64) time.Duration {
	if factor > 0 {
		j := delay * factor
		delay += rand.Float64()*2*j - j
	}
	if delay < 0 {
		delay = 0
	}
	return time.Duration(delay)
}

// Wait waits for the specified duration or until context is cancelled
func Wait(ctx context.Context, delay time.Duration) error {
	if delay <= 0 {
		return nil
	}

	timer := time.NewTimer(delay)
	defer timer.Stop()

	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// ErrorTypeBackoff chooses a strategy by the kind of failure. Throttling gets
// the longest delays since the server keeps counting while we wait.
type ErrorTypeBackoff struct {
	Transport   BackoffStrategy
	Throttled   BackoffStrategy
	ServerError BackoffStrategy
	Default     BackoffStrategy
}

// NewErrorTypeBackoff returns the strategies used by the CLI
func NewErrorTypeBackoff() *ErrorTypeBackoff {
	return &ErrorTypeBackoff{
		Transport: &ExponentialBackoff{
			BaseDelay:    1 * time.Second,
			MaxDelay:     30 * time.Second,
			Multiplier:   2.0,
			JitterFactor: 0.2,
		},
		Throttled: &ExponentialBackoff{
			BaseDelay:    30 * time.Second,
			MaxDelay:     5 * time.Minute,
			Multiplier:   1.5,
			JitterFactor: 0.3,
		},
		ServerError: &ExponentialBackoff{
			BaseDelay:    5 * time.Second,
			MaxDelay:     60 * time.Second,
			Multiplier:   2.0,
			JitterFactor: 0.1,
		},
		Default: DefaultExponentialBackoff(),
	}
}

// For returns the strategy matching err
func (etb *ErrorTypeBackoff) For(err error) BackoffStrategy {
	e, ok := errs.As(err)
	if !ok {
		return etb.Default
	}
	switch {
	case e.Type == errs.ErrorTypeTransport:
		return etb.Transport
	case e.Type == errs.ErrorTypeRateLimit:
		return etb.Throttled
	case e.Code >= http.StatusInternalServerError:
		return etb.ServerError
	default:
		return etb.Default
	}
}

// NextDelay implements BackoffStrategy with the default strategy
func (etb *ErrorTypeBackoff) NextDelay(attempt int) time.Duration {
	return etb.Default.NextDelay(attempt)
}

// NextDelayFor implements ErrorAwareBackoff
func (etb *ErrorTypeBackoff) NextDelayFor(attempt int, err error) time.Duration {
	return etb.For(err).NextDelay(attempt)
}
