package retry

import (
	"context"
	"errors"
	"fmt"
	"time"

	"igapi/pkg/config"
	errs "igapi/pkg/errors"
	"igapi/pkg/logger"
)

// Operation is a function that performs an operation that might need retrying
type Operation func() error

// OperationWithResult is a function that returns a result and might need retrying
type OperationWithResult[T any] func() (T, error)

// Config holds retry configuration
type Config struct {
	// MaxAttempts is the maximum number of attempts (0 means unlimited)
	MaxAttempts int
	// Backoff strategy to use
	Backoff BackoffStrategy
	// RetryIf determines if an error should be retried
	RetryIf func(error) bool
	// OnRetry is called before each retry attempt
	OnRetry func(attempt int, err error, delay time.Duration)
	// Relogin, when set, is called once the first time the operation fails
	// with an expired session; the operation is then run again at once.
	Relogin func() error
	// Context for cancellation
	Context context.Context
	// Logger for retry attempts
	Logger logger.Logger
}

// DefaultConfig returns a retry configuration with sensible defaults
func DefaultConfig() *Config {
	return &Config{
		MaxAttempts: 3,
		Backoff:     NewErrorTypeBackoff(),
		RetryIf:     DefaultRetryIf,
		Context:     context.Background(),
		Logger:      logger.NewNopLogger(),
	}
}

// FromConfig builds a retry configuration from the application settings.
// A disabled retry section still allows the single relogin.
func FromConfig(rc config.RetryConfig, log logger.Logger) *Config {
	cfg := DefaultConfig()
	if log != nil {
		cfg.Logger = log
	}
	if !rc.Enabled {
		cfg.MaxAttempts = 1
		return cfg
	}
	cfg.MaxAttempts = rc.MaxAttempts

	etb := NewErrorTypeBackoff()
	etb.Default = &ExponentialBackoff{
		BaseDelay:    rc.InitialDelay,
		MaxDelay:     rc.MaxDelay,
		Multiplier:   rc.Multiplier,
		JitterFactor: 0.1,
	}
	etb.Transport = etb.Default
	cfg.Backoff = etb
	return cfg
}

// DefaultRetryIf retries throttling, network failures and 5xx answers.
// Expired sessions, checkpoints and rejected requests need the caller's
// attention instead.
func DefaultRetryIf(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	e, ok := errs.As(err)
	if !ok {
		return false
	}
	if e.Type == errs.ErrorTypeAPI {
		return e.Code != 0 && errs.IsRetryableStatusCode(e.Code)
	}
	return errs.IsRetryable(e.Type)
}

// Do executes an operation with retry logic
func Do(op Operation, cfg *Config) error {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	log := cfg.Logger
	if log == nil {
		log = logger.NewNopLogger()
	}
	ctx := cfg.Context
	if ctx == nil {
		ctx = context.Background()
	}
	retryIf := cfg.RetryIf
	if retryIf == nil {
		retryIf = DefaultRetryIf
	}

	var lastErr error
	relogged := false
	attempt := 0

	for {
		attempt++
		if cfg.MaxAttempts > 0 && attempt > cfg.MaxAttempts {
			log.ErrorWithFields("max retry attempts exceeded", map[string]interface{}{
				"attempts":   attempt - 1,
				"last_error": lastErr.Error(),
			})
			return fmt.Errorf("max retry attempts (%d) exceeded: %w", cfg.MaxAttempts, lastErr)
		}

		err := op()
		if err == nil {
			if attempt > 1 {
				log.DebugWithFields("operation succeeded after retry", map[string]interface{}{
					"attempt": attempt,
				})
			}
			return nil
		}
		lastErr = err

		if errs.IsSessionExpired(err) && cfg.Relogin != nil && !relogged {
			relogged = true
			log.Info("session expired, logging in again")
			if rerr := cfg.Relogin(); rerr != nil {
				return fmt.Errorf("relogin after expired session: %w", rerr)
			}
			// The relogin round does not count against MaxAttempts
			attempt--
			continue
		}

		if !retryIf(err) {
			log.DebugWithFields("error is not retryable", map[string]interface{}{
				"error": err.Error(),
			})
			return err
		}

		delay := nextDelay(cfg.Backoff, attempt, err)
		if cfg.OnRetry != nil {
			cfg.OnRetry(attempt, err, delay)
		}
		if errs.TypeOf(err) == errs.ErrorTypeRateLimit {
			logger.LogRateLimit(log, "", delay)
		}
		log.WarnWithFields("retrying operation", map[string]interface{}{
			"attempt":      attempt,
			"error":        err.Error(),
			"delay_ms":     delay.Milliseconds(),
			"max_attempts": cfg.MaxAttempts,
		})

		if err := Wait(ctx, delay); err != nil {
			log.WarnWithFields("retry cancelled", map[string]interface{}{
				"attempt": attempt,
				"reason":  err.Error(),
			})
			return fmt.Errorf("retry cancelled: %w", err)
		}
	}
}

func nextDelay(b BackoffStrategy, attempt int, err error) time.Duration {
	switch s := b.(type) {
	case nil:
		return DefaultExponentialBackoff().NextDelay(attempt)
	case ErrorAwareBackoff:
		return s.NextDelayFor(attempt, err)
	default:
		return s.NextDelay(attempt)
	}
}

// DoWithResult executes an operation that returns a result with retry logic
func DoWithResult[T any](op OperationWithResult[T], cfg *Config) (T, error) {
	var result T
	err := Do(func() error {
		var opErr error
		result, opErr = op()
		return opErr
	}, cfg)
	return result, err
}

// Retrier provides a reusable retry mechanism
type Retrier struct {
	config *Config
}

// NewRetrier creates a new retrier with the given configuration
func NewRetrier(cfg *Config) *Retrier {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	return &Retrier{config: cfg}
}

// Do executes an operation with retry logic
func (r *Retrier) Do(op Operation) error {
	return Do(op, r.config)
}

// Config returns the retrier's settings, for DoWithResult
func (r *Retrier) Config() *Config {
	return r.config
}

// WithMaxAttempts returns a new retrier with updated max attempts
func (r *Retrier) WithMaxAttempts(maxAttempts int) *Retrier {
	newConfig := *r.config
	newConfig.MaxAttempts = maxAttempts
	return &Retrier{config: &newConfig}
}

// WithBackoff returns a new retrier with updated backoff strategy
func (r *Retrier) WithBackoff(backoff BackoffStrategy) *Retrier {
	newConfig := *r.config
	newConfig.Backoff = backoff
	return &Retrier{config: &newConfig}
}

// WithRelogin returns a new retrier that recovers once from an expired session
func (r *Retrier) WithRelogin(relogin func() error) *Retrier {
	newConfig := *r.config
	newConfig.Relogin = relogin
	return &Retrier{config: &newConfig}
}

// WithContext returns a new retrier with updated context
func (r *Retrier) WithContext(ctx context.Context) *Retrier {
	newConfig := *r.config
	newConfig.Context = ctx
	return &Retrier{config: &newConfig}
}
