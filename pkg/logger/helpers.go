package logger

import (
	"context"
	"time"

	"github.com/rs/zerolog"
)

// LogRequest logs a finished API round trip at a level matching its status
func LogRequest(log Logger, method, endpoint string, statusCode int, duration time.Duration) {
	fields := map[string]interface{}{
		"method":      method,
		"endpoint":    endpoint,
		"status_code": statusCode,
		"duration_ms": duration.Milliseconds(),
	}

	switch {
	case statusCode >= 500:
		log.ErrorWithFields("API request server error", fields)
	case statusCode >= 400:
		log.WarnWithFields("API request client error", fields)
	default:
		log.DebugWithFields("API request completed", fields)
	}
}

// LogStateChange records a login state transition
func LogStateChange(log Logger, username, from, to string) {
	log.InfoWithFields("session state changed", map[string]interface{}{
		"username": username,
		"from":     from,
		"to":       to,
	})
}

// LogRateLimit logs rate limiting events
func LogRateLimit(log Logger, endpoint string, wait time.Duration) {
	log.WithFields(map[string]interface{}{
		"endpoint": endpoint,
		"wait_ms":  wait.Milliseconds(),
		"action":   "rate_limited",
	}).Warn("Rate limit reached, backing off")
}

// Mask hides all but the first and last 4 characters of a secret
func Mask(s string) string {
	if len(s) <= 8 {
		return "********"
	}
	return s[:4] + "..." + s[len(s)-4:]
}

// NewNopLogger creates a logger that discards everything
func NewNopLogger() Logger {
	return &nopLogger{}
}

type nopLogger struct{}

func (n *nopLogger) Debug(msg string)                                          {}
func (n *nopLogger) Info(msg string)                                           {}
func (n *nopLogger) Warn(msg string)                                           {}
func (n *nopLogger) Error(msg string)                                          {}
func (n *nopLogger) Fatal(msg string)                                          {}
func (n *nopLogger) WithField(key string, value interface{}) Logger            { return n }
func (n *nopLogger) WithFields(fields map[string]interface{}) Logger           { return n }
func (n *nopLogger) WithError(err error) Logger                                { return n }
func (n *nopLogger) WithContext(ctx context.Context) Logger                    { return n }
func (n *nopLogger) DebugWithFields(msg string, fields map[string]interface{}) {}
func (n *nopLogger) InfoWithFields(msg string, fields map[string]interface{})  {}
func (n *nopLogger) WarnWithFields(msg string, fields map[string]interface{})  {}
func (n *nopLogger) ErrorWithFields(msg string, fields map[string]interface{}) {}
func (n *nopLogger) FatalWithFields(msg string, fields map[string]interface{}) {}
func (n *nopLogger) GetZerolog() *zerolog.Logger                               { l := zerolog.Nop(); return &l }
