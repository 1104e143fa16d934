// Package ratelimit paces requests to the private API from the caller side.
//
// The server answers aggressive clients with 429 and, worse, checkpoints, so
// the CLI waits on a limiter before every call. The instagram client accepts
// any Limiter through Options.Limiter and never paces on its own.
//
// Available Implementations:
//
// Token Bucket:
//   - Fixed capacity bucket that refills in full after a period
//   - Caps short bursts
//
// Sliding Window:
//   - At most N requests in any window of the given size
//   - Caps the sustained rate
//
// Chain combines limiters; FromConfig builds the burst plus per minute chain
// from config.RateLimitConfig.
//
// Usage:
//
//	limiter := ratelimit.FromConfig(cfg.RateLimit, log)
//	client, err := instagram.New(instagram.Options{Limiter: limiter})
package ratelimit
