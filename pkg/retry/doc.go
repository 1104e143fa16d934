// Package retry provides backoff and retry helpers for callers of the
// instagram client, which never retries on its own.
//
// Features:
//   - Exponential, linear and constant backoff with jitter
//   - Per error kind delays: throttling waits much longer than a dropped connection
//   - A single relogin when the session expires mid operation
//   - Context support for cancellation
//
// Basic usage:
//
//	cfg := retry.FromConfig(appConfig.Retry, log)
//	cfg.Relogin = client.Relogin
//
//	items, err := retry.DoWithResult(func() ([]map[string]any, error) {
//		return client.FeedTimeline(100, nil)
//	}, cfg)
//
// Throttled (429) and transport failures are retried. Expired sessions are
// retried once through Relogin when it is set. Everything else, checkpoints
// included, is returned at once.
package retry
