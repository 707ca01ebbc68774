package api

import (
	"context"
	"errors"
	"time"

	"github.com/quipworks/quip-go/internal/metrics"
)

// do issues a request with automatic recovery from authentication failures:
// attempts run from 0 to maxRetries inclusive; only *AuthenticationError is
// retried, after clearing the token cache and waiting the fixed backoff.
// Every other failure kind propagates immediately, since a restart or a
// generic error is not fixed by a fresh token. The final failure is handed to
// the signal hub before returning.
func (c *Client) do(ctx context.Context, method, path string, body any, opts ...RequestOption) (*Envelope, error) {
	var lastErr error
	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		if attempt > 0 {
			// Never reuse a stale token across a retry boundary.
			c.tokenCache.Clear()
			c.logger.DebugContext(ctx, "retrying after authentication failure",
				"attempt", attempt,
				"backoff", c.backoff)
			if err := c.sleep(ctx); err != nil {
				return nil, err
			}
		}

		env, err := c.call(ctx, method, path, body, opts...)
		if err == nil {
			if attempt > 0 {
				metrics.AuthRetries.WithLabelValues("recovered").Inc()
			}
			return env, nil
		}
		lastErr = err

		var authErr *AuthenticationError
		if !errors.As(err, &authErr) {
			break
		}
	}

	var authErr *AuthenticationError
	if errors.As(lastErr, &authErr) && c.maxRetries > 0 {
		metrics.AuthRetries.WithLabelValues("exhausted").Inc()
	}

	c.HandleFailure(ctx, lastErr)
	return nil, lastErr
}

// sleep waits the retry backoff, returning early if ctx is cancelled.
func (c *Client) sleep(ctx context.Context) error {
	timer := time.NewTimer(c.backoff)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
