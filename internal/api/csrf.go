package api

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"sync"

	"github.com/quipworks/quip-go/internal/metrics"
)

// TokenCache is a single-slot cache for the session's anti-forgery token.
// At most one token is cached at a time; Clear guarantees the next mutating
// request re-fetches before proceeding. Goroutine-safe.
type TokenCache struct {
	mu    sync.Mutex
	token string
}

// NewTokenCache returns an empty cache.
func NewTokenCache() *TokenCache {
	return &TokenCache{}
}

// Get returns the cached token and whether one is present.
func (c *TokenCache) Get() (string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.token, c.token != ""
}

// Set stores a token, overwriting any previous value.
func (c *TokenCache) Set(token string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.token = token
}

// Clear resets the cache to absent.
func (c *TokenCache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.token = ""
}

// ensureToken returns the cached anti-forgery token, fetching a fresh one from
// the backend when the cache is empty. Concurrent callers share a single fetch.
// On failure the cache stays empty.
func (c *Client) ensureToken(ctx context.Context) (string, error) {
	if token, ok := c.tokenCache.Get(); ok {
		metrics.TokenCacheHits.Inc()
		return token, nil
	}
	metrics.TokenCacheMisses.Inc()

	// Deduplicate concurrent fetches: back-to-back mutating calls on an empty
	// cache would otherwise each hit the token endpoint.
	token, err, _ := c.fetchGroup.Do("csrf", func() (any, error) {
		if token, ok := c.tokenCache.Get(); ok {
			return token, nil
		}
		token, err := c.fetchToken(ctx)
		if err != nil {
			metrics.TokenFetches.WithLabelValues("error").Inc()
			return "", err
		}
		metrics.TokenFetches.WithLabelValues("success").Inc()
		c.tokenCache.Set(token)
		return token, nil
	})
	if err != nil {
		return "", err
	}
	return token.(string), nil
}

// fetchToken issues the credentialed GET to the token endpoint and parses the
// token out of the response envelope.
func (c *Client) fetchToken(ctx context.Context) (string, error) {
	u := c.baseURL.JoinPath("/api/auth/csrf-token")
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return "", fmt.Errorf("building token request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("token endpoint unreachable: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return "", fmt.Errorf("reading token response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", fmt.Errorf("token endpoint returned HTTP %d", resp.StatusCode)
	}

	env, err := parseEnvelope(body)
	if err != nil {
		return "", fmt.Errorf("parsing token response: %w", err)
	}
	data, err := decode[csrfTokenData](env)
	if err != nil {
		return "", fmt.Errorf("malformed token payload: %w", err)
	}
	if data.CSRFToken == "" {
		return "", fmt.Errorf("token endpoint returned an empty token")
	}
	return data.CSRFToken, nil
}
