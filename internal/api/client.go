package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"golang.org/x/oauth2"
	"golang.org/x/sync/singleflight"

	"github.com/quipworks/quip-go/internal/credstore"
	"github.com/quipworks/quip-go/internal/metrics"
)

const (
	// DefaultTimeout bounds every request including the token fetch.
	DefaultTimeout = 30 * time.Second

	// DefaultMaxRetries is the number of automatic retries after an
	// authentication failure.
	DefaultMaxRetries = 1

	// DefaultRetryBackoff is the fixed wait before an authentication retry.
	DefaultRetryBackoff = 1 * time.Second

	headerCSRFToken = "X-CSRF-Token"
	headerRequestID = "X-Request-ID"

	defaultUserAgent = "quip-go"

	// maxBodySize caps response bodies read into memory.
	maxBodySize = 4 << 20
)

// Option configures a Client.
type Option func(*clientConfig)

// clientConfig holds configuration for NewClient.
type clientConfig struct {
	transport  http.RoundTripper
	timeout    time.Duration
	logger     *slog.Logger
	hub        *Hub
	maxRetries int
	backoff    time.Duration
	apiToken   string
	store      credstore.Store
	autoLogin  bool
	userAgent  string
}

// WithTransport sets a custom base transport for all requests.
// If not provided, http.DefaultTransport is used.
func WithTransport(transport http.RoundTripper) Option {
	return func(c *clientConfig) {
		c.transport = transport
	}
}

// WithTimeout sets the per-request timeout. Zero disables it.
func WithTimeout(timeout time.Duration) Option {
	return func(c *clientConfig) {
		c.timeout = timeout
	}
}

// WithLogger sets the logger. If not provided, slog.Default() is used.
func WithLogger(logger *slog.Logger) Option {
	return func(c *clientConfig) {
		c.logger = logger
	}
}

// WithSignalHub sets the hub that receives re-authentication events.
func WithSignalHub(hub *Hub) Option {
	return func(c *clientConfig) {
		c.hub = hub
	}
}

// WithMaxRetries sets how many times an authentication failure is retried.
// Zero disables retries.
func WithMaxRetries(n int) Option {
	return func(c *clientConfig) {
		c.maxRetries = n
	}
}

// WithRetryBackoff sets the fixed wait before an authentication retry.
func WithRetryBackoff(backoff time.Duration) Option {
	return func(c *clientConfig) {
		c.backoff = backoff
	}
}

// WithAPIToken switches the client to bearer-token authentication. The token
// is injected as an Authorization header and the cookie/anti-forgery flow is
// skipped entirely.
func WithAPIToken(token string) Option {
	return func(c *clientConfig) {
		c.apiToken = token
	}
}

// WithCredentialStore sets the store used to persist session state across
// process runs.
func WithCredentialStore(store credstore.Store) Option {
	return func(c *clientConfig) {
		c.store = store
	}
}

// WithAutoLogin lets the re-auth probe replay a saved login from the
// credential store. Off by default; the saved login is only persisted while
// this is enabled.
func WithAutoLogin() Option {
	return func(c *clientConfig) {
		c.autoLogin = true
	}
}

// WithUserAgent overrides the User-Agent header.
func WithUserAgent(userAgent string) Option {
	return func(c *clientConfig) {
		c.userAgent = userAgent
	}
}

// Client is the session-authenticated Quip API client. All resource services
// route through it, sharing one cookie jar, one token cache, and one retry
// policy.
type Client struct {
	baseURL    *url.URL
	httpClient *http.Client
	tokenCache *TokenCache
	fetchGroup singleflight.Group
	hub        *Hub
	logger     *slog.Logger
	maxRetries int
	backoff    time.Duration
	bearerMode bool
	apiToken   string
	store      credstore.Store
	autoLogin  bool
	userAgent  string

	sessionMu  sync.Mutex // guards savedLogin and jar replacement
	writeMu    sync.Mutex // serializes credential store writes
	savedLogin *SavedLogin

	probing atomic.Bool

	// Resource services.
	Auth      *AuthService
	Chat      *ChatService
	Users     *UsersService
	Posts     *PostsService
	Templates *TemplatesService
	Quotes    *QuotesService
	Images    *ImagesService
}

// NewClient creates a client for the backend at baseURL.
func NewClient(baseURL string, opts ...Option) (*Client, error) {
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("parsing base URL: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("base URL must be http or https, got %q", baseURL)
	}
	if u.Host == "" {
		return nil, fmt.Errorf("base URL has no host: %q", baseURL)
	}

	cfg := &clientConfig{
		transport:  http.DefaultTransport,
		timeout:    DefaultTimeout,
		maxRetries: DefaultMaxRetries,
		backoff:    DefaultRetryBackoff,
		userAgent:  defaultUserAgent,
	}
	for _, opt := range opts {
		opt(cfg)
	}
	if cfg.logger == nil {
		cfg.logger = slog.Default()
	}

	transport := cfg.transport
	bearerMode := cfg.apiToken != ""
	if bearerMode {
		transport = &oauth2.Transport{
			Source: oauth2.StaticTokenSource(&oauth2.Token{AccessToken: cfg.apiToken}),
			Base:   transport,
		}
	}

	// The jar is the Go analogue of the browser's credentialed fetch: the
	// session cookie rides along on every request automatically.
	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, fmt.Errorf("creating cookie jar: %w", err)
	}

	c := &Client{
		baseURL: u,
		httpClient: &http.Client{
			Transport: transport,
			Jar:       jar,
			Timeout:   cfg.timeout,
		},
		tokenCache: NewTokenCache(),
		hub:        cfg.hub,
		logger:     cfg.logger,
		maxRetries: cfg.maxRetries,
		backoff:    cfg.backoff,
		bearerMode: bearerMode,
		apiToken:   cfg.apiToken,
		store:      cfg.store,
		autoLogin:  cfg.autoLogin,
		userAgent:  cfg.userAgent,
	}

	c.Auth = &AuthService{client: c}
	c.Chat = &ChatService{client: c}
	c.Users = &UsersService{client: c}
	c.Posts = &PostsService{client: c}
	c.Templates = &TemplatesService{client: c}
	c.Quotes = &QuotesService{client: c}
	c.Images = &ImagesService{client: c}

	return c, nil
}

// BaseURL returns the configured backend base URL.
func (c *Client) BaseURL() *url.URL {
	u := *c.baseURL
	return &u
}

// TokenCache exposes the anti-forgery token cache. Any caller may clear or
// overwrite it; the next mutating request re-fetches as needed.
func (c *Client) TokenCache() *TokenCache {
	return c.tokenCache
}

// RequestOption customizes a single request.
type RequestOption func(*requestOptions)

type requestOptions struct {
	header http.Header
	query  url.Values
}

// WithHeader adds a header to the request, overriding any default of the same
// name.
func WithHeader(key, value string) RequestOption {
	return func(o *requestOptions) {
		if o.header == nil {
			o.header = make(http.Header)
		}
		o.header.Set(key, value)
	}
}

// WithQuery adds a query parameter to the request URL.
func WithQuery(key, value string) RequestOption {
	return func(o *requestOptions) {
		if o.query == nil {
			o.query = make(url.Values)
		}
		o.query.Set(key, value)
	}
}

// isMutating reports whether a method requires the anti-forgery token.
func isMutating(method string) bool {
	switch method {
	case http.MethodGet, http.MethodHead, http.MethodOptions:
		return false
	}
	return true
}

// call issues a single attempt of a request and classifies the outcome.
// Side effects: the token cache is cleared on 401 and on token rejections.
func (c *Client) call(ctx context.Context, method, path string, body any, opts ...RequestOption) (*Envelope, error) {
	var ro requestOptions
	for _, opt := range opts {
		opt(&ro)
	}

	u := c.baseURL.JoinPath(path)
	if len(ro.query) > 0 {
		u.RawQuery = ro.query.Encode()
	}

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("encoding request body: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, u.String(), reader)
	if err != nil {
		return nil, fmt.Errorf("building request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set(headerRequestID, uuid.NewString())
	for key, values := range ro.header {
		req.Header[key] = values
	}

	if isMutating(method) && !c.bearerMode {
		token, err := c.ensureToken(ctx)
		if err != nil {
			// A dead token endpoint most plausibly means the backend process
			// restarted and lost its in-memory token state.
			c.tokenCache.Clear()
			metrics.TokenInvalidations.WithLabelValues("token_fetch_failed").Inc()
			metrics.ServerRestartsDetected.Inc()
			return nil, &ServerRestartError{Message: "anti-forgery token unavailable", Err: err}
		}
		req.Header.Set(headerCSRFToken, token)
	}

	route := metrics.NormalizeRoute(path)
	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		metrics.RecordAPIRequest(method, route, 0, time.Since(start))
		if ctx.Err() != nil {
			// Caller cancellation is not a restart.
			return nil, ctx.Err()
		}
		metrics.ServerRestartsDetected.Inc()
		c.logger.WarnContext(ctx, "backend unreachable",
			"method", method,
			"route", route,
			"error", err)
		return nil, &ServerRestartError{Message: "backend unreachable", Err: err}
	}
	defer func() { _ = resp.Body.Close() }()
	metrics.RecordAPIRequest(method, route, resp.StatusCode, time.Since(start))

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		metrics.ServerRestartsDetected.Inc()
		return nil, &ServerRestartError{Message: "reading response body", Err: err}
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		message := ""
		if env, envErr := parseEnvelope(raw); envErr == nil {
			message = env.Error
		}
		cerr := classifyResponse(resp.StatusCode, message)
		switch cerr.(type) {
		case *AuthenticationError:
			c.tokenCache.Clear()
			metrics.TokenInvalidations.WithLabelValues("unauthorized").Inc()
		case *ServerRestartError:
			c.tokenCache.Clear()
			metrics.TokenInvalidations.WithLabelValues("token_rejected").Inc()
			metrics.ServerRestartsDetected.Inc()
		}
		c.logger.WarnContext(ctx, "request failed",
			"method", method,
			"route", route,
			"status", resp.StatusCode)
		return nil, cerr
	}

	env, err := parseEnvelope(raw)
	if err != nil {
		return nil, fmt.Errorf("parsing response envelope: %w", err)
	}
	return env, nil
}

// parseEnvelope decodes a response body into the standard envelope. An empty
// body decodes as a bare success.
func parseEnvelope(raw []byte) (*Envelope, error) {
	if len(bytes.TrimSpace(raw)) == 0 {
		return &Envelope{Success: true}, nil
	}
	var env Envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return nil, err
	}
	return &env, nil
}
