package api

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/quipworks/quip-go/internal/metrics"
)

// Signal identifies a broadcast event kind.
type Signal string

const (
	// SignalAuthRequired fires when a request failed because the session is
	// invalid or expired.
	SignalAuthRequired Signal = "auth_required"

	// SignalServerRestarted fires when the backend appears to have restarted
	// and lost its session and token state.
	SignalServerRestarted Signal = "server_restarted"
)

// Event is one broadcast notification.
type Event struct {
	Signal Signal
	Reason string
	Time   time.Time
}

// subscriberBuffer is the per-subscriber channel capacity. A subscriber that
// falls further behind misses events rather than blocking publishers.
const subscriberBuffer = 8

// Hub broadcasts re-authentication events to any number of subscribers,
// decoupled from the call sites that produce them.
type Hub struct {
	mu   sync.Mutex
	subs map[int]chan Event
	next int
}

// NewHub returns an empty hub.
func NewHub() *Hub {
	return &Hub{subs: make(map[int]chan Event)}
}

// Subscribe registers a listener and returns its receive channel plus a cancel
// function. Cancel closes the channel and releases the subscription; it is safe
// to call more than once.
func (h *Hub) Subscribe() (<-chan Event, func()) {
	h.mu.Lock()
	defer h.mu.Unlock()

	id := h.next
	h.next++
	ch := make(chan Event, subscriberBuffer)
	h.subs[id] = ch
	metrics.SignalSubscribers.Inc()

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			h.mu.Lock()
			defer h.mu.Unlock()
			delete(h.subs, id)
			close(ch)
			metrics.SignalSubscribers.Dec()
		})
	}
	return ch, cancel
}

// Publish broadcasts an event to all subscribers without blocking. Events to
// full subscriber channels are dropped.
func (h *Hub) Publish(ev Event) {
	h.mu.Lock()
	defer h.mu.Unlock()

	metrics.SignalsEmitted.WithLabelValues(string(ev.Signal)).Inc()
	for _, ch := range h.subs {
		select {
		case ch <- ev:
		default:
			metrics.SignalsDropped.WithLabelValues(string(ev.Signal)).Inc()
		}
	}
}

// probeTimeout bounds the background re-auth probe.
const probeTimeout = 10 * time.Second

// HandleFailure inspects a classified failure and fires the matching
// side-channel reaction:
//   - *AuthenticationError: broadcast SignalAuthRequired and start the re-auth
//     probe.
//   - *ServerRestartError: clear the token cache, broadcast
//     SignalServerRestarted, and start the same probe.
//   - anything else: no action; the caller handles the error directly.
//
// The probe is fire-and-forget: it runs in the background and its own failure
// is only logged, never escalated into a caller's control flow.
func (c *Client) HandleFailure(ctx context.Context, err error) {
	var authErr *AuthenticationError
	var restartErr *ServerRestartError
	switch {
	case errors.As(err, &authErr):
		c.publish(SignalAuthRequired, authErr.Error())
		c.startProbe(ctx)
	case errors.As(err, &restartErr):
		c.tokenCache.Clear()
		c.publish(SignalServerRestarted, restartErr.Error())
		c.startProbe(ctx)
	}
}

func (c *Client) publish(signal Signal, reason string) {
	if c.hub == nil {
		return
	}
	c.hub.Publish(Event{Signal: signal, Reason: reason, Time: time.Now()})
}

// startProbe launches the re-auth probe unless one is already running. The
// probe outlives the triggering request's context but is bounded by its own
// timeout.
func (c *Client) startProbe(ctx context.Context) {
	if !c.probing.CompareAndSwap(false, true) {
		return
	}
	probeCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), probeTimeout)
	go func() {
		defer cancel()
		defer c.probing.Store(false)
		c.reauthProbe(probeCtx)
	}()
}

// reauthProbe attempts best-effort session recovery. With auto-login enabled
// and a saved login available it replays the login; otherwise it degrades to a
// session warm-up plus a fresh token fetch. Probe requests go through call
// directly so a probe failure can never trigger another probe.
func (c *Client) reauthProbe(ctx context.Context) {
	if c.autoLogin {
		if login := c.currentSavedLogin(); login != nil {
			if _, err := c.call(ctx, http.MethodPost, "/api/auth/login", loginRequest{
				Username: login.Username,
				Password: login.Password,
			}); err != nil {
				metrics.SessionProbes.WithLabelValues("login_failed").Inc()
				c.logger.DebugContext(ctx, "auto-login probe failed", "error", err)
			} else {
				metrics.SessionProbes.WithLabelValues("recovered").Inc()
				c.logger.InfoContext(ctx, "session recovered by auto-login")
				if err := c.SaveSession(ctx); err != nil {
					c.logger.DebugContext(ctx, "persisting recovered session failed", "error", err)
				}
				return
			}
		}
	}

	// Warm-up is optional on the backend; 404 or offline is tolerated.
	if _, err := c.call(ctx, http.MethodGet, "/api/auth/session-init", nil); err != nil {
		c.logger.DebugContext(ctx, "session warm-up probe failed", "error", err)
	}
	if _, err := c.ensureToken(ctx); err != nil {
		metrics.SessionProbes.WithLabelValues("token_failed").Inc()
		c.logger.DebugContext(ctx, "token refresh probe failed", "error", err)
		return
	}
	metrics.SessionProbes.WithLabelValues("token_refreshed").Inc()
}
