package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// API Request Metrics
var (
	// APIRequests tracks total API requests
	APIRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "quip_api_requests_total",
			Help: "Total API requests by method, route (normalized path), and status code",
		},
		[]string{"method", "route", "status"},
	)

	// APIRequestDuration tracks API request latency
	APIRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:                            "quip_api_request_duration_ms",
			Help:                            "API request duration in milliseconds",
			NativeHistogramBucketFactor:     1.1,
			NativeHistogramMaxBucketNumber:  100,
			NativeHistogramMinResetDuration: 1 * time.Hour,
		},
		[]string{"method", "route"},
	)

	// TransportErrors tracks requests that failed before receiving a response
	TransportErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "quip_transport_errors_total",
			Help: "Total requests that failed at the transport level, by method and route",
		},
		[]string{"method", "route"},
	)
)

// Security Token Metrics
var (
	// TokenFetches tracks security token fetches from the server
	TokenFetches = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "quip_token_fetches_total",
			Help: "Total security token fetches by status",
		},
		[]string{"status"},
	)

	// TokenCacheHits tracks requests served from the cached token
	TokenCacheHits = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "quip_token_cache_hits_total",
			Help: "Total requests that reused the cached security token",
		},
	)

	// TokenCacheMisses tracks requests that triggered a token fetch
	TokenCacheMisses = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "quip_token_cache_misses_total",
			Help: "Total requests that found no cached security token",
		},
	)

	// TokenInvalidations tracks cache clears after auth or restart failures
	TokenInvalidations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "quip_token_invalidations_total",
			Help: "Total security token invalidations by reason",
		},
		[]string{"reason"},
	)
)

// Recovery Metrics
var (
	// AuthRetries tracks automatic retries after authentication failures
	AuthRetries = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "quip_auth_retries_total",
			Help: "Total automatic retries after authentication failures, by outcome",
		},
		[]string{"outcome"},
	)

	// ServerRestartsDetected tracks detected backend restarts
	ServerRestartsDetected = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "quip_server_restarts_detected_total",
			Help: "Total backend restarts detected from token rejections or connection failures",
		},
	)

	// SessionProbes tracks session recovery probes
	SessionProbes = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "quip_session_probes_total",
			Help: "Total session recovery probes by status",
		},
		[]string{"status"},
	)
)

// Signal Metrics
var (
	// SignalsEmitted tracks signals broadcast to subscribers
	SignalsEmitted = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "quip_signals_emitted_total",
			Help: "Total signals broadcast to subscribers, by signal kind",
		},
		[]string{"signal"},
	)

	// SignalsDropped tracks signals dropped due to slow subscribers
	SignalsDropped = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "quip_signals_dropped_total",
			Help: "Total signals dropped because a subscriber channel was full, by signal kind",
		},
		[]string{"signal"},
	)

	// SignalSubscribers tracks active signal subscribers
	SignalSubscribers = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "quip_signal_subscribers",
			Help: "Number of active signal subscribers",
		},
	)
)

// Stub Backend Metrics
var (
	// StubActiveSessions tracks active sessions on the stub backend
	StubActiveSessions = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "quip_stub_active_sessions",
			Help: "Number of active sessions on the stub backend",
		},
	)

	// StubRestarts tracks simulated backend restarts
	StubRestarts = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "quip_stub_restarts_total",
			Help: "Total simulated restarts of the stub backend",
		},
	)

	// StubResources tracks stored resources on the stub backend
	StubResources = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "quip_stub_resources",
			Help: "Current number of stored resources on the stub backend, by resource kind",
		},
		[]string{"resource"},
	)
)
