// Package stub implements an in-process stand-in for the Quip backend so the
// client, the CLI, and integration tests can run without a real deployment.
//
// The stub speaks the same envelope protocol as production: cookie sessions,
// a per-session anti-forgery token on mutating routes, and success/error
// envelopes with RFC 3339 timestamps. State is held in memory; Reset drops
// all sessions the way a process restart would, which is how tests exercise
// the client's restart detection and recovery paths.
package stub

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Server serves the stub API over HTTP. It also works as a plain
// http.Handler for httptest-based tests.
type Server struct {
	store   *Store
	logger  *slog.Logger
	mux     *http.ServeMux
	handler http.Handler
	server  *http.Server
	addr    string
}

var _ http.Handler = (*Server)(nil)

// New builds a stub server around the given store.
func New(store *Store, logger *slog.Logger) *Server {
	s := &Server{
		store:  store,
		logger: logger,
		mux:    http.NewServeMux(),
	}
	s.routes()
	s.handler = applyMiddlewares(s.mux,
		Logging(logger),
		Recovery(logger),
	)
	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.handler.ServeHTTP(w, r)
}

// Store exposes the backing store for seeding and test assertions.
func (s *Server) Store() *Store {
	return s.store
}

// Reset drops every session and anti-forgery token, simulating a backend
// restart.
func (s *Server) Reset() {
	s.store.Reset()
}

// Addr returns the bound listen address once Start has been called. Useful
// when starting on ":0".
func (s *Server) Addr() string {
	return s.addr
}

func (s *Server) routes() {
	s.mux.HandleFunc("GET /api/auth/csrf-token", s.withSession(s.handleCSRFToken))
	s.mux.HandleFunc("GET /api/auth/session-init", s.withSession(s.handleSessionInit))
	s.mux.HandleFunc("POST /api/auth/login", s.withSession(s.handleLogin))
	s.mux.HandleFunc("POST /api/auth/logout", s.withSession(s.handleLogout))
	s.mux.HandleFunc("GET /api/auth/me", s.withSession(s.handleMe))

	s.mux.HandleFunc("POST /api/chat", s.withSession(s.handleChat))
	s.mux.HandleFunc("GET /api/chat/history", s.withSession(s.handleChatHistory))

	registerResource(s, "/api/users", s.store.users, true, nil)
	registerResource(s, "/api/quotes", s.store.quotes, false, filterQuoteByCategory)
	registerResource(s, "/api/posts", s.store.posts, false, nil)
	registerResource(s, "/api/templates", s.store.templates, false, filterTemplateByCategory)
	registerResource(s, "/api/images", s.store.images, false, nil)

	s.mux.HandleFunc("POST /__stub/reset", s.handleReset)
	s.mux.HandleFunc("GET /healthz", s.handleHealth)
	s.mux.Handle("GET /metrics", promhttp.Handler())
}

// Start starts the HTTP server in the background. It returns an error channel
// that receives at most one serve error and is closed when the server stops.
// The listener is bound before returning, so a successful Start means the
// address is live.
func (s *Server) Start(ctx context.Context, address string) (<-chan error, error) {
	listener, err := net.Listen("tcp", address)
	if err != nil {
		return nil, fmt.Errorf("listening on %s: %w", address, err)
	}
	s.addr = listener.Addr().String()

	s.server = &http.Server{
		Handler:      s,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  90 * time.Second,
		BaseContext: func(net.Listener) context.Context {
			return ctx
		},
	}

	errCh := make(chan error, 1)
	go func() {
		defer close(errCh)
		s.logger.InfoContext(ctx, "stub API listening", "address", s.addr)
		if err := s.server.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("serving stub API: %w", err)
		}
	}()
	return errCh, nil
}

// Shutdown gracefully stops the server, falling back to a hard close when the
// context expires first.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.server == nil {
		return nil
	}
	if err := s.server.Shutdown(ctx); err != nil {
		if closeErr := s.server.Close(); closeErr != nil {
			return errors.Join(fmt.Errorf("shutting down stub API: %w", err), closeErr)
		}
		return fmt.Errorf("shutting down stub API: %w", err)
	}
	return nil
}
