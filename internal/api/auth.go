package api

import (
	"context"
	"net/http"
)

// AuthService handles login, logout, and session inspection.
type AuthService struct {
	client *Client
}

// CSRFToken returns the current anti-forgery token, fetching one if the cache
// is empty.
func (s *AuthService) CSRFToken(ctx context.Context) (string, error) {
	return s.client.ensureToken(ctx)
}

// Login authenticates with a username and password. On success the session
// cookie lands in the client's jar and the session is persisted to the
// credential store when one is configured.
func (s *AuthService) Login(ctx context.Context, username, password string) (*User, error) {
	env, err := s.client.do(ctx, http.MethodPost, "/api/auth/login", loginRequest{
		Username: username,
		Password: password,
	})
	if err != nil {
		return nil, err
	}
	user, err := decode[User](env)
	if err != nil {
		return nil, err
	}

	s.client.rememberLogin(username, password)
	if err := s.client.SaveSession(ctx); err != nil {
		// Login itself succeeded; a persistence failure only costs the next
		// process run its session.
		s.client.logger.WarnContext(ctx, "persisting session failed", "error", err)
	}
	return &user, nil
}

// Logout ends the session server-side and wipes local session state.
func (s *AuthService) Logout(ctx context.Context) error {
	_, err := s.client.do(ctx, http.MethodPost, "/api/auth/logout", nil)
	if err != nil {
		return err
	}
	return s.client.ClearSession(ctx)
}

// Me returns the current session user. A missing or expired session yields
// *AuthenticationError.
func (s *AuthService) Me(ctx context.Context) (*User, error) {
	env, err := s.client.do(ctx, http.MethodGet, "/api/auth/me", nil)
	if err != nil {
		return nil, err
	}
	user, err := decode[User](env)
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// SessionInit warms up the backend session. The endpoint is optional
// server-side; callers tolerate failure.
func (s *AuthService) SessionInit(ctx context.Context) error {
	_, err := s.client.do(ctx, http.MethodGet, "/api/auth/session-init", nil)
	return err
}
