package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/cookiejar"

	"github.com/quipworks/quip-go/internal/credstore"
)

// SessionState is the credential payload persisted to the credential store:
// the session cookies, an optional API token for bearer mode, and an optional
// saved login for auto-login.
type SessionState struct {
	Cookies  []SessionCookie `json:"cookies,omitempty"`
	APIToken string          `json:"apiToken,omitempty"`
	Login    *SavedLogin     `json:"login,omitempty"`
}

// SessionCookie is one serialized session cookie.
type SessionCookie struct {
	Name  string `json:"name"`
	Value string `json:"value"`
	Path  string `json:"path,omitempty"`
}

// SavedLogin is a credential pair kept for auto-login. Only persisted when
// auto-login is enabled.
type SavedLogin struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// LoadState reads and decodes the stored session state. A store with nothing
// stored yet returns (nil, nil).
func LoadState(ctx context.Context, store credstore.Store) (*SessionState, error) {
	raw, err := store.Read(ctx)
	if errors.Is(err, credstore.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var state SessionState
	if err := json.Unmarshal([]byte(raw), &state); err != nil {
		return nil, fmt.Errorf("decoding stored credentials: %w", err)
	}
	return &state, nil
}

// LoadSession restores session cookies and the saved login from the credential
// store. A client without a store, or a store with nothing in it, is a no-op.
func (c *Client) LoadSession(ctx context.Context) error {
	if c.store == nil {
		return nil
	}
	state, err := LoadState(ctx, c.store)
	if err != nil || state == nil {
		return err
	}

	cookies := make([]*http.Cookie, 0, len(state.Cookies))
	for _, sc := range state.Cookies {
		path := sc.Path
		if path == "" {
			path = "/"
		}
		cookies = append(cookies, &http.Cookie{Name: sc.Name, Value: sc.Value, Path: path})
	}
	if len(cookies) > 0 {
		c.httpClient.Jar.SetCookies(c.baseURL, cookies)
	}

	c.sessionMu.Lock()
	c.savedLogin = state.Login
	c.sessionMu.Unlock()
	return nil
}

// SaveSession persists the current session cookies to the credential store,
// plus the saved login when auto-login is enabled. A client without a store is
// a no-op.
func (c *Client) SaveSession(ctx context.Context) error {
	if c.store == nil {
		return nil
	}

	state := &SessionState{APIToken: c.apiToken}
	for _, ck := range c.httpClient.Jar.Cookies(c.baseURL) {
		state.Cookies = append(state.Cookies, SessionCookie{Name: ck.Name, Value: ck.Value})
	}
	if c.autoLogin {
		state.Login = c.currentSavedLogin()
	}

	raw, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("encoding session state: %w", err)
	}

	// Serialize writers so concurrent saves cannot interleave.
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	if err := c.store.Write(ctx, string(raw)); err != nil {
		return fmt.Errorf("persisting session state: %w", err)
	}
	return nil
}

// ClearSession drops the token cache, the cookie jar, the saved login, and any
// persisted credential state.
func (c *Client) ClearSession(ctx context.Context) error {
	c.tokenCache.Clear()

	jar, err := cookiejar.New(nil)
	if err != nil {
		return fmt.Errorf("resetting cookie jar: %w", err)
	}
	c.sessionMu.Lock()
	c.httpClient.Jar = jar
	c.savedLogin = nil
	c.sessionMu.Unlock()

	if c.store == nil {
		return nil
	}
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	if err := c.store.Delete(ctx); err != nil {
		return fmt.Errorf("deleting stored credentials: %w", err)
	}
	return nil
}

// rememberLogin keeps a credential pair in memory for the re-auth probe. It is
// persisted by SaveSession only while auto-login is enabled.
func (c *Client) rememberLogin(username, password string) {
	c.sessionMu.Lock()
	c.savedLogin = &SavedLogin{Username: username, Password: password}
	c.sessionMu.Unlock()
}

func (c *Client) currentSavedLogin() *SavedLogin {
	c.sessionMu.Lock()
	defer c.sessionMu.Unlock()
	if c.savedLogin == nil {
		return nil
	}
	login := *c.savedLogin
	return &login
}
