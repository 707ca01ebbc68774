package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/quipworks/quip-go/internal/credstore"
)

// memStore is an in-memory credential store for tests.
type memStore struct {
	mu    sync.Mutex
	state string
	set   bool
}

var _ credstore.Store = (*memStore)(nil)

func (m *memStore) Read(ctx context.Context) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.set {
		return "", credstore.ErrNotFound
	}
	return m.state, nil
}

func (m *memStore) Write(ctx context.Context, state string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.state, m.set = state, true
	return nil
}

func (m *memStore) Delete(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.state, m.set = "", false
	return nil
}

// newSessionBackend serves login (setting the session cookie) and me (checking
// it) for persistence tests.
func newSessionBackend(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/api/auth/csrf-token", tokenEndpoint("abc", new(atomic.Int32)))
	mux.HandleFunc("/api/auth/login", func(w http.ResponseWriter, r *http.Request) {
		http.SetCookie(w, &http.Cookie{Name: "quip_session", Value: "s-42", Path: "/"})
		writeBody(w, http.StatusOK,
			`{"success":true,"data":{"id":1,"username":"admin"},"timestamp":"2026-01-02T15:04:05Z"}`)
	})
	mux.HandleFunc("/api/auth/me", func(w http.ResponseWriter, r *http.Request) {
		ck, err := r.Cookie("quip_session")
		if err != nil || ck.Value != "s-42" {
			writeBody(w, http.StatusUnauthorized,
				`{"success":false,"error":"Authentication required","timestamp":"2026-01-02T15:04:05Z"}`)
			return
		}
		writeBody(w, http.StatusOK,
			`{"success":true,"data":{"id":1,"username":"admin"},"timestamp":"2026-01-02T15:04:05Z"}`)
	})
	return httptest.NewServer(mux)
}

func TestSessionPersistsAcrossClients(t *testing.T) {
	server := newSessionBackend(t)
	defer server.Close()

	store := &memStore{}

	// First client logs in; Login persists the session.
	first := newTestClient(t, server.URL, WithCredentialStore(store))
	if _, err := first.Auth.Login(context.Background(), "admin", "pw"); err != nil {
		t.Fatalf("Login failed: %v", err)
	}

	// A later process run restores the session from the store.
	second := newTestClient(t, server.URL, WithCredentialStore(store), WithMaxRetries(0))
	if err := second.LoadSession(context.Background()); err != nil {
		t.Fatalf("LoadSession failed: %v", err)
	}
	user, err := second.Auth.Me(context.Background())
	if err != nil {
		t.Fatalf("Me with restored session failed: %v", err)
	}
	if user.Username != "admin" {
		t.Errorf("Username = %q, want admin", user.Username)
	}
}

func TestSavedLoginPersistedOnlyWithAutoLogin(t *testing.T) {
	server := newSessionBackend(t)
	defer server.Close()

	tests := []struct {
		name      string
		autoLogin bool
		wantLogin bool
	}{
		{name: "auto-login off - credentials never stored", autoLogin: false, wantLogin: false},
		{name: "auto-login on - credentials stored", autoLogin: true, wantLogin: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := &memStore{}
			opts := []Option{WithCredentialStore(store)}
			if tt.autoLogin {
				opts = append(opts, WithAutoLogin())
			}
			client := newTestClient(t, server.URL, opts...)
			if _, err := client.Auth.Login(context.Background(), "admin", "hunter2"); err != nil {
				t.Fatalf("Login failed: %v", err)
			}

			raw, err := store.Read(context.Background())
			if err != nil {
				t.Fatalf("Read failed: %v", err)
			}
			var state SessionState
			if err := json.Unmarshal([]byte(raw), &state); err != nil {
				t.Fatalf("stored state is not valid JSON: %v", err)
			}

			if tt.wantLogin {
				if state.Login == nil || state.Login.Username != "admin" || state.Login.Password != "hunter2" {
					t.Errorf("Login = %+v, want the saved credentials", state.Login)
				}
			} else if state.Login != nil {
				t.Errorf("Login = %+v, want none without auto-login", state.Login)
			}
			if len(state.Cookies) == 0 {
				t.Error("session cookie missing from stored state")
			}
		})
	}
}

func TestClearSessionWipesEverything(t *testing.T) {
	server := newSessionBackend(t)
	defer server.Close()

	store := &memStore{}
	client := newTestClient(t, server.URL, WithCredentialStore(store), WithMaxRetries(0))
	if _, err := client.Auth.Login(context.Background(), "admin", "pw"); err != nil {
		t.Fatalf("Login failed: %v", err)
	}
	client.TokenCache().Set("abc")

	if err := client.ClearSession(context.Background()); err != nil {
		t.Fatalf("ClearSession failed: %v", err)
	}

	if _, ok := client.TokenCache().Get(); ok {
		t.Error("token cache should be empty")
	}
	if _, err := store.Read(context.Background()); err == nil {
		t.Error("stored credentials should be deleted")
	}
	// The jar no longer holds the session cookie, so the backend sees an
	// unauthenticated request.
	if _, err := client.Auth.Me(context.Background()); err == nil {
		t.Error("Me should fail after ClearSession")
	}
}

func TestLoadStateMissing(t *testing.T) {
	state, err := LoadState(context.Background(), &memStore{})
	if err != nil {
		t.Fatalf("LoadState failed: %v", err)
	}
	if state != nil {
		t.Errorf("LoadState = %+v, want nil for an empty store", state)
	}
}

func TestLoadStateCorrupt(t *testing.T) {
	store := &memStore{}
	if err := store.Write(context.Background(), "not json"); err != nil {
		t.Fatalf("Write failed: %v", err)
	}
	if _, err := LoadState(context.Background(), store); err == nil {
		t.Error("LoadState should fail on corrupt state")
	}
}
