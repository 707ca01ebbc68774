package api

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"
)

// newTestClient builds a client against a test server with quiet logging and a
// short retry backoff.
func newTestClient(t *testing.T, baseURL string, opts ...Option) *Client {
	t.Helper()
	opts = append([]Option{
		WithLogger(slog.New(slog.DiscardHandler)),
		WithRetryBackoff(5 * time.Millisecond),
	}, opts...)
	client, err := NewClient(baseURL, opts...)
	if err != nil {
		t.Fatalf("NewClient failed: %v", err)
	}
	return client
}

// writeBody writes a canned JSON response.
func writeBody(w http.ResponseWriter, status int, body string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write([]byte(body))
}

// tokenEndpoint serves the anti-forgery token endpoint, counting fetches.
func tokenEndpoint(token string, calls *atomic.Int32) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		writeBody(w, http.StatusOK,
			fmt.Sprintf(`{"success":true,"data":{"csrfToken":%q},"timestamp":"2026-01-02T15:04:05Z"}`, token))
	}
}

func TestMutatingRequestAttachesToken(t *testing.T) {
	var tokenCalls atomic.Int32
	var gotToken, gotRequestID, gotContentType string

	mux := http.NewServeMux()
	mux.HandleFunc("/api/auth/csrf-token", tokenEndpoint("abc", &tokenCalls))
	mux.HandleFunc("/api/quotes", func(w http.ResponseWriter, r *http.Request) {
		gotToken = r.Header.Get("X-CSRF-Token")
		gotRequestID = r.Header.Get("X-Request-ID")
		gotContentType = r.Header.Get("Content-Type")
		writeBody(w, http.StatusOK,
			`{"success":true,"data":{"id":1,"text":"stay hungry"},"timestamp":"2026-01-02T15:04:05Z"}`)
	})
	server := httptest.NewServer(mux)
	defer server.Close()

	client := newTestClient(t, server.URL)
	quote, err := client.Quotes.Create(context.Background(), QuoteInput{Text: "stay hungry"})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	if quote.ID != 1 || quote.Text != "stay hungry" {
		t.Errorf("Create = %+v, want id 1, text %q", quote, "stay hungry")
	}
	if got := tokenCalls.Load(); got != 1 {
		t.Errorf("token fetches = %d, want exactly 1 before the mutating call", got)
	}
	if gotToken != "abc" {
		t.Errorf("X-CSRF-Token = %q, want %q", gotToken, "abc")
	}
	if gotRequestID == "" {
		t.Error("X-Request-ID header missing")
	}
	if gotContentType != "application/json" {
		t.Errorf("Content-Type = %q, want application/json", gotContentType)
	}
}

func TestReadRequestSkipsTokenFetch(t *testing.T) {
	var tokenCalls atomic.Int32

	mux := http.NewServeMux()
	mux.HandleFunc("/api/auth/csrf-token", tokenEndpoint("abc", &tokenCalls))
	mux.HandleFunc("/api/quotes", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("X-CSRF-Token") != "" {
			t.Error("GET should not carry X-CSRF-Token")
		}
		writeBody(w, http.StatusOK, `{"success":true,"data":[],"timestamp":"2026-01-02T15:04:05Z"}`)
	})
	server := httptest.NewServer(mux)
	defer server.Close()

	client := newTestClient(t, server.URL)
	if _, err := client.Quotes.List(context.Background()); err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if got := tokenCalls.Load(); got != 0 {
		t.Errorf("token fetches = %d, want 0 for a read", got)
	}
}

func TestUnauthorizedClearsCacheAndClassifies(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/auth/me", func(w http.ResponseWriter, r *http.Request) {
		writeBody(w, http.StatusUnauthorized,
			`{"success":false,"error":"Authentication required","timestamp":"2026-01-02T15:04:05Z"}`)
	})
	server := httptest.NewServer(mux)
	defer server.Close()

	client := newTestClient(t, server.URL, WithMaxRetries(0))
	client.TokenCache().Set("stale")

	_, err := client.Auth.Me(context.Background())
	var authErr *AuthenticationError
	if !errors.As(err, &authErr) {
		t.Fatalf("Me = %v, want *AuthenticationError", err)
	}
	if authErr.Message != "Authentication required" {
		t.Errorf("Message = %q, want %q", authErr.Message, "Authentication required")
	}
	if _, ok := client.TokenCache().Get(); ok {
		t.Error("token cache should be empty after a 401")
	}
}

func TestCSRFRejectionClassifiesAsRestart(t *testing.T) {
	var tokenCalls atomic.Int32

	mux := http.NewServeMux()
	mux.HandleFunc("/api/auth/csrf-token", tokenEndpoint("abc", &tokenCalls))
	mux.HandleFunc("/api/posts", func(w http.ResponseWriter, r *http.Request) {
		writeBody(w, http.StatusForbidden,
			`{"success":false,"error":"CSRF token invalid","timestamp":"2026-01-02T15:04:05Z"}`)
	})
	server := httptest.NewServer(mux)
	defer server.Close()

	client := newTestClient(t, server.URL, WithMaxRetries(0))
	_, err := client.Posts.Create(context.Background(), PostInput{Title: "hello"})

	var restartErr *ServerRestartError
	if !errors.As(err, &restartErr) {
		t.Fatalf("Create = %v, want *ServerRestartError", err)
	}
	if restartErr.Message != "CSRF token invalid" {
		t.Errorf("Message = %q, want %q", restartErr.Message, "CSRF token invalid")
	}
	if _, ok := client.TokenCache().Get(); ok {
		t.Error("token cache should be empty after a token rejection")
	}
}

func TestForbiddenWithoutCSRFMessageStaysGeneric(t *testing.T) {
	var tokenCalls atomic.Int32

	mux := http.NewServeMux()
	mux.HandleFunc("/api/auth/csrf-token", tokenEndpoint("abc", &tokenCalls))
	mux.HandleFunc("/api/users", func(w http.ResponseWriter, r *http.Request) {
		writeBody(w, http.StatusForbidden,
			`{"success":false,"error":"admin role required","timestamp":"2026-01-02T15:04:05Z"}`)
	})
	server := httptest.NewServer(mux)
	defer server.Close()

	client := newTestClient(t, server.URL, WithMaxRetries(0))
	_, err := client.Users.Create(context.Background(), UserInput{Username: "eve"})

	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("Create = %v, want *APIError", err)
	}
	if apiErr.Message != "admin role required" {
		t.Errorf("Message = %q, want the server text verbatim", apiErr.Message)
	}
	if apiErr.StatusCode != http.StatusForbidden {
		t.Errorf("StatusCode = %d, want 403", apiErr.StatusCode)
	}
	// A generic failure is not a token problem; the cache keeps its value.
	if token, ok := client.TokenCache().Get(); !ok || token != "abc" {
		t.Errorf("token cache = %q, %v, want %q intact", token, ok, "abc")
	}
}

func TestTransportFailureClassifiesAsRestart(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := server.URL
	server.Close()

	client := newTestClient(t, url, WithMaxRetries(0))
	_, err := client.Quotes.List(context.Background())

	var restartErr *ServerRestartError
	if !errors.As(err, &restartErr) {
		t.Fatalf("List = %v, want *ServerRestartError for a connection failure", err)
	}
	if restartErr.Err == nil {
		t.Error("transport cause should be preserved in Err")
	}
}

func TestTokenEndpointFailureFailsMutatingCall(t *testing.T) {
	var resourceCalls atomic.Int32

	mux := http.NewServeMux()
	mux.HandleFunc("/api/auth/csrf-token", func(w http.ResponseWriter, r *http.Request) {
		writeBody(w, http.StatusInternalServerError,
			`{"success":false,"error":"boom","timestamp":"2026-01-02T15:04:05Z"}`)
	})
	mux.HandleFunc("/api/quotes", func(w http.ResponseWriter, r *http.Request) {
		resourceCalls.Add(1)
	})
	server := httptest.NewServer(mux)
	defer server.Close()

	client := newTestClient(t, server.URL, WithMaxRetries(0))
	_, err := client.Quotes.Create(context.Background(), QuoteInput{Text: "x"})

	var restartErr *ServerRestartError
	if !errors.As(err, &restartErr) {
		t.Fatalf("Create = %v, want *ServerRestartError when the token endpoint fails", err)
	}
	if got := resourceCalls.Load(); got != 0 {
		t.Errorf("resource endpoint was called %d times, want 0", got)
	}
	if _, ok := client.TokenCache().Get(); ok {
		t.Error("token cache should stay empty after a failed fetch")
	}
}

func TestBearerModeSkipsTokenFlow(t *testing.T) {
	var tokenCalls atomic.Int32
	var gotAuth, gotCSRF string

	mux := http.NewServeMux()
	mux.HandleFunc("/api/auth/csrf-token", tokenEndpoint("abc", &tokenCalls))
	mux.HandleFunc("/api/quotes", func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotCSRF = r.Header.Get("X-CSRF-Token")
		writeBody(w, http.StatusOK,
			`{"success":true,"data":{"id":7,"text":"x"},"timestamp":"2026-01-02T15:04:05Z"}`)
	})
	server := httptest.NewServer(mux)
	defer server.Close()

	client := newTestClient(t, server.URL, WithAPIToken("tok-123"))
	if _, err := client.Quotes.Create(context.Background(), QuoteInput{Text: "x"}); err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	if gotAuth != "Bearer tok-123" {
		t.Errorf("Authorization = %q, want %q", gotAuth, "Bearer tok-123")
	}
	if gotCSRF != "" {
		t.Errorf("X-CSRF-Token = %q, want none in bearer mode", gotCSRF)
	}
	if got := tokenCalls.Load(); got != 0 {
		t.Errorf("token fetches = %d, want 0 in bearer mode", got)
	}
}

func TestSessionCookieCarriedAcrossRequests(t *testing.T) {
	var tokenCalls atomic.Int32

	mux := http.NewServeMux()
	mux.HandleFunc("/api/auth/csrf-token", tokenEndpoint("abc", &tokenCalls))
	mux.HandleFunc("/api/auth/login", func(w http.ResponseWriter, r *http.Request) {
		http.SetCookie(w, &http.Cookie{Name: "quip_session", Value: "s-1", Path: "/"})
		writeBody(w, http.StatusOK,
			`{"success":true,"data":{"id":1,"username":"admin"},"timestamp":"2026-01-02T15:04:05Z"}`)
	})
	mux.HandleFunc("/api/auth/me", func(w http.ResponseWriter, r *http.Request) {
		ck, err := r.Cookie("quip_session")
		if err != nil || ck.Value != "s-1" {
			writeBody(w, http.StatusUnauthorized,
				`{"success":false,"error":"Authentication required","timestamp":"2026-01-02T15:04:05Z"}`)
			return
		}
		writeBody(w, http.StatusOK,
			`{"success":true,"data":{"id":1,"username":"admin"},"timestamp":"2026-01-02T15:04:05Z"}`)
	})
	server := httptest.NewServer(mux)
	defer server.Close()

	client := newTestClient(t, server.URL)
	if _, err := client.Auth.Login(context.Background(), "admin", "pw"); err != nil {
		t.Fatalf("Login failed: %v", err)
	}
	user, err := client.Auth.Me(context.Background())
	if err != nil {
		t.Fatalf("Me failed: %v", err)
	}
	if user.Username != "admin" {
		t.Errorf("Username = %q, want admin", user.Username)
	}
}

func TestCallerCancellationIsNotARestart(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(5 * time.Second):
		}
	}))
	defer server.Close()

	client := newTestClient(t, server.URL, WithMaxRetries(0))
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err := client.Quotes.List(ctx)
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("List = %v, want context.DeadlineExceeded", err)
	}
	var restartErr *ServerRestartError
	if errors.As(err, &restartErr) {
		t.Error("caller cancellation must not be classified as a restart")
	}
}

func TestNewClientValidation(t *testing.T) {
	tests := []struct {
		name    string
		baseURL string
	}{
		{name: "empty", baseURL: ""},
		{name: "no scheme", baseURL: "localhost:3000"},
		{name: "bad scheme", baseURL: "ftp://example.com"},
		{name: "no host", baseURL: "http://"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := NewClient(tt.baseURL); err == nil {
				t.Errorf("NewClient(%q) should fail", tt.baseURL)
			}
		})
	}
}
