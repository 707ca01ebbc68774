package stub

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/quipworks/quip-go/internal/api"
)

// sessionCookieName is the cookie carrying the session ID.
const sessionCookieName = "quip_session"

// sessionHandler is an http handler that additionally receives the resolved
// session for the request.
type sessionHandler func(w http.ResponseWriter, r *http.Request, sess *Session)

// withSession resolves the request's session, minting a fresh anonymous one
// when the cookie is absent or references a session the store no longer
// knows. A minted session is handed back via Set-Cookie, which is how clients
// end up with a new cookie after the backend restarts.
func (s *Server) withSession(next sessionHandler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var sess *Session
		if cookie, err := r.Cookie(sessionCookieName); err == nil {
			sess, _ = s.store.Session(cookie.Value)
		}
		if sess == nil {
			sess = s.store.CreateSession()
			http.SetCookie(w, &http.Cookie{
				Name:     sessionCookieName,
				Value:    sess.ID,
				Path:     "/",
				HttpOnly: true,
				SameSite: http.SameSiteLaxMode,
			})
		}
		next(w, r, sess)
	}
}

// requireToken enforces the anti-forgery check on mutating requests. The
// header must be present and match the token minted for this session; a
// token from before a restart fails here because the restarted store minted
// a different one.
func (s *Server) requireToken(w http.ResponseWriter, r *http.Request, sess *Session) bool {
	token := r.Header.Get("X-CSRF-Token")
	if token == "" {
		writeError(r.Context(), w, http.StatusForbidden, "CSRF token missing")
		return false
	}
	if token != sess.Token {
		writeError(r.Context(), w, http.StatusForbidden, "CSRF token invalid")
		return false
	}
	return true
}

// requireUser rejects requests whose session has no logged-in user.
func (s *Server) requireUser(w http.ResponseWriter, r *http.Request, sess *Session) (api.User, bool) {
	if !sess.Authenticated() {
		writeError(r.Context(), w, http.StatusUnauthorized, "Authentication required")
		return api.User{}, false
	}
	user, ok := s.store.User(sess.UserID)
	if !ok {
		writeError(r.Context(), w, http.StatusUnauthorized, "Authentication required")
		return api.User{}, false
	}
	return user, true
}

// requireAdmin additionally checks the session user's role.
func (s *Server) requireAdmin(w http.ResponseWriter, r *http.Request, sess *Session) (api.User, bool) {
	user, ok := s.requireUser(w, r, sess)
	if !ok {
		return api.User{}, false
	}
	if user.Role != "admin" {
		writeError(r.Context(), w, http.StatusForbidden, "admin role required")
		return api.User{}, false
	}
	return user, true
}

func (s *Server) handleCSRFToken(w http.ResponseWriter, r *http.Request, sess *Session) {
	writeEnvelope(r.Context(), w, http.StatusOK, struct {
		CSRFToken string `json:"csrfToken"`
	}{sess.Token})
}

func (s *Server) handleSessionInit(w http.ResponseWriter, r *http.Request, sess *Session) {
	writeEnvelope(r.Context(), w, http.StatusOK, struct {
		SessionReady bool `json:"sessionReady"`
	}{true})
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request, sess *Session) {
	if !s.requireToken(w, r, sess) {
		return
	}

	var creds struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&creds); err != nil {
		writeError(r.Context(), w, http.StatusBadRequest, "malformed login payload")
		return
	}

	user, ok := s.store.Authenticate(creds.Username, creds.Password)
	if !ok {
		writeError(r.Context(), w, http.StatusUnauthorized, "Invalid credentials")
		return
	}

	s.store.Bind(sess.ID, user.ID)
	s.logger.InfoContext(r.Context(), "user logged in", "username", user.Username)
	writeEnvelope(r.Context(), w, http.StatusOK, user)
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request, sess *Session) {
	if !s.requireToken(w, r, sess) {
		return
	}

	s.store.DeleteSession(sess.ID)
	http.SetCookie(w, &http.Cookie{
		Name:   sessionCookieName,
		Value:  "",
		Path:   "/",
		MaxAge: -1,
	})
	writeEnvelope(r.Context(), w, http.StatusOK, nil)
}

func (s *Server) handleMe(w http.ResponseWriter, r *http.Request, sess *Session) {
	user, ok := s.requireUser(w, r, sess)
	if !ok {
		return
	}
	writeEnvelope(r.Context(), w, http.StatusOK, user)
}

func (s *Server) handleChat(w http.ResponseWriter, r *http.Request, sess *Session) {
	if !s.requireToken(w, r, sess) {
		return
	}
	user, ok := s.requireUser(w, r, sess)
	if !ok {
		return
	}

	var req api.ChatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(r.Context(), w, http.StatusBadRequest, "malformed chat payload")
		return
	}
	if req.Message == "" {
		writeError(r.Context(), w, http.StatusBadRequest, "message is required")
		return
	}

	now := time.Now().UTC()
	reply := api.ChatMessage{
		Role:      "assistant",
		Content:   assistantReply(req),
		CreatedAt: now,
	}
	s.store.AppendChat(user.ID,
		api.ChatMessage{Role: "user", Content: req.Message, CreatedAt: now},
		reply,
	)
	writeEnvelope(r.Context(), w, http.StatusOK, reply)
}

func (s *Server) handleChatHistory(w http.ResponseWriter, r *http.Request, sess *Session) {
	user, ok := s.requireUser(w, r, sess)
	if !ok {
		return
	}
	writeEnvelope(r.Context(), w, http.StatusOK, s.store.ChatHistory(user.ID))
}

func (s *Server) handleReset(w http.ResponseWriter, r *http.Request) {
	s.store.Reset()
	s.logger.InfoContext(r.Context(), "stub restarted, all sessions dropped")
	writeEnvelope(r.Context(), w, http.StatusOK, nil)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeEnvelope(r.Context(), w, http.StatusOK, struct {
		Status string `json:"status"`
	}{"ok"})
}

// assistantReply produces the canned generation for a chat request. Content
// is deterministic so tests can assert on it.
func assistantReply(req api.ChatRequest) string {
	switch req.Mode {
	case "caption":
		return "Caption suggestion: " + req.Message
	case "image":
		return "Image prompt queued: " + req.Message
	default:
		return "Quote suggestion: " + req.Message
	}
}

// registerResource wires the five CRUD routes for one collection. Reads need
// a logged-in session; mutations additionally pass the anti-forgery check,
// and adminOnly restricts mutations to admin users. A non-nil filter narrows
// list results by query parameters.
func registerResource[T any](s *Server, path string, res *collection[T], adminOnly bool, filter func(T, url.Values) bool) {
	label := strings.TrimSuffix(res.name, "s")

	mutator := func(w http.ResponseWriter, r *http.Request, sess *Session) (api.User, bool) {
		if !s.requireToken(w, r, sess) {
			return api.User{}, false
		}
		if adminOnly {
			return s.requireAdmin(w, r, sess)
		}
		return s.requireUser(w, r, sess)
	}

	s.mux.HandleFunc("GET "+path, s.withSession(func(w http.ResponseWriter, r *http.Request, sess *Session) {
		if _, ok := s.requireUser(w, r, sess); !ok {
			return
		}
		items := res.list()
		if query := r.URL.Query(); filter != nil && len(query) > 0 {
			filtered := make([]T, 0, len(items))
			for _, item := range items {
				if filter(item, query) {
					filtered = append(filtered, item)
				}
			}
			items = filtered
		}
		writeEnvelope(r.Context(), w, http.StatusOK, items)
	}))

	s.mux.HandleFunc("POST "+path, s.withSession(func(w http.ResponseWriter, r *http.Request, sess *Session) {
		if _, ok := mutator(w, r, sess); !ok {
			return
		}
		var item T
		if err := json.NewDecoder(r.Body).Decode(&item); err != nil {
			writeError(r.Context(), w, http.StatusBadRequest, fmt.Sprintf("malformed %s payload", label))
			return
		}
		writeEnvelope(r.Context(), w, http.StatusCreated, res.create(item))
	}))

	s.mux.HandleFunc("GET "+path+"/{id}", s.withSession(func(w http.ResponseWriter, r *http.Request, sess *Session) {
		if _, ok := s.requireUser(w, r, sess); !ok {
			return
		}
		id, err := parseID(r)
		if err != nil {
			writeError(r.Context(), w, http.StatusBadRequest, "invalid id")
			return
		}
		item, ok := res.get(id)
		if !ok {
			writeError(r.Context(), w, http.StatusNotFound, label+" not found")
			return
		}
		writeEnvelope(r.Context(), w, http.StatusOK, item)
	}))

	s.mux.HandleFunc("PUT "+path+"/{id}", s.withSession(func(w http.ResponseWriter, r *http.Request, sess *Session) {
		if _, ok := mutator(w, r, sess); !ok {
			return
		}
		id, err := parseID(r)
		if err != nil {
			writeError(r.Context(), w, http.StatusBadRequest, "invalid id")
			return
		}
		existing, ok := res.get(id)
		if !ok {
			writeError(r.Context(), w, http.StatusNotFound, label+" not found")
			return
		}
		if err := json.NewDecoder(r.Body).Decode(&existing); err != nil {
			writeError(r.Context(), w, http.StatusBadRequest, fmt.Sprintf("malformed %s payload", label))
			return
		}
		item, _ := res.update(id, existing)
		writeEnvelope(r.Context(), w, http.StatusOK, item)
	}))

	s.mux.HandleFunc("DELETE "+path+"/{id}", s.withSession(func(w http.ResponseWriter, r *http.Request, sess *Session) {
		if _, ok := mutator(w, r, sess); !ok {
			return
		}
		id, err := parseID(r)
		if err != nil {
			writeError(r.Context(), w, http.StatusBadRequest, "invalid id")
			return
		}
		if !res.remove(id) {
			writeError(r.Context(), w, http.StatusNotFound, label+" not found")
			return
		}
		writeEnvelope(r.Context(), w, http.StatusOK, nil)
	}))
}

func parseID(r *http.Request) (int64, error) {
	return strconv.ParseInt(r.PathValue("id"), 10, 64)
}

func filterQuoteByCategory(q api.Quote, query url.Values) bool {
	category := query.Get("category")
	return category == "" || q.Category == category
}

func filterTemplateByCategory(t api.Template, query url.Values) bool {
	category := query.Get("category")
	return category == "" || t.Category == category
}
