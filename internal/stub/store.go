package stub

import (
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/quipworks/quip-go/internal/api"
	"github.com/quipworks/quip-go/internal/metrics"
)

// Session is a server-side session record. The ID doubles as the session
// cookie value; the Token is the anti-forgery token minted for this session.
type Session struct {
	ID        string
	UserID    int64
	Token     string
	CreatedAt time.Time
}

// Authenticated reports whether a user has logged in on this session.
func (s *Session) Authenticated() bool {
	return s.UserID != 0
}

// Store holds all stub backend state in memory. Sessions and their
// anti-forgery tokens live only in the sessions map, so Reset wipes them the
// same way restarting the real backend would. Resource collections survive a
// Reset, mirroring a database-backed deployment.
type Store struct {
	mu        sync.Mutex
	sessions  map[string]*Session
	passwords map[string]string

	users     *collection[api.User]
	quotes    *collection[api.Quote]
	posts     *collection[api.Post]
	templates *collection[api.Template]
	images    *collection[api.Image]

	chatMu sync.Mutex
	chat   map[int64][]api.ChatMessage
}

// NewStore returns an empty store. Seed users with AddUser before serving.
func NewStore() *Store {
	return &Store{
		sessions:  make(map[string]*Session),
		passwords: make(map[string]string),
		users:     newCollection[api.User]("users", prepareUser),
		quotes:    newCollection[api.Quote]("quotes", prepareQuote),
		posts:     newCollection[api.Post]("posts", preparePost),
		templates: newCollection[api.Template]("templates", prepareTemplate),
		images:    newCollection[api.Image]("images", prepareImage),
		chat:      make(map[int64][]api.ChatMessage),
	}
}

// AddUser registers a user account with the given credentials and returns the
// stored record. Passwords are kept in plain text; the stub is a test double,
// not a credential store.
func (s *Store) AddUser(username, password, email, role string) api.User {
	user := s.users.create(api.User{
		Username: username,
		Email:    email,
		Role:     role,
	})

	s.mu.Lock()
	s.passwords[username] = password
	s.mu.Unlock()

	return user
}

// SeedSampleData loads a handful of quotes, templates, and a draft post so a
// fresh stub has content to list.
func (s *Store) SeedSampleData() {
	s.quotes.create(api.Quote{
		Text:     "Consistency beats intensity.",
		Author:   "Quip",
		Category: "motivation",
	})
	s.quotes.create(api.Quote{
		Text:     "Your audience remembers how you made them feel.",
		Author:   "Quip",
		Category: "marketing",
	})
	s.templates.create(api.Template{
		Name:     "Monday Motivation",
		Category: "motivation",
		Content:  "Start the week strong: {{quote}}",
	})
	s.templates.create(api.Template{
		Name:     "Product Highlight",
		Category: "product",
		Content:  "{{product}} in one sentence: {{pitch}}",
	})
	s.posts.create(api.Post{
		Title:    "Welcome to Quip",
		Content:  "Draft your first post from a template.",
		Platform: "instagram",
		Status:   "draft",
	})
}

// Authenticate checks a username/password pair against the registered users.
func (s *Store) Authenticate(username, password string) (api.User, bool) {
	s.mu.Lock()
	stored, ok := s.passwords[username]
	s.mu.Unlock()
	if !ok || stored != password {
		return api.User{}, false
	}

	for _, u := range s.users.list() {
		if u.Username == username {
			return u, true
		}
	}
	return api.User{}, false
}

// CreateSession mints a new anonymous session with a fresh anti-forgery token.
func (s *Store) CreateSession() *Session {
	sess := &Session{
		ID:        uuid.NewString(),
		Token:     uuid.NewString(),
		CreatedAt: time.Now().UTC(),
	}

	s.mu.Lock()
	s.sessions[sess.ID] = sess
	size := len(s.sessions)
	s.mu.Unlock()

	metrics.StubActiveSessions.Set(float64(size))
	return sess
}

// Session looks up a session by its cookie value.
func (s *Store) Session(id string) (*Session, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.sessions[id]
	return sess, ok
}

// Bind attaches a logged-in user to an existing session.
func (s *Store) Bind(sessionID string, userID int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if sess, ok := s.sessions[sessionID]; ok {
		sess.UserID = userID
	}
}

// DeleteSession removes a session, logging the user out.
func (s *Store) DeleteSession(id string) {
	s.mu.Lock()
	delete(s.sessions, id)
	size := len(s.sessions)
	s.mu.Unlock()

	metrics.StubActiveSessions.Set(float64(size))
}

// Reset drops every session and its anti-forgery token, exactly what a
// process restart does to the real backend's in-memory session store.
// Resource data is retained.
func (s *Store) Reset() {
	s.mu.Lock()
	s.sessions = make(map[string]*Session)
	s.mu.Unlock()

	metrics.StubActiveSessions.Set(0)
	metrics.StubRestarts.Inc()
}

// User returns a registered user by ID.
func (s *Store) User(id int64) (api.User, bool) {
	return s.users.get(id)
}

// AppendChat records a chat exchange for the given user.
func (s *Store) AppendChat(userID int64, msgs ...api.ChatMessage) {
	s.chatMu.Lock()
	defer s.chatMu.Unlock()
	s.chat[userID] = append(s.chat[userID], msgs...)
}

// ChatHistory returns the recorded chat messages for the given user.
func (s *Store) ChatHistory(userID int64) []api.ChatMessage {
	s.chatMu.Lock()
	defer s.chatMu.Unlock()
	return slices.Clone(s.chat[userID])
}

// collection is an id-keyed in-memory table for one resource type. The
// prepare hook stamps server-assigned fields (ID, timestamps, derived URLs)
// on create.
type collection[T any] struct {
	name    string
	prepare func(*T, int64)

	mu     sync.Mutex
	items  map[int64]T
	nextID int64
}

func newCollection[T any](name string, prepare func(*T, int64)) *collection[T] {
	return &collection[T]{
		name:    name,
		prepare: prepare,
		items:   make(map[int64]T),
	}
}

func (c *collection[T]) list() []T {
	c.mu.Lock()
	defer c.mu.Unlock()

	ids := make([]int64, 0, len(c.items))
	for id := range c.items {
		ids = append(ids, id)
	}
	slices.Sort(ids)

	out := make([]T, 0, len(ids))
	for _, id := range ids {
		out = append(out, c.items[id])
	}
	return out
}

func (c *collection[T]) get(id int64) (T, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	item, ok := c.items[id]
	return item, ok
}

func (c *collection[T]) create(item T) T {
	c.mu.Lock()
	c.nextID++
	id := c.nextID
	c.prepare(&item, id)
	c.items[id] = item
	size := len(c.items)
	c.mu.Unlock()

	metrics.StubResources.WithLabelValues(c.name).Set(float64(size))
	return item
}

func (c *collection[T]) update(id int64, item T) (T, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, ok := c.items[id]; !ok {
		var zero T
		return zero, false
	}
	c.prepare(&item, id)
	c.items[id] = item
	return item, true
}

func (c *collection[T]) remove(id int64) bool {
	c.mu.Lock()
	_, ok := c.items[id]
	delete(c.items, id)
	size := len(c.items)
	c.mu.Unlock()

	if ok {
		metrics.StubResources.WithLabelValues(c.name).Set(float64(size))
	}
	return ok
}

func prepareUser(u *api.User, id int64) {
	u.ID = id
	if u.Role == "" {
		u.Role = "user"
	}
	if u.CreatedAt.IsZero() {
		u.CreatedAt = time.Now().UTC()
	}
}

func prepareQuote(q *api.Quote, id int64) {
	q.ID = id
	if q.CreatedAt.IsZero() {
		q.CreatedAt = time.Now().UTC()
	}
}

func preparePost(p *api.Post, id int64) {
	p.ID = id
	if p.Status == "" {
		p.Status = "draft"
	}
	if p.CreatedAt.IsZero() {
		p.CreatedAt = time.Now().UTC()
	}
}

func prepareTemplate(t *api.Template, id int64) {
	t.ID = id
	if t.CreatedAt.IsZero() {
		t.CreatedAt = time.Now().UTC()
	}
}

func prepareImage(img *api.Image, id int64) {
	img.ID = id
	if img.URL == "" {
		img.URL = "/assets/generated/" + uuid.NewString() + ".png"
	}
	if img.Width == 0 {
		img.Width = 1024
	}
	if img.Height == 0 {
		img.Height = 1024
	}
	if img.CreatedAt.IsZero() {
		img.CreatedAt = time.Now().UTC()
	}
}
