package stub

import (
	"testing"

	"github.com/quipworks/quip-go/internal/api"
)

func TestStoreSessionLifecycle(t *testing.T) {
	store := NewStore()
	user := store.AddUser("admin", "s3cret", "admin@example.com", "admin")

	sess := store.CreateSession()
	if sess.ID == "" || sess.Token == "" {
		t.Fatalf("session missing id or token: %+v", sess)
	}
	if sess.Authenticated() {
		t.Error("fresh session reports authenticated")
	}

	store.Bind(sess.ID, user.ID)
	got, ok := store.Session(sess.ID)
	if !ok || !got.Authenticated() || got.UserID != user.ID {
		t.Fatalf("bound session = %+v, ok = %v", got, ok)
	}

	store.DeleteSession(sess.ID)
	if _, ok := store.Session(sess.ID); ok {
		t.Error("session survived DeleteSession")
	}
}

func TestStoreResetKeepsResources(t *testing.T) {
	store := NewStore()
	store.AddUser("admin", "s3cret", "admin@example.com", "admin")
	sess := store.CreateSession()
	quote := store.quotes.create(api.Quote{Text: "kept"})

	store.Reset()

	if _, ok := store.Session(sess.ID); ok {
		t.Error("session survived Reset")
	}
	if _, ok := store.quotes.get(quote.ID); !ok {
		t.Error("quote did not survive Reset")
	}
	if _, ok := store.Authenticate("admin", "s3cret"); !ok {
		t.Error("user account did not survive Reset")
	}
}

func TestCollectionAssignsSequentialIDs(t *testing.T) {
	store := NewStore()

	first := store.quotes.create(api.Quote{Text: "one"})
	second := store.quotes.create(api.Quote{Text: "two"})
	if first.ID != 1 || second.ID != 2 {
		t.Fatalf("ids = %d, %d, want 1, 2", first.ID, second.ID)
	}
	if first.CreatedAt.IsZero() {
		t.Error("create did not stamp createdAt")
	}

	// Deleting does not recycle ids.
	store.quotes.remove(second.ID)
	third := store.quotes.create(api.Quote{Text: "three"})
	if third.ID != 3 {
		t.Errorf("id after delete = %d, want 3", third.ID)
	}

	list := store.quotes.list()
	if len(list) != 2 || list[0].ID != 1 || list[1].ID != 3 {
		t.Errorf("list = %+v, want ids 1 and 3 in order", list)
	}
}

func TestAuthenticateRejectsUnknownAndWrong(t *testing.T) {
	store := NewStore()
	store.AddUser("admin", "s3cret", "admin@example.com", "admin")

	if _, ok := store.Authenticate("admin", "wrong"); ok {
		t.Error("wrong password accepted")
	}
	if _, ok := store.Authenticate("ghost", "s3cret"); ok {
		t.Error("unknown user accepted")
	}
	user, ok := store.Authenticate("admin", "s3cret")
	if !ok || user.Role != "admin" {
		t.Errorf("valid login = %+v, ok = %v", user, ok)
	}
}
