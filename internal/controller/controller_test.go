package controller

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"aiknvm/internal/api"
	"aiknvm/internal/repository"
	"aiknvm/internal/secrets"
)

func awaitSettled(t *testing.T, notify <-chan struct{}, settled func() bool) {
	t.Helper()
	deadline := time.After(2 * time.Second)
	for !settled() {
		select {
		case <-notify:
		case <-time.After(20 * time.Millisecond):
		case <-deadline:
			t.Fatalf("controller did not settle in time")
		}
	}
}

func changeChan(set func(func())) chan struct{} {
	ch := make(chan struct{}, 1)
	set(func() {
		select {
		case ch <- struct{}{}:
		default:
		}
	})
	return ch
}

func TestSessionResolvesSignedOutWithoutBaseURL(t *testing.T) {
	store := secrets.NewMemStore()
	auth := repository.NewAuth(api.New(api.Config{Tokens: store}), store)

	sess := NewSession(auth, false)
	sess.Activate(context.Background())

	// Resolution is synchronous: no backend is reachable, so the session
	// fails open to signed out without any network attempt.
	state := sess.State()
	if state.Loading || state.User != nil {
		t.Fatalf("expected immediate signed-out state, got %+v", state)
	}
}

func TestSessionSuppressesUnauthorized(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte("unauthorized"))
	}))
	defer srv.Close()

	store := secrets.NewMemStore()
	auth := repository.NewAuth(api.New(api.Config{BaseURL: srv.URL, Tokens: store}), store)

	sess := NewSession(auth, true)
	ch := changeChan(sess.SetOnChange)
	sess.Activate(context.Background())
	defer sess.Deactivate()

	awaitSettled(t, ch, func() bool { return !sess.State().Loading })

	state := sess.State()
	if state.User != nil {
		t.Fatalf("expected absent user, got %+v", state.User)
	}
	if state.Loading {
		t.Fatalf("expected loading resolved")
	}
}

func TestSessionSignOutClearsStateImmediately(t *testing.T) {
	store := secrets.NewMemStore()
	if err := store.SetToken(context.Background(), "tok"); err != nil {
		t.Fatalf("seed token: %v", err)
	}
	auth := repository.NewAuth(api.New(api.Config{Tokens: store}), store)

	sess := NewSession(auth, false)
	sess.Activate(context.Background())
	if err := sess.SignOut(context.Background()); err != nil {
		t.Fatalf("sign out: %v", err)
	}
	if _, ok, _ := store.Token(context.Background()); ok {
		t.Fatalf("expected token cleared")
	}
	if state := sess.State(); state.User != nil || state.Loading {
		t.Fatalf("expected signed-out state, got %+v", state)
	}
}

func TestMountSafetyDiscardsLateSettle(t *testing.T) {
	release := make(chan struct{})
	served := make(chan struct{}, 1)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		served <- struct{}{}
		<-release
		_, _ = w.Write([]byte(`{"id":"u1","name":"late"}`))
	}))
	defer srv.Close()

	store := secrets.NewMemStore()
	auth := repository.NewAuth(api.New(api.Config{BaseURL: srv.URL, Tokens: store}), store)

	sess := NewSession(auth, true)
	sess.Activate(context.Background())

	<-served // fetch is in flight
	before := sess.State()
	sess.Deactivate()
	close(release) // let the fetch settle after teardown

	time.Sleep(100 * time.Millisecond)
	after := sess.State()
	if after.Loading != before.Loading || (after.User == nil) != (before.User == nil) {
		t.Fatalf("state changed after deactivation: before=%+v after=%+v", before, after)
	}
	if after.User != nil {
		t.Fatalf("late result must be discarded, got user %+v", after.User)
	}
}
