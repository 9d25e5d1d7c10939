package controller

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"aiknvm/internal/api"
	"aiknvm/internal/identity"
	"aiknvm/internal/repository"
	"aiknvm/internal/secrets"
)

type fakeProvider struct {
	outcome identity.Outcome
}

func (p *fakeProvider) Prompt(ctx context.Context) identity.Outcome { return p.outcome }

func identityBackend(t *testing.T) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/auth/google" || r.Method != http.MethodPost {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		var body struct {
			IDToken string `json:"idToken"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil || body.IDToken != "google-token" {
			w.WriteHeader(http.StatusBadRequest)
			_, _ = w.Write([]byte("bad idToken"))
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"user":{"id":"u1","name":"Quoc"},"token":"session-1"}`))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestIdentitySignInSuccess(t *testing.T) {
	srv := identityBackend(t)
	store := secrets.NewMemStore()
	auth := repository.NewAuth(api.New(api.Config{BaseURL: srv.URL, Tokens: store}), store)

	ident := NewIdentity(&fakeProvider{outcome: identity.Outcome{
		Status:        identity.StatusSuccess,
		IdentityToken: "google-token",
	}}, auth)

	res, err := ident.SignIn(context.Background())
	if err != nil {
		t.Fatalf("sign in: %v", err)
	}
	if res.User.ID != "u1" || res.Token != "session-1" {
		t.Fatalf("unexpected result %+v", res)
	}
	if token, ok, _ := store.Token(context.Background()); !ok || token != "session-1" {
		t.Fatalf("expected session token persisted, got %q ok=%v", token, ok)
	}
}

func TestIdentitySignInCancelled(t *testing.T) {
	store := secrets.NewMemStore()
	auth := repository.NewAuth(api.New(api.Config{Tokens: store}), store)

	ident := NewIdentity(&fakeProvider{outcome: identity.Outcome{Status: identity.StatusCancelled}}, auth)
	if _, err := ident.SignIn(context.Background()); !errors.Is(err, ErrSignInCancelled) {
		t.Fatalf("expected ErrSignInCancelled, got %v", err)
	}
	if _, ok, _ := store.Token(context.Background()); ok {
		t.Fatalf("cancelled flow must not persist anything")
	}
}

func TestIdentitySignInFailedForwardsReason(t *testing.T) {
	store := secrets.NewMemStore()
	auth := repository.NewAuth(api.New(api.Config{Tokens: store}), store)

	reason := errors.New("consent screen blew up")
	ident := NewIdentity(&fakeProvider{outcome: identity.Outcome{
		Status: identity.StatusFailed,
		Reason: reason,
	}}, auth)

	if _, err := ident.SignIn(context.Background()); !errors.Is(err, reason) {
		t.Fatalf("expected reason forwarded, got %v", err)
	}
}
