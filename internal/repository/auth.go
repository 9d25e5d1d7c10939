// Package repository maps domain operations onto request-layer calls. Each
// repository is a thin call-shaper: request bodies and response types live
// here, behavior does not.
package repository

import (
	"context"
	"fmt"
	"net/http"

	"aiknvm/internal/api"
	"aiknvm/internal/domain"
	"aiknvm/internal/secrets"
)

type Auth struct {
	client  *api.Client
	secrets secrets.Store
}

func NewAuth(client *api.Client, store secrets.Store) *Auth {
	return &Auth{client: client, secrets: store}
}

// CurrentUser asks the backend who the stored token belongs to. Querying
// identity at startup is best-effort: every failure, including 401, resolves
// to absence rather than an error.
func (r *Auth) CurrentUser(ctx context.Context) (*domain.User, bool) {
	var user domain.User
	if err := r.client.Execute(ctx, http.MethodGet, "/auth/me", nil, &user); err != nil {
		return nil, false
	}
	return &user, true
}

type SignInResult struct {
	User  domain.User `json:"user"`
	Token string      `json:"token"`
}

// SignInWithIdentityToken exchanges an external identity token for a session
// token and persists the session token.
func (r *Auth) SignInWithIdentityToken(ctx context.Context, idToken string) (SignInResult, error) {
	body := struct {
		IDToken string `json:"idToken"`
	}{IDToken: idToken}

	var res SignInResult
	if err := r.client.Execute(ctx, http.MethodPost, "/auth/google", body, &res); err != nil {
		return SignInResult{}, err
	}
	if err := r.secrets.SetToken(ctx, res.Token); err != nil {
		return SignInResult{}, &api.StorageError{Err: fmt.Errorf("store session token: %w", err)}
	}
	return res, nil
}

// SignOut clears the persisted token. Purely local, no network call, and
// idempotent: signing out twice is the same as once.
func (r *Auth) SignOut(ctx context.Context) error {
	if err := r.secrets.Clear(ctx); err != nil {
		return &api.StorageError{Err: err}
	}
	return nil
}
