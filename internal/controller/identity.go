package controller

import (
	"context"
	"errors"

	"aiknvm/internal/identity"
	"aiknvm/internal/repository"
)

// ErrSignInCancelled reports that the user dismissed the external consent
// flow. Not a failure; callers usually just return to the previous screen.
var ErrSignInCancelled = errors.New("sign-in cancelled")

// Identity drives the external identity exchange and, on success, trades the
// identity token for a session. It persists nothing itself; the auth
// repository owns token persistence.
type Identity struct {
	provider identity.Provider
	auth     *repository.Auth
}

func NewIdentity(provider identity.Provider, auth *repository.Auth) *Identity {
	return &Identity{provider: provider, auth: auth}
}

func (c *Identity) SignIn(ctx context.Context) (repository.SignInResult, error) {
	outcome := c.provider.Prompt(ctx)
	switch outcome.Status {
	case identity.StatusSuccess:
		return c.auth.SignInWithIdentityToken(ctx, outcome.IdentityToken)
	case identity.StatusCancelled:
		return repository.SignInResult{}, ErrSignInCancelled
	default:
		return repository.SignInResult{}, outcome.Reason
	}
}
