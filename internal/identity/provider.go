// Package identity defines the contract for the browser-delegated identity
// exchange. The exchange itself (consent screens, redirects) happens outside
// this process; the core only consumes the identity token on success.
package identity

import "context"

type Status int

const (
	StatusSuccess Status = iota
	StatusCancelled
	StatusFailed
)

// Outcome is the tagged result of one prompt. IdentityToken is set only for
// StatusSuccess, Reason only for StatusFailed.
type Outcome struct {
	Status        Status
	IdentityToken string
	Reason        error
}

// Provider prompts the user through the external identity flow.
type Provider interface {
	Prompt(ctx context.Context) Outcome
}
