package controller

import (
	"context"

	"aiknvm/internal/domain"
	"aiknvm/internal/repository"
)

type SessionState struct {
	User    *domain.User
	Loading bool
}

// Session resolves the signed-in user at startup. Identity lookup is
// best-effort: failures resolve to a signed-out state, never to an error.
type Session struct {
	lc         guard
	auth       *repository.Auth
	hasBaseURL bool
	onChange   func()

	user    *domain.User
	loading bool
}

func NewSession(auth *repository.Auth, hasBaseURL bool) *Session {
	return &Session{auth: auth, hasBaseURL: hasBaseURL}
}

func (c *Session) SetOnChange(fn func()) {
	c.lc.with(func() { c.onChange = fn })
}

// Activate begins resolving the current user. Without a base URL no backend
// is reachable, so the session resolves immediately to signed out instead of
// failing closed.
func (c *Session) Activate(ctx context.Context) {
	gen := c.lc.activate()
	c.lc.with(func() {
		c.user = nil
		c.loading = c.hasBaseURL
	})
	if !c.hasBaseURL {
		c.notify()
		return
	}

	go func() {
		user, ok := c.auth.CurrentUser(ctx)
		committed := c.lc.commit(gen, func() {
			if ok {
				c.user = user
			} else {
				c.user = nil
			}
			c.loading = false
		})
		if committed {
			c.notify()
		}
	}()
}

func (c *Session) Deactivate() {
	c.lc.deactivate()
}

// SignOut clears the session immediately. Direct action, not guarded by the
// activation lifecycle.
func (c *Session) SignOut(ctx context.Context) error {
	if err := c.auth.SignOut(ctx); err != nil {
		return err
	}
	c.lc.with(func() {
		c.user = nil
		c.loading = false
	})
	c.notify()
	return nil
}

func (c *Session) State() SessionState {
	var s SessionState
	c.lc.with(func() {
		s = SessionState{User: c.user, Loading: c.loading}
	})
	return s
}

func (c *Session) notify() {
	var fn func()
	c.lc.with(func() { fn = c.onChange })
	if fn != nil {
		fn()
	}
}
