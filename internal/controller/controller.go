// Package controller holds the per-screen async state machines. Each
// controller owns its UI-facing state, moves it through
// Idle -> Loading -> Ready/Failed exactly once per activation, and discards
// any result that settles after the owning screen was torn down.
package controller

import "sync"

// guard serializes state access and tracks activation generations. A fetch
// captures the generation at activation; Deactivate bumps it, so a late
// settle fails the generation check and no state write occurs. The underlying
// request is not cancelled, only its effect.
type guard struct {
	mu     sync.Mutex
	gen    uint64
	active bool
}

func (g *guard) activate() uint64 {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.gen++
	g.active = true
	return g.gen
}

func (g *guard) deactivate() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.gen++
	g.active = false
}

// commit applies fn under the lock only if generation gen is still live.
func (g *guard) commit(gen uint64, fn func()) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	if !g.active || g.gen != gen {
		return false
	}
	fn()
	return true
}

// with runs fn under the lock unconditionally. For snapshots and direct,
// non-lifecycle-guarded actions.
func (g *guard) with(fn func()) {
	g.mu.Lock()
	defer g.mu.Unlock()
	fn()
}
