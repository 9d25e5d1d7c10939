package controller

import (
	"context"
	"errors"

	"aiknvm/internal/api"
	"aiknvm/internal/domain"
	"aiknvm/internal/metrics"
	"aiknvm/internal/repository"
	"aiknvm/internal/storage"
)

type HistoryState struct {
	Conversations []domain.Conversation
	Loading       bool
	Err           error
	// Stale marks data served from the offline cache after a network failure.
	Stale bool
}

// HistoryList fetches the conversation catalog on activation. With a local
// store attached, successful fetches are written through and network failures
// fall back to the cached catalog.
type HistoryList struct {
	lc       guard
	repo     *repository.History
	cache    *storage.Store
	metrics  *metrics.Metrics
	onChange func()

	conversations []domain.Conversation
	loading       bool
	err           error
	stale         bool
}

func NewHistoryList(repo *repository.History, cache *storage.Store) *HistoryList {
	return &HistoryList{repo: repo, cache: cache, metrics: metrics.Global()}
}

func (c *HistoryList) SetOnChange(fn func()) {
	c.lc.with(func() { c.onChange = fn })
}

func (c *HistoryList) Activate(ctx context.Context) {
	gen := c.lc.activate()
	c.lc.with(func() {
		c.loading = true
		c.err = nil
		c.stale = false
	})

	go func() {
		convs, err := c.repo.List(ctx)
		stale := false
		if err == nil {
			if c.cache != nil {
				_ = c.cache.UpsertConversations(ctx, convs)
			}
		} else if cached, ok := c.cacheFallback(ctx, err); ok {
			convs, err, stale = cached, nil, true
		}

		committed := c.lc.commit(gen, func() {
			if err != nil {
				c.err = err
			} else {
				c.conversations = convs
				c.stale = stale
			}
			c.loading = false
		})
		if committed {
			c.notify()
		}
	}()
}

func (c *HistoryList) Deactivate() {
	c.lc.deactivate()
}

func (c *HistoryList) State() HistoryState {
	var s HistoryState
	c.lc.with(func() {
		s = HistoryState{Loading: c.loading, Err: c.err, Stale: c.stale}
		s.Conversations = append([]domain.Conversation(nil), c.conversations...)
	})
	return s
}

func (c *HistoryList) cacheFallback(ctx context.Context, cause error) ([]domain.Conversation, bool) {
	var netErr *api.NetworkError
	if c.cache == nil || !errors.As(cause, &netErr) {
		return nil, false
	}
	cached, err := c.cache.CachedConversations(ctx)
	if err != nil || len(cached) == 0 {
		return nil, false
	}
	c.metrics.CacheFallbacks.Inc()
	return cached, true
}

func (c *HistoryList) notify() {
	var fn func()
	c.lc.with(func() { fn = c.onChange })
	if fn != nil {
		fn()
	}
}
