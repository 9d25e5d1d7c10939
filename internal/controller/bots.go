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

type BotListState struct {
	Bots    []domain.Bot
	Loading bool
	Err     error
	Stale   bool
}

// BotList fetches the bot catalog on activation, with the same write-through
// cache behavior as the history list.
type BotList struct {
	lc       guard
	repo     *repository.Bot
	cache    *storage.Store
	metrics  *metrics.Metrics
	onChange func()

	bots    []domain.Bot
	loading bool
	err     error
	stale   bool
}

func NewBotList(repo *repository.Bot, cache *storage.Store) *BotList {
	return &BotList{repo: repo, cache: cache, metrics: metrics.Global()}
}

func (c *BotList) SetOnChange(fn func()) {
	c.lc.with(func() { c.onChange = fn })
}

func (c *BotList) Activate(ctx context.Context) {
	gen := c.lc.activate()
	c.lc.with(func() {
		c.loading = true
		c.err = nil
		c.stale = false
	})

	go func() {
		bots, err := c.repo.List(ctx)
		stale := false
		if err == nil {
			if c.cache != nil {
				_ = c.cache.ReplaceBots(ctx, bots)
			}
		} else if cached, ok := c.cacheFallback(ctx, err); ok {
			bots, err, stale = cached, nil, true
		}

		committed := c.lc.commit(gen, func() {
			if err != nil {
				c.err = err
			} else {
				c.bots = bots
				c.stale = stale
			}
			c.loading = false
		})
		if committed {
			c.notify()
		}
	}()
}

func (c *BotList) Deactivate() {
	c.lc.deactivate()
}

func (c *BotList) State() BotListState {
	var s BotListState
	c.lc.with(func() {
		s = BotListState{Loading: c.loading, Err: c.err, Stale: c.stale}
		s.Bots = append([]domain.Bot(nil), c.bots...)
	})
	return s
}

func (c *BotList) cacheFallback(ctx context.Context, cause error) ([]domain.Bot, bool) {
	var netErr *api.NetworkError
	if c.cache == nil || !errors.As(cause, &netErr) {
		return nil, false
	}
	cached, err := c.cache.CachedBots(ctx)
	if err != nil || len(cached) == 0 {
		return nil, false
	}
	c.metrics.CacheFallbacks.Inc()
	return cached, true
}

func (c *BotList) notify() {
	var fn func()
	c.lc.with(func() { fn = c.onChange })
	if fn != nil {
		fn()
	}
}
