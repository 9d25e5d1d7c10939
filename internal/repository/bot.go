package repository

import (
	"context"
	"net/http"

	"aiknvm/internal/api"
	"aiknvm/internal/domain"
)

type Bot struct {
	client *api.Client
}

func NewBot(client *api.Client) *Bot {
	return &Bot{client: client}
}

// List fetches the fixed bot catalog. No pagination, no filtering.
func (r *Bot) List(ctx context.Context) ([]domain.Bot, error) {
	var bots []domain.Bot
	if err := r.client.Execute(ctx, http.MethodGet, "/bots", nil, &bots); err != nil {
		return nil, err
	}
	return bots, nil
}
