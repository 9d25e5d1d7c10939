package repository

import (
	"context"
	"net/http"
	"net/url"

	"aiknvm/internal/api"
	"aiknvm/internal/domain"
)

type History struct {
	client *api.Client
}

func NewHistory(client *api.Client) *History {
	return &History{client: client}
}

// List fetches the conversation catalog: titles only, no messages.
func (r *History) List(ctx context.Context) ([]domain.Conversation, error) {
	var convs []domain.Conversation
	if err := r.client.Execute(ctx, http.MethodGet, "/history", nil, &convs); err != nil {
		return nil, err
	}
	return convs, nil
}

// Get fetches one conversation including its message sequence.
func (r *History) Get(ctx context.Context, id string) (domain.Conversation, error) {
	var conv domain.Conversation
	path := "/history/" + url.PathEscape(id)
	if err := r.client.Execute(ctx, http.MethodGet, path, nil, &conv); err != nil {
		return domain.Conversation{}, err
	}
	return conv, nil
}
