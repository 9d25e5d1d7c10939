package repository

import (
	"context"
	"net/http"
	"net/url"

	"aiknvm/internal/api"
	"aiknvm/internal/domain"
)

type Chat struct {
	client *api.Client
}

func NewChat(client *api.Client) *Chat {
	return &Chat{client: client}
}

type SendResult struct {
	Messages       []domain.Message `json:"messages"`
	ConversationID string           `json:"historyId"`
}

// Send posts one message. A nil conversationID starts a new conversation;
// the backend assigns the id and returns it alongside the updated sequence.
func (r *Chat) Send(ctx context.Context, conversationID *string, content, botID string) (SendResult, error) {
	body := struct {
		HistoryID *string `json:"historyId"`
		Content   string  `json:"content"`
		BotID     string  `json:"botId,omitempty"`
	}{HistoryID: conversationID, Content: content, BotID: botID}

	var res SendResult
	if err := r.client.Execute(ctx, http.MethodPost, "/chat", body, &res); err != nil {
		return SendResult{}, err
	}
	return res, nil
}

// List fetches all messages of a conversation.
func (r *Chat) List(ctx context.Context, conversationID string) ([]domain.Message, error) {
	var msgs []domain.Message
	path := "/chat/" + url.PathEscape(conversationID)
	if err := r.client.Execute(ctx, http.MethodGet, path, nil, &msgs); err != nil {
		return nil, err
	}
	return msgs, nil
}
