package controller

import (
	"context"
	"errors"

	"aiknvm/internal/domain"
	"aiknvm/internal/repository"
)

// ErrSendInFlight rejects a send issued while another one is pending. The
// pending send may be about to learn the conversation id; a second concurrent
// send routed without it would open a stray conversation.
var ErrSendInFlight = errors.New("a send is already in flight")

type ChatState struct {
	ConversationID *string
	Messages       []domain.Message
	Loading        bool
	Err            error
}

// Chat owns the message sequence of one conversation. The conversation id
// starts as the value supplied at construction, or absent for a new
// conversation, and becomes concrete with the first successful send.
type Chat struct {
	lc       guard
	repo     *repository.Chat
	botID    string
	onChange func()

	conversationID *string
	messages       []domain.Message
	loading        bool
	err            error
	sending        bool
}

func NewChat(repo *repository.Chat, conversationID *string, botID string) *Chat {
	c := &Chat{repo: repo, botID: botID}
	if conversationID != nil {
		id := *conversationID
		c.conversationID = &id
	}
	return c
}

func (c *Chat) SetOnChange(fn func()) {
	c.lc.with(func() { c.onChange = fn })
}

// Activate loads the existing message sequence when a conversation id is
// present; a fresh conversation has nothing to load.
func (c *Chat) Activate(ctx context.Context) {
	gen := c.lc.activate()

	var id string
	var have bool
	c.lc.with(func() {
		c.err = nil
		if c.conversationID != nil {
			id = *c.conversationID
			have = true
		}
		c.loading = have
	})
	if !have {
		return
	}

	go func() {
		msgs, err := c.repo.List(ctx, id)
		committed := c.lc.commit(gen, func() {
			if err != nil {
				c.err = err
			} else {
				c.messages = msgs
			}
			c.loading = false
		})
		if committed {
			c.notify()
		}
	}()
}

func (c *Chat) Deactivate() {
	c.lc.deactivate()
}

// Send posts content to the current conversation and atomically replaces both
// the message sequence and the conversation id with the response. Returns the
// conversation id the backend settled on. Only one send may be in flight.
func (c *Chat) Send(ctx context.Context, content string) (string, error) {
	var id *string
	var gen uint64
	var busy bool
	c.lc.with(func() {
		if c.sending {
			busy = true
			return
		}
		c.sending = true
		gen = c.lc.gen
		if c.conversationID != nil {
			v := *c.conversationID
			id = &v
		}
	})
	if busy {
		return "", ErrSendInFlight
	}

	res, err := c.repo.Send(ctx, id, content, c.botID)

	c.lc.with(func() { c.sending = false })
	if err != nil {
		return "", err
	}

	committed := c.lc.commit(gen, func() {
		c.messages = res.Messages
		cid := res.ConversationID
		c.conversationID = &cid
	})
	if committed {
		c.notify()
	}
	return res.ConversationID, nil
}

func (c *Chat) State() ChatState {
	var s ChatState
	c.lc.with(func() {
		s = ChatState{Loading: c.loading, Err: c.err}
		if c.conversationID != nil {
			id := *c.conversationID
			s.ConversationID = &id
		}
		s.Messages = append([]domain.Message(nil), c.messages...)
	})
	return s
}

func (c *Chat) notify() {
	var fn func()
	c.lc.with(func() { fn = c.onChange })
	if fn != nil {
		fn()
	}
}
