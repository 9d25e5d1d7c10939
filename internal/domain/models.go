package domain

// Role identifies the author of a message turn.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
	RoleSystem    Role = "system"
)

func (r Role) Valid() bool {
	switch r {
	case RoleUser, RoleAssistant, RoleSystem:
		return true
	}
	return false
}

type User struct {
	ID     string `json:"id"`
	Email  string `json:"email,omitempty"`
	Name   string `json:"name,omitempty"`
	Avatar string `json:"avatar,omitempty"`
}

type Bot struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Message is one turn in a conversation. Immutable once created.
type Message struct {
	ID        string `json:"id"`
	Role      Role   `json:"role"`
	Content   string `json:"content"`
	ImageURL  string `json:"imageUrl,omitempty"`
	CreatedAt string `json:"createdAt"` // RFC 3339
}

// Conversation is a server-identified thread. The catalog endpoint returns
// it without Messages; the detail endpoint includes them.
type Conversation struct {
	ID            string    `json:"id"`
	Title         string    `json:"title"`
	BotID         string    `json:"botId,omitempty"`
	LastMessageAt string    `json:"lastMessageAt,omitempty"` // RFC 3339
	Messages      []Message `json:"messages,omitempty"`
}
