package domain

import "time"

// ChatRole identifies who wrote a chat message.
type ChatRole string

// Chat roles.
const (
	ChatRoleUser      ChatRole = "user"
	ChatRoleAssistant ChatRole = "assistant"
)

// ChatSource records how an assistant reply was produced.
type ChatSource string

// Reply sources.
const (
	ChatSourceUser      ChatSource = "user"
	ChatSourceWelcome   ChatSource = "welcome"
	ChatSourceGemini    ChatSource = "gemini"
	ChatSourceAnthropic ChatSource = "anthropic"
	ChatSourceLocal     ChatSource = "local"
	ChatSourceCache     ChatSource = "cache"
	ChatSourceApology   ChatSource = "apology"
)

// Conversation is a chat thread with the history assistant.
type Conversation struct {
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
	ID        string    `json:"id"`
}

// ChatMessage is a single message of a conversation.
type ChatMessage struct {
	CreatedAt      time.Time  `json:"created_at"`
	ID             string     `json:"id"`
	ConversationID string     `json:"conversation_id"`
	Role           ChatRole   `json:"role"`
	Source         ChatSource `json:"source"`
	Text           string     `json:"text"`
}
