package providers

import "context"

// ChatMessage is one turn of an assistant conversation
type ChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// AssistantProvider generates a reply from a conversation
type AssistantProvider interface {
	Chat(ctx context.Context, messages []ChatMessage) (string, error)
}
