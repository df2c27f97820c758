package llm

import "context"

type Role string

const (
	RoleSystem    Role = "system"
	RoleAssistant Role = "assistant"
	RoleUser      Role = "user"
)

type Message struct {
	Role    Role
	Content string
}

// Client is the text-completion model boundary shared by conversation turns,
// observer evaluation and grading.
type Client interface {
	Complete(ctx context.Context, system string, history []Message) (string, error)
}
