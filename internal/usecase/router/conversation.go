package router

import "github.com/kailas-cloud/chatdesk/internal/domain/conversation"

// NewConversation starts a conversation seeded with SystemPrompt.
func NewConversation() *conversation.Conversation {
	return conversation.New(SystemPrompt)
}

// stack is the turn-scoped record of states left behind.
type stack []conversation.State

func (s *stack) push(v conversation.State) { *s = append(*s, v) }

func (s *stack) pop() (conversation.State, bool) {
	n := len(*s)
	if n == 0 {
		return 0, false
	}
	v := (*s)[n-1]
	*s = (*s)[:n-1]
	return v, true
}
