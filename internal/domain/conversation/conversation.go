package conversation

import "github.com/kailas-cloud/chatdesk/internal/domain"

// Conversation is the per-session router state. It is not safe for
// concurrent use; callers serialise turns per session.
type Conversation struct {
	State   State            `json:"state"`
	History []domain.Message `json:"history"`

	system string
}

// New starts a conversation at Start with only systemPrompt in history.
func New(systemPrompt string) *Conversation {
	c := &Conversation{system: systemPrompt}
	c.Reset()
	return c
}

// Reset returns the conversation to its initial state.
func (c *Conversation) Reset() {
	c.State = Start
	c.History = []domain.Message{domain.SystemMessage(c.system)}
}

// Messages returns a copy of the history.
func (c *Conversation) Messages() []domain.Message {
	out := make([]domain.Message, len(c.History))
	copy(out, c.History)
	return out
}
