package router

import (
	"context"

	"github.com/kailas-cloud/chatdesk/internal/domain"
	"github.com/kailas-cloud/chatdesk/internal/domain/conversation"
)

// Gateway answers a chat completion with the first choice's text.
type Gateway interface {
	Chat(ctx context.Context, messages []domain.Message) (string, error)
}

// ActionHandler performs the side effect behind an action state.
// raw is the full model reply, including the "| key:value" payload.
type ActionHandler interface {
	Handle(ctx context.Context, action conversation.State, raw string, params map[string]string) error
}
