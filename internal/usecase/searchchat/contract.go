package searchchat

import (
	"context"

	"github.com/kailas-cloud/chatdesk/internal/domain"
	"github.com/kailas-cloud/chatdesk/internal/domain/search"
)

// Gateway answers a chat completion with the first choice's text.
type Gateway interface {
	Chat(ctx context.Context, messages []domain.Message) (string, error)
}

// Provider is a web search backend.
type Provider interface {
	Name() string
	Search(ctx context.Context, req search.Request) (search.Result, error)
}

// VideoSearcher looks up video clips for a raw question.
type VideoSearcher interface {
	VideoSearch(ctx context.Context, query string, sort search.SortOrder) (search.Result, error)
}
