package chi

import (
	"context"
	"io"

	"github.com/kailas-cloud/chatdesk/internal/domain"
	"github.com/kailas-cloud/chatdesk/internal/domain/conversation"
	domusage "github.com/kailas-cloud/chatdesk/internal/domain/usage"
	"github.com/kailas-cloud/chatdesk/internal/repository/session"
	docembeduc "github.com/kailas-cloud/chatdesk/internal/usecase/docembed"
	healthuc "github.com/kailas-cloud/chatdesk/internal/usecase/health"
	routeruc "github.com/kailas-cloud/chatdesk/internal/usecase/router"
	searchuc "github.com/kailas-cloud/chatdesk/internal/usecase/searchchat"
	videouc "github.com/kailas-cloud/chatdesk/internal/usecase/videochat"
)

// ChatService runs one routed chat turn.
type ChatService interface {
	Discuss(ctx context.Context, conv *conversation.Conversation, input string) (routeruc.Turn, error)
}

// SearchService answers a question with optional web search.
type SearchService interface {
	Ask(ctx context.Context, question string, history []domain.Message) (searchuc.Answer, error)
}

// VideoService answers a question about a video.
type VideoService interface {
	AskURL(ctx context.Context, rawURL, question string, history []domain.Message) (videouc.Answer, error)
}

// EmbedService turns documents into embeddings.
type EmbedService interface {
	EmbedPDF(ctx context.Context, r io.ReaderAt, size int64) (docembeduc.Result, error)
	EmbedText(ctx context.Context, text string) (docembeduc.Result, error)
}

// HealthService reports component health.
type HealthService interface {
	Check(ctx context.Context) healthuc.Report
}

// UsageService reports embedding token usage.
type UsageService interface {
	GetReport(ctx context.Context, period domusage.Period) domusage.Report
}

// SessionStore resolves visitor sessions.
type SessionStore interface {
	GetOrCreate(id string) (*session.Session, bool)
}
