package videochat

import (
	"context"

	"github.com/kailas-cloud/chatdesk/internal/domain"
	"github.com/kailas-cloud/chatdesk/internal/domain/transcript"
)

// Gateway answers a chat completion with the first choice's text.
type Gateway interface {
	Chat(ctx context.Context, messages []domain.Message) (string, error)
}

// TranscriptFetcher retrieves captions for a video in the first available language.
type TranscriptFetcher interface {
	Fetch(ctx context.Context, videoID string, languages []string) (transcript.Transcript, error)
}
