// Package videochat answers questions about a video using its transcript.
package videochat

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/kailas-cloud/chatdesk/internal/domain"
)

// PromptRole frames the transcript-grounded answer.
const PromptRole = `
        You are a helpful assistant.
        When the TRANSCRIPT is unavailable, you should respond to the user's inquiry.
        If a TRANSCRIPT of a YouTube video is provided, you should address the user's questions related to that video.
        When a user asks, 'What can you do?', respond with: 'If you are provided with a YouTube video URL, I can answer questions based on that video.
        The answer is not politcal. You have to answer friendly.
`

const noTranscript = "None"

// DefaultLanguages is used when no preference is configured.
var DefaultLanguages = []string{"ko"}

// Config holds Service settings.
type Config struct {
	Languages []string
	// FallbackOnMissing answers without a transcript instead of failing.
	FallbackOnMissing bool
}

// Answer is the result of Ask.
type Answer struct {
	Reply               string
	VideoID             string
	TranscriptAvailable bool
}

// Service answers questions about videos.
type Service struct {
	gw      Gateway
	fetcher TranscriptFetcher
	cfg     Config
	logger  *zap.Logger
}

// New creates a video chat service.
func New(gw Gateway, fetcher TranscriptFetcher, cfg Config, l *zap.Logger) *Service {
	if len(cfg.Languages) == 0 {
		cfg.Languages = DefaultLanguages
	}
	if l == nil {
		l = zap.NewNop()
	}
	return &Service{gw: gw, fetcher: fetcher, cfg: cfg, logger: l}
}

// AskURL resolves the video id from rawURL and calls Ask.
func (s *Service) AskURL(ctx context.Context, rawURL, question string, history []domain.Message) (Answer, error) {
	return s.Ask(ctx, VideoIDFromURL(rawURL), question, history)
}

// Ask answers question about videoID. An empty id answers without a transcript.
func (s *Service) Ask(ctx context.Context, videoID, question string, history []domain.Message) (Answer, error) {
	ans := Answer{VideoID: videoID}
	text := noTranscript

	if videoID != "" {
		tr, err := s.fetcher.Fetch(ctx, videoID, s.cfg.Languages)
		switch {
		case err == nil:
			text = tr.Text()
			ans.TranscriptAvailable = true
		case s.cfg.FallbackOnMissing && errors.Is(err, domain.ErrTranscriptUnavailable):
			s.logger.Warn("Transcript unavailable, answering without it",
				zap.String("video_id", videoID),
				zap.Error(err),
			)
		default:
			return Answer{}, fmt.Errorf("fetch transcript %s: %w", videoID, err)
		}
	}

	prompt := fmt.Sprintf("\n%s\nTRANSCRIPT: %s\nUSER: %s\n", PromptRole, text, question)
	msgs := append(domain.CloneMessages(history), domain.UserMessage(prompt))
	reply, err := s.gw.Chat(ctx, msgs)
	if err != nil {
		return Answer{}, fmt.Errorf("video answer: %w", err)
	}
	ans.Reply = reply
	return ans, nil
}
