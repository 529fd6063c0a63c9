package chatdesk

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/chatdesk/internal/domain"
	"github.com/kailas-cloud/chatdesk/internal/domain/conversation"
	openaiGateway "github.com/kailas-cloud/chatdesk/internal/transport/openai"
	"github.com/kailas-cloud/chatdesk/internal/transport/provider"
	"github.com/kailas-cloud/chatdesk/internal/transport/youtube"
	docembeduc "github.com/kailas-cloud/chatdesk/internal/usecase/docembed"
	embeddinguc "github.com/kailas-cloud/chatdesk/internal/usecase/embedding"
	routeruc "github.com/kailas-cloud/chatdesk/internal/usecase/router"
	searchuc "github.com/kailas-cloud/chatdesk/internal/usecase/searchchat"
	usageuc "github.com/kailas-cloud/chatdesk/internal/usecase/usage"
	videouc "github.com/kailas-cloud/chatdesk/internal/usecase/videochat"
)

// Internal interfaces, swapped out in tests.
type routerUseCase interface {
	Discuss(ctx context.Context, conv *conversation.Conversation, input string) (routeruc.Turn, error)
}

type searchUseCase interface {
	Ask(ctx context.Context, question string, history []domain.Message) (searchuc.Answer, error)
}

type videoUseCase interface {
	AskURL(ctx context.Context, rawURL, question string, history []domain.Message) (videouc.Answer, error)
}

type embedUseCase interface {
	EmbedPDF(ctx context.Context, r io.ReaderAt, size int64) (docembeduc.Result, error)
	EmbedText(ctx context.Context, text string) (docembeduc.Result, error)
}

type usageUseCase interface {
	GetReport(ctx context.Context, period UsagePeriod) UsageReport
}

// Client is the chatdesk entry point. It is safe for concurrent use; a
// single Conversation is not.
type Client struct {
	router routerUseCase
	search searchUseCase
	video  videoUseCase
	embed  embedUseCase
	usage  usageUseCase
	obs    *observer
}

// New creates a Client. A gateway is required, either WithOpenAI or
// WithGateway. AskSearch needs at least one search provider.
func New(opts ...Option) (*Client, error) {
	cfg := &clientConfig{}
	for _, o := range opts {
		o.apply(cfg)
	}

	gw, err := buildGateway(cfg)
	if err != nil {
		return nil, err
	}

	obs, err := newObserver(cfg.logger, cfg.metricsReg)
	if err != nil {
		return nil, err
	}

	nop := zap.NewNop()
	c := &Client{
		router: routeruc.New(gw, nop, routeruc.WithMaxHops(cfg.maxHops)),
		obs:    obs,
	}

	providers, video, err := buildProviders(cfg)
	if err != nil {
		return nil, err
	}
	if len(providers) > 0 {
		var sopts []searchuc.Option
		if video != nil {
			sopts = append(sopts, searchuc.WithVideoSearch(video))
		}
		c.search = searchuc.New(gw, providers, nop, sopts...)
	}

	var ytOpts []youtube.Option
	if cfg.httpClient != nil {
		ytOpts = append(ytOpts, youtube.WithHTTPClient(cfg.httpClient))
	}
	c.video = videouc.New(gw, youtube.NewClient(ytOpts...), videouc.Config{
		Languages:         cfg.languages,
		FallbackOnMissing: cfg.transcriptFallback,
	}, nop)

	if emb, ok := gw.(Embedder); ok {
		action := embeddinguc.BudgetActionWarn
		if cfg.rejectOverBudget {
			action = embeddinguc.BudgetActionReject
		}
		tracker := embeddinguc.NewBudgetTracker(emb.Model(), cfg.dailyTokens, cfg.monthlyTokens, action, nop)
		c.embed = docembeduc.New(embeddinguc.NewInstrumentedEmbedder(emb, emb.Model(), tracker, nop), nop)
		c.usage = usageuc.New(tracker)
	} else {
		c.usage = usageuc.New(nil)
	}
	return c, nil
}

func buildGateway(cfg *clientConfig) (Gateway, error) {
	if cfg.gateway != nil {
		return cfg.gateway, nil
	}
	if cfg.openAIKey == "" {
		return nil, errors.New("chatdesk: gateway required (use WithOpenAI or WithGateway)")
	}
	gw, err := openaiGateway.NewGateway(&openaiGateway.Config{
		APIKey:  cfg.openAIKey,
		BaseURL: cfg.openAIBaseURL,
	})
	if err != nil {
		return nil, fmt.Errorf("chatdesk: %w", err)
	}
	return gw, nil
}

// buildProviders creates the configured providers in Naver, Kakao, Google order.
func buildProviders(cfg *clientConfig) ([]searchuc.Provider, searchuc.VideoSearcher, error) {
	var opts []provider.Option
	if cfg.httpClient != nil {
		opts = append(opts, provider.WithHTTPClient(cfg.httpClient))
	}

	var (
		out   []searchuc.Provider
		video searchuc.VideoSearcher
	)
	if cfg.naverID != "" || cfg.naverSecret != "" {
		p, err := provider.NewNaver(cfg.naverID, cfg.naverSecret, opts...)
		if err != nil {
			return nil, nil, fmt.Errorf("chatdesk: %w", err)
		}
		out = append(out, p)
	}
	if cfg.kakaoKey != "" {
		p, err := provider.NewKakao(cfg.kakaoKey, opts...)
		if err != nil {
			return nil, nil, fmt.Errorf("chatdesk: %w", err)
		}
		out = append(out, p)
		if cfg.videoSearch {
			video = p
		}
	} else if cfg.videoSearch {
		return nil, nil, errors.New("chatdesk: video search requires WithKakao")
	}
	if cfg.googleKey != "" || cfg.googleCX != "" {
		p, err := provider.NewGoogle(cfg.googleKey, cfg.googleCX, opts...)
		if err != nil {
			return nil, nil, fmt.Errorf("chatdesk: %w", err)
		}
		out = append(out, p)
	}
	return out, video, nil
}

// NewConversation starts a routed conversation at START.
func (c *Client) NewConversation() *Conversation {
	return routeruc.NewConversation()
}

// Discuss runs one user turn of conv. An empty input only advances the router.
func (c *Client) Discuss(ctx context.Context, conv *Conversation, input string) (Turn, error) {
	start := time.Now()
	turn, err := c.router.Discuss(ctx, conv, input)
	c.obs.observe("discuss", start, err)
	if err != nil {
		return turn, fmt.Errorf("chatdesk: discuss: %w", err)
	}
	return turn, nil
}

// AskSearch answers question, searching the web when the model asks for it.
// history is sent ahead of the question and is not modified.
func (c *Client) AskSearch(ctx context.Context, question string, history []Message) (SearchAnswer, error) {
	if c.search == nil {
		return SearchAnswer{}, fmt.Errorf("chatdesk: search: %w", ErrNotConfigured)
	}
	start := time.Now()
	ans, err := c.search.Ask(ctx, question, history)
	c.obs.observe("ask_search", start, err)
	if err != nil {
		return SearchAnswer{}, fmt.Errorf("chatdesk: search: %w", err)
	}
	return SearchAnswer{
		Reply:     ans.Reply,
		Searched:  ans.Decision.Searched,
		Grounding: ans.Bundle.Render(),
	}, nil
}

// AskVideo answers question about the video at rawURL.
func (c *Client) AskVideo(ctx context.Context, rawURL, question string, history []Message) (VideoAnswer, error) {
	start := time.Now()
	ans, err := c.video.AskURL(ctx, rawURL, question, history)
	c.obs.observe("ask_video", start, err)
	if err != nil {
		return VideoAnswer{}, fmt.Errorf("chatdesk: video: %w", err)
	}
	return VideoAnswer{
		Reply:               ans.Reply,
		VideoID:             ans.VideoID,
		TranscriptAvailable: ans.TranscriptAvailable,
	}, nil
}

// EmbedText chunks text and embeds every chunk.
func (c *Client) EmbedText(ctx context.Context, text string) (Embeddings, error) {
	if c.embed == nil {
		return Embeddings{}, fmt.Errorf("chatdesk: embed: %w", ErrNotConfigured)
	}
	start := time.Now()
	res, err := c.embed.EmbedText(ctx, text)
	c.obs.observe("embed_text", start, err)
	if err != nil {
		return Embeddings{}, fmt.Errorf("chatdesk: embed: %w", err)
	}
	return Embeddings(res), nil
}

// EmbedPDF extracts the text of a PDF and embeds it in chunks.
func (c *Client) EmbedPDF(ctx context.Context, r io.ReaderAt, size int64) (Embeddings, error) {
	if c.embed == nil {
		return Embeddings{}, fmt.Errorf("chatdesk: embed: %w", ErrNotConfigured)
	}
	start := time.Now()
	res, err := c.embed.EmbedPDF(ctx, r, size)
	c.obs.observe("embed_pdf", start, err)
	if err != nil {
		return Embeddings{}, fmt.Errorf("chatdesk: embed: %w", err)
	}
	return Embeddings(res), nil
}

// Usage reports embedding token usage for the current day or month.
func (c *Client) Usage(ctx context.Context, period UsagePeriod) UsageReport {
	start := time.Now()
	defer func() { c.obs.observe("usage", start, nil) }()
	return c.usage.GetReport(ctx, period)
}
