package main

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/chatdesk/internal/config"
	dbRedis "github.com/kailas-cloud/chatdesk/internal/db/redis"
	"github.com/kailas-cloud/chatdesk/internal/metrics"
	"github.com/kailas-cloud/chatdesk/internal/repository/budget"
	"github.com/kailas-cloud/chatdesk/internal/repository/embcache"
	"github.com/kailas-cloud/chatdesk/internal/repository/session"
	openaiGateway "github.com/kailas-cloud/chatdesk/internal/transport/openai"
	"github.com/kailas-cloud/chatdesk/internal/transport/provider"
	"github.com/kailas-cloud/chatdesk/internal/transport/youtube"
	docembeduc "github.com/kailas-cloud/chatdesk/internal/usecase/docembed"
	embeddinguc "github.com/kailas-cloud/chatdesk/internal/usecase/embedding"
	healthuc "github.com/kailas-cloud/chatdesk/internal/usecase/health"
	routeruc "github.com/kailas-cloud/chatdesk/internal/usecase/router"
	searchuc "github.com/kailas-cloud/chatdesk/internal/usecase/searchchat"
	usageuc "github.com/kailas-cloud/chatdesk/internal/usecase/usage"
	videouc "github.com/kailas-cloud/chatdesk/internal/usecase/videochat"
)

// app is the composition root shared by all commands.
type app struct {
	gateway  *openaiGateway.Gateway
	router   *routeruc.Service
	search   *searchuc.Service
	video    *videouc.Service
	embed    *docembeduc.Service
	embedder docembeduc.Embedder
	health   *healthuc.Service
	usage    *usageuc.Service
	sessions *session.Store

	closers []func()
}

func newApp(ctx context.Context, cfg config.Config, logger *zap.Logger) (*app, error) {
	metrics.Register()

	gw, err := openaiGateway.NewGateway(&openaiGateway.Config{
		APIKey:  cfg.OpenAI.APIKey,
		BaseURL: cfg.OpenAI.BaseURL,
		Logger:  logger,
	})
	if err != nil {
		return nil, fmt.Errorf("create gateway: %w", err)
	}

	a := &app{gateway: gw}

	providerOpts := []provider.Option{
		provider.WithHTTPClient(&http.Client{Timeout: time.Duration(cfg.Search.TimeoutSec) * time.Second}),
		provider.WithLogger(logger),
	}
	naver, err := provider.NewNaver(cfg.Naver.ClientID, cfg.Naver.ClientSecret, providerOpts...)
	if err != nil {
		return nil, fmt.Errorf("create naver provider: %w", err)
	}
	kakao, err := provider.NewKakao(cfg.Kakao.APIKey, providerOpts...)
	if err != nil {
		return nil, fmt.Errorf("create kakao provider: %w", err)
	}
	google, err := provider.NewGoogle(cfg.Google.APIKey, cfg.Google.CX, providerOpts...)
	if err != nil {
		return nil, fmt.Errorf("create google provider: %w", err)
	}

	var searchOpts []searchuc.Option
	if cfg.Search.VideoEnabled {
		searchOpts = append(searchOpts, searchuc.WithVideoSearch(kakao))
	}
	a.search = searchuc.New(gw, []searchuc.Provider{naver, kakao, google}, logger, searchOpts...)

	a.router = routeruc.New(gw, logger,
		routeruc.WithMaxHops(cfg.Router.MaxHops),
		routeruc.WithActionHandler(routeruc.NewLogActionHandler(logger)),
	)

	a.video = videouc.New(gw, youtube.NewClient(youtube.WithLogger(logger)), videouc.Config{
		Languages:         cfg.YouTube.Languages,
		FallbackOnMissing: cfg.YouTube.FallbackOnMissing,
	}, logger)

	action, err := embeddinguc.ParseBudgetAction(cfg.Budget.Action)
	if err != nil {
		return nil, fmt.Errorf("budget: %w", err)
	}
	tracker := embeddinguc.NewBudgetTracker("openai",
		cfg.Budget.DailyTokenLimit, cfg.Budget.MonthlyTokenLimit, action, logger)

	// Only the document embedder is budgeted and cached. The cache sits in
	// front of the budget so hits cost nothing.
	var embedder docembeduc.Embedder = embeddinguc.NewInstrumentedEmbedder(gw, "openai", tracker, logger)
	var cache healthuc.CachePinger
	if cfg.Cache.Enabled {
		store, err := dbRedis.NewStore(dbRedis.Config{
			Addrs:    cfg.Cache.Addrs,
			Password: cfg.Cache.Password,
		})
		if err != nil {
			return nil, fmt.Errorf("create cache store: %w", err)
		}
		a.closers = append(a.closers, store.Close)

		if err := store.WaitForReady(ctx, time.Duration(cfg.Cache.ReadinessTimeout)*time.Second); err != nil {
			a.Close()
			return nil, fmt.Errorf("cache not ready: %w", err)
		}
		logger.Info("Connected to embedding cache", zap.Strings("addrs", cfg.Cache.Addrs))

		tracker.WithStore(ctx, budget.New(store, budget.DefaultDailyTTL, budget.DefaultMonthlyTTL))
		embedder = embcache.New(embedder, store, time.Duration(cfg.Cache.TTLSec)*time.Second,
			metrics.EmbeddingCacheTotal, logger)
		cache = store
	}
	a.embedder = embedder
	a.embed = docembeduc.New(embedder, logger)
	a.health = healthuc.New(gw, cache)
	a.usage = usageuc.New(tracker)

	a.sessions = session.New(
		time.Duration(cfg.Session.TTLSec)*time.Second,
		time.Duration(cfg.Session.CleanupSec)*time.Second,
		routeruc.NewConversation,
	)
	return a, nil
}

// Close releases external connections.
func (a *app) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
	a.closers = nil
}
