package chatdesk

import (
	"log/slog"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
)

// Option configures the Client.
type Option interface {
	apply(*clientConfig)
}

type optionFunc func(*clientConfig)

func (f optionFunc) apply(c *clientConfig) { f(c) }

type clientConfig struct {
	openAIKey     string
	openAIBaseURL string
	gateway       Gateway

	naverID, naverSecret string
	kakaoKey             string
	googleKey, googleCX  string
	videoSearch          bool

	languages          []string
	transcriptFallback bool
	maxHops            int
	httpClient         *http.Client

	dailyTokens, monthlyTokens int64
	rejectOverBudget           bool

	logger     *slog.Logger
	metricsReg prometheus.Registerer
}

// WithOpenAI uses an OpenAI-compatible API as the model gateway.
// baseURL may be empty for the public endpoint.
func WithOpenAI(apiKey, baseURL string) Option {
	return optionFunc(func(c *clientConfig) {
		c.openAIKey = apiKey
		c.openAIBaseURL = baseURL
	})
}

// WithGateway uses a custom model gateway instead of OpenAI. If g also
// implements Embedder, EmbedText and EmbedPDF use it.
func WithGateway(g Gateway) Option {
	return optionFunc(func(c *clientConfig) { c.gateway = g })
}

// WithNaver enables Naver search.
func WithNaver(clientID, clientSecret string) Option {
	return optionFunc(func(c *clientConfig) {
		c.naverID = clientID
		c.naverSecret = clientSecret
	})
}

// WithKakao enables Kakao search.
func WithKakao(apiKey string) Option {
	return optionFunc(func(c *clientConfig) { c.kakaoKey = apiKey })
}

// WithGoogle enables Google Custom Search.
func WithGoogle(apiKey, cx string) Option {
	return optionFunc(func(c *clientConfig) {
		c.googleKey = apiKey
		c.googleCX = cx
	})
}

// WithVideoSearch adds Kakao video clips to search answers. Requires WithKakao.
func WithVideoSearch() Option {
	return optionFunc(func(c *clientConfig) { c.videoSearch = true })
}

// WithTranscriptLanguages sets the preferred caption languages in order.
// Defaults to Korean.
func WithTranscriptLanguages(langs ...string) Option {
	return optionFunc(func(c *clientConfig) { c.languages = langs })
}

// WithTranscriptFallback answers video questions without a transcript when
// none is available, instead of failing.
func WithTranscriptFallback() Option {
	return optionFunc(func(c *clientConfig) { c.transcriptFallback = true })
}

// WithMaxHops bounds the gateway calls of one Discuss turn. Default: 8.
func WithMaxHops(n int) Option {
	return optionFunc(func(c *clientConfig) { c.maxHops = n })
}

// WithEmbeddingBudget caps embedding tokens per UTC day and month; 0 means
// unlimited. Over budget, embedding calls fail with ErrQuotaExceeded when
// reject is set and are only logged otherwise.
func WithEmbeddingBudget(daily, monthly int64, reject bool) Option {
	return optionFunc(func(c *clientConfig) {
		c.dailyTokens = daily
		c.monthlyTokens = monthly
		c.rejectOverBudget = reject
	})
}

// WithHTTPClient sets the client used for search providers and YouTube.
func WithHTTPClient(hc *http.Client) Option {
	return optionFunc(func(c *clientConfig) { c.httpClient = hc })
}

// WithLogger enables structured logging for Client operations.
// Pass nil to disable (default).
func WithLogger(l *slog.Logger) Option {
	return optionFunc(func(c *clientConfig) { c.logger = l })
}

// WithPrometheus registers Client metrics (operation counts and durations)
// on the given registerer. Pass nil to disable (default).
func WithPrometheus(reg prometheus.Registerer) Option {
	return optionFunc(func(c *clientConfig) { c.metricsReg = reg })
}
