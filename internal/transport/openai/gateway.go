package openai

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sort"
	"time"

	openai "github.com/sashabaranov/go-openai"
	"go.uber.org/zap"

	"github.com/kailas-cloud/chatdesk/internal/domain"
	"github.com/kailas-cloud/chatdesk/internal/metrics"
)

// Fixed model identifiers.
const (
	ChatModel      = "gpt-4o-mini"
	EmbeddingModel = "text-embedding-3-small"
)

// Gateway talks to an OpenAI-compatible API for chat completions and embeddings.
type Gateway struct {
	client *openai.Client
	logger *zap.Logger
}

// Config holds the gateway settings.
type Config struct {
	APIKey  string
	BaseURL string // optional, defaults to the OpenAI endpoint
	Logger  *zap.Logger
}

// NewGateway creates a gateway. An empty API key is rejected.
func NewGateway(cfg *Config) (*Gateway, error) {
	if cfg.APIKey == "" {
		return nil, errors.New("openai: api key is required")
	}

	clientCfg := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientCfg.BaseURL = cfg.BaseURL
	}

	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Gateway{
		client: openai.NewClientWithConfig(clientCfg),
		logger: logger,
	}, nil
}

// Chat sends the messages in order and returns the text of the first choice.
func (g *Gateway) Chat(ctx context.Context, messages []domain.Message) (string, error) {
	req := openai.ChatCompletionRequest{
		Model:    ChatModel,
		Messages: toChatMessages(messages),
	}

	start := time.Now()
	resp, err := g.client.CreateChatCompletion(ctx, req)
	duration := time.Since(start)

	if err != nil {
		metrics.GatewayRequestsTotal.WithLabelValues("chat", ChatModel, "error").Inc()
		return "", parseAPIError(err)
	}
	if len(resp.Choices) == 0 {
		metrics.GatewayRequestsTotal.WithLabelValues("chat", ChatModel, "error").Inc()
		return "", fmt.Errorf("empty chat completion: %w", domain.ErrGatewayError)
	}

	metrics.GatewayRequestsTotal.WithLabelValues("chat", ChatModel, "success").Inc()
	metrics.GatewayRequestDuration.WithLabelValues("chat", ChatModel).Observe(duration.Seconds())
	recordTokens(ChatModel, resp.Usage.PromptTokens, resp.Usage.CompletionTokens)

	g.logger.Debug("Chat completion",
		zap.Int("messages", len(messages)),
		zap.Duration("duration", duration),
		zap.Int("prompt_tokens", resp.Usage.PromptTokens),
		zap.Int("completion_tokens", resp.Usage.CompletionTokens),
	)

	return resp.Choices[0].Message.Content, nil
}

// Embeddings embeds inputs in a single request. The result is ordered by
// input position and each Embedding carries its source text.
func (g *Gateway) Embeddings(ctx context.Context, inputs []string) (domain.EmbeddingBatch, error) {
	if len(inputs) == 0 {
		return domain.EmbeddingBatch{}, nil
	}

	req := openai.EmbeddingRequest{
		Input:          inputs,
		Model:          openai.EmbeddingModel(EmbeddingModel),
		EncodingFormat: openai.EmbeddingEncodingFormatFloat,
	}

	start := time.Now()
	resp, err := g.client.CreateEmbeddings(ctx, req)
	duration := time.Since(start)

	if err != nil {
		metrics.GatewayRequestsTotal.WithLabelValues("embeddings", EmbeddingModel, "error").Inc()
		return domain.EmbeddingBatch{}, parseAPIError(err)
	}
	if len(resp.Data) != len(inputs) {
		metrics.GatewayRequestsTotal.WithLabelValues("embeddings", EmbeddingModel, "error").Inc()
		return domain.EmbeddingBatch{}, fmt.Errorf("embedding count mismatch: got %d, want %d: %w",
			len(resp.Data), len(inputs), domain.ErrGatewayError)
	}

	metrics.GatewayRequestsTotal.WithLabelValues("embeddings", EmbeddingModel, "success").Inc()
	metrics.GatewayRequestDuration.WithLabelValues("embeddings", EmbeddingModel).Observe(duration.Seconds())
	recordTokens(EmbeddingModel, resp.Usage.PromptTokens, 0)

	data := resp.Data
	sort.Slice(data, func(i, j int) bool { return data[i].Index < data[j].Index })

	out := make([]domain.Embedding, len(data))
	for i, d := range data {
		if d.Index < 0 || d.Index >= len(inputs) {
			return domain.EmbeddingBatch{}, fmt.Errorf("embedding index %d out of range: %w",
				d.Index, domain.ErrGatewayError)
		}
		out[i] = domain.Embedding{ID: d.Index, Vector: d.Embedding, Text: inputs[d.Index]}
	}

	return domain.EmbeddingBatch{
		Embeddings:   out,
		PromptTokens: resp.Usage.PromptTokens,
		TotalTokens:  resp.Usage.TotalTokens,
	}, nil
}

// Model returns the embedding model id, used to namespace cache keys.
func (g *Gateway) Model() string { return EmbeddingModel }

// HealthCheck verifies API availability via ListModels (free endpoint).
func (g *Gateway) HealthCheck(ctx context.Context) error {
	if _, err := g.client.ListModels(ctx); err != nil {
		return fmt.Errorf("list models: %w", err)
	}
	return nil
}

func toChatMessages(messages []domain.Message) []openai.ChatCompletionMessage {
	out := make([]openai.ChatCompletionMessage, len(messages))
	for i, m := range messages {
		out[i] = openai.ChatCompletionMessage{Role: string(m.Role), Content: m.Content}
	}
	return out
}

func recordTokens(model string, prompt, completion int) {
	if prompt > 0 {
		metrics.GatewayTokensTotal.WithLabelValues(model, "prompt").Add(float64(prompt))
	}
	if completion > 0 {
		metrics.GatewayTokensTotal.WithLabelValues(model, "completion").Add(float64(completion))
	}
}

// parseAPIError maps API failures onto domain sentinels: 429 becomes
// ErrRateLimited, everything else ErrGatewayError.
func parseAPIError(err error) error {
	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		return fmt.Errorf("model API error %d: %s: %w",
			reqErr.HTTPStatusCode, string(reqErr.Body), sentinelFor(reqErr.HTTPStatusCode))
	}

	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return fmt.Errorf("model API error %d: %s: %w",
			apiErr.HTTPStatusCode, apiErr.Message, sentinelFor(apiErr.HTTPStatusCode))
	}

	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("model request aborted: %w", errors.Join(err, domain.ErrGatewayError))
	}

	return fmt.Errorf("model request failed: %v: %w", err, domain.ErrGatewayError)
}

func sentinelFor(status int) error {
	if status == http.StatusTooManyRequests {
		return domain.ErrRateLimited
	}
	return domain.ErrGatewayError
}
