// Package provider implements the Naver, Kakao and Google search clients.
package provider

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/chatdesk/internal/domain"
	"github.com/kailas-cloud/chatdesk/internal/metrics"
)

const (
	defaultTimeout  = 10 * time.Second
	defaultPageSize = 10
	maxBodyBytes    = 4 << 20
)

// highlight markup providers wrap around matched terms
var highlightStripper = strings.NewReplacer("<b>", "", "</b>", "")

// Option configures a provider client.
type Option func(*options)

type options struct {
	baseURL    string
	httpClient *http.Client
	logger     *zap.Logger
}

// WithBaseURL overrides the provider endpoint, mainly for tests.
func WithBaseURL(u string) Option {
	return func(o *options) { o.baseURL = strings.TrimRight(u, "/") }
}

// WithHTTPClient replaces the default client (10s timeout).
func WithHTTPClient(c *http.Client) Option {
	return func(o *options) { o.httpClient = c }
}

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) Option {
	return func(o *options) { o.logger = l }
}

func buildOptions(defaultBase string, opts []Option) options {
	o := options{
		baseURL:    defaultBase,
		httpClient: &http.Client{Timeout: defaultTimeout},
		logger:     zap.NewNop(),
	}
	for _, fn := range opts {
		fn(&o)
	}
	return o
}

// getJSON issues a GET, strips highlight markup from the raw body and decodes it into out.
func getJSON(
	ctx context.Context, o options, provider, endpoint string,
	params url.Values, header http.Header, out any,
) error {
	u := endpoint
	if len(params) > 0 {
		u += "?" + params.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, http.NoBody)
	if err != nil {
		return fmt.Errorf("%s: build request: %w", provider, err)
	}
	for k, vs := range header {
		for _, v := range vs {
			req.Header.Add(k, v)
		}
	}

	start := time.Now()
	resp, err := o.httpClient.Do(req)
	metrics.ProviderRequestDuration.WithLabelValues(provider).Observe(time.Since(start).Seconds())
	if err != nil {
		metrics.ProviderRequestsTotal.WithLabelValues(provider, "error").Inc()
		return fmt.Errorf("%s: request failed: %v: %w", provider, err, domain.ErrProviderError)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		metrics.ProviderRequestsTotal.WithLabelValues(provider, "error").Inc()
		return fmt.Errorf("%s: read body: %v: %w", provider, err, domain.ErrProviderError)
	}

	status := strconv.Itoa(resp.StatusCode)
	metrics.ProviderRequestsTotal.WithLabelValues(provider, status).Inc()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		o.logger.Warn("Search provider returned error status",
			zap.String("provider", provider),
			zap.Int("status", resp.StatusCode),
			zap.ByteString("body", truncate(body, 512)),
		)
		return domain.NewProviderError(provider, resp.StatusCode)
	}

	clean := highlightStripper.Replace(string(body))
	if err := json.Unmarshal([]byte(clean), out); err != nil {
		return fmt.Errorf("%s: decode response: %v: %w", provider, err, domain.ErrProviderError)
	}
	return nil
}

func truncate(b []byte, n int) []byte {
	if len(b) <= n {
		return b
	}
	return b[:n]
}
