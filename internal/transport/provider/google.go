package provider

import (
	"context"
	"encoding/json"
	"errors"
	"net/url"
	"strconv"

	"github.com/kailas-cloud/chatdesk/internal/domain/search"
	"github.com/kailas-cloud/chatdesk/internal/metrics"
)

const googleBaseURL = "https://www.googleapis.com/customsearch/v1"

// Google queries the Custom Search JSON API.
type Google struct {
	opts   options
	apiKey string
	cx     string
}

// NewGoogle creates a Google client. The API key and search engine id are required.
func NewGoogle(apiKey, cx string, opts ...Option) (*Google, error) {
	if apiKey == "" || cx == "" {
		return nil, errors.New("google: api key and cx are required")
	}
	return &Google{opts: buildOptions(googleBaseURL, opts), apiKey: apiKey, cx: cx}, nil
}

type googleResponse struct {
	Items []json.RawMessage `json:"items"`
}

// Name identifies the provider in logs and metrics.
func (g *Google) Name() string { return "google" }

// Search runs req. Only the query is sent; service type and sort order are
// not expressible in the request.
func (g *Google) Search(ctx context.Context, req search.Request) (search.Result, error) {
	params := url.Values{}
	params.Set("key", g.apiKey)
	params.Set("cx", g.cx)
	params.Set("q", req.Query)
	params.Set("num", strconv.Itoa(defaultPageSize))

	var resp googleResponse
	if err := getJSON(ctx, g.opts, g.Name(), g.opts.baseURL, params, nil, &resp); err != nil {
		return search.Result{}, err
	}

	metrics.ProviderItemsTotal.WithLabelValues(g.Name()).Add(float64(len(resp.Items)))
	return search.Result{Provider: g.Name(), Items: resp.Items}, nil
}
