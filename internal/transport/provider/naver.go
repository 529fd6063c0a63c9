package provider

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/kailas-cloud/chatdesk/internal/domain/search"
	"github.com/kailas-cloud/chatdesk/internal/metrics"
)

const naverBaseURL = "https://openapi.naver.com/v1/search"

// Naver queries the Naver Open API search endpoints.
type Naver struct {
	opts   options
	header http.Header
}

// NewNaver creates a Naver client. Both credentials are required.
func NewNaver(clientID, clientSecret string, opts ...Option) (*Naver, error) {
	if clientID == "" || clientSecret == "" {
		return nil, errors.New("naver: client id and secret are required")
	}
	h := http.Header{}
	h.Set("X-Naver-Client-Id", clientID)
	h.Set("X-Naver-Client-Secret", clientSecret)
	return &Naver{opts: buildOptions(naverBaseURL, opts), header: h}, nil
}

type naverResponse struct {
	LastBuildDate *string           `json:"lastBuildDate"`
	Items         []json.RawMessage `json:"items"`
}

// Name identifies the provider in logs and metrics.
func (n *Naver) Name() string { return "naver" }

// Search runs req against /{service type}.
func (n *Naver) Search(ctx context.Context, req search.Request) (search.Result, error) {
	params := url.Values{}
	params.Set("query", req.Query)
	params.Set("start", "1")
	params.Set("display", strconv.Itoa(defaultPageSize))
	params.Set("sort", naverSort(req.Sort))

	endpoint := n.opts.baseURL + "/" + strings.ToLower(string(req.ServiceType))

	var resp naverResponse
	if err := getJSON(ctx, n.opts, n.Name(), endpoint, params, n.header, &resp); err != nil {
		return search.Result{}, err
	}

	metrics.ProviderItemsTotal.WithLabelValues(n.Name()).Add(float64(len(resp.Items)))
	return search.Result{Provider: n.Name(), BuildDate: resp.LastBuildDate, Items: resp.Items}, nil
}

func naverSort(s search.SortOrder) string {
	if s == search.Latest {
		return "date"
	}
	return "sim"
}
