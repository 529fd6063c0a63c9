package provider

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/url"
	"strconv"

	"github.com/kailas-cloud/chatdesk/internal/domain/search"
	"github.com/kailas-cloud/chatdesk/internal/metrics"
)

const kakaoBaseURL = "https://dapi.kakao.com"

// Kakao queries the Kakao Daum search API.
type Kakao struct {
	opts   options
	header http.Header
}

// NewKakao creates a Kakao client. The REST API key is required.
func NewKakao(apiKey string, opts ...Option) (*Kakao, error) {
	if apiKey == "" {
		return nil, errors.New("kakao: api key is required")
	}
	h := http.Header{}
	h.Set("Authorization", "KakaoAK "+apiKey)
	return &Kakao{opts: buildOptions(kakaoBaseURL, opts), header: h}, nil
}

type kakaoResponse struct {
	Documents []json.RawMessage `json:"documents"`
}

// Name identifies the provider in logs and metrics.
func (k *Kakao) Name() string { return "kakao" }

// Search runs req against the endpoint matching its service type.
func (k *Kakao) Search(ctx context.Context, req search.Request) (search.Result, error) {
	return k.query(ctx, k.Name(), kakaoPath(req.ServiceType), req.Query, req.Sort)
}

// VideoSearch queries the vclip endpoint with the raw question.
func (k *Kakao) VideoSearch(ctx context.Context, query string, sort search.SortOrder) (search.Result, error) {
	return k.query(ctx, "kakao_vclip", "/v2/search/vclip", query, sort)
}

func (k *Kakao) query(
	ctx context.Context, name, path, query string, sort search.SortOrder,
) (search.Result, error) {
	params := url.Values{}
	params.Set("query", query)
	params.Set("page", "1")
	params.Set("size", strconv.Itoa(defaultPageSize))
	params.Set("sort", kakaoSort(sort))

	var resp kakaoResponse
	if err := getJSON(ctx, k.opts, name, k.opts.baseURL+path, params, k.header, &resp); err != nil {
		return search.Result{}, err
	}

	metrics.ProviderItemsTotal.WithLabelValues(name).Add(float64(len(resp.Documents)))
	return search.Result{Provider: name, Items: resp.Documents}, nil
}

// kakaoPath maps a service type onto the closest Kakao endpoint.
// Book search lives under v3.
func kakaoPath(t search.ServiceType) string {
	switch t {
	case search.Book:
		return "/v3/search/book"
	case search.Blog:
		return "/v2/search/blog"
	case search.CafeArticle:
		return "/v2/search/cafe"
	default:
		return "/v2/search/web"
	}
}

func kakaoSort(s search.SortOrder) string {
	if s == search.Latest {
		return "recency"
	}
	return "accuracy"
}
