// Package searchchat answers questions grounded on live web search results.
package searchchat

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/kailas-cloud/chatdesk/internal/domain"
	"github.com/kailas-cloud/chatdesk/internal/domain/search"
	"github.com/kailas-cloud/chatdesk/internal/metrics"
)

// Classifier names used in logs, metrics and decision traces.
const (
	ClassifierNeedSearch  = "is_need_search"
	ClassifierSorting     = "get_sorting_type"
	ClassifierServiceType = "get_search_service_type"
	ClassifierVideo       = "is_video_search_need"
)

const (
	tokenTrue  = "TRUE"
	tokenFalse = "FALSE"
)

// ProviderQuery is the classified and rewritten query sent to one provider.
type ProviderQuery struct {
	Provider    string             `json:"provider"`
	ServiceType search.ServiceType `json:"service_type"`
	Query       string             `json:"query"`
	Items       int                `json:"items"`
}

// Decision traces what the classifiers decided for one question.
type Decision struct {
	Searched   bool                           `json:"searched"`
	Sort       search.SortOrder               `json:"sort,omitempty"`
	Queries    []ProviderQuery                `json:"queries,omitempty"`
	Video      bool                           `json:"video"`
	Unexpected []*domain.UnexpectedTokenError `json:"-"`
}

// Answer is the result of Ask.
type Answer struct {
	Reply    string
	Bundle   *search.Bundle
	Decision Decision
}

// Option configures a Service.
type Option func(*Service)

// WithVideoSearch enables the video classifier and clip lookup.
func WithVideoSearch(v VideoSearcher) Option {
	return func(s *Service) { s.video = v }
}

// Service classifies a question, queries the providers in order and asks the
// gateway for an answer grounded on the merged results.
type Service struct {
	gw        Gateway
	providers []Provider
	video     VideoSearcher
	logger    *zap.Logger
}

// New creates a search chat service. Providers are queried in the given order.
func New(gw Gateway, providers []Provider, l *zap.Logger, opts ...Option) *Service {
	if l == nil {
		l = zap.NewNop()
	}
	s := &Service{gw: gw, providers: providers, logger: l}
	for _, fn := range opts {
		fn(s)
	}
	return s
}

// Ask answers question. history is sent ahead of the grounded prompt and is
// not modified.
func (s *Service) Ask(ctx context.Context, question string, history []domain.Message) (Answer, error) {
	var dec Decision

	need, err := s.classify(ctx, ClassifierNeedSearch, needSearchPrompt, question)
	if err != nil {
		return Answer{}, err
	}
	switch need {
	case tokenTrue:
		dec.Searched = true
	case tokenFalse:
	default:
		s.flag(&dec, ClassifierNeedSearch, need)
	}

	var bundle *search.Bundle
	if dec.Searched {
		bundle, err = s.gather(ctx, question, &dec)
		if err != nil {
			return Answer{}, err
		}
	}

	msgs := append(domain.CloneMessages(history), domain.UserMessage(finalMessage(bundle, question)))
	reply, err := s.gw.Chat(ctx, msgs)
	if err != nil {
		return Answer{}, fmt.Errorf("grounded answer: %w", err)
	}

	return Answer{Reply: reply, Bundle: bundle, Decision: dec}, nil
}

func (s *Service) gather(ctx context.Context, question string, dec *Decision) (*search.Bundle, error) {
	sortToken, err := s.classify(ctx, ClassifierSorting, sortingPrompt, question)
	if err != nil {
		return nil, err
	}
	dec.Sort = search.Similarity
	switch search.SortOrder(sortToken) {
	case search.Latest:
		dec.Sort = search.Latest
	case search.Similarity:
	default:
		s.flag(dec, ClassifierSorting, sortToken)
	}

	results := make([]search.Result, 0, len(s.providers)+1)
	for _, p := range s.providers {
		req, err := s.buildRequest(ctx, question, dec)
		if err != nil {
			return nil, err
		}
		res, err := p.Search(ctx, req)
		if err != nil {
			return nil, fmt.Errorf("search %s: %w", p.Name(), err)
		}
		dec.Queries = append(dec.Queries, ProviderQuery{
			Provider: p.Name(), ServiceType: req.ServiceType, Query: req.Query, Items: len(res.Items),
		})
		results = append(results, res)
	}

	if s.video != nil {
		want, err := s.classify(ctx, ClassifierVideo, videoPrompt, question)
		if err != nil {
			return nil, err
		}
		switch want {
		case tokenTrue:
			dec.Video = true
		case tokenFalse:
		default:
			s.flag(dec, ClassifierVideo, want)
		}
		if dec.Video {
			res, err := s.video.VideoSearch(ctx, question, dec.Sort)
			if err != nil {
				return nil, fmt.Errorf("video search: %w", err)
			}
			results = append(results, res)
		}
	}

	return search.Merge(results...), nil
}

// buildRequest runs the service type classifier and the query rewrite for one provider.
func (s *Service) buildRequest(ctx context.Context, question string, dec *Decision) (search.Request, error) {
	token, err := s.classify(ctx, ClassifierServiceType, serviceTypePrompt, question)
	if err != nil {
		return search.Request{}, err
	}
	st := search.ServiceType(token)
	if !st.IsValid() {
		s.flag(dec, ClassifierServiceType, token)
		st = search.WebKR
	}

	query, err := s.gw.Chat(ctx, []domain.Message{domain.UserMessage(rewriteMessage(question, st))})
	if err != nil {
		return search.Request{}, fmt.Errorf("rewrite query: %w", err)
	}
	return search.Request{Query: query, ServiceType: st, Sort: dec.Sort}, nil
}

func (s *Service) classify(ctx context.Context, name, prompt, question string) (string, error) {
	out, err := s.gw.Chat(ctx, []domain.Message{domain.UserMessage(classifierMessage(prompt, question))})
	if err != nil {
		return "", fmt.Errorf("classifier %s: %w", name, err)
	}
	return out, nil
}

func (s *Service) flag(dec *Decision, classifier, token string) {
	metrics.ClassifierUnexpectedTotal.WithLabelValues(classifier).Inc()
	s.logger.Warn("Unexpected classifier output",
		zap.String("classifier", classifier),
		zap.String("token", token),
	)
	dec.Unexpected = append(dec.Unexpected, &domain.UnexpectedTokenError{Classifier: classifier, Token: token})
}
