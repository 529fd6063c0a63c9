// Package router drives the conversational state machine behind the chat page.
package router

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/kailas-cloud/chatdesk/internal/domain"
	"github.com/kailas-cloud/chatdesk/internal/domain/conversation"
	"github.com/kailas-cloud/chatdesk/internal/metrics"
)

// DefaultMaxHops bounds the gateway calls made for one user turn.
const DefaultMaxHops = 8

// Turn is the outcome of one Discuss call.
type Turn struct {
	Reply   string               `json:"reply"`
	State   conversation.State   `json:"state"`
	Path    []conversation.State `json:"path"`
	Hops    int                  `json:"hops"`
	Actions []ActionCall         `json:"actions,omitempty"`
}

// Option configures a Service.
type Option func(*Service)

// WithMaxHops overrides DefaultMaxHops. Values below 1 are ignored.
func WithMaxHops(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.maxHops = n
		}
	}
}

// WithActionHandler replaces the logging action handler.
func WithActionHandler(h ActionHandler) Option {
	return func(s *Service) { s.actions = h }
}

// Service runs conversation turns against the model gateway.
type Service struct {
	gw      Gateway
	actions ActionHandler
	maxHops int
	logger  *zap.Logger
}

// New creates a router service.
func New(gw Gateway, l *zap.Logger, opts ...Option) *Service {
	if l == nil {
		l = zap.NewNop()
	}
	s := &Service{gw: gw, maxHops: DefaultMaxHops, logger: l}
	for _, fn := range opts {
		fn(s)
	}
	if s.actions == nil {
		s.actions = NewLogActionHandler(l)
	}
	return s
}

// Discuss appends input (when non-empty) to the conversation and walks the
// state machine until the model produces an answer.
//
// A reply that exactly names a state moves there. A reply whose text before
// "|" names an action moves there and runs the action handler. Anything else
// is the answer: it is appended to history, and the conversation either
// resets (after Exit) or returns to the state it left last in this turn.
//
// On error the user message stays in history and the state is restored to
// what it was when the turn started.
func (s *Service) Discuss(ctx context.Context, conv *conversation.Conversation, input string) (Turn, error) {
	l := s.logger
	if input != "" {
		conv.History = append(conv.History, domain.UserMessage(input))
	}

	entry := conv.State
	turn := Turn{Path: []conversation.State{entry}}
	var left stack

	abort := func(err error) (Turn, error) {
		conv.State = entry
		turn.State = entry
		metrics.RouterHops.Observe(float64(turn.Hops))
		return turn, err
	}

	for {
		if turn.Hops >= s.maxHops {
			metrics.RouterHopLimitTotal.Inc()
			l.Warn("Router hop limit reached",
				zap.Int("max_hops", s.maxHops),
				zap.Stringers("path", turn.Path),
			)
			return abort(fmt.Errorf("after %d hops in %s: %w", turn.Hops, conv.State, domain.ErrHopLimitExceeded))
		}

		probe := append(domain.CloneMessages(conv.History), domain.UserMessage(Instruction(conv.State)))
		turn.Hops++
		resp, err := s.gw.Chat(ctx, probe)
		if err != nil {
			return abort(fmt.Errorf("router step %s: %w", conv.State, err))
		}

		if next, ok := conversation.ParseState(resp); ok {
			s.transition(conv, &left, &turn, next)
			continue
		}

		head, payload := splitAction(resp)
		if action, ok := conversation.ParseAction(head); ok {
			s.transition(conv, &left, &turn, action)
			call := ActionCall{Action: action, Params: ParsePayload(payload)}
			if err := s.actions.Handle(ctx, action, resp, call.Params); err != nil {
				return abort(fmt.Errorf("action %s: %w", action, err))
			}
			turn.Actions = append(turn.Actions, call)
			continue
		}

		conv.History = append(conv.History, domain.AssistantMessage(resp))
		if conv.State == conversation.Exit {
			conv.Reset()
		} else if prev, ok := left.pop(); ok {
			conv.State = prev
		}

		turn.Reply = resp
		turn.State = conv.State
		metrics.RouterHops.Observe(float64(turn.Hops))
		l.Debug("Router turn complete",
			zap.Int("hops", turn.Hops),
			zap.Stringers("path", turn.Path),
			zap.Stringer("state", conv.State),
		)
		return turn, nil
	}
}

func (s *Service) transition(conv *conversation.Conversation, left *stack, turn *Turn, next conversation.State) {
	metrics.RouterTransitionsTotal.WithLabelValues(conv.State.String(), next.String()).Inc()
	left.push(conv.State)
	conv.State = next
	turn.Path = append(turn.Path, next)
}
