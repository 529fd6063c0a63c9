package router

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/kailas-cloud/chatdesk/internal/domain/conversation"
)

// ActionCall records an action triggered during a turn.
type ActionCall struct {
	Action conversation.State `json:"action"`
	Params map[string]string  `json:"params,omitempty"`
}

// LogActionHandler logs actions and performs no side effect.
type LogActionHandler struct {
	logger *zap.Logger
}

// NewLogActionHandler creates the default action handler.
func NewLogActionHandler(l *zap.Logger) *LogActionHandler {
	if l == nil {
		l = zap.NewNop()
	}
	return &LogActionHandler{logger: l}
}

// Handle implements ActionHandler.
func (h *LogActionHandler) Handle(_ context.Context, action conversation.State, raw string, params map[string]string) error {
	fields := []zap.Field{zap.Stringer("action", action), zap.Int("raw_len", len(raw))}
	for k, v := range params {
		fields = append(fields, zap.String("param_"+k, v))
	}
	h.logger.Info("Perform action", fields...)
	return nil
}

// splitAction returns the trimmed text before the first "|" and the payload after it.
func splitAction(raw string) (head, payload string) {
	head, payload, _ = strings.Cut(raw, "|")
	return strings.TrimSpace(head), strings.TrimSpace(payload)
}

// ParsePayload reads "key:value, key:value" pairs. A comma that is not
// followed by a new "key:" stays inside the current value.
func ParsePayload(payload string) map[string]string {
	out := map[string]string{}
	var key string
	for _, part := range strings.Split(payload, ",") {
		if k, v, ok := strings.Cut(part, ":"); ok && isKey(strings.TrimSpace(k)) {
			key = strings.TrimSpace(k)
			out[key] = strings.TrimSpace(v)
			continue
		}
		if key != "" {
			out[key] += "," + strings.TrimRight(part, " ")
		}
	}
	return out
}

func isKey(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if !(r == '_' || r >= 'a' && r <= 'z' || r >= 'A' && r <= 'Z' || r >= '0' && r <= '9') {
			return false
		}
	}
	return true
}
