package chatdesk

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

// --- Mocks ---

type scriptedGateway struct {
	replies []string
	err     error
	calls   int
}

func (g *scriptedGateway) Chat(context.Context, []Message) (string, error) {
	g.calls++
	if g.err != nil {
		return "", g.err
	}
	if g.calls > len(g.replies) {
		return g.replies[len(g.replies)-1], nil
	}
	return g.replies[g.calls-1], nil
}

type embeddingGateway struct {
	scriptedGateway
}

func (g *embeddingGateway) Embeddings(_ context.Context, inputs []string) (EmbeddingBatch, error) {
	out := EmbeddingBatch{TotalTokens: len(inputs)}
	for i, in := range inputs {
		out.Embeddings = append(out.Embeddings, Embedding{ID: i, Vector: []float32{1}, Text: in})
	}
	return out, nil
}

func (g *embeddingGateway) Model() string { return "fake" }

// --- Tests ---

func TestNew_RequiresGateway(t *testing.T) {
	if _, err := New(); err == nil {
		t.Fatal("expected error when no gateway is configured")
	}
}

func TestNew_VideoSearchRequiresKakao(t *testing.T) {
	_, err := New(WithGateway(&scriptedGateway{replies: []string{"x"}}), WithVideoSearch())
	if err == nil {
		t.Fatal("expected error for video search without kakao")
	}
}

func TestNew_ProviderRejectsHalfCredentials(t *testing.T) {
	_, err := New(WithGateway(&scriptedGateway{replies: []string{"x"}}), WithGoogle("key", ""))
	if err == nil {
		t.Fatal("expected error for google without cx")
	}
}

func TestDiscuss_ReturnsTurn(t *testing.T) {
	gw := &scriptedGateway{replies: []string{"QUESTION", "What do you want to know?"}}
	c, err := New(WithGateway(gw))
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	conv := c.NewConversation()
	turn, err := c.Discuss(context.Background(), conv, "I have a question")
	if err != nil {
		t.Fatalf("Discuss: %v", err)
	}
	if turn.Reply != "What do you want to know?" {
		t.Errorf("reply = %q", turn.Reply)
	}
	if turn.Hops != 2 {
		t.Errorf("hops = %d, want 2", turn.Hops)
	}
	if got := len(conv.History); got != 3 {
		t.Errorf("history length = %d, want 3", got)
	}
}

func TestDiscuss_WrapsSentinel(t *testing.T) {
	c, err := New(WithGateway(&scriptedGateway{err: ErrRateLimited}))
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	_, err = c.Discuss(context.Background(), c.NewConversation(), "hi")
	if !errors.Is(err, ErrRateLimited) {
		t.Fatalf("expected ErrRateLimited, got %v", err)
	}
}

func TestAskSearch_NotConfigured(t *testing.T) {
	c, err := New(WithGateway(&scriptedGateway{replies: []string{"x"}}))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if _, err := c.AskSearch(context.Background(), "q", nil); !errors.Is(err, ErrNotConfigured) {
		t.Fatalf("expected ErrNotConfigured, got %v", err)
	}
}

func TestAskSearch_WithoutSearch(t *testing.T) {
	gw := &scriptedGateway{replies: []string{"FALSE", "plain answer"}}
	c, err := New(WithGateway(gw), WithKakao("key"))
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	ans, err := c.AskSearch(context.Background(), "hello", nil)
	if err != nil {
		t.Fatalf("AskSearch: %v", err)
	}
	if ans.Searched {
		t.Error("expected no search")
	}
	if ans.Grounding != "null" {
		t.Errorf("grounding = %q, want null", ans.Grounding)
	}
	if ans.Reply != "plain answer" {
		t.Errorf("reply = %q", ans.Reply)
	}
}

func TestAskVideo_NoURLAnswersWithoutTranscript(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		t.Error("no request expected without a video id")
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	gw := &scriptedGateway{replies: []string{"no video given"}}
	c, err := New(WithGateway(gw), WithHTTPClient(srv.Client()))
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	ans, err := c.AskVideo(context.Background(), "", "what is this?", nil)
	if err != nil {
		t.Fatalf("AskVideo: %v", err)
	}
	if ans.TranscriptAvailable {
		t.Error("expected no transcript")
	}
	if ans.Reply != "no video given" {
		t.Errorf("reply = %q", ans.Reply)
	}
}

func TestEmbed_RequiresEmbeddingGateway(t *testing.T) {
	c, err := New(WithGateway(&scriptedGateway{replies: []string{"x"}}))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if _, err := c.EmbedText(context.Background(), "text"); !errors.Is(err, ErrNotConfigured) {
		t.Fatalf("expected ErrNotConfigured, got %v", err)
	}
}

func TestEmbedText(t *testing.T) {
	c, err := New(WithGateway(&embeddingGateway{}))
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	res, err := c.EmbedText(context.Background(), strings.Repeat("a", 1500))
	if err != nil {
		t.Fatalf("EmbedText: %v", err)
	}
	if res.Chunks != 2 || len(res.Embeddings) != 2 {
		t.Fatalf("chunks = %d, embeddings = %d, want 2 and 2", res.Chunks, len(res.Embeddings))
	}

	if _, err := c.EmbedText(context.Background(), "   "); !errors.Is(err, ErrEmptyDocument) {
		t.Fatalf("expected ErrEmptyDocument, got %v", err)
	}
}

func TestEmbedText_BudgetRejects(t *testing.T) {
	c, err := New(WithGateway(&embeddingGateway{}), WithEmbeddingBudget(2, 0, true))
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	if _, err := c.EmbedText(context.Background(), strings.Repeat("b", 1500)); err != nil {
		t.Fatalf("first EmbedText: %v", err)
	}
	if _, err := c.EmbedText(context.Background(), "again"); !errors.Is(err, ErrQuotaExceeded) {
		t.Fatalf("expected ErrQuotaExceeded, got %v", err)
	}

	report := c.Usage(context.Background(), PeriodDay)
	if report.Budget.Used != 2 || !report.Budget.Exhausted {
		t.Errorf("budget = %+v, want 2 used and exhausted", report.Budget)
	}
}

func TestUsage_WithoutEmbedder(t *testing.T) {
	c, err := New(WithGateway(&scriptedGateway{replies: []string{"x"}}))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	report := c.Usage(context.Background(), PeriodMonth)
	if report.Period != PeriodMonth || report.Budget.Remaining != -1 {
		t.Errorf("report = %+v", report)
	}
}

func TestObserver_MetricsAndLogs(t *testing.T) {
	reg := prometheus.NewRegistry()
	var logs bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&logs, &slog.HandlerOptions{Level: slog.LevelDebug}))

	gw := &scriptedGateway{replies: []string{"done"}}
	c, err := New(WithGateway(gw), WithPrometheus(reg), WithLogger(logger))
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	conv := c.NewConversation()
	if _, err := c.Discuss(context.Background(), conv, "hi"); err != nil {
		t.Fatalf("Discuss: %v", err)
	}
	gw.err = ErrGatewayError
	_, _ = c.Discuss(context.Background(), conv, "again")

	if got := testutil.ToFloat64(c.obs.metrics.operations.WithLabelValues("discuss", "ok")); got != 1 {
		t.Errorf("ok count = %v, want 1", got)
	}
	if got := testutil.ToFloat64(c.obs.metrics.operations.WithLabelValues("discuss", "error")); got != 1 {
		t.Errorf("error count = %v, want 1", got)
	}
	if !strings.Contains(logs.String(), "operation failed") {
		t.Errorf("expected failure log, got %q", logs.String())
	}
}

func TestObserver_ReusesRegisteredMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	gw := &scriptedGateway{replies: []string{"x"}}

	c1, err := New(WithGateway(gw), WithPrometheus(reg))
	if err != nil {
		t.Fatalf("first New: %v", err)
	}
	c2, err := New(WithGateway(gw), WithPrometheus(reg))
	if err != nil {
		t.Fatalf("second New: %v", err)
	}
	if c1.obs.metrics.operations != c2.obs.metrics.operations {
		t.Error("expected the second client to reuse the registered counter")
	}
}
