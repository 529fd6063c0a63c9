package docembed

import (
	"bytes"
	"context"
	"errors"
	"io"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/kailas-cloud/chatdesk/internal/domain"
)

// --- Mocks ---

type mockEmbedder struct {
	texts []string
	err   error
}

func (m *mockEmbedder) Model() string { return "test-model" }

func (m *mockEmbedder) Embeddings(_ context.Context, texts []string) (domain.EmbeddingBatch, error) {
	m.texts = texts
	if m.err != nil {
		return domain.EmbeddingBatch{}, m.err
	}
	out := make([]domain.Embedding, len(texts))
	for i, t := range texts {
		out[i] = domain.Embedding{ID: i, Vector: []float32{float32(i)}, Text: t}
	}
	return domain.EmbeddingBatch{Embeddings: out, TotalTokens: 10 * len(texts)}, nil
}

type mockExtractor struct {
	pages []string
	err   error
}

func (m mockExtractor) Pages(_ io.ReaderAt, _ int64) ([]string, error) { return m.pages, m.err }

// --- Tests ---

func TestChunk(t *testing.T) {
	tests := []struct {
		name  string
		pages []string
		size  int
		want  []int
	}{
		{"short page", []string{"abc"}, 1000, []int{3}},
		{"exact multiple", []string{strings.Repeat("a", 2000)}, 1000, []int{1000, 1000}},
		{"remainder", []string{strings.Repeat("a", 2500)}, 1000, []int{1000, 1000, 500}},
		{"never spans pages", []string{strings.Repeat("a", 600), strings.Repeat("b", 600)}, 1000, []int{600, 600}},
		{"empty page skipped", []string{"", "xy"}, 1000, []int{2}},
		{"default size", []string{strings.Repeat("a", 1001)}, 0, []int{1000, 1}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := Chunk(tc.pages, tc.size)
			if len(got) != len(tc.want) {
				t.Fatalf("chunks = %d, want %d", len(got), len(tc.want))
			}
			for i, n := range tc.want {
				if utf8.RuneCountInString(got[i]) != n {
					t.Errorf("chunk %d has %d runes, want %d", i, utf8.RuneCountInString(got[i]), n)
				}
			}
		})
	}
}

func TestChunk_CountsRunesNotBytes(t *testing.T) {
	page := strings.Repeat("가", 1500)
	got := Chunk([]string{page}, 1000)
	if len(got) != 2 || !utf8.ValidString(got[0]) || !utf8.ValidString(got[1]) {
		t.Fatalf("multi-byte text split badly: %d chunks", len(got))
	}
	if utf8.RuneCountInString(got[1]) != 500 {
		t.Errorf("second chunk = %d runes", utf8.RuneCountInString(got[1]))
	}
}

func TestEmbedPDF(t *testing.T) {
	emb := &mockEmbedder{}
	ext := mockExtractor{pages: []string{strings.Repeat("p", 1200), "second page"}}
	svc := New(emb, nil, WithExtractor(ext))

	res, err := svc.EmbedPDF(context.Background(), bytes.NewReader(nil), 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Chunks != 3 || len(emb.texts) != 3 {
		t.Fatalf("chunks = %d, embedded = %d", res.Chunks, len(emb.texts))
	}
	if emb.texts[2] != "second page" {
		t.Errorf("last chunk = %q", emb.texts[2])
	}
	for i, e := range res.Embeddings {
		if e.ID != i || e.Text != emb.texts[i] {
			t.Errorf("embedding %d = %+v", i, e)
		}
	}
	if res.TotalTokens != 30 {
		t.Errorf("tokens = %d", res.TotalTokens)
	}
}

func TestEmbedPDF_ExtractError(t *testing.T) {
	svc := New(&mockEmbedder{}, nil, WithExtractor(mockExtractor{err: domain.ErrInvalidInput}))
	_, err := svc.EmbedPDF(context.Background(), bytes.NewReader(nil), 0)
	if !errors.Is(err, domain.ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
}

func TestEmbedPDF_NotAPDF(t *testing.T) {
	data := []byte("plain text, not a pdf")
	_, err := New(&mockEmbedder{}, nil).EmbedPDF(context.Background(), bytes.NewReader(data), int64(len(data)))
	if !errors.Is(err, domain.ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
}

func TestEmbedText(t *testing.T) {
	emb := &mockEmbedder{}
	res, err := New(emb, nil, WithChunkSize(4)).EmbedText(context.Background(), "abcdefghij")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Chunks != 3 || emb.texts[0] != "abcd" || emb.texts[2] != "ij" {
		t.Errorf("texts = %v", emb.texts)
	}
}

func TestEmbed_EmptyDocument(t *testing.T) {
	for _, in := range []string{"", "   \n\t"} {
		emb := &mockEmbedder{}
		_, err := New(emb, nil).EmbedText(context.Background(), in)
		if !errors.Is(err, domain.ErrEmptyDocument) {
			t.Errorf("EmbedText(%q) error = %v, want ErrEmptyDocument", in, err)
		}
		if emb.texts != nil {
			t.Error("embedder should not be called")
		}
	}
}

func TestEmbed_GatewayError(t *testing.T) {
	emb := &mockEmbedder{err: domain.ErrGatewayError}
	_, err := New(emb, nil).EmbedText(context.Background(), "text")
	if !errors.Is(err, domain.ErrGatewayError) {
		t.Fatalf("expected ErrGatewayError, got %v", err)
	}
}
