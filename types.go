package chatdesk

import (
	"context"

	"github.com/kailas-cloud/chatdesk/internal/domain"
	"github.com/kailas-cloud/chatdesk/internal/domain/conversation"
	domusage "github.com/kailas-cloud/chatdesk/internal/domain/usage"
	routeruc "github.com/kailas-cloud/chatdesk/internal/usecase/router"
)

// Message is one role-tagged history entry.
type Message = domain.Message

// Message roles.
const (
	RoleSystem    = domain.RoleSystem
	RoleUser      = domain.RoleUser
	RoleAssistant = domain.RoleAssistant
)

// Conversation is the state of one routed conversation. It is not safe for
// concurrent use.
type Conversation = conversation.Conversation

// State is a conversation state such as START or WRITE_EMAIL.
type State = conversation.State

// Turn is the outcome of one Discuss call.
type Turn = routeruc.Turn

// Embedding is one embedded chunk.
type Embedding = domain.Embedding

// EmbeddingBatch is the result of one embeddings call.
type EmbeddingBatch = domain.EmbeddingBatch

// Gateway is a chat model backend.
type Gateway interface {
	Chat(ctx context.Context, messages []Message) (string, error)
}

// Embedder is an embedding model backend.
type Embedder interface {
	Embeddings(ctx context.Context, inputs []string) (EmbeddingBatch, error)
	Model() string
}

// SearchAnswer is the result of AskSearch.
type SearchAnswer struct {
	Reply    string
	Searched bool
	// Grounding is the JSON handed to the model, or "null" when no search ran.
	Grounding string
}

// VideoAnswer is the result of AskVideo.
type VideoAnswer struct {
	Reply               string
	VideoID             string
	TranscriptAvailable bool
}

// Embeddings is the result of EmbedText and EmbedPDF.
type Embeddings struct {
	Embeddings  []Embedding
	Chunks      int
	TotalTokens int
}

// UsagePeriod selects the budget window of a usage report.
type UsagePeriod = domusage.Period

// Budget windows.
const (
	PeriodDay   = domusage.PeriodDay
	PeriodMonth = domusage.PeriodMonth
)

// UsageReport is the embedding token usage of one window.
type UsageReport = domusage.Report
