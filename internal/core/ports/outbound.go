package ports

import (
	"context"

	"github.com/arcadehub/rules-chatbot/internal/core/domain"
)

// DocumentLoader reads every supported file under a content root into
// page-level documents. One unreadable file is skipped, not fatal; a
// missing root fails with the IO kind.
type DocumentLoader interface {
	Load(ctx context.Context, root string) ([]domain.Document, error)
}

// Chunker splits documents into bounded, overlapping chunks without
// crossing page boundaries, preserving document order.
type Chunker interface {
	Split(docs []domain.Document) []domain.Chunk
}

// Embedder builds vectors for chunk texts and query text. The same
// embedder instance must serve ingestion and query time, or retrieval
// quality silently degrades.
type Embedder interface {
	Embed(ctx context.Context, texts []string) ([][]float32, error)
	EmbedQuery(ctx context.Context, text string) ([]float32, error)
}

// VectorStore is the named-collection nearest-neighbor index, keyed by
// chunk id.
type VectorStore interface {
	Upsert(ctx context.Context, collection string, chunks []domain.Chunk, vectors [][]float32) error
	ExistingIDs(ctx context.Context, collection string) (map[string]struct{}, error)
	Search(ctx context.Context, collection string, queryVector []float32, k int) ([]domain.RetrievedChunk, error)
	DeleteCollection(ctx context.Context, collection string) error
}

// AnswerGenerator invokes the external chat-completion service.
type AnswerGenerator interface {
	Generate(ctx context.Context, prompt domain.Prompt) (string, error)
}

// IngestRegistry persists per-source ingestion outcomes.
type IngestRegistry interface {
	RecordSource(ctx context.Context, rec domain.SourceRecord) error
	ListSources(ctx context.Context) ([]domain.SourceRecord, error)
	Clear(ctx context.Context) error
}

// MessageQueue publishes/consumes reindex requests.
type MessageQueue interface {
	PublishReindexRequested(ctx context.Context, reason string) error
	SubscribeReindexRequested(ctx context.Context, handler func(context.Context, string) error) error
}
