package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/arcadehub/rules-chatbot/internal/core/domain"
	"github.com/arcadehub/rules-chatbot/internal/core/ports"
)

const defaultTopK = 5

// QueryEngine drives one question through classify → retrieve → prompt
// → generate → format. Every path resolves to a well-formed Answer:
// service failures are logged and converted to a sentinel-sourced
// fallback, never surfaced raw to the inbound boundary. The only
// errors returned are request-scoped ones the caller must see (empty
// input, context cancellation).
type QueryEngine struct {
	classifier *Classifier
	embedder   ports.Embedder
	vectorDB   ports.VectorStore
	generator  ports.AnswerGenerator
	topK       int
}

func NewQueryEngine(
	classifier *Classifier,
	embedder ports.Embedder,
	vectorDB ports.VectorStore,
	generator ports.AnswerGenerator,
	topK int,
) *QueryEngine {
	if topK <= 0 {
		topK = defaultTopK
	}
	return &QueryEngine{
		classifier: classifier,
		embedder:   embedder,
		vectorDB:   vectorDB,
		generator:  generator,
		topK:       topK,
	}
}

func (e *QueryEngine) Answer(ctx context.Context, question string) (*domain.Answer, error) {
	question = strings.TrimSpace(question)
	if question == "" {
		return nil, domain.WrapError(domain.ErrInvalidInput, "answer question", fmt.Errorf("empty question"))
	}

	class := e.classifier.Classify(question)
	if class == domain.ClassConversational {
		return &domain.Answer{
			Text:    conversationalReply(question),
			Sources: []string{domain.SourceConversational},
		}, nil
	}

	collection := class.Collection()
	chunks, err := e.retrieve(ctx, question, collection)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		slog.Error("retrieval_failed", "collection", collection, "error", err)
		return fallbackAnswer(), nil
	}

	// Empty retrieval is a valid outcome, not an error: answer with a
	// canned reply instead of calling the generator with no context.
	if len(chunks) == 0 {
		return &domain.Answer{
			Text:    conversationalReply(question),
			Sources: []string{domain.SourceNoResults},
		}, nil
	}

	prompt := buildPrompt(question, class, chunks)
	text, err := e.generator.Generate(ctx, prompt)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		slog.Error("generation_failed",
			"collection", collection,
			"timeout", domain.IsKind(err, domain.ErrTimeout),
			"error", err,
		)
		return fallbackAnswer(), nil
	}

	sources := make([]string, 0, len(chunks))
	for _, chunk := range chunks {
		sources = append(sources, chunk.ChunkID)
	}
	return &domain.Answer{Text: text, Sources: sources}, nil
}

func (e *QueryEngine) retrieve(ctx context.Context, question, collection string) ([]domain.RetrievedChunk, error) {
	queryVector, err := e.embedder.EmbedQuery(ctx, question)
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}

	chunks, err := e.vectorDB.Search(ctx, collection, queryVector, e.topK)
	if err != nil {
		return nil, domain.WrapError(domain.ErrIndex, "search collection "+collection, err)
	}
	return chunks, nil
}

func fallbackAnswer() *domain.Answer {
	return &domain.Answer{
		Text:    fallbackReply,
		Sources: []string{domain.SourceSystemError},
	}
}
