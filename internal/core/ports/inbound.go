package ports

import (
	"context"

	"github.com/arcadehub/rules-chatbot/internal/core/domain"
)

// QueryService is the inbound contract for answering a question. It
// always resolves to a well-formed Answer; service failures become
// sentinel-sourced fallbacks rather than raw errors.
type QueryService interface {
	Answer(ctx context.Context, question string) (*domain.Answer, error)
}

// Ingestor is the inbound contract for the batch ingestion pipeline.
type Ingestor interface {
	Run(ctx context.Context, resetFirst bool) (*domain.IngestReport, error)
}
