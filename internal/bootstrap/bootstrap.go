package bootstrap

import (
	"context"
	"fmt"
	"time"

	"github.com/arcadehub/rules-chatbot/internal/config"
	"github.com/arcadehub/rules-chatbot/internal/core/ports"
	"github.com/arcadehub/rules-chatbot/internal/core/usecase"
	"github.com/arcadehub/rules-chatbot/internal/infrastructure/chunking"
	"github.com/arcadehub/rules-chatbot/internal/infrastructure/llm/llamaapi"
	"github.com/arcadehub/rules-chatbot/internal/infrastructure/llm/ollama"
	"github.com/arcadehub/rules-chatbot/internal/infrastructure/loader"
	"github.com/arcadehub/rules-chatbot/internal/infrastructure/queue/nats"
	"github.com/arcadehub/rules-chatbot/internal/infrastructure/repository/postgres"
	"github.com/arcadehub/rules-chatbot/internal/infrastructure/resilience"
	"github.com/arcadehub/rules-chatbot/internal/infrastructure/vector/qdrant"
)

type App struct {
	Config config.Config

	Queue    ports.MessageQueue
	Registry ports.IngestRegistry
	Ingestor ports.Ingestor
	QueryUC  ports.QueryService

	closeFn func()
}

// New wires the full dependency graph. The embedder instance is shared
// between the ingest pipeline and the query engine so stored vectors
// and query vectors come from the same model.
func New(ctx context.Context, cfg config.Config) (*App, error) {
	db, err := postgres.OpenDB(cfg.PostgresDSN)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	registry := postgres.NewIngestRepository(db)
	if err := registry.EnsureSchema(ctx); err != nil {
		return nil, fmt.Errorf("ensure schema: %w", err)
	}

	queue, err := nats.New(cfg.NATSURL, cfg.NATSSubject)
	if err != nil {
		return nil, fmt.Errorf("init message queue: %w", err)
	}

	rules, err := config.LoadRouting(cfg.RoutingMapPath)
	if err != nil {
		return nil, fmt.Errorf("load routing map: %w", err)
	}

	executor := resilience.NewExecutor(resilience.Config{
		RetryMaxAttempts:    cfg.RetryMaxAttempts,
		RetryInitialBackoff: time.Duration(cfg.RetryInitialBackoffSecs) * time.Second,
		RetryMaxBackoff:     time.Duration(cfg.RetryMaxBackoffSecs) * time.Second,
		BreakerEnabled:      true,
	})

	embedder := ollama.NewEmbedder(cfg.OllamaURL, cfg.OllamaEmbedModel)
	generator := llamaapi.New(llamaapi.Options{
		BaseURL:     cfg.LlamaAPIURL,
		APIKey:      cfg.LlamaAPIKey,
		Model:       cfg.LlamaGenModel,
		MaxTokens:   cfg.LlamaMaxTokens,
		Temperature: cfg.LlamaTemperature,
		Timeout:     time.Duration(cfg.GenTimeoutSeconds) * time.Second,
		Executor:    executor,
	})

	vectorDB := qdrant.New(cfg.QdrantURL)
	chunker := chunking.NewSplitter(cfg.ChunkSize, cfg.ChunkOverlap)
	docLoader := loader.New()

	ingestor := usecase.NewIngestPipeline(docLoader, chunker, embedder, vectorDB, registry, cfg.ContentPath, rules)
	queryUC := usecase.NewQueryEngine(usecase.NewClassifier(), embedder, vectorDB, generator, cfg.RAGTopK)

	return &App{
		Config: cfg,

		Queue:    queue,
		Registry: registry,
		Ingestor: ingestor,
		QueryUC:  queryUC,

		closeFn: func() {
			queue.Close()
			_ = db.Close()
		},
	}, nil
}

func (a *App) Close() {
	if a.closeFn != nil {
		a.closeFn()
	}
}
