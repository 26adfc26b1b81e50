package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"

	"github.com/arcadehub/rules-chatbot/internal/core/domain"
	"github.com/arcadehub/rules-chatbot/internal/core/ports"
)

// IngestPipeline turns raw paginated documents into content-addressed,
// deduplicated chunks routed into their collections. Runs are
// idempotent: chunk ids are deterministic, and only ids absent from
// the index are written.
type IngestPipeline struct {
	loader   ports.DocumentLoader
	chunker  ports.Chunker
	embedder ports.Embedder
	vectorDB ports.VectorStore
	registry ports.IngestRegistry

	contentRoot string
	rules       []domain.RoutingRule
}

func NewIngestPipeline(
	loader ports.DocumentLoader,
	chunker ports.Chunker,
	embedder ports.Embedder,
	vectorDB ports.VectorStore,
	registry ports.IngestRegistry,
	contentRoot string,
	rules []domain.RoutingRule,
) *IngestPipeline {
	return &IngestPipeline{
		loader:      loader,
		chunker:     chunker,
		embedder:    embedder,
		vectorDB:    vectorDB,
		registry:    registry,
		contentRoot: contentRoot,
		rules:       rules,
	}
}

// Run executes one batch: load, split, assign ids, route, diff against
// the index, embed and upsert only new chunks. A failing collection is
// fatal to its own batch only; sibling collections still proceed, and
// the per-collection failures come back joined.
func (p *IngestPipeline) Run(ctx context.Context, resetFirst bool) (*domain.IngestReport, error) {
	if resetFirst {
		if err := p.Reset(ctx); err != nil {
			slog.Warn("reset_incomplete", "error", err)
		}
	}

	docs, err := p.loader.Load(ctx, p.contentRoot)
	if err != nil {
		return nil, err
	}
	if len(docs) == 0 {
		return nil, domain.WrapError(domain.ErrIO, "load documents", fmt.Errorf("no documents under %s", p.contentRoot))
	}

	chunks := p.chunker.Split(docs)
	domain.AssignChunkIDs(chunks)

	routed, dropped := routeChunks(chunks, p.rules)
	report := &domain.IngestReport{
		DocumentsLoaded: len(docs),
		ChunksTotal:     len(chunks),
		ChunksDropped:   dropped,
	}

	collections := make([]string, 0, len(routed))
	for name := range routed {
		collections = append(collections, name)
	}
	sort.Strings(collections)

	var failures []error
	for _, collection := range collections {
		added, err := p.upsertCollection(ctx, collection, routed[collection])
		if err != nil {
			failures = append(failures, fmt.Errorf("collection %s: %w", collection, err))
			continue
		}
		report.ChunksNew += added
	}

	slog.Info("ingest_run_finished",
		"documents", report.DocumentsLoaded,
		"chunks", report.ChunksTotal,
		"new", report.ChunksNew,
		"dropped", report.ChunksDropped,
		"failed_collections", len(failures),
	)
	return report, errors.Join(failures...)
}

// upsertCollection writes only the chunks whose ids are not already in
// the index, preserving splitter order, and records per-source
// outcomes in the registry.
func (p *IngestPipeline) upsertCollection(ctx context.Context, collection string, chunks []domain.Chunk) (int, error) {
	existing, err := p.vectorDB.ExistingIDs(ctx, collection)
	if err != nil {
		p.recordSources(ctx, collection, chunks, err)
		return 0, domain.WrapError(domain.ErrIndex, "fetch existing ids", err)
	}

	fresh := make([]domain.Chunk, 0, len(chunks))
	for _, chunk := range chunks {
		if _, ok := existing[chunk.ID]; !ok {
			fresh = append(fresh, chunk)
		}
	}
	if len(fresh) == 0 {
		slog.Info("no_new_chunks", "collection", collection)
		p.recordSources(ctx, collection, chunks, nil)
		return 0, nil
	}

	texts := make([]string, 0, len(fresh))
	for _, chunk := range fresh {
		texts = append(texts, chunk.Text)
	}
	vectors, err := p.embedder.Embed(ctx, texts)
	if err != nil {
		p.recordSources(ctx, collection, chunks, err)
		return 0, fmt.Errorf("embed chunks: %w", err)
	}
	if len(vectors) != len(fresh) {
		err := fmt.Errorf("vectors/chunks mismatch: %d/%d", len(vectors), len(fresh))
		p.recordSources(ctx, collection, chunks, err)
		return 0, domain.WrapError(domain.ErrInvalidInput, "embed chunks", err)
	}

	if err := p.vectorDB.Upsert(ctx, collection, fresh, vectors); err != nil {
		p.recordSources(ctx, collection, chunks, err)
		return 0, domain.WrapError(domain.ErrIndex, "upsert chunks", err)
	}

	slog.Info("chunks_indexed", "collection", collection, "new", len(fresh))
	p.recordSources(ctx, collection, chunks, nil)
	return len(fresh), nil
}

// Reset destructively wipes the persisted index: every routed
// collection and the registry. Per-item failures are collected and
// reported together instead of aborting the wipe.
func (p *IngestPipeline) Reset(ctx context.Context) error {
	var failures []error
	for _, collection := range p.targetCollections() {
		if err := p.vectorDB.DeleteCollection(ctx, collection); err != nil {
			failures = append(failures, fmt.Errorf("delete collection %s: %w", collection, err))
		}
	}
	if p.registry != nil {
		if err := p.registry.Clear(ctx); err != nil {
			failures = append(failures, fmt.Errorf("clear registry: %w", err))
		}
	}
	return errors.Join(failures...)
}

func (p *IngestPipeline) targetCollections() []string {
	seen := make(map[string]struct{}, len(p.rules))
	out := make([]string, 0, len(p.rules))
	for _, rule := range p.rules {
		if _, ok := seen[rule.Collection]; ok {
			continue
		}
		seen[rule.Collection] = struct{}{}
		out = append(out, rule.Collection)
	}
	sort.Strings(out)
	return out
}

func (p *IngestPipeline) recordSources(ctx context.Context, collection string, chunks []domain.Chunk, runErr error) {
	if p.registry == nil {
		return
	}
	for _, rec := range summarizeSources(collection, chunks, runErr) {
		if err := p.registry.RecordSource(ctx, rec); err != nil {
			slog.Warn("registry_record_failed", "source", rec.Source, "error", err)
		}
	}
}

// routeChunks partitions chunks by matching the first segment of their
// source path against the configured content-root rules. Chunks that
// match no rule are dropped and logged; that is policy, not an error.
func routeChunks(chunks []domain.Chunk, rules []domain.RoutingRule) (map[string][]domain.Chunk, int) {
	routed := make(map[string][]domain.Chunk)
	dropped := 0
	for _, chunk := range chunks {
		collection, ok := collectionFor(chunk.Source, rules)
		if !ok {
			dropped++
			slog.Warn("chunk_unrouted", "source", chunk.Source, "chunk_id", chunk.ID)
			continue
		}
		routed[collection] = append(routed[collection], chunk)
	}
	return routed, dropped
}

func collectionFor(source string, rules []domain.RoutingRule) (string, bool) {
	root, _, _ := strings.Cut(source, "/")
	for _, rule := range rules {
		if rule.Root == root {
			return rule.Collection, true
		}
	}
	return "", false
}

func summarizeSources(collection string, chunks []domain.Chunk, runErr error) []domain.SourceRecord {
	type sourceStats struct {
		pages  map[int]struct{}
		chunks int
	}
	order := make([]string, 0, 8)
	stats := make(map[string]*sourceStats)
	for _, chunk := range chunks {
		st, ok := stats[chunk.Source]
		if !ok {
			st = &sourceStats{pages: make(map[int]struct{})}
			stats[chunk.Source] = st
			order = append(order, chunk.Source)
		}
		st.pages[chunk.Page] = struct{}{}
		st.chunks++
	}

	out := make([]domain.SourceRecord, 0, len(order))
	for _, source := range order {
		rec := domain.SourceRecord{
			Source:     source,
			Collection: collection,
			Pages:      len(stats[source].pages),
			Chunks:     stats[source].chunks,
			Status:     domain.IngestStatusIndexed,
		}
		if runErr != nil {
			rec.Status = domain.IngestStatusFailed
			rec.Error = runErr.Error()
		}
		out = append(out, rec)
	}
	return out
}
