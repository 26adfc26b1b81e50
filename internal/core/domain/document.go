package domain

import "fmt"

// Collection names are disjoint index namespaces. A chunk is routed to
// exactly one of them; they are never merged at query time.
const (
	CollectionGameRules    = "game_rules"
	CollectionPlatformDocs = "platform_docs"
	CollectionFAQs         = "faqs"
)

// Document is one page of a raw source file. Source identifies the
// origin file relative to the content root, Page is the page number
// within it. Documents are immutable once loaded.
type Document struct {
	Source string `json:"source"`
	Page   int    `json:"page"`
	Text   string `json:"text"`
}

// Chunk is a bounded-length fragment of a Document page, the unit of
// indexing and retrieval. ID is assigned by AssignChunkIDs and is a
// pure function of (Source, Page, Index).
type Chunk struct {
	ID     string `json:"id"`
	Source string `json:"source"`
	Page   int    `json:"page"`
	Index  int    `json:"chunk_index"`
	Text   string `json:"text"`
}

// AssignChunkIDs walks chunks in splitter order, resetting the
// per-page counter whenever (source, page) changes, and stamps each
// chunk with "{source}:{page}:{index}". Re-running over identical
// splitter output reproduces identical ids, which is what makes index
// upserts idempotent.
func AssignChunkIDs(chunks []Chunk) {
	lastPageKey := ""
	index := 0
	for i := range chunks {
		pageKey := fmt.Sprintf("%s:%d", chunks[i].Source, chunks[i].Page)
		if pageKey == lastPageKey {
			index++
		} else {
			index = 0
		}
		chunks[i].Index = index
		chunks[i].ID = fmt.Sprintf("%s:%d", pageKey, index)
		lastPageKey = pageKey
	}
}

// RoutingRule maps a top-level content-root directory to the vector
// collection its chunks are indexed into. Routing is driven by this
// explicit mapping, never inferred from free-form path text.
type RoutingRule struct {
	Root       string `yaml:"root"`
	Collection string `yaml:"collection"`
}

// SourceRecord is the per-file outcome of an ingestion run, kept in
// the ingest registry for operators.
type SourceRecord struct {
	Source     string `json:"source"`
	Collection string `json:"collection"`
	Pages      int    `json:"pages"`
	Chunks     int    `json:"chunks"`
	Status     string `json:"status"`
	Error      string `json:"error,omitempty"`
}

const (
	IngestStatusIndexed = "indexed"
	IngestStatusFailed  = "failed"
)

// IngestReport summarizes one pipeline run.
type IngestReport struct {
	DocumentsLoaded int `json:"documents_loaded"`
	ChunksTotal     int `json:"chunks_total"`
	ChunksNew       int `json:"chunks_new"`
	ChunksDropped   int `json:"chunks_dropped"`
}
