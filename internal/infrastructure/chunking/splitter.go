package chunking

import (
	"strings"

	"github.com/arcadehub/rules-chatbot/internal/core/domain"
)

// Splitter cuts each document page into fixed-size windows with a
// character overlap between neighbors. Splitting never crosses a page
// boundary and preserves document order, so downstream chunk ids are
// stable across runs.
type Splitter struct {
	ChunkSize int
	Overlap   int
}

func NewSplitter(chunkSize, overlap int) *Splitter {
	if chunkSize <= 0 {
		chunkSize = 800
	}
	if overlap < 0 {
		overlap = 0
	}
	if overlap >= chunkSize {
		overlap = chunkSize / 10
	}
	return &Splitter{
		ChunkSize: chunkSize,
		Overlap:   overlap,
	}
}

func (s *Splitter) Split(docs []domain.Document) []domain.Chunk {
	out := make([]domain.Chunk, 0, len(docs))
	for _, doc := range docs {
		for _, text := range s.splitText(doc.Text) {
			out = append(out, domain.Chunk{
				Source: doc.Source,
				Page:   doc.Page,
				Text:   text,
			})
		}
	}
	return out
}

// splitText windows are measured in characters, not tokens.
func (s *Splitter) splitText(text string) []string {
	runes := []rune(text)
	if len(runes) == 0 {
		return nil
	}

	step := s.ChunkSize - s.Overlap
	if step <= 0 {
		step = s.ChunkSize
	}

	out := make([]string, 0, len(runes)/step+1)
	for start := 0; start < len(runes); start += step {
		end := start + s.ChunkSize
		if end > len(runes) {
			end = len(runes)
		}
		chunk := strings.TrimSpace(string(runes[start:end]))
		if chunk != "" {
			out = append(out, chunk)
		}
		if end == len(runes) {
			break
		}
	}
	return out
}
