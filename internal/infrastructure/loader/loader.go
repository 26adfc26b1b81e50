package loader

import (
	"context"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/ledongthuc/pdf"
	"github.com/xuri/excelize/v2"

	"github.com/arcadehub/rules-chatbot/internal/core/domain"
)

// DirectoryLoader walks a content root and turns every supported file
// into page-level documents. Sources are identified by their
// slash-separated path relative to the root, so routing and chunk ids
// stay stable no matter where the root lives on disk.
//
// Supported formats: .pdf (one document per page), .txt/.md (single
// page 0), .xlsx (one document per sheet, sheet index as page).
type DirectoryLoader struct{}

func New() *DirectoryLoader {
	return &DirectoryLoader{}
}

func (l *DirectoryLoader) Load(ctx context.Context, root string) ([]domain.Document, error) {
	if _, err := os.Stat(root); err != nil {
		return nil, domain.WrapError(domain.ErrIO, "open content root", err)
	}

	var docs []domain.Document
	err := filepath.WalkDir(root, func(path string, entry fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			// One unreadable entry must not abort the batch.
			slog.Warn("skip_unreadable_entry", "path", path, "error", walkErr)
			if entry != nil && entry.IsDir() {
				return fs.SkipDir
			}
			return nil
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		if entry.IsDir() {
			return nil
		}

		rel, err := filepath.Rel(root, path)
		if err != nil {
			return fmt.Errorf("relativize %s: %w", path, err)
		}
		source := filepath.ToSlash(rel)

		pages, err := loadFile(path, source)
		if err != nil {
			slog.Warn("skip_unreadable_source", "source", source, "error", err)
			return nil
		}
		docs = append(docs, pages...)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walk content root: %w", err)
	}

	slog.Info("documents_loaded", "root", root, "documents", len(docs))
	return docs, nil
}

func loadFile(path, source string) ([]domain.Document, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".pdf":
		return loadPDF(path, source)
	case ".txt", ".md":
		return loadText(path, source)
	case ".xlsx":
		return loadWorkbook(path, source)
	default:
		return nil, nil
	}
}

func loadPDF(path, source string) ([]domain.Document, error) {
	f, reader, err := pdf.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open pdf: %w", err)
	}
	defer f.Close()

	docs := make([]domain.Document, 0, reader.NumPage())
	for pageNum := 1; pageNum <= reader.NumPage(); pageNum++ {
		page := reader.Page(pageNum)
		if page.V.IsNull() {
			continue
		}
		text, err := page.GetPlainText(nil)
		if err != nil {
			slog.Warn("skip_unreadable_page", "source", source, "page", pageNum-1, "error", err)
			continue
		}
		if strings.TrimSpace(text) == "" {
			continue
		}
		docs = append(docs, domain.Document{
			Source: source,
			Page:   pageNum - 1,
			Text:   text,
		})
	}
	return docs, nil
}

func loadText(path, source string) ([]domain.Document, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read file: %w", err)
	}
	text := strings.TrimSpace(string(raw))
	if text == "" {
		return nil, nil
	}
	return []domain.Document{{Source: source, Page: 0, Text: text}}, nil
}

// loadWorkbook flattens each sheet to lines of space-joined cells; the
// sheet index plays the role of the page number.
func loadWorkbook(path, source string) ([]domain.Document, error) {
	book, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("open workbook: %w", err)
	}
	defer book.Close()

	var docs []domain.Document
	for sheetIndex, sheet := range book.GetSheetList() {
		rows, err := book.GetRows(sheet)
		if err != nil {
			slog.Warn("skip_unreadable_sheet", "source", source, "sheet", sheet, "error", err)
			continue
		}

		var b strings.Builder
		for _, row := range rows {
			line := strings.TrimSpace(strings.Join(row, " "))
			if line == "" {
				continue
			}
			b.WriteString(line)
			b.WriteByte('\n')
		}
		text := strings.TrimSpace(b.String())
		if text == "" {
			continue
		}
		docs = append(docs, domain.Document{
			Source: source,
			Page:   sheetIndex,
			Text:   text,
		})
	}
	return docs, nil
}
