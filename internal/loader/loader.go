// Package loader reads text files into documents, one document per page.
package loader

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/kxddry/rag-qa/internal/domain"
)

// PageBreak separates pages in extracted text.
const PageBreak = "\f"

var supported = map[string]bool{".txt": true, ".md": true}

// Load expands glob patterns in paths and reads every supported file.
// Pages are split on form feeds and referenced as <file>#p<N>, counting
// from 1; blank pages are skipped but keep their number.
func Load(paths []string) ([]domain.Document, error) {
	var docs []domain.Document
	for _, p := range paths {
		matches, err := filepath.Glob(p)
		if err != nil {
			return nil, fmt.Errorf("%w: bad pattern %q: %v", domain.ErrIngestion, p, err)
		}
		if matches == nil {
			matches = []string{p}
		}
		for _, m := range matches {
			if !supported[strings.ToLower(filepath.Ext(m))] {
				continue
			}
			data, err := os.ReadFile(m)
			if err != nil {
				return nil, fmt.Errorf("%w: %v", domain.ErrIngestion, err)
			}
			docs = append(docs, pages(m, string(data))...)
		}
	}
	if len(docs) == 0 {
		return nil, fmt.Errorf("%w: no readable .txt or .md content in %v", domain.ErrIngestion, paths)
	}
	return docs, nil
}

func pages(file, text string) []domain.Document {
	var docs []domain.Document
	for i, page := range strings.Split(text, PageBreak) {
		if strings.TrimSpace(page) == "" {
			continue
		}
		docs = append(docs, domain.Document{
			SourceRef: fmt.Sprintf("%s#p%d", file, i+1),
			Text:      page,
		})
	}
	return docs
}
