// Package export reads and writes the flat chunk export used by the
// keyword-only retrieval path.
package export

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/kxddry/rag-qa/internal/domain"
)

// Record is one exported chunk.
type Record struct {
	ID       string   `json:"id"`
	Content  string   `json:"content"`
	Metadata Metadata `json:"metadata"`
}

// Metadata locates a record in its source document.
type Metadata struct {
	SourceRef string `json:"source_ref"`
	Offset    int    `json:"offset"`
	Length    int    `json:"length"`
}

// Write stores chunks at path as a JSON array, replacing any existing file.
func Write(path string, chunks []domain.Chunk) error {
	records := make([]Record, len(chunks))
	for i, c := range chunks {
		records[i] = Record{
			ID:       c.ID,
			Content:  c.Content,
			Metadata: Metadata{SourceRef: c.SourceRef, Offset: c.Offset, Length: c.Length},
		}
	}
	data, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding export: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating export directory: %w", err)
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("writing export: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("installing export: %w", err)
	}
	return nil
}

// Read loads chunks written by Write. A missing file is domain.ErrStoreNotFound.
func Read(path string) ([]domain.Chunk, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", domain.ErrStoreNotFound, path)
		}
		return nil, fmt.Errorf("reading export: %w", err)
	}
	var records []Record
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("decoding export %s: %w", path, err)
	}
	chunks := make([]domain.Chunk, len(records))
	for i, r := range records {
		chunks[i] = domain.Chunk{
			ID:        r.ID,
			Content:   r.Content,
			SourceRef: r.Metadata.SourceRef,
			Offset:    r.Metadata.Offset,
			Length:    r.Metadata.Length,
		}
	}
	return chunks, nil
}
