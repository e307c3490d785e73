package chunker

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/kxddry/rag-qa/internal/domain"
)

// Recursive splits text into windows of at most chunkSize runes, preferring
// to cut at a paragraph break, then at a sentence end, then between words,
// and only as a last resort at a raw rune boundary. Each window after the
// first starts overlap runes before the previous cut, moved forward to the
// next word start when one exists inside the overlap.
type Recursive struct {
	chunkSize int
	overlap   int
}

// New returns a chunker for the given window size and overlap, both in runes.
func New(chunkSize, overlap int) (*Recursive, error) {
	if chunkSize <= 0 {
		return nil, fmt.Errorf("chunk size must be positive, got %d", chunkSize)
	}
	if overlap < 0 {
		return nil, fmt.Errorf("overlap must not be negative, got %d", overlap)
	}
	if overlap >= chunkSize {
		return nil, fmt.Errorf("overlap %d must be smaller than chunk size %d", overlap, chunkSize)
	}
	return &Recursive{chunkSize: chunkSize, overlap: overlap}, nil
}

// ChunkSize returns the configured window size.
func (c *Recursive) ChunkSize() int { return c.chunkSize }

// Overlap returns the configured overlap.
func (c *Recursive) Overlap() int { return c.overlap }

// Chunk splits the document text. Blank text yields no chunks.
func (c *Recursive) Chunk(document domain.Document) []domain.Chunk {
	if strings.TrimSpace(document.Text) == "" {
		return nil
	}
	runes := []rune(document.Text)
	n := len(runes)

	var chunks []domain.Chunk
	emit := func(start, end int) {
		chunks = append(chunks, domain.Chunk{
			ID:        fmt.Sprintf("%s@%d", document.SourceRef, start),
			Content:   string(runes[start:end]),
			SourceRef: document.SourceRef,
			Offset:    start,
			Length:    end - start,
		})
	}

	start := 0
	for {
		end := start + c.chunkSize
		if end >= n {
			emit(start, n)
			return chunks
		}
		cut := splitPoint(runes, start+c.overlap+1, end)
		emit(start, cut)
		start = wordStart(runes, cut-c.overlap, cut)
	}
}

// splitPoint returns the exclusive end of a chunk somewhere in [lo, hi].
func splitPoint(runes []rune, lo, hi int) int {
	n := len(runes)
	for i := hi; i >= lo; i-- {
		if i+1 < n && runes[i] == '\n' && runes[i+1] == '\n' {
			return i
		}
	}
	for p := hi; p >= lo; p-- {
		if p < n && isSentenceEnd(runes[p-1]) && unicode.IsSpace(runes[p]) {
			return p
		}
	}
	for i := hi; i >= lo; i-- {
		if i < n && unicode.IsSpace(runes[i]) {
			return i
		}
	}
	return hi
}

// wordStart moves from to the first word start before limit, or returns from
// unchanged when the overlap holds no word boundary.
func wordStart(runes []rune, from, limit int) int {
	for j := from; j < limit; j++ {
		if unicode.IsSpace(runes[j]) {
			continue
		}
		if j == 0 || unicode.IsSpace(runes[j-1]) {
			return j
		}
	}
	return from
}

func isSentenceEnd(r rune) bool {
	return r == '.' || r == '!' || r == '?'
}

var _ domain.Chunker = (*Recursive)(nil)
