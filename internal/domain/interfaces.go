package domain

import (
	"context"
	"time"
)

// Document is raw extracted text plus the identifier of where it came from
// (a file, a page of a file).
type Document struct {
	SourceRef string
	Text      string
}

// Chunk is a bounded contiguous slice of a normalized document.
// Offset and Length are measured in runes of the normalized text.
type Chunk struct {
	ID        string
	Content   string
	SourceRef string
	Offset    int
	Length    int
}

// ScoreKind tells how RetrievalResult.Score must be read.
type ScoreKind int

const (
	// ScoreDistance is a vector distance, smaller is better.
	ScoreDistance ScoreKind = iota
	// ScoreLexical is a keyword overlap score, larger is better.
	ScoreLexical
)

func (k ScoreKind) String() string {
	switch k {
	case ScoreDistance:
		return "distance"
	case ScoreLexical:
		return "lexical"
	default:
		return "unknown"
	}
}

// RetrievalResult represents a retrieved chunk with its score.
type RetrievalResult struct {
	Chunk Chunk
	Score float64
	Kind  ScoreKind
}

// Similarity converts a distance score into 1/(1+distance).
// It reports false for lexical scores, which have no such conversion.
func (r RetrievalResult) Similarity() (float64, bool) {
	if r.Kind != ScoreDistance {
		return 0, false
	}
	return 1 / (1 + r.Score), true
}

// Answer is generated text together with the results it was grounded on.
type Answer struct {
	Text    string
	Sources []RetrievalResult
}

// IndexInfo is the provenance recorded next to a persisted collection.
type IndexInfo struct {
	Provider   string    `yaml:"provider"`
	Dimension  int       `yaml:"dimension"`
	ChunkSize  int       `yaml:"chunk_size"`
	Overlap    int       `yaml:"overlap"`
	ChunkCount int       `yaml:"chunk_count"`
	Summary    string    `yaml:"summary,omitempty"`
	BuiltAt    time.Time `yaml:"built_at"`
}

// Embedder maps text to a fixed-length vector.
// Name identifies the model so an index can be checked against the provider
// that queries it; Dimension is fixed at construction.
type Embedder interface {
	Name() string
	Dimension() int
	Embed(ctx context.Context, text string) ([]float32, error)
}

// Chunker splits documents into chunks suitable for retrieval indexing.
type Chunker interface {
	Chunk(document Document) []Chunk
}

// ChunkWriter accepts chunk/embedding pairs.
type ChunkWriter interface {
	Upsert(ctx context.Context, chunk Chunk, embedding []float32) error
}

// VectorStore persists vectors and supports nearest-neighbour search.
type VectorStore interface {
	ChunkWriter
	QueryByVector(ctx context.Context, vector []float32, k int) ([]RetrievalResult, error)
	QueryByText(ctx context.Context, text string, k int) ([]RetrievalResult, error)
	Count() int
	Info() IndexInfo
	Close() error
}

// IndexTarget replaces a whole collection. fill writes every chunk of the new
// collection; if it fails the previous collection must stay in place.
type IndexTarget interface {
	Rebuild(ctx context.Context, info IndexInfo, fill func(ctx context.Context, w ChunkWriter) error) (IndexInfo, error)
}

// Retriever returns the top-k results for a query.
type Retriever interface {
	Retrieve(ctx context.Context, query string, k int) ([]RetrievalResult, error)
}

// Generator is the text generation capability.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// Translator rewrites a query. It never fails: on any internal problem the
// input is returned unchanged.
type Translator interface {
	Translate(ctx context.Context, text string) string
}

// Summarizer produces a brief summary of the provided text.
type Summarizer interface {
	Summarize(text string, maxSentences int) (string, error)
}
