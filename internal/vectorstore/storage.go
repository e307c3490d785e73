// Package vectorstore holds what the vector store implementations share.
package vectorstore

import (
	"fmt"
	"math"
	"sort"

	"github.com/kxddry/rag-qa/internal/domain"
)

// Storage is a vector store that can also replace its whole collection.
type Storage interface {
	domain.VectorStore
	domain.IndexTarget
}

// CheckDimension fails with *domain.DimensionMismatchError when v has the wrong length.
func CheckDimension(want int, v []float32) error {
	if len(v) != want {
		return &domain.DimensionMismatchError{Want: want, Got: len(v)}
	}
	return nil
}

// CheckK rejects non-positive result counts.
func CheckK(k int) error {
	if k <= 0 {
		return fmt.Errorf("k must be positive, got %d", k)
	}
	return nil
}

// CosineDistance returns 1 - cos(a, b). Zero vectors are at distance 1 from everything.
func CosineDistance(a, b []float32) float64 {
	var dot, na, nb float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		na += float64(a[i]) * float64(a[i])
		nb += float64(b[i]) * float64(b[i])
	}
	if na == 0 || nb == 0 {
		return 1
	}
	return 1 - dot/(math.Sqrt(na)*math.Sqrt(nb))
}

// SortByDistance orders results nearest first. Equal distances are ordered
// by source, offset and ID so the same query always yields the same list.
func SortByDistance(results []domain.RetrievalResult) {
	sort.Slice(results, func(i, j int) bool {
		a, b := results[i], results[j]
		if a.Score != b.Score {
			return a.Score < b.Score
		}
		if a.Chunk.SourceRef != b.Chunk.SourceRef {
			return a.Chunk.SourceRef < b.Chunk.SourceRef
		}
		if a.Chunk.Offset != b.Chunk.Offset {
			return a.Chunk.Offset < b.Chunk.Offset
		}
		return a.Chunk.ID < b.Chunk.ID
	})
}
