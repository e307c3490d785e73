// Package keyword ranks chunks by lexical overlap with the query. It needs no
// vector index and serves as the keyword-only retrieval path.
package keyword

import (
	"context"
	"sort"
	"strings"

	"github.com/kxddry/rag-qa/internal/domain"
	"github.com/kxddry/rag-qa/internal/lazy"
)

// SubstringBonus is added when the whole query occurs inside a chunk.
const SubstringBonus = 100

// Search scores every chunk as SubstringBonus when the lowercased query is a
// substring of the lowercased chunk, plus the number of distinct query words
// the chunk contains. Chunks scoring zero are dropped; ties keep corpus order.
func Search(query string, chunks []domain.Chunk, k int) []domain.RetrievalResult {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" || k <= 0 {
		return []domain.RetrievalResult{}
	}
	qwords := wordSet(q)

	results := make([]domain.RetrievalResult, 0)
	for _, c := range chunks {
		content := strings.ToLower(c.Content)
		score := 0
		if strings.Contains(content, q) {
			score += SubstringBonus
		}
		for w := range wordSet(content) {
			if _, ok := qwords[w]; ok {
				score++
			}
		}
		if score > 0 {
			results = append(results, domain.RetrievalResult{Chunk: c, Score: float64(score), Kind: domain.ScoreLexical})
		}
	}
	sort.SliceStable(results, func(i, j int) bool { return results[i].Score > results[j].Score })
	if len(results) > k {
		results = results[:k]
	}
	return results
}

func wordSet(s string) map[string]struct{} {
	fields := strings.Fields(s)
	m := make(map[string]struct{}, len(fields))
	for _, f := range fields {
		m[f] = struct{}{}
	}
	return m
}

// Retriever applies Search to a corpus loaded on first use.
type Retriever struct {
	corpus *lazy.Value[[]domain.Chunk]
}

var _ domain.Retriever = (*Retriever)(nil)

func NewRetriever(corpus *lazy.Value[[]domain.Chunk]) *Retriever {
	return &Retriever{corpus: corpus}
}

// Retrieve fails only when the corpus cannot be loaded.
func (r *Retriever) Retrieve(ctx context.Context, query string, k int) ([]domain.RetrievalResult, error) {
	chunks, err := r.corpus.Get(ctx)
	if err != nil {
		return nil, err
	}
	return Search(query, chunks, k), nil
}
