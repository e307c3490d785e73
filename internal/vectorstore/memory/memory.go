// Package memory is an in-process vector store using brute-force cosine distance.
package memory

import (
	"context"
	"sync"
	"time"

	"github.com/kxddry/rag-qa/internal/domain"
	"github.com/kxddry/rag-qa/internal/vectorstore"
)

var _ vectorstore.Storage = (*Storage)(nil)

// Storage keeps chunks and vectors in parallel slices.
type Storage struct {
	mu       sync.RWMutex
	embedder domain.Embedder
	info     domain.IndexInfo
	vectors  [][]float32
	chunks   []domain.Chunk
	index    map[string]int
}

// NewStorage creates an empty store whose dimension is that of embedder.
func NewStorage(embedder domain.Embedder) *Storage {
	return &Storage{
		embedder: embedder,
		info:     domain.IndexInfo{Provider: embedder.Name(), Dimension: embedder.Dimension()},
		index:    make(map[string]int),
	}
}

// Upsert stores the pair, replacing any earlier chunk with the same ID.
func (s *Storage) Upsert(_ context.Context, chunk domain.Chunk, embedding []float32) error {
	if err := vectorstore.CheckDimension(s.embedder.Dimension(), embedding); err != nil {
		return err
	}
	vec := append([]float32(nil), embedding...)
	s.mu.Lock()
	defer s.mu.Unlock()
	if i, ok := s.index[chunk.ID]; ok {
		s.chunks[i] = chunk
		s.vectors[i] = vec
		return nil
	}
	s.index[chunk.ID] = len(s.chunks)
	s.chunks = append(s.chunks, chunk)
	s.vectors = append(s.vectors, vec)
	return nil
}

// QueryByVector returns at most k results, nearest first.
func (s *Storage) QueryByVector(_ context.Context, vector []float32, k int) ([]domain.RetrievalResult, error) {
	if err := vectorstore.CheckK(k); err != nil {
		return nil, err
	}
	if err := vectorstore.CheckDimension(s.embedder.Dimension(), vector); err != nil {
		return nil, err
	}
	s.mu.RLock()
	results := make([]domain.RetrievalResult, len(s.chunks))
	for i := range s.chunks {
		results[i] = domain.RetrievalResult{
			Chunk: s.chunks[i],
			Score: vectorstore.CosineDistance(s.vectors[i], vector),
			Kind:  domain.ScoreDistance,
		}
	}
	s.mu.RUnlock()

	vectorstore.SortByDistance(results)
	if k > len(results) {
		k = len(results)
	}
	return results[:k], nil
}

// QueryByText embeds text with the store's embedder and queries by vector.
func (s *Storage) QueryByText(ctx context.Context, text string, k int) ([]domain.RetrievalResult, error) {
	vec, err := s.embedder.Embed(ctx, text)
	if err != nil {
		return nil, domain.AsProviderError(s.embedder.Name(), err)
	}
	return s.QueryByVector(ctx, vec, k)
}

func (s *Storage) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.chunks)
}

func (s *Storage) Info() domain.IndexInfo {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.info
}

// Rebuild fills a fresh collection and swaps it in only when fill succeeds.
func (s *Storage) Rebuild(ctx context.Context, info domain.IndexInfo, fill func(context.Context, domain.ChunkWriter) error) (domain.IndexInfo, error) {
	if err := checkInfo(s.embedder, &info); err != nil {
		return domain.IndexInfo{}, err
	}
	staging := NewStorage(s.embedder)
	if err := fill(ctx, staging); err != nil {
		return domain.IndexInfo{}, err
	}
	info.ChunkCount = len(staging.chunks)
	info.BuiltAt = time.Now().UTC()

	s.mu.Lock()
	defer s.mu.Unlock()
	s.chunks = staging.chunks
	s.vectors = staging.vectors
	s.index = staging.index
	s.info = info
	return info, nil
}

func (s *Storage) Close() error { return nil }

func checkInfo(emb domain.Embedder, info *domain.IndexInfo) error {
	if info.Provider == "" {
		info.Provider = emb.Name()
	}
	if info.Dimension == 0 {
		info.Dimension = emb.Dimension()
	}
	if info.Dimension != emb.Dimension() {
		return &domain.DimensionMismatchError{Want: emb.Dimension(), Got: info.Dimension}
	}
	if info.Provider != emb.Name() {
		return &domain.ProviderMismatchError{Stored: info.Provider, Active: emb.Name()}
	}
	return nil
}
