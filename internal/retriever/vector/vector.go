// Package vector retrieves chunks by embedding similarity from a vector store.
package vector

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"github.com/kxddry/rag-qa/internal/domain"
	"github.com/kxddry/rag-qa/internal/lazy"
)

// Retriever queries a store that is opened on first use and then shared.
type Retriever struct {
	store    *lazy.Value[domain.VectorStore]
	fallback domain.Retriever
	logger   *zap.Logger
}

var _ domain.Retriever = (*Retriever)(nil)

// Option configures a Retriever.
type Option func(*Retriever)

// WithFallback routes queries to r while no persisted index exists.
func WithFallback(r domain.Retriever) Option {
	return func(v *Retriever) { v.fallback = r }
}

func NewRetriever(store *lazy.Value[domain.VectorStore], logger *zap.Logger, opts ...Option) *Retriever {
	if logger == nil {
		logger = zap.NewNop()
	}
	r := &Retriever{store: store, logger: logger}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Retrieve returns up to k results ordered by ascending distance.
func (r *Retriever) Retrieve(ctx context.Context, query string, k int) ([]domain.RetrievalResult, error) {
	store, err := r.store.Get(ctx)
	if err != nil {
		if r.fallback != nil && errors.Is(err, domain.ErrStoreNotFound) {
			r.logger.Warn("vector index missing, using fallback retriever", zap.Error(err))
			return r.fallback.Retrieve(ctx, query, k)
		}
		return nil, err
	}
	return store.QueryByText(ctx, query, k)
}
