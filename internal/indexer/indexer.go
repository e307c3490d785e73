// Package indexer turns documents into a persisted, queryable collection.
package indexer

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/kxddry/rag-qa/internal/chunker"
	"github.com/kxddry/rag-qa/internal/domain"
	"github.com/kxddry/rag-qa/internal/normalizer"
)

// Params controls chunking.
type Params struct {
	ChunkSize int
	Overlap   int
}

// Result describes a finished build.
type Result struct {
	Chunks []domain.Chunk
	Info   domain.IndexInfo
}

// Indexer normalizes, chunks and embeds documents into an IndexTarget.
type Indexer struct {
	target           domain.IndexTarget
	logger           *zap.Logger
	summarizer       domain.Summarizer
	summarySentences int
}

// Option configures an Indexer.
type Option func(*Indexer)

// WithSummarizer records a corpus summary of up to maxSentences in the index metadata.
func WithSummarizer(s domain.Summarizer, maxSentences int) Option {
	return func(ix *Indexer) {
		ix.summarizer = s
		ix.summarySentences = maxSentences
	}
}

func New(target domain.IndexTarget, logger *zap.Logger, opts ...Option) *Indexer {
	if logger == nil {
		logger = zap.NewNop()
	}
	ix := &Indexer{target: target, logger: logger}
	for _, opt := range opts {
		opt(ix)
	}
	return ix
}

// BuildIndex replaces the target collection with the chunks of docs, each
// embedded by emb. Nothing is written when any document fails to embed.
func (ix *Indexer) BuildIndex(ctx context.Context, docs []domain.Document, params Params, emb domain.Embedder) (Result, error) {
	if len(docs) == 0 {
		return Result{}, fmt.Errorf("%w: no documents", domain.ErrIngestion)
	}
	ch, err := chunker.New(params.ChunkSize, params.Overlap)
	if err != nil {
		return Result{}, err
	}

	var (
		chunks []domain.Chunk
		corpus strings.Builder
	)
	for _, doc := range docs {
		text := normalizer.Normalize(doc.Text)
		if text == "" {
			ix.logger.Debug("document empty after normalization", zap.String("source_ref", doc.SourceRef))
			continue
		}
		corpus.WriteString(text)
		corpus.WriteString(" ")
		chunks = append(chunks, ch.Chunk(domain.Document{SourceRef: doc.SourceRef, Text: text})...)
	}
	if len(chunks) == 0 {
		return Result{}, fmt.Errorf("%w: no text after normalization in %d documents", domain.ErrIngestion, len(docs))
	}

	info := domain.IndexInfo{
		Provider:  emb.Name(),
		Dimension: emb.Dimension(),
		ChunkSize: params.ChunkSize,
		Overlap:   params.Overlap,
	}
	if ix.summarizer != nil {
		summary, err := ix.summarizer.Summarize(corpus.String(), ix.summarySentences)
		if err != nil {
			ix.logger.Warn("corpus summary failed", zap.Error(err))
		} else {
			info.Summary = summary
		}
	}

	info, err = ix.target.Rebuild(ctx, info, func(ctx context.Context, w domain.ChunkWriter) error {
		for _, c := range chunks {
			vec, err := emb.Embed(ctx, c.Content)
			if err != nil {
				return domain.AsProviderError(emb.Name(), err)
			}
			if len(vec) != emb.Dimension() {
				return &domain.ProviderError{
					Provider: emb.Name(),
					Err:      &domain.DimensionMismatchError{Want: emb.Dimension(), Got: len(vec)},
				}
			}
			if err := w.Upsert(ctx, c, vec); err != nil {
				return fmt.Errorf("writing chunk %s: %w", c.ID, err)
			}
		}
		return nil
	})
	if err != nil {
		return Result{}, err
	}

	ix.logger.Info("index built",
		zap.Int("documents", len(docs)),
		zap.Int("chunks", len(chunks)),
		zap.String("provider", info.Provider),
	)
	return Result{Chunks: chunks, Info: info}, nil
}
