// Package chromem persists the vector collection in a directory using
// chromem-go, with a manifest that records which embedding provider built it.
package chromem

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/gofrs/flock"
	cg "github.com/philippgille/chromem-go"
	"go.uber.org/zap"

	"github.com/kxddry/rag-qa/internal/domain"
	"github.com/kxddry/rag-qa/internal/vectorstore"
)

const (
	metaSourceRef = "source_ref"
	metaOffset    = "offset"
	metaLength    = "length"

	lockRetryDelay = 50 * time.Millisecond
)

// Config locates the persisted collection.
type Config struct {
	// Path is the index directory. A leading ~ expands to the home directory.
	Path string
	// Collection is the chromem collection name inside Path.
	Collection string
	// Compress stores gob files gzip-compressed.
	Compress bool
	// LockTimeout bounds how long Open and Rebuild wait for the file lock.
	LockTimeout time.Duration
}

// ApplyDefaults fills unset fields.
func (c *Config) ApplyDefaults() {
	if c.Path == "" {
		c.Path = "chroma_db"
	}
	if c.Collection == "" {
		c.Collection = "corpus"
	}
	if c.LockTimeout == 0 {
		c.LockTimeout = 5 * time.Second
	}
}

// Store is a handle on one persisted collection.
type Store struct {
	path     string
	coll     *cg.Collection
	embedder domain.Embedder
	info     domain.IndexInfo
	readOnly bool
	lock     *flock.Flock
	logger   *zap.Logger
}

var _ domain.VectorStore = (*Store)(nil)

// Open loads an existing collection for querying. The returned Store holds a
// shared lock on the index until Close, so rebuilds wait for readers.
func Open(ctx context.Context, cfg Config, embedder domain.Embedder, logger *zap.Logger) (*Store, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	cfg.ApplyDefaults()
	path, err := expandPath(cfg.Path)
	if err != nil {
		return nil, fmt.Errorf("expanding path: %w", err)
	}
	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", domain.ErrStoreNotFound, path)
		}
		return nil, fmt.Errorf("checking index directory: %w", err)
	}

	lock := flock.New(lockPath(path))
	if err := acquire(ctx, cfg.LockTimeout, lock.TryRLockContext); err != nil {
		return nil, fmt.Errorf("locking index %s: %w", path, err)
	}

	s, err := openLocked(path, cfg, embedder)
	if err != nil {
		_ = lock.Unlock()
		return nil, err
	}
	s.lock = lock
	s.logger = logger

	logger.Info("index opened",
		zap.String("path", path),
		zap.String("collection", cfg.Collection),
		zap.String("provider", s.info.Provider),
		zap.Int("dimension", s.info.Dimension),
		zap.Int("chunks", s.coll.Count()),
	)
	return s, nil
}

func openLocked(path string, cfg Config, embedder domain.Embedder) (*Store, error) {
	info, err := readManifest(path)
	if err != nil {
		return nil, err
	}
	if info.Dimension != embedder.Dimension() {
		return nil, &domain.DimensionMismatchError{Want: info.Dimension, Got: embedder.Dimension()}
	}
	if info.Provider != embedder.Name() {
		return nil, &domain.ProviderMismatchError{Stored: info.Provider, Active: embedder.Name()}
	}

	db, err := cg.NewPersistentDB(path, cfg.Compress)
	if err != nil {
		return nil, fmt.Errorf("loading chromem DB: %w", err)
	}
	coll := db.GetCollection(cfg.Collection, embeddingFunc(embedder))
	if coll == nil {
		return nil, fmt.Errorf("%w: collection %q in %s", domain.ErrStoreNotFound, cfg.Collection, path)
	}
	return &Store{
		path:     path,
		coll:     coll,
		embedder: embedder,
		info:     info,
		readOnly: true,
	}, nil
}

// Upsert is only accepted while the collection is being rebuilt.
func (s *Store) Upsert(ctx context.Context, chunk domain.Chunk, embedding []float32) error {
	if s.readOnly {
		return domain.ErrReadOnly
	}
	if err := vectorstore.CheckDimension(s.embedder.Dimension(), embedding); err != nil {
		return err
	}
	doc := cg.Document{
		ID:      chunk.ID,
		Content: chunk.Content,
		Metadata: map[string]string{
			metaSourceRef: chunk.SourceRef,
			metaOffset:    strconv.Itoa(chunk.Offset),
			metaLength:    strconv.Itoa(chunk.Length),
		},
		Embedding: append([]float32(nil), embedding...),
	}
	if err := s.coll.AddDocument(ctx, doc); err != nil {
		return fmt.Errorf("adding chunk %s: %w", chunk.ID, err)
	}
	return nil
}

// QueryByVector returns at most k results ordered by ascending cosine distance.
func (s *Store) QueryByVector(ctx context.Context, vector []float32, k int) ([]domain.RetrievalResult, error) {
	if err := vectorstore.CheckK(k); err != nil {
		return nil, err
	}
	if err := vectorstore.CheckDimension(s.embedder.Dimension(), vector); err != nil {
		return nil, err
	}
	n := s.coll.Count()
	if n == 0 {
		return []domain.RetrievalResult{}, nil
	}
	// chromem orders equal similarities arbitrarily, so rank the whole
	// collection here and cut to k afterwards.
	res, err := s.coll.QueryEmbedding(ctx, vector, n, nil, nil)
	if err != nil {
		return nil, fmt.Errorf("querying collection: %w", err)
	}
	results := make([]domain.RetrievalResult, len(res))
	for i, r := range res {
		results[i] = domain.RetrievalResult{
			Chunk: chunkFromResult(r),
			Score: 1 - float64(r.Similarity),
			Kind:  domain.ScoreDistance,
		}
	}
	vectorstore.SortByDistance(results)
	if k < len(results) {
		results = results[:k]
	}
	if s.logger != nil {
		s.logger.Debug("queried index", zap.Int("k", k), zap.Int("results", len(results)))
	}
	return results, nil
}

// QueryByText embeds text with the same provider that built the index.
func (s *Store) QueryByText(ctx context.Context, text string, k int) ([]domain.RetrievalResult, error) {
	vec, err := s.embedder.Embed(ctx, text)
	if err != nil {
		return nil, domain.AsProviderError(s.embedder.Name(), err)
	}
	return s.QueryByVector(ctx, vec, k)
}

func (s *Store) Count() int { return s.coll.Count() }

func (s *Store) Info() domain.IndexInfo { return s.info }

// Close releases the shared lock.
func (s *Store) Close() error {
	if s.lock == nil {
		return nil
	}
	err := s.lock.Unlock()
	s.lock = nil
	return err
}

func chunkFromResult(r cg.Result) domain.Chunk {
	offset, _ := strconv.Atoi(r.Metadata[metaOffset])
	length, _ := strconv.Atoi(r.Metadata[metaLength])
	return domain.Chunk{
		ID:        r.ID,
		Content:   r.Content,
		SourceRef: r.Metadata[metaSourceRef],
		Offset:    offset,
		Length:    length,
	}
}

func embeddingFunc(e domain.Embedder) cg.EmbeddingFunc {
	return func(ctx context.Context, text string) ([]float32, error) {
		return e.Embed(ctx, text)
	}
}

func acquire(ctx context.Context, timeout time.Duration, try func(context.Context, time.Duration) (bool, error)) error {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	ok, err := try(ctx, lockRetryDelay)
	if err != nil {
		return err
	}
	if !ok {
		return errors.New("lock held by another process")
	}
	return nil
}

func lockPath(path string) string { return filepath.Clean(path) + ".lock" }

func expandPath(path string) (string, error) {
	if strings.HasPrefix(path, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		return filepath.Join(home, path[1:]), nil
	}
	return path, nil
}
