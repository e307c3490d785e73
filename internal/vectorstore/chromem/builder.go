package chromem

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/gofrs/flock"
	"github.com/google/uuid"
	cg "github.com/philippgille/chromem-go"
	"go.uber.org/zap"

	"github.com/kxddry/rag-qa/internal/domain"
)

// Builder replaces the persisted collection as a whole.
type Builder struct {
	cfg      Config
	embedder domain.Embedder
	logger   *zap.Logger
}

var _ domain.IndexTarget = (*Builder)(nil)

func NewBuilder(cfg Config, embedder domain.Embedder, logger *zap.Logger) *Builder {
	if logger == nil {
		logger = zap.NewNop()
	}
	cfg.ApplyDefaults()
	return &Builder{cfg: cfg, embedder: embedder, logger: logger}
}

// Rebuild writes the new collection into a staging directory next to the
// index, then swaps it in. Readers holding the index block the swap; when
// fill or the swap fails the previous index stays as it was.
func (b *Builder) Rebuild(ctx context.Context, info domain.IndexInfo, fill func(context.Context, domain.ChunkWriter) error) (domain.IndexInfo, error) {
	if info.Provider == "" {
		info.Provider = b.embedder.Name()
	}
	if info.Dimension == 0 {
		info.Dimension = b.embedder.Dimension()
	}
	if info.Dimension != b.embedder.Dimension() {
		return domain.IndexInfo{}, &domain.DimensionMismatchError{Want: b.embedder.Dimension(), Got: info.Dimension}
	}
	if info.Provider != b.embedder.Name() {
		return domain.IndexInfo{}, &domain.ProviderMismatchError{Stored: info.Provider, Active: b.embedder.Name()}
	}

	path, err := expandPath(b.cfg.Path)
	if err != nil {
		return domain.IndexInfo{}, fmt.Errorf("expanding path: %w", err)
	}
	path = filepath.Clean(path)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return domain.IndexInfo{}, fmt.Errorf("creating parent directory: %w", err)
	}

	lock := flock.New(lockPath(path))
	if err := acquire(ctx, b.cfg.LockTimeout, lock.TryLockContext); err != nil {
		return domain.IndexInfo{}, fmt.Errorf("locking index %s for rebuild: %w", path, err)
	}
	defer func() { _ = lock.Unlock() }()

	staging := path + ".staging-" + uuid.NewString()
	info, err = b.build(ctx, staging, info, fill)
	if err != nil {
		if rmErr := os.RemoveAll(staging); rmErr != nil {
			b.logger.Warn("removing staging directory", zap.String("path", staging), zap.Error(rmErr))
		}
		return domain.IndexInfo{}, err
	}
	if err := swap(path, staging); err != nil {
		_ = os.RemoveAll(staging)
		return domain.IndexInfo{}, err
	}

	b.logger.Info("index rebuilt",
		zap.String("path", path),
		zap.String("provider", info.Provider),
		zap.Int("dimension", info.Dimension),
		zap.Int("chunks", info.ChunkCount),
	)
	return info, nil
}

func (b *Builder) build(ctx context.Context, dir string, info domain.IndexInfo, fill func(context.Context, domain.ChunkWriter) error) (domain.IndexInfo, error) {
	db, err := cg.NewPersistentDB(dir, b.cfg.Compress)
	if err != nil {
		return info, fmt.Errorf("creating chromem DB: %w", err)
	}
	coll, err := db.CreateCollection(b.cfg.Collection, map[string]string{"provider": info.Provider}, embeddingFunc(b.embedder))
	if err != nil {
		return info, fmt.Errorf("creating collection %s: %w", b.cfg.Collection, err)
	}
	w := &Store{path: dir, coll: coll, embedder: b.embedder, info: info}
	if err := fill(ctx, w); err != nil {
		return info, err
	}
	info.ChunkCount = coll.Count()
	info.BuiltAt = time.Now().UTC()
	if err := writeManifest(dir, info); err != nil {
		return info, err
	}
	return info, nil
}

// swap moves staging to path, keeping the old directory until the rename
// succeeded so it can be restored.
func swap(path, staging string) error {
	_, err := os.Stat(path)
	if errors.Is(err, os.ErrNotExist) {
		if err := os.Rename(staging, path); err != nil {
			return fmt.Errorf("installing index: %w", err)
		}
		return nil
	}
	if err != nil {
		return fmt.Errorf("checking index directory: %w", err)
	}

	old := path + ".old-" + uuid.NewString()
	if err := os.Rename(path, old); err != nil {
		return fmt.Errorf("moving previous index aside: %w", err)
	}
	if err := os.Rename(staging, path); err != nil {
		_ = os.Rename(old, path)
		return fmt.Errorf("installing index: %w", err)
	}
	if err := os.RemoveAll(old); err != nil {
		return fmt.Errorf("removing previous index: %w", err)
	}
	return nil
}
