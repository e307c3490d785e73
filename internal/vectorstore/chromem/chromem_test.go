package chromem

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kxddry/rag-qa/internal/domain"
	"github.com/kxddry/rag-qa/internal/embedding/hashing"
)

var signs = []string{
	"Aries is a fire sign ruled by Mars.",
	"Taurus is an earth sign ruled by Venus.",
	"Gemini is an air sign ruled by Mercury.",
	"Cancer is a water sign ruled by the Moon.",
	"Leo is a fire sign ruled by the Sun.",
}

type renamedEmbedder struct {
	domain.Embedder
	name string
}

func (r renamedEmbedder) Name() string { return r.name }

func testConfig(t *testing.T) Config {
	t.Helper()
	return Config{
		Path:        filepath.Join(t.TempDir(), "index"),
		Collection:  "corpus",
		LockTimeout: 200 * time.Millisecond,
	}
}

func newEmbedder(t *testing.T, dim int) *hashing.Embedder {
	t.Helper()
	emb, err := hashing.NewEmbedder(dim)
	require.NoError(t, err)
	return emb
}

func fillTexts(emb domain.Embedder, prefix string, texts []string) func(context.Context, domain.ChunkWriter) error {
	return func(ctx context.Context, w domain.ChunkWriter) error {
		for i, text := range texts {
			vec, err := emb.Embed(ctx, text)
			if err != nil {
				return err
			}
			c := domain.Chunk{
				ID:        fmt.Sprintf("%s@%d", prefix, i*100),
				Content:   text,
				SourceRef: prefix,
				Offset:    i * 100,
				Length:    len([]rune(text)),
			}
			if err := w.Upsert(ctx, c, vec); err != nil {
				return err
			}
		}
		return nil
	}
}

func build(t *testing.T, cfg Config, emb domain.Embedder, prefix string, texts []string) domain.IndexInfo {
	t.Helper()
	info, err := NewBuilder(cfg, emb, nil).Rebuild(context.Background(),
		domain.IndexInfo{ChunkSize: 600, Overlap: 60}, fillTexts(emb, prefix, texts))
	require.NoError(t, err)
	return info
}

func TestOpen_NotFound(t *testing.T) {
	_, err := Open(context.Background(), testConfig(t), newEmbedder(t, 32), nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrStoreNotFound)
	assert.True(t, domain.IsConfigFault(err))
}

func TestOpen_DirectoryWithoutManifest(t *testing.T) {
	cfg := testConfig(t)
	require.NoError(t, os.MkdirAll(cfg.Path, 0o755))

	_, err := Open(context.Background(), cfg, newEmbedder(t, 32), nil)
	assert.ErrorIs(t, err, domain.ErrStoreNotFound)
}

func TestRebuildAndQuery(t *testing.T) {
	cfg := testConfig(t)
	emb := newEmbedder(t, 32)
	info := build(t, cfg, emb, "signs.txt", signs)
	assert.Equal(t, 5, info.ChunkCount)
	assert.Equal(t, hashing.Name, info.Provider)
	assert.Equal(t, 32, info.Dimension)
	assert.False(t, info.BuiltAt.IsZero())

	s, err := Open(context.Background(), cfg, emb, nil)
	require.NoError(t, err)
	defer s.Close()
	assert.Equal(t, 5, s.Count())
	assert.Equal(t, 600, s.Info().ChunkSize)

	results, err := s.QueryByText(context.Background(), signs[3], 3)
	require.NoError(t, err)
	require.Len(t, results, 3)
	assert.Equal(t, "signs.txt@300", results[0].Chunk.ID)
	assert.Equal(t, "signs.txt", results[0].Chunk.SourceRef)
	assert.Equal(t, 300, results[0].Chunk.Offset)
	assert.Equal(t, signs[3], results[0].Chunk.Content)
	assert.InDelta(t, 0.0, results[0].Score, 1e-5)
	for i := 1; i < len(results); i++ {
		assert.LessOrEqual(t, results[i-1].Score, results[i].Score)
	}

	results, err = s.QueryByText(context.Background(), "fire", 10)
	require.NoError(t, err)
	assert.Len(t, results, 5)
}

func TestPersistenceAcrossOpens(t *testing.T) {
	cfg := testConfig(t)
	emb := newEmbedder(t, 32)
	build(t, cfg, emb, "signs.txt", signs)
	ctx := context.Background()

	query := func() []domain.RetrievalResult {
		s, err := Open(ctx, cfg, emb, nil)
		require.NoError(t, err)
		defer s.Close()
		res, err := s.QueryByText(ctx, "earth sign Venus", 3)
		require.NoError(t, err)
		return res
	}
	first, second := query(), query()
	require.Len(t, second, len(first))
	for i := range first {
		assert.Equal(t, first[i].Chunk.ID, second[i].Chunk.ID)
		assert.InDelta(t, first[i].Score, second[i].Score, 1e-9)
	}
}

func TestQueryByText_TiesAreDeterministic(t *testing.T) {
	cfg := testConfig(t)
	emb := newEmbedder(t, 32)
	texts := []string{
		"Virgo is an earth sign ruled by Mercury.",
		"Aries is a fire sign ruled by Mars.",
		"Virgo is an earth sign ruled by Mercury.",
		"Gemini is an air sign ruled by Mercury.",
		"Virgo is an earth sign ruled by Mercury.",
	}
	build(t, cfg, emb, "signs.txt", texts)
	s, err := Open(context.Background(), cfg, emb, nil)
	require.NoError(t, err)
	defer s.Close()

	for i := 0; i < 50; i++ {
		res, err := s.QueryByText(context.Background(), "Virgo is an earth sign ruled by Mercury.", 2)
		require.NoError(t, err)
		require.Len(t, res, 2)
		assert.Equal(t, "signs.txt@0", res[0].Chunk.ID)
		assert.Equal(t, "signs.txt@200", res[1].Chunk.ID)
	}
}

func TestOpen_DimensionMismatch(t *testing.T) {
	cfg := testConfig(t)
	build(t, cfg, newEmbedder(t, 32), "signs.txt", signs)

	_, err := Open(context.Background(), cfg, newEmbedder(t, 16), nil)
	var dm *domain.DimensionMismatchError
	require.True(t, errors.As(err, &dm))
	assert.Equal(t, 32, dm.Want)
	assert.Equal(t, 16, dm.Got)
	assert.True(t, domain.IsConfigFault(err))
}

func TestOpen_ProviderMismatch(t *testing.T) {
	cfg := testConfig(t)
	emb := newEmbedder(t, 32)
	build(t, cfg, emb, "signs.txt", signs)

	_, err := Open(context.Background(), cfg, renamedEmbedder{Embedder: emb, name: "other"}, nil)
	assert.ErrorIs(t, err, domain.ErrProviderMismatch)
}

func TestQueryByVector_WrongLength(t *testing.T) {
	cfg := testConfig(t)
	emb := newEmbedder(t, 32)
	build(t, cfg, emb, "signs.txt", signs)
	s, err := Open(context.Background(), cfg, emb, nil)
	require.NoError(t, err)
	defer s.Close()

	_, err = s.QueryByVector(context.Background(), make([]float32, 31), 3)
	assert.ErrorIs(t, err, domain.ErrDimensionMismatch)
}

func TestOpen_IsReadOnly(t *testing.T) {
	cfg := testConfig(t)
	emb := newEmbedder(t, 32)
	build(t, cfg, emb, "signs.txt", signs)
	s, err := Open(context.Background(), cfg, emb, nil)
	require.NoError(t, err)
	defer s.Close()

	err = s.Upsert(context.Background(), domain.Chunk{ID: "x"}, make([]float32, 32))
	assert.ErrorIs(t, err, domain.ErrReadOnly)
}

func TestRebuild_ReplacesPreviousCollection(t *testing.T) {
	cfg := testConfig(t)
	emb := newEmbedder(t, 32)
	build(t, cfg, emb, "signs.txt", signs)
	build(t, cfg, emb, "new.txt", []string{"Virgo is an earth sign.", "Libra is an air sign."})

	s, err := Open(context.Background(), cfg, emb, nil)
	require.NoError(t, err)
	defer s.Close()
	assert.Equal(t, 2, s.Count())

	results, err := s.QueryByText(context.Background(), "Aries fire sign", 5)
	require.NoError(t, err)
	for _, r := range results {
		assert.Equal(t, "new.txt", r.Chunk.SourceRef)
	}

	entries, err := os.ReadDir(filepath.Dir(cfg.Path))
	require.NoError(t, err)
	for _, e := range entries {
		if e.IsDir() {
			assert.Equal(t, "index", e.Name())
		}
	}
}

func TestRebuild_FailureKeepsPreviousCollection(t *testing.T) {
	cfg := testConfig(t)
	emb := newEmbedder(t, 32)
	build(t, cfg, emb, "signs.txt", signs)

	_, err := NewBuilder(cfg, emb, nil).Rebuild(context.Background(), domain.IndexInfo{},
		func(context.Context, domain.ChunkWriter) error { return errors.New("embedding backend down") })
	require.Error(t, err)

	s, err := Open(context.Background(), cfg, emb, nil)
	require.NoError(t, err)
	defer s.Close()
	assert.Equal(t, 5, s.Count())
}

func TestRebuild_EmptyCollection(t *testing.T) {
	cfg := testConfig(t)
	emb := newEmbedder(t, 32)
	info := build(t, cfg, emb, "none", nil)
	assert.Equal(t, 0, info.ChunkCount)

	s, err := Open(context.Background(), cfg, emb, nil)
	require.NoError(t, err)
	defer s.Close()
	results, err := s.QueryByText(context.Background(), "anything", 3)
	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestRebuild_WaitsForReaders(t *testing.T) {
	cfg := testConfig(t)
	emb := newEmbedder(t, 32)
	build(t, cfg, emb, "signs.txt", signs)

	s, err := Open(context.Background(), cfg, emb, nil)
	require.NoError(t, err)

	_, err = NewBuilder(cfg, emb, nil).Rebuild(context.Background(), domain.IndexInfo{}, fillTexts(emb, "new", signs[:1]))
	require.Error(t, err)
	assert.Equal(t, 5, s.Count())

	require.NoError(t, s.Close())
	build(t, cfg, emb, "new", signs[:1])
}
