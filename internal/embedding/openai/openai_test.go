package openai

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kxddry/rag-qa/internal/domain"
)

type fakeEmbedder struct {
	vector []float32
	err    error
	calls  int
}

func (f *fakeEmbedder) EmbedDocuments(ctx context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	for i, text := range texts {
		v, err := f.EmbedQuery(ctx, text)
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}

func (f *fakeEmbedder) EmbedQuery(_ context.Context, _ string) ([]float32, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return f.vector, nil
}

func TestNewClient_MissingKey(t *testing.T) {
	t.Setenv("RAG_TEST_EMPTY_KEY", "")
	_, err := NewClient(Config{APIKeyEnv: "RAG_TEST_EMPTY_KEY"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "missing API key")
}

func TestNewClient_KnownModelDimension(t *testing.T) {
	t.Setenv("RAG_TEST_KEY", "sk-test")
	c, err := NewClient(Config{APIKeyEnv: "RAG_TEST_KEY", Model: "text-embedding-3-large"})
	require.NoError(t, err)
	assert.Equal(t, 3072, c.Dimension())
	assert.Equal(t, "openai:text-embedding-3-large", c.Name())
}

func TestNewClient_UnknownModelNeedsDimension(t *testing.T) {
	_, err := newClient(&fakeEmbedder{}, Config{Model: "nomic-embed-text"})
	require.Error(t, err)

	c, err := newClient(&fakeEmbedder{}, Config{Model: "nomic-embed-text", Dimension: 768})
	require.NoError(t, err)
	assert.Equal(t, 768, c.Dimension())
}

func TestEmbed(t *testing.T) {
	fake := &fakeEmbedder{vector: []float32{0.6, 0.8, 0}}
	c, err := newClient(fake, Config{Model: "m", Dimension: 3})
	require.NoError(t, err)

	v, err := c.Embed(context.Background(), "aries")
	require.NoError(t, err)
	assert.Equal(t, []float32{0.6, 0.8, 0}, v)
}

func TestEmbed_FailureIsProviderErrorWithoutRetry(t *testing.T) {
	fake := &fakeEmbedder{err: errors.New("401 unauthorized")}
	c, err := newClient(fake, Config{Model: "m", Dimension: 3})
	require.NoError(t, err)

	_, err = c.Embed(context.Background(), "aries")
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrProvider)

	var perr *domain.ProviderError
	require.ErrorAs(t, err, &perr)
	assert.Equal(t, "openai:m", perr.Provider)
	assert.Equal(t, 1, fake.calls)
}

func TestEmbed_WrongLengthVector(t *testing.T) {
	fake := &fakeEmbedder{vector: []float32{1, 0}}
	c, err := newClient(fake, Config{Model: "m", Dimension: 3})
	require.NoError(t, err)

	_, err = c.Embed(context.Background(), "aries")
	assert.ErrorIs(t, err, domain.ErrProvider)
	assert.ErrorIs(t, err, domain.ErrDimensionMismatch)
}

func TestEmbed_RateLimitedContextCancelled(t *testing.T) {
	fake := &fakeEmbedder{vector: []float32{1, 0, 0}}
	c, err := newClient(fake, Config{Model: "m", Dimension: 3, RequestsPerSecond: 0.001})
	require.NoError(t, err)

	_, err = c.Embed(context.Background(), "first")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = c.Embed(ctx, "second")
	assert.ErrorIs(t, err, domain.ErrProvider)
	assert.Equal(t, 1, fake.calls)
}
