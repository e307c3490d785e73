package main

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kxddry/rag-qa/internal/domain"
	"github.com/kxddry/rag-qa/internal/embedding/hashing"
	"github.com/kxddry/rag-qa/internal/vectorstore/memory"
)

func TestRunProbe(t *testing.T) {
	emb, err := hashing.NewEmbedder(32)
	require.NoError(t, err)
	store := memory.NewStorage(emb)
	ctx := context.Background()
	long := strings.Repeat("ş", 500)
	for i, text := range []string{"Mars rules Aries.", long} {
		vec, err := emb.Embed(ctx, text)
		require.NoError(t, err)
		require.NoError(t, store.Upsert(ctx, domain.Chunk{ID: string(rune('a' + i)), Content: text, SourceRef: "book.txt#p1"}, vec))
	}

	var out bytes.Buffer
	in := strings.NewReader("Mars rules Aries.\n\n" + long + "\nexit\nnever read\n")
	require.NoError(t, runProbe(ctx, in, &out, store, 1))

	got := out.String()
	assert.Contains(t, got, "Index ready: 2 chunks")
	assert.Contains(t, got, "Similarity: 1.0000")
	assert.Contains(t, got, "Mars rules Aries.")
	assert.Contains(t, got, strings.Repeat("ş", 400)+"\n")
	assert.NotContains(t, got, strings.Repeat("ş", 401))
	assert.Equal(t, 2, strings.Count(got, "--- Result 1 ---"))
}

func TestRunProbe_EOF(t *testing.T) {
	emb, err := hashing.NewEmbedder(8)
	require.NoError(t, err)
	var out bytes.Buffer
	assert.NoError(t, runProbe(context.Background(), strings.NewReader(""), &out, memory.NewStorage(emb), 3))
}
