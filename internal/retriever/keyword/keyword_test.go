package keyword

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kxddry/rag-qa/internal/domain"
	"github.com/kxddry/rag-qa/internal/lazy"
)

var chunks = []domain.Chunk{
	{ID: "doc1", Content: "aries is a fire sign"},
	{ID: "doc2", Content: "taurus is an earth sign"},
}

func TestSearch_ThresholdAndDeterminism(t *testing.T) {
	first := Search("aries fire", chunks, 3)
	require.Len(t, first, 1)
	assert.Equal(t, "doc1", first[0].Chunk.ID)
	assert.Equal(t, 2.0, first[0].Score)
	assert.Equal(t, domain.ScoreLexical, first[0].Kind)

	for i := 0; i < 5; i++ {
		assert.Equal(t, first, Search("aries fire", chunks, 3))
	}
}

func TestSearch_Scoring(t *testing.T) {
	tests := []struct {
		name  string
		query string
		want  []string
		score []float64
	}{
		{"substring bonus", "Fire Sign", []string{"doc1", "doc2"}, []float64{102, 1}},
		{"ties keep corpus order", "sign is", []string{"doc1", "doc2"}, []float64{2, 2}},
		{"no overlap", "gemini mercury", nil, nil},
		{"blank query", "   ", nil, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Search(tt.query, chunks, 5)
			require.Len(t, got, len(tt.want))
			for i := range got {
				assert.Equal(t, tt.want[i], got[i].Chunk.ID)
				assert.Equal(t, tt.score[i], got[i].Score)
			}
		})
	}
}

func TestSearch_LimitsToK(t *testing.T) {
	got := Search("sign", chunks, 1)
	require.Len(t, got, 1)
	assert.Equal(t, "doc1", got[0].Chunk.ID)

	assert.Empty(t, Search("sign", chunks, 0))
}

func TestRetriever(t *testing.T) {
	r := NewRetriever(lazy.Of(chunks))
	got, err := r.Retrieve(context.Background(), "earth", 3)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "doc2", got[0].Chunk.ID)

	missing := NewRetriever(lazy.New(func(context.Context) ([]domain.Chunk, error) {
		return nil, domain.ErrStoreNotFound
	}, nil))
	_, err = missing.Retrieve(context.Background(), "earth", 3)
	assert.True(t, errors.Is(err, domain.ErrStoreNotFound))
}
