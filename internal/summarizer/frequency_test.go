package summarizer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFrequency_Summarize(t *testing.T) {
	text := "Mars rules Aries. Mars also co-rules Scorpio. The weather was nice. Mars is the planet of action."

	got, err := NewFrequency().Summarize(text, 2)
	require.NoError(t, err)
	assert.NotContains(t, got, "weather")
	assert.Contains(t, got, "Mars rules Aries.")
}

func TestFrequency_KeepsDocumentOrder(t *testing.T) {
	text := "Venus rules Taurus. Cats sleep. Venus rules Libra too."

	got, err := NewFrequency().Summarize(text, 2)
	require.NoError(t, err)
	assert.Equal(t, "Venus rules Taurus. Venus rules Libra too.", got)
}

func TestFrequency_EdgeCases(t *testing.T) {
	s := NewFrequency()

	got, err := s.Summarize("  no punctuation here  ", 3)
	require.NoError(t, err)
	assert.Equal(t, "no punctuation here", got)

	got, err = s.Summarize("One. Two. Three.", 10)
	require.NoError(t, err)
	assert.Equal(t, "One. Two. Three.", got)

	got, err = s.Summarize("", 0)
	require.NoError(t, err)
	assert.Empty(t, got)
}
