//go:build cgo

package fastembed

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_UnsupportedModel(t *testing.T) {
	_, err := New(Config{Model: "no/such-model"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported model")
}

func TestEmbed_AfterClose(t *testing.T) {
	p := &Provider{modelName: DefaultModel, dimension: 384}
	require.NoError(t, p.Close())

	vec, err := p.Embed(context.Background(), "Aries")
	assert.ErrorIs(t, err, ErrClosed)
	assert.Nil(t, vec)
}
