package embedding

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kxddry/rag-qa/internal/embedding/hashing"
)

func TestNew(t *testing.T) {
	tests := []struct {
		name      string
		cfg       Config
		wantName  string
		wantDim   int
		wantError bool
	}{
		{
			name:     "default is local hashing",
			cfg:      Config{},
			wantName: hashing.Name,
			wantDim:  hashing.DefaultDimension,
		},
		{
			name:     "local hashing with dimension",
			cfg:      Config{Kind: KindLocal, Local: LocalConfig{Backend: BackendHashing, Dimension: 64}},
			wantName: hashing.Name,
			wantDim:  64,
		},
		{
			name:      "unknown kind",
			cfg:       Config{Kind: "quantum"},
			wantError: true,
		},
		{
			name:      "unknown local backend",
			cfg:       Config{Kind: KindLocal, Local: LocalConfig{Backend: "word2vec"}},
			wantError: true,
		},
		{
			name:      "remote without key",
			cfg:       Config{Kind: KindRemote, Remote: RemoteConfig{APIKeyEnv: "RAG_TEST_UNSET_KEY"}},
			wantError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("RAG_TEST_UNSET_KEY", "")
			emb, err := New(tt.cfg)
			if tt.wantError {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantName, emb.Name())
			assert.Equal(t, tt.wantDim, emb.Dimension())
		})
	}
}
