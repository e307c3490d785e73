// Package embedding selects and constructs embedding providers.
package embedding

import (
	"fmt"
	"time"

	"github.com/kxddry/rag-qa/internal/domain"
	"github.com/kxddry/rag-qa/internal/embedding/fastembed"
	"github.com/kxddry/rag-qa/internal/embedding/hashing"
	"github.com/kxddry/rag-qa/internal/embedding/openai"
)

// Kind enumerates provider variants.
type Kind string

const (
	KindLocal  Kind = "local"
	KindRemote Kind = "remote"
)

// Local backends.
const (
	BackendHashing   = "hashing"
	BackendFastEmbed = "fastembed"
)

// LocalConfig configures an in-process provider.
type LocalConfig struct {
	Backend   string
	Model     string
	Dimension int
	CacheDir  string
}

// RemoteConfig configures an API-backed provider.
type RemoteConfig struct {
	BaseURL           string
	APIKeyEnv         string
	Model             string
	Dimension         int
	Timeout           time.Duration
	RequestsPerSecond float64
}

// Config selects a provider by Kind.
type Config struct {
	Kind   Kind
	Local  LocalConfig
	Remote RemoteConfig
}

// New constructs the configured provider. Providers holding native resources
// also implement io.Closer.
func New(cfg Config) (domain.Embedder, error) {
	switch cfg.Kind {
	case KindLocal, "":
		return newLocal(cfg.Local)
	case KindRemote:
		c, err := openai.NewClient(openai.Config{
			BaseURL:           cfg.Remote.BaseURL,
			APIKeyEnv:         cfg.Remote.APIKeyEnv,
			Model:             cfg.Remote.Model,
			Dimension:         cfg.Remote.Dimension,
			Timeout:           cfg.Remote.Timeout,
			RequestsPerSecond: cfg.Remote.RequestsPerSecond,
		})
		if err != nil {
			return nil, err
		}
		return c, nil
	default:
		return nil, fmt.Errorf("unknown embedder kind: %s", cfg.Kind)
	}
}

func newLocal(cfg LocalConfig) (domain.Embedder, error) {
	switch cfg.Backend {
	case BackendHashing, "":
		dim := cfg.Dimension
		if dim == 0 {
			dim = hashing.DefaultDimension
		}
		e, err := hashing.NewEmbedder(dim)
		if err != nil {
			return nil, err
		}
		return e, nil
	case BackendFastEmbed:
		p, err := fastembed.New(fastembed.Config{Model: cfg.Model, CacheDir: cfg.CacheDir})
		if err != nil {
			return nil, err
		}
		if cfg.Dimension != 0 && cfg.Dimension != p.Dimension() {
			_ = p.Close()
			return nil, &domain.DimensionMismatchError{Want: cfg.Dimension, Got: p.Dimension()}
		}
		return p, nil
	default:
		return nil, fmt.Errorf("unknown local embedding backend: %s", cfg.Backend)
	}
}
