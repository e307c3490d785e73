//go:build cgo

// Package fastembed implements the local embedding provider backed by ONNX
// sentence-transformer models.
package fastembed

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"

	fe "github.com/anush008/fastembed-go"
)

// Config holds configuration for the FastEmbed provider.
type Config struct {
	// Model is the embedding model to use, e.g. BAAI/bge-small-en-v1.5 or
	// sentence-transformers/all-MiniLM-L6-v2.
	Model string

	// CacheDir is the directory to cache model files.
	CacheDir string

	// MaxLength is the maximum input sequence length. Defaults to 512.
	MaxLength int
}

// Provider embeds text with a locally loaded ONNX model.
type Provider struct {
	model     *fe.FlagEmbedding
	modelName string
	dimension int
	mu        sync.RWMutex
}

var modelMapping = map[string]fe.EmbeddingModel{
	"BAAI/bge-small-en-v1.5":                 fe.BGESmallENV15,
	"BAAI/bge-small-en":                      fe.BGESmallEN,
	"BAAI/bge-base-en-v1.5":                  fe.BGEBaseENV15,
	"BAAI/bge-base-en":                       fe.BGEBaseEN,
	"BAAI/bge-small-zh-v1.5":                 fe.BGESmallZH,
	"sentence-transformers/all-MiniLM-L6-v2": fe.AllMiniLML6V2,
}

var modelDimensions = map[fe.EmbeddingModel]int{
	fe.BGESmallENV15: 384,
	fe.BGESmallEN:    384,
	fe.BGEBaseENV15:  768,
	fe.BGEBaseEN:     768,
	fe.BGESmallZH:    512,
	fe.AllMiniLML6V2: 384,
}

// New loads the configured model. Loading is slow, so callers keep one
// Provider per process.
func New(cfg Config) (*Provider, error) {
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}
	model, ok := modelMapping[cfg.Model]
	if !ok {
		return nil, fmt.Errorf("fastembed: unsupported model %q", cfg.Model)
	}
	cacheDir := cfg.CacheDir
	if cacheDir == "" {
		cacheDir = filepath.Join(".", "local_cache")
	}
	maxLength := cfg.MaxLength
	if maxLength == 0 {
		maxLength = 512
	}
	showProgress := false
	flagEmbed, err := fe.NewFlagEmbedding(&fe.InitOptions{
		Model:                model,
		CacheDir:             cacheDir,
		MaxLength:            maxLength,
		ShowDownloadProgress: &showProgress,
	})
	if err != nil {
		return nil, fmt.Errorf("initializing fastembed: %w", err)
	}
	return &Provider{
		model:     flagEmbed,
		modelName: cfg.Model,
		dimension: modelDimensions[model],
	}, nil
}

// Name returns the provider identifier including the model.
func (p *Provider) Name() string { return "fastembed:" + p.modelName }

// Dimension returns the embedding dimension for the loaded model.
func (p *Provider) Dimension() int { return p.dimension }

// Embed embeds text without a query/passage prefix so index and query
// vectors come from the same function.
func (p *Provider) Embed(ctx context.Context, text string) ([]float32, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.model == nil {
		return nil, ErrClosed
	}

	out, err := p.model.Embed([]string{text}, 1)
	if err != nil {
		return nil, fmt.Errorf("fastembed %s: %w", p.modelName, err)
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("fastembed %s: no embedding returned", p.modelName)
	}
	return out[0], nil
}

// Close releases the ONNX session.
func (p *Provider) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.model != nil {
		err := p.model.Destroy()
		p.model = nil
		return err
	}
	return nil
}
