//go:build !cgo

package fastembed

import (
	"context"
	"errors"
)

// ErrNotAvailable is returned when the binary was built without cgo.
var ErrNotAvailable = errors.New("fastembed: not available (binary built without cgo, use the hashing or remote provider)")

// Config holds configuration for the FastEmbed provider.
type Config struct {
	Model     string
	CacheDir  string
	MaxLength int
}

// Provider is a stub for non-cgo builds.
type Provider struct{}

// New returns ErrNotAvailable.
func New(_ Config) (*Provider, error) { return nil, ErrNotAvailable }

// Name returns an empty identifier.
func (p *Provider) Name() string { return "" }

// Dimension returns 0.
func (p *Provider) Dimension() int { return 0 }

// Embed returns ErrNotAvailable.
func (p *Provider) Embed(_ context.Context, _ string) ([]float32, error) {
	return nil, ErrNotAvailable
}

// Close is a no-op.
func (p *Provider) Close() error { return nil }
