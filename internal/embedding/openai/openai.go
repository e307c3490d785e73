// Package openai implements the remote embedding provider for OpenAI
// compatible endpoints (OpenAI, TEI, Ollama) through langchaingo.
package openai

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/tmc/langchaingo/embeddings"
	"github.com/tmc/langchaingo/llms/openai"
	"golang.org/x/time/rate"

	"github.com/kxddry/rag-qa/internal/domain"
)

var knownDimensions = map[string]int{
	"text-embedding-3-small": 1536,
	"text-embedding-3-large": 3072,
	"text-embedding-ada-002": 1536,
}

// Config configures the OpenAI-compatible embeddings client.
type Config struct {
	BaseURL   string
	APIKeyEnv string
	Model     string
	// Dimension may be left zero for models listed in knownDimensions.
	Dimension int
	Timeout   time.Duration
	// RequestsPerSecond paces calls; zero disables pacing.
	RequestsPerSecond float64
}

// Client is a remote embedder. It never retries: a failed call surfaces as a
// *domain.ProviderError and the caller decides what to do.
type Client struct {
	embedder  embeddings.Embedder
	model     string
	dimension int
	timeout   time.Duration
	limiter   *rate.Limiter
}

// NewClient creates a new embeddings client using the provided configuration.
func NewClient(cfg Config) (*Client, error) {
	key := os.Getenv(cfg.APIKeyEnv)
	if key == "" {
		return nil, fmt.Errorf("missing API key in env %s", cfg.APIKeyEnv)
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://api.openai.com/v1"
	}
	if cfg.Model == "" {
		cfg.Model = "text-embedding-3-small"
	}
	llm, err := openai.New(
		openai.WithToken(key),
		openai.WithBaseURL(cfg.BaseURL),
		openai.WithEmbeddingModel(cfg.Model),
	)
	if err != nil {
		return nil, fmt.Errorf("creating openai client: %w", err)
	}
	emb, err := embeddings.NewEmbedder(llm)
	if err != nil {
		return nil, fmt.Errorf("creating embedder: %w", err)
	}
	return newClient(emb, cfg)
}

func newClient(emb embeddings.Embedder, cfg Config) (*Client, error) {
	dim := cfg.Dimension
	if dim == 0 {
		dim = knownDimensions[cfg.Model]
	}
	if dim <= 0 {
		return nil, fmt.Errorf("openai embedder: dimension unknown for model %q, set it explicitly", cfg.Model)
	}
	t := cfg.Timeout
	if t == 0 {
		t = 30 * time.Second
	}
	c := &Client{
		embedder:  emb,
		model:     cfg.Model,
		dimension: dim,
		timeout:   t,
	}
	if cfg.RequestsPerSecond > 0 {
		c.limiter = rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), 1)
	}
	return c, nil
}

// Name returns the identifier of this embedder implementation.
func (c *Client) Name() string { return "openai:" + c.model }

// Dimension returns the dimensionality advertised for the configured model.
func (c *Client) Dimension() int { return c.dimension }

// Embed returns an embedding vector for the given text.
func (c *Client) Embed(ctx context.Context, text string) ([]float32, error) {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, &domain.ProviderError{Provider: c.Name(), Err: err}
		}
	}
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	v, err := c.embedder.EmbedQuery(ctx, text)
	if err != nil {
		return nil, &domain.ProviderError{Provider: c.Name(), Err: err}
	}
	if len(v) != c.dimension {
		return nil, &domain.ProviderError{
			Provider: c.Name(),
			Err:      &domain.DimensionMismatchError{Want: c.dimension, Got: len(v)},
		}
	}
	return v, nil
}
