// Package llm adapts langchaingo chat models to the generation capability.
package llm

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/googleai"
	"github.com/tmc/langchaingo/llms/openai"

	"github.com/kxddry/rag-qa/internal/domain"
)

const (
	ProviderGemini = "gemini"
	ProviderOpenAI = "openai"

	// DefaultModel is used for Gemini when no model is configured.
	DefaultModel = "gemini-2.5-flash"
)

// Config selects the model backend.
type Config struct {
	Provider    string
	Model       string
	APIKeyEnv   string
	BaseURL     string
	Timeout     time.Duration
	Temperature float64
}

// Generator calls a model with a single prompt and returns its text.
type Generator struct {
	model       llms.Model
	name        string
	timeout     time.Duration
	temperature float64
}

var _ domain.Generator = (*Generator)(nil)

// New builds a Generator for cfg.Provider. The API key is read from the
// environment variable named by cfg.APIKeyEnv.
func New(ctx context.Context, cfg Config) (*Generator, error) {
	if cfg.Provider == "" {
		cfg.Provider = ProviderGemini
	}
	if cfg.APIKeyEnv == "" {
		cfg.APIKeyEnv = defaultKeyEnv(cfg.Provider)
	}
	key := os.Getenv(cfg.APIKeyEnv)
	if key == "" {
		return nil, fmt.Errorf("llm: missing API key in env %s", cfg.APIKeyEnv)
	}

	var (
		model llms.Model
		err   error
	)
	switch cfg.Provider {
	case ProviderGemini:
		if cfg.Model == "" {
			cfg.Model = DefaultModel
		}
		model, err = googleai.New(ctx, googleai.WithAPIKey(key), googleai.WithDefaultModel(cfg.Model))
	case ProviderOpenAI:
		opts := []openai.Option{openai.WithToken(key)}
		if cfg.Model != "" {
			opts = append(opts, openai.WithModel(cfg.Model))
		}
		if cfg.BaseURL != "" {
			opts = append(opts, openai.WithBaseURL(strings.TrimRight(cfg.BaseURL, "/")))
		}
		model, err = openai.New(opts...)
	default:
		return nil, fmt.Errorf("llm: unknown provider %q", cfg.Provider)
	}
	if err != nil {
		return nil, fmt.Errorf("llm: creating %s client: %w", cfg.Provider, err)
	}
	return NewGenerator(model, cfg.Provider+":"+cfg.Model, cfg.Timeout, cfg.Temperature), nil
}

// NewGenerator wraps an existing model.
func NewGenerator(model llms.Model, name string, timeout time.Duration, temperature float64) *Generator {
	return &Generator{model: model, name: name, timeout: timeout, temperature: temperature}
}

// Generate fails with domain.ErrGeneration on any model error or empty reply.
func (g *Generator) Generate(ctx context.Context, prompt string) (string, error) {
	if g.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, g.timeout)
		defer cancel()
	}
	out, err := llms.GenerateFromSinglePrompt(ctx, g.model, prompt, llms.WithTemperature(g.temperature))
	if err != nil {
		return "", fmt.Errorf("%w: %s: %w", domain.ErrGeneration, g.name, err)
	}
	if strings.TrimSpace(out) == "" {
		return "", fmt.Errorf("%w: %s returned no text", domain.ErrGeneration, g.name)
	}
	return out, nil
}

func defaultKeyEnv(provider string) string {
	if provider == ProviderOpenAI {
		return "OPENAI_API_KEY"
	}
	return "GEMINI_API_KEY"
}
