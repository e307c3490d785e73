// Package config loads application settings from YAML with environment overrides.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	kyaml "github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/rawbytes"
	"github.com/knadh/koanf/v2"
	"gopkg.in/yaml.v3"

	"github.com/kxddry/rag-qa/internal/embedding"
	"github.com/kxddry/rag-qa/internal/vectorstore/chromem"
)

// EnvPrefix prefixes overriding environment variables. Sections and fields
// are separated by a double underscore: RAG_INDEX__CHUNK_SIZE sets
// index.chunk_size.
const EnvPrefix = "RAG_"

// Retriever kinds.
const (
	RetrieverVector  = "vector"
	RetrieverKeyword = "keyword"
)

// Translation modes.
const (
	TranslateNone       = "none"
	TranslateDictionary = "dictionary"
	TranslateLLM        = "llm"
	TranslateChain      = "chain"
)

// LogConfig controls the zap logger.
type LogConfig struct {
	Level  string `koanf:"level" yaml:"level"`
	Format string `koanf:"format" yaml:"format"`
}

// IndexConfig locates the persisted index and sets chunking parameters.
type IndexConfig struct {
	Path             string        `koanf:"path" yaml:"path"`
	Collection       string        `koanf:"collection" yaml:"collection"`
	Compress         bool          `koanf:"compress" yaml:"compress"`
	LockTimeout      time.Duration `koanf:"lock_timeout" yaml:"lock_timeout"`
	ChunkSize        int           `koanf:"chunk_size" yaml:"chunk_size"`
	Overlap          int           `koanf:"overlap" yaml:"overlap"`
	ExportPath       string        `koanf:"export_path" yaml:"export_path"`
	SummarySentences int           `koanf:"summary_sentences" yaml:"summary_sentences"`
}

// LocalEmbeddingConfig configures an in-process embedder.
type LocalEmbeddingConfig struct {
	Backend   string `koanf:"backend" yaml:"backend"`
	Model     string `koanf:"model" yaml:"model,omitempty"`
	Dimension int    `koanf:"dimension" yaml:"dimension"`
	CacheDir  string `koanf:"cache_dir" yaml:"cache_dir,omitempty"`
}

// RemoteEmbeddingConfig configures an OpenAI-compatible embedding API.
type RemoteEmbeddingConfig struct {
	BaseURL           string        `koanf:"base_url" yaml:"base_url"`
	APIKeyEnv         string        `koanf:"api_key_env" yaml:"api_key_env"`
	Model             string        `koanf:"model" yaml:"model"`
	Dimension         int           `koanf:"dimension" yaml:"dimension,omitempty"`
	Timeout           time.Duration `koanf:"timeout" yaml:"timeout"`
	RequestsPerSecond float64       `koanf:"requests_per_second" yaml:"requests_per_second,omitempty"`
}

// EmbeddingConfig selects the embedder variant.
type EmbeddingConfig struct {
	Kind   string                `koanf:"kind" yaml:"kind"`
	Local  LocalEmbeddingConfig  `koanf:"local" yaml:"local"`
	Remote RemoteEmbeddingConfig `koanf:"remote" yaml:"remote"`
}

// RetrievalConfig selects the retriever.
type RetrievalConfig struct {
	Kind string `koanf:"kind" yaml:"kind"`
	TopK int    `koanf:"top_k" yaml:"top_k"`
	// FallbackToKeyword serves vector queries from the export while no index exists.
	FallbackToKeyword bool `koanf:"fallback_to_keyword" yaml:"fallback_to_keyword"`
}

// TranslationConfig configures query translation.
type TranslationConfig struct {
	Mode               string        `koanf:"mode" yaml:"mode"`
	From               string        `koanf:"from" yaml:"from"`
	To                 string        `koanf:"to" yaml:"to"`
	UseTranslatedQuery bool          `koanf:"use_translated_query" yaml:"use_translated_query"`
	Timeout            time.Duration `koanf:"timeout" yaml:"timeout"`
}

// GenerationConfig configures the answering model and prompt.
type GenerationConfig struct {
	Provider       string        `koanf:"provider" yaml:"provider"`
	Model          string        `koanf:"model" yaml:"model"`
	APIKeyEnv      string        `koanf:"api_key_env" yaml:"api_key_env"`
	BaseURL        string        `koanf:"base_url" yaml:"base_url,omitempty"`
	Timeout        time.Duration `koanf:"timeout" yaml:"timeout"`
	Temperature    float64       `koanf:"temperature" yaml:"temperature"`
	Persona        string        `koanf:"persona" yaml:"persona,omitempty"`
	AnswerLanguage string        `koanf:"answer_language" yaml:"answer_language"`
}

// AppConfig is the root application configuration structure.
type AppConfig struct {
	Log         LogConfig         `koanf:"log" yaml:"log"`
	Index       IndexConfig       `koanf:"index" yaml:"index"`
	Embedding   EmbeddingConfig   `koanf:"embedding" yaml:"embedding"`
	Retrieval   RetrievalConfig   `koanf:"retrieval" yaml:"retrieval"`
	Translation TranslationConfig `koanf:"translation" yaml:"translation"`
	Generation  GenerationConfig  `koanf:"generation" yaml:"generation"`
}

// Load reads path, overrides it with RAG_ environment variables and applies
// defaults. A missing file yields the defaults plus overrides.
func Load(path string) (*AppConfig, error) {
	k := koanf.New(".")
	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := k.Load(rawbytes.Provider(data), kyaml.Parser()); err != nil {
			return nil, fmt.Errorf("parsing config %s: %w", path, err)
		}
	case errors.Is(err, os.ErrNotExist):
	default:
		return nil, fmt.Errorf("reading config %s: %w", path, err)
	}
	return finish(k)
}

func finish(k *koanf.Koanf) (*AppConfig, error) {
	if err := k.Load(env.Provider(EnvPrefix, ".", envKey), nil); err != nil {
		return nil, fmt.Errorf("loading environment: %w", err)
	}
	cfg := defaultConfig()
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("decoding config: %w", err)
	}
	applyDefaults(cfg)
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// envKey maps RAG_EMBEDDING__LOCAL__DIMENSION to embedding.local.dimension.
func envKey(s string) string {
	s = strings.ToLower(strings.TrimPrefix(s, EnvPrefix))
	return strings.ReplaceAll(s, "__", ".")
}

// LoadDefault tries ./config.yaml first, then ~/.config/rag/config.yaml.
// If neither exists, it writes defaults to ~/.config/rag/config.yaml and returns them.
func LoadDefault() (*AppConfig, string, error) {
	cwdPath := "config.yaml"
	if _, err := os.Stat(cwdPath); err == nil {
		cfg, err := Load(cwdPath)
		return cfg, cwdPath, err
	}
	userPath, err := defaultUserConfigPath()
	if err != nil {
		return nil, "", err
	}
	if _, err := os.Stat(userPath); err == nil {
		cfg, err := Load(userPath)
		return cfg, userPath, err
	}
	if err := Save(userPath, defaultConfig()); err != nil {
		return nil, "", err
	}
	cfg, err := Load(userPath)
	return cfg, userPath, err
}

// Save writes the config to the given path, creating directories as needed.
func Save(path string, cfg *AppConfig) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

// Validate rejects settings the pipeline cannot run with.
func (c *AppConfig) Validate() error {
	if c.Index.ChunkSize <= 0 {
		return fmt.Errorf("index.chunk_size must be positive, got %d", c.Index.ChunkSize)
	}
	if c.Index.Overlap < 0 || c.Index.Overlap >= c.Index.ChunkSize {
		return fmt.Errorf("index.overlap must be in [0, chunk_size), got %d", c.Index.Overlap)
	}
	if c.Retrieval.TopK <= 0 {
		return fmt.Errorf("retrieval.top_k must be positive, got %d", c.Retrieval.TopK)
	}
	switch embedding.Kind(c.Embedding.Kind) {
	case embedding.KindLocal:
		switch c.Embedding.Local.Backend {
		case embedding.BackendHashing, embedding.BackendFastEmbed:
		default:
			return fmt.Errorf("unknown embedding.local.backend %q", c.Embedding.Local.Backend)
		}
	case embedding.KindRemote:
	default:
		return fmt.Errorf("unknown embedding.kind %q", c.Embedding.Kind)
	}
	switch c.Retrieval.Kind {
	case RetrieverVector, RetrieverKeyword:
	default:
		return fmt.Errorf("unknown retrieval.kind %q", c.Retrieval.Kind)
	}
	switch c.Translation.Mode {
	case TranslateNone, TranslateDictionary, TranslateLLM, TranslateChain:
	default:
		return fmt.Errorf("unknown translation.mode %q", c.Translation.Mode)
	}
	if (c.Retrieval.Kind == RetrieverKeyword || c.Retrieval.FallbackToKeyword) && c.Index.ExportPath == "" {
		return errors.New("keyword retrieval needs index.export_path")
	}
	return nil
}

// EmbeddingProvider converts the embedding section for embedding.New.
func (c *AppConfig) EmbeddingProvider() embedding.Config {
	e := c.Embedding
	return embedding.Config{
		Kind: embedding.Kind(e.Kind),
		Local: embedding.LocalConfig{
			Backend:   e.Local.Backend,
			Model:     e.Local.Model,
			Dimension: e.Local.Dimension,
			CacheDir:  e.Local.CacheDir,
		},
		Remote: embedding.RemoteConfig{
			BaseURL:           e.Remote.BaseURL,
			APIKeyEnv:         e.Remote.APIKeyEnv,
			Model:             e.Remote.Model,
			Dimension:         e.Remote.Dimension,
			Timeout:           e.Remote.Timeout,
			RequestsPerSecond: e.Remote.RequestsPerSecond,
		},
	}
}

// Store converts the index section for the chromem store.
func (c *AppConfig) Store() chromem.Config {
	return chromem.Config{
		Path:        c.Index.Path,
		Collection:  c.Index.Collection,
		Compress:    c.Index.Compress,
		LockTimeout: c.Index.LockTimeout,
	}
}

func defaultUserConfigPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", "rag", "config.yaml"), nil
}

func defaultConfig() *AppConfig {
	return &AppConfig{
		Log: LogConfig{Level: "info", Format: "console"},
		Index: IndexConfig{
			Path:             "chroma_db",
			Collection:       "corpus",
			LockTimeout:      5 * time.Second,
			ChunkSize:        600,
			Overlap:          60,
			ExportPath:       "documents.json",
			SummarySentences: 5,
		},
		Embedding: EmbeddingConfig{
			Kind:  string(embedding.KindLocal),
			Local: LocalEmbeddingConfig{Backend: embedding.BackendHashing, Dimension: 384},
			Remote: RemoteEmbeddingConfig{
				BaseURL:   "https://api.openai.com/v1",
				APIKeyEnv: "OPENAI_API_KEY",
				Model:     "text-embedding-3-small",
				Timeout:   30 * time.Second,
			},
		},
		Retrieval: RetrievalConfig{Kind: RetrieverVector, TopK: 3},
		Translation: TranslationConfig{
			Mode:               TranslateDictionary,
			From:               "Turkish",
			To:                 "English",
			UseTranslatedQuery: true,
			Timeout:            15 * time.Second,
		},
		Generation: GenerationConfig{
			Provider:       "gemini",
			Model:          "gemini-2.5-flash",
			APIKeyEnv:      "GEMINI_API_KEY",
			Timeout:        60 * time.Second,
			Temperature:    0.2,
			AnswerLanguage: "Turkish",
		},
	}
}

// applyDefaults fills fields a file may have blanked explicitly.
func applyDefaults(cfg *AppConfig) {
	d := defaultConfig()
	if cfg.Log.Level == "" {
		cfg.Log.Level = d.Log.Level
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = d.Log.Format
	}
	if cfg.Index.Path == "" {
		cfg.Index.Path = d.Index.Path
	}
	if cfg.Index.Collection == "" {
		cfg.Index.Collection = d.Index.Collection
	}
	if cfg.Embedding.Kind == "" {
		cfg.Embedding.Kind = d.Embedding.Kind
	}
	if cfg.Embedding.Local.Backend == "" {
		cfg.Embedding.Local.Backend = d.Embedding.Local.Backend
	}
	if cfg.Retrieval.Kind == "" {
		cfg.Retrieval.Kind = d.Retrieval.Kind
	}
	if cfg.Translation.Mode == "" {
		cfg.Translation.Mode = d.Translation.Mode
	}
}
