package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"go.uber.org/zap"

	"github.com/kxddry/rag-qa/internal/config"
	"github.com/kxddry/rag-qa/internal/domain"
	"github.com/kxddry/rag-qa/internal/embedding"
	"github.com/kxddry/rag-qa/internal/export"
	"github.com/kxddry/rag-qa/internal/lazy"
	"github.com/kxddry/rag-qa/internal/llm"
	"github.com/kxddry/rag-qa/internal/logging"
	"github.com/kxddry/rag-qa/internal/retriever/keyword"
	"github.com/kxddry/rag-qa/internal/retriever/vector"
	"github.com/kxddry/rag-qa/internal/service"
	"github.com/kxddry/rag-qa/internal/translate"
	"github.com/kxddry/rag-qa/internal/vectorstore/chromem"
)

// app holds the process-wide shared resources. Each is created on first use.
type app struct {
	cfg      *config.AppConfig
	log      *zap.Logger
	embedder *lazy.Value[domain.Embedder]
	store    *lazy.Value[domain.VectorStore]
	corpus   *lazy.Value[[]domain.Chunk]
}

func newApp() (*app, error) {
	var (
		cfg *config.AppConfig
		err error
	)
	if cfgPath == "" {
		cfg, _, err = config.LoadDefault()
	} else {
		cfg, err = config.Load(cfgPath)
	}
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}
	if logLevel != "" {
		cfg.Log.Level = logLevel
	}
	log, err := logging.New(cfg.Log.Level, cfg.Log.Format, os.Stderr)
	if err != nil {
		return nil, err
	}

	a := &app{cfg: cfg, log: log}
	a.embedder = lazy.New(func(context.Context) (domain.Embedder, error) {
		return embedding.New(cfg.EmbeddingProvider())
	}, func(e domain.Embedder) error {
		if c, ok := e.(io.Closer); ok {
			return c.Close()
		}
		return nil
	})
	a.store = lazy.New(func(ctx context.Context) (domain.VectorStore, error) {
		emb, err := a.embedder.Get(ctx)
		if err != nil {
			return nil, err
		}
		s, err := chromem.Open(ctx, cfg.Store(), emb, log)
		if err != nil {
			return nil, err
		}
		return s, nil
	}, func(s domain.VectorStore) error { return s.Close() })
	a.corpus = lazy.New(func(context.Context) ([]domain.Chunk, error) {
		return export.Read(cfg.Index.ExportPath)
	}, nil)
	return a, nil
}

func (a *app) close() {
	if err := a.store.Close(); err != nil {
		a.log.Warn("closing index", zap.Error(err))
	}
	if err := a.embedder.Close(); err != nil {
		a.log.Warn("closing embedder", zap.Error(err))
	}
	_ = a.log.Sync()
}

func (a *app) retriever() domain.Retriever {
	kw := keyword.NewRetriever(a.corpus)
	if a.cfg.Retrieval.Kind == config.RetrieverKeyword {
		return kw
	}
	var opts []vector.Option
	if a.cfg.Retrieval.FallbackToKeyword {
		opts = append(opts, vector.WithFallback(kw))
	}
	return vector.NewRetriever(a.store, a.log, opts...)
}

// generator falls back to one that always fails when the model cannot be
// configured, so retrieval still works and sources are shown.
func (a *app) generator(ctx context.Context) domain.Generator {
	g := a.cfg.Generation
	gen, err := llm.New(ctx, llm.Config{
		Provider:    g.Provider,
		Model:       g.Model,
		APIKeyEnv:   g.APIKeyEnv,
		BaseURL:     g.BaseURL,
		Timeout:     g.Timeout,
		Temperature: g.Temperature,
	})
	if err != nil {
		a.log.Warn("generation unavailable", zap.Error(err))
		return unavailableGenerator{err: err}
	}
	return gen
}

func (a *app) translator(gen domain.Generator) domain.Translator {
	t := a.cfg.Translation
	llmTranslator := func() domain.Translator {
		return translate.NewLLM(gen, translate.LLMConfig{From: t.From, To: t.To, Timeout: t.Timeout}, a.log)
	}
	switch t.Mode {
	case config.TranslateDictionary:
		return translate.NewAstrology()
	case config.TranslateLLM:
		return llmTranslator()
	case config.TranslateChain:
		return translate.Chain{translate.NewAstrology(), llmTranslator()}
	default:
		return nil
	}
}

func (a *app) askService(ctx context.Context) *service.RAGService {
	gen := a.generator(ctx)
	return service.New(a.retriever(), a.translator(gen), gen, service.Config{
		TopK:                    a.cfg.Retrieval.TopK,
		Persona:                 a.cfg.Generation.Persona,
		AnswerLanguage:          a.cfg.Generation.AnswerLanguage,
		RetrieveWithTranslation: a.cfg.Translation.UseTranslatedQuery,
	}, a.log)
}

type unavailableGenerator struct{ err error }

func (u unavailableGenerator) Generate(context.Context, string) (string, error) {
	return "", fmt.Errorf("%w: %w", domain.ErrGeneration, u.err)
}
