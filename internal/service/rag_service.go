// Package service answers questions from retrieved corpus context.
package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/kxddry/rag-qa/internal/domain"
)

// ContextSeparator joins retrieved chunks in the prompt.
const ContextSeparator = "\n\n---\n\n"

// DefaultTopK is the number of chunks retrieved per question.
const DefaultTopK = 3

// DefaultPersona instructs the model how to answer.
const DefaultPersona = "You are an astrology expert. Answer the question using only the information in the context below. If the context does not contain the answer, say that you do not know."

// State is a step of answering one question.
type State int

const (
	Idle State = iota
	Translating
	Retrieving
	NoResults
	ContextAssembled
	Generating
	Answered
	GenerationFailed
)

var stateNames = [...]string{"idle", "translating", "retrieving", "no_results", "context_assembled", "generating", "answered", "generation_failed"}

func (s State) String() string {
	if s < 0 || int(s) >= len(stateNames) {
		return "unknown"
	}
	return stateNames[s]
}

// Terminal reports whether no further step follows s.
func (s State) Terminal() bool {
	return s == NoResults || s == Answered || s == GenerationFailed
}

// Config tunes the orchestrator.
type Config struct {
	TopK int
	// Persona opens every prompt.
	Persona string
	// AnswerLanguage, when set, asks the model to answer in that language.
	AnswerLanguage string
	// RetrieveWithTranslation retrieves with the translated query instead of
	// the original question.
	RetrieveWithTranslation bool
}

// Response is the outcome of Ask. Answer is nil unless State is Answered.
type Response struct {
	State         State
	Query         string
	Answer        *domain.Answer
	Results       []domain.RetrievalResult
	GenerationErr error
}

// RAGService runs translate, retrieve, assemble and generate for one question.
type RAGService struct {
	retriever  domain.Retriever
	translator domain.Translator
	generator  domain.Generator
	cfg        Config
	logger     *zap.Logger
}

// New wires the orchestrator. translator may be nil.
func New(retriever domain.Retriever, translator domain.Translator, generator domain.Generator, cfg Config, logger *zap.Logger) *RAGService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.TopK <= 0 {
		cfg.TopK = DefaultTopK
	}
	if cfg.Persona == "" {
		cfg.Persona = DefaultPersona
	}
	return &RAGService{retriever: retriever, translator: translator, generator: generator, cfg: cfg, logger: logger}
}

// Ask answers question. Translation and generation failures are recovered
// and reported through Response; retrieval failures are returned as errors,
// and domain.IsConfigFault tells misconfiguration apart from outages.
func (s *RAGService) Ask(ctx context.Context, question string) (Response, error) {
	resp := Response{State: Idle, Query: question}
	if strings.TrimSpace(question) == "" {
		s.transition(&resp, NoResults)
		return resp, nil
	}

	if s.translator != nil {
		s.transition(&resp, Translating)
		translated := s.translator.Translate(ctx, question)
		if s.cfg.RetrieveWithTranslation {
			resp.Query = translated
		}
		s.logger.Debug("query translated", zap.String("question", question), zap.String("translated", translated))
	}

	s.transition(&resp, Retrieving)
	results, err := s.retriever.Retrieve(ctx, resp.Query, s.cfg.TopK)
	if err != nil {
		if domain.IsConfigFault(err) {
			return resp, fmt.Errorf("index misconfigured: %w", err)
		}
		return resp, fmt.Errorf("retrieval failed: %w", err)
	}
	if len(results) == 0 {
		resp.Results = []domain.RetrievalResult{}
		s.transition(&resp, NoResults)
		return resp, nil
	}
	resp.Results = results

	prompt := s.buildPrompt(AssembleContext(results), question)
	s.transition(&resp, ContextAssembled)

	s.transition(&resp, Generating)
	text, err := s.generator.Generate(ctx, prompt)
	if err != nil {
		if !errors.Is(err, domain.ErrGeneration) {
			err = fmt.Errorf("%w: %w", domain.ErrGeneration, err)
		}
		resp.GenerationErr = err
		s.logger.Warn("generation failed, returning sources only", zap.Error(err), zap.Int("sources", len(results)))
		s.transition(&resp, GenerationFailed)
		return resp, nil
	}
	resp.Answer = &domain.Answer{Text: strings.TrimSpace(text), Sources: results}
	s.transition(&resp, Answered)
	return resp, nil
}

// AssembleContext joins chunk contents in retrieval order.
func AssembleContext(results []domain.RetrievalResult) string {
	parts := make([]string, len(results))
	for i, r := range results {
		parts[i] = r.Chunk.Content
	}
	return strings.Join(parts, ContextSeparator)
}

func (s *RAGService) buildPrompt(contextText, question string) string {
	var b strings.Builder
	b.WriteString(s.cfg.Persona)
	if s.cfg.AnswerLanguage != "" {
		fmt.Fprintf(&b, " Answer in %s.", s.cfg.AnswerLanguage)
	}
	b.WriteString("\n\nCONTEXT:\n")
	b.WriteString(contextText)
	b.WriteString("\n\nQUESTION: ")
	b.WriteString(question)
	b.WriteString("\n\nANSWER:")
	return b.String()
}

func (s *RAGService) transition(resp *Response, to State) {
	s.logger.Debug("ask state", zap.Stringer("from", resp.State), zap.Stringer("to", to))
	resp.State = to
}
