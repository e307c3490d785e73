package translate

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/kxddry/rag-qa/internal/domain"
)

const literalPrompt = `Translate the following %[1]s text into %[2]s EXACTLY word for word.
Do NOT rewrite, shorten, expand, paraphrase, or change the structure.
Do NOT add or remove any meaning.
Return ONLY the literal %[2]s translation.

%[1]s:
%[3]s

%[2]s (literal):`

// LLM translates through a text generation model.
type LLM struct {
	gen     domain.Generator
	from    string
	to      string
	timeout time.Duration
	logger  *zap.Logger
}

var _ domain.Translator = (*LLM)(nil)

// LLMConfig names the languages and bounds each call.
type LLMConfig struct {
	From    string
	To      string
	Timeout time.Duration
}

func NewLLM(gen domain.Generator, cfg LLMConfig, logger *zap.Logger) *LLM {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.From == "" {
		cfg.From = "Turkish"
	}
	if cfg.To == "" {
		cfg.To = "English"
	}
	return &LLM{gen: gen, from: cfg.From, to: cfg.To, timeout: cfg.Timeout, logger: logger}
}

// Translate returns text unchanged when the model fails or replies with nothing.
func (l *LLM) Translate(ctx context.Context, text string) string {
	if strings.TrimSpace(text) == "" {
		return text
	}
	if l.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, l.timeout)
		defer cancel()
	}
	out, err := l.gen.Generate(ctx, fmt.Sprintf(literalPrompt, strings.ToUpper(l.from), strings.ToUpper(l.to), text))
	if err != nil {
		l.logger.Warn("translation failed, using original query", zap.Error(err))
		return text
	}
	out = strings.TrimSpace(out)
	if out == "" {
		l.logger.Warn("translation returned no text, using original query")
		return text
	}
	return out
}
