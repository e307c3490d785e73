package translate

import (
	"context"

	"github.com/kxddry/rag-qa/internal/domain"
)

// Chain applies translators in order, each to the output of the previous one.
type Chain []domain.Translator

func (c Chain) Translate(ctx context.Context, text string) string {
	for _, t := range c {
		text = t.Translate(ctx, text)
	}
	return text
}
