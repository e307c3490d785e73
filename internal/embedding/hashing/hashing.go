// Package hashing implements a local, in-process embedding model based on
// feature hashing. It needs no model files and no network, so index and
// query vectors are always produced by the same function.
package hashing

import (
	"context"
	"fmt"
	"math"
	"regexp"
	"strings"

	"github.com/cespare/xxhash/v2"
)

// Name is the provider identifier recorded in indexes built with this model.
const Name = "hashing-v1"

// DefaultDimension matches the width of common sentence-transformer models.
const DefaultDimension = 384

// Embedder hashes word tokens into a fixed number of buckets.
// Token weights are sublinear in term frequency and the result is L2 normalized.
type Embedder struct {
	dimension    int
	tokenPattern *regexp.Regexp
	stopwords    map[string]struct{}
}

// NewEmbedder creates an embedder producing vectors of the given dimension.
func NewEmbedder(dimension int) (*Embedder, error) {
	if dimension <= 0 {
		return nil, fmt.Errorf("hashing embedder: dimension must be positive, got %d", dimension)
	}
	return &Embedder{
		dimension:    dimension,
		tokenPattern: regexp.MustCompile(`[\p{L}\p{N}]+(?:['’][\p{L}\p{N}]+)*`),
		stopwords:    defaultStopwords(),
	}, nil
}

// Name returns the identifier of this embedder implementation.
func (e *Embedder) Name() string { return Name }

// Dimension returns the dimensionality of the produced embedding vectors.
func (e *Embedder) Dimension() int { return e.dimension }

// Embed computes the hashed embedding for the given text. Text without any
// token falls back to hashing its trimmed lowercase form; blank text maps to
// the first basis vector.
func (e *Embedder) Embed(_ context.Context, text string) ([]float32, error) {
	vec := make([]float64, e.dimension)
	counts := make(map[string]int)
	for _, tok := range e.tokenize(text) {
		counts[tok]++
	}
	if len(counts) == 0 {
		if whole := strings.ToLower(strings.TrimSpace(text)); whole != "" {
			counts[whole] = 1
		}
	}
	if len(counts) == 0 {
		out := make([]float32, e.dimension)
		out[0] = 1
		return out, nil
	}
	for tok, count := range counts {
		h := xxhash.Sum64String(tok)
		idx := int(h % uint64(e.dimension))
		w := 1 + math.Log(float64(count))
		if h>>63 == 1 {
			w = -w
		}
		vec[idx] += w
	}
	// L2 normalize
	norm := 0.0
	for _, v := range vec {
		norm += v * v
	}
	norm = math.Sqrt(norm)
	out := make([]float32, e.dimension)
	if norm == 0 {
		// every token cancelled out
		out[0] = 1
		return out, nil
	}
	for i, v := range vec {
		out[i] = float32(v / norm)
	}
	return out, nil
}

func (e *Embedder) tokenize(text string) []string {
	lower := strings.ToLower(text)
	raw := e.tokenPattern.FindAllString(lower, -1)
	if len(raw) == 0 {
		return nil
	}
	out := raw[:0]
	for _, t := range raw {
		if _, isStop := e.stopwords[t]; isStop {
			continue
		}
		out = append(out, t)
	}
	return out
}

func defaultStopwords() map[string]struct{} {
	words := []string{
		"a", "an", "the", "and", "or", "but", "if", "then", "else", "for", "to", "of", "in", "on", "at", "by", "with", "as", "is", "are", "was", "were", "be", "been", "being", "it", "this", "that", "these", "those", "from", "up", "down", "over", "under", "again", "further", "than", "so", "such", "into", "about", "between", "through", "during", "before", "after", "above", "below", "out", "off", "own", "same", "too", "very", "can", "will", "just", "don", "should", "now",
	}
	m := make(map[string]struct{}, len(words))
	for _, w := range words {
		m[w] = struct{}{}
	}
	return m
}
