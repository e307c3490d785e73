// Package summarizer condenses a corpus into a few representative sentences.
package summarizer

import (
	"math"
	"regexp"
	"sort"
	"strings"
)

// DefaultSentences is used when Summarize is given a non-positive count.
const DefaultSentences = 5

var (
	tokenPattern    = regexp.MustCompile(`[\p{L}\p{N}]+(?:['’][\p{L}\p{N}]+)*`)
	sentencePattern = regexp.MustCompile(`[^.!?]+[.!?]+`)
)

// Frequency ranks sentences by the normalized frequency of their content words.
type Frequency struct {
	stopwords map[string]struct{}
}

// NewFrequency creates a frequency-based sentence ranker.
func NewFrequency() *Frequency {
	return &Frequency{stopwords: defaultStopwords()}
}

// Summarize returns up to maxSentences top-ranked sentences in document order.
// Text without sentence punctuation is returned trimmed.
func (f *Frequency) Summarize(text string, maxSentences int) (string, error) {
	if maxSentences <= 0 {
		maxSentences = DefaultSentences
	}
	sentences := sentencePattern.FindAllString(text, -1)
	if len(sentences) == 0 {
		return strings.TrimSpace(text), nil
	}

	tokens := make([][]string, len(sentences))
	freq := make(map[string]float64)
	for i, sent := range sentences {
		tokens[i] = tokenPattern.FindAllString(strings.ToLower(sent), -1)
		for _, tok := range tokens[i] {
			if _, stop := f.stopwords[tok]; !stop {
				freq[tok]++
			}
		}
	}
	var maxF float64
	for _, v := range freq {
		maxF = math.Max(maxF, v)
	}

	type ranked struct {
		idx   int
		score float64
	}
	scores := make([]ranked, len(sentences))
	for i := range sentences {
		var score float64
		for _, tok := range tokens[i] {
			score += freq[tok] / maxF
		}
		// length-normalized so long sentences do not always win
		if n := len(tokens[i]); n > 0 && maxF > 0 {
			score /= math.Sqrt(float64(n))
		} else {
			score = 0
		}
		scores[i] = ranked{i, score}
	}
	sort.SliceStable(scores, func(i, j int) bool { return scores[i].score > scores[j].score })

	if maxSentences > len(scores) {
		maxSentences = len(scores)
	}
	selected := make([]int, maxSentences)
	for i := range selected {
		selected[i] = scores[i].idx
	}
	sort.Ints(selected)

	out := make([]string, 0, len(selected))
	for _, idx := range selected {
		out = append(out, strings.TrimSpace(sentences[idx]))
	}
	return strings.Join(out, " "), nil
}

func defaultStopwords() map[string]struct{} {
	words := []string{
		"a", "an", "the", "and", "or", "but", "if", "then", "else", "for", "to", "of", "in", "on", "at", "by", "with", "as", "is", "are", "was", "were", "be", "been", "being", "it", "its", "this", "that", "these", "those", "from", "up", "down", "over", "under", "again", "further", "than", "so", "such", "into", "about", "between", "through", "during", "before", "after", "above", "below", "out", "off", "own", "same", "too", "very", "can", "will", "just", "should", "now",
	}
	m := make(map[string]struct{}, len(words))
	for _, w := range words {
		m[w] = struct{}{}
	}
	return m
}
