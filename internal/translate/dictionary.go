// Package translate rewrites queries into the language of the corpus. Every
// translator degrades to returning its input unchanged.
package translate

import (
	"context"
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/kxddry/rag-qa/internal/domain"
)

// Dictionary substitutes known terms. Matching is case-insensitive under the
// source language's casing rules and only happens on whole words; phrases of
// several words win over their prefixes.
type Dictionary struct {
	source   language.Tag
	entries  map[string]string
	maxWords int
}

var _ domain.Translator = (*Dictionary)(nil)

// NewDictionary builds a dictionary for terms written in source.
func NewDictionary(source language.Tag, terms map[string]string) *Dictionary {
	d := &Dictionary{
		source:  source,
		entries: make(map[string]string, len(terms)),
	}
	lower := cases.Lower(source)
	for from, to := range terms {
		words := strings.Fields(lower.String(from))
		if len(words) == 0 {
			continue
		}
		d.entries[strings.Join(words, " ")] = to
		if len(words) > d.maxWords {
			d.maxWords = len(words)
		}
	}
	return d
}

// Translate never fails.
func (d *Dictionary) Translate(_ context.Context, text string) string {
	// Casers keep state, so each call gets its own.
	lower := cases.Lower(d.source)
	toks := tokenize(text)
	var b strings.Builder
	for i := 0; i < len(toks); {
		if !toks[i].word {
			b.WriteString(toks[i].text)
			i++
			continue
		}
		if to, next, ok := d.longestMatch(lower, toks, i); ok {
			b.WriteString(to)
			i = next
			continue
		}
		b.WriteString(toks[i].text)
		i++
	}
	return b.String()
}

// longestMatch tries phrases starting at word token i, longest first. Words of
// a phrase may only be separated by whitespace.
func (d *Dictionary) longestMatch(lower cases.Caser, toks []token, i int) (string, int, bool) {
	words := make([]string, 0, d.maxWords)
	ends := make([]int, 0, d.maxWords)
	j := i
	for len(words) < d.maxWords && j < len(toks) {
		words = append(words, lower.String(toks[j].text))
		ends = append(ends, j+1)
		if j+2 >= len(toks) || !isSpace(toks[j+1].text) || !toks[j+2].word {
			break
		}
		j += 2
	}
	for n := len(words); n > 0; n-- {
		if to, ok := d.entries[strings.Join(words[:n], " ")]; ok {
			return to, ends[n-1], true
		}
	}
	return "", 0, false
}

type token struct {
	text string
	word bool
}

// tokenize splits text into alternating runs of word runes (letters, digits,
// combining marks) and everything else.
func tokenize(text string) []token {
	var toks []token
	start := 0
	inWord := false
	for i, r := range text {
		w := isWordRune(r)
		if i > start && w != inWord {
			toks = append(toks, token{text: text[start:i], word: inWord})
			start = i
		}
		inWord = w
	}
	if start < len(text) {
		toks = append(toks, token{text: text[start:], word: inWord})
	}
	return toks
}

func isWordRune(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r) || unicode.Is(unicode.Mn, r)
}

func isSpace(s string) bool {
	return strings.TrimSpace(s) == ""
}
