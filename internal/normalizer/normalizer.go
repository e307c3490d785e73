// Package normalizer strips extraction artifacts and boilerplate from raw text.
package normalizer

import (
	"regexp"
	"strings"

	"golang.org/x/text/unicode/norm"
)

// glyphs are removed outright. The last two are UTF-8 bullets decoded as
// Windows-1252.
var glyphs = strings.NewReplacer(
	"\u00ad", "",
	"\u2022", "",
	"\uf0b7", "",
	"\u200b", "",
	"\ufeff", "",
	"\u00ef\u201a\u00b7", "",
	"\u00e2\u20ac\u00a2", "",
)

var (
	pageNumberLineRe = regexp.MustCompile(`(?m)^[ \t\r]*\d+[ \t\r]*$`)
	pageMarkerRe     = regexp.MustCompile(`(?i)\bpage\s*\d+\b`)
	copyrightRe      = regexp.MustCompile(`(?i)\bcopyright\b.*?\b\d{4}\b`)
	whitespaceRe     = regexp.MustCompile(`[\s\p{Z}]+`)
)

// Normalize returns text with glyph noise, page numbers and copyright lines
// removed and whitespace collapsed. Normalize(Normalize(s)) == Normalize(s).
func Normalize(text string) string {
	out := pass(text)
	for {
		next := pass(out)
		if next == out {
			return out
		}
		out = next
	}
}

func pass(text string) string {
	text = norm.NFC.String(text)
	text = glyphs.Replace(text)
	text = pageNumberLineRe.ReplaceAllString(text, "")
	text = pageMarkerRe.ReplaceAllString(text, "")
	text = copyrightRe.ReplaceAllString(text, "")
	text = whitespaceRe.ReplaceAllString(text, " ")
	return strings.TrimSpace(text)
}
