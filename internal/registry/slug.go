package registry

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Slugify converts heading text into its anchor form using GitHub-style
// rules: diacritics folded away, lowercased, punctuation dropped, whitespace
// collapsed to single hyphens.
func Slugify(text string) string {
	// Fold diacritics: decompose, strip combining marks, recompose.
	fold := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	folded, _, err := transform.String(fold, text)
	if err != nil {
		folded = text
	}

	var b strings.Builder
	b.Grow(len(folded))

	lastHyphen := true // suppress leading hyphens
	for _, r := range strings.ToLower(folded) {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			b.WriteRune(r)
			lastHyphen = false
		case unicode.IsSpace(r) || r == '-' || r == '_':
			if !lastHyphen {
				b.WriteByte('-')
				lastHyphen = true
			}
		}
		// Everything else (punctuation, symbols) is dropped.
	}

	return strings.TrimRight(b.String(), "-")
}
