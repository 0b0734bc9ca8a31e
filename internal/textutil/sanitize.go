package textutil

import (
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Words splits s into words the way display and file naming expect:
// separators and punctuation break words, apostrophes are dropped, and
// lower-to-upper or letter-to-digit transitions start a new word.
func Words(s string) []string {
	s = strings.NewReplacer("'", "", "’", "").Replace(s)
	var (
		words   []string
		current []rune
		prev    rune
	)
	flush := func() {
		if len(current) > 0 {
			words = append(words, string(current))
			current = current[:0]
		}
	}
	for _, r := range s {
		if !unicode.IsLetter(r) && !unicode.IsDigit(r) {
			flush()
			prev = 0
			continue
		}
		if len(current) > 0 && wordBoundary(prev, r) {
			flush()
		}
		current = append(current, r)
		prev = r
	}
	flush()
	return words
}

func wordBoundary(prev, next rune) bool {
	switch {
	case unicode.IsLower(prev) && unicode.IsUpper(next):
		return true
	case unicode.IsLetter(prev) && unicode.IsDigit(next):
		return true
	case unicode.IsDigit(prev) && unicode.IsLetter(next):
		return true
	}
	return false
}

// SnakeCase converts s to lower_snake_case using Words. Diacritics are
// removed so the result is a plain ASCII-friendly file stem. Returns
// "unknown" when s has no words.
func SnakeCase(s string) string {
	words := Words(stripMarks(s))
	if len(words) == 0 {
		return "unknown"
	}
	for i, w := range words {
		words[i] = strings.ToLower(w)
	}
	return strings.Join(words, "_")
}

// StartCase lowercases s and capitalizes each word: "LINCOLN HIGH" becomes
// "Lincoln High".
func StartCase(s string) string {
	caser := cases.Title(language.Und)
	words := Words(strings.ToLower(s))
	for i, w := range words {
		words[i] = caser.String(w)
	}
	return strings.Join(words, " ")
}
