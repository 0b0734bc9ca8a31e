package textutil

import (
	"path/filepath"
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

// NormalizeQuery derives a query from a source identifier: surrounding
// whitespace trimmed, the file extension stripped, and the rest uppercased.
func NormalizeQuery(sourceID string) string {
	base := strings.TrimSpace(sourceID)
	base = strings.TrimSuffix(base, filepath.Ext(base))
	return strings.ToUpper(strings.TrimSpace(base))
}

// NormalizeKey is the equality form of a query: trimmed and uppercased.
func NormalizeKey(query string) string {
	return strings.ToUpper(strings.TrimSpace(query))
}

// Fold decomposes s, drops combining marks, and uppercases the result so
// "Société" and "SOCIETE" compare equal.
func Fold(s string) string {
	return strings.ToUpper(stripMarks(s))
}

func stripMarks(s string) string {
	decomposed := norm.NFKD.String(s)
	var b strings.Builder
	b.Grow(len(decomposed))
	for _, r := range decomposed {
		if unicode.Is(unicode.Mn, r) {
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// Tokens splits s into folded alphanumeric tokens. Apostrophes join the
// surrounding letters ("MARY'S" becomes "MARYS").
func Tokens(s string) []string {
	folded := strings.NewReplacer("'", "", "’", "").Replace(Fold(s))
	return strings.FieldsFunc(folded, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
}

// Compact joins the tokens of s without separators.
func Compact(s string) string {
	return strings.Join(Tokens(s), "")
}

// Acronym returns the first letter of each token, or "" for fewer than two tokens.
func Acronym(tokens []string) string {
	if len(tokens) < 2 {
		return ""
	}
	var b strings.Builder
	for _, tok := range tokens {
		r := []rune(tok)
		b.WriteRune(r[0])
	}
	return b.String()
}

var genericHostLabels = map[string]struct{}{
	"WWW": {}, "K12": {}, "SCHOOLS": {}, "SCHOOL": {}, "EDU": {},
	"ORG": {}, "COM": {}, "NET": {}, "US": {}, "GOV": {},
}

// WebsiteLabels reduces a URL to the host labels that identify an institution.
// "https://www.lincolnhs.k12.wa.us/about" yields ["LINCOLNHS"].
func WebsiteLabels(raw string) []string {
	host := strings.TrimSpace(raw)
	if host == "" {
		return nil
	}
	if i := strings.Index(host, "://"); i >= 0 {
		host = host[i+3:]
	}
	if i := strings.IndexAny(host, "/?#"); i >= 0 {
		host = host[:i]
	}
	if i := strings.LastIndex(host, "@"); i >= 0 {
		host = host[i+1:]
	}
	if i := strings.Index(host, ":"); i >= 0 {
		host = host[:i]
	}

	var labels []string
	for _, label := range strings.Split(strings.ToUpper(host), ".") {
		label = Compact(label)
		if label == "" {
			continue
		}
		if _, generic := genericHostLabels[label]; generic {
			continue
		}
		if len(label) == 2 && isLetters(label) {
			// State and country codes.
			continue
		}
		labels = append(labels, label)
	}
	return labels
}

// SplitAliases breaks an alias field listing several nicknames.
func SplitAliases(raw string) []string {
	parts := strings.FieldsFunc(raw, func(r rune) bool {
		return r == ',' || r == ';' || r == '|'
	})
	out := parts[:0]
	for _, part := range parts {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

func isLetters(s string) bool {
	for _, r := range s {
		if !unicode.IsLetter(r) {
			return false
		}
	}
	return true
}
