package matcher

import (
	"sort"
	"unicode/utf8"

	"github.com/agnivade/levenshtein"

	"logomatch/internal/catalog"
	"logomatch/internal/textutil"
)

// DefaultThreshold drops candidates whose distance exceeds it.
const DefaultThreshold = 0.6

// Candidate is a catalog entry proposed for a query. Score is a normalized
// edit distance in [0,1]: lower is closer.
type Candidate struct {
	Entry    catalog.Entry     `json:"entry"`
	Position int               `json:"position"`
	Score    float64           `json:"score"`
	Field    catalog.FieldKind `json:"field"`
	// fullScore is the distance to the whole compact name, used to order ties.
	fullScore float64
}

// Options tune a Matcher.
type Options struct {
	// Threshold is the largest score returned. Zero selects DefaultThreshold.
	Threshold float64
	// Limit caps the number of candidates. Zero returns all of them.
	Limit int
}

// Matcher searches an Index. It never mutates the index and is safe for
// concurrent use.
type Matcher struct {
	index     *catalog.Index
	threshold float64
	limit     int
}

// New wraps index with the given options.
func New(index *catalog.Index, opts Options) *Matcher {
	threshold := opts.Threshold
	if threshold <= 0 || threshold > 1 {
		threshold = DefaultThreshold
	}
	limit := opts.Limit
	if limit < 0 {
		limit = 0
	}
	return &Matcher{index: index, threshold: threshold, limit: limit}
}

// Threshold reports the effective score cut-off.
func (m *Matcher) Threshold() float64 { return m.threshold }

// Search returns candidates for query ordered by ascending score. Ties are
// broken by distance to the full name and then by catalog position, so equal
// inputs always yield equal output. A query with no letters or digits, or one
// with nothing under the threshold, yields an empty slice.
func (m *Matcher) Search(query string) []Candidate {
	q := textutil.Compact(query)
	if q == "" || m.index == nil {
		return []Candidate{}
	}
	qLen := utf8.RuneCountInString(q)

	var out []Candidate
	for _, doc := range m.index.Documents() {
		best := m.threshold
		found := false
		var bestField catalog.FieldKind
		for _, field := range doc.Fields {
			for _, key := range field.Keys {
				if lowerBound(qLen, key.Len) > best {
					continue
				}
				score := distance(q, qLen, key)
				if score < best || (!found && score <= best) {
					best = score
					bestField = field.Kind
					found = true
				}
			}
		}
		if !found {
			continue
		}
		out = append(out, Candidate{
			Entry:     doc.Entry,
			Position:  doc.Position,
			Score:     best,
			Field:     bestField,
			fullScore: distance(q, qLen, catalog.Key{Text: doc.Compact, Len: utf8.RuneCountInString(doc.Compact)}),
		})
	}

	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Score != out[j].Score {
			return out[i].Score < out[j].Score
		}
		if out[i].fullScore != out[j].fullScore {
			return out[i].fullScore < out[j].fullScore
		}
		return out[i].Position < out[j].Position
	})

	if m.limit > 0 && len(out) > m.limit {
		out = out[:m.limit]
	}
	if out == nil {
		return []Candidate{}
	}
	return out
}

// distance normalizes the Levenshtein distance by the longer string.
func distance(q string, qLen int, key catalog.Key) float64 {
	longest := max(qLen, key.Len)
	if longest == 0 {
		return 0
	}
	return float64(levenshtein.ComputeDistance(q, key.Text)) / float64(longest)
}

// lowerBound is the smallest normalized distance two strings of these lengths
// can have.
func lowerBound(a, b int) float64 {
	longest := max(a, b)
	if longest == 0 {
		return 0
	}
	diff := a - b
	if diff < 0 {
		diff = -diff
	}
	return float64(diff) / float64(longest)
}
