package catalog

import (
	"strings"
	"unicode/utf8"

	"logomatch/internal/textutil"
)

// FieldKind names an indexed catalog field.
type FieldKind int

const (
	FieldName FieldKind = iota
	FieldAlias
	FieldWebsite
)

func (k FieldKind) String() string {
	switch k {
	case FieldName:
		return "name"
	case FieldAlias:
		return "alias"
	case FieldWebsite:
		return "website"
	default:
		return "unknown"
	}
}

// MarshalText renders the field name in JSON output.
func (k FieldKind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// IndexOptions selects the optional fields to index. Name is always indexed.
type IndexOptions struct {
	Alias   bool
	Website bool
}

// DefaultIndexOptions indexes every field.
func DefaultIndexOptions() IndexOptions {
	return IndexOptions{Alias: true, Website: true}
}

// Key is one precomputed match string and its rune length.
type Key struct {
	Text string
	Len  int
}

// Field holds the match keys derived from one field of an entry.
type Field struct {
	Kind FieldKind
	Keys []Key
}

// Document is the searchable form of one catalog entry.
type Document struct {
	Position int
	Entry    Entry
	// Compact is the entry name folded to uppercase alphanumerics.
	Compact string
	Fields  []Field
}

// Index is an immutable search structure over a catalog.
type Index struct {
	docs    []Document
	options IndexOptions
}

// BuildIndex precomputes match keys for every entry. For each indexed value
// the keys are the compact form, every token, every contiguous run of tokens
// joined without spaces, and the acronym of multi-token values. Websites
// contribute their identifying host labels. Output depends only on entries and
// opts.
func BuildIndex(entries []Entry, opts IndexOptions) *Index {
	idx := &Index{docs: make([]Document, 0, len(entries)), options: opts}
	for pos, entry := range entries {
		doc := Document{
			Position: pos,
			Entry:    entry,
			Compact:  textutil.Compact(entry.Name),
		}
		if keys := valueKeys(entry.Name); len(keys) > 0 {
			doc.Fields = append(doc.Fields, Field{Kind: FieldName, Keys: keys})
		}
		if opts.Alias && entry.Alias != "" {
			var keys []Key
			for _, alias := range textutil.SplitAliases(entry.Alias) {
				keys = append(keys, valueKeys(alias)...)
			}
			if keys = dedupeKeys(keys); len(keys) > 0 {
				doc.Fields = append(doc.Fields, Field{Kind: FieldAlias, Keys: keys})
			}
		}
		if opts.Website && entry.Website != "" {
			if keys := websiteKeys(entry.Website); len(keys) > 0 {
				doc.Fields = append(doc.Fields, Field{Kind: FieldWebsite, Keys: keys})
			}
		}
		idx.docs = append(idx.docs, doc)
	}
	return idx
}

// Build indexes a catalog with the given options.
func (c *Catalog) Build(opts IndexOptions) *Index {
	return BuildIndex(c.entries, opts)
}

// Len returns the number of indexed documents.
func (ix *Index) Len() int {
	if ix == nil {
		return 0
	}
	return len(ix.docs)
}

// Documents returns the indexed documents in catalog order. The slice is
// shared and must not be modified.
func (ix *Index) Documents() []Document {
	if ix == nil {
		return nil
	}
	return ix.docs
}

// Options reports the options the index was built with.
func (ix *Index) Options() IndexOptions {
	return ix.options
}

func valueKeys(value string) []Key {
	tokens := textutil.Tokens(value)
	if len(tokens) == 0 {
		return nil
	}
	keys := make([]Key, 0, len(tokens)*(len(tokens)+1)/2+1)
	for start := 0; start < len(tokens); start++ {
		for end := start + 1; end <= len(tokens); end++ {
			keys = append(keys, newKey(strings.Join(tokens[start:end], "")))
		}
	}
	if acronym := textutil.Acronym(tokens); acronym != "" {
		keys = append(keys, newKey(acronym))
	}
	return dedupeKeys(keys)
}

func websiteKeys(raw string) []Key {
	labels := textutil.WebsiteLabels(raw)
	keys := make([]Key, 0, len(labels)+1)
	for _, label := range labels {
		keys = append(keys, newKey(label))
	}
	if len(labels) > 1 {
		keys = append(keys, newKey(strings.Join(labels, "")))
	}
	return dedupeKeys(keys)
}

func newKey(text string) Key {
	return Key{Text: text, Len: utf8.RuneCountInString(text)}
}

func dedupeKeys(keys []Key) []Key {
	if len(keys) < 2 {
		return keys
	}
	seen := make(map[string]struct{}, len(keys))
	out := keys[:0]
	for _, key := range keys {
		if _, dup := seen[key.Text]; dup {
			continue
		}
		seen[key.Text] = struct{}{}
		out = append(out, key)
	}
	return out
}
