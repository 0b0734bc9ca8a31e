package sources

import (
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/sahilm/fuzzy"

	"logomatch/internal/failures"
	"logomatch/internal/textutil"
)

// List returns the names of regular files in dir whose extension is one of
// extensions, compared case-insensitively, sorted by name. An empty extension
// list admits every file. Failure to read dir is an enumeration error.
func List(dir string, extensions []string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, failures.Wrap(failures.ErrEnumeration, "sources", "list", "read source directory "+dir, err)
	}
	allowed := make(map[string]struct{}, len(extensions))
	for _, ext := range extensions {
		ext = strings.ToLower(strings.TrimSpace(ext))
		if ext == "" {
			continue
		}
		if !strings.HasPrefix(ext, ".") {
			ext = "." + ext
		}
		allowed[ext] = struct{}{}
	}

	ids := make([]string, 0, len(entries))
	for _, entry := range entries {
		if !entry.Type().IsRegular() {
			continue
		}
		name := entry.Name()
		if len(allowed) > 0 {
			if _, ok := allowed[strings.ToLower(filepath.Ext(name))]; !ok {
				continue
			}
		}
		ids = append(ids, name)
	}
	sort.Strings(ids)
	return ids, nil
}

// Query derives the match query for a source identifier.
func Query(id string) string {
	return textutil.NormalizeQuery(id)
}

// Filter returns the identifiers that fuzzy-match pattern, best match first.
// An empty pattern returns ids unchanged.
func Filter(ids []string, pattern string) []string {
	pattern = strings.TrimSpace(pattern)
	if pattern == "" {
		out := make([]string, len(ids))
		copy(out, ids)
		return out
	}
	matches := fuzzy.FindFrom(pattern, idSource(ids))
	out := make([]string, len(matches))
	for i, m := range matches {
		out[i] = ids[m.Index]
	}
	return out
}

type idSource []string

func (s idSource) String(i int) string { return s[i] }
func (s idSource) Len() int            { return len(s) }
