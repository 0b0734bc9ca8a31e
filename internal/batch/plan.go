package batch

import (
	"fmt"
	"path/filepath"
	"sort"
	"strings"

	"logomatch/internal/textutil"
)

// Operation copies one source file to the destination for one selected name.
type Operation struct {
	SourceID string `json:"source_id"`
	Name     string `json:"name"`
	From     string `json:"from"`
	To       string `json:"to"`
}

// StaleName is a stored name that no longer exists in the catalog.
type StaleName struct {
	SourceID string `json:"source_id"`
	Name     string `json:"name"`
}

// Plan is the full set of copies for one execution.
type Plan struct {
	OutputDir  string      `json:"output_dir"`
	Operations []Operation `json:"operations"`
	Stale      []StaleName `json:"stale,omitempty"`
}

// Catalog reports whether a canonical name is known.
type Catalog interface {
	Contains(name string) bool
}

// DestinationName is the output file name for a catalog name and source file:
// the snake-cased name followed by the source's lowercased extension.
func DestinationName(name, sourceID string) string {
	return textutil.SnakeCase(name) + strings.ToLower(filepath.Ext(sourceID))
}

// BuildPlan derives the copy operations for a selection snapshot. Keys are
// visited in ascending order and names in stored order, which fixes the
// numbering of colliding destinations: the first keeps its name, later ones
// get _2, _3 and so on. Names missing from catalog are skipped and reported in
// Stale. A nil catalog accepts every name.
func BuildPlan(snapshot map[string][]string, catalog Catalog, sourceDir, outputDir string) Plan {
	plan := Plan{OutputDir: outputDir}
	keys := make([]string, 0, len(snapshot))
	for key := range snapshot {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	used := make(map[string]struct{})
	for _, key := range keys {
		for _, name := range snapshot[key] {
			if catalog != nil && !catalog.Contains(name) {
				plan.Stale = append(plan.Stale, StaleName{SourceID: key, Name: name})
				continue
			}
			dest := uniqueName(DestinationName(name, key), used)
			plan.Operations = append(plan.Operations, Operation{
				SourceID: key,
				Name:     name,
				From:     filepath.Join(sourceDir, key),
				To:       filepath.Join(outputDir, dest),
			})
		}
	}
	return plan
}

func uniqueName(name string, used map[string]struct{}) string {
	candidate := name
	ext := filepath.Ext(name)
	stem := strings.TrimSuffix(name, ext)
	for n := 2; ; n++ {
		if _, taken := used[candidate]; !taken {
			used[candidate] = struct{}{}
			return candidate
		}
		candidate = fmt.Sprintf("%s_%d%s", stem, n, ext)
	}
}
