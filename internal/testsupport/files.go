package testsupport

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
)

// CatalogEntry is the on-disk JSON shape of one catalog row.
type CatalogEntry struct {
	Name    string `json:"NAME"`
	City    string `json:"CITY,omitempty"`
	State   string `json:"STATE,omitempty"`
	Alias   string `json:"ALIAS,omitempty"`
	Website string `json:"WEBSITE,omitempty"`
}

// Schools is a small catalog shared by tests.
func Schools() []CatalogEntry {
	return []CatalogEntry{
		{Name: "LINCOLN HIGH", City: "SEATTLE", State: "WA"},
		{Name: "LINCOLN ELEMENTARY", City: "OMAHA", State: "NE"},
		{Name: "ROOSEVELT HIGH", City: "PORTLAND", State: "OR", Alias: "Roughriders"},
		{Name: "GARFIELD HIGH", City: "SEATTLE", State: "WA", Website: "https://garfieldbulldogs.org"},
	}
}

// WriteCatalog writes entries as a JSON array to path.
func WriteCatalog(t testing.TB, path string, entries ...CatalogEntry) {
	t.Helper()
	if entries == nil {
		entries = []CatalogEntry{}
	}
	data, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		t.Fatalf("marshal catalog: %v", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir for %s: %v", path, err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("write catalog %s: %v", path, err)
	}
}

// WriteSources creates one file per name in dir. Each file holds its own
// name so copies can be told apart.
func WriteSources(t testing.TB, dir string, names ...string) {
	t.Helper()
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatalf("mkdir %s: %v", dir, err)
	}
	for _, name := range names {
		path := filepath.Join(dir, name)
		if err := os.WriteFile(path, []byte("logo:"+name), 0o644); err != nil {
			t.Fatalf("write %s: %v", path, err)
		}
	}
}

// WriteFile fills the target path with the requested number of bytes using a
// simple repeating pattern. A size <= 0 writes a single byte.
func WriteFile(t testing.TB, path string, size int64) {
	t.Helper()

	if size <= 0 {
		size = 1
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir for %s: %v", path, err)
	}
	buf := make([]byte, size)
	for i := range buf {
		buf[i] = 0x42
	}
	if err := os.WriteFile(path, buf, 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}
