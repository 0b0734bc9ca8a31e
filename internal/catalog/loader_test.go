package catalog_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/parquet-go/parquet-go"

	"logomatch/internal/catalog"
	"logomatch/internal/failures"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return path
}

func TestLoadFormats(t *testing.T) {
	tests := []struct {
		name    string
		file    string
		content string
	}{
		{
			name: "json array",
			file: "schools.json",
			content: `[
				{"NAME": "LINCOLN HIGH", "CITY": "SEATTLE", "STATE": "WA", "WEBSITE": "lincolnhs.org"},
				{"NAME": "ROOSEVELT HIGH", "CITY": "PORTLAND", "STATE": "OR", "ALIAS": "Roughriders"}
			]`,
		},
		{
			name:    "json wrapper with bom",
			file:    "schools.json",
			content: "\xEF\xBB\xBF" + `{"schools": [{"NAME": "LINCOLN HIGH", "CITY": "SEATTLE", "STATE": "WA"}, {"name": "ROOSEVELT HIGH"}]}`,
		},
		{
			name: "jsonl",
			file: "schools.jsonl",
			content: `{"NAME": "LINCOLN HIGH", "CITY": "SEATTLE", "STATE": "WA"}

{"NAME": "ROOSEVELT HIGH", "CITY": "PORTLAND", "STATE": "OR"}
`,
		},
		{
			name: "yaml list",
			file: "schools.yaml",
			content: `- name: LINCOLN HIGH
  city: SEATTLE
  state: WA
  zip: 98105
- NAME: ROOSEVELT HIGH
  CITY: PORTLAND
`,
		},
		{
			name: "yaml wrapper",
			file: "schools.yml",
			content: `entries:
  - name: LINCOLN HIGH
    city: SEATTLE
  - name: ROOSEVELT HIGH
`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeFile(t, tt.file, tt.content)
			cat, err := catalog.Load(context.Background(), path, nil)
			if err != nil {
				t.Fatalf("Load: %v", err)
			}
			if cat.Len() != 2 {
				t.Fatalf("expected 2 entries, got %d", cat.Len())
			}
			entry, ok := cat.Lookup("LINCOLN HIGH")
			if !ok {
				t.Fatal("expected LINCOLN HIGH in catalog")
			}
			if entry.City != "SEATTLE" {
				t.Fatalf("unexpected city %q", entry.City)
			}
			if cat.At(1).Name != "ROOSEVELT HIGH" {
				t.Fatalf("expected catalog order preserved, got %q", cat.At(1).Name)
			}
		})
	}
}

func TestLoadParquet(t *testing.T) {
	path := filepath.Join(t.TempDir(), "schools.parquet")
	rows := []catalog.Entry{
		{Name: "LINCOLN HIGH", City: "SEATTLE", State: "WA", Website: "https://lincolnhs.org"},
		{Name: "ROOSEVELT HIGH", City: "PORTLAND", State: "OR"},
		{Name: "GARFIELD HIGH", City: "SEATTLE", State: "WA", Alias: "Bulldogs"},
	}
	if err := parquet.WriteFile(path, rows); err != nil {
		t.Fatalf("write parquet: %v", err)
	}

	cat, err := catalog.Load(context.Background(), path, nil)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cat.Len() != len(rows) {
		t.Fatalf("expected %d entries, got %d", len(rows), cat.Len())
	}
	got, ok := cat.Lookup("GARFIELD HIGH")
	if !ok || got.Alias != "Bulldogs" {
		t.Fatalf("unexpected parquet entry %+v (found=%v)", got, ok)
	}
}

func TestLoadFailuresAreEnumerationErrors(t *testing.T) {
	tests := []struct {
		name string
		path func(t *testing.T) string
		want string
	}{
		{"missing", func(t *testing.T) string { return filepath.Join(t.TempDir(), "absent.json") }, "absent.json"},
		{"unsupported", func(t *testing.T) string { return writeFile(t, "schools.csv", "NAME\n") }, "unsupported"},
		{"malformed", func(t *testing.T) string { return writeFile(t, "schools.json", "[{") }, "parse json"},
		{"empty", func(t *testing.T) string { return writeFile(t, "schools.json", `[{"NAME": "  "}]`) }, "no named entries"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := catalog.Load(context.Background(), tt.path(t), nil)
			if err == nil {
				t.Fatal("expected error")
			}
			if !errors.Is(err, failures.ErrEnumeration) {
				t.Fatalf("expected enumeration error, got %v", err)
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Fatalf("expected %q in %v", tt.want, err)
			}
		})
	}
}

func TestNewDropsBlankAndKeepsFirstDuplicate(t *testing.T) {
	cat := catalog.New([]catalog.Entry{
		{Name: " LINCOLN HIGH ", City: "SEATTLE"},
		{Name: ""},
		{Name: "LINCOLN HIGH", City: "OMAHA"},
	})
	if cat.Len() != 2 {
		t.Fatalf("expected 2 entries, got %d", cat.Len())
	}
	if cat.Dropped() != 1 || cat.Duplicates() != 1 {
		t.Fatalf("unexpected counts dropped=%d duplicates=%d", cat.Dropped(), cat.Duplicates())
	}
	entry, ok := cat.Lookup("LINCOLN HIGH")
	if !ok || entry.City != "SEATTLE" {
		t.Fatalf("expected first duplicate, got %+v", entry)
	}
	if cat.Contains("GARFIELD HIGH") {
		t.Fatal("unexpected name in catalog")
	}
}
