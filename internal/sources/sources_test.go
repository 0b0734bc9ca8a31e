package sources_test

import (
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"logomatch/internal/failures"
	"logomatch/internal/sources"
)

func TestListFiltersAndSorts(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"ZEBRA.png", "alpha.PNG", "notes.txt", "LINCOLNHS.png"} {
		if err := os.WriteFile(filepath.Join(dir, name), []byte("x"), 0o644); err != nil {
			t.Fatalf("write %s: %v", name, err)
		}
	}
	if err := os.Mkdir(filepath.Join(dir, "nested.png"), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}

	got, err := sources.List(dir, []string{"png"})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	want := []string{"LINCOLNHS.png", "ZEBRA.png", "alpha.PNG"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("List = %v, want %v", got, want)
	}

	all, err := sources.List(dir, nil)
	if err != nil {
		t.Fatalf("List all: %v", err)
	}
	if len(all) != 4 {
		t.Fatalf("expected 4 regular files, got %v", all)
	}
}

func TestListMissingDirectoryIsFatal(t *testing.T) {
	_, err := sources.List(filepath.Join(t.TempDir(), "missing"), []string{".png"})
	if !errors.Is(err, failures.ErrEnumeration) || !failures.IsFatal(err) {
		t.Fatalf("expected fatal enumeration error, got %v", err)
	}
}

func TestQuery(t *testing.T) {
	if got := sources.Query(" lincolnhs.png "); got != "LINCOLNHS" {
		t.Fatalf("Query = %q", got)
	}
}

func TestFilter(t *testing.T) {
	ids := []string{"GARFIELD.png", "LINCOLNHS.png", "ROOSEVELT.png"}
	got := sources.Filter(ids, "lnc")
	if len(got) != 1 || got[0] != "LINCOLNHS.png" {
		t.Fatalf("Filter = %v", got)
	}
	if got := sources.Filter(ids, ""); !reflect.DeepEqual(got, ids) {
		t.Fatalf("empty pattern should keep ids, got %v", got)
	}
	if got := sources.Filter(ids, "qqq"); len(got) != 0 {
		t.Fatalf("expected no matches, got %v", got)
	}
}
