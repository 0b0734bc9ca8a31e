package promptcache_test

import (
	"context"
	"database/sql"
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"testing"

	_ "modernc.org/sqlite"

	"logomatch/internal/promptcache"
)

func openStore(t *testing.T) (*promptcache.Store, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "cache", "prompts.db")
	store, err := promptcache.Open(context.Background(), path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })
	return store, path
}

func sampleRecords() []promptcache.Record {
	return []promptcache.Record{
		{
			ID:      "LINCOLNHS.png",
			Query:   "LINCOLNHS",
			Message: "Which school(s) match 'LINCOLNHS.png'?",
			Choices: []promptcache.Choice{{Label: "Lincoln High | Seattle, WA | 0.2222", Value: "LINCOLN HIGH", Score: 0.2222}},
		},
		{ID: "ZZZ.png", Query: "ZZZ", Message: "Which school(s) match 'ZZZ.png'?", Choices: []promptcache.Choice{}},
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	store, _ := openStore(t)
	ctx := context.Background()

	if _, ok, err := store.Load(ctx, "fp"); err != nil || ok {
		t.Fatalf("empty store Load = %v %v", ok, err)
	}
	want := sampleRecords()
	if err := store.Save(ctx, "fp", want); err != nil {
		t.Fatalf("Save: %v", err)
	}
	got, ok, err := store.Load(ctx, "fp")
	if err != nil || !ok {
		t.Fatalf("Load = %v %v", ok, err)
	}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("Load = %#v, want %#v", got, want)
	}
	if n, err := store.Count(ctx); err != nil || n != 2 {
		t.Fatalf("Count = %d %v", n, err)
	}
}

func TestLoadIgnoresOtherFingerprint(t *testing.T) {
	store, _ := openStore(t)
	ctx := context.Background()
	if err := store.Save(ctx, "old", sampleRecords()); err != nil {
		t.Fatal(err)
	}
	if _, ok, err := store.Load(ctx, "new"); err != nil || ok {
		t.Fatalf("expected miss on fingerprint change, got %v %v", ok, err)
	}
	if err := store.Save(ctx, "new", sampleRecords()[:1]); err != nil {
		t.Fatal(err)
	}
	got, ok, err := store.Load(ctx, "new")
	if err != nil || !ok || len(got) != 1 {
		t.Fatalf("expected replaced batch, got %d %v %v", len(got), ok, err)
	}
}

func TestReopenKeepsBatch(t *testing.T) {
	store, path := openStore(t)
	ctx := context.Background()
	if err := store.Save(ctx, "fp", sampleRecords()); err != nil {
		t.Fatal(err)
	}
	if err := store.Close(); err != nil {
		t.Fatal(err)
	}
	reopened, err := promptcache.Open(ctx, path)
	if err != nil {
		t.Fatal(err)
	}
	defer reopened.Close()
	if _, ok, err := reopened.Load(ctx, "fp"); err != nil || !ok {
		t.Fatalf("Load after reopen = %v %v", ok, err)
	}
}

func TestSchemaMismatch(t *testing.T) {
	_, path := openStore(t)
	db, err := sql.Open("sqlite", path)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := db.Exec("UPDATE schema_version SET version = 99"); err != nil {
		t.Fatal(err)
	}
	_ = db.Close()

	if _, err := promptcache.Open(context.Background(), path); !errors.Is(err, promptcache.ErrSchemaMismatch) {
		t.Fatalf("expected schema mismatch, got %v", err)
	}
}

func TestRemove(t *testing.T) {
	store, path := openStore(t)
	if err := store.Save(context.Background(), "fp", sampleRecords()); err != nil {
		t.Fatal(err)
	}
	_ = store.Close()

	removed, err := promptcache.Remove(path)
	if err != nil || !removed {
		t.Fatalf("Remove = %v %v", removed, err)
	}
	if _, err := os.Stat(path); !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("database still present: %v", err)
	}
	removed, err = promptcache.Remove(path)
	if err != nil || removed {
		t.Fatalf("second Remove = %v %v", removed, err)
	}
}

func TestFingerprint(t *testing.T) {
	catalog := filepath.Join(t.TempDir(), "schools.json")
	if err := os.WriteFile(catalog, []byte("[]"), 0o644); err != nil {
		t.Fatal(err)
	}
	base := promptcache.Settings{Threshold: 0.6, Limit: 20, IndexAlias: true, IndexWebsite: true}
	ids := []string{"A.png", "B.png"}
	want, err := promptcache.Fingerprint(catalog, base, ids)
	if err != nil {
		t.Fatal(err)
	}
	if again, _ := promptcache.Fingerprint(catalog, base, ids); again != want {
		t.Fatal("fingerprint not stable for equal inputs")
	}

	tests := []struct {
		name     string
		settings promptcache.Settings
		ids      []string
	}{
		{"fewer sources", base, []string{"A.png"}},
		{"threshold", promptcache.Settings{Threshold: 0.5, Limit: 20, IndexAlias: true, IndexWebsite: true}, ids},
		{"limit", promptcache.Settings{Threshold: 0.6, Limit: 5, IndexAlias: true, IndexWebsite: true}, ids},
		{"alias index", promptcache.Settings{Threshold: 0.6, Limit: 20, IndexAlias: false, IndexWebsite: true}, ids},
		{"website index", promptcache.Settings{Threshold: 0.6, Limit: 20, IndexAlias: true, IndexWebsite: false}, ids},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := promptcache.Fingerprint(catalog, tt.settings, tt.ids)
			if err != nil {
				t.Fatal(err)
			}
			if got == want {
				t.Fatalf("fingerprint unchanged when %s differs", tt.name)
			}
		})
	}

	if _, err := promptcache.Fingerprint(filepath.Join(t.TempDir(), "missing"), base, nil); err == nil {
		t.Fatal("expected error for missing catalog")
	}
}
