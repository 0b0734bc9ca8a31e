package preflight

import (
	"os"
	"path/filepath"
	"testing"

	"logomatch/internal/testsupport"
)

func TestCheckDirectoryAccess_OK(t *testing.T) {
	dir := t.TempDir()
	for _, writable := range []bool{false, true} {
		result := CheckDirectoryAccess("test", dir, writable)
		if !result.Passed {
			t.Fatalf("expected pass for temp dir (writable=%v), got: %s", writable, result.Detail)
		}
	}
}

func TestCheckDirectoryAccess_NotExist(t *testing.T) {
	result := CheckDirectoryAccess("test", filepath.Join(t.TempDir(), "nope"), false)
	if result.Passed {
		t.Fatal("expected failure for missing dir")
	}
	if result.Detail == "" {
		t.Fatal("expected non-empty detail")
	}
}

func TestCheckDirectoryAccess_NotDir(t *testing.T) {
	f := filepath.Join(t.TempDir(), "file.txt")
	if err := os.WriteFile(f, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	result := CheckDirectoryAccess("test", f, false)
	if result.Passed {
		t.Fatal("expected failure for file path")
	}
}

func TestCheckFileReadable(t *testing.T) {
	dir := t.TempDir()
	f := filepath.Join(dir, "schools.json")
	if err := os.WriteFile(f, []byte("[]"), 0o644); err != nil {
		t.Fatal(err)
	}
	if result := CheckFileReadable("catalog", f); !result.Passed {
		t.Fatalf("expected pass, got: %s", result.Detail)
	}
	if result := CheckFileReadable("catalog", dir); result.Passed {
		t.Fatal("expected failure for directory")
	}
	if result := CheckFileReadable("catalog", filepath.Join(dir, "missing.json")); result.Passed {
		t.Fatal("expected failure for missing file")
	}
}

func TestCheckCreatable(t *testing.T) {
	dir := t.TempDir()
	if result := CheckCreatable("out", filepath.Join(dir, "a", "b")); !result.Passed {
		t.Fatalf("expected nested path under temp dir to be creatable: %s", result.Detail)
	}

	blocker := filepath.Join(dir, "blocker")
	if err := os.WriteFile(blocker, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	if result := CheckCreatable("out", filepath.Join(blocker, "child")); result.Passed {
		t.Fatal("expected failure when the nearest ancestor is a file")
	}
}

func TestRunAll(t *testing.T) {
	cfg := testsupport.NewConfig(t, testsupport.WithCatalog(testsupport.Schools()...))
	results := RunAll(cfg)
	if len(results) != 5 {
		t.Fatalf("expected 5 checks, got %d", len(results))
	}
	if failed := Failed(results); len(failed) != 0 {
		t.Fatalf("unexpected failures: %+v", failed)
	}

	if err := os.Remove(cfg.Paths.Catalog); err != nil {
		t.Fatal(err)
	}
	failed := Failed(RunAll(cfg))
	if len(failed) != 1 || failed[0].Name != "Catalog" {
		t.Fatalf("expected only the catalog check to fail, got %+v", failed)
	}
}
