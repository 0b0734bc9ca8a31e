package config_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/pelletier/go-toml/v2"

	"logomatch/internal/config"
)

func TestLoadDefaultConfigExpandsPaths(t *testing.T) {
	tempHome := t.TempDir()
	t.Setenv("HOME", tempHome)
	t.Chdir(t.TempDir())

	cfg, resolved, exists, err := config.Load("")
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if resolved == "" {
		t.Fatal("expected resolved path")
	}
	if exists {
		t.Fatal("expected config file to be absent in temp HOME")
	}

	wantSelections := filepath.Join(tempHome, ".local", "share", "logomatch", "selections.json")
	if cfg.Paths.Selections != wantSelections {
		t.Fatalf("unexpected selections path: got %q want %q", cfg.Paths.Selections, wantSelections)
	}
	if !filepath.IsAbs(cfg.Paths.SourceDir) {
		t.Fatalf("expected absolute source dir, got %q", cfg.Paths.SourceDir)
	}
	if cfg.Matching.Threshold != 0.6 {
		t.Fatalf("unexpected threshold: %v", cfg.Matching.Threshold)
	}
	if cfg.Matching.DebounceMillis != 500 {
		t.Fatalf("unexpected debounce: %d", cfg.Matching.DebounceMillis)
	}
	if !cfg.Matching.IndexAlias || !cfg.Matching.IndexWebsite {
		t.Fatal("expected alias and website indexing enabled by default")
	}
	if len(cfg.Sources.Extensions) != 1 || cfg.Sources.Extensions[0] != ".png" {
		t.Fatalf("unexpected extensions: %v", cfg.Sources.Extensions)
	}
	if !cfg.Batch.VerifyCopies {
		t.Fatal("expected verified copies by default")
	}
}

func TestLoadCustomConfigOverrides(t *testing.T) {
	tempHome := t.TempDir()
	t.Setenv("HOME", tempHome)

	configPath := filepath.Join(t.TempDir(), "config.toml")
	payload := map[string]any{
		"paths": map[string]any{
			"source_dir": "~/logos",
			"output_dir": "~/out",
			"catalog":    "~/data/schools.yaml",
		},
		"sources": map[string]any{
			"extensions": []string{"PNG", ".svg", ".png"},
		},
		"matching": map[string]any{
			"threshold":         0.4,
			"limit":             5,
			"index_website":     false,
			"cache_max_entries": 100,
		},
		"logging": map[string]any{
			"format": "JSON",
			"level":  "Debug",
		},
	}
	data, err := toml.Marshal(payload)
	if err != nil {
		t.Fatalf("marshal config: %v", err)
	}
	if err := os.WriteFile(configPath, data, 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, resolved, exists, err := config.Load(configPath)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if !exists || resolved != configPath {
		t.Fatalf("expected config at %q, got %q (exists=%v)", configPath, resolved, exists)
	}
	if cfg.Paths.SourceDir != filepath.Join(tempHome, "logos") {
		t.Fatalf("unexpected source dir: %q", cfg.Paths.SourceDir)
	}
	if cfg.Paths.Catalog != filepath.Join(tempHome, "data", "schools.yaml") {
		t.Fatalf("unexpected catalog: %q", cfg.Paths.Catalog)
	}
	if got := strings.Join(cfg.Sources.Extensions, ","); got != ".png,.svg" {
		t.Fatalf("unexpected extensions: %q", got)
	}
	if cfg.Matching.Threshold != 0.4 || cfg.Matching.Limit != 5 {
		t.Fatalf("unexpected matching settings: %+v", cfg.Matching)
	}
	if cfg.Matching.IndexWebsite {
		t.Fatal("expected website indexing disabled")
	}
	if !cfg.Matching.IndexAlias {
		t.Fatal("expected alias indexing to keep its default")
	}
	if cfg.Logging.Format != "json" || cfg.Logging.Level != "debug" {
		t.Fatalf("unexpected logging settings: %+v", cfg.Logging)
	}
	if !cfg.HasExtension("crest.SVG") || cfg.HasExtension("notes.txt") {
		t.Fatal("unexpected extension matching")
	}
}

func TestLoadEnvFallbacks(t *testing.T) {
	tempHome := t.TempDir()
	t.Setenv("HOME", tempHome)
	t.Setenv("LOGOMATCH_CATALOG", "~/catalog.parquet")
	t.Setenv("LOGOMATCH_SOURCE_DIR", "~/incoming")

	cfg, _, _, err := config.Load(filepath.Join(t.TempDir(), "missing.toml"))
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.Paths.Catalog != filepath.Join(tempHome, "catalog.parquet") {
		t.Fatalf("expected catalog from env, got %q", cfg.Paths.Catalog)
	}
	if cfg.Paths.SourceDir != filepath.Join(tempHome, "incoming") {
		t.Fatalf("expected source dir from env, got %q", cfg.Paths.SourceDir)
	}
}

func TestValidateRejectsBadValues(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*config.Config)
		want   string
	}{
		{"threshold", func(c *config.Config) { c.Matching.Threshold = 1.5 }, "matching.threshold"},
		{"limit", func(c *config.Config) { c.Matching.Limit = -1 }, "matching.limit"},
		{"catalog", func(c *config.Config) { c.Paths.Catalog = "/data/schools.csv" }, "paths.catalog"},
		{"output", func(c *config.Config) { c.Paths.OutputDir = c.Paths.SourceDir }, "paths.output_dir"},
		{"format", func(c *config.Config) { c.Logging.Format = "xml" }, "logging.format"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := config.Default()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if err == nil {
				t.Fatal("expected validation error")
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Fatalf("expected %q in error, got %v", tt.want, err)
			}
		})
	}
}

func TestCreateSampleIsLoadable(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	target := filepath.Join(t.TempDir(), "nested", "config.toml")
	if err := config.CreateSample(target); err != nil {
		t.Fatalf("CreateSample: %v", err)
	}
	if _, _, exists, err := config.Load(target); err != nil || !exists {
		t.Fatalf("expected sample config to load, exists=%v err=%v", exists, err)
	}
}

func TestEnsureDirectoriesCreatesStateDirs(t *testing.T) {
	base := t.TempDir()
	cfg := config.Default()
	cfg.Paths.LogDir = filepath.Join(base, "logs")
	cfg.Paths.Selections = filepath.Join(base, "state", "selections.json")
	cfg.Paths.PromptCache = filepath.Join(base, "cache", "prompts.db")

	if err := cfg.EnsureDirectories(); err != nil {
		t.Fatalf("EnsureDirectories: %v", err)
	}
	for _, dir := range []string{"logs", "state", "cache"} {
		if info, err := os.Stat(filepath.Join(base, dir)); err != nil || !info.IsDir() {
			t.Fatalf("expected directory %s: %v", dir, err)
		}
	}
}
