package testsupport

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/pelletier/go-toml/v2"

	"logomatch/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*configBuilder)

type configBuilder struct {
	t       testing.TB
	baseDir string
	cfg     *config.Config
}

// NewConfig produces a config seeded with unique temp directories per test.
// Source and output directories are created; the catalog path is not.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfgVal := config.Default()
	cfgVal.Paths.SourceDir = filepath.Join(base, "logos")
	cfgVal.Paths.OutputDir = filepath.Join(base, "renamed")
	cfgVal.Paths.Catalog = filepath.Join(base, "schools.json")
	cfgVal.Paths.Selections = filepath.Join(base, "state", "selections.json")
	cfgVal.Paths.PromptCache = filepath.Join(base, "state", "prompts.db")
	cfgVal.Paths.ExportDir = filepath.Join(base, "exports")
	cfgVal.Paths.LogDir = filepath.Join(base, "logs")
	cfgVal.Matching.Workers = 2
	cfgVal.Batch.Workers = 2

	builder := &configBuilder{
		t:       t,
		baseDir: base,
		cfg:     &cfgVal,
	}
	for _, opt := range opts {
		opt(builder)
	}

	for _, dir := range []string{cfgVal.Paths.SourceDir, cfgVal.Paths.ExportDir} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			t.Fatalf("mkdir %s: %v", dir, err)
		}
	}
	return builder.cfg
}

// WithCatalog writes entries as the JSON catalog of the test config.
func WithCatalog(entries ...CatalogEntry) ConfigOption {
	return func(b *configBuilder) {
		WriteCatalog(b.t, b.cfg.Paths.Catalog, entries...)
	}
}

// WithSources creates empty-ish source files with the given names.
func WithSources(names ...string) ConfigOption {
	return func(b *configBuilder) {
		WriteSources(b.t, b.cfg.Paths.SourceDir, names...)
	}
}

// BaseDir returns the root temp directory backing the generated config.
func BaseDir(cfg *config.Config) string {
	return filepath.Dir(cfg.Paths.SourceDir)
}

// WriteConfigFile serializes cfg as TOML next to its temp directories and
// returns the file path.
func WriteConfigFile(t testing.TB, cfg *config.Config) string {
	t.Helper()
	data, err := toml.Marshal(cfg)
	if err != nil {
		t.Fatalf("marshal config: %v", err)
	}
	path := filepath.Join(BaseDir(cfg), "logomatch.toml")
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}
