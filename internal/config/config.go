package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// Paths contains file and directory locations.
type Paths struct {
	SourceDir   string `toml:"source_dir"`
	OutputDir   string `toml:"output_dir"`
	Catalog     string `toml:"catalog"`
	Selections  string `toml:"selections"`
	PromptCache string `toml:"prompt_cache"`
	ExportDir   string `toml:"export_dir"`
	LogDir      string `toml:"log_dir"`
}

// Sources controls which files in the source directory are treated as work items.
type Sources struct {
	Extensions []string `toml:"extensions"`
}

// Matching contains fuzzy matcher and result cache settings.
type Matching struct {
	// Threshold is the highest distance score a candidate may have. Default: 0.6
	Threshold    float64 `toml:"threshold"`
	Limit        int     `toml:"limit"`
	IndexAlias   bool    `toml:"index_alias"`
	IndexWebsite bool    `toml:"index_website"`
	Workers      int     `toml:"workers"`
	// CacheMaxEntries caps the result cache. Zero means unbounded.
	CacheMaxEntries int `toml:"cache_max_entries"`
	DebounceMillis  int `toml:"debounce_ms"`
	MinQueryLength  int `toml:"min_query_length"`
}

// Batch contains copy executor settings.
type Batch struct {
	Workers      int  `toml:"workers"`
	VerifyCopies bool `toml:"verify_copies"`
}

// Logging contains configuration for log output.
type Logging struct {
	Format string `toml:"format"`
	Level  string `toml:"level"`
}

// Config encapsulates all configuration values for logomatch.
//
// Configuration sections:
//   - Paths: catalog, source and output directories, persisted state
//   - Sources: file extensions considered source identifiers
//   - Matching: scoring threshold, index fields, worker and cache sizing
//   - Batch: copy concurrency and verification
//   - Logging: log format and level
type Config struct {
	Paths    Paths    `toml:"paths"`
	Sources  Sources  `toml:"sources"`
	Matching Matching `toml:"matching"`
	Batch    Batch    `toml:"batch"`
	Logging  Logging  `toml:"logging"`
}

// DefaultConfigPath returns the absolute path to the default configuration file location.
func DefaultConfigPath() (string, error) {
	return expandPath(defaultConfigPath)
}

// Load locates, parses, and validates a configuration file. The returned config has all
// path fields expanded and normalized.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}

	return &cfg, resolvedPath, exists, nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		_, err = os.Stat(expanded)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return expanded, false, nil
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	defaultPath, err := expandPath(defaultConfigPath)
	if err != nil {
		return "", false, err
	}

	projectPath, err := filepath.Abs(projectConfigName)
	if err != nil {
		return "", false, err
	}

	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}
	if info, err := os.Stat(projectPath); err == nil && !info.IsDir() {
		return projectPath, true, nil
	}

	return defaultPath, false, nil
}

// EnsureDirectories creates the directories that hold persisted state and logs.
// The output directory is left to the batch executor, which owns its reset.
func (c *Config) EnsureDirectories() error {
	dirs := []string{
		c.Paths.LogDir,
		filepath.Dir(c.Paths.Selections),
		filepath.Dir(c.Paths.PromptCache),
	}
	for _, dir := range dirs {
		if strings.TrimSpace(dir) == "" {
			continue
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %q: %w", dir, err)
		}
	}
	return nil
}

// HasExtension reports whether name carries one of the configured source extensions.
func (c *Config) HasExtension(name string) bool {
	ext := strings.ToLower(filepath.Ext(name))
	for _, allowed := range c.Sources.Extensions {
		if ext == allowed {
			return true
		}
	}
	return false
}

func expandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	cleaned := filepath.Clean(pathValue)
	absolute, err := filepath.Abs(cleaned)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", cleaned, err)
	}
	return absolute, nil
}

// ExpandPath exposes the repository path expansion rules for other packages.
func ExpandPath(pathValue string) (string, error) {
	return expandPath(pathValue)
}

// CreateSample writes a sample configuration file to the specified location.
func CreateSample(path string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
	}

	if err := os.WriteFile(path, []byte(sampleConfig), 0o644); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}
