package config

import (
	"fmt"
	"os"
	"strings"
)

func (c *Config) normalize() error {
	c.applyEnvFallbacks()
	if err := c.normalizePaths(); err != nil {
		return err
	}
	c.normalizeSources()
	c.normalizeMatching()
	c.normalizeBatch()
	c.normalizeLogging()
	return nil
}

func (c *Config) applyEnvFallbacks() {
	fallbacks := []struct {
		env    string
		target *string
	}{
		{"LOGOMATCH_CATALOG", &c.Paths.Catalog},
		{"LOGOMATCH_SOURCE_DIR", &c.Paths.SourceDir},
		{"LOGOMATCH_OUTPUT_DIR", &c.Paths.OutputDir},
	}
	for _, fb := range fallbacks {
		if value, ok := os.LookupEnv(fb.env); ok && strings.TrimSpace(value) != "" {
			*fb.target = strings.TrimSpace(value)
		}
	}
}

func (c *Config) normalizePaths() error {
	fields := []struct {
		key      string
		value    *string
		fallback string
	}{
		{"paths.source_dir", &c.Paths.SourceDir, defaultSourceDir},
		{"paths.output_dir", &c.Paths.OutputDir, defaultOutputDir},
		{"paths.catalog", &c.Paths.Catalog, defaultCatalogPath},
		{"paths.selections", &c.Paths.Selections, defaultSelectionsPath},
		{"paths.prompt_cache", &c.Paths.PromptCache, defaultPromptCachePath},
		{"paths.export_dir", &c.Paths.ExportDir, defaultExportDir},
		{"paths.log_dir", &c.Paths.LogDir, defaultLogDir},
	}
	for _, field := range fields {
		trimmed := strings.TrimSpace(*field.value)
		if trimmed == "" {
			trimmed = field.fallback
		}
		expanded, err := expandPath(trimmed)
		if err != nil {
			return fmt.Errorf("%s: %w", field.key, err)
		}
		*field.value = expanded
	}
	return nil
}

func (c *Config) normalizeSources() {
	seen := make(map[string]struct{}, len(c.Sources.Extensions))
	exts := make([]string, 0, len(c.Sources.Extensions))
	for _, ext := range c.Sources.Extensions {
		ext = strings.ToLower(strings.TrimSpace(ext))
		if ext == "" {
			continue
		}
		if !strings.HasPrefix(ext, ".") {
			ext = "." + ext
		}
		if _, dup := seen[ext]; dup {
			continue
		}
		seen[ext] = struct{}{}
		exts = append(exts, ext)
	}
	if len(exts) == 0 {
		exts = []string{defaultSourceExtensions}
	}
	c.Sources.Extensions = exts
}

func (c *Config) normalizeMatching() {
	if c.Matching.Threshold == 0 {
		c.Matching.Threshold = defaultThreshold
	}
	if c.Matching.Workers <= 0 {
		c.Matching.Workers = defaultMatchWorkers
	}
	if c.Matching.DebounceMillis <= 0 {
		c.Matching.DebounceMillis = defaultDebounceMillis
	}
	if c.Matching.MinQueryLength <= 0 {
		c.Matching.MinQueryLength = defaultMinQueryLength
	}
}

func (c *Config) normalizeBatch() {
	if c.Batch.Workers <= 0 {
		c.Batch.Workers = defaultBatchWorkers
	}
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	if c.Logging.Format == "" {
		c.Logging.Format = defaultLogFormat
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
}
