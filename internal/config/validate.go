package config

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validatePaths(); err != nil {
		return err
	}
	if err := c.validateMatching(); err != nil {
		return err
	}
	if err := c.validateLogging(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validatePaths() error {
	if filepath.Clean(c.Paths.SourceDir) == filepath.Clean(c.Paths.OutputDir) {
		return errors.New("paths.output_dir must differ from paths.source_dir; execute --reset clears the output directory")
	}
	switch strings.ToLower(filepath.Ext(c.Paths.Catalog)) {
	case ".json", ".jsonl", ".ndjson", ".yaml", ".yml", ".parquet":
	default:
		return fmt.Errorf("paths.catalog must be a .json, .jsonl, .yaml or .parquet file, got %q", c.Paths.Catalog)
	}
	return nil
}

func (c *Config) validateMatching() error {
	if c.Matching.Threshold <= 0 || c.Matching.Threshold > 1 {
		return errors.New("matching.threshold must be greater than 0 and at most 1")
	}
	if c.Matching.Limit < 0 {
		return errors.New("matching.limit must be zero (unlimited) or positive")
	}
	if c.Matching.CacheMaxEntries < 0 {
		return errors.New("matching.cache_max_entries must be zero (unbounded) or positive")
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Format {
	case "console", "json":
	default:
		return fmt.Errorf("logging.format must be console or json, got %q", c.Logging.Format)
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging.level must be debug, info, warn or error, got %q", c.Logging.Level)
	}
	return nil
}
