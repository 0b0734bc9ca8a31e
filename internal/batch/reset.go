package batch

import (
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"logomatch/internal/logging"
)

// ClearResult contains the outcome of emptying a directory.
type ClearResult struct {
	Removed []string
	Errors  []ClearError
}

// ClearError pairs a path with the error that kept it from being removed.
type ClearError struct {
	Path  string
	Error error
}

// ClearDirectory removes every entry inside dir, leaving dir itself in place.
// A missing directory is treated as already empty.
func ClearDirectory(dir string, logger *slog.Logger) ClearResult {
	result := ClearResult{}

	dir = strings.TrimSpace(dir)
	if dir == "" {
		return result
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		if !os.IsNotExist(err) {
			result.Errors = append(result.Errors, ClearError{Path: dir, Error: err})
		}
		return result
	}

	for _, entry := range entries {
		path := filepath.Join(dir, entry.Name())
		if err := os.RemoveAll(path); err != nil {
			result.Errors = append(result.Errors, ClearError{Path: path, Error: err})
			logging.WarnWithContext(logger, "failed to remove output entry", "output_reset_failed",
				logging.String("path", path),
				logging.Error(err),
				logging.String(logging.FieldErrorHint, "check output_dir permissions"),
				logging.String(logging.FieldImpact, "copies will not start until the directory is empty"),
			)
			continue
		}
		result.Removed = append(result.Removed, path)
	}
	if logger != nil && len(result.Removed) > 0 {
		logger.Info("cleared output directory",
			logging.String("path", dir),
			logging.Int("removed", len(result.Removed)),
			logging.String(logging.FieldEventType, "output_reset"),
		)
	}
	return result
}
