package preflight

import (
	"path/filepath"

	"logomatch/internal/config"
)

// Result reports the outcome of a single preflight check.
type Result struct {
	Name   string `json:"name"`
	Passed bool   `json:"passed"`
	Detail string `json:"detail"`
}

// RunAll executes every path check for cfg.
func RunAll(cfg *config.Config) []Result {
	if cfg == nil {
		return nil
	}
	return []Result{
		CheckDirectoryAccess("Source directory", cfg.Paths.SourceDir, false),
		CheckFileReadable("Catalog", cfg.Paths.Catalog),
		CheckCreatable("Output directory", cfg.Paths.OutputDir),
		CheckCreatable("Selections directory", filepath.Dir(cfg.Paths.Selections)),
		CheckCreatable("Prompt cache directory", filepath.Dir(cfg.Paths.PromptCache)),
	}
}

// Failed returns the results that did not pass.
func Failed(results []Result) []Result {
	var out []Result
	for _, r := range results {
		if !r.Passed {
			out = append(out, r)
		}
	}
	return out
}
