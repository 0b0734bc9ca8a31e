package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"logomatch/internal/config"
	"logomatch/internal/failures"
	"logomatch/internal/preflight"
)

func newConfigCommand(ctx *commandContext) *cobra.Command {
	configCmd := &cobra.Command{
		Use:   "config",
		Short: "Configuration utilities",
	}

	configCmd.AddCommand(newConfigValidateCommand(ctx))
	configCmd.AddCommand(newConfigInitCommand())

	return configCmd
}

func newConfigInitCommand() *cobra.Command {
	var targetPath string
	var overwrite bool

	cmd := &cobra.Command{
		Use:         "init",
		Short:       "Create a sample configuration file",
		Annotations: map[string]string{"skipConfigLoad": "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			target := strings.TrimSpace(targetPath)
			if target == "" {
				defaultPath, err := config.DefaultConfigPath()
				if err != nil {
					return fmt.Errorf("determine default config path: %w", err)
				}
				target = defaultPath
			} else {
				expanded, err := config.ExpandPath(target)
				if err != nil {
					return fmt.Errorf("resolve config path: %w", err)
				}
				target = expanded
			}

			dir := filepath.Dir(target)
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return fmt.Errorf("create config directory %q: %w", dir, err)
			}

			if !overwrite {
				if _, err := os.Stat(target); err == nil {
					return fmt.Errorf("config file already exists at %s (use --overwrite to replace it)", target)
				} else if !os.IsNotExist(err) {
					return fmt.Errorf("check config path: %w", err)
				}
			}

			if err := config.CreateSample(target); err != nil {
				return fmt.Errorf("create sample config: %w", err)
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Wrote sample configuration to %s\n", target)
			fmt.Fprintln(out, "Edit paths.source_dir and paths.catalog before running logomatch.")
			return nil
		},
	}

	cmd.Flags().StringVarP(&targetPath, "path", "p", "", "Destination for the configuration file")
	cmd.Flags().BoolVar(&overwrite, "overwrite", false, "Overwrite existing configuration if present")
	return cmd
}

func newConfigValidateCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "validate",
		Short: "Validate configuration, paths and catalog",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			checks := preflight.RunAll(cfg)
			if failed := preflight.Failed(checks); len(failed) > 0 {
				if ctx.JSONMode() {
					if err := writeJSON(cmd, map[string]any{"config_path": ctx.configPath, "checks": checks, "valid": false}); err != nil {
						return err
					}
				} else {
					printChecks(cmd.OutOrStdout(), checks)
				}
				return preflightError("config", failed)
			}

			cat, _, err := ctx.loadMatcher(cmd)
			if err != nil {
				return err
			}
			ids, err := ctx.listSources()
			if err != nil {
				return err
			}

			if ctx.JSONMode() {
				return writeJSON(cmd, map[string]any{
					"config_path": ctx.configPath,
					"checks":      checks,
					"catalog":     cat.Len(),
					"dropped":     cat.Dropped(),
					"duplicates":  cat.Duplicates(),
					"sources":     len(ids),
					"valid":       true,
				})
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Config path: %s\n", ctx.configPath)
			if _, err := os.Stat(ctx.configPath); err != nil {
				fmt.Fprintln(out, "Config file did not exist; defaults were used")
			}
			printChecks(out, checks)
			fmt.Fprintf(out, "Catalog: %s (%d entries", cfg.Paths.Catalog, cat.Len())
			if cat.Dropped() > 0 || cat.Duplicates() > 0 {
				fmt.Fprintf(out, ", %d dropped, %d duplicate names", cat.Dropped(), cat.Duplicates())
			}
			fmt.Fprintln(out, ")")
			fmt.Fprintf(out, "Sources: %s (%d files)\n", cfg.Paths.SourceDir, len(ids))
			fmt.Fprintln(out, "Configuration valid")
			return nil
		},
	}
}

func printChecks(out io.Writer, checks []preflight.Result) {
	rows := make([][]string, 0, len(checks))
	for _, check := range checks {
		status := "ok"
		if !check.Passed {
			status = "FAIL"
		}
		rows = append(rows, []string{check.Name, status, check.Detail})
	}
	fmt.Fprintln(out, renderTable([]string{"Check", "Status", "Detail"}, rows, nil))
}

func preflightError(stage string, failed []preflight.Result) error {
	names := make([]string, 0, len(failed))
	for _, check := range failed {
		names = append(names, check.Name+": "+check.Detail)
	}
	return failures.Wrap(failures.ErrConfiguration, stage, "preflight", strings.Join(names, "; "), nil)
}
