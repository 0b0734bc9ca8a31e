package main

import (
	"errors"
	"fmt"
	"io"
	"path/filepath"

	"github.com/mattn/go-isatty"
	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"logomatch/internal/batch"
	"logomatch/internal/failures"
	"logomatch/internal/logging"
	"logomatch/internal/preflight"
)

type executeOutput struct {
	Plan   batch.Plan    `json:"plan"`
	Report *batch.Report `json:"report,omitempty"`
	Failed []failedCopy  `json:"failed,omitempty"`
}

type failedCopy struct {
	SourceID string `json:"source_id"`
	Name     string `json:"name"`
	To       string `json:"to"`
	Error    string `json:"error"`
}

func newExecuteCommand(ctx *commandContext) *cobra.Command {
	var (
		reset  bool
		yes    bool
		dryRun bool
	)

	cmd := &cobra.Command{
		Use:   "execute",
		Short: "Copy each logo to a file named after its selected schools",
		Long: `Execute writes one copy of each source file per selected school into the
output directory, named with the snake-cased school name and the source's
extension. A failed copy is reported without stopping the others.

The output directory must be empty unless --reset is given, which deletes its
contents first.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			logger := ctx.loggerFor(cmd)

			if failed := preflight.Failed(preflight.RunAll(cfg)); len(failed) > 0 {
				return preflightError("execute", failed)
			}

			cat, _, err := ctx.loadMatcher(cmd)
			if err != nil {
				return err
			}
			store, err := ctx.openSelections(cmd)
			if err != nil {
				return err
			}
			defer store.Close()

			plan := batch.BuildPlan(store.Snapshot(), cat, cfg.Paths.SourceDir, cfg.Paths.OutputDir)
			for _, stale := range plan.Stale {
				logging.WarnWithContext(logger, "selected school not in catalog", "stale_selection",
					logging.String(logging.FieldSourceID, stale.SourceID),
					logging.String("name", stale.Name),
					logging.String(logging.FieldErrorHint, "run 'logomatch resolve --all' or 'logomatch selections remove'"),
					logging.String(logging.FieldImpact, "no copy is written for this name"))
			}

			if dryRun {
				if ctx.JSONMode() {
					return writeJSON(cmd, executeOutput{Plan: plan})
				}
				printPlan(cmd.OutOrStdout(), plan)
				return nil
			}

			if len(plan.Operations) == 0 {
				if ctx.JSONMode() {
					return writeJSON(cmd, executeOutput{Plan: plan})
				}
				fmt.Fprintln(cmd.OutOrStdout(), "Nothing to copy")
				return nil
			}

			if reset && !yes {
				ok, err := confirm(cmd.InOrStdin(), cmd.ErrOrStderr(),
					fmt.Sprintf("Delete everything in %s before copying?", cfg.Paths.OutputDir))
				if err != nil {
					return err
				}
				if !ok {
					fmt.Fprintln(cmd.ErrOrStderr(), "Aborted")
					return nil
				}
			}

			bar := newCopyProgress(cmd.ErrOrStderr(), len(plan.Operations), !ctx.JSONMode())
			executor := batch.NewExecutor(batch.Options{
				Workers: cfg.Batch.Workers,
				Verify:  cfg.Batch.VerifyCopies,
				Reset:   reset,
				Logger:  logger,
			})
			report, err := executor.Execute(ctx.runContext(cmd), plan, func(batch.Result) {
				_ = bar.Add(1)
			})
			_ = bar.Finish()
			if err != nil {
				if errors.Is(err, batch.ErrOutputNotEmpty) {
					return fmt.Errorf("%w: %s (use --reset to clear it)", err, cfg.Paths.OutputDir)
				}
				return err
			}

			failed := make([]failedCopy, 0, len(report.Failed))
			for _, result := range report.Failed {
				failed = append(failed, failedCopy{
					SourceID: result.Operation.SourceID,
					Name:     result.Operation.Name,
					To:       result.Operation.To,
					Error:    result.Err.Error(),
				})
			}

			if ctx.JSONMode() {
				if err := writeJSON(cmd, executeOutput{Plan: plan, Report: &report, Failed: failed}); err != nil {
					return err
				}
			} else {
				out := cmd.OutOrStdout()
				if report.Cleared > 0 {
					fmt.Fprintf(out, "Cleared %d entr(ies) from %s\n", report.Cleared, cfg.Paths.OutputDir)
				}
				fmt.Fprintf(out, "Copied %d of %d file(s) in %s\n",
					len(report.Succeeded), len(plan.Operations), report.Duration.Round(1e6))
				for _, f := range failed {
					fmt.Fprintf(out, "  failed %s -> %s: %s\n", f.SourceID, filepath.Base(f.To), f.Error)
				}
			}
			if len(failed) > 0 {
				return failures.Wrap(failures.ErrOperation, "execute", "copy",
					fmt.Sprintf("%d of %d copies failed", len(failed), len(plan.Operations)), nil)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&reset, "reset", false, "Delete the output directory's contents before copying")
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "Do not ask before resetting the output directory")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "Show the planned copies without writing anything")
	return cmd
}

func printPlan(out io.Writer, plan batch.Plan) {
	if len(plan.Operations) == 0 {
		fmt.Fprintln(out, "Nothing to copy")
	} else {
		rows := make([][]string, 0, len(plan.Operations))
		for _, op := range plan.Operations {
			rows = append(rows, []string{op.SourceID, op.Name, filepath.Base(op.To)})
		}
		fmt.Fprintln(out, renderTable(
			[]string{"File", "School", "Destination"},
			rows,
			[]columnAlignment{alignLeft, alignLeft, alignLeft},
		))
		fmt.Fprintf(out, "%d cop(ies) into %s\n", len(plan.Operations), plan.OutputDir)
	}
	for _, stale := range plan.Stale {
		fmt.Fprintf(out, "  skipped %s: %q is not in the catalog\n", stale.SourceID, stale.Name)
	}
}

// newCopyProgress draws a progress bar on w when it is a terminal.
func newCopyProgress(w io.Writer, total int, enabled bool) *progressbar.ProgressBar {
	visible := enabled && isTerminal(w)
	return progressbar.NewOptions(total,
		progressbar.OptionSetWriter(w),
		progressbar.OptionSetDescription("copying"),
		progressbar.OptionShowCount(),
		progressbar.OptionClearOnFinish(),
		progressbar.OptionSetVisibility(visible),
	)
}

func isTerminal(w io.Writer) bool {
	type fdWriter interface{ Fd() uintptr }
	f, ok := w.(fdWriter)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}
