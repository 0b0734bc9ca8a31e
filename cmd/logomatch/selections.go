package main

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"logomatch/internal/failures"
	"logomatch/internal/selection"
)

func newSelectionsCommand(ctx *commandContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "selections",
		Aliases: []string{"sel"},
		Short:   "Inspect and edit recorded selections",
	}
	cmd.AddCommand(newSelectionsListCommand(ctx))
	cmd.AddCommand(newSelectionsShowCommand(ctx))
	cmd.AddCommand(newSelectionsSetCommand(ctx))
	cmd.AddCommand(newSelectionsRemoveCommand(ctx))
	cmd.AddCommand(newSelectionsFixCommand(ctx))
	cmd.AddCommand(newSelectionsExportCommand(ctx))
	cmd.AddCommand(newSelectionsImportCommand(ctx))
	cmd.AddCommand(newSelectionsClearCommand(ctx))
	return cmd
}

func newSelectionsListCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List every recorded selection",
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := ctx.openSelections(cmd)
			if err != nil {
				return err
			}
			defer store.Close()

			snapshot := store.Snapshot()
			if ctx.JSONMode() {
				return writeJSON(cmd, snapshot)
			}
			out := cmd.OutOrStdout()
			if len(snapshot) == 0 {
				fmt.Fprintln(out, "No selections recorded")
				return nil
			}
			rows := make([][]string, 0, len(snapshot))
			for _, key := range store.Keys() {
				names := snapshot[key]
				rows = append(rows, []string{key, strings.Join(names, "; "), strconv.Itoa(len(names))})
			}
			fmt.Fprintln(out, renderTable(
				[]string{"File", "Schools", "Count"},
				rows,
				[]columnAlignment{alignLeft, alignLeft, alignRight},
			))
			return nil
		},
	}
}

func newSelectionsShowCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "show <file>",
		Short: "Show the schools recorded for one file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := ctx.openSelections(cmd)
			if err != nil {
				return err
			}
			defer store.Close()

			key := args[0]
			names, ok := store.Get(key)
			if !ok {
				return failures.Wrap(failures.ErrNotFound, "selections", "show", fmt.Sprintf("no selection for %q", key), nil)
			}
			if ctx.JSONMode() {
				return writeJSON(cmd, map[string][]string{key: names})
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "%s\n", key)
			for _, name := range names {
				fmt.Fprintf(out, "  %s\n", name)
			}
			return nil
		},
	}
}

func newSelectionsSetCommand(ctx *commandContext) *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "set <file> <school>...",
		Short: "Replace the schools recorded for a file",
		Long: `Set replaces the recorded schools for a file. School names must match
catalog entries exactly unless --force is given.`,
		Args: cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			key, names := args[0], args[1:]
			if !force {
				cat, _, err := ctx.loadMatcher(cmd)
				if err != nil {
					return err
				}
				var unknown []string
				for _, name := range names {
					if !cat.Contains(strings.TrimSpace(name)) {
						unknown = append(unknown, name)
					}
				}
				if len(unknown) > 0 {
					return failures.Wrap(failures.ErrValidation, "selections", "set",
						fmt.Sprintf("not in catalog: %s", strings.Join(unknown, ", ")), nil)
				}
			}

			store, err := ctx.openSelections(cmd)
			if err != nil {
				return err
			}
			defer store.Close()

			if err := store.Set(key, names); err != nil {
				return err
			}
			stored, _ := store.Get(key)
			if ctx.JSONMode() {
				return writeJSON(cmd, map[string][]string{key: stored})
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Recorded %d school(s) for %s\n", len(stored), key)
			return nil
		},
	}

	cmd.Flags().BoolVar(&force, "force", false, "Accept names missing from the catalog")
	return cmd
}

func newSelectionsRemoveCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "remove <file> [school]",
		Short: "Remove one school, or the whole selection, for a file",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := ctx.openSelections(cmd)
			if err != nil {
				return err
			}
			defer store.Close()

			key := args[0]
			if len(args) == 2 {
				err = store.Remove(key, args[1])
			} else {
				err = store.Set(key, nil)
			}
			if err != nil {
				return err
			}
			remaining, _ := store.Get(key)
			if remaining == nil {
				remaining = []string{}
			}
			if ctx.JSONMode() {
				return writeJSON(cmd, map[string][]string{key: remaining})
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s now has %d school(s)\n", key, len(remaining))
			return nil
		},
	}
}

func newSelectionsFixCommand(ctx *commandContext) *cobra.Command {
	var (
		dryRun bool
		yes    bool
	)

	cmd := &cobra.Command{
		Use:   "fix",
		Short: "Re-key selections against the current file listing",
		Long: `Fix repairs selections recorded under positional indexes or stale paths.
A numeric key becomes the file at that position in the sorted listing, a path
key becomes its base name when that file exists, and keys matching no current
file are dropped. Dropping keys asks for confirmation unless --yes is given.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ids, err := ctx.listSources()
			if err != nil {
				return err
			}
			store, err := ctx.openSelections(cmd)
			if err != nil {
				return err
			}
			defer store.Close()

			resolve := selection.ListingResolver(ids)
			preview, err := store.PreviewReconcile(resolve)
			if err != nil {
				return err
			}
			if dryRun {
				return printReconcile(cmd, ctx, preview, "Would fix")
			}
			if preview.Dropped > 0 && !yes {
				ok, err := confirm(cmd.InOrStdin(), cmd.ErrOrStderr(),
					fmt.Sprintf("Drop %d selection(s) matching no file (%s)?",
						preview.Dropped, strings.Join(preview.DroppedKeys, ", ")))
				if err != nil {
					return err
				}
				if !ok {
					fmt.Fprintln(cmd.ErrOrStderr(), "Nothing changed")
					return nil
				}
			}

			result, err := store.Reconcile(resolve)
			if err != nil {
				return err
			}
			return printReconcile(cmd, ctx, result, "Fixed")
		},
	}

	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "Show what would change without writing")
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "Drop unmatched keys without asking")
	return cmd
}

func printReconcile(cmd *cobra.Command, ctx *commandContext, result selection.ReconcileResult, verb string) error {
	if ctx.JSONMode() {
		return writeJSON(cmd, result)
	}
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "%s %d, unchanged %d, dropped %d\n", verb, result.Fixed, result.Unchanged, result.Dropped)
	for _, key := range result.DroppedKeys {
		fmt.Fprintf(out, "  dropped: %s\n", key)
	}
	return nil
}

func newSelectionsExportCommand(ctx *commandContext) *cobra.Command {
	var dir string

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write a dated copy of the selections",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			if strings.TrimSpace(dir) == "" {
				dir = cfg.Paths.ExportDir
			}
			store, err := ctx.openSelections(cmd)
			if err != nil {
				return err
			}
			defer store.Close()

			path, err := store.Export(dir, time.Now())
			if err != nil {
				return err
			}
			if ctx.JSONMode() {
				return writeJSON(cmd, map[string]any{"path": path, "keys": store.Len()})
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Exported %d selection(s) to %s\n", store.Len(), path)
			return nil
		},
	}

	cmd.Flags().StringVar(&dir, "dir", "", "Directory to write into (defaults to paths.export_dir)")
	return cmd
}

func newSelectionsImportCommand(ctx *commandContext) *cobra.Command {
	var merge bool

	cmd := &cobra.Command{
		Use:   "import <file>",
		Short: "Load selections from an exported file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := ctx.openSelections(cmd)
			if err != nil {
				return err
			}
			defer store.Close()

			n, err := store.Import(args[0], merge)
			if err != nil {
				return err
			}
			if ctx.JSONMode() {
				return writeJSON(cmd, map[string]any{"imported": n, "keys": store.Len(), "merge": merge})
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Imported %d selection(s); %d stored\n", n, store.Len())
			return nil
		},
	}

	cmd.Flags().BoolVar(&merge, "merge", false, "Add to existing selections instead of replacing them")
	return cmd
}

func newSelectionsClearCommand(ctx *commandContext) *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:   "clear",
		Short: "Delete every recorded selection",
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := ctx.openSelections(cmd)
			if err != nil {
				return err
			}
			defer store.Close()

			if !yes {
				ok, err := confirm(cmd.InOrStdin(), cmd.ErrOrStderr(),
					fmt.Sprintf("Delete %d selection(s)?", store.Len()))
				if err != nil {
					return err
				}
				if !ok {
					fmt.Fprintln(cmd.OutOrStdout(), "Nothing deleted")
					return nil
				}
			}
			cleared := store.Len()
			if err := store.Clear(); err != nil {
				return err
			}
			if ctx.JSONMode() {
				return writeJSON(cmd, map[string]int{"cleared": cleared})
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted %d selection(s)\n", cleared)
			return nil
		},
	}

	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "Do not ask for confirmation")
	return cmd
}

// confirm asks a yes/no question and defaults to no.
func confirm(in io.Reader, out io.Writer, question string) (bool, error) {
	fmt.Fprintf(out, "%s [y/N] ", question)
	line, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && err != io.EOF {
		return false, err
	}
	switch strings.ToLower(strings.TrimSpace(line)) {
	case "y", "yes":
		return true, nil
	default:
		return false, nil
	}
}
