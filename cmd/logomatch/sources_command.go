package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"logomatch/internal/sources"
)

type sourceRow struct {
	ID         string   `json:"id"`
	Query      string   `json:"query"`
	Selections []string `json:"selections"`
}

func newSourcesCommand(ctx *commandContext) *cobra.Command {
	var filter string

	cmd := &cobra.Command{
		Use:   "sources",
		Short: "List logo files and their recorded selections",
		RunE: func(cmd *cobra.Command, args []string) error {
			ids, err := ctx.listSources()
			if err != nil {
				return err
			}
			ids = sources.Filter(ids, filter)

			store, err := ctx.openSelections(cmd)
			if err != nil {
				return err
			}
			defer store.Close()

			rows := make([]sourceRow, 0, len(ids))
			for _, id := range ids {
				names, _ := store.Get(id)
				if names == nil {
					names = []string{}
				}
				rows = append(rows, sourceRow{ID: id, Query: sources.Query(id), Selections: names})
			}

			if ctx.JSONMode() {
				return writeJSON(cmd, rows)
			}
			out := cmd.OutOrStdout()
			if len(rows) == 0 {
				fmt.Fprintln(out, "No source files found")
				return nil
			}
			table := make([][]string, 0, len(rows))
			resolved := 0
			for _, row := range rows {
				status := "-"
				if _, ok := store.Get(row.ID); ok {
					resolved++
					status = strconv.Itoa(len(row.Selections))
				}
				table = append(table, []string{row.ID, row.Query, status})
			}
			fmt.Fprintln(out, renderTable(
				[]string{"File", "Query", "Selections"},
				table,
				[]columnAlignment{alignLeft, alignLeft, alignRight},
			))
			fmt.Fprintf(out, "%d of %d resolved\n", resolved, len(rows))
			return nil
		},
	}

	cmd.Flags().StringVar(&filter, "filter", "", "Only list files fuzzily matching this pattern")
	return cmd
}
