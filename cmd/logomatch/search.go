package main

import (
	"bufio"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/spf13/cobra"

	"logomatch/internal/matcher"
	"logomatch/internal/resultcache"
	"logomatch/internal/session"
)

func newSearchCommand(ctx *commandContext) *cobra.Command {
	var interactive bool

	cmd := &cobra.Command{
		Use:   "search [query...]",
		Short: "Search the catalog for a school",
		Long: `Search scores every catalog entry against the query and lists the
candidates under the configured threshold, closest first.

With --interactive, each line read from stdin replaces the pending query and
results are shown once input settles.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			_, m, err := ctx.loadMatcher(cmd)
			if err != nil {
				return err
			}
			cache := resultcache.New(cfg.Matching.CacheMaxEntries)

			if !interactive {
				query := strings.Join(args, " ")
				if strings.TrimSpace(query) == "" {
					return fmt.Errorf("search requires a query")
				}
				candidates, _ := resultcache.Lookup(cache, m, query)
				return printCandidates(cmd, ctx.JSONMode(), query, candidates)
			}

			var (
				publishMu  sync.Mutex
				publishErr error
			)
			live := session.NewLiveSearch(session.LiveSearchOptions{
				Matcher:   m,
				Cache:     cache,
				Delay:     time.Duration(cfg.Matching.DebounceMillis) * time.Millisecond,
				MinLength: cfg.Matching.MinQueryLength,
				Publish: func(query string, candidates []matcher.Candidate) {
					publishMu.Lock()
					defer publishMu.Unlock()
					if query == "" || publishErr != nil {
						return
					}
					publishErr = printCandidates(cmd, ctx.JSONMode(), query, candidates)
				},
			})
			defer live.Close()

			runCtx := ctx.runContext(cmd)
			scanner := bufio.NewScanner(cmd.InOrStdin())
			for scanner.Scan() {
				live.Update(runCtx, scanner.Text())
			}
			live.Flush()
			if err := scanner.Err(); err != nil {
				return err
			}
			publishMu.Lock()
			defer publishMu.Unlock()
			return publishErr
		},
	}

	cmd.Flags().BoolVarP(&interactive, "interactive", "i", false, "Read queries line by line from stdin")
	return cmd
}

type searchResult struct {
	Query      string              `json:"query"`
	Candidates []matcher.Candidate `json:"candidates"`
}

func printCandidates(cmd *cobra.Command, jsonMode bool, query string, candidates []matcher.Candidate) error {
	if jsonMode {
		return writeJSON(cmd, searchResult{Query: query, Candidates: candidates})
	}
	out := cmd.OutOrStdout()
	if len(candidates) == 0 {
		fmt.Fprintf(out, "No schools match %q\n", query)
		return nil
	}
	rows := make([][]string, 0, len(candidates))
	for i, c := range candidates {
		rows = append(rows, []string{
			strconv.Itoa(i + 1),
			c.Entry.Name,
			location(c.Entry.City, c.Entry.State),
			strconv.FormatFloat(c.Score, 'f', 4, 64),
			matcher.Classify(c.Score).String(),
			c.Field.String(),
		})
	}
	fmt.Fprintf(out, "Results for %q\n", query)
	fmt.Fprintln(out, renderTable(
		[]string{"#", "School", "Location", "Score", "Confidence", "Field"},
		rows,
		[]columnAlignment{alignRight, alignLeft, alignLeft, alignRight, alignLeft, alignLeft},
	))
	return nil
}

func location(city, state string) string {
	switch {
	case city != "" && state != "":
		return city + ", " + state
	case city != "":
		return city
	default:
		return state
	}
}
