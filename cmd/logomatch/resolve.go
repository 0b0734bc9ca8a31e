package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"logomatch/internal/logging"
	"logomatch/internal/prompt"
	"logomatch/internal/promptcache"
	"logomatch/internal/resultcache"
	"logomatch/internal/session"
	"logomatch/internal/sources"
)

func newResolveCommand(ctx *commandContext) *cobra.Command {
	var (
		answersPath string
		acceptBest  bool
		all         bool
		refresh     bool
		filter      string
	)

	cmd := &cobra.Command{
		Use:   "resolve",
		Short: "Choose the matching schools for each logo file",
		Long: `Resolve walks the source directory in name order and asks which catalog
entries each file represents. Answer with choice numbers ("1,3" or "2-4"),
"s" to skip, "n" when nothing matches, or "q" to stop. Every answer is saved
as soon as it is given.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			logger := ctx.loggerFor(cmd)
			runCtx := ctx.runContext(cmd)

			ids, err := ctx.listSources()
			if err != nil {
				return err
			}
			ids = sources.Filter(ids, filter)

			cat, m, err := ctx.loadMatcher(cmd)
			if err != nil {
				return err
			}

			store, err := ctx.openSelections(cmd)
			if err != nil {
				return err
			}
			defer store.Close()

			if refresh {
				if _, err := promptcache.Remove(cfg.Paths.PromptCache); err != nil {
					return err
				}
			}

			opts := session.Options{
				Matcher:      m,
				Cache:        resultcache.New(cfg.Matching.CacheMaxEntries),
				Store:        store,
				Workers:      cfg.Matching.Workers,
				Logger:       logger,
				SkipResolved: !all,
			}

			settings := promptcache.Settings{
				Threshold:    cfg.Matching.Threshold,
				Limit:        cfg.Matching.Limit,
				IndexAlias:   cfg.Matching.IndexAlias,
				IndexWebsite: cfg.Matching.IndexWebsite,
			}
			if fp, err := promptcache.Fingerprint(cfg.Paths.Catalog, settings, ids); err == nil {
				cache, err := promptcache.Open(runCtx, cfg.Paths.PromptCache)
				if err != nil {
					logging.WarnWithContext(logger, "prompt cache unavailable", "prompt_cache_open_failed",
						logging.Error(err),
						logging.String(logging.FieldErrorHint, "run 'logomatch clean'"),
						logging.String(logging.FieldImpact, "candidates are computed without caching"))
				} else {
					defer cache.Close()
					opts.PromptCache = cache
					opts.Fingerprint = fp
				}
			}

			var presenter session.Presenter
			if strings.TrimSpace(answersPath) != "" {
				answers, err := prompt.LoadAnswers(answersPath)
				if err != nil {
					return err
				}
				answers.AcceptBest = acceptBest
				answers.Known = cat.Contains
				answers.Logger = logger
				presenter = answers
			} else {
				out := cmd.OutOrStdout()
				term := prompt.NewTerminal(cmd.InOrStdin(), out, prompt.NewPainter(prompt.ShouldColorize(out)))
				term.Total = countPending(ids, store, all)
				presenter = term
			}
			opts.Presenter = presenter

			sess, err := session.New(opts)
			if err != nil {
				return err
			}

			summary, err := sess.Run(runCtx, ids)
			quit := errors.Is(err, prompt.ErrQuit)
			if err != nil && !quit {
				return err
			}

			if ctx.JSONMode() {
				return writeJSON(cmd, struct {
					session.Summary
					Quit bool `json:"quit"`
				}{summary, quit})
			}
			out := cmd.OutOrStdout()
			if quit {
				fmt.Fprintln(out, "Stopped; answers given so far are saved.")
			}
			fmt.Fprintf(out, "Sources: %d (already resolved %d)\n", summary.Sources, summary.AlreadyResolved)
			fmt.Fprintf(out, "Prompts: %d, recorded %d, skipped %d, without candidates %d\n",
				summary.Requests, summary.Recorded, summary.Skipped, summary.EmptyMatches)
			return nil
		},
	}

	cmd.Flags().StringVar(&answersPath, "answers", "", "Decide prompts from a YAML or JSON file mapping file names to school names")
	cmd.Flags().BoolVar(&acceptBest, "accept-best", false, "With --answers, accept a high-confidence top choice for unlisted files")
	cmd.Flags().BoolVar(&all, "all", false, "Prompt for files that already have a selection")
	cmd.Flags().BoolVar(&refresh, "refresh", false, "Discard cached prompts and recompute candidates")
	cmd.Flags().StringVar(&filter, "filter", "", "Only resolve files fuzzily matching this pattern")
	return cmd
}

type selectionLookup interface {
	Get(key string) ([]string, bool)
}

func countPending(ids []string, store selectionLookup, all bool) int {
	if all {
		return len(ids)
	}
	n := 0
	for _, id := range ids {
		if _, ok := store.Get(id); !ok {
			n++
		}
	}
	return n
}
