package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"logomatch/internal/promptcache"
)

func newCleanCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "clean",
		Short: "Delete cached prompts",
		Long:  "Clean removes the prompt cache so the next resolve recomputes every candidate list. Selections are kept.",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			removed, err := promptcache.Remove(cfg.Paths.PromptCache)
			if err != nil {
				return err
			}
			if ctx.JSONMode() {
				return writeJSON(cmd, map[string]any{"path": cfg.Paths.PromptCache, "removed": removed})
			}
			if removed {
				fmt.Fprintf(cmd.OutOrStdout(), "Removed %s\n", cfg.Paths.PromptCache)
			} else {
				fmt.Fprintln(cmd.OutOrStdout(), "No prompt cache to remove")
			}
			return nil
		},
	}
}
