package main

import (
	"context"
	"log/slog"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"logomatch/internal/catalog"
	"logomatch/internal/config"
	"logomatch/internal/logging"
	"logomatch/internal/matcher"
	"logomatch/internal/selection"
	"logomatch/internal/sources"
)

type commandContext struct {
	configFlag  *string
	jsonFlag    *bool
	verboseFlag *bool

	configOnce sync.Once
	config     *config.Config
	configPath string
	configErr  error

	loggerOnce sync.Once
	logger     *slog.Logger
	closeLog   func() error
	sessionID  string
}

func newCommandContext(configFlag *string, jsonFlag, verboseFlag *bool) *commandContext {
	return &commandContext{
		configFlag:  configFlag,
		jsonFlag:    jsonFlag,
		verboseFlag: verboseFlag,
		sessionID:   uuid.NewString(),
	}
}

func (c *commandContext) ensureConfig() (*config.Config, error) {
	c.configOnce.Do(func() {
		var path string
		if c.configFlag != nil {
			path = strings.TrimSpace(*c.configFlag)
		}
		cfg, resolved, _, err := config.Load(path)
		if err != nil {
			c.configErr = err
			return
		}
		if err := cfg.EnsureDirectories(); err != nil {
			c.configErr = err
			return
		}
		if c.verboseFlag != nil && *c.verboseFlag {
			cfg.Logging.Level = "debug"
		}
		c.config = cfg
		c.configPath = resolved
	})
	return c.config, c.configErr
}

// JSONMode reports whether --json was given.
func (c *commandContext) JSONMode() bool {
	return c.jsonFlag != nil && *c.jsonFlag
}

// loggerFor returns the session logger, creating it on first use. Console
// output goes to the command's stderr.
func (c *commandContext) loggerFor(cmd *cobra.Command) *slog.Logger {
	c.loggerOnce.Do(func() {
		cfg, _ := c.ensureConfig()
		logger, closer, err := logging.NewFromConfig(cfg, cmd.ErrOrStderr(), c.sessionID)
		if err != nil {
			fallback, _ := logging.New(logging.Options{Level: "info", Writer: cmd.ErrOrStderr()})
			logging.WarnWithContext(fallback, "log file unavailable", "log_setup_failed",
				logging.Error(err),
				logging.String(logging.FieldErrorHint, "check paths.log_dir"),
				logging.String(logging.FieldImpact, "logs are written to the console only"))
			logger, closer = fallback, func() error { return nil }
		}
		c.logger = logger
		c.closeLog = closer
	})
	return c.logger
}

// runContext annotates the command context with the session ID.
func (c *commandContext) runContext(cmd *cobra.Command) context.Context {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	return logging.WithSessionID(ctx, c.sessionID)
}

func (c *commandContext) close() error {
	if c.closeLog == nil {
		return nil
	}
	err := c.closeLog()
	c.closeLog = nil
	return err
}

// loadMatcher loads the configured catalog and builds a matcher over it.
func (c *commandContext) loadMatcher(cmd *cobra.Command) (*catalog.Catalog, *matcher.Matcher, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, nil, err
	}
	cat, err := catalog.Load(c.runContext(cmd), cfg.Paths.Catalog, c.loggerFor(cmd))
	if err != nil {
		return nil, nil, err
	}
	index := cat.Build(catalog.IndexOptions{
		Alias:   cfg.Matching.IndexAlias,
		Website: cfg.Matching.IndexWebsite,
	})
	m := matcher.New(index, matcher.Options{
		Threshold: cfg.Matching.Threshold,
		Limit:     cfg.Matching.Limit,
	})
	return cat, m, nil
}

func (c *commandContext) openSelections(cmd *cobra.Command) (*selection.Store, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}
	return selection.Open(cfg.Paths.Selections, c.loggerFor(cmd))
}

func (c *commandContext) listSources() ([]string, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}
	return sources.List(cfg.Paths.SourceDir, cfg.Sources.Extensions)
}

func shouldSkipConfig(cmd *cobra.Command) bool {
	for c := cmd; c != nil; c = c.Parent() {
		if c.Annotations != nil && c.Annotations["skipConfigLoad"] == "true" {
			return true
		}
	}
	return false
}
