package config

const (
	defaultConfigPath       = "~/.config/logomatch/config.toml"
	projectConfigName       = "logomatch.toml"
	defaultSourceDir        = "./logos"
	defaultOutputDir        = "./renamed"
	defaultCatalogPath      = "./schools.json"
	defaultSelectionsPath   = "~/.local/share/logomatch/selections.json"
	defaultPromptCachePath  = "~/.local/share/logomatch/prompts.db"
	defaultExportDir        = "."
	defaultLogDir           = "~/.local/share/logomatch/logs"
	defaultThreshold        = 0.6
	defaultLimit            = 20
	defaultMatchWorkers     = 4
	defaultDebounceMillis   = 500
	defaultMinQueryLength   = 3
	defaultBatchWorkers     = 8
	defaultLogFormat        = "console"
	defaultLogLevel         = "info"
	defaultSourceExtensions = ".png"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			SourceDir:   defaultSourceDir,
			OutputDir:   defaultOutputDir,
			Catalog:     defaultCatalogPath,
			Selections:  defaultSelectionsPath,
			PromptCache: defaultPromptCachePath,
			ExportDir:   defaultExportDir,
			LogDir:      defaultLogDir,
		},
		Sources: Sources{
			Extensions: []string{defaultSourceExtensions},
		},
		Matching: Matching{
			Threshold:      defaultThreshold,
			Limit:          defaultLimit,
			IndexAlias:     true,
			IndexWebsite:   true,
			Workers:        defaultMatchWorkers,
			DebounceMillis: defaultDebounceMillis,
			MinQueryLength: defaultMinQueryLength,
		},
		Batch: Batch{
			Workers:      defaultBatchWorkers,
			VerifyCopies: true,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
