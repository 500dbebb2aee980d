package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/company-profiler/internal/config"
)

var cfg *config.Config

// reportCommands write XLSX reports and need export.dir to exist.
var reportCommands = map[string]bool{"serve": true, "url": true, "name": true, "bulk": true}

var rootCmd = &cobra.Command{
	Use:   "profiler",
	Short: "Company profile discovery and extraction",
	Long:  "Resolves a company's website, crawls it, extracts a structured profile and cross-checks contact details across pages.",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		c, err := config.Load()
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		cfg = c

		if err := config.InitLogger(cfg.Log); err != nil {
			return fmt.Errorf("init logger: %w", err)
		}

		if reportCommands[cmd.Name()] {
			if err := os.MkdirAll(cfg.Export.Dir, 0o755); err != nil {
				return fmt.Errorf("create export dir %s: %w", cfg.Export.Dir, err)
			}
		}
		logProviders(cfg)
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = zap.L().Sync()
	},
}

// logProviders records which optional external services are configured.
func logProviders(c *config.Config) {
	zap.L().Debug("providers",
		zap.String("store", c.Store.Driver),
		zap.Bool("anthropic", c.Anthropic.Key != ""),
		zap.Bool("google", c.Google.Enabled()),
		zap.Bool("bing", c.Bing.Key != ""),
		zap.String("export_dir", c.Export.Dir),
	)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
