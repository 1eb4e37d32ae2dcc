package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"poursuite/internal/catalog"
	"poursuite/internal/config"
	"poursuite/internal/logging"
)

var (
	// Global flags
	cfgPath string
	verbose bool

	cfg    *config.Config
	logger *zap.Logger
)

// rootCmd represents the base command. Run without arguments it starts the
// interactive search menu.
var rootCmd = &cobra.Command{
	Use:   "poursuite",
	Short: "poursuite - sharded full-text search over court documents",
	Long: `poursuite searches a corpus of court-document paragraphs partitioned
across many SQLite shard files, one per year or half-year.

Queries combine full-text keywords, process numbers and date ranges;
results are grouped by process, ordered, paginated and exportable to CSV.

Run without arguments to start the interactive menu.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.Load(cfgPath)
		if err != nil {
			return err
		}

		level := cfg.Logging.Level
		if verbose {
			level = "debug"
		}
		logger, err = logging.New(cfg.Env, level)
		if err != nil {
			return fmt.Errorf("initialize logger: %w", err)
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		return runInteractive()
	},
}

// openCatalog discovers shards once and hands ownership to the caller,
// which must Close it at shutdown.
func openCatalog() (*catalog.Catalog, error) {
	cat, err := catalog.Open(cfg.ShardDir, logger)
	if err != nil {
		return nil, err
	}
	if cat.Len() == 0 {
		logger.Warn("catalog is empty", zap.String("dir", cfg.ShardDir))
	}
	return cat, nil
}

func main() {
	rootCmd.PersistentFlags().StringVar(&cfgPath, "config", "poursuite.yaml", "path to the YAML config file")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(searchCmd)
	rootCmd.AddCommand(statsCmd)
	rootCmd.AddCommand(scrapeCmd)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
