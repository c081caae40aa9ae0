package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"mspro-labs/cafe-critic/internal/config"
	"mspro-labs/cafe-critic/internal/db"
)

var (
	verbose bool
	logger  *zap.Logger
)

var rootCmd = &cobra.Command{
	Use:   "cafe-critic",
	Short: "Browse and curate a list of rated cafés",
	Long: `cafe-critic keeps a small database of cafés with ratings for coffee, tea,
wifi, cake, work-friendliness and breakfast, and serves a web UI to edit it.

Configuration comes from the environment (or a .env file):
  SECRET_KEY   required, signs form tokens
  DB_PATH      SQLite file (default ./local-data/cafes.db)
  CONFIG_PATH  optional YAML server settings (default config.yaml)
  ADDR         listen address override`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if err := config.LoadDotEnv(".env"); err != nil {
			return fmt.Errorf("failed to load .env: %w", err)
		}

		cfg := zap.NewProductionConfig()
		if verbose {
			cfg.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
		}
		var err error
		logger, err = cfg.Build()
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// openStore connects to the configured database, creating its directory if needed.
func openStore(appCfg config.AppConfig) (*db.Store, func(), error) {
	if dir := filepath.Dir(appCfg.DBPath); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, nil, fmt.Errorf("failed to create data directory: %w", err)
		}
	}
	database, err := db.Connect(appCfg.DBPath)
	if err != nil {
		return nil, nil, err
	}
	logger.Debug("database ready", zap.String("path", appCfg.DBPath))
	return db.NewStore(database), func() { database.Close() }, nil
}
