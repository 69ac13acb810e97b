package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"scrollstop/internal/config"
	"scrollstop/internal/settings"
	"scrollstop/internal/store"
)

var (
	// Global flags
	verbose    bool
	configPath string

	// Logger
	logger *zap.Logger
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "scrollstop",
	Short: "scrollstop - per-site scroll budgets for your browser",
	Long: `scrollstop watches your browser over the DevTools protocol and enforces a
scroll budget on sites you pick. Spend the budget and the page is blocked
for a moment, then redirected somewhere more useful. Hit the daily block
limit and the site stays locked until tomorrow.

Run without arguments to start the enforcement daemon.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		zcfg := zap.NewProductionConfig()
		level := cfg.Logging.Level
		if verbose {
			level = "debug"
		}
		var lvl zapcore.Level
		if err := lvl.Set(level); err != nil {
			lvl = zapcore.InfoLevel
		}
		zcfg.Level = zap.NewAtomicLevelAt(lvl)
		logger, err = zcfg.Build()
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
		return runDaemon(cmd)
	},
}

func loadConfig() (*config.Config, error) {
	path := configPath
	if path == "" {
		path = config.DefaultPath()
	}
	cfg, err := config.Load(path)
	if err != nil {
		return nil, err
	}
	return cfg, nil
}

// openStore opens the database and seeds default preferences on first run.
func openStore(ctx context.Context, cfg *config.Config) (*store.Store, error) {
	st, err := store.Open(cfg.Database.Path)
	if err != nil {
		return nil, err
	}
	_, err = st.LoadPreferences(ctx)
	if errors.Is(err, store.ErrNotFound) {
		if err := st.SavePreferences(ctx, settings.Default()); err != nil {
			_ = st.Close()
			return nil, fmt.Errorf("seed default preferences: %w", err)
		}
		return st, nil
	}
	if err != nil {
		_ = st.Close()
		return nil, err
	}
	return st, nil
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "config file (default ~/.scrollstop/config.yaml)")

	rootCmd.AddCommand(settingsCmd)
	rootCmd.AddCommand(sitesCmd)
	rootCmd.AddCommand(statsCmd)
	rootCmd.AddCommand(tuiCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
