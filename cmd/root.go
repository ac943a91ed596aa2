// Package cmd implements the finsight CLI commands.
package cmd

import (
	"errors"
	"fmt"
	"os"

	"github.com/theirongolddev/finsight/internal/api"
	"github.com/theirongolddev/finsight/internal/config"
	"github.com/theirongolddev/finsight/internal/txcache"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var (
	flagConfig  string
	flagVerbose bool
	flagQuiet   bool
)

var rootCmd = &cobra.Command{
	Use:   "finsight",
	Short: "Personal finance dashboard for the terminal",
	Long:  "Browse recent transactions, period analytics, and totals from your finance API.",
	RunE:  runDashboard,
	PersistentPreRun: func(_ *cobra.Command, _ []string) {
		// .env is a development convenience; a missing file is fine.
		_ = godotenv.Load()
	},
	SilenceUsage: true,
}

// Execute is the main entry point called from main.go.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagConfig, "config", "", "Config file (default "+config.Path()+")")
	rootCmd.PersistentFlags().BoolVarP(&flagVerbose, "verbose", "v", false, "Log cache activity to stderr")
	rootCmd.PersistentFlags().BoolVarP(&flagQuiet, "quiet", "q", false, "Suppress progress output")
	rootCmd.Flags().BoolVarP(&flagForce, "force", "f", false, "Bypass the freshness window")
	rootCmd.Flags().BoolVar(&flagJSON, "json", false, "Print the snapshot as JSON")
}

// loadConfig reads --config or the default path. The result is validated so
// a bad file fails with every problem listed at once.
func loadConfig() (config.Config, error) {
	path := flagConfig
	if path == "" {
		path = config.Path()
	}
	cfg, err := config.LoadFile(path)
	if err != nil {
		return cfg, err
	}
	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("invalid config %s: %w", path, err)
	}
	return cfg, nil
}

func saveConfig(cfg config.Config) error {
	if flagConfig != "" {
		return config.SaveFile(flagConfig, cfg)
	}
	return config.Save(cfg)
}

func newLogger() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(os.Stderr)
	log.SetLevel(logrus.WarnLevel)
	if flagVerbose {
		log.SetLevel(logrus.DebugLevel)
	}
	return log
}

// newClient builds the API transport from config and env overrides.
func newClient(cfg config.Config) *api.Client {
	return api.NewClient(config.GetAPIURL(cfg), config.GetToken(cfg), api.WithTimeout(cfg.RequestTimeout()))
}

// newCache is the shared construction path used by every command that reads
// through the cache.
func newCache(cfg config.Config, log *logrus.Logger) *txcache.Cache {
	return txcache.New(newClient(cfg),
		txcache.WithLogger(log),
		txcache.WithFreshnessWindow(cfg.FreshnessWindow()),
		txcache.WithDashboardLimit(cfg.Cache.DashboardLimit),
	)
}

// explain turns transport sentinels into actionable messages.
func explain(err error) error {
	switch {
	case errors.Is(err, api.ErrUnauthorized):
		return errors.New("token expired or invalid, run `finsight login`")
	case errors.Is(err, api.ErrRateLimited):
		return errors.New("rate limited by the API, try again in a minute")
	case errors.Is(err, api.ErrNotFound):
		return fmt.Errorf("not found: %w", err)
	}
	return err
}

func progress(format string, args ...any) {
	if !flagQuiet {
		fmt.Fprintf(os.Stderr, format, args...)
	}
}
