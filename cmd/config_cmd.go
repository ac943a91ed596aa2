package cmd

import (
	"fmt"
	"net/url"
	"os"

	"github.com/theirongolddev/finsight/internal/config"

	"github.com/spf13/cobra"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Show current configuration",
	RunE:  runConfig,
}

func init() {
	rootCmd.AddCommand(configCmd)
}

func runConfig(_ *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	path := configPath()
	fmt.Printf("  Config file: %s\n", path)
	if _, err := os.Stat(path); err == nil {
		fmt.Println("  Status: loaded")
	} else {
		fmt.Println("  Status: using defaults (no config file)")
	}
	fmt.Println()

	fmt.Println("  [API]")
	fmt.Printf("    Base URL: %s%s\n", config.GetAPIURL(cfg), overridden(config.EnvAPIURL))
	if token := config.GetToken(cfg); token != "" {
		fmt.Printf("    Token:    %s%s\n", maskSecret(token), overridden(config.EnvToken))
	} else {
		fmt.Println("    Token:    not configured (run `finsight login`)")
	}
	fmt.Printf("    Timeout:  %s\n", cfg.RequestTimeout())
	fmt.Println()

	fmt.Println("  [Cache]")
	fmt.Printf("    Freshness window: %s\n", cfg.FreshnessWindow())
	fmt.Printf("    Dashboard limit:  %d\n", cfg.Cache.DashboardLimit)
	fmt.Println()

	fmt.Println("  [TUI]")
	fmt.Printf("    Auto-refresh: %v every %s\n", cfg.TUI.AutoRefresh, cfg.RefreshInterval())
	fmt.Println()

	fmt.Println("  [Daemon]")
	fmt.Printf("    Address:  %s\n", cfg.Daemon.Addr)
	fmt.Printf("    Schedule: %s\n", cfg.Daemon.Schedule)
	if cfg.Daemon.AMQPURL != "" {
		fmt.Printf("    AMQP:     %s (exchange %s)\n", maskURL(cfg.Daemon.AMQPURL), cfg.Daemon.AMQPExchange)
	} else {
		fmt.Println("    AMQP:     disabled")
	}
	fmt.Println()

	fmt.Println("  [Sandbox]")
	fmt.Printf("    Address:  %s\n", cfg.Sandbox.Addr)
	fmt.Printf("    Database: %s\n", sandboxDBPath(cfg))
	fmt.Println()

	fmt.Println("  [Appearance]")
	fmt.Printf("    Currency: %s\n", cfg.Appearance.Currency)
	fmt.Printf("    Theme:    %s\n", cfg.Appearance.Theme)
	fmt.Println()

	fmt.Println("  Run `finsight setup` to reconfigure.")
	return nil
}

func overridden(env string) string {
	if os.Getenv(env) != "" {
		return " (from $" + env + ")"
	}
	return ""
}

func maskSecret(s string) string {
	if len(s) > 16 {
		return s[:8] + "..." + s[len(s)-4:]
	}
	if len(s) > 4 {
		return s[:4] + "..."
	}
	return "****"
}

// maskURL hides any password embedded in a broker URL.
func maskURL(raw string) string {
	u, err := url.Parse(raw)
	if err != nil {
		return "(unparseable)"
	}
	return u.Redacted()
}
