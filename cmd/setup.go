package cmd

import (
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/theirongolddev/finsight/internal/config"
	"github.com/theirongolddev/finsight/internal/tui/theme"

	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"
)

var setupCmd = &cobra.Command{
	Use:   "setup",
	Short: "First-time setup wizard",
	RunE:  runSetup,
}

func init() {
	rootCmd.AddCommand(setupCmd)
}

func runSetup(_ *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		// A broken file is what setup is for; start over from defaults.
		fmt.Printf("  Ignoring invalid config: %v\n\n", err)
		cfg = config.DefaultConfig()
	}

	baseURL := cfg.API.BaseURL
	freshness := strconv.Itoa(cfg.Cache.FreshnessSeconds)
	currency := cfg.Appearance.Currency
	themeName := cfg.Appearance.Theme
	signIn := cfg.API.Token == ""

	themes := make([]huh.Option[string], 0, len(theme.All))
	for _, name := range theme.Names() {
		themes = append(themes, huh.NewOption(name, name))
	}

	form := huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("API base URL").
				Description("Where the finance API lives, including the /api prefix.").
				Value(&baseURL).
				Validate(func(s string) error {
					u, err := url.Parse(strings.TrimSpace(s))
					if err != nil || u.Scheme == "" || u.Host == "" {
						return errors.New("enter an absolute URL such as http://127.0.0.1:8000/api")
					}
					return nil
				}),
			huh.NewInput().
				Title("Dashboard freshness (seconds)").
				Description("Repeat dashboard loads inside this window reuse the last fetch.").
				Value(&freshness).
				Validate(func(s string) error {
					if n, err := strconv.Atoi(s); err != nil || n < 0 {
						return errors.New("enter a whole number of seconds")
					}
					return nil
				}),
		).Title("Connection"),
		huh.NewGroup(
			huh.NewInput().
				Title("Currency symbol").
				Value(&currency),
			huh.NewSelect[string]().
				Title("Color theme").
				Options(themes...).
				Value(&themeName),
			huh.NewConfirm().
				Title("Sign in now?").
				Value(&signIn),
		).Title("Display"),
	)
	if err := form.Run(); err != nil {
		if errors.Is(err, huh.ErrUserAborted) {
			return nil
		}
		return err
	}

	cfg.API.BaseURL = strings.TrimRight(strings.TrimSpace(baseURL), "/")
	cfg.Cache.FreshnessSeconds, _ = strconv.Atoi(freshness)
	if c := strings.TrimSpace(currency); c != "" {
		cfg.Appearance.Currency = c
	}
	cfg.Appearance.Theme = themeName

	if err := saveConfig(cfg); err != nil {
		return fmt.Errorf("saving config: %w", err)
	}

	fmt.Println()
	fmt.Printf("  Saved to %s\n", configPath())
	fmt.Println("  Run `finsight setup` anytime to reconfigure.")
	fmt.Println()

	if signIn {
		return runLogin(loginCmd, nil)
	}
	return nil
}
