package tui

import (
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/theirongolddev/finsight/internal/config"
	"github.com/theirongolddev/finsight/internal/tui/theme"

	"github.com/charmbracelet/huh"
)

// settingsValues backs the settings form. It lives on the heap so the form's
// value pointers survive App being copied between updates.
type settingsValues struct {
	currency    string
	themeName   string
	autoRefresh bool
	interval    int
}

var refreshOptions = []int{15, 30, 60, 300}

func settingsFromConfig(cfg config.Config) *settingsValues {
	return &settingsValues{
		currency:    cfg.Appearance.Currency,
		themeName:   cfg.Appearance.Theme,
		autoRefresh: cfg.TUI.AutoRefresh,
		interval:    cfg.TUI.RefreshIntervalSec,
	}
}

// newSettingsForm builds the first-run and in-app settings form. Connection
// settings live in `finsight setup` since changing them needs a new client.
func newSettingsForm(vals *settingsValues, firstRun bool) *huh.Form {
	title := "Display settings"
	if firstRun {
		title = "Welcome to finsight"
	}

	themes := make([]huh.Option[string], 0, len(theme.All))
	for _, name := range theme.Names() {
		themes = append(themes, huh.NewOption(name, name))
	}

	intervals := make([]huh.Option[int], 0, len(refreshOptions))
	for _, secs := range refreshOptions {
		intervals = append(intervals, huh.NewOption(formatInterval(secs), secs))
	}

	return huh.NewForm(
		huh.NewGroup(
			huh.NewNote().
				Title(title).
				Description("Saved to "+config.Path()),
			huh.NewInput().
				Title("Currency symbol").
				Value(&vals.currency).
				Validate(func(s string) error {
					if strings.TrimSpace(s) == "" {
						return errors.New("currency symbol is required")
					}
					return nil
				}),
			huh.NewSelect[string]().
				Title("Color theme").
				Options(themes...).
				Value(&vals.themeName),
		),
		huh.NewGroup(
			huh.NewConfirm().
				Title("Refresh the dashboard automatically?").
				Value(&vals.autoRefresh),
			huh.NewSelect[int]().
				Title("Refresh interval").
				Options(intervals...).
				Value(&vals.interval),
		),
	).WithShowHelp(false)
}

func formatInterval(secs int) string {
	d := time.Duration(secs) * time.Second
	if d >= time.Minute && d%time.Minute == 0 {
		return strconv.Itoa(int(d/time.Minute)) + "m"
	}
	return strconv.Itoa(secs) + "s"
}

// applySettings copies the form values into the running app and persists
// them. A save failure still applies the settings for this session.
func (a *App) applySettings() error {
	v := a.settings
	a.currency = strings.TrimSpace(v.currency)
	a.autoRefresh = v.autoRefresh
	a.refreshInterval = refreshIntervalOf(v.interval)
	theme.SetActive(v.themeName)

	cfg := loadConfigOrDefault()
	cfg.Appearance.Currency = a.currency
	cfg.Appearance.Theme = v.themeName
	cfg.TUI.AutoRefresh = v.autoRefresh
	cfg.TUI.RefreshIntervalSec = v.interval
	return config.Save(cfg)
}
