package cmd

import (
	"fmt"
	"io"

	"github.com/theirongolddev/finsight/internal/config"
	"github.com/theirongolddev/finsight/internal/tui"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
	"github.com/spf13/cobra"
)

var tuiCmd = &cobra.Command{
	Use:   "tui",
	Short: "Launch interactive TUI dashboard",
	RunE:  runTUI,
}

func init() {
	rootCmd.AddCommand(tuiCmd)
}

func runTUI(_ *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	// Force TrueColor so background styling always produces ANSI codes.
	lipgloss.SetColorProfile(termenv.TrueColor)

	// Log lines would tear the alt screen.
	log := newLogger()
	if !flagVerbose {
		log.SetOutput(io.Discard)
	}

	app := tui.NewApp(tui.Options{
		Cache:     newCache(cfg, log),
		Config:    cfg,
		NeedSetup: flagConfig == "" && !config.Exists(),
	})
	defer app.Close()

	p := tea.NewProgram(app, tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("TUI error: %w", err)
	}
	return nil
}
