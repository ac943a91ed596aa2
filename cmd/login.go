package cmd

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/theirongolddev/finsight/internal/api"
	"github.com/theirongolddev/finsight/internal/config"

	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"
)

var flagUsername string

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Sign in and store an API token in the config file",
	RunE:  runLogin,
}

func init() {
	loginCmd.Flags().StringVarP(&flagUsername, "username", "u", "", "Username (prompted when omitted)")
	rootCmd.AddCommand(loginCmd)
}

func runLogin(_ *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	username := flagUsername
	var password string

	notEmpty := func(field string) func(string) error {
		return func(s string) error {
			if strings.TrimSpace(s) == "" {
				return errors.New(field + " is required")
			}
			return nil
		}
	}

	form := huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Username").
				Value(&username).
				Validate(notEmpty("username")),
			huh.NewInput().
				Title("Password").
				EchoMode(huh.EchoModePassword).
				Value(&password).
				Validate(notEmpty("password")),
		).Description("Signing in to " + config.GetAPIURL(cfg)),
	)
	if err := form.Run(); err != nil {
		if errors.Is(err, huh.ErrUserAborted) {
			return nil
		}
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), cfg.RequestTimeout())
	defer cancel()

	token, err := newClient(cfg).Login(ctx, strings.TrimSpace(username), password)
	if errors.Is(err, api.ErrUnauthorized) {
		return errors.New("incorrect username or password")
	}
	if err != nil {
		return explain(err)
	}

	cfg.API.Token = token
	if err := saveConfig(cfg); err != nil {
		return fmt.Errorf("saving token: %w", err)
	}
	fmt.Printf("  Signed in as %s. Token saved to %s\n", strings.TrimSpace(username), configPath())
	return nil
}

func configPath() string {
	if flagConfig != "" {
		return flagConfig
	}
	return config.Path()
}
