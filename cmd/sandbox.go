package cmd

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/theirongolddev/finsight/internal/config"
	"github.com/theirongolddev/finsight/internal/sandbox"
	"github.com/theirongolddev/finsight/internal/store"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var (
	flagSandboxAddr string
	flagSandboxDB   string
)

var sandboxCmd = &cobra.Command{
	Use:   "sandbox",
	Short: "Run a local finance API backed by SQLite",
	Long: "Serves the same /api routes the client expects, so the dashboard, " +
		"analytics and delete flows can be exercised without a hosted backend.",
	RunE: runSandbox,
}

func init() {
	sandboxCmd.Flags().StringVar(&flagSandboxAddr, "addr", "", "HTTP listen address")
	sandboxCmd.Flags().StringVar(&flagSandboxDB, "db", "", "SQLite database path")
	rootCmd.AddCommand(sandboxCmd)
}

func sandboxDBPath(cfg config.Config) string {
	if cfg.Sandbox.DBPath != "" {
		return cfg.Sandbox.DBPath
	}
	return filepath.Join(stateDir(), "sandbox.db")
}

func runSandbox(_ *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	log := logrus.New()
	log.SetOutput(os.Stdout)
	if flagVerbose {
		log.SetLevel(logrus.DebugLevel)
	}

	dbPath := firstNonEmpty(flagSandboxDB, sandboxDBPath(cfg))
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o750); err != nil {
		return fmt.Errorf("create sandbox directory: %w", err)
	}
	st, err := store.Open(dbPath)
	if err != nil {
		return err
	}
	defer func() { _ = st.Close() }()

	secret := cfg.Sandbox.JWTSecret
	if secret == "" {
		// Tokens stop verifying once the process exits.
		secret = rand.Text()
		log.Warn("sandbox.jwt_secret not set, using a per-process secret")
	}
	auth := sandbox.NewAuth(secret, time.Duration(cfg.Sandbox.TokenTTL)*time.Minute)

	addr := firstNonEmpty(flagSandboxAddr, cfg.Sandbox.Addr)
	srv := &http.Server{
		Addr:              addr,
		Handler:           sandbox.NewServer(st, auth, log).Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	log.WithFields(logrus.Fields{"addr": addr, "db": dbPath}).Info("sandbox API listening")
	fmt.Printf("  Point the client at it with: FINSIGHT_API_URL=http://%s/api\n", addr)

	select {
	case <-ctx.Done():
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("sandbox server: %w", err)
		}
		return nil
	}

	shutdownCtx, stop := context.WithTimeout(context.Background(), 5*time.Second)
	defer stop()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("sandbox shutdown: %w", err)
	}
	log.Info("sandbox API stopped")
	return nil
}
