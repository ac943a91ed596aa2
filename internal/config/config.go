package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/robfig/cron/v3"
)

// Environment variables that override values from the config file.
const (
	EnvAPIURL = "FINSIGHT_API_URL"
	EnvToken  = "FINSIGHT_TOKEN"
)

// Config holds all finsight configuration.
type Config struct {
	API        APIConfig        `toml:"api"`
	Cache      CacheConfig      `toml:"cache"`
	TUI        TUIConfig        `toml:"tui"`
	Daemon     DaemonConfig     `toml:"daemon"`
	Sandbox    SandboxConfig    `toml:"sandbox"`
	Appearance AppearanceConfig `toml:"appearance"`
}

// APIConfig points at the finance API.
type APIConfig struct {
	BaseURL        string `toml:"base_url"`
	Token          string `toml:"token,omitempty"`
	TimeoutSeconds int    `toml:"timeout_seconds"`
}

// CacheConfig tunes the dashboard freshness gate.
type CacheConfig struct {
	FreshnessSeconds int `toml:"freshness_seconds"`
	DashboardLimit   int `toml:"dashboard_limit"`
}

// TUIConfig holds dashboard preferences.
type TUIConfig struct {
	AutoRefresh        bool `toml:"auto_refresh"`
	RefreshIntervalSec int  `toml:"refresh_interval_sec"`
}

// DaemonConfig holds background poller settings.
type DaemonConfig struct {
	Addr         string `toml:"addr"`
	Schedule     string `toml:"schedule"`
	EventsBuffer int    `toml:"events_buffer"`
	AMQPURL      string `toml:"amqp_url,omitempty"`
	AMQPExchange string `toml:"amqp_exchange,omitempty"`
}

// SandboxConfig configures the local API server.
type SandboxConfig struct {
	Addr      string `toml:"addr"`
	DBPath    string `toml:"db_path,omitempty"`
	JWTSecret string `toml:"jwt_secret,omitempty"`
	TokenTTL  int    `toml:"token_ttl_minutes"`
}

// AppearanceConfig holds display settings.
type AppearanceConfig struct {
	Currency string `toml:"currency"`
	Theme    string `toml:"theme"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() Config {
	return Config{
		API: APIConfig{
			BaseURL:        "http://127.0.0.1:8000/api",
			TimeoutSeconds: 15,
		},
		Cache: CacheConfig{
			FreshnessSeconds: 30,
			DashboardLimit:   50,
		},
		TUI: TUIConfig{
			AutoRefresh:        true,
			RefreshIntervalSec: 30,
		},
		Daemon: DaemonConfig{
			Addr:         "127.0.0.1:8787",
			Schedule:     "@every 30s",
			EventsBuffer: 200,
			AMQPExchange: "finsight.events",
		},
		Sandbox: SandboxConfig{
			Addr:     "127.0.0.1:8000",
			TokenTTL: 60 * 24,
		},
		Appearance: AppearanceConfig{
			Currency: "€",
			Theme:    "flexoki-dark",
		},
	}
}

// Dir returns the XDG-compliant config directory.
func Dir() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "finsight")
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".config", "finsight")
}

// Path returns the full path to the config file.
func Path() string {
	return filepath.Join(Dir(), "config.toml")
}

// Load reads the config file, returning defaults if it doesn't exist.
func Load() (Config, error) {
	return LoadFile(Path())
}

// LoadFile reads a config from path, returning defaults if it doesn't exist.
func LoadFile(path string) (Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("reading config: %w", err)
	}

	if err := toml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parsing config: %w", err)
	}

	return cfg, nil
}

// Save writes the config to the default path.
func Save(cfg Config) error {
	return SaveFile(Path(), cfg)
}

// SaveFile writes the config to path. The file holds the API token, so it is
// created owner-only.
func SaveFile(path string, cfg Config) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating config dir: %w", err)
	}

	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o600)
	if err != nil {
		return fmt.Errorf("creating config file: %w", err)
	}
	defer f.Close()

	enc := toml.NewEncoder(f)
	return enc.Encode(cfg)
}

// Exists returns true if a config file exists on disk.
func Exists() bool {
	_, err := os.Stat(Path())
	return err == nil
}

// GetAPIURL returns the API base URL from env var or config, in that order.
func GetAPIURL(cfg Config) string {
	if u := os.Getenv(EnvAPIURL); u != "" {
		return strings.TrimRight(u, "/")
	}
	return strings.TrimRight(cfg.API.BaseURL, "/")
}

// GetToken returns the bearer token from env var or config, in that order.
func GetToken(cfg Config) string {
	if tok := os.Getenv(EnvToken); tok != "" {
		return tok
	}
	return cfg.API.Token
}

// FreshnessWindow returns the dashboard freshness window.
func (c Config) FreshnessWindow() time.Duration {
	return time.Duration(c.Cache.FreshnessSeconds) * time.Second
}

// RequestTimeout returns the per-request API timeout.
func (c Config) RequestTimeout() time.Duration {
	return time.Duration(c.API.TimeoutSeconds) * time.Second
}

// RefreshInterval returns the TUI auto-refresh interval.
func (c Config) RefreshInterval() time.Duration {
	return time.Duration(c.TUI.RefreshIntervalSec) * time.Second
}

// Validate reports every invalid setting at once.
func (c Config) Validate() error {
	var errs []error

	if u, err := url.Parse(GetAPIURL(c)); err != nil || u.Scheme == "" || u.Host == "" {
		errs = append(errs, fmt.Errorf("api.base_url %q is not an absolute URL", GetAPIURL(c)))
	}
	if c.API.TimeoutSeconds <= 0 {
		errs = append(errs, errors.New("api.timeout_seconds must be positive"))
	}
	if c.Cache.FreshnessSeconds < 0 {
		errs = append(errs, errors.New("cache.freshness_seconds must not be negative"))
	}
	if c.Cache.DashboardLimit <= 0 {
		errs = append(errs, errors.New("cache.dashboard_limit must be positive"))
	}
	if c.TUI.AutoRefresh && c.TUI.RefreshIntervalSec <= 0 {
		errs = append(errs, errors.New("tui.refresh_interval_sec must be positive when auto_refresh is on"))
	}
	if c.Daemon.Schedule != "" {
		if _, err := cron.ParseStandard(c.Daemon.Schedule); err != nil {
			errs = append(errs, fmt.Errorf("daemon.schedule: %w", err))
		}
	}
	if c.Daemon.EventsBuffer < 0 {
		errs = append(errs, errors.New("daemon.events_buffer must not be negative"))
	}

	return errors.Join(errs...)
}
