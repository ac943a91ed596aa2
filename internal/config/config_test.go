package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestLoadFileMissingReturnsDefaults(t *testing.T) {
	cfg, err := LoadFile(filepath.Join(t.TempDir(), "nope.toml"))
	if err != nil {
		t.Fatalf("LoadFile: %v", err)
	}
	if cfg.Cache.FreshnessSeconds != 30 {
		t.Fatalf("FreshnessSeconds = %d, want 30", cfg.Cache.FreshnessSeconds)
	}
	if cfg.Cache.DashboardLimit != 50 {
		t.Fatalf("DashboardLimit = %d, want 50", cfg.Cache.DashboardLimit)
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("defaults do not validate: %v", err)
	}
}

func TestSaveAndLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "finsight", "config.toml")

	cfg := DefaultConfig()
	cfg.API.BaseURL = "https://finance.example.com/api"
	cfg.API.Token = "secret"
	cfg.Cache.FreshnessSeconds = 45

	if err := SaveFile(path, cfg); err != nil {
		t.Fatalf("SaveFile: %v", err)
	}

	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("stat: %v", err)
	}
	if perm := info.Mode().Perm(); perm != 0o600 {
		t.Fatalf("mode = %o, want 600", perm)
	}

	got, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile: %v", err)
	}
	if got.API.Token != "secret" || got.Cache.FreshnessSeconds != 45 {
		t.Fatalf("round trip lost values: %+v", got)
	}
	if got.FreshnessWindow() != 45*time.Second {
		t.Fatalf("FreshnessWindow = %v, want 45s", got.FreshnessWindow())
	}
}

func TestLoadFilePartialKeepsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	data := "[api]\nbase_url = \"http://localhost:9000\"\n"
	if err := os.WriteFile(path, []byte(data), 0o600); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile: %v", err)
	}
	if cfg.API.BaseURL != "http://localhost:9000" {
		t.Fatalf("BaseURL = %q", cfg.API.BaseURL)
	}
	if cfg.Daemon.Schedule != "@every 30s" {
		t.Fatalf("Schedule = %q, want default", cfg.Daemon.Schedule)
	}
}

func TestLoadFileRejectsBadTOML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte("[api\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadFile(path); err == nil {
		t.Fatal("expected parse error")
	}
}

func TestEnvOverrides(t *testing.T) {
	cfg := DefaultConfig()
	cfg.API.Token = "from-file"

	t.Setenv(EnvToken, "from-env")
	t.Setenv(EnvAPIURL, "https://env.example.com/api/")

	if got := GetToken(cfg); got != "from-env" {
		t.Fatalf("GetToken = %q, want from-env", got)
	}
	if got := GetAPIURL(cfg); got != "https://env.example.com/api" {
		t.Fatalf("GetAPIURL = %q", got)
	}

	t.Setenv(EnvToken, "")
	if got := GetToken(cfg); got != "from-file" {
		t.Fatalf("GetToken = %q, want from-file", got)
	}
}

func TestValidateCollectsAllErrors(t *testing.T) {
	t.Setenv(EnvAPIURL, "")

	cfg := DefaultConfig()
	cfg.API.BaseURL = "not a url"
	cfg.Cache.DashboardLimit = 0
	cfg.Daemon.Schedule = "every tuesday"

	err := cfg.Validate()
	if err == nil {
		t.Fatal("expected validation error")
	}
	msg := err.Error()
	for _, want := range []string{"api.base_url", "cache.dashboard_limit", "daemon.schedule"} {
		if !strings.Contains(msg, want) {
			t.Fatalf("error %q missing %q", msg, want)
		}
	}
}
