package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestDefaultConfig_Valid(t *testing.T) {
	cfg := DefaultConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config invalid: %v", err)
	}

	delay, err := cfg.GetRequestDelay()
	if err != nil || delay != 100*time.Millisecond {
		t.Errorf("GetRequestDelay() = %v, %v", delay, err)
	}
	timeout, err := cfg.GetTimeout()
	if err != nil || timeout != 30*time.Second {
		t.Errorf("GetTimeout() = %v, %v", timeout, err)
	}
	throttle, err := cfg.GetThrottle()
	if err != nil || throttle != 75*time.Millisecond {
		t.Errorf("GetThrottle() = %v, %v", throttle, err)
	}
}

func TestLoadFrom_MissingFile(t *testing.T) {
	cfg, err := LoadFrom(filepath.Join(t.TempDir(), "missing.toml"))
	if err != nil {
		t.Fatalf("LoadFrom() error = %v", err)
	}
	if cfg.API.Port != 8080 {
		t.Errorf("expected defaults, got port %d", cfg.API.Port)
	}
}

func TestLoadFrom_PartialFileKeepsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	content := `
[api]
port = 9090

[generator]
default_format = "brawl"

[app]
debug_mode = true
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadFrom(path)
	if err != nil {
		t.Fatalf("LoadFrom() error = %v", err)
	}

	if cfg.API.Port != 9090 {
		t.Errorf("port = %d, want 9090", cfg.API.Port)
	}
	if cfg.Generator.DefaultFormat != "brawl" {
		t.Errorf("default format = %q", cfg.Generator.DefaultFormat)
	}
	if !cfg.App.DebugMode {
		t.Error("expected debug mode")
	}
	if cfg.Scryfall.RequestDelay != "100ms" {
		t.Errorf("request delay = %q, want default", cfg.Scryfall.RequestDelay)
	}
	if cfg.Generator.Throttle != "75ms" {
		t.Errorf("throttle = %q, want default", cfg.Generator.Throttle)
	}
}

func TestLoadFrom_InvalidTOML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte("[api\nport = "), 0o644); err != nil {
		t.Fatal(err)
	}

	if _, err := LoadFrom(path); err == nil {
		t.Error("expected parse error")
	}
}

func TestSaveTo_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")

	cfg := DefaultConfig()
	cfg.Collection.WatchFile = "/tmp/collection.csv"
	cfg.API.AllowedOrigins = []string{"https://example.com"}
	if err := cfg.SaveTo(path); err != nil {
		t.Fatalf("SaveTo() error = %v", err)
	}

	loaded, err := LoadFrom(path)
	if err != nil {
		t.Fatalf("LoadFrom() error = %v", err)
	}
	if loaded.Collection.WatchFile != "/tmp/collection.csv" {
		t.Errorf("watch file = %q", loaded.Collection.WatchFile)
	}
	if len(loaded.API.AllowedOrigins) != 1 || loaded.API.AllowedOrigins[0] != "https://example.com" {
		t.Errorf("allowed origins = %v", loaded.API.AllowedOrigins)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"bad request delay", func(c *Config) { c.Scryfall.RequestDelay = "fast" }, "request delay"},
		{"bad timeout", func(c *Config) { c.Scryfall.Timeout = "" }, "timeout"},
		{"negative pages", func(c *Config) { c.Scryfall.MaxPages = -1 }, "max pages"},
		{"bad throttle", func(c *Config) { c.Generator.Throttle = "1 second" }, "throttle"},
		{"unknown format", func(c *Config) { c.Generator.DefaultFormat = "cube" }, "default format"},
		{"port zero", func(c *Config) { c.API.Port = 0 }, "port"},
		{"port too high", func(c *Config) { c.API.Port = 70000 }, "port"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if err == nil {
				t.Fatal("expected error")
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("error %q does not mention %q", err, tt.wantErr)
			}
		})
	}
}

func TestDatabasePath(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	cfg := DefaultConfig()
	path, err := cfg.DatabasePath()
	if err != nil {
		t.Fatalf("DatabasePath() error = %v", err)
	}
	if path != filepath.Join(home, appDirName, "data.db") {
		t.Errorf("default path = %q", path)
	}

	cfg.Storage.Path = "~/decks.db"
	if path, _ = cfg.DatabasePath(); path != filepath.Join(home, "decks.db") {
		t.Errorf("expanded path = %q", path)
	}

	cfg.Storage.Path = "/var/lib/forge.db"
	if path, _ = cfg.DatabasePath(); path != "/var/lib/forge.db" {
		t.Errorf("absolute path = %q", path)
	}
}
