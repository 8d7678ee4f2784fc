package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"

	"github.com/ramonehamilton/commander-forge/internal/deckbuilder"
)

const appDirName = ".commander-forge"

// Config represents the application configuration.
type Config struct {
	// Card data provider
	Scryfall ScryfallConfig `toml:"scryfall"`

	// Deck generation
	Generator GeneratorConfig `toml:"generator"`

	// Local database
	Storage StorageConfig `toml:"storage"`

	// HTTP API
	API APIConfig `toml:"api"`

	// Collection file watching
	Collection CollectionConfig `toml:"collection"`

	// Application configuration
	App AppConfig `toml:"app"`
}

// ScryfallConfig contains card data provider settings.
type ScryfallConfig struct {
	BaseURL      string `toml:"base_url"`
	RequestDelay string `toml:"request_delay"` // Minimum spacing between API calls (e.g., "100ms")
	Timeout      string `toml:"timeout"`       // Per-request timeout (e.g., "30s")
	UserAgent    string `toml:"user_agent"`
	MaxPages     int    `toml:"max_pages"` // Search result pages to follow
}

// GeneratorConfig contains deck generation settings.
type GeneratorConfig struct {
	Throttle      string `toml:"throttle"`       // Delay between lookups during generation
	DefaultFormat string `toml:"default_format"` // Format used when a request names none
}

// StorageConfig contains database settings.
type StorageConfig struct {
	Path string `toml:"path"` // SQLite file; empty selects the default location
}

// APIConfig contains HTTP server settings.
type APIConfig struct {
	Port           int      `toml:"port"`
	AllowedOrigins []string `toml:"allowed_origins"`
}

// CollectionConfig contains collection import settings.
type CollectionConfig struct {
	WatchFile string `toml:"watch_file"` // Re-imported into the store whenever it changes
}

// AppConfig contains general application settings.
type AppConfig struct {
	DebugMode bool `toml:"debug_mode"` // Enable debug logging
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Scryfall: ScryfallConfig{
			BaseURL:      "https://api.scryfall.com",
			RequestDelay: "100ms",
			Timeout:      "30s",
			UserAgent:    "CommanderForge/1.0",
			MaxPages:     5,
		},
		Generator: GeneratorConfig{
			Throttle:      "75ms",
			DefaultFormat: deckbuilder.FormatCommander.ID,
		},
		Storage: StorageConfig{
			Path: "",
		},
		API: APIConfig{
			Port:           8080,
			AllowedOrigins: []string{"http://localhost:*", "http://127.0.0.1:*"},
		},
		Collection: CollectionConfig{
			WatchFile: "",
		},
		App: AppConfig{
			DebugMode: false,
		},
	}
}

// appDir returns the per-user application directory, creating it if needed.
func appDir() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("get home directory: %w", err)
	}

	dir := filepath.Join(homeDir, appDirName)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create config directory: %w", err)
	}

	return dir, nil
}

// DefaultPath returns the path to the configuration file.
func DefaultPath() (string, error) {
	dir, err := appDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.toml"), nil
}

// Load loads the configuration from the default path.
func Load() (*Config, error) {
	path, err := DefaultPath()
	if err != nil {
		return nil, err
	}
	return LoadFrom(path)
}

// LoadFrom loads the configuration from path. Returns default config if the file doesn't exist.
// Keys missing from the file keep their default values.
func LoadFrom(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return DefaultConfig(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}

	config := DefaultConfig()
	if err := toml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("parse config file: %w", err)
	}

	return config, nil
}

// Save saves the configuration to the default path.
func (c *Config) Save() error {
	path, err := DefaultPath()
	if err != nil {
		return err
	}
	return c.SaveTo(path)
}

// SaveTo writes the configuration to path.
func (c *Config) SaveTo(path string) error {
	data, err := toml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write config file: %w", err)
	}

	return nil
}

// Validate validates the configuration values.
func (c *Config) Validate() error {
	if _, err := time.ParseDuration(c.Scryfall.RequestDelay); err != nil {
		return fmt.Errorf("invalid request delay %q: %w", c.Scryfall.RequestDelay, err)
	}

	if _, err := time.ParseDuration(c.Scryfall.Timeout); err != nil {
		return fmt.Errorf("invalid timeout %q: %w", c.Scryfall.Timeout, err)
	}

	if c.Scryfall.MaxPages < 0 {
		return fmt.Errorf("max pages cannot be negative: %d", c.Scryfall.MaxPages)
	}

	if _, err := time.ParseDuration(c.Generator.Throttle); err != nil {
		return fmt.Errorf("invalid generator throttle %q: %w", c.Generator.Throttle, err)
	}

	if _, err := deckbuilder.LookupFormat(c.Generator.DefaultFormat); err != nil {
		return fmt.Errorf("invalid default format: %w", err)
	}

	if c.API.Port < 1 || c.API.Port > 65535 {
		return fmt.Errorf("api port out of range: %d", c.API.Port)
	}

	return nil
}

// GetRequestDelay returns the Scryfall request delay as a duration.
func (c *Config) GetRequestDelay() (time.Duration, error) {
	return time.ParseDuration(c.Scryfall.RequestDelay)
}

// GetTimeout returns the Scryfall request timeout as a duration.
func (c *Config) GetTimeout() (time.Duration, error) {
	return time.ParseDuration(c.Scryfall.Timeout)
}

// GetThrottle returns the generator throttle as a duration.
func (c *Config) GetThrottle() (time.Duration, error) {
	return time.ParseDuration(c.Generator.Throttle)
}

// DatabasePath returns the configured database path, or the default under the app directory.
// A leading "~/" is expanded to the home directory.
func (c *Config) DatabasePath() (string, error) {
	path := strings.TrimSpace(c.Storage.Path)
	if path == "" {
		dir, err := appDir()
		if err != nil {
			return "", err
		}
		return filepath.Join(dir, "data.db"), nil
	}

	if strings.HasPrefix(path, "~/") {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("get home directory: %w", err)
		}
		path = filepath.Join(homeDir, path[2:])
	}
	return path, nil
}
