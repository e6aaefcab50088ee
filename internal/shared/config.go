package shared

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
)

//go:embed config.example.toml
var exampleConf []byte

// Config represents the application configuration loaded from a TOML file.
type Config struct {
	Backend  BackendConfig  `toml:"backend"`
	Provider ProviderConfig `toml:"provider"`
	Apple    AppleConfig    `toml:"apple"`
	YouTube  YouTubeConfig  `toml:"youtube"`
	Spotify  SpotifyConfig  `toml:"spotify"`
	Export   ExportConfig   `toml:"export"`
	Database DatabaseConfig `toml:"database"`
}

// BackendConfig points at the token and resolution proxy.
type BackendConfig struct {
	BaseURL string        `toml:"base_url"`
	Timeout time.Duration `toml:"timeout"`
}

// ProviderConfig selects the active music provider.
type ProviderConfig struct {
	Name string `toml:"name"`
}

// AppleConfig contains Apple Music catalog settings.
type AppleConfig struct {
	APIURL    string `toml:"api_url"`
	UserToken string `toml:"user_token"`
}

// YouTubeConfig contains YouTube Music proxy settings.
type YouTubeConfig struct {
	ProxyURL string `toml:"proxy_url"`
	AuthFile string `toml:"auth_file"`
}

// SpotifyConfig contains the Spotify Web API access token.
type SpotifyConfig struct {
	AccessToken string `toml:"access_token"`
}

// ExportConfig tunes export pacing and per-call deadlines.
type ExportConfig struct {
	SearchInterval time.Duration `toml:"search_interval"`
	SearchTimeout  time.Duration `toml:"search_timeout"`
	CommitTimeout  time.Duration `toml:"commit_timeout"`
	Description    string        `toml:"description"`
}

// DatabaseConfig contains database connection settings.
type DatabaseConfig struct {
	Path         string `toml:"path"`
	MaxOpenConns int    `toml:"max_open_conns"`
	MaxIdleConns int    `toml:"max_idle_conns"`
}

// envOverrides maps TAPEDECK_* variables onto config fields.
var envOverrides = map[string]func(*Config, string){
	"TAPEDECK_BACKEND_URL":          func(c *Config, v string) { c.Backend.BaseURL = v },
	"TAPEDECK_PROVIDER":             func(c *Config, v string) { c.Provider.Name = v },
	"TAPEDECK_APPLE_USER_TOKEN":     func(c *Config, v string) { c.Apple.UserToken = v },
	"TAPEDECK_YOUTUBE_AUTH_FILE":    func(c *Config, v string) { c.YouTube.AuthFile = v },
	"TAPEDECK_SPOTIFY_ACCESS_TOKEN": func(c *Config, v string) { c.Spotify.AccessToken = v },
	"TAPEDECK_DATABASE_PATH":        func(c *Config, v string) { c.Database.Path = v },
}

// LoadConfig reads and parses a TOML configuration file from the specified path.
//
// Keys missing from the file keep their default values.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	config := DefaultConfig()
	if err := toml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("%w: failed to parse config: %v", ErrInvalidConfig, err)
	}

	return config, nil
}

// DefaultConfig returns a Config with sensible defaults loaded from the embedded example config.
func DefaultConfig() *Config {
	var config Config
	if err := toml.Unmarshal(exampleConf, &config); err != nil {
		panic(fmt.Sprintf("failed to parse embedded default config: %v", err))
	}
	return &config
}

// CreateConfigFile creates a config.toml file at the specified path using the embedded example config.
func CreateConfigFile(path string) error {
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("config file already exists at %s", path)
	}
	return WriteConfigFile(path)
}

// WriteConfigFile writes the embedded example config to path, replacing any existing file.
func WriteConfigFile(path string) error {
	if err := os.WriteFile(path, exampleConf, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// LoadEnv loads variables from the given .env files (".env" when none are given) into the process
// environment. Missing files are ignored.
func LoadEnv(files ...string) error {
	if len(files) == 0 {
		files = []string{".env"}
	}

	for _, f := range files {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("failed to load %s: %w", f, err)
		}
	}
	return nil
}

// ApplyEnv overrides config values with any TAPEDECK_* variables present in the environment.
func (c *Config) ApplyEnv() {
	for key, set := range envOverrides {
		if v, ok := os.LookupEnv(key); ok && v != "" {
			set(c, v)
		}
	}
}

// Validate reports missing settings required by the selected provider.
func (c *Config) Validate() error {
	switch c.Provider.Name {
	case "apple":
		if c.Backend.BaseURL == "" {
			return fmt.Errorf("%w: backend.base_url", ErrMissingConfig)
		}
	case "youtube":
		if c.Backend.BaseURL == "" {
			return fmt.Errorf("%w: backend.base_url", ErrMissingConfig)
		}
		if c.YouTube.ProxyURL == "" {
			return fmt.Errorf("%w: youtube.proxy_url", ErrMissingConfig)
		}
	case "spotify":
	case "":
		return fmt.Errorf("%w: provider.name", ErrMissingConfig)
	default:
		return fmt.Errorf("%w: %q", ErrUnknownProvider, c.Provider.Name)
	}

	if c.Export.SearchInterval < 0 || c.Export.SearchTimeout < 0 || c.Export.CommitTimeout < 0 {
		return fmt.Errorf("%w: export durations must not be negative", ErrInvalidConfig)
	}
	return nil
}
