// ABOUTME: fitcentre configuration management with backend selection.
// ABOUTME: Layers a JSON file, FITCENTRE_* environment, and .env; provides the storage factory.

package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/harperreed/fitcentre/internal/charm"
	"github.com/harperreed/fitcentre/internal/storage"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Supported storage backends.
const (
	BackendSQLite   = "sqlite"
	BackendPostgres = "postgres"
	BackendBadger   = "badger"
	BackendCharm    = "charm"
)

// Backends lists every backend OpenStorage accepts.
var Backends = []string{BackendSQLite, BackendPostgres, BackendBadger, BackendCharm}

// DefaultHTTPAddr is where serve listens when nothing is configured.
const DefaultHTTPAddr = ":8080"

// EnvPrefix is prepended to every environment override, e.g. FITCENTRE_BACKEND.
const EnvPrefix = "FITCENTRE"

// configDefaults registers every setting with viper so environment overrides apply.
// Zero values leave the Get* accessors to pick the effective default.
var configDefaults = map[string]any{
	"backend":        "",
	"data_dir":       "",
	"postgres_dsn":   "",
	"log_level":      "",
	"http_addr":      "",
	"histogram_bins": 0,
}

// Config stores fitcentre configuration.
type Config struct {
	// Backend selects the storage backend: sqlite (default), postgres, badger, or charm.
	Backend string `json:"backend,omitempty" mapstructure:"backend"`

	// DataDir is the root directory for data storage.
	// SQLite puts fitcentre.db here; Badger uses a badger/ subdirectory.
	// Supports ~ expansion for home directory. Defaults to ~/.local/share/fitcentre.
	DataDir string `json:"data_dir,omitempty" mapstructure:"data_dir"`

	// PostgresDSN is a lib/pq connection string for the postgres backend.
	PostgresDSN string `json:"postgres_dsn,omitempty" mapstructure:"postgres_dsn"`

	LogLevel      string `json:"log_level,omitempty" mapstructure:"log_level"`
	HTTPAddr      string `json:"http_addr,omitempty" mapstructure:"http_addr"`
	HistogramBins int    `json:"histogram_bins,omitempty" mapstructure:"histogram_bins"`
}

// GetBackend returns the configured backend, defaulting to "sqlite".
func (c *Config) GetBackend() string {
	if c.Backend == "" {
		return BackendSQLite
	}
	return strings.ToLower(c.Backend)
}

// GetDataDir returns the configured data directory with ~ expanded,
// defaulting to the standard XDG data directory.
func (c *Config) GetDataDir() string {
	if c.DataDir == "" {
		return storage.DataDir()
	}
	return ExpandPath(c.DataDir)
}

// GetLogLevel returns the configured log level, defaulting to "info".
func (c *Config) GetLogLevel() string {
	if c.LogLevel == "" {
		return "info"
	}
	return c.LogLevel
}

// GetHTTPAddr returns the API listen address.
func (c *Config) GetHTTPAddr() string {
	if c.HTTPAddr == "" {
		return DefaultHTTPAddr
	}
	return c.HTTPAddr
}

// GetHistogramBins returns the BMI histogram bin count, defaulting to 10.
func (c *Config) GetHistogramBins() int {
	if c.HistogramBins <= 0 {
		return 10
	}
	return c.HistogramBins
}

// ExpandPath expands a leading ~ to the user's home directory.
func ExpandPath(path string) string {
	if path == "" {
		return ""
	}
	if path == "~" {
		home, _ := os.UserHomeDir()
		return home
	}
	if strings.HasPrefix(path, "~/") {
		home, _ := os.UserHomeDir()
		return filepath.Join(home, path[2:])
	}
	return path
}

// Location describes where the configured backend keeps its data.
func (c *Config) Location() string {
	switch c.GetBackend() {
	case BackendSQLite:
		return filepath.Join(c.GetDataDir(), "fitcentre.db")
	case BackendBadger:
		return filepath.Join(c.GetDataDir(), "badger")
	case BackendPostgres:
		return "postgres (postgres_dsn)"
	case BackendCharm:
		return "charm kv " + charm.DBName + " @ " + charm.Host()
	default:
		return ""
	}
}

// OpenStorage creates a Repository implementation based on the configured backend.
func (c *Config) OpenStorage() (storage.Repository, error) {
	backend := c.GetBackend()
	dataDir := c.GetDataDir()

	switch backend {
	case BackendSQLite:
		return storage.Open(filepath.Join(dataDir, "fitcentre.db"))
	case BackendPostgres:
		return storage.OpenPostgres(c.PostgresDSN)
	case BackendBadger:
		return storage.OpenBadger(filepath.Join(dataDir, "badger"))
	case BackendCharm:
		client, err := charm.InitClient()
		if err != nil {
			return nil, err
		}
		return client.Store()
	default:
		return nil, fmt.Errorf("unknown backend: %q (want one of %s)", backend, strings.Join(Backends, ", "))
	}
}

// GetConfigPath returns the config file path.
func GetConfigPath() string {
	configDir := os.Getenv("XDG_CONFIG_HOME")
	if configDir == "" {
		homeDir, _ := os.UserHomeDir()
		configDir = filepath.Join(homeDir, ".config")
	}
	return filepath.Join(configDir, "fitcentre", "config.json")
}

// Load reads config from disk, then applies .env and FITCENTRE_* environment overrides.
// A missing config file is not an error.
func Load() (*Config, error) {
	// .env is optional; variables already in the environment win.
	_ = godotenv.Load()

	v := viper.New()
	for key, value := range configDefaults {
		v.SetDefault(key, value)
	}
	v.SetEnvPrefix(EnvPrefix)
	v.AutomaticEnv()

	v.SetConfigFile(GetConfigPath())
	v.SetConfigType("json")
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	return &cfg, nil
}

// Save writes config to disk.
func (c *Config) Save() error {
	path := GetConfigPath()
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0750); err != nil {
		return err
	}

	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0600)
}
