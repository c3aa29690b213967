// Package config provides persistent configuration for the salahme CLI.
//
// Configuration is stored as JSON at ~/.config/salahme/config.json
// (XDG-compliant). The merge priority is: CLI flags > SALAHME_* environment
// variables > config file > defaults.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/smokyabdulrahman/salahme/internal/prayer"
	"github.com/smokyabdulrahman/salahme/internal/store"
)

const (
	configDirName  = "salahme"
	configFileName = "config.json"

	// EnvPrefix prefixes environment overrides, e.g. SALAHME_DEFAULT_CITY.
	EnvPrefix = "SALAHME_"
)

// Geolocation modes.
const (
	GeolocationIP  = "ip"
	GeolocationOff = "off"
)

// ValidKeys lists all config keys that can be set via `config set`.
var ValidKeys = []string{
	"default_city",
	"latitude", "longitude",
	"time_format",
	"prayers",
	"refresh_interval",
	"store", "store_addr",
	"cache_dir",
	"geolocation",
	"geocoder_url",
	"log_level", "log_file",
}

// Config holds all user-configurable settings.
// Zero values mean "not set" (use defaults or auto-detect).
type Config struct {
	DefaultCity     string   `json:"default_city,omitempty"`
	Latitude        *float64 `json:"latitude,omitempty"`    // pointer so 0 is a valid coordinate
	Longitude       *float64 `json:"longitude,omitempty"`   // pointer so 0 is a valid coordinate
	TimeFormat      string   `json:"time_format,omitempty"` // "12h" or "24h"
	Prayers         string   `json:"prayers,omitempty"`     // comma-separated list
	RefreshInterval string   `json:"refresh_interval,omitempty"`
	Store           string   `json:"store,omitempty"`
	StoreAddr       string   `json:"store_addr,omitempty"`
	CacheDir        string   `json:"cache_dir,omitempty"`
	Geolocation     string   `json:"geolocation,omitempty"` // "ip" or "off"
	GeocoderURL     string   `json:"geocoder_url,omitempty"`
	LogLevel        string   `json:"log_level,omitempty"`
	LogFile         string   `json:"log_file,omitempty"`
}

// Defaults returns a Config with all default values applied.
func Defaults() Config {
	return Config{
		DefaultCity:     "Karachi",
		TimeFormat:      "12h",
		RefreshInterval: "1m",
		Store:           store.BackendFile,
		StoreAddr:       "localhost:6379",
		Geolocation:     GeolocationIP,
		LogLevel:        "warn",
	}
}

// Dir returns the config directory path.
// It respects $XDG_CONFIG_HOME if set, otherwise uses ~/.config/.
func Dir() (string, error) {
	dir := os.Getenv("XDG_CONFIG_HOME")
	if dir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("cannot determine home directory: %w", err)
		}
		dir = filepath.Join(home, ".config")
	}
	return filepath.Join(dir, configDirName), nil
}

// Path returns the full path to the config file.
func Path() (string, error) {
	dir, err := Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, configFileName), nil
}

// Load reads the config file from disk.
// If the file does not exist, it returns an empty Config (not an error).
// If the file exists but is invalid JSON, it returns an error.
func Load() (*Config, error) {
	path, err := Path()
	if err != nil {
		return nil, err
	}

	return LoadFrom(path)
}

// LoadFrom reads the config from a specific file path.
func LoadFrom(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			cfg := Config{}
			return &cfg, nil
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("invalid config file %s: %w", path, err)
	}

	return &cfg, nil
}

// Save writes the config to disk, creating the directory if needed.
func (c *Config) Save() error {
	path, err := Path()
	if err != nil {
		return err
	}

	return c.SaveTo(path)
}

// SaveTo writes the config to a specific file path.
func (c *Config) SaveTo(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("cannot create config directory %s: %w", dir, err)
	}

	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	data = append(data, '\n')

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// Reset deletes the config file.
func Reset() error {
	path, err := Path()
	if err != nil {
		return err
	}

	return ResetAt(path)
}

// ResetAt deletes the config file at a specific path.
func ResetAt(path string) error {
	err := os.Remove(path)
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to delete config file: %w", err)
	}
	return nil
}

// ApplyEnv overrides file values with SALAHME_<KEY> variables read through
// getenv. Values are validated exactly as `config set` would.
func (c *Config) ApplyEnv(getenv func(string) string) error {
	for _, key := range ValidKeys {
		v := getenv(EnvPrefix + strings.ToUpper(key))
		if v == "" {
			continue
		}
		if err := c.Set(key, v); err != nil {
			return fmt.Errorf("%s%s: %w", EnvPrefix, strings.ToUpper(key), err)
		}
	}
	return nil
}

// Set sets a config key to the given value.
// It validates the key name and parses the value into the correct type.
func (c *Config) Set(key, value string) error {
	switch key {
	case "default_city":
		if len([]rune(strings.TrimSpace(value))) < 2 {
			return fmt.Errorf("invalid default_city %q: must be at least 2 characters", value)
		}
		c.DefaultCity = strings.TrimSpace(value)
	case "latitude":
		v, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return fmt.Errorf("invalid latitude %q: must be a number", value)
		}
		if v < -90 || v > 90 {
			return fmt.Errorf("invalid latitude %q: must be between -90 and 90", value)
		}
		c.Latitude = &v
	case "longitude":
		v, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return fmt.Errorf("invalid longitude %q: must be a number", value)
		}
		if v < -180 || v > 180 {
			return fmt.Errorf("invalid longitude %q: must be between -180 and 180", value)
		}
		c.Longitude = &v
	case "time_format":
		if value != "12h" && value != "24h" {
			return fmt.Errorf("invalid time_format %q: must be \"12h\" or \"24h\"", value)
		}
		c.TimeFormat = value
	case "prayers":
		// Validate each prayer name.
		for _, n := range strings.Split(value, ",") {
			if _, err := prayer.ParseKey(n); err != nil {
				return fmt.Errorf("invalid prayer name %q in prayers list", strings.TrimSpace(n))
			}
		}
		c.Prayers = value
	case "refresh_interval":
		d, err := time.ParseDuration(value)
		if err != nil {
			return fmt.Errorf("invalid refresh_interval %q: must be a duration like 1m or 30s", value)
		}
		if d < time.Second {
			return fmt.Errorf("invalid refresh_interval %q: must be at least 1s", value)
		}
		c.RefreshInterval = value
	case "store":
		if !contains(store.ValidBackends, value) {
			return fmt.Errorf("invalid store %q: must be one of %s", value, strings.Join(store.ValidBackends, ", "))
		}
		c.Store = value
	case "store_addr":
		c.StoreAddr = value
	case "cache_dir":
		c.CacheDir = value
	case "geolocation":
		if value != GeolocationIP && value != GeolocationOff {
			return fmt.Errorf("invalid geolocation %q: must be %q or %q", value, GeolocationIP, GeolocationOff)
		}
		c.Geolocation = value
	case "geocoder_url":
		if !strings.HasPrefix(value, "http://") && !strings.HasPrefix(value, "https://") {
			return fmt.Errorf("invalid geocoder_url %q: must be an http(s) URL", value)
		}
		c.GeocoderURL = value
	case "log_level":
		if !contains(logLevels, strings.ToLower(value)) {
			return fmt.Errorf("invalid log_level %q: must be one of %s", value, strings.Join(logLevels, ", "))
		}
		c.LogLevel = strings.ToLower(value)
	case "log_file":
		c.LogFile = value
	default:
		return fmt.Errorf("unknown config key %q; valid keys: %s", key, strings.Join(ValidKeys, ", "))
	}

	return nil
}

// Get returns the string value of a config key.
func (c *Config) Get(key string) (string, error) {
	switch key {
	case "default_city":
		return c.DefaultCity, nil
	case "latitude":
		return formatOptionalFloat(c.Latitude), nil
	case "longitude":
		return formatOptionalFloat(c.Longitude), nil
	case "time_format":
		return c.TimeFormat, nil
	case "prayers":
		return c.Prayers, nil
	case "refresh_interval":
		return c.RefreshInterval, nil
	case "store":
		return c.Store, nil
	case "store_addr":
		return c.StoreAddr, nil
	case "cache_dir":
		return c.CacheDir, nil
	case "geolocation":
		return c.Geolocation, nil
	case "geocoder_url":
		return c.GeocoderURL, nil
	case "log_level":
		return c.LogLevel, nil
	case "log_file":
		return c.LogFile, nil
	default:
		return "", fmt.Errorf("unknown config key %q", key)
	}
}

// Merge returns c with every unset field taken from base.
func (c Config) Merge(base Config) Config {
	out := base
	if c.DefaultCity != "" {
		out.DefaultCity = c.DefaultCity
	}
	if c.Latitude != nil {
		out.Latitude = c.Latitude
	}
	if c.Longitude != nil {
		out.Longitude = c.Longitude
	}
	if c.TimeFormat != "" {
		out.TimeFormat = c.TimeFormat
	}
	if c.Prayers != "" {
		out.Prayers = c.Prayers
	}
	if c.RefreshInterval != "" {
		out.RefreshInterval = c.RefreshInterval
	}
	if c.Store != "" {
		out.Store = c.Store
	}
	if c.StoreAddr != "" {
		out.StoreAddr = c.StoreAddr
	}
	if c.CacheDir != "" {
		out.CacheDir = c.CacheDir
	}
	if c.Geolocation != "" {
		out.Geolocation = c.Geolocation
	}
	if c.GeocoderURL != "" {
		out.GeocoderURL = c.GeocoderURL
	}
	if c.LogLevel != "" {
		out.LogLevel = c.LogLevel
	}
	if c.LogFile != "" {
		out.LogFile = c.LogFile
	}
	return out
}

// RefreshEvery parses RefreshInterval, falling back to def.
func (c *Config) RefreshEvery(def time.Duration) time.Duration {
	d, err := time.ParseDuration(c.RefreshInterval)
	if err != nil || d < time.Second {
		return def
	}
	return d
}

// HasCoordinates reports whether both latitude and longitude are set.
func (c *Config) HasCoordinates() bool {
	return c.Latitude != nil && c.Longitude != nil
}

var logLevels = []string{"trace", "debug", "info", "warn", "error", "disabled"}

func formatOptionalFloat(v *float64) string {
	if v == nil {
		return ""
	}
	return strconv.FormatFloat(*v, 'f', -1, 64)
}

func contains(list []string, v string) bool {
	for _, s := range list {
		if s == v {
			return true
		}
	}
	return false
}
