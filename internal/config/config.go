package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/christophergentle/avatarclock/internal/render"
)

const defaultConnectionRetries = 100

const (
	BackendTelegram = "telegram"
	BackendBluesky  = "bluesky"
)

type Config struct {
	Telegram TelegramConfig `yaml:"telegram"`
	Bluesky  BlueskyConfig  `yaml:"bluesky"`
	Settings SettingsConfig `yaml:"settings"`
}

type TelegramConfig struct {
	AppID             int    `yaml:"app_id"`
	AppHash           string `yaml:"app_hash"`
	ConnectionRetries int    `yaml:"connection_retries"`
}

type BlueskyConfig struct {
	Host     string `yaml:"host"`
	Handle   string `yaml:"handle"`
	Password string `yaml:"password"`
}

type SettingsConfig struct {
	Mode           string `yaml:"mode"`
	Backend        string `yaml:"backend"`
	AssetsDir      string `yaml:"assets_dir"`
	OutputFile     string `yaml:"output_file"`
	FontFile       string `yaml:"font_file"`
	CacheFile      string `yaml:"cache_file"`
	CacheTable     string `yaml:"cache_table"`
	Timezone       string `yaml:"timezone"`
	CountdownHours []int  `yaml:"countdown_hours"`
}

// ConfigError represents a configuration error
type ConfigError struct {
	Message string
	Details []string
}

func (e *ConfigError) Error() string {
	if len(e.Details) > 0 {
		return e.Message + ": " + strings.Join(e.Details, ", ")
	}
	return e.Message
}

// Load reads envFile (if present) into the environment, then the optional
// YAML file at path, then applies environment overrides and defaults.
func Load(path, envFile string) (*Config, error) {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("failed to load %s: %w", envFile, err)
		}
	}

	cfg := &Config{}
	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case err == nil:
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("failed to parse config file: %w", err)
			}
		case errors.Is(err, fs.ErrNotExist):
			// environment only
		default:
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	if err := cfg.applyEnv(os.LookupEnv); err != nil {
		return nil, err
	}
	cfg.ApplyDefaults()

	return cfg, nil
}

// applyEnv overrides file values with any set environment variables.
func (c *Config) applyEnv(lookup func(string) (string, bool)) error {
	str := func(key string, dst *string) {
		if v, ok := lookup(key); ok && v != "" {
			*dst = v
		}
	}

	if v, ok := lookup("APP_ID"); ok && v != "" {
		id, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			return &ConfigError{Message: "APP_ID must be an integer", Details: []string{v}}
		}
		c.Telegram.AppID = id
	}
	str("APP_HASH", &c.Telegram.AppHash)
	str("BLUESKY_HOST", &c.Bluesky.Host)
	str("BLUESKY_HANDLE", &c.Bluesky.Handle)
	str("BLUESKY_PASSWORD", &c.Bluesky.Password)
	str("AVATAR_MODE", &c.Settings.Mode)
	str("AVATAR_BACKEND", &c.Settings.Backend)
	str("ASSETS_DIR", &c.Settings.AssetsDir)
	str("OUTPUT_FILE", &c.Settings.OutputFile)
	str("FONT_FILE", &c.Settings.FontFile)
	str("CACHE_FILE", &c.Settings.CacheFile)
	str("CACHE_TABLE", &c.Settings.CacheTable)
	str("TIMEZONE", &c.Settings.Timezone)

	return nil
}

// ApplyDefaults fills every unset setting with its default.
func (c *Config) ApplyDefaults() {
	if c.Settings.Mode == "" {
		c.Settings.Mode = string(render.ModeClock)
	}
	if c.Settings.Backend == "" {
		c.Settings.Backend = BackendTelegram
	}
	if c.Settings.AssetsDir == "" {
		c.Settings.AssetsDir = "assets"
	}
	if c.Settings.OutputFile == "" {
		c.Settings.OutputFile = filepath.Join(c.Settings.AssetsDir, "upload.png")
	}
	if c.Settings.FontFile == "" {
		c.Settings.FontFile = filepath.Join(c.Settings.AssetsDir, "fonts", "PTSans-Bold.ttf")
	}
	if c.Settings.CacheFile == "" {
		c.Settings.CacheFile = "cache.json"
	}
	if c.Telegram.ConnectionRetries == 0 {
		c.Telegram.ConnectionRetries = defaultConnectionRetries
	}
}

// Validate checks that the selected backend has its credentials.
func (c *Config) Validate() error {
	if _, err := render.ParseMode(c.Settings.Mode); err != nil {
		return &ConfigError{Message: "invalid mode", Details: []string{err.Error()}}
	}

	var missing []string
	switch c.Settings.Backend {
	case BackendTelegram:
		if c.Telegram.AppID <= 0 {
			missing = append(missing, "APP_ID")
		}
		if c.Telegram.AppHash == "" {
			missing = append(missing, "APP_HASH")
		}
	case BackendBluesky:
		if c.Bluesky.Handle == "" {
			missing = append(missing, "BLUESKY_HANDLE")
		}
		if c.Bluesky.Password == "" {
			missing = append(missing, "BLUESKY_PASSWORD")
		}
	default:
		return &ConfigError{Message: "unknown backend", Details: []string{c.Settings.Backend}}
	}

	if len(missing) > 0 {
		return &ConfigError{Message: "missing required settings", Details: missing}
	}

	for _, hour := range c.Settings.CountdownHours {
		if hour < 0 || hour > 23 {
			return &ConfigError{Message: "countdown hours must be between 0 and 23", Details: []string{strconv.Itoa(hour)}}
		}
	}

	if _, err := c.Location(); err != nil {
		return &ConfigError{Message: "invalid timezone", Details: []string{c.Settings.Timezone}}
	}

	return nil
}

// Location returns the configured timezone, or the local zone when unset.
func (c *Config) Location() (*time.Location, error) {
	if c.Settings.Timezone == "" {
		return time.Local, nil
	}
	return time.LoadLocation(c.Settings.Timezone)
}

// RenderMode returns the parsed mode. Call Validate first.
func (c *Config) RenderMode() render.Mode {
	mode, _ := render.ParseMode(c.Settings.Mode)
	return mode
}
