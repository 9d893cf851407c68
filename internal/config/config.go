// Package config handles user configuration for the note CLI.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config represents configuration stored in ~/.config/note/config.yml.
type Config struct {
	DBPath         string        `yaml:"db_path" json:"db_path" validate:"required"`
	LockTimeout    time.Duration `yaml:"lock_timeout" json:"lock_timeout" validate:"gte=0"`
	LockStaleAfter time.Duration `yaml:"lock_stale_after" json:"lock_stale_after" validate:"gte=0"`
	Color          string        `yaml:"color" json:"color" validate:"oneof=auto always never"`
	TimeFormat     string        `yaml:"time_format" json:"time_format" validate:"required"`
}

const (
	// ConfigDir is the directory name under XDG_CONFIG_HOME.
	ConfigDir = "note"
	// ConfigFile is the config file name.
	ConfigFile = "config.yml"
	// DefaultDBFile is the database file name in the home directory.
	DefaultDBFile = ".notes.db"
	// DefaultTimeFormat renders timestamps as yy.mm.dd HH:MM.
	DefaultTimeFormat = "06.01.02 15:04"
)

// Environment variables read by Load.
const (
	EnvConfig = "NOTE_CONFIG"
	EnvDB     = "NOTE_DB"
)

// Color modes.
const (
	ColorAuto   = "auto"
	ColorAlways = "always"
	ColorNever  = "never"
)

var validate = validator.New()

// Default returns the configuration used when no config file exists.
func Default() *Config {
	return &Config{
		DBPath:         filepath.Join("~", DefaultDBFile),
		LockTimeout:    5 * time.Second,
		LockStaleAfter: time.Minute,
		Color:          ColorAuto,
		TimeFormat:     DefaultTimeFormat,
	}
}

// Path returns the path to the config file.
// NOTE_CONFIG wins; otherwise XDG_CONFIG_HOME, defaulting to ~/.config.
func Path() string {
	if p := os.Getenv(EnvConfig); p != "" {
		return ExpandTilde(p)
	}
	configHome := os.Getenv("XDG_CONFIG_HOME")
	if configHome == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return ""
		}
		configHome = filepath.Join(home, ".config")
	}
	return filepath.Join(configHome, ConfigDir, ConfigFile)
}

// Load reads the config file over the defaults, applies NOTE_DB and
// validates the result. A missing config file is not an error.
func Load() (*Config, error) {
	cfg, err := LoadFile(Path())
	if err != nil {
		return nil, err
	}

	if db := os.Getenv(EnvDB); db != "" {
		cfg.DBPath = db
	}
	cfg.DBPath = ExpandTilde(cfg.DBPath)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadFile reads the YAML file at path over the defaults, without
// environment overrides or validation. A missing file yields the defaults.
func LoadFile(path string) (*Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return cfg, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", path, err)
	}
	return cfg, nil
}

// Validate checks field constraints.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			fe := verrs[0]
			return fmt.Errorf("invalid config: %s fails %q (got %v)", fe.Field(), fe.Tag(), fe.Value())
		}
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}

// Save writes the configuration as YAML to path, creating parent directories.
func (c *Config) Save(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("encoding config: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}
	return nil
}

// LoadDotEnv loads environment variables from a .env file if one exists.
// Variables already set in the environment are not overridden.
func LoadDotEnv(path string) error {
	if err := godotenv.Load(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("loading %s: %w", path, err)
	}
	return nil
}

// ExpandTilde replaces a leading ~ with the user's home directory.
func ExpandTilde(path string) string {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, strings.TrimPrefix(path, "~"))
}
