package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/caarlos0/env/v11"
	"github.com/harrison/deaccent/internal/fileutil"
	"github.com/harrison/deaccent/internal/logger"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// StateDirName is the per-project directory holding config, logs and history.
const StateDirName = ".deaccent"

// EnvPrefix prefixes every environment variable read by ApplyEnv.
const EnvPrefix = "DEACCENT_"

// EnvFileName is the dotenv file read from the state directory by ApplyEnv.
const EnvFileName = ".env"

// HistoryConfig represents run journal configuration
type HistoryConfig struct {
	// Enabled records every run in the journal
	Enabled bool `yaml:"enabled"`

	// DBPath is the path to the SQLite journal
	DBPath string `yaml:"db_path"`
}

// Config represents deaccent configuration options
type Config struct {
	// Extensions lists the file extensions eligible for rewriting
	Extensions []string `yaml:"extensions"`

	// ExcludeDirs lists directory names never descended into
	ExcludeDirs []string `yaml:"exclude_dirs"`

	// LogLevel sets the logging verbosity (trace, debug, info, warn, error)
	LogLevel string `yaml:"log_level"`

	// LogDir is the directory for per-run log files (empty = no file log)
	LogDir string `yaml:"log_dir"`

	// DryRun reports changes without writing any file
	DryRun bool `yaml:"dry_run"`

	// AtomicWrite rewrites files through a temp file and rename
	AtomicWrite bool `yaml:"atomic_write"`

	// History contains run journal configuration
	History HistoryConfig `yaml:"history"`
}

// DefaultConfig returns the compiled-in configuration.
func DefaultConfig() *Config {
	return &Config{
		Extensions:  append([]string(nil), fileutil.DefaultExtensions...),
		ExcludeDirs: append([]string(nil), fileutil.DefaultExcludeDirs...),
		LogLevel:    "info",
		LogDir:      "",
		DryRun:      false,
		AtomicWrite: false,
		History: HistoryConfig{
			Enabled: false,
			DBPath:  filepath.Join(StateDirName, "history.db"),
		},
	}
}

// LoadConfig loads configuration from the specified file path
// If the file doesn't exist, returns default configuration without error
// If the file exists but is malformed, returns an error
func LoadConfig(path string) (*Config, error) {
	cfg := DefaultConfig()

	if _, err := os.Stat(path); os.IsNotExist(err) {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	// Pointer fields tell an explicit zero value apart from an absent key
	type yamlHistory struct {
		Enabled *bool   `yaml:"enabled"`
		DBPath  *string `yaml:"db_path"`
	}
	type yamlConfig struct {
		Extensions  []string     `yaml:"extensions"`
		ExcludeDirs []string     `yaml:"exclude_dirs"`
		LogLevel    string       `yaml:"log_level"`
		LogDir      *string      `yaml:"log_dir"`
		DryRun      *bool        `yaml:"dry_run"`
		AtomicWrite *bool        `yaml:"atomic_write"`
		History     *yamlHistory `yaml:"history"`
	}

	var yamlCfg yamlConfig
	if err := yaml.Unmarshal(data, &yamlCfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	if yamlCfg.Extensions != nil {
		cfg.Extensions = yamlCfg.Extensions
	}
	if yamlCfg.ExcludeDirs != nil {
		cfg.ExcludeDirs = yamlCfg.ExcludeDirs
	}
	if yamlCfg.LogLevel != "" {
		cfg.LogLevel = strings.ToLower(strings.TrimSpace(yamlCfg.LogLevel))
	}
	if yamlCfg.LogDir != nil {
		cfg.LogDir = *yamlCfg.LogDir
	}
	if yamlCfg.DryRun != nil {
		cfg.DryRun = *yamlCfg.DryRun
	}
	if yamlCfg.AtomicWrite != nil {
		cfg.AtomicWrite = *yamlCfg.AtomicWrite
	}
	if h := yamlCfg.History; h != nil {
		if h.Enabled != nil {
			cfg.History.Enabled = *h.Enabled
		}
		if h.DBPath != nil {
			cfg.History.DBPath = *h.DBPath
		}
	}

	return cfg, nil
}

// LoadConfigFromDir loads configuration from .deaccent/config.yaml in the specified directory
// If the directory or file doesn't exist, returns default configuration without error
func LoadConfigFromDir(dir string) (*Config, error) {
	return LoadConfig(filepath.Join(dir, StateDirName, "config.yaml"))
}

// envOverrides maps DEACCENT_* variables; nil/empty fields were not set.
type envOverrides struct {
	Extensions     []string `env:"EXTENSIONS" envSeparator:","`
	ExcludeDirs    []string `env:"EXCLUDE_DIRS" envSeparator:","`
	LogLevel       string   `env:"LOG_LEVEL"`
	LogDir         *string  `env:"LOG_DIR"`
	DryRun         *bool    `env:"DRY_RUN"`
	AtomicWrite    *bool    `env:"ATOMIC_WRITE"`
	HistoryEnabled *bool    `env:"HISTORY"`
	HistoryDBPath  *string  `env:"HISTORY_DB"`
}

// ApplyEnv overrides configuration values from DEACCENT_* environment variables,
// with .deaccent/.env supplying values the process environment does not set.
func (c *Config) ApplyEnv() error {
	return c.ApplyEnvFile(filepath.Join(StateDirName, EnvFileName))
}

// ApplyEnvFile is ApplyEnv with an explicit dotenv file. A missing file is not an error.
func (c *Config) ApplyEnvFile(path string) error {
	environ := env.ToMap(os.Environ())

	vars, err := godotenv.Read(path)
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("failed to read env file %s: %w", path, err)
	}
	for k, v := range vars {
		if _, set := environ[k]; !set {
			environ[k] = v
		}
	}

	return c.ApplyEnvFrom(environ)
}

// ApplyEnvFrom is ApplyEnv reading from the given map instead of the process environment.
func (c *Config) ApplyEnvFrom(environ map[string]string) error {
	return c.applyEnv(env.Options{Prefix: EnvPrefix, Environment: environ})
}

func (c *Config) applyEnv(opts env.Options) error {
	var overrides envOverrides
	if err := env.ParseWithOptions(&overrides, opts); err != nil {
		return fmt.Errorf("failed to parse environment: %w", err)
	}

	if len(overrides.Extensions) > 0 {
		c.Extensions = trimAll(overrides.Extensions)
	}
	if len(overrides.ExcludeDirs) > 0 {
		c.ExcludeDirs = trimAll(overrides.ExcludeDirs)
	}
	if overrides.LogLevel != "" {
		c.LogLevel = strings.ToLower(strings.TrimSpace(overrides.LogLevel))
	}
	if overrides.LogDir != nil {
		c.LogDir = *overrides.LogDir
	}
	if overrides.DryRun != nil {
		c.DryRun = *overrides.DryRun
	}
	if overrides.AtomicWrite != nil {
		c.AtomicWrite = *overrides.AtomicWrite
	}
	if overrides.HistoryEnabled != nil {
		c.History.Enabled = *overrides.HistoryEnabled
	}
	if overrides.HistoryDBPath != nil {
		c.History.DBPath = *overrides.HistoryDBPath
	}

	return nil
}

func trimAll(values []string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}

// FlagOverrides carries CLI flag values; nil fields were not set on the command line.
type FlagOverrides struct {
	Extensions     []string
	ExcludeDirs    []string
	LogLevel       *string
	LogDir         *string
	DryRun         *bool
	AtomicWrite    *bool
	HistoryEnabled *bool
}

// MergeWithFlags merges CLI flags into the configuration
// Non-nil flag values override configuration values
// This allows CLI flags to take precedence over config file and environment
func (c *Config) MergeWithFlags(flags FlagOverrides) {
	if len(flags.Extensions) > 0 {
		c.Extensions = flags.Extensions
	}
	if len(flags.ExcludeDirs) > 0 {
		c.ExcludeDirs = flags.ExcludeDirs
	}
	if flags.LogLevel != nil {
		c.LogLevel = strings.ToLower(strings.TrimSpace(*flags.LogLevel))
	}
	if flags.LogDir != nil {
		c.LogDir = *flags.LogDir
	}
	if flags.DryRun != nil {
		c.DryRun = *flags.DryRun
	}
	if flags.AtomicWrite != nil {
		c.AtomicWrite = *flags.AtomicWrite
	}
	if flags.HistoryEnabled != nil {
		c.History.Enabled = *flags.HistoryEnabled
	}
}

// UsesStateDir reports whether the run writes logs or a journal and
// therefore needs the state directory lock.
func (c *Config) UsesStateDir() bool {
	return c.LogDir != "" || c.History.Enabled
}

// Validate validates the configuration values
// Returns an error if any values are invalid
func (c *Config) Validate() error {
	if !logger.IsValidLevel(c.LogLevel) {
		return fmt.Errorf("invalid log_level %q, must be one of: trace, debug, info, warn, error", c.LogLevel)
	}

	if len(c.Extensions) == 0 {
		return fmt.Errorf("extensions cannot be empty")
	}
	for _, ext := range c.Extensions {
		if strings.TrimSpace(ext) == "" || ext == "." {
			return fmt.Errorf("invalid extension %q", ext)
		}
		if strings.ContainsAny(ext, `/\`) {
			return fmt.Errorf("extension %q must not contain a path separator", ext)
		}
	}

	for _, dir := range c.ExcludeDirs {
		if strings.TrimSpace(dir) == "" {
			return fmt.Errorf("exclude_dirs cannot contain an empty name")
		}
		if strings.ContainsAny(dir, `/\`) {
			return fmt.Errorf("exclude_dirs entry %q must be a directory name, not a path", dir)
		}
	}

	if c.History.Enabled && c.History.DBPath == "" {
		return fmt.Errorf("history.db_path cannot be empty when history is enabled")
	}

	return nil
}
