package core

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"pdftokens/logging"
)

// Environment variable names.
const (
	EnvModel         = "PDFTOKENS_MODEL"
	EnvOutputDir     = "PDFTOKENS_OUTPUT_DIR"
	EnvConfig        = "PDFTOKENS_CONFIG"
	EnvHistoryDB     = "PDFTOKENS_HISTORY_DB"
	EnvRetentionDays = "PDFTOKENS_HISTORY_RETENTION_DAYS"
	EnvLogFile       = "PDFTOKENS_LOG_FILE"
	EnvLogLevel      = "PDFTOKENS_LOG_LEVEL"
	EnvPageSeparator = "PDFTOKENS_PAGE_SEPARATOR"
	EnvDevMode       = "DEV_MODE"
)

// Default configuration values.
const (
	DefaultModel         = "gpt-4"
	DefaultOutputDir     = "sample_analysis"
	DefaultLogFile       = "pdftokens.log"
	DefaultLogLevel      = "info"
	DefaultPageSeparator = "\n"
)

// Config holds all configuration values.
type Config struct {
	// Model selects the token vocabulary (model or encoding name)
	Model string `yaml:"model"`

	// OutputDir is where markdown reports are saved
	OutputDir string `yaml:"output_dir"`

	// HistoryDB is the SQLite history path; empty disables history
	HistoryDB string `yaml:"history_db"`

	// HistoryRetentionDays prunes older runs after recording; 0 keeps all
	HistoryRetentionDays int `yaml:"history_retention_days"`

	// LogFile is the rotating log file; empty disables file logging
	LogFile string `yaml:"log_file"`

	LogLevel string `yaml:"log_level"`
	DevMode  bool   `yaml:"dev_mode"`

	// PageSeparator joins page texts before counting
	PageSeparator string `yaml:"page_separator"`
}

// DefaultConfig returns a Config populated with defaults.
func DefaultConfig() *Config {
	return &Config{
		Model:         DefaultModel,
		OutputDir:     DefaultOutputDir,
		LogFile:       DefaultLogFile,
		LogLevel:      DefaultLogLevel,
		PageSeparator: DefaultPageSeparator,
	}
}

// LoadConfig builds a Config from defaults, then the YAML file at
// configPath (skipped when empty), then environment variables. The caller
// applies command-line flags last and calls Validate.
func LoadConfig(configPath string) (*Config, error) {
	cfg := DefaultConfig()

	if configPath != "" {
		if err := cfg.mergeFile(configPath); err != nil {
			return nil, err
		}
	}

	cfg.applyEnv()
	return cfg, nil
}

// mergeFile overlays the keys present in a YAML file onto cfg.
func (c *Config) mergeFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return ErrConfigFile(path, err)
	}

	// Decoding into the populated struct keeps defaults for absent keys.
	if err := yaml.Unmarshal(data, c); err != nil {
		return ErrConfigFile(path, err)
	}
	return nil
}

// applyEnv overrides fields whose environment variable is set.
// An env var set to the empty string does not override; use the flag to
// clear a value such as the log file.
func (c *Config) applyEnv() {
	c.Model = GetEnvOrDefault(EnvModel, c.Model)
	c.OutputDir = GetEnvOrDefault(EnvOutputDir, c.OutputDir)
	c.HistoryDB = GetEnvOrDefault(EnvHistoryDB, c.HistoryDB)
	c.HistoryRetentionDays = ParseIntEnv(EnvRetentionDays, c.HistoryRetentionDays)
	c.LogFile = GetEnvOrDefault(EnvLogFile, c.LogFile)
	c.LogLevel = GetEnvOrDefault(EnvLogLevel, c.LogLevel)
	c.DevMode = ParseBoolEnv(EnvDevMode, c.DevMode)
	if sep := os.Getenv(EnvPageSeparator); sep != "" {
		c.PageSeparator = UnescapeSeparator(sep)
	}
}

// Validate checks that required values are present and well formed.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.Model) == "" {
		return ErrInvalidConfig("model", "must not be empty")
	}
	if strings.TrimSpace(c.OutputDir) == "" {
		return ErrInvalidConfig("output_dir", "must not be empty")
	}
	if c.HistoryRetentionDays < 0 {
		return ErrInvalidConfig("history_retention_days", "must not be negative")
	}
	if _, err := logging.ParseLogLevelStrict(c.LogLevel); err != nil {
		return ErrInvalidConfig("log_level", fmt.Sprintf("%q is not one of debug, info, warn, error", c.LogLevel))
	}
	return nil
}

// HistoryEnabled reports whether runs should be recorded.
func (c *Config) HistoryEnabled() bool {
	return c.HistoryDB != ""
}
