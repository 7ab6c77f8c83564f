// Package config loads the artifact builder configuration from YAML.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strconv"

	"gopkg.in/yaml.v3"
)

// Config holds all ALETHEIA builder configuration.
type Config struct {
	// Directory that receives checkpoints and sidecars
	OutputDir string `yaml:"output_dir"`

	// Seed for weight initialization; 0 picks a random seed per build
	Seed uint64 `yaml:"seed"`

	// Output file names per profile
	Profiles ProfilesConfig `yaml:"profiles"`

	// Logging
	Logging LoggingConfig `yaml:"logging"`
}

// ProfileFiles names the files one profile writes inside OutputDir.
type ProfileFiles struct {
	Checkpoint string `yaml:"checkpoint"`
	Metadata   string `yaml:"metadata"`
}

// ProfilesConfig holds the file names of both profiles.
type ProfilesConfig struct {
	Final ProfileFiles `yaml:"final"`
	Real  ProfileFiles `yaml:"real"`
}

// LoggingConfig configures the zap logger.
type LoggingConfig struct {
	Level  string `yaml:"level"`  // debug, info, warn, error
	Format string `yaml:"format"` // console, json
	File   string `yaml:"file"`   // empty logs to stderr
}

// Default returns the default configuration.
func Default() *Config {
	return &Config{
		OutputDir: filepath.Join("ai", "models"),
		Profiles: ProfilesConfig{
			Final: ProfileFiles{
				Checkpoint: "aletheia_final.ckpt",
				Metadata:   "aletheia_final_metadata.json",
			},
			Real: ProfileFiles{
				Checkpoint: "aletheia_real_final.ckpt",
				Metadata:   "aletheia_real_metadata.json",
			},
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "console",
		},
	}
}

// Load loads configuration from a YAML file. A missing file yields the
// defaults. Environment overrides apply in both cases.
func Load(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	switch {
	case os.IsNotExist(err):
	case err != nil:
		return nil, fmt.Errorf("failed to read config: %w", err)
	default:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config: %w", err)
		}
	}

	if err := cfg.applyEnvOverrides(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Save saves configuration to a YAML file.
func (c *Config) Save(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	return nil
}

// applyEnvOverrides applies ALETHEIA_* environment variables.
func (c *Config) applyEnvOverrides() error {
	if dir := os.Getenv("ALETHEIA_OUTPUT_DIR"); dir != "" {
		c.OutputDir = dir
	}
	if s := os.Getenv("ALETHEIA_SEED"); s != "" {
		seed, err := strconv.ParseUint(s, 10, 64)
		if err != nil {
			return fmt.Errorf("invalid ALETHEIA_SEED %q: %w", s, err)
		}
		c.Seed = seed
	}
	if level := os.Getenv("ALETHEIA_LOG_LEVEL"); level != "" {
		c.Logging.Level = level
	}
	return nil
}

// ValidLogLevels lists the accepted logging levels.
var ValidLogLevels = []string{"debug", "info", "warn", "error"}

// ValidLogFormats lists the accepted logging formats.
var ValidLogFormats = []string{"console", "json"}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if c.OutputDir == "" {
		return fmt.Errorf("output_dir must not be empty")
	}

	profiles := []struct {
		name  string
		files ProfileFiles
	}{
		{"final", c.Profiles.Final},
		{"real", c.Profiles.Real},
	}
	for _, p := range profiles {
		if p.files.Checkpoint == "" || p.files.Metadata == "" {
			return fmt.Errorf("profile %s: checkpoint and metadata file names are required", p.name)
		}
		if p.files.Checkpoint == p.files.Metadata {
			return fmt.Errorf("profile %s: checkpoint and metadata must be different files", p.name)
		}
	}

	if !slices.Contains(ValidLogLevels, c.Logging.Level) {
		return fmt.Errorf("invalid log level: %s (valid: %v)", c.Logging.Level, ValidLogLevels)
	}
	if !slices.Contains(ValidLogFormats, c.Logging.Format) {
		return fmt.Errorf("invalid log format: %s (valid: %v)", c.Logging.Format, ValidLogFormats)
	}
	return nil
}
