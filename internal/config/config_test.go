package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clearEnv(t *testing.T) {
	t.Helper()
	t.Setenv("ALETHEIA_OUTPUT_DIR", "")
	t.Setenv("ALETHEIA_SEED", "")
	t.Setenv("ALETHEIA_LOG_LEVEL", "")
}

func TestDefault(t *testing.T) {
	cfg := Default()
	assert.Equal(t, filepath.Join("ai", "models"), cfg.OutputDir)
	assert.Equal(t, "aletheia_final.ckpt", cfg.Profiles.Final.Checkpoint)
	assert.Equal(t, "aletheia_final_metadata.json", cfg.Profiles.Final.Metadata)
	assert.Equal(t, "aletheia_real_final.ckpt", cfg.Profiles.Real.Checkpoint)
	assert.Equal(t, "aletheia_real_metadata.json", cfg.Profiles.Real.Metadata)
	assert.Zero(t, cfg.Seed)
	assert.NoError(t, cfg.Validate())
}

func TestLoad_MissingFileReturnsDefaults(t *testing.T) {
	clearEnv(t)
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestSaveLoad(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "conf", "aletheia.yaml")

	cfg := Default()
	cfg.OutputDir = "out"
	cfg.Seed = 1234
	cfg.Logging.Format = "json"
	require.NoError(t, cfg.Save(path))

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, cfg, loaded)
}

func TestLoad_PartialFileKeepsDefaults(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "aletheia.yaml")
	require.NoError(t, os.WriteFile(path, []byte("seed: 7\nlogging:\n  level: debug\n"), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, uint64(7), cfg.Seed)
	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.Equal(t, "console", cfg.Logging.Format)
	assert.Equal(t, "aletheia_real_final.ckpt", cfg.Profiles.Real.Checkpoint)
}

func TestLoad_InvalidYAML(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "aletheia.yaml")
	require.NoError(t, os.WriteFile(path, []byte("seed: [not a number"), 0o600))

	_, err := Load(path)
	assert.ErrorContains(t, err, "failed to parse config")
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("ALETHEIA_OUTPUT_DIR", "/tmp/models")
	t.Setenv("ALETHEIA_SEED", "99")
	t.Setenv("ALETHEIA_LOG_LEVEL", "warn")

	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)
	assert.Equal(t, "/tmp/models", cfg.OutputDir)
	assert.Equal(t, uint64(99), cfg.Seed)
	assert.Equal(t, "warn", cfg.Logging.Level)

	t.Setenv("ALETHEIA_SEED", "minus-one")
	_, err = Load(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.ErrorContains(t, err, "ALETHEIA_SEED")
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*Config)
		want   string
	}{
		{"empty output dir", func(c *Config) { c.OutputDir = "" }, "output_dir"},
		{"missing checkpoint", func(c *Config) { c.Profiles.Final.Checkpoint = "" }, "profile final"},
		{"same files", func(c *Config) { c.Profiles.Real.Metadata = c.Profiles.Real.Checkpoint }, "profile real"},
		{"both profiles invalid reports final", func(c *Config) {
			c.Profiles.Final.Metadata = ""
			c.Profiles.Real.Checkpoint = ""
		}, "profile final"},
		{"bad level", func(c *Config) { c.Logging.Level = "trace" }, "invalid log level"},
		{"bad format", func(c *Config) { c.Logging.Format = "xml" }, "invalid log format"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.modify(cfg)
			assert.ErrorContains(t, cfg.Validate(), tt.want)
		})
	}
}
