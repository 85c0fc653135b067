package config

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load("", nil)
	require.NoError(t, err)
	assert.Equal(t, runtime.NumCPU(), cfg.Workers)
	assert.Equal(t, 0, cfg.MaxDepth)
	assert.Equal(t, "", cfg.Cache)
	assert.Equal(t, log.InfoLevel, cfg.Level())
}

func TestLoad_Environment(t *testing.T) {
	t.Setenv("COMPONENTSGEN_WORKERS", "3")
	t.Setenv("COMPONENTSGEN_MAX_DEPTH", "16")
	t.Setenv("COMPONENTSGEN_LOG_LEVEL", "debug")

	cfg, err := Load("", nil)
	require.NoError(t, err)
	assert.Equal(t, 3, cfg.Workers)
	assert.Equal(t, 16, cfg.MaxDepth)
	assert.Equal(t, log.DebugLevel, cfg.Level())
}

func TestLoad_ConfigFile(t *testing.T) {
	file := filepath.Join(t.TempDir(), "componentsgen.yaml")
	require.NoError(t, os.WriteFile(file, []byte("workers: 2\ncache: /tmp/cache.db\n"), 0o644))

	cfg, err := Load(file, nil)
	require.NoError(t, err)
	assert.Equal(t, 2, cfg.Workers)
	assert.Equal(t, "/tmp/cache.db", cfg.Cache)
}

func TestLoad_MissingConfigFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"), nil)
	assert.ErrorContains(t, err, "config file not found")
}

func TestLoad_FlagsOverrideEnvironment(t *testing.T) {
	t.Setenv("COMPONENTSGEN_WORKERS", "3")

	flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
	flags.Int(KeyWorkers, 1, "")
	flags.String(KeyLogLevel, "info", "")
	require.NoError(t, flags.Parse([]string{"--workers", "5", "--log-level", "warn"}))

	cfg, err := Load("", flags)
	require.NoError(t, err)
	assert.Equal(t, 5, cfg.Workers)
	assert.Equal(t, log.WarnLevel, cfg.Level())
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"defaults", func(*Config) {}, ""},
		{"zero workers", func(c *Config) { c.Workers = 0 }, "workers must be positive"},
		{"negative depth", func(c *Config) { c.MaxDepth = -1 }, "max-depth must not be negative"},
		{"bad level", func(c *Config) { c.LogLevel = "loud" }, "invalid log-level"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			assert.ErrorContains(t, err, tt.wantErr)
		})
	}
}

func TestExpandHome(t *testing.T) {
	home, err := os.UserHomeDir()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(home, ".componentsgen", "cache.db"), expandHome("~/.componentsgen/cache.db"))
	assert.Equal(t, "/abs/cache.db", expandHome("/abs/cache.db"))
}
