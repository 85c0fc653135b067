package config

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const (
	// AppName is the application name
	AppName = "componentsgen"
	// EnvPrefix prefixes every environment variable, e.g. COMPONENTSGEN_WORKERS
	EnvPrefix = "COMPONENTSGEN"
)

// Config keys, shared by flags, environment and config files
const (
	KeyWorkers       = "workers"
	KeyMaxDepth      = "max-depth"
	KeyCache         = "cache"
	KeyLogLevel      = "log-level"
	KeyTextCacheSize = "text-cache-size"
)

// Config holds the runtime settings of the generator
type Config struct {
	Workers       int    `mapstructure:"workers"`
	MaxDepth      int    `mapstructure:"max-depth"`
	Cache         string `mapstructure:"cache"` // SQLite file of the generation cache, empty disables caching
	LogLevel      string `mapstructure:"log-level"`
	TextCacheSize int    `mapstructure:"text-cache-size"`
}

// DefaultConfig returns the settings used when nothing is configured
func DefaultConfig() Config {
	return Config{
		Workers:       runtime.NumCPU(),
		MaxDepth:      0,
		Cache:         "",
		LogLevel:      "info",
		TextCacheSize: 512,
	}
}

// Load merges defaults, an optional config file, COMPONENTSGEN_* environment
// variables and flags, in increasing order of precedence. flags may be nil.
func Load(configFile string, flags *pflag.FlagSet) (*Config, error) {
	v := viper.New()

	defaults := DefaultConfig()
	v.SetDefault(KeyWorkers, defaults.Workers)
	v.SetDefault(KeyMaxDepth, defaults.MaxDepth)
	v.SetDefault(KeyCache, defaults.Cache)
	v.SetDefault(KeyLogLevel, defaults.LogLevel)
	v.SetDefault(KeyTextCacheSize, defaults.TextCacheSize)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	if configFile != "" {
		if _, err := os.Stat(configFile); err != nil {
			return nil, fmt.Errorf("config file not found: %s", configFile)
		}
		v.SetConfigFile(configFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config %s: %w", configFile, err)
		}
	}

	if flags != nil {
		for _, key := range []string{KeyWorkers, KeyMaxDepth, KeyCache, KeyLogLevel, KeyTextCacheSize} {
			if flag := flags.Lookup(key); flag != nil {
				if err := v.BindPFlag(key, flag); err != nil {
					return nil, fmt.Errorf("failed to bind flag %s: %w", key, err)
				}
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	cfg.Cache = expandHome(cfg.Cache)
	return &cfg, nil
}

// Validate rejects settings the generator cannot run with
func (c *Config) Validate() error {
	if c.Workers <= 0 {
		return fmt.Errorf("workers must be positive, got %d", c.Workers)
	}
	if c.MaxDepth < 0 {
		return fmt.Errorf("max-depth must not be negative, got %d", c.MaxDepth)
	}
	if _, err := log.ParseLevel(c.LogLevel); err != nil {
		return fmt.Errorf("invalid log-level %q: %w", c.LogLevel, err)
	}
	return nil
}

// Level returns the parsed log level
func (c *Config) Level() log.Level {
	level, err := log.ParseLevel(c.LogLevel)
	if err != nil {
		return log.InfoLevel
	}
	return level
}

// NewLogger creates a stderr logger at the configured level
func (c *Config) NewLogger() *log.Logger {
	logger := log.NewWithOptions(os.Stderr, log.Options{
		Prefix: AppName,
		Level:  c.Level(),
	})
	return logger
}

func expandHome(p string) string {
	if p == "~" || strings.HasPrefix(p, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, strings.TrimPrefix(p, "~"))
		}
	}
	return p
}
