// Package config loads contentlake settings from an optional config file
// and CONTENTLAKE_* environment variables.
package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/viper"
)

// EnvPrefix prefixes environment overrides. CONTENTLAKE_QUERY_WORKERS sets
// query.workers.
const EnvPrefix = "CONTENTLAKE_"

type Config struct {
	Backend  string         `mapstructure:"backend"`
	SQLite   SQLiteConfig   `mapstructure:"sqlite"`
	Postgres PostgresConfig `mapstructure:"postgres"`
	Log      LogConfig      `mapstructure:"log"`
	Query    QueryConfig    `mapstructure:"query"`
	Grant    GrantConfig    `mapstructure:"grant"`
}

type SQLiteConfig struct {
	Path   string `mapstructure:"path"` // directory or explicit .db file
	Driver string `mapstructure:"driver"`
}

type PostgresConfig struct {
	DSN    string `mapstructure:"dsn"`
	Schema string `mapstructure:"schema"` // defaults to the dataset name
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

type QueryConfig struct {
	MaxDepth  int    `mapstructure:"maxdepth"`
	Workers   int    `mapstructure:"workers"`
	CursorTTL string `mapstructure:"cursorttl"`
}

type GrantConfig struct {
	CacheSize int `mapstructure:"cachesize"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("backend", "sqlite")
	v.SetDefault("sqlite.path", ".")
	v.SetDefault("sqlite.driver", "sqlite")
	v.SetDefault("log.level", "WARN")
	v.SetDefault("log.format", "text")
	v.SetDefault("query.maxdepth", 1000)
	v.SetDefault("query.workers", 8)
	v.SetDefault("query.cursorttl", "1h")
	v.SetDefault("grant.cachesize", 512)
}

// Load reads configFile (if non-empty) and then applies environment
// overrides on top of the defaults.
func Load(configFile string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	if configFile != "" {
		v.SetConfigFile(configFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config %s: %w", configFile, err)
		}
	}

	// AutomaticEnv does not feed Unmarshal for keys viper has not seen, so
	// copy prefixed variables in by hand.
	for _, envStr := range os.Environ() {
		key, value, ok := strings.Cut(envStr, "=")
		if !ok || !strings.HasPrefix(key, EnvPrefix) {
			continue
		}
		propKey := strings.ToLower(strings.ReplaceAll(strings.TrimPrefix(key, EnvPrefix), "_", "."))
		v.Set(strings.Trim(propKey, "."), value)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks values that would otherwise fail late.
func (c *Config) Validate() error {
	c.Backend = strings.ToLower(c.Backend)
	switch c.Backend {
	case "sqlite", "postgres":
	default:
		return fmt.Errorf("unknown backend %q (want sqlite or postgres)", c.Backend)
	}
	if c.Backend == "postgres" && c.Postgres.DSN == "" {
		return fmt.Errorf("postgres.dsn is required for the postgres backend")
	}
	if c.Query.Workers < 0 {
		return fmt.Errorf("query.workers must not be negative")
	}
	if c.Query.MaxDepth < 0 {
		return fmt.Errorf("query.maxdepth must not be negative")
	}
	return nil
}
