package cliopt

import (
	"github.com/spf13/pflag"

	"github.com/contentlake/contentlake/internal/config"
)

// GlobalOptions are parsed once at the CLI root and passed to subcommands.
// Flags override the config file and CONTENTLAKE_* variables.
//
// NOTE: This is a separate package to avoid import cycles between the root
// command router and per-command code.
type GlobalOptions struct {
	ConfigFile     string
	Backend        string
	SQLitePath     string
	SQLiteDriver   string
	PostgresDSN    string
	PostgresSchema string
	LogLevel       string
	Output         string

	cfg *config.Config
}

func DefaultGlobalOptions() GlobalOptions {
	return GlobalOptions{Output: "text"}
}

func BindGlobalFlags(fs *pflag.FlagSet, g *GlobalOptions) {
	fs.StringVar(&g.ConfigFile, "config", g.ConfigFile, "config file (yaml, json or toml)")
	fs.StringVar(&g.Backend, "backend", g.Backend, "backend: sqlite|postgres")

	fs.StringVar(&g.SQLitePath, "sqlite-path", g.SQLitePath, "sqlite directory or explicit .db file path")
	fs.StringVar(&g.SQLiteDriver, "sqlite-driver", g.SQLiteDriver, "database/sql driver name: sqlite|sqlite3")

	fs.StringVar(&g.PostgresDSN, "pg-dsn", g.PostgresDSN, "postgres DSN")
	fs.StringVar(&g.PostgresSchema, "pg-schema", g.PostgresSchema, "postgres schema (defaults to the dataset name)")

	fs.StringVar(&g.LogLevel, "log-level", g.LogLevel, "log level: DEBUG|INFO|WARN|ERROR")
	fs.StringVarP(&g.Output, "output", "o", g.Output, "output format: text|json")
}

// Load resolves the effective configuration. Only flags set on the command
// line override loaded values.
func (g *GlobalOptions) Load(fs *pflag.FlagSet) (*config.Config, error) {
	cfg, err := config.Load(g.ConfigFile)
	if err != nil {
		return nil, err
	}

	override := func(name string, dst *string, val string) {
		if fs.Changed(name) {
			*dst = val
		}
	}
	override("backend", &cfg.Backend, g.Backend)
	override("sqlite-path", &cfg.SQLite.Path, g.SQLitePath)
	override("sqlite-driver", &cfg.SQLite.Driver, g.SQLiteDriver)
	override("pg-dsn", &cfg.Postgres.DSN, g.PostgresDSN)
	override("pg-schema", &cfg.Postgres.Schema, g.PostgresSchema)
	override("log-level", &cfg.Log.Level, g.LogLevel)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	g.cfg = cfg
	return cfg, nil
}

// Config returns the configuration resolved by Load, or nil.
func (g *GlobalOptions) Config() *config.Config {
	return g.cfg
}
