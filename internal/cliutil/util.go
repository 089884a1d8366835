package cliutil

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/goccy/go-json"

	"github.com/contentlake/contentlake/contentlake"
	"github.com/contentlake/contentlake/contentlake/document"
	"github.com/contentlake/contentlake/contentlake/storage"
	"github.com/contentlake/contentlake/contentlake/storage/postgres"
	"github.com/contentlake/contentlake/contentlake/storage/sqlite"
	"github.com/contentlake/contentlake/internal/config"
	"github.com/contentlake/contentlake/internal/logger"
)

type OutputFormat string

const (
	FormatText OutputFormat = "text"
	FormatJSON OutputFormat = "json"
	FormatYAML OutputFormat = "yaml"
)

func ParseOutputFormat(s string) (OutputFormat, error) {
	switch OutputFormat(strings.ToLower(s)) {
	case "", FormatText:
		return FormatText, nil
	case FormatJSON:
		return FormatJSON, nil
	case FormatYAML:
		return FormatYAML, nil
	default:
		return "", fmt.Errorf("unknown output format %q", s)
	}
}

func PrintJSON(w io.Writer, v any) error {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(w, string(b))
	return err
}

// ResolveDatasetRef transforms a dataset name into a backend-specific reference.
//
//   - sqlite: if name contains a path separator or ends with .db, treat as explicit path.
//     else: <sqlite.path>/<name>.db
//   - postgres: the configured schema, or the name itself.
func ResolveDatasetRef(cfg *config.Config, name string) string {
	switch cfg.Backend {
	case "sqlite":
		if strings.Contains(name, string(filepath.Separator)) || strings.HasSuffix(name, ".db") {
			return name
		}
		return filepath.Join(cfg.SQLite.Path, name+".db")
	default:
		if cfg.Postgres.Schema != "" {
			return cfg.Postgres.Schema
		}
		return name
	}
}

// NewAdapter builds the storage adapter for a dataset.
func NewAdapter(cfg *config.Config, name string) (storage.Adapter, error) {
	ref := ResolveDatasetRef(cfg, name)
	switch cfg.Backend {
	case "sqlite":
		return sqlite.NewWithDriver(ref, cfg.SQLite.Driver), nil
	case "postgres":
		if !postgres.ValidSchemaName(ref) {
			return nil, fmt.Errorf("invalid postgres schema name %q", ref)
		}
		return postgres.New(cfg.Postgres.DSN, ref), nil
	default:
		return nil, fmt.Errorf("unknown backend %q", cfg.Backend)
	}
}

// DatasetOptions maps configuration onto dataset options.
func DatasetOptions(cfg *config.Config) (contentlake.Options, error) {
	opts := contentlake.DefaultOptions()
	opts.Workers = cfg.Query.Workers
	opts.MaxDepth = cfg.Query.MaxDepth
	opts.GrantCacheSize = cfg.Grant.CacheSize
	opts.Logger = logger.Get()
	if cfg.Query.CursorTTL != "" {
		ttl, err := time.ParseDuration(cfg.Query.CursorTTL)
		if err != nil {
			return opts, fmt.Errorf("query.cursorttl: %w", err)
		}
		opts.CursorTTL = ttl
	}
	return opts, nil
}

// ReadInput returns the bytes named by arg: "-" reads r, "@path" reads a
// file, anything else is taken literally.
func ReadInput(arg string, r io.Reader) ([]byte, error) {
	switch {
	case arg == "-":
		return io.ReadAll(r)
	case strings.HasPrefix(arg, "@"):
		return os.ReadFile(strings.TrimPrefix(arg, "@"))
	default:
		return []byte(arg), nil
	}
}

// ReadParams decodes a JSON object of query parameters. Empty input yields nil.
func ReadParams(arg string, r io.Reader) (map[string]any, error) {
	if arg == "" {
		return nil, nil
	}
	b, err := ReadInput(arg, r)
	if err != nil {
		return nil, err
	}
	params, err := document.Decode(b)
	if err != nil {
		return nil, fmt.Errorf("params: %w", err)
	}
	return params, nil
}

// ReadDocument decodes an optional document argument. Empty input yields
// an empty object.
func ReadDocument(arg string, r io.Reader) (any, error) {
	if arg == "" {
		return map[string]any{}, nil
	}
	b, err := ReadInput(arg, r)
	if err != nil {
		return nil, err
	}
	v, err := document.DecodeValue(b)
	if err != nil {
		return nil, fmt.Errorf("document: %w", err)
	}
	return v, nil
}
