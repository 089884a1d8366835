package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/contentlake/contentlake/contentlake/storage"
	"github.com/contentlake/contentlake/contentlake/storage/sqlbuilder"
)

// DefaultDriver is the database/sql name registered by modernc.org/sqlite.
// mattn/go-sqlite3 registers "sqlite3".
const DefaultDriver = "sqlite"

type Adapter struct {
	Path       string
	DriverName string
}

func New(path string) *Adapter {
	return &Adapter{Path: path, DriverName: DefaultDriver}
}

func NewWithDriver(path, driver string) *Adapter {
	if driver == "" {
		driver = DefaultDriver
	}
	return &Adapter{Path: path, DriverName: driver}
}

func (a *Adapter) Backend() storage.Backend {
	return storage.BackendSQLite
}

func (a *Adapter) PlaceholderStyle() sqlbuilder.PlaceholderStyle {
	return sqlbuilder.PlaceholderQuestion
}

func (a *Adapter) DatasetID() string {
	return a.Path
}

func (a *Adapter) Connect(ctx context.Context) (*sql.DB, error) {
	dsn := a.Path
	if !strings.Contains(dsn, "?") {
		dsn = dsn + "?_busy_timeout=5000&_foreign_keys=on"
	} else {
		dsn = dsn + "&_busy_timeout=5000&_foreign_keys=on"
	}
	db, err := sql.Open(a.DriverName, dsn)
	if err != nil {
		return nil, err
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	return db, nil
}

func (a *Adapter) Close() error {
	return nil
}

func (a *Adapter) SQL() storage.SQL {
	return SQLTemplates
}

func (a *Adapter) CreateDataset(ctx context.Context, db *sql.DB, name string) error {
	if _, err := db.ExecContext(ctx, ddlBase); err != nil {
		return err
	}
	_, _ = db.ExecContext(ctx, "PRAGMA journal_mode=WAL;")
	_, _ = db.ExecContext(ctx, "PRAGMA synchronous=NORMAL;")

	sqlt := a.SQL()
	if _, err := db.ExecContext(ctx, sqlt.SetMeta, storage.MetaMagic, storage.Magic); err != nil {
		return err
	}
	if _, err := db.ExecContext(ctx, sqlt.SetMeta, storage.MetaVersion, storage.FormatVersion); err != nil {
		return err
	}
	if _, err := db.ExecContext(ctx, sqlt.SetMeta, storage.MetaName, name); err != nil {
		return err
	}
	return nil
}

func (a *Adapter) OpenDataset(ctx context.Context, db *sql.DB) (string, error) {
	sqlt := a.SQL()
	var magic string
	if err := db.QueryRowContext(ctx, sqlt.GetMeta, storage.MetaMagic).Scan(&magic); err != nil {
		return "", err
	}
	if magic != storage.Magic {
		return "", fmt.Errorf("not a contentlake db")
	}
	var name string
	if err := db.QueryRowContext(ctx, sqlt.GetMeta, storage.MetaName).Scan(&name); err != nil {
		return "", err
	}
	return name, nil
}

func (a *Adapter) Optimize(ctx context.Context, db *sql.DB) error {
	_, _ = db.ExecContext(ctx, "PRAGMA optimize")
	_, err := db.ExecContext(ctx, "VACUUM")
	return err
}

// JSONText uses json_extract, which yields SQL text for JSON strings.
func (a *Adapter) JSONText(b storage.Builder, path []string) string {
	var sb strings.Builder
	sb.WriteString("$")
	for _, p := range path {
		sb.WriteString(`."`)
		sb.WriteString(p)
		sb.WriteString(`"`)
	}
	return fmt.Sprintf("json_extract(data_json, %s)", b.Arg(sb.String()))
}
