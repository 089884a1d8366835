package storage

import (
	"context"
	"database/sql"

	"github.com/contentlake/contentlake/contentlake/storage/sqlbuilder"
)

type Backend string

const (
	BackendSQLite   Backend = "sqlite"
	BackendPostgres Backend = "postgres"
)

// Meta keys written by CreateDataset.
const (
	MetaMagic   = "contentlake_magic"
	MetaVersion = "contentlake_version"
	MetaName    = "dataset_name"
	MetaSchema  = "json_schema"

	Magic         = "contentlake"
	FormatVersion = "1"
)

// Adapter abstracts database-specific operations
type Adapter interface {
	Backend() Backend
	PlaceholderStyle() sqlbuilder.PlaceholderStyle
	DatasetID() string

	Connect(ctx context.Context) (*sql.DB, error)
	Close() error

	CreateDataset(ctx context.Context, db *sql.DB, name string) error
	OpenDataset(ctx context.Context, db *sql.DB) (name string, err error)
	Optimize(ctx context.Context, db *sql.DB) error

	// JSONText renders an expression yielding the text of the attribute at
	// path inside data_json, or NULL when absent.
	JSONText(b Builder, path []string) string

	SQL() SQL
}

// SQL holds prepared SQL templates for common operations
type SQL struct {
	GetMeta string
	SetMeta string

	FindDocument   string // id -> rev, created_at
	GetDocument    string // id -> data_json, rev, created_at, updated_at
	DeleteDocument string
	CountDocuments string
	CountByType    string // -> doc_type, count
	TimeRange      string // -> min(created_at), max(updated_at)
	InsertDocument string // id, doc_type, rev, data_json, created_at, updated_at
	UpsertDocument UpsertDocumentSQL

	CleanupExpiredCursors string
	GetCursor             string
	PutCursor             string
}

// UpsertDocumentSQL builds the insert-or-replace statement for a document.
type UpsertDocumentSQL interface {
	Build(id, docType, rev string, dataJSON []byte, createdAtMS, updatedAtMS int64) (string, []any)
}

// Builder interface for placeholder management
type Builder interface {
	Arg(v any) string
	Args() []any
	Len() int
}

// CTE represents a Common Table Expression
type CTE struct {
	Name string
	SQL  string
}
