package contentlake

import (
	"log/slog"
	"time"

	"github.com/contentlake/contentlake/contentlake/grant"
	"github.com/contentlake/contentlake/contentlake/groq"
)

// CursorMode specifies how cursors are returned
type CursorMode string

const (
	CursorShort CursorMode = "short" // c:handle stored in DB
	CursorFull  CursorMode = "full"  // self-contained base64url JSON
)

// PutMode selects how an existing document with the same id is treated.
// An empty mode means PutUpsert.
type PutMode string

const (
	PutUpsert            PutMode = "upsert"
	PutCreate            PutMode = "create"  // conflict if the id exists
	PutReplace           PutMode = "replace" // not_found if the id is absent
	PutCreateIfNotExists PutMode = "createIfNotExists"
)

// Options configures dataset behavior
type Options struct {
	CursorTTL time.Duration // default 1h
	Now       func() time.Time
	// Workers bounds concurrent filter evaluation. Zero or less evaluates
	// on the calling goroutine.
	Workers  int
	MaxDepth int // parse and evaluation nesting limit
	Builtins *groq.Registry
	// AutoID assigns a generated _id to documents put without one.
	AutoID         bool
	GrantCacheSize int
	Logger         *slog.Logger
}

// DefaultOptions returns sensible defaults
func DefaultOptions() Options {
	return Options{
		CursorTTL:      DefaultCursorTTL,
		Now:            time.Now,
		Workers:        DefaultWorkers,
		MaxDepth:       groq.DefaultMaxDepth,
		GrantCacheSize: grant.DefaultCacheSize,
	}
}

// PutOptions configures a put operation
type PutOptions struct {
	Mode       PutMode
	IfRevision string
}

// PutResult describes a written document.
type PutResult struct {
	ID      string
	Rev     string
	Created bool
	Skipped bool
}

// QueryOptions configures a query operation
type QueryOptions struct {
	Limit      int
	After      string // cursor token or ""
	CursorMode CursorMode
	Explain    bool

	// Grants, when non-nil, restricts results to documents readable under
	// at least one grant. GrantParams binds the grants' $parameters.
	Grants      []grant.Grant
	GrantParams map[string]any
}

// Document is a stored document with its metadata.
type Document struct {
	ID          string
	Rev         string
	Body        map[string]any
	JSON        []byte
	CreatedAtMS int64
	UpdatedAtMS int64
}

// Page is a page of query results
type Page struct {
	Documents    []Document
	NextCursor   string
	HasMore      bool
	Scanned      int
	ExplainSQL   string
	ExplainSteps []string
}

// Stats summarizes the stored documents.
type Stats struct {
	Total          int64
	Types          map[string]int64
	FirstCreatedMS int64
	LastUpdatedMS  int64
}
