package ops

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/contentlake/contentlake/contentlake/document"
	"github.com/contentlake/contentlake/contentlake/storage"
)

var (
	// ErrConflict is returned when a create targets an existing id.
	ErrConflict = errors.New("document already exists")
	// ErrRevisionMismatch is returned when IfRevision does not match the
	// stored revision.
	ErrRevisionMismatch = errors.New("revision mismatch")
	// ErrNotFound is returned when a replace targets a missing id.
	ErrNotFound = errors.New("document not found")
)

// Querier is satisfied by *sql.DB and *sql.Tx.
type Querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// PutMode selects how an existing document is treated.
type PutMode int

const (
	PutUpsert PutMode = iota
	PutCreate
	PutReplace
	PutCreateIfNotExists
)

// PutOptions configures a put operation
type PutOptions struct {
	Mode       PutMode
	IfRevision string // when set, the stored revision must match
}

// PutResult describes a written document.
type PutResult struct {
	ID      string
	Rev     string
	Created bool
	Skipped bool // PutCreateIfNotExists found an existing document
}

// ExistingDocument is the stored state looked up before a write.
type ExistingDocument struct {
	Rev         string
	CreatedAtMS int64
}

// FindDocument returns the stored revision of id, or nil if absent.
func FindDocument(ctx context.Context, q Querier, sqlt storage.SQL, id string) (*ExistingDocument, error) {
	var ex ExistingDocument
	err := q.QueryRowContext(ctx, sqlt.FindDocument, id).Scan(&ex.Rev, &ex.CreatedAtMS)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find document: %w", err)
	}
	return &ex, nil
}

// ExecutePut writes doc, which must already carry valid _id and _type.
// System attributes (_rev, _createdAt, _updatedAt) are stamped onto doc.
func ExecutePut(ctx context.Context, q Querier, sqlt storage.SQL, doc map[string]any, opts PutOptions, now time.Time) (PutResult, error) {
	id := document.IDOf(doc)
	existing, err := FindDocument(ctx, q, sqlt, id)
	if err != nil {
		return PutResult{}, err
	}

	if existing == nil && opts.Mode == PutReplace {
		return PutResult{}, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	if existing != nil {
		switch opts.Mode {
		case PutCreate:
			return PutResult{}, fmt.Errorf("%w: %s", ErrConflict, id)
		case PutCreateIfNotExists:
			return PutResult{ID: id, Rev: existing.Rev, Skipped: true}, nil
		}
	}
	if opts.IfRevision != "" {
		if existing == nil || existing.Rev != opts.IfRevision {
			return PutResult{}, fmt.Errorf("%w: %s", ErrRevisionMismatch, id)
		}
	}

	nowMS := now.UnixMilli()
	createdAtMS := nowMS
	if existing != nil {
		createdAtMS = existing.CreatedAtMS
	}
	rev := document.NewRevision()
	document.Stamp(doc, rev, time.UnixMilli(createdAtMS), now)

	dataJSON, err := document.Encode(doc)
	if err != nil {
		return PutResult{}, err
	}

	if existing == nil {
		_, err = q.ExecContext(ctx, sqlt.InsertDocument, id, document.TypeOf(doc), rev, string(dataJSON), createdAtMS, nowMS)
	} else {
		stmt, args := sqlt.UpsertDocument.Build(id, document.TypeOf(doc), rev, dataJSON, createdAtMS, nowMS)
		_, err = q.ExecContext(ctx, stmt, args...)
	}
	if err != nil {
		return PutResult{}, fmt.Errorf("write document: %w", err)
	}

	return PutResult{ID: id, Rev: rev, Created: existing == nil}, nil
}
