package ops

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/panjf2000/ants/v2"

	"github.com/contentlake/contentlake/contentlake/document"
	"github.com/contentlake/contentlake/contentlake/groq"
	"github.com/contentlake/contentlake/contentlake/planner"
	"github.com/contentlake/contentlake/contentlake/storage"
	"github.com/contentlake/contentlake/contentlake/storage/sqlbuilder"
)

const (
	DefaultLimit     = 20
	DefaultScanBatch = 256
)

var (
	// ErrInvalidCursor wraps failures to decode or look up a cursor token.
	ErrInvalidCursor = errors.New("invalid cursor")
	// ErrCursorMismatch is returned when a cursor was issued for a different
	// filter or parameter table.
	ErrCursorMismatch = errors.New("cursor does not belong to this query")
)

// QueryOptions configures a query operation
type QueryOptions struct {
	Limit      int
	After      string // cursor token
	CursorMode CursorMode
	ScanBatch  int
	Explain    bool

	// Visible, when set, hides matching documents it rejects. Hidden
	// documents do not count towards Limit.
	Visible func(doc map[string]any) bool
}

// QueryResult is the result of a query operation
type QueryResult struct {
	Documents    []*StoredDocument
	NextCursor   string
	HasMore      bool
	Scanned      int
	ExplainSQL   string
	ExplainSteps []string
}

// Engine bundles what a query needs besides its inputs.
type Engine struct {
	DB          *sql.DB
	Adapter     storage.Adapter
	Evaluator   *groq.Evaluator
	Pool        *ants.Pool
	CursorStore CursorStore
}

// Query pages through documents matching expr in id order. Candidates
// come from the planner's prefilter and are rechecked with the evaluator.
func (e *Engine) Query(ctx context.Context, expr groq.Expr, params map[string]any, opts QueryOptions) (*QueryResult, error) {
	if err := CheckShape(expr); err != nil {
		return nil, err
	}
	hash, err := HashQuery(expr, params)
	if err != nil {
		return nil, err
	}

	after := ""
	if opts.After != "" {
		cursor, err := e.CursorStore.Resolve(ctx, opts.After)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrInvalidCursor, err)
		}
		if cursor.Hash != hash {
			return nil, ErrCursorMismatch
		}
		after = cursor.After
	}

	limit := opts.Limit
	if limit <= 0 {
		limit = DefaultLimit
	}

	result := &QueryResult{}
	err = e.scan(ctx, expr, params, after, opts.ScanBatch, func(batch []*StoredDocument, explainSQL string, steps []string) bool {
		if result.ExplainSQL == "" && opts.Explain {
			result.ExplainSQL = explainSQL
			result.ExplainSteps = steps
		}
		result.Scanned += len(batch)
		for _, d := range batch {
			if opts.Visible != nil && !opts.Visible(d.Doc) {
				continue
			}
			if len(result.Documents) == limit {
				result.HasMore = true
				return false
			}
			result.Documents = append(result.Documents, d)
		}
		return true
	})
	if err != nil {
		return nil, err
	}

	if result.HasMore {
		last := result.Documents[len(result.Documents)-1]
		token, err := e.CursorStore.Store(ctx, CursorPayload{After: last.ID, Hash: hash}, opts.CursorMode)
		if err != nil {
			return nil, fmt.Errorf("store cursor: %w", err)
		}
		result.NextCursor = token
	}
	return result, nil
}

// MatchingIDs returns the ids of every document matching expr.
func (e *Engine) MatchingIDs(ctx context.Context, expr groq.Expr, params map[string]any) ([]string, error) {
	if err := CheckShape(expr); err != nil {
		return nil, err
	}
	var ids []string
	err := e.scan(ctx, expr, params, "", 0, func(batch []*StoredDocument, _ string, _ []string) bool {
		for _, d := range batch {
			ids = append(ids, d.ID)
		}
		return true
	})
	return ids, err
}

// scan feeds matching documents to yield one batch at a time until yield
// returns false or the candidates are exhausted.
func (e *Engine) scan(ctx context.Context, expr groq.Expr, params map[string]any, after string, batchSize int, yield func([]*StoredDocument, string, []string) bool) error {
	if batchSize <= 0 {
		batchSize = DefaultScanBatch
	}

	for {
		builder := sqlbuilder.New(e.Adapter.PlaceholderStyle())
		compiled := planner.Compile(e.Adapter, builder, expr, params)
		scanSQL := planner.BuildScanSQL(compiled, after, batchSize, builder)

		rows, err := e.scanRows(ctx, scanSQL, builder.Args())
		if err != nil {
			return err
		}
		if len(rows) == 0 {
			return nil
		}

		docs := make([]map[string]any, len(rows))
		for i, r := range rows {
			docs[i] = r.Doc
		}
		matches, err := FilterDocuments(ctx, e.Pool, e.Evaluator, expr, docs, params)
		if err != nil {
			return err
		}

		var matched []*StoredDocument
		for i, r := range rows {
			if matches[i] {
				matched = append(matched, r)
			}
		}
		if !yield(matched, scanSQL, compiled.ExplainSteps) {
			return nil
		}
		if len(rows) < batchSize {
			return nil
		}
		after = rows[len(rows)-1].ID
	}
}

func (e *Engine) scanRows(ctx context.Context, query string, args []any) ([]*StoredDocument, error) {
	rows, err := e.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("execute scan: %w", err)
	}
	defer rows.Close()

	var out []*StoredDocument
	for rows.Next() {
		var id, dataJSON string
		if err := rows.Scan(&id, &dataJSON); err != nil {
			return nil, fmt.Errorf("scan row: %w", err)
		}
		doc, err := document.Decode([]byte(dataJSON))
		if err != nil {
			return nil, fmt.Errorf("document %s: %w", id, err)
		}
		out = append(out, &StoredDocument{ID: id, Doc: doc, DataJSON: []byte(dataJSON)})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate rows: %w", err)
	}
	return out, nil
}

// CheckShape rejects pipeline stages that reshape or reorder a result set,
// which have no per-document meaning.
func CheckShape(expr groq.Expr) error {
	p, ok := expr.(groq.Pipeline)
	if !ok {
		return nil
	}
	for _, stage := range p.Stages {
		switch stage.(type) {
		case groq.Everything, groq.Filter:
		default:
			return &groq.EvalError{Kind: groq.EvalUnsupported, Node: groq.NodeName(stage)}
		}
	}
	return nil
}
