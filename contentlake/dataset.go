package contentlake

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"maps"
	"sync"

	"github.com/panjf2000/ants/v2"
	"github.com/xeipuuv/gojsonschema"

	"github.com/contentlake/contentlake/contentlake/document"
	"github.com/contentlake/contentlake/contentlake/grant"
	"github.com/contentlake/contentlake/contentlake/groq"
	"github.com/contentlake/contentlake/contentlake/ops"
	"github.com/contentlake/contentlake/contentlake/storage"
)

// Dataset is an open document store.
type Dataset struct {
	adapter     storage.Adapter
	db          *sql.DB
	name        string
	opts        Options
	logger      *slog.Logger
	pool        *ants.Pool
	engine      *ops.Engine
	cursorStore *ops.DBCursorStore
	grants      *grant.Checker

	mu         sync.RWMutex
	schema     *gojsonschema.Schema
	schemaJSON string
}

// Create creates a new dataset
func Create(ctx context.Context, adapter storage.Adapter, name string, opts Options) (*Dataset, error) {
	if name == "" {
		return nil, New(ErrValidation, "dataset name cannot be empty")
	}
	db, err := adapter.Connect(ctx)
	if err != nil {
		return nil, Wrap(ErrIO, "connect to database", err)
	}
	if err := adapter.CreateDataset(ctx, db, name); err != nil {
		db.Close()
		return nil, Wrap(ErrSQL, "create dataset", err)
	}

	d, err := newDataset(adapter, db, name, opts)
	if err != nil {
		db.Close()
		return nil, err
	}
	d.logger.Info("dataset created", "backend", adapter.Backend(), "id", adapter.DatasetID())
	return d, nil
}

// Open opens an existing dataset
func Open(ctx context.Context, adapter storage.Adapter, opts Options) (*Dataset, error) {
	db, err := adapter.Connect(ctx)
	if err != nil {
		return nil, Wrap(ErrIO, "connect to database", err)
	}
	name, err := adapter.OpenDataset(ctx, db)
	if err != nil {
		db.Close()
		return nil, Wrap(ErrSQL, "open dataset", err)
	}

	d, err := newDataset(adapter, db, name, opts)
	if err != nil {
		db.Close()
		return nil, err
	}

	schemaJSON, err := loadSchema(ctx, db, adapter.SQL())
	if err != nil {
		d.Close()
		return nil, Wrap(ErrSQL, "load json schema", err)
	}
	if d.schema, err = compileSchema(schemaJSON); err != nil {
		d.Close()
		return nil, err
	}
	d.schemaJSON = schemaJSON

	d.logger.Debug("dataset opened", "dataset", name, "backend", adapter.Backend(), "id", adapter.DatasetID())
	return d, nil
}

func newDataset(adapter storage.Adapter, db *sql.DB, name string, opts Options) (*Dataset, error) {
	if opts.Now == nil {
		opts.Now = DefaultOptions().Now
	}
	if opts.CursorTTL <= 0 {
		opts.CursorTTL = DefaultCursorTTL
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With("dataset", name)

	d := &Dataset{
		adapter: adapter,
		db:      db,
		name:    name,
		opts:    opts,
		logger:  logger,
	}

	if opts.Workers > 0 {
		pool, err := ants.NewPool(opts.Workers, ants.WithPanicHandler(func(v any) {
			logger.Error("filter evaluation panic", "panic", v)
		}))
		if err != nil {
			return nil, Wrap(ErrIO, "create worker pool", err)
		}
		d.pool = pool
	}

	ev := groq.NewEvaluator(groq.EvalOptions{MaxDepth: opts.MaxDepth, Builtins: opts.Builtins})
	cache, err := grant.NewCache(opts.GrantCacheSize, d.parseOptions())
	if err != nil {
		d.releasePool()
		return nil, Wrap(ErrIO, "create grant cache", err)
	}
	d.grants = grant.NewChecker(cache, ev, logger)
	d.cursorStore = ops.NewDBCursorStore(db, adapter.SQL(), opts.CursorTTL, opts.Now)
	d.engine = &ops.Engine{
		DB:          db,
		Adapter:     adapter,
		Evaluator:   ev,
		Pool:        d.pool,
		CursorStore: d.cursorStore,
	}
	return d, nil
}

// Close closes the dataset
func (d *Dataset) Close() error {
	d.releasePool()
	if d.db != nil {
		if err := d.db.Close(); err != nil {
			return Wrap(ErrIO, "close database", err)
		}
	}
	return d.adapter.Close()
}

func (d *Dataset) releasePool() {
	if d.pool != nil {
		d.pool.Release()
		d.pool = nil
	}
}

// Name returns the dataset name recorded at creation.
func (d *Dataset) Name() string { return d.name }

// Grants returns the checker used for grant-restricted queries.
func (d *Dataset) Grants() *grant.Checker { return d.grants }

func (d *Dataset) parseOptions() groq.ParseOptions {
	return groq.ParseOptions{MaxDepth: d.opts.MaxDepth}
}

// Parse parses a filter with the dataset's nesting limit.
func (d *Dataset) Parse(filter string) (groq.Expr, error) {
	expr, err := groq.ParseWithOptions(filter, d.parseOptions())
	if err != nil {
		msg := "parse filter"
		if off := groq.ErrorOffset(err); off >= 0 {
			msg = fmt.Sprintf("parse filter at offset %d", off)
		}
		return nil, Wrap(ErrQueryParse, msg, err)
	}
	return expr, nil
}

// Put writes a document. The caller's map is not modified.
func (d *Dataset) Put(ctx context.Context, doc map[string]any, popts PutOptions) (PutResult, error) {
	tx, err := d.db.BeginTx(ctx, nil)
	if err != nil {
		return PutResult{}, Wrap(ErrSQL, "begin transaction", err)
	}
	defer tx.Rollback()

	res, err := d.put(ctx, tx, doc, popts)
	if err != nil {
		return PutResult{}, err
	}
	if err := tx.Commit(); err != nil {
		return PutResult{}, Wrap(ErrSQL, "commit", err)
	}
	return res, nil
}

// PutJSON writes a document given as a JSON object.
func (d *Dataset) PutJSON(ctx context.Context, docJSON []byte, popts PutOptions) (PutResult, error) {
	doc, err := document.Decode(docJSON)
	if err != nil {
		return PutResult{}, Wrap(ErrValidation, "invalid document JSON", err)
	}
	return d.Put(ctx, doc, popts)
}

func (d *Dataset) put(ctx context.Context, q ops.Querier, doc map[string]any, popts PutOptions) (PutResult, error) {
	mode, err := toOpsPutMode(popts.Mode)
	if err != nil {
		return PutResult{}, err
	}
	doc = maps.Clone(doc)
	if doc == nil {
		return PutResult{}, New(ErrValidation, "document cannot be nil")
	}
	if _, ok := doc[document.FieldID]; !ok && d.opts.AutoID {
		doc[document.FieldID] = document.NewID()
	}
	if err := document.ValidateFields(doc); err != nil {
		return PutResult{}, classify("validate document", err)
	}
	d.mu.RLock()
	schema := d.schema
	d.mu.RUnlock()
	if err := validateAgainst(schema, doc); err != nil {
		return PutResult{}, err
	}

	res, err := ops.ExecutePut(ctx, q, d.adapter.SQL(), doc, ops.PutOptions{
		Mode:       mode,
		IfRevision: popts.IfRevision,
	}, d.opts.Now())
	if err != nil {
		return PutResult{}, classify("put document", err)
	}
	return PutResult{ID: res.ID, Rev: res.Rev, Created: res.Created, Skipped: res.Skipped}, nil
}

// Get retrieves a document by id
func (d *Dataset) Get(ctx context.Context, id string) (Document, error) {
	stored, ok, err := ops.GetDocument(ctx, d.db, d.adapter.SQL(), id)
	if err != nil {
		return Document{}, Wrap(ErrSQL, "get document", err)
	}
	if !ok {
		return Document{}, NotFoundError(id)
	}
	return toDocument(stored), nil
}

// Delete removes a document by id
func (d *Dataset) Delete(ctx context.Context, id string) (bool, error) {
	deleted, err := ops.DeleteByID(ctx, d.db, d.adapter.SQL(), id)
	if err != nil {
		return false, Wrap(ErrSQL, "delete document", err)
	}
	return deleted, nil
}

// Batch executes a batch of operations
func (d *Dataset) Batch(ctx context.Context, b Batch) (int, error) {
	if b.Empty() {
		return 0, nil
	}

	tx, err := d.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, Wrap(ErrSQL, "begin transaction", err)
	}
	defer tx.Rollback()

	sqlt := d.adapter.SQL()
	count := 0
	for _, op := range b.ops {
		switch op.Kind {
		case batchPut:
			if _, err := d.put(ctx, tx, op.Doc, op.Opts); err != nil {
				return count, err
			}
		case batchDelete:
			deleted, err := ops.DeleteByID(ctx, tx, sqlt, op.ID)
			if err != nil {
				return count, Wrap(ErrSQL, "delete document", err)
			}
			if !deleted {
				continue
			}
		}
		count++
	}

	if err := tx.Commit(); err != nil {
		return count, Wrap(ErrSQL, "commit transaction", err)
	}
	return count, nil
}

// Query returns one page of documents matching filter, in _id order.
func (d *Dataset) Query(ctx context.Context, filter string, params map[string]any, qopts QueryOptions) (Page, error) {
	expr, err := d.Parse(filter)
	if err != nil {
		return Page{}, err
	}

	// Clean up expired cursors (best effort)
	_ = d.cursorStore.CleanupExpired(ctx)

	opsOpts := ops.QueryOptions{
		Limit:      qopts.Limit,
		After:      qopts.After,
		CursorMode: ops.CursorMode(qopts.CursorMode),
		Explain:    qopts.Explain,
	}
	if opsOpts.Limit <= 0 {
		opsOpts.Limit = DefaultQueryLimit
	}
	if qopts.Grants != nil {
		if err := d.grants.Validate(qopts.Grants); err != nil {
			return Page{}, Wrap(ErrQueryParse, "compile grants", err)
		}
		opsOpts.Visible = func(doc map[string]any) bool {
			ok, _ := d.grants.Allowed(qopts.Grants, grant.Read, doc, qopts.GrantParams)
			return ok
		}
	}

	result, err := d.engine.Query(ctx, expr, params, opsOpts)
	if err != nil {
		return Page{}, classify("query", err)
	}
	d.logger.Debug("query executed",
		"filter", groq.Format(expr),
		"scanned", result.Scanned,
		"returned", len(result.Documents),
		"has_more", result.HasMore,
	)

	page := Page{
		NextCursor:   result.NextCursor,
		HasMore:      result.HasMore,
		Scanned:      result.Scanned,
		ExplainSQL:   result.ExplainSQL,
		ExplainSteps: result.ExplainSteps,
	}
	for _, stored := range result.Documents {
		page.Documents = append(page.Documents, toDocument(stored))
	}
	return page, nil
}

// DeleteWhere deletes every document matching filter and returns how many
// were removed.
func (d *Dataset) DeleteWhere(ctx context.Context, filter string, params map[string]any) (int, error) {
	expr, err := d.Parse(filter)
	if err != nil {
		return 0, err
	}
	ids, err := d.engine.MatchingIDs(ctx, expr, params)
	if err != nil {
		return 0, classify("select documents", err)
	}
	n, err := ops.DeleteIDs(ctx, d.db, d.adapter.SQL(), ids)
	if err != nil {
		return 0, Wrap(ErrSQL, "delete documents", err)
	}
	d.logger.Debug("delete where", "filter", groq.Format(expr), "deleted", n)
	return n, nil
}

// Count returns the number of stored documents.
func (d *Dataset) Count(ctx context.Context) (int64, error) {
	var n int64
	if err := d.db.QueryRowContext(ctx, d.adapter.SQL().CountDocuments).Scan(&n); err != nil {
		return 0, Wrap(ErrSQL, "count documents", err)
	}
	return n, nil
}

// Stats counts documents per _type.
func (d *Dataset) Stats(ctx context.Context) (Stats, error) {
	res, err := ops.Stats(ctx, d.db, d.adapter.SQL())
	if err != nil {
		return Stats{}, Wrap(ErrSQL, "stats", err)
	}
	st := Stats{
		Total:          res.Total,
		Types:          make(map[string]int64, len(res.Types)),
		FirstCreatedMS: res.FirstCreated,
		LastUpdatedMS:  res.LastUpdated,
	}
	for _, tc := range res.Types {
		st.Types[tc.Type] = tc.Count
	}
	return st, nil
}

// Optimize runs backend maintenance (vacuum, analyze).
func (d *Dataset) Optimize(ctx context.Context) error {
	if err := d.adapter.Optimize(ctx, d.db); err != nil {
		return Wrap(ErrSQL, "optimize", err)
	}
	return nil
}

// Adapter returns the underlying storage adapter
func (d *Dataset) Adapter() storage.Adapter {
	return d.adapter
}

func toDocument(s *ops.StoredDocument) Document {
	doc := Document{
		ID:          s.ID,
		Rev:         s.Rev,
		Body:        s.Doc,
		JSON:        s.DataJSON,
		CreatedAtMS: s.CreatedAtMS,
		UpdatedAtMS: s.UpdatedAtMS,
	}
	if doc.Rev == "" {
		doc.Rev, _ = s.Doc[document.FieldRev].(string)
	}
	return doc
}

func toOpsPutMode(m PutMode) (ops.PutMode, error) {
	switch m {
	case "", PutUpsert:
		return ops.PutUpsert, nil
	case PutCreate:
		return ops.PutCreate, nil
	case PutReplace:
		return ops.PutReplace, nil
	case PutCreateIfNotExists:
		return ops.PutCreateIfNotExists, nil
	}
	return 0, ValidationError("", fmt.Sprintf("unknown put mode %q", m), nil)
}
