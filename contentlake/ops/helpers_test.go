package ops

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"
	"time"

	_ "modernc.org/sqlite"

	"github.com/contentlake/contentlake/contentlake/groq"
	"github.com/contentlake/contentlake/contentlake/storage/sqlite"
)

func newTestEngine(t *testing.T) *Engine {
	t.Helper()
	ctx := context.Background()
	a := sqlite.New(filepath.Join(t.TempDir(), "ops.db"))
	db, err := a.Connect(ctx)
	if err != nil {
		t.Fatalf("Connect: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	if err := a.CreateDataset(ctx, db, "test"); err != nil {
		t.Fatalf("CreateDataset: %v", err)
	}
	return &Engine{
		DB:          db,
		Adapter:     a,
		Evaluator:   groq.NewEvaluator(groq.EvalOptions{}),
		CursorStore: NewDBCursorStore(db, a.SQL(), time.Hour, nil),
	}
}

func putDocs(t *testing.T, e *Engine, docs ...map[string]any) {
	t.Helper()
	for _, doc := range docs {
		if _, err := ExecutePut(context.Background(), e.DB, e.Adapter.SQL(), doc, PutOptions{}, time.Now()); err != nil {
			t.Fatalf("put %v: %v", doc["_id"], err)
		}
	}
}

func mustParse(t *testing.T, input string) groq.Expr {
	t.Helper()
	expr, err := groq.Parse(input)
	if err != nil {
		t.Fatalf("parse %q: %v", input, err)
	}
	return expr
}

var _ Querier = (*sql.DB)(nil)
var _ Querier = (*sql.Tx)(nil)
