package ops

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestExecutePutModes(t *testing.T) {
	ctx := context.Background()
	e := newTestEngine(t)
	sqlt := e.Adapter.SQL()
	t0 := time.UnixMilli(1700000000000)

	res, err := ExecutePut(ctx, e.DB, sqlt, map[string]any{"_id": "a", "_type": "post", "title": "one"}, PutOptions{Mode: PutCreate}, t0)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if !res.Created || res.Rev == "" {
		t.Fatalf("unexpected result %+v", res)
	}

	_, err = ExecutePut(ctx, e.DB, sqlt, map[string]any{"_id": "a", "_type": "post"}, PutOptions{Mode: PutCreate}, t0)
	if !errors.Is(err, ErrConflict) {
		t.Fatalf("expected conflict, got %v", err)
	}

	skipped, err := ExecutePut(ctx, e.DB, sqlt, map[string]any{"_id": "a", "_type": "post"}, PutOptions{Mode: PutCreateIfNotExists}, t0)
	if err != nil || !skipped.Skipped || skipped.Rev != res.Rev {
		t.Fatalf("expected skip with rev %s, got %+v, %v", res.Rev, skipped, err)
	}

	_, err = ExecutePut(ctx, e.DB, sqlt, map[string]any{"_id": "missing", "_type": "post"}, PutOptions{Mode: PutReplace}, t0)
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
	if _, ok, _ := GetDocument(ctx, e.DB, sqlt, "missing"); ok {
		t.Fatalf("replace of a missing id must not write")
	}

	_, err = ExecutePut(ctx, e.DB, sqlt, map[string]any{"_id": "a", "_type": "post"}, PutOptions{IfRevision: "stale"}, t0)
	if !errors.Is(err, ErrRevisionMismatch) {
		t.Fatalf("expected revision mismatch, got %v", err)
	}

	t1 := t0.Add(time.Minute)
	replaced, err := ExecutePut(ctx, e.DB, sqlt, map[string]any{"_id": "a", "_type": "article", "title": "two"}, PutOptions{Mode: PutReplace, IfRevision: res.Rev}, t1)
	if err != nil {
		t.Fatalf("replace: %v", err)
	}
	if replaced.Created || replaced.Rev == res.Rev {
		t.Fatalf("unexpected replace result %+v", replaced)
	}

	got, ok, err := GetDocument(ctx, e.DB, sqlt, "a")
	if err != nil || !ok {
		t.Fatalf("GetDocument: %v, found=%v", err, ok)
	}
	if got.CreatedAtMS != t0.UnixMilli() || got.UpdatedAtMS != t1.UnixMilli() {
		t.Errorf("timestamps: created=%d updated=%d", got.CreatedAtMS, got.UpdatedAtMS)
	}
	if got.Doc["title"] != "two" || got.Doc["_type"] != "article" || got.Doc["_rev"] != replaced.Rev {
		t.Errorf("unexpected document %v", got.Doc)
	}
	if got.Doc["_createdAt"] == got.Doc["_updatedAt"] {
		t.Errorf("expected _createdAt to be kept across revisions")
	}
}

func TestRevisionRequiredForMissingDocument(t *testing.T) {
	e := newTestEngine(t)
	_, err := ExecutePut(context.Background(), e.DB, e.Adapter.SQL(), map[string]any{"_id": "x", "_type": "post"}, PutOptions{IfRevision: "r"}, time.Now())
	if !errors.Is(err, ErrRevisionMismatch) {
		t.Fatalf("expected revision mismatch, got %v", err)
	}
}

func TestDeleteIDs(t *testing.T) {
	ctx := context.Background()
	e := newTestEngine(t)
	putDocs(t, e,
		map[string]any{"_id": "a", "_type": "post"},
		map[string]any{"_id": "b", "_type": "post"},
	)

	n, err := DeleteIDs(ctx, e.DB, e.Adapter.SQL(), []string{"a", "b", "missing"})
	if err != nil {
		t.Fatalf("DeleteIDs: %v", err)
	}
	if n != 2 {
		t.Errorf("expected 2 deletions, got %d", n)
	}
	if _, ok, _ := GetDocument(ctx, e.DB, e.Adapter.SQL(), "a"); ok {
		t.Errorf("expected a to be gone")
	}

	deleted, err := DeleteByID(ctx, e.DB, e.Adapter.SQL(), "a")
	if err != nil || deleted {
		t.Errorf("second delete: got (%v, %v), want (false, nil)", deleted, err)
	}
}
