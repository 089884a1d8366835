package ops

import (
	"context"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestStats(t *testing.T) {
	e := newTestEngine(t)
	ctx := context.Background()

	empty, err := Stats(ctx, e.DB, e.Adapter.SQL())
	if err != nil {
		t.Fatalf("Stats: %v", err)
	}
	if empty.Total != 0 || empty.FirstCreated != 0 || empty.LastUpdated != 0 {
		t.Errorf("unexpected stats for empty dataset: %+v", empty)
	}

	putDocs(t, e,
		map[string]any{"_id": "a", "_type": "post"},
		map[string]any{"_id": "b", "_type": "author"},
		map[string]any{"_id": "c", "_type": "post"},
	)

	got, err := Stats(ctx, e.DB, e.Adapter.SQL())
	if err != nil {
		t.Fatalf("Stats: %v", err)
	}
	want := []TypeCount{{Type: "author", Count: 1}, {Type: "post", Count: 2}}
	if diff := cmp.Diff(want, got.Types); diff != "" {
		t.Errorf("type counts mismatch (-want +got):\n%s", diff)
	}
	if got.Total != 3 {
		t.Errorf("total = %d, want 3", got.Total)
	}
	if got.FirstCreated == 0 || got.LastUpdated < got.FirstCreated {
		t.Errorf("unexpected time range: %d..%d", got.FirstCreated, got.LastUpdated)
	}
}
