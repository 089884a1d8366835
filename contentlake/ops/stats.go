package ops

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/contentlake/contentlake/contentlake/storage"
)

// TypeCount is the number of documents sharing a _type.
type TypeCount struct {
	Type  string
	Count int64
}

// StatsResult summarizes the stored documents.
type StatsResult struct {
	Total        int64
	Types        []TypeCount // ordered by type
	FirstCreated int64       // unix ms, zero when empty
	LastUpdated  int64       // unix ms, zero when empty
}

// Stats counts documents per _type and reports the timestamp range.
func Stats(ctx context.Context, q Querier, sqlt storage.SQL) (*StatsResult, error) {
	rows, err := q.QueryContext(ctx, sqlt.CountByType)
	if err != nil {
		return nil, fmt.Errorf("query type counts: %w", err)
	}
	defer rows.Close()

	result := &StatsResult{}
	for rows.Next() {
		var tc TypeCount
		if err := rows.Scan(&tc.Type, &tc.Count); err != nil {
			return nil, fmt.Errorf("scan type count: %w", err)
		}
		result.Total += tc.Count
		result.Types = append(result.Types, tc)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate type counts: %w", err)
	}

	var first, last sql.NullInt64
	if err := q.QueryRowContext(ctx, sqlt.TimeRange).Scan(&first, &last); err != nil {
		return nil, fmt.Errorf("query time range: %w", err)
	}
	result.FirstCreated = first.Int64
	result.LastUpdated = last.Int64
	return result, nil
}
