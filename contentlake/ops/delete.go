package ops

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/contentlake/contentlake/contentlake/storage"
)

// DeleteByID deletes a document, returns true if it existed
func DeleteByID(ctx context.Context, q Querier, sqlt storage.SQL, id string) (bool, error) {
	res, err := q.ExecContext(ctx, sqlt.DeleteDocument, id)
	if err != nil {
		return false, fmt.Errorf("delete document: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("rows affected: %w", err)
	}
	return n > 0, nil
}

// DeleteIDs deletes all ids in one transaction and returns how many
// existed.
func DeleteIDs(ctx context.Context, db *sql.DB, sqlt storage.SQL, ids []string) (int, error) {
	if len(ids) == 0 {
		return 0, nil
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	count := 0
	for _, id := range ids {
		deleted, err := DeleteByID(ctx, tx, sqlt, id)
		if err != nil {
			return 0, fmt.Errorf("delete %s: %w", id, err)
		}
		if deleted {
			count++
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit: %w", err)
	}
	return count, nil
}
