package ops

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/contentlake/contentlake/contentlake/document"
	"github.com/contentlake/contentlake/contentlake/storage"
)

// StoredDocument is a document row with its decoded body.
type StoredDocument struct {
	ID          string
	Rev         string
	Doc         map[string]any
	DataJSON    []byte
	CreatedAtMS int64
	UpdatedAtMS int64
}

// GetDocument loads id. The boolean is false when no such document exists.
func GetDocument(ctx context.Context, q Querier, sqlt storage.SQL, id string) (*StoredDocument, bool, error) {
	var dataJSON string
	out := &StoredDocument{ID: id}
	err := q.QueryRowContext(ctx, sqlt.GetDocument, id).Scan(&dataJSON, &out.Rev, &out.CreatedAtMS, &out.UpdatedAtMS)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("get document: %w", err)
	}
	out.DataJSON = []byte(dataJSON)
	out.Doc, err = document.Decode(out.DataJSON)
	if err != nil {
		return nil, false, err
	}
	return out, true, nil
}
