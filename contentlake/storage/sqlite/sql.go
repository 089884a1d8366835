package sqlite

import "github.com/contentlake/contentlake/contentlake/storage"

type upsertDocument struct{}

func (upsertDocument) Build(id, docType, rev string, dataJSON []byte, createdAtMS, updatedAtMS int64) (string, []any) {
	sql := `INSERT INTO documents(id, doc_type, rev, data_json, created_at, updated_at)
		VALUES(?1, ?2, ?3, ?4, ?5, ?6)
		ON CONFLICT(id) DO UPDATE SET doc_type=excluded.doc_type, rev=excluded.rev, data_json=excluded.data_json, updated_at=excluded.updated_at`
	return sql, []any{id, docType, rev, string(dataJSON), createdAtMS, updatedAtMS}
}

var SQLTemplates = storage.SQL{
	GetMeta:               "SELECT value FROM meta WHERE key = ?1",
	SetMeta:               "INSERT INTO meta(key,value) VALUES(?1,?2) ON CONFLICT(key) DO UPDATE SET value=excluded.value",
	FindDocument:          "SELECT rev, created_at FROM documents WHERE id = ?1",
	GetDocument:           "SELECT data_json, rev, created_at, updated_at FROM documents WHERE id = ?1",
	DeleteDocument:        "DELETE FROM documents WHERE id = ?1",
	CountDocuments:        "SELECT COUNT(*) FROM documents",
	CountByType:           "SELECT doc_type, COUNT(*) FROM documents GROUP BY doc_type ORDER BY doc_type",
	TimeRange:             "SELECT MIN(created_at), MAX(updated_at) FROM documents",
	InsertDocument:        "INSERT INTO documents(id, doc_type, rev, data_json, created_at, updated_at) VALUES(?1, ?2, ?3, ?4, ?5, ?6)",
	UpsertDocument:        upsertDocument{},
	CleanupExpiredCursors: "DELETE FROM cursor_store WHERE expires_at < ?1",
	GetCursor:             "SELECT payload, expires_at FROM cursor_store WHERE handle = ?1",
	PutCursor:             "INSERT INTO cursor_store(handle, payload, created_at, expires_at) VALUES(?1,?2,?3,?4)",
}
