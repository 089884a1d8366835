package planner

import (
	"fmt"

	"github.com/contentlake/contentlake/contentlake/storage"
)

// WithClause renders the compiled CTEs, or "" when there are none.
func WithClause(compiled *CompileOutput) string {
	if len(compiled.CTEs) == 0 {
		return ""
	}
	parts := make([]string, 0, len(compiled.CTEs))
	for _, cte := range compiled.CTEs {
		parts = append(parts, fmt.Sprintf("%s AS (%s)", cte.Name, cte.SQL))
	}
	return "WITH " + joinComma(parts) + " "
}

// BuildScanSQL selects one page of candidate rows in id order, starting
// after afterID (exclusive) when it is non-empty. Arguments are appended
// to builder after the ones Compile allocated.
func BuildScanSQL(compiled *CompileOutput, afterID string, limit int, builder storage.Builder) string {
	sql := WithClause(compiled) + "SELECT id, data_json FROM documents WHERE 1=1"
	if compiled.HasPrefilter() {
		sql += fmt.Sprintf(" AND id IN (SELECT id FROM %s)", compiled.ResultCTE)
	}
	if afterID != "" {
		sql += fmt.Sprintf(" AND id > %s", builder.Arg(afterID))
	}
	sql += fmt.Sprintf(" ORDER BY id LIMIT %s", builder.Arg(limit))
	return sql
}
