package planner

import (
	"strings"

	"github.com/contentlake/contentlake/contentlake/groq"
)

// fieldPath flattens an Ident or DotAccess chain rooted at an Ident.
func fieldPath(expr groq.Expr) ([]string, bool) {
	switch e := expr.(type) {
	case groq.Ident:
		if strings.HasPrefix(e.Name, "$") {
			return nil, false
		}
		return []string{e.Name}, true
	case groq.DotAccess:
		base, ok := fieldPath(e.Base)
		if !ok {
			return nil, false
		}
		return append(base, e.Field), true
	}
	return nil, false
}

func joinPath(path []string) string {
	return strings.Join(path, ".")
}

func joinComma(parts []string) string {
	return strings.Join(parts, ", ")
}
