package planner

import (
	"fmt"
	"strconv"

	"github.com/contentlake/contentlake/contentlake/document"
	"github.com/contentlake/contentlake/contentlake/groq"
	"github.com/contentlake/contentlake/contentlake/storage"
)

// Dialect renders JSON attribute access for a backend.
type Dialect interface {
	JSONText(b storage.Builder, path []string) string
}

// CompileOutput is the result of compiling a filter. ResultCTE is empty
// when nothing could be pushed down and every document is a candidate.
//
// The prefilter only ever widens: every document matching the filter is
// selected by it, so callers must still evaluate the filter on each row.
type CompileOutput struct {
	CTEs         []storage.CTE
	ResultCTE    string
	ExplainSteps []string
}

// HasPrefilter reports whether any part of the filter was compiled.
func (o *CompileOutput) HasPrefilter() bool { return o.ResultCTE != "" }

// Compiler compiles filter expressions to CTEs
type Compiler struct {
	dialect      Dialect
	builder      storage.Builder
	params       map[string]any
	ctes         []storage.CTE
	explainSteps []string
	cteCounter   int
}

// Compile compiles the pushdown-safe parts of expr into CTEs selecting
// candidate document ids.
func Compile(dialect Dialect, builder storage.Builder, expr groq.Expr, params map[string]any) *CompileOutput {
	c := &Compiler{
		dialect: dialect,
		builder: builder,
		params:  params,
	}

	resultCTE, ok := c.compileExpr(expr)
	if !ok {
		resultCTE = ""
		c.explainSteps = append(c.explainSteps, "SCAN all documents")
	}

	return &CompileOutput{
		CTEs:         c.ctes,
		ResultCTE:    resultCTE,
		ExplainSteps: c.explainSteps,
	}
}

func (c *Compiler) nextCTEName() string {
	name := "cte_" + strconv.Itoa(c.cteCounter)
	c.cteCounter++
	return name
}

func (c *Compiler) compileExpr(expr groq.Expr) (string, bool) {
	switch e := expr.(type) {
	case groq.Pipeline:
		var names []string
		for _, stage := range e.Stages {
			switch s := stage.(type) {
			case groq.Everything:
			case groq.Filter:
				if name, ok := c.compileExpr(s.Predicate); ok {
					names = append(names, name)
				}
			default:
				return "", false
			}
		}
		if len(names) == 0 {
			return "", false
		}
		result := names[0]
		for _, name := range names[1:] {
			result = c.intersect(result, name)
		}
		return result, true

	case groq.Filter:
		return c.compileExpr(e.Predicate)

	case groq.And:
		leftName, leftOK := c.compileExpr(e.Left)
		rightName, rightOK := c.compileExpr(e.Right)
		switch {
		case leftOK && rightOK:
			return c.intersect(leftName, rightName), true
		case leftOK:
			c.explainSteps = append(c.explainSteps, fmt.Sprintf("KEEP %s (right side rechecked)", leftName))
			return leftName, true
		case rightOK:
			c.explainSteps = append(c.explainSteps, fmt.Sprintf("KEEP %s (left side rechecked)", rightName))
			return rightName, true
		}
		return "", false

	case groq.Or:
		leftName, leftOK := c.compileExpr(e.Left)
		if !leftOK {
			return "", false
		}
		rightName, rightOK := c.compileExpr(e.Right)
		if !rightOK {
			return "", false
		}
		resultName := c.nextCTEName()
		sql := fmt.Sprintf("SELECT id FROM %s UNION SELECT id FROM %s", leftName, rightName)
		c.ctes = append(c.ctes, storage.CTE{Name: resultName, SQL: sql})
		c.explainSteps = append(c.explainSteps, fmt.Sprintf("UNION %s OR %s", leftName, rightName))
		return resultName, true

	case groq.Eq:
		return c.compileEq(e)

	default:
		return "", false
	}
}

func (c *Compiler) intersect(leftName, rightName string) string {
	resultName := c.nextCTEName()
	sql := fmt.Sprintf("SELECT id FROM %s INTERSECT SELECT id FROM %s", leftName, rightName)
	c.ctes = append(c.ctes, storage.CTE{Name: resultName, SQL: sql})
	c.explainSteps = append(c.explainSteps, fmt.Sprintf("INTERSECT %s AND %s", leftName, rightName))
	return resultName
}

// compileEq handles `path == "string"` and `path == $param` with a string
// binding, in either operand order.
func (c *Compiler) compileEq(e groq.Eq) (string, bool) {
	path, ok := fieldPath(e.Left)
	value, vok := c.stringValue(e.Right)
	if !ok || !vok {
		path, ok = fieldPath(e.Right)
		value, vok = c.stringValue(e.Left)
		if !ok || !vok {
			return "", false
		}
	}

	var column string
	switch {
	case len(path) == 1 && path[0] == document.FieldID:
		column = "id"
	case len(path) == 1 && path[0] == document.FieldType:
		column = "doc_type"
	default:
		column = c.dialect.JSONText(c.builder, path)
	}

	resultName := c.nextCTEName()
	ph := c.builder.Arg(value)
	sql := fmt.Sprintf("SELECT id FROM documents WHERE %s = %s", column, ph)
	c.ctes = append(c.ctes, storage.CTE{Name: resultName, SQL: sql})
	c.explainSteps = append(c.explainSteps, fmt.Sprintf("EQ %s %q", joinPath(path), value))
	return resultName, true
}

func (c *Compiler) stringValue(expr groq.Expr) (string, bool) {
	switch e := expr.(type) {
	case groq.StringLiteral:
		return e.Value, true
	case groq.Param:
		s, ok := c.params[e.Name].(string)
		return s, ok
	}
	return "", false
}
