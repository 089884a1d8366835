package groq

import (
	"fmt"
	"strconv"
	"strings"
)

// NodeName returns the variant name of an expression node.
func NodeName(expr Expr) string {
	switch expr.(type) {
	case Everything:
		return "Everything"
	case Pipeline:
		return "Pipeline"
	case Filter:
		return "Filter"
	case Projection:
		return "Projection"
	case Order:
		return "Order"
	case Slice:
		return "Slice"
	case StringLiteral:
		return "StringLiteral"
	case IntLiteral:
		return "IntLiteral"
	case FloatLiteral:
		return "FloatLiteral"
	case BoolLiteral:
		return "BoolLiteral"
	case NullLiteral:
		return "Null"
	case ArrayLiteral:
		return "Array"
	case Ident:
		return "Ident"
	case DotAccess:
		return "DotAccess"
	case Deref:
		return "Deref"
	case This:
		return "This"
	case Parent:
		return "Parent"
	case Eq:
		return "Eq"
	case Neq:
		return "Neq"
	case Lt:
		return "Lt"
	case Gt:
		return "Gt"
	case Lte:
		return "Lte"
	case Gte:
		return "Gte"
	case In:
		return "In"
	case And:
		return "And"
	case Or:
		return "Or"
	case Not:
		return "Not"
	case FuncCall:
		return "FuncCall"
	case Param:
		return "Param"
	case nil:
		return "<nil>"
	default:
		return fmt.Sprintf("%T", expr)
	}
}

// Format renders an expression back to GROQ-like source text. Binary
// operators are always parenthesized so the grouping is unambiguous.
func Format(expr Expr) string {
	var sb strings.Builder
	writeExpr(&sb, expr)
	return sb.String()
}

func writeExpr(sb *strings.Builder, expr Expr) {
	switch e := expr.(type) {
	case Everything:
		sb.WriteString("*")
	case Pipeline:
		for i, stage := range e.Stages {
			switch stage.(type) {
			case Filter, Projection:
			default:
				if i > 0 {
					sb.WriteString(" | ")
				}
			}
			writeExpr(sb, stage)
		}
	case Filter:
		sb.WriteString("[")
		writeExpr(sb, e.Predicate)
		sb.WriteString("]")
	case Projection:
		sb.WriteString("{")
		for i, f := range e.Fields {
			if i > 0 {
				sb.WriteString(", ")
			}
			if f.Name == SpreadField {
				sb.WriteString(SpreadField)
				continue
			}
			writeString(sb, f.Name)
			sb.WriteString(": ")
			writeExpr(sb, f.Expr)
		}
		sb.WriteString("}")
	case Order:
		sb.WriteString("order(")
		writeExpr(sb, e.By)
		if e.Ascending {
			sb.WriteString(" asc)")
		} else {
			sb.WriteString(" desc)")
		}
	case Slice:
		fmt.Fprintf(sb, "[%d..%d]", e.Start, e.End)
	case StringLiteral:
		writeString(sb, e.Value)
	case IntLiteral:
		sb.WriteString(strconv.FormatInt(e.Value, 10))
	case FloatLiteral:
		s := strconv.FormatFloat(e.Value, 'f', -1, 64)
		if !strings.ContainsAny(s, ".eE") {
			s += ".0"
		}
		sb.WriteString(s)
	case BoolLiteral:
		sb.WriteString(strconv.FormatBool(e.Value))
	case NullLiteral:
		sb.WriteString("null")
	case ArrayLiteral:
		sb.WriteString("[")
		writeList(sb, e.Items)
		sb.WriteString("]")
	case Ident:
		sb.WriteString(e.Name)
	case DotAccess:
		writeExpr(sb, e.Base)
		sb.WriteString(".")
		sb.WriteString(e.Field)
	case Deref:
		writeExpr(sb, e.Base)
		sb.WriteString("->")
		sb.WriteString(e.Field)
	case This:
		sb.WriteString("@")
	case Parent:
		sb.WriteString("^")
	case Eq:
		writeBinary(sb, e.Left, "==", e.Right)
	case Neq:
		writeBinary(sb, e.Left, "!=", e.Right)
	case Lt:
		writeBinary(sb, e.Left, "<", e.Right)
	case Gt:
		writeBinary(sb, e.Left, ">", e.Right)
	case Lte:
		writeBinary(sb, e.Left, "<=", e.Right)
	case Gte:
		writeBinary(sb, e.Left, ">=", e.Right)
	case In:
		writeBinary(sb, e.Left, "in", e.Right)
	case And:
		writeBinary(sb, e.Left, "&&", e.Right)
	case Or:
		writeBinary(sb, e.Left, "||", e.Right)
	case Not:
		sb.WriteString("!")
		writeExpr(sb, e.Inner)
	case FuncCall:
		sb.WriteString(e.Name)
		sb.WriteString("(")
		writeList(sb, e.Args)
		sb.WriteString(")")
	case Param:
		sb.WriteString("$")
		sb.WriteString(e.Name)
	default:
		sb.WriteString("<" + NodeName(expr) + ">")
	}
}

// writeString quotes raw string text. Lexed text is written back unchanged
// inside a delimiter that never occurs unescaped in it; text with bare
// quotes of both kinds only comes from hand-built trees and gets its double
// quotes escaped.
func writeString(sb *strings.Builder, raw string) {
	quote := byte('"')
	if hasBareQuote(raw, '"') && !hasBareQuote(raw, '\'') {
		quote = '\''
	}
	sb.WriteByte(quote)
	if quote == '"' && hasBareQuote(raw, '"') {
		writeEscaped(sb, raw, '"')
	} else {
		sb.WriteString(raw)
	}
	sb.WriteByte(quote)
}

// hasBareQuote reports whether q occurs in raw outside a backslash escape.
func hasBareQuote(raw string, q byte) bool {
	for i := 0; i < len(raw); i++ {
		switch raw[i] {
		case '\\':
			i++
		case q:
			return true
		}
	}
	return false
}

func writeEscaped(sb *strings.Builder, raw string, q byte) {
	for i := 0; i < len(raw); i++ {
		switch raw[i] {
		case '\\':
			sb.WriteByte(raw[i])
			if i+1 < len(raw) {
				i++
				sb.WriteByte(raw[i])
			}
		case q:
			sb.WriteByte('\\')
			sb.WriteByte(q)
		default:
			sb.WriteByte(raw[i])
		}
	}
}

func writeBinary(sb *strings.Builder, left Expr, op string, right Expr) {
	sb.WriteString("(")
	writeExpr(sb, left)
	sb.WriteString(" ")
	sb.WriteString(op)
	sb.WriteString(" ")
	writeExpr(sb, right)
	sb.WriteString(")")
}

func writeList(sb *strings.Builder, items []Expr) {
	for i, item := range items {
		if i > 0 {
			sb.WriteString(", ")
		}
		writeExpr(sb, item)
	}
}

// Tree converts an expression into nested maps and slices suitable for
// JSON or YAML encoding. Every node map carries a "type" key.
func Tree(expr Expr) map[string]any {
	node := map[string]any{"type": NodeName(expr)}
	switch e := expr.(type) {
	case Pipeline:
		node["stages"] = treeList(e.Stages)
	case Filter:
		node["predicate"] = Tree(e.Predicate)
	case Projection:
		fields := make([]any, 0, len(e.Fields))
		for _, f := range e.Fields {
			fields = append(fields, map[string]any{"name": f.Name, "expr": Tree(f.Expr)})
		}
		node["fields"] = fields
	case Order:
		node["by"] = Tree(e.By)
		node["ascending"] = e.Ascending
	case Slice:
		node["start"] = e.Start
		node["end"] = e.End
	case StringLiteral:
		node["value"] = e.Value
	case IntLiteral:
		node["value"] = e.Value
	case FloatLiteral:
		node["value"] = e.Value
	case BoolLiteral:
		node["value"] = e.Value
	case ArrayLiteral:
		node["items"] = treeList(e.Items)
	case Ident:
		node["name"] = e.Name
	case DotAccess:
		node["base"] = Tree(e.Base)
		node["field"] = e.Field
	case Deref:
		node["base"] = Tree(e.Base)
		node["field"] = e.Field
	case Eq:
		treeBinary(node, e.Left, e.Right)
	case Neq:
		treeBinary(node, e.Left, e.Right)
	case Lt:
		treeBinary(node, e.Left, e.Right)
	case Gt:
		treeBinary(node, e.Left, e.Right)
	case Lte:
		treeBinary(node, e.Left, e.Right)
	case Gte:
		treeBinary(node, e.Left, e.Right)
	case In:
		treeBinary(node, e.Left, e.Right)
	case And:
		treeBinary(node, e.Left, e.Right)
	case Or:
		treeBinary(node, e.Left, e.Right)
	case Not:
		node["inner"] = Tree(e.Inner)
	case FuncCall:
		node["name"] = e.Name
		node["args"] = treeList(e.Args)
	case Param:
		node["name"] = e.Name
	}
	return node
}

func treeBinary(node map[string]any, left, right Expr) {
	node["left"] = Tree(left)
	node["right"] = Tree(right)
}

func treeList(items []Expr) []any {
	out := make([]any, 0, len(items))
	for _, item := range items {
		out = append(out, Tree(item))
	}
	return out
}
