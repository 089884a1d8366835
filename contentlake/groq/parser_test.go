package groq

import (
	"errors"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func mustParse(t *testing.T, input string) Expr {
	t.Helper()
	expr, err := Parse(input)
	if err != nil {
		t.Fatalf("Parse(%q): unexpected error: %v", input, err)
	}
	return expr
}

func TestParseEverything(t *testing.T) {
	expr := mustParse(t, "*")
	if _, ok := expr.(Everything); !ok {
		t.Fatalf("expected Everything, got %T", expr)
	}
}

func TestParseSimpleFilter(t *testing.T) {
	got := mustParse(t, `*[_type == "post"]`)
	want := Pipeline{Stages: []Expr{
		Everything{},
		Filter{Predicate: Eq{Left: Ident{Name: "_type"}, Right: StringLiteral{Value: "post"}}},
	}}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("AST mismatch (-want +got):\n%s", diff)
	}
}

func TestParseExpressions(t *testing.T) {
	tests := []struct {
		input string
		want  Expr
	}{
		{
			// && and || share a tier and recurse to the right.
			"a && b || c",
			And{Left: Ident{Name: "a"}, Right: Or{Left: Ident{Name: "b"}, Right: Ident{Name: "c"}}},
		},
		{
			"a || b && c",
			Or{Left: Ident{Name: "a"}, Right: And{Left: Ident{Name: "b"}, Right: Ident{Name: "c"}}},
		},
		{
			"(a || b) && c",
			And{Left: Or{Left: Ident{Name: "a"}, Right: Ident{Name: "b"}}, Right: Ident{Name: "c"}},
		},
		{
			"slug.current",
			DotAccess{Base: Ident{Name: "slug"}, Field: "current"},
		},
		{
			"a.b.c",
			DotAccess{Base: DotAccess{Base: Ident{Name: "a"}, Field: "b"}, Field: "c"},
		},
		{
			`author->name == "Ada"`,
			Eq{Left: Deref{Base: Ident{Name: "author"}, Field: "name"}, Right: StringLiteral{Value: "Ada"}},
		},
		{
			"count(tags) > 2",
			Gt{Left: FuncCall{Name: "count", Args: []Expr{Ident{Name: "tags"}}}, Right: IntLiteral{Value: 2}},
		},
		{
			"count(*)",
			FuncCall{Name: "count", Args: []Expr{Everything{}}},
		},
		{
			`references(@, "user-1")`,
			FuncCall{Name: "references", Args: []Expr{This{}, StringLiteral{Value: "user-1"}}},
		},
		{
			"now()",
			FuncCall{Name: "now"},
		},
		{
			"$id == _id",
			Eq{Left: Param{Name: "id"}, Right: Ident{Name: "_id"}},
		},
		{
			"!published",
			Not{Inner: Ident{Name: "published"}},
		},
		{
			"!(a == 1)",
			Not{Inner: Eq{Left: Ident{Name: "a"}, Right: IntLiteral{Value: 1}}},
		},
		{
			`_type in ["post", "page"]`,
			In{Left: Ident{Name: "_type"}, Right: ArrayLiteral{Items: []Expr{StringLiteral{Value: "post"}, StringLiteral{Value: "page"}}}},
		},
		{
			"[]",
			ArrayLiteral{},
		},
		{
			"@ != ^",
			Neq{Left: This{}, Right: Parent{}},
		},
		{
			"x <= -3.5",
			Lte{Left: Ident{Name: "x"}, Right: FloatLiteral{Value: -3.5}},
		},
		{
			"x >= 10",
			Gte{Left: Ident{Name: "x"}, Right: IntLiteral{Value: 10}},
		},
		{
			"x < y",
			Lt{Left: Ident{Name: "x"}, Right: Ident{Name: "y"}},
		},
		{
			"deleted == null && draft == false",
			And{
				Left:  Eq{Left: Ident{Name: "deleted"}, Right: NullLiteral{}},
				Right: Eq{Left: Ident{Name: "draft"}, Right: BoolLiteral{Value: false}},
			},
		},
		{
			// Only a bare identifier can be called.
			"a.b(1)",
			DotAccess{Base: Ident{Name: "a"}, Field: "b"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got := mustParse(t, tt.input)
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("AST mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestParseProjection(t *testing.T) {
	got := mustParse(t, `*[_type == "post"]{title, "slug": slug.current, ..., author: author->name,}`)
	want := Pipeline{Stages: []Expr{
		Everything{},
		Filter{Predicate: Eq{Left: Ident{Name: "_type"}, Right: StringLiteral{Value: "post"}}},
		Projection{Fields: []ProjectionField{
			{Name: "title", Expr: Ident{Name: "title"}},
			{Name: "slug", Expr: DotAccess{Base: Ident{Name: "slug"}, Field: "current"}},
			{Name: SpreadField, Expr: Everything{}},
			{Name: "author", Expr: Deref{Base: Ident{Name: "author"}, Field: "name"}},
		}},
	}}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("AST mismatch (-want +got):\n%s", diff)
	}
}

func TestParseOrderStage(t *testing.T) {
	tests := []struct {
		input string
		want  Order
	}{
		{`*[_type == "post"] | order(publishedAt desc)`, Order{By: Ident{Name: "publishedAt"}, Ascending: false}},
		{`*[_type == "post"] | order(title asc)`, Order{By: Ident{Name: "title"}, Ascending: true}},
		{`*[_type == "post"] | order(title)`, Order{By: Ident{Name: "title"}, Ascending: true}},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			pipe, ok := mustParse(t, tt.input).(Pipeline)
			if !ok || len(pipe.Stages) != 3 {
				t.Fatalf("expected 3-stage Pipeline, got %#v", pipe)
			}
			if diff := cmp.Diff(tt.want, pipe.Stages[2]); diff != "" {
				t.Errorf("order stage mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestParseUnknownPipeStageFallsBackToFilter(t *testing.T) {
	pipe, ok := mustParse(t, `*[a == 1] | score == 2`).(Pipeline)
	if !ok {
		t.Fatalf("expected Pipeline")
	}
	want := Eq{Left: Ident{Name: "score"}, Right: IntLiteral{Value: 2}}
	if diff := cmp.Diff(want, pipe.Stages[2]); diff != "" {
		t.Errorf("stage mismatch (-want +got):\n%s", diff)
	}
}

func TestParseUnterminatedString(t *testing.T) {
	_, err := Parse(`"hello`)
	var pe *ParseError
	if !errors.As(err, &pe) {
		t.Fatalf("expected *ParseError, got %v", err)
	}
	if pe.Kind != ParseLex {
		t.Fatalf("expected ParseLex, got %v", pe.Kind)
	}
	want := &LexError{Kind: LexUnterminatedString, Offset: 0}
	if diff := cmp.Diff(want, pe.Lex); diff != "" {
		t.Errorf("lex error mismatch (-want +got):\n%s", diff)
	}

	var le *LexError
	if !errors.As(err, &le) {
		t.Errorf("expected errors.As to reach the *LexError")
	}
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  ParseError
	}{
		{
			"missing bracket at eof",
			"*[a == 1",
			ParseError{Kind: ParseUnexpectedEOF, Offset: 8},
		},
		{
			"missing operand",
			"a ==",
			ParseError{Kind: ParseUnexpectedEOF, Offset: 4},
		},
		{
			"empty input",
			"",
			ParseError{Kind: ParseUnexpectedEOF, Offset: 0},
		},
		{
			"wrong closer",
			"*[a == 1)",
			ParseError{Kind: ParseUnexpectedToken, Found: "RParen", Expected: "RBracket", Offset: 8},
		},
		{
			"operator as operand",
			"a == == b",
			ParseError{Kind: ParseUnexpectedToken, Found: "Eq", Expected: "expression", Offset: 5},
		},
		{
			"trailing comma in array",
			"[1, 2,]",
			ParseError{Kind: ParseUnexpectedToken, Found: "RBracket", Expected: "expression", Offset: 6},
		},
		{
			"string alias without colon",
			`*[a]{"x" y}`,
			ParseError{Kind: ParseUnexpectedToken, Found: "Ident(y)", Expected: "Colon", Offset: 9},
		},
		{
			"lex error",
			"a & b",
			ParseError{Kind: ParseLex, Lex: &LexError{Kind: LexUnexpectedChar, Char: '&', Offset: 2}, Offset: 2},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			expr, err := Parse(tt.input)
			if expr != nil {
				t.Errorf("expected no tree on failure, got %#v", expr)
			}
			var pe *ParseError
			if !errors.As(err, &pe) {
				t.Fatalf("expected *ParseError, got %v", err)
			}
			if diff := cmp.Diff(tt.want, *pe); diff != "" {
				t.Errorf("error mismatch (-want +got):\n%s", diff)
			}
			if ErrorOffset(err) != tt.want.Offset {
				t.Errorf("ErrorOffset = %d, want %d", ErrorOffset(err), tt.want.Offset)
			}
		})
	}
}

func TestParseErrorMessage(t *testing.T) {
	_, err := Parse("*[a == 1)")
	want := "unexpected token: RParen, expected: RBracket (at position 8)"
	if err == nil || err.Error() != want {
		t.Errorf("expected %q, got %v", want, err)
	}
}

func TestParseTrailingInput(t *testing.T) {
	expr := mustParse(t, "a b")
	if diff := cmp.Diff(Expr(Ident{Name: "a"}), expr); diff != "" {
		t.Errorf("AST mismatch (-want +got):\n%s", diff)
	}

	_, err := ParseWithOptions("a b", ParseOptions{RequireEOF: true})
	var pe *ParseError
	if !errors.As(err, &pe) {
		t.Fatalf("expected *ParseError, got %v", err)
	}
	want := ParseError{Kind: ParseUnexpectedToken, Found: "Ident(b)", Expected: "end of input", Offset: 2}
	if diff := cmp.Diff(want, *pe); diff != "" {
		t.Errorf("error mismatch (-want +got):\n%s", diff)
	}
}

func TestParseDepthLimit(t *testing.T) {
	deep := strings.Repeat("(", 5000) + "a" + strings.Repeat(")", 5000)
	_, err := Parse(deep)
	var pe *ParseError
	if !errors.As(err, &pe) || pe.Kind != ParseTooDeep {
		t.Fatalf("expected ParseTooDeep, got %v", err)
	}

	nots := strings.Repeat("!", 5000) + "a"
	_, err = Parse(nots)
	if !errors.As(err, &pe) || pe.Kind != ParseTooDeep {
		t.Fatalf("expected ParseTooDeep for negations, got %v", err)
	}

	shallow := strings.Repeat("(", 50) + "a" + strings.Repeat(")", 50)
	if _, err := Parse(shallow); err != nil {
		t.Fatalf("unexpected error for shallow nesting: %v", err)
	}

	_, err = ParseWithOptions(shallow, ParseOptions{MaxDepth: 10})
	if !errors.As(err, &pe) || pe.Kind != ParseTooDeep {
		t.Fatalf("expected ParseTooDeep with MaxDepth 10, got %v", err)
	}
}

func TestParseDepthCountsLogicalChain(t *testing.T) {
	terms := make([]string, 200)
	for i := range terms {
		terms[i] = "a == 1"
	}
	chain := strings.Join(terms, " && ")

	expr, err := Parse(chain)
	if err != nil {
		t.Fatalf("unexpected error at the default depth: %v", err)
	}
	ok, err := EvalFilter(expr, map[string]any{"a": 1.0}, nil)
	if err != nil || !ok {
		t.Fatalf("EvalFilter = %v, %v", ok, err)
	}

	_, err = ParseWithOptions(chain, ParseOptions{MaxDepth: 100})
	var pe *ParseError
	if !errors.As(err, &pe) || pe.Kind != ParseTooDeep {
		t.Fatalf("expected ParseTooDeep with MaxDepth 100, got %v", err)
	}

	_, err = NewEvaluator(EvalOptions{MaxDepth: 100}).EvalFilter(expr, map[string]any{"a": 1.0}, nil)
	var ee *EvalError
	if !errors.As(err, &ee) || ee.Kind != EvalTooDeep {
		t.Fatalf("expected EvalTooDeep with MaxDepth 100, got %v", err)
	}
}

func TestFormatRoundTrip(t *testing.T) {
	inputs := []string{
		`*`,
		`*[_type == "post" && (published == true || $preview == true)]`,
		`*[_type == "post"]{title, "slug": slug.current, ...}`,
		`*[_type == "post"] | order(publishedAt desc)`,
		`count(tags) > 2`,
		`!(a == 1.0)`,
		`author->name != 'say "hi"'`,
		`x == 'a"b\'c'`,
		`x == "a\"b'c"`,
		`_type in ["a", "b", -3]`,
		`@ == ^ && x == null`,
	}

	for _, input := range inputs {
		t.Run(input, func(t *testing.T) {
			first := mustParse(t, input)
			text := Format(first)
			second, err := Parse(text)
			if err != nil {
				t.Fatalf("reparse of %q failed: %v", text, err)
			}
			if diff := cmp.Diff(first, second); diff != "" {
				t.Errorf("round trip through %q changed the tree (-first +second):\n%s", text, diff)
			}
		})
	}
}

func TestFormat(t *testing.T) {
	got := Format(mustParse(t, `*[_type == "post" && count(tags) > 1]{title}`))
	want := `*[((_type == "post") && (count(tags) > 1))]{"title": title}`
	if got != want {
		t.Errorf("Format = %q, want %q", got, want)
	}

	built := Eq{Left: Ident{Name: "x"}, Right: StringLiteral{Value: `a"b'c`}}
	got = Format(built)
	if want := `(x == "a\"b'c")`; got != want {
		t.Errorf("Format(%#v) = %q, want %q", built, got, want)
	}
	if _, err := Parse(got); err != nil {
		t.Errorf("reparse of %q: %v", got, err)
	}
}

func TestTree(t *testing.T) {
	got := Tree(mustParse(t, `$id == _id`))
	want := map[string]any{
		"type":  "Eq",
		"left":  map[string]any{"type": "Param", "name": "id"},
		"right": map[string]any{"type": "Ident", "name": "_id"},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("tree mismatch (-want +got):\n%s", diff)
	}
}
