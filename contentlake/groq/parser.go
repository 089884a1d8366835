package groq

import "fmt"

// DefaultMaxDepth bounds parser and evaluator recursion when no explicit
// limit is configured.
const DefaultMaxDepth = 1000

// ParseOptions tunes Parse.
type ParseOptions struct {
	// MaxDepth limits expression nesting. Zero means DefaultMaxDepth.
	MaxDepth int
	// RequireEOF rejects input that continues after a complete expression.
	RequireEOF bool
}

// Parse parses a query string into an expression AST
func Parse(input string) (Expr, error) {
	return ParseWithOptions(input, ParseOptions{})
}

// ParseWithOptions parses a query string with explicit limits.
func ParseWithOptions(input string, opts ParseOptions) (Expr, error) {
	tokens, err := Tokenize(input)
	if err != nil {
		if le, ok := err.(*LexError); ok {
			return nil, &ParseError{Kind: ParseLex, Lex: le, Offset: le.Offset}
		}
		return nil, err
	}

	maxDepth := opts.MaxDepth
	if maxDepth <= 0 {
		maxDepth = DefaultMaxDepth
	}

	p := &parser{tokens: tokens, maxDepth: maxDepth}
	expr, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	if opts.RequireEOF && !p.match(TokEOF) {
		return nil, p.unexpected("end of input")
	}
	return expr, nil
}

type parser struct {
	tokens   []SpannedToken
	pos      int
	depth    int
	maxDepth int
}

// parseExpr handles the top level: `*`, `*[filter]` with an optional
// projection or pipe stage, or a bare filter expression.
func (p *parser) parseExpr() (Expr, error) {
	if !p.match(TokStar) {
		return p.parseFilterExpr()
	}
	p.advance()

	if !p.match(TokLBracket) {
		return Everything{}, nil
	}
	p.advance()

	filter, err := p.parseFilterExpr()
	if err != nil {
		return nil, err
	}
	if err := p.expect(TokRBracket); err != nil {
		return nil, err
	}

	stages := []Expr{Everything{}, Filter{Predicate: filter}}

	switch {
	case p.match(TokLBrace):
		p.advance()
		projection, err := p.parseProjection()
		if err != nil {
			return nil, err
		}
		if err := p.expect(TokRBrace); err != nil {
			return nil, err
		}
		stages = append(stages, projection)
	case p.match(TokPipe):
		p.advance()
		stage, err := p.parsePipeStage()
		if err != nil {
			return nil, err
		}
		stages = append(stages, stage)
	}

	return Pipeline{Stages: stages}, nil
}

// parseFilterExpr is right-recursive: `&&` and `||` share one precedence
// tier, so `a && b || c` is And(a, Or(b, c)). Every link nests one level
// deeper and counts toward MaxDepth, as it does for the evaluator.
func (p *parser) parseFilterExpr() (Expr, error) {
	if err := p.enter(); err != nil {
		return nil, err
	}
	defer p.leave()

	left, err := p.parseComparison()
	if err != nil {
		return nil, err
	}

	switch p.current().Kind {
	case TokAnd:
		p.advance()
		right, err := p.parseFilterExpr()
		if err != nil {
			return nil, err
		}
		return And{Left: left, Right: right}, nil
	case TokOr:
		p.advance()
		right, err := p.parseFilterExpr()
		if err != nil {
			return nil, err
		}
		return Or{Left: left, Right: right}, nil
	}

	return left, nil
}

// parseComparison parses one primary and at most one comparison operator.
func (p *parser) parseComparison() (Expr, error) {
	left, err := p.parsePrimary()
	if err != nil {
		return nil, err
	}

	op := p.current().Kind
	switch op {
	case TokEq, TokNeq, TokLt, TokGt, TokLte, TokGte, TokIn:
	default:
		return left, nil
	}
	p.advance()

	right, err := p.parsePrimary()
	if err != nil {
		return nil, err
	}

	switch op {
	case TokEq:
		return Eq{Left: left, Right: right}, nil
	case TokNeq:
		return Neq{Left: left, Right: right}, nil
	case TokLt:
		return Lt{Left: left, Right: right}, nil
	case TokGt:
		return Gt{Left: left, Right: right}, nil
	case TokLte:
		return Lte{Left: left, Right: right}, nil
	case TokGte:
		return Gte{Left: left, Right: right}, nil
	default:
		return In{Left: left, Right: right}, nil
	}
}

func (p *parser) parsePrimary() (Expr, error) {
	if err := p.enter(); err != nil {
		return nil, err
	}
	defer p.leave()

	tok := p.current()
	switch tok.Kind {
	case TokIdent:
		p.advance()
		return p.parseAccess(tok.Text)
	case TokString:
		p.advance()
		return StringLiteral{Value: tok.Text}, nil
	case TokInteger:
		p.advance()
		return IntLiteral{Value: tok.Int}, nil
	case TokFloat:
		p.advance()
		return FloatLiteral{Value: tok.Float}, nil
	case TokBool:
		p.advance()
		return BoolLiteral{Value: tok.Bool}, nil
	case TokNull:
		p.advance()
		return NullLiteral{}, nil
	case TokAt:
		p.advance()
		return This{}, nil
	case TokCaret:
		p.advance()
		return Parent{}, nil
	case TokStar:
		// Only reachable inside an expression, e.g. count(*).
		p.advance()
		return Everything{}, nil
	case TokNot:
		p.advance()
		inner, err := p.parsePrimary()
		if err != nil {
			return nil, err
		}
		return Not{Inner: inner}, nil
	case TokLParen:
		p.advance()
		expr, err := p.parseFilterExpr()
		if err != nil {
			return nil, err
		}
		if err := p.expect(TokRParen); err != nil {
			return nil, err
		}
		return expr, nil
	case TokLBracket:
		p.advance()
		items, err := p.parseList(TokRBracket)
		if err != nil {
			return nil, err
		}
		return ArrayLiteral{Items: items}, nil
	case TokEOF:
		return nil, p.unexpectedEOF()
	default:
		return nil, p.unexpected("expression")
	}
}

// parseAccess finishes a primary that began with an identifier: a dot
// chain, an optional dereference, then a call if the base was bare.
func (p *parser) parseAccess(name string) (Expr, error) {
	if len(name) > 1 && name[0] == '$' {
		return Param{Name: name[1:]}, nil
	}

	var expr Expr = Ident{Name: name}

	for p.match(TokDot) {
		p.advance()
		if !p.match(TokIdent) {
			break
		}
		expr = DotAccess{Base: expr, Field: p.current().Text}
		p.advance()
	}

	if p.match(TokArrow) {
		p.advance()
		if p.match(TokIdent) {
			expr = Deref{Base: expr, Field: p.current().Text}
			p.advance()
		}
	}

	if p.match(TokLParen) {
		if ident, ok := expr.(Ident); ok {
			p.advance()
			args, err := p.parseList(TokRParen)
			if err != nil {
				return nil, err
			}
			return FuncCall{Name: ident.Name, Args: args}, nil
		}
	}

	return expr, nil
}

// parseList parses comma-separated filter expressions up to and including
// the closing token. A trailing comma is an error.
func (p *parser) parseList(closing TokenKind) ([]Expr, error) {
	var items []Expr
	if !p.match(closing) {
		item, err := p.parseFilterExpr()
		if err != nil {
			return nil, err
		}
		items = append(items, item)
		for p.match(TokComma) {
			p.advance()
			item, err := p.parseFilterExpr()
			if err != nil {
				return nil, err
			}
			items = append(items, item)
		}
	}
	if err := p.expect(closing); err != nil {
		return nil, err
	}
	return items, nil
}

// parseProjection parses the fields between `{` and `}`; the caller
// consumes the braces. Commas are optional and may trail.
func (p *parser) parseProjection() (Projection, error) {
	var fields []ProjectionField

	for !p.match(TokRBrace) && !p.match(TokEOF) {
		tok := p.current()
		switch tok.Kind {
		case TokEllipsis:
			p.advance()
			fields = append(fields, ProjectionField{Name: SpreadField, Expr: Everything{}})
		case TokString:
			p.advance()
			if err := p.expect(TokColon); err != nil {
				return Projection{}, err
			}
			expr, err := p.parseFilterExpr()
			if err != nil {
				return Projection{}, err
			}
			fields = append(fields, ProjectionField{Name: tok.Text, Expr: expr})
		case TokIdent:
			p.advance()
			if !p.match(TokColon) {
				fields = append(fields, ProjectionField{Name: tok.Text, Expr: Ident{Name: tok.Text}})
				break
			}
			p.advance()
			expr, err := p.parseFilterExpr()
			if err != nil {
				return Projection{}, err
			}
			fields = append(fields, ProjectionField{Name: tok.Text, Expr: expr})
		default:
			return Projection{Fields: fields}, nil
		}

		if p.match(TokComma) {
			p.advance()
		}
	}

	return Projection{Fields: fields}, nil
}

// parsePipeStage recognizes order(expr [asc|desc]). Any other stage is
// parsed as a plain filter expression.
func (p *parser) parsePipeStage() (Expr, error) {
	if !p.match(TokIdent) || p.current().Text != "order" {
		return p.parseFilterExpr()
	}
	p.advance()

	if err := p.expect(TokLParen); err != nil {
		return nil, err
	}
	by, err := p.parsePrimary()
	if err != nil {
		return nil, err
	}

	ascending := true
	switch {
	case p.match(TokDesc):
		p.advance()
		ascending = false
	case p.match(TokAsc):
		p.advance()
	}

	if err := p.expect(TokRParen); err != nil {
		return nil, err
	}
	return Order{By: by, Ascending: ascending}, nil
}

func (p *parser) enter() error {
	p.depth++
	if p.depth > p.maxDepth {
		return &ParseError{Kind: ParseTooDeep, Offset: p.currentSpan().Start}
	}
	return nil
}

func (p *parser) leave() {
	p.depth--
}

func (p *parser) current() Token {
	return p.peek(0).Token
}

func (p *parser) currentSpan() Span {
	return p.peek(0).Span
}

func (p *parser) peek(offset int) SpannedToken {
	pos := p.pos + offset
	if pos < len(p.tokens) {
		return p.tokens[pos]
	}
	end := 0
	if n := len(p.tokens); n > 0 {
		end = p.tokens[n-1].Span.End
	}
	return SpannedToken{Token: Token{Kind: TokEOF}, Span: Span{Start: end, End: end}}
}

func (p *parser) advance() {
	if p.pos < len(p.tokens) {
		p.pos++
	}
}

func (p *parser) match(kind TokenKind) bool {
	return p.current().Kind == kind
}

// expect consumes a token of the given kind or fails without consuming.
func (p *parser) expect(kind TokenKind) error {
	if p.match(kind) {
		p.advance()
		return nil
	}
	if p.match(TokEOF) {
		return p.unexpectedEOF()
	}
	return p.unexpected(kind.String())
}

func (p *parser) unexpected(expected string) *ParseError {
	return &ParseError{
		Kind:     ParseUnexpectedToken,
		Found:    fmt.Sprintf("%#v", p.current()),
		Expected: expected,
		Offset:   p.currentSpan().Start,
	}
}

func (p *parser) unexpectedEOF() *ParseError {
	return &ParseError{Kind: ParseUnexpectedEOF, Offset: p.currentSpan().Start}
}
