package groq

// Expr is a GROQ expression tree node. The set of node types is closed:
// every type implementing Expr is declared in this file.
type Expr interface {
	isExpr()
}

// Everything is the bare `*` dataset source.
type Everything struct{}

func (Everything) isExpr() {}

// Pipeline applies its stages in order.
type Pipeline struct {
	Stages []Expr
}

func (Pipeline) isExpr() {}

// Filter is a `[...]` pipeline stage.
type Filter struct {
	Predicate Expr
}

func (Filter) isExpr() {}

// ProjectionField is one `name: expr` entry of a projection. A spread
// (`...`) is stored with Name "..." and Expr Everything.
type ProjectionField struct {
	Name string
	Expr Expr
}

// SpreadField is the alias used for `...` in a projection.
const SpreadField = "..."

// Projection is a `{...}` pipeline stage.
type Projection struct {
	Fields []ProjectionField
}

func (Projection) isExpr() {}

// Order is an `order(expr [asc|desc])` pipeline stage.
type Order struct {
	By        Expr
	Ascending bool
}

func (Order) isExpr() {}

// Slice is a `[start..end]` pipeline stage.
type Slice struct {
	Start int64
	End   int64
}

func (Slice) isExpr() {}

// StringLiteral holds the raw text between the quotes.
type StringLiteral struct {
	Value string
}

func (StringLiteral) isExpr() {}

// IntLiteral is a 64-bit signed integer literal.
type IntLiteral struct {
	Value int64
}

func (IntLiteral) isExpr() {}

// FloatLiteral is a 64-bit float literal.
type FloatLiteral struct {
	Value float64
}

func (FloatLiteral) isExpr() {}

// BoolLiteral is true or false.
type BoolLiteral struct {
	Value bool
}

func (BoolLiteral) isExpr() {}

// NullLiteral is null.
type NullLiteral struct{}

func (NullLiteral) isExpr() {}

// ArrayLiteral is a bracketed list of expressions.
type ArrayLiteral struct {
	Items []Expr
}

func (ArrayLiteral) isExpr() {}

// Ident is a top-level attribute of the current document.
type Ident struct {
	Name string
}

func (Ident) isExpr() {}

// DotAccess is `base.field`.
type DotAccess struct {
	Base  Expr
	Field string
}

func (DotAccess) isExpr() {}

// Deref is `base->field`, following a reference to another document.
type Deref struct {
	Base  Expr
	Field string
}

func (Deref) isExpr() {}

// This is `@`, the current document.
type This struct{}

func (This) isExpr() {}

// Parent is `^`, the enclosing scope.
type Parent struct{}

func (Parent) isExpr() {}

// Eq is `left == right`.
type Eq struct {
	Left, Right Expr
}

func (Eq) isExpr() {}

// Neq is `left != right`.
type Neq struct {
	Left, Right Expr
}

func (Neq) isExpr() {}

// Lt is `left < right`.
type Lt struct {
	Left, Right Expr
}

func (Lt) isExpr() {}

// Gt is `left > right`.
type Gt struct {
	Left, Right Expr
}

func (Gt) isExpr() {}

// Lte is `left <= right`.
type Lte struct {
	Left, Right Expr
}

func (Lte) isExpr() {}

// Gte is `left >= right`.
type Gte struct {
	Left, Right Expr
}

func (Gte) isExpr() {}

// In is `left in right`.
type In struct {
	Left, Right Expr
}

func (In) isExpr() {}

// And is `left && right`.
type And struct {
	Left, Right Expr
}

func (And) isExpr() {}

// Or is `left || right`.
type Or struct {
	Left, Right Expr
}

func (Or) isExpr() {}

// Not is `!inner`.
type Not struct {
	Inner Expr
}

func (Not) isExpr() {}

// FuncCall is `name(args...)`.
type FuncCall struct {
	Name string
	Args []Expr
}

func (FuncCall) isExpr() {}

// Param is `$name`, resolved against caller-supplied bindings. Name does
// not include the dollar sign.
type Param struct {
	Name string
}

func (Param) isExpr() {}
