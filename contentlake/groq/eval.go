package groq

// EvalOptions tunes evaluation.
type EvalOptions struct {
	// MaxDepth limits recursion. Zero means DefaultMaxDepth.
	MaxDepth int
	// Builtins resolves FuncCall nodes. Nil means DefaultBuiltins().
	Builtins *Registry
}

// Evaluator evaluates expressions with fixed options. It holds no
// per-call state and may be shared between goroutines.
type Evaluator struct {
	maxDepth int
	builtins *Registry
}

// NewEvaluator builds an evaluator from opts.
func NewEvaluator(opts EvalOptions) *Evaluator {
	e := &Evaluator{maxDepth: opts.MaxDepth, builtins: opts.Builtins}
	if e.maxDepth <= 0 {
		e.maxDepth = DefaultMaxDepth
	}
	if e.builtins == nil {
		e.builtins = DefaultBuiltins()
	}
	return e
}

var defaultEvaluator = NewEvaluator(EvalOptions{})

// Eval evaluates expr against doc with the given parameter bindings.
func Eval(expr Expr, doc any, params map[string]any) (any, error) {
	return defaultEvaluator.Eval(expr, doc, params)
}

// EvalFilter evaluates expr as a predicate. Non-boolean results count as
// false. A pipeline of filter stages matches when every filter does.
func EvalFilter(expr Expr, doc any, params map[string]any) (bool, error) {
	return defaultEvaluator.EvalFilter(expr, doc, params)
}

// Eval evaluates expr against doc with the given parameter bindings.
func (e *Evaluator) Eval(expr Expr, doc any, params map[string]any) (any, error) {
	return e.eval(expr, doc, params, 0)
}

// EvalFilter evaluates expr as a predicate. Non-boolean results count as
// false.
func (e *Evaluator) EvalFilter(expr Expr, doc any, params map[string]any) (bool, error) {
	return e.filter(expr, doc, params, 0)
}

func (e *Evaluator) filter(expr Expr, doc any, params map[string]any, depth int) (bool, error) {
	switch n := expr.(type) {
	case Pipeline:
		return e.pipelineFilter(n, doc, params, depth+1)
	case Filter:
		return e.filter(n.Predicate, doc, params, depth+1)
	}

	v, err := e.eval(expr, doc, params, depth)
	if err != nil {
		return false, err
	}
	b, ok := v.(bool)
	return ok && b, nil
}

// pipelineFilter matches a single document against `*[a][b]...`. Stages
// that reshape or reorder a result set have no per-document meaning.
func (e *Evaluator) pipelineFilter(p Pipeline, doc any, params map[string]any, depth int) (bool, error) {
	if depth > e.maxDepth {
		return false, &EvalError{Kind: EvalTooDeep}
	}
	for _, stage := range p.Stages {
		switch s := stage.(type) {
		case Everything:
		case Filter:
			ok, err := e.filter(s.Predicate, doc, params, depth+1)
			if err != nil || !ok {
				return false, err
			}
		default:
			return false, unsupported(NodeName(stage))
		}
	}
	return true, nil
}

func (e *Evaluator) eval(expr Expr, doc any, params map[string]any, depth int) (any, error) {
	if depth > e.maxDepth {
		return nil, &EvalError{Kind: EvalTooDeep}
	}
	depth++

	switch n := expr.(type) {
	case Everything:
		return true, nil
	case StringLiteral:
		return n.Value, nil
	case IntLiteral:
		return n.Value, nil
	case FloatLiteral:
		return n.Value, nil
	case BoolLiteral:
		return n.Value, nil
	case NullLiteral:
		return nil, nil
	case Ident:
		return field(doc, n.Name), nil
	case DotAccess:
		base, err := e.eval(n.Base, doc, params, depth)
		if err != nil {
			return nil, err
		}
		return field(base, n.Field), nil
	case Param:
		return params[n.Name], nil
	case This:
		return doc, nil
	case Eq:
		l, r, err := e.operands(n.Left, n.Right, doc, params, depth)
		if err != nil {
			return nil, err
		}
		return Equal(l, r), nil
	case Neq:
		l, r, err := e.operands(n.Left, n.Right, doc, params, depth)
		if err != nil {
			return nil, err
		}
		return !Equal(l, r), nil
	case And:
		left, err := e.filter(n.Left, doc, params, depth)
		if err != nil || !left {
			return false, err
		}
		return e.filter(n.Right, doc, params, depth)
	case Or:
		left, err := e.filter(n.Left, doc, params, depth)
		if err != nil {
			return false, err
		}
		if left {
			return true, nil
		}
		return e.filter(n.Right, doc, params, depth)
	case Not:
		inner, err := e.filter(n.Inner, doc, params, depth)
		if err != nil {
			return nil, err
		}
		return !inner, nil
	case FuncCall:
		args := make([]any, len(n.Args))
		for i, arg := range n.Args {
			v, err := e.eval(arg, doc, params, depth)
			if err != nil {
				return nil, err
			}
			args[i] = v
		}
		return e.builtins.Call(n.Name, args)

	// Parsed but not evaluated.
	case Pipeline, Filter, Projection, Order, Slice:
		return nil, unsupported(NodeName(expr))
	case ArrayLiteral, Deref, Parent:
		return nil, unsupported(NodeName(expr))
	case Lt, Gt, Lte, Gte, In:
		return nil, unsupported(NodeName(expr))
	default:
		return nil, unsupported(NodeName(expr))
	}
}

func (e *Evaluator) operands(left, right Expr, doc any, params map[string]any, depth int) (any, any, error) {
	l, err := e.eval(left, doc, params, depth)
	if err != nil {
		return nil, nil, err
	}
	r, err := e.eval(right, doc, params, depth)
	if err != nil {
		return nil, nil, err
	}
	return l, r, nil
}

// field looks up name on an object value; anything else yields null.
func field(v any, name string) any {
	obj, ok := v.(map[string]any)
	if !ok {
		return nil
	}
	return obj[name]
}
