package groq

import (
	"sort"
	"sync"
	"unicode/utf8"
)

// BuiltinFunc implements a function callable from GROQ. Arguments are
// already evaluated.
type BuiltinFunc func(args []any) (any, error)

// Registry maps function names to implementations. It is safe for
// concurrent use.
type Registry struct {
	mu    sync.RWMutex
	funcs map[string]BuiltinFunc
}

// NewRegistry returns a registry holding the standard builtins.
func NewRegistry() *Registry {
	r := &Registry{funcs: make(map[string]BuiltinFunc)}
	r.Register("count", builtinCount)
	r.Register("defined", builtinDefined)
	r.Register("length", builtinLength)
	r.Register("references", builtinReferences)
	return r
}

// Register adds or replaces a function.
func (r *Registry) Register(name string, fn BuiltinFunc) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.funcs[name] = fn
}

// Lookup returns the function registered under name.
func (r *Registry) Lookup(name string) (BuiltinFunc, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	fn, ok := r.funcs[name]
	return fn, ok
}

// Names returns the registered function names in sorted order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.funcs))
	for name := range r.funcs {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Call invokes name with args. Unknown names are a type error.
func (r *Registry) Call(name string, args []any) (any, error) {
	fn, ok := r.Lookup(name)
	if !ok {
		return nil, TypeError("unknown function: %s", name)
	}
	return fn(args)
}

var defaultBuiltins = NewRegistry()

// DefaultBuiltins returns the process-wide registry used when EvalOptions
// does not name one.
func DefaultBuiltins() *Registry {
	return defaultBuiltins
}

// RegisterBuiltin adds a function to the default registry.
func RegisterBuiltin(name string, fn BuiltinFunc) {
	defaultBuiltins.Register(name, fn)
}

// CallBuiltin invokes a function from the default registry.
func CallBuiltin(name string, args []any) (any, error) {
	return defaultBuiltins.Call(name, args)
}

func firstArg(args []any) any {
	if len(args) == 0 {
		return nil
	}
	return args[0]
}

func builtinCount(args []any) (any, error) {
	if len(args) == 0 {
		return nil, TypeError("count() expects an array")
	}
	switch v := args[0].(type) {
	case []any:
		return int64(len(v)), nil
	case nil:
		return int64(0), nil
	default:
		return nil, TypeError("count() expects an array")
	}
}

func builtinDefined(args []any) (any, error) {
	return firstArg(args) != nil, nil
}

func builtinLength(args []any) (any, error) {
	switch v := firstArg(args).(type) {
	case string:
		return int64(utf8.RuneCountInString(v)), nil
	case []any:
		return int64(len(v)), nil
	default:
		return nil, nil
	}
}

func builtinReferences(args []any) (any, error) {
	if len(args) < 2 {
		return nil, TypeError("references() needs 2 args")
	}
	refID, ok := args[1].(string)
	if !ok {
		return false, nil
	}
	return references(args[0], refID), nil
}

// references reports whether any object nested in v has a `_ref` equal to
// refID.
func references(v any, refID string) bool {
	switch val := v.(type) {
	case map[string]any:
		if ref, ok := val["_ref"].(string); ok && ref == refID {
			return true
		}
		for _, child := range val {
			if references(child, refID) {
				return true
			}
		}
	case []any:
		for _, child := range val {
			if references(child, refID) {
				return true
			}
		}
	}
	return false
}
