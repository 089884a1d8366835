package groq

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestCallBuiltin(t *testing.T) {
	doc := map[string]any{
		"author": map[string]any{"_ref": "user-1"},
		"tags":   []any{map[string]any{"_ref": "tag-2"}},
	}

	tests := []struct {
		name string
		fn   string
		args []any
		want any
	}{
		{"count array", "count", []any{[]any{1.0, 2.0, 3.0}}, int64(3)},
		{"count null", "count", []any{nil}, int64(0)},
		{"defined null", "defined", []any{nil}, false},
		{"defined missing", "defined", nil, false},
		{"defined string", "defined", []any{"x"}, true},
		{"defined false", "defined", []any{false}, true},
		{"length string", "length", []any{"hello"}, int64(5)},
		{"length multibyte", "length", []any{"héllo"}, int64(5)},
		{"length array", "length", []any{[]any{1.0, 2.0}}, int64(2)},
		{"length number", "length", []any{3.0}, nil},
		{"references top", "references", []any{doc, "user-1"}, true},
		{"references nested array", "references", []any{doc, "tag-2"}, true},
		{"references miss", "references", []any{doc, "nope"}, false},
		{"references non-string id", "references", []any{doc, 1.0}, false},
		{"references scalar doc", "references", []any{"user-1", "user-1"}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := CallBuiltin(tt.fn, tt.args)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("result mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestCallBuiltinTypeErrors(t *testing.T) {
	tests := []struct {
		name string
		fn   string
		args []any
	}{
		{"count string", "count", []any{"x"}},
		{"count object", "count", []any{map[string]any{}}},
		{"count no args", "count", nil},
		{"references arity", "references", []any{map[string]any{}}},
		{"unknown", "nope", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := CallBuiltin(tt.fn, tt.args)
			var ee *EvalError
			if !errors.As(err, &ee) || ee.Kind != EvalTypeError {
				t.Fatalf("expected TypeError, got %v", err)
			}
		})
	}
}

func TestRegisterBuiltin(t *testing.T) {
	RegisterBuiltin("always", func([]any) (any, error) { return true, nil })
	t.Cleanup(func() {
		defaultBuiltins.mu.Lock()
		delete(defaultBuiltins.funcs, "always")
		defaultBuiltins.mu.Unlock()
	})

	ok, err := EvalFilter(mustParse(t, `always()`), nil, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !ok {
		t.Errorf("expected registered builtin to be callable")
	}
}

func TestRegistryNames(t *testing.T) {
	want := []string{"count", "defined", "length", "references"}
	if diff := cmp.Diff(want, NewRegistry().Names()); diff != "" {
		t.Errorf("names mismatch (-want +got):\n%s", diff)
	}
}
