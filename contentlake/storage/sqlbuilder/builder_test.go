package sqlbuilder

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestBuilderPlaceholders(t *testing.T) {
	tests := []struct {
		style PlaceholderStyle
		want  []string
	}{
		{PlaceholderQuestion, []string{"?", "?", "?"}},
		{PlaceholderDollar, []string{"$1", "$2", "$3"}},
	}

	for _, tt := range tests {
		t.Run(tt.style.String(), func(t *testing.T) {
			b := New(tt.style)
			var got []string
			for _, v := range []any{"a", 2, nil} {
				got = append(got, b.Arg(v))
			}
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("placeholders mismatch (-want +got):\n%s", diff)
			}
			if diff := cmp.Diff([]any{"a", 2, nil}, b.Args()); diff != "" {
				t.Errorf("args mismatch (-want +got):\n%s", diff)
			}
			if b.Len() != 3 {
				t.Errorf("Len() = %d, want 3", b.Len())
			}
		})
	}
}

func TestBuilderDollarPastNine(t *testing.T) {
	b := New(PlaceholderDollar)
	var last string
	for i := 0; i < 12; i++ {
		last = b.Arg(i)
	}
	if last != "$12" {
		t.Errorf("expected $12, got %s", last)
	}
}
