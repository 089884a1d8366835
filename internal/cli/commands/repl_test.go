package commands

import (
	"bytes"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/contentlake/contentlake/contentlake/groq"
)

func TestSessionHandle(t *testing.T) {
	s := NewSession(groq.ParseOptions{}, nil)
	var out bytes.Buffer

	steps := []struct {
		input string
		want  string
	}{
		{`:doc {"_type":"post","title":"Hi"}`, "OK"},
		{`title`, `"Hi"`},
		{`length(title)`, "2"},
		{`:params {"t":"post"}`, "OK"},
		{`_type == $t`, "true"},
		{`:filter _type == "page"`, "false"},
		{`:params`, `{"t":"post"}`},
		{`missing`, "null"},
	}
	for _, step := range steps {
		out.Reset()
		if s.Handle(step.input, &out) {
			t.Fatalf("%q ended the session", step.input)
		}
		if got := strings.TrimSpace(out.String()); got != step.want {
			t.Errorf("%q: output %q, want %q", step.input, got, step.want)
		}
	}
}

func TestSessionErrors(t *testing.T) {
	s := NewSession(groq.ParseOptions{}, nil)
	var out bytes.Buffer

	s.Handle(`a == `, &out)
	lines := strings.Split(strings.TrimRight(out.String(), "\n"), "\n")
	if len(lines) != 3 || !strings.HasPrefix(lines[2], "error:") {
		t.Fatalf("unexpected parse error output:\n%s", out.String())
	}
	if !strings.HasSuffix(lines[1], "^") {
		t.Errorf("expected a caret line, got %q", lines[1])
	}

	out.Reset()
	s.Handle(`a > 1`, &out)
	if !strings.Contains(out.String(), "unsupported expression: Gt") {
		t.Errorf("unexpected eval error output: %s", out.String())
	}

	out.Reset()
	s.Handle(`:doc {broken`, &out)
	if !strings.HasPrefix(out.String(), "error:") {
		t.Errorf("expected decode error, got %s", out.String())
	}

	out.Reset()
	s.Handle(`:nope`, &out)
	if !strings.Contains(out.String(), "unknown command :nope") {
		t.Errorf("unexpected output: %s", out.String())
	}
}

func TestSessionInspection(t *testing.T) {
	s := NewSession(groq.ParseOptions{}, nil)
	var out bytes.Buffer

	s.Handle(`:ast $id == _id`, &out)
	if !strings.Contains(out.String(), `"type":"Eq"`) {
		t.Errorf("unexpected ast output: %s", out.String())
	}

	out.Reset()
	s.Handle(`:tokens a`, &out)
	if got := strings.TrimSpace(out.String()); got != "0:1\tIdent\ta\n1:1\tEOF\tEOF" {
		t.Errorf("unexpected tokens output: %q", got)
	}
}

func TestSessionQuit(t *testing.T) {
	for _, cmd := range []string{":quit", ":q", ":exit"} {
		var out bytes.Buffer
		if !NewSession(groq.ParseOptions{}, nil).Handle(cmd, &out) {
			t.Errorf("%s did not end the session", cmd)
		}
		if !strings.Contains(out.String(), "Goodbye") {
			t.Errorf("%s: expected goodbye, got %q", cmd, out.String())
		}
	}
}

func TestSessionComplete(t *testing.T) {
	s := NewSession(groq.ParseOptions{}, nil)
	tests := []struct {
		line string
		want []string
	}{
		{"cou", []string{"count", "count("}},
		{"a == de", []string{"a == defined", "a == defined("}},
		{":pa", []string{":params"}},
		{"", nil},
		{"zzz", nil},
	}
	for _, tt := range tests {
		if diff := cmp.Diff(tt.want, s.Complete(tt.line)); diff != "" {
			t.Errorf("Complete(%q) mismatch (-want +got):\n%s", tt.line, diff)
		}
	}
}

func TestParsePutMode(t *testing.T) {
	for _, in := range []string{"", "upsert", "create", "replace", "createIfNotExists"} {
		if _, err := parsePutMode(in); err != nil {
			t.Errorf("parsePutMode(%q): %v", in, err)
		}
	}
	if _, err := parsePutMode("createOrReplace"); err == nil {
		t.Errorf("expected error for unknown mode")
	}
}
