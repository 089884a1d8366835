package cli

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	_ "modernc.org/sqlite"
)

type result struct {
	code   int
	stdout string
	stderr string
}

func run(t *testing.T, stdin string, args ...string) result {
	t.Helper()
	var out, errOut bytes.Buffer
	code := Execute(context.Background(), args, strings.NewReader(stdin), &out, &errOut)
	return result{code: code, stdout: out.String(), stderr: errOut.String()}
}

func TestParseCommand(t *testing.T) {
	r := run(t, "", "parse", `*[_type == "post"]`)
	if r.code != 0 {
		t.Fatalf("exit %d: %s", r.code, r.stderr)
	}
	if got := strings.TrimSpace(r.stdout); got != `*[(_type == "post")]` {
		t.Errorf("unexpected output %q", got)
	}

	r = run(t, "", "parse", "--format", "yaml", `$id == _id`)
	if r.code != 0 {
		t.Fatalf("exit %d: %s", r.code, r.stderr)
	}
	for _, want := range []string{"type: Eq", "type: Param", "name: id"} {
		if !strings.Contains(r.stdout, want) {
			t.Errorf("yaml output missing %q:\n%s", want, r.stdout)
		}
	}

	r = run(t, "", "parse", "--format", "json", `a == 1`)
	if r.code != 0 || !strings.Contains(r.stdout, `"type": "Eq"`) {
		t.Errorf("unexpected json output (exit %d): %s", r.code, r.stdout)
	}

	r = run(t, "", "parse", `a ==`)
	if r.code == 0 || !strings.Contains(r.stderr, "error:") {
		t.Errorf("expected parse failure, got exit %d stderr %q", r.code, r.stderr)
	}
}

func TestTokenizeCommand(t *testing.T) {
	r := run(t, "", "tokenize", `a == "x"`)
	if r.code != 0 {
		t.Fatalf("exit %d: %s", r.code, r.stderr)
	}
	lines := strings.Split(strings.TrimSpace(r.stdout), "\n")
	if len(lines) != 4 {
		t.Fatalf("expected 4 tokens including EOF, got %d:\n%s", len(lines), r.stdout)
	}
	if !strings.HasPrefix(lines[0], "0:1\t") || !strings.HasSuffix(lines[2], `"x"`) {
		t.Errorf("unexpected tokens:\n%s", r.stdout)
	}
}

func TestEvalCommand(t *testing.T) {
	tests := []struct {
		name string
		args []string
		want string
	}{
		{"value", []string{"eval", "--doc", `{"title":"Hi"}`, "length(title)"}, "2"},
		{"filter", []string{"eval", "--filter", "--doc", `{"_type":"post"}`, `_type == $t`, "--params", `{"t":"post"}`}, "true"},
		{"no doc", []string{"eval", "defined(x)"}, "false"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := run(t, "", tt.args...)
			if r.code != 0 {
				t.Fatalf("exit %d: %s", r.code, r.stderr)
			}
			if got := strings.TrimSpace(r.stdout); got != tt.want {
				t.Errorf("output = %q, want %q", got, tt.want)
			}
		})
	}

	r := run(t, "", "eval", "a < 1")
	if r.code == 0 || !strings.Contains(r.stderr, "Lt") {
		t.Errorf("expected unsupported error, got exit %d stderr %q", r.code, r.stderr)
	}
}

func TestDatasetCommands(t *testing.T) {
	dir := t.TempDir()
	ds := func(args ...string) []string {
		return append([]string{"--sqlite-path", dir, "dataset", "-d", "production"}, args...)
	}

	if r := run(t, "", ds("create")...); r.code != 0 {
		t.Fatalf("create: exit %d: %s", r.code, r.stderr)
	}
	if _, err := os.Stat(filepath.Join(dir, "production.db")); err != nil {
		t.Fatalf("expected database file: %v", err)
	}

	r := run(t, "", ds("put", `{"_id":"p1","_type":"post","title":"One"}`)...)
	if r.code != 0 || !strings.HasPrefix(r.stdout, "created p1 rev=") {
		t.Fatalf("put: exit %d out %q err %q", r.code, r.stdout, r.stderr)
	}

	lines := strings.Join([]string{
		`{"_id":"p2","_type":"post"}`,
		``,
		`{"_id":"a1","_type":"author"}`,
		`{"_id":"p3","_type":"post"}`,
	}, "\n")
	r = run(t, lines, ds("put", "--import", "-")...)
	if r.code != 0 || strings.TrimSpace(r.stdout) != "imported 3" {
		t.Fatalf("import: exit %d out %q err %q", r.code, r.stdout, r.stderr)
	}

	r = run(t, "", ds("count")...)
	if strings.TrimSpace(r.stdout) != "4" {
		t.Fatalf("count: %q %q", r.stdout, r.stderr)
	}

	r = run(t, "", ds("get", "p1")...)
	if r.code != 0 || !strings.Contains(r.stdout, `"title": "One"`) {
		t.Fatalf("get: exit %d out %q err %q", r.code, r.stdout, r.stderr)
	}

	r = run(t, "", ds("query", "_type == $t", "--params", `{"t":"post"}`, "--limit", "2")...)
	if r.code != 0 {
		t.Fatalf("query: exit %d: %s", r.code, r.stderr)
	}
	got := strings.Split(strings.TrimSpace(r.stdout), "\n")
	if len(got) != 2 || !strings.Contains(got[0], `"p1"`) || !strings.Contains(got[1], `"p2"`) {
		t.Fatalf("unexpected first page:\n%s", r.stdout)
	}
	_, cursor, ok := strings.Cut(strings.TrimSpace(r.stderr), "--after ")
	if !ok {
		t.Fatalf("expected a cursor hint, got %q", r.stderr)
	}

	r = run(t, "", ds("query", "_type == $t", "--params", `{"t":"post"}`, "--limit", "2", "--after", cursor)...)
	if r.code != 0 || !strings.Contains(r.stdout, `"p3"`) || strings.Contains(r.stderr, "--after") {
		t.Fatalf("second page: exit %d out %q err %q", r.code, r.stdout, r.stderr)
	}

	r = run(t, "", append([]string{"-o", "json"}, ds("query", `_type == "author"`, "--explain")...)...)
	if r.code != 0 || !strings.Contains(r.stdout, `"explainSteps"`) || !strings.Contains(r.stdout, `"a1"`) {
		t.Fatalf("json query: exit %d out %q err %q", r.code, r.stdout, r.stderr)
	}

	r = run(t, "", ds("delete-where", `_type == "post"`)...)
	if r.code != 0 || strings.TrimSpace(r.stdout) != "deleted 3" {
		t.Fatalf("delete-where: exit %d out %q err %q", r.code, r.stdout, r.stderr)
	}
	r = run(t, "", ds("delete", "a1", "missing")...)
	if r.code != 0 || r.stdout != "deleted a1\nnot found missing\n" {
		t.Fatalf("delete: exit %d out %q err %q", r.code, r.stdout, r.stderr)
	}

	r = run(t, "", ds("get", "a1")...)
	if r.code == 0 || !strings.Contains(r.stderr, "not_found") {
		t.Fatalf("get after delete: exit %d err %q", r.code, r.stderr)
	}
}

func TestDatasetQueryWithGrants(t *testing.T) {
	dir := t.TempDir()
	ds := func(args ...string) []string {
		return append([]string{"--sqlite-path", dir, "dataset", "-d", "g"}, args...)
	}
	if r := run(t, "", ds("create")...); r.code != 0 {
		t.Fatalf("create: %s", r.stderr)
	}
	docs := `{"_id":"a","_type":"post","owner":"ada"}` + "\n" + `{"_id":"b","_type":"post","owner":"bob"}`
	if r := run(t, docs, ds("put", "--import", "-")...); r.code != 0 {
		t.Fatalf("import: %s", r.stderr)
	}

	grants := filepath.Join(dir, "grants.yaml")
	data := "- filter: owner == $user\n  permissions: [read]\n"
	if err := os.WriteFile(grants, []byte(data), 0o600); err != nil {
		t.Fatal(err)
	}
	r := run(t, "", ds("query", `_type == "post"`, "--grants", grants, "--grant-params", `{"user":"bob"}`)...)
	if r.code != 0 {
		t.Fatalf("query: %s", r.stderr)
	}
	if strings.TrimSpace(r.stdout) == "" || strings.Contains(r.stdout, `"a"`) || !strings.Contains(r.stdout, `"b"`) {
		t.Errorf("unexpected documents:\n%s", r.stdout)
	}
}

func TestDatasetRequiresName(t *testing.T) {
	r := run(t, "", "--sqlite-path", t.TempDir(), "dataset", "count")
	if r.code == 0 || !strings.Contains(r.stderr, "dataset") {
		t.Errorf("expected missing flag error, got exit %d stderr %q", r.code, r.stderr)
	}
}

func TestUnknownBackend(t *testing.T) {
	r := run(t, "", "--backend", "redis", "parse", "a")
	if r.code == 0 || !strings.Contains(r.stderr, "unknown backend") {
		t.Errorf("expected backend error, got exit %d stderr %q", r.code, r.stderr)
	}
}

func TestDatasetStats(t *testing.T) {
	dir := t.TempDir()
	ds := func(args ...string) []string {
		return append([]string{"--sqlite-path", dir, "dataset", "-d", "s"}, args...)
	}
	if r := run(t, "", ds("create")...); r.code != 0 {
		t.Fatalf("create: %s", r.stderr)
	}
	docs := `{"_id":"a","_type":"post"}` + "\n" + `{"_id":"b","_type":"author"}`
	if r := run(t, docs, ds("put", "--import", "-")...); r.code != 0 {
		t.Fatalf("import: %s", r.stderr)
	}
	r := run(t, "", ds("stats")...)
	if r.code != 0 || r.stdout != "author\t1\npost\t1\ntotal\t2\n" {
		t.Errorf("stats: exit %d out %q err %q", r.code, r.stdout, r.stderr)
	}
}
