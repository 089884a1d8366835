package document

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestParseID(t *testing.T) {
	tests := []struct {
		input string
		want  ID
	}{
		{"abc123", ID{Kind: Published, Base: "abc123"}},
		{"drafts.abc123", ID{Kind: Draft, Base: "abc123"}},
		{"versions.release1.abc123", ID{Kind: Version, Base: "abc123", ReleaseID: "release1"}},
		{"versions.release1.drafts.x", ID{Kind: Version, Base: "drafts.x", ReleaseID: "release1"}},
		{"versions.malformed", ID{Kind: Published, Base: "versions.malformed"}},
		{"", ID{Kind: Published}},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got := ParseID(tt.input)
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Fatalf("id mismatch (-want +got):\n%s", diff)
			}
			if got.FullID() != tt.input {
				t.Errorf("FullID() = %q, want %q", got.FullID(), tt.input)
			}
		})
	}
}

func TestIDPredicates(t *testing.T) {
	if id := ParseID("abc"); !id.IsPublished() || id.IsDraft() || id.IsVersion() {
		t.Errorf("abc: unexpected kind %s", id.Kind)
	}
	if id := ParseID("drafts.abc"); !id.IsDraft() || id.BaseID() != "abc" {
		t.Errorf("drafts.abc: got %+v", id)
	}
	if id := ParseID("versions.r.abc"); !id.IsVersion() || id.BaseID() != "abc" {
		t.Errorf("versions.r.abc: got %+v", id)
	}
	if got := Version.String(); got != "version" {
		t.Errorf("Version.String() = %q", got)
	}
}
