package document

import "strings"

const (
	DraftPrefix   = "drafts."
	VersionPrefix = "versions."
)

// IDKind classifies a document id by its prefix.
type IDKind int

const (
	Published IDKind = iota
	Draft
	Version
)

func (k IDKind) String() string {
	switch k {
	case Draft:
		return "draft"
	case Version:
		return "version"
	default:
		return "published"
	}
}

// ID is a parsed document id.
//
//	abc123                    published
//	drafts.abc123             draft of abc123
//	versions.rel1.abc123      abc123 in release rel1
type ID struct {
	Kind      IDKind
	Base      string
	ReleaseID string // only set for Version
}

// ParseID never fails. A "versions." id without a release segment is
// treated as a published id.
func ParseID(id string) ID {
	if base, ok := strings.CutPrefix(id, DraftPrefix); ok {
		return ID{Kind: Draft, Base: base}
	}
	if rest, ok := strings.CutPrefix(id, VersionPrefix); ok {
		if release, base, ok := strings.Cut(rest, "."); ok {
			return ID{Kind: Version, Base: base, ReleaseID: release}
		}
	}
	return ID{Kind: Published, Base: id}
}

// BaseID returns the published id regardless of prefix.
func (id ID) BaseID() string { return id.Base }

// FullID reassembles the id with its prefix.
func (id ID) FullID() string {
	switch id.Kind {
	case Draft:
		return DraftPrefix + id.Base
	case Version:
		return VersionPrefix + id.ReleaseID + "." + id.Base
	default:
		return id.Base
	}
}

func (id ID) IsDraft() bool     { return id.Kind == Draft }
func (id ID) IsPublished() bool { return id.Kind == Published }
func (id ID) IsVersion() bool   { return id.Kind == Version }

func (id ID) String() string { return id.FullID() }
