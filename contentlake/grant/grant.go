// Package grant decides document visibility from access grants. A grant
// pairs a GROQ filter with the permissions it confers; a document is
// covered by a grant when the filter matches it.
package grant

import "slices"

type Permission string

const (
	Read    Permission = "read"
	Update  Permission = "update"
	Create  Permission = "create"
	History Permission = "history"
)

// Grant is one access rule.
type Grant struct {
	Filter      string       `json:"filter" yaml:"filter"`
	Permissions []Permission `json:"permissions" yaml:"permissions"`
}

// Has reports whether g confers p.
func (g Grant) Has(p Permission) bool {
	return slices.Contains(g.Permissions, p)
}

// ParsePermission accepts the lowercase permission names.
func ParsePermission(s string) (Permission, bool) {
	switch p := Permission(s); p {
	case Read, Update, Create, History:
		return p, true
	}
	return "", false
}
