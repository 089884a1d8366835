package grant

import (
	"fmt"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/contentlake/contentlake/contentlake/groq"
)

const DefaultCacheSize = 512

// Cache holds compiled grant filters keyed by their source text. It is
// safe for concurrent use.
type Cache struct {
	exprs *lru.Cache[string, groq.Expr]
	opts  groq.ParseOptions
}

// NewCache builds a cache holding up to size filters. A size of zero or
// less selects DefaultCacheSize.
func NewCache(size int, opts groq.ParseOptions) (*Cache, error) {
	if size <= 0 {
		size = DefaultCacheSize
	}
	exprs, err := lru.New[string, groq.Expr](size)
	if err != nil {
		return nil, fmt.Errorf("create grant cache: %w", err)
	}
	return &Cache{exprs: exprs, opts: opts}, nil
}

// Compile returns the parsed filter, parsing it on first use. Parse
// failures are not cached.
func (c *Cache) Compile(filter string) (groq.Expr, error) {
	if expr, ok := c.exprs.Get(filter); ok {
		cacheLookups.WithLabelValues("hit").Inc()
		return expr, nil
	}
	cacheLookups.WithLabelValues("miss").Inc()

	expr, err := groq.ParseWithOptions(filter, c.opts)
	if err != nil {
		return nil, err
	}
	c.exprs.Add(filter, expr)
	return expr, nil
}

// Len returns the number of cached filters.
func (c *Cache) Len() int { return c.exprs.Len() }

// Purge drops every cached filter.
func (c *Cache) Purge() { c.exprs.Purge() }
