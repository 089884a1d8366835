package grant

import (
	"fmt"
	"log/slog"

	"github.com/contentlake/contentlake/contentlake/groq"
)

// Checker evaluates grants against documents.
type Checker struct {
	cache  *Cache
	eval   *groq.Evaluator
	logger *slog.Logger
}

// NewChecker wires a checker. A nil evaluator or logger selects the
// defaults.
func NewChecker(cache *Cache, ev *groq.Evaluator, logger *slog.Logger) *Checker {
	if ev == nil {
		ev = groq.NewEvaluator(groq.EvalOptions{})
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Checker{cache: cache, eval: ev, logger: logger}
}

// Validate compiles every grant filter and returns the first parse error.
func (c *Checker) Validate(grants []Grant) error {
	for i, g := range grants {
		if _, err := c.cache.Compile(g.Filter); err != nil {
			return fmt.Errorf("grant %d: %w", i, err)
		}
	}
	return nil
}

// Allowed reports whether any grant conferring perm matches doc. A grant
// whose filter fails to evaluate is logged and treated as not matching.
// Parse errors are returned.
func (c *Checker) Allowed(grants []Grant, perm Permission, doc map[string]any, params map[string]any) (bool, error) {
	for i, g := range grants {
		if !g.Has(perm) {
			continue
		}
		expr, err := c.cache.Compile(g.Filter)
		if err != nil {
			return false, fmt.Errorf("grant %d: %w", i, err)
		}

		ok, err := c.eval.EvalFilter(expr, doc, params)
		if err != nil {
			evaluations.WithLabelValues(string(perm), "error").Inc()
			c.logger.Warn("grant filter evaluation failed",
				"grant", i,
				"filter", g.Filter,
				"permission", perm,
				"error", err,
			)
			continue
		}
		if ok {
			evaluations.WithLabelValues(string(perm), "match").Inc()
			return true, nil
		}
		evaluations.WithLabelValues(string(perm), "nomatch").Inc()
	}
	return false, nil
}
