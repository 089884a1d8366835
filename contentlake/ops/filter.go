package ops

import (
	"context"
	"fmt"
	"sync"

	"github.com/panjf2000/ants/v2"

	"github.com/contentlake/contentlake/contentlake/document"
	"github.com/contentlake/contentlake/contentlake/groq"
)

// FilterDocuments evaluates expr against every document and reports which
// ones match. With a pool the evaluations run concurrently; the compiled
// expression is shared read-only. When several documents fail, the error
// of the earliest one is returned.
func FilterDocuments(ctx context.Context, pool *ants.Pool, ev *groq.Evaluator, expr groq.Expr, docs []map[string]any, params map[string]any) ([]bool, error) {
	matches := make([]bool, len(docs))
	if pool == nil || len(docs) < 2 {
		for i, doc := range docs {
			ok, err := ev.EvalFilter(expr, doc, params)
			if err != nil {
				return nil, fmt.Errorf("document %s: %w", document.IDOf(doc), err)
			}
			matches[i] = ok
		}
		return matches, nil
	}

	errs := make([]error, len(docs))
	var wg sync.WaitGroup
	var submitErr error
	for i := range docs {
		if err := ctx.Err(); err != nil {
			submitErr = err
			break
		}
		wg.Add(1)
		err := pool.Submit(func() {
			defer wg.Done()
			matches[i], errs[i] = ev.EvalFilter(expr, docs[i], params)
		})
		if err != nil {
			wg.Done()
			submitErr = fmt.Errorf("submit evaluation: %w", err)
			break
		}
	}
	wg.Wait()

	if submitErr != nil {
		return nil, submitErr
	}
	for i, err := range errs {
		if err != nil {
			return nil, fmt.Errorf("document %s: %w", document.IDOf(docs[i]), err)
		}
	}
	return matches, nil
}
