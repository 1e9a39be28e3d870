package layoutseq

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/sync/errgroup"
)

// BatchResult pairs a document with its outcome. Exactly one of Result and
// Err is set.
type BatchResult struct {
	Document *Document
	Result   *Result
	Err      error
}

// ProcessAll processes docs with at most limit documents in flight; limit
// <= 0 means no limit. Results keep the order of docs. A failing document
// never stops the others: its error is recorded in its BatchResult and
// joined into the returned error. ctx is only checked before a document
// starts.
func ProcessAll(ctx context.Context, p *Processor, docs []*Document, limit int) ([]BatchResult, error) {
	results := make([]BatchResult, len(docs))
	if len(docs) == 0 {
		return results, nil
	}

	var g errgroup.Group
	if limit > 0 {
		g.SetLimit(limit)
	}

	for i, doc := range docs {
		i, doc := i, doc
		results[i].Document = doc
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				results[i].Err = err
				return nil
			}
			res, err := p.Process(doc)
			if err != nil {
				results[i].Err = err
				return nil
			}
			results[i].Result = res
			return nil
		})
	}
	_ = g.Wait()

	var errs []error
	for i, r := range results {
		if r.Err != nil {
			errs = append(errs, fmt.Errorf("document %d: %w", i, r.Err))
		}
	}
	if len(errs) > 0 {
		p.log.Warn("batch finished with failures", "documents", len(docs), "failed", len(errs))
	}
	return results, errors.Join(errs...)
}
