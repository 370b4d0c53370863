package fetch

import (
	"context"

	"golang.org/x/sync/errgroup"
)

// BatchParallelism bounds concurrent extractions in one batch. Three
// keeps batches fast without hammering a single origin.
const BatchParallelism = 3

// ExtractAll extracts every URL concurrently (at most BatchParallelism
// in flight) and returns results in input order. Individual failures
// stay inside their result; one bad URL never sinks the batch.
func (p *Pipeline) ExtractAll(ctx context.Context, urls []string) []*Extracted {
	results := make([]*Extracted, len(urls))
	g := new(errgroup.Group)
	g.SetLimit(BatchParallelism)
	for i, u := range urls {
		g.Go(func() error {
			results[i] = p.Extract(ctx, u)
			return nil
		})
	}
	g.Wait()
	return results
}
