package cmd

import (
	"context"
	"fmt"
	"io"
	"sync"

	"golang.org/x/sync/errgroup"
)

// DefaultConcurrency is the default number of concurrent workers
const DefaultConcurrency = 5

// BulkResult is the outcome of one item of a bulk operation.
type BulkResult struct {
	ID      string `json:"id"`
	Success bool   `json:"success"`
	Error   string `json:"error,omitempty"`
	Data    any    `json:"data,omitempty"`
}

// runBulkOperation applies operation to every ID with at most concurrency
// calls in flight. Results keep the order of ids; a failed item does not
// stop the others.
func runBulkOperation[T any](
	ctx context.Context,
	ids []string,
	concurrency int,
	progress bool,
	errOut io.Writer,
	operation func(ctx context.Context, id string) (T, error),
) []BulkResult {
	if concurrency <= 0 {
		concurrency = DefaultConcurrency
	}
	if errOut == nil {
		errOut = io.Discard
	}

	results := make([]BulkResult, len(ids))
	var mu sync.Mutex
	done := 0

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(concurrency)
	for i, id := range ids {
		g.Go(func() error {
			result := BulkResult{ID: id}
			if err := ctx.Err(); err != nil {
				result.Error = err.Error()
			} else if data, err := operation(ctx, id); err != nil {
				result.Error = err.Error()
			} else {
				result.Success = true
				result.Data = data
			}
			results[i] = result

			if progress {
				mu.Lock()
				done++
				_, _ = fmt.Fprintf(errOut, "\rProcessed %d/%d", done, len(ids))
				mu.Unlock()
			}
			return nil
		})
	}
	_ = g.Wait()

	if progress && len(ids) > 0 {
		_, _ = fmt.Fprintln(errOut)
	}
	return results
}

// countResults returns success and failure counts from bulk results
func countResults(results []BulkResult) (success, failure int) {
	for _, r := range results {
		if r.Success {
			success++
		} else {
			failure++
		}
	}
	return
}
