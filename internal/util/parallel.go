package util

import (
	"context"
	"fmt"
	"runtime"
	"sync/atomic"

	"github.com/sourcegraph/conc/iter"
)

// DefaultWorkers returns the worker pool size for per-entry transforms:
// available CPUs minus one, at least one.
func DefaultWorkers() int {
	n := runtime.NumCPU() - 1
	if n < 1 {
		return 1
	}
	return n
}

// ParallelMap applies fn to every item using at most workers goroutines and
// blocks until all of them complete. The result slice has the same order as
// items regardless of completion order. Once one call fails the remaining
// items are skipped and the first error is returned.
func ParallelMap[T, R any](ctx context.Context, description string, items []T, workers int, fn func(ctx context.Context, item T) (R, error)) ([]R, error) {
	if workers <= 0 {
		workers = DefaultWorkers()
	}
	if len(items) == 0 {
		return []R{}, nil
	}

	parent := ctx
	ctx, cancel := context.WithCancel(parent)
	defer cancel()

	bar := newBar(len(items), description)
	var firstErr atomic.Pointer[error]

	mapper := iter.Mapper[T, R]{MaxGoroutines: workers}
	results := mapper.Map(items, func(item *T) R {
		var zero R
		if ctx.Err() != nil {
			return zero
		}

		r, err := fn(ctx, *item)
		if err != nil {
			if firstErr.CompareAndSwap(nil, &err) {
				cancel()
			}
			return zero
		}
		if bar != nil {
			bar.Add(1)
		}
		return r
	})

	if bar != nil {
		bar.Finish()
	}

	if errp := firstErr.Load(); errp != nil {
		return nil, *errp
	}
	if err := parent.Err(); err != nil {
		return nil, fmt.Errorf("%s interrupted: %w", description, err)
	}
	return results, nil
}
