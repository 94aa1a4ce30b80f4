// Package workerpool runs a fixed number of indexed tasks across a bounded
// pool of goroutines, preserving result ordering by task index rather than
// completion order, and cancelling outstanding work as soon as one task
// fails.
//
// The teacher (forest/classifier.go, forest/regressor.go) hand-rolls this
// shape with a pair of unbuffered channels and N worker goroutines, but
// tree fitting in the teacher's code can never fail, so it never needed
// cancellation. spec.md's forest trainer (§4.E/§5) introduces a real
// TrainFailed failure mode that must cancel pending tasks, so the pool is
// rebuilt on golang.org/x/sync/errgroup + golang.org/x/sync/semaphore,
// which give first-error cancellation for free.
package workerpool

import (
	"context"
	"runtime"

	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/semaphore"

	"github.com/fantinsib/arboria/errs"
)

// Run executes task(i) for i in [0, n) across at most concurrency
// goroutines. concurrency follows n_jobs semantics: a positive value is
// used as-is (capped to n), -1 resolves to the host's reported hardware
// parallelism (runtime.NumCPU()), and any other non-positive value is
// rejected before any task is spawned. The result of task(i) is written to
// results[i], so the returned slice is ordered by task index regardless of
// completion order. If any task returns an error, Run cancels the
// remaining tasks' context and returns the first error.
func Run[T any](ctx context.Context, n, concurrency int, task func(ctx context.Context, i int) (T, error)) ([]T, error) {
	results := make([]T, n)

	if n == 0 {
		return results, nil
	}

	switch {
	case concurrency == -1:
		concurrency = runtime.NumCPU()
	case concurrency <= 0:
		return nil, errs.New(errs.InvalidArgument, "workerpool: concurrency must be positive or -1, got %d", concurrency)
	}
	if concurrency > n {
		concurrency = n
	}

	g, gctx := errgroup.WithContext(ctx)
	sem := semaphore.NewWeighted(int64(concurrency))

	for i := 0; i < n; i++ {
		i := i
		if err := sem.Acquire(gctx, 1); err != nil {
			// context already cancelled by an earlier failure
			break
		}
		g.Go(func() error {
			defer sem.Release(1)
			v, err := task(gctx, i)
			if err != nil {
				return err
			}
			results[i] = v
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}
