// Package taskgroup runs independent per-unit work with bounded parallelism
// and a wall-clock timeout per task.
package taskgroup

import (
	"context"
	"fmt"
	"math"
	"time"

	"golang.org/x/sync/errgroup"
)

// Options configures a Map call.
type Options struct {
	// Limit é o número máximo de tarefas simultâneas; <= 1 roda em sequência.
	Limit int
	// Timeout por tarefa; zero desliga o limite.
	Timeout time.Duration
}

// Limit returns min(maxWorkers, ceil(n*throttle)), never less than 1.
func Limit(maxWorkers, n int, throttle float64) int {
	if n <= 0 || maxWorkers <= 0 {
		return 1
	}
	throttled := int(math.Ceil(float64(n) * throttle))
	if throttled > maxWorkers {
		throttled = maxWorkers
	}
	if throttled < 1 {
		throttled = 1
	}
	return throttled
}

// Map applies fn to every item and returns the results in input order.
// A task that fails or outlives the timeout is replaced by fallback(item, err)
// so one unit never aborts the batch. Only cancellation of ctx is returned.
func Map[T, R any](ctx context.Context, opts Options, items []T,
	fn func(ctx context.Context, item T) (R, error),
	fallback func(item T, err error) R,
) ([]R, error) {
	results := make([]R, len(items))

	g, gctx := errgroup.WithContext(ctx)
	limit := opts.Limit
	if limit < 1 {
		limit = 1
	}
	g.SetLimit(limit)

	for i, item := range items {
		if err := ctx.Err(); err != nil {
			break
		}
		g.Go(func() error {
			results[i] = runOne(gctx, opts.Timeout, item, fn, fallback)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return results, err
	}
	if err := ctx.Err(); err != nil {
		return results, fmt.Errorf("task group cancelled: %w", err)
	}
	return results, nil
}

type outcome[R any] struct {
	value R
	err   error
}

func runOne[T, R any](ctx context.Context, timeout time.Duration, item T,
	fn func(ctx context.Context, item T) (R, error),
	fallback func(item T, err error) R,
) R {
	tctx := ctx
	if timeout > 0 {
		var cancel context.CancelFunc
		tctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	done := make(chan outcome[R], 1)
	go func() {
		v, err := fn(tctx, item)
		done <- outcome[R]{value: v, err: err}
	}()

	return await(tctx, done, item, fallback)
}

// await prefers a finished result over the timeout when both are ready.
func await[T, R any](ctx context.Context, done <-chan outcome[R], item T, fallback func(item T, err error) R) R {
	select {
	case o := <-done:
		if o.err != nil {
			return fallback(item, o.err)
		}
		return o.value
	case <-ctx.Done():
		select {
		case o := <-done:
			if o.err == nil {
				return o.value
			}
		default:
		}
		return fallback(item, ctx.Err())
	}
}
