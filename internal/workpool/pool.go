// Package workpool bounds concurrent fan-out to rate-limited upstreams.
package workpool

import (
	"context"

	"github.com/grivax/grivax-api/internal/metrics"
	"golang.org/x/sync/errgroup"
)

// Pool is a named concurrency limit. A Pool holds no goroutines between calls and
// can be shared by any number of callers; each Map call gets its own limit window.
type Pool struct {
	name string
	size int
}

func New(name string, size int) *Pool {
	if size < 1 {
		size = 1
	}
	return &Pool{name: name, size: size}
}

func (p *Pool) Name() string { return p.name }
func (p *Pool) Size() int    { return p.size }

// Map runs fn over items with at most p.Size() calls in flight and returns the
// results in input order. fn must handle its own failures; Map stops scheduling
// new items once ctx is done and leaves their results as the zero value.
func Map[T, R any](ctx context.Context, p *Pool, items []T, fn func(ctx context.Context, i int, item T) R) []R {
	results := make([]R, len(items))
	if len(items) == 0 {
		return results
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(p.size)

	inFlight := metrics.PoolInFlight.WithLabelValues(p.name)
	tasks := metrics.PoolTasks.WithLabelValues(p.name)

	for i, item := range items {
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			inFlight.Inc()
			defer inFlight.Dec()
			tasks.Inc()
			results[i] = fn(gctx, i, item)
			return nil
		})
	}
	_ = g.Wait()
	return results
}

// Each is Map for functions that can fail. It returns the first error after all
// started calls finish; results of failed items are the zero value.
func Each[T any](ctx context.Context, p *Pool, items []T, fn func(ctx context.Context, i int, item T) error) error {
	errs := Map(ctx, p, items, fn)
	for _, err := range errs {
		if err != nil {
			return err
		}
	}
	return ctx.Err()
}
