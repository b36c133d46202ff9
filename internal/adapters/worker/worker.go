// Package worker runs independent fetches on a bounded pool of goroutines.
// Results keep the order of the input so callers can process them
// deterministically.
package worker

import (
	"context"
	"errors"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/okian/soltify/pkg/logger"
	"github.com/okian/soltify/pkg/metrics"
)

const defaultPoolSize = 4

// Pool bounds how many tasks run at once.
type Pool struct {
	name   string
	size   int
	logger logger.Logger
}

// NewPool creates a pool named name, used for logs and metrics.
func NewPool(name string, opts ...Option) *Pool {
	p := &Pool{
		name:   name,
		size:   defaultPoolSize,
		logger: logger.Nop(),
	}

	for _, opt := range opts {
		opt(p)
	}

	return p
}

// Size returns the number of workers.
func (p *Pool) Size() int { return p.size }

// Map calls fn for every item on the pool and returns the results in input
// order. The first failure cancels the remaining tasks and is returned;
// results of a failed Map are not usable.
func Map[In, Out any](ctx context.Context, p *Pool, items []In, fn func(context.Context, In) (Out, error)) ([]Out, error) {
	out := make([]Out, len(items))
	if len(items) == 0 {
		return out, nil
	}

	workers := min(p.size, len(items))
	metrics.UpdateWorkerActive(p.name, workers)
	defer metrics.UpdateWorkerActive(p.name, 0)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)

	for i := range items {
		i := i
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			start := time.Now()
			res, err := fn(gctx, items[i])
			if err != nil {
				metrics.RecordWorkerTask(p.name, outcome(err), time.Since(start))
				return err
			}
			metrics.RecordWorkerTask(p.name, "ok", time.Since(start))
			out[i] = res
			return nil
		})
	}

	err := g.Wait()
	if err == nil {
		err = ctx.Err()
	}
	if err != nil {
		p.logger.Debug(ctx, "pool stopped early", logger.String("pool", p.name), logger.Error(err))
		return nil, err
	}
	return out, nil
}

func outcome(err error) string {
	if errors.Is(err, context.Canceled) {
		return "canceled"
	}
	return "error"
}
