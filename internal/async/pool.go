// Package async runs per-document work on a bounded set of goroutines.
package async

import (
	"context"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/joseph-ayodele/docextract/internal/common"
)

type Pool struct {
	logger  *slog.Logger
	workers int
	timeout time.Duration
}

type Option func(*Pool)

func WithWorkers(n int) Option {
	return func(p *Pool) {
		if n > 0 {
			p.workers = n
		}
	}
}

// WithDocumentTimeout bounds the context handed to each item; zero disables it.
func WithDocumentTimeout(d time.Duration) Option {
	return func(p *Pool) {
		if d >= 0 {
			p.timeout = d
		}
	}
}

func NewPool(logger *slog.Logger, opts ...Option) *Pool {
	if logger == nil {
		logger = slog.Default()
	}
	p := &Pool{
		logger:  logger,
		workers: 4,
		timeout: 2 * time.Minute,
	}
	for _, o := range opts {
		o(p)
	}
	return p
}

func (p *Pool) Workers() int { return p.workers }

// Map calls fn for every item and returns the results in input order.
// fn must report per-item failures in its result; the only error Map returns is ctx's,
// in which case items that had not started are left as zero values.
func Map[T, R any](ctx context.Context, p *Pool, items []T, fn func(ctx context.Context, i int, item T) R) ([]R, error) {
	results := make([]R, len(items))
	var g errgroup.Group
	g.SetLimit(p.workers)

	started := time.Now()
	for i, item := range items {
		if ctx.Err() != nil {
			break
		}
		g.Go(func() error {
			itemCtx, cancel := common.WithTimeout(ctx, p.timeout)
			defer cancel()
			results[i] = fn(itemCtx, i, item)
			return nil
		})
	}
	_ = g.Wait()

	if err := ctx.Err(); err != nil {
		p.logger.Warn("pool.cancelled", "items", len(items), "err", err)
		return results, err
	}
	p.logger.Debug("pool.done",
		"items", len(items),
		"workers", p.workers,
		"elapsed_ms", time.Since(started).Milliseconds(),
	)
	return results, nil
}
