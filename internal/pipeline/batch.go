package pipeline

import (
	"context"
	"errors"

	"golang.org/x/sync/errgroup"

	"github.com/Khootz/FYP2026/internal/openrice"
)

// ErrPoolClosed is returned by Acquire after Close.
var ErrPoolClosed = errors.New("pipeline: pool closed")

// BatchItem is one query's outcome within a batch. Err carries a message
// instead of an error value because items cross the API boundary as JSON.
type BatchItem struct {
	Query      string               `json:"query"`
	Restaurant *openrice.Restaurant `json:"restaurant,omitempty"`
	CacheHit   bool                 `json:"cache_hit"`
	Err        string               `json:"error,omitempty"`
}

// Pool hands out resolvers to concurrent batch work. Each resolver owns its
// own session, so the pool size is the hard concurrency limit.
type Pool struct {
	resolvers chan *Resolver
	size      int
}

// NewPool takes ownership of the given resolvers; Close releases them all.
func NewPool(resolvers []*Resolver) *Pool {
	ch := make(chan *Resolver, len(resolvers))
	for _, r := range resolvers {
		ch <- r
	}
	return &Pool{resolvers: ch, size: len(resolvers)}
}

// Size reports the pool's concurrency limit.
func (p *Pool) Size() int { return p.size }

// Acquire blocks until a resolver is free or ctx is done.
func (p *Pool) Acquire(ctx context.Context) (*Resolver, error) {
	select {
	case r, ok := <-p.resolvers:
		if !ok {
			return nil, ErrPoolClosed
		}
		return r, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Release returns a resolver to the pool.
func (p *Pool) Release(r *Resolver) {
	p.resolvers <- r
}

// Close drains the pool and closes every resolver's session. Callers must
// have released all resolvers first.
func (p *Pool) Close() error {
	close(p.resolvers)
	var errs []error
	for r := range p.resolvers {
		if err := r.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Resolve runs a single query on any free resolver.
func (p *Pool) Resolve(ctx context.Context, query string, withDetail bool) (*openrice.Restaurant, Meta, error) {
	r, err := p.Acquire(ctx)
	if err != nil {
		return nil, Meta{}, err
	}
	defer p.Release(r)
	return r.Resolve(ctx, query, withDetail)
}

// ResolveBatch runs the queries across the pooled resolvers and returns
// items in input order. Per-item failures land in the item; only caller
// cancellation aborts the batch.
func (p *Pool) ResolveBatch(ctx context.Context, queries []string, withDetail bool) ([]BatchItem, error) {
	items := make([]BatchItem, len(queries))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(p.size)

	for i, query := range queries {
		g.Go(func() error {
			items[i] = BatchItem{Query: query}

			r, err := p.Acquire(gctx)
			if err != nil {
				return err
			}
			defer p.Release(r)

			result, meta, err := r.Resolve(gctx, query, withDetail)
			if err != nil {
				if gctx.Err() != nil {
					return err
				}
				items[i].Err = err.Error()
				return nil
			}
			items[i].Restaurant = result
			items[i].CacheHit = meta.CacheHit
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return items, nil
}
