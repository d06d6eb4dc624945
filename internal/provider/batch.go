package provider

import (
	"context"
	"sync"

	"golang.org/x/sync/errgroup"
)

// batchReadPool runs fn over keys with bounded concurrency, the same
// errgroup.SetLimit pattern the resolution engine uses for per-provider
// fan-out (spec §5: cooperative suspension on I/O, a single lock acquired
// only on insert into the result collector).
func batchReadPool(ctx context.Context, keys []string, maxConcurrency int, fn func(context.Context, string) Result) (map[string]Result, error) {
	if maxConcurrency <= 0 {
		maxConcurrency = 4
	}

	results := make(map[string]Result, len(keys))
	var mu sync.Mutex

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(maxConcurrency)

	for _, key := range keys {
		key := key
		g.Go(func() error {
			r := fn(gctx, key)
			mu.Lock()
			results[key] = r
			mu.Unlock()
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	return results, nil
}
