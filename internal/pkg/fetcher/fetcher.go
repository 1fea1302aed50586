// Package fetcher bounds the number of catalog documents fetched at once.
package fetcher

import (
	"context"
	"runtime"
	"sync"

	"github.com/internetarchive/linzstac/internal/pkg/log"
	"github.com/internetarchive/linzstac/internal/pkg/stac"
	"github.com/internetarchive/linzstac/internal/pkg/stats"
	"github.com/internetarchive/linzstac/internal/pkg/store"
	"github.com/remeh/sizedwaitgroup"
)

// BoundedFetcher fetches documents through a store while holding one permit
// of a fixed-size pool per request. The pool is shared by every caller.
type BoundedFetcher struct {
	store    store.CatalogStore
	opts     store.AccessOptions
	pool     sizedwaitgroup.SizedWaitGroup
	capacity int
	logger   *log.FieldedLogger
}

// Capacity returns the permit count for multiplier: the number of CPUs
// multiplied by multiplier (1 when unset), at least 1.
func Capacity(multiplier int) int {
	if multiplier <= 0 {
		multiplier = 1
	}
	return max(runtime.NumCPU()*multiplier, 1)
}

// New returns a fetcher reading from s with a pool of capacity permits.
func New(s store.CatalogStore, opts store.AccessOptions, capacity int, logger *log.FieldedLogger) *BoundedFetcher {
	capacity = max(capacity, 1)

	if logger == nil {
		logger = log.NewFieldedLogger(&log.Fields{
			"component": "fetcher",
		})
	}

	return &BoundedFetcher{
		store:    s,
		opts:     opts,
		pool:     sizedwaitgroup.New(capacity),
		capacity: capacity,
		logger:   logger,
	}
}

// Capacity returns the size of the permit pool.
func (f *BoundedFetcher) Capacity() int {
	return f.capacity
}

// Catalog fetches the root catalog and resolves its links. It does not take a
// permit: it runs alone, before any fan-out.
func (f *BoundedFetcher) Catalog(ctx context.Context, href string) (*stac.Catalog, error) {
	catalog := &stac.Catalog{}
	if err := f.store.Get(ctx, href, f.opts, catalog); err != nil {
		return nil, err
	}

	catalog.Href = href
	catalog.MakeLinksAbsolute()

	return catalog, nil
}

// Collections fetches every collection at hrefs. Failures are logged and left
// out of the result.
func (f *BoundedFetcher) Collections(ctx context.Context, hrefs []string, reporter *stats.Reporter) []*stac.Collection {
	return fetchAll(ctx, f, hrefs, reporter, false, func(href string, c *stac.Collection) {
		c.Href = href
		c.MakeLinksAbsolute()
	})
}

// Items fetches every item at hrefs. Every attempt, successful or not, is
// recorded as a read URL on reporter. Failures are logged and left out of the result.
func (f *BoundedFetcher) Items(ctx context.Context, hrefs []string, reporter *stats.Reporter) []*stac.Item {
	return fetchAll(ctx, f, hrefs, reporter, true, func(href string, item *stac.Item) {
		item.Href = href
		item.MakeLinksAbsolute()
	})
}

func fetchAll[T any](ctx context.Context, f *BoundedFetcher, hrefs []string, reporter *stats.Reporter, countURLs bool, prepare func(string, *T)) []*T {
	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		results = make([]*T, 0, len(hrefs))
	)

	for _, href := range hrefs {
		wg.Add(1)
		go func(href string) {
			defer wg.Done()

			doc, err := fetchOne(ctx, f, href, reporter, countURLs, prepare)
			if err != nil {
				f.logger.Debug("unable to fetch document", "href", href, "err", err)
				return
			}

			mu.Lock()
			results = append(results, doc)
			mu.Unlock()
		}(href)
	}

	wg.Wait()

	return results
}

func fetchOne[T any](ctx context.Context, f *BoundedFetcher, href string, reporter *stats.Reporter, countURLs bool, prepare func(string, *T)) (*T, error) {
	f.pool.Add()
	if reporter != nil {
		reporter.WorkerStarted()
	}

	defer func() {
		if reporter != nil {
			if countURLs {
				reporter.URLRead()
			}
			reporter.WorkerFinished()
		}
		f.pool.Done()
	}()

	doc := new(T)
	if err := f.store.Get(ctx, href, f.opts, doc); err != nil {
		if reporter != nil {
			reporter.FetchFailed()
		}
		return nil, err
	}

	prepare(href, doc)

	return doc, nil
}
