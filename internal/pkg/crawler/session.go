// Package crawler walks the catalog of a bucket and searches its collections
// for items intersecting a query rectangle.
package crawler

import (
	"context"
	"fmt"
	"runtime/debug"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/internetarchive/linzstac/internal/pkg/fetcher"
	"github.com/internetarchive/linzstac/internal/pkg/log"
	"github.com/internetarchive/linzstac/internal/pkg/stac"
	"github.com/internetarchive/linzstac/internal/pkg/stats"
	"github.com/internetarchive/linzstac/internal/pkg/store"
	"github.com/internetarchive/linzstac/internal/pkg/tiles"
	"github.com/internetarchive/linzstac/internal/pkg/utils"
)

// Options configures a crawl session.
type Options struct {
	// Bucket names the bucket in logs and metrics.
	Bucket string
	// ConcurrencyMultiplier scales the permit pool, 0 means 1.
	ConcurrencyMultiplier int
	// Access is passed to the store on every fetch.
	Access store.AccessOptions
	// Display renders search progress, nil discards it.
	Display stats.Display
	// ReportInterval is the period of progress reports, 0 means one second.
	ReportInterval time.Duration
}

// Session holds the collections of one bucket and searches them.
// SetCollectionFilter must not be called while a search is running.
type Session struct {
	id             string
	catalogURL     string
	fetcher        *fetcher.BoundedFetcher
	reporter       *stats.Reporter
	reportInterval time.Duration
	logger         *log.FieldedLogger

	collections []*stac.Collection
	working     []*stac.Collection
	filtered    bool
}

// Initialize reads the root catalog at catalogURL and every collection it
// links to. Only a failure to read the root catalog is returned, collections
// that cannot be read are logged and left out.
func Initialize(ctx context.Context, s store.CatalogStore, catalogURL string, opts Options) (*Session, error) {
	id := uuid.New().String()
	logger := log.NewFieldedLogger(&log.Fields{
		"component": "crawler",
	}).With("session", id, "bucket", opts.Bucket)

	if opts.ReportInterval <= 0 {
		opts.ReportInterval = time.Second
	}

	f := fetcher.New(s, opts.Access, fetcher.Capacity(opts.ConcurrencyMultiplier), logger)

	catalog, err := f.Catalog(ctx, catalogURL)
	if err != nil {
		return nil, fmt.Errorf("%w %s: %w", ErrRootCatalog, catalogURL, err)
	}

	childHrefs := utils.DedupeURLs(catalog.ChildHrefs())
	logger.Debug("root catalog read", "catalog", catalog.ID, "children", len(childHrefs))

	collections := f.Collections(ctx, childHrefs, nil)
	slices.SortFunc(collections, func(a, b *stac.Collection) int {
		return strings.Compare(a.Href, b.Href)
	})

	reporter := stats.NewReporter(opts.Bucket, opts.Display)
	reporter.Reset(len(collections))
	reporter.Stop()

	logger.Info("catalog loaded",
		"collections", len(collections),
		"failed", len(childHrefs)-len(collections),
		"permits", f.Capacity())

	return &Session{
		id:             id,
		catalogURL:     catalogURL,
		fetcher:        f,
		reporter:       reporter,
		reportInterval: opts.ReportInterval,
		logger:         logger,
		collections:    collections,
	}, nil
}

// ID returns the identifier of the session used in logs.
func (s *Session) ID() string {
	return s.id
}

// Capacity returns the size of the permit pool.
func (s *Session) Capacity() int {
	return s.fetcher.Capacity()
}

// Reporter returns the progress reporter of the session.
func (s *Session) Reporter() *stats.Reporter {
	return s.reporter
}

// Collections returns every collection of the bucket.
func (s *Session) Collections() []*stac.Collection {
	return slices.Clone(s.collections)
}

// Working returns the collections a search runs over: the filtered view
// when a filter was set, every collection otherwise.
func (s *Session) Working() []*stac.Collection {
	if s.filtered {
		return slices.Clone(s.working)
	}
	return slices.Clone(s.collections)
}

// Close releases the progress display.
func (s *Session) Close() {
	s.reporter.Close()
}

// GetAllTiles searches every collection of the working set without spatial filtering.
func (s *Session) GetAllTiles(ctx context.Context) []tiles.TileGroup {
	groups, _ := s.GetTiles(ctx)
	return groups
}

// GetTiles searches the working set for items overlapping the rectangle
// spanned by corners. One corner is a point query, none disables spatial
// filtering. Groups are returned finest resolution first.
func (s *Session) GetTiles(ctx context.Context, corners ...Coordinate) ([]tiles.TileGroup, error) {
	rect, err := QueryRect(corners...)
	if err != nil {
		return nil, err
	}

	working := s.Working()

	s.reporter.Reset(len(working))
	loop := s.reporter.Start(s.reportInterval)

	logger := s.logger
	if rect != nil {
		logger = logger.With("rect", rect.String())
	}
	logger.Info("search started", "collections", len(working))

	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		matches []tiles.MatchingItems
	)

	for _, collection := range working {
		wg.Add(1)
		go func(collection *stac.Collection) {
			defer wg.Done()

			match := s.searchCollection(ctx, collection, rect)
			if match == nil {
				return
			}

			mu.Lock()
			matches = append(matches, *match)
			mu.Unlock()
		}(collection)
	}

	wg.Wait()

	s.reporter.Stop()
	loop.Stop()

	logger.Info("search finished", "matches", len(matches), "progress", s.reporter.Snapshot().String())

	return tiles.GetHrefs(matches), nil
}

// searchCollection returns the items of collection overlapping rect, or nil
// when none does. A panic is logged and treated as no match.
func (s *Session) searchCollection(ctx context.Context, collection *stac.Collection, rect *stac.BBox) (match *tiles.MatchingItems) {
	logger := s.logger.With("collection", collection.ID)

	defer s.reporter.CollectionRead()
	defer func() {
		if r := recover(); r != nil {
			logger.Error("collection search panicked", "panic", r, "stack", string(debug.Stack()))
			match = nil
		}
	}()

	if rect != nil && !collection.Overlaps(*rect) {
		return nil
	}

	hrefs := utils.DedupeURLs(collection.ItemHrefs())
	s.reporter.URLsTotalAdd(len(hrefs))

	var matched []*stac.Item
	for _, item := range s.fetcher.Items(ctx, hrefs, s.reporter) {
		if rect == nil || (item.BBox != nil && item.BBox.Overlaps(*rect)) {
			matched = append(matched, item)
		}
	}

	logger.Debug("collection searched", "items", len(hrefs), "matched", len(matched))

	if len(matched) == 0 {
		return nil
	}

	return &tiles.MatchingItems{
		Title: collection.Name(),
		Items: matched,
	}
}
