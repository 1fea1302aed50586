// Package controler runs a search from the program configuration: it loads
// the bucket catalog, searches it, lets the user pick a result and downloads it.
package controler

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"sync/atomic"
	"time"

	"github.com/internetarchive/linzstac/internal/pkg/api"
	"github.com/internetarchive/linzstac/internal/pkg/config"
	"github.com/internetarchive/linzstac/internal/pkg/crawler"
	"github.com/internetarchive/linzstac/internal/pkg/download"
	"github.com/internetarchive/linzstac/internal/pkg/gdal"
	"github.com/internetarchive/linzstac/internal/pkg/log"
	"github.com/internetarchive/linzstac/internal/pkg/stats"
	"github.com/internetarchive/linzstac/internal/pkg/store"
	"github.com/internetarchive/linzstac/internal/pkg/tiles"
	"github.com/spf13/afero"
	"gopkg.in/yaml.v3"
)

// Env holds the outside world of a run, every nil field falls back to the
// process default.
type Env struct {
	In    io.Reader
	Out   io.Writer
	Fs    afero.Fs
	Store store.CatalogStore
}

func (e *Env) defaults() {
	if e.In == nil {
		e.In = os.Stdin
	}
	if e.Out == nil {
		e.Out = os.Stdout
	}
	if e.Fs == nil {
		e.Fs = afero.NewOsFs()
	}
}

// Start runs a search configured by the program configuration.
func Start(ctx context.Context) error {
	return Run(ctx, config.Get(), Env{})
}

// Run runs a search configured by cfg.
func Run(ctx context.Context, cfg *config.Config, env Env) error {
	env.defaults()

	logger := log.NewFieldedLogger(&log.Fields{
		"component": "controler",
	})

	base, err := bucketBase(cfg)
	if err != nil {
		return err
	}
	catalogURL := config.CatalogURL(base)

	httpOpts := store.DefaultHTTPOptions()
	httpOpts.Timeout = cfg.HTTPTimeout
	httpOpts.Proxy = cfg.Proxy

	access := store.AccessOptions{
		SkipSignature: cfg.SkipSignature,
		Region:        cfg.Region,
	}

	if env.Store == nil {
		env.Store = store.New(catalogURL, httpOpts)
	}

	var reporter atomic.Pointer[stats.Reporter]

	if cfg.Prometheus {
		if err := stats.InitPrometheus(cfg.PrometheusPrefix); err != nil && !errors.Is(err, stats.ErrStatsAlreadyInitialized) {
			return err
		}
	}

	if cfg.API {
		err := api.Start(api.Options{
			Addr:       ":" + cfg.APIPort,
			Prometheus: cfg.Prometheus,
			Snapshot: func() stats.Snapshot {
				if r := reporter.Load(); r != nil {
					return r.Snapshot()
				}
				return stats.Snapshot{}
			},
		})
		if err != nil {
			return fmt.Errorf("unable to start API server: %w", err)
		}
		defer api.Stop(5 * time.Second)
	}

	var display stats.Display = stats.NewLogDisplay(logger)
	if cfg.LiveStats {
		display = stats.NewLiveDisplay(env.Out)
	}

	session, err := initialize(ctx, env.Store, catalogURL, crawler.Options{
		Bucket:                cfg.Bucket,
		ConcurrencyMultiplier: cfg.ConcurrencyMultiplier,
		Access:                access,
		Display:               display,
	}, cfg.InitRetries, cfg.InitRetryDelay, logger)
	if err != nil {
		return err
	}
	defer session.Close()

	reporter.Store(session.Reporter())

	groups, err := crawler.Search(ctx, session, searchParams(cfg))
	if err != nil {
		return err
	}

	if cfg.ResultsFile != "" {
		if err := writeResults(env.Fs, cfg.ResultsFile, groups); err != nil {
			return err
		}
		logger.Info("results written", "path", cfg.ResultsFile, "groups", len(groups))
	}

	if len(groups) == 0 {
		fmt.Fprintln(env.Out, "No results found")
		return nil
	}

	for i, group := range groups {
		fmt.Fprintf(env.Out, "%d. %s - Number of Tiles: %d\n", i, group.Title, len(group.Hrefs))
	}

	indexes, err := selectIndexes(cfg, groups, env.In, env.Out)
	if err != nil {
		return err
	}

	pipeline := download.New(download.Options{
		CacheDir: cfg.CacheDir,
		Bucket:   cfg.Bucket,
		Region:   cfg.Region,
		HTTP:     httpOpts,
		Fs:       env.Fs,
		Source:   env.Fs,
		Out:      env.Out,
		Live:     cfg.LiveStats,
	})
	defer pipeline.Close()

	var paths []string
	for _, index := range indexes {
		outcome, err := pipeline.Process(ctx, groups, index, cfg.Download)
		if err != nil {
			return err
		}

		paths = append(paths, outcome.Paths...)

		if outcome.Interrupted {
			return nil
		}
	}

	if cfg.Download && cfg.VRTPath != "" {
		if err := gdal.BuildVRT(ctx, cfg.VRTPath, paths); err != nil {
			logger.Error("unable to build virtual raster", "path", cfg.VRTPath, "err", err)
		}
	}

	return nil
}

func bucketBase(cfg *config.Config) (string, error) {
	if cfg.BucketURL != "" {
		return cfg.BucketURL, nil
	}

	bucket, err := config.ParseBucket(cfg.Bucket)
	if err != nil {
		return "", err
	}

	return bucket.BaseURL(), nil
}

// initialize loads the catalog, retrying retries more times after delay.
func initialize(ctx context.Context, s store.CatalogStore, catalogURL string, opts crawler.Options, retries int, delay time.Duration, logger *log.FieldedLogger) (*crawler.Session, error) {
	var err error

	for attempt := 0; attempt <= retries; attempt++ {
		if attempt > 0 {
			logger.Warn("retrying catalog initialization", "attempt", attempt, "of", retries, "err", err)

			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(delay):
			}
		}

		var session *crawler.Session
		session, err = crawler.Initialize(ctx, s, catalogURL, opts)
		if err == nil {
			return session, nil
		}
	}

	return nil, err
}

func searchParams(cfg *config.Config) crawler.SearchParams {
	params := crawler.SearchParams{
		Include:        cfg.IncludeNames,
		Exclude:        cfg.ExcludeNames,
		AllCollections: cfg.AllCollections,
	}

	if cfg.Spatial != nil {
		params.Spatial = &crawler.SpatialParams{
			Lat:    cfg.Spatial.Lat1,
			Lon:    cfg.Spatial.Lon1,
			Lat2:   cfg.Spatial.Lat2,
			Lon2:   cfg.Spatial.Lon2,
			Width:  cfg.Spatial.Width,
			Height: cfg.Spatial.Height,
		}
	}

	return params
}

func writeResults(fs afero.Fs, path string, groups []tiles.TileGroup) error {
	if groups == nil {
		groups = []tiles.TileGroup{}
	}

	data, err := yaml.Marshal(groups)
	if err != nil {
		return fmt.Errorf("unable to encode results: %w", err)
	}

	if err := afero.WriteFile(fs, path, data, 0o644); err != nil {
		return fmt.Errorf("unable to write results to %s: %w", path, err)
	}

	return nil
}
