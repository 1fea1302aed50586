package controler

import (
	"bytes"
	"context"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/internetarchive/linzstac/internal/pkg/config"
	"github.com/internetarchive/linzstac/internal/pkg/crawler"
	"github.com/internetarchive/linzstac/internal/pkg/gdal"
	"github.com/internetarchive/linzstac/internal/pkg/store"
	"github.com/internetarchive/linzstac/internal/pkg/tiles"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

var fixture = map[string]string{
	"/bucket/catalog.json": `{"id": "root", "links": [
		{"rel": "child", "href": "./southland/collection.json"},
		{"rel": "child", "href": "./otago/collection.json"}
	]}`,
	"/bucket/southland/collection.json": `{
		"id": "southland", "title": "Southland LiDAR 1m DEM (2020-2024)",
		"extent": {"spatial": {"bbox": [[166, -47, 169, -44]]}},
		"links": [{"rel": "item", "href": "./a.json"}]
	}`,
	"/bucket/southland/a.json": `{"id": "a", "bbox": [166.5, -45.5, 167.5, -44.5], "assets": {"dem": {"href": "./a.tiff"}}}`,
	"/bucket/southland/a.tiff": "southland tile",
	"/bucket/otago/collection.json": `{
		"id": "otago", "title": "Otago 8m DEM (2012)",
		"extent": {"spatial": {"bbox": [[166, -47, 171, -44]]}},
		"links": [{"rel": "item", "href": "./b.json"}, {"rel": "item", "href": "./c.json"}]
	}`,
	"/bucket/otago/b.json": `{"id": "b", "bbox": [166, -46, 168, -44], "assets": {"dem": {"href": "./b.tiff"}}}`,
	"/bucket/otago/c.json": `{"id": "c", "bbox": [166, -46, 168, -44], "assets": {"dem": {"href": "./c.tiff"}}}`,
	"/bucket/otago/b.tiff": "otago tile b",
	"/bucket/otago/c.tiff": "otago tile c",
}

func newFixtureFs(t *testing.T) afero.Fs {
	t.Helper()

	fs := afero.NewMemMapFs()
	for path, content := range fixture {
		require.NoError(t, afero.WriteFile(fs, path, []byte(content), 0o644))
	}

	return fs
}

func newTestConfig() *config.Config {
	return &config.Config{
		Bucket:         "elevation",
		BucketURL:      "/bucket",
		Index:          -1,
		CacheDir:       "/cache",
		InitRetries:    0,
		InitRetryDelay: time.Millisecond,
		SkipSignature:  true,
		Region:         config.DefaultRegion,
		Spatial:        &config.Spatial{Lat1: -45, Lon1: 167},
	}
}

type countingStore struct {
	store.CatalogStore
	calls atomic.Int32
}

func (s *countingStore) Get(ctx context.Context, href string, opts store.AccessOptions, dst any) error {
	s.calls.Add(1)
	return s.CatalogStore.Get(ctx, href, opts, dst)
}

func TestRunDownloadsSelectedGroup(t *testing.T) {
	fs := newFixtureFs(t)
	out := &bytes.Buffer{}

	cfg := newTestConfig()
	cfg.First = true
	cfg.Download = true
	cfg.ResultsFile = "/results.yaml"
	cfg.VRTPath = "/cache/mosaic.vrt"

	previous := gdal.Binary
	gdal.Binary = "linzstac-test-no-such-binary"
	t.Cleanup(func() { gdal.Binary = previous })

	err := Run(context.Background(), cfg, Env{Out: out, Fs: fs, Store: store.NewFileStore(fs)})
	require.NoError(t, err, "a failed virtual raster is not fatal")

	assert.Contains(t, out.String(), "0. Southland LiDAR 1m DEM (2020-2024) - Number of Tiles: 1\n")
	assert.Contains(t, out.String(), "1. Otago 8m DEM (2012) - Number of Tiles: 2\n")
	assert.Contains(t, out.String(), "0 files found in cache, 1 files downloaded")

	content, err := afero.ReadFile(fs, "/cache/Southland LiDAR 1m DEM (2020-2024)/a.tiff")
	require.NoError(t, err)
	assert.Equal(t, "southland tile", string(content))

	data, err := afero.ReadFile(fs, "/results.yaml")
	require.NoError(t, err)

	var results []tiles.TileGroup
	require.NoError(t, yaml.Unmarshal(data, &results))
	require.Len(t, results, 2)
	assert.Equal(t, "Southland LiDAR 1m DEM (2020-2024)", results[0].Title)
	assert.Equal(t, []string{"/bucket/southland/a.tiff"}, results[0].Hrefs)
}

func TestRunBySizeWithoutDownload(t *testing.T) {
	fs := newFixtureFs(t)
	out := &bytes.Buffer{}

	cfg := newTestConfig()
	cfg.BySize = true

	require.NoError(t, Run(context.Background(), cfg, Env{Out: out, Fs: fs, Store: store.NewFileStore(fs)}))

	assert.True(t, strings.HasSuffix(out.String(), "/bucket/otago/b.tiff\n/bucket/otago/c.tiff\n"))

	exists, err := afero.DirExists(fs, "/cache")
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestRunPrompt(t *testing.T) {
	fs := newFixtureFs(t)
	out := &bytes.Buffer{}

	err := Run(context.Background(), newTestConfig(), Env{
		In:    strings.NewReader("1\n"),
		Out:   out,
		Fs:    fs,
		Store: store.NewFileStore(fs),
	})
	require.NoError(t, err)

	assert.Contains(t, out.String(), "Please choose a dataset (enter index): ")
	assert.Contains(t, out.String(), "/bucket/otago/c.tiff")
}

func TestRunNoResults(t *testing.T) {
	fs := newFixtureFs(t)
	out := &bytes.Buffer{}

	cfg := newTestConfig()
	cfg.Spatial = &config.Spatial{Lat1: -90, Lon1: -180}

	require.NoError(t, Run(context.Background(), cfg, Env{Out: out, Fs: fs, Store: store.NewFileStore(fs)}))
	assert.Equal(t, "No results found\n", out.String())
}

func TestRunNoFilter(t *testing.T) {
	fs := newFixtureFs(t)

	cfg := newTestConfig()
	cfg.Spatial = nil

	err := Run(context.Background(), cfg, Env{Out: &bytes.Buffer{}, Fs: fs, Store: store.NewFileStore(fs)})
	assert.ErrorIs(t, err, crawler.ErrNoFilterProvided)
}

func TestRunRetriesInitialization(t *testing.T) {
	fs := afero.NewMemMapFs()
	s := &countingStore{CatalogStore: store.NewFileStore(fs)}

	cfg := newTestConfig()
	cfg.InitRetries = 2

	err := Run(context.Background(), cfg, Env{Out: &bytes.Buffer{}, Fs: fs, Store: s})
	assert.ErrorIs(t, err, crawler.ErrRootCatalog)
	assert.ErrorIs(t, err, store.ErrNotFound)
	assert.Equal(t, int32(3), s.calls.Load())
}

func TestRunUnknownBucket(t *testing.T) {
	cfg := newTestConfig()
	cfg.BucketURL = ""
	cfg.Bucket = "bathymetry"

	err := Run(context.Background(), cfg, Env{Out: &bytes.Buffer{}})
	assert.ErrorIs(t, err, config.ErrUnknownBucket)
}
