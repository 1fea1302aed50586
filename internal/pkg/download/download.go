// Package download fetches the assets of a tile group into a local cache.
package download

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"os/signal"
	"path"
	"path/filepath"
	"sync"
	"syscall"
	"time"

	"github.com/internetarchive/linzstac/internal/pkg/log"
	"github.com/internetarchive/linzstac/internal/pkg/stats"
	"github.com/internetarchive/linzstac/internal/pkg/store"
	"github.com/internetarchive/linzstac/internal/pkg/tiles"
	"github.com/internetarchive/linzstac/internal/pkg/utils"
	"github.com/spf13/afero"
)

// Options configures a download pipeline.
type Options struct {
	// CacheDir is the root of the output directories, "." when empty.
	CacheDir string
	// Bucket names the bucket in metrics.
	Bucket string
	// Region expands s3:// asset locations.
	Region string
	// HTTP configures the download client. Its timeout is ignored, a
	// download lasts as long as the transfer does.
	HTTP store.HTTPOptions
	// Fs is where files are written, the OS file system when nil.
	Fs afero.Fs
	// Source is where local asset paths are read from, the OS file system when nil.
	Source afero.Fs
	// Out receives printed locations, progress and the summary, os.Stdout when nil.
	Out io.Writer
	// Live redraws a progress table on Out instead of logging each file.
	Live bool
	// Signals cancel the downloads, os.Interrupt and SIGTERM when nil.
	Signals []os.Signal
}

// Outcome summarizes a run of the pipeline.
type Outcome struct {
	CacheHits   int
	Downloaded  int
	Failed      int
	Interrupted bool
	// Paths are the local files of the group, cached or downloaded, in asset order.
	Paths []string
}

// Pipeline downloads tile groups.
type Pipeline struct {
	opts   Options
	client *http.Client
	fs     afero.Fs
	source afero.Fs
	out    io.Writer
	logger *log.FieldedLogger
}

// New returns a pipeline configured by opts.
func New(opts Options) *Pipeline {
	httpOpts := opts.HTTP
	httpOpts.Timeout = 0

	p := &Pipeline{
		opts:   opts,
		client: store.NewHTTPClient(httpOpts),
		fs:     opts.Fs,
		source: opts.Source,
		out:    opts.Out,
		logger: log.NewFieldedLogger(&log.Fields{
			"component": "download",
		}),
	}

	if p.fs == nil {
		p.fs = afero.NewOsFs()
	}
	if p.source == nil {
		p.source = afero.NewOsFs()
	}
	if p.out == nil {
		p.out = os.Stdout
	}
	if len(p.opts.Signals) == 0 {
		p.opts.Signals = []os.Signal{os.Interrupt, syscall.SIGTERM}
	}

	return p
}

// Close releases idle connections.
func (p *Pipeline) Close() {
	p.client.CloseIdleConnections()
}

// OutputDir returns the directory the files of a group titled title are written to.
func (p *Pipeline) OutputDir(title string) string {
	root := p.opts.CacheDir
	if root == "" {
		root = "."
	}
	return filepath.Join(root, utils.SanitizeFilename(title))
}

// Process handles the group at index. When download is false the asset
// locations are printed, otherwise every asset missing from the cache is
// downloaded concurrently. Cancelling ctx or receiving one of the configured
// signals interrupts the downloads, finished files are kept as they are.
func (p *Pipeline) Process(ctx context.Context, groups []tiles.TileGroup, index int, download bool) (*Outcome, error) {
	if index < 0 || index >= len(groups) {
		return nil, fmt.Errorf("%w: %d not in [0, %d)", ErrIndexOutOfRange, index, len(groups))
	}

	group := groups[index]

	if !download {
		for _, href := range group.Hrefs {
			fmt.Fprintln(p.out, href)
		}
		return &Outcome{}, nil
	}

	outputDir := p.OutputDir(group.Title)
	if err := p.fs.MkdirAll(outputDir, 0o755); err != nil {
		return nil, fmt.Errorf("unable to create output directory %s: %w", outputDir, err)
	}

	var (
		outcome   = &Outcome{}
		transfers []*transfer
		pending   []*transfer
	)

	for _, href := range group.Hrefs {
		name, err := fileName(href)
		if err != nil {
			p.logger.Warn("unable to derive a file name", "href", href, "err", err)
			outcome.Failed++
			continue
		}

		t := &transfer{href: href, path: filepath.Join(outputDir, name), name: name}
		transfers = append(transfers, t)

		if utils.FileExists(p.fs, t.path) {
			t.done.Store(true)
			outcome.CacheHits++
			stats.CacheHitsIncr(p.opts.Bucket)
			continue
		}

		pending = append(pending, t)
	}

	if len(pending) > 0 {
		p.run(ctx, pending, outcome)
	}

	for _, t := range transfers {
		if t.done.Load() {
			outcome.Paths = append(outcome.Paths, t.path)
		}
	}

	if outcome.Interrupted {
		fmt.Fprintln(p.out, "Download interrupted")
		p.logger.Warn("download interrupted",
			"group", group.Title,
			"downloaded", outcome.Downloaded,
			"pending", len(pending)-outcome.Downloaded-outcome.Failed)
		return outcome, nil
	}

	fmt.Fprintf(p.out, "%d files found in cache, %d files downloaded\n", outcome.CacheHits, outcome.Downloaded)
	if outcome.Failed > 0 {
		p.logger.Warn("some files could not be downloaded", "group", group.Title, "failed", outcome.Failed)
	}

	return outcome, nil
}

// run downloads every transfer concurrently and waits for all of them, or
// for an interrupt.
func (p *Pipeline) run(ctx context.Context, transfers []*transfer, outcome *Outcome) {
	ctx, stop := signal.NotifyContext(ctx, p.opts.Signals...)
	defer stop()

	progress := newProgress(transfers, p.out, p.opts.Live)
	renderDone := progress.start(250 * time.Millisecond)

	var (
		wg sync.WaitGroup
		mu sync.Mutex
	)

	for _, t := range transfers {
		wg.Add(1)
		go func(t *transfer) {
			defer wg.Done()

			err := p.fetch(ctx, t, progress)

			mu.Lock()
			defer mu.Unlock()

			if err != nil {
				if ctx.Err() != nil {
					return
				}
				outcome.Failed++
				p.logger.Warn("unable to download file", "href", t.href, "err", err)
				return
			}

			t.done.Store(true)
			outcome.Downloaded++
			stats.DownloadedFilesIncr(p.opts.Bucket)
			if !p.opts.Live {
				p.logger.Info("file downloaded", "path", t.path, "size", t.written.Load())
			}
		}(t)
	}

	wg.Wait()
	renderDone()

	if ctx.Err() != nil {
		outcome.Interrupted = true
	}
}

func (p *Pipeline) fetch(ctx context.Context, t *transfer, progress *progress) error {
	body, size, err := p.open(ctx, t.href)
	if err != nil {
		return err
	}
	defer body.Close()

	t.size.Store(size)

	f, err := p.fs.Create(t.path)
	if err != nil {
		return err
	}

	_, err = io.Copy(f, io.TeeReader(body, progress.counter(t, p.opts.Bucket)))
	if closeErr := f.Close(); err == nil {
		err = closeErr
	}

	// An existing file is a cache hit, only an interrupted transfer may leave one behind.
	if err != nil && ctx.Err() == nil {
		if removeErr := p.fs.Remove(t.path); removeErr != nil {
			p.logger.Warn("unable to remove incomplete file", "path", t.path, "err", removeErr)
		}
	}

	return err
}

// open returns the content of href: remote locations are requested over
// HTTP, anything else is read from the source file system.
func (p *Pipeline) open(ctx context.Context, href string) (io.ReadCloser, int64, error) {
	if !store.IsRemoteLocator(href) {
		f, err := p.source.Open(href)
		if err != nil {
			return nil, 0, err
		}
		var size int64
		if info, err := f.Stat(); err == nil {
			size = info.Size()
		}
		return f, size, nil
	}

	location, err := store.HTTPLocation(href, p.opts.Region)
	if err != nil {
		return nil, 0, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, location, nil)
	if err != nil {
		return nil, 0, err
	}
	if p.opts.HTTP.UserAgent != "" {
		req.Header.Set("User-Agent", p.opts.HTTP.UserAgent)
	}

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, 0, err
	}

	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		return nil, 0, fmt.Errorf("unexpected status code %d for %s", resp.StatusCode, location)
	}

	return resp.Body, resp.ContentLength, nil
}

// fileName returns the last path element of href.
func fileName(href string) (string, error) {
	p := href
	if store.IsRemoteLocator(href) {
		u, err := url.Parse(href)
		if err != nil {
			return "", err
		}
		p = u.Path
	}

	name := path.Base(filepath.ToSlash(p))
	if name == "." || name == "/" || name == "" {
		return "", fmt.Errorf("no file name in %q", href)
	}

	return utils.SanitizeFilename(name), nil
}
