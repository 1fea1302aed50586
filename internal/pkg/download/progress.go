package download

import (
	"fmt"
	"io"
	"sync"
	"sync/atomic"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/gosuri/uilive"
	"github.com/gosuri/uitable"
	"github.com/internetarchive/linzstac/internal/pkg/stats"
	"github.com/paulbellamy/ratecounter"
)

type transfer struct {
	href string
	path string
	name string

	size    atomic.Int64
	written atomic.Int64
	done    atomic.Bool
}

type progress struct {
	transfers []*transfer
	rate      *ratecounter.RateCounter
	screen    *uilive.Writer
	live      bool
	mu        sync.Mutex
}

func newProgress(transfers []*transfer, out io.Writer, live bool) *progress {
	p := &progress{
		transfers: transfers,
		rate:      ratecounter.NewRateCounter(time.Second),
		live:      live,
	}

	if live {
		p.screen = uilive.New()
		p.screen.Out = out
	}

	return p
}

// start redraws the table every interval when live. The returned function
// stops the redraw and renders a last time.
func (p *progress) start(interval time.Duration) func() {
	if !p.live {
		return func() {}
	}

	done := make(chan struct{})
	stopped := make(chan struct{})

	go func() {
		defer close(stopped)

		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-done:
				return
			case <-ticker.C:
				p.render()
			}
		}
	}()

	return func() {
		close(done)
		<-stopped
		p.render()
	}
}

func (p *progress) render() {
	p.mu.Lock()
	defer p.mu.Unlock()

	table := uitable.New()
	table.MaxColWidth = 80

	var written, size int64
	for _, t := range p.transfers {
		written += t.written.Load()
		size += t.size.Load()
		table.AddRow("  "+t.name, formatProgress(t.written.Load(), t.size.Load()))
	}

	table.AddRow("", "")
	table.AddRow("  Total:", formatProgress(written, size))
	table.AddRow("  Rate:", humanize.Bytes(uint64(p.rate.Rate()))+"/s")

	fmt.Fprintln(p.screen, table.String())
	p.screen.Flush()
}

func formatProgress(written, size int64) string {
	if size <= 0 {
		return humanize.Bytes(uint64(written))
	}
	return fmt.Sprintf("%s / %s (%d%%)", humanize.Bytes(uint64(written)), humanize.Bytes(uint64(size)), written*100/size)
}

// counter returns a writer counting the bytes of t.
func (p *progress) counter(t *transfer, bucket string) io.Writer {
	return &progressWriter{transfer: t, rate: p.rate, bucket: bucket}
}

type progressWriter struct {
	transfer *transfer
	rate     *ratecounter.RateCounter
	bucket   string
}

func (w *progressWriter) Write(b []byte) (int, error) {
	n := len(b)
	w.transfer.written.Add(int64(n))
	w.rate.Incr(int64(n))
	stats.DownloadedBytesAdd(w.bucket, n)
	return n, nil
}
