package stats

import (
	"fmt"
	"io"
	"sync"

	"github.com/dustin/go-humanize"
	"github.com/gosuri/uilive"
	"github.com/gosuri/uitable"
	"github.com/internetarchive/linzstac/internal/pkg/log"
)

// Display renders reporter snapshots.
type Display interface {
	Render(Snapshot)
	Close()
}

type discardDisplay struct{}

func (discardDisplay) Render(Snapshot) {}
func (discardDisplay) Close()          {}

// LogDisplay writes one log line per snapshot.
type LogDisplay struct {
	logger *log.FieldedLogger
}

// NewLogDisplay returns a display logging through logger.
func NewLogDisplay(logger *log.FieldedLogger) *LogDisplay {
	return &LogDisplay{logger: logger}
}

func (d *LogDisplay) Render(s Snapshot) {
	d.logger.Info("search progress",
		"collections", fmt.Sprintf("%d/%d", s.CollectionsRead, s.CollectionsTotal),
		"urls", fmt.Sprintf("%d/%d", s.URLsRead, s.URLsTotal),
		"urls_per_second", s.URLsPerSecond,
		"workers", s.OpenWorkers,
		"failures", s.FetchFailures,
	)
}

func (d *LogDisplay) Close() {}

// LiveDisplay redraws a table in place on a terminal.
type LiveDisplay struct {
	mu     sync.Mutex
	writer *uilive.Writer
}

// NewLiveDisplay returns a display redrawing on out.
func NewLiveDisplay(out io.Writer) *LiveDisplay {
	writer := uilive.New()
	writer.Out = out

	return &LiveDisplay{writer: writer}
}

func (d *LiveDisplay) Render(s Snapshot) {
	d.mu.Lock()
	defer d.mu.Unlock()

	table := uitable.New()
	table.MaxColWidth = 80
	table.Wrap = true

	table.AddRow("", "")
	table.AddRow("  - Collections:", fmt.Sprintf("%s/%s", humanize.Comma(int64(s.CollectionsRead)), humanize.Comma(int64(s.CollectionsTotal))))
	table.AddRow("  - Items:", fmt.Sprintf("%s/%s", humanize.Comma(int64(s.URLsRead)), humanize.Comma(int64(s.URLsTotal))))
	table.AddRow("  - Items/s:", s.URLsPerSecond)
	table.AddRow("  - Open workers:", s.OpenWorkers)
	table.AddRow("  - Failures:", s.FetchFailures)
	table.AddRow("", "")

	fmt.Fprintln(d.writer, table.String())
	d.writer.Flush()
}

func (d *LiveDisplay) Close() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.writer.Flush()
}
