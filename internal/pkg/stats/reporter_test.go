package stats

import (
	"bytes"
	"io"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	// The rate counter winds its ticker down one interval after the last increment.
	goleak.VerifyTestMain(m, goleak.IgnoreAnyFunction("github.com/paulbellamy/ratecounter.(*RateCounter).run.func1"))
}

type recordingDisplay struct {
	mu        sync.Mutex
	snapshots []Snapshot
	closed    bool
}

func (d *recordingDisplay) Render(s Snapshot) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.snapshots = append(d.snapshots, s)
}

func (d *recordingDisplay) Close() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.closed = true
}

func (d *recordingDisplay) count() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.snapshots)
}

func TestReporterReset(t *testing.T) {
	r := NewReporter("elevation", nil)
	assert.True(t, r.Stopped(), "a new reporter starts stopped")

	r.Reset(3)
	r.CollectionRead()
	r.URLsTotalAdd(10)
	r.URLRead()
	r.URLRead()
	r.FetchFailed()
	r.WorkerStarted()

	s := r.Snapshot()
	assert.Equal(t, uint64(3), s.CollectionsTotal)
	assert.Equal(t, uint64(1), s.CollectionsRead)
	assert.Equal(t, uint64(10), s.URLsTotal)
	assert.Equal(t, uint64(2), s.URLsRead)
	assert.Equal(t, uint64(1), s.FetchFailures)
	assert.Equal(t, uint64(1), s.OpenWorkers)
	assert.False(t, r.Stopped())

	r.Stop()
	r.Reset(7)

	assert.Equal(t, Snapshot{CollectionsTotal: 7}, r.Snapshot())
	assert.False(t, r.Stopped())
}

func TestReporterStopOnce(t *testing.T) {
	r := NewReporter("elevation", nil)
	r.Reset(1)

	assert.True(t, r.Stop())
	assert.False(t, r.Stop(), "the stop flag transitions only once")
	assert.True(t, r.Stopped())
}

func TestReportIsNoopOnceStopped(t *testing.T) {
	display := &recordingDisplay{}
	r := NewReporter("elevation", display)
	r.Reset(1)

	r.Report()
	assert.Equal(t, 1, display.count())

	r.Stop()
	r.Report()
	assert.Equal(t, 1, display.count())

	r.Close()
	assert.True(t, display.closed)
}

func TestLoopReportsUntilStopped(t *testing.T) {
	display := &recordingDisplay{}
	r := NewReporter("elevation", display)
	r.Reset(2)

	loop := r.Start(5 * time.Millisecond)

	require.Eventually(t, func() bool { return display.count() >= 2 }, time.Second, time.Millisecond)

	r.Stop()
	loop.Stop()

	count := display.count()
	time.Sleep(20 * time.Millisecond)
	assert.Equal(t, count, display.count(), "no report after the loop is joined")
	assert.Equal(t, uint64(0), r.Snapshot().OpenWorkers, "the loop releases its worker slot")
}

func TestLoopExitsOnStopFlag(t *testing.T) {
	r := NewReporter("elevation", nil)
	r.Reset(0)

	loop := r.Start(time.Millisecond)
	r.Stop()

	select {
	case <-loop.done:
	case <-time.After(time.Second):
		t.Fatal("loop did not observe the stop flag")
	}
	loop.Stop()
}

func TestSnapshotString(t *testing.T) {
	s := Snapshot{CollectionsTotal: 4, CollectionsRead: 1, URLsTotal: 20, URLsRead: 5, OpenWorkers: 3}
	assert.Equal(t, "collections 1/4, urls 5/20 (0/s), workers 3, failures 0", s.String())
}

func TestLiveDisplay(t *testing.T) {
	var out bytes.Buffer
	display := NewLiveDisplay(&out)

	display.Render(Snapshot{CollectionsTotal: 1200, CollectionsRead: 3, URLsTotal: 10, URLsRead: 4})
	display.Close()

	assert.Contains(t, out.String(), "3/1,200")
	assert.Contains(t, out.String(), "4/10")
}

func TestPrometheusHandler(t *testing.T) {
	require.NoError(t, InitPrometheus("linzstac_test_"))
	assert.ErrorIs(t, InitPrometheus("linzstac_test_"), ErrStatsAlreadyInitialized)

	r := NewReporter("elevation", nil)
	r.Reset(1)
	r.CollectionRead()
	DownloadedBytesAdd("elevation", 2048)

	rec := httptest.NewRecorder()
	PromHandler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))

	body, err := io.ReadAll(rec.Body)
	require.NoError(t, err)
	assert.True(t, strings.Contains(string(body), `linzstac_test_collections_read{bucket="elevation"`))
	assert.True(t, strings.Contains(string(body), "linzstac_test_downloaded_bytes"))
}
