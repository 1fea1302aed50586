package stats

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/paulbellamy/ratecounter"
)

// Reporter holds the progress counters of one search. Counters are
// independent atomics: a snapshot may mix values from different instants.
type Reporter struct {
	bucket string

	collectionsTotal *counter
	collectionsRead  *counter
	urlsTotal        *counter
	urlsRead         *counter
	openWorkers      *counter
	fetchFailures    *counter
	urlRate          atomic.Pointer[ratecounter.RateCounter]

	stopped atomic.Bool
	display Display
}

// Snapshot is a point-in-time copy of the reporter counters.
type Snapshot struct {
	CollectionsTotal uint64
	CollectionsRead  uint64
	URLsTotal        uint64
	URLsRead         uint64
	OpenWorkers      uint64
	FetchFailures    uint64
	URLsPerSecond    int64
}

func (s Snapshot) String() string {
	return fmt.Sprintf("collections %d/%d, urls %d/%d (%d/s), workers %d, failures %d",
		s.CollectionsRead, s.CollectionsTotal,
		s.URLsRead, s.URLsTotal, s.URLsPerSecond,
		s.OpenWorkers, s.FetchFailures)
}

// NewReporter returns a stopped reporter for bucket rendering to display.
// A nil display discards every report.
func NewReporter(bucket string, display Display) *Reporter {
	if display == nil {
		display = discardDisplay{}
	}

	r := &Reporter{
		bucket:           bucket,
		collectionsTotal: &counter{},
		collectionsRead:  &counter{},
		urlsTotal:        &counter{},
		urlsRead:         &counter{},
		openWorkers:      &counter{},
		fetchFailures:    &counter{},
		display:          display,
	}
	r.urlRate.Store(ratecounter.NewRateCounter(time.Second))
	r.stopped.Store(true)

	return r
}

// Reset zeroes every counter, records the number of collections of the new
// search and clears the stop flag.
func (r *Reporter) Reset(collectionsTotal int) {
	r.collectionsTotal.set(uint64(collectionsTotal))
	r.collectionsRead.reset()
	r.urlsTotal.reset()
	r.urlsRead.reset()
	r.openWorkers.reset()
	r.fetchFailures.reset()
	r.urlRate.Store(ratecounter.NewRateCounter(time.Second))
	r.stopped.Store(false)
}

// Stop sets the stop flag. It reports whether this call made the transition.
func (r *Reporter) Stop() bool {
	return r.stopped.CompareAndSwap(false, true)
}

// Stopped reports whether the stop flag is set.
func (r *Reporter) Stopped() bool {
	return r.stopped.Load()
}

// Report renders the current counters, it does nothing once stopped.
func (r *Reporter) Report() {
	if r.Stopped() {
		return
	}
	r.display.Render(r.Snapshot())
}

// Snapshot returns the current counters.
func (r *Reporter) Snapshot() Snapshot {
	return Snapshot{
		CollectionsTotal: r.collectionsTotal.get(),
		CollectionsRead:  r.collectionsRead.get(),
		URLsTotal:        r.urlsTotal.get(),
		URLsRead:         r.urlsRead.get(),
		OpenWorkers:      r.openWorkers.get(),
		FetchFailures:    r.fetchFailures.get(),
		URLsPerSecond:    r.urlRate.Load().Rate(),
	}
}

// Close releases the display.
func (r *Reporter) Close() {
	r.display.Close()
}

/////////////////////////
//     Collections     //
/////////////////////////

// CollectionRead records a collection whose search finished, matched or not.
func (r *Reporter) CollectionRead() {
	r.collectionsRead.incr(1)
	promCollectionsRead(r.bucket)
}

/////////////////////////
//        URLs         //
/////////////////////////

// URLsTotalAdd records n more item URLs to fetch.
func (r *Reporter) URLsTotalAdd(n int) {
	r.urlsTotal.incr(uint64(n))
}

// URLRead records a finished item fetch, successful or not.
func (r *Reporter) URLRead() {
	r.urlsRead.incr(1)
	r.urlRate.Load().Incr(1)
	promURLsRead(r.bucket)
}

// FetchFailed records a failed fetch.
func (r *Reporter) FetchFailed() {
	r.fetchFailures.incr(1)
	promFetchFailures(r.bucket)
}

/////////////////////////
//       Workers       //
/////////////////////////

// WorkerStarted records a fetch holding a permit.
func (r *Reporter) WorkerStarted() {
	r.openWorkers.incr(1)
	promOpenWorkers(r.bucket, 1)
}

// WorkerFinished records a fetch releasing its permit.
func (r *Reporter) WorkerFinished() {
	r.openWorkers.decr(1)
	promOpenWorkers(r.bucket, -1)
}

/////////////////////////
//        Loop         //
/////////////////////////

// Loop is a running background reporting task.
type Loop struct {
	cancel context.CancelFunc
	done   chan struct{}
}

// Start launches a task calling Report every interval until the stop flag is
// observed or the returned loop is stopped.
func (r *Reporter) Start(interval time.Duration) *Loop {
	ctx, cancel := context.WithCancel(context.Background())
	loop := &Loop{
		cancel: cancel,
		done:   make(chan struct{}),
	}

	go func() {
		defer close(loop.done)

		r.WorkerStarted()
		defer r.WorkerFinished()

		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if r.Stopped() {
					return
				}
				r.Report()
			}
		}
	}()

	return loop
}

// Stop cancels the task and waits for it to return.
func (l *Loop) Stop() {
	l.cancel()
	<-l.done
}
