package stats

import (
	"net/http"
	"os"
	"sync"

	"github.com/internetarchive/linzstac/internal/pkg/utils"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type prometheusStats struct {
	collectionsRead *prometheus.CounterVec
	urlsRead        *prometheus.CounterVec
	fetchFailures   *prometheus.CounterVec
	openWorkers     *prometheus.GaugeVec
	downloadedFiles *prometheus.CounterVec
	downloadedBytes *prometheus.CounterVec
	cacheHits       *prometheus.CounterVec
}

var (
	globalPromStats *prometheusStats
	registry        *prometheus.Registry
	promOnce        sync.Once
	hostname        string
	version         string
)

func newPrometheusStats(prefix string) *prometheusStats {
	labels := []string{"bucket", "hostname", "version"}

	return &prometheusStats{
		collectionsRead: prometheus.NewCounterVec(
			prometheus.CounterOpts{Name: prefix + "collections_read", Help: "Total number of collections searched"},
			labels,
		),
		urlsRead: prometheus.NewCounterVec(
			prometheus.CounterOpts{Name: prefix + "urls_read", Help: "Total number of item documents fetched"},
			labels,
		),
		fetchFailures: prometheus.NewCounterVec(
			prometheus.CounterOpts{Name: prefix + "fetch_failures", Help: "Total number of failed document fetches"},
			labels,
		),
		openWorkers: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{Name: prefix + "open_workers", Help: "Number of fetches currently holding a permit"},
			labels,
		),
		downloadedFiles: prometheus.NewCounterVec(
			prometheus.CounterOpts{Name: prefix + "downloaded_files", Help: "Total number of asset files downloaded"},
			labels,
		),
		downloadedBytes: prometheus.NewCounterVec(
			prometheus.CounterOpts{Name: prefix + "downloaded_bytes", Help: "Total number of asset bytes written to disk"},
			labels,
		),
		cacheHits: prometheus.NewCounterVec(
			prometheus.CounterOpts{Name: prefix + "cache_hits", Help: "Total number of asset files found in the cache"},
			labels,
		),
	}
}

// InitPrometheus registers the metrics, it must be called once before PromHandler is served.
func InitPrometheus(prefix string) error {
	var done = false

	promOnce.Do(func() {
		hostname, _ = os.Hostname()
		version = utils.GetVersion().Version

		stats := newPrometheusStats(prefix)
		registry = prometheus.NewRegistry()
		registry.MustRegister(
			stats.collectionsRead,
			stats.urlsRead,
			stats.fetchFailures,
			stats.openWorkers,
			stats.downloadedFiles,
			stats.downloadedBytes,
			stats.cacheHits,
		)
		globalPromStats = stats

		done = true
	})

	if !done {
		return ErrStatsAlreadyInitialized
	}

	return nil
}

// PromHandler returns the HTTP handler exposing the registered metrics.
func PromHandler() http.Handler {
	if registry == nil {
		return promhttp.Handler()
	}
	return promhttp.HandlerFor(registry, promhttp.HandlerOpts{})
}

func promCollectionsRead(bucket string) {
	if globalPromStats != nil {
		globalPromStats.collectionsRead.WithLabelValues(bucket, hostname, version).Inc()
	}
}

func promURLsRead(bucket string) {
	if globalPromStats != nil {
		globalPromStats.urlsRead.WithLabelValues(bucket, hostname, version).Inc()
	}
}

func promFetchFailures(bucket string) {
	if globalPromStats != nil {
		globalPromStats.fetchFailures.WithLabelValues(bucket, hostname, version).Inc()
	}
}

func promOpenWorkers(bucket string, delta float64) {
	if globalPromStats != nil {
		globalPromStats.openWorkers.WithLabelValues(bucket, hostname, version).Add(delta)
	}
}

/////////////////////////
//      Downloads      //
/////////////////////////

// DownloadedFilesIncr records a finished asset download.
func DownloadedFilesIncr(bucket string) {
	if globalPromStats != nil {
		globalPromStats.downloadedFiles.WithLabelValues(bucket, hostname, version).Inc()
	}
}

// DownloadedBytesAdd records n asset bytes written to disk.
func DownloadedBytesAdd(bucket string, n int) {
	if globalPromStats != nil {
		globalPromStats.downloadedBytes.WithLabelValues(bucket, hostname, version).Add(float64(n))
	}
}

// CacheHitsIncr records an asset found in the cache.
func CacheHitsIncr(bucket string) {
	if globalPromStats != nil {
		globalPromStats.cacheHits.WithLabelValues(bucket, hostname, version).Inc()
	}
}
