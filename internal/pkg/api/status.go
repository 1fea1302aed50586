package api

import (
	"encoding/json"
	"net/http"
	"os"
	"time"

	"github.com/internetarchive/linzstac/internal/pkg/stats"
	"github.com/internetarchive/linzstac/internal/pkg/utils"
)

// StatusResponse represents the structure of the status API response
type StatusResponse struct {
	Role      string          `json:"role"`
	Version   string          `json:"version"`
	Host      string          `json:"host"`
	StartTime string          `json:"start_time"`
	Search    *SearchProgress `json:"search,omitempty"`
}

// SearchProgress is the progress of the current search
type SearchProgress struct {
	CollectionsTotal uint64 `json:"collections_total"`
	CollectionsRead  uint64 `json:"collections_read"`
	URLsTotal        uint64 `json:"urls_total"`
	URLsRead         uint64 `json:"urls_read"`
	URLsPerSecond    int64  `json:"urls_per_second"`
	OpenWorkers      uint64 `json:"open_workers"`
	FetchFailures    uint64 `json:"fetch_failures"`
}

var startTime = time.Now()

// statusHandler handles GET requests to /status
func statusHandler(snapshot func() stats.Snapshot) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		hostname, err := os.Hostname()
		if err != nil {
			hostname = "unknown"
		}

		response := StatusResponse{
			Role:      "linzstac",
			Version:   utils.GetVersion().Version,
			Host:      hostname,
			StartTime: startTime.Format(time.RFC3339),
		}

		if snapshot != nil {
			s := snapshot()
			response.Search = &SearchProgress{
				CollectionsTotal: s.CollectionsTotal,
				CollectionsRead:  s.CollectionsRead,
				URLsTotal:        s.URLsTotal,
				URLsRead:         s.URLsRead,
				URLsPerSecond:    s.URLsPerSecond,
				OpenWorkers:      s.OpenWorkers,
				FetchFailures:    s.FetchFailures,
			}
		}

		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(response); err != nil {
			http.Error(w, "Failed to encode response", http.StatusInternalServerError)
		}
	}
}
