package stats

import "errors"

var (
	// ErrStatsAlreadyInitialized is returned when the Prometheus metrics are already registered
	ErrStatsAlreadyInitialized = errors.New("stats already initialized")
)
