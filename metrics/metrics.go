// Package metrics defines the observation hooks the repository layer
// reports into. Implementations are optional: Nop discards everything
// at zero cost, and metrics/prometheus exports to a Prometheus
// registry.
package metrics

import "time"

// Metrics receives repository observations. Implementations must be
// safe for concurrent use.
type Metrics interface {
	// ObserveOperation records one mirror interaction ("load" or
	// "save") with its duration and outcome.
	ObserveOperation(op string, d time.Duration, err error)

	// RecordRefresh counts staleness-check outcomes: "fresh" when the
	// cached snapshot was young enough, "reload" when a refresh
	// succeeded, "stale" when a refresh failed and cached data was
	// served anyway.
	RecordRefresh(outcome string)

	// RecordSaveBytes counts snapshot bytes uploaded to the mirror.
	RecordSaveBytes(n int64)
}

// Refresh outcomes reported through RecordRefresh.
const (
	RefreshFresh  = "fresh"
	RefreshReload = "reload"
	RefreshStale  = "stale"
)

// Nop discards all observations.
type Nop struct{}

func (Nop) ObserveOperation(string, time.Duration, error) {}
func (Nop) RecordRefresh(string)                          {}
func (Nop) RecordSaveBytes(int64)                         {}
