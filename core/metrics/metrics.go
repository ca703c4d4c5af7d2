// Package metrics defines the sink interface through which planning
// runs report their results to observability backends.
package metrics

import (
	"time"

	"github.com/kilianp07/transitopt/core/model"
)

// MetricsSink receives optimizer and simulation results.
type MetricsSink interface {
	RecordAllocation(summary model.AllocationSummary, objective float64, solveTime time.Duration) error
	RecordKPIs(kpis model.KPISet) error
}

// NopSink discards all records.
type NopSink struct{}

func (NopSink) RecordAllocation(model.AllocationSummary, float64, time.Duration) error { return nil }
func (NopSink) RecordKPIs(model.KPISet) error                                          { return nil }
