package metrics

import (
	"errors"
	"time"

	coremetrics "github.com/kilianp07/transitopt/core/metrics"
	"github.com/kilianp07/transitopt/core/model"
)

// MultiSink fans records out to several sinks, joining their errors.
type MultiSink struct {
	sinks []coremetrics.MetricsSink
}

// NewMultiSink combines the given sinks.
func NewMultiSink(sinks ...coremetrics.MetricsSink) *MultiSink {
	return &MultiSink{sinks: sinks}
}

func (m *MultiSink) RecordAllocation(summary model.AllocationSummary, objective float64, solveTime time.Duration) error {
	var errs []error
	for _, s := range m.sinks {
		if err := s.RecordAllocation(summary, objective, solveTime); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (m *MultiSink) RecordKPIs(k model.KPISet) error {
	var errs []error
	for _, s := range m.sinks {
		if err := s.RecordKPIs(k); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
