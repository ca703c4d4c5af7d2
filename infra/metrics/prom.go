package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"

	coremetrics "github.com/kilianp07/transitopt/core/metrics"
	"github.com/kilianp07/transitopt/core/model"
)

// PromSink records planning results in Prometheus metrics.
type PromSink struct {
	runs             prometheus.Counter
	solveDuration    prometheus.Histogram
	fleetUtilization prometheus.Gauge
	busHours         prometheus.Gauge
	overload         prometheus.Gauge
	avgLoadFactor    prometheus.Gauge
	overloadedTrips  prometheus.Gauge
	tripsSimulated   prometheus.Gauge
}

// NewPromSink registers planning metrics on the provided registerer.
// If reg is nil, the default registerer is used. Already registered
// collectors are reused.
func NewPromSink(reg prometheus.Registerer) (*PromSink, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	s := &PromSink{
		runs: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "transit_optimizer_runs_total",
			Help: "Total number of completed optimizer runs",
		}),
		solveDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "transit_solve_duration_seconds",
			Help:    "Wall-clock time spent in the allocation solver",
			Buckets: prometheus.DefBuckets,
		}),
		fleetUtilization: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "transit_fleet_utilization",
			Help: "Peak simultaneous buses divided by fleet size",
		}),
		busHours: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "transit_scheduled_bus_hours",
			Help: "Total scheduled bus-hours of the last allocation",
		}),
		overload: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "transit_overload_passengers",
			Help: "Total overload passengers of the last allocation",
		}),
		avgLoadFactor: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "transit_sim_avg_load_factor",
			Help: "Average simulated load factor",
		}),
		overloadedTrips: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "transit_sim_overloaded_trips_percent",
			Help: "Percentage of simulated trips with at least one overloaded segment",
		}),
		tripsSimulated: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "transit_sim_trips",
			Help: "Number of simulated bus trips",
		}),
	}

	collectors := []prometheus.Collector{
		s.runs, s.solveDuration, s.fleetUtilization, s.busHours,
		s.overload, s.avgLoadFactor, s.overloadedTrips, s.tripsSimulated,
	}
	for i, c := range collectors {
		if err := reg.Register(c); err != nil {
			are, ok := err.(prometheus.AlreadyRegisteredError)
			if !ok {
				return nil, err
			}
			switch i {
			case 0:
				s.runs = are.ExistingCollector.(prometheus.Counter)
			case 1:
				s.solveDuration = are.ExistingCollector.(prometheus.Histogram)
			case 2:
				s.fleetUtilization = are.ExistingCollector.(prometheus.Gauge)
			case 3:
				s.busHours = are.ExistingCollector.(prometheus.Gauge)
			case 4:
				s.overload = are.ExistingCollector.(prometheus.Gauge)
			case 5:
				s.avgLoadFactor = are.ExistingCollector.(prometheus.Gauge)
			case 6:
				s.overloadedTrips = are.ExistingCollector.(prometheus.Gauge)
			case 7:
				s.tripsSimulated = are.ExistingCollector.(prometheus.Gauge)
			}
		}
	}
	return s, nil
}

var _ coremetrics.MetricsSink = (*PromSink)(nil)

// RecordAllocation publishes the optimizer summary.
func (s *PromSink) RecordAllocation(summary model.AllocationSummary, objective float64, solveTime time.Duration) error {
	s.runs.Inc()
	s.solveDuration.Observe(solveTime.Seconds())
	s.fleetUtilization.Set(summary.FleetUtilization)
	s.busHours.Set(summary.TotalBusHours)
	s.overload.Set(summary.TotalOverloadPassengers)
	return nil
}

// RecordKPIs publishes the simulation report.
func (s *PromSink) RecordKPIs(k model.KPISet) error {
	s.avgLoadFactor.Set(k.AvgLoadFactor)
	s.overloadedTrips.Set(k.PercentOverloadedTrips)
	s.tripsSimulated.Set(float64(k.TotalTrips))
	return nil
}
