package sim

import (
	"fmt"
	"sync"

	"github.com/kilianp07/transitopt/core/logger"
	"github.com/kilianp07/transitopt/core/model"
	"github.com/kilianp07/transitopt/internal/eventlog"
)

// Simulator replays an allocation over the reference tables. All
// fields are read-only once constructed; per-trip state lives in the
// trip goroutines.
type Simulator struct {
	cfg        Config
	routes     map[string][]string
	stopDemand model.StopDemandTable
	travel     model.TravelTimeTable
	log        logger.Logger
}

// Result is the output of one simulation run.
type Result struct {
	Events []model.StopEvent
	Trips  []model.TripSummary
	KPIs   model.KPISet
	// SkippedRoutes counts routes that were allocated buses but had
	// no resolvable stop sequence. A data-completeness gap, not an
	// error.
	SkippedRoutes int
}

// New creates a Simulator over the given routes and reference tables.
func New(cfg Config, routes []model.Route, stopDemand model.StopDemandTable, travel model.TravelTimeTable, log logger.Logger) (*Simulator, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("simulator config: %w", err)
	}
	byID := make(map[string][]string, len(routes))
	for _, r := range routes {
		if len(r.Stops) > 0 {
			byID[r.ID] = r.Stops
		}
	}
	return &Simulator{cfg: cfg, routes: byID, stopDemand: stopDemand, travel: travel, log: log}, nil
}

// Run expands the allocation into bus instances and simulates each
// one. An empty allocation yields an empty result. Fleet utilization
// and scheduled bus-hours pass through from the optimizer summary.
func (s *Simulator) Run(rows []model.Allocation, summary model.AllocationSummary) Result {
	var res Result
	if len(rows) == 0 {
		return res
	}

	sink := eventlog.New()
	skipped := make(map[string]struct{})
	var wg sync.WaitGroup
	trips := 0

	for _, row := range rows {
		if row.Buses <= 0 {
			continue
		}
		stops, ok := s.routes[row.RouteID]
		if !ok {
			skipped[row.RouteID] = struct{}{}
			continue
		}
		headway := float64(s.cfg.SlotMinutes) / float64(row.Buses)
		for bus := 0; bus < row.Buses; bus++ {
			tr := trip{
				routeID:   row.RouteID,
				slot:      row.TimeSlot,
				bus:       bus,
				departure: float64(row.TimeSlot*s.cfg.SlotMinutes) + float64(bus)*headway,
				stops:     stops,
			}
			trips++
			wg.Add(1)
			go func(tr trip) {
				defer wg.Done()
				s.runTrip(tr, sink)
			}(tr)
		}
	}
	wg.Wait()

	res.Events, res.Trips = sink.Drain()
	res.SkippedRoutes = len(skipped)
	res.KPIs = s.aggregateKPIs(res.Events, res.Trips, summary)

	if len(skipped) > 0 {
		s.log.Warnf("skipped %d route(s) with no resolvable stop sequence", len(skipped))
	}
	s.log.Infof("simulated %d trips over %d stop visits", len(res.Trips), len(res.Events))
	return res
}

// slotAt maps elapsed minutes since the start of the horizon to a
// slot index. Trips running past the horizon keep indexing forward;
// table lookups simply miss and fall back.
func (s *Simulator) slotAt(minutes float64) int {
	if minutes < 0 {
		return 0
	}
	return int(minutes) / s.cfg.SlotMinutes
}
