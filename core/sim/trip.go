package sim

import (
	"github.com/kilianp07/transitopt/core/model"
	"github.com/kilianp07/transitopt/internal/eventlog"
)

const (
	baseDwellMinutes  = 0.5
	dwellPerPassenger = 0.1

	// alighting at intermediate stops is a uniform fraction of the
	// current load.
	alightFractionMin = 0.1
	alightFractionMax = 0.3

	// one of several buses serving a slot absorbs only a share of the
	// stop's total demand.
	demandShareMin = 0.1
	demandShareMax = 0.4

	// travel-time perturbation and fallback range, minutes.
	travelJitterMin    = 0.8
	travelJitterMax    = 1.2
	fallbackTravelMin  = 2.0
	fallbackTravelMax  = 8.0
	minTravelMinutes   = 0.5
	fallbackBoardingMu = 5.0
)

// trip identifies one scheduled bus instance.
type trip struct {
	routeID   string
	slot      int
	bus       int
	departure float64
	stops     []string
}

// runTrip walks the bus through its stop sequence: board/alight,
// dwell, travel to the next stop. Events and the terminal summary go
// to the sink.
func (s *Simulator) runTrip(tr trip, sink *eventlog.Log) {
	rs := newStreams(uint64(s.cfg.Seed), tr.routeID, tr.slot, tr.bus)

	now := tr.departure
	load := 0
	maxLoad := 0
	totalBoarding := 0
	totalAlighting := 0
	overloadedSegments := 0
	last := len(tr.stops) - 1
	events := make([]model.StopEvent, 0, len(tr.stops))

	for i, stopID := range tr.stops {
		slot := s.slotAt(now)
		var boarding, alighting int
		switch {
		case i == 0:
			boarding = s.sampleBoarding(stopID, slot, rs)
		case i == last:
			// Trip terminates: everyone disembarks.
			alighting = load
		default:
			boarding = s.sampleBoarding(stopID, slot, rs)
			alighting = int(float64(load) * uniform(rs.alighting, alightFractionMin, alightFractionMax))
			if alighting < 0 {
				alighting = 0
			}
		}

		load = load - alighting + boarding
		if load < 0 {
			load = 0
		}
		if load > maxLoad {
			maxLoad = load
		}
		totalBoarding += boarding
		totalAlighting += alighting

		// Overload is recorded, never clamped: loads beyond nominal
		// capacity reflect crowding.
		overloaded := load > s.cfg.BusCapacity
		if overloaded {
			overloadedSegments++
		}

		dwell := baseDwellMinutes + dwellPerPassenger*float64(boarding+alighting)
		arrival := now
		now += dwell

		events = append(events, model.StopEvent{
			RouteID:       tr.routeID,
			TimeSlot:      tr.slot,
			BusNumber:     tr.bus,
			StopID:        stopID,
			StopSequence:  i,
			ArrivalTime:   arrival,
			DepartureTime: now,
			Boarding:      boarding,
			Alighting:     alighting,
			OnBoard:       load,
			Overloaded:    overloaded,
			DwellTime:     dwell,
			LoadFactor:    float64(load) / float64(s.cfg.BusCapacity),
		})

		if i < last {
			now += s.travelTime(stopID, tr.stops[i+1], s.slotAt(now), rs)
		}
	}

	sink.AddEvents(events)
	sink.AddTrip(model.TripSummary{
		RouteID:            tr.routeID,
		TimeSlot:           tr.slot,
		BusNumber:          tr.bus,
		DepartureTime:      tr.departure,
		ArrivalTime:        now,
		Duration:           now - tr.departure,
		TotalBoarding:      totalBoarding,
		TotalAlighting:     totalAlighting,
		MaxPassengers:      maxLoad,
		AvgLoadFactor:      float64(maxLoad) / float64(s.cfg.BusCapacity),
		OverloadedSegments: overloadedSegments,
		StopsServed:        len(tr.stops),
	})
}

// sampleBoarding draws boardings at a stop. With a demand entry the
// bus absorbs a uniform share of the stop's slot demand; without one
// it falls back to a Poisson count.
func (s *Simulator) sampleBoarding(stopID string, slot int, rs streams) int {
	if demand, ok := s.stopDemand[model.StopSlot{StopID: stopID, Slot: slot}]; ok {
		b := int(demand * uniform(rs.boarding, demandShareMin, demandShareMax))
		if b < 0 {
			b = 0
		}
		return b
	}
	b := poisson(rs.boarding, fallbackBoardingMu)
	if b < 0 {
		b = 0
	}
	return b
}

// travelTime draws the hop duration for the current slot, perturbed
// multiplicatively; missing table entries fall back to a uniform
// range.
func (s *Simulator) travelTime(from, to string, slot int, rs streams) float64 {
	if tt, ok := s.travel[model.Edge{From: from, To: to, Slot: slot}]; ok {
		t := tt.Minutes * uniform(rs.travel, travelJitterMin, travelJitterMax)
		if t < minTravelMinutes {
			t = minTravelMinutes
		}
		return t
	}
	return uniform(rs.travel, fallbackTravelMin, fallbackTravelMax)
}
