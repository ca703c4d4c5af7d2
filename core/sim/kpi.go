package sim

import (
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/kilianp07/transitopt/core/model"
)

// aggregateKPIs reduces the event log to the scalar service report.
// With no simulated trips the report is empty.
func (s *Simulator) aggregateKPIs(events []model.StopEvent, trips []model.TripSummary, summary model.AllocationSummary) model.KPISet {
	if len(trips) == 0 {
		return model.KPISet{}
	}

	k := model.KPISet{
		TotalTrips:      len(trips),
		TotalStopVisits: len(events),
	}

	durations := make([]float64, len(trips))
	boardings := make([]float64, len(trips))
	loadFactors := make([]float64, len(trips))
	overloadedTrips := 0
	routes := make(map[string]struct{})
	for i, tr := range trips {
		durations[i] = tr.Duration
		boardings[i] = float64(tr.TotalBoarding)
		loadFactors[i] = tr.AvgLoadFactor
		if tr.OverloadedSegments > 0 {
			overloadedTrips++
		}
		routes[tr.RouteID] = struct{}{}
	}
	k.UniqueRoutes = len(routes)
	k.AvgTripDuration = round(stat.Mean(durations, nil), 2)
	k.AvgPassengersPerTrip = round(stat.Mean(boardings, nil), 1)
	k.AvgLoadFactor = round(stat.Mean(loadFactors, nil), 3)
	k.PercentOverloadedTrips = round(float64(overloadedTrips)/float64(len(trips))*100, 1)
	k.MaxLoadFactor = round(floats.Max(loadFactors), 3)
	k.TotalPassengerKM = round(floats.Sum(boardings), 0)

	if len(events) > 0 {
		stopBoardings := make([]float64, len(events))
		dwells := make([]float64, len(events))
		overloadedStops := 0
		for i, ev := range events {
			stopBoardings[i] = float64(ev.Boarding)
			dwells[i] = ev.DwellTime
			if ev.Overloaded {
				overloadedStops++
			}
		}
		k.AvgBoardingPerStop = round(stat.Mean(stopBoardings, nil), 1)
		k.AvgDwellTime = round(stat.Mean(dwells, nil), 2)
		k.PercentOverloadedStops = round(float64(overloadedStops)/float64(len(events))*100, 1)
	}

	// Average wait is estimated as half the headway implied by the
	// horizon length and the trips-per-route density.
	horizonHours := float64(s.cfg.HorizonSlots*s.cfg.SlotMinutes) / 60
	tripsPerRoute := float64(len(trips)) / float64(len(routes))
	if tripsPerRoute > 0 {
		k.EstimatedAvgWaitTime = round(horizonHours/tripsPerRoute/2, 1)
	}

	k.FleetUtilization = summary.FleetUtilization
	k.ScheduledBusHours = summary.TotalBusHours
	return k
}

func round(v float64, digits int) float64 {
	pow := math.Pow(10, float64(digits))
	return math.Round(v*pow) / pow
}
