// Package eventlog collects simulation output from concurrently
// running bus trips and drains it in a canonical order.
package eventlog

import (
	"sort"
	"sync"

	"github.com/kilianp07/transitopt/core/model"
)

// Log is a concurrency-safe sink for stop events and trip summaries.
// Trips append from their own goroutines; Drain imposes the canonical
// (route, slot, bus, stop sequence) ordering so identically seeded
// runs produce identical logs regardless of scheduling.
type Log struct {
	mu     sync.Mutex
	events []model.StopEvent
	trips  []model.TripSummary
}

// New returns an empty log.
func New() *Log { return &Log{} }

// AddEvents appends the stop events of one trip.
func (l *Log) AddEvents(evs []model.StopEvent) {
	l.mu.Lock()
	l.events = append(l.events, evs...)
	l.mu.Unlock()
}

// AddTrip appends a trip summary.
func (l *Log) AddTrip(ts model.TripSummary) {
	l.mu.Lock()
	l.trips = append(l.trips, ts)
	l.mu.Unlock()
}

// Drain returns the sorted events and trip summaries. The log must
// not be written to concurrently with Drain.
func (l *Log) Drain() ([]model.StopEvent, []model.TripSummary) {
	l.mu.Lock()
	defer l.mu.Unlock()

	sort.Slice(l.events, func(i, j int) bool {
		a, b := l.events[i], l.events[j]
		if a.RouteID != b.RouteID {
			return a.RouteID < b.RouteID
		}
		if a.TimeSlot != b.TimeSlot {
			return a.TimeSlot < b.TimeSlot
		}
		if a.BusNumber != b.BusNumber {
			return a.BusNumber < b.BusNumber
		}
		return a.StopSequence < b.StopSequence
	})
	sort.Slice(l.trips, func(i, j int) bool {
		a, b := l.trips[i], l.trips[j]
		if a.RouteID != b.RouteID {
			return a.RouteID < b.RouteID
		}
		if a.TimeSlot != b.TimeSlot {
			return a.TimeSlot < b.TimeSlot
		}
		return a.BusNumber < b.BusNumber
	})
	return l.events, l.trips
}
