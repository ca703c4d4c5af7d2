// Package dataset reads the planner's input tables from CSV.
package dataset

import (
	"encoding/csv"
	"fmt"
	"io"
	"sort"
	"strconv"

	"github.com/kilianp07/transitopt/core/model"
)

// readTable reads all CSV records and validates the header.
func readTable(r io.Reader, header []string) ([][]string, error) {
	cr := csv.NewReader(r)
	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read csv: %w", err)
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("missing header row")
	}
	got := records[0]
	if len(got) != len(header) {
		return nil, fmt.Errorf("expected columns %v, got %v", header, got)
	}
	for i, col := range header {
		if got[i] != col {
			return nil, fmt.Errorf("expected column %q at position %d, got %q", col, i, got[i])
		}
	}
	return records[1:], nil
}

// LoadRoutes reads the route/stop table. Rows carry one stop each and
// are ordered by stop_sequence within a route.
func LoadRoutes(r io.Reader) ([]model.Route, error) {
	records, err := readTable(r, []string{"route_id", "stop_sequence", "stop_id"})
	if err != nil {
		return nil, fmt.Errorf("routes: %w", err)
	}

	type entry struct {
		seq    int
		stopID string
	}
	byRoute := make(map[string][]entry)
	var order []string
	for i, rec := range records {
		seq, err := strconv.Atoi(rec[1])
		if err != nil {
			return nil, fmt.Errorf("routes row %d: stop_sequence: %w", i+1, err)
		}
		if _, ok := byRoute[rec[0]]; !ok {
			order = append(order, rec[0])
		}
		byRoute[rec[0]] = append(byRoute[rec[0]], entry{seq: seq, stopID: rec[2]})
	}

	routes := make([]model.Route, 0, len(byRoute))
	for _, routeID := range order {
		entries := byRoute[routeID]
		sort.Slice(entries, func(i, j int) bool { return entries[i].seq < entries[j].seq })
		stops := make([]string, len(entries))
		for i, e := range entries {
			stops[i] = e.stopID
		}
		routes = append(routes, model.Route{ID: routeID, Stops: stops})
	}
	return routes, nil
}

// LoadDemand reads the route-level forecast demand table.
func LoadDemand(r io.Reader) (model.DemandTable, error) {
	records, err := readTable(r, []string{"route_id", "time_slot", "total_forecast_demand"})
	if err != nil {
		return nil, fmt.Errorf("demand: %w", err)
	}
	out := make(model.DemandTable, len(records))
	for i, rec := range records {
		slot, err := strconv.Atoi(rec[1])
		if err != nil {
			return nil, fmt.Errorf("demand row %d: time_slot: %w", i+1, err)
		}
		demand, err := strconv.ParseFloat(rec[2], 64)
		if err != nil {
			return nil, fmt.Errorf("demand row %d: total_forecast_demand: %w", i+1, err)
		}
		if demand < 0 {
			return nil, fmt.Errorf("demand row %d: negative demand %f", i+1, demand)
		}
		out[model.RouteSlot{RouteID: rec[0], Slot: slot}] = demand
	}
	return out, nil
}

// LoadStopDemand reads the stop-level boarding demand table.
func LoadStopDemand(r io.Reader) (model.StopDemandTable, error) {
	records, err := readTable(r, []string{"stop_id", "time_slot", "passenger_demand"})
	if err != nil {
		return nil, fmt.Errorf("stop demand: %w", err)
	}
	out := make(model.StopDemandTable, len(records))
	for i, rec := range records {
		slot, err := strconv.Atoi(rec[1])
		if err != nil {
			return nil, fmt.Errorf("stop demand row %d: time_slot: %w", i+1, err)
		}
		demand, err := strconv.ParseFloat(rec[2], 64)
		if err != nil {
			return nil, fmt.Errorf("stop demand row %d: passenger_demand: %w", i+1, err)
		}
		if demand < 0 {
			return nil, fmt.Errorf("stop demand row %d: negative demand %f", i+1, demand)
		}
		out[model.StopSlot{StopID: rec[0], Slot: slot}] = demand
	}
	return out, nil
}

// LoadAllocations reads a previously exported allocation table back
// in, for replaying a stored plan through the simulator.
func LoadAllocations(r io.Reader) ([]model.Allocation, error) {
	records, err := readTable(r, []string{
		"route_id", "time_slot", "hour_of_day", "buses_allocated",
		"overload_passengers", "bus_hours", "capacity_provided", "total_forecast_demand",
	})
	if err != nil {
		return nil, fmt.Errorf("allocation: %w", err)
	}
	rows := make([]model.Allocation, 0, len(records))
	for i, rec := range records {
		slot, err := strconv.Atoi(rec[1])
		if err != nil {
			return nil, fmt.Errorf("allocation row %d: time_slot: %w", i+1, err)
		}
		hour, err := strconv.ParseFloat(rec[2], 64)
		if err != nil {
			return nil, fmt.Errorf("allocation row %d: hour_of_day: %w", i+1, err)
		}
		buses, err := strconv.Atoi(rec[3])
		if err != nil {
			return nil, fmt.Errorf("allocation row %d: buses_allocated: %w", i+1, err)
		}
		overload, err := strconv.ParseFloat(rec[4], 64)
		if err != nil {
			return nil, fmt.Errorf("allocation row %d: overload_passengers: %w", i+1, err)
		}
		busHours, err := strconv.ParseFloat(rec[5], 64)
		if err != nil {
			return nil, fmt.Errorf("allocation row %d: bus_hours: %w", i+1, err)
		}
		capacity, err := strconv.Atoi(rec[6])
		if err != nil {
			return nil, fmt.Errorf("allocation row %d: capacity_provided: %w", i+1, err)
		}
		demand, err := strconv.ParseFloat(rec[7], 64)
		if err != nil {
			return nil, fmt.Errorf("allocation row %d: total_forecast_demand: %w", i+1, err)
		}
		rows = append(rows, model.Allocation{
			RouteID:            rec[0],
			TimeSlot:           slot,
			HourOfDay:          hour,
			Buses:              buses,
			OverloadPassengers: overload,
			BusHours:           busHours,
			CapacityProvided:   capacity,
			ForecastDemand:     demand,
		})
	}
	return rows, nil
}

// LoadTravelTimes reads the inter-stop travel-time table. The
// congestion_factor column is optional and defaults to 1.
func LoadTravelTimes(r io.Reader) (model.TravelTimeTable, error) {
	cr := csv.NewReader(r)
	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("travel times: read csv: %w", err)
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("travel times: missing header row")
	}
	header := records[0]
	base := []string{"from_stop_id", "to_stop_id", "time_slot", "travel_time_minutes"}
	withFactor := len(header) == len(base)+1 && header[len(base)] == "congestion_factor"
	if len(header) != len(base) && !withFactor {
		return nil, fmt.Errorf("travel times: expected columns %v [congestion_factor], got %v", base, header)
	}
	for i, col := range base {
		if header[i] != col {
			return nil, fmt.Errorf("travel times: expected column %q at position %d, got %q", col, i, header[i])
		}
	}

	out := make(model.TravelTimeTable, len(records)-1)
	for i, rec := range records[1:] {
		slot, err := strconv.Atoi(rec[2])
		if err != nil {
			return nil, fmt.Errorf("travel times row %d: time_slot: %w", i+1, err)
		}
		minutes, err := strconv.ParseFloat(rec[3], 64)
		if err != nil {
			return nil, fmt.Errorf("travel times row %d: travel_time_minutes: %w", i+1, err)
		}
		if minutes <= 0 {
			return nil, fmt.Errorf("travel times row %d: non-positive travel time %f", i+1, minutes)
		}
		factor := 1.0
		if withFactor {
			factor, err = strconv.ParseFloat(rec[4], 64)
			if err != nil {
				return nil, fmt.Errorf("travel times row %d: congestion_factor: %w", i+1, err)
			}
		}
		out[model.Edge{From: rec[0], To: rec[1], Slot: slot}] = model.TravelTime{
			Minutes:          minutes,
			CongestionFactor: factor,
		}
	}
	return out, nil
}
