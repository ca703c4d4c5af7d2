// Package export writes run artifacts to CSV and JSON.
package export

import (
	"encoding/csv"
	"encoding/json"
	"io"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/kilianp07/transitopt/core/forecast"
	"github.com/kilianp07/transitopt/core/model"
)

func formatFloat(f float64) string { return strconv.FormatFloat(f, 'f', -1, 64) }

// WriteAllocationCSV writes the optimizer's allocation table to w.
func WriteAllocationCSV(w io.Writer, rows []model.Allocation) error {
	cw := csv.NewWriter(w)
	header := []string{
		"route_id", "time_slot", "hour_of_day", "buses_allocated",
		"overload_passengers", "bus_hours", "capacity_provided", "total_forecast_demand",
	}
	if err := cw.Write(header); err != nil {
		return err
	}
	for _, r := range rows {
		rec := []string{
			r.RouteID,
			strconv.Itoa(r.TimeSlot),
			formatFloat(r.HourOfDay),
			strconv.Itoa(r.Buses),
			formatFloat(r.OverloadPassengers),
			formatFloat(r.BusHours),
			strconv.Itoa(r.CapacityProvided),
			formatFloat(r.ForecastDemand),
		}
		if err := cw.Write(rec); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteEventsCSV writes the simulator's stop events to w.
func WriteEventsCSV(w io.Writer, events []model.StopEvent) error {
	cw := csv.NewWriter(w)
	header := []string{
		"route_id", "time_slot", "bus_number", "stop_id", "stop_sequence",
		"arrival_time", "departure_time", "passengers_boarding",
		"passengers_alighting", "passengers_on_board", "is_overloaded",
		"dwell_time", "load_factor",
	}
	if err := cw.Write(header); err != nil {
		return err
	}
	for _, e := range events {
		rec := []string{
			e.RouteID,
			strconv.Itoa(e.TimeSlot),
			strconv.Itoa(e.BusNumber),
			e.StopID,
			strconv.Itoa(e.StopSequence),
			formatFloat(e.ArrivalTime),
			formatFloat(e.DepartureTime),
			strconv.Itoa(e.Boarding),
			strconv.Itoa(e.Alighting),
			strconv.Itoa(e.OnBoard),
			strconv.FormatBool(e.Overloaded),
			formatFloat(e.DwellTime),
			formatFloat(e.LoadFactor),
		}
		if err := cw.Write(rec); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteTripsCSV writes the per-trip summaries to w.
func WriteTripsCSV(w io.Writer, trips []model.TripSummary) error {
	cw := csv.NewWriter(w)
	header := []string{
		"route_id", "time_slot", "bus_number", "departure_time", "arrival_time",
		"trip_duration", "total_boarding", "total_alighting", "max_passengers",
		"avg_load_factor", "overloaded_segments", "stops_served",
	}
	if err := cw.Write(header); err != nil {
		return err
	}
	for _, tr := range trips {
		rec := []string{
			tr.RouteID,
			strconv.Itoa(tr.TimeSlot),
			strconv.Itoa(tr.BusNumber),
			formatFloat(tr.DepartureTime),
			formatFloat(tr.ArrivalTime),
			formatFloat(tr.Duration),
			strconv.Itoa(tr.TotalBoarding),
			strconv.Itoa(tr.TotalAlighting),
			strconv.Itoa(tr.MaxPassengers),
			formatFloat(tr.AvgLoadFactor),
			strconv.Itoa(tr.OverloadedSegments),
			strconv.Itoa(tr.StopsServed),
		}
		if err := cw.Write(rec); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// RunSummary is the JSON report bundling one full planning run.
type RunSummary struct {
	RunID            string                  `json:"run_id"`
	GeneratedAt      time.Time               `json:"generated_at"`
	SolverStatus     string                  `json:"solver_status"`
	Objective        float64                 `json:"objective"`
	SolveTimeSeconds float64                 `json:"solve_time_seconds"`
	Allocation       model.AllocationSummary `json:"allocation_summary"`
	KPIs             model.KPISet            `json:"service_kpis"`
	ForecastAccuracy *forecast.Accuracy      `json:"forecast_accuracy,omitempty"`
	SkippedRoutes    int                     `json:"skipped_routes"`
}

// NewRunSummary stamps a summary with a fresh run ID and timestamp.
func NewRunSummary() RunSummary {
	return RunSummary{RunID: uuid.NewString(), GeneratedAt: time.Now().UTC()}
}

// WriteRunSummaryJSON writes the run summary to w as indented JSON.
func WriteRunSummaryJSON(w io.Writer, s RunSummary) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(s)
}
