// Package report renders an HTML chart view of a planning run.
package report

import (
	"fmt"
	"io"
	"sort"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/components"
	"github.com/go-echarts/go-echarts/v2/opts"

	"github.com/kilianp07/transitopt/core/model"
)

// slotSeries aggregates allocation rows into per-slot totals.
type slotSeries struct {
	slots    []int
	buses    map[int]int
	capacity map[int]float64
	demand   map[int]float64
	overload map[int]float64
}

func aggregate(rows []model.Allocation) slotSeries {
	s := slotSeries{
		buses:    make(map[int]int),
		capacity: make(map[int]float64),
		demand:   make(map[int]float64),
		overload: make(map[int]float64),
	}
	seen := make(map[int]struct{})
	for _, r := range rows {
		if _, ok := seen[r.TimeSlot]; !ok {
			seen[r.TimeSlot] = struct{}{}
			s.slots = append(s.slots, r.TimeSlot)
		}
		s.buses[r.TimeSlot] += r.Buses
		s.capacity[r.TimeSlot] += float64(r.CapacityProvided)
		s.demand[r.TimeSlot] += r.ForecastDemand
		s.overload[r.TimeSlot] += r.OverloadPassengers
	}
	sort.Ints(s.slots)
	return s
}

func busChart(s slotSeries, slotMinutes int) *charts.Bar {
	bar := charts.NewBar()
	bar.SetGlobalOptions(
		charts.WithTitleOpts(opts.Title{Title: "Buses in Service per Slot"}),
		charts.WithXAxisOpts(opts.XAxis{Name: "Time of Day"}),
		charts.WithYAxisOpts(opts.YAxis{Name: "Buses"}),
	)
	var xAxis []string
	var buses []opts.BarData
	for _, slot := range s.slots {
		xAxis = append(xAxis, slotLabel(slot, slotMinutes))
		buses = append(buses, opts.BarData{Value: s.buses[slot]})
	}
	bar.SetXAxis(xAxis).AddSeries("Buses", buses)
	return bar
}

func demandChart(s slotSeries, slotMinutes int) *charts.Line {
	line := charts.NewLine()
	line.SetGlobalOptions(
		charts.WithTitleOpts(opts.Title{Title: "Demand vs Capacity"}),
		charts.WithXAxisOpts(opts.XAxis{Name: "Time of Day"}),
		charts.WithYAxisOpts(opts.YAxis{Name: "Passengers"}),
	)
	var xAxis []string
	var demand, capacity, overload []opts.LineData
	for _, slot := range s.slots {
		xAxis = append(xAxis, slotLabel(slot, slotMinutes))
		demand = append(demand, opts.LineData{Value: s.demand[slot]})
		capacity = append(capacity, opts.LineData{Value: s.capacity[slot]})
		overload = append(overload, opts.LineData{Value: s.overload[slot]})
	}
	line.SetXAxis(xAxis).
		AddSeries("Forecast Demand", demand).
		AddSeries("Capacity Provided", capacity).
		AddSeries("Overload", overload)
	return line
}

func slotLabel(slot, slotMinutes int) string {
	minutes := slot * slotMinutes
	return fmt.Sprintf("%02d:%02d", minutes/60%24, minutes%60)
}

// WriteHTML renders the allocation charts to w as a standalone page.
// An empty allocation yields a page with empty charts.
func WriteHTML(w io.Writer, rows []model.Allocation, slotMinutes int) error {
	s := aggregate(rows)
	page := components.NewPage()
	page.PageTitle = "Allocation Report"
	page.AddCharts(busChart(s, slotMinutes), demandChart(s, slotMinutes))
	return page.Render(w)
}
