package dataset

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/kilianp07/transitopt/core/model"
	"github.com/kilianp07/transitopt/pkg/export"
)

func TestLoadRoutes(t *testing.T) {
	csv := `route_id,stop_sequence,stop_id
R1,2,s3
R1,1,s2
R1,0,s1
R2,0,s2
R2,1,s4
`
	routes, err := LoadRoutes(strings.NewReader(csv))
	require.NoError(t, err)
	require.Len(t, routes, 2)
	require.Equal(t, model.Route{ID: "R1", Stops: []string{"s1", "s2", "s3"}}, routes[0])
	require.Equal(t, model.Route{ID: "R2", Stops: []string{"s2", "s4"}}, routes[1])
}

func TestLoadRoutesBadHeader(t *testing.T) {
	_, err := LoadRoutes(strings.NewReader("route,seq,stop\nR1,0,s1\n"))
	require.Error(t, err)
}

func TestLoadDemand(t *testing.T) {
	csv := `route_id,time_slot,total_forecast_demand
R1,0,42.5
R1,1,0
`
	demand, err := LoadDemand(strings.NewReader(csv))
	require.NoError(t, err)
	require.Equal(t, 42.5, demand[model.RouteSlot{RouteID: "R1", Slot: 0}])
	require.Equal(t, 0.0, demand[model.RouteSlot{RouteID: "R1", Slot: 1}])
}

func TestLoadDemandRejectsNegative(t *testing.T) {
	csv := "route_id,time_slot,total_forecast_demand\nR1,0,-3\n"
	_, err := LoadDemand(strings.NewReader(csv))
	require.ErrorContains(t, err, "negative demand")
}

func TestLoadStopDemand(t *testing.T) {
	csv := `stop_id,time_slot,passenger_demand
s1,3,17
`
	demand, err := LoadStopDemand(strings.NewReader(csv))
	require.NoError(t, err)
	require.Equal(t, 17.0, demand[model.StopSlot{StopID: "s1", Slot: 3}])
}

func TestLoadTravelTimes(t *testing.T) {
	csv := `from_stop_id,to_stop_id,time_slot,travel_time_minutes,congestion_factor
s1,s2,0,4.2,0.55
`
	tt, err := LoadTravelTimes(strings.NewReader(csv))
	require.NoError(t, err)
	entry := tt[model.Edge{From: "s1", To: "s2", Slot: 0}]
	require.Equal(t, 4.2, entry.Minutes)
	require.Equal(t, 0.55, entry.CongestionFactor)
}

func TestLoadTravelTimesWithoutFactorColumn(t *testing.T) {
	csv := `from_stop_id,to_stop_id,time_slot,travel_time_minutes
s1,s2,0,4.2
`
	tt, err := LoadTravelTimes(strings.NewReader(csv))
	require.NoError(t, err)
	entry := tt[model.Edge{From: "s1", To: "s2", Slot: 0}]
	require.Equal(t, 4.2, entry.Minutes)
	require.Equal(t, 1.0, entry.CongestionFactor)
}

func TestLoadTravelTimesRejectsNonPositive(t *testing.T) {
	csv := "from_stop_id,to_stop_id,time_slot,travel_time_minutes,congestion_factor\ns1,s2,0,0,1\n"
	_, err := LoadTravelTimes(strings.NewReader(csv))
	require.ErrorContains(t, err, "non-positive travel time")
}

func TestLoadAllocationsRoundTrip(t *testing.T) {
	rows := []model.Allocation{
		{RouteID: "R1", TimeSlot: 32, HourOfDay: 8, Buses: 3, OverloadPassengers: 1.5, BusHours: 0.75, CapacityProvided: 240, ForecastDemand: 180},
		{RouteID: "R2", TimeSlot: 33, HourOfDay: 8.25, Buses: 1, BusHours: 0.25, CapacityProvided: 80, ForecastDemand: 40},
	}
	var buf bytes.Buffer
	require.NoError(t, export.WriteAllocationCSV(&buf, rows))

	loaded, err := LoadAllocations(&buf)
	require.NoError(t, err)
	require.Equal(t, rows, loaded)
}

func TestLoadEmptyFile(t *testing.T) {
	_, err := LoadDemand(strings.NewReader(""))
	require.ErrorContains(t, err, "missing header")
}
