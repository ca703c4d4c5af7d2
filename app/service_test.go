package app

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/kilianp07/transitopt/config"
	"github.com/kilianp07/transitopt/pkg/export"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	dir := t.TempDir()
	routes := `route_id,stop_sequence,stop_id
R1,0,s1
R1,1,s2
R1,2,s3
R2,0,s2
R2,1,s4
`
	routesPath := filepath.Join(dir, "routes.csv")
	require.NoError(t, os.WriteFile(routesPath, []byte(routes), 0o644))

	cfg := &config.Config{}
	cfg.Optimizer.SetDefaults()
	cfg.Simulation.SetDefaults()
	cfg.Forecast.SetDefaults()
	cfg.Synthetic.SetDefaults()
	cfg.Metrics.SetDefaults()

	// Small horizon keeps the solve quick.
	cfg.Optimizer.FleetSize = 20
	cfg.Optimizer.HorizonSlots = 8
	cfg.Simulation.HorizonSlots = 8
	cfg.Data.RoutesPath = routesPath
	cfg.Output.Dir = filepath.Join(dir, "out")
	return cfg
}

func TestServiceRunSynthetic(t *testing.T) {
	cfg := testConfig(t)
	svc, err := New(cfg)
	require.NoError(t, err)

	require.NoError(t, svc.Run(context.Background()))

	data, err := os.ReadFile(filepath.Join(cfg.Output.Dir, "run_summary.json"))
	require.NoError(t, err)
	var summary export.RunSummary
	require.NoError(t, json.Unmarshal(data, &summary))
	require.Equal(t, "Optimal", summary.SolverStatus)
	require.NotEmpty(t, summary.RunID)
	require.NotNil(t, summary.ForecastAccuracy)
	require.Positive(t, summary.KPIs.TotalTrips)

	for _, name := range []string{"allocation.csv", "stop_events.csv", "trips.csv"} {
		_, err := os.Stat(filepath.Join(cfg.Output.Dir, name))
		require.NoError(t, err, name)
	}
}

func TestServiceRunRecordedData(t *testing.T) {
	cfg := testConfig(t)
	dir := filepath.Dir(cfg.Data.RoutesPath)

	demand := "route_id,time_slot,total_forecast_demand\nR1,2,120\nR2,3,45\n"
	stopDemand := "stop_id,time_slot,passenger_demand\ns1,2,60\ns2,2,60\ns2,3,45\n"
	travel := "from_stop_id,to_stop_id,time_slot,travel_time_minutes,congestion_factor\ns1,s2,2,4,1\ns2,s3,2,5,1\ns2,s4,3,6,1\n"
	cfg.Data.DemandPath = filepath.Join(dir, "demand.csv")
	cfg.Data.StopDemandPath = filepath.Join(dir, "stop_demand.csv")
	cfg.Data.TravelTimesPath = filepath.Join(dir, "travel_times.csv")
	require.NoError(t, os.WriteFile(cfg.Data.DemandPath, []byte(demand), 0o644))
	require.NoError(t, os.WriteFile(cfg.Data.StopDemandPath, []byte(stopDemand), 0o644))
	require.NoError(t, os.WriteFile(cfg.Data.TravelTimesPath, []byte(travel), 0o644))

	svc, err := New(cfg)
	require.NoError(t, err)
	require.NoError(t, svc.Run(context.Background()))

	data, err := os.ReadFile(filepath.Join(cfg.Output.Dir, "run_summary.json"))
	require.NoError(t, err)
	var summary export.RunSummary
	require.NoError(t, json.Unmarshal(data, &summary))
	require.Equal(t, "Optimal", summary.SolverStatus)
	require.Nil(t, summary.ForecastAccuracy, "recorded runs carry no forecast accuracy")
}

func TestServiceAllocationOnlyThenReplay(t *testing.T) {
	cfg := testConfig(t)
	svc, err := New(cfg)
	require.NoError(t, err)

	require.NoError(t, svc.RunAllocationOnly(context.Background()))
	_, err = os.Stat(filepath.Join(cfg.Output.Dir, "allocation.csv"))
	require.NoError(t, err)
	_, err = os.Stat(filepath.Join(cfg.Output.Dir, "stop_events.csv"))
	require.True(t, os.IsNotExist(err), "allocation-only run must not simulate")

	require.NoError(t, svc.Simulate(context.Background()))
	data, err := os.ReadFile(filepath.Join(cfg.Output.Dir, "run_summary.json"))
	require.NoError(t, err)
	var summary export.RunSummary
	require.NoError(t, json.Unmarshal(data, &summary))
	require.Positive(t, summary.KPIs.TotalTrips)
	require.Positive(t, summary.Allocation.TotalBusHours)
}

func TestServiceRunMissingRoutes(t *testing.T) {
	cfg := testConfig(t)
	cfg.Data.RoutesPath = filepath.Join(t.TempDir(), "nope.csv")
	svc, err := New(cfg)
	require.NoError(t, err)
	require.Error(t, svc.Run(context.Background()))
}
