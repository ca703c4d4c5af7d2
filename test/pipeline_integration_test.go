package test

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/kilianp07/transitopt/app"
	"github.com/kilianp07/transitopt/config"
	"github.com/kilianp07/transitopt/pkg/export"
)

// writeFixture lays out a routes table and a config file pointing at
// it, returning the config path and the output directory.
func writeFixture(t *testing.T, outDir string) string {
	t.Helper()
	dir := t.TempDir()
	routes := `route_id,stop_sequence,stop_id
R1,0,s1
R1,1,s2
R1,2,s3
R1,3,s4
R2,0,s3
R2,1,s5
`
	routesPath := filepath.Join(dir, "routes.csv")
	require.NoError(t, os.WriteFile(routesPath, []byte(routes), 0o644))

	cfgData := fmt.Sprintf(`optimizer:
  fleet_size: 25
  horizon_slots: 12
simulation:
  horizon_slots: 12
data:
  routes_path: %q
output:
  dir: %q
`, routesPath, outDir)
	cfgPath := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(cfgPath, []byte(cfgData), 0o644))
	return cfgPath
}

func runPipeline(t *testing.T, outDir string) {
	t.Helper()
	cfg, err := config.Load(writeFixture(t, outDir))
	require.NoError(t, err)
	svc, err := app.New(cfg)
	require.NoError(t, err)
	require.NoError(t, svc.Run(context.Background()))
}

func TestPipelineProducesArtifacts(t *testing.T) {
	outDir := filepath.Join(t.TempDir(), "out")
	runPipeline(t, outDir)

	for _, name := range []string{"allocation.csv", "stop_events.csv", "trips.csv", "report.html", "run_summary.json"} {
		info, err := os.Stat(filepath.Join(outDir, name))
		require.NoError(t, err, name)
		require.Positive(t, info.Size(), name)
	}

	data, err := os.ReadFile(filepath.Join(outDir, "run_summary.json"))
	require.NoError(t, err)
	var summary export.RunSummary
	require.NoError(t, json.Unmarshal(data, &summary))
	require.Equal(t, "Optimal", summary.SolverStatus)
	require.Positive(t, summary.Allocation.TotalBusHours)
	require.Positive(t, summary.KPIs.TotalTrips)
	require.Zero(t, summary.SkippedRoutes)
}

// Two runs with identical seeds must produce identical event logs,
// byte for byte, despite trips being simulated concurrently.
func TestPipelineDeterministic(t *testing.T) {
	outA := filepath.Join(t.TempDir(), "a")
	outB := filepath.Join(t.TempDir(), "b")
	runPipeline(t, outA)
	runPipeline(t, outB)

	for _, name := range []string{"allocation.csv", "stop_events.csv", "trips.csv"} {
		a, err := os.ReadFile(filepath.Join(outA, name))
		require.NoError(t, err)
		b, err := os.ReadFile(filepath.Join(outB, name))
		require.NoError(t, err)
		require.Equal(t, a, b, name)
	}
}
