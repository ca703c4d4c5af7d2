package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"

	"github.com/kilianp07/transitopt/core/model"
)

func TestPromSinkRecords(t *testing.T) {
	reg := prometheus.NewRegistry()
	sink, err := NewPromSink(reg)
	require.NoError(t, err)

	summary := model.AllocationSummary{
		TotalBusHours:           120.5,
		TotalOverloadPassengers: 12,
		FleetUtilization:        0.87,
	}
	require.NoError(t, sink.RecordAllocation(summary, 6050, 250*time.Millisecond))
	require.NoError(t, sink.RecordKPIs(model.KPISet{TotalTrips: 42, AvgLoadFactor: 0.7}))

	require.Equal(t, 0.87, testutil.ToFloat64(sink.fleetUtilization))
	require.Equal(t, 120.5, testutil.ToFloat64(sink.busHours))
	require.Equal(t, 42.0, testutil.ToFloat64(sink.tripsSimulated))
	require.Equal(t, 1.0, testutil.ToFloat64(sink.runs))
}

func TestPromSinkReregister(t *testing.T) {
	reg := prometheus.NewRegistry()
	first, err := NewPromSink(reg)
	require.NoError(t, err)
	second, err := NewPromSink(reg)
	require.NoError(t, err)

	require.NoError(t, first.RecordKPIs(model.KPISet{TotalTrips: 1}))
	require.NoError(t, second.RecordKPIs(model.KPISet{TotalTrips: 2}))
	require.Equal(t, 2.0, testutil.ToFloat64(first.tripsSimulated))
}
