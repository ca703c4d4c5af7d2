package metrics

import (
	"context"
	"net/http"
	"strings"
	"time"

	influxdb2 "github.com/influxdata/influxdb-client-go/v2"
	"github.com/influxdata/influxdb-client-go/v2/api"

	coremetrics "github.com/kilianp07/transitopt/core/metrics"
	"github.com/kilianp07/transitopt/core/model"
	"github.com/kilianp07/transitopt/infra/logger"
)

// InfluxSink writes planning results to an InfluxDB instance using
// the official client.
type InfluxSink struct {
	client   influxdb2.Client
	writeAPI api.WriteAPIBlocking
	log      logger.Logger
}

// NewInfluxSink creates a sink for the given InfluxDB endpoint.
func NewInfluxSink(url, token, org, bucket string) *InfluxSink {
	base := strings.TrimSuffix(url, "/api/v2/write")
	client := influxdb2.NewClientWithOptions(base, token,
		influxdb2.DefaultOptions().SetHTTPClient(&http.Client{Timeout: 5 * time.Second}))
	return &InfluxSink{
		client:   client,
		writeAPI: client.WriteAPIBlocking(org, bucket),
		log:      logger.New("influx-sink"),
	}
}

// NewInfluxSinkWithFallback pings the InfluxDB instance and returns a
// NopSink if the health check fails.
func NewInfluxSinkWithFallback(url, token, org, bucket string) coremetrics.MetricsSink {
	sink := NewInfluxSink(url, token, org, bucket)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	health, err := sink.client.Health(ctx)
	if err != nil || health.Status != "pass" {
		if err != nil {
			sink.log.Errorf("influx health check error: %v", err)
		} else {
			sink.log.Errorf("influx health status: %s", health.Status)
		}
		sink.client.Close()
		return coremetrics.NopSink{}
	}
	return sink
}

// RecordAllocation writes the optimizer summary as a point.
func (s *InfluxSink) RecordAllocation(summary model.AllocationSummary, objective float64, solveTime time.Duration) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	p := influxdb2.NewPoint("allocation",
		nil,
		map[string]any{
			"objective":           objective,
			"total_bus_hours":     summary.TotalBusHours,
			"overload_passengers": summary.TotalOverloadPassengers,
			"max_buses_used":      summary.MaxBusesUsed,
			"fleet_utilization":   summary.FleetUtilization,
			"routes_served":       summary.RoutesServed,
			"solve_seconds":       solveTime.Seconds(),
		},
		time.Now())
	return s.writeAPI.WritePoint(ctx, p)
}

// RecordKPIs writes the simulation report as a point.
func (s *InfluxSink) RecordKPIs(k model.KPISet) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	p := influxdb2.NewPoint("service_kpis",
		nil,
		map[string]any{
			"trips":                    k.TotalTrips,
			"stop_visits":              k.TotalStopVisits,
			"avg_trip_duration":        k.AvgTripDuration,
			"avg_load_factor":          k.AvgLoadFactor,
			"max_load_factor":          k.MaxLoadFactor,
			"overloaded_trips_percent": k.PercentOverloadedTrips,
			"overloaded_stops_percent": k.PercentOverloadedStops,
			"estimated_avg_wait":       k.EstimatedAvgWaitTime,
		},
		time.Now())
	return s.writeAPI.WritePoint(ctx, p)
}

// Close releases the underlying client.
func (s *InfluxSink) Close() { s.client.Close() }
