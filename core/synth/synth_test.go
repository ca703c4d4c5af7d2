package synth

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/kilianp07/transitopt/core/model"
)

func testConfig() Config {
	cfg := Config{}
	cfg.SetDefaults()
	return cfg
}

func TestPassengerDemandDeterminism(t *testing.T) {
	stops := []string{"s1", "s2", "s3"}
	a := PassengerDemand(stops, 96, 15, testConfig())
	b := PassengerDemand(stops, 96, 15, testConfig())
	require.Equal(t, a, b)

	cfg := testConfig()
	cfg.Seed = 7
	c := PassengerDemand(stops, 96, 15, cfg)
	require.NotEqual(t, a, c)
}

func TestPassengerDemandShape(t *testing.T) {
	demand := PassengerDemand([]string{"s1"}, 96, 15, testConfig())
	require.Len(t, demand, 96)
	for key, d := range demand {
		require.GreaterOrEqual(t, d, 0.0, "negative demand at %v", key)
	}
}

func TestTravelTimesCoverEdges(t *testing.T) {
	routes := []model.Route{
		{ID: "R1", Stops: []string{"a", "b", "c"}},
		{ID: "R2", Stops: []string{"b", "c", "d"}}, // b->c shared with R1
	}
	tt := TravelTimes(routes, 4, 15, testConfig())

	// Three distinct edges (a->b, b->c, c->d) over four slots.
	require.Len(t, tt, 12)
	for key, entry := range tt {
		require.Greater(t, entry.Minutes, 0.0, "edge %v", key)
		require.Greater(t, entry.CongestionFactor, 0.0)
	}
}

func TestTravelTimesRushHourSlower(t *testing.T) {
	routes := []model.Route{{ID: "R1", Stops: []string{"a", "b"}}}
	// Hourly slots: slot 8 is morning rush, slot 12 midday.
	tt := TravelTimes(routes, 24, 60, testConfig())

	rush := tt[model.Edge{From: "a", To: "b", Slot: 8}]
	midday := tt[model.Edge{From: "a", To: "b", Slot: 12}]
	require.Less(t, rush.CongestionFactor, 0.71)
	require.Greater(t, midday.CongestionFactor, 0.79)
	require.Greater(t, rush.Minutes, midday.Minutes)
}

func TestConfigValidate(t *testing.T) {
	cfg := testConfig()
	require.NoError(t, cfg.Validate())

	cfg.BaseSpeedKMH = -1
	require.Error(t, cfg.Validate())
}
