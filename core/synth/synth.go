// Package synth generates deterministic synthetic demand and traffic
// tables for runs without recorded data.
package synth

import (
	"fmt"
	"math"

	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/stat/distuv"

	"github.com/kilianp07/transitopt/core/model"
)

// Config carries the generator parameters.
type Config struct {
	Seed         int64   `json:"seed"`
	DemandMean   float64 `json:"demand_mean"`
	DemandStd    float64 `json:"demand_std"`
	BaseSpeedKMH float64 `json:"base_speed_kmh"`
}

// SetDefaults applies the standard generator parameters.
func (c *Config) SetDefaults() {
	if c.Seed == 0 {
		c.Seed = 42
	}
	if c.DemandMean == 0 {
		c.DemandMean = 25
	}
	if c.DemandStd == 0 {
		c.DemandStd = 10
	}
	if c.BaseSpeedKMH == 0 {
		c.BaseSpeedKMH = 15
	}
}

// Validate checks the parameters are usable.
func (c Config) Validate() error {
	if c.DemandMean < 0 || c.DemandStd < 0 {
		return fmt.Errorf("demand parameters must be non-negative")
	}
	if c.BaseSpeedKMH <= 0 {
		return fmt.Errorf("base_speed_kmh must be positive")
	}
	return nil
}

// rushMultiplier scales mean demand by hour of day.
func rushMultiplier(hourOfDay float64) float64 {
	switch {
	case hourOfDay >= 7 && hourOfDay <= 9, hourOfDay >= 17 && hourOfDay <= 19:
		return 2.5
	case hourOfDay >= 10 && hourOfDay <= 16:
		return 1.2
	case hourOfDay >= 20 && hourOfDay <= 22:
		return 1.3
	default:
		return 0.3
	}
}

// congestionRange gives the speed-multiplier band for an hour: rush
// hours slow traffic down, night speeds it up.
func congestionRange(hourOfDay float64) (float64, float64) {
	switch {
	case hourOfDay >= 7 && hourOfDay <= 9, hourOfDay >= 17 && hourOfDay <= 19:
		return 0.3, 0.7
	case hourOfDay >= 22 || hourOfDay <= 5:
		return 1.2, 1.5
	default:
		return 0.8, 1.2
	}
}

// PassengerDemand draws per-(stop,slot) boarding demand from a normal
// distribution around the rush-adjusted mean, clamped at zero. The
// demand stream is seeded independently of the traffic stream.
func PassengerDemand(stops []string, horizonSlots, slotMinutes int, cfg Config) model.StopDemandTable {
	src := rand.NewSource(uint64(cfg.Seed))
	out := make(model.StopDemandTable, len(stops)*horizonSlots)
	for _, stopID := range stops {
		for slot := 0; slot < horizonSlots; slot++ {
			mean := cfg.DemandMean * rushMultiplier(model.HourOfDay(slot, slotMinutes))
			d := distuv.Normal{Mu: mean, Sigma: cfg.DemandStd, Src: src}.Rand()
			if d < 0 {
				d = 0
			}
			out[model.StopSlot{StopID: stopID, Slot: slot}] = math.Round(d)
		}
	}
	return out
}

// TravelTimes generates the per-edge travel-time table over the
// consecutive stop pairs of the given routes, assuming one kilometre
// between adjacent stops. The congestion factor divides the base
// speed, so rush hours yield longer hops.
func TravelTimes(routes []model.Route, horizonSlots, slotMinutes int, cfg Config) model.TravelTimeTable {
	src := rand.NewSource(uint64(cfg.Seed) + 2)
	baseMinutes := 60 / cfg.BaseSpeedKMH

	type pair struct{ from, to string }
	seen := make(map[pair]struct{})
	var pairs []pair
	for _, route := range routes {
		for i := 0; i+1 < len(route.Stops); i++ {
			p := pair{from: route.Stops[i], to: route.Stops[i+1]}
			if _, ok := seen[p]; ok {
				continue
			}
			seen[p] = struct{}{}
			pairs = append(pairs, p)
		}
	}

	out := make(model.TravelTimeTable, len(pairs)*horizonSlots)
	for _, p := range pairs {
		for slot := 0; slot < horizonSlots; slot++ {
			lo, hi := congestionRange(model.HourOfDay(slot, slotMinutes))
			factor := distuv.Uniform{Min: lo, Max: hi, Src: src}.Rand()
			out[model.Edge{From: p.from, To: p.to, Slot: slot}] = model.TravelTime{
				Minutes:          math.Round(baseMinutes/factor*100) / 100,
				CongestionFactor: math.Round(factor*1000) / 1000,
			}
		}
	}
	return out
}
