// Package forecast produces route-level demand forecasts from
// historical per-stop counts using a seasonal moving average.
package forecast

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/stat"

	"github.com/kilianp07/transitopt/core/model"
)

// Config carries the forecaster parameters.
type Config struct {
	// WindowSlots is the number of historical slots averaged per
	// forecast.
	WindowSlots int `json:"window_slots"`
}

// SetDefaults applies the standard window.
func (c *Config) SetDefaults() {
	if c.WindowSlots == 0 {
		c.WindowSlots = 4
	}
}

// Validate checks the parameters are usable.
func (c Config) Validate() error {
	if c.WindowSlots <= 0 {
		return fmt.Errorf("window_slots must be positive")
	}
	return nil
}

// SeasonalFactor adjusts a flat moving average for the hour of day.
func SeasonalFactor(hourOfDay float64) float64 {
	switch {
	case hourOfDay >= 7 && hourOfDay <= 9:
		return 1.3
	case hourOfDay >= 17 && hourOfDay <= 19:
		return 1.4
	case hourOfDay >= 10 && hourOfDay <= 16:
		return 1.1
	case hourOfDay >= 20 && hourOfDay <= 22:
		return 1.0
	default:
		return 0.6
	}
}

// MovingAverage forecasts per-stop demand: for every stop with
// history and every slot at or beyond the window, the mean of the
// preceding window slots scaled by the seasonal factor. Slots inside
// the warm-up window carry no forecast.
func MovingAverage(history model.StopDemandTable, horizonSlots, slotMinutes, windowSlots int) model.StopDemandTable {
	series := make(map[string][]float64)
	for key, demand := range history {
		if key.Slot < 0 || key.Slot >= horizonSlots {
			continue
		}
		s, ok := series[key.StopID]
		if !ok {
			s = make([]float64, horizonSlots)
			series[key.StopID] = s
		}
		s[key.Slot] = demand
	}

	out := make(model.StopDemandTable)
	for stopID, s := range series {
		for slot := windowSlots; slot < horizonSlots; slot++ {
			avg := stat.Mean(s[slot-windowSlots:slot], nil)
			f := avg * SeasonalFactor(model.HourOfDay(slot, slotMinutes))
			if f < 0 {
				f = 0
			}
			out[model.StopSlot{StopID: stopID, Slot: slot}] = math.Round(f*10) / 10
		}
	}
	return out
}

// AggregateByRoute sums stop-level forecasts over each route's stop
// sequence, yielding the route-level table consumed by the optimizer.
func AggregateByRoute(routes []model.Route, stopForecast model.StopDemandTable, horizonSlots int) model.DemandTable {
	out := make(model.DemandTable)
	for _, route := range routes {
		stops := make(map[string]struct{}, len(route.Stops))
		for _, stopID := range route.Stops {
			stops[stopID] = struct{}{}
		}
		for stopID := range stops {
			for slot := 0; slot < horizonSlots; slot++ {
				if d, ok := stopForecast[model.StopSlot{StopID: stopID, Slot: slot}]; ok && d > 0 {
					out[model.RouteSlot{RouteID: route.ID, Slot: slot}] += d
				}
			}
		}
	}
	return out
}

// Accuracy summarizes forecast error against observed demand.
type Accuracy struct {
	MAE  float64 `json:"mae"`
	RMSE float64 `json:"rmse"`
	MAPE float64 `json:"mape"`
}

// Measure computes MAE, RMSE and MAPE over the keys present in both
// tables. Zero-demand observations are excluded from MAPE.
func Measure(actual, predicted model.StopDemandTable) Accuracy {
	var absErrs, sqErrs, pctErrs []float64
	for key, obs := range actual {
		pred, ok := predicted[key]
		if !ok {
			continue
		}
		diff := math.Abs(pred - obs)
		absErrs = append(absErrs, diff)
		sqErrs = append(sqErrs, diff*diff)
		if obs > 0 {
			pctErrs = append(pctErrs, diff/obs*100)
		}
	}
	if len(absErrs) == 0 {
		return Accuracy{}
	}
	acc := Accuracy{
		MAE:  stat.Mean(absErrs, nil),
		RMSE: math.Sqrt(stat.Mean(sqErrs, nil)),
	}
	if len(pctErrs) > 0 {
		acc.MAPE = stat.Mean(pctErrs, nil)
	}
	return acc
}
