package optimize

import "fmt"

// Config carries the fleet and horizon parameters of the allocation
// model.
type Config struct {
	FleetSize      int     `json:"fleet_size"`
	BusCapacity    int     `json:"bus_capacity"`
	CostPerBusHour float64 `json:"cost_per_bus_hour"`
	// OverloadPenalty is the objective cost per uncovered passenger.
	// It is a tunable trade-off: it must exceed the marginal cost of
	// an extra bus for the solver to prefer adding buses over
	// absorbing overload within the fleet and headway limits.
	OverloadPenalty   float64 `json:"overload_penalty"`
	MinHeadwayMinutes int     `json:"min_headway_minutes"`
	MaxHeadwayMinutes int     `json:"max_headway_minutes"`
	SlotMinutes       int     `json:"slot_minutes"`
	HorizonSlots      int     `json:"horizon_slots"`
}

// SetDefaults applies the standard planning parameters.
func (c *Config) SetDefaults() {
	if c.FleetSize == 0 {
		c.FleetSize = 100
	}
	if c.BusCapacity == 0 {
		c.BusCapacity = 80
	}
	if c.CostPerBusHour == 0 {
		c.CostPerBusHour = 50
	}
	if c.OverloadPenalty == 0 {
		c.OverloadPenalty = 1000
	}
	if c.MinHeadwayMinutes == 0 {
		c.MinHeadwayMinutes = 5
	}
	if c.MaxHeadwayMinutes == 0 {
		c.MaxHeadwayMinutes = 60
	}
	if c.SlotMinutes == 0 {
		c.SlotMinutes = 15
	}
	if c.HorizonSlots == 0 {
		c.HorizonSlots = 96
	}
}

// Validate checks the parameters are usable.
func (c Config) Validate() error {
	if c.FleetSize < 0 {
		return fmt.Errorf("fleet_size must be non-negative")
	}
	if c.BusCapacity <= 0 {
		return fmt.Errorf("bus_capacity must be positive")
	}
	if c.SlotMinutes <= 0 {
		return fmt.Errorf("slot_minutes must be positive")
	}
	if c.HorizonSlots <= 0 {
		return fmt.Errorf("horizon_slots must be positive")
	}
	if c.MinHeadwayMinutes <= 0 || c.MaxHeadwayMinutes <= 0 {
		return fmt.Errorf("headway bounds must be positive")
	}
	if c.MinHeadwayMinutes > c.MaxHeadwayMinutes {
		return fmt.Errorf("min_headway_minutes exceeds max_headway_minutes")
	}
	return nil
}

// minBusesPerSlot is the minimum service level for a slot with demand:
// at least one bus every MaxHeadwayMinutes.
func (c Config) minBusesPerSlot() int {
	m := c.SlotMinutes / c.MaxHeadwayMinutes
	if m < 1 {
		m = 1
	}
	return m
}

// maxBusesPerSlot caps service at one bus every MinHeadwayMinutes.
// Zero means unconstrained.
func (c Config) maxBusesPerSlot() int {
	return c.SlotMinutes / c.MinHeadwayMinutes
}
