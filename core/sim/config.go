package sim

import "fmt"

// Config carries the simulation parameters.
type Config struct {
	BusCapacity  int   `json:"bus_capacity"`
	SlotMinutes  int   `json:"slot_minutes"`
	HorizonSlots int   `json:"horizon_slots"`
	Seed         int64 `json:"seed"`
}

// SetDefaults applies the standard simulation parameters.
func (c *Config) SetDefaults() {
	if c.BusCapacity == 0 {
		c.BusCapacity = 80
	}
	if c.SlotMinutes == 0 {
		c.SlotMinutes = 15
	}
	if c.HorizonSlots == 0 {
		c.HorizonSlots = 96
	}
	if c.Seed == 0 {
		c.Seed = 42
	}
}

// Validate checks the parameters are usable.
func (c Config) Validate() error {
	if c.BusCapacity <= 0 {
		return fmt.Errorf("bus_capacity must be positive")
	}
	if c.SlotMinutes <= 0 {
		return fmt.Errorf("slot_minutes must be positive")
	}
	if c.HorizonSlots <= 0 {
		return fmt.Errorf("horizon_slots must be positive")
	}
	return nil
}
