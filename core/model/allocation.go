package model

// Allocation is one optimizer output row: the bus count and absorbed
// overload for a (route, slot) pair. Rows are created once per
// successful solve and never mutated afterwards.
type Allocation struct {
	RouteID            string  `json:"route_id"`
	TimeSlot           int     `json:"time_slot"`
	HourOfDay          float64 `json:"hour_of_day"`
	Buses              int     `json:"buses_allocated"`
	OverloadPassengers float64 `json:"overload_passengers"`
	BusHours           float64 `json:"bus_hours"`
	CapacityProvided   int     `json:"capacity_provided"`
	ForecastDemand     float64 `json:"total_forecast_demand"`
}

// AllocationSummary aggregates a solved allocation into scalars.
type AllocationSummary struct {
	TotalBusHours           float64 `json:"total_bus_hours"`
	TotalOverloadPassengers float64 `json:"total_overload_passengers"`
	MaxBusesUsed            int     `json:"max_buses_used"`
	FleetUtilization        float64 `json:"fleet_utilization"`
	AverageLoadFactor       float64 `json:"average_load_factor"`
	RoutesServed            int     `json:"routes_served"`
	ActiveTimeSlots         int     `json:"active_time_slots"`
}
