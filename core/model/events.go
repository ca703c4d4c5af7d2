package model

// StopEvent records one stop visit of one bus instance. Times are
// minutes from the start of the planning horizon.
type StopEvent struct {
	RouteID       string  `json:"route_id"`
	TimeSlot      int     `json:"time_slot"`
	BusNumber     int     `json:"bus_number"`
	StopID        string  `json:"stop_id"`
	StopSequence  int     `json:"stop_sequence"`
	ArrivalTime   float64 `json:"arrival_time"`
	DepartureTime float64 `json:"departure_time"`
	Boarding      int     `json:"passengers_boarding"`
	Alighting     int     `json:"passengers_alighting"`
	OnBoard       int     `json:"passengers_on_board"`
	Overloaded    bool    `json:"is_overloaded"`
	DwellTime     float64 `json:"dwell_time"`
	LoadFactor    float64 `json:"load_factor"`
}

// TripSummary records the terminal totals of one simulated bus trip.
type TripSummary struct {
	RouteID            string  `json:"route_id"`
	TimeSlot           int     `json:"time_slot"`
	BusNumber          int     `json:"bus_number"`
	DepartureTime      float64 `json:"departure_time"`
	ArrivalTime        float64 `json:"arrival_time"`
	Duration           float64 `json:"trip_duration"`
	TotalBoarding      int     `json:"total_boarding"`
	TotalAlighting     int     `json:"total_alighting"`
	MaxPassengers      int     `json:"max_passengers"`
	AvgLoadFactor      float64 `json:"avg_load_factor"`
	OverloadedSegments int     `json:"overloaded_segments"`
	StopsServed        int     `json:"stops_served"`
}

// KPISet is the scalar service-quality report computed once per
// simulation run.
type KPISet struct {
	TotalTrips             int     `json:"total_trips_simulated"`
	TotalStopVisits        int     `json:"total_stops_served"`
	UniqueRoutes           int     `json:"unique_routes"`
	AvgTripDuration        float64 `json:"avg_trip_duration"`
	AvgPassengersPerTrip   float64 `json:"avg_passengers_per_trip"`
	AvgLoadFactor          float64 `json:"avg_load_factor"`
	PercentOverloadedTrips float64 `json:"percent_overloaded_trips"`
	MaxLoadFactor          float64 `json:"max_load_factor"`
	TotalPassengerKM       float64 `json:"total_passenger_km"`
	AvgBoardingPerStop     float64 `json:"avg_boarding_per_stop"`
	AvgDwellTime           float64 `json:"avg_dwell_time"`
	PercentOverloadedStops float64 `json:"percent_overloaded_stops"`
	EstimatedAvgWaitTime   float64 `json:"estimated_avg_wait_time"`
	FleetUtilization       float64 `json:"fleet_utilization"`
	ScheduledBusHours      float64 `json:"total_bus_hours_scheduled"`
}
