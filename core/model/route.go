package model

import "math"

// Route is a bus line with its ordered stop sequence, derived from one
// representative trip per route. Immutable for the planning horizon.
type Route struct {
	ID    string
	Stops []string
}

// RouteSlot keys route-level tables by route and time slot.
type RouteSlot struct {
	RouteID string
	Slot    int
}

// StopSlot keys stop-level tables by stop and time slot.
type StopSlot struct {
	StopID string
	Slot   int
}

// Edge keys the travel-time table by directed stop pair and time slot.
type Edge struct {
	From string
	To   string
	Slot int
}

// DemandTable maps (route, slot) to the forecast passenger count.
type DemandTable map[RouteSlot]float64

// StopDemandTable maps (stop, slot) to expected boarding passengers.
type StopDemandTable map[StopSlot]float64

// TravelTime is one entry of the inter-stop travel-time table.
type TravelTime struct {
	Minutes          float64
	CongestionFactor float64
}

// TravelTimeTable maps directed stop pairs per slot to travel times.
type TravelTimeTable map[Edge]TravelTime

// HourOfDay converts a slot index to the hour of day it starts in.
func HourOfDay(slot, slotMinutes int) float64 {
	return math.Mod(float64(slot)*float64(slotMinutes)/60, 24)
}
