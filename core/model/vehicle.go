package model

import "fmt"

// DefaultCapacity is the seat count used when a vehicle is registered
// without a usable capacity.
const DefaultCapacity = 12

// Vehicle represents a passenger vehicle owned by the depot fleet.
type Vehicle struct {
	ID              int    `json:"id"`
	Capacity        int    `json:"capacity"`         // seats, fixed at registration
	Plate           string `json:"plate,omitempty"`  // optional label, may change
	TripsToday      int    `json:"trips_today"`      // trips completed in the current day
	PassengersToday int    `json:"passengers_today"` // passengers carried in the current day
}

// CanCarry reports whether the vehicle can take the given number of passengers.
func (v Vehicle) CanCarry(passengers int) bool {
	return passengers >= 0 && passengers <= v.Capacity
}

// LoadFactor returns the share of seats occupied by the given passenger count.
func (v Vehicle) LoadFactor(passengers int) float64 {
	if v.Capacity <= 0 {
		return 0
	}
	return float64(passengers) / float64(v.Capacity)
}

func (v Vehicle) String() string {
	return fmt.Sprintf("V%d (Cap:%d, Trips:%d, PaxToday:%d)", v.ID, v.Capacity, v.TripsToday, v.PassengersToday)
}
