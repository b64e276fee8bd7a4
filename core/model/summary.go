package model

import (
	"time"

	"github.com/google/uuid"
)

// VehicleDay is the end-of-day tally for one vehicle.
type VehicleDay struct {
	VehicleID  int    `json:"vehicle_id"`
	Plate      string `json:"plate,omitempty"`
	Capacity   int    `json:"capacity"`
	Passengers int    `json:"passengers"`
	Trips      int    `json:"trips"`
}

// DaySummary is produced when a day ends, before counters and the trip log
// are cleared.
type DaySummary struct {
	DayID           uuid.UUID    `json:"day_id"`
	StartedAt       time.Time    `json:"started_at"`
	EndedAt         time.Time    `json:"ended_at"`
	Vehicles        []VehicleDay `json:"vehicles"` // ascending vehicle id
	TotalTrips      int          `json:"total_trips"`
	TotalPassengers int          `json:"total_passengers"`
	// MeanLoadFactor and LoadFactorStdDev describe passengers/capacity over
	// every trip of the day. Both are zero when no trip was made.
	MeanLoadFactor   float64 `json:"mean_load_factor"`
	LoadFactorStdDev float64 `json:"load_factor_stddev"`
}

// Vehicle returns the tally for the given vehicle id.
func (s DaySummary) Vehicle(id int) (VehicleDay, bool) {
	for _, v := range s.Vehicles {
		if v.VehicleID == id {
			return v, true
		}
	}
	return VehicleDay{}, false
}
