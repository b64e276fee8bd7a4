package model

import (
	"fmt"
	"time"
)

// Route is an ordered garage pair. Direction matters: (1,2) and (2,1) are
// different routes.
type Route struct {
	Origin      int `json:"origin"`
	Destination int `json:"destination"`
}

func (r Route) String() string {
	return fmt.Sprintf("G%d -> G%d", r.Origin, r.Destination)
}

// Trip records a vehicle moving passengers from one garage to another.
type Trip struct {
	ID          int       `json:"id"`
	Origin      int       `json:"origin"`
	Destination int       `json:"destination"`
	VehicleID   int       `json:"vehicle_id"`
	Passengers  int       `json:"passengers"`
	Timestamp   time.Time `json:"timestamp"`
}

// Route returns the trip's origin/destination pair.
func (t Trip) Route() Route {
	return Route{Origin: t.Origin, Destination: t.Destination}
}

func (t Trip) String() string {
	return fmt.Sprintf("Trip#%d: %s - G%d -> G%d | V%d | Pax:%d",
		t.ID, t.Timestamp.Format("2006-01-02 15:04:05"), t.Origin, t.Destination, t.VehicleID, t.Passengers)
}
