package events

import (
	"time"

	"github.com/google/uuid"

	"github.com/kilianp07/depot/core/model"
)

// TripReleased is published after the vehicle is parked at the destination.
type TripReleased struct {
	DayID    uuid.UUID  `json:"day_id"`
	Trip     model.Trip `json:"trip"`
	Capacity int        `json:"capacity"`
	// Parked counts after the move.
	OriginParked      int `json:"origin_parked"`
	DestinationParked int `json:"destination_parked"`
}

func (TripReleased) Name() string { return "trip_released" }

// TripRejected is published when ReleaseTrip fails. Reason is the error code.
type TripRejected struct {
	DayID      uuid.UUID   `json:"day_id"`
	Route      model.Route `json:"route"`
	Passengers int         `json:"passengers"`
	Reason     string      `json:"reason"`
	Time       time.Time   `json:"time"`
}

func (TripRejected) Name() string { return "trip_rejected" }
