package metrics

import (
	"time"

	"github.com/kilianp07/depot/core/model"
)

// TripRecord is a released trip to be recorded.
type TripRecord struct {
	DayID       string
	TripID      int
	VehicleID   int
	Origin      int
	Destination int
	Passengers  int
	Capacity    int
	Time        time.Time
}

// LoadFactor returns passengers over capacity, 0 for an unknown capacity.
func (r TripRecord) LoadFactor() float64 {
	return model.Vehicle{ID: r.VehicleID, Capacity: r.Capacity}.LoadFactor(r.Passengers)
}

// MetricsSink records trips for observability purposes.
type MetricsSink interface {
	RecordTrip(rec TripRecord) error
}

// RejectionEvent captures a trip request that was refused.
type RejectionEvent struct {
	DayID       string
	Origin      int
	Destination int
	Passengers  int
	Reason      string
	Time        time.Time
}

// RejectionRecorder records refused trip requests.
type RejectionRecorder interface {
	RecordRejection(ev RejectionEvent) error
}

// DayStartEvent marks the opening of a day.
type DayStartEvent struct {
	DayID    string
	Vehicles int
	Garages  int
	Time     time.Time
}

// DayRecorder records day boundaries.
type DayRecorder interface {
	RecordDayStart(ev DayStartEvent) error
	RecordDayEnd(sum model.DaySummary) error
}

// Occupancy is the number of vehicles parked at a garage.
type Occupancy struct {
	GarageID int
	Vehicles int
}

// OccupancyRecorder records garage occupancy after each move.
type OccupancyRecorder interface {
	RecordOccupancy(occ []Occupancy) error
}

// NopSink implements every recorder with no-op methods.
type NopSink struct{}

func (NopSink) RecordTrip(TripRecord) error          { return nil }
func (NopSink) RecordRejection(RejectionEvent) error { return nil }
func (NopSink) RecordDayStart(DayStartEvent) error   { return nil }
func (NopSink) RecordDayEnd(model.DaySummary) error  { return nil }
func (NopSink) RecordOccupancy([]Occupancy) error    { return nil }
