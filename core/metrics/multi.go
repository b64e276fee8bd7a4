package metrics

import (
	"errors"

	"github.com/kilianp07/depot/core/model"
)

// MultiSink fans records out to multiple sinks. Every sink is called even
// when an earlier one fails; the errors are joined.
type MultiSink struct {
	Sinks []MetricsSink
}

// NewMultiSink creates a MultiSink with the provided sinks.
func NewMultiSink(sinks ...MetricsSink) *MultiSink {
	return &MultiSink{Sinks: sinks}
}

func (m *MultiSink) RecordTrip(rec TripRecord) error {
	var errs []error
	for _, s := range m.Sinks {
		errs = append(errs, s.RecordTrip(rec))
	}
	return errors.Join(errs...)
}

// RecordRejection forwards to sinks implementing RejectionRecorder.
func (m *MultiSink) RecordRejection(ev RejectionEvent) error {
	var errs []error
	for _, s := range m.Sinks {
		if r, ok := s.(RejectionRecorder); ok {
			errs = append(errs, r.RecordRejection(ev))
		}
	}
	return errors.Join(errs...)
}

// RecordDayStart forwards to sinks implementing DayRecorder.
func (m *MultiSink) RecordDayStart(ev DayStartEvent) error {
	var errs []error
	for _, s := range m.Sinks {
		if r, ok := s.(DayRecorder); ok {
			errs = append(errs, r.RecordDayStart(ev))
		}
	}
	return errors.Join(errs...)
}

// RecordDayEnd forwards to sinks implementing DayRecorder.
func (m *MultiSink) RecordDayEnd(sum model.DaySummary) error {
	var errs []error
	for _, s := range m.Sinks {
		if r, ok := s.(DayRecorder); ok {
			errs = append(errs, r.RecordDayEnd(sum))
		}
	}
	return errors.Join(errs...)
}

// RecordOccupancy forwards to sinks implementing OccupancyRecorder.
func (m *MultiSink) RecordOccupancy(occ []Occupancy) error {
	var errs []error
	for _, s := range m.Sinks {
		if r, ok := s.(OccupancyRecorder); ok {
			errs = append(errs, r.RecordOccupancy(occ))
		}
	}
	return errors.Join(errs...)
}
