package metrics

import (
	"context"

	"github.com/kilianp07/depot/core/events"
	"github.com/kilianp07/depot/core/logger"
	coremetrics "github.com/kilianp07/depot/core/metrics"
	"github.com/kilianp07/depot/core/monitoring"
	"github.com/kilianp07/depot/internal/eventbus"
)

// CollectorBuffer is the subscription size of the event collector.
const CollectorBuffer = 1024

// StartEventCollector subscribes to the event bus and forwards session
// events to the sink. It stops when the context is canceled or the bus is
// closed; the returned channel is closed once it has.
func StartEventCollector(ctx context.Context, bus eventbus.EventBus[events.Event], sink coremetrics.MetricsSink, log logger.Logger) <-chan struct{} {
	done := make(chan struct{})
	if bus == nil || sink == nil {
		close(done)
		return done
	}
	if log == nil {
		log = logger.NopLogger{}
	}
	sub := bus.SubscribeBuffered(CollectorBuffer)
	go func() {
		defer close(done)
		defer bus.Unsubscribe(sub)
		for {
			select {
			case <-ctx.Done():
				return
			case ev, ok := <-sub:
				if !ok {
					return
				}
				if err := Record(sink, ev); err != nil {
					log.Warnf("record %s: %v", ev.Name(), err)
					monitoring.CaptureException(err, map[string]string{"module": "metrics", "event": ev.Name()})
				}
			}
		}
	}()
	return done
}

// Record translates one session event into sink calls. Optional recorders
// the sink does not implement are skipped.
func Record(sink coremetrics.MetricsSink, ev events.Event) error {
	switch e := ev.(type) {
	case events.TripReleased:
		if err := sink.RecordTrip(coremetrics.TripRecord{
			DayID:       e.DayID.String(),
			TripID:      e.Trip.ID,
			VehicleID:   e.Trip.VehicleID,
			Origin:      e.Trip.Origin,
			Destination: e.Trip.Destination,
			Passengers:  e.Trip.Passengers,
			Capacity:    e.Capacity,
			Time:        e.Trip.Timestamp,
		}); err != nil {
			return err
		}
		if r, ok := sink.(coremetrics.OccupancyRecorder); ok {
			return r.RecordOccupancy([]coremetrics.Occupancy{
				{GarageID: e.Trip.Origin, Vehicles: e.OriginParked},
				{GarageID: e.Trip.Destination, Vehicles: e.DestinationParked},
			})
		}
	case events.TripRejected:
		if r, ok := sink.(coremetrics.RejectionRecorder); ok {
			return r.RecordRejection(coremetrics.RejectionEvent{
				DayID:       e.DayID.String(),
				Origin:      e.Route.Origin,
				Destination: e.Route.Destination,
				Passengers:  e.Passengers,
				Reason:      e.Reason,
				Time:        e.Time,
			})
		}
	case events.DayStarted:
		vehicles := 0
		occ := make([]coremetrics.Occupancy, 0, len(e.Distribution))
		for gid, ids := range e.Distribution {
			vehicles += len(ids)
			occ = append(occ, coremetrics.Occupancy{GarageID: gid, Vehicles: len(ids)})
		}
		if r, ok := sink.(coremetrics.DayRecorder); ok {
			if err := r.RecordDayStart(coremetrics.DayStartEvent{
				DayID:    e.DayID.String(),
				Vehicles: vehicles,
				Garages:  len(e.Distribution),
				Time:     e.StartedAt,
			}); err != nil {
				return err
			}
		}
		if r, ok := sink.(coremetrics.OccupancyRecorder); ok {
			return r.RecordOccupancy(occ)
		}
	case events.DayEnded:
		if r, ok := sink.(coremetrics.DayRecorder); ok {
			return r.RecordDayEnd(e.Summary)
		}
	}
	return nil
}
