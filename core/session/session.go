// Package session implements the day-based dispatch session.
//
// A Session owns the vehicle registry, the garages and the trip ledger. A
// single lock serialises every operation so that a trip's depart-then-park
// move is never observable half done, and StartDay/EndDay never interleave
// with a trip.
package session

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/kilianp07/depot/core/events"
	"github.com/kilianp07/depot/core/fleet"
	"github.com/kilianp07/depot/core/garage"
	"github.com/kilianp07/depot/core/ledger"
	"github.com/kilianp07/depot/core/logger"
	"github.com/kilianp07/depot/core/model"
	"github.com/kilianp07/depot/core/monitoring"
	"github.com/kilianp07/depot/core/report"
	"github.com/kilianp07/depot/internal/eventbus"
)

// DayStart describes the current day.
type DayStart struct {
	DayID     uuid.UUID
	StartedAt time.Time
	// Distribution maps every garage id to the vehicle ids parked at start,
	// in parking order (the last one departs first).
	Distribution map[int][]int
	// AlreadyActive is set when StartDay was called during an active day.
	AlreadyActive bool
}

// Session is the dispatch session. Create it with New.
type Session struct {
	mu            sync.Mutex
	state         State
	vehicles      *fleet.Registry
	garages       map[int]*garage.Garage
	nextGarageID  int
	ledger        *ledger.Ledger
	day           DayStart
	now           func() time.Time
	logger        logger.Logger
	bus           eventbus.EventBus[events.Event]
	reports       report.Store
	reportTimeout time.Duration
}

// New creates an inactive session. log and bus may be nil.
func New(cfg Config, log logger.Logger, bus eventbus.EventBus[events.Event]) *Session {
	cfg.SetDefaults()
	if log == nil {
		log = logger.NopLogger{}
	}
	return &Session{
		vehicles:      fleet.NewRegistry(cfg.DefaultCapacity),
		garages:       make(map[int]*garage.Garage),
		nextGarageID:  1,
		ledger:        ledger.New(),
		now:           time.Now,
		logger:        log,
		bus:           bus,
		reportTimeout: time.Duration(cfg.ReportTimeoutSeconds) * time.Second,
	}
}

// SetClock overrides the clock used for day and trip timestamps.
func (s *Session) SetClock(now func() time.Time) {
	if now == nil {
		return
	}
	s.mu.Lock()
	s.now = now
	s.ledger.SetClock(now)
	s.mu.Unlock()
}

// SetReportStore configures the store receiving end-of-day summaries.
func (s *Session) SetReportStore(store report.Store) {
	s.mu.Lock()
	s.reports = store
	s.mu.Unlock()
}

// State returns the lifecycle state.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Active reports whether a day is in progress.
func (s *Session) Active() bool { return s.State() == Active }

// CurrentDay returns the active day. ok is false while inactive.
func (s *Session) CurrentDay() (DayStart, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != Active {
		return DayStart{}, false
	}
	return s.dayCopy(), true
}

// AddVehicle registers a vehicle and returns its id. Non-positive capacities
// fall back to the configured default.
func (s *Session) AddVehicle(capacity int, plate string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state == Active {
		return 0, fmt.Errorf("add vehicle: %w", ErrSessionActive)
	}
	id := s.vehicles.Register(capacity, plate)
	v, _ := s.vehicles.Get(id)
	s.logger.Infof("vehicle registered: %s", v)
	return id, nil
}

// AddGarage registers a garage and returns its id.
func (s *Session) AddGarage(name string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state == Active {
		return 0, fmt.Errorf("add garage: %w", ErrSessionActive)
	}
	g := garage.New(s.nextGarageID, name)
	s.nextGarageID++
	s.garages[g.ID] = g
	s.logger.Infof("garage registered: %s", g)
	return g.ID, nil
}

// SetVehiclePlate changes a vehicle's plate. Allowed in any state.
func (s *Session) SetVehiclePlate(id int, plate string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.vehicles.SetPlate(id, plate); err != nil {
		return fmt.Errorf("%w: V%d", ErrInvalidVehicle, id)
	}
	return nil
}

// RenameGarage changes a garage's display name. Allowed in any state.
func (s *Session) RenameGarage(id int, name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	g, ok := s.garages[id]
	if !ok {
		return fmt.Errorf("%w: G%d", ErrInvalidGarage, id)
	}
	g.Rename(name)
	return nil
}

// StartDay distributes every vehicle round-robin over the garages and opens
// the day. Vehicles in ascending id order go to garages in ascending id
// order: the k-th vehicle is parked at garageIDs[k mod len(garageIDs)].
// Calling it during an active day changes nothing and returns the current
// day with AlreadyActive set.
func (s *Session) StartDay() (DayStart, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state == Active {
		s.logger.Infof("day %s already active", s.day.DayID)
		ds := s.dayCopy()
		ds.AlreadyActive = true
		return ds, nil
	}
	if len(s.garages) == 0 {
		return DayStart{}, fmt.Errorf("start day: %w", ErrNoGarages)
	}
	if s.vehicles.Len() == 0 {
		return DayStart{}, fmt.Errorf("start day: %w", ErrNoVehicles)
	}

	garageIDs := s.garageIDs()
	for _, g := range s.garages {
		g.Pool.Clear()
	}
	dist := make(map[int][]int, len(garageIDs))
	for _, gid := range garageIDs {
		dist[gid] = []int{}
	}
	for k, vid := range s.vehicles.IDs() {
		gid := garageIDs[k%len(garageIDs)]
		s.garages[gid].Pool.Park(vid)
		dist[gid] = append(dist[gid], vid)
	}
	s.vehicles.ResetAll()
	s.ledger.Clear()

	s.day = DayStart{DayID: uuid.New(), StartedAt: s.now(), Distribution: dist}
	s.state = Active
	s.logger.Infof("day %s started: %d vehicles over %d garages", s.day.DayID, s.vehicles.Len(), len(garageIDs))
	s.publish(events.DayStarted{DayID: s.day.DayID, StartedAt: s.day.StartedAt, Distribution: copyDistribution(dist)})
	return s.dayCopy(), nil
}

// EndDay closes the active day. The returned summary lists every vehicle
// by ascending id with the passengers and trips of the day; it is written
// to the report store before counters and the trip log are cleared.
// Without an active day it returns ErrSessionNotActive and changes nothing.
func (s *Session) EndDay() (model.DaySummary, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != Active {
		return model.DaySummary{}, fmt.Errorf("end day: %w", ErrSessionNotActive)
	}
	summary := s.summarize(s.now())
	s.storeReport(summary)

	s.vehicles.ResetAll()
	s.ledger.Clear()
	s.state = Inactive
	s.day = DayStart{}
	s.logger.Infof("day %s ended: %d trips, %d passengers", summary.DayID, summary.TotalTrips, summary.TotalPassengers)
	s.publish(events.DayEnded{Summary: summary})
	return summary, nil
}

// ReleaseTrip dispatches the top vehicle of the origin garage to the
// destination garage carrying the given passengers.
//
// Checks run in order: active day, origin exists, destination exists,
// origin differs from destination, origin not empty, passenger count within
// the departing vehicle's capacity. On any failure no vehicle changes
// garage and no trip is recorded.
func (s *Session) ReleaseTrip(origin, destination, passengers int) (model.Trip, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	route := model.Route{Origin: origin, Destination: destination}
	if s.state != Active {
		return model.Trip{}, s.reject(route, passengers, ErrSessionNotActive)
	}
	from, ok := s.garages[origin]
	if !ok {
		return model.Trip{}, s.reject(route, passengers, fmt.Errorf("%w: G%d", ErrInvalidOrigin, origin))
	}
	to, ok := s.garages[destination]
	if !ok {
		return model.Trip{}, s.reject(route, passengers, fmt.Errorf("%w: G%d", ErrInvalidDestination, destination))
	}
	if origin == destination {
		return model.Trip{}, s.reject(route, passengers, ErrSameGarage)
	}

	vid, ok := from.Pool.Depart()
	if !ok {
		return model.Trip{}, s.reject(route, passengers, fmt.Errorf("%w: G%d", ErrOriginEmpty, origin))
	}
	vehicle, err := s.vehicles.Get(vid)
	if err != nil {
		from.Pool.Park(vid)
		return model.Trip{}, s.reject(route, passengers, fmt.Errorf("%w: %v", ErrInvalidVehicle, err))
	}
	if !vehicle.CanCarry(passengers) {
		from.Pool.Park(vid)
		return model.Trip{}, s.reject(route, passengers, &PassengerCountError{VehicleID: vid, Capacity: vehicle.Capacity, Passengers: passengers})
	}

	trip := s.ledger.Append(origin, destination, vid, passengers)
	if err := s.vehicles.RecordTrip(vid, passengers); err != nil {
		// unreachable: the vehicle was read above under the same lock
		s.logger.Errorf("record trip for V%d: %v", vid, err)
	}
	to.Pool.Park(vid)

	s.logger.Debugw("trip released", logger.Fields{
		"trip_id":     trip.ID,
		"vehicle_id":  vid,
		"origin":      origin,
		"destination": destination,
		"passengers":  passengers,
	})
	s.publish(events.TripReleased{
		DayID:             s.day.DayID,
		Trip:              trip,
		Capacity:          vehicle.Capacity,
		OriginParked:      from.Pool.Count(),
		DestinationParked: to.Pool.Count(),
	})
	return trip, nil
}

func (s *Session) reject(route model.Route, passengers int, err error) error {
	s.logger.Warnf("trip %s rejected: %v", route, err)
	s.publish(events.TripRejected{DayID: s.day.DayID, Route: route, Passengers: passengers, Reason: Code(err), Time: s.now()})
	return fmt.Errorf("release trip: %w", err)
}

func (s *Session) storeReport(summary model.DaySummary) {
	if s.reports == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), s.reportTimeout)
	defer cancel()
	if err := s.reports.Append(ctx, summary); err != nil {
		s.logger.Errorf("store day report %s: %v", summary.DayID, err)
		monitoring.CaptureException(err, map[string]string{"module": "report", "day_id": summary.DayID.String()})
	}
}

func (s *Session) publish(ev events.Event) {
	if s.bus != nil {
		s.bus.Publish(ev)
	}
}

func (s *Session) garageIDs() []int {
	ids := make([]int, 0, len(s.garages))
	for id := range s.garages {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	return ids
}

func (s *Session) dayCopy() DayStart {
	ds := s.day
	ds.Distribution = copyDistribution(s.day.Distribution)
	return ds
}

func copyDistribution(in map[int][]int) map[int][]int {
	if in == nil {
		return nil
	}
	out := make(map[int][]int, len(in))
	for k, v := range in {
		out[k] = append([]int(nil), v...)
	}
	return out
}
