package session

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kilianp07/depot/core/events"
	"github.com/kilianp07/depot/core/model"
	"github.com/kilianp07/depot/core/monitoring"
	"github.com/kilianp07/depot/core/report"
	"github.com/kilianp07/depot/internal/eventbus"
)

// newSession builds a session with the given vehicle capacities and garage count.
func newSession(t *testing.T, capacities []int, garages int) *Session {
	t.Helper()
	s := New(Config{}, nil, nil)
	for _, c := range capacities {
		_, err := s.AddVehicle(c, "")
		require.NoError(t, err)
	}
	for i := 0; i < garages; i++ {
		_, err := s.AddGarage(fmt.Sprintf("G%d", i+1))
		require.NoError(t, err)
	}
	return s
}

func parked(t *testing.T, s *Session, garageID int) []int {
	t.Helper()
	l, err := s.GarageVehicles(garageID)
	require.NoError(t, err)
	ids := make([]int, 0, len(l.Vehicles))
	for _, v := range l.Vehicles {
		ids = append(ids, v.ID)
	}
	return ids
}

func totalParked(s *Session) int {
	n := 0
	for _, g := range s.Garages() {
		n += g.Vehicles
	}
	return n
}

func TestStartDay_RoundRobinDistribution(t *testing.T) {
	s := newSession(t, []int{4, 4, 4, 4, 4}, 2)
	ds, err := s.StartDay()
	require.NoError(t, err)
	assert.False(t, ds.AlreadyActive)
	assert.Equal(t, Active, s.State())
	assert.True(t, s.Active())

	assert.Equal(t, []int{1, 3, 5}, ds.Distribution[1])
	assert.Equal(t, []int{2, 4}, ds.Distribution[2])
	// snapshots are top-first
	assert.Equal(t, []int{5, 3, 1}, parked(t, s, 1))
	assert.Equal(t, []int{4, 2}, parked(t, s, 2))
	assert.Equal(t, 5, totalParked(s))
}

func TestStartDay_MoreGaragesThanVehicles(t *testing.T) {
	s := newSession(t, []int{4, 4}, 3)
	_, err := s.StartDay()
	require.NoError(t, err)
	assert.Equal(t, []int{1}, parked(t, s, 1))
	assert.Equal(t, []int{2}, parked(t, s, 2))
	assert.Empty(t, parked(t, s, 3))
}

func TestStartDay_Preconditions(t *testing.T) {
	s := New(Config{}, nil, nil)
	_, err := s.StartDay()
	assert.ErrorIs(t, err, ErrNoGarages, "garages are checked first")

	_, err = s.AddVehicle(4, "")
	require.NoError(t, err)
	_, err = s.StartDay()
	assert.ErrorIs(t, err, ErrNoGarages)

	s = New(Config{}, nil, nil)
	_, err = s.AddGarage("North")
	require.NoError(t, err)
	_, err = s.StartDay()
	assert.ErrorIs(t, err, ErrNoVehicles)
	assert.Equal(t, Inactive, s.State())
	assert.False(t, s.Active())
}

func TestStartDay_SecondCallIsNoop(t *testing.T) {
	s := newSession(t, []int{4, 4, 4}, 2)
	first, err := s.StartDay()
	require.NoError(t, err)
	_, err = s.ReleaseTrip(1, 2, 2)
	require.NoError(t, err)
	before1, before2 := parked(t, s, 1), parked(t, s, 2)

	second, err := s.StartDay()
	require.NoError(t, err)
	assert.True(t, second.AlreadyActive)
	assert.Equal(t, first.DayID, second.DayID)
	assert.Equal(t, before1, parked(t, s, 1))
	assert.Equal(t, before2, parked(t, s, 2))
	v, err := s.Vehicle(3)
	require.NoError(t, err)
	assert.Equal(t, 1, v.TripsToday, "counters must survive a redundant start")
	assert.Equal(t, 1, s.TripsCount(1, 2))
}

func TestStartDay_RebuildsPoolsEachDay(t *testing.T) {
	s := newSession(t, []int{4, 4}, 2)
	_, err := s.StartDay()
	require.NoError(t, err)
	_, err = s.ReleaseTrip(1, 2, 1)
	require.NoError(t, err)
	assert.Empty(t, parked(t, s, 1))
	_, err = s.EndDay()
	require.NoError(t, err)

	next, err := s.StartDay()
	require.NoError(t, err)
	assert.Equal(t, []int{1}, parked(t, s, 1))
	assert.Equal(t, []int{2}, parked(t, s, 2))
	assert.Equal(t, 0, s.TripsCount(1, 2))
	assert.NotEqual(t, [16]byte{}, [16]byte(next.DayID))
}

func TestRegistration_OnlyWhileInactive(t *testing.T) {
	s := newSession(t, []int{4}, 1)
	_, err := s.StartDay()
	require.NoError(t, err)

	_, err = s.AddVehicle(4, "")
	assert.ErrorIs(t, err, ErrSessionActive)
	_, err = s.AddGarage("late")
	assert.ErrorIs(t, err, ErrSessionActive)
	assert.Len(t, s.Vehicles(), 1)
	assert.Len(t, s.Garages(), 1)

	_, err = s.EndDay()
	require.NoError(t, err)
	id, err := s.AddVehicle(0, "PLT")
	require.NoError(t, err)
	assert.Equal(t, 2, id)
	v, err := s.Vehicle(id)
	require.NoError(t, err)
	assert.Equal(t, model.DefaultCapacity, v.Capacity)
}

func TestReleaseTrip_ReferenceScenario(t *testing.T) {
	s := newSession(t, []int{4, 4}, 2)
	_, err := s.StartDay()
	require.NoError(t, err)
	assert.Equal(t, []int{1}, parked(t, s, 1))
	assert.Equal(t, []int{2}, parked(t, s, 2))

	trip, err := s.ReleaseTrip(1, 2, 3)
	require.NoError(t, err)
	assert.Equal(t, 1, trip.ID)
	assert.Equal(t, 1, trip.VehicleID)
	assert.Equal(t, []int{1, 2}, parked(t, s, 2))
	v1, _ := s.Vehicle(1)
	assert.Equal(t, 1, v1.TripsToday)
	assert.Equal(t, 3, v1.PassengersToday)

	_, err = s.ReleaseTrip(1, 2, 1)
	assert.ErrorIs(t, err, ErrOriginEmpty)
	assert.Equal(t, 1, s.TripsCount(1, 2))

	sum, err := s.EndDay()
	require.NoError(t, err)
	require.Len(t, sum.Vehicles, 2)
	assert.Equal(t, model.VehicleDay{VehicleID: 1, Capacity: 4, Passengers: 3, Trips: 1}, sum.Vehicles[0])
	assert.Equal(t, model.VehicleDay{VehicleID: 2, Capacity: 4}, sum.Vehicles[1])
	assert.Equal(t, 1, sum.TotalTrips)
	assert.Equal(t, 3, sum.TotalPassengers)
	assert.Equal(t, 0, s.TripsCount(1, 2))
	assert.Empty(t, s.ListTrips(1, 2))
}

func TestReleaseTrip_LIFODeparture(t *testing.T) {
	s := newSession(t, []int{4, 4, 4, 4}, 2)
	_, err := s.StartDay()
	require.NoError(t, err)
	// G1 holds 1,3 (3 on top)
	trip, err := s.ReleaseTrip(1, 2, 1)
	require.NoError(t, err)
	assert.Equal(t, 3, trip.VehicleID)
	// G2 now holds 2,4,3 with 3 on top
	trip, err = s.ReleaseTrip(2, 1, 1)
	require.NoError(t, err)
	assert.Equal(t, 3, trip.VehicleID, "last arrived departs first")
}

func TestReleaseTrip_PassengerOverCapacityRestoresVehicle(t *testing.T) {
	s := newSession(t, []int{4, 6, 8}, 2)
	_, err := s.StartDay()
	require.NoError(t, err)
	before := parked(t, s, 1)

	_, err = s.ReleaseTrip(1, 2, 9)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalidPassengerCount)
	var pce *PassengerCountError
	require.True(t, errors.As(err, &pce))
	assert.Equal(t, 3, pce.VehicleID)
	assert.Equal(t, 8, pce.Capacity)
	assert.Equal(t, 9, pce.Passengers)

	assert.Equal(t, before, parked(t, s, 1), "origin pool must be unchanged")
	assert.Equal(t, 0, s.TripsCount(1, 2))
	assert.Equal(t, 3, totalParked(s))

	_, err = s.ReleaseTrip(1, 2, -1)
	assert.ErrorIs(t, err, ErrInvalidPassengerCount)
	assert.Equal(t, before, parked(t, s, 1))

	// the vehicle is still usable with a valid count; zero passengers is allowed
	trip, err := s.ReleaseTrip(1, 2, 0)
	require.NoError(t, err)
	assert.Equal(t, 3, trip.VehicleID)
	trip, err = s.ReleaseTrip(2, 1, 8)
	require.NoError(t, err)
	assert.Equal(t, 8, trip.Passengers)
}

func TestReleaseTrip_SameGarage(t *testing.T) {
	s := newSession(t, []int{4, 4}, 2)
	_, err := s.StartDay()
	require.NoError(t, err)
	for _, pax := range []int{-5, 0, 3, 100} {
		_, err := s.ReleaseTrip(1, 1, pax)
		assert.ErrorIs(t, err, ErrSameGarage)
	}
	assert.Equal(t, []int{1}, parked(t, s, 1))
	assert.Equal(t, 0, s.TripsCount(1, 1))
}

func TestReleaseTrip_ValidationOrder(t *testing.T) {
	s := newSession(t, []int{4, 4}, 2)
	_, err := s.ReleaseTrip(1, 2, 1)
	assert.ErrorIs(t, err, ErrSessionNotActive)

	_, err = s.StartDay()
	require.NoError(t, err)
	_, err = s.ReleaseTrip(9, 8, 1)
	assert.ErrorIs(t, err, ErrInvalidOrigin)
	_, err = s.ReleaseTrip(1, 8, 1)
	assert.ErrorIs(t, err, ErrInvalidDestination)
	_, err = s.ReleaseTrip(9, 9, 1)
	assert.ErrorIs(t, err, ErrInvalidOrigin)
	assert.Equal(t, 2, totalParked(s))
}

func TestEndDay_ResetsEverything(t *testing.T) {
	s := newSession(t, []int{4, 4, 4}, 3)
	_, err := s.StartDay()
	require.NoError(t, err)
	_, err = s.ReleaseTrip(1, 2, 4)
	require.NoError(t, err)
	_, err = s.ReleaseTrip(2, 3, 2)
	require.NoError(t, err)

	_, err = s.EndDay()
	require.NoError(t, err)
	assert.Equal(t, Inactive, s.State())
	for o := 1; o <= 3; o++ {
		for d := 1; d <= 3; d++ {
			assert.Zero(t, s.TripsCount(o, d))
			assert.Empty(t, s.ListTrips(o, d))
			assert.Zero(t, s.PassengersCount(o, d))
		}
	}
	for _, v := range s.Vehicles() {
		assert.Zero(t, v.TripsToday)
		assert.Zero(t, v.PassengersToday)
	}
	_, ok := s.CurrentDay()
	assert.False(t, ok)
}

func TestEndDay_WhenInactive(t *testing.T) {
	s := newSession(t, []int{4}, 1)
	_, err := s.EndDay()
	assert.ErrorIs(t, err, ErrSessionNotActive)
	assert.Equal(t, Inactive, s.State())
}

func TestEndDay_LoadFactorStats(t *testing.T) {
	s := newSession(t, []int{4, 8}, 2)
	_, err := s.StartDay()
	require.NoError(t, err)
	_, err = s.ReleaseTrip(1, 2, 4) // V1 full
	require.NoError(t, err)
	_, err = s.ReleaseTrip(2, 1, 4) // V1 again, top of G2
	require.NoError(t, err)
	_, err = s.ReleaseTrip(2, 1, 0) // V2 empty
	require.NoError(t, err)

	sum, err := s.EndDay()
	require.NoError(t, err)
	assert.InDelta(t, 2.0/3.0, sum.MeanLoadFactor, 1e-9)
	assert.InDelta(t, 0.5773502691896258, sum.LoadFactorStdDev, 1e-9)
}

func TestEndDay_NoTripsHasZeroStats(t *testing.T) {
	s := newSession(t, []int{4}, 1)
	_, err := s.StartDay()
	require.NoError(t, err)
	sum, err := s.EndDay()
	require.NoError(t, err)
	assert.Zero(t, sum.MeanLoadFactor)
	assert.Zero(t, sum.LoadFactorStdDev)
}

func TestRouteQueries(t *testing.T) {
	clock := time.Date(2024, 6, 3, 7, 0, 0, 0, time.UTC)
	s := newSession(t, []int{10, 10, 10, 10}, 2)
	s.SetClock(func() time.Time { return clock })
	_, err := s.StartDay()
	require.NoError(t, err)
	_, err = s.ReleaseTrip(1, 2, 5)
	require.NoError(t, err)
	_, err = s.ReleaseTrip(1, 2, 2)
	require.NoError(t, err)
	_, err = s.ReleaseTrip(2, 1, 7)
	require.NoError(t, err)

	assert.Equal(t, 2, s.TripsCount(1, 2))
	assert.Equal(t, 1, s.TripsCount(2, 1))
	assert.Equal(t, 7, s.PassengersCount(1, 2))
	assert.Equal(t, 7, s.PassengersCount(2, 1))
	trips := s.ListTrips(1, 2)
	require.Len(t, trips, 2)
	assert.Equal(t, []int{1, 2}, []int{trips[0].ID, trips[1].ID})
	assert.Equal(t, clock, trips[0].Timestamp)
}

func TestTripIDsNeverReused(t *testing.T) {
	s := newSession(t, []int{4, 4}, 2)
	_, err := s.StartDay()
	require.NoError(t, err)
	t1, err := s.ReleaseTrip(1, 2, 1)
	require.NoError(t, err)
	_, err = s.EndDay()
	require.NoError(t, err)
	_, err = s.StartDay()
	require.NoError(t, err)
	t2, err := s.ReleaseTrip(1, 2, 1)
	require.NoError(t, err)
	assert.Greater(t, t2.ID, t1.ID)

	other := newSession(t, []int{4, 4}, 2)
	_, err = other.StartDay()
	require.NoError(t, err)
	t3, err := other.ReleaseTrip(1, 2, 1)
	require.NoError(t, err)
	assert.Equal(t, 1, t3.ID, "sessions do not share trip counters")
}

func TestGarageVehicles(t *testing.T) {
	s := newSession(t, []int{4, 6, 12}, 1)
	_, err := s.GarageVehicles(2)
	assert.ErrorIs(t, err, ErrInvalidGarage)

	l, err := s.GarageVehicles(1)
	require.NoError(t, err)
	assert.Empty(t, l.Vehicles)
	assert.Zero(t, l.PotentialCapacity)

	_, err = s.StartDay()
	require.NoError(t, err)
	l, err = s.GarageVehicles(1)
	require.NoError(t, err)
	assert.Equal(t, 22, l.PotentialCapacity)
	assert.Equal(t, 3, l.Garage.Vehicles)
	assert.Equal(t, 3, l.Vehicles[0].ID)
}

func TestMetadataEdits(t *testing.T) {
	s := newSession(t, []int{4}, 1)
	_, err := s.StartDay()
	require.NoError(t, err)
	require.NoError(t, s.SetVehiclePlate(1, "NEW-0001"))
	require.NoError(t, s.RenameGarage(1, "Central"))
	assert.ErrorIs(t, s.SetVehiclePlate(5, "x"), ErrInvalidVehicle)
	assert.ErrorIs(t, s.RenameGarage(5, "x"), ErrInvalidGarage)
	v, _ := s.Vehicle(1)
	assert.Equal(t, "NEW-0001", v.Plate)
	assert.Equal(t, "Central", s.Garages()[0].Name)
	_, err = s.Vehicle(5)
	assert.ErrorIs(t, err, ErrInvalidVehicle)
}

func TestEventsPublished(t *testing.T) {
	bus := eventbus.New[events.Event]()
	sub := bus.SubscribeBuffered(16)
	s := New(Config{}, nil, bus)
	_, _ = s.AddVehicle(4, "")
	_, _ = s.AddVehicle(4, "")
	_, _ = s.AddGarage("A")
	_, _ = s.AddGarage("B")
	_, err := s.StartDay()
	require.NoError(t, err)
	_, err = s.ReleaseTrip(1, 2, 3)
	require.NoError(t, err)
	_, err = s.ReleaseTrip(1, 2, 3)
	require.Error(t, err)
	_, err = s.EndDay()
	require.NoError(t, err)

	var names []string
	for len(sub) > 0 {
		ev := <-sub
		names = append(names, ev.Name())
		switch e := ev.(type) {
		case events.TripReleased:
			assert.Equal(t, 0, e.OriginParked)
			assert.Equal(t, 2, e.DestinationParked)
			assert.Equal(t, 4, e.Capacity)
		case events.TripRejected:
			assert.Equal(t, "origin_empty", e.Reason)
		}
	}
	assert.Equal(t, []string{"day_started", "trip_released", "trip_rejected", "day_ended"}, names)
}

type failingStore struct{}

func (failingStore) Append(context.Context, model.DaySummary) error {
	return errors.New("disk full")
}

func (failingStore) Query(context.Context, report.Query) ([]model.DaySummary, error) {
	return nil, nil
}

func (failingStore) Close() error { return nil }

type captureMonitor struct{ errs []error }

func (c *captureMonitor) CaptureException(err error, _ map[string]string) { c.errs = append(c.errs, err) }
func (c *captureMonitor) Recover(any)                                    {}
func (c *captureMonitor) Flush(time.Duration)                            {}

func TestEndDay_ReportStore(t *testing.T) {
	store := report.NewMemoryStore()
	s := newSession(t, []int{4, 4}, 2)
	s.SetReportStore(store)
	_, err := s.StartDay()
	require.NoError(t, err)
	_, err = s.ReleaseTrip(1, 2, 2)
	require.NoError(t, err)
	sum, err := s.EndDay()
	require.NoError(t, err)

	stored, err := store.Query(context.Background(), report.Query{})
	require.NoError(t, err)
	require.Len(t, stored, 1)
	assert.Equal(t, sum.DayID, stored[0].DayID)
	assert.Equal(t, 2, stored[0].TotalPassengers)
}

func TestEndDay_ReportFailureDoesNotBlockReset(t *testing.T) {
	mon := &captureMonitor{}
	monitoring.Init(mon)
	t.Cleanup(func() { monitoring.Init(monitoring.NopMonitor{}) })

	s := newSession(t, []int{4}, 1)
	s.SetReportStore(failingStore{})
	_, err := s.StartDay()
	require.NoError(t, err)
	_, err = s.EndDay()
	require.NoError(t, err)
	assert.Equal(t, Inactive, s.State())
	assert.Len(t, mon.errs, 1)
}

// Concurrent trips must never lose or duplicate a vehicle.
func TestConcurrentReleasePreservesFleet(t *testing.T) {
	caps := make([]int, 12)
	for i := range caps {
		caps[i] = 5
	}
	s := newSession(t, caps, 3)
	_, err := s.StartDay()
	require.NoError(t, err)

	var wg sync.WaitGroup
	for w := 0; w < 8; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			for i := 0; i < 200; i++ {
				o := (w+i)%3 + 1
				d := (w+i+1)%3 + 1
				_, _ = s.ReleaseTrip(o, d, (i%7)-1)
			}
		}(w)
	}
	wg.Wait()

	seen := map[int]bool{}
	for _, g := range s.Garages() {
		for _, id := range parked(t, s, g.ID) {
			assert.False(t, seen[id], "vehicle %d parked twice", id)
			seen[id] = true
		}
	}
	assert.Len(t, seen, len(caps))
}

func TestCode(t *testing.T) {
	assert.Equal(t, "", Code(nil))
	assert.Equal(t, "origin_empty", Code(fmt.Errorf("release trip: %w", ErrOriginEmpty)))
	assert.Equal(t, "invalid_passenger_count", Code(&PassengerCountError{}))
	assert.Equal(t, "internal", Code(errors.New("other")))
	err, ok := ErrorForCode("same_garage")
	assert.True(t, ok)
	assert.Equal(t, ErrSameGarage, err)
	_, ok = ErrorForCode("nope")
	assert.False(t, ok)
}
