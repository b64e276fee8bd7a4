package session

import (
	"fmt"

	"github.com/kilianp07/depot/core/model"
)

// GarageInfo is a diagnostic view of a garage.
type GarageInfo struct {
	ID       int
	Name     string
	Vehicles int
}

func (g GarageInfo) String() string {
	return fmt.Sprintf("G%d - %s (Cars:%d)", g.ID, g.Name, g.Vehicles)
}

// GarageListing is the content of one garage.
type GarageListing struct {
	Garage GarageInfo
	// Vehicles are ordered top-first: Vehicles[0] departs next.
	Vehicles []model.Vehicle
	// PotentialCapacity is the sum of the parked vehicles' capacities.
	PotentialCapacity int
}

// GarageVehicles lists the vehicles parked at a garage.
func (s *Session) GarageVehicles(id int) (GarageListing, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	g, ok := s.garages[id]
	if !ok {
		return GarageListing{}, fmt.Errorf("%w: G%d", ErrInvalidGarage, id)
	}
	res := GarageListing{Garage: GarageInfo{ID: g.ID, Name: g.Name, Vehicles: g.Pool.Count()}}
	for _, vid := range g.Pool.Snapshot() {
		v, err := s.vehicles.Get(vid)
		if err != nil {
			continue
		}
		res.Vehicles = append(res.Vehicles, v)
		res.PotentialCapacity += v.Capacity
	}
	return res, nil
}

// TripsCount returns the number of trips from origin to destination in the
// current day.
func (s *Session) TripsCount(origin, destination int) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ledger.CountByRoute(origin, destination)
}

// ListTrips returns the current day's trips from origin to destination in
// release order.
func (s *Session) ListTrips(origin, destination int) []model.Trip {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ledger.ListByRoute(origin, destination)
}

// PassengersCount returns the passengers carried from origin to destination
// in the current day.
func (s *Session) PassengersCount(origin, destination int) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ledger.SumPassengersByRoute(origin, destination)
}

// Garages lists every garage by ascending id.
func (s *Session) Garages() []GarageInfo {
	s.mu.Lock()
	defer s.mu.Unlock()
	ids := s.garageIDs()
	res := make([]GarageInfo, 0, len(ids))
	for _, id := range ids {
		g := s.garages[id]
		res = append(res, GarageInfo{ID: g.ID, Name: g.Name, Vehicles: g.Pool.Count()})
	}
	return res
}

// Vehicles lists every vehicle by ascending id.
func (s *Session) Vehicles() []model.Vehicle {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.vehicles.List()
}

// Vehicle returns one vehicle.
func (s *Session) Vehicle(id int) (model.Vehicle, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, err := s.vehicles.Get(id)
	if err != nil {
		return model.Vehicle{}, fmt.Errorf("%w: V%d", ErrInvalidVehicle, id)
	}
	return v, nil
}
