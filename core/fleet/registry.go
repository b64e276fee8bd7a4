// Package fleet owns vehicle identity, capacity and the per-day counters.
package fleet

import (
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/kilianp07/depot/core/model"
)

// ErrVehicleNotFound is returned when an id does not match a registered vehicle.
var ErrVehicleNotFound = errors.New("vehicle not found")

// Registry stores registered vehicles keyed by id.
type Registry struct {
	mu              sync.RWMutex
	data            map[int]*model.Vehicle
	nextID          int
	defaultCapacity int
}

// NewRegistry returns an empty registry. Vehicles registered with a
// non-positive capacity receive defaultCapacity; a non-positive
// defaultCapacity falls back to model.DefaultCapacity.
func NewRegistry(defaultCapacity int) *Registry {
	if defaultCapacity <= 0 {
		defaultCapacity = model.DefaultCapacity
	}
	return &Registry{data: map[int]*model.Vehicle{}, nextID: 1, defaultCapacity: defaultCapacity}
}

// Register adds a vehicle and returns its id. Ids are sequential from 1.
func (r *Registry) Register(capacity int, plate string) int {
	if capacity <= 0 {
		capacity = r.defaultCapacity
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	id := r.nextID
	r.nextID++
	r.data[id] = &model.Vehicle{ID: id, Capacity: capacity, Plate: plate}
	return id
}

// Get returns a snapshot of the vehicle.
func (r *Registry) Get(id int) (model.Vehicle, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	v, ok := r.data[id]
	if !ok {
		return model.Vehicle{}, fmt.Errorf("%w: V%d", ErrVehicleNotFound, id)
	}
	return *v, nil
}

// SetPlate updates the vehicle's plate label.
func (r *Registry) SetPlate(id int, plate string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	v, ok := r.data[id]
	if !ok {
		return fmt.Errorf("%w: V%d", ErrVehicleNotFound, id)
	}
	v.Plate = plate
	return nil
}

// RecordTrip adds one trip and the given passengers to the vehicle's
// counters. Bounds are the caller's responsibility.
func (r *Registry) RecordTrip(id, passengers int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	v, ok := r.data[id]
	if !ok {
		return fmt.Errorf("%w: V%d", ErrVehicleNotFound, id)
	}
	v.TripsToday++
	v.PassengersToday += passengers
	return nil
}

// ResetDailyCounters zeroes trips and passengers for one vehicle.
func (r *Registry) ResetDailyCounters(id int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	v, ok := r.data[id]
	if !ok {
		return fmt.Errorf("%w: V%d", ErrVehicleNotFound, id)
	}
	v.TripsToday = 0
	v.PassengersToday = 0
	return nil
}

// ResetAll zeroes the daily counters of every vehicle.
func (r *Registry) ResetAll() {
	r.mu.Lock()
	for _, v := range r.data {
		v.TripsToday = 0
		v.PassengersToday = 0
	}
	r.mu.Unlock()
}

// IDs returns every registered id in ascending order.
func (r *Registry) IDs() []int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	ids := make([]int, 0, len(r.data))
	for id := range r.data {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	return ids
}

// List returns snapshots of every vehicle ordered by id.
func (r *Registry) List() []model.Vehicle {
	r.mu.RLock()
	defer r.mu.RUnlock()
	res := make([]model.Vehicle, 0, len(r.data))
	for _, v := range r.data {
		res = append(res, *v)
	}
	sort.Slice(res, func(i, j int) bool { return res[i].ID < res[j].ID })
	return res
}

// Len returns the number of registered vehicles.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.data)
}
