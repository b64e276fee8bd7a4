// Package ledger keeps the trips released during the current day.
package ledger

import (
	"sync"
	"time"

	"github.com/kilianp07/depot/core/model"
)

// Ledger is an append-only trip log. Trip ids come from a counter owned by
// the ledger and are never reused, even after Clear.
type Ledger struct {
	mu     sync.RWMutex
	trips  []model.Trip
	nextID int
	now    func() time.Time
}

// New returns an empty ledger stamping trips with time.Now.
func New() *Ledger {
	return &Ledger{nextID: 1, now: time.Now}
}

// SetClock overrides the clock used to timestamp trips.
func (l *Ledger) SetClock(now func() time.Time) {
	if now == nil {
		return
	}
	l.mu.Lock()
	l.now = now
	l.mu.Unlock()
}

// Append records a trip and returns it with its id and timestamp set.
func (l *Ledger) Append(origin, destination, vehicleID, passengers int) model.Trip {
	l.mu.Lock()
	defer l.mu.Unlock()
	t := model.Trip{
		ID:          l.nextID,
		Origin:      origin,
		Destination: destination,
		VehicleID:   vehicleID,
		Passengers:  passengers,
		Timestamp:   l.now(),
	}
	l.nextID++
	l.trips = append(l.trips, t)
	return t
}

// CountByRoute returns the number of trips from origin to destination.
func (l *Ledger) CountByRoute(origin, destination int) int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	n := 0
	for _, t := range l.trips {
		if t.Origin == origin && t.Destination == destination {
			n++
		}
	}
	return n
}

// ListByRoute returns the trips from origin to destination in insertion order.
func (l *Ledger) ListByRoute(origin, destination int) []model.Trip {
	l.mu.RLock()
	defer l.mu.RUnlock()
	var res []model.Trip
	for _, t := range l.trips {
		if t.Origin == origin && t.Destination == destination {
			res = append(res, t)
		}
	}
	return res
}

// SumPassengersByRoute returns the passengers carried from origin to destination.
func (l *Ledger) SumPassengersByRoute(origin, destination int) int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	sum := 0
	for _, t := range l.trips {
		if t.Origin == origin && t.Destination == destination {
			sum += t.Passengers
		}
	}
	return sum
}

// All returns a copy of every logged trip.
func (l *Ledger) All() []model.Trip {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return append([]model.Trip(nil), l.trips...)
}

// Len returns the number of logged trips.
func (l *Ledger) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.trips)
}

// Clear drops every logged trip. The id counter keeps running.
func (l *Ledger) Clear() {
	l.mu.Lock()
	l.trips = nil
	l.mu.Unlock()
}
