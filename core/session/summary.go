package session

import (
	"time"

	"gonum.org/v1/gonum/stat"

	"github.com/kilianp07/depot/core/model"
)

// summarize builds the day summary from the current counters and trip log.
// Caller holds s.mu.
func (s *Session) summarize(ended time.Time) model.DaySummary {
	sum := model.DaySummary{
		DayID:     s.day.DayID,
		StartedAt: s.day.StartedAt,
		EndedAt:   ended,
	}
	vehicles := make(map[int]model.Vehicle)
	for _, v := range s.vehicles.List() {
		vehicles[v.ID] = v
		sum.Vehicles = append(sum.Vehicles, model.VehicleDay{
			VehicleID:  v.ID,
			Plate:      v.Plate,
			Capacity:   v.Capacity,
			Passengers: v.PassengersToday,
			Trips:      v.TripsToday,
		})
		sum.TotalTrips += v.TripsToday
		sum.TotalPassengers += v.PassengersToday
	}

	trips := s.ledger.All()
	loads := make([]float64, 0, len(trips))
	for _, t := range trips {
		if v, ok := vehicles[t.VehicleID]; ok && v.Capacity > 0 {
			loads = append(loads, v.LoadFactor(t.Passengers))
		}
	}
	if len(loads) > 0 {
		sum.MeanLoadFactor = stat.Mean(loads, nil)
	}
	// sample standard deviation is undefined below two trips
	if len(loads) > 1 {
		sum.LoadFactorStdDev = stat.StdDev(loads, nil)
	}
	return sum
}
