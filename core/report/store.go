// Package report persists end-of-day summaries.
package report

import (
	"context"
	"time"

	"github.com/kilianp07/depot/core/model"
)

// Query defines filters for retrieving summaries. Zero values match all.
type Query struct {
	Start time.Time // summaries ending at or after Start
	End   time.Time // summaries ending at or before End
	// VehicleID keeps only days in which the vehicle made at least one trip.
	VehicleID int
}

// Match reports whether the summary satisfies the query.
func (q Query) Match(s model.DaySummary) bool {
	if !q.Start.IsZero() && s.EndedAt.Before(q.Start) {
		return false
	}
	if !q.End.IsZero() && s.EndedAt.After(q.End) {
		return false
	}
	if q.VehicleID != 0 {
		v, ok := s.Vehicle(q.VehicleID)
		if !ok || v.Trips == 0 {
			return false
		}
	}
	return true
}

// Store persists day summaries and supports querying.
type Store interface {
	Append(ctx context.Context, s model.DaySummary) error
	Query(ctx context.Context, q Query) ([]model.DaySummary, error)
	Close() error
}
