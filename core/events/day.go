package events

import (
	"time"

	"github.com/google/uuid"

	"github.com/kilianp07/depot/core/model"
)

// DayStarted is published once vehicles have been distributed.
// Distribution maps garage id to vehicle ids in parking order.
type DayStarted struct {
	DayID        uuid.UUID     `json:"day_id"`
	StartedAt    time.Time     `json:"started_at"`
	Distribution map[int][]int `json:"distribution"`
}

func (DayStarted) Name() string { return "day_started" }

// DayEnded carries the summary computed before counters were reset.
type DayEnded struct {
	Summary model.DaySummary `json:"summary"`
}

func (DayEnded) Name() string { return "day_ended" }
