// Package events defines the session events emitted on the event bus.
//
// Available event types:
//   - DayStarted: a day began and vehicles were distributed
//   - TripReleased: a vehicle left its origin with passengers
//   - TripRejected: a trip request failed validation or found no vehicle
//   - DayEnded: the day closed with its summary
package events

// Event is implemented by every session event. Name is a stable identifier
// used as a topic suffix and metric label.
type Event interface {
	Name() string
}
