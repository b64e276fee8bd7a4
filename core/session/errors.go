package session

import (
	"errors"
	"fmt"
)

// State errors.
var (
	ErrSessionActive    = errors.New("operation not allowed while a day is active")
	ErrSessionNotActive = errors.New("no active day")
)

// Not-found errors.
var (
	ErrInvalidGarage      = errors.New("invalid garage")
	ErrInvalidOrigin      = errors.New("invalid origin garage")
	ErrInvalidDestination = errors.New("invalid destination garage")
	ErrInvalidVehicle     = errors.New("invalid vehicle")
)

// Precondition errors for StartDay.
var (
	ErrNoGarages  = errors.New("no garages registered")
	ErrNoVehicles = errors.New("no vehicles registered")
)

// Validation and resource errors for ReleaseTrip.
var (
	ErrSameGarage            = errors.New("origin and destination are the same garage")
	ErrInvalidPassengerCount = errors.New("invalid passenger count")
	ErrOriginEmpty           = errors.New("origin garage is empty")
)

// PassengerCountError reports a passenger count outside [0, capacity].
// It matches ErrInvalidPassengerCount with errors.Is.
type PassengerCountError struct {
	VehicleID  int
	Capacity   int
	Passengers int
}

func (e *PassengerCountError) Error() string {
	return fmt.Sprintf("%v %d: vehicle V%d capacity is %d", ErrInvalidPassengerCount, e.Passengers, e.VehicleID, e.Capacity)
}

func (e *PassengerCountError) Unwrap() error { return ErrInvalidPassengerCount }

var codes = []struct {
	err  error
	code string
}{
	{ErrSessionActive, "session_active"},
	{ErrSessionNotActive, "session_not_active"},
	{ErrInvalidGarage, "invalid_garage"},
	{ErrInvalidOrigin, "invalid_origin"},
	{ErrInvalidDestination, "invalid_destination"},
	{ErrInvalidVehicle, "invalid_vehicle"},
	{ErrNoGarages, "no_garages"},
	{ErrNoVehicles, "no_vehicles"},
	{ErrSameGarage, "same_garage"},
	{ErrInvalidPassengerCount, "invalid_passenger_count"},
	{ErrOriginEmpty, "origin_empty"},
}

// Code maps an error returned by Session to a stable snake_case code.
// It returns "" for nil and "internal" for errors outside the taxonomy.
func Code(err error) string {
	if err == nil {
		return ""
	}
	for _, c := range codes {
		if errors.Is(err, c.err) {
			return c.code
		}
	}
	return "internal"
}

// ErrorForCode is the inverse of Code. ok is false for unknown codes.
func ErrorForCode(code string) (err error, ok bool) {
	for _, c := range codes {
		if c.code == code {
			return c.err, true
		}
	}
	return nil, false
}
