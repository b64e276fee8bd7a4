package scenarios

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/kilianp07/depot/core/session"
)

// Operations accepted in Step.Op.
const (
	OpAddVehicle = "add_vehicle"
	OpAddGarage  = "add_garage"
	OpStartDay   = "start_day"
	OpEndDay     = "end_day"
	OpTrip       = "trip"
)

// SummaryDef is the expected end-of-day summary. Omitted totals are not
// checked.
type SummaryDef struct {
	TotalTrips      *int            `yaml:"total_trips,omitempty"`
	TotalPassengers *int            `yaml:"total_passengers,omitempty"`
	Vehicles        []VehicleDayDef `yaml:"vehicles,omitempty"`
}

type VehicleDayDef struct {
	ID         int `yaml:"id"`
	Passengers int `yaml:"passengers"`
	Trips      int `yaml:"trips"`
}

// Step is one session operation and what it should produce.
type Step struct {
	Op          string `yaml:"op"`
	Capacity    int    `yaml:"capacity,omitempty"`
	Plate       string `yaml:"plate,omitempty"`
	Name        string `yaml:"name,omitempty"`
	Origin      int    `yaml:"origin,omitempty"`
	Destination int    `yaml:"destination,omitempty"`
	Passengers  int    `yaml:"passengers,omitempty"`

	// ExpectError is the error code the step must fail with; empty means success.
	ExpectError string `yaml:"expect_error,omitempty"`
	// ExpectVehicle is the vehicle a trip must depart with, when set.
	ExpectVehicle int `yaml:"expect_vehicle,omitempty"`
	// ExpectParked maps garage ids to the vehicle ids parked there after a
	// start_day, in parking order.
	ExpectParked map[int][]int `yaml:"expect_parked,omitempty"`
	// ExpectAlreadyActive asserts the start_day was a no-op.
	ExpectAlreadyActive bool        `yaml:"expect_already_active,omitempty"`
	ExpectSummary       *SummaryDef `yaml:"expect_summary,omitempty"`
}

type Scenario struct {
	Name            string `yaml:"name"`
	Description     string `yaml:"description,omitempty"`
	DefaultCapacity int    `yaml:"default_capacity,omitempty"`
	Steps           []Step `yaml:"steps"`
}

// Load reads and validates a scenario file.
func Load(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var sc Scenario
	if err := yaml.Unmarshal(data, &sc); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	if err := sc.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return &sc, nil
}

func (sc *Scenario) Validate() error {
	if len(sc.Steps) == 0 {
		return fmt.Errorf("scenario %q has no steps", sc.Name)
	}
	for i, st := range sc.Steps {
		switch st.Op {
		case OpAddVehicle, OpAddGarage, OpStartDay, OpEndDay, OpTrip:
		default:
			return fmt.Errorf("step %d: unknown op %q", i+1, st.Op)
		}
		if st.ExpectError != "" {
			if _, ok := session.ErrorForCode(st.ExpectError); !ok {
				return fmt.Errorf("step %d: unknown error code %q", i+1, st.ExpectError)
			}
		}
	}
	return nil
}
