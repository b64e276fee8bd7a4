package scenarios

import (
	"errors"
	"fmt"
	"reflect"

	"github.com/kilianp07/depot/core/model"
	"github.com/kilianp07/depot/core/session"
)

// StepResult records what one step did.
type StepResult struct {
	Index   int
	Op      string
	Code    string
	Trip    *model.Trip
	Summary *model.DaySummary
}

// Result is the outcome of a scenario run.
type Result struct {
	Steps []StepResult
	// Mismatches lists every expectation that did not hold.
	Mismatches []string
}

// Err returns the mismatches as one error, or nil.
func (r Result) Err() error {
	if len(r.Mismatches) == 0 {
		return nil
	}
	errs := make([]error, len(r.Mismatches))
	for i, m := range r.Mismatches {
		errs[i] = errors.New(m)
	}
	return errors.Join(errs...)
}

// Run replays the scenario against sess. Every step runs even after a
// mismatch so the result shows the whole day.
func Run(sess *session.Session, sc *Scenario) Result {
	var res Result
	fail := func(i int, format string, args ...any) {
		res.Mismatches = append(res.Mismatches, fmt.Sprintf("step %d (%s): ", i+1, sc.Steps[i].Op)+fmt.Sprintf(format, args...))
	}
	for i, st := range sc.Steps {
		sr := StepResult{Index: i + 1, Op: st.Op}
		var err error
		switch st.Op {
		case OpAddVehicle:
			_, err = sess.AddVehicle(st.Capacity, st.Plate)
		case OpAddGarage:
			_, err = sess.AddGarage(st.Name)
		case OpStartDay:
			var ds session.DayStart
			ds, err = sess.StartDay()
			if err == nil {
				if ds.AlreadyActive != st.ExpectAlreadyActive {
					fail(i, "already active = %v, want %v", ds.AlreadyActive, st.ExpectAlreadyActive)
				}
				for gid, want := range st.ExpectParked {
					if got := ds.Distribution[gid]; !reflect.DeepEqual(normalize(got), normalize(want)) {
						fail(i, "G%d parked %v, want %v", gid, got, want)
					}
				}
			}
		case OpEndDay:
			var sum model.DaySummary
			sum, err = sess.EndDay()
			if err == nil {
				sr.Summary = &sum
				if st.ExpectSummary != nil {
					checkSummary(func(f string, a ...any) { fail(i, f, a...) }, sum, *st.ExpectSummary)
				}
			}
		case OpTrip:
			var t model.Trip
			t, err = sess.ReleaseTrip(st.Origin, st.Destination, st.Passengers)
			if err == nil {
				sr.Trip = &t
				if st.ExpectVehicle != 0 && t.VehicleID != st.ExpectVehicle {
					fail(i, "departed V%d, want V%d", t.VehicleID, st.ExpectVehicle)
				}
			}
		}
		sr.Code = session.Code(err)
		if sr.Code != st.ExpectError {
			fail(i, "error %q, want %q", sr.Code, st.ExpectError)
		}
		res.Steps = append(res.Steps, sr)
	}
	return res
}

func checkSummary(fail func(string, ...any), got model.DaySummary, want SummaryDef) {
	if want.TotalTrips != nil && got.TotalTrips != *want.TotalTrips {
		fail("total trips %d, want %d", got.TotalTrips, *want.TotalTrips)
	}
	if want.TotalPassengers != nil && got.TotalPassengers != *want.TotalPassengers {
		fail("total passengers %d, want %d", got.TotalPassengers, *want.TotalPassengers)
	}
	for _, wv := range want.Vehicles {
		v, ok := got.Vehicle(wv.ID)
		if !ok {
			fail("V%d missing from summary", wv.ID)
			continue
		}
		if v.Passengers != wv.Passengers || v.Trips != wv.Trips {
			fail("V%d carried %d in %d trips, want %d in %d", wv.ID, v.Passengers, v.Trips, wv.Passengers, wv.Trips)
		}
	}
}

func normalize(ids []int) []int {
	if len(ids) == 0 {
		return nil
	}
	return ids
}
