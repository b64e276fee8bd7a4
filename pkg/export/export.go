// Package export writes day reports and trip logs as CSV, JSON or HTML.
package export

import (
	"encoding/csv"
	"encoding/json"
	"io"
	"strconv"
	"time"

	"github.com/kilianp07/depot/core/model"
)

// WriteJSON writes the day summaries to w as a JSON array.
func WriteJSON(w io.Writer, days []model.DaySummary) error {
	if days == nil {
		days = []model.DaySummary{}
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(days)
}

// WriteCSV writes one row per vehicle and day.
func WriteCSV(w io.Writer, days []model.DaySummary) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"day_id", "ended_at", "vehicle_id", "plate", "capacity", "trips", "passengers"}); err != nil {
		return err
	}
	for _, d := range days {
		for _, v := range d.Vehicles {
			rec := []string{
				d.DayID.String(),
				d.EndedAt.Format(time.RFC3339),
				strconv.Itoa(v.VehicleID),
				v.Plate,
				strconv.Itoa(v.Capacity),
				strconv.Itoa(v.Trips),
				strconv.Itoa(v.Passengers),
			}
			if err := cw.Write(rec); err != nil {
				return err
			}
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteTripsCSV writes a trip log.
func WriteTripsCSV(w io.Writer, trips []model.Trip) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"trip_id", "timestamp", "origin", "destination", "vehicle_id", "passengers"}); err != nil {
		return err
	}
	for _, t := range trips {
		rec := []string{
			strconv.Itoa(t.ID),
			t.Timestamp.Format(time.RFC3339),
			strconv.Itoa(t.Origin),
			strconv.Itoa(t.Destination),
			strconv.Itoa(t.VehicleID),
			strconv.Itoa(t.Passengers),
		}
		if err := cw.Write(rec); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
