package export

import (
	"fmt"
	"io"
	"strconv"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"

	"github.com/kilianp07/depot/core/model"
)

// WriteHTML renders a bar chart of passengers per vehicle with one series
// per day.
func WriteHTML(w io.Writer, days []model.DaySummary) error {
	bar := charts.NewBar()
	bar.SetGlobalOptions(
		charts.WithTitleOpts(opts.Title{Title: "Passengers per vehicle"}),
		charts.WithXAxisOpts(opts.XAxis{Name: "Vehicle"}),
		charts.WithYAxisOpts(opts.YAxis{Name: "Passengers"}),
	)

	ids := vehicleIDs(days)
	labels := make([]string, len(ids))
	for i, id := range ids {
		labels[i] = "V" + strconv.Itoa(id)
	}
	bar.SetXAxis(labels)
	for _, d := range days {
		data := make([]opts.BarData, len(ids))
		for i, id := range ids {
			v, _ := d.Vehicle(id)
			data[i] = opts.BarData{Value: v.Passengers}
		}
		bar.AddSeries(d.EndedAt.Format("2006-01-02 15:04"), data)
	}

	if err := bar.Render(w); err != nil {
		return fmt.Errorf("render chart: %w", err)
	}
	return nil
}

// vehicleIDs returns every vehicle id seen across days in ascending order.
func vehicleIDs(days []model.DaySummary) []int {
	top := 0
	seen := map[int]bool{}
	for _, d := range days {
		for _, v := range d.Vehicles {
			seen[v.VehicleID] = true
			if v.VehicleID > top {
				top = v.VehicleID
			}
		}
	}
	ids := make([]int, 0, len(seen))
	for id := 1; id <= top; id++ {
		if seen[id] {
			ids = append(ids, id)
		}
	}
	return ids
}
