package metrics

import (
	"context"
	"math"
	"net/http"
	"strconv"
	"strings"
	"time"

	influxdb2 "github.com/influxdata/influxdb-client-go/v2"
	"github.com/influxdata/influxdb-client-go/v2/api"
	"github.com/influxdata/influxdb-client-go/v2/api/write"

	coremetrics "github.com/kilianp07/depot/core/metrics"
	"github.com/kilianp07/depot/core/model"
	"github.com/kilianp07/depot/infra/logger"
)

const writeTimeout = 5 * time.Second

// InfluxConfig holds the connection settings of an InfluxSink.
type InfluxConfig struct {
	URL    string `json:"url"`
	Token  string `json:"token"`
	Org    string `json:"org"`
	Bucket string `json:"bucket"`
}

// InfluxSink writes trip activity to an InfluxDB instance using the official client.
type InfluxSink struct {
	client   influxdb2.Client
	writeAPI api.WriteAPIBlocking
	log      logger.Logger
}

// NewInfluxSink creates a new sink configured for the given InfluxDB endpoint.
func NewInfluxSink(cfg InfluxConfig) *InfluxSink {
	base := strings.TrimSuffix(cfg.URL, "/api/v2/write")
	client := influxdb2.NewClientWithOptions(base, cfg.Token,
		influxdb2.DefaultOptions().SetHTTPClient(&http.Client{Timeout: writeTimeout}))
	return &InfluxSink{
		client:   client,
		writeAPI: client.WriteAPIBlocking(cfg.Org, cfg.Bucket),
		log:      logger.New("influx-sink"),
	}
}

// NewInfluxSinkWithFallback pings the InfluxDB instance and returns a
// NopSink if the health check fails.
func NewInfluxSinkWithFallback(cfg InfluxConfig) coremetrics.MetricsSink {
	sink := NewInfluxSink(cfg)
	ctx, cancel := context.WithTimeout(context.Background(), writeTimeout)
	defer cancel()
	health, err := sink.client.Health(ctx)
	if err != nil || health.Status != "pass" {
		if err != nil {
			sink.log.Errorf("influx health check error: %v", err)
		} else {
			sink.log.Errorf("influx health status: %s", health.Status)
		}
		sink.client.Close()
		return coremetrics.NopSink{}
	}
	return sink
}

// Close releases the underlying client.
func (s *InfluxSink) Close() error {
	s.client.Close()
	return nil
}

func (s *InfluxSink) write(p *write.Point) error {
	ctx, cancel := context.WithTimeout(context.Background(), writeTimeout)
	defer cancel()
	return s.writeAPI.WritePoint(ctx, p)
}

// RecordTrip writes one "trip" point tagged with the route and vehicle.
func (s *InfluxSink) RecordTrip(rec coremetrics.TripRecord) error {
	p := write.NewPointWithMeasurement("trip").
		AddTag("day_id", rec.DayID).
		AddTag("origin", strconv.Itoa(rec.Origin)).
		AddTag("destination", strconv.Itoa(rec.Destination)).
		AddTag("vehicle_id", strconv.Itoa(rec.VehicleID)).
		AddField("trip_id", rec.TripID).
		AddField("passengers", rec.Passengers).
		AddField("capacity", rec.Capacity).
		AddField("load_factor", round3(rec.LoadFactor())).
		SetTime(rec.Time)
	return s.write(p)
}

func (s *InfluxSink) RecordRejection(ev coremetrics.RejectionEvent) error {
	p := write.NewPointWithMeasurement("trip_rejection").
		AddTag("reason", ev.Reason).
		AddTag("origin", strconv.Itoa(ev.Origin)).
		AddTag("destination", strconv.Itoa(ev.Destination)).
		AddField("passengers", ev.Passengers).
		SetTime(ev.Time)
	return s.write(p)
}

func (s *InfluxSink) RecordDayStart(ev coremetrics.DayStartEvent) error {
	p := write.NewPointWithMeasurement("day_start").
		AddTag("day_id", ev.DayID).
		AddField("vehicles", ev.Vehicles).
		AddField("garages", ev.Garages).
		SetTime(ev.Time)
	return s.write(p)
}

// RecordDayEnd writes the day totals followed by one point per vehicle.
func (s *InfluxSink) RecordDayEnd(sum model.DaySummary) error {
	dayID := sum.DayID.String()
	p := write.NewPointWithMeasurement("day_summary").
		AddTag("day_id", dayID).
		AddField("total_trips", sum.TotalTrips).
		AddField("total_passengers", sum.TotalPassengers).
		AddField("mean_load_factor", round3(sum.MeanLoadFactor)).
		AddField("load_factor_stddev", round3(sum.LoadFactorStdDev)).
		SetTime(sum.EndedAt)
	if err := s.write(p); err != nil {
		return err
	}
	for _, v := range sum.Vehicles {
		vp := write.NewPointWithMeasurement("vehicle_day").
			AddTag("day_id", dayID).
			AddTag("vehicle_id", strconv.Itoa(v.VehicleID)).
			AddField("trips", v.Trips).
			AddField("passengers", v.Passengers).
			SetTime(sum.EndedAt)
		if err := s.write(vp); err != nil {
			return err
		}
	}
	return nil
}

func round3(f float64) float64 {
	return math.Round(f*1000) / 1000
}
