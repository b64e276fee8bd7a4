package metrics

import (
	"errors"
	"strconv"

	"github.com/prometheus/client_golang/prometheus"

	coremetrics "github.com/kilianp07/depot/core/metrics"
	"github.com/kilianp07/depot/core/model"
)

// PromSink records trip activity in Prometheus metrics.
type PromSink struct {
	trips      *prometheus.CounterVec
	passengers *prometheus.CounterVec
	rejections *prometheus.CounterVec
	loadFactor prometheus.Histogram
	active     prometheus.Gauge
	garages    *prometheus.GaugeVec
}

// NewPromSink registers the metrics on the default Prometheus registerer.
// The /metrics endpoint is served separately by StartPromServer.
func NewPromSink() (*PromSink, error) {
	return NewPromSinkWithRegistry(prometheus.DefaultRegisterer)
}

// NewPromSinkWithRegistry registers metrics on the provided registerer.
// A nil registerer defaults to the global Prometheus registerer. Metrics
// already registered by an earlier sink are reused.
func NewPromSinkWithRegistry(reg prometheus.Registerer) (*PromSink, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	s := &PromSink{}
	var err error
	if s.trips, err = register(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "depot_trips_released_total",
		Help: "Number of trips released, by route",
	}, []string{"origin", "destination"})); err != nil {
		return nil, err
	}
	if s.passengers, err = register(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "depot_passengers_transported_total",
		Help: "Passengers carried by released trips, by route",
	}, []string{"origin", "destination"})); err != nil {
		return nil, err
	}
	if s.rejections, err = register(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "depot_trip_rejections_total",
		Help: "Trip requests refused, by reason",
	}, []string{"reason"})); err != nil {
		return nil, err
	}
	if s.loadFactor, err = register(reg, prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "depot_trip_load_factor",
		Help:    "Passengers over vehicle capacity per trip",
		Buckets: prometheus.LinearBuckets(0.1, 0.1, 10),
	})); err != nil {
		return nil, err
	}
	if s.active, err = register(reg, prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "depot_session_active",
		Help: "1 while a day is open",
	})); err != nil {
		return nil, err
	}
	if s.garages, err = register(reg, prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "depot_garage_vehicles",
		Help: "Vehicles currently parked, by garage",
	}, []string{"garage_id"})); err != nil {
		return nil, err
	}
	return s, nil
}

func register[C prometheus.Collector](reg prometheus.Registerer, c C) (C, error) {
	if err := reg.Register(c); err != nil {
		var are prometheus.AlreadyRegisteredError
		if errors.As(err, &are) {
			if existing, ok := are.ExistingCollector.(C); ok {
				return existing, nil
			}
		}
		return c, err
	}
	return c, nil
}

// RecordTrip counts the trip and its passengers on the trip's route.
func (s *PromSink) RecordTrip(rec coremetrics.TripRecord) error {
	o, d := strconv.Itoa(rec.Origin), strconv.Itoa(rec.Destination)
	s.trips.WithLabelValues(o, d).Inc()
	s.passengers.WithLabelValues(o, d).Add(float64(rec.Passengers))
	if rec.Capacity > 0 {
		s.loadFactor.Observe(rec.LoadFactor())
	}
	return nil
}

func (s *PromSink) RecordRejection(ev coremetrics.RejectionEvent) error {
	s.rejections.WithLabelValues(ev.Reason).Inc()
	return nil
}

func (s *PromSink) RecordDayStart(coremetrics.DayStartEvent) error {
	s.active.Set(1)
	return nil
}

// RecordDayEnd closes the day and drops the per-garage gauges.
func (s *PromSink) RecordDayEnd(model.DaySummary) error {
	s.active.Set(0)
	s.garages.Reset()
	return nil
}

func (s *PromSink) RecordOccupancy(occ []coremetrics.Occupancy) error {
	for _, o := range occ {
		s.garages.WithLabelValues(strconv.Itoa(o.GarageID)).Set(float64(o.Vehicles))
	}
	return nil
}
