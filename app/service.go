package app

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/kilianp07/depot/config"
	"github.com/kilianp07/depot/core/events"
	coremetrics "github.com/kilianp07/depot/core/metrics"
	coremon "github.com/kilianp07/depot/core/monitoring"
	"github.com/kilianp07/depot/core/report"
	"github.com/kilianp07/depot/core/session"
	"github.com/kilianp07/depot/infra/logger"
	"github.com/kilianp07/depot/infra/metrics"
	"github.com/kilianp07/depot/infra/monitoring"
	"github.com/kilianp07/depot/infra/mqtt"
	"github.com/kilianp07/depot/internal/eventbus"
)

// Service wires a session to its event consumers: metrics sinks, the MQTT
// publisher and the report store.
type Service struct {
	Session *session.Session
	Reports report.Store

	cfg       *config.Config
	bus       *eventbus.Bus[events.Event]
	sink      coremetrics.MetricsSink
	publisher *mqtt.Publisher
	log       logger.Logger

	cancel context.CancelFunc
	wg     sync.WaitGroup
	done   []<-chan struct{}
}

// New creates a Service from the configuration. Optional integrations that
// fail to start are logged and skipped; only invalid configuration is fatal.
func New(cfg *config.Config) (*Service, error) {
	log := logger.New("service")

	mon, err := monitoring.NewSentryMonitor(cfg.Sentry)
	if err != nil {
		log.Errorf("sentry disabled: %v", err)
	} else {
		coremon.Init(mon)
	}

	sink, err := coremetrics.NewMetricsSink(cfg.Metrics.Sinks)
	if err != nil {
		return nil, fmt.Errorf("metrics sink: %w", err)
	}

	store, err := report.NewStore(cfg.Reports)
	if err != nil {
		return nil, fmt.Errorf("report store: %w", err)
	}

	var pub *mqtt.Publisher
	if cfg.MQTT.Enabled() {
		pub, err = mqtt.NewPublisher(cfg.MQTT)
		if err != nil {
			log.Errorf("mqtt publisher disabled: %v", err)
			coremon.CaptureException(err, map[string]string{"module": "mqtt"})
			pub = nil
		}
	}

	bus := eventbus.New[events.Event]()
	sess := session.New(cfg.Session, logger.New("session"), bus)
	if store != nil {
		sess.SetReportStore(store)
	}
	return &Service{
		Session:   sess,
		Reports:   store,
		cfg:       cfg,
		bus:       bus,
		sink:      sink,
		publisher: pub,
		log:       log,
	}, nil
}

// Start launches the event consumers and the /metrics server. They run until
// Close is called or ctx is canceled.
func (s *Service) Start(ctx context.Context) {
	ctx, s.cancel = context.WithCancel(ctx)
	s.done = append(s.done, metrics.StartEventCollector(ctx, s.bus, s.sink, logger.New("metrics")))
	if s.publisher != nil {
		s.done = append(s.done, mqtt.StartForwarder(ctx, s.bus, s.publisher, logger.New("mqtt")))
	}
	if addr := s.cfg.Metrics.PrometheusAddr; addr != "" {
		s.wg.Add(1)
		go func() {
			defer s.wg.Done()
			defer func() { coremon.Recover(recover()) }()
			if err := metrics.StartPromServer(ctx, addr, nil); err != nil {
				s.log.Errorf("prom server: %v", err)
				coremon.CaptureException(err, map[string]string{"module": "metrics"})
			}
		}()
	}
}

// Close stops the consumers once they drained the bus, then releases the
// publisher and the report store.
func (s *Service) Close() error {
	s.bus.Close()
	for _, d := range s.done {
		select {
		case <-d:
		case <-time.After(5 * time.Second):
			s.log.Warnf("event consumer did not stop in time")
		}
	}
	if s.cancel != nil {
		s.cancel()
	}
	s.wg.Wait()
	if s.publisher != nil {
		s.publisher.Close()
	}
	var errs []error
	if s.Reports != nil {
		errs = append(errs, s.Reports.Close())
	}
	if c, ok := s.sink.(interface{ Close() error }); ok {
		errs = append(errs, c.Close())
	}
	coremon.Flush(time.Duration(s.cfg.Sentry.FlushSeconds) * time.Second)
	return errors.Join(errs...)
}
