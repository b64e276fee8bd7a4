package monitoring

import (
	"time"

	"github.com/getsentry/sentry-go"

	"github.com/kilianp07/depot/config"
	coremon "github.com/kilianp07/depot/core/monitoring"
)

// NewSentryMonitor initializes Sentry using the provided configuration and
// returns a Monitor implementation. An empty DSN yields a NopMonitor.
func NewSentryMonitor(cfg config.SentryConfig) (coremon.Monitor, error) {
	return newSentryMonitor(cfg, nil)
}

func newSentryMonitor(cfg config.SentryConfig, beforeSend func(*sentry.Event, *sentry.EventHint) *sentry.Event) (coremon.Monitor, error) {
	if cfg.DSN == "" {
		return coremon.NopMonitor{}, nil
	}
	err := sentry.Init(sentry.ClientOptions{
		Dsn:              cfg.DSN,
		Environment:      cfg.Environment,
		TracesSampleRate: cfg.TracesSampleRate,
		Release:          cfg.Release,
		BeforeSend:       beforeSend,
	})
	if err != nil {
		return nil, err
	}
	flush := time.Duration(cfg.FlushSeconds) * time.Second
	if flush <= 0 {
		flush = 2 * time.Second
	}
	return &sentryMonitor{flushTimeout: flush}, nil
}

type sentryMonitor struct {
	flushTimeout time.Duration
}

func (s *sentryMonitor) CaptureException(err error, tags map[string]string) {
	if err == nil {
		return
	}
	if len(tags) == 0 {
		sentry.CaptureException(err)
		return
	}
	sentry.WithScope(func(scope *sentry.Scope) {
		for k, v := range tags {
			scope.SetTag(k, v)
		}
		sentry.CaptureException(err)
	})
}

// Recover reports a recovered panic value and waits for it to be sent.
func (s *sentryMonitor) Recover(v any) {
	if v == nil {
		return
	}
	sentry.CurrentHub().Recover(v)
	sentry.Flush(s.flushTimeout)
}

func (s *sentryMonitor) Flush(timeout time.Duration) { sentry.Flush(timeout) }
