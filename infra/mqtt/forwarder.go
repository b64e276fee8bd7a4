package mqtt

import (
	"context"

	"github.com/kilianp07/depot/core/events"
	"github.com/kilianp07/depot/core/logger"
	"github.com/kilianp07/depot/internal/eventbus"
)

// EventPublisher publishes a single event.
type EventPublisher interface {
	PublishEvent(ev events.Event) error
}

// ForwarderBuffer is the subscription size of StartForwarder.
const ForwarderBuffer = 256

// StartForwarder publishes every bus event with pub until ctx is canceled or
// the bus is closed. Publish failures are logged and do not stop forwarding.
func StartForwarder(ctx context.Context, bus eventbus.EventBus[events.Event], pub EventPublisher, log logger.Logger) <-chan struct{} {
	done := make(chan struct{})
	if bus == nil || pub == nil {
		close(done)
		return done
	}
	if log == nil {
		log = logger.NopLogger{}
	}
	sub := bus.SubscribeBuffered(ForwarderBuffer)
	go func() {
		defer close(done)
		defer bus.Unsubscribe(sub)
		for {
			select {
			case <-ctx.Done():
				return
			case ev, ok := <-sub:
				if !ok {
					return
				}
				if err := pub.PublishEvent(ev); err != nil {
					log.Warnf("forward %s: %v", ev.Name(), err)
				}
			}
		}
	}()
	return done
}
