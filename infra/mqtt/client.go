package mqtt

import (
	"encoding/json"
	"fmt"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"
	"github.com/google/uuid"

	"github.com/kilianp07/depot/core/events"
	"github.com/kilianp07/depot/core/monitoring"
	"github.com/kilianp07/depot/infra/logger"
)

const (
	statusOnline  = "online"
	statusOffline = "offline"
)

type pahoClient interface {
	IsConnected() bool
	Connect() paho.Token
	Disconnect(quiesce uint)
	Publish(topic string, qos byte, retained bool, payload interface{}) paho.Token
}

var newMQTTClient = func(opts *paho.ClientOptions) pahoClient {
	return paho.NewClient(opts)
}

// Message is the JSON envelope of every published event.
type Message struct {
	MessageID string       `json:"message_id"`
	Event     string       `json:"event"`
	Timestamp time.Time    `json:"timestamp"`
	Data      events.Event `json:"data"`
}

// Publisher publishes session events to an MQTT broker.
type Publisher struct {
	cli    pahoClient
	cfg    Config
	logger logger.Logger
	now    func() time.Time
}

// NewPublisher connects to the broker. The retained status topic switches to
// "online" on connect and to "offline" through the last will.
func NewPublisher(cfg Config) (*Publisher, error) {
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	opts, err := NewClientOptions(cfg)
	if err != nil {
		return nil, err
	}
	log := logger.New("mqtt_publisher")
	p := &Publisher{cfg: cfg, logger: log, now: time.Now}

	opts.OnConnect = func(c paho.Client) {
		log.Infof("MQTT connected to %s", cfg.Broker)
		if token := c.Publish(cfg.Topic("status"), cfg.QoS, true, statusOnline); token.Wait() && token.Error() != nil {
			log.Errorf("status publish error: %v", token.Error())
		}
	}
	opts.OnConnectionLost = func(_ paho.Client, err error) {
		log.Errorf("connection lost: %v", err)
	}
	opts.OnReconnecting = func(_ paho.Client, _ *paho.ClientOptions) {
		log.Warnf("reconnecting to MQTT broker")
	}
	c := newMQTTClient(opts)
	if token := c.Connect(); token.Wait() && token.Error() != nil {
		return nil, fmt.Errorf("mqtt connect: %w", token.Error())
	}
	p.cli = c
	return p, nil
}

// NewClientOptions builds mqtt client options from Config.
func NewClientOptions(cfg Config) (*paho.ClientOptions, error) {
	opts := paho.NewClientOptions().AddBroker(cfg.Broker).SetClientID(cfg.ClientID)
	opts.AutoReconnect = true
	if cfg.Username != "" {
		opts.SetUsername(cfg.Username)
	}
	if cfg.Password != "" {
		opts.SetPassword(cfg.Password)
	}
	if cfg.UseTLS {
		tlsCfg, err := cfg.LoadTLSConfig()
		if err != nil {
			return nil, err
		}
		opts.SetTLSConfig(tlsCfg)
	}
	if cfg.TopicPrefix != "" {
		opts.SetWill(cfg.Topic("status"), statusOffline, cfg.QoS, true)
	}
	return opts, nil
}

// TopicFor returns the topic an event is published on. Trip events go to
// <prefix>/trips and day events to <prefix>/days.
func (p *Publisher) TopicFor(ev events.Event) (string, bool) {
	switch ev.(type) {
	case events.TripReleased, events.TripRejected:
		return p.cfg.Topic("trips"), true
	case events.DayStarted, events.DayEnded:
		return p.cfg.Topic("days"), true
	}
	return "", false
}

// PublishEvent wraps the event in a Message and publishes it. Events without
// a topic are ignored.
func (p *Publisher) PublishEvent(ev events.Event) error {
	topic, ok := p.TopicFor(ev)
	if !ok {
		return nil
	}
	msg := Message{MessageID: uuid.NewString(), Event: ev.Name(), Timestamp: p.now(), Data: ev}
	payload, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("encode %s: %w", ev.Name(), err)
	}
	if err := p.publish(topic, payload); err != nil {
		monitoring.CaptureException(err, map[string]string{"module": "mqtt", "topic": topic, "event": ev.Name()})
		return err
	}
	return nil
}

func (p *Publisher) publish(topic string, payload []byte) error {
	backoff := time.Duration(p.cfg.BackoffMS) * time.Millisecond
	var err error
	for attempt := 0; attempt <= p.cfg.MaxRetries; attempt++ {
		token := p.cli.Publish(topic, p.cfg.QoS, p.cfg.Retain, payload)
		token.Wait()
		if err = token.Error(); err == nil {
			p.logger.Debugf("published %d bytes to %s", len(payload), topic)
			return nil
		}
		p.logger.Errorf("publish attempt %d to %s failed: %v", attempt+1, topic, err)
		if attempt < p.cfg.MaxRetries {
			time.Sleep(backoff * time.Duration(1<<attempt))
		}
	}
	return fmt.Errorf("publish %s: %w", topic, err)
}

// Close marks the publisher offline and disconnects.
func (p *Publisher) Close() {
	if p.cli == nil || !p.cli.IsConnected() {
		return
	}
	token := p.cli.Publish(p.cfg.Topic("status"), p.cfg.QoS, true, statusOffline)
	token.WaitTimeout(time.Second)
	p.cli.Disconnect(250)
}
