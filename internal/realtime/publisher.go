// Package realtime pushes store change events to an MQTT broker so booking
// clients refresh their seat maps without polling.
package realtime

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	log "github.com/sirupsen/logrus"

	"github.com/zedm/louage-backend/internal/db"
)

const publishTimeout = 5 * time.Second

// Broker is the publish surface the fan-out needs from an MQTT client.
// *mqtt.Client satisfies it.
type Broker interface {
	Publish(topic string, qos byte, retained bool, payload interface{}) mqtt.Token
}

// Connect dials the MQTT broker and blocks until the connection is up or the
// timeout passes.
func Connect(brokerURL, clientID string) (mqtt.Client, error) {
	opts := mqtt.NewClientOptions().
		AddBroker(brokerURL).
		SetClientID(clientID).
		SetAutoReconnect(true).
		SetConnectTimeout(publishTimeout)
	opts.OnConnect = func(mqtt.Client) {
		log.WithField("broker", brokerURL).Info("mqtt connected")
	}
	opts.OnConnectionLost = func(_ mqtt.Client, err error) {
		log.WithError(err).Warn("mqtt connection lost")
	}

	client := mqtt.NewClient(opts)
	token := client.Connect()
	if !token.WaitTimeout(publishTimeout) {
		return nil, fmt.Errorf("mqtt connect to %s: timeout", brokerURL)
	}
	if err := token.Error(); err != nil {
		return nil, fmt.Errorf("mqtt connect to %s: %w", brokerURL, err)
	}
	return client, nil
}

// ChangeSource exposes one change feed per collection. Both stores satisfy
// it.
type ChangeSource interface {
	WatchVehicles(ctx context.Context) (<-chan db.ChangeEvent, error)
	WatchDrivers(ctx context.Context) (<-chan db.ChangeEvent, error)
	WatchPassengers(ctx context.Context) (<-chan db.ChangeEvent, error)
	WatchTrips(ctx context.Context) (<-chan db.ChangeEvent, error)
	WatchSettings(ctx context.Context) (<-chan db.ChangeEvent, error)
}

// Publisher bridges change feeds onto per-collection MQTT topics under a
// common prefix, e.g. louage/passengers.
type Publisher struct {
	broker Broker
	prefix string
}

// NewPublisher creates a publisher over a connected broker.
func NewPublisher(broker Broker, topicPrefix string) *Publisher {
	return &Publisher{broker: broker, prefix: topicPrefix}
}

type changePayload struct {
	Collection string `json:"collection"`
	Op         string `json:"op"`
	DocumentID string `json:"document_id"`
}

// Start subscribes to every collection feed and fans events out until ctx is
// cancelled.
func (p *Publisher) Start(ctx context.Context, source ChangeSource) error {
	feeds := []func(context.Context) (<-chan db.ChangeEvent, error){
		source.WatchVehicles,
		source.WatchDrivers,
		source.WatchPassengers,
		source.WatchTrips,
		source.WatchSettings,
	}
	for _, watch := range feeds {
		events, err := watch(ctx)
		if err != nil {
			return fmt.Errorf("open change feed: %w", err)
		}
		go p.Run(ctx, events)
	}
	return nil
}

// Run drains one change feed onto the broker. It returns when ctx is
// cancelled or the feed closes.
func (p *Publisher) Run(ctx context.Context, events <-chan db.ChangeEvent) {
	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-events:
			if !ok {
				return
			}
			p.publish(ev)
		}
	}
}

// publish is best effort: a slow or dead broker must never block bookings.
func (p *Publisher) publish(ev db.ChangeEvent) {
	payload, err := json.Marshal(changePayload{
		Collection: ev.Collection,
		Op:         ev.Op,
		DocumentID: ev.DocumentID,
	})
	if err != nil {
		log.WithError(err).Error("marshal change event")
		return
	}

	topic := p.prefix + "/" + ev.Collection
	token := p.broker.Publish(topic, 0, false, payload)
	if !token.WaitTimeout(publishTimeout) {
		log.WithField("topic", topic).Warn("mqtt publish timed out")
		return
	}
	if err := token.Error(); err != nil {
		log.WithError(err).WithField("topic", topic).Warn("mqtt publish failed")
	}
}
