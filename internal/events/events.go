package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"github.com/ukydev/taller-finder/internal/models"
)

// SearchEvent is published after every successful ranked search.
type SearchEvent struct {
	RequestID string          `json:"request_id,omitempty"`
	Category  string          `json:"category"`
	Order     string          `json:"order"`
	Reference models.GeoPoint `json:"reference"`
	Results   int             `json:"results"`
	Timestamp time.Time       `json:"timestamp"`
}

// Publisher emits search events. Implementations must not block the caller for
// long and never fail the request that triggered the event.
type Publisher interface {
	PublishSearch(ctx context.Context, event SearchEvent)
	Close()
}

// NopPublisher discards events.
type NopPublisher struct{}

func (NopPublisher) PublishSearch(context.Context, SearchEvent) {}

func (NopPublisher) Close() {}

// broker is the part of mqtt.Client the publisher needs.
type broker interface {
	Publish(topic string, qos byte, retained bool, payload interface{}) mqtt.Token
	Disconnect(quiesce uint)
}

// MQTTPublisher publishes events as JSON at QoS 0.
type MQTTPublisher struct {
	client  broker
	topic   string
	timeout time.Duration
}

// NewMQTTPublisher connects to brokerURL (for example tcp://localhost:1883).
func NewMQTTPublisher(brokerURL, topic string) (*MQTTPublisher, error) {
	opts := mqtt.NewClientOptions().
		AddBroker(brokerURL).
		SetClientID("taller-finder-" + uuid.NewString()[:8]).
		SetAutoReconnect(true).
		SetConnectTimeout(5 * time.Second)

	client := mqtt.NewClient(opts)
	token := client.Connect()
	if !token.WaitTimeout(5 * time.Second) {
		return nil, fmt.Errorf("connect to MQTT broker %s: timeout", brokerURL)
	}
	if err := token.Error(); err != nil {
		return nil, fmt.Errorf("connect to MQTT broker %s: %w", brokerURL, err)
	}

	log.WithFields(log.Fields{"broker": brokerURL, "topic": topic}).Info("Connected to MQTT broker")
	return newMQTTPublisher(client, topic), nil
}

func newMQTTPublisher(client broker, topic string) *MQTTPublisher {
	return &MQTTPublisher{client: client, topic: topic, timeout: 2 * time.Second}
}

// PublishSearch hands event to the broker client and returns without waiting
// for delivery. Failures are logged only.
func (p *MQTTPublisher) PublishSearch(_ context.Context, event SearchEvent) {
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now().UTC()
	}
	payload, err := json.Marshal(event)
	if err != nil {
		log.WithError(err).Warn("Failed to encode search event")
		return
	}

	token := p.client.Publish(p.topic, 0, false, payload)
	go p.await(token)
}

func (p *MQTTPublisher) await(token mqtt.Token) {
	select {
	case <-token.Done():
	case <-time.After(p.timeout):
		log.WithField("topic", p.topic).Warn("Search event publish timed out")
		return
	}
	if err := token.Error(); err != nil {
		log.WithField("topic", p.topic).WithError(err).Warn("Failed to publish search event")
	}
}

// Close disconnects from the broker.
func (p *MQTTPublisher) Close() {
	p.client.Disconnect(250)
}
