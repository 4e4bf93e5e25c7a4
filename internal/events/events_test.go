package events

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ukydev/taller-finder/internal/models"
)

type fakeToken struct {
	done chan struct{}
	err  error
}

func newFakeToken(err error) *fakeToken {
	t := &fakeToken{done: make(chan struct{}), err: err}
	close(t.done)
	return t
}

func (t *fakeToken) Wait() bool                     { <-t.done; return true }
func (t *fakeToken) WaitTimeout(time.Duration) bool { return true }
func (t *fakeToken) Done() <-chan struct{}          { return t.done }
func (t *fakeToken) Error() error                   { return t.err }

type fakeBroker struct {
	mu           sync.Mutex
	topic        string
	payloads     [][]byte
	err          error
	pending      bool
	disconnected bool
}

func (b *fakeBroker) Publish(topic string, qos byte, retained bool, payload interface{}) mqtt.Token {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.topic = topic
	b.payloads = append(b.payloads, payload.([]byte))
	if b.pending {
		return &fakeToken{done: make(chan struct{})}
	}
	return newFakeToken(b.err)
}

func (b *fakeBroker) Disconnect(uint) {
	b.disconnected = true
}

func TestMQTTPublisher_PublishSearch(t *testing.T) {
	b := &fakeBroker{}
	p := newMQTTPublisher(b, "taller-finder/searches")

	p.PublishSearch(context.Background(), SearchEvent{
		RequestID: "req-1",
		Category:  models.CategoryTires.Label(),
		Order:     models.ByRating.String(),
		Reference: models.GeoPoint{Lat: 40.4168, Lng: -3.7038},
		Results:   3,
	})

	require.Len(t, b.payloads, 1)
	assert.Equal(t, "taller-finder/searches", b.topic)

	var got SearchEvent
	require.NoError(t, json.Unmarshal(b.payloads[0], &got))
	assert.Equal(t, "req-1", got.RequestID)
	assert.Equal(t, "Neumáticos", got.Category)
	assert.Equal(t, 3, got.Results)
	assert.False(t, got.Timestamp.IsZero())

	p.Close()
	assert.True(t, b.disconnected)
}

func TestMQTTPublisher_ErrorIsSwallowed(t *testing.T) {
	b := &fakeBroker{err: errors.New("not connected")}
	p := newMQTTPublisher(b, "t")

	assert.NotPanics(t, func() {
		p.PublishSearch(context.Background(), SearchEvent{Results: 1})
	})
	assert.Len(t, b.payloads, 1)
}

func TestMQTTPublisher_DoesNotWaitForDelivery(t *testing.T) {
	b := &fakeBroker{pending: true}
	p := newMQTTPublisher(b, "t")
	p.timeout = time.Hour

	start := time.Now()
	p.PublishSearch(context.Background(), SearchEvent{Results: 1})
	assert.Less(t, time.Since(start), 100*time.Millisecond)
	assert.Len(t, b.payloads, 1)
}

func TestNopPublisher(t *testing.T) {
	var p Publisher = NopPublisher{}
	p.PublishSearch(context.Background(), SearchEvent{})
	p.Close()
}
