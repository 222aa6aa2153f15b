package events

import (
	"encoding/json"
	"errors"
	"testing"
	"time"

	"alarm_gateway/config"
	"alarm_gateway/models"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeToken struct {
	err error
}

func (t fakeToken) Wait() bool { return true }
func (t fakeToken) WaitTimeout(time.Duration) bool { return true }
func (t fakeToken) Done() <-chan struct{} { ch := make(chan struct{}); close(ch); return ch }
func (t fakeToken) Error() error { return t.err }

type published struct {
	topic   string
	qos     byte
	payload []byte
}

type fakeClient struct {
	sent []published
	err  error
}

func (c *fakeClient) Publish(topic string, qos byte, _ bool, payload interface{}) mqtt.Token {
	c.sent = append(c.sent, published{topic: topic, qos: qos, payload: payload.([]byte)})
	return fakeToken{err: c.err}
}

func TestNewPublisherWithoutBrokerIsNop(t *testing.T) {
	pub, err := NewPublisher(config.MQTTConfig{})
	require.NoError(t, err)
	assert.IsType(t, Nop{}, pub)
	pub.ActionAppended(models.Action{Evento: models.EventAlarmOn})
	pub.Close()
}

func TestPublishReading(t *testing.T) {
	client := &fakeClient{}
	pub := newMQTTPublisher(client, config.MQTTConfig{Topic: "alarme", QoS: 1})

	movimento, fumo := 1, 250
	pub.ActionAppended(models.Action{
		Evento:    models.EventReadingStored,
		Data:      time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC),
		Movimento: &movimento,
		Fumo:      &fumo,
	})

	require.Len(t, client.sent, 1)
	assert.Equal(t, "alarme/acoes", client.sent[0].topic)
	assert.Equal(t, byte(1), client.sent[0].qos)

	var msg map[string]interface{}
	require.NoError(t, json.Unmarshal(client.sent[0].payload, &msg))
	assert.Equal(t, models.EventReadingStored, msg["evento"])
	assert.Equal(t, "2025-03-01T10:00:00", msg["data"])
	assert.EqualValues(t, 1, msg["movimento"])
	assert.EqualValues(t, 250, msg["fumo"])
}

func TestPublishToggleOmitsReadings(t *testing.T) {
	client := &fakeClient{err: errors.New("not connected")}
	pub := newMQTTPublisher(client, config.MQTTConfig{Topic: "casa"})

	pub.ActionAppended(models.Action{Evento: models.EventAlarmOff, Data: time.Now().UTC()})

	require.Len(t, client.sent, 1)
	assert.NotContains(t, string(client.sent[0].payload), "movimento")
	assert.NotContains(t, string(client.sent[0].payload), "fumo")
}
