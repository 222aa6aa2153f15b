// Package events mirrors appended action rows onto MQTT.
package events

import (
	"encoding/json"
	"fmt"
	"time"

	"alarm_gateway/config"
	"alarm_gateway/logger"
	"alarm_gateway/models"

	mqtt "github.com/eclipse/paho.mqtt.golang"
)

const publishTimeout = 2 * time.Second

// Publisher is notified of every appended action
type Publisher interface {
	ActionAppended(action models.Action)
	Close()
}

// Message is the JSON payload published for an action
type Message struct {
	Evento    string `json:"evento"`
	Data      string `json:"data"`
	Movimento *int   `json:"movimento,omitempty"`
	Fumo      *int   `json:"fumo,omitempty"`
}

// NewMessage converts an action row to its published form
func NewMessage(action models.Action) Message {
	return Message{
		Evento:    action.Evento,
		Data:      models.ISOTimestamp(action.Data),
		Movimento: action.Movimento,
		Fumo:      action.Fumo,
	}
}

// Nop discards every event
type Nop struct{}

func (Nop) ActionAppended(models.Action) {}
func (Nop) Close() {}

// tokenPublisher is the part of mqtt.Client the publisher needs
type tokenPublisher interface {
	Publish(topic string, qos byte, retained bool, payload interface{}) mqtt.Token
}

// MQTTPublisher publishes actions on <topic>/acoes
type MQTTPublisher struct {
	client tokenPublisher
	closer func()
	topic  string
	qos    byte
}

// NewPublisher connects to the configured broker. With no broker it returns
// a Nop publisher.
func NewPublisher(cfg config.MQTTConfig) (Publisher, error) {
	if cfg.Broker == "" {
		return Nop{}, nil
	}

	opts := mqtt.NewClientOptions()
	opts.AddBroker(cfg.Broker)
	opts.SetClientID(cfg.ClientID)
	if cfg.Username != "" {
		opts.SetUsername(cfg.Username)
	}
	if cfg.Password != "" {
		opts.SetPassword(cfg.Password)
	}
	opts.SetAutoReconnect(true)
	opts.SetCleanSession(true)
	opts.SetConnectionLostHandler(func(_ mqtt.Client, err error) {
		logger.Warnf("mqtt connection lost: %v", err)
	})

	client := mqtt.NewClient(opts)
	if token := client.Connect(); token.Wait() && token.Error() != nil {
		return nil, fmt.Errorf("failed to connect to MQTT broker: %w", token.Error())
	}

	pub := newMQTTPublisher(client, cfg)
	pub.closer = func() { client.Disconnect(250) }
	return pub, nil
}

func newMQTTPublisher(client tokenPublisher, cfg config.MQTTConfig) *MQTTPublisher {
	return &MQTTPublisher{
		client: client,
		topic:  cfg.Topic + "/acoes",
		qos:    cfg.QoS,
	}
}

// ActionAppended publishes action. Failures are logged; the HTTP response
// has already been decided by the database write.
func (p *MQTTPublisher) ActionAppended(action models.Action) {
	payload, err := json.Marshal(NewMessage(action))
	if err != nil {
		logger.Errorf("failed to encode action event: %v", err)
		return
	}

	token := p.client.Publish(p.topic, p.qos, false, payload)
	if !token.WaitTimeout(publishTimeout) {
		logger.Warnf("timed out publishing to %s", p.topic)
		return
	}
	if err := token.Error(); err != nil {
		logger.Warnf("failed to publish to topic %s: %v", p.topic, err)
	}
}

// Close disconnects from the broker
func (p *MQTTPublisher) Close() {
	if p.closer != nil {
		p.closer()
	}
}
