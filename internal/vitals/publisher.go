package vitals

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/rs/zerolog/log"
)

// Publisher forwards generated samples outside the process
type Publisher interface {
	Publish(ctx context.Context, patientID string, s Sample) error
	Close()
}

// NopPublisher drops every sample
type NopPublisher struct{}

func (NopPublisher) Publish(context.Context, string, Sample) error { return nil }
func (NopPublisher) Close()                                        {}

// MQTTConfig holds the broker settings for MQTTPublisher
type MQTTConfig struct {
	Broker      string
	ClientID    string
	TopicPrefix string
}

// mqttPublishClient is the part of mqtt.Client the publisher uses
type mqttPublishClient interface {
	Publish(topic string, qos byte, retained bool, payload interface{}) mqtt.Token
	Disconnect(quiesce uint)
}

// MQTTPublisher publishes each sample as JSON to <prefix>/<patientId> with QoS 0
type MQTTPublisher struct {
	client  mqttPublishClient
	prefix  string
	timeout time.Duration
}

// NewMQTTPublisher connects to the broker
func NewMQTTPublisher(cfg MQTTConfig) (*MQTTPublisher, error) {
	opts := mqtt.NewClientOptions()
	opts.AddBroker(cfg.Broker)
	opts.SetClientID(cfg.ClientID)
	opts.SetAutoReconnect(true)
	opts.SetCleanSession(true)
	opts.SetConnectRetryInterval(2 * time.Second)
	opts.SetMaxReconnectInterval(30 * time.Second)

	opts.OnConnect = func(mqtt.Client) {
		log.Info().
			Str("broker", cfg.Broker).
			Str("client_id", cfg.ClientID).
			Msg("MQTT connection established")
	}
	opts.OnConnectionLost = func(_ mqtt.Client, err error) {
		log.Warn().
			Err(err).
			Str("broker", cfg.Broker).
			Msg("MQTT connection lost, will auto-reconnect")
	}

	client := mqtt.NewClient(opts)
	token := client.Connect()
	if !token.WaitTimeout(5 * time.Second) {
		return nil, fmt.Errorf("mqtt connection timeout")
	}
	if err := token.Error(); err != nil {
		return nil, fmt.Errorf("failed to connect to MQTT broker: %w", err)
	}

	return newMQTTPublisher(client, cfg.TopicPrefix), nil
}

func newMQTTPublisher(client mqttPublishClient, prefix string) *MQTTPublisher {
	return &MQTTPublisher{client: client, prefix: prefix, timeout: 2 * time.Second}
}

// Topic returns the topic samples of patientID are published to
func (p *MQTTPublisher) Topic(patientID string) string {
	return p.prefix + "/" + patientID
}

// Publish sends s and waits for the broker up to the publish timeout or ctx
func (p *MQTTPublisher) Publish(ctx context.Context, patientID string, s Sample) error {
	payload, err := json.Marshal(struct {
		PatientID string `json:"patientId"`
		Sample
	}{PatientID: patientID, Sample: s})
	if err != nil {
		return fmt.Errorf("marshal sample: %w", err)
	}

	topic := p.Topic(patientID)
	token := p.client.Publish(topic, 0, false, payload)

	timer := time.NewTimer(p.timeout)
	defer timer.Stop()

	select {
	case <-token.Done():
	case <-timer.C:
		return fmt.Errorf("publish to %s: timeout", topic)
	case <-ctx.Done():
		return ctx.Err()
	}
	if err := token.Error(); err != nil {
		return fmt.Errorf("publish to %s: %w", topic, err)
	}
	return nil
}

// Close disconnects from the broker
func (p *MQTTPublisher) Close() {
	p.client.Disconnect(250)
}
