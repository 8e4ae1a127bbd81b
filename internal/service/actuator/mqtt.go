package actuator

import (
	"errors"
	"fmt"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"

	"drowsiness/internal/logger"
)

const (
	mqttConnectTimeout = 5 * time.Second
	mqttPublishTimeout = 2 * time.Second
)

var errMQTTNotConnected = errors.New("mqtt not connected")

// MQTTActuator publishes alert payloads to a broker topic.
type MQTTActuator struct {
	client mqtt.Client
	topic  string
	qos    byte
}

// NewMQTTActuator starts connecting in the background. The broker being down
// at startup is logged, not fatal; paho keeps retrying.
func NewMQTTActuator(ep Endpoint, log *logger.Logger) *MQTTActuator {
	opts := mqtt.NewClientOptions()
	opts.AddBroker(ep.Broker)
	opts.SetClientID(ep.ClientID)
	opts.SetAutoReconnect(true)
	opts.SetConnectRetry(true)
	opts.SetConnectRetryInterval(2 * time.Second)
	opts.SetMaxReconnectInterval(30 * time.Second)

	opts.OnConnect = func(c mqtt.Client) {
		log.Info("📡 MQTT actuator connected to %s (topic %s)", ep.Broker, ep.Topic)
	}
	opts.OnConnectionLost = func(c mqtt.Client, err error) {
		log.Warning("MQTT connection lost, will auto-reconnect: %v", err)
	}

	client := mqtt.NewClient(opts)
	token := client.Connect()
	if !token.WaitTimeout(mqttConnectTimeout) {
		log.Warning("MQTT broker %s not reachable yet, retrying in background", ep.Broker)
	} else if err := token.Error(); err != nil {
		log.Warning("MQTT connection failed: %v", err)
	}

	return &MQTTActuator{
		client: client,
		topic:  ep.Topic,
		qos:    ep.QoS,
	}
}

func (a *MQTTActuator) Signal(payload []byte) error {
	if !a.client.IsConnectionOpen() {
		return errMQTTNotConnected
	}

	token := a.client.Publish(a.topic, a.qos, false, payload)
	if !token.WaitTimeout(mqttPublishTimeout) {
		return fmt.Errorf("publish to %s timed out", a.topic)
	}
	if err := token.Error(); err != nil {
		return fmt.Errorf("publish to %s failed: %w", a.topic, err)
	}
	return nil
}

func (a *MQTTActuator) Close() error {
	a.client.Disconnect(250)
	return nil
}
