// Package actuator delivers alert signals to the hardware channel (serial link, MQTT broker, console).
package actuator

import (
	"errors"
	"fmt"
	"io"
	"net/url"
	"os"
	"strconv"
	"strings"
	"sync"

	"github.com/google/uuid"

	"drowsiness/internal/logger"
)

// AlertPayload is the token written to the actuator for every alert.
const AlertPayload = "ALERT\n"

const (
	DefaultBaudRate  = 9600
	DefaultMQTTTopic = "drowsiness/alert"
)

// ErrUnsupportedEndpoint is returned for an endpoint scheme no actuator understands.
var ErrUnsupportedEndpoint = errors.New("unsupported actuator endpoint")

// Actuator accepts alert payloads. Implementations do not read any acknowledgment back.
type Actuator interface {
	Signal(payload []byte) error
	Close() error
}

// Kind identifies the actuator transport.
type Kind string

const (
	KindNone   Kind = "none"
	KindStdout Kind = "stdout"
	KindStderr Kind = "stderr"
	KindSerial Kind = "serial"
	KindMQTT   Kind = "mqtt"
)

// Endpoint is a parsed ACTUATOR setting.
type Endpoint struct {
	Kind     Kind
	Port     string // serial device
	BaudRate int
	Broker   string // tcp://host:port
	Topic    string
	QoS      byte
	ClientID string
}

// ParseEndpoint understands:
//
//	none | stdout | stderr
//	serial://COM2?baud=9600, serial:///dev/ttyUSB0, serial:COM2
//	mqtt://host:1883/topic?qos=1&client_id=cab-1 (also tcp://, ssl://, ws://)
func ParseEndpoint(endpoint string) (Endpoint, error) {
	trimmed := strings.TrimSpace(endpoint)
	switch strings.ToLower(trimmed) {
	case "", "none":
		return Endpoint{Kind: KindNone}, nil
	case "stdout":
		return Endpoint{Kind: KindStdout}, nil
	case "stderr":
		return Endpoint{Kind: KindStderr}, nil
	}

	u, err := url.Parse(trimmed)
	if err != nil {
		return Endpoint{}, fmt.Errorf("invalid actuator endpoint %q: %w", endpoint, err)
	}

	query := u.Query()

	switch strings.ToLower(u.Scheme) {
	case "serial":
		port := u.Opaque
		if port == "" {
			port = u.Host + u.Path
		}
		if port == "" {
			return Endpoint{}, fmt.Errorf("serial endpoint %q has no port", endpoint)
		}

		baud := DefaultBaudRate
		if v := query.Get("baud"); v != "" {
			baud, err = strconv.Atoi(v)
			if err != nil || baud <= 0 {
				return Endpoint{}, fmt.Errorf("invalid baud rate %q", v)
			}
		}

		return Endpoint{Kind: KindSerial, Port: port, BaudRate: baud}, nil

	case "mqtt", "tcp", "ssl", "ws", "wss":
		if u.Host == "" {
			return Endpoint{}, fmt.Errorf("mqtt endpoint %q has no broker host", endpoint)
		}

		scheme := strings.ToLower(u.Scheme)
		if scheme == "mqtt" {
			scheme = "tcp"
		}

		topic := strings.TrimPrefix(u.Path, "/")
		if topic == "" {
			topic = DefaultMQTTTopic
		}

		var qos byte
		if v := query.Get("qos"); v != "" {
			q, err := strconv.Atoi(v)
			if err != nil || q < 0 || q > 2 {
				return Endpoint{}, fmt.Errorf("invalid mqtt qos %q", v)
			}
			qos = byte(q)
		}

		clientID := query.Get("client_id")
		if clientID == "" {
			clientID = "drowsiness-" + uuid.NewString()
		}

		return Endpoint{
			Kind:     KindMQTT,
			Broker:   fmt.Sprintf("%s://%s", scheme, u.Host),
			Topic:    topic,
			QoS:      qos,
			ClientID: clientID,
		}, nil
	}

	return Endpoint{}, fmt.Errorf("%w: %q", ErrUnsupportedEndpoint, endpoint)
}

// WriterActuator writes payloads to an io.Writer (console, file, test buffer).
type WriterActuator struct {
	w  io.Writer
	mu sync.Mutex
}

func NewWriterActuator(w io.Writer) *WriterActuator {
	return &WriterActuator{w: w}
}

func (a *WriterActuator) Signal(payload []byte) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	n, err := a.w.Write(payload)
	if err != nil {
		return err
	}
	if n < len(payload) {
		return io.ErrShortWrite
	}
	return nil
}

func (a *WriterActuator) Close() error {
	return nil
}

// NopActuator discards alerts; used when no actuator is configured.
type NopActuator struct{}

func (NopActuator) Signal([]byte) error { return nil }
func (NopActuator) Close() error        { return nil }

// Open builds the actuator for an ACTUATOR endpoint. Opening never fails
// because the hardware is unreachable: serial ports are opened on first
// use and MQTT reconnects in the background.
func Open(endpoint string, log *logger.Logger) (Actuator, error) {
	ep, err := ParseEndpoint(endpoint)
	if err != nil {
		return nil, err
	}

	switch ep.Kind {
	case KindStdout:
		return NewWriterActuator(os.Stdout), nil
	case KindStderr:
		return NewWriterActuator(os.Stderr), nil
	case KindSerial:
		return NewSerialActuator(ep.Port, ep.BaudRate), nil
	case KindMQTT:
		return NewMQTTActuator(ep, log), nil
	default:
		return NopActuator{}, nil
	}
}
