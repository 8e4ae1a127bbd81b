package actuator

import (
	"fmt"
	"io"
	"sync"

	"go.bug.st/serial"
)

type portOpener func(name string, mode *serial.Mode) (io.WriteCloser, error)

func openSerialPort(name string, mode *serial.Mode) (io.WriteCloser, error) {
	return serial.Open(name, mode)
}

// SerialActuator writes alerts to a serial line (8N1). The port is opened on
// the first signal and reopened after a failed write, so a disconnected
// device only costs the alerts sent while it is away.
type SerialActuator struct {
	portName string
	mode     *serial.Mode
	open     portOpener

	mu   sync.Mutex
	port io.WriteCloser
}

func NewSerialActuator(portName string, baudRate int) *SerialActuator {
	return &SerialActuator{
		portName: portName,
		mode: &serial.Mode{
			BaudRate: baudRate,
			DataBits: 8,
			Parity:   serial.NoParity,
			StopBits: serial.OneStopBit,
		},
		open: openSerialPort,
	}
}

func (a *SerialActuator) PortName() string {
	return a.portName
}

func (a *SerialActuator) Signal(payload []byte) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.port == nil {
		port, err := a.open(a.portName, a.mode)
		if err != nil {
			return fmt.Errorf("failed to open serial port %s: %w", a.portName, err)
		}
		a.port = port
	}

	n, err := a.port.Write(payload)
	if err == nil && n < len(payload) {
		err = io.ErrShortWrite
	}
	if err != nil {
		a.port.Close()
		a.port = nil
		return fmt.Errorf("failed to write to serial port %s: %w", a.portName, err)
	}

	return nil
}

func (a *SerialActuator) Close() error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.port == nil {
		return nil
	}
	err := a.port.Close()
	a.port = nil
	return err
}
