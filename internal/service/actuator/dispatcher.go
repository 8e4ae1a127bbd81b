package actuator

import (
	"sync"

	"drowsiness/internal/dto"
	"drowsiness/internal/logger"
	"drowsiness/internal/service/metrics"
)

// Dispatcher hands alerts to the actuator without blocking the frame loop.
// A single worker drains the queue, so signals reach the hardware in order.
type Dispatcher struct {
	actuator Actuator
	payload  []byte
	logger   *logger.Logger
	metrics  *metrics.Metrics

	queue chan dto.AlertEvent

	mu     sync.RWMutex // chroni closed i wysyłanie do queue
	closed bool
	wg     sync.WaitGroup
}

func NewDispatcher(actuator Actuator, queueSize int, logger *logger.Logger, metrics *metrics.Metrics) *Dispatcher {
	if queueSize <= 0 {
		queueSize = 1
	}

	d := &Dispatcher{
		actuator: actuator,
		payload:  []byte(AlertPayload),
		logger:   logger,
		metrics:  metrics,
		queue:    make(chan dto.AlertEvent, queueSize),
	}

	d.wg.Add(1)
	go d.worker()

	return d
}

// Dispatch never blocks. When the queue is full the alert is dropped.
func (d *Dispatcher) Dispatch(event dto.AlertEvent) bool {
	d.logger.Warning("🚨 Alert! Driver possibly asleep (camera %s, frame %d, eyes closed for %s)",
		event.Camera, event.Frame, event.ClosedDuration)

	d.mu.RLock()
	defer d.mu.RUnlock()

	if d.closed {
		d.logger.Warning("Dispatcher stopped, alert for frame %d not delivered", event.Frame)
		d.metrics.IncrementDroppedAlerts()
		return false
	}

	select {
	case d.queue <- event:
		d.metrics.IncrementAlerts()
		return true
	default:
		d.logger.Warning("⚠️  Alert queue full - dropping alert for frame %d", event.Frame)
		d.metrics.IncrementDroppedAlerts()
		return false
	}
}

func (d *Dispatcher) worker() {
	defer d.wg.Done()

	for event := range d.queue {
		if err := d.actuator.Signal(d.payload); err != nil {
			d.logger.Error("Actuator signal failed for frame %d: %v", event.Frame, err)
			d.metrics.IncrementActuatorErrors()
			continue
		}
		d.metrics.IncrementActuatorWrites()
	}
}

// Stop delivers whatever is still queued, then closes the actuator.
func (d *Dispatcher) Stop() error {
	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		return nil
	}
	d.closed = true
	close(d.queue)
	d.mu.Unlock()

	d.wg.Wait()
	d.logger.Info("🛑 Alert dispatcher stopped")

	return d.actuator.Close()
}
