package metrics

import (
	"sync/atomic"
	"time"
)

// Metrics holds counters shared by the processing loop, the alert dispatcher and the viewer.
type Metrics struct {
	frames          atomic.Int64
	noFaceFrames    atomic.Int64
	closedFrames    atomic.Int64
	detectorErrors  atomic.Int64
	alerts          atomic.Int64
	droppedAlerts   atomic.Int64
	actuatorWrites  atomic.Int64
	actuatorErrors  atomic.Int64
	episodes        atomic.Int64
	viewerClients   atomic.Int32
	lastFrameMillis atomic.Int64
}

// Snapshot is a point-in-time copy of the counters.
type Snapshot struct {
	Frames         int64     `json:"frames"`
	NoFaceFrames   int64     `json:"noFaceFrames"`
	ClosedFrames   int64     `json:"closedFrames"`
	DetectorErrors int64     `json:"detectorErrors"`
	Alerts         int64     `json:"alerts"`
	DroppedAlerts  int64     `json:"droppedAlerts"`
	ActuatorWrites int64     `json:"actuatorWrites"`
	ActuatorErrors int64     `json:"actuatorErrors"`
	Episodes       int64     `json:"episodes"`
	ViewerClients  int       `json:"viewerClients"`
	LastFrame      time.Time `json:"lastFrame"`
}

func NewMetrics() *Metrics {
	return &Metrics{}
}

func (m *Metrics) IncrementFrames(at time.Time) {
	m.frames.Add(1)
	m.lastFrameMillis.Store(at.UnixMilli())
}

func (m *Metrics) IncrementNoFace() {
	m.noFaceFrames.Add(1)
}

func (m *Metrics) IncrementClosed() {
	m.closedFrames.Add(1)
}

func (m *Metrics) IncrementDetectorErrors() {
	m.detectorErrors.Add(1)
}

func (m *Metrics) IncrementAlerts() {
	m.alerts.Add(1)
}

func (m *Metrics) IncrementDroppedAlerts() {
	m.droppedAlerts.Add(1)
}

func (m *Metrics) IncrementActuatorWrites() {
	m.actuatorWrites.Add(1)
}

func (m *Metrics) IncrementActuatorErrors() {
	m.actuatorErrors.Add(1)
}

func (m *Metrics) IncrementEpisodes() {
	m.episodes.Add(1)
}

func (m *Metrics) SetViewerClients(count int) {
	m.viewerClients.Store(int32(count))
}

func (m *Metrics) Snapshot() Snapshot {
	s := Snapshot{
		Frames:         m.frames.Load(),
		NoFaceFrames:   m.noFaceFrames.Load(),
		ClosedFrames:   m.closedFrames.Load(),
		DetectorErrors: m.detectorErrors.Load(),
		Alerts:         m.alerts.Load(),
		DroppedAlerts:  m.droppedAlerts.Load(),
		ActuatorWrites: m.actuatorWrites.Load(),
		ActuatorErrors: m.actuatorErrors.Load(),
		Episodes:       m.episodes.Load(),
		ViewerClients:  int(m.viewerClients.Load()),
	}
	if ms := m.lastFrameMillis.Load(); ms > 0 {
		s.LastFrame = time.UnixMilli(ms)
	}
	return s
}
