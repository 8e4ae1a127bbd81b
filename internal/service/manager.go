package service

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"gocv.io/x/gocv"

	"drowsiness/internal/config"
	"drowsiness/internal/dto"
	"drowsiness/internal/logger"
	"drowsiness/internal/model"
	"drowsiness/internal/service/ai"
	"drowsiness/internal/service/capture"
	"drowsiness/internal/service/display"
	"drowsiness/internal/service/drowsiness"
	"drowsiness/internal/service/eyestate"
	"drowsiness/internal/service/metrics"
)

// AlertDispatcher hands alerts off without blocking.
type AlertDispatcher interface {
	Dispatch(event dto.AlertEvent) bool
}

// Viewer receives every processed frame for remote viewing.
type Viewer interface {
	Publish(frame gocv.Mat, status dto.FrameStatus)
}

// Manager runs the frame loop: capture, detect, classify, update the
// monitor, dispatch alerts and feed the display and viewers.
type Manager struct {
	source     capture.Source
	detector   ai.RegionDetector
	monitor    *drowsiness.Monitor
	timer      *capture.Timer
	dispatcher AlertDispatcher
	display    display.Display
	viewer     Viewer
	metrics    *metrics.Metrics
	logger     *logger.Logger

	camera  string
	session string

	statusMu sync.RWMutex
	status   dto.FrameStatus // Ostatnia przetworzona klatka
}

func NewManager(source capture.Source, detector ai.RegionDetector, monitor *drowsiness.Monitor, dispatcher AlertDispatcher, disp display.Display, viewer Viewer, config *config.Config, session string, metrics *metrics.Metrics, logger *logger.Logger) *Manager {
	if disp == nil {
		disp = display.Headless{}
	}

	return &Manager{
		source:     source,
		detector:   detector,
		monitor:    monitor,
		timer:      capture.NewTimer(config.FrameInterval),
		dispatcher: dispatcher,
		display:    disp,
		viewer:     viewer,
		metrics:    metrics,
		logger:     logger,
		camera:     config.CameraName,
		session:    session,
		status:     dto.FrameStatus{Session: session, Camera: config.CameraName},
	}
}

// Run processes frames until the source ends, the operator quits or ctx is
// cancelled. Cancellation is only observed between frames. End of stream,
// quit and cancellation return nil; a failing source returns its error.
func (m *Manager) Run(ctx context.Context) error {
	m.logger.Info("🎬 Monitoring camera %s - alert after %s of closed eyes (%s policy)",
		m.camera, m.monitor.Threshold(), m.monitor.Policy())

	for {
		select {
		case <-ctx.Done():
			m.logger.Info("🛑 Monitoring stopped: %v", ctx.Err())
			return nil
		default:
		}

		frame, err := m.source.Next()
		if errors.Is(err, capture.ErrEndOfStream) {
			m.logger.Info("📼 Frame source ended after %d frame(s)", m.metrics.Snapshot().Frames)
			return nil
		}
		if err != nil {
			return fmt.Errorf("frame source failed: %w", err)
		}

		status := m.ProcessFrame(frame)

		// Viewer first: the window draws onto the frame in place
		if m.viewer != nil {
			m.viewer.Publish(frame.Image, status)
		}

		if m.display.Show(frame.Image, status) {
			m.logger.Info("👋 Quit requested from the display")
			return nil
		}
	}
}

// ProcessFrame evaluates one frame. Detector failures only affect this
// frame, which is then treated as having no face.
func (m *Manager) ProcessFrame(frame capture.Frame) dto.FrameStatus {
	m.metrics.IncrementFrames(frame.Timestamp)

	status := dto.FrameStatus{
		Session:   m.session,
		Camera:    m.camera,
		Frame:     frame.Index,
		Timestamp: frame.Timestamp,
	}

	eyeState := model.EyesUnknown
	faces, err := m.detector.DetectFaces(frame.Image)
	if err != nil {
		m.logger.Warning("Face detection failed on frame %d: %v", frame.Index, err)
		m.metrics.IncrementDetectorErrors()
	} else {
		status.Faces = faces

		var eyeErr error
		eyeState = eyestate.Classify(faces, func(face model.Region) []model.Region {
			eyes, err := m.detector.DetectEyes(frame.Image, face)
			if err != nil {
				eyeErr = err
				return nil
			}
			status.Eyes = eyes
			return eyes
		})

		if eyeErr != nil {
			m.logger.Warning("Eye detection failed on frame %d: %v", frame.Index, eyeErr)
			m.metrics.IncrementDetectorErrors()
			eyeState = model.EyesUnknown
		}
	}

	switch eyeState {
	case model.EyesUnknown:
		m.metrics.IncrementNoFace()
	case model.EyesClosed:
		m.metrics.IncrementClosed()
	}

	decision := m.monitor.Update(eyeState, m.timer.Elapsed(frame))

	if decision.EpisodeStarted {
		m.metrics.IncrementEpisodes()
		m.logger.Warning("😴 Eyes closed for %s on camera %s - drowsiness episode %d",
			decision.ClosedDuration, m.camera, decision.Episode)
	}
	if decision.EpisodeEnded {
		m.logger.Info("Driver awake again on camera %s (episode %d over)", m.camera, decision.Episode)
	}

	status.EyeState = eyeState
	status.State = decision.State
	status.ClosedDuration = decision.ClosedDuration
	status.Alert = decision.Alert
	status.Episode = decision.Episode

	if decision.Alert {
		m.dispatcher.Dispatch(dto.AlertEvent{
			Camera:         m.camera,
			Frame:          frame.Index,
			Episode:        decision.Episode,
			ClosedDuration: decision.ClosedDuration,
			Timestamp:      frame.Timestamp,
		})
	}

	m.statusMu.Lock()
	m.status = status
	m.statusMu.Unlock()

	return status
}

// Status returns the outcome of the most recently processed frame.
func (m *Manager) Status() dto.FrameStatus {
	m.statusMu.RLock()
	defer m.statusMu.RUnlock()
	return m.status
}

func (m *Manager) GetMetrics() *metrics.Metrics {
	return m.metrics
}
