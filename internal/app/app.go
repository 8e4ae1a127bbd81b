package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"

	"drowsiness/internal/config"
	"drowsiness/internal/logger"
	"drowsiness/internal/route"
	"drowsiness/internal/service"
	"drowsiness/internal/service/actuator"
	"drowsiness/internal/service/ai"
	"drowsiness/internal/service/capture"
	"drowsiness/internal/service/display"
	"drowsiness/internal/service/drowsiness"
	"drowsiness/internal/service/metrics"
	"drowsiness/internal/service/viewer"
	"drowsiness/internal/service/websocket"
)

const shutdownTimeout = 5 * time.Second

type App struct {
	config     *config.Config
	logger     *logger.Logger
	source     capture.Source
	detector   ai.RegionDetector
	dispatcher *actuator.Dispatcher
	display    display.Display
	hubService *websocket.HubService
	manager    *service.Manager
}

// NewApp opens the camera and detector and wires the processing pipeline.
// The actuator being unreachable is not an error here; it shows up as
// failed signals later.
func NewApp(cfg *config.Config, log *logger.Logger) (*App, error) {
	policy, err := drowsiness.ParsePolicy(cfg.AlertPolicy)
	if err != nil {
		return nil, err
	}

	monitor, err := drowsiness.NewMonitor(cfg.EyesClosedThreshold, policy)
	if err != nil {
		return nil, err
	}

	detector, err := ai.NewDetector(cfg, log)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize detector: %w", err)
	}

	source, err := capture.Open(cfg.FrameSource, log)
	if err != nil {
		detector.Close()
		return nil, fmt.Errorf("failed to open frame source: %w", err)
	}

	act, err := actuator.Open(cfg.ActuatorEndpoint, log)
	if err != nil {
		source.Close()
		detector.Close()
		return nil, fmt.Errorf("failed to set up actuator: %w", err)
	}

	m := metrics.NewMetrics()
	dispatcher := actuator.NewDispatcher(act, cfg.DispatchQueueSize, log, m)

	var disp display.Display = display.Headless{}
	if cfg.DisplayEnabled {
		disp = display.NewWindow(cfg.WindowTitle, log)
	}

	hubService := websocket.NewHubService(log, m)

	var publisher service.Viewer
	if cfg.Port > 0 {
		publisher = viewer.NewPublisher(hubService, cfg.ViewerMaxWidth, cfg.ViewerJPEGQuality, log)
	}

	session := uuid.NewString()
	manager := service.NewManager(source, detector, monitor, dispatcher, disp, publisher, cfg, session, m, log)

	log.Info("🆔 Session %s started for camera %s (source %s, actuator %s)",
		session, cfg.CameraName, cfg.FrameSource, cfg.ActuatorEndpoint)

	return &App{
		config:     cfg,
		logger:     log,
		source:     source,
		detector:   detector,
		dispatcher: dispatcher,
		display:    disp,
		hubService: hubService,
		manager:    manager,
	}, nil
}

// Run blocks until the frame source ends, the operator quits or the process
// receives SIGINT/SIGTERM.
func (a *App) Run(ctx context.Context) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	var server *http.Server
	if a.config.Port > 0 {
		go a.hubService.Run(ctx)

		server = &http.Server{
			Addr:              fmt.Sprintf(":%d", a.config.Port),
			Handler:           route.SetupRoutes(a.manager, a.hubService, a.config, a.logger),
			ReadHeaderTimeout: 5 * time.Second,
		}

		go func() {
			if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				a.logger.Error("Viewer server failed: %v", err)
			}
		}()

		fmt.Printf("🚗 Drowsiness monitor\n")
		fmt.Printf("📍 Viewer: http://localhost:%d\n", a.config.Port)
		fmt.Printf("⏱️  Threshold: %s\n", a.config.EyesClosedThreshold)
		fmt.Printf("🔔 Actuator: %s\n", a.config.ActuatorEndpoint)
	}

	runErr := a.manager.Run(ctx)

	if server != nil {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			a.logger.Warning("Viewer server shutdown: %v", err)
		}
	}

	return runErr
}

// Close delivers pending alerts and releases the camera, detector and window.
func (a *App) Close() error {
	return errors.Join(
		a.dispatcher.Stop(),
		a.source.Close(),
		a.detector.Close(),
		a.display.Close(),
	)
}
