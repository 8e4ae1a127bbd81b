package handler

import (
	"encoding/json"
	"net/http"
	"time"

	"drowsiness/internal/config"
	"drowsiness/internal/dto"
	"drowsiness/internal/logger"
	"drowsiness/internal/service/metrics"
)

// StatusProvider is implemented by service.Manager.
type StatusProvider interface {
	Status() dto.FrameStatus
	GetMetrics() *metrics.Metrics
}

type statusResponse struct {
	Status      dto.FrameStatus  `json:"status"`
	Metrics     metrics.Snapshot `json:"metrics"`
	ThresholdMs int64            `json:"thresholdMs"`
	AlertPolicy string           `json:"alertPolicy"`
	Uptime      string           `json:"uptime"`
}

// StatusHandler serves GET /api/status with the last frame status and counters.
func StatusHandler(provider StatusProvider, cfg *config.Config, logger *logger.Logger) http.HandlerFunc {
	started := time.Now()

	return func(w http.ResponseWriter, r *http.Request) {
		response := statusResponse{
			Status:      provider.Status(),
			Metrics:     provider.GetMetrics().Snapshot(),
			ThresholdMs: cfg.EyesClosedThreshold.Milliseconds(),
			AlertPolicy: cfg.AlertPolicy,
			Uptime:      time.Since(started).Round(time.Second).String(),
		}

		w.Header().Set("Content-Type", "application/json")
		w.Header().Set("Cache-Control", "no-cache")
		if err := json.NewEncoder(w).Encode(response); err != nil {
			logger.Error("Failed to encode status: %v", err)
		}
	}
}
