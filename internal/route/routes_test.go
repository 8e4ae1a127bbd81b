package route

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"drowsiness/internal/config"
	"drowsiness/internal/dto"
	"drowsiness/internal/logger"
	"drowsiness/internal/service/metrics"
	hub "drowsiness/internal/service/websocket"
)

type fakeProvider struct {
	metrics *metrics.Metrics
}

func (p *fakeProvider) Status() dto.FrameStatus      { return dto.FrameStatus{Camera: "driver"} }
func (p *fakeProvider) GetMetrics() *metrics.Metrics { return p.metrics }

func setupRouter(t *testing.T, password string) http.Handler {
	t.Helper()

	cfg := config.Default()
	cfg.Password = password
	cfg.LogDirectory = t.TempDir()

	log, err := logger.NewLogger(cfg)
	if err != nil {
		t.Fatalf("Failed to create logger: %v", err)
	}
	t.Cleanup(func() { log.Close() })

	m := metrics.NewMetrics()
	return SetupRoutes(&fakeProvider{metrics: m}, hub.NewHubService(log, m), cfg, log)
}

func TestSetupRoutes(t *testing.T) {
	tests := []struct {
		name     string
		password string
		method   string
		path     string
		cookie   bool
		wantCode int
	}{
		{"status open without password", "", http.MethodGet, "/api/status", false, http.StatusOK},
		{"status requires login", "secret", http.MethodGet, "/api/status", false, http.StatusUnauthorized},
		{"status with cookie", "secret", http.MethodGet, "/api/status", true, http.StatusOK},
		{"status rejects POST", "", http.MethodPost, "/api/status", false, http.StatusMethodNotAllowed},
		{"info log", "", http.MethodGet, "/logs/info", false, http.StatusOK},
		{"unknown log level", "", http.MethodGet, "/logs/trace", false, http.StatusNotFound},
		{"clear log", "", http.MethodPost, "/logs/warning/clear", false, http.StatusNoContent},
		{"missing page", "", http.MethodGet, "/nothing-here", false, http.StatusNotFound},
		{"page redirects to login", "secret", http.MethodGet, "/", false, http.StatusSeeOther},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router := setupRouter(t, tt.password)

			req := httptest.NewRequest(tt.method, tt.path, nil)
			if tt.cookie {
				req.AddCookie(&http.Cookie{Name: "authenticated", Value: "true"})
			}
			rr := httptest.NewRecorder()
			router.ServeHTTP(rr, req)

			if rr.Code != tt.wantCode {
				t.Errorf("%s %s: expected %d, got %d", tt.method, tt.path, tt.wantCode, rr.Code)
			}
		})
	}
}
