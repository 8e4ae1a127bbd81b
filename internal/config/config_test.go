package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("CONFIG_FILE", "")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.EyesClosedThreshold != 2*time.Second {
		t.Errorf("Expected 2s threshold, got %s", cfg.EyesClosedThreshold)
	}
	if cfg.FrameSource != "0" {
		t.Errorf("Expected default camera 0, got %q", cfg.FrameSource)
	}
	if cfg.AlertPolicy != "continuous" {
		t.Errorf("Expected continuous policy, got %q", cfg.AlertPolicy)
	}
	if !strings.HasPrefix(cfg.ActuatorEndpoint, "serial://") {
		t.Errorf("Expected a serial actuator by default, got %q", cfg.ActuatorEndpoint)
	}
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("CONFIG_FILE", "")
	t.Setenv("EYES_CLOSED_THRESHOLD", "1500ms")
	t.Setenv("FRAME_INTERVAL", "0.5")
	t.Setenv("FRAME_SOURCE", "drive.mp4")
	t.Setenv("ACTUATOR", "mqtt://broker:1883/cab/alert")
	t.Setenv("ALERT_POLICY", "edge")
	t.Setenv("SHOW_WINDOW", "false")
	t.Setenv("PORT", "0")
	t.Setenv("FACE_MIN_NEIGHBORS", "7")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.EyesClosedThreshold != 1500*time.Millisecond {
		t.Errorf("Expected 1.5s threshold, got %s", cfg.EyesClosedThreshold)
	}
	if cfg.FrameInterval != 500*time.Millisecond {
		t.Errorf("Expected bare seconds to parse as 500ms, got %s", cfg.FrameInterval)
	}
	if cfg.FrameSource != "drive.mp4" || cfg.ActuatorEndpoint != "mqtt://broker:1883/cab/alert" {
		t.Errorf("Endpoints not overridden: %q %q", cfg.FrameSource, cfg.ActuatorEndpoint)
	}
	if cfg.AlertPolicy != "edge" || cfg.DisplayEnabled || cfg.Port != 0 || cfg.FaceMinNeighbors != 7 {
		t.Errorf("Unexpected overrides: %+v", cfg)
	}
}

func TestLoad_RejectsNonPositiveThreshold(t *testing.T) {
	t.Setenv("CONFIG_FILE", "")

	for _, value := range []string{"0", "0s", "-2", "-1s"} {
		t.Run(value, func(t *testing.T) {
			t.Setenv("EYES_CLOSED_THRESHOLD", value)

			cfg, err := Load()
			if err == nil {
				t.Fatalf("Expected an error for threshold %q, got %+v", value, cfg)
			}
			if !strings.Contains(err.Error(), "threshold") {
				t.Errorf("Error should mention the threshold: %v", err)
			}
		})
	}
}

func TestLoad_YAMLFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "monitor.yaml")
	content := `
camera_name: cab-2
frame_source: rtsp://10.0.0.5/stream
eyes_closed_threshold: 3s
alert_policy: edge
actuator: stdout
face_backend: yunet
port: 9090
`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("Failed to write config file: %v", err)
	}

	t.Setenv("CONFIG_FILE", path)
	t.Setenv("PORT", "9191")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.CameraName != "cab-2" || cfg.FrameSource != "rtsp://10.0.0.5/stream" {
		t.Errorf("YAML values not applied: %+v", cfg)
	}
	if cfg.EyesClosedThreshold != 3*time.Second {
		t.Errorf("Expected 3s threshold from file, got %s", cfg.EyesClosedThreshold)
	}
	if cfg.FaceBackend != "yunet" || cfg.ActuatorEndpoint != "stdout" {
		t.Errorf("Unexpected backend/actuator: %q %q", cfg.FaceBackend, cfg.ActuatorEndpoint)
	}
	if cfg.Port != 9191 {
		t.Errorf("Environment should override the file, got port %d", cfg.Port)
	}
	if cfg.FaceScaleFactor != 1.3 {
		t.Errorf("Values missing from the file should keep defaults, got %v", cfg.FaceScaleFactor)
	}
}

func TestLoad_MissingYAMLFile(t *testing.T) {
	t.Setenv("CONFIG_FILE", filepath.Join(t.TempDir(), "missing.yaml"))

	if _, err := Load(); err == nil {
		t.Error("Expected an error for a missing config file")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr bool
	}{
		{"defaults", func(c *Config) {}, false},
		{"negative interval", func(c *Config) { c.FrameInterval = -time.Millisecond }, true},
		{"empty source", func(c *Config) { c.FrameSource = "  " }, true},
		{"unknown policy", func(c *Config) { c.AlertPolicy = "sometimes" }, true},
		{"unknown backend", func(c *Config) { c.FaceBackend = "magic" }, true},
		{"unknown order", func(c *Config) { c.FaceOrder = "random" }, true},
		{"scale factor too small", func(c *Config) { c.FaceScaleFactor = 1 }, true},
		{"zero queue", func(c *Config) { c.DispatchQueueSize = 0 }, true},
		{"bad port", func(c *Config) { c.Port = 70000 }, true},
		{"bad quality", func(c *Config) { c.ViewerJPEGQuality = 0 }, true},
		{"viewer disabled", func(c *Config) { c.Port = 0 }, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)

			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestGetEnvAsDuration(t *testing.T) {
	tests := []struct {
		value    string
		expected time.Duration
		wantErr  bool
	}{
		{"", time.Minute, false},
		{"250ms", 250 * time.Millisecond, false},
		{"2", 2 * time.Second, false},
		{"0.25", 250 * time.Millisecond, false},
		{"soon", time.Minute, true},
		{"2sec", time.Minute, true},
	}

	for _, tt := range tests {
		t.Setenv("TEST_DURATION", tt.value)
		got, err := getEnvAsDuration("TEST_DURATION", time.Minute)
		if (err != nil) != tt.wantErr {
			t.Errorf("getEnvAsDuration(%q) error = %v, wantErr %v", tt.value, err, tt.wantErr)
		}
		if got != tt.expected {
			t.Errorf("getEnvAsDuration(%q) = %s, expected %s", tt.value, got, tt.expected)
		}
	}
}

func TestLoad_RejectsUnparsableEnv(t *testing.T) {
	t.Setenv("CONFIG_FILE", "")

	tests := []struct {
		key   string
		value string
	}{
		{"EYES_CLOSED_THRESHOLD", "abc"},
		{"EYES_CLOSED_THRESHOLD", "2sec"},
		{"EYES_CLOSED_THRESHOLD", "two seconds"},
		{"FRAME_INTERVAL", "fast"},
		{"DISPATCH_QUEUE", "many"},
		{"FACE_SCALE_FACTOR", "big"},
		{"SHOW_WINDOW", "maybe"},
		{"PORT", "http"},
	}

	for _, tt := range tests {
		t.Run(tt.key+"="+tt.value, func(t *testing.T) {
			t.Setenv(tt.key, tt.value)

			cfg, err := Load()
			if err == nil {
				t.Fatalf("Expected an error for %s=%q, got %+v", tt.key, tt.value, cfg)
			}
			if !strings.Contains(err.Error(), tt.key) {
				t.Errorf("Error should name %s: %v", tt.key, err)
			}
		})
	}
}

func TestLoad_ReportsEveryUnparsableKey(t *testing.T) {
	t.Setenv("CONFIG_FILE", "")
	t.Setenv("EYES_CLOSED_THRESHOLD", "abc")
	t.Setenv("DISPATCH_QUEUE", "many")

	_, err := Load()
	if err == nil {
		t.Fatal("Expected an error")
	}
	for _, key := range []string{"EYES_CLOSED_THRESHOLD", "DISPATCH_QUEUE"} {
		if !strings.Contains(err.Error(), key) {
			t.Errorf("Error should name %s: %v", key, err)
		}
	}
}
