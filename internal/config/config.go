package config

import (
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type Config struct {
	CameraName          string        `yaml:"camera_name"`
	FrameSource         string        `yaml:"frame_source"`   // Numer kamery ("0") albo ścieżka / URL strumienia
	FrameInterval       time.Duration `yaml:"frame_interval"` // 0 = czas liczony z timestampów klatek
	EyesClosedThreshold time.Duration `yaml:"eyes_closed_threshold"`
	AlertPolicy         string        `yaml:"alert_policy"` // continuous | edge
	ActuatorEndpoint    string        `yaml:"actuator"`
	DispatchQueueSize   int           `yaml:"dispatch_queue"`

	FaceBackend      string  `yaml:"face_backend"` // haar | yunet
	FaceCascadePath  string  `yaml:"face_cascade"`
	EyeCascadePath   string  `yaml:"eye_cascade"`
	YuNetModelPath   string  `yaml:"yunet_model"`
	FaceScaleFactor  float64 `yaml:"face_scale_factor"`
	FaceMinNeighbors int     `yaml:"face_min_neighbors"`
	FaceOrder        string  `yaml:"face_order"` // scan | largest

	DisplayEnabled bool   `yaml:"display"`
	WindowTitle    string `yaml:"window_title"`

	Port              int    `yaml:"port"` // 0 = bez serwera podglądu
	Password          string `yaml:"password"`
	ViewerMaxWidth    int    `yaml:"viewer_max_width"`
	ViewerJPEGQuality int    `yaml:"viewer_jpeg_quality"`
	LogDirectory      string `yaml:"log_dir"`

	// Zmienne środowiskowe, których nie dało się sparsować
	envErrors []error
}

// Default returns the configuration used when nothing is overridden.
func Default() *Config {
	return &Config{
		CameraName:          "driver",
		FrameSource:         "0",
		FrameInterval:       0,
		EyesClosedThreshold: 2 * time.Second,
		AlertPolicy:         "continuous",
		ActuatorEndpoint:    "serial://COM2?baud=9600",
		DispatchQueueSize:   16,
		FaceBackend:         "haar",
		FaceCascadePath:     filepath.Join(".", "data", "haarcascade_frontalface_default.xml"),
		EyeCascadePath:      filepath.Join(".", "data", "haarcascade_eye.xml"),
		YuNetModelPath:      filepath.Join(".", "data", "face_detection_yunet_2023mar.onnx"),
		FaceScaleFactor:     1.3,
		FaceMinNeighbors:    5,
		FaceOrder:           "scan",
		DisplayEnabled:      true,
		WindowTitle:         "Drowsiness monitor",
		Port:                8080,
		Password:            "",
		ViewerMaxWidth:      640,
		ViewerJPEGQuality:   70,
		LogDirectory:        filepath.Join(".", "logs"),
	}
}

// Load builds the configuration from defaults, an optional YAML file
// (CONFIG_FILE) and environment variables, in that order. A .env file in
// the working directory is loaded into the environment first.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using system environment variables")
	}

	cfg := Default()

	if path := os.Getenv("CONFIG_FILE"); path != "" {
		if err := cfg.loadFile(path); err != nil {
			return nil, err
		}
	}

	env := &envReader{}

	cfg.CameraName = getEnv("CAMERA_NAME", cfg.CameraName)
	cfg.FrameSource = getEnv("FRAME_SOURCE", cfg.FrameSource)
	cfg.FrameInterval = env.asDuration("FRAME_INTERVAL", cfg.FrameInterval)
	cfg.EyesClosedThreshold = env.asDuration("EYES_CLOSED_THRESHOLD", cfg.EyesClosedThreshold)
	cfg.AlertPolicy = getEnv("ALERT_POLICY", cfg.AlertPolicy)
	cfg.ActuatorEndpoint = getEnv("ACTUATOR", cfg.ActuatorEndpoint)
	cfg.DispatchQueueSize = env.asInt("DISPATCH_QUEUE", cfg.DispatchQueueSize)

	cfg.FaceBackend = getEnv("FACE_BACKEND", cfg.FaceBackend)
	cfg.FaceCascadePath = getEnv("FACE_CASCADE", cfg.FaceCascadePath)
	cfg.EyeCascadePath = getEnv("EYE_CASCADE", cfg.EyeCascadePath)
	cfg.YuNetModelPath = getEnv("YUNET_MODEL", cfg.YuNetModelPath)
	cfg.FaceScaleFactor = env.asFloat("FACE_SCALE_FACTOR", cfg.FaceScaleFactor)
	cfg.FaceMinNeighbors = env.asInt("FACE_MIN_NEIGHBORS", cfg.FaceMinNeighbors)
	cfg.FaceOrder = getEnv("FACE_ORDER", cfg.FaceOrder)

	cfg.DisplayEnabled = env.asBool("SHOW_WINDOW", cfg.DisplayEnabled)
	cfg.WindowTitle = getEnv("WINDOW_TITLE", cfg.WindowTitle)

	cfg.Port = env.asInt("PORT", cfg.Port)
	cfg.Password = getEnv("PASSWORD", cfg.Password)
	cfg.ViewerMaxWidth = env.asInt("VIEWER_MAX_WIDTH", cfg.ViewerMaxWidth)
	cfg.ViewerJPEGQuality = env.asInt("VIEWER_JPEG_QUALITY", cfg.ViewerJPEGQuality)
	cfg.LogDirectory = getEnv("LOG_DIR", cfg.LogDirectory)

	cfg.envErrors = env.errs

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// loadFile overlays values from a YAML file on top of cfg.
func (c *Config) loadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}

	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("failed to parse config file %s: %w", path, err)
	}

	return nil
}

// Validate rejects settings the monitor must never run with.
func (c *Config) Validate() error {
	errs := append([]error{}, c.envErrors...)

	if c.EyesClosedThreshold <= 0 {
		errs = append(errs, fmt.Errorf("eyes closed threshold must be positive, got %s", c.EyesClosedThreshold))
	}
	if c.FrameInterval < 0 {
		errs = append(errs, fmt.Errorf("frame interval cannot be negative, got %s", c.FrameInterval))
	}
	if strings.TrimSpace(c.FrameSource) == "" {
		errs = append(errs, errors.New("frame source is required"))
	}
	if c.DispatchQueueSize <= 0 {
		errs = append(errs, fmt.Errorf("dispatch queue size must be positive, got %d", c.DispatchQueueSize))
	}

	switch strings.ToLower(c.AlertPolicy) {
	case "", "continuous", "every-frame", "edge", "once":
	default:
		errs = append(errs, fmt.Errorf("unknown alert policy %q", c.AlertPolicy))
	}

	switch strings.ToLower(c.FaceBackend) {
	case "haar", "yunet":
	default:
		errs = append(errs, fmt.Errorf("unknown face backend %q", c.FaceBackend))
	}

	switch strings.ToLower(c.FaceOrder) {
	case "scan", "largest":
	default:
		errs = append(errs, fmt.Errorf("unknown face order %q", c.FaceOrder))
	}

	if c.FaceScaleFactor <= 1 {
		errs = append(errs, fmt.Errorf("face scale factor must be greater than 1, got %v", c.FaceScaleFactor))
	}
	if c.Port < 0 || c.Port > 65535 {
		errs = append(errs, fmt.Errorf("invalid port %d", c.Port))
	}
	if c.ViewerJPEGQuality < 1 || c.ViewerJPEGQuality > 100 {
		errs = append(errs, fmt.Errorf("viewer JPEG quality must be 1-100, got %d", c.ViewerJPEGQuality))
	}

	return errors.Join(errs...)
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) (int, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}

	intValue, err := strconv.Atoi(value)
	if err != nil {
		return defaultValue, fmt.Errorf("%s=%q is not an integer", key, value)
	}
	return intValue, nil
}

func getEnvAsFloat(key string, defaultValue float64) (float64, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}

	floatValue, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return defaultValue, fmt.Errorf("%s=%q is not a number", key, value)
	}
	return floatValue, nil
}

func getEnvAsBool(key string, defaultValue bool) (bool, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}

	boolValue, err := strconv.ParseBool(value)
	if err != nil {
		return defaultValue, fmt.Errorf("%s=%q is not a boolean", key, value)
	}
	return boolValue, nil
}

// getEnvAsDuration accepts Go durations ("1500ms", "2s") and bare seconds ("2", "0.5").
func getEnvAsDuration(key string, defaultValue time.Duration) (time.Duration, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}

	if d, err := time.ParseDuration(value); err == nil {
		return d, nil
	}
	if seconds, err := strconv.ParseFloat(value, 64); err == nil {
		return time.Duration(seconds * float64(time.Second)), nil
	}
	return defaultValue, fmt.Errorf("%s=%q is not a duration", key, value)
}

// envReader collects parse failures so Load can report every bad key at once.
type envReader struct {
	errs []error
}

func (r *envReader) record(err error) {
	if err != nil {
		r.errs = append(r.errs, err)
	}
}

func (r *envReader) asInt(key string, defaultValue int) int {
	v, err := getEnvAsInt(key, defaultValue)
	r.record(err)
	return v
}

func (r *envReader) asFloat(key string, defaultValue float64) float64 {
	v, err := getEnvAsFloat(key, defaultValue)
	r.record(err)
	return v
}

func (r *envReader) asBool(key string, defaultValue bool) bool {
	v, err := getEnvAsBool(key, defaultValue)
	r.record(err)
	return v
}

func (r *envReader) asDuration(key string, defaultValue time.Duration) time.Duration {
	v, err := getEnvAsDuration(key, defaultValue)
	r.record(err)
	return v
}
