// Package config loads daemon configuration from defaults, an optional JSON
// file and environment variables.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/ayusman/airswipe/internal/gesture"
	"github.com/ayusman/airswipe/internal/orientation"
)

// Defaults.
const (
	DefaultListenAddr      = ":8080"
	DefaultFPS             = 30
	DefaultFrameIntervalMs = 33
	DefaultPluginTimeoutMs = 5000
	DefaultLogLevel        = "info"
	DefaultRotation        = 90

	// DiagnosticsFile is the well-known name of the intensity export.
	DiagnosticsFile = "intensity.txt"
	databaseFile    = "airswipe.db"
	maxFileSize     = 1 * 1024 * 1024
)

// Config is the daemon configuration. Every field has a default, so a JSON
// file only needs the values it changes.
type Config struct {
	CameraID   int    `json:"camera_id"`
	ListenAddr string `json:"listen_addr"`
	DataDir    string `json:"data_dir"`
	PluginDir  string `json:"plugin_dir"`
	LogLevel   string `json:"log_level"`

	// Rotation is the display rotation in degrees reported to the sensor.
	// 90 maps sensor directions to screen directions unchanged.
	Rotation int `json:"rotation"`

	FPS             int `json:"fps"`
	FrameIntervalMs int `json:"frame_interval_ms"`

	MinFractionScreenMotion        float64 `json:"min_fraction_screen_motion"`
	MinMillisecondsBetweenGestures int64   `json:"min_milliseconds_between_gestures"`

	HorizontalScroll bool `json:"horizontal_scroll"`
	VerticalScroll   bool `json:"vertical_scroll"`

	// DiagnosticsPath is where the intensity log is written on stop.
	// Empty means DataDir/intensity.txt.
	DiagnosticsPath     string `json:"diagnostics_path"`
	DiagnosticsCapacity int    `json:"diagnostics_capacity"`

	PluginTimeoutMs int `json:"plugin_timeout_ms"`
}

// Default returns the built-in configuration rooted at ~/.airswipe.
func Default() *Config {
	dataDir := ".airswipe"
	if home, err := os.UserHomeDir(); err == nil {
		dataDir = filepath.Join(home, ".airswipe")
	}

	return &Config{
		ListenAddr:                     DefaultListenAddr,
		DataDir:                        dataDir,
		LogLevel:                       DefaultLogLevel,
		Rotation:                       DefaultRotation,
		FPS:                            DefaultFPS,
		FrameIntervalMs:                DefaultFrameIntervalMs,
		MinFractionScreenMotion:        gesture.DefaultMinFractionScreenMotion,
		MinMillisecondsBetweenGestures: gesture.DefaultMinMillisecondsBetweenGestures,
		HorizontalScroll:               true,
		VerticalScroll:                 true,
		PluginTimeoutMs:                DefaultPluginTimeoutMs,
	}
}

// Load reads a JSON config file over the defaults.
// The file must have a .json extension and be under 1MB.
func Load(path string) (*Config, error) {
	cleanPath := filepath.Clean(path)
	if ext := filepath.Ext(cleanPath); ext != ".json" {
		return nil, fmt.Errorf("config file must have .json extension, got %q", ext)
	}

	info, err := os.Stat(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to stat config file: %w", err)
	}
	if info.Size() > maxFileSize {
		return nil, fmt.Errorf("config file too large: %d bytes (max %d)", info.Size(), maxFileSize)
	}

	data, err := os.ReadFile(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := Default()
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}
	return cfg, nil
}

// ApplyEnv overrides fields from AIRSWIPE_* environment variables.
func (c *Config) ApplyEnv() error {
	var errs []error

	if v := os.Getenv("AIRSWIPE_CAMERA"); v != "" {
		id, err := strconv.Atoi(v)
		if err != nil {
			errs = append(errs, fmt.Errorf("AIRSWIPE_CAMERA: %w", err))
		} else {
			c.CameraID = id
		}
	}
	if v := os.Getenv("AIRSWIPE_ADDR"); v != "" {
		c.ListenAddr = v
	}
	if v := os.Getenv("AIRSWIPE_DATA_DIR"); v != "" {
		c.DataDir = v
	}
	if v := os.Getenv("AIRSWIPE_LOG_LEVEL"); v != "" {
		c.LogLevel = v
	}
	if v := os.Getenv("AIRSWIPE_ROTATION"); v != "" {
		deg, err := strconv.Atoi(v)
		if err != nil {
			errs = append(errs, fmt.Errorf("AIRSWIPE_ROTATION: %w", err))
		} else {
			c.Rotation = deg
		}
	}

	return errors.Join(errs...)
}

// Validate reports every out-of-range field.
func (c *Config) Validate() error {
	var errs []error

	if c.DataDir == "" {
		errs = append(errs, errors.New("data_dir is required"))
	}
	if _, err := orientation.ParseRotation(c.Rotation); err != nil {
		errs = append(errs, fmt.Errorf("rotation: %w", err))
	}
	if c.FPS < 1 || c.FPS > 120 {
		errs = append(errs, errors.New("fps must be between 1 and 120"))
	}
	if c.FrameIntervalMs < 0 {
		errs = append(errs, errors.New("frame_interval_ms must not be negative"))
	}
	if c.MinFractionScreenMotion <= 0 || c.MinFractionScreenMotion >= 1 {
		errs = append(errs, errors.New("min_fraction_screen_motion must be between 0 and 1"))
	}
	if c.MinMillisecondsBetweenGestures < 0 {
		errs = append(errs, errors.New("min_milliseconds_between_gestures must not be negative"))
	}
	if c.PluginTimeoutMs <= 0 {
		errs = append(errs, errors.New("plugin_timeout_ms must be positive"))
	}

	return errors.Join(errs...)
}

// DatabasePath returns the SQLite file location.
func (c *Config) DatabasePath() string {
	return filepath.Join(c.DataDir, databaseFile)
}

// PluginPath returns the plugin directory.
func (c *Config) PluginPath() string {
	if c.PluginDir != "" {
		return c.PluginDir
	}
	return filepath.Join(c.DataDir, "plugins")
}

// DiagnosticsFilePath returns where the intensity log is exported.
func (c *Config) DiagnosticsFilePath() string {
	if c.DiagnosticsPath != "" {
		return c.DiagnosticsPath
	}
	return filepath.Join(c.DataDir, DiagnosticsFile)
}

// FrameInterval returns FrameIntervalMs as a duration.
func (c *Config) FrameInterval() time.Duration {
	return time.Duration(c.FrameIntervalMs) * time.Millisecond
}

// GestureConfig returns the state machine thresholds.
func (c *Config) GestureConfig() gesture.Config {
	return gesture.Config{
		MinFractionScreenMotion:        c.MinFractionScreenMotion,
		MinMillisecondsBetweenGestures: c.MinMillisecondsBetweenGestures,
	}
}
