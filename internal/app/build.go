package app

import (
	"fmt"

	"github.com/ayusman/airswipe/internal/capture"
	"github.com/ayusman/airswipe/internal/config"
	"github.com/ayusman/airswipe/internal/orientation"
	"github.com/ayusman/airswipe/internal/plugin"
	"github.com/ayusman/airswipe/internal/sensor"
	"github.com/ayusman/airswipe/internal/server"
	"github.com/ayusman/airswipe/internal/store"
)

// FromConfig assembles an App around the local camera described by cfg.
// plugins and hub may be nil.
func FromConfig(cfg *config.Config, st *store.Store, plugins *plugin.Manager, hub *server.Hub) (*App, error) {
	rotation, err := orientation.ParseRotation(cfg.Rotation)
	if err != nil {
		return nil, fmt.Errorf("invalid rotation: %w", err)
	}

	camera := capture.NewCamera(cfg.CameraID)
	camera.SetFPS(cfg.FPS)

	settings := sensor.DefaultSettings()
	settings.HorizontalScrollEnabled = cfg.HorizontalScroll
	settings.VerticalScrollEnabled = cfg.VerticalScroll

	appCfg := Config{
		Store:               st,
		Source:              camera,
		Detector:            capture.NewMotionDetector(),
		Orientation:         capture.NewFixedOrientation(rotation),
		Hub:                 hub,
		Gesture:             cfg.GestureConfig(),
		Settings:            settings,
		DiagnosticsPath:     cfg.DiagnosticsFilePath(),
		DiagnosticsCapacity: cfg.DiagnosticsCapacity,
		FrameInterval:       cfg.FrameInterval(),
	}
	if plugins != nil {
		appCfg.Plugins = plugins
		appCfg.Runner = plugin.NewExecutor(cfg.PluginTimeoutMs)
	}

	return New(appCfg), nil
}
