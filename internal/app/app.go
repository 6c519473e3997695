// Package app wires the swipe sensor to persistence, plugins, the live event
// hub and the tray.
package app

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/ayusman/airswipe/internal/gesture"
	"github.com/ayusman/airswipe/internal/log"
	"github.com/ayusman/airswipe/internal/sensor"
	"github.com/ayusman/airswipe/internal/server"
	"github.com/ayusman/airswipe/internal/server/api"
	"github.com/ayusman/airswipe/internal/store"
	"github.com/ayusman/airswipe/internal/timeutil"
)

// Store keys for persisted sensor settings.
const (
	keyHorizontalScroll        = "horizontal_scroll"
	keyVerticalScroll          = "vertical_scroll"
	keyClickEnabled            = "click_enabled"
	keyAverageColorMaxForClick = "average_color_max_for_click"
)

// Notifier mirrors session state and swipes in a UI such as the tray.
type Notifier interface {
	SetEnabled(enabled bool)
	SetLastSwipe(direction string)
}

// Config holds the collaborators of an App.
type Config struct {
	Store       *store.Store
	Source      sensor.FrameSource
	Detector    sensor.MotionDetector
	Orientation sensor.OrientationProvider
	Clock       timeutil.Clock

	Plugins PluginSource
	Runner  PluginRunner
	Hub     *server.Hub

	Gesture             gesture.Config
	Settings            sensor.Settings
	DiagnosticsPath     string
	DiagnosticsCapacity int
	FrameInterval       time.Duration
	QueueSize           int
}

// App owns the Sensor and everything that reacts to its swipes. It
// implements api.Controller.
type App struct {
	config     Config
	sensor     *sensor.Sensor
	dispatcher *Dispatcher
	logger     *slog.Logger

	// sessionMu serializes StartSession and StopSession. Listeners never take
	// it because StopSession waits for the sensor loop.
	sessionMu sync.Mutex
	sessionID atomic.Value

	// settingsMu serializes read-modify-write of the sensor settings.
	settingsMu sync.Mutex

	notifierMu sync.RWMutex
	notifier   Notifier

	lastSwipe atomic.Value
}

var _ api.Controller = (*App)(nil)

// New creates an App with a stopped sensor, loads persisted settings and
// registers the swipe listeners.
func New(config Config) *App {
	if config.Clock == nil {
		config.Clock = timeutil.RealClock{}
	}
	if config.Settings == (sensor.Settings{}) {
		config.Settings = sensor.DefaultSettings()
	}

	logger := log.With("component", "app")

	a := &App{
		config: config,
		sensor: sensor.New(sensor.Config{
			Source:              config.Source,
			Orientation:         config.Orientation,
			Detector:            config.Detector,
			Clock:               config.Clock,
			Gesture:             config.Gesture,
			DiagnosticsPath:     config.DiagnosticsPath,
			DiagnosticsCapacity: config.DiagnosticsCapacity,
			FrameInterval:       config.FrameInterval,
		}),
		dispatcher: NewDispatcher(config.Store, config.Plugins, config.Runner, config.QueueSize,
			log.With("component", "dispatcher")),
		logger: logger,
	}
	a.sessionID.Store("")
	a.lastSwipe.Store("")

	a.sensor.ApplySettings(a.loadSettings())
	a.sensor.AddListener(sensor.ListenerFunc(a.onSwipe))

	return a
}

// Sensor returns the underlying sensor.
func (a *App) Sensor() *sensor.Sensor {
	return a.sensor
}

// Dispatcher returns the swipe dispatcher.
func (a *App) Dispatcher() *Dispatcher {
	return a.dispatcher
}

// SetNotifier attaches a UI that mirrors state and swipes. nil detaches.
func (a *App) SetNotifier(n Notifier) {
	a.notifierMu.Lock()
	a.notifier = n
	a.notifierMu.Unlock()

	if n != nil {
		n.SetEnabled(a.sensor.Running())
		n.SetLastSwipe(a.LastSwipe())
	}
}

func (a *App) currentNotifier() Notifier {
	a.notifierMu.RLock()
	defer a.notifierMu.RUnlock()
	return a.notifier
}

// onSwipe runs on the sensor loop for every delivered swipe.
func (a *App) onSwipe(s *sensor.Sensor, d gesture.Direction, durationMs int64) {
	now := a.config.Clock.Now()
	dir := d.String()

	a.lastSwipe.Store(dir)
	a.logger.Info("swipe", "direction", dir, "duration_ms", durationMs)

	a.dispatcher.Enqueue(Swipe{
		Direction:  d,
		DurationMs: durationMs,
		Rotation:   s.Rotation(),
		SessionID:  a.SessionID(),
		At:         now,
	})

	if a.config.Hub != nil {
		a.config.Hub.Broadcast(server.LiveEvent{
			Direction:  dir,
			DurationMs: durationMs,
			Timestamp:  now.UnixMilli(),
		})
	}

	if n := a.currentNotifier(); n != nil {
		n.SetLastSwipe(dir)
	}
}

// StartSession records a session and starts the sensor. It is a no-op when
// a session is already running. The session ID is in place before the loop
// starts, so every swipe is attributed to it.
func (a *App) StartSession() error {
	a.sessionMu.Lock()
	defer a.sessionMu.Unlock()

	if a.sensor.Running() {
		return nil
	}

	var sessions *store.SessionRepository
	if a.config.Store != nil {
		sessions = a.config.Store.Sessions()
		sess := &store.Session{StartedAt: a.config.Clock.Now()}
		if err := sessions.Create(sess); err != nil {
			a.logger.Warn("failed to record session", "error", err)
			sessions = nil
		} else {
			a.sessionID.Store(sess.ID)
		}
	}

	if err := a.sensor.Start(); err != nil {
		if id := a.sessionID.Swap("").(string); id != "" && sessions != nil {
			if delErr := sessions.Delete(id); delErr != nil {
				a.logger.Warn("failed to discard session", "session", id, "error", delErr)
			}
		}
		return fmt.Errorf("start sensor: %w", err)
	}

	if id := a.SessionID(); id != "" && sessions != nil {
		res := a.sensor.Resolution()
		if err := sessions.SetResolution(id, res.Width, res.Height); err != nil {
			a.logger.Warn("failed to record resolution", "session", id, "error", err)
		}
	}

	if n := a.currentNotifier(); n != nil {
		n.SetEnabled(true)
	}
	return nil
}

// StopSession stops the sensor, which always exports diagnostics, and
// closes the recorded session.
func (a *App) StopSession() {
	a.sessionMu.Lock()
	defer a.sessionMu.Unlock()

	a.sensor.Stop()

	if id := a.sessionID.Swap("").(string); id != "" && a.config.Store != nil {
		if err := a.config.Store.Sessions().Finish(id, a.config.Clock.Now()); err != nil {
			a.logger.Warn("failed to close session", "session", id, "error", err)
		}
	}

	if n := a.currentNotifier(); n != nil {
		n.SetEnabled(false)
	}
}

// SessionID returns the recorded ID of the running session, or "".
func (a *App) SessionID() string {
	return a.sessionID.Load().(string)
}

// LastSwipe returns the direction of the most recent swipe, or "".
func (a *App) LastSwipe() string {
	return a.lastSwipe.Load().(string)
}

// Status reports the sensor state.
func (a *App) Status() api.Status {
	res := a.sensor.Resolution()
	return api.Status{
		Running:  a.sensor.Running(),
		Width:    res.Width,
		Height:   res.Height,
		Rotation: int(a.sensor.Rotation()),
		Settings: a.sensor.Settings(),
	}
}

// Settings returns the active sensor settings.
func (a *App) Settings() sensor.Settings {
	return a.sensor.Settings()
}

// UpdateSettings replaces the settings. See ModifySettings.
func (a *App) UpdateSettings(s sensor.Settings) error {
	_, err := a.ModifySettings(func(cur *sensor.Settings) { *cur = s })
	return err
}

// ModifySettings applies fn to the current settings, hands the result to the
// sensor immediately and persists it. Calls are serialized so concurrent
// partial updates do not overwrite each other.
func (a *App) ModifySettings(fn func(*sensor.Settings)) (sensor.Settings, error) {
	a.settingsMu.Lock()
	defer a.settingsMu.Unlock()

	s := a.sensor.Settings()
	fn(&s)
	a.sensor.ApplySettings(s)

	if a.config.Store == nil {
		return s, nil
	}

	repo := a.config.Store.Settings()
	return s, errors.Join(
		repo.SetBool(keyHorizontalScroll, s.HorizontalScrollEnabled),
		repo.SetBool(keyVerticalScroll, s.VerticalScrollEnabled),
		repo.SetBool(keyClickEnabled, s.ClickEnabled),
		repo.SetInt(keyAverageColorMaxForClick, s.AverageColorMaxForClick),
	)
}

// loadSettings overlays persisted values on the configured defaults.
func (a *App) loadSettings() sensor.Settings {
	s := a.config.Settings
	if a.config.Store == nil {
		return s
	}

	repo := a.config.Store.Settings()
	s.HorizontalScrollEnabled = repo.GetBool(keyHorizontalScroll, s.HorizontalScrollEnabled)
	s.VerticalScrollEnabled = repo.GetBool(keyVerticalScroll, s.VerticalScrollEnabled)
	s.ClickEnabled = repo.GetBool(keyClickEnabled, s.ClickEnabled)
	s.AverageColorMaxForClick = repo.GetInt(keyAverageColorMaxForClick, s.AverageColorMaxForClick)
	return s
}

// Close stops any running session and drains the dispatcher.
func (a *App) Close() {
	a.StopSession()
	a.dispatcher.Close()
}
