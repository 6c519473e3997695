// Package sensor runs a swipe-detection session: it owns the frame source,
// drives the gesture state machine once per frame and notifies listeners.
package sensor

import (
	"errors"
	"fmt"
	"image"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/ayusman/airswipe/internal/diag"
	"github.com/ayusman/airswipe/internal/gesture"
	"github.com/ayusman/airswipe/internal/log"
	"github.com/ayusman/airswipe/internal/orientation"
	"github.com/ayusman/airswipe/internal/timeutil"
)

// ErrNoResolution is returned by Start when the frame source offers no
// usable capture size.
var ErrNoResolution = errors.New("no supported resolution in range")

// DefaultAverageColorMaxForClick is the default click-by-color threshold.
const DefaultAverageColorMaxForClick = 100

// DefaultGrabRetryDelay is the pause after a failed grab when the loop is not
// paced by FrameInterval.
const DefaultGrabRetryDelay = 10 * time.Millisecond

// Config holds the collaborators and tuning for a Sensor.
type Config struct {
	Source      FrameSource
	Orientation OrientationProvider
	Detector    MotionDetector

	// Clock stamps samples. Defaults to timeutil.RealClock.
	Clock timeutil.Clock

	// Gesture holds the base thresholds. Zero value means gesture.DefaultConfig.
	Gesture gesture.Config

	// DiagnosticsPath receives the intensity log on Stop. Empty disables export.
	DiagnosticsPath     string
	DiagnosticsCapacity int

	// FrameInterval paces the loop. Zero runs ticks back-to-back and relies on
	// the source blocking in Grab.
	FrameInterval time.Duration

	// GrabRetryDelay is the wait after a failed grab in an unpaced loop.
	// Zero means DefaultGrabRetryDelay.
	GrabRetryDelay time.Duration
}

// Settings are the user-facing switches read by the loop on every tick.
type Settings struct {
	HorizontalScrollEnabled bool `json:"horizontal_scroll"`
	VerticalScrollEnabled   bool `json:"vertical_scroll"`

	// ClickEnabled and AverageColorMaxForClick configure click-by-color,
	// which is currently not evaluated by the loop.
	ClickEnabled            bool `json:"click_enabled"`
	AverageColorMaxForClick int  `json:"average_color_max_for_click"`
}

// DefaultSettings enables both scroll axes and leaves click-by-color off.
func DefaultSettings() Settings {
	return Settings{
		HorizontalScrollEnabled: true,
		VerticalScrollEnabled:   true,
		AverageColorMaxForClick: DefaultAverageColorMaxForClick,
	}
}

// Sensor is a swipe-detection session controller.
type Sensor struct {
	config    Config
	listeners *Registry
	intensity *diag.IntensityLog
	logger    *slog.Logger

	settingsMu sync.RWMutex
	settings   Settings
	tuning     gesture.Config

	// running and the status fields can be read from listener callbacks
	// without taking mu.
	running    atomic.Bool
	statusMu   sync.RWMutex
	resolution Resolution
	derived    gesture.Config

	// mu serializes Start, Stop and ticks, and guards the fields below.
	mu       sync.Mutex
	machine  *gesture.Machine
	previous *image.Gray
	stopCh   chan struct{}
	doneCh   chan struct{}
}

// New creates a stopped Sensor.
func New(config Config) *Sensor {
	if config.Clock == nil {
		config.Clock = timeutil.RealClock{}
	}
	if config.Gesture == (gesture.Config{}) {
		config.Gesture = gesture.DefaultConfig()
	}
	if config.GrabRetryDelay <= 0 {
		config.GrabRetryDelay = DefaultGrabRetryDelay
	}

	logger := log.With("component", "sensor")
	return &Sensor{
		config:    config,
		listeners: NewRegistry(logger),
		intensity: diag.NewIntensityLog(config.DiagnosticsCapacity),
		logger:    logger,
		settings:  DefaultSettings(),
		tuning:    config.Gesture,
		machine:   gesture.NewMachine(config.Gesture),
	}
}

// Listeners returns the listener registry.
func (s *Sensor) Listeners() *Registry {
	return s.listeners
}

// AddListener registers l.
func (s *Sensor) AddListener(l Listener) {
	s.listeners.Add(l)
}

// RemoveListener unregisters l.
func (s *Sensor) RemoveListener(l Listener) {
	s.listeners.Remove(l)
}

// ClearListeners unregisters every listener.
func (s *Sensor) ClearListeners() {
	s.listeners.Clear()
}

// Start opens the frame source and launches the detection loop. It is a
// no-op when already running. On error the session stays stopped and Start
// may be retried.
func (s *Sensor) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.running.Load() {
		return nil
	}

	s.machine.Reset()
	s.previous = nil
	s.intensity.Reset()

	src := s.config.Source
	if src == nil {
		return errors.New("sensor has no frame source")
	}
	if err := src.Open(); err != nil {
		return fmt.Errorf("open frame source: %w", err)
	}

	res, ok := SelectResolution(src.SupportedResolutions())
	if !ok {
		src.Close()
		return ErrNoResolution
	}
	if err := src.SetResolution(res); err != nil {
		src.Close()
		return fmt.Errorf("set resolution %dx%d: %w", res.Width, res.Height, err)
	}

	derived := s.tuningConfig().Derive(res.Width, res.Height)
	s.machine.SetConfig(derived)

	s.statusMu.Lock()
	s.resolution = res
	s.derived = derived
	s.statusMu.Unlock()

	s.running.Store(true)
	s.stopCh = make(chan struct{})
	s.doneCh = make(chan struct{})
	go s.run(s.stopCh, s.doneCh)

	s.logger.Info("session started", "width", res.Width, "height", res.Height)
	return nil
}

// Stop exports the diagnostic log, then ends the session if one is running.
// The export happens on every call. Stop waits for the current tick to
// finish before releasing the frame source.
func (s *Sensor) Stop() {
	s.mu.Lock()

	s.exportDiagnostics()

	if !s.running.Load() {
		s.mu.Unlock()
		return
	}

	s.running.Store(false)
	close(s.stopCh)
	if err := s.config.Source.Close(); err != nil {
		s.logger.Warn("close frame source", "error", err)
	}
	done := s.doneCh
	s.previous = nil
	s.mu.Unlock()

	<-done
	s.logger.Info("session stopped")
}

// Running reports whether a session is active.
func (s *Sensor) Running() bool {
	return s.running.Load()
}

// Resolution returns the capture size chosen by the last Start.
func (s *Sensor) Resolution() Resolution {
	s.statusMu.RLock()
	defer s.statusMu.RUnlock()
	return s.resolution
}

// Rotation returns the current display rotation.
func (s *Sensor) Rotation() orientation.Rotation {
	if s.config.Orientation == nil {
		return orientation.Rotation270
	}
	return s.config.Orientation.Rotation()
}

// GestureConfig returns the thresholds the state machine applies, with the
// frame-size dependent fields from the last Start.
func (s *Sensor) GestureConfig() gesture.Config {
	s.statusMu.RLock()
	cfg := s.derived
	s.statusMu.RUnlock()

	tuning := s.tuningConfig()
	cfg.MinFractionScreenMotion = tuning.MinFractionScreenMotion
	cfg.MinMillisecondsBetweenGestures = tuning.MinMillisecondsBetweenGestures
	return cfg
}

// Diagnostics returns a summary of the intensity log.
func (s *Sensor) Diagnostics() diag.Summary {
	return s.intensity.Summary()
}

// Settings returns a copy of the current settings.
func (s *Sensor) Settings() Settings {
	s.settingsMu.RLock()
	defer s.settingsMu.RUnlock()
	return s.settings
}

// ApplySettings replaces all settings at once.
func (s *Sensor) ApplySettings(settings Settings) {
	s.settingsMu.Lock()
	defer s.settingsMu.Unlock()
	s.settings = settings
}

// SetHorizontalScrollEnabled enables or disables horizontal swipes.
func (s *Sensor) SetHorizontalScrollEnabled(enabled bool) {
	s.settingsMu.Lock()
	defer s.settingsMu.Unlock()
	s.settings.HorizontalScrollEnabled = enabled
}

// SetVerticalScrollEnabled enables or disables vertical swipes.
func (s *Sensor) SetVerticalScrollEnabled(enabled bool) {
	s.settingsMu.Lock()
	defer s.settingsMu.Unlock()
	s.settings.VerticalScrollEnabled = enabled
}

// SetClickEnabled toggles click-by-color.
func (s *Sensor) SetClickEnabled(enabled bool) {
	s.settingsMu.Lock()
	defer s.settingsMu.Unlock()
	s.settings.ClickEnabled = enabled
}

// SetAverageColorMaxForClick sets the click-by-color threshold.
func (s *Sensor) SetAverageColorMaxForClick(v int) {
	s.settingsMu.Lock()
	defer s.settingsMu.Unlock()
	s.settings.AverageColorMaxForClick = v
}

// SetMinFractionScreenMotion sets the motion entry/exit threshold.
// Values outside (0,1) are ignored.
func (s *Sensor) SetMinFractionScreenMotion(v float64) {
	if v <= 0 || v >= 1 {
		return
	}
	s.settingsMu.Lock()
	defer s.settingsMu.Unlock()
	s.tuning.MinFractionScreenMotion = v
}

// SetMinMillisecondsBetweenGestures sets the debounce window.
// Negative values are ignored.
func (s *Sensor) SetMinMillisecondsBetweenGestures(ms int64) {
	if ms < 0 {
		return
	}
	s.settingsMu.Lock()
	defer s.settingsMu.Unlock()
	s.tuning.MinMillisecondsBetweenGestures = ms
}

func (s *Sensor) tuningConfig() gesture.Config {
	s.settingsMu.RLock()
	defer s.settingsMu.RUnlock()
	return s.tuning
}

// run is the loop goroutine. Each tick runs with s.mu held.
func (s *Sensor) run(stop <-chan struct{}, done chan<- struct{}) {
	defer close(done)

	var tick <-chan time.Time
	if s.config.FrameInterval > 0 {
		ticker := time.NewTicker(s.config.FrameInterval)
		defer ticker.Stop()
		tick = ticker.C
	}

	for {
		select {
		case <-stop:
			return
		default:
		}

		s.mu.Lock()
		if !s.running.Load() {
			s.mu.Unlock()
			return
		}
		grabbed := s.tick()
		s.mu.Unlock()

		switch {
		case tick != nil:
			select {
			case <-stop:
				return
			case <-tick:
			}
		case !grabbed:
			// A failing source returns at once; back off instead of spinning.
			retry := time.NewTimer(s.config.GrabRetryDelay)
			select {
			case <-stop:
				retry.Stop()
				return
			case <-retry.C:
			}
		}
	}
}

// tick processes one frame and reports whether a frame was grabbed.
// Callers hold s.mu.
func (s *Sensor) tick() bool {
	frame, err := s.config.Source.Grab()
	if err != nil || frame == nil {
		s.logger.Debug("grab failed", "error", err)
		return false
	}

	s.intensity.Add(meanIntensity(frame))

	if s.previous == nil {
		s.previous = frame
		return true
	}

	sample := s.config.Detector.Detect(frame, s.previous)
	s.previous = frame

	settings := s.Settings()
	s.machine.SetConfig(s.GestureConfig())

	rot := s.Rotation()
	hor := orientation.HorizontalEnabled(rot, settings.HorizontalScrollEnabled, settings.VerticalScrollEnabled)
	vert := orientation.VerticalEnabled(rot, settings.HorizontalScrollEnabled, settings.VerticalScrollEnabled)

	ev, ok := s.machine.Step(sample, timeutil.Millis(s.config.Clock), hor, vert)
	if !ok {
		return true
	}

	raw := ev.Direction
	ev.Direction = orientation.AdjustDirection(raw, rot)
	s.logger.Debug("swipe", "raw", raw.String(), "direction", ev.Direction.String(),
		"rotation", int(rot), "duration_ms", ev.DurationMs)
	s.listeners.Notify(s, ev)
	return true
}

// exportDiagnostics writes the intensity log. Callers hold s.mu.
func (s *Sensor) exportDiagnostics() {
	if s.config.DiagnosticsPath == "" {
		return
	}
	if err := s.intensity.WriteFile(s.config.DiagnosticsPath); err != nil {
		s.logger.Warn("export diagnostics", "path", s.config.DiagnosticsPath, "error", err)
		return
	}
	sum := s.intensity.Summary()
	s.logger.Info("diagnostics exported", "path", s.config.DiagnosticsPath,
		"samples", sum.Count, "mean", sum.Mean, "stddev", sum.StdDev)
}
