package gesture

import "math"

// State is the mutable state carried across steps.
// StartPosition is non-nil exactly when InGesture is true.
type State struct {
	InGesture        bool
	StartPosition    *Point
	PreviousPosition Point
	StartTime        int64
	EndTime          int64
	LastClickStart   int64
}

// Machine is the per-frame swipe state machine. It is not safe for
// concurrent use; the sensor loop owns it.
type Machine struct {
	cfg   Config
	state State
}

// NewMachine creates a Machine in the idle state.
func NewMachine(cfg Config) *Machine {
	return &Machine{cfg: cfg}
}

// Config returns the thresholds in use.
func (m *Machine) Config() Config {
	return m.cfg
}

// SetConfig replaces the thresholds. State is kept.
func (m *Machine) SetConfig(cfg Config) {
	m.cfg = cfg
}

// Reset returns the machine to its initial idle state.
func (m *Machine) Reset() {
	m.state = State{}
}

// State returns a copy of the current state.
func (m *Machine) State() State {
	s := m.state
	if s.StartPosition != nil {
		p := *s.StartPosition
		s.StartPosition = &p
	}
	return s
}

// MarkClick records the start time of a click. Gesture starts are debounced
// against it the same way they are against the end of the last gesture.
func (m *Machine) MarkClick(t int64) {
	m.state.LastClickStart = t
}

// Step consumes one sample observed at time t (milliseconds). horEnabled and
// vertEnabled are the orientation-adjusted axis permissions. It returns an
// event and true when a gesture ends with a recognizable direction.
func (m *Machine) Step(sample MotionSample, t int64, horEnabled, vertEnabled bool) (Event, bool) {
	var (
		ev Event
		ok bool
	)

	switch {
	case !m.state.InGesture && sample.FractionInMotion > m.cfg.MinFractionScreenMotion:
		if m.debounced(t) {
			start := sample.AveragePosition
			m.state.InGesture = true
			m.state.StartPosition = &start
			m.state.StartTime = t
		}

	case m.state.InGesture && sample.FractionInMotion < m.cfg.MinFractionScreenMotion:
		dir := m.direction(horEnabled, vertEnabled)
		m.state.InGesture = false
		m.state.StartPosition = nil
		m.state.EndTime = t
		if dir != None {
			ev = Event{Direction: dir, DurationMs: m.state.EndTime - m.state.StartTime}
			ok = true
		}
	}

	m.state.PreviousPosition = sample.AveragePosition
	return ev, ok
}

func (m *Machine) debounced(t int64) bool {
	window := m.cfg.MinMillisecondsBetweenGestures
	return t-m.state.EndTime >= window && t-m.state.LastClickStart >= window
}

// direction resolves the net displacement between the gesture start and the
// last centroid seen while the gesture was active.
func (m *Machine) direction(horEnabled, vertEnabled bool) Direction {
	start := m.state.StartPosition
	if start == nil {
		return None
	}
	prev := m.state.PreviousPosition
	dir := None

	if horEnabled {
		switch {
		case start.X-prev.X > m.cfg.MinDirectionalMotionX:
			dir = Right
		case prev.X-start.X > m.cfg.MinDirectionalMotionX:
			dir = Left
		}
	}

	if vertEnabled {
		vertical := math.Abs(prev.Y - start.Y)
		horizontal := math.Abs(prev.X - start.X)
		if vertical > m.cfg.MinDirectionalMotionY &&
			(dir == None || vertical*m.cfg.WidthToHeightGestureRatio > horizontal) {
			if prev.Y < start.Y {
				dir = Up
			} else {
				dir = Down
			}
		}
	}

	return dir
}
