package gesture

// Default tuning values.
const (
	DefaultMinFractionScreenMotion        = 0.10
	DefaultMinMillisecondsBetweenGestures = 500
)

// Config holds the thresholds read by the Machine on every step.
type Config struct {
	// MinFractionScreenMotion is the entry and exit threshold for FractionInMotion.
	MinFractionScreenMotion float64

	// MinMillisecondsBetweenGestures is the debounce window.
	MinMillisecondsBetweenGestures int64

	// MinDirectionalMotionX and MinDirectionalMotionY are the minimum net
	// centroid displacement, in pixels, that counts as a swipe.
	MinDirectionalMotionX float64
	MinDirectionalMotionY float64

	// WidthToHeightGestureRatio scales vertical displacement before it is
	// compared to horizontal displacement.
	WidthToHeightGestureRatio float64
}

// DefaultConfig returns the default thresholds. The directional fields stay
// zero until Derive is called with a frame size.
func DefaultConfig() Config {
	return Config{
		MinFractionScreenMotion:        DefaultMinFractionScreenMotion,
		MinMillisecondsBetweenGestures: DefaultMinMillisecondsBetweenGestures,
	}
}

// Derive returns a copy of c with the frame-size dependent fields computed
// for a width x height frame. Non-positive sizes leave c unchanged.
func (c Config) Derive(width, height int) Config {
	if width <= 0 || height <= 0 {
		return c
	}
	c.MinDirectionalMotionX = float64(width / 5)
	c.MinDirectionalMotionY = float64(height / 6)
	c.WidthToHeightGestureRatio = float64(width) / float64(height) * 6 / 5
	return c
}
