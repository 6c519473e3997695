// Package gesture turns a stream of per-frame motion samples into
// directional swipe events.
package gesture

import (
	"fmt"
	"strings"
)

// Direction is a swipe direction. The numeric values are fixed and are used
// by the rotation arithmetic in package orientation.
type Direction int

const (
	Left Direction = iota
	Down
	Right
	Up
	None
)

var directionNames = [...]string{
	Left:  "left",
	Down:  "down",
	Right: "right",
	Up:    "up",
	None:  "none",
}

// String returns the lower-case name of the direction.
func (d Direction) String() string {
	if d < Left || d > None {
		return fmt.Sprintf("direction(%d)", int(d))
	}
	return directionNames[d]
}

// Valid reports whether d is one of the four deliverable directions.
func (d Direction) Valid() bool {
	return d >= Left && d <= Up
}

// ParseDirection parses a direction name, case-insensitively.
func ParseDirection(s string) (Direction, error) {
	name := strings.ToLower(strings.TrimSpace(s))
	for i, n := range directionNames {
		if n == name {
			return Direction(i), nil
		}
	}
	return None, fmt.Errorf("unknown direction %q", s)
}

// Point is a position in frame pixel coordinates.
type Point struct {
	X float64
	Y float64
}

// MotionSample is the per-frame output of a motion detector.
type MotionSample struct {
	// FractionInMotion is the fraction of pixels that changed, in [0,1].
	FractionInMotion float64
	// AveragePosition is the centroid of the changed pixels.
	AveragePosition Point
}

// Event is a completed swipe.
type Event struct {
	Direction  Direction
	DurationMs int64
}
