// Package orientation maps sensor-relative swipe directions and axis
// permissions onto the current display rotation.
package orientation

import (
	"fmt"

	"github.com/ayusman/airswipe/internal/gesture"
)

// Rotation is a display rotation in degrees.
type Rotation int

const (
	Rotation0   Rotation = 0
	Rotation90  Rotation = 90
	Rotation180 Rotation = 180
	Rotation270 Rotation = 270
)

// ParseRotation validates a rotation given in degrees.
func ParseRotation(degrees int) (Rotation, error) {
	switch r := Rotation(degrees); r {
	case Rotation0, Rotation90, Rotation180, Rotation270:
		return r, nil
	}
	return Rotation270, fmt.Errorf("unsupported rotation %d", degrees)
}

// String returns the rotation in degrees, e.g. "90°".
func (r Rotation) String() string {
	return fmt.Sprintf("%d°", int(r))
}

// offset is the number of quarter turns added to a raw direction.
func (r Rotation) offset() int {
	switch r {
	case Rotation0:
		return 3
	case Rotation90:
		return 0
	case Rotation180:
		return 1
	default:
		return 2
	}
}

// AdjustDirection maps a raw detected direction to the direction reported
// for rotation r. None is returned unchanged.
func AdjustDirection(d gesture.Direction, r Rotation) gesture.Direction {
	if !d.Valid() {
		return d
	}
	return gesture.Direction((int(d) + r.offset()) % 4)
}

// portrait reports whether the device axes are swapped relative to the
// sensor axes for rotation r.
func portrait(r Rotation) bool {
	return r == Rotation0 || r == Rotation180
}

// HorizontalEnabled reports whether horizontal sensor motion may produce a
// swipe, given the user's horizontal and vertical scroll settings.
func HorizontalEnabled(r Rotation, horizontalScroll, verticalScroll bool) bool {
	if portrait(r) {
		return verticalScroll
	}
	return horizontalScroll
}

// VerticalEnabled reports whether vertical sensor motion may produce a swipe.
func VerticalEnabled(r Rotation, horizontalScroll, verticalScroll bool) bool {
	if portrait(r) {
		return horizontalScroll
	}
	return verticalScroll
}
