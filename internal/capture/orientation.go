package capture

import (
	"sync/atomic"

	"github.com/ayusman/airswipe/internal/orientation"
)

// FixedOrientation reports a rotation set by configuration rather than
// queried from a display. It is safe for concurrent use.
type FixedOrientation struct {
	degrees atomic.Int32
}

// NewFixedOrientation returns a FixedOrientation reporting r.
func NewFixedOrientation(r orientation.Rotation) *FixedOrientation {
	o := &FixedOrientation{}
	o.Set(r)
	return o
}

// Set changes the reported rotation.
func (o *FixedOrientation) Set(r orientation.Rotation) {
	o.degrees.Store(int32(r))
}

// Rotation returns the configured rotation.
func (o *FixedOrientation) Rotation() orientation.Rotation {
	return orientation.Rotation(o.degrees.Load())
}
