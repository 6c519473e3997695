package sensor

import (
	"image"

	"github.com/ayusman/airswipe/internal/gesture"
	"github.com/ayusman/airswipe/internal/orientation"
)

// Resolution selection bounds: at least MinFrameWidth wide and strictly
// smaller in area than MaxFrameWidth x MaxFrameHeight.
const (
	MinFrameWidth  = 320
	MaxFrameWidth  = 640
	MaxFrameHeight = 480
)

// Resolution is a frame size in pixels.
type Resolution struct {
	Width  int `json:"width"`
	Height int `json:"height"`
}

// Area returns Width*Height.
func (r Resolution) Area() int {
	return r.Width * r.Height
}

// FrameSource supplies grayscale frames. Implementations hold an exclusive
// camera resource between Open and Close.
type FrameSource interface {
	Open() error
	Close() error

	// SupportedResolutions lists the sizes the source can deliver.
	SupportedResolutions() []Resolution

	// SetResolution selects the size of subsequent frames.
	SetResolution(r Resolution) error

	// Grab returns the next frame. Errors are transient; the caller retries
	// on its next tick.
	Grab() (*image.Gray, error)
}

// OrientationProvider reports the current display rotation.
type OrientationProvider interface {
	Rotation() orientation.Rotation
}

// MotionDetector compares two equally sized frames. It has no contract on
// AveragePosition when FractionInMotion is near zero.
type MotionDetector interface {
	Detect(current, previous *image.Gray) gesture.MotionSample
}

// SelectResolution picks the capture size. Candidates are scanned in the
// given order and the last qualifying size wins, even if an earlier one is
// larger.
func SelectResolution(sizes []Resolution) (Resolution, bool) {
	var (
		chosen Resolution
		found  bool
	)
	for _, r := range sizes {
		if r.Width >= MinFrameWidth && r.Area() < MaxFrameWidth*MaxFrameHeight {
			chosen = r
			found = true
		}
	}
	return chosen, found
}

// meanIntensity returns the average gray level of img.
func meanIntensity(img *image.Gray) float64 {
	b := img.Bounds()
	if b.Empty() {
		return 0
	}

	var sum uint64
	for y := b.Min.Y; y < b.Max.Y; y++ {
		off := img.PixOffset(b.Min.X, y)
		for _, p := range img.Pix[off : off+b.Dx()] {
			sum += uint64(p)
		}
	}
	return float64(sum) / float64(b.Dx()*b.Dy())
}
