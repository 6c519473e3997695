package capture

import (
	"image"

	"gocv.io/x/gocv"

	"github.com/ayusman/airswipe/internal/gesture"
)

// Motion detection constants
const (
	// GaussianBlurSize is the kernel size for Gaussian blur (21x21)
	GaussianBlurSize = 21
	// DiffThreshold is the binary threshold for difference detection
	DiffThreshold = 25
)

// MotionDetector implements sensor.MotionDetector by frame differencing.
//
// Algorithm:
// 1. Apply Gaussian blur to both frames to reduce noise
// 2. Calculate the absolute difference
// 3. Threshold the difference (threshold=25)
// 4. FractionInMotion = non-zero pixels / total pixels
// 5. AveragePosition = centroid of the thresholded mask (m10/m00, m01/m00)
type MotionDetector struct {
	blurSize      int
	diffThreshold float32
}

// NewMotionDetector creates a MotionDetector with the default kernel and threshold.
func NewMotionDetector() *MotionDetector {
	return &MotionDetector{
		blurSize:      GaussianBlurSize,
		diffThreshold: DiffThreshold,
	}
}

// SetDiffThreshold sets the per-pixel intensity difference counted as change.
// Values outside (0,255) are ignored.
func (m *MotionDetector) SetDiffThreshold(threshold float32) {
	if threshold <= 0 || threshold >= 255 {
		return
	}
	m.diffThreshold = threshold
}

// Detect compares current against previous. Missing, empty or differently
// sized frames yield a zero sample.
func (m *MotionDetector) Detect(current, previous *image.Gray) gesture.MotionSample {
	if current == nil || previous == nil {
		return gesture.MotionSample{}
	}
	if current.Bounds().Empty() || current.Bounds().Size() != previous.Bounds().Size() {
		return gesture.MotionSample{}
	}

	cur, err := gocv.ImageGrayToMatGray(current)
	if err != nil {
		return gesture.MotionSample{}
	}
	defer cur.Close()

	prev, err := gocv.ImageGrayToMatGray(previous)
	if err != nil {
		return gesture.MotionSample{}
	}
	defer prev.Close()

	kernel := image.Point{X: m.blurSize, Y: m.blurSize}
	gocv.GaussianBlur(cur, &cur, kernel, 0, 0, gocv.BorderDefault)
	gocv.GaussianBlur(prev, &prev, kernel, 0, 0, gocv.BorderDefault)

	diff := gocv.NewMat()
	defer diff.Close()
	gocv.AbsDiff(cur, prev, &diff)

	thresh := gocv.NewMat()
	defer thresh.Close()
	gocv.Threshold(diff, &thresh, m.diffThreshold, 255, gocv.ThresholdBinary)

	total := thresh.Rows() * thresh.Cols()
	nonZero := gocv.CountNonZero(thresh)
	if total == 0 || nonZero == 0 {
		return gesture.MotionSample{}
	}

	sample := gesture.MotionSample{FractionInMotion: float64(nonZero) / float64(total)}

	moments := gocv.Moments(thresh, true)
	if m00 := moments["m00"]; m00 > 0 {
		sample.AveragePosition = gesture.Point{
			X: moments["m10"] / m00,
			Y: moments["m01"] / m00,
		}
	}
	return sample
}
