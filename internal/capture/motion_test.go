package capture

import (
	"image"
	"image/color"
	"math"
	"testing"
)

func filledFrame(w, h int, value uint8) *image.Gray {
	img := image.NewGray(image.Rect(0, 0, w, h))
	for i := range img.Pix {
		img.Pix[i] = value
	}
	return img
}

// withSquare returns a copy of base with a white square at (x0,y0) of size side.
func withSquare(base *image.Gray, x0, y0, side int) *image.Gray {
	img := image.NewGray(base.Bounds())
	copy(img.Pix, base.Pix)
	for y := y0; y < y0+side; y++ {
		for x := x0; x < x0+side; x++ {
			img.SetGray(x, y, color.Gray{Y: 255})
		}
	}
	return img
}

func TestMotionDetector_InvalidInput(t *testing.T) {
	md := NewMotionDetector()
	a := filledFrame(320, 240, 0)
	b := filledFrame(352, 288, 0)

	tests := []struct {
		name     string
		cur, prv *image.Gray
	}{
		{"nil current", nil, a},
		{"nil previous", a, nil},
		{"size mismatch", a, b},
		{"empty frames", image.NewGray(image.Rect(0, 0, 0, 0)), image.NewGray(image.Rect(0, 0, 0, 0))},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := md.Detect(tt.cur, tt.prv)
			if s.FractionInMotion != 0 {
				t.Errorf("FractionInMotion = %f, want 0", s.FractionInMotion)
			}
		})
	}
}

func TestMotionDetector_NoMotion(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping test that requires GoCV Mat creation")
	}

	md := NewMotionDetector()
	frame1 := filledFrame(320, 240, 40)
	frame2 := filledFrame(320, 240, 40)

	s := md.Detect(frame2, frame1)
	if s.FractionInMotion != 0 {
		t.Errorf("identical frames should not detect motion, fraction = %f", s.FractionInMotion)
	}
}

func TestMotionDetector_WithMotion(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping test that requires GoCV Mat creation")
	}

	md := NewMotionDetector()
	black := filledFrame(320, 240, 0)
	white := filledFrame(320, 240, 255)

	s := md.Detect(white, black)
	if s.FractionInMotion < 0.9 {
		t.Errorf("fraction = %f, expected > 0.9 for black to white transition", s.FractionInMotion)
	}
	if math.Abs(s.AveragePosition.X-160) > 2 || math.Abs(s.AveragePosition.Y-120) > 2 {
		t.Errorf("centroid = %+v, expected near the frame center", s.AveragePosition)
	}
}

func TestMotionDetector_Centroid(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping test that requires GoCV Mat creation")
	}

	md := NewMotionDetector()
	background := filledFrame(320, 240, 0)
	moved := withSquare(background, 200, 100, 80) // center (240, 140)

	s := md.Detect(moved, background)
	if s.FractionInMotion <= 0 || s.FractionInMotion > 0.2 {
		t.Errorf("fraction = %f, expected a small positive value", s.FractionInMotion)
	}
	if math.Abs(s.AveragePosition.X-240) > 5 || math.Abs(s.AveragePosition.Y-140) > 5 {
		t.Errorf("centroid = %+v, want near (240, 140)", s.AveragePosition)
	}
}

func TestMotionDetector_SetDiffThreshold(t *testing.T) {
	md := NewMotionDetector()

	md.SetDiffThreshold(40)
	if md.diffThreshold != 40 {
		t.Errorf("diffThreshold = %f, want 40", md.diffThreshold)
	}

	md.SetDiffThreshold(-1)
	md.SetDiffThreshold(300)
	if md.diffThreshold != 40 {
		t.Errorf("out of range thresholds should be ignored, got %f", md.diffThreshold)
	}
}
