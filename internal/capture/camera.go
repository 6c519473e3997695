// Package capture provides camera capture and frame-differencing motion
// detection using GoCV (OpenCV).
package capture

import (
	"errors"
	"fmt"
	"image"
	"sync"

	"gocv.io/x/gocv"

	"github.com/ayusman/airswipe/internal/sensor"
)

// DefaultFPS is the capture rate requested from the device.
const DefaultFPS = 30

// ErrCameraNotOpen is returned when trying to read from a camera that is not open.
var ErrCameraNotOpen = errors.New("camera is not open")

// ProbeResolutions are the sizes tried when enumerating what a device
// supports, in ascending order. OpenCV has no portable enumeration call, so
// each size is requested and read back.
var ProbeResolutions = []sensor.Resolution{
	{Width: 160, Height: 120},
	{Width: 176, Height: 144},
	{Width: 320, Height: 240},
	{Width: 352, Height: 288},
	{Width: 640, Height: 480},
	{Width: 800, Height: 600},
	{Width: 1280, Height: 720},
}

// Camera is a sensor.FrameSource backed by a GoCV video capture device.
type Camera struct {
	deviceID int
	capture  *gocv.VideoCapture
	frame    gocv.Mat
	gray     gocv.Mat
	mu       sync.Mutex
	running  bool
	fps      int
}

// NewCamera creates a Camera for the given device ID.
func NewCamera(deviceID int) *Camera {
	return &Camera{
		deviceID: deviceID,
		fps:      DefaultFPS,
	}
}

// Open opens the device. Opening an open camera is a no-op.
func (c *Camera) Open() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.running {
		return nil
	}

	capture, err := gocv.OpenVideoCapture(c.deviceID)
	if err != nil {
		return fmt.Errorf("open camera %d: %w", c.deviceID, err)
	}
	if !capture.IsOpened() {
		capture.Close()
		return fmt.Errorf("open camera %d: device unavailable", c.deviceID)
	}

	capture.Set(gocv.VideoCaptureFPS, float64(c.fps))

	c.capture = capture
	c.frame = gocv.NewMat()
	c.gray = gocv.NewMat()
	c.running = true

	return nil
}

// Close closes the camera and releases resources.
func (c *Camera) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.running || c.capture == nil {
		c.running = false
		return nil
	}

	err := c.capture.Close()
	c.frame.Close()
	c.gray.Close()
	c.capture = nil
	c.running = false

	return err
}

// SupportedResolutions returns the probe sizes the device accepted, in
// ProbeResolutions order.
func (c *Camera) SupportedResolutions() []sensor.Resolution {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.running {
		return nil
	}

	var sizes []sensor.Resolution
	for _, r := range ProbeResolutions {
		if c.apply(r) == r {
			sizes = append(sizes, r)
		}
	}
	return sizes
}

// SetResolution requests a capture size and verifies the device honored it.
func (c *Camera) SetResolution(r sensor.Resolution) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.running {
		return ErrCameraNotOpen
	}
	if got := c.apply(r); got != r {
		return fmt.Errorf("camera delivered %dx%d instead of %dx%d", got.Width, got.Height, r.Width, r.Height)
	}
	return nil
}

func (c *Camera) apply(r sensor.Resolution) sensor.Resolution {
	c.capture.Set(gocv.VideoCaptureFrameWidth, float64(r.Width))
	c.capture.Set(gocv.VideoCaptureFrameHeight, float64(r.Height))
	return sensor.Resolution{
		Width:  int(c.capture.Get(gocv.VideoCaptureFrameWidth)),
		Height: int(c.capture.Get(gocv.VideoCaptureFrameHeight)),
	}
}

// Grab reads the next frame and returns it as an 8-bit grayscale image.
func (c *Camera) Grab() (*image.Gray, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.running || c.capture == nil {
		return nil, ErrCameraNotOpen
	}

	if ok := c.capture.Read(&c.frame); !ok {
		return nil, errors.New("failed to read frame from camera")
	}
	if c.frame.Empty() {
		return nil, errors.New("captured frame is empty")
	}

	return matToGray(c.frame, &c.gray)
}

// matToGray converts src to a grayscale image, using scratch for the
// color conversion.
func matToGray(src gocv.Mat, scratch *gocv.Mat) (*image.Gray, error) {
	mat := src
	if src.Channels() > 1 {
		gocv.CvtColor(src, scratch, gocv.ColorBGRToGray)
		mat = *scratch
	}

	img, err := mat.ToImage()
	if err != nil {
		return nil, fmt.Errorf("convert frame: %w", err)
	}
	gray, ok := img.(*image.Gray)
	if !ok {
		return nil, fmt.Errorf("convert frame: unexpected image type %T", img)
	}
	return gray, nil
}

// SetFPS sets the frames per second for capture.
// Values less than or equal to 0 are ignored.
func (c *Camera) SetFPS(fps int) {
	if fps <= 0 {
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	c.fps = fps

	if c.capture != nil {
		c.capture.Set(gocv.VideoCaptureFPS, float64(fps))
	}
}

// FPS returns the current frames per second setting.
func (c *Camera) FPS() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.fps
}

// IsOpen returns true if the camera is currently open.
func (c *Camera) IsOpen() bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.running
}
