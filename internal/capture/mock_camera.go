package capture

import (
	"fmt"
	"image"
	"sync"

	"github.com/ayusman/airswipe/internal/sensor"
)

// MockSource plays back pre-recorded grayscale frames for testing.
type MockSource struct {
	frames     []*image.Gray
	sizes      []sensor.Resolution
	resolution sensor.Resolution
	index      int
	loop       bool
	openErr    error
	mu         sync.Mutex
	running    bool
}

// NewMockSource creates a MockSource. It advertises the size of the first
// frame as its only supported resolution.
func NewMockSource(frames []*image.Gray, loop bool) *MockSource {
	m := &MockSource{frames: frames, loop: loop}
	if len(frames) > 0 {
		b := frames[0].Bounds()
		m.sizes = []sensor.Resolution{{Width: b.Dx(), Height: b.Dy()}}
	}
	return m
}

func (c *MockSource) Open() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.openErr != nil {
		return c.openErr
	}
	c.running = true
	c.index = 0
	return nil
}

func (c *MockSource) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.running = false
	return nil
}

func (c *MockSource) SupportedResolutions() []sensor.Resolution {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]sensor.Resolution, len(c.sizes))
	copy(out, c.sizes)
	return out
}

func (c *MockSource) SetResolution(r sensor.Resolution) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.resolution = r
	return nil
}

func (c *MockSource) Grab() (*image.Gray, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.running {
		return nil, ErrCameraNotOpen
	}

	if len(c.frames) == 0 {
		return nil, fmt.Errorf("no frames available")
	}

	if c.index >= len(c.frames) {
		if c.loop {
			c.index = 0
		} else {
			return nil, fmt.Errorf("no more frames")
		}
	}

	frame := c.frames[c.index]
	c.index++

	return frame, nil
}

// SetResolutions replaces the advertised resolutions.
func (c *MockSource) SetResolutions(sizes []sensor.Resolution) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.sizes = sizes
}

// SetOpenError makes subsequent Open calls fail with err.
func (c *MockSource) SetOpenError(err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.openErr = err
}

// Resolution returns the size last passed to SetResolution.
func (c *MockSource) Resolution() sensor.Resolution {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.resolution
}

// IsOpen returns true between Open and Close.
func (c *MockSource) IsOpen() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.running
}

// Reset restarts playback from the beginning
func (c *MockSource) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.index = 0
}
