package sensor

import (
	"errors"
	"image"
	"sync"
	"time"

	"github.com/ayusman/airswipe/internal/gesture"
	"github.com/ayusman/airswipe/internal/orientation"
	"github.com/ayusman/airswipe/internal/timeutil"
)

var errNoFrame = errors.New("no frame")

type fakeSource struct {
	mu          sync.Mutex
	clock       *timeutil.MockClock
	step        time.Duration
	sizes       []Resolution
	frames      []*image.Gray
	next        int
	openErr     error
	opens       int
	closes      int
	resolution  Resolution
	grabsClosed int
	grabs       int
	open        bool
}

func newFakeSource(clock *timeutil.MockClock, frames int, value uint8) *fakeSource {
	src := &fakeSource{
		clock: clock,
		step:  100 * time.Millisecond,
		sizes: []Resolution{{176, 144}, {320, 240}, {352, 288}, {640, 480}},
	}
	for i := 0; i < frames; i++ {
		src.frames = append(src.frames, grayFrame(8, 6, value))
	}
	return src
}

func grayFrame(w, h int, value uint8) *image.Gray {
	img := image.NewGray(image.Rect(0, 0, w, h))
	for i := range img.Pix {
		img.Pix[i] = value
	}
	return img
}

func (f *fakeSource) Open() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.opens++
	if f.openErr != nil {
		return f.openErr
	}
	f.open = true
	return nil
}

func (f *fakeSource) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closes++
	f.open = false
	return nil
}

func (f *fakeSource) SupportedResolutions() []Resolution {
	return f.sizes
}

func (f *fakeSource) SetResolution(r Resolution) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.resolution = r
	return nil
}

func (f *fakeSource) Grab() (*image.Gray, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.grabs++
	if !f.open {
		f.grabsClosed++
		return nil, errNoFrame
	}
	if f.next >= len(f.frames) {
		return nil, errNoFrame
	}
	frame := f.frames[f.next]
	f.next++
	if f.clock != nil {
		f.clock.Advance(f.step)
	}
	return frame, nil
}

func (f *fakeSource) grabCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.grabs
}

func (f *fakeSource) counts() (opens, closes, grabsClosed int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.opens, f.closes, f.grabsClosed
}

type fakeDetector struct {
	mu      sync.Mutex
	samples []gesture.MotionSample
	calls   int
}

func (d *fakeDetector) Detect(current, previous *image.Gray) gesture.MotionSample {
	d.mu.Lock()
	defer d.mu.Unlock()
	i := d.calls
	d.calls++
	if i < len(d.samples) {
		return d.samples[i]
	}
	return gesture.MotionSample{}
}

type fixedRotation orientation.Rotation

func (r fixedRotation) Rotation() orientation.Rotation {
	return orientation.Rotation(r)
}

type received struct {
	direction  gesture.Direction
	durationMs int64
}

func collector() (Listener, <-chan received) {
	ch := make(chan received, 16)
	return ListenerFunc(func(_ *Sensor, d gesture.Direction, ms int64) {
		ch <- received{d, ms}
	}), ch
}

func moving(x, y float64) gesture.MotionSample {
	return gesture.MotionSample{FractionInMotion: 0.4, AveragePosition: gesture.Point{X: x, Y: y}}
}

func still() gesture.MotionSample {
	return gesture.MotionSample{FractionInMotion: 0.0}
}
