package app

import (
	"context"
	"image"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/ayusman/airswipe/internal/gesture"
	"github.com/ayusman/airswipe/internal/plugin"
	"github.com/ayusman/airswipe/internal/store"
	"github.com/ayusman/airswipe/internal/timeutil"
)

func newTestStore(t *testing.T) *store.Store {
	t.Helper()
	s, err := store.New(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

// scriptedDetector replays samples, one per Detect call, then reports no
// motion. Each call advances the clock by one frame. While gate is open
// (non-nil and not closed) the samples are held back.
type scriptedDetector struct {
	mu      sync.Mutex
	clock   *timeutil.MockClock
	step    time.Duration
	samples []gesture.MotionSample
	gate    chan struct{}
	calls   int
}

func (d *scriptedDetector) release() {
	close(d.gate)
}

func (d *scriptedDetector) Detect(current, previous *image.Gray) gesture.MotionSample {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.clock.Advance(d.step)
	d.calls++
	if d.gate != nil {
		select {
		case <-d.gate:
		default:
			return gesture.MotionSample{}
		}
	}
	if len(d.samples) == 0 {
		return gesture.MotionSample{}
	}
	s := d.samples[0]
	d.samples = d.samples[1:]
	return s
}

// swipeRight is a centroid moving 100px towards smaller x in a 320x240
// frame, which the state machine reports as Right.
func swipeRight() []gesture.MotionSample {
	return []gesture.MotionSample{
		{FractionInMotion: 0},
		{FractionInMotion: 0.3, AveragePosition: gesture.Point{X: 200, Y: 120}},
		{FractionInMotion: 0.3, AveragePosition: gesture.Point{X: 150, Y: 120}},
		{FractionInMotion: 0.3, AveragePosition: gesture.Point{X: 100, Y: 120}},
		{FractionInMotion: 0},
	}
}

func grayFrame(w, h int) *image.Gray {
	return image.NewGray(image.Rect(0, 0, w, h))
}

type fakeRunner struct {
	mu       sync.Mutex
	requests []plugin.Request
	block    chan struct{}
	fail     bool
}

func (r *fakeRunner) Execute(ctx context.Context, p *plugin.Plugin, req *plugin.Request) (*plugin.Response, error) {
	if r.block != nil {
		select {
		case <-r.block:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.requests = append(r.requests, *req)
	if r.fail {
		return &plugin.Response{Success: false, Error: "nope"}, nil
	}
	return &plugin.Response{Success: true}, nil
}

func (r *fakeRunner) Requests() []plugin.Request {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]plugin.Request(nil), r.requests...)
}

type fakePlugins map[string]*plugin.Plugin

func (f fakePlugins) Get(name string) (*plugin.Plugin, error) {
	p, ok := f[name]
	if !ok {
		return nil, plugin.ErrPluginNotFound
	}
	return p, nil
}

type fakeNotifier struct {
	mu      sync.Mutex
	enabled []bool
	swipes  []string
}

func (n *fakeNotifier) SetEnabled(enabled bool) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.enabled = append(n.enabled, enabled)
}

func (n *fakeNotifier) SetLastSwipe(direction string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.swipes = append(n.swipes, direction)
}

func (n *fakeNotifier) snapshot() ([]bool, []string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]bool(nil), n.enabled...), append([]string(nil), n.swipes...)
}
