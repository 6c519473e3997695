package sensor

import (
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ayusman/airswipe/internal/gesture"
	"github.com/ayusman/airswipe/internal/orientation"
	"github.com/ayusman/airswipe/internal/timeutil"
)

type harness struct {
	sensor   *Sensor
	source   *fakeSource
	detector *fakeDetector
	diagPath string
}

func newHarness(t *testing.T, rot orientation.Rotation, samples ...gesture.MotionSample) *harness {
	t.Helper()

	clock := timeutil.NewMockClock(time.UnixMilli(1_000_000))
	src := newFakeSource(clock, len(samples)+1, 50)
	det := &fakeDetector{samples: samples}
	diagPath := filepath.Join(t.TempDir(), "intensity.txt")

	s := New(Config{
		Source:          src,
		Orientation:     fixedRotation(rot),
		Detector:        det,
		Clock:           clock,
		DiagnosticsPath: diagPath,
		FrameInterval:   time.Millisecond,
	})
	t.Cleanup(s.Stop)

	return &harness{sensor: s, source: src, detector: det, diagPath: diagPath}
}

func rightSwipe() []gesture.MotionSample {
	return []gesture.MotionSample{moving(300, 140), moving(200, 140), moving(100, 140), still()}
}

func waitEvent(t *testing.T, ch <-chan received) received {
	t.Helper()
	select {
	case ev := <-ch:
		return ev
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for gesture")
		return received{}
	}
}

func TestSensor_SwipeIsAdjustedForRotation(t *testing.T) {
	tests := []struct {
		rotation orientation.Rotation
		want     gesture.Direction
	}{
		{orientation.Rotation90, gesture.Right},
		{orientation.Rotation270, gesture.Left},
		{orientation.Rotation0, gesture.Down},
		{orientation.Rotation180, gesture.Up},
	}

	for _, tt := range tests {
		t.Run(tt.rotation.String(), func(t *testing.T) {
			h := newHarness(t, tt.rotation, rightSwipe()...)
			// At 0° and 180° the horizontal check reads the vertical flag.
			l, ch := collector()
			h.sensor.AddListener(l)

			require.NoError(t, h.sensor.Start())
			ev := waitEvent(t, ch)

			assert.Equal(t, tt.want, ev.direction)
			assert.Equal(t, int64(300), ev.durationMs)
		})
	}
}

func TestSensor_StartDerivesConfigFromResolution(t *testing.T) {
	h := newHarness(t, orientation.Rotation90)
	require.NoError(t, h.sensor.Start())

	assert.True(t, h.sensor.Running())
	assert.Equal(t, Resolution{352, 288}, h.sensor.Resolution())
	assert.Equal(t, Resolution{352, 288}, h.source.resolution)

	cfg := h.sensor.GestureConfig()
	assert.Equal(t, 70.0, cfg.MinDirectionalMotionX)
	assert.Equal(t, 48.0, cfg.MinDirectionalMotionY)
	assert.InDelta(t, 352.0/288.0*1.2, cfg.WidthToHeightGestureRatio, 1e-9)
	assert.Equal(t, gesture.DefaultMinFractionScreenMotion, cfg.MinFractionScreenMotion)
}

func TestSensor_StartIsIdempotent(t *testing.T) {
	h := newHarness(t, orientation.Rotation90)
	require.NoError(t, h.sensor.Start())
	require.NoError(t, h.sensor.Start())

	opens, _, _ := h.source.counts()
	assert.Equal(t, 1, opens)
}

func TestSensor_StartFailsWhenSourceUnavailable(t *testing.T) {
	h := newHarness(t, orientation.Rotation90)
	h.source.openErr = errors.New("camera busy")

	err := h.sensor.Start()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "camera busy")
	assert.False(t, h.sensor.Running())

	// retry succeeds once the camera is free
	h.source.openErr = nil
	require.NoError(t, h.sensor.Start())
	assert.True(t, h.sensor.Running())
}

func TestSensor_StartFailsWithoutUsableResolution(t *testing.T) {
	h := newHarness(t, orientation.Rotation90)
	h.source.sizes = []Resolution{{640, 480}, {160, 120}}

	err := h.sensor.Start()
	assert.ErrorIs(t, err, ErrNoResolution)
	assert.False(t, h.sensor.Running())

	_, closes, _ := h.source.counts()
	assert.Equal(t, 1, closes, "source is released after a failed start")
}

func TestSensor_StopTwiceFlushesBothTimes(t *testing.T) {
	h := newHarness(t, orientation.Rotation90, rightSwipe()...)
	l, ch := collector()
	h.sensor.AddListener(l)

	require.NoError(t, h.sensor.Start())
	waitEvent(t, ch)

	h.sensor.Stop()
	assert.False(t, h.sensor.Running())

	data, err := os.ReadFile(h.diagPath)
	require.NoError(t, err)
	assert.Equal(t, "50,\n50,\n50,\n50,\n50,\n", string(data))

	require.NoError(t, os.Remove(h.diagPath))
	assert.NotPanics(t, h.sensor.Stop)

	data, err = os.ReadFile(h.diagPath)
	require.NoError(t, err, "second stop rewrites the diagnostics file")
	assert.Equal(t, "50,\n50,\n50,\n50,\n50,\n", string(data))

	_, closes, _ := h.source.counts()
	assert.Equal(t, 1, closes, "camera is released once")
}

func TestSensor_StopBeforeStartStillFlushes(t *testing.T) {
	h := newHarness(t, orientation.Rotation90)
	h.sensor.Stop()

	_, err := os.Stat(h.diagPath)
	assert.NoError(t, err)

	_, closes, _ := h.source.counts()
	assert.Equal(t, 0, closes)
}

func TestSensor_StopWithUnwritableDiagnostics(t *testing.T) {
	h := newHarness(t, orientation.Rotation90)
	require.NoError(t, os.Mkdir(h.diagPath, 0o755))

	require.NoError(t, h.sensor.Start())
	assert.NotPanics(t, h.sensor.Stop)
	assert.False(t, h.sensor.Running())
}

func TestSensor_NoGrabAfterStop(t *testing.T) {
	h := newHarness(t, orientation.Rotation90)
	require.NoError(t, h.sensor.Start())
	h.sensor.Stop()

	time.Sleep(20 * time.Millisecond)
	_, _, grabsClosed := h.source.counts()
	assert.Equal(t, 0, grabsClosed, "the loop must not grab from a released source")
}

func TestSensor_FailingSourceBacksOff(t *testing.T) {
	// No frames: every grab fails immediately.
	src := newFakeSource(nil, 0, 0)
	s := New(Config{
		Source:         src,
		Orientation:    fixedRotation(orientation.Rotation90),
		Detector:       &fakeDetector{},
		GrabRetryDelay: 10 * time.Millisecond,
	})
	t.Cleanup(s.Stop)

	require.NoError(t, s.Start())
	time.Sleep(100 * time.Millisecond)
	s.Stop()

	grabs := src.grabCount()
	assert.Positive(t, grabs, "the loop should keep retrying")
	assert.LessOrEqual(t, grabs, 20, "failed grabs should be spaced by the retry delay")
}

func TestSensor_DiagnosticsSummary(t *testing.T) {
	h := newHarness(t, orientation.Rotation90, rightSwipe()...)
	l, ch := collector()
	h.sensor.AddListener(l)

	require.NoError(t, h.sensor.Start())
	waitEvent(t, ch)
	h.sensor.Stop()

	sum := h.sensor.Diagnostics()
	assert.Equal(t, 5, sum.Count)
	assert.Equal(t, 50.0, sum.Mean)
}

func TestSensor_DisabledAxisSuppressesSwipe(t *testing.T) {
	// Rotation 90 reads the horizontal flag for horizontal motion.
	h := newHarness(t, orientation.Rotation90, rightSwipe()...)
	h.sensor.SetHorizontalScrollEnabled(false)

	var mu sync.Mutex
	var got []gesture.Direction
	h.sensor.AddListener(ListenerFunc(func(_ *Sensor, d gesture.Direction, _ int64) {
		mu.Lock()
		got = append(got, d)
		mu.Unlock()
	}))

	require.NoError(t, h.sensor.Start())
	require.Eventually(t, func() bool {
		h.detector.mu.Lock()
		defer h.detector.mu.Unlock()
		return h.detector.calls >= len(rightSwipe())
	}, 2*time.Second, 5*time.Millisecond)
	h.sensor.Stop()

	mu.Lock()
	defer mu.Unlock()
	assert.Empty(t, got)
}

func TestSensor_ListenerCanReadStatus(t *testing.T) {
	h := newHarness(t, orientation.Rotation90, rightSwipe()...)

	type status struct {
		running bool
		res     Resolution
		rot     orientation.Rotation
	}
	ch := make(chan status, 1)
	h.sensor.AddListener(ListenerFunc(func(s *Sensor, _ gesture.Direction, _ int64) {
		ch <- status{s.Running(), s.Resolution(), s.Rotation()}
	}))

	require.NoError(t, h.sensor.Start())
	select {
	case st := <-ch:
		assert.True(t, st.running)
		assert.Equal(t, Resolution{352, 288}, st.res)
		assert.Equal(t, orientation.Rotation90, st.rot)
	case <-time.After(2 * time.Second):
		t.Fatal("listener was not called")
	}
}

func TestSensor_Settings(t *testing.T) {
	s := New(Config{})

	assert.Equal(t, DefaultSettings(), s.Settings())

	s.SetHorizontalScrollEnabled(false)
	s.SetVerticalScrollEnabled(false)
	s.SetClickEnabled(true)
	s.SetAverageColorMaxForClick(42)

	assert.Equal(t, Settings{
		HorizontalScrollEnabled: false,
		VerticalScrollEnabled:   false,
		ClickEnabled:            true,
		AverageColorMaxForClick: 42,
	}, s.Settings())

	s.ApplySettings(DefaultSettings())
	assert.Equal(t, DefaultSettings(), s.Settings())
}

func TestSensor_TuningSetters(t *testing.T) {
	s := New(Config{})

	s.SetMinFractionScreenMotion(0.2)
	s.SetMinFractionScreenMotion(1.5) // ignored
	s.SetMinMillisecondsBetweenGestures(750)
	s.SetMinMillisecondsBetweenGestures(-1) // ignored

	cfg := s.GestureConfig()
	assert.Equal(t, 0.2, cfg.MinFractionScreenMotion)
	assert.Equal(t, int64(750), cfg.MinMillisecondsBetweenGestures)
}

func TestSensor_StartWithoutSource(t *testing.T) {
	s := New(Config{})
	assert.Error(t, s.Start())
	assert.False(t, s.Running())
}
