package api

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"sync"
	"testing"

	"github.com/ayusman/airswipe/internal/plugin"
	"github.com/ayusman/airswipe/internal/sensor"
	"github.com/ayusman/airswipe/internal/store"
)

// newTestStore creates a new Store with a temporary database for testing.
func newTestStore(t *testing.T) *store.Store {
	t.Helper()

	s, err := store.New(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}
	t.Cleanup(func() {
		s.Close()
	})

	return s
}

// fakeController records calls made by the session and settings handlers.
type fakeController struct {
	mu        sync.Mutex
	running   bool
	settings  sensor.Settings
	startErr  error
	saveErr   error
	starts    int
	stops     int
	resWidth  int
	resHeight int
}

func newFakeController() *fakeController {
	return &fakeController{settings: sensor.DefaultSettings()}
}

func (c *fakeController) StartSession() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.starts++
	if c.startErr != nil {
		return c.startErr
	}
	c.running = true
	c.resWidth, c.resHeight = 352, 288
	return nil
}

func (c *fakeController) StopSession() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.stops++
	c.running = false
}

func (c *fakeController) Status() Status {
	c.mu.Lock()
	defer c.mu.Unlock()
	return Status{
		Running:  c.running,
		Width:    c.resWidth,
		Height:   c.resHeight,
		Rotation: 90,
		Settings: c.settings,
	}
}

func (c *fakeController) Settings() sensor.Settings {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.settings
}

func (c *fakeController) ModifySettings(fn func(*sensor.Settings)) (sensor.Settings, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.saveErr != nil {
		return c.settings, c.saveErr
	}
	fn(&c.settings)
	return c.settings, nil
}

// fakePlugins is a PluginLookup over a fixed set of manifests.
type fakePlugins map[string]plugin.Manifest

func (f fakePlugins) Get(name string) (*plugin.Plugin, error) {
	m, ok := f[name]
	if !ok {
		return nil, plugin.ErrPluginNotFound
	}
	return &plugin.Plugin{Manifest: m}, nil
}

var errBoom = errors.New("boom")

// do sends a request to h and returns the recorder.
func do(t *testing.T, h http.Handler, method, target string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	switch b := body.(type) {
	case nil:
	case string:
		buf.WriteString(b)
	default:
		if err := json.NewEncoder(&buf).Encode(b); err != nil {
			t.Fatalf("failed to encode body: %v", err)
		}
	}

	req := httptest.NewRequest(method, target, &buf)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder, v any) {
	t.Helper()
	if ct := rec.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("expected Content-Type application/json, got %s", ct)
	}
	if err := json.NewDecoder(rec.Body).Decode(v); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
}
