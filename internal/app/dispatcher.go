package app

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/ayusman/airswipe/internal/gesture"
	"github.com/ayusman/airswipe/internal/orientation"
	"github.com/ayusman/airswipe/internal/plugin"
	"github.com/ayusman/airswipe/internal/store"
)

// DefaultQueueSize is the number of swipes the dispatcher buffers before it
// starts dropping.
const DefaultQueueSize = 32

// Swipe is one delivered gesture as queued for the dispatcher.
type Swipe struct {
	Direction  gesture.Direction
	DurationMs int64
	Rotation   orientation.Rotation
	SessionID  string
	At         time.Time
}

// PluginSource resolves plugins by name.
type PluginSource interface {
	Get(name string) (*plugin.Plugin, error)
}

// PluginRunner executes a plugin request.
type PluginRunner interface {
	Execute(ctx context.Context, p *plugin.Plugin, req *plugin.Request) (*plugin.Response, error)
}

// Dispatcher records swipes and runs their bound plugin actions on its own
// goroutine, so the sensor loop never waits on disk or child processes.
type Dispatcher struct {
	store   *store.Store
	plugins PluginSource
	runner  PluginRunner
	logger  *slog.Logger

	queue  chan Swipe
	ctx    context.Context
	cancel context.CancelFunc
	done   chan struct{}

	mu     sync.RWMutex
	closed bool

	processed atomic.Int64
	dropped   atomic.Int64
}

// NewDispatcher starts a dispatcher worker. store, plugins and runner may be
// nil, which disables recording or plugin execution respectively.
func NewDispatcher(st *store.Store, plugins PluginSource, runner PluginRunner, queueSize int, logger *slog.Logger) *Dispatcher {
	if queueSize <= 0 {
		queueSize = DefaultQueueSize
	}
	if logger == nil {
		logger = slog.Default()
	}

	ctx, cancel := context.WithCancel(context.Background())
	d := &Dispatcher{
		store:   st,
		plugins: plugins,
		runner:  runner,
		logger:  logger,
		queue:   make(chan Swipe, queueSize),
		ctx:     ctx,
		cancel:  cancel,
		done:    make(chan struct{}),
	}
	go d.run()
	return d
}

// Enqueue hands sw to the worker without blocking. It returns false when the
// queue is full or the dispatcher is closed.
func (d *Dispatcher) Enqueue(sw Swipe) bool {
	d.mu.RLock()
	defer d.mu.RUnlock()

	if d.closed {
		return false
	}

	select {
	case d.queue <- sw:
		return true
	default:
		d.dropped.Add(1)
		d.logger.Warn("dispatch queue full, dropping swipe", "direction", sw.Direction.String())
		return false
	}
}

// Close stops accepting swipes and waits until the queued ones are handled.
// Each plugin run is still bounded by the runner's timeout.
func (d *Dispatcher) Close() {
	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		return
	}
	d.closed = true
	close(d.queue)
	d.mu.Unlock()

	<-d.done
	d.cancel()
}

// Processed returns the number of swipes handled by the worker.
func (d *Dispatcher) Processed() int64 {
	return d.processed.Load()
}

// Dropped returns the number of swipes rejected because the queue was full.
func (d *Dispatcher) Dropped() int64 {
	return d.dropped.Load()
}

func (d *Dispatcher) run() {
	defer close(d.done)

	for sw := range d.queue {
		d.record(sw)
		d.execute(sw)
		d.processed.Add(1)
	}
}

func (d *Dispatcher) record(sw Swipe) {
	if d.store == nil {
		return
	}

	e := &store.Event{
		SessionID:  sw.SessionID,
		Direction:  sw.Direction.String(),
		DurationMs: sw.DurationMs,
		Rotation:   int(sw.Rotation),
		CreatedAt:  sw.At,
	}
	if err := d.store.Events().Create(e); err != nil {
		d.logger.Error("failed to record swipe", "direction", e.Direction, "error", err)
	}
}

func (d *Dispatcher) execute(sw Swipe) {
	if d.store == nil || d.plugins == nil || d.runner == nil {
		return
	}

	actions, err := d.store.Actions().ListEnabledByDirection(sw.Direction.String())
	if err != nil {
		d.logger.Error("failed to load actions", "direction", sw.Direction.String(), "error", err)
		return
	}

	for _, a := range actions {
		logger := d.logger.With("direction", a.Direction, "plugin", a.PluginName, "action", a.ActionName)

		p, err := d.plugins.Get(a.PluginName)
		if err != nil {
			logger.Warn("plugin unavailable", "error", err)
			continue
		}

		req := &plugin.Request{
			Action:     a.ActionName,
			Direction:  a.Direction,
			DurationMs: sw.DurationMs,
			Config:     a.Config,
		}

		start := time.Now()
		resp, err := d.runner.Execute(d.ctx, p, req)
		if err != nil {
			logger.Error("plugin execution failed", "error", err)
			continue
		}
		if !resp.Success {
			logger.Warn("plugin reported failure", "error", resp.Error)
			continue
		}
		logger.Debug("plugin action executed", "elapsed", time.Since(start))
	}
}
