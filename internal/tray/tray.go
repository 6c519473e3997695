// Package tray provides the system tray menu of the airswipe daemon.
package tray

import (
	"sync"

	"github.com/getlantern/systray"
)

// Tray is the system tray menu: an enable toggle, the last swipe, settings
// and quit.
type Tray struct {
	onToggle   func(enabled bool)
	onSettings func()
	onQuit     func()
	enabled    bool
	lastSwipe  string
	mu         sync.RWMutex

	menuToggle    *systray.MenuItem
	menuLastSwipe *systray.MenuItem
}

// New creates a Tray showing the given initial enabled state.
func New(enabled bool) *Tray {
	return &Tray{
		enabled: enabled,
	}
}

// OnToggle sets the callback invoked with the new state when the user flips
// the enable item.
func (t *Tray) OnToggle(fn func(enabled bool)) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.onToggle = fn
}

// OnSettings sets the callback for the settings item.
func (t *Tray) OnSettings(fn func()) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.onSettings = fn
}

// OnQuit sets the callback for the quit item.
func (t *Tray) OnQuit(fn func()) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.onQuit = fn
}

// Run starts the system tray application.
// It must be called from the main goroutine and blocks until Quit.
func (t *Tray) Run() {
	systray.Run(t.onReady, func() {})
}

// Quit exits the tray loop.
func (t *Tray) Quit() {
	systray.Quit()
}

func (t *Tray) onReady() {
	systray.SetTitle("AirSwipe")
	systray.SetTooltip("AirSwipe touchless swipe control")

	t.mu.Lock()
	t.menuToggle = systray.AddMenuItem(toggleTitle(t.enabled), "Start or stop swipe detection")
	systray.AddSeparator()
	t.menuLastSwipe = systray.AddMenuItem(lastSwipeTitle(t.lastSwipe), "Last detected swipe")
	t.menuLastSwipe.Disable()
	toggle := t.menuToggle
	t.mu.Unlock()

	systray.AddSeparator()
	menuSettings := systray.AddMenuItem("Open Settings...", "Open settings in browser")
	systray.AddSeparator()
	menuQuit := systray.AddMenuItem("Quit", "Quit AirSwipe")

	go func() {
		for {
			select {
			case <-toggle.ClickedCh:
				t.handleToggle()
			case <-menuSettings.ClickedCh:
				t.handleSettings()
			case <-menuQuit.ClickedCh:
				t.handleQuit()
				return
			}
		}
	}()
}

func (t *Tray) handleToggle() {
	t.mu.Lock()
	t.enabled = !t.enabled
	enabled := t.enabled
	if t.menuToggle != nil {
		t.menuToggle.SetTitle(toggleTitle(enabled))
	}
	callback := t.onToggle
	t.mu.Unlock()

	// Callbacks run outside the lock so they may call back into the tray.
	if callback != nil {
		callback(enabled)
	}
}

func (t *Tray) handleSettings() {
	t.mu.RLock()
	callback := t.onSettings
	t.mu.RUnlock()

	if callback != nil {
		callback()
	}
}

func (t *Tray) handleQuit() {
	t.mu.RLock()
	callback := t.onQuit
	t.mu.RUnlock()

	if callback != nil {
		callback()
	}

	systray.Quit()
}

// SetEnabled reflects a state change made elsewhere, such as the HTTP API.
// It does not invoke the toggle callback.
func (t *Tray) SetEnabled(enabled bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.enabled = enabled
	if t.menuToggle != nil {
		t.menuToggle.SetTitle(toggleTitle(enabled))
	}
}

// SetLastSwipe updates the last swipe label. Empty clears it.
func (t *Tray) SetLastSwipe(direction string) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.lastSwipe = direction
	if t.menuLastSwipe != nil {
		t.menuLastSwipe.SetTitle(lastSwipeTitle(direction))
	}
}

// LastSwipe returns the direction shown in the menu.
func (t *Tray) LastSwipe() string {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.lastSwipe
}

// IsEnabled returns the current enabled state.
func (t *Tray) IsEnabled() bool {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.enabled
}

func toggleTitle(enabled bool) string {
	if enabled {
		return "● Enabled"
	}
	return "○ Disabled"
}

func lastSwipeTitle(direction string) string {
	if direction == "" {
		return "Last: none"
	}
	return "Last: swipe " + direction
}
