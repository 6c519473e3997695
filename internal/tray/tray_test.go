package tray

import "testing"

func TestTitles(t *testing.T) {
	if got := toggleTitle(true); got != "● Enabled" {
		t.Errorf("toggleTitle(true) = %q", got)
	}
	if got := toggleTitle(false); got != "○ Disabled" {
		t.Errorf("toggleTitle(false) = %q", got)
	}
	if got := lastSwipeTitle(""); got != "Last: none" {
		t.Errorf("lastSwipeTitle(\"\") = %q", got)
	}
	if got := lastSwipeTitle("left"); got != "Last: swipe left" {
		t.Errorf("lastSwipeTitle(left) = %q", got)
	}
}

// The menu items are nil until Run, so state changes must work without them.
func TestTray_StateWithoutMenu(t *testing.T) {
	tr := New(false)
	if tr.IsEnabled() {
		t.Fatal("expected initial state disabled")
	}

	var got []bool
	tr.OnToggle(func(enabled bool) { got = append(got, enabled) })

	tr.handleToggle()
	tr.handleToggle()
	if len(got) != 2 || !got[0] || got[1] {
		t.Errorf("toggle callbacks = %v, want [true false]", got)
	}

	tr.SetEnabled(true)
	if !tr.IsEnabled() {
		t.Error("SetEnabled(true) not applied")
	}
	if len(got) != 2 {
		t.Error("SetEnabled must not invoke the toggle callback")
	}

	tr.SetLastSwipe("up")
	if tr.LastSwipe() != "up" {
		t.Errorf("LastSwipe() = %q, want up", tr.LastSwipe())
	}

	settings := 0
	tr.OnSettings(func() { settings++ })
	tr.handleSettings()
	if settings != 1 {
		t.Errorf("settings callback calls = %d, want 1", settings)
	}
}
