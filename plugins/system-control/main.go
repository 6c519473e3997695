// Package main provides a system control plugin for macOS.
// It maps swipes to volume, brightness, and media playback controls via
// AppleScript.
package main

import (
	"encoding/json"
	"fmt"
	"os"
	"os/exec"
)

// Request represents the input from the plugin executor.
type Request struct {
	Action     string          `json:"action"`
	Direction  string          `json:"direction"`
	DurationMs int64           `json:"duration_ms"`
	Config     json.RawMessage `json:"config"`
	Params     json.RawMessage `json:"params"`
}

// Response represents the output to the plugin executor.
type Response struct {
	Success bool            `json:"success"`
	Error   string          `json:"error,omitempty"`
	Data    json.RawMessage `json:"data,omitempty"`
}

// actionHandler defines a function type for handling specific actions.
type actionHandler func() error

// actionHandlers maps action names to their handler functions.
var actionHandlers = map[string]actionHandler{
	"volume-up":        volumeUp,
	"volume-down":      volumeDown,
	"volume-mute":      volumeMute,
	"brightness-up":    brightnessUp,
	"brightness-down":  brightnessDown,
	"media-play-pause": mediaPlayPause,
	"media-next":       mediaNext,
	"media-prev":       mediaPrev,
}

// defaultSwipeMap is used by the "swipe" action when the binding config has
// no "map" entry.
var defaultSwipeMap = map[string]string{
	"up":    "volume-up",
	"down":  "volume-down",
	"left":  "media-prev",
	"right": "media-next",
}

// SwipeConfig overrides the direction to control mapping.
type SwipeConfig struct {
	Map map[string]string `json:"map"`
}

func main() {
	var req Request
	if err := json.NewDecoder(os.Stdin).Decode(&req); err != nil {
		writeErrorResponse(fmt.Sprintf("failed to decode request: %v", err))
		return
	}

	action, err := resolveAction(req)
	if err != nil {
		writeErrorResponse(err.Error())
		return
	}

	if err := actionHandlers[action](); err != nil {
		writeErrorResponse(fmt.Sprintf("action %s failed: %v", action, err))
		return
	}

	writeSuccessResponse()
}

// resolveAction returns the control to run. The "swipe" action picks one by
// direction; any other action names a control directly.
func resolveAction(req Request) (string, error) {
	action := req.Action
	if action == "swipe" {
		mapping := defaultSwipeMap
		if len(req.Config) > 0 {
			var cfg SwipeConfig
			if err := json.Unmarshal(req.Config, &cfg); err != nil {
				return "", fmt.Errorf("invalid swipe config: %v", err)
			}
			if len(cfg.Map) > 0 {
				mapping = cfg.Map
			}
		}
		var ok bool
		if action, ok = mapping[req.Direction]; !ok {
			return "", fmt.Errorf("no control mapped to direction %q", req.Direction)
		}
	}

	if _, ok := actionHandlers[action]; !ok {
		return "", fmt.Errorf("unknown action: %s", action)
	}
	return action, nil
}

func writeErrorResponse(errMsg string) {
	json.NewEncoder(os.Stdout).Encode(Response{Success: false, Error: errMsg})
}

func writeSuccessResponse() {
	json.NewEncoder(os.Stdout).Encode(Response{Success: true})
}

// runAppleScript executes an AppleScript command and returns any error.
func runAppleScript(script string) error {
	cmd := exec.Command("osascript", "-e", script)
	output, err := cmd.CombinedOutput()
	if err != nil {
		return fmt.Errorf("%w: %s", err, string(output))
	}
	return nil
}

// volumeUp increases the system volume by 10%.
func volumeUp() error {
	script := `set volume output volume ((output volume of (get volume settings)) + 10)`
	return runAppleScript(script)
}

// volumeDown decreases the system volume by 10%.
func volumeDown() error {
	script := `set volume output volume ((output volume of (get volume settings)) - 10)`
	return runAppleScript(script)
}

// volumeMute toggles the system mute state.
func volumeMute() error {
	script := `set volume output muted (not (output muted of (get volume settings)))`
	return runAppleScript(script)
}

// brightnessUp increases the screen brightness.
func brightnessUp() error {
	script := `tell application "System Events"
	key code 144
end tell`
	return runAppleScript(script)
}

// brightnessDown decreases the screen brightness.
func brightnessDown() error {
	script := `tell application "System Events"
	key code 145
end tell`
	return runAppleScript(script)
}

// mediaPlayPause toggles media play/pause using the F8/Play-Pause media key.
func mediaPlayPause() error {
	script := `tell application "System Events"
	key code 100
end tell`
	return runAppleScript(script)
}

// mediaNext skips to the next track using the F9/Next media key.
func mediaNext() error {
	script := `tell application "System Events"
	key code 101
end tell`
	return runAppleScript(script)
}

// mediaPrev skips to the previous track using the F7/Previous media key.
func mediaPrev() error {
	script := `tell application "System Events"
	key code 98
end tell`
	return runAppleScript(script)
}
