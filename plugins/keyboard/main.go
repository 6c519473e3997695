// Package main provides a keyboard plugin for macOS.
// It turns swipes into key presses via AppleScript.
package main

import (
	"encoding/json"
	"fmt"
	"os"
	"os/exec"
	"strings"
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

// KeystrokeParams defines parameters for keystroke and shortcut actions.
type KeystrokeParams struct {
	Key       string   `json:"key"`
	Modifiers []string `json:"modifiers"` // command, option, control, shift
}

// modifierMap maps user-friendly modifier names to AppleScript equivalents.
var modifierMap = map[string]string{
	"command": "command down",
	"cmd":     "command down",
	"option":  "option down",
	"alt":     "option down",
	"control": "control down",
	"ctrl":    "control down",
	"shift":   "shift down",
}

// arrowKeyCodes are the macOS virtual key codes for the arrow keys.
var arrowKeyCodes = map[string]int{
	"left":  123,
	"right": 124,
	"down":  125,
	"up":    126,
}

// pageKeyCodes map vertical swipes to page up and page down.
var pageKeyCodes = map[string]int{
	"up":   116,
	"down": 121,
}

func main() {
	var req Request
	if err := json.NewDecoder(os.Stdin).Decode(&req); err != nil {
		writeErrorResponse(fmt.Sprintf("failed to decode request: %v", err))
		return
	}

	var err error
	switch req.Action {
	case "keystroke", "shortcut":
		err = handleKeystroke(req)
	case "arrow":
		err = handleKeyCode(req.Direction, arrowKeyCodes)
	case "page":
		err = handleKeyCode(req.Direction, pageKeyCodes)
	default:
		writeErrorResponse(fmt.Sprintf("unknown action: %s", req.Action))
		return
	}
	if err != nil {
		writeErrorResponse(fmt.Sprintf("action %s failed: %v", req.Action, err))
		return
	}

	writeSuccessResponse()
}

// handleKeystroke sends the key from the binding config, with per-request
// params taking precedence.
func handleKeystroke(req Request) error {
	var p KeystrokeParams
	for _, raw := range []json.RawMessage{req.Config, req.Params} {
		if len(raw) == 0 {
			continue
		}
		if err := json.Unmarshal(raw, &p); err != nil {
			return fmt.Errorf("failed to parse key settings: %w", err)
		}
	}

	if p.Key == "" {
		return fmt.Errorf("key is required")
	}

	return runAppleScript(buildKeystrokeScript(p.Key, p.Modifiers))
}

// handleKeyCode presses the key mapped to the swipe direction.
func handleKeyCode(direction string, codes map[string]int) error {
	code, ok := codes[direction]
	if !ok {
		return fmt.Errorf("no key for direction %q", direction)
	}
	return runAppleScript(fmt.Sprintf(`tell application "System Events" to key code %d`, code))
}

// buildKeystrokeScript generates an AppleScript for the given key and modifiers.
func buildKeystrokeScript(key string, modifiers []string) string {
	var appleModifiers []string
	for _, mod := range modifiers {
		if appleMod, ok := modifierMap[strings.ToLower(mod)]; ok {
			appleModifiers = append(appleModifiers, appleMod)
		}
	}

	if len(appleModifiers) == 0 {
		return fmt.Sprintf(`tell application "System Events" to keystroke "%s"`, key)
	}

	return fmt.Sprintf(`tell application "System Events" to keystroke "%s" using {%s}`,
		key, strings.Join(appleModifiers, ", "))
}

func writeErrorResponse(errMsg string) {
	json.NewEncoder(os.Stdout).Encode(Response{Success: false, Error: errMsg})
}

func writeSuccessResponse() {
	json.NewEncoder(os.Stdout).Encode(Response{Success: true})
}

// runAppleScript executes an AppleScript command and returns any error.
func runAppleScript(script string) error {
	output, err := exec.Command("osascript", "-e", script).CombinedOutput()
	if err != nil {
		return fmt.Errorf("%w: %s", err, string(output))
	}
	return nil
}
