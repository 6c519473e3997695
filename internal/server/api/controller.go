package api

import "github.com/ayusman/airswipe/internal/sensor"

// Status is the sensor state reported by /api/status and /api/session.
type Status struct {
	Running  bool            `json:"running"`
	Width    int             `json:"width"`
	Height   int             `json:"height"`
	Rotation int             `json:"rotation"`
	Settings sensor.Settings `json:"settings"`
}

// Controller starts and stops the swipe session and owns its settings.
type Controller interface {
	StartSession() error
	StopSession()
	Status() Status

	Settings() sensor.Settings
	// ModifySettings applies fn to the current settings and stores the
	// result. Concurrent calls are serialized, so partial updates compose.
	ModifySettings(fn func(*sensor.Settings)) (sensor.Settings, error)
}
