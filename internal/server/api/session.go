package api

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/ayusman/airswipe/internal/sensor"
)

// SessionHandler serves /api/status and /api/session.
type SessionHandler struct {
	ctrl   Controller
	logger *slog.Logger
}

// NewSessionHandler creates a SessionHandler driving ctrl.
func NewSessionHandler(ctrl Controller, logger *slog.Logger) *SessionHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &SessionHandler{ctrl: ctrl, logger: logger}
}

// ServeStatus handles GET /api/status.
func (h *SessionHandler) ServeStatus(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	writeJSON(w, http.StatusOK, h.ctrl.Status())
}

// ServeHTTP handles /api/session: POST starts the sensor, DELETE stops it.
// Both are idempotent and respond with the resulting status.
func (h *SessionHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		writeJSON(w, http.StatusOK, h.ctrl.Status())
	case http.MethodPost:
		if err := h.ctrl.StartSession(); err != nil {
			h.logger.Warn("session start failed", "error", err)
			status := http.StatusInternalServerError
			if errors.Is(err, sensor.ErrNoResolution) {
				status = http.StatusConflict
			}
			writeError(w, status, "Failed to start session: "+err.Error())
			return
		}
		writeJSON(w, http.StatusOK, h.ctrl.Status())
	case http.MethodDelete:
		h.ctrl.StopSession()
		writeJSON(w, http.StatusOK, h.ctrl.Status())
	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}
