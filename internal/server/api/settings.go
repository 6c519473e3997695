package api

import (
	"net/http"

	"github.com/ayusman/airswipe/internal/sensor"
)

// SettingsHandler serves GET and PUT /api/settings.
type SettingsHandler struct {
	ctrl Controller
}

// NewSettingsHandler creates a SettingsHandler backed by ctrl.
func NewSettingsHandler(ctrl Controller) *SettingsHandler {
	return &SettingsHandler{ctrl: ctrl}
}

// updateSettingsRequest carries a partial update; nil fields are unchanged.
type updateSettingsRequest struct {
	HorizontalScroll        *bool `json:"horizontal_scroll"`
	VerticalScroll          *bool `json:"vertical_scroll"`
	ClickEnabled            *bool `json:"click_enabled"`
	AverageColorMaxForClick *int  `json:"average_color_max_for_click"`
}

// ServeHTTP implements http.Handler.
func (h *SettingsHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		writeJSON(w, http.StatusOK, h.ctrl.Settings())
	case http.MethodPut:
		h.update(w, r)
	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

func (h *SettingsHandler) update(w http.ResponseWriter, r *http.Request) {
	var req updateSettingsRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	if v := req.AverageColorMaxForClick; v != nil && (*v < 0 || *v > 255) {
		writeError(w, http.StatusBadRequest, "average_color_max_for_click must be between 0 and 255")
		return
	}

	settings, err := h.ctrl.ModifySettings(req.apply)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to save settings")
		return
	}

	writeJSON(w, http.StatusOK, settings)
}

func (req *updateSettingsRequest) apply(s *sensor.Settings) {
	if req.HorizontalScroll != nil {
		s.HorizontalScrollEnabled = *req.HorizontalScroll
	}
	if req.VerticalScroll != nil {
		s.VerticalScrollEnabled = *req.VerticalScroll
	}
	if req.ClickEnabled != nil {
		s.ClickEnabled = *req.ClickEnabled
	}
	if req.AverageColorMaxForClick != nil {
		s.AverageColorMaxForClick = *req.AverageColorMaxForClick
	}
}
