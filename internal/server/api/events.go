package api

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/ayusman/airswipe/internal/store"
)

const (
	defaultEventLimit = 50
	maxEventLimit     = 500
)

// EventHandler serves recorded swipes from the store.
type EventHandler struct {
	store *store.Store
}

// NewEventHandler creates an EventHandler with the given store.
func NewEventHandler(s *store.Store) *EventHandler {
	return &EventHandler{store: s}
}

type eventResponse struct {
	ID         int64  `json:"id"`
	SessionID  string `json:"session_id,omitempty"`
	Direction  string `json:"direction"`
	DurationMs int64  `json:"duration_ms"`
	Rotation   int    `json:"rotation"`
	CreatedAt  string `json:"created_at"`
}

type listEventsResponse struct {
	Events []eventResponse `json:"events"`
}

type statsResponse struct {
	Counts map[string]int `json:"counts"`
}

// ServeHTTP handles GET /api/events?limit=N, GET /api/events?session=ID and
// GET /api/events/stats.
func (h *EventHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	path := strings.Trim(strings.TrimPrefix(r.URL.Path, "/api/events"), "/")
	switch path {
	case "":
		h.list(w, r)
	case "stats":
		h.stats(w)
	default:
		writeError(w, http.StatusNotFound, "Not found")
	}
}

func (h *EventHandler) list(w http.ResponseWriter, r *http.Request) {
	limit := defaultEventLimit
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			writeError(w, http.StatusBadRequest, "limit must be a positive integer")
			return
		}
		limit = min(n, maxEventLimit)
	}

	var (
		events []*store.Event
		err    error
	)
	if sessionID := r.URL.Query().Get("session"); sessionID != "" {
		events, err = h.store.Events().ListBySession(sessionID)
	} else {
		events, err = h.store.Events().Recent(limit)
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list events")
		return
	}

	response := listEventsResponse{Events: make([]eventResponse, 0, len(events))}
	for _, e := range events {
		response.Events = append(response.Events, eventResponse{
			ID:         e.ID,
			SessionID:  e.SessionID,
			Direction:  e.Direction,
			DurationMs: e.DurationMs,
			Rotation:   e.Rotation,
			CreatedAt:  e.CreatedAt.Format(time.RFC3339),
		})
	}

	writeJSON(w, http.StatusOK, response)
}

func (h *EventHandler) stats(w http.ResponseWriter) {
	counts, err := h.store.Events().CountByDirection()
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to count events")
		return
	}
	writeJSON(w, http.StatusOK, statsResponse{Counts: counts})
}
