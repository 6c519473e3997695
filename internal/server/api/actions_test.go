package api

import (
	"net/http"
	"testing"

	"github.com/ayusman/airswipe/internal/plugin"
	"github.com/ayusman/airswipe/internal/store"
)

func testPlugins() fakePlugins {
	return fakePlugins{
		"keyboard": plugin.Manifest{Name: "keyboard", Actions: []string{"arrow", "shortcut"}},
	}
}

func TestActionHandler_CreateAndGet(t *testing.T) {
	s := newTestStore(t)
	h := NewActionHandler(s, testPlugins())

	rec := do(t, h, http.MethodPost, "/api/actions", map[string]any{
		"direction":   "LEFT",
		"plugin_name": "keyboard",
		"action_name": "arrow",
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("POST status = %d, want %d: %s", rec.Code, http.StatusCreated, rec.Body.String())
	}

	var created actionResponse
	decode(t, rec, &created)
	if created.ID == "" {
		t.Fatal("expected generated id")
	}
	if created.Direction != "left" {
		t.Errorf("direction = %q, want normalized 'left'", created.Direction)
	}
	if !created.Enabled {
		t.Error("new action should be enabled by default")
	}
	if string(created.Config) != "{}" {
		t.Errorf("config = %s, want {}", created.Config)
	}

	rec = do(t, h, http.MethodGet, "/api/actions/"+created.ID, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("GET status = %d, want %d", rec.Code, http.StatusOK)
	}
	var got actionResponse
	decode(t, rec, &got)
	if got.ID != created.ID || got.PluginName != "keyboard" {
		t.Errorf("unexpected action: %+v", got)
	}
}

func TestActionHandler_CreateValidation(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"invalid json", "{"},
		{"missing direction", `{"plugin_name":"keyboard","action_name":"arrow"}`},
		{"direction none", `{"direction":"none","plugin_name":"keyboard","action_name":"arrow"}`},
		{"unknown direction", `{"direction":"diagonal","plugin_name":"keyboard","action_name":"arrow"}`},
		{"missing plugin", `{"direction":"up","action_name":"arrow"}`},
		{"missing action", `{"direction":"up","plugin_name":"keyboard"}`},
		{"plugin not installed", `{"direction":"up","plugin_name":"mouse","action_name":"click"}`},
		{"action not declared", `{"direction":"up","plugin_name":"keyboard","action_name":"reboot"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := NewActionHandler(newTestStore(t), testPlugins())
			rec := do(t, h, http.MethodPost, "/api/actions", tt.body)
			if rec.Code != http.StatusBadRequest {
				t.Errorf("status = %d, want %d", rec.Code, http.StatusBadRequest)
			}
		})
	}
}

func TestActionHandler_WithoutPluginLookup(t *testing.T) {
	h := NewActionHandler(newTestStore(t), nil)

	rec := do(t, h, http.MethodPost, "/api/actions", `{"direction":"down","plugin_name":"anything","action_name":"any"}`)
	if rec.Code != http.StatusCreated {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusCreated)
	}
}

func TestActionHandler_ListFilter(t *testing.T) {
	s := newTestStore(t)
	for _, dir := range []string{"left", "right", "left"} {
		if err := s.Actions().Create(&store.Action{Direction: dir, PluginName: "keyboard", ActionName: "arrow", Enabled: true}); err != nil {
			t.Fatalf("failed to create action: %v", err)
		}
	}
	h := NewActionHandler(s, nil)

	var all listActionsResponse
	decode(t, do(t, h, http.MethodGet, "/api/actions", nil), &all)
	if len(all.Actions) != 3 {
		t.Errorf("expected 3 actions, got %d", len(all.Actions))
	}

	var left listActionsResponse
	decode(t, do(t, h, http.MethodGet, "/api/actions?direction=left", nil), &left)
	if len(left.Actions) != 2 {
		t.Errorf("expected 2 left actions, got %d", len(left.Actions))
	}
}

func TestActionHandler_UpdateAndDelete(t *testing.T) {
	s := newTestStore(t)
	a := &store.Action{Direction: "up", PluginName: "keyboard", ActionName: "arrow", Enabled: true}
	if err := s.Actions().Create(a); err != nil {
		t.Fatalf("failed to create action: %v", err)
	}
	h := NewActionHandler(s, testPlugins())

	rec := do(t, h, http.MethodPut, "/api/actions/"+a.ID, `{"direction":"down","enabled":false,"config":{"key":"j"}}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("PUT status = %d, want %d: %s", rec.Code, http.StatusOK, rec.Body.String())
	}
	var updated actionResponse
	decode(t, rec, &updated)
	if updated.Direction != "down" || updated.Enabled {
		t.Errorf("update not applied: %+v", updated)
	}
	if string(updated.Config) != `{"key":"j"}` {
		t.Errorf("config = %s", updated.Config)
	}

	rec = do(t, h, http.MethodPut, "/api/actions/"+a.ID, `{"direction":"sideways"}`)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("invalid direction PUT = %d, want %d", rec.Code, http.StatusBadRequest)
	}

	rec = do(t, h, http.MethodPut, "/api/actions/"+a.ID, `{"action_name":"reboot"}`)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("unsupported action PUT = %d, want %d", rec.Code, http.StatusBadRequest)
	}

	rec = do(t, h, http.MethodDelete, "/api/actions/"+a.ID, nil)
	if rec.Code != http.StatusNoContent {
		t.Fatalf("DELETE status = %d, want %d", rec.Code, http.StatusNoContent)
	}

	for _, method := range []string{http.MethodGet, http.MethodDelete} {
		rec = do(t, h, method, "/api/actions/"+a.ID, nil)
		if rec.Code != http.StatusNotFound {
			t.Errorf("%s after delete = %d, want %d", method, rec.Code, http.StatusNotFound)
		}
	}
	rec = do(t, h, http.MethodPut, "/api/actions/"+a.ID, `{}`)
	if rec.Code != http.StatusNotFound {
		t.Errorf("PUT after delete = %d, want %d", rec.Code, http.StatusNotFound)
	}
}

func TestActionHandler_MethodNotAllowed(t *testing.T) {
	h := NewActionHandler(newTestStore(t), nil)

	if rec := do(t, h, http.MethodPatch, "/api/actions", nil); rec.Code != http.StatusMethodNotAllowed {
		t.Errorf("PATCH collection = %d", rec.Code)
	}
	if rec := do(t, h, http.MethodPost, "/api/actions/abc", nil); rec.Code != http.StatusMethodNotAllowed {
		t.Errorf("POST item = %d", rec.Code)
	}
}
