package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/gaitlab/plantarview/internal/heatmap"
	"github.com/gaitlab/plantarview/internal/store"
)

// newTestStore creates a new Store with a temporary database for testing.
func newTestStore(t *testing.T) *store.Store {
	t.Helper()

	s, err := store.New(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}
	t.Cleanup(func() {
		s.Close()
	})

	return s
}

func TestPresetHandler_List(t *testing.T) {
	s := newTestStore(t)
	handler := NewPresetHandler(s)

	preset := &store.Preset{
		ID:     "test-preset-1",
		Name:   "clinic default",
		Config: heatmap.DefaultConfig(),
	}
	if err := s.Presets().Create(preset); err != nil {
		t.Fatalf("failed to create preset: %v", err)
	}

	req := httptest.NewRequest(http.MethodGet, "/api/presets", nil)
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Errorf("expected status %d, got %d", http.StatusOK, rec.Code)
	}

	contentType := rec.Header().Get("Content-Type")
	if contentType != "application/json" {
		t.Errorf("expected Content-Type application/json, got %s", contentType)
	}

	var response listPresetsResponse
	if err := json.NewDecoder(rec.Body).Decode(&response); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}

	if len(response.Presets) != 1 {
		t.Fatalf("expected 1 preset, got %d", len(response.Presets))
	}
	if response.Presets[0].ID != "test-preset-1" {
		t.Errorf("expected ID test-preset-1, got %s", response.Presets[0].ID)
	}
	if response.Presets[0].Config.Radius != heatmap.DefaultRadius {
		t.Errorf("expected radius %v, got %v", heatmap.DefaultRadius, response.Presets[0].Config.Radius)
	}
}

func TestPresetHandler_Create(t *testing.T) {
	s := newTestStore(t)
	handler := NewPresetHandler(s)

	body := createPresetRequest{
		Name:   "walk session",
		Config: payloadFromConfig(heatmap.DefaultConfig()),
	}
	buf, _ := json.Marshal(body)

	req := httptest.NewRequest(http.MethodPost, "/api/presets", bytes.NewReader(buf))
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("expected status %d, got %d: %s", http.StatusCreated, rec.Code, rec.Body.String())
	}

	var response presetResponse
	if err := json.NewDecoder(rec.Body).Decode(&response); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if response.ID == "" {
		t.Error("expected generated ID in response")
	}
	if response.Name != "walk session" {
		t.Errorf("expected name 'walk session', got %s", response.Name)
	}
}

func TestPresetHandler_Create_Validation(t *testing.T) {
	s := newTestStore(t)
	handler := NewPresetHandler(s)

	t.Run("rejects missing name", func(t *testing.T) {
		body := createPresetRequest{Config: payloadFromConfig(heatmap.DefaultConfig())}
		buf, _ := json.Marshal(body)

		req := httptest.NewRequest(http.MethodPost, "/api/presets", bytes.NewReader(buf))
		rec := httptest.NewRecorder()

		handler.ServeHTTP(rec, req)

		if rec.Code != http.StatusBadRequest {
			t.Errorf("expected status %d, got %d", http.StatusBadRequest, rec.Code)
		}
	})

	t.Run("rejects invalid configuration", func(t *testing.T) {
		cfg := heatmap.DefaultConfig()
		cfg.Radius = -1
		body := createPresetRequest{Name: "bad", Config: payloadFromConfig(cfg)}
		buf, _ := json.Marshal(body)

		req := httptest.NewRequest(http.MethodPost, "/api/presets", bytes.NewReader(buf))
		rec := httptest.NewRecorder()

		handler.ServeHTTP(rec, req)

		if rec.Code != http.StatusBadRequest {
			t.Errorf("expected status %d, got %d", http.StatusBadRequest, rec.Code)
		}
	})

	t.Run("rejects malformed body", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/api/presets", bytes.NewReader([]byte("{not json")))
		rec := httptest.NewRecorder()

		handler.ServeHTTP(rec, req)

		if rec.Code != http.StatusBadRequest {
			t.Errorf("expected status %d, got %d", http.StatusBadRequest, rec.Code)
		}
	})
}

func TestPresetHandler_Get(t *testing.T) {
	s := newTestStore(t)
	handler := NewPresetHandler(s)

	preset := &store.Preset{Name: "walk", Config: heatmap.DefaultConfig()}
	if err := s.Presets().Create(preset); err != nil {
		t.Fatalf("failed to create preset: %v", err)
	}

	t.Run("returns existing preset", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/presets/"+preset.ID, nil)
		rec := httptest.NewRecorder()

		handler.ServeHTTP(rec, req)

		if rec.Code != http.StatusOK {
			t.Fatalf("expected status %d, got %d", http.StatusOK, rec.Code)
		}

		var response presetResponse
		if err := json.NewDecoder(rec.Body).Decode(&response); err != nil {
			t.Fatalf("failed to decode response: %v", err)
		}
		if response.Name != "walk" {
			t.Errorf("expected name walk, got %s", response.Name)
		}
	})

	t.Run("returns 404 for unknown ID", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/presets/nope", nil)
		rec := httptest.NewRecorder()

		handler.ServeHTTP(rec, req)

		if rec.Code != http.StatusNotFound {
			t.Errorf("expected status %d, got %d", http.StatusNotFound, rec.Code)
		}
	})
}

func TestPresetHandler_Update(t *testing.T) {
	s := newTestStore(t)
	handler := NewPresetHandler(s)

	preset := &store.Preset{Name: "walk", Config: heatmap.DefaultConfig()}
	if err := s.Presets().Create(preset); err != nil {
		t.Fatalf("failed to create preset: %v", err)
	}

	cfg := heatmap.DefaultConfig()
	cfg.TargetRate = 128
	body := updatePresetRequest{Name: "run", Config: payloadFromConfig(cfg)}
	buf, _ := json.Marshal(body)

	req := httptest.NewRequest(http.MethodPut, "/api/presets/"+preset.ID, bytes.NewReader(buf))
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d: %s", http.StatusOK, rec.Code, rec.Body.String())
	}

	updated, err := s.Presets().GetByID(preset.ID)
	if err != nil {
		t.Fatalf("failed to reload preset: %v", err)
	}
	if updated.Name != "run" {
		t.Errorf("expected name run, got %s", updated.Name)
	}
	if updated.Config.TargetRate != 128 {
		t.Errorf("expected target rate 128, got %v", updated.Config.TargetRate)
	}
}

func TestPresetHandler_Delete(t *testing.T) {
	s := newTestStore(t)
	handler := NewPresetHandler(s)

	preset := &store.Preset{Name: "walk", Config: heatmap.DefaultConfig()}
	if err := s.Presets().Create(preset); err != nil {
		t.Fatalf("failed to create preset: %v", err)
	}

	req := httptest.NewRequest(http.MethodDelete, "/api/presets/"+preset.ID, nil)
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusNoContent {
		t.Fatalf("expected status %d, got %d", http.StatusNoContent, rec.Code)
	}

	req = httptest.NewRequest(http.MethodDelete, "/api/presets/"+preset.ID, nil)
	rec = httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Errorf("expected status %d after delete, got %d", http.StatusNotFound, rec.Code)
	}
}

func TestPresetHandler_MethodNotAllowed(t *testing.T) {
	s := newTestStore(t)
	handler := NewPresetHandler(s)

	req := httptest.NewRequest(http.MethodPatch, "/api/presets", nil)
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusMethodNotAllowed {
		t.Errorf("expected status %d, got %d", http.StatusMethodNotAllowed, rec.Code)
	}
}
