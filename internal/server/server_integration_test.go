package server

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/gaitlab/plantarview/internal/engine"
	"github.com/gaitlab/plantarview/internal/heatmap"
	"github.com/gaitlab/plantarview/internal/store"
)

func TestAPI_PresetWorkflow(t *testing.T) {
	s, _ := store.New(filepath.Join(t.TempDir(), "test.db"))
	defer s.Close()

	srv := New(Config{Store: s})
	ts := httptest.NewServer(srv)
	defer ts.Close()

	client := ts.Client()

	// 1. Create a preset
	cfg, _ := json.Marshal(map[string]any{
		"name": "clinic-walk",
		"config": map[string]any{
			"output_width": 175, "output_height": 520,
			"grid_width": 20, "grid_height": 69,
			"radius": 70, "smoothness": 2,
			"margin": 50, "legend_width": 80,
			"trail_length": 10, "target_rate": 64,
		},
	})
	resp, err := client.Post(ts.URL+"/api/presets", "application/json", bytes.NewReader(cfg))
	if err != nil {
		t.Fatalf("POST /api/presets error = %v", err)
	}
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("POST status = %d, want %d", resp.StatusCode, http.StatusCreated)
	}

	var created struct {
		ID   string `json:"id"`
		Name string `json:"name"`
	}
	json.NewDecoder(resp.Body).Decode(&created)
	resp.Body.Close()

	if created.Name != "clinic-walk" {
		t.Errorf("created name = %s, want clinic-walk", created.Name)
	}

	// 2. List presets
	resp, _ = client.Get(ts.URL + "/api/presets")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("GET /api/presets status = %d, want %d", resp.StatusCode, http.StatusOK)
	}

	var listed struct {
		Presets []struct {
			ID   string `json:"id"`
			Name string `json:"name"`
		} `json:"presets"`
	}
	json.NewDecoder(resp.Body).Decode(&listed)
	resp.Body.Close()

	if len(listed.Presets) != 1 {
		t.Fatalf("len(presets) = %d, want 1", len(listed.Presets))
	}

	// 3. Get single preset
	resp, _ = client.Get(ts.URL + "/api/presets/" + created.ID)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("GET /api/presets/%s status = %d, want %d", created.ID, resp.StatusCode, http.StatusOK)
	}
	resp.Body.Close()

	// 4. Delete preset
	req, _ := http.NewRequest(http.MethodDelete, ts.URL+"/api/presets/"+created.ID, nil)
	resp, _ = client.Do(req)
	if resp.StatusCode != http.StatusNoContent {
		t.Fatalf("DELETE status = %d, want %d", resp.StatusCode, http.StatusNoContent)
	}
	resp.Body.Close()

	// 5. Verify deleted
	resp, _ = client.Get(ts.URL + "/api/presets/" + created.ID)
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("GET after delete status = %d, want %d", resp.StatusCode, http.StatusNotFound)
	}
	resp.Body.Close()
}

func TestAPI_StatusWebSocket(t *testing.T) {
	cfg := heatmap.DefaultConfig()
	cfg.OutputWidth = 30
	cfg.OutputHeight = 40
	cfg.GridWidth = 3
	cfg.GridHeight = 4
	cfg.Radius = 15
	cfg.Margin = 5
	cfg.LegendWidth = 20
	cfg.TrailLength = 2

	e, err := engine.New(engine.Config{Heatmap: cfg})
	if err != nil {
		t.Fatalf("engine.New() error = %v", err)
	}
	layout := heatmap.Layout{{X: 5, Y: 5}}
	seq := [][]int{{1000}, {2000}, {3000}}
	if err := e.SetData(layout, layout, seq, seq); err != nil {
		t.Fatalf("SetData() error = %v", err)
	}

	srv := New(Config{Engine: e})
	ts := httptest.NewServer(srv)
	defer ts.Close()

	wsURL := "ws" + strings.TrimPrefix(ts.URL, "http") + "/api/status"
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		t.Fatalf("websocket dial error = %v", err)
	}
	defer conn.Close()

	conn.SetReadDeadline(time.Now().Add(3 * time.Second))
	_, msg, err := conn.ReadMessage()
	if err != nil {
		t.Fatalf("websocket read error = %v", err)
	}

	var payload struct {
		Status    engine.Status `json:"status"`
		Timestamp int64         `json:"timestamp"`
	}
	if err := json.Unmarshal(msg, &payload); err != nil {
		t.Fatalf("failed to decode status message: %v", err)
	}
	if payload.Status.FrameCount != 3 {
		t.Errorf("frameCount = %d, want 3", payload.Status.FrameCount)
	}
	if payload.Timestamp == 0 {
		t.Error("expected a timestamp on the status message")
	}
}

func TestAPI_HealthCheck(t *testing.T) {
	srv := New(Config{})
	ts := httptest.NewServer(srv)
	defer ts.Close()

	resp, err := ts.Client().Get(ts.URL + "/api/health")
	if err != nil {
		t.Fatalf("GET /api/health error = %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want %d", resp.StatusCode, http.StatusOK)
	}

	var health struct {
		Status string `json:"status"`
		Uptime string `json:"uptime"`
	}
	json.NewDecoder(resp.Body).Decode(&health)

	if health.Status != "ok" {
		t.Errorf("status = %s, want ok", health.Status)
	}
}
