package e2e

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gaitlab/plantarview/internal/app"
	"github.com/gaitlab/plantarview/internal/engine"
	"github.com/gaitlab/plantarview/internal/heatmap"
	"github.com/gaitlab/plantarview/internal/server"
	"github.com/gaitlab/plantarview/internal/store"
	"github.com/gaitlab/plantarview/testdata"
)

func renderConfig() heatmap.Config {
	cfg := heatmap.DefaultConfig()
	cfg.OutputWidth = 40
	cfg.OutputHeight = 60
	cfg.GridWidth = 4
	cfg.GridHeight = 6
	cfg.Radius = 40
	cfg.Margin = 8
	cfg.LegendWidth = 30
	cfg.TrailLength = 3
	cfg.TargetRate = 200
	return cfg
}

func TestE2E_PlaybackWorkflow(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping e2e test")
	}

	tmpDir := t.TempDir()

	s, err := store.New(filepath.Join(tmpDir, "data.db"))
	if err != nil {
		t.Fatalf("store.New() error = %v", err)
	}
	defer s.Close()

	cfg := renderConfig()
	application, err := app.New(app.Config{Store: s, Render: cfg})
	if err != nil {
		t.Fatalf("app.New() error = %v", err)
	}

	files, err := testdata.ExtractSession(tmpDir)
	if err != nil {
		t.Fatalf("ExtractSession() error = %v", err)
	}
	if err := application.LoadSession(app.Session{
		LeftLayout:  files.LeftLayout,
		RightLayout: files.RightLayout,
		LeftSeq:     files.LeftSeq,
		RightSeq:    files.RightSeq,
	}); err != nil {
		t.Fatalf("LoadSession() error = %v", err)
	}

	application.Start()
	defer application.Stop()

	eng := application.Engine()
	if eng.FrameCount() != 24 {
		t.Fatalf("FrameCount() = %d, want 24", eng.FrameCount())
	}

	srv := server.New(server.Config{Store: s, Engine: eng})
	ts := httptest.NewServer(srv)
	defer ts.Close()

	client := ts.Client()

	t.Run("FrameDimensions", func(t *testing.T) {
		frame, err := eng.CurrentFrame()
		if err != nil {
			t.Fatalf("CurrentFrame() error = %v", err)
		}
		defer frame.Close()

		legend := heatmap.Colorbar(cfg.OutputHeight, cfg.LegendWidth)
		defer legend.Close()

		wantW := cfg.OutputWidth*2 + cfg.Margin*3 + legend.Cols()
		contentH := cfg.OutputHeight
		if legend.Rows() > contentH {
			contentH = legend.Rows()
		}
		wantH := contentH + cfg.Margin*2

		if frame.Cols() != wantW || frame.Rows() != wantH {
			t.Errorf("frame = %dx%d, want %dx%d", frame.Cols(), frame.Rows(), wantW, wantH)
		}
	})

	t.Run("CreatePreset", func(t *testing.T) {
		body := `{"name": "session-default", "config": {
			"output_width": 175, "output_height": 520,
			"grid_width": 20, "grid_height": 69,
			"radius": 70, "smoothness": 2,
			"margin": 50, "legend_width": 80,
			"trail_length": 10, "target_rate": 64}}`
		resp, err := client.Post(ts.URL+"/api/presets", "application/json", strings.NewReader(body))
		if err != nil {
			t.Fatalf("create preset error = %v", err)
		}
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusCreated {
			t.Fatalf("status = %d, want %d", resp.StatusCode, http.StatusCreated)
		}
	})

	t.Run("SeekViaAPI", func(t *testing.T) {
		resp, err := client.Post(ts.URL+"/api/playback/seek", "application/json",
			strings.NewReader(`{"index": 10}`))
		if err != nil {
			t.Fatalf("seek error = %v", err)
		}
		defer resp.Body.Close()

		var status engine.Status
		json.NewDecoder(resp.Body).Decode(&status)
		if status.Position != 10 {
			t.Errorf("position = %d, want 10", status.Position)
		}
	})

	t.Run("PlaybackAdvances", func(t *testing.T) {
		resp, err := client.Post(ts.URL+"/api/playback/play", "application/json", nil)
		if err != nil {
			t.Fatalf("play error = %v", err)
		}
		resp.Body.Close()

		deadline := time.Now().Add(5 * time.Second)
		for time.Now().Before(deadline) {
			if eng.Position() > 10 {
				break
			}
			time.Sleep(20 * time.Millisecond)
		}
		if eng.Position() <= 10 {
			t.Error("playback position did not advance while playing")
		}

		resp, err = client.Post(ts.URL+"/api/playback/pause", "application/json", nil)
		if err != nil {
			t.Fatalf("pause error = %v", err)
		}
		resp.Body.Close()

		if eng.IsPlaying() {
			t.Error("expected playback paused")
		}
	})

	t.Run("SyncToVideo", func(t *testing.T) {
		resp, err := client.Post(ts.URL+"/api/playback/sync", "application/json",
			strings.NewReader(`{"video_index": 30, "video_total": 120}`))
		if err != nil {
			t.Fatalf("sync error = %v", err)
		}
		defer resp.Body.Close()

		var status engine.Status
		json.NewDecoder(resp.Body).Decode(&status)
		if status.Position != 6 {
			t.Errorf("position = %d, want 6 (30/120 of 24 frames)", status.Position)
		}
	})

	t.Run("APIStillWorks", func(t *testing.T) {
		resp, _ := client.Get(ts.URL + "/api/health")
		if resp.StatusCode != http.StatusOK {
			t.Errorf("health check failed after playback operations")
		}
		resp.Body.Close()
	})
}

func TestE2E_OneSidedSession(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping e2e test")
	}

	tmpDir := t.TempDir()

	application, err := app.New(app.Config{Render: renderConfig()})
	if err != nil {
		t.Fatalf("app.New() error = %v", err)
	}

	files, err := testdata.ExtractSession(tmpDir)
	if err != nil {
		t.Fatalf("ExtractSession() error = %v", err)
	}
	if err := application.LoadSession(app.Session{
		LeftLayout: files.LeftLayout,
		LeftSeq:    files.LeftSeq,
	}); err != nil {
		t.Fatalf("LoadSession() error = %v", err)
	}

	// One missing side still renders a full-size composite.
	frame, err := application.Engine().CurrentFrame()
	if err != nil {
		t.Fatalf("CurrentFrame() error = %v", err)
	}
	defer frame.Close()

	if frame.Empty() {
		t.Error("expected a non-empty composite for a one-sided session")
	}
}
