// Package app provides the main application logic for the PlantarView player.
package app

import (
	"fmt"
	"log"
	"sync"

	"github.com/gaitlab/plantarview/internal/dataset"
	"github.com/gaitlab/plantarview/internal/engine"
	"github.com/gaitlab/plantarview/internal/heatmap"
	"github.com/gaitlab/plantarview/internal/store"
	"github.com/gaitlab/plantarview/internal/video"
)

// ActivePresetKey is the settings key naming the render preset to load on
// startup.
const ActivePresetKey = "active_preset"

// Config holds configuration options for the application.
type Config struct {
	Store         *store.Store
	Render        heatmap.Config
	CacheCapacity int
}

// Session names the dataset files for one recorded walk. An empty path leaves
// that side blank; Video optionally names the video recorded alongside the
// pressure capture.
type Session struct {
	LeftLayout  string
	RightLayout string
	LeftSeq     string
	RightSeq    string
	Video       string
}

// App wires the dataset loader, the rendering engine and the store together.
type App struct {
	config Config
	engine *engine.Engine

	mu     sync.RWMutex
	loaded bool
	video  video.Source
}

// New creates a new App instance with the given configuration.
func New(config Config) (*App, error) {
	if config.Render == (heatmap.Config{}) {
		config.Render = heatmap.DefaultConfig()
	}

	eng, err := engine.New(engine.Config{
		Heatmap:       config.Render,
		CacheCapacity: config.CacheCapacity,
	})
	if err != nil {
		return nil, err
	}

	return &App{config: config, engine: eng}, nil
}

// LoadSession reads the layout and sequence files for a session and hands
// them to the engine. Playback resets to frame zero.
func (a *App) LoadSession(s Session) error {
	leftLayout, err := readLayout(s.LeftLayout)
	if err != nil {
		return err
	}
	rightLayout, err := readLayout(s.RightLayout)
	if err != nil {
		return err
	}
	leftSeq, err := readSequence(s.LeftSeq, len(leftLayout))
	if err != nil {
		return err
	}
	rightSeq, err := readSequence(s.RightSeq, len(rightLayout))
	if err != nil {
		return err
	}

	if len(leftSeq) == 0 && len(rightSeq) == 0 {
		return fmt.Errorf("session has no pressure frames")
	}

	if err := a.engine.SetData(leftLayout, rightLayout, leftSeq, rightSeq); err != nil {
		return err
	}

	var vid video.Source
	if s.Video != "" {
		vid = video.NewFileSource(s.Video)
		if err := vid.Open(); err != nil {
			return fmt.Errorf("open session video: %w", err)
		}
	}

	a.mu.Lock()
	oldVideo := a.video
	a.video = vid
	a.loaded = true
	a.mu.Unlock()

	if oldVideo != nil {
		oldVideo.Close()
	}
	return nil
}

// HasSession reports whether a dataset has been loaded.
func (a *App) HasSession() bool {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.loaded
}

// Start launches the playback pipeline, initially paused.
func (a *App) Start() {
	a.engine.Start()
}

// Stop halts the playback pipeline and releases render resources.
func (a *App) Stop() {
	a.engine.Stop()

	a.mu.Lock()
	vid := a.video
	a.video = nil
	a.mu.Unlock()
	if vid != nil {
		vid.Close()
	}
}

// SetPlaying resumes or pauses playback.
func (a *App) SetPlaying(playing bool) {
	if playing {
		a.engine.Resume()
	} else {
		a.engine.Pause()
	}
}

// Engine returns the rendering engine.
func (a *App) Engine() *engine.Engine {
	return a.engine
}

// Video returns the session video source, or nil when the session has none.
func (a *App) Video() video.Source {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.video
}

// SyncToVideoFrame seeks the video to the given frame and aligns pressure
// playback to the same relative progress. No-op without a session video.
func (a *App) SyncToVideoFrame(index int) {
	vid := a.Video()
	if vid == nil {
		return
	}
	vid.Seek(index)
	a.engine.SyncToVideo(index, vid.FrameCount())
}

// readLayout loads a sensor layout file; an empty path yields a nil layout.
func readLayout(path string) (heatmap.Layout, error) {
	if path == "" {
		return nil, nil
	}
	return dataset.ReadLayout(path)
}

// readSequence loads a pressure sequence file; an empty path yields no
// frames. A zero sensor count falls back to the dataset default.
func readSequence(path string, sensorCount int) ([][]int, error) {
	if path == "" {
		return nil, nil
	}
	return dataset.ReadSequence(path, sensorCount)
}

// LoadRenderConfig resolves the render configuration to start with: the
// preset named by the active_preset setting when one is stored, the built-in
// defaults otherwise.
func LoadRenderConfig(st *store.Store) heatmap.Config {
	if st == nil {
		return heatmap.DefaultConfig()
	}

	name, err := st.Settings().Get(ActivePresetKey)
	if err != nil {
		return heatmap.DefaultConfig()
	}

	preset, err := st.Presets().GetByName(name)
	if err != nil {
		log.Printf("active preset %q not found, using defaults", name)
		return heatmap.DefaultConfig()
	}

	log.Printf("using render preset %q", preset.Name)
	return preset.Config
}
