// Package tray provides the system tray interface for the PlantarView player.
package tray

import (
	"fmt"
	"sync"

	"github.com/getlantern/systray"
)

// Tray represents the system tray application.
type Tray struct {
	onToggle func(playing bool)
	onViewer func()
	onQuit   func()
	playing  bool
	mu       sync.RWMutex

	// Menu items stored for later updates
	menuToggle   *systray.MenuItem
	menuPosition *systray.MenuItem
}

// New creates a new Tray instance. Playback starts paused.
func New() *Tray {
	return &Tray{}
}

// OnToggle sets the callback function to be called when playback is toggled.
func (t *Tray) OnToggle(fn func(playing bool)) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.onToggle = fn
}

// OnViewer sets the callback function to be called when the viewer menu item is clicked.
func (t *Tray) OnViewer(fn func()) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.onViewer = fn
}

// OnQuit sets the callback function to be called when the quit menu item is clicked.
func (t *Tray) OnQuit(fn func()) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.onQuit = fn
}

// Run starts the system tray application.
// This function blocks until systray.Quit() is called.
func (t *Tray) Run() {
	systray.Run(t.onReady, t.onExit)
}

// onReady is called when the system tray is ready.
// It sets up the menu structure.
func (t *Tray) onReady() {
	systray.SetTitle("PlantarView")
	systray.SetTooltip("PlantarView Pressure Playback")

	t.menuToggle = systray.AddMenuItem("▶ Play", "Start or pause playback")
	systray.AddSeparator()

	t.menuPosition = systray.AddMenuItem("Frame: —", "Current playback position")
	t.menuPosition.Disable()
	systray.AddSeparator()

	menuViewer := systray.AddMenuItem("Open Viewer...", "Open the heatmap viewer in browser")
	systray.AddSeparator()

	menuQuit := systray.AddMenuItem("Quit", "Quit PlantarView")

	// Handle menu item clicks in a separate goroutine
	go func() {
		for {
			select {
			case <-t.menuToggle.ClickedCh:
				t.handleToggle()
			case <-menuViewer.ClickedCh:
				t.handleViewer()
			case <-menuQuit.ClickedCh:
				t.handleQuit()
				return
			}
		}
	}()
}

// onExit is called when the system tray is about to exit.
func (t *Tray) onExit() {
}

// handleToggle handles the play/pause menu item click.
func (t *Tray) handleToggle() {
	t.mu.Lock()
	t.playing = !t.playing
	playing := t.playing

	if playing {
		t.menuToggle.SetTitle("⏸ Pause")
	} else {
		t.menuToggle.SetTitle("▶ Play")
	}

	callback := t.onToggle
	t.mu.Unlock()

	// Call the callback outside the lock to prevent deadlocks
	if callback != nil {
		callback(playing)
	}
}

// handleViewer handles the viewer menu item click.
func (t *Tray) handleViewer() {
	t.mu.RLock()
	callback := t.onViewer
	t.mu.RUnlock()

	if callback != nil {
		callback()
	}
}

// handleQuit handles the quit menu item click.
func (t *Tray) handleQuit() {
	t.mu.RLock()
	callback := t.onQuit
	t.mu.RUnlock()

	if callback != nil {
		callback()
	}

	systray.Quit()
}

// SetPosition updates the playback position display in the menu.
func (t *Tray) SetPosition(position, total int) {
	t.mu.RLock()
	defer t.mu.RUnlock()

	if t.menuPosition != nil {
		if total == 0 {
			t.menuPosition.SetTitle("Frame: —")
		} else {
			t.menuPosition.SetTitle(fmt.Sprintf("Frame: %d / %d", position+1, total))
		}
	}
}

// IsPlaying returns whether the tray toggle is in the playing state.
func (t *Tray) IsPlaying() bool {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.playing
}
