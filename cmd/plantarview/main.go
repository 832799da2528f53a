package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/gaitlab/plantarview/internal/app"
	"github.com/gaitlab/plantarview/internal/server"
	"github.com/gaitlab/plantarview/internal/store"
	"github.com/gaitlab/plantarview/internal/tray"
)

func main() {
	leftLayout := flag.String("left", "", "path to the left sensor layout JSON")
	rightLayout := flag.String("right", "", "path to the right sensor layout JSON")
	leftSeq := flag.String("L", "", "path to the left pressure sequence CSV")
	rightSeq := flag.String("R", "", "path to the right pressure sequence CSV")
	videoPath := flag.String("video", "", "path to the session video recorded with the capture")
	addr := flag.String("addr", ":8080", "listen address for the preview server")
	noTray := flag.Bool("no-tray", false, "run without the system tray")
	flag.Parse()

	fmt.Println("PlantarView - Plantar Pressure Playback")

	// Initialize the store
	homeDir, err := os.UserHomeDir()
	if err != nil {
		log.Fatalf("Failed to get home directory: %v", err)
	}

	dbDir := filepath.Join(homeDir, ".plantarview")
	if err := os.MkdirAll(dbDir, 0755); err != nil {
		log.Fatalf("Failed to create data directory: %v", err)
	}

	st, err := store.New(filepath.Join(dbDir, "plantarview.db"))
	if err != nil {
		log.Fatalf("Failed to initialize store: %v", err)
	}
	defer st.Close()

	// Build the playback application
	a, err := app.New(app.Config{
		Store:  st,
		Render: app.LoadRenderConfig(st),
	})
	if err != nil {
		log.Fatalf("Failed to initialize playback: %v", err)
	}

	session := app.Session{
		LeftLayout:  *leftLayout,
		RightLayout: *rightLayout,
		LeftSeq:     *leftSeq,
		RightSeq:    *rightSeq,
		Video:       *videoPath,
	}
	if session != (app.Session{}) {
		if err := a.LoadSession(session); err != nil {
			log.Fatalf("Failed to load session: %v", err)
		}
	}

	a.Start()
	defer a.Stop()

	// Find web directory
	webDir := findWebDir()
	if webDir != "" {
		fmt.Printf("Serving static files from: %s\n", webDir)
	}

	// Configure and start server
	serverCfg := server.Config{
		StaticDir: webDir,
		Store:     st,
		Engine:    a.Engine(),
	}
	if vid := a.Video(); vid != nil {
		serverCfg.Video = vid
	}
	srv := server.New(serverCfg)

	fmt.Printf("Starting server on %s\n", *addr)
	if *noTray {
		if err := srv.ListenAndServe(*addr); err != nil {
			log.Fatalf("Server failed: %v", err)
		}
		return
	}

	go func() {
		if err := srv.ListenAndServe(*addr); err != nil {
			log.Fatalf("Server failed: %v", err)
		}
	}()

	runTray(a, *addr)
}

// runTray wires the playback engine to the system tray and blocks until the
// user quits.
func runTray(a *app.App, addr string) {
	t := tray.New()
	t.OnToggle(a.SetPlaying)
	t.OnViewer(func() {
		log.Printf("viewer: open http://localhost%s in your browser", addr)
	})
	t.OnQuit(func() {
		a.Stop()
	})

	// Keep the position display current while the tray is up.
	stopCh := make(chan struct{})
	defer close(stopCh)
	go func() {
		ticker := time.NewTicker(500 * time.Millisecond)
		defer ticker.Stop()
		for {
			select {
			case <-stopCh:
				return
			case <-ticker.C:
				stat := a.Engine().Stat()
				t.SetPosition(stat.Position, stat.FrameCount)
			}
		}
	}()

	t.Run()
}

// findWebDir searches for the web directory in common locations.
// It checks: "web", "../web", "../../web", and ~/.plantarview/web.
// Returns the first existing directory or empty string if none found.
func findWebDir() string {
	relativePaths := []string{"web", "../web", "../../web"}
	for _, p := range relativePaths {
		if info, err := os.Stat(p); err == nil && info.IsDir() {
			absPath, err := filepath.Abs(p)
			if err == nil {
				return absPath
			}
			return p
		}
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return ""
	}

	homeWebDir := filepath.Join(homeDir, ".plantarview", "web")
	if info, err := os.Stat(homeWebDir); err == nil && info.IsDir() {
		return homeWebDir
	}

	return ""
}
