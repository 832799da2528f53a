// Package testdata embeds a small recorded sample session for tests.
package testdata

import (
	"embed"
	"fmt"
	"os"
	"path/filepath"
)

//go:embed sessions/*
var sessionsFS embed.FS

// SessionFiles holds the on-disk paths of an extracted sample session.
type SessionFiles struct {
	LeftLayout  string
	RightLayout string
	LeftSeq     string
	RightSeq    string
}

// ExtractSession materializes the embedded sample session into dir so that
// file-based loaders can read it.
func ExtractSession(dir string) (SessionFiles, error) {
	files := SessionFiles{
		LeftLayout:  filepath.Join(dir, "leftPoints.json"),
		RightLayout: filepath.Join(dir, "rightPoints.json"),
		LeftSeq:     filepath.Join(dir, "L.csv"),
		RightSeq:    filepath.Join(dir, "R.csv"),
	}

	names := map[string]string{
		"leftPoints.json":  files.LeftLayout,
		"rightPoints.json": files.RightLayout,
		"L.csv":            files.LeftSeq,
		"R.csv":            files.RightSeq,
	}
	for name, dst := range names {
		data, err := sessionsFS.ReadFile("sessions/" + name)
		if err != nil {
			return SessionFiles{}, fmt.Errorf("read fixture %s: %w", name, err)
		}
		if err := os.WriteFile(dst, data, 0644); err != nil {
			return SessionFiles{}, fmt.Errorf("extract fixture %s: %w", name, err)
		}
	}

	return files, nil
}
