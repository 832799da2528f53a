// Package dataset loads sensor layouts and pressure sequences from the
// on-disk recording format: one JSON point file and one CSV sequence file per
// body side (leftPoints.json / L.csv and rightPoints.json / R.csv).
package dataset

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/gaitlab/plantarview/internal/heatmap"
)

// pointRecord is one entry of a layout file: a JSON array of {"x":…, "y":…}.
type pointRecord struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// ReadLayout reads a sensor layout file. Missing coordinate fields default to
// zero, matching the recording tooling's output.
func ReadLayout(path string) (heatmap.Layout, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read layout %s: %w", path, err)
	}

	var records []pointRecord
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("parse layout %s: %w", path, err)
	}

	layout := make(heatmap.Layout, len(records))
	for i, r := range records {
		layout[i] = heatmap.Point{X: r.X, Y: r.Y}
	}
	return layout, nil
}
